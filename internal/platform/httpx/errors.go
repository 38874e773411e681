// Package httpx provides HTTP response utilities.
package httpx

import "net/http"

// Shorthand responders so every handler speaks the same RFC7807 vocabulary
// for the common failure shapes.

func BadRequest(w http.ResponseWriter, detail string) {
	Problem(w, http.StatusBadRequest, "Validation Failed", detail)
}

func NotFound(w http.ResponseWriter, detail string) {
	Problem(w, http.StatusNotFound, "Not Found", detail)
}

func Conflict(w http.ResponseWriter, detail string) {
	Problem(w, http.StatusConflict, "Duplicate", detail)
}

func Unavailable(w http.ResponseWriter, detail string) {
	Problem(w, http.StatusServiceUnavailable, "Unavailable", detail)
}

// Internal deliberately carries no detail; the cause goes to the log, not
// the caller.
func Internal(w http.ResponseWriter) {
	Problem(w, http.StatusInternalServerError, "Internal Error", "")
}
