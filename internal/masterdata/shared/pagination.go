package shared

const (
	DefaultPage  = 1
	DefaultLimit = 25
)

// ListFilters carries the common list-screen query parameters.
type ListFilters struct {
	Page     int
	Limit    int
	Search   string
	IsActive *bool
}

// Offset converts page/limit into a SQL offset, clamping negatives to zero.
func (f ListFilters) Offset() int {
	offset := (f.Page - 1) * f.Limit
	if offset < 0 {
		return 0
	}
	return offset
}
