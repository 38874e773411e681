package leadimport

// Business defaults applied to every materialized order. These mirror what
// the console shows for manually entered lead orders.
const (
	// DefaultDueDays is added to the issue date to produce the due date.
	DefaultDueDays = 7

	// DefaultCurrency is the fixed currency recorded on imported orders.
	DefaultCurrency = "LKR"

	// ChannelLeads tags every order produced by this pipeline.
	ChannelLeads = "leads"

	// DefaultNote is stored when the row's Other column is blank.
	DefaultNote = "Imported from CSV"

	// DefaultQuantity is the line quantity for a lead order's single item.
	DefaultQuantity = 1
)
