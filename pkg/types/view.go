package types

// ListView is the list/filter view the core calls back into. It is owned by
// the UI layer; records are identified by their stable record id.
type ListView interface {
	// RefreshRow re-renders the row of one record after it changed.
	RefreshRow(recordID string)

	// SelectedRecords returns the ids of the highlighted rows, in list order.
	SelectedRecords() []string

	// CheckedRecords returns the ids of the checked rows, in list order.
	CheckedRecords() []string

	// Reload rebuilds the whole list and selects selectID if it is non-empty.
	Reload(selectID string)
}
