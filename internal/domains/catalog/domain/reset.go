package domain

// ResetReport summarises a catalog reset. A reset stops at the first failed
// phase and never rolls back, so a report with failures describes a catalog in
// a mixed state.
type ResetReport struct {
	Deleted        int      `json:"deleted"`
	DeleteFailures int      `json:"deleteFailures"`
	Inserted       int      `json:"inserted"`
	InsertFailures int      `json:"insertFailures"`
	Errors         []string `json:"errors,omitempty"`
}

// Complete reports whether every delete and insert succeeded.
func (r ResetReport) Complete() bool {
	return r.DeleteFailures == 0 && r.InsertFailures == 0
}
