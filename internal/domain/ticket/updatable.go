package ticket

import "time"

// UpdatableMark flags a ticket whose renewal window has opened and whose
// upstream secondary functions reported it as updatable. Marks are
// append-only; the automation layer consumes and clears them elsewhere.
type UpdatableMark struct {
	ID            uint
	TicketNumber  string
	CompanyID     uint
	ReplaceByDate time.Time
}
