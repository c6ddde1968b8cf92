package ticket

import (
	"encoding/json"
	"time"
)

// Record is a locally stored project ticket sourced from BlueStakes.
//
// Ownership of mutable fields: the sync pipeline refreshes the descriptive
// fields; the orphan linker alone assigns ProjectID and clears
// IsContinueUpdate on superseded predecessors. Records are never deleted.
type Record struct {
	ID           uint
	TicketNumber string
	ProjectID    *int64
	CompanyID    uint

	// Lineage: soft reference to the predecessor ticket this one continues.
	OldTicket        *string
	IsContinueUpdate bool

	ReplaceByDate time.Time
	LegalDate     *time.Time
	Expires       *time.Time
	OriginalDate  *time.Time

	Place               *string
	Street              *string
	LocationDescription *string
	FormattedAddress    *string
	WorkArea            json.RawMessage

	DoneFor *string
	Type    *string

	StFromAddress *string
	StToAddress   *string
	Cross1        *string
	Cross2        *string
	County        *string
	State         *string
	Zip           *string

	Name  *string
	Phone *string
	Email *string

	Revision *string

	Responses json.RawMessage

	// RawData is the verbatim upstream payload kept for debugging.
	RawData       json.RawMessage
	DataUpdatedAt *time.Time
}
