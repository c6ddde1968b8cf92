// Package ticket holds the ticket record shape, the pure transformation from
// raw BlueStakes payloads, and the change detection used by the sync pipeline.
package ticket

import (
	"encoding/json"
	"strconv"
	"time"

	"github.com/diglink-inc/diglink/internal/shared/errors"
)

// flexString tolerates upstream fields that arrive as either JSON strings or
// numbers (house numbers and revisions do both in practice).
type flexString string

func (f *flexString) UnmarshalJSON(data []byte) error {
	if len(data) == 0 || string(data) == "null" {
		*f = ""
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = flexString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*f = flexString(n.String())
	return nil
}

func (f flexString) String() string { return string(f) }

// Payload is the typed view of one raw BlueStakes ticket. Raw retains the
// verbatim upstream JSON; unknown fields survive only there.
type Payload struct {
	Ticket         string          `json:"ticket"`
	Revision       flexString      `json:"revision"`
	OriginalTicket string          `json:"original_ticket"`
	ReplaceByDate  string          `json:"replace_by_date"`
	LegalDate      string          `json:"legal_date"`
	Expires        string          `json:"expires"`
	OriginalDate   string          `json:"original_date"`
	WorkDate       string          `json:"work_date"`
	Place          string          `json:"place"`
	Street         string          `json:"street"`
	Location       string          `json:"location"`
	StFromAddress  flexString      `json:"st_from_address"`
	StToAddress    flexString      `json:"st_to_address"`
	Cross1         string          `json:"cross1"`
	Cross2         string          `json:"cross2"`
	County         string          `json:"county"`
	State          string          `json:"state"`
	Zip            flexString      `json:"zip"`
	DoneFor        string          `json:"done_for"`
	Type           string          `json:"type"`
	Contact        string          `json:"contact"`
	ContactPhone   string          `json:"contact_phone"`
	Email          string          `json:"email"`
	WorkArea       json.RawMessage `json:"work_area"`
	Raw            json.RawMessage `json:"-"`
}

// ParsePayload decodes a raw upstream ticket into its typed view, keeping the
// original bytes attached for the forensic backup column.
func ParsePayload(raw json.RawMessage) (*Payload, error) {
	var p Payload
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, errors.NewTransformError("malformed ticket payload", err.Error())
	}
	p.Raw = raw
	return &p, nil
}

// SearchQuery is one page request against the upstream search endpoint.
type SearchQuery struct {
	Start  time.Time
	End    time.Time
	Limit  int
	Offset int
}

// Values renders the query as URL parameters.
func (q SearchQuery) Values() map[string]string {
	return map[string]string{
		"start":  q.Start.Format("2006-01-02"),
		"end":    q.End.Format("2006-01-02"),
		"limit":  strconv.Itoa(q.Limit),
		"offset": strconv.Itoa(q.Offset),
	}
}
