package ticket

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/diglink-inc/diglink/internal/shared/errors"
)

// AddressUnavailable is stored when the payload carries no street at all.
const AddressUnavailable = "Address not available"

// geoJSONTypes are the accepted shapes for the work area geometry.
var geoJSONTypes = map[string]bool{
	"Feature":           true,
	"FeatureCollection": true,
	"Polygon":           true,
	"MultiPolygon":      true,
}

// Transform maps a raw BlueStakes payload onto a Record for the given
// company. It is pure: now is passed in by the caller. Non-fatal oddities
// (an unusable work area, an unparseable date) are reported as warnings for
// the caller to log; only a missing ticket number is an error.
func Transform(p *Payload, companyID uint, now time.Time) (*Record, []string, error) {
	number := strings.TrimSpace(p.Ticket)
	if number == "" {
		return nil, nil, errors.NewTransformError("ticket payload has no ticket number")
	}

	var warnings []string

	replaceBy := parseDateTime(p.ReplaceByDate)
	if replaceBy == nil {
		// Upstream occasionally omits replace_by_date; fall back so the
		// record still sorts into the renewal window checks.
		replaceBy = parseDateTime(p.Expires)
	}
	if replaceBy == nil {
		replaceBy = parseDateTime(p.WorkDate)
	}
	if replaceBy == nil {
		t := now
		replaceBy = &t
	}

	expires := parseDateTime(p.Expires)
	isContinue := true
	if expires != nil && expires.Before(now) {
		isContinue = false
	}

	workArea, warn := validateWorkArea(p.WorkArea)
	if warn != "" {
		warnings = append(warnings, warn)
	}

	street := p.Street
	from := p.StFromAddress.String()
	to := p.StToAddress.String()
	formatted := FormatAddress(street, from, to, p.Cross1, p.Cross2)

	updatedAt := now

	rec := &Record{
		TicketNumber:     number,
		CompanyID:        companyID,
		OldTicket:        normalize(p.OriginalTicket),
		IsContinueUpdate: isContinue,
		ReplaceByDate:    *replaceBy,
		LegalDate:        parseDateTime(p.LegalDate),
		Expires:          expires,
		OriginalDate:     parseDateTime(p.OriginalDate),

		Place:               normalize(p.Place),
		Street:              normalize(street),
		LocationDescription: normalize(p.Location),
		FormattedAddress:    normalize(formatted),
		WorkArea:            workArea,

		DoneFor: normalize(p.DoneFor),
		Type:    normalize(p.Type),

		StFromAddress: normalize(from),
		StToAddress:   normalize(to),
		Cross1:        normalize(p.Cross1),
		Cross2:        normalize(p.Cross2),
		County:        normalize(p.County),
		State:         normalize(p.State),
		Zip:           normalize(p.Zip.String()),

		Name:  normalize(p.Contact),
		Phone: normalize(p.ContactPhone),
		Email: normalize(p.Email),

		Revision: normalize(p.Revision.String()),

		RawData:       p.Raw,
		DataUpdatedAt: &updatedAt,
	}

	return rec, warnings, nil
}

// FormatAddress builds the human-readable work location string.
//
// House numbers: equal non-zero from/to collapse to a single number; a
// differing pair renders as a range; a missing or "0" endpoint drops the
// numbers entirely. Cross streets render as "at X" or "between X and Y".
// No street at all yields the AddressUnavailable sentinel.
func FormatAddress(street, from, to, cross1, cross2 string) string {
	street = strings.TrimSpace(street)
	if street == "" {
		return AddressUnavailable
	}

	from = strings.TrimSpace(from)
	to = strings.TrimSpace(to)

	var parts []string
	if from != "" && to != "" && from != "0" && to != "0" {
		if from == to {
			parts = append(parts, fmt.Sprintf("%s %s", from, street))
		} else {
			parts = append(parts, fmt.Sprintf("%s-%s %s", from, to, street))
		}
	} else {
		parts = append(parts, street)
	}

	var crosses []string
	if c := strings.TrimSpace(cross1); c != "" {
		crosses = append(crosses, c)
	}
	if c := strings.TrimSpace(cross2); c != "" {
		crosses = append(crosses, c)
	}
	switch len(crosses) {
	case 1:
		parts = append(parts, fmt.Sprintf("at %s", crosses[0]))
	case 2:
		parts = append(parts, fmt.Sprintf("between %s and %s", crosses[0], crosses[1]))
	}

	return strings.Join(parts, " ")
}

// normalize trims a string and maps empty to nil; empty strings are never
// stored.
func normalize(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

// dateTimeLayouts are tried in order when parsing upstream timestamps.
var dateTimeLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05.999999",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// parseDateTime parses the assorted timestamp formats BlueStakes emits.
// The literal "string" shows up as a placeholder in some payloads and is
// treated as absent, as is anything unparseable.
func parseDateTime(s string) *time.Time {
	s = strings.TrimSpace(s)
	if s == "" || s == "string" {
		return nil
	}
	for _, layout := range dateTimeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			t = t.UTC()
			return &t
		}
	}
	return nil
}

// validateWorkArea accepts the geometry only when it is (or parses into) a
// GeoJSON-like object whose type is one of the supported shapes. Anything
// else is dropped with a warning rather than failing the ticket.
func validateWorkArea(raw json.RawMessage) (json.RawMessage, string) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, ""
	}

	candidate := raw
	// A JSON string is unwrapped and re-parsed.
	if raw[0] == '"' {
		var inner string
		if err := json.Unmarshal(raw, &inner); err != nil {
			return nil, "work area is not valid JSON"
		}
		candidate = json.RawMessage(inner)
	}

	var shape struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(candidate, &shape); err != nil {
		return nil, "work area is not a GeoJSON object"
	}
	if !geoJSONTypes[shape.Type] {
		return nil, fmt.Sprintf("work area has unsupported GeoJSON type %q", shape.Type)
	}
	return candidate, ""
}
