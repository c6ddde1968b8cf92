package ticket

import (
	"encoding/json"
	"reflect"
	"strings"
	"time"
)

// NeedsUpdate reports whether a freshly transformed record differs from the
// stored one in any descriptive field. It deliberately ignores the fields
// owned by other components (project assignment, lineage flags, replace-by
// and legal dates) so a refresh never fights the orphan linker.
//
// Skipping identical records matters: sync runs on every scheduled tick
// against a mostly-unchanged ticket set.
func NeedsUpdate(existing, fresh *Record) bool {
	stringPairs := [][2]*string{
		{existing.Place, fresh.Place},
		{existing.Street, fresh.Street},
		{existing.LocationDescription, fresh.LocationDescription},
		{existing.FormattedAddress, fresh.FormattedAddress},
		{existing.DoneFor, fresh.DoneFor},
		{existing.Type, fresh.Type},
		{existing.StFromAddress, fresh.StFromAddress},
		{existing.StToAddress, fresh.StToAddress},
		{existing.Cross1, fresh.Cross1},
		{existing.Cross2, fresh.Cross2},
		{existing.County, fresh.County},
		{existing.State, fresh.State},
		{existing.Zip, fresh.Zip},
		{existing.Name, fresh.Name},
		{existing.Phone, fresh.Phone},
		{existing.Email, fresh.Email},
		{existing.Revision, fresh.Revision},
	}
	for _, pair := range stringPairs {
		if !stringsEqual(pair[0], pair[1]) {
			return true
		}
	}

	if !datesEqual(existing.Expires, fresh.Expires) {
		return true
	}
	if !datesEqual(existing.OriginalDate, fresh.OriginalDate) {
		return true
	}

	if !jsonEqual(existing.WorkArea, fresh.WorkArea) {
		return true
	}

	// Responses arrive from a separate endpoint; only compare when the
	// fresh record actually carries them.
	if fresh.Responses != nil && !jsonEqual(existing.Responses, fresh.Responses) {
		return true
	}

	return false
}

func stringsEqual(a, b *string) bool {
	av, bv := "", ""
	if a != nil {
		av = strings.TrimSpace(*a)
	}
	if b != nil {
		bv = strings.TrimSpace(*b)
	}
	return av == bv
}

func datesEqual(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.UTC().Format(time.DateOnly) == b.UTC().Format(time.DateOnly)
}

// jsonEqual compares two JSON documents structurally. Absent and empty are
// equivalent.
func jsonEqual(a, b json.RawMessage) bool {
	aEmpty := len(a) == 0 || string(a) == "null"
	bEmpty := len(b) == 0 || string(b) == "null"
	if aEmpty || bEmpty {
		return aEmpty == bEmpty
	}

	var av, bv interface{}
	if err := json.Unmarshal(a, &av); err != nil {
		return false
	}
	if err := json.Unmarshal(b, &bv); err != nil {
		return false
	}
	return reflect.DeepEqual(av, bv)
}
