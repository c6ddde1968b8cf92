package ticket

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatAddress(t *testing.T) {
	tests := []struct {
		name     string
		street   string
		from     string
		to       string
		cross1   string
		cross2   string
		expected string
	}{
		{
			name:     "range with both cross streets",
			street:   "Main St",
			from:     "123",
			to:       "456",
			cross1:   "Oak Ave",
			cross2:   "Elm St",
			expected: "123-456 Main St between Oak Ave and Elm St",
		},
		{
			name:     "equal house numbers collapse with one cross street",
			street:   "Main St",
			from:     "123",
			to:       "123",
			cross1:   "Oak Ave",
			expected: "123 Main St at Oak Ave",
		},
		{
			name:     "street alone",
			street:   "Main St",
			expected: "Main St",
		},
		{
			name:     "no street yields sentinel",
			street:   "",
			from:     "123",
			to:       "456",
			expected: "Address not available",
		},
		{
			name:     "zero house numbers are dropped",
			street:   "Main St",
			from:     "0",
			to:       "0",
			cross1:   "Oak Ave",
			expected: "Main St at Oak Ave",
		},
		{
			name:     "missing to endpoint drops the numbers",
			street:   "Main St",
			from:     "123",
			to:       "",
			expected: "Main St",
		},
		{
			name:     "second cross street alone renders as at",
			street:   "Main St",
			cross2:   "Elm St",
			expected: "Main St at Elm St",
		},
		{
			name:     "whitespace street yields sentinel",
			street:   "   ",
			expected: "Address not available",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FormatAddress(tt.street, tt.from, tt.to, tt.cross1, tt.cross2)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestTransform_RequiresTicketNumber(t *testing.T) {
	p := &Payload{Ticket: "   "}
	_, _, err := Transform(p, 1, time.Now())
	require.Error(t, err)
}

func TestTransform_ReplaceByFallbackChain(t *testing.T) {
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name          string
		replaceBy     string
		expires       string
		workDate      string
		expectedYear  int
		expectedMonth time.Month
		expectedDay   int
	}{
		{
			name:          "replace_by_date wins",
			replaceBy:     "2026-09-01",
			expires:       "2026-09-15",
			workDate:      "2026-07-01",
			expectedYear:  2026,
			expectedMonth: time.September,
			expectedDay:   1,
		},
		{
			name:          "falls back to expires",
			expires:       "2026-09-15",
			workDate:      "2026-07-01",
			expectedYear:  2026,
			expectedMonth: time.September,
			expectedDay:   15,
		},
		{
			name:          "falls back to work_date",
			workDate:      "2026-07-01",
			expectedYear:  2026,
			expectedMonth: time.July,
			expectedDay:   1,
		},
		{
			name:          "falls back to now",
			expectedYear:  2026,
			expectedMonth: time.August,
			expectedDay:   1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &Payload{
				Ticket:        "A001",
				ReplaceByDate: tt.replaceBy,
				Expires:       tt.expires,
				WorkDate:      tt.workDate,
			}
			rec, _, err := Transform(p, 1, now)
			require.NoError(t, err)
			assert.Equal(t, tt.expectedYear, rec.ReplaceByDate.Year())
			assert.Equal(t, tt.expectedMonth, rec.ReplaceByDate.Month())
			assert.Equal(t, tt.expectedDay, rec.ReplaceByDate.Day())
		})
	}
}

func TestTransform_ContinueUpdateFromExpiry(t *testing.T) {
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	rec, _, err := Transform(&Payload{Ticket: "A001", Expires: "2026-09-01"}, 1, now)
	require.NoError(t, err)
	assert.True(t, rec.IsContinueUpdate)

	rec, _, err = Transform(&Payload{Ticket: "A002", Expires: "2026-07-01"}, 1, now)
	require.NoError(t, err)
	assert.False(t, rec.IsContinueUpdate)

	// No expiry at all keeps the ticket alive.
	rec, _, err = Transform(&Payload{Ticket: "A003"}, 1, now)
	require.NoError(t, err)
	assert.True(t, rec.IsContinueUpdate)
}

func TestTransform_PlaceholderDatesTreatedAsAbsent(t *testing.T) {
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	rec, _, err := Transform(&Payload{
		Ticket:    "A001",
		LegalDate: "string",
		Expires:   "string",
	}, 1, now)
	require.NoError(t, err)
	assert.Nil(t, rec.LegalDate)
	assert.Nil(t, rec.Expires)
	assert.True(t, rec.IsContinueUpdate)
}

func TestTransform_NormalizesEmptyStrings(t *testing.T) {
	rec, _, err := Transform(&Payload{
		Ticket: "A001",
		Place:  "  ",
		County: " Salt Lake ",
	}, 1, time.Now())
	require.NoError(t, err)
	assert.Nil(t, rec.Place)
	require.NotNil(t, rec.County)
	assert.Equal(t, "Salt Lake", *rec.County)
}

func TestTransform_WorkAreaValidation(t *testing.T) {
	tests := []struct {
		name      string
		workArea  string
		kept      bool
		wantsWarn bool
	}{
		{
			name:     "polygon kept",
			workArea: `{"type":"Polygon","coordinates":[]}`,
			kept:     true,
		},
		{
			name:     "feature collection kept",
			workArea: `{"type":"FeatureCollection","features":[]}`,
			kept:     true,
		},
		{
			name:     "json string unwrapped",
			workArea: `"{\"type\":\"Feature\",\"geometry\":null}"`,
			kept:     true,
		},
		{
			name:      "unsupported type dropped with warning",
			workArea:  `{"type":"Point","coordinates":[1,2]}`,
			kept:      false,
			wantsWarn: true,
		},
		{
			name:      "garbage dropped with warning",
			workArea:  `"not json at all"`,
			kept:      false,
			wantsWarn: true,
		},
		{
			name:     "null ignored silently",
			workArea: `null`,
			kept:     false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &Payload{Ticket: "A001", WorkArea: json.RawMessage(tt.workArea)}
			rec, warnings, err := Transform(p, 1, time.Now())
			require.NoError(t, err)
			if tt.kept {
				assert.NotEmpty(t, rec.WorkArea)
			} else {
				assert.Empty(t, rec.WorkArea)
			}
			if tt.wantsWarn {
				assert.NotEmpty(t, warnings)
			} else {
				assert.Empty(t, warnings)
			}
		})
	}
}

func TestParsePayload_FlexibleFields(t *testing.T) {
	raw := json.RawMessage(`{
		"ticket": "A2024001",
		"revision": 3,
		"st_from_address": 123,
		"st_to_address": "456",
		"zip": 84101
	}`)

	p, err := ParsePayload(raw)
	require.NoError(t, err)
	assert.Equal(t, "A2024001", p.Ticket)
	assert.Equal(t, "3", p.Revision.String())
	assert.Equal(t, "123", p.StFromAddress.String())
	assert.Equal(t, "456", p.StToAddress.String())
	assert.Equal(t, "84101", p.Zip.String())
	assert.JSONEq(t, string(raw), string(p.Raw))
}

func TestParsePayload_Malformed(t *testing.T) {
	_, err := ParsePayload(json.RawMessage(`{"ticket":`))
	require.Error(t, err)
}
