package usecases

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/diglink-inc/diglink/internal/domain/company"
	"github.com/diglink-inc/diglink/internal/domain/ticket"
	"github.com/diglink-inc/diglink/internal/shared/errors"
	"github.com/diglink-inc/diglink/internal/shared/logger"
)

func testCredsMap() map[uint]company.Credentials {
	return map[uint]company.Credentials{
		1: {CompanyID: 1, Username: "acme", Password: "pw"},
	}
}

func TestScanUpdatable_MarksOnlyOfferedTickets(t *testing.T) {
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	candidates := []*ticket.Record{
		{ID: 1, TicketNumber: "T1", CompanyID: 1, ReplaceByDate: now.Add(24 * time.Hour)},
		{ID: 2, TicketNumber: "T2", CompanyID: 1, ReplaceByDate: now.Add(48 * time.Hour)},
	}

	repo := &mockTicketRepo{
		FindUpdatableCandidatesFunc: func(ctx context.Context, from, to time.Time) ([]*ticket.Record, error) {
			assert.Equal(t, now, from)
			assert.Equal(t, now.Add(7*24*time.Hour), to)
			return candidates, nil
		},
	}

	var inserted []string
	updatableRepo := &mockUpdatableRepo{
		InsertFunc: func(ctx context.Context, mark *ticket.UpdatableMark) error {
			inserted = append(inserted, mark.TicketNumber)
			return nil
		},
	}
	api := &mockAPI{
		UpdateAvailableFunc: func(ctx context.Context, creds company.Credentials, number string) (bool, error) {
			return number == "T1", nil
		},
	}

	uc := NewScanUpdatableUseCase(repo, updatableRepo, api, logger.NewLogger())
	uc.now = func() time.Time { return now }

	result, err := uc.Execute(context.Background(), testCredsMap())
	require.NoError(t, err)

	assert.Equal(t, 2, result.Candidates)
	assert.Equal(t, 1, result.Marked)
	assert.Equal(t, []string{"T1"}, inserted)
}

func TestScanUpdatable_CountsAPIFailures(t *testing.T) {
	repo := &mockTicketRepo{
		FindUpdatableCandidatesFunc: func(ctx context.Context, from, to time.Time) ([]*ticket.Record, error) {
			return []*ticket.Record{
				{ID: 1, TicketNumber: "T1", CompanyID: 1, ReplaceByDate: from.Add(24 * time.Hour)},
				{ID: 2, TicketNumber: "T2", CompanyID: 1, ReplaceByDate: from.Add(48 * time.Hour)},
			}, nil
		},
	}
	api := &mockAPI{
		UpdateAvailableFunc: func(ctx context.Context, creds company.Credentials, number string) (bool, error) {
			if number == "T1" {
				return false, errors.NewUpstreamUnavailableError("bluestakes unreachable")
			}
			return true, nil
		},
	}

	uc := NewScanUpdatableUseCase(repo, &mockUpdatableRepo{}, api, logger.NewLogger())
	result, err := uc.Execute(context.Background(), testCredsMap())
	require.NoError(t, err)
	assert.Equal(t, 1, result.APIFailures)
	assert.Equal(t, 1, result.Marked)
}

func TestScanUpdatable_SkipsAlreadyMarked(t *testing.T) {
	repo := &mockTicketRepo{
		FindUpdatableCandidatesFunc: func(ctx context.Context, from, to time.Time) ([]*ticket.Record, error) {
			return []*ticket.Record{
				{ID: 1, TicketNumber: "T1", CompanyID: 1, ReplaceByDate: from.Add(24 * time.Hour)},
			}, nil
		},
	}
	updatableRepo := &mockUpdatableRepo{
		ExistsFunc: func(ctx context.Context, ticketNumber string) (bool, error) {
			return true, nil
		},
		InsertFunc: func(ctx context.Context, mark *ticket.UpdatableMark) error {
			t.Error("unexpected insert for already-marked ticket")
			return nil
		},
	}
	api := &mockAPI{
		UpdateAvailableFunc: func(ctx context.Context, creds company.Credentials, number string) (bool, error) {
			t.Error("unexpected upstream call for already-marked ticket")
			return false, nil
		},
	}

	uc := NewScanUpdatableUseCase(repo, updatableRepo, api, logger.NewLogger())
	result, err := uc.Execute(context.Background(), testCredsMap())
	require.NoError(t, err)
	assert.Equal(t, 0, result.Marked)
}

func TestScanUpdatable_SkipsCompaniesWithoutCredentials(t *testing.T) {
	repo := &mockTicketRepo{
		FindUpdatableCandidatesFunc: func(ctx context.Context, from, to time.Time) ([]*ticket.Record, error) {
			return []*ticket.Record{
				{ID: 1, TicketNumber: "T1", CompanyID: 99, ReplaceByDate: from.Add(24 * time.Hour)},
			}, nil
		},
	}
	api := &mockAPI{
		UpdateAvailableFunc: func(ctx context.Context, creds company.Credentials, number string) (bool, error) {
			t.Error("unexpected upstream call without credentials")
			return false, nil
		},
	}

	uc := NewScanUpdatableUseCase(repo, &mockUpdatableRepo{}, api, logger.NewLogger())
	result, err := uc.Execute(context.Background(), testCredsMap())
	require.NoError(t, err)
	assert.Equal(t, 1, result.Candidates)
	assert.Equal(t, 0, result.Marked)
}
