package usecases

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/diglink-inc/diglink/internal/domain/company"
	"github.com/diglink-inc/diglink/internal/domain/ticket"
	"github.com/diglink-inc/diglink/internal/shared/errors"
)

type mockCompanyRepo struct {
	ListSyncEligibleFunc func(ctx context.Context) ([]*company.Company, error)
}

func (m *mockCompanyRepo) ListSyncEligible(ctx context.Context) ([]*company.Company, error) {
	if m.ListSyncEligibleFunc != nil {
		return m.ListSyncEligibleFunc(ctx)
	}
	return nil, nil
}

type mockTicketRepo struct {
	FindByNumberFunc            func(ctx context.Context, number string) (*ticket.Record, error)
	InsertFunc                  func(ctx context.Context, rec *ticket.Record) error
	UpdateDescriptiveFunc       func(ctx context.Context, id uint, fresh *ticket.Record) error
	FindOrphansFunc             func(ctx context.Context) ([]*ticket.Record, error)
	FindAssignedByNumberFunc    func(ctx context.Context, companyID uint, number string) (*ticket.Record, error)
	AssignProjectFunc           func(ctx context.Context, id uint, projectID int64) error
	SetContinueUpdateFunc       func(ctx context.Context, id uint, value bool) error
	FindUpdatableCandidatesFunc func(ctx context.Context, from, to time.Time) ([]*ticket.Record, error)
	FindUnexpiredByCompanyFunc  func(ctx context.Context, companyID uint, now time.Time) ([]*ticket.Record, error)
	UpdateResponsesFunc         func(ctx context.Context, id uint, responses json.RawMessage, now time.Time) error
}

func (m *mockTicketRepo) FindByNumber(ctx context.Context, number string) (*ticket.Record, error) {
	if m.FindByNumberFunc != nil {
		return m.FindByNumberFunc(ctx, number)
	}
	return nil, errors.NewNotFoundError("ticket not found")
}

func (m *mockTicketRepo) Insert(ctx context.Context, rec *ticket.Record) error {
	if m.InsertFunc != nil {
		return m.InsertFunc(ctx, rec)
	}
	return nil
}

func (m *mockTicketRepo) UpdateDescriptive(ctx context.Context, id uint, fresh *ticket.Record) error {
	if m.UpdateDescriptiveFunc != nil {
		return m.UpdateDescriptiveFunc(ctx, id, fresh)
	}
	return nil
}

func (m *mockTicketRepo) FindOrphans(ctx context.Context) ([]*ticket.Record, error) {
	if m.FindOrphansFunc != nil {
		return m.FindOrphansFunc(ctx)
	}
	return nil, nil
}

func (m *mockTicketRepo) FindAssignedByNumber(ctx context.Context, companyID uint, number string) (*ticket.Record, error) {
	if m.FindAssignedByNumberFunc != nil {
		return m.FindAssignedByNumberFunc(ctx, companyID, number)
	}
	return nil, errors.NewNotFoundError("assigned predecessor not found")
}

func (m *mockTicketRepo) AssignProject(ctx context.Context, id uint, projectID int64) error {
	if m.AssignProjectFunc != nil {
		return m.AssignProjectFunc(ctx, id, projectID)
	}
	return nil
}

func (m *mockTicketRepo) SetContinueUpdate(ctx context.Context, id uint, value bool) error {
	if m.SetContinueUpdateFunc != nil {
		return m.SetContinueUpdateFunc(ctx, id, value)
	}
	return nil
}

func (m *mockTicketRepo) FindUpdatableCandidates(ctx context.Context, from, to time.Time) ([]*ticket.Record, error) {
	if m.FindUpdatableCandidatesFunc != nil {
		return m.FindUpdatableCandidatesFunc(ctx, from, to)
	}
	return nil, nil
}

func (m *mockTicketRepo) FindUnexpiredByCompany(ctx context.Context, companyID uint, now time.Time) ([]*ticket.Record, error) {
	if m.FindUnexpiredByCompanyFunc != nil {
		return m.FindUnexpiredByCompanyFunc(ctx, companyID, now)
	}
	return nil, nil
}

func (m *mockTicketRepo) UpdateResponses(ctx context.Context, id uint, responses json.RawMessage, now time.Time) error {
	if m.UpdateResponsesFunc != nil {
		return m.UpdateResponsesFunc(ctx, id, responses, now)
	}
	return nil
}

type mockUpdatableRepo struct {
	ExistsFunc func(ctx context.Context, ticketNumber string) (bool, error)
	InsertFunc func(ctx context.Context, mark *ticket.UpdatableMark) error
}

func (m *mockUpdatableRepo) Exists(ctx context.Context, ticketNumber string) (bool, error) {
	if m.ExistsFunc != nil {
		return m.ExistsFunc(ctx, ticketNumber)
	}
	return false, nil
}

func (m *mockUpdatableRepo) Insert(ctx context.Context, mark *ticket.UpdatableMark) error {
	if m.InsertFunc != nil {
		return m.InsertFunc(ctx, mark)
	}
	return nil
}

type mockAPI struct {
	SearchPageFunc      func(ctx context.Context, creds company.Credentials, q ticket.SearchQuery) ([]json.RawMessage, error)
	TicketDetailsFunc   func(ctx context.Context, creds company.Credentials, number string) (json.RawMessage, bool, error)
	UpdateAvailableFunc func(ctx context.Context, creds company.Credentials, number string) (bool, error)
	TicketResponsesFunc func(ctx context.Context, creds company.Credentials, number string) (json.RawMessage, error)
}

func (m *mockAPI) SearchPage(ctx context.Context, creds company.Credentials, q ticket.SearchQuery) ([]json.RawMessage, error) {
	if m.SearchPageFunc != nil {
		return m.SearchPageFunc(ctx, creds, q)
	}
	return nil, nil
}

func (m *mockAPI) TicketDetails(ctx context.Context, creds company.Credentials, number string) (json.RawMessage, bool, error) {
	if m.TicketDetailsFunc != nil {
		return m.TicketDetailsFunc(ctx, creds, number)
	}
	return nil, false, nil
}

func (m *mockAPI) UpdateAvailable(ctx context.Context, creds company.Credentials, number string) (bool, error) {
	if m.UpdateAvailableFunc != nil {
		return m.UpdateAvailableFunc(ctx, creds, number)
	}
	return false, nil
}

func (m *mockAPI) TicketResponses(ctx context.Context, creds company.Credentials, number string) (json.RawMessage, error) {
	if m.TicketResponsesFunc != nil {
		return m.TicketResponsesFunc(ctx, creds, number)
	}
	return nil, nil
}

// passTxManager runs the function directly; the mocks carry no transactions.
type passTxManager struct{}

func (passTxManager) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

// plainDecrypter passes stored passwords through unchanged.
type plainDecrypter struct{}

func (plainDecrypter) Decrypt(ciphertext string) (string, error) { return ciphertext, nil }

// memTicketStore is a stateful TicketRepository for idempotence tests. Only
// the reconciliation methods are backed by real state; the rest fall through
// to the embedded mock defaults.
type memTicketStore struct {
	mockTicketRepo

	mu      sync.Mutex
	nextID  uint
	records map[string]*ticket.Record

	inserts int
	updates int
}

func newMemTicketStore() *memTicketStore {
	return &memTicketStore{nextID: 1, records: make(map[string]*ticket.Record)}
}

func (s *memTicketStore) FindByNumber(ctx context.Context, number string) (*ticket.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.records[number]
	if !ok {
		return nil, errors.NewNotFoundError("ticket not found")
	}
	cp := *rec
	return &cp, nil
}

func (s *memTicketStore) Insert(ctx context.Context, rec *ticket.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec.ID = s.nextID
	s.nextID++
	cp := *rec
	s.records[rec.TicketNumber] = &cp
	s.inserts++
	return nil
}

func (s *memTicketStore) UpdateDescriptive(ctx context.Context, id uint, fresh *ticket.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, rec := range s.records {
		if rec.ID == id {
			cp := *fresh
			cp.ID = id
			s.records[rec.TicketNumber] = &cp
			s.updates++
			return nil
		}
	}
	return errors.NewNotFoundError("ticket not found")
}
