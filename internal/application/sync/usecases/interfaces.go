// Package usecases contains the ticket synchronization pipeline: the
// per-company paginated sync, the orphan linker, the updatable-ticket
// scanner, and the response refresh pass.
package usecases

import (
	"context"
	"encoding/json"
	"time"

	"github.com/diglink-inc/diglink/internal/domain/company"
	"github.com/diglink-inc/diglink/internal/domain/ticket"
)

type CompanyRepository interface {
	ListSyncEligible(ctx context.Context) ([]*company.Company, error)
}

type TicketRepository interface {
	FindByNumber(ctx context.Context, number string) (*ticket.Record, error)
	Insert(ctx context.Context, rec *ticket.Record) error
	UpdateDescriptive(ctx context.Context, id uint, fresh *ticket.Record) error

	FindOrphans(ctx context.Context) ([]*ticket.Record, error)
	FindAssignedByNumber(ctx context.Context, companyID uint, number string) (*ticket.Record, error)
	AssignProject(ctx context.Context, id uint, projectID int64) error
	SetContinueUpdate(ctx context.Context, id uint, value bool) error

	FindUpdatableCandidates(ctx context.Context, from, to time.Time) ([]*ticket.Record, error)

	FindUnexpiredByCompany(ctx context.Context, companyID uint, now time.Time) ([]*ticket.Record, error)
	UpdateResponses(ctx context.Context, id uint, responses json.RawMessage, now time.Time) error
}

type UpdatableTicketRepository interface {
	Exists(ctx context.Context, ticketNumber string) (bool, error)
	Insert(ctx context.Context, mark *ticket.UpdatableMark) error
}

// TicketAPI is the authenticated BlueStakes surface the pipeline consumes.
type TicketAPI interface {
	SearchPage(ctx context.Context, creds company.Credentials, q ticket.SearchQuery) ([]json.RawMessage, error)
	TicketDetails(ctx context.Context, creds company.Credentials, number string) (json.RawMessage, bool, error)
	UpdateAvailable(ctx context.Context, creds company.Credentials, number string) (bool, error)
	TicketResponses(ctx context.Context, creds company.Credentials, number string) (json.RawMessage, error)
}

// CredentialDecrypter recovers the stored BlueStakes password.
type CredentialDecrypter interface {
	Decrypt(ciphertext string) (string, error)
}

// TransactionManager runs a function inside a database transaction; the
// repositories pick the transaction up from the context.
type TransactionManager interface {
	RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
