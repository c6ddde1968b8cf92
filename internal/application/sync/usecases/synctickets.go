package usecases

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/diglink-inc/diglink/internal/domain/company"
	"github.com/diglink-inc/diglink/internal/domain/ticket"
	"github.com/diglink-inc/diglink/internal/shared/config"
	"github.com/diglink-inc/diglink/internal/shared/errors"
	"github.com/diglink-inc/diglink/internal/shared/logger"
)

// SyncStats is the aggregate outcome of one sync invocation. Errors holds
// human-readable descriptions of every isolated failure; the run itself only
// fails when nothing could proceed at all.
type SyncStats struct {
	CompaniesProcessed int `json:"companies_processed"`
	CompaniesFailed    int `json:"companies_failed"`

	TicketsAdded   int `json:"tickets_added"`
	TicketsUpdated int `json:"tickets_updated"`
	TicketsSkipped int `json:"tickets_skipped"`

	OrphansLinked   int `json:"orphans_linked"`
	UpdatableMarked int `json:"updatable_marked"`

	ResponsesSynced int `json:"responses_synced"`
	ResponsesFailed int `json:"responses_failed"`

	Errors []string `json:"errors,omitempty"`

	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
}

// SyncTicketsUseCase runs the full pipeline: per-company paginated ingest
// with change detection, then exactly one orphan-link pass, one updatable
// scan, and one response refresh pass over the union of all companies.
//
// Failure isolation is layered: a bad ticket never kills its company's pass,
// and a failed company never kills the run. Every isolated failure lands in
// SyncStats.Errors.
type SyncTicketsUseCase struct {
	companyRepo CompanyRepository
	ticketRepo  TicketRepository
	api         TicketAPI
	decrypter   CredentialDecrypter

	linker    *LinkOrphansUseCase
	scanner   *ScanUpdatableUseCase
	responses *SyncResponsesUseCase

	daysBack    int
	pageSize    int
	pageDelay   time.Duration
	ticketDelay time.Duration

	logger logger.Interface

	// now is swappable in tests.
	now func() time.Time
}

func NewSyncTicketsUseCase(
	companyRepo CompanyRepository,
	ticketRepo TicketRepository,
	api TicketAPI,
	decrypter CredentialDecrypter,
	linker *LinkOrphansUseCase,
	scanner *ScanUpdatableUseCase,
	responses *SyncResponsesUseCase,
	cfg *config.SyncConfig,
	logger logger.Interface,
) *SyncTicketsUseCase {
	return &SyncTicketsUseCase{
		companyRepo: companyRepo,
		ticketRepo:  ticketRepo,
		api:         api,
		decrypter:   decrypter,
		linker:      linker,
		scanner:     scanner,
		responses:   responses,
		daysBack:    cfg.DaysBack,
		pageSize:    cfg.PageSize,
		pageDelay:   cfg.PageDelay(),
		ticketDelay: cfg.TicketDelay(),
		logger:      logger,
		now:         time.Now,
	}
}

func (uc *SyncTicketsUseCase) Execute(ctx context.Context) (*SyncStats, error) {
	stats := &SyncStats{StartedAt: uc.now().UTC()}
	defer func() { stats.FinishedAt = uc.now().UTC() }()

	companies, err := uc.companyRepo.ListSyncEligible(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list companies: %w", err)
	}
	uc.logger.Infow("starting ticket sync", "companies", len(companies))

	end := uc.now()
	start := end.AddDate(0, 0, -uc.daysBack)

	credsByCompany := make(map[uint]company.Credentials, len(companies))
	for _, comp := range companies {
		creds, err := uc.credentialsFor(comp)
		if err != nil {
			stats.CompaniesFailed++
			stats.Errors = append(stats.Errors,
				fmt.Sprintf("company %d: %v", comp.ID, err))
			uc.logger.Errorw("skipping company, credentials unusable",
				"company_id", comp.ID,
				"error", err,
			)
			continue
		}
		credsByCompany[comp.ID] = creds

		if err := uc.syncCompany(ctx, creds, start, end, stats); err != nil {
			if ctx.Err() != nil {
				return stats, err
			}
			stats.CompaniesFailed++
			stats.Errors = append(stats.Errors,
				fmt.Sprintf("company %d: %v", comp.ID, err))
			uc.logger.Errorw("company sync failed",
				"company_id", comp.ID,
				"error", err,
			)
			continue
		}
		stats.CompaniesProcessed++
	}

	// The post-passes operate on the union of this run's writes, so they
	// run exactly once, strictly after every company pass.
	if linkRes, err := uc.linker.Execute(ctx); err != nil {
		stats.Errors = append(stats.Errors, fmt.Sprintf("orphan linking: %v", err))
	} else {
		stats.OrphansLinked = linkRes.Linked
	}

	if scanRes, err := uc.scanner.Execute(ctx, credsByCompany); err != nil {
		stats.Errors = append(stats.Errors, fmt.Sprintf("updatable scan: %v", err))
	} else {
		stats.UpdatableMarked = scanRes.Marked
	}

	for companyID, creds := range credsByCompany {
		respRes, err := uc.responses.Execute(ctx, creds)
		if respRes != nil {
			stats.ResponsesSynced += respRes.Synced
			stats.ResponsesFailed += respRes.Failed
		}
		if err != nil {
			if ctx.Err() != nil {
				return stats, err
			}
			stats.Errors = append(stats.Errors,
				fmt.Sprintf("company %d responses: %v", companyID, err))
		}
	}

	uc.logger.Infow("ticket sync finished",
		"companies_processed", stats.CompaniesProcessed,
		"companies_failed", stats.CompaniesFailed,
		"added", stats.TicketsAdded,
		"updated", stats.TicketsUpdated,
		"skipped", stats.TicketsSkipped,
		"orphans_linked", stats.OrphansLinked,
		"updatable_marked", stats.UpdatableMarked,
		"errors", len(stats.Errors),
	)
	return stats, nil
}

func (uc *SyncTicketsUseCase) credentialsFor(comp *company.Company) (company.Credentials, error) {
	if !comp.SyncEligible() {
		return company.Credentials{}, errors.NewCredentialsMissingError("company has no bluestakes credentials")
	}
	password, err := uc.decrypter.Decrypt(comp.EncryptedPassword)
	if err != nil {
		return company.Credentials{}, err
	}
	return company.Credentials{
		CompanyID: comp.ID,
		Username:  comp.Username,
		Password:  password,
	}, nil
}

// syncCompany walks the search pages for one company's window. Pagination
// ends at the first short page.
func (uc *SyncTicketsUseCase) syncCompany(ctx context.Context, creds company.Credentials, start, end time.Time, stats *SyncStats) error {
	offset := 0
	for {
		page, err := uc.api.SearchPage(ctx, creds, ticket.SearchQuery{
			Start:  start,
			End:    end,
			Limit:  uc.pageSize,
			Offset: offset,
		})
		if err != nil {
			return fmt.Errorf("search at offset %d: %w", offset, err)
		}

		for _, raw := range page {
			if err := uc.processTicket(ctx, creds, raw, stats); err != nil {
				if ctx.Err() != nil {
					return err
				}
				stats.Errors = append(stats.Errors,
					fmt.Sprintf("company %d: %v", creds.CompanyID, err))
			}
			if err := sleep(ctx, uc.ticketDelay); err != nil {
				return err
			}
		}

		if len(page) < uc.pageSize {
			return nil
		}
		offset += uc.pageSize

		if err := sleep(ctx, uc.pageDelay); err != nil {
			return err
		}
	}
}

// processTicket reconciles one search hit: fetch the full payload, transform,
// then insert, refresh, or skip via change detection.
func (uc *SyncTicketsUseCase) processTicket(ctx context.Context, creds company.Credentials, raw json.RawMessage, stats *SyncStats) error {
	summary, err := ticket.ParsePayload(raw)
	if err != nil {
		return err
	}

	payload := raw
	if detail, found, err := uc.api.TicketDetails(ctx, creds, summary.Ticket); err != nil {
		return fmt.Errorf("ticket %s details: %w", summary.Ticket, err)
	} else if found {
		payload = detail
	}

	parsed, err := ticket.ParsePayload(payload)
	if err != nil {
		return err
	}

	fresh, warnings, err := ticket.Transform(parsed, creds.CompanyID, uc.now())
	if err != nil {
		return err
	}
	for _, warn := range warnings {
		uc.logger.Warnw("ticket payload oddity",
			"ticket_number", fresh.TicketNumber,
			"detail", warn,
		)
	}

	existing, err := uc.ticketRepo.FindByNumber(ctx, fresh.TicketNumber)
	if err != nil {
		if errors.IsNotFoundError(err) {
			if err := uc.ticketRepo.Insert(ctx, fresh); err != nil {
				return err
			}
			stats.TicketsAdded++
			return nil
		}
		return err
	}

	if ticket.NeedsUpdate(existing, fresh) {
		if err := uc.ticketRepo.UpdateDescriptive(ctx, existing.ID, fresh); err != nil {
			return err
		}
		stats.TicketsUpdated++
		return nil
	}

	stats.TicketsSkipped++
	return nil
}

// sleep waits for d or until the context ends. A zero delay never touches
// the timer.
func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
