package importer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/FinanceTrackerAP/FinanceTracker/internal/errmsg"
	"github.com/FinanceTrackerAP/FinanceTracker/internal/identity"
	"github.com/FinanceTrackerAP/FinanceTracker/internal/transaction"
)

//go:generate mockgen -source=service.go -destination=creator_mock.go -package=importer
type Creator interface {
	Create(ctx context.Context, tx *transaction.Transaction) (string, error)
}

type Service struct {
	parser  *Parser
	creator Creator
}

func NewService(creator Creator, loc *time.Location) *Service {
	return &Service{
		parser:  NewParser(loc),
		creator: creator,
	}
}

// Import stores every valid row of r as a transaction of businessID. Rows
// that fail validation or cannot be stored are listed in the report; the
// rest are still imported. A missing session or a canceled context aborts
// the import; the report then lists what was stored before the abort.
func (s *Service) Import(ctx context.Context, businessID string, r io.Reader) (*Report, error) {
	batch, err := s.parser.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse import: %w", err)
	}

	report := &Report{
		Charset:  batch.Charset,
		Imported: []string{},
		Rejected: batch.Rejected,
	}

	for _, d := range batch.Drafts {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		tx := transaction.New()
		tx.BusinessID = businessID
		tx.Type = d.Type
		tx.Amount = d.Amount
		tx.Description = d.Description
		tx.Category = d.Category
		tx.Date = d.Date

		id, err := s.creator.Create(ctx, tx)
		if errors.Is(err, identity.ErrNoSession) {
			return report, err
		}

		if err != nil {
			slog.WarnContext(ctx, "import row failed", "line", d.Line, "error", err)

			report.Rejected = append(report.Rejected, Rejection{Line: d.Line, Message: errmsg.Translate(err.Error())})

			continue
		}

		report.Imported = append(report.Imported, id)
	}

	if report.Rejected == nil {
		report.Rejected = []Rejection{}
	}

	slog.InfoContext(ctx, "import finished",
		"business_id", businessID,
		"charset", report.Charset,
		"imported", len(report.Imported),
		"rejected", len(report.Rejected),
	)

	return report, nil
}
