package reporting

import (
	"context"
	"errors"
	"time"

	"creator-platform/internal/callrequest"
	"creator-platform/internal/wallet"
)

var ErrInvalidRequest = errors.New("reporting: invalid request")

// AdminLedgerRef marks ledger entries created by manual admin adjustments.
const AdminLedgerRef = "admin_manual_credit"

// Repository abstracts data access for reporting. Implementations should
// query immutable sources when possible (wallet ledger, request records).

type Repository interface {
	ListRequests(ctx context.Context, creatorID string, from, to time.Time) ([]callrequest.CallRequest, error)
	ListLedger(ctx context.Context, userID string, from, to time.Time) ([]wallet.Ledger, error)
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service { return &Service{repo: repo} }

func (s *Service) RequestsSummary(ctx context.Context, req RequestsSummaryRequest) (RequestsSummary, error) {
	if req.CreatorID == "" {
		return RequestsSummary{}, ErrInvalidRequest
	}
	if req.Range.From.IsZero() || req.Range.To.IsZero() || !req.Range.To.After(req.Range.From) {
		return RequestsSummary{}, ErrInvalidRequest
	}
	if s.repo == nil {
		return RequestsSummary{}, errors.New("reporting: repository not configured")
	}

	rows, err := s.repo.ListRequests(ctx, req.CreatorID, req.Range.From, req.Range.To)
	if err != nil {
		return RequestsSummary{}, err
	}

	out := RequestsSummary{CreatorID: req.CreatorID}
	for _, r := range rows {
		out.TotalRequests++
		switch r.Status {
		case callrequest.StatusAccepted:
			out.AcceptedRequests++
			out.TotalBookedMinutes += r.DurationMinutes
		case callrequest.StatusDeclined:
			out.DeclinedRequests++
		case callrequest.StatusExpired:
			out.ExpiredRequests++
		case callrequest.StatusCancelled:
			out.CancelledRequests++
		case callrequest.StatusPending:
			out.PendingRequests++
		}
	}
	// Cancelled requests were accepted first; they count as decided accepts.
	decided := out.AcceptedRequests + out.CancelledRequests + out.DeclinedRequests + out.ExpiredRequests
	if decided > 0 {
		out.AcceptanceRate = float64(out.AcceptedRequests+out.CancelledRequests) / float64(decided)
	}
	return out, nil
}

func (s *Service) EarningsSummary(ctx context.Context, req EarningsSummaryRequest) (EarningsSummary, error) {
	if req.CreatorID == "" {
		return EarningsSummary{}, ErrInvalidRequest
	}
	if req.Range.From.IsZero() || req.Range.To.IsZero() || !req.Range.To.After(req.Range.From) {
		return EarningsSummary{}, ErrInvalidRequest
	}
	if s.repo == nil {
		return EarningsSummary{}, errors.New("reporting: repository not configured")
	}

	entries, err := s.repo.ListLedger(ctx, req.CreatorID, req.Range.From, req.Range.To)
	if err != nil {
		return EarningsSummary{}, err
	}

	out := EarningsSummary{CreatorID: req.CreatorID, Currency: wallet.TokenCurrency}
	for _, l := range entries {
		if l.AmountTokens > 0 {
			out.TotalCreditTokens += l.AmountTokens
		} else {
			out.TotalDebitTokens += -l.AmountTokens
		}

		if l.ExternalRef == AdminLedgerRef {
			out.AdminAdjustTokens += l.AmountTokens
		} else if l.AmountTokens > 0 {
			out.SessionEarningsTokens += l.AmountTokens
		}
	}
	out.NetTokens = out.TotalCreditTokens - out.TotalDebitTokens
	return out, nil
}
