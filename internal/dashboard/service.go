package dashboard

import (
	"context"
	"time"

	"storefront-be/internal/utils"

	"github.com/shopspring/decimal"
)

const (
	defaultSalesDays = 30
	maxSalesDays     = 365
)

type Service interface {
	Overview(ctx context.Context) (*Overview, error)
	Sales(ctx context.Context, days int) ([]DailySales, error)
	TopProducts(ctx context.Context, limit int) ([]TopProduct, error)
}

type service struct {
	repo              Repository
	lowStockThreshold int
	now               func() time.Time
}

func NewService(repo Repository, lowStockThreshold int) Service {
	return &service{repo: repo, lowStockThreshold: lowStockThreshold, now: time.Now}
}

func (s *service) Overview(ctx context.Context) (*Overview, error) {
	return s.repo.Overview(ctx, s.lowStockThreshold)
}

// Sales returns one entry per UTC day for the last days days, oldest first.
// Days without orders are reported with zero revenue.
func (s *service) Sales(ctx context.Context, days int) ([]DailySales, error) {
	if days == 0 {
		days = defaultSalesDays
	}
	if days < 1 || days > maxSalesDays {
		return nil, ErrInvalidRange
	}

	today := s.now().UTC().Truncate(24 * time.Hour)
	since := today.AddDate(0, 0, -(days - 1))

	rows, err := s.repo.Sales(ctx, since)
	if err != nil {
		return nil, err
	}

	byDay := make(map[string]DailySales, len(rows))
	for _, r := range rows {
		byDay[r.Day.UTC().Format(time.DateOnly)] = r
	}

	out := make([]DailySales, 0, days)
	for d := since; !d.After(today); d = d.AddDate(0, 0, 1) {
		entry, ok := byDay[d.Format(time.DateOnly)]
		if !ok {
			entry = DailySales{Revenue: decimal.Zero}
		}
		entry.Day = d
		out = append(out, entry)
	}
	return out, nil
}

func (s *service) TopProducts(ctx context.Context, limit int) ([]TopProduct, error) {
	_, limit, _ = utils.Pagination(1, limit, 10, 50)
	return s.repo.TopProducts(ctx, limit)
}
