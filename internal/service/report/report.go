// internal/service/report/report.go
package report

import (
	"context"
	"fmt"
	"sort"
	"time"

	"checkout-service/internal/domain/sale"
	"checkout-service/internal/pkg/cache"
	xerrors "checkout-service/internal/pkg/errors"

	"go.uber.org/zap"
)

type SaleSource interface {
	FindPaidBetween(ctx context.Context, sellerID int64, from, to time.Time) ([]sale.Sale, error)
}

// DayBucket aggregates paid sales for one calendar day.
type DayBucket struct {
	Date              string `json:"date"` // YYYY-MM-DD
	Sales             int64  `json:"sales"`
	RevenueInCents    int64  `json:"revenue_in_cents"`
	CommissionInCents int64  `json:"commission_in_cents"`
}

// TopProduct is one entry of the best-sellers ranking.
type TopProduct struct {
	ProductID      int64  `json:"product_id"`
	Name           string `json:"name"`
	UnitsSold      int64  `json:"units_sold"`
	RevenueInCents int64  `json:"revenue_in_cents"`
}

// Summary is the seller dashboard payload.
type Summary struct {
	From                 string       `json:"from"`
	To                   string       `json:"to"`
	TotalSales           int64        `json:"total_sales"`
	TotalRevenueInCents  int64        `json:"total_revenue_in_cents"`
	CommissionInCents    int64        `json:"commission_in_cents"`
	AvgTicketInCents     int64        `json:"avg_ticket_in_cents"`
	UpsellRevenueInCents int64        `json:"upsell_revenue_in_cents"`
	Days                 []DayBucket  `json:"days"`
	TopProducts          []TopProduct `json:"top_products"`
}

// Service aggregates paid sales into dashboard summaries, cached per seller
// and range. The cache is invalidated when a sale for that seller is paid.
type Service struct {
	sales  SaleSource
	cache  *cache.TTLCache
	logger *zap.Logger
}

func NewService(sales SaleSource, c *cache.TTLCache, logger *zap.Logger) *Service {
	return &Service{sales: sales, cache: c, logger: logger}
}

const maxRangeDays = 366

// Summary computes (or returns cached) aggregates for [from, to]. Both
// bounds are dates; the upper bound is inclusive.
func (s *Service) Summary(ctx context.Context, sellerID int64, from, to time.Time) (*Summary, error) {
	from = from.UTC().Truncate(24 * time.Hour)
	to = to.UTC().Truncate(24 * time.Hour)
	if to.Before(from) {
		return nil, xerrors.Wrap(xerrors.ErrInvalidInput, "end date is before start date")
	}
	if to.Sub(from) > maxRangeDays*24*time.Hour {
		return nil, xerrors.Wrap(xerrors.ErrInvalidInput, "date range is too large")
	}

	key := fmt.Sprintf("report:%d:%s:%s", sellerID, from.Format("2006-01-02"), to.Format("2006-01-02"))
	if v, ok := s.cache.Get(key); ok {
		return v.(*Summary), nil
	}

	sales, err := s.sales.FindPaidBetween(ctx, sellerID, from, to.Add(24*time.Hour))
	if err != nil {
		return nil, fmt.Errorf("failed to load paid sales: %w", err)
	}

	summary := aggregate(from, to, sales)
	s.cache.Set(key, summary)
	return summary, nil
}

// InvalidateSeller drops every cached range for one seller.
func (s *Service) InvalidateSeller(sellerID int64) {
	s.cache.InvalidatePrefix(fmt.Sprintf("report:%d:", sellerID))
}

func aggregate(from, to time.Time, sales []sale.Sale) *Summary {
	sum := &Summary{
		From: from.Format("2006-01-02"),
		To:   to.Format("2006-01-02"),
	}

	byDay := map[string]*DayBucket{}
	byProduct := map[int64]*TopProduct{}

	for i := range sales {
		sl := &sales[i]
		sum.TotalSales++
		sum.TotalRevenueInCents += sl.TotalAmountInCents
		sum.CommissionInCents += sl.CommissionInCents
		if sl.UpsellAmountInCents.Valid {
			sum.UpsellRevenueInCents += sl.UpsellAmountInCents.Int64
			sum.TotalRevenueInCents += sl.UpsellAmountInCents.Int64
		}

		day := sl.PaidAt.Time.UTC().Format("2006-01-02")
		b, ok := byDay[day]
		if !ok {
			b = &DayBucket{Date: day}
			byDay[day] = b
		}
		b.Sales++
		b.RevenueInCents += sl.TotalAmountInCents
		b.CommissionInCents += sl.CommissionInCents

		for _, it := range sl.Items {
			p, ok := byProduct[it.ProductID]
			if !ok {
				p = &TopProduct{ProductID: it.ProductID, Name: it.Name}
				byProduct[it.ProductID] = p
			}
			qty := int64(it.Quantity)
			if qty < 1 {
				qty = 1
			}
			p.UnitsSold += qty
			p.RevenueInCents += it.PriceInCents * qty
		}
	}

	if sum.TotalSales > 0 {
		sum.AvgTicketInCents = sum.TotalRevenueInCents / sum.TotalSales
	}

	sum.Days = make([]DayBucket, 0, len(byDay))
	for _, b := range byDay {
		sum.Days = append(sum.Days, *b)
	}
	sort.Slice(sum.Days, func(i, j int) bool { return sum.Days[i].Date < sum.Days[j].Date })

	sum.TopProducts = make([]TopProduct, 0, len(byProduct))
	for _, p := range byProduct {
		sum.TopProducts = append(sum.TopProducts, *p)
	}
	sort.Slice(sum.TopProducts, func(i, j int) bool {
		if sum.TopProducts[i].RevenueInCents != sum.TopProducts[j].RevenueInCents {
			return sum.TopProducts[i].RevenueInCents > sum.TopProducts[j].RevenueInCents
		}
		return sum.TopProducts[i].ProductID < sum.TopProducts[j].ProductID
	})
	if len(sum.TopProducts) > 10 {
		sum.TopProducts = sum.TopProducts[:10]
	}

	return sum
}
