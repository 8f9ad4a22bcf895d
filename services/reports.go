package services

import (
	"context"
	"sort"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/shopflow/shopflow-client/logger"
	"github.com/shopflow/shopflow-client/session"
	"github.com/shopflow/shopflow-client/types"
)

// topProductsLimit caps the best-sellers list in the monthly summary.
const topProductsLimit = 10

// ReportsAPI is the slice of the backend client the reports screen uses.
type ReportsAPI interface {
	ListSales(ctx context.Context) ([]types.Sale, error)
	ListProducts(ctx context.Context) ([]types.Product, error)
	ListExpenses(ctx context.Context) ([]types.Expense, error)
}

// ReportsService builds the monthly business summary. Guest sessions get a
// canned demo report and make no API calls.
type ReportsService struct {
	api      ReportsAPI
	sessions *session.Manager
	epoch    *ScreenEpoch
	now      func() time.Time
	log      *zap.SugaredLogger
}

func NewReportsService(api ReportsAPI, sessions *session.Manager, epoch *ScreenEpoch) *ReportsService {
	return &ReportsService{
		api:      api,
		sessions: sessions,
		epoch:    epoch,
		now:      time.Now,
		log:      logger.GetLogger(),
	}
}

// MonthlySummary aggregates the current calendar month. Sales, products, and
// expenses are fetched concurrently and joined before aggregation.
func (s *ReportsService) MonthlySummary(ctx context.Context, gen uint64) (*types.ReportSummary, error) {
	guest, err := s.sessions.IsGuestMode(ctx)
	if err != nil {
		return nil, err
	}
	if guest {
		return demoReport(), nil
	}

	var (
		sales    []types.Sale
		products []types.Product
		expenses []types.Expense
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		sales, err = s.api.ListSales(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		products, err = s.api.ListProducts(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		expenses, err = s.api.ListExpenses(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if err := s.epoch.Guard(gen); err != nil {
		return nil, err
	}

	summary := s.aggregate(sales, products, expenses)
	s.log.Debugw("Monthly summary built",
		"sales", summary.TotalSales,
		"revenue", summary.Revenue,
		"netProfit", summary.NetProfit)
	return summary, nil
}

func (s *ReportsService) aggregate(sales []types.Sale, products []types.Product, expenses []types.Expense) *types.ReportSummary {
	now := s.now()
	month, year := now.Month(), now.Year()
	sameMonth := func(t time.Time) bool {
		return t.Month() == month && t.Year() == year
	}

	var (
		totalSales      int
		revenue         float64
		profit          float64
		costOfGoodsSold float64
	)
	byProduct := make(map[string]*types.TopProduct)

	for _, sale := range sales {
		if !sameMonth(sale.Date) {
			continue
		}
		totalSales++
		revenue += sale.TotalRevenue
		profit += sale.TotalProfit

		for _, line := range sale.Products {
			costOfGoodsSold += line.CostPrice * float64(line.Quantity)

			entry, ok := byProduct[line.ProductID]
			if !ok {
				entry = &types.TopProduct{ID: line.ProductID, Name: line.ProductName}
				byProduct[line.ProductID] = entry
			}
			entry.Quantity += line.Quantity
			entry.Revenue += line.SellingPrice * float64(line.Quantity)
		}
	}

	var totalExpenses float64
	for _, expense := range expenses {
		if sameMonth(expense.Date) {
			totalExpenses += expense.Amount
		}
	}

	top := make([]types.TopProduct, 0, len(byProduct))
	for _, entry := range byProduct {
		top = append(top, *entry)
	}
	sort.Slice(top, func(i, j int) bool { return top[i].Revenue > top[j].Revenue })
	if len(top) > topProductsLimit {
		top = top[:topProductsLimit]
	}

	return &types.ReportSummary{
		TotalSales:    totalSales,
		Revenue:       revenue,
		Profit:        profit,
		Expenses:      totalExpenses + costOfGoodsSold,
		NetProfit:     profit - totalExpenses,
		TopProducts:   top,
		ProductsCount: len(products),
	}
}

// demoReport is the sample month shown to guests.
func demoReport() *types.ReportSummary {
	return &types.ReportSummary{
		TotalSales: 42,
		Revenue:    84200,
		Profit:     27800,
		Expenses:   31600,
		NetProfit:  -3800,
		TopProducts: []types.TopProduct{
			{ID: "demo-1", Name: "Carbon Fiber Sneaker", Quantity: 48, Revenue: 6192},
			{ID: "demo-2", Name: "Everyday Tote", Quantity: 92, Revenue: 5336},
			{ID: "demo-3", Name: "Minimal Watch", Quantity: 35, Revenue: 6965},
		},
		ProductsCount: 128,
	}
}
