package types

import "time"

// Product is an inventory item. The backend emits Mongo-style "_id" while
// guest-local items use client-generated "id" values, so both are kept and
// EffectiveID resolves whichever is set.
type Product struct {
	ID                string    `json:"id,omitempty"`
	MongoID           string    `json:"_id,omitempty"`
	Name              string    `json:"name"`
	ProductNumber     string    `json:"productNumber,omitempty"`
	Barcode           string    `json:"barcode,omitempty"`
	Brand             string    `json:"brand,omitempty"`
	Category          string    `json:"category"`
	Quantity          int       `json:"quantity"`
	CostPrice         float64   `json:"costPrice"`
	SellingPrice      float64   `json:"sellingPrice"`
	LowStockThreshold int       `json:"lowStockThreshold,omitempty"`
	CreatedAt         time.Time `json:"createdAt,omitempty"`
}

// DefaultLowStockThreshold applies when a product does not carry its own.
const DefaultLowStockThreshold = 5

func (p *Product) EffectiveID() string {
	if p.MongoID != "" {
		return p.MongoID
	}
	return p.ID
}

// IsLowStock reports whether the product is at or below its threshold.
func (p *Product) IsLowStock() bool {
	threshold := p.LowStockThreshold
	if threshold == 0 {
		threshold = DefaultLowStockThreshold
	}
	return p.Quantity <= threshold
}

// SaleLine is one product line within a sale.
type SaleLine struct {
	ProductID   string  `json:"productId"`
	ProductName string  `json:"productName"`
	Quantity    int     `json:"quantity"`
	CostPrice   float64 `json:"costPrice"`
	SellingPrice float64 `json:"sellingPrice,omitempty"`
}

// Sale is a recorded sale with its revenue and profit totals.
type Sale struct {
	ID           string     `json:"id,omitempty"`
	MongoID      string     `json:"_id,omitempty"`
	Date         time.Time  `json:"date"`
	Products     []SaleLine `json:"products,omitempty"`
	TotalRevenue float64    `json:"totalRevenue"`
	TotalProfit  float64    `json:"totalProfit"`
}

func (s *Sale) EffectiveID() string {
	if s.MongoID != "" {
		return s.MongoID
	}
	return s.ID
}

// Expense is a recorded business expense.
type Expense struct {
	ID          string    `json:"id,omitempty"`
	MongoID     string    `json:"_id,omitempty"`
	Description string    `json:"description"`
	Category    string    `json:"category,omitempty"`
	Amount      float64   `json:"amount"`
	Date        time.Time `json:"date"`
}

func (e *Expense) EffectiveID() string {
	if e.MongoID != "" {
		return e.MongoID
	}
	return e.ID
}

// ProductHistoryEntry is one inventory audit event.
type ProductHistoryEntry struct {
	ID          string    `json:"id,omitempty"`
	ProductID   string    `json:"productId,omitempty"`
	ProductName string    `json:"productName,omitempty"`
	Action      string    `json:"action"`
	Timestamp   time.Time `json:"timestamp"`
}

// TopProduct is one entry of the best-sellers list in a report.
type TopProduct struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Quantity int     `json:"quantity"`
	Revenue  float64 `json:"revenue"`
}

// ReportSummary aggregates one calendar month of sales, expenses, and stock.
type ReportSummary struct {
	TotalSales    int          `json:"totalSales"`
	Revenue       float64      `json:"revenue"`
	Profit        float64      `json:"profit"`
	Expenses      float64      `json:"expenses"`
	NetProfit     float64      `json:"netProfit"`
	TopProducts   []TopProduct `json:"topProducts"`
	ProductsCount int          `json:"productsCount"`
}

// DashboardStats is the GET /dashboard/stats response.
type DashboardStats struct {
	TotalProducts int     `json:"totalProducts"`
	TotalSales    int     `json:"totalSales"`
	Revenue       float64 `json:"revenue"`
	LowStockCount int     `json:"lowStockCount"`
}
