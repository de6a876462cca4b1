package repository

import (
	"sort"
	"time"

	"go-grain-trade/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// AmountCount is a summed amount plus the number of bills behind it.
type AmountCount struct {
	Amount decimal.Decimal `json:"amount"`
	Count  int64           `json:"count"`
}

// RecentBill is a trimmed bill row for dashboard listings.
type RecentBill struct {
	ID         uuid.UUID       `json:"id"`
	BillNumber string          `json:"bill_number"`
	PartyName  string          `json:"party_name"` // supplier or buyer
	Amount     decimal.Decimal `json:"amount"`
	Date       time.Time       `json:"date"`
}

// DashboardSummary backs the dashboard landing page.
type DashboardSummary struct {
	MonthlySales     AmountCount     `json:"monthly_sales"`
	MonthlyPurchases AmountCount     `json:"monthly_purchases"`
	PendingIncoming  decimal.Decimal `json:"pending_incoming"` // unpaid sales
	PendingOutgoing  decimal.Decimal `json:"pending_outgoing"` // unpaid purchase remainder
	RecentSales      []RecentBill    `json:"recent_sales"`
	RecentPurchases  []RecentBill    `json:"recent_purchases"`
}

// StockMovementData is one day of bag flow for the movement chart.
type StockMovementData struct {
	Date     string `json:"date"`
	Inbound  int    `json:"inbound"`
	Outbound int    `json:"outbound"`
}

// Metrics is the all-time rollup for the metrics endpoint.
type Metrics struct {
	TotalPurchases  decimal.Decimal  `json:"total_purchases"`
	TotalSales      decimal.Decimal  `json:"total_sales"`
	TotalInventory  int              `json:"total_inventory"` // bags across all godowns
	GrainTotals     []GrainBagsTotal `json:"grain_totals"`
	RecentSales     []RecentBill     `json:"recent_sales"`
	RecentPurchases []RecentBill     `json:"recent_purchases"`
}

// GrainBagsTotal is total bags held per grain.
type GrainBagsTotal struct {
	GrainID   uuid.UUID `json:"grain_id"`
	TotalBags int       `json:"total_bags"`
}

type ReportRepository interface {
	DashboardSummary() (*DashboardSummary, error)
	StockMovement(startDate, endDate time.Time) ([]StockMovementData, error)
	Metrics() (*Metrics, error)
}

type reportRepo struct {
	db *gorm.DB
}

func NewReportRepo(db *gorm.DB) ReportRepository {
	return &reportRepo{db}
}

func (r *reportRepo) DashboardSummary() (*DashboardSummary, error) {
	now := time.Now().UTC()
	startOfMonth := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)

	summary := &DashboardSummary{}

	var err error
	if summary.MonthlySales, err = r.amountCount(&model.Sale{}, "sale_date >= ?", startOfMonth); err != nil {
		return nil, err
	}
	if summary.MonthlyPurchases, err = r.amountCount(&model.Purchase{}, "purchase_date >= ?", startOfMonth); err != nil {
		return nil, err
	}

	if err := r.db.Model(&model.Sale{}).
		Where("payment_status = ?", model.PaymentPending).
		Select("COALESCE(SUM(total_amount), 0)").
		Scan(&summary.PendingIncoming).Error; err != nil {
		return nil, err
	}
	if err := r.db.Model(&model.Purchase{}).
		Where("payment_status <> ?", model.PaymentPaid).
		Select("COALESCE(SUM(total_amount - paid_amount), 0)").
		Scan(&summary.PendingOutgoing).Error; err != nil {
		return nil, err
	}

	if summary.RecentSales, err = r.recentSales(5, nil); err != nil {
		return nil, err
	}
	if summary.RecentPurchases, err = r.recentPurchases(5, nil); err != nil {
		return nil, err
	}
	return summary, nil
}

// StockMovement aggregates daily inbound (purchase) and outbound (sale)
// bags for the chart range.
func (r *reportRepo) StockMovement(startDate, endDate time.Time) ([]StockMovementData, error) {
	type dayBags struct {
		Date string
		Bags int
	}

	var inbound []dayBags
	err := r.db.Model(&model.Purchase{}).
		Select("DATE(purchase_date) AS date, COALESCE(SUM(number_of_bags), 0) AS bags").
		Where("purchase_date BETWEEN ? AND ?", startDate, endDate).
		Group("DATE(purchase_date)").
		Scan(&inbound).Error
	if err != nil {
		return nil, err
	}

	var outbound []dayBags
	err = r.db.Model(&model.Sale{}).
		Select("DATE(sale_date) AS date, COALESCE(SUM(number_of_bags), 0) AS bags").
		Where("sale_date BETWEEN ? AND ?", startDate, endDate).
		Group("DATE(sale_date)").
		Scan(&outbound).Error
	if err != nil {
		return nil, err
	}

	byDate := make(map[string]*StockMovementData)
	for _, row := range inbound {
		byDate[row.Date] = &StockMovementData{Date: row.Date, Inbound: row.Bags}
	}
	for _, row := range outbound {
		if entry, ok := byDate[row.Date]; ok {
			entry.Outbound = row.Bags
		} else {
			byDate[row.Date] = &StockMovementData{Date: row.Date, Outbound: row.Bags}
		}
	}

	dates := make([]string, 0, len(byDate))
	for d := range byDate {
		dates = append(dates, d)
	}
	sort.Strings(dates)

	result := make([]StockMovementData, 0, len(dates))
	for _, d := range dates {
		result = append(result, *byDate[d])
	}
	return result, nil
}

func (r *reportRepo) Metrics() (*Metrics, error) {
	metrics := &Metrics{}

	if err := r.db.Model(&model.Purchase{}).
		Select("COALESCE(SUM(total_amount), 0)").
		Scan(&metrics.TotalPurchases).Error; err != nil {
		return nil, err
	}
	if err := r.db.Model(&model.Sale{}).
		Select("COALESCE(SUM(total_amount), 0)").
		Scan(&metrics.TotalSales).Error; err != nil {
		return nil, err
	}
	if err := r.db.Model(&model.BagInventory{}).
		Select("COALESCE(SUM(number_of_bags), 0)").
		Scan(&metrics.TotalInventory).Error; err != nil {
		return nil, err
	}
	if err := r.db.Model(&model.BagInventory{}).
		Select("grain_id, COALESCE(SUM(number_of_bags), 0) AS total_bags").
		Group("grain_id").
		Scan(&metrics.GrainTotals).Error; err != nil {
		return nil, err
	}

	thirtyDaysAgo := time.Now().UTC().AddDate(0, 0, -30)
	var err error
	if metrics.RecentSales, err = r.recentSales(5, &thirtyDaysAgo); err != nil {
		return nil, err
	}
	if metrics.RecentPurchases, err = r.recentPurchases(5, &thirtyDaysAgo); err != nil {
		return nil, err
	}
	return metrics, nil
}

func (r *reportRepo) amountCount(mdl interface{}, dateCond string, since time.Time) (AmountCount, error) {
	var result AmountCount
	if err := r.db.Model(mdl).Where(dateCond, since).
		Select("COALESCE(SUM(total_amount), 0)").
		Scan(&result.Amount).Error; err != nil {
		return result, err
	}
	err := r.db.Model(mdl).Where(dateCond, since).Count(&result.Count).Error
	return result, err
}

func (r *reportRepo) recentSales(limit int, since *time.Time) ([]RecentBill, error) {
	q := r.db.Model(&model.Sale{}).
		Select("id, bill_number, buyer_name AS party_name, total_amount AS amount, sale_date AS date").
		Order("created_at DESC").
		Limit(limit)
	if since != nil {
		q = q.Where("sale_date >= ?", *since)
	}
	var bills []RecentBill
	err := q.Scan(&bills).Error
	return bills, err
}

func (r *reportRepo) recentPurchases(limit int, since *time.Time) ([]RecentBill, error) {
	q := r.db.Model(&model.Purchase{}).
		Select("id, bill_number, supplier_name AS party_name, total_amount AS amount, purchase_date AS date").
		Order("created_at DESC").
		Limit(limit)
	if since != nil {
		q = q.Where("purchase_date >= ?", *since)
	}
	var bills []RecentBill
	err := q.Scan(&bills).Error
	return bills, err
}
