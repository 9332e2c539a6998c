package domain

import "time"

// CattleLot is one purchased batch of animals, tracked from purchase
// confirmation through reception, confinement and sale.
type CattleLot struct {
	ID             int64     `json:"id" db:"id"`
	LotCode        string    `json:"lot_code" db:"lot_code"`
	VendorID       int64     `json:"vendor_id" db:"vendor_id"`
	PayerAccountID int64     `json:"payer_account_id" db:"payer_account_id"`
	CycleID        *int64    `json:"cycle_id" db:"cycle_id"`
	Status         LotStatus `json:"status" db:"status"`

	InitialQuantity int `json:"initial_quantity" db:"initial_quantity"`
	CurrentQuantity int `json:"current_quantity" db:"current_quantity"`
	DeathCount      int `json:"death_count" db:"death_count"`

	PurchaseWeight float64  `json:"purchase_weight" db:"purchase_weight"`
	ReceivedWeight *float64 `json:"received_weight" db:"received_weight"`
	AverageWeight  float64  `json:"average_weight" db:"average_weight"`

	CarcassYield   float64 `json:"carcass_yield" db:"carcass_yield"`
	PricePerArroba float64 `json:"price_per_arroba" db:"price_per_arroba"`
	PurchaseValue  float64 `json:"purchase_value" db:"purchase_value"`
	FreightCost    float64 `json:"freight_cost" db:"freight_cost"`
	Commission     float64 `json:"commission" db:"commission"`

	HealthCost      float64 `json:"health_cost" db:"health_cost"`
	FeedCost        float64 `json:"feed_cost" db:"feed_cost"`
	OperationalCost float64 `json:"operational_cost" db:"operational_cost"`
	TotalCost       float64 `json:"total_cost" db:"total_cost"`

	ExpectedGMD            *float64   `json:"expected_gmd" db:"expected_gmd"`
	TargetWeight           *float64   `json:"target_weight" db:"target_weight"`
	EstimatedSlaughterDate *time.Time `json:"estimated_slaughter_date" db:"estimated_slaughter_date"`

	WeightBreak         *float64    `json:"weight_break" db:"weight_break"`
	WeightBreakPct      *float64    `json:"weight_break_pct" db:"weight_break_pct"`
	WeightBreakSource   ValueSource `json:"weight_break_source" db:"weight_break_source"`
	TransportLoss       int         `json:"transport_loss" db:"transport_loss"`
	TransportLossSource ValueSource `json:"transport_loss_source" db:"transport_loss_source"`

	PurchaseDate  time.Time  `json:"purchase_date" db:"purchase_date"`
	ReceptionDate *time.Time `json:"reception_date" db:"reception_date"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// RecomputeTotalCost refreshes the derived total from the cost buckets.
func (l *CattleLot) RecomputeTotalCost() {
	l.TotalCost = l.PurchaseValue + l.FreightCost + l.Commission +
		l.HealthCost + l.FeedCost + l.OperationalCost
}

// CostPerKg returns the acquisition cost of one live kilogram, used to
// price mortality losses. Zero when the lot carries no weight.
func (l *CattleLot) CostPerKg() float64 {
	base := float64(l.InitialQuantity) * l.AverageWeight
	if base <= 0 {
		return 0
	}
	return l.TotalCost / base
}

// ValueSource records whether a stored value came from the caller or was
// derived by the engine.
type ValueSource string

const (
	SourceReported ValueSource = "reported"
	SourceComputed ValueSource = "computed"
)

// Pen is a physical enclosure with a fixed animal capacity.
type Pen struct {
	ID        int64     `json:"id" db:"id"`
	Code      string    `json:"code" db:"code"`
	Capacity  int       `json:"capacity" db:"capacity"`
	Status    PenStatus `json:"status" db:"status"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

type PenStatus string

const (
	PenAvailable   PenStatus = "AVAILABLE"
	PenOccupied    PenStatus = "OCCUPIED"
	PenMaintenance PenStatus = "MAINTENANCE"
)

// PenAllocation links a lot to a pen. Allocations are superseded, never
// mutated in place: re-allocation marks the old row REMOVED.
type PenAllocation struct {
	ID              int64            `json:"id" db:"id"`
	LotID           int64            `json:"lot_id" db:"lot_id"`
	PenID           int64            `json:"pen_id" db:"pen_id"`
	Quantity        int              `json:"quantity" db:"quantity"`
	PercentageOfLot float64          `json:"percentage_of_lot" db:"percentage_of_lot"`
	PercentageOfPen float64          `json:"percentage_of_pen" db:"percentage_of_pen"`
	AllocationDate  time.Time        `json:"allocation_date" db:"allocation_date"`
	RemovalDate     *time.Time       `json:"removal_date" db:"removal_date"`
	Status          AllocationStatus `json:"status" db:"status"`
}

type AllocationStatus string

const (
	AllocationActive  AllocationStatus = "ACTIVE"
	AllocationRemoved AllocationStatus = "REMOVED"
)

// MortalityRecord is one death event against a lot.
type MortalityRecord struct {
	ID            int64      `json:"id" db:"id"`
	LotID         int64      `json:"lot_id" db:"lot_id"`
	PenID         *int64     `json:"pen_id" db:"pen_id"`
	Quantity      int        `json:"quantity" db:"quantity"`
	DeathDate     time.Time  `json:"death_date" db:"death_date"`
	Cause         DeathCause `json:"cause" db:"cause"`
	EstimatedLoss float64    `json:"estimated_loss" db:"estimated_loss"`
	Notes         string     `json:"notes" db:"notes"`
	CreatedAt     time.Time  `json:"created_at" db:"created_at"`
}

type DeathCause string

const (
	CauseDisease   DeathCause = "DISEASE"
	CauseAccident  DeathCause = "ACCIDENT"
	CauseTransport DeathCause = "TRANSPORT"
	CausePredator  DeathCause = "PREDATOR"
	CauseUnknown   DeathCause = "UNKNOWN"
)

// MortalityStatistics is the aggregated reporting view over the register.
type MortalityStatistics struct {
	TotalDeaths   int                `json:"total_deaths"`
	TotalLoss     float64            `json:"total_loss"`
	MortalityRate float64            `json:"mortality_rate"`
	ByCause       map[DeathCause]int `json:"by_cause"`
	ByPen         map[int64]int      `json:"by_pen"`
}

// FinanceEntry is one append-only cash-flow line: an expense or a revenue.
type FinanceEntry struct {
	ID             int64         `json:"id" db:"id"`
	Kind           EntryKind     `json:"kind" db:"kind"`
	Category       string        `json:"category" db:"category"`
	Description    string        `json:"description" db:"description"`
	Amount         float64       `json:"amount" db:"amount"`
	DueDate        time.Time     `json:"due_date" db:"due_date"`
	SettledDate    *time.Time    `json:"settled_date" db:"settled_date"`
	Status         EntryStatus   `json:"status" db:"status"`
	LotID          *int64        `json:"lot_id" db:"lot_id"`
	PayerAccountID *int64        `json:"payer_account_id" db:"payer_account_id"`
	CreatedAt      time.Time     `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time     `json:"updated_at" db:"updated_at"`
}

type EntryKind string

const (
	KindExpense EntryKind = "EXPENSE"
	KindRevenue EntryKind = "REVENUE"
)

type EntryStatus string

const (
	EntryPending   EntryStatus = "PENDING"
	EntryPaid      EntryStatus = "PAID"
	EntryReceived  EntryStatus = "RECEIVED"
	EntryCancelled EntryStatus = "CANCELLED"
)

// Settled reports whether the entry counts toward realized statements.
func (e *FinanceEntry) Settled() bool {
	return e.Status == EntryPaid || e.Status == EntryReceived
}

// Overdue is a derived view: still pending past its due date. It is never
// stored as a status.
func (e *FinanceEntry) Overdue(now time.Time) bool {
	return e.Status == EntryPending && e.DueDate.Before(now)
}

// Expense categories recognized by the DRE cost buckets.
const (
	CategoryAnimalPurchase = "animal_purchase"
	CategoryFreight        = "freight"
	CategoryCommission     = "commission"
	CategoryFeed           = "feed"
	CategoryHealth         = "health"
	CategoryLabor          = "labor"
	CategoryOtherCost      = "other_cost"
	CategoryAdmin          = "admin"
	CategorySales          = "sales"
	CategoryFinancial      = "financial"
	CategoryOtherExpense   = "other_expense"
	CategoryCattleSale     = "cattle_sale"
	CategoryOtherRevenue   = "other_revenue"
)

// DREStatement is one monthly income statement, derived entirely from the
// finance ledger and the mortality register. Grain: (reference_month, cycle_id),
// cycle_id nullable and participating in uniqueness. Rows are rebuilt on
// demand; regeneration overwrites every derived field.
type DREStatement struct {
	ID             int64     `json:"id" db:"id"`
	ReferenceMonth time.Time `json:"reference_month" db:"reference_month"`
	CycleID        *int64    `json:"cycle_id" db:"cycle_id"`

	GrossRevenue float64 `json:"gross_revenue" db:"gross_revenue"`
	Deductions   float64 `json:"deductions" db:"deductions"`
	NetRevenue   float64 `json:"net_revenue" db:"net_revenue"`

	AnimalCost float64 `json:"animal_cost" db:"animal_cost"`
	FeedCost   float64 `json:"feed_cost" db:"feed_cost"`
	HealthCost float64 `json:"health_cost" db:"health_cost"`
	LaborCost  float64 `json:"labor_cost" db:"labor_cost"`
	OtherCosts float64 `json:"other_costs" db:"other_costs"`
	TotalCosts float64 `json:"total_costs" db:"total_costs"`

	GrossProfit float64 `json:"gross_profit" db:"gross_profit"`
	GrossMargin float64 `json:"gross_margin" db:"gross_margin"`

	AdminExpenses     float64 `json:"admin_expenses" db:"admin_expenses"`
	SalesExpenses     float64 `json:"sales_expenses" db:"sales_expenses"`
	FinancialExpenses float64 `json:"financial_expenses" db:"financial_expenses"`
	OtherExpenses     float64 `json:"other_expenses" db:"other_expenses"`
	TotalExpenses     float64 `json:"total_expenses" db:"total_expenses"`

	OperationalProfit float64 `json:"operational_profit" db:"operational_profit"`
	OperationalMargin float64 `json:"operational_margin" db:"operational_margin"`
	NetProfit         float64 `json:"net_profit" db:"net_profit"`
	NetMargin         float64 `json:"net_margin" db:"net_margin"`

	GeneratedAt time.Time `json:"generated_at" db:"generated_at"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}

// HealthRecord is a sanitary protocol cost applied to a lot, scaled by the
// number of animals treated.
type HealthRecord struct {
	ID            int64     `json:"id" db:"id"`
	LotID         int64     `json:"lot_id" db:"lot_id"`
	Protocol      string    `json:"protocol" db:"protocol"`
	CostPerAnimal float64   `json:"cost_per_animal" db:"cost_per_animal"`
	Quantity      int       `json:"quantity" db:"quantity"`
	TotalCost     float64   `json:"total_cost" db:"total_cost"`
	AppliedAt     time.Time `json:"applied_at" db:"applied_at"`
}

// WeightReading is one weighing event for a lot.
type WeightReading struct {
	ID            int64     `json:"id" db:"id"`
	LotID         int64     `json:"lot_id" db:"lot_id"`
	TotalWeight   float64   `json:"total_weight" db:"total_weight"`
	Quantity      int       `json:"quantity" db:"quantity"`
	AverageWeight float64   `json:"average_weight" db:"average_weight"`
	MeasuredAt    time.Time `json:"measured_at" db:"measured_at"`
	Source        string    `json:"source" db:"source"`
}

// PayerAccount is a bank/cash account expenses are drawn against.
type PayerAccount struct {
	ID        int64     `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	Bank      string    `json:"bank" db:"bank"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// PenOccupancy is the read view of a pen's current load.
type PenOccupancy struct {
	PenID     int64 `json:"pen_id"`
	Capacity  int   `json:"capacity"`
	Occupied  int   `json:"occupied"`
	Available int   `json:"available"`
}

// CashFlowSummary aggregates ledger entries over a date window.
type CashFlowSummary struct {
	TotalInflow  float64 `json:"total_inflow"`
	TotalOutflow float64 `json:"total_outflow"`
	Pending      float64 `json:"pending"`
	Overdue      float64 `json:"overdue"`
	Balance      float64 `json:"balance"`
}
