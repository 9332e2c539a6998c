package domain

import "time"

// CreateLotInput is the validated command to confirm a lot purchase.
type CreateLotInput struct {
	VendorID        int64      `json:"vendor_id"`
	PayerAccountID  int64      `json:"payer_account_id"`
	CycleID         *int64     `json:"cycle_id"`
	InitialQuantity int        `json:"initial_quantity"`
	PurchaseWeight  float64    `json:"purchase_weight"`
	CarcassYield    float64    `json:"carcass_yield"`
	PricePerArroba  float64    `json:"price_per_arroba"`
	FreightCost     float64    `json:"freight_cost"`
	Commission      float64    `json:"commission"`
	ExpectedGMD     *float64   `json:"expected_gmd"`
	TargetWeight    *float64   `json:"target_weight"`
	PurchaseDate    *time.Time `json:"purchase_date"`
}

// Validate applies the boundary checks; the engine only ever sees inputs
// that passed them.
func (in *CreateLotInput) Validate() error {
	switch {
	case in.InitialQuantity <= 0:
		return &ValidationError{Field: "initial_quantity", Reason: "must be positive"}
	case in.PurchaseWeight <= 0:
		return &ValidationError{Field: "purchase_weight", Reason: "must be positive"}
	case in.CarcassYield <= 0 || in.CarcassYield > 100:
		return &ValidationError{Field: "carcass_yield", Reason: "must be in (0,100]"}
	case in.PricePerArroba <= 0:
		return &ValidationError{Field: "price_per_arroba", Reason: "must be positive"}
	case in.VendorID == 0:
		return &ValidationError{Field: "vendor_id", Reason: "vendor relationship is required"}
	case in.PayerAccountID == 0:
		return &ValidationError{Field: "payer_account_id", Reason: "payer account relationship is required"}
	case in.FreightCost < 0 || in.Commission < 0:
		return &ValidationError{Field: "costs", Reason: "must not be negative"}
	}
	return nil
}

// ReceptionInput carries the reception weighing and its optional
// overrides. Omitted values fall back to computed ones and are marked as
// such on the lot.
type ReceptionInput struct {
	ReceivedWeight      float64    `json:"received_weight"`
	ActualQuantity      *int       `json:"actual_quantity"`
	WeightBreakPct      *float64   `json:"weight_break_pct"`
	TransportLoss       *int       `json:"transport_loss"`
	ReceptionDate       *time.Time `json:"reception_date"`
	PenIDs              []int64    `json:"pen_ids"`
	CreateExpenses      *bool      `json:"create_expenses"`
	ApplyHealthProtocol *bool      `json:"apply_health_protocol"`
	FreightDueDate      *time.Time `json:"freight_due_date"`
	CommissionDueDate   *time.Time `json:"commission_due_date"`
	PurchaseDueDate     *time.Time `json:"purchase_due_date"`
	HealthCostPerAnimal *float64   `json:"health_cost_per_animal"`
}

func (in *ReceptionInput) Validate() error {
	if in.ReceivedWeight <= 0 {
		return &ValidationError{Field: "received_weight", Reason: "must be positive"}
	}
	if in.ActualQuantity != nil && *in.ActualQuantity <= 0 {
		return &ValidationError{Field: "actual_quantity", Reason: "must be positive"}
	}
	if in.TransportLoss != nil && *in.TransportLoss < 0 {
		return &ValidationError{Field: "transport_loss", Reason: "must not be negative"}
	}
	return nil
}

// AllocationInput is one pen assignment within a confinement request.
type AllocationInput struct {
	PenID    int64 `json:"pen_id"`
	Quantity int   `json:"quantity"`
}

// ConfinementInput distributes a lot across pens.
type ConfinementInput struct {
	Allocations []AllocationInput `json:"allocations"`
	Notes       string            `json:"notes"`
}

func (in *ConfinementInput) Validate() error {
	if len(in.Allocations) == 0 {
		return &ValidationError{Field: "allocations", Reason: "at least one pen is required"}
	}
	for _, a := range in.Allocations {
		if a.PenID == 0 {
			return &ValidationError{Field: "allocations", Reason: "pen id is required"}
		}
		if a.Quantity <= 0 {
			return &ValidationError{Field: "allocations", Reason: "quantity must be positive"}
		}
	}
	return nil
}

// MortalityInput registers a death event against a lot.
type MortalityInput struct {
	LotID         int64      `json:"lot_id"`
	PenID         *int64     `json:"pen_id"`
	Quantity      int        `json:"quantity"`
	DeathDate     *time.Time `json:"death_date"`
	Cause         DeathCause `json:"cause"`
	EstimatedLoss *float64   `json:"estimated_loss"`
	Notes         string     `json:"notes"`
}

func (in *MortalityInput) Validate() error {
	if in.LotID == 0 {
		return &ValidationError{Field: "lot_id", Reason: "is required"}
	}
	if in.Quantity <= 0 {
		return &ValidationError{Field: "quantity", Reason: "must be positive"}
	}
	return nil
}

// MortalityFilter scopes the statistics aggregation.
type MortalityFilter struct {
	LotID *int64     `json:"lot_id"`
	PenID *int64     `json:"pen_id"`
	Cause DeathCause `json:"cause"`
	From  *time.Time `json:"from"`
	To    *time.Time `json:"to"`
}

// CreateEntryInput is the command for a manual ledger entry.
type CreateEntryInput struct {
	Kind           EntryKind  `json:"kind"`
	Category       string     `json:"category"`
	Description    string     `json:"description"`
	Amount         float64    `json:"amount"`
	DueDate        time.Time  `json:"due_date"`
	LotID          *int64     `json:"lot_id"`
	PayerAccountID *int64     `json:"payer_account_id"`
}

func (in *CreateEntryInput) Validate() error {
	if in.Kind != KindExpense && in.Kind != KindRevenue {
		return &ValidationError{Field: "kind", Reason: "must be EXPENSE or REVENUE"}
	}
	if in.Amount <= 0 {
		return &ValidationError{Field: "amount", Reason: "must be positive"}
	}
	if in.Category == "" {
		return &ValidationError{Field: "category", Reason: "is required"}
	}
	if in.DueDate.IsZero() {
		return &ValidationError{Field: "due_date", Reason: "is required"}
	}
	return nil
}

// EntryFilter scopes ledger listings.
type EntryFilter struct {
	Kind   EntryKind   `json:"kind"`
	Status EntryStatus `json:"status"`
	LotID  *int64      `json:"lot_id"`
	From   *time.Time  `json:"from"`
	To     *time.Time  `json:"to"`
}

// CreatePenInput registers a pen in the directory.
type CreatePenInput struct {
	Code     string `json:"code"`
	Capacity int    `json:"capacity"`
}

func (in *CreatePenInput) Validate() error {
	if in.Code == "" {
		return &ValidationError{Field: "code", Reason: "is required"}
	}
	if in.Capacity <= 0 {
		return &ValidationError{Field: "capacity", Reason: "must be positive"}
	}
	return nil
}
