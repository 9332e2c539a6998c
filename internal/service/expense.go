package service

import (
	"fmt"
	"time"

	"github.com/confinapp/backend-go/internal/domain"
)

// ReceptionExpenseDates carries the contractual due dates for the expenses
// generated at reception. Nil fields fall back to the reception date.
type ReceptionExpenseDates struct {
	Freight    *time.Time
	Commission *time.Time
	Purchase   *time.Time
}

// BuildReceptionExpenses derives the payable drafts a lot reception
// produces: freight, commission and purchase value, each emitted only when
// its amount is positive. Pure; persisting the drafts is the lifecycle
// controller's job inside its transaction.
func BuildReceptionExpenses(lot *domain.CattleLot, dates ReceptionExpenseDates, receptionDate time.Time) []*domain.FinanceEntry {
	due := func(d *time.Time) time.Time {
		if d != nil {
			return *d
		}
		return receptionDate
	}

	var drafts []*domain.FinanceEntry
	add := func(category, description string, amount float64, dueDate time.Time) {
		if amount <= 0 {
			return
		}
		lotID := lot.ID
		accountID := lot.PayerAccountID
		drafts = append(drafts, &domain.FinanceEntry{
			Kind:           domain.KindExpense,
			Category:       category,
			Description:    description,
			Amount:         amount,
			DueDate:        dueDate,
			Status:         domain.EntryPending,
			LotID:          &lotID,
			PayerAccountID: &accountID,
		})
	}

	add(domain.CategoryFreight,
		fmt.Sprintf("Freight for lot %s", lot.LotCode),
		lot.FreightCost, due(dates.Freight))
	add(domain.CategoryCommission,
		fmt.Sprintf("Purchase commission for lot %s", lot.LotCode),
		lot.Commission, due(dates.Commission))
	add(domain.CategoryAnimalPurchase,
		fmt.Sprintf("Purchase value for lot %s", lot.LotCode),
		lot.PurchaseValue, due(dates.Purchase))

	return drafts
}
