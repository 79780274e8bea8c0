package equitysim

import (
	"fmt"

	"github.com/etnz/equitysim/date"
)

// ActionType identifies a planned action. Actions are a tagged variant: one
// struct, one tag, dispatched by a single switch in the projection driver.
type ActionType string

const (
	ActionExercise   ActionType = "exercise"
	ActionSell       ActionType = "sell"
	ActionDonate     ActionType = "donate"
	ActionDonateCash ActionType = "donate_cash"
	ActionIPO        ActionType = "ipo"
	ActionTender     ActionType = "tender_offer"
)

// Action is one planned step of a projection.
//
// Price is the per-share price: the fair market value for exercises and
// donations, the sale price for sales, the event price for liquidity events.
// Amount is only used by cash donations.
type Action struct {
	Type  ActionType `json:"type" yaml:"type"`
	Date  date.Date  `json:"date" yaml:"date"`
	LotID string     `json:"lot,omitempty" yaml:"lot,omitempty"`

	Shares Quantity `json:"shares,omitempty" yaml:"shares,omitempty"`
	Price  Money    `json:"price,omitempty" yaml:"price,omitempty"`
	Amount Money    `json:"amount,omitempty" yaml:"amount,omitempty"`
}

// Validate checks the action's standalone fields; lot-dependent checks happen
// in the calculators once the lot is resolved.
func (a Action) Validate() error {
	if a.Date.IsZero() {
		return fmt.Errorf("%s action has no date", a.Type)
	}
	switch a.Type {
	case ActionExercise, ActionSell, ActionDonate:
		if a.LotID == "" {
			return fmt.Errorf("%s action on %s references no lot", a.Type, a.Date)
		}
		if !a.Shares.IsPositive() {
			return fmt.Errorf("%s action on %s: shares must be positive, got %s", a.Type, a.Date, a.Shares)
		}
		if a.Price.IsNegative() {
			return fmt.Errorf("%s action on %s: negative price %s", a.Type, a.Date, a.Price)
		}
	case ActionDonateCash:
		if !a.Amount.IsPositive() {
			return fmt.Errorf("cash donation on %s: amount must be positive, got %s", a.Date, a.Amount)
		}
	case ActionIPO, ActionTender:
		if !a.Price.IsPositive() {
			return fmt.Errorf("%s event on %s: price must be positive, got %s", a.Type, a.Date, a.Price)
		}
	default:
		return fmt.Errorf("unknown action type %q on %s", a.Type, a.Date)
	}
	return nil
}
