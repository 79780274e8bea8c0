package equitysim

import (
	"fmt"

	"github.com/etnz/equitysim/date"
)

// Tax components are the immutable output of the disposition calculators: one
// typed record per action, never mutated after creation. The annual tax
// calculator only ever sees a year's worth of components, it does not know
// about lots or actions.

// ExerciseComponent is the tax consequence of exercising an option lot.
type ExerciseComponent struct {
	LotID string     `json:"lot_id"`
	Date  date.Date  `json:"date"`
	Type  OptionType `json:"type"`

	Shares Quantity `json:"shares"`
	Strike Money    `json:"strike"`
	FMV    Money    `json:"fmv"`

	// BargainElement is max(0, FMV-strike) * shares. For an ISO it is an AMT
	// adjustment only; for an NSO it is ordinary income immediately.
	BargainElement Money `json:"bargain_element"`
	OrdinaryIncome Money `json:"ordinary_income"`
	AMTAdjustment  Money `json:"amt_adjustment"`

	// ExerciseCost is the cash outlay: strike * shares.
	ExerciseCost Money `json:"exercise_cost"`
}

// SaleComponent is the tax consequence of selling a share lot.
type SaleComponent struct {
	LotID string     `json:"lot_id"`
	Date  date.Date  `json:"date"`
	Type  OptionType `json:"type"`

	Shares    Quantity `json:"shares"`
	SalePrice Money    `json:"sale_price"`
	Proceeds  Money    `json:"proceeds"`

	// Disqualifying marks an ISO sale that failed either holding requirement.
	Disqualifying bool `json:"disqualifying,omitempty"`

	OrdinaryIncome Money `json:"ordinary_income"`
	ShortTermGain  Money `json:"short_term_gain"`
	LongTermGain   Money `json:"long_term_gain"`

	// AMTAdjustmentReversal reverses, dollar for dollar, the AMT preference
	// recognized at exercise when a disqualifying sale converts it to
	// ordinary income.
	AMTAdjustmentReversal Money `json:"amt_adjustment_reversal"`
}

// Validate enforces the disposition invariants the aggregation relies on.
func (c SaleComponent) Validate() error {
	hasLoss := c.ShortTermGain.IsNegative() || c.LongTermGain.IsNegative()
	if c.OrdinaryIncome.IsPositive() && hasLoss {
		return fmt.Errorf("sale of lot %s on %s carries both ordinary income %s and a capital loss", c.LotID, c.Date, c.OrdinaryIncome)
	}
	if c.OrdinaryIncome.IsNegative() {
		return fmt.Errorf("sale of lot %s on %s has negative ordinary income %s", c.LotID, c.Date, c.OrdinaryIncome)
	}
	if !c.Disqualifying {
		// A non-disqualifying disposition populates exactly one gain type.
		if !c.ShortTermGain.IsZero() && !c.LongTermGain.IsZero() {
			return fmt.Errorf("sale of lot %s on %s populates both short- and long-term gains", c.LotID, c.Date)
		}
		if !c.OrdinaryIncome.IsZero() {
			return fmt.Errorf("non-disqualifying sale of lot %s on %s has ordinary income %s", c.LotID, c.Date, c.OrdinaryIncome)
		}
	}
	return nil
}

// DonationComponent is the deduction (and match) consequence of donating
// shares or cash.
type DonationComponent struct {
	LotID string    `json:"lot_id,omitempty"` // empty for cash donations
	Date  date.Date `json:"date"`

	Shares    Quantity `json:"shares,omitempty"`
	FMV       Money    `json:"fmv,omitempty"`
	CostBasis Money    `json:"cost_basis,omitempty"`

	// Cash marks a cash donation; DeductionValue is then the amount given.
	Cash bool `json:"cash,omitempty"`

	// BasisElection forces cost-basis valuation in exchange for the higher
	// AGI ceiling.
	BasisElection bool `json:"basis_election,omitempty"`

	DeductionValue Money `json:"deduction_value"`

	// Company match earned by this donation, per the vested-shares rule.
	MatchShares Quantity `json:"match_shares,omitempty"`
	MatchAmount Money    `json:"match_amount,omitempty"`
}

// AnnualTaxComponents aggregates one year's components plus wage-type income.
// It is the only mutable stage between the calculators and the annual tax
// computation, and it is discarded once the year's result is final.
type AnnualTaxComponents struct {
	Year int `json:"year"`

	Wages       Money `json:"wages"`
	OtherIncome Money `json:"other_income"`

	Exercises []ExerciseComponent `json:"exercises,omitempty"`
	Sales     []SaleComponent     `json:"sales,omitempty"`
	Donations []DonationComponent `json:"donations,omitempty"`
}

// AddExercise, AddSale and AddDonation validate-then-append; a component that
// breaks an invariant aborts the year (and the run) right here.
func (a *AnnualTaxComponents) AddExercise(c ExerciseComponent) {
	a.Exercises = append(a.Exercises, c)
}

func (a *AnnualTaxComponents) AddSale(c SaleComponent) error {
	if err := c.Validate(); err != nil {
		return fmt.Errorf("year %d: %w", a.Year, err)
	}
	a.Sales = append(a.Sales, c)
	return nil
}

func (a *AnnualTaxComponents) AddDonation(c DonationComponent) {
	a.Donations = append(a.Donations, c)
}

// OrdinaryIncome derives the year's total ordinary income: wages, other
// income, NSO bargain elements, and disqualifying-sale recapture.
func (a *AnnualTaxComponents) OrdinaryIncome() Money {
	total := a.Wages.Add(a.OtherIncome)
	for _, e := range a.Exercises {
		total = total.Add(e.OrdinaryIncome)
	}
	for _, s := range a.Sales {
		total = total.Add(s.OrdinaryIncome)
	}
	return total
}

// ShortTermGains sums the year's short-term capital gains (may be negative).
func (a *AnnualTaxComponents) ShortTermGains() Money {
	var total Money
	for _, s := range a.Sales {
		total = total.Add(s.ShortTermGain)
	}
	return total
}

// LongTermGains sums the year's long-term capital gains (may be negative).
func (a *AnnualTaxComponents) LongTermGains() Money {
	var total Money
	for _, s := range a.Sales {
		total = total.Add(s.LongTermGain)
	}
	return total
}

// AMTAdjustment nets ISO exercise preferences against disqualifying-sale
// reversals for the year.
func (a *AnnualTaxComponents) AMTAdjustment() Money {
	var total Money
	for _, e := range a.Exercises {
		total = total.Add(e.AMTAdjustment)
	}
	for _, s := range a.Sales {
		total = total.Sub(s.AMTAdjustmentReversal)
	}
	return total
}

// CashDeductions sums the year's cash charitable gifts.
func (a *AnnualTaxComponents) CashDeductions() Money {
	var total Money
	for _, d := range a.Donations {
		if d.Cash {
			total = total.Add(d.DeductionValue)
		}
	}
	return total
}

// StockDeductions sums the year's stock charitable gifts at deduction value.
func (a *AnnualTaxComponents) StockDeductions() Money {
	var total Money
	for _, d := range a.Donations {
		if !d.Cash {
			total = total.Add(d.DeductionValue)
		}
	}
	return total
}

// MatchAmount sums the company match earned by the year's donations.
func (a *AnnualTaxComponents) MatchAmount() Money {
	var total Money
	for _, d := range a.Donations {
		total = total.Add(d.MatchAmount)
	}
	return total
}
