package equitysim

import (
	"fmt"

	"github.com/etnz/equitysim/date"
)

// The disposition calculators are pure: one (lot, action) in, one immutable
// tax component out. They carry no cross-year state; the projection driver is
// responsible for mutating the lot inventory afterwards.

// CalculateExercise computes the tax component for exercising `shares` out of
// an option lot at the given fair market value.
func CalculateExercise(lot ShareLot, shares Quantity, on date.Date, fmv Money) (ExerciseComponent, error) {
	if shares.IsNegative() || shares.IsZero() {
		return ExerciseComponent{}, fmt.Errorf("exercise of lot %s: shares must be positive, got %s", lot.ID, shares)
	}
	if shares.GreaterThan(lot.Quantity) {
		return ExerciseComponent{}, fmt.Errorf("exercise of lot %s: %s shares exceeds lot quantity %s", lot.ID, shares, lot.Quantity)
	}
	if fmv.IsNegative() {
		return ExerciseComponent{}, fmt.Errorf("exercise of lot %s: negative fair market value %s", lot.ID, fmv)
	}
	if lot.State != VestedNotExercised {
		return ExerciseComponent{}, fmt.Errorf("exercise of lot %s: lot is %s, not vested", lot.ID, lot.State)
	}
	if lot.Type == RSU {
		return ExerciseComponent{}, fmt.Errorf("exercise of lot %s: RSUs are not exercised", lot.ID)
	}

	bargain := fmv.Sub(lot.Strike).Floor0().Mul(shares)
	c := ExerciseComponent{
		LotID:          lot.ID,
		Date:           on,
		Type:           lot.Type,
		Shares:         shares,
		Strike:         lot.Strike,
		FMV:            fmv,
		BargainElement: bargain,
		ExerciseCost:   lot.Strike.Mul(shares),
	}
	switch lot.Type {
	case ISO:
		// AMT preference only, no regular ordinary income at exercise.
		c.AMTAdjustment = bargain
	case NSO:
		c.OrdinaryIncome = bargain
	}
	return c, nil
}

// isoQualifying reports whether an ISO sale meets both holding requirements:
// at least 2 years from grant and 1 year from exercise.
func isoQualifying(lot ShareLot, saleDate date.Date) bool {
	return !saleDate.Before(lot.GrantDate.AddYears(isoQualifyingYearsFromGrant)) &&
		!saleDate.Before(lot.ExerciseDate.AddYears(isoQualifyingYearsFromExercise))
}

// longTerm reports whether the holding period from acquisition reaches
// long-term treatment.
func longTerm(acquired, disposed date.Date) bool {
	return disposed.DaysSince(acquired) >= LongTermHoldingDays
}

// CalculateSale computes the tax component for selling `shares` out of an
// exercised lot at the given price per share.
func CalculateSale(lot ShareLot, shares Quantity, on date.Date, price Money) (SaleComponent, error) {
	if shares.IsNegative() || shares.IsZero() {
		return SaleComponent{}, fmt.Errorf("sale of lot %s: shares must be positive, got %s", lot.ID, shares)
	}
	if shares.GreaterThan(lot.Quantity) {
		return SaleComponent{}, fmt.Errorf("sale of lot %s: %s shares exceeds lot quantity %s", lot.ID, shares, lot.Quantity)
	}
	if price.IsNegative() {
		return SaleComponent{}, fmt.Errorf("sale of lot %s: negative price %s", lot.ID, price)
	}
	if !lot.Exercised() {
		return SaleComponent{}, fmt.Errorf("sale of lot %s: lot is %s, shares are not held", lot.ID, lot.State)
	}

	c := SaleComponent{
		LotID:     lot.ID,
		Date:      on,
		Type:      lot.Type,
		Shares:    shares,
		SalePrice: price,
		Proceeds:  price.Mul(shares),
	}

	if lot.Type == ISO && !isoQualifying(lot, on) {
		if err := disqualifyingSale(&c, lot, shares, on, price); err != nil {
			return SaleComponent{}, err
		}
	} else {
		// Qualifying ISO, NSO or RSU sale: pure capital gain against basis,
		// short or long by holding period from acquisition.
		basis := lot.CostBasis.Mul(shares).Div(lot.Quantity)
		gain := c.Proceeds.Sub(basis)
		if longTerm(lot.AcquisitionDate(), on) {
			c.LongTermGain = gain
		} else {
			c.ShortTermGain = gain
		}
	}

	if err := c.Validate(); err != nil {
		return SaleComponent{}, err
	}
	return c, nil
}

// disqualifyingSale fills in the ISO disqualifying-disposition split.
//
// Ordinary income is the lesser of total gain and the bargain element taken at
// exercise, never negative; whatever gain remains above it is capital gain. A
// sale at a loss produces no ordinary income at all, only a capital loss. The
// ordinary income recognized also reverses, at the same magnitude, the AMT
// preference taken at exercise.
func disqualifyingSale(c *SaleComponent, lot ShareLot, shares Quantity, on date.Date, price Money) error {
	if lot.FMVAtExercise.IsZero() {
		return fmt.Errorf("disqualifying sale of lot %s: missing fair market value at exercise", lot.ID)
	}
	c.Disqualifying = true

	totalGain := price.Sub(lot.Strike).Mul(shares)
	bargain := lot.FMVAtExercise.Sub(lot.Strike).Floor0().Mul(shares)

	isLong := longTerm(lot.ExerciseDate, on)
	if !totalGain.IsPositive() {
		// Sold at or below strike: no recapture, the whole amount is a
		// capital loss (or zero).
		if isLong {
			c.LongTermGain = totalGain
		} else {
			c.ShortTermGain = totalGain
		}
		return nil
	}

	c.OrdinaryIncome = totalGain.Min(bargain)
	remainder := totalGain.Sub(c.OrdinaryIncome) // always >= 0
	if isLong {
		c.LongTermGain = remainder
	} else {
		c.ShortTermGain = remainder
	}
	c.AMTAdjustmentReversal = c.OrdinaryIncome
	return nil
}

// CalculateDonation computes the deduction component for donating `shares`
// out of an exercised lot.
//
// Shares held long enough for long-term treatment deduct at fair market
// value; shares held less deduct at cost basis. The basis election forces
// cost-basis valuation regardless of holding period, in exchange for the
// higher AGI ceiling applied later by the annual calculator.
func CalculateDonation(lot ShareLot, shares Quantity, on date.Date, fmv Money, basisElection bool) (DonationComponent, error) {
	if shares.IsNegative() || shares.IsZero() {
		return DonationComponent{}, fmt.Errorf("donation of lot %s: shares must be positive, got %s", lot.ID, shares)
	}
	if shares.GreaterThan(lot.Quantity) {
		return DonationComponent{}, fmt.Errorf("donation of lot %s: %s shares exceeds lot quantity %s", lot.ID, shares, lot.Quantity)
	}
	if fmv.IsNegative() {
		return DonationComponent{}, fmt.Errorf("donation of lot %s: negative fair market value %s", lot.ID, fmv)
	}
	if !lot.Exercised() {
		return DonationComponent{}, fmt.Errorf("donation of lot %s: lot is %s, shares are not held", lot.ID, lot.State)
	}

	basis := lot.CostBasis.Mul(shares).Div(lot.Quantity)
	c := DonationComponent{
		LotID:         lot.ID,
		Date:          on,
		Shares:        shares,
		FMV:           fmv,
		CostBasis:     basis,
		BasisElection: basisElection,
	}
	if basisElection || !longTerm(lot.AcquisitionDate(), on) {
		c.DeductionValue = basis
	} else {
		c.DeductionValue = fmv.Mul(shares)
	}
	return c, nil
}

// CashDonation builds the component for a plain cash gift.
func CashDonation(on date.Date, amount Money) (DonationComponent, error) {
	if !amount.IsPositive() {
		return DonationComponent{}, fmt.Errorf("cash donation on %s: amount must be positive, got %s", on, amount)
	}
	return DonationComponent{Date: on, Cash: true, DeductionValue: amount}, nil
}
