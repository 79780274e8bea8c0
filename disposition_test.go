package equitysim

import (
	"testing"

	"github.com/etnz/equitysim/date"
)

// isoLot is the recurring fixture of these tests: 1,000 ISO shares at a $10
// strike, exercised 2024-03-01 when the stock traded at $25.
func isoLot(state LifecycleState) ShareLot {
	l := ShareLot{
		ID:        "g1-1",
		GrantID:   "g1",
		Type:      ISO,
		State:     state,
		Quantity:  Q(1000),
		Strike:    M(10),
		GrantDate: date.MustParse("2023-02-01"),
		CostBasis: M(10000),
	}
	if state == ExercisedNotDisposed {
		l.ExerciseDate = date.MustParse("2024-03-01")
		l.FMVAtExercise = M(25)
	}
	return l
}

func TestCalculateExerciseISO(t *testing.T) {
	c, err := CalculateExercise(isoLot(VestedNotExercised), Q(1000), date.MustParse("2024-03-01"), M(25))
	if err != nil {
		t.Fatal(err)
	}
	if !c.BargainElement.Equal(M(15000)) {
		t.Errorf("BargainElement = %s, want $15,000.00", c.BargainElement)
	}
	// ISO exercise is an AMT preference, not regular income.
	if !c.AMTAdjustment.Equal(M(15000)) {
		t.Errorf("AMTAdjustment = %s, want $15,000.00", c.AMTAdjustment)
	}
	if !c.OrdinaryIncome.IsZero() {
		t.Errorf("OrdinaryIncome = %s, want $0.00", c.OrdinaryIncome)
	}
	if !c.ExerciseCost.Equal(M(10000)) {
		t.Errorf("ExerciseCost = %s, want $10,000.00", c.ExerciseCost)
	}
}

func TestCalculateExerciseNSO(t *testing.T) {
	lot := isoLot(VestedNotExercised)
	lot.Type = NSO
	c, err := CalculateExercise(lot, Q(400), date.MustParse("2024-03-01"), M(25))
	if err != nil {
		t.Fatal(err)
	}
	// NSO bargain element is ordinary income immediately, no AMT preference.
	if !c.OrdinaryIncome.Equal(M(6000)) {
		t.Errorf("OrdinaryIncome = %s, want $6,000.00", c.OrdinaryIncome)
	}
	if !c.AMTAdjustment.IsZero() {
		t.Errorf("AMTAdjustment = %s, want $0.00", c.AMTAdjustment)
	}
}

func TestCalculateExerciseRejections(t *testing.T) {
	lot := isoLot(VestedNotExercised)
	on := date.MustParse("2024-03-01")

	if _, err := CalculateExercise(lot, Q(2000), on, M(25)); err == nil {
		t.Error("expected error exercising more shares than the lot holds")
	}
	if _, err := CalculateExercise(lot, Q(0), on, M(25)); err == nil {
		t.Error("expected error exercising zero shares")
	}

	rsu := lot
	rsu.Type = RSU
	if _, err := CalculateExercise(rsu, Q(100), on, M(25)); err == nil {
		t.Error("expected error exercising an RSU lot")
	}

	unvested := lot
	unvested.State = GrantedNotVested
	if _, err := CalculateExercise(unvested, Q(100), on, M(25)); err == nil {
		t.Error("expected error exercising an unvested lot")
	}
}

func TestDisqualifyingSaleAboveFMV(t *testing.T) {
	// Sold at $40 six months after exercise: gain above the $25 exercise FMV.
	// Ordinary income is capped at the bargain element; the excess is a
	// short-term gain, and the AMT preference reverses in full.
	c, err := CalculateSale(isoLot(ExercisedNotDisposed), Q(1000), date.MustParse("2024-09-01"), M(40))
	if err != nil {
		t.Fatal(err)
	}
	if !c.Disqualifying {
		t.Fatal("expected a disqualifying disposition")
	}
	if !c.OrdinaryIncome.Equal(M(15000)) {
		t.Errorf("OrdinaryIncome = %s, want $15,000.00", c.OrdinaryIncome)
	}
	if !c.ShortTermGain.Equal(M(15000)) {
		t.Errorf("ShortTermGain = %s, want $15,000.00", c.ShortTermGain)
	}
	if !c.LongTermGain.IsZero() {
		t.Errorf("LongTermGain = %s, want $0.00", c.LongTermGain)
	}
	if !c.AMTAdjustmentReversal.Equal(M(15000)) {
		t.Errorf("AMTAdjustmentReversal = %s, want $15,000.00", c.AMTAdjustmentReversal)
	}
}

func TestDisqualifyingSaleBelowFMV(t *testing.T) {
	// Sold at $20, below the $25 exercise FMV but above strike: ordinary
	// income shrinks to the actual gain and no capital gain remains.
	c, err := CalculateSale(isoLot(ExercisedNotDisposed), Q(1000), date.MustParse("2024-09-01"), M(20))
	if err != nil {
		t.Fatal(err)
	}
	if !c.OrdinaryIncome.Equal(M(10000)) {
		t.Errorf("OrdinaryIncome = %s, want $10,000.00", c.OrdinaryIncome)
	}
	if !c.ShortTermGain.IsZero() {
		t.Errorf("ShortTermGain = %s, want $0.00", c.ShortTermGain)
	}
	if !c.AMTAdjustmentReversal.Equal(M(10000)) {
		t.Errorf("AMTAdjustmentReversal = %s, want $10,000.00", c.AMTAdjustmentReversal)
	}
}

func TestDisqualifyingSaleAtLoss(t *testing.T) {
	// Sold at $8, below strike: no ordinary income at all, only a capital
	// loss, and no AMT reversal either.
	c, err := CalculateSale(isoLot(ExercisedNotDisposed), Q(1000), date.MustParse("2024-09-01"), M(8))
	if err != nil {
		t.Fatal(err)
	}
	if !c.OrdinaryIncome.IsZero() {
		t.Errorf("OrdinaryIncome = %s, want $0.00", c.OrdinaryIncome)
	}
	if !c.ShortTermGain.Equal(M(-2000)) {
		t.Errorf("ShortTermGain = %s, want -$2,000.00", c.ShortTermGain)
	}
	if !c.AMTAdjustmentReversal.IsZero() {
		t.Errorf("AMTAdjustmentReversal = %s, want $0.00", c.AMTAdjustmentReversal)
	}
}

func TestQualifyingISOSale(t *testing.T) {
	// Held 2 years from grant and over a year from exercise: pure long-term
	// capital gain against the strike basis.
	c, err := CalculateSale(isoLot(ExercisedNotDisposed), Q(1000), date.MustParse("2025-04-01"), M(40))
	if err != nil {
		t.Fatal(err)
	}
	if c.Disqualifying {
		t.Fatal("expected a qualifying disposition")
	}
	if !c.OrdinaryIncome.IsZero() {
		t.Errorf("OrdinaryIncome = %s, want $0.00", c.OrdinaryIncome)
	}
	if !c.LongTermGain.Equal(M(30000)) {
		t.Errorf("LongTermGain = %s, want $30,000.00", c.LongTermGain)
	}
	if !c.ShortTermGain.IsZero() {
		t.Errorf("ShortTermGain = %s, want $0.00", c.ShortTermGain)
	}
}

func TestSaleHoldingBoundary(t *testing.T) {
	lot := isoLot(ExercisedNotDisposed)
	lot.Type = NSO

	// Exactly 365 days after exercise is still short-term.
	c, err := CalculateSale(lot, Q(1000), date.MustParse("2025-03-01"), M(40))
	if err != nil {
		t.Fatal(err)
	}
	if !c.ShortTermGain.Equal(M(30000)) || !c.LongTermGain.IsZero() {
		t.Errorf("365-day sale: short %s long %s, want the gain short-term", c.ShortTermGain, c.LongTermGain)
	}

	// One more day crosses into long-term.
	c, err = CalculateSale(lot, Q(1000), date.MustParse("2025-03-02"), M(40))
	if err != nil {
		t.Fatal(err)
	}
	if !c.LongTermGain.Equal(M(30000)) || !c.ShortTermGain.IsZero() {
		t.Errorf("366-day sale: short %s long %s, want the gain long-term", c.ShortTermGain, c.LongTermGain)
	}
}

func TestCalculateDonation(t *testing.T) {
	lot := isoLot(ExercisedNotDisposed)

	// Held long-term: deduct fair market value.
	c, err := CalculateDonation(lot, Q(500), date.MustParse("2025-04-01"), M(40), false)
	if err != nil {
		t.Fatal(err)
	}
	if !c.DeductionValue.Equal(M(20000)) {
		t.Errorf("long-term DeductionValue = %s, want $20,000.00", c.DeductionValue)
	}

	// Held short-term: deduct cost basis.
	c, err = CalculateDonation(lot, Q(500), date.MustParse("2024-09-01"), M(40), false)
	if err != nil {
		t.Fatal(err)
	}
	if !c.DeductionValue.Equal(M(5000)) {
		t.Errorf("short-term DeductionValue = %s, want $5,000.00", c.DeductionValue)
	}

	// The basis election forces cost basis even on long-held shares.
	c, err = CalculateDonation(lot, Q(500), date.MustParse("2025-04-01"), M(40), true)
	if err != nil {
		t.Fatal(err)
	}
	if !c.DeductionValue.Equal(M(5000)) {
		t.Errorf("basis-election DeductionValue = %s, want $5,000.00", c.DeductionValue)
	}
}

func TestCashDonation(t *testing.T) {
	c, err := CashDonation(date.MustParse("2025-04-01"), M(10000))
	if err != nil {
		t.Fatal(err)
	}
	if !c.Cash || !c.DeductionValue.Equal(M(10000)) {
		t.Errorf("cash donation = %+v, want cash with a $10,000.00 deduction", c)
	}
	if _, err := CashDonation(date.MustParse("2025-04-01"), M(0)); err == nil {
		t.Error("expected error for a zero cash donation")
	}
}
