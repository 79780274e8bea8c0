package equitysim

import (
	"testing"

	"github.com/etnz/equitysim/date"
)

func TestConsumeCharitableOrdering(t *testing.T) {
	// AGI 100,000 with the federal ceilings: cash caps at 60,000, stock at
	// 30,000. Current-year cash goes first, then cash carryforward, then
	// current-year stock, then stock carryforward.
	cash, stock := NewCarryforward(), NewCarryforward()
	cash.Add(2023, M(20000))
	stock.Add(2023, M(10000))

	u := consumeCharitable(2025, M(100000), tables2025.Federal.Ceilings, TaxElections{},
		M(50000), M(25000), &cash, &stock)

	// Cash: 50,000 current + 10,000 of the 20,000 carried forward fills the
	// 60,000 ceiling.
	if !u.CashUsed.Equal(M(60000)) {
		t.Errorf("CashUsed = %s, want $60,000.00", u.CashUsed)
	}
	if !u.CashCarriedForward.Equal(M(10000)) {
		t.Errorf("CashCarriedForward = %s, want $10,000.00", u.CashCarriedForward)
	}
	// Stock: 25,000 current + 5,000 carried forward fills the 30,000 ceiling.
	if !u.StockUsed.Equal(M(30000)) {
		t.Errorf("StockUsed = %s, want $30,000.00", u.StockUsed)
	}
	if !u.StockCarriedForward.Equal(M(5000)) {
		t.Errorf("StockCarriedForward = %s, want $5,000.00", u.StockCarriedForward)
	}
}

func TestConsumeCharitableOverallCap(t *testing.T) {
	// For a 50%-limit organization the stock ceiling also respects the
	// overall 50% cap net of cash already used: with AGI 100,000 and 40,000
	// of cash used, only 10,000 of stock fits even though the stock ceiling
	// alone would allow 30,000.
	cash, stock := NewCarryforward(), NewCarryforward()
	u := consumeCharitable(2025, M(100000), tables2025.Federal.Ceilings,
		TaxElections{FiftyPercentOrg: true}, M(40000), M(30000), &cash, &stock)

	if !u.CashUsed.Equal(M(40000)) {
		t.Errorf("CashUsed = %s, want $40,000.00", u.CashUsed)
	}
	if !u.StockUsed.Equal(M(10000)) {
		t.Errorf("StockUsed = %s, want $10,000.00", u.StockUsed)
	}
	if !u.StockCarriedForward.Equal(M(20000)) {
		t.Errorf("StockCarriedForward = %s, want $20,000.00", u.StockCarriedForward)
	}
}

func TestCalculateAnnualTaxWagesOnly(t *testing.T) {
	a := &AnnualTaxComponents{Year: 2025, Wages: M(400000)}
	tables, err := Constants(2025)
	if err != nil {
		t.Fatal(err)
	}

	r, next := CalculateAnnualTax(a, MarriedFilingJointly, tables, TaxElections{},
		NewTaxCarryforward(), false)

	// 400,000 less the 30,000 standard deduction leaves 370,000 taxable.
	if !r.Federal.TaxableIncome.Equal(M(370000)) {
		t.Errorf("federal taxable = %s, want $370,000.00", r.Federal.TaxableIncome)
	}
	if !r.Federal.Tax.Equal(M(74494)) {
		t.Errorf("federal tax = %s, want $74,494.00", r.Federal.Tax)
	}
	if r.Federal.AMT.IsAMT {
		t.Error("wages-only year should not trigger AMT")
	}

	// Non-resident: California stays zero.
	if !r.California.Tax.IsZero() {
		t.Errorf("California tax = %s for a non-resident, want $0.00", r.California.Tax)
	}
	if !next.FederalAMTCredit.IsZero() {
		t.Errorf("federal AMT credit = %s, want $0.00", next.FederalAMTCredit)
	}
}

func TestCalculateAnnualTaxGainStacking(t *testing.T) {
	// Low wages with a large long-term gain: the gain straddles the 0% and
	// 15% brackets, producing a blended rate instead of a flat 15%.
	a := &AnnualTaxComponents{
		Year:  2025,
		Wages: M(40000),
		Sales: []SaleComponent{{
			LotID: "g1-1", Date: date.MustParse("2025-06-01"), Type: NSO,
			Shares: Q(1000), LongTermGain: M(100000),
		}},
	}
	tables, _ := Constants(2025)
	r, _ := CalculateAnnualTax(a, Single, tables, TaxElections{}, NewTaxCarryforward(), false)

	// Ordinary taxable: 40,000 - 15,000 = 25,000. The first 23,350 of gain
	// fills the 0% bracket up to 48,350; the remaining 76,650 is at 15%.
	wantGains := M(76650 * 0.15)
	wantOrdinary := progressiveTax(tables.Federal.Ordinary[Single], M(25000))
	if want := wantOrdinary.Add(wantGains); !r.Federal.AMT.RegularTax.Equal(want) {
		t.Errorf("federal regular tax = %s, want %s", r.Federal.AMT.RegularTax, want)
	}
}

func TestCalculateAnnualTaxLossNetting(t *testing.T) {
	// A short-term loss nets against a long-term gain before either is taxed.
	a := &AnnualTaxComponents{
		Year:  2025,
		Wages: M(200000),
		Sales: []SaleComponent{
			{LotID: "a", Shares: Q(1), ShortTermGain: M(-30000)},
			{LotID: "b", Shares: Q(1), LongTermGain: M(50000)},
		},
	}
	tables, _ := Constants(2025)
	r, _ := CalculateAnnualTax(a, Single, tables, TaxElections{}, NewTaxCarryforward(), false)

	if !r.Federal.AGI.Equal(M(220000)) {
		t.Errorf("AGI = %s, want $220,000.00 after netting", r.Federal.AGI)
	}

	// A net loss simply drops out of the year.
	a.Sales[1].LongTermGain = M(-50000)
	a.Sales[0].ShortTermGain = M(20000)
	r, _ = CalculateAnnualTax(a, Single, tables, TaxElections{}, NewTaxCarryforward(), false)
	if !r.Federal.AGI.Equal(M(200000)) {
		t.Errorf("AGI = %s, want $200,000.00 with the net loss excluded", r.Federal.AGI)
	}
}

func TestCalculateAnnualTaxCaliforniaGainsAsOrdinary(t *testing.T) {
	a := &AnnualTaxComponents{
		Year:  2025,
		Wages: M(100000),
		Sales: []SaleComponent{{LotID: "a", Shares: Q(1), LongTermGain: M(100000)}},
	}
	tables, _ := Constants(2025)
	r, _ := CalculateAnnualTax(a, Single, tables, TaxElections{}, NewTaxCarryforward(), true)

	// California grants no preferential rate: the long-term gain lands in
	// the ordinary brackets and the whole 200,000 (less standard deduction)
	// is ordinary taxable.
	if !r.California.TaxableIncome.Equal(M(194460)) {
		t.Errorf("California taxable = %s, want $194,460.00", r.California.TaxableIncome)
	}
	want := progressiveTax(tables.California.Ordinary[Single], M(194460))
	if !r.California.AMT.RegularTax.Equal(want) {
		t.Errorf("California regular tax = %s, want %s", r.California.AMT.RegularTax, want)
	}
}

func TestCalculateAnnualTaxDoesNotMutateInput(t *testing.T) {
	carry := NewTaxCarryforward()
	carry.FederalAMTCredit = M(10000)
	carry.Charitable.FederalStock.Add(2024, M(5000))

	a := &AnnualTaxComponents{Year: 2025, Wages: M(500000)}
	tables, _ := Constants(2025)
	_, next := CalculateAnnualTax(a, Single, tables, TaxElections{}, carry, false)

	if !carry.FederalAMTCredit.Equal(M(10000)) {
		t.Errorf("input credit mutated to %s", carry.FederalAMTCredit)
	}
	if !carry.Charitable.FederalStock.Total().Equal(M(5000)) {
		t.Errorf("input stock ledger mutated to %s", carry.Charitable.FederalStock.Total())
	}
	// The returned state did move: the prior stock bucket was consumed.
	if next.Charitable.FederalStock.Total().Equal(M(5000)) {
		t.Error("returned carryforward should have consumed the prior stock bucket")
	}
}
