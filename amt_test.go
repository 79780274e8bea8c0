package equitysim

import "testing"

// flatAMT builds a single-rate AMT parameter set with no exemption, so the
// arithmetic in the resolution tests stays readable.
func flatAMT(rate Percent) AMTParams {
	return AMTParams{
		Exemption:     map[FilingStatus]Money{Single: M(0)},
		PhaseoutStart: map[FilingStatus]Money{Single: M(10000000)},
		PhaseoutRate:  0.25,
		LowRate:       rate,
		HighRate:      rate,
	}
}

func TestAMTExemptionPhaseout(t *testing.T) {
	p := tables2025.Federal.AMT

	// Below the phaseout start the full exemption applies.
	if got := amtExemption(p, MarriedFilingJointly, M(500000)); !got.Equal(M(137000)) {
		t.Errorf("exemption below phaseout = %s, want $137,000.00", got)
	}

	// 100,000 above the start shaves 25,000 off the exemption.
	if got := amtExemption(p, MarriedFilingJointly, M(1352700)); !got.Equal(M(112000)) {
		t.Errorf("exemption in phaseout = %s, want $112,000.00", got)
	}

	// Far enough above, the exemption bottoms out at zero, never negative.
	if got := amtExemption(p, MarriedFilingJointly, M(5000000)); !got.IsZero() {
		t.Errorf("exemption fully phased out = %s, want $0.00", got)
	}
}

func TestTentativeMinimumTaxTwoTier(t *testing.T) {
	p := tables2025.Federal.AMT
	// MFJ, AMTI 400,000: exemption 137,000 leaves a 263,000 base.
	// 239,100 at 26% plus 23,900 at 28% = 68,858.
	got := tentativeMinimumTax(p, MarriedFilingJointly, M(400000), M(0), M(0))
	if want := M(68858); !got.Equal(want) {
		t.Errorf("tentativeMinimumTax = %s, want %s", got, want)
	}
}

func TestResolveAMTGeneratesCredit(t *testing.T) {
	// Flat 26%: AMTI 1,000,000 gives a 260,000 tentative tax against a
	// 200,000 regular tax. AMT applies and the excess becomes credit.
	r := ResolveAMT(flatAMT(0.26), Single, M(200000), M(1000000), M(0), M(0), M(5000))

	if !r.IsAMT {
		t.Fatal("expected AMT to apply")
	}
	if !r.TaxOwed.Equal(M(260000)) {
		t.Errorf("TaxOwed = %s, want $260,000.00", r.TaxOwed)
	}
	if !r.CreditGenerated.Equal(M(60000)) {
		t.Errorf("CreditGenerated = %s, want $60,000.00", r.CreditGenerated)
	}
	// Generation and consumption are mutually exclusive: the pre-existing
	// credit must survive untouched.
	if !r.CreditUsed.IsZero() {
		t.Errorf("CreditUsed = %s, want $0.00 in an AMT year", r.CreditUsed)
	}
	if !r.CreditCarryforward.Equal(M(65000)) {
		t.Errorf("CreditCarryforward = %s, want $65,000.00", r.CreditCarryforward)
	}
}

func TestResolveAMTConsumesCredit(t *testing.T) {
	// Flat 26%: AMTI 500,000 gives a 130,000 tentative tax against a
	// 180,000 regular tax. The 50,000 spread caps how much credit applies.
	r := ResolveAMT(flatAMT(0.26), Single, M(180000), M(500000), M(0), M(0), M(80000))

	if r.IsAMT {
		t.Fatal("expected regular tax to apply")
	}
	if !r.CreditUsed.Equal(M(50000)) {
		t.Errorf("CreditUsed = %s, want $50,000.00", r.CreditUsed)
	}
	if !r.TaxOwed.Equal(M(130000)) {
		t.Errorf("TaxOwed = %s, want $130,000.00", r.TaxOwed)
	}
	if !r.CreditGenerated.IsZero() {
		t.Errorf("CreditGenerated = %s, want $0.00 in a regular year", r.CreditGenerated)
	}
	if !r.CreditCarryforward.Equal(M(30000)) {
		t.Errorf("CreditCarryforward = %s, want $30,000.00", r.CreditCarryforward)
	}
}

func TestResolveAMTCreditSmallerThanSpread(t *testing.T) {
	r := ResolveAMT(flatAMT(0.26), Single, M(180000), M(500000), M(0), M(0), M(20000))
	if !r.CreditUsed.Equal(M(20000)) {
		t.Errorf("CreditUsed = %s, want the whole $20,000.00 credit", r.CreditUsed)
	}
	if !r.CreditCarryforward.IsZero() {
		t.Errorf("CreditCarryforward = %s, want $0.00", r.CreditCarryforward)
	}
}
