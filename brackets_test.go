package equitysim

import "testing"

func TestProgressiveTax(t *testing.T) {
	schedule := tables2025.Federal.Ordinary[Single]

	// 50,000 taxable: 10% of 11,925 + 12% of 36,550 + 22% of 1,525.
	got := progressiveTax(schedule, M(50000))
	if want := M(5914); !got.Equal(want) {
		t.Errorf("progressiveTax(50,000) = %s, want %s", got, want)
	}

	if got := progressiveTax(schedule, M(0)); !got.IsZero() {
		t.Errorf("progressiveTax(0) = %s, want $0.00", got)
	}
	if got := progressiveTax(schedule, M(-100)); !got.IsZero() {
		t.Errorf("progressiveTax(negative) = %s, want $0.00", got)
	}
}

func TestStackedGainsTax(t *testing.T) {
	schedule := tables2025.Federal.LongTermGains[Single]

	// Ordinary taxable 30,000 leaves 18,350 of room in the 0% bracket
	// (boundary 48,350); the remaining 21,650 of gains is taxed at 15%.
	got := stackedGainsTax(schedule, M(30000), M(40000))
	if want := M(3247.50); !got.Equal(want) {
		t.Errorf("stackedGainsTax = %s, want %s", got, want)
	}

	// Ordinary income already past the 0% boundary: every dollar of gain
	// lands in the 15% bracket.
	got = stackedGainsTax(schedule, M(100000), M(10000))
	if want := M(1500); !got.Equal(want) {
		t.Errorf("stackedGainsTax above boundary = %s, want %s", got, want)
	}

	if got := stackedGainsTax(schedule, M(30000), M(0)); !got.IsZero() {
		t.Errorf("stackedGainsTax with no gains = %s, want $0.00", got)
	}
}

func TestMarginalRate(t *testing.T) {
	schedule := tables2025.Federal.Ordinary[Single]
	if got := marginalRate(schedule, M(50000)); !got.Equal(0.22) {
		t.Errorf("marginalRate(50,000) = %s, want 22%%", got)
	}
	if got := marginalRate(schedule, M(700000)); !got.Equal(0.37) {
		t.Errorf("marginalRate(700,000) = %s, want 37%%", got)
	}
}
