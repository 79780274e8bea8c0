package equitysim

import "testing"

func TestCarryforwardFIFO(t *testing.T) {
	c := NewCarryforward()
	c.Add(2023, M(10000))
	c.Add(2024, M(5000))

	// A 12,000 limit drains the 2023 bucket first, then part of 2024.
	used := c.Consume(2025, M(12000))
	if !used.Equal(M(12000)) {
		t.Errorf("Consume = %s, want $12,000.00", used)
	}
	if _, ok := c.Buckets[2023]; ok {
		t.Error("2023 bucket should be fully consumed")
	}
	if !c.Buckets[2024].Equal(M(3000)) {
		t.Errorf("2024 bucket = %s, want $3,000.00", c.Buckets[2024])
	}
}

func TestCarryforwardConservation(t *testing.T) {
	c := NewCarryforward()
	c.Add(2023, M(10000))
	c.Add(2024, M(5000))
	before := c.Total()

	used := c.Consume(2025, M(7000))
	expired := c.Expire(2025)

	after := c.Total()
	if !before.Equal(used.Add(expired).Add(after)) {
		t.Errorf("conservation broken: %s != %s + %s + %s", before, used, expired, after)
	}
}

func TestCarryforwardExpiration(t *testing.T) {
	c := NewCarryforward()
	c.Add(2020, M(10000))

	// Year 2024 is the bucket's fifth and final usable year: consumption
	// still works, then whatever is left expires at the close of the year.
	used := c.Consume(2024, M(4000))
	if !used.Equal(M(4000)) {
		t.Errorf("fifth-year Consume = %s, want $4,000.00", used)
	}
	expired := c.Expire(2024)
	if !expired.Equal(M(6000)) {
		t.Errorf("fifth-year Expire = %s, want $6,000.00", expired)
	}
	if !c.Total().IsZero() {
		t.Errorf("ledger total = %s, want $0.00", c.Total())
	}
}

func TestCarryforwardTooOld(t *testing.T) {
	c := NewCarryforward()
	c.Add(2020, M(10000))

	// In 2025 the 2020 bucket is beyond its usable age: Consume must skip it.
	if used := c.Consume(2025, M(10000)); !used.IsZero() {
		t.Errorf("sixth-year Consume = %s, want $0.00", used)
	}
	if expired := c.Expire(2025); !expired.Equal(M(10000)) {
		t.Errorf("sixth-year Expire = %s, want $10,000.00", expired)
	}
}

func TestCarryforwardCloneIsIndependent(t *testing.T) {
	c := NewCarryforward()
	c.Add(2024, M(5000))
	clone := c.Clone()

	c.Consume(2025, M(5000))
	if !clone.Total().Equal(M(5000)) {
		t.Errorf("clone total = %s after mutating the original, want $5,000.00", clone.Total())
	}
}
