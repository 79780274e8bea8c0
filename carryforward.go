package equitysim

import (
	"maps"
	"slices"
)

// Carryforward is one FIFO ledger of unused charitable deduction, keyed by
// creation year. Four of these exist per household: (federal, state) x
// (cash, stock).
//
// A bucket created in year Y is consumable through year Y+4 and whatever
// remains expires at the close of Y+4: consumption always runs before
// expiration within a year, so a bucket can be used one last time in its
// fifth year.
type Carryforward struct {
	Buckets map[int]Money `json:"buckets,omitempty"`
}

// NewCarryforward returns an empty ledger.
func NewCarryforward() Carryforward {
	return Carryforward{Buckets: make(map[int]Money)}
}

// Clone returns an independent deep copy.
func (c Carryforward) Clone() Carryforward {
	n := NewCarryforward()
	maps.Copy(n.Buckets, c.Buckets)
	return n
}

// Total returns the sum over all buckets.
func (c Carryforward) Total() Money {
	var total Money
	for _, amt := range c.Buckets {
		total = total.Add(amt)
	}
	return total
}

// Add records an under-used deduction created in the given year.
func (c *Carryforward) Add(year int, amount Money) {
	if !amount.IsPositive() {
		return
	}
	if c.Buckets == nil {
		c.Buckets = make(map[int]Money)
	}
	c.Buckets[year] = c.Buckets[year].Add(amount)
}

// Consume draws up to `limit` from the ledger, oldest creation year first,
// skipping buckets already past their usable age. It returns the amount used.
// IRS ordering mandates FIFO here; it is a correctness requirement, not a
// performance choice.
func (c *Carryforward) Consume(currentYear int, limit Money) Money {
	var used Money
	for _, year := range slices.Sorted(maps.Keys(c.Buckets)) {
		if currentYear-year >= carryforwardYears {
			continue
		}
		remaining := limit.Sub(used)
		if !remaining.IsPositive() {
			break
		}
		take := c.Buckets[year].Min(remaining)
		if !take.IsPositive() {
			continue
		}
		used = used.Add(take)
		left := c.Buckets[year].Sub(take)
		if left.IsZero() {
			delete(c.Buckets, year)
		} else {
			c.Buckets[year] = left
		}
	}
	return used
}

// Expire removes every bucket whose age has reached its final year by the
// close of currentYear and returns the expired total. Call after Consume.
func (c *Carryforward) Expire(currentYear int) Money {
	var expired Money
	for year, amt := range c.Buckets {
		if currentYear-year >= carryforwardYears-1 {
			expired = expired.Add(amt)
			delete(c.Buckets, year)
		}
	}
	return expired
}

// CharitableState groups the four carryforward ledgers.
type CharitableState struct {
	FederalCash  Carryforward `json:"federal_cash"`
	FederalStock Carryforward `json:"federal_stock"`
	StateCash    Carryforward `json:"state_cash"`
	StateStock   Carryforward `json:"state_stock"`
}

// NewCharitableState returns empty ledgers.
func NewCharitableState() CharitableState {
	return CharitableState{
		FederalCash:  NewCarryforward(),
		FederalStock: NewCarryforward(),
		StateCash:    NewCarryforward(),
		StateStock:   NewCarryforward(),
	}
}

// Clone returns an independent deep copy of all four ledgers.
func (s CharitableState) Clone() CharitableState {
	return CharitableState{
		FederalCash:  s.FederalCash.Clone(),
		FederalStock: s.FederalStock.Clone(),
		StateCash:    s.StateCash.Clone(),
		StateStock:   s.StateStock.Clone(),
	}
}
