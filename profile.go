package equitysim

import (
	"fmt"
	"slices"
)

// UserProfile is the household: filing situation, income, pledge terms,
// prior-year tax state and grant definitions.
type UserProfile struct {
	Name string `json:"name,omitempty" yaml:"name,omitempty"`

	FilingStatus       FilingStatus `json:"filing_status" yaml:"filing_status"`
	CaliforniaResident bool         `json:"california_resident" yaml:"california_resident"`

	// RoughTaxRate is only used for back-of-the-envelope figures in reports,
	// never in the actual computation.
	RoughTaxRate Percent `json:"rough_tax_rate,omitempty" yaml:"rough_tax_rate,omitempty"`

	AnnualWages Money `json:"annual_wages" yaml:"annual_wages"`
	OtherIncome Money `json:"other_income,omitempty" yaml:"other_income,omitempty"`

	PledgePercent Percent `json:"pledge_percent" yaml:"pledge_percent"`
	MatchRatio    Percent `json:"match_ratio" yaml:"match_ratio"`

	// Prior-year snapshots carried into the first projected year.
	PriorFederalAMTCredit Money           `json:"prior_federal_amt_credit,omitempty" yaml:"prior_federal_amt_credit,omitempty"`
	PriorStateAMTCredit   Money           `json:"prior_state_amt_credit,omitempty" yaml:"prior_state_amt_credit,omitempty"`
	PriorCharitable       CharitableState `json:"prior_charitable,omitempty" yaml:"prior_charitable,omitempty"`

	Grants []Grant `json:"grants,omitempty" yaml:"grants,omitempty"`
}

// Validate checks the profile for configuration errors.
func (p UserProfile) Validate() error {
	if p.PledgePercent < 0 || p.PledgePercent >= 1 {
		return fmt.Errorf("pledge percentage must be in [0, 1), got %s", p.PledgePercent)
	}
	if p.MatchRatio < 0 {
		return fmt.Errorf("match ratio must not be negative, got %s", p.MatchRatio)
	}
	if p.AnnualWages.IsNegative() {
		return fmt.Errorf("annual wages must not be negative, got %s", p.AnnualWages)
	}
	seen := make(map[string]bool)
	for _, g := range p.Grants {
		if err := g.Validate(); err != nil {
			return err
		}
		if seen[g.ID] {
			return fmt.Errorf("duplicate grant id %q", g.ID)
		}
		seen[g.ID] = true
		if g.PledgePercent != nil && (*g.PledgePercent < 0 || *g.PledgePercent >= 1) {
			return fmt.Errorf("grant %s: pledge percentage must be in [0, 1), got %s", g.ID, *g.PledgePercent)
		}
	}
	return nil
}

// grant returns the grant definition by id, or nil.
func (p UserProfile) grant(id string) *Grant {
	for i := range p.Grants {
		if p.Grants[i].ID == id {
			return &p.Grants[i]
		}
	}
	return nil
}

// pledgeTerms resolves the pledge percentage and match ratio for a grant,
// falling back to the household-level terms.
func (p UserProfile) pledgeTerms(grantID string) (pledge, match Percent) {
	pledge, match = p.PledgePercent, p.MatchRatio
	if g := p.grant(grantID); g != nil {
		if g.PledgePercent != nil {
			pledge = *g.PledgePercent
		}
		if g.MatchRatio != nil {
			match = *g.MatchRatio
		}
	}
	return pledge, match
}

// initialCarryforward assembles the carryforward state seeded from the
// profile's prior-year snapshots.
func (p UserProfile) initialCarryforward() TaxCarryforward {
	c := NewTaxCarryforward()
	c.FederalAMTCredit = p.PriorFederalAMTCredit
	c.StateAMTCredit = p.PriorStateAMTCredit
	if p.PriorCharitable.FederalCash.Buckets != nil || p.PriorCharitable.FederalStock.Buckets != nil ||
		p.PriorCharitable.StateCash.Buckets != nil || p.PriorCharitable.StateStock.Buckets != nil {
		c.Charitable = p.PriorCharitable.Clone()
	}
	return c
}

// ProjectionPlan is the ordered multi-year plan applied to a profile.
type ProjectionPlan struct {
	StartYear int `json:"start_year" yaml:"start_year"`
	EndYear   int `json:"end_year" yaml:"end_year"`

	InitialCash Money      `json:"initial_cash,omitempty" yaml:"initial_cash,omitempty"`
	InitialLots []ShareLot `json:"initial_lots,omitempty" yaml:"initial_lots,omitempty"`

	Actions []Action `json:"actions,omitempty" yaml:"actions,omitempty"`

	// Prices projects the price per share for each year, used for vest-time
	// valuation and end-of-year equity value.
	Prices map[int]Money `json:"prices,omitempty" yaml:"prices,omitempty"`

	// Elections.
	BasisElectionYears []int `json:"basis_election_years,omitempty" yaml:"basis_election_years,omitempty"`
	FiftyPercentOrg    bool  `json:"fifty_percent_org,omitempty" yaml:"fifty_percent_org,omitempty"`
}

// Validate checks the plan for configuration errors.
func (p ProjectionPlan) Validate() error {
	if p.EndYear < p.StartYear {
		return fmt.Errorf("end year %d is before start year %d", p.EndYear, p.StartYear)
	}
	for _, l := range p.InitialLots {
		if err := l.Validate(); err != nil {
			return err
		}
	}
	for _, a := range p.Actions {
		if err := a.Validate(); err != nil {
			return err
		}
		if a.Date.Year() < p.StartYear || a.Date.Year() > p.EndYear {
			return fmt.Errorf("%s action on %s falls outside the %d-%d projection", a.Type, a.Date, p.StartYear, p.EndYear)
		}
	}
	return nil
}

// elections resolves the tax elections applicable to a year.
func (p ProjectionPlan) elections(year int) TaxElections {
	return TaxElections{
		BasisElection:   slices.Contains(p.BasisElectionYears, year),
		FiftyPercentOrg: p.FiftyPercentOrg,
	}
}
