package equitysim

import (
	"fmt"
	"sort"
	"time"

	"github.com/etnz/equitysim/date"
)

// YearlyState is one year's snapshot, immutable once the year closes. The
// ledgers it holds are deep copies: later years can never retroactively
// mutate a finalized state.
type YearlyState struct {
	Year int `json:"year"`

	StartCash Money `json:"start_cash"`
	EndCash   Money `json:"end_cash"`

	Components AnnualTaxComponents `json:"components"`
	Tax        AnnualTaxResult     `json:"tax"`

	Lots   []ShareLot    `json:"lots,omitempty"`
	Pledge *PledgeLedger `json:"pledge"`

	Carryforward TaxCarryforward `json:"carryforward"`

	EquityValue Money `json:"equity_value"`
	MatchEarned Money `json:"match_earned"`

	ExpiredPledgeShares Quantity `json:"expired_pledge_shares,omitempty"`
}

// ProjectionResult is the full multi-year outcome.
type ProjectionResult struct {
	Name      string        `json:"name,omitempty"`
	StartYear int           `json:"start_year"`
	EndYear   int           `json:"end_year"`
	Years     []YearlyState `json:"years"`
}

// Year returns the state for a given year, or nil.
func (r *ProjectionResult) Year(year int) *YearlyState {
	for i := range r.Years {
		if r.Years[i].Year == year {
			return &r.Years[i]
		}
	}
	return nil
}

// Projector runs a plan against a profile, one year at a time. It owns all
// mutable state of a run; no state is shared across runs.
type Projector struct {
	Profile UserProfile
	Plan    ProjectionPlan

	lots     *LotSet
	pledge   *PledgeLedger
	carry    TaxCarryforward
	cash     Money
	vested   map[string]Quantity // cumulative vested shares per grant
	timeline []VestEvent
	nextVest int
}

// NewProjector validates the inputs and prepares a run.
func NewProjector(profile UserProfile, plan ProjectionPlan) (*Projector, error) {
	if err := profile.Validate(); err != nil {
		return nil, fmt.Errorf("invalid profile: %w", err)
	}
	if err := plan.Validate(); err != nil {
		return nil, fmt.Errorf("invalid plan: %w", err)
	}
	timeline, err := ExpandVesting(profile.Grants)
	if err != nil {
		return nil, fmt.Errorf("invalid vesting schedule: %w", err)
	}
	lots, err := NewLotSet(plan.InitialLots)
	if err != nil {
		return nil, fmt.Errorf("invalid initial lots: %w", err)
	}

	p := &Projector{
		Profile:  profile,
		Plan:     plan,
		lots:     lots,
		pledge:   NewPledgeLedger(),
		carry:    profile.initialCarryforward(),
		cash:     plan.InitialCash,
		vested:   make(map[string]Quantity),
		timeline: timeline,
	}
	// Initial lots already past vesting count toward each grant's vested total.
	for _, l := range plan.InitialLots {
		if l.State != GrantedNotVested && l.GrantID != "" {
			p.vested[l.GrantID] = p.vested[l.GrantID].Add(l.Quantity)
		}
	}
	return p, nil
}

// Run executes the projection. A validation failure in any year aborts the
// whole run: a miscomputed year would poison every later year through the
// carryforward state.
func (p *Projector) Run() (*ProjectionResult, error) {
	result := &ProjectionResult{
		Name:      p.Profile.Name,
		StartYear: p.Plan.StartYear,
		EndYear:   p.Plan.EndYear,
	}
	for year := p.Plan.StartYear; year <= p.Plan.EndYear; year++ {
		state, err := p.runYear(year)
		if err != nil {
			return nil, fmt.Errorf("year %d: %w", year, err)
		}
		result.Years = append(result.Years, state)
	}
	return result, nil
}

// yearPrice returns the projected price per share for a year.
func (p *Projector) yearPrice(year int) (Money, bool) {
	m, ok := p.Plan.Prices[year]
	return m, ok
}

// applyVests replays pending vest events up to and including `through`.
func (p *Projector) applyVests(through date.Date) error {
	for p.nextVest < len(p.timeline) && !p.timeline[p.nextVest].Date.After(through) {
		v := p.timeline[p.nextVest]
		p.nextVest++

		fmv, ok := p.yearPrice(v.Date.Year())
		if v.Grant.Type == RSU && !ok {
			return fmt.Errorf("no projected price for year %d, needed to value the %s RSU vest", v.Date.Year(), v.GrantID)
		}
		if err := p.lots.Add(v.lot(fmv)); err != nil {
			return fmt.Errorf("vest of grant %s on %s: %w", v.GrantID, v.Date, err)
		}
		p.vested[v.GrantID] = p.vested[v.GrantID].Add(v.Shares)
	}
	return nil
}

// runYear fully resolves one year: vests and actions in ascending date
// order, then the annual tax computation, then the carryforward advance.
func (p *Projector) runYear(year int) (YearlyState, error) {
	components := AnnualTaxComponents{
		Year:        year,
		Wages:       p.Profile.AnnualWages,
		OtherIncome: p.Profile.OtherIncome,
	}
	startCash := p.cash

	actions := make([]Action, 0)
	for _, a := range p.Plan.Actions {
		if a.Date.Year() == year {
			actions = append(actions, a)
		}
	}
	sort.SliceStable(actions, func(i, j int) bool {
		return actions[i].Date.Before(actions[j].Date)
	})

	elections := p.Plan.elections(year)
	for _, a := range actions {
		// Vesting that matured before this action happens first.
		if err := p.applyVests(a.Date); err != nil {
			return YearlyState{}, err
		}
		if err := p.apply(a, elections, &components); err != nil {
			return YearlyState{}, err
		}
	}
	yearEnd := date.New(year, time.December, 31)
	if err := p.applyVests(yearEnd); err != nil {
		return YearlyState{}, err
	}

	expiredShares := p.pledge.ExpireThrough(yearEnd)

	tables, err := Constants(year)
	if err != nil {
		return YearlyState{}, err
	}
	tax, nextCarry := CalculateAnnualTax(&components, p.Profile.FilingStatus, tables,
		elections, p.carry, p.Profile.CaliforniaResident)
	p.carry = nextCarry
	p.cash = p.cash.Sub(tax.TotalTax)

	state := YearlyState{
		Year:                year,
		StartCash:           startCash,
		EndCash:             p.cash,
		Components:          components,
		Tax:                 tax,
		Lots:                p.lots.All(),
		Pledge:              p.pledge.Clone(),
		Carryforward:        p.carry.Clone(),
		MatchEarned:         components.MatchAmount(),
		ExpiredPledgeShares: expiredShares,
	}
	if price, ok := p.yearPrice(year); ok {
		var held Quantity
		for _, l := range p.lots.All() {
			if l.Exercised() {
				held = held.Add(l.Quantity)
			}
		}
		state.EquityValue = price.Mul(held)
	}
	return state, nil
}

// apply dispatches one action. This is the single switch over the action
// variant; each arm computes the tax component, mutates the lot inventory by
// replacement, and feeds the pledge ledger.
func (p *Projector) apply(a Action, elections TaxElections, components *AnnualTaxComponents) error {
	switch a.Type {
	case ActionExercise:
		return p.applyExercise(a, components)
	case ActionSell:
		return p.applySell(a, components)
	case ActionDonate:
		return p.applyDonate(a, elections, components)
	case ActionDonateCash:
		c, err := CashDonation(a.Date, a.Amount)
		if err != nil {
			return err
		}
		p.cash = p.cash.Sub(a.Amount)
		components.AddDonation(c)
		return nil
	case ActionIPO:
		e := NewLiquidityEvent(a.Date, IPOEvent, a.Price)
		pledge, match := p.Profile.PledgePercent, p.Profile.MatchRatio
		p.pledge.RecordIPO(e, p.vestedSnapshot(), pledge, match)
		return nil
	case ActionTender:
		p.pledge.AddEvent(NewLiquidityEvent(a.Date, TenderOffer, a.Price))
		return nil
	default:
		return fmt.Errorf("unsupported action type %q", a.Type)
	}
}

// vestedSnapshot copies the per-grant cumulative vested counters.
func (p *Projector) vestedSnapshot() map[string]Quantity {
	snap := make(map[string]Quantity, len(p.vested))
	for g, q := range p.vested {
		snap[g] = q
	}
	return snap
}

func (p *Projector) applyExercise(a Action, components *AnnualTaxComponents) error {
	lot, err := p.lots.Get(a.LotID)
	if err != nil {
		return err
	}
	fmv := a.Price
	if fmv.IsZero() {
		if yearFMV, ok := p.yearPrice(a.Date.Year()); ok {
			fmv = yearFMV
		}
	}
	if !fmv.IsPositive() {
		return fmt.Errorf("exercise of lot %s on %s: no fair market value, set a price on the action or a projected price for %d", a.LotID, a.Date, a.Date.Year())
	}
	c, err := CalculateExercise(lot, a.Shares, a.Date, fmv)
	if err != nil {
		return err
	}

	child, remainder := lot.split(a.Shares, p.lots.nextOrdinal(lot.ID))
	child.State = ExercisedNotDisposed
	child.ExerciseDate = a.Date
	child.FMVAtExercise = fmv
	child.CostBasis = c.ExerciseCost
	if err := p.lots.Replace(lot.ID, child, remainder); err != nil {
		return err
	}

	p.cash = p.cash.Sub(c.ExerciseCost)
	components.AddExercise(c)
	return nil
}

func (p *Projector) applySell(a Action, components *AnnualTaxComponents) error {
	lot, err := p.lots.Get(a.LotID)
	if err != nil {
		return err
	}
	c, err := CalculateSale(lot, a.Shares, a.Date, a.Price)
	if err != nil {
		return err
	}
	if err := components.AddSale(c); err != nil {
		return err
	}

	child, remainder := lot.split(a.Shares, p.lots.nextOrdinal(lot.ID))
	child.State = Disposed
	child.Quantity = Q(0)
	if err := p.lots.Replace(lot.ID, child, remainder); err != nil {
		return err
	}

	p.cash = p.cash.Add(c.Proceeds)

	pledge, match := p.Profile.pledgeTerms(lot.GrantID)
	if pledge > 0 {
		if _, err := p.pledge.RecordSale(a.Date, lot.GrantID, a.Shares, pledge, match); err != nil {
			return err
		}
	}
	return nil
}

func (p *Projector) applyDonate(a Action, elections TaxElections, components *AnnualTaxComponents) error {
	lot, err := p.lots.Get(a.LotID)
	if err != nil {
		return err
	}
	fmv := a.Price
	if fmv.IsZero() {
		if yearFMV, ok := p.yearPrice(a.Date.Year()); ok {
			fmv = yearFMV
		}
	}
	if !fmv.IsPositive() {
		return fmt.Errorf("donation of lot %s on %s: no fair market value, set a price on the action or a projected price for %d", a.LotID, a.Date, a.Date.Year())
	}
	c, err := CalculateDonation(lot, a.Shares, a.Date, fmv, elections.BasisElection)
	if err != nil {
		return err
	}

	pledge, match := p.Profile.pledgeTerms(lot.GrantID)
	credit := p.pledge.ApplyDonation(a.Date, lot.GrantID, a.Shares, fmv,
		p.vested[lot.GrantID], pledge, match)
	c.MatchShares = credit.MatchShares
	c.MatchAmount = credit.MatchAmount

	child, remainder := lot.split(a.Shares, p.lots.nextOrdinal(lot.ID))
	child.State = Disposed
	child.Quantity = Q(0)
	if err := p.lots.Replace(lot.ID, child, remainder); err != nil {
		return err
	}

	components.AddDonation(c)
	return nil
}
