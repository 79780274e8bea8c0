package equitysim

import (
	"fmt"
	"sort"

	"github.com/etnz/equitysim/date"
)

// VestStep is one step of a grant's vesting schedule.
type VestStep struct {
	Date   date.Date `json:"date" yaml:"date"`
	Shares Quantity  `json:"shares" yaml:"shares"`
}

// Grant describes one equity grant of the profile.
type Grant struct {
	ID     string     `json:"id" yaml:"id"`
	Type   OptionType `json:"type" yaml:"type"`
	Strike Money      `json:"strike" yaml:"strike"`

	GrantDate   date.Date `json:"grant_date" yaml:"grant_date"`
	TotalShares Quantity  `json:"total_shares" yaml:"total_shares"`

	VestingSchedule []VestStep `json:"vesting_schedule,omitempty" yaml:"vesting_schedule,omitempty"`

	// Optional per-grant overrides of the household pledge terms.
	PledgePercent *Percent `json:"pledge_percent,omitempty" yaml:"pledge_percent,omitempty"`
	MatchRatio    *Percent `json:"match_ratio,omitempty" yaml:"match_ratio,omitempty"`
}

// Validate checks the grant definition.
func (g Grant) Validate() error {
	if g.ID == "" {
		return fmt.Errorf("grant has no id")
	}
	if _, err := ParseOptionType(string(g.Type)); err != nil {
		return fmt.Errorf("grant %s: %w", g.ID, err)
	}
	if g.TotalShares.IsNegative() {
		return fmt.Errorf("grant %s: negative total shares %s", g.ID, g.TotalShares)
	}
	var scheduled Quantity
	for _, s := range g.VestingSchedule {
		if s.Shares.IsNegative() || s.Shares.IsZero() {
			return fmt.Errorf("grant %s: vest step on %s must have positive shares", g.ID, s.Date)
		}
		scheduled = scheduled.Add(s.Shares)
	}
	if scheduled.GreaterThan(g.TotalShares) {
		return fmt.Errorf("grant %s: vesting schedule covers %s shares, more than the %s granted", g.ID, scheduled, g.TotalShares)
	}
	return nil
}

// VestEvent is one dated vest of a grant, expanded from its schedule.
type VestEvent struct {
	GrantID string
	Grant   Grant
	Date    date.Date
	Shares  Quantity
	Ordinal int // position in the grant's schedule, used to derive lot ids
}

// ExpandVesting flattens the grants' vesting schedules into a single timeline
// sorted by vest date. The driver replays it to introduce lots before
// applying the year's actions.
func ExpandVesting(grants []Grant) ([]VestEvent, error) {
	var events []VestEvent
	for _, g := range grants {
		if err := g.Validate(); err != nil {
			return nil, err
		}
		for i, s := range g.VestingSchedule {
			events = append(events, VestEvent{
				GrantID: g.ID,
				Grant:   g,
				Date:    s.Date,
				Shares:  s.Shares,
				Ordinal: i + 1,
			})
		}
	}
	sort.SliceStable(events, func(i, j int) bool {
		return events[i].Date.Before(events[j].Date)
	})
	return events, nil
}

// lot materializes a vest event into an inventory lot. Options vest into
// unexercised option lots; RSUs vest straight into held shares with the vest
// FMV as basis.
func (v VestEvent) lot(fmv Money) ShareLot {
	l := ShareLot{
		ID:        fmt.Sprintf("%s-%d", v.GrantID, v.Ordinal),
		GrantID:   v.GrantID,
		Type:      v.Grant.Type,
		State:     VestedNotExercised,
		Quantity:  v.Shares,
		Strike:    v.Grant.Strike,
		GrantDate: v.Grant.GrantDate,
		CostBasis: v.Grant.Strike.Mul(v.Shares),
	}
	if v.Grant.Type == RSU {
		l.State = ExercisedNotDisposed
		l.ExerciseDate = v.Date
		l.FMVAtExercise = fmv
		l.CostBasis = fmv.Mul(v.Shares)
	}
	return l
}
