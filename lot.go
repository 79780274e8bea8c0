package equitysim

import (
	"fmt"
	"regexp"
	"slices"

	"github.com/etnz/equitysim/date"
)

// OptionType identifies the tax character of an equity lot.
type OptionType string

const (
	ISO OptionType = "iso"
	NSO OptionType = "nso"
	RSU OptionType = "rsu"
)

// ParseOptionType parses a string into an OptionType.
func ParseOptionType(s string) (OptionType, error) {
	switch OptionType(s) {
	case ISO, NSO, RSU:
		return OptionType(s), nil
	default:
		return "", fmt.Errorf("unknown option type: %q", s)
	}
}

// LifecycleState tracks where a lot is in its life. Transitions are
// monotonic: a lot never returns to an earlier state; partial actions split
// the lot into children instead.
type LifecycleState string

const (
	GrantedNotVested     LifecycleState = "granted_not_vested"
	VestedNotExercised   LifecycleState = "vested_not_exercised"
	ExercisedNotDisposed LifecycleState = "exercised_not_disposed"
	Disposed             LifecycleState = "disposed"
	Expired              LifecycleState = "expired"
)

// deprecatedLotID matches the legacy purely-numeric lot naming that older
// scenario files used. Those ids collide across grants and are rejected.
var deprecatedLotID = regexp.MustCompile(`^[0-9]+$`)

// ShareLot is a fungible block of equity sharing one grant, strike and
// acquisition history.
type ShareLot struct {
	ID       string         `json:"id" yaml:"id"`
	GrantID  string         `json:"grant_id" yaml:"grant_id"`
	Type     OptionType     `json:"type" yaml:"type"`
	State    LifecycleState `json:"state" yaml:"state"`
	Quantity Quantity       `json:"quantity" yaml:"quantity"`

	Strike    Money     `json:"strike" yaml:"strike"`
	GrantDate date.Date `json:"grant_date" yaml:"grant_date"`

	// ExerciseDate and FMVAtExercise are set once the lot is exercised.
	ExerciseDate  date.Date `json:"exercise_date,omitempty" yaml:"exercise_date,omitempty"`
	FMVAtExercise Money     `json:"fmv_at_exercise,omitempty" yaml:"fmv_at_exercise,omitempty"`

	// CostBasis is the total basis of the lot (strike paid, or FMV at vest for RSUs).
	CostBasis Money `json:"cost_basis" yaml:"cost_basis"`

	ExpirationDate date.Date `json:"expiration_date,omitempty" yaml:"expiration_date,omitempty"`
}

// Validate checks the lot's standalone invariants.
func (l ShareLot) Validate() error {
	if l.ID == "" {
		return fmt.Errorf("lot has no id")
	}
	if deprecatedLotID.MatchString(l.ID) {
		return fmt.Errorf("lot %q uses the deprecated numeric id convention, use <grant>-<n> instead", l.ID)
	}
	if l.Quantity.IsNegative() {
		return fmt.Errorf("lot %s has negative quantity %s", l.ID, l.Quantity)
	}
	if l.Strike.IsNegative() {
		return fmt.Errorf("lot %s has negative strike %s", l.ID, l.Strike)
	}
	switch l.Type {
	case ISO, NSO, RSU:
	default:
		return fmt.Errorf("lot %s has unknown type %q", l.ID, l.Type)
	}
	switch l.State {
	case GrantedNotVested, VestedNotExercised, ExercisedNotDisposed, Disposed, Expired:
	default:
		return fmt.Errorf("lot %s has unknown lifecycle state %q", l.ID, l.State)
	}
	if l.State == ExercisedNotDisposed && l.ExerciseDate.IsZero() {
		return fmt.Errorf("lot %s is exercised but has no exercise date", l.ID)
	}
	return nil
}

// Exercised reports whether the lot holds shares (exercised options or RSUs)
// rather than unexercised options.
func (l ShareLot) Exercised() bool {
	return l.State == ExercisedNotDisposed || l.Type == RSU && l.State == VestedNotExercised
}

// AcquisitionDate is the date the holding period for capital gains starts:
// the exercise date for options, the grant (vest) date for RSUs.
func (l ShareLot) AcquisitionDate() date.Date {
	if !l.ExerciseDate.IsZero() {
		return l.ExerciseDate
	}
	return l.GrantDate
}

// split carves shares off the lot, returning the carved child (with a derived
// id) and the shrunken remainder. The remainder quantity may be zero.
func (l ShareLot) split(shares Quantity, childOrdinal int) (child, remainder ShareLot) {
	child = l
	child.ID = fmt.Sprintf("%s.%d", l.ID, childOrdinal)
	child.Quantity = shares
	if !l.Quantity.IsZero() {
		child.CostBasis = l.CostBasis.Mul(shares).Div(l.Quantity)
	}
	remainder = l
	remainder.Quantity = l.Quantity.Sub(shares)
	remainder.CostBasis = l.CostBasis.Sub(child.CostBasis)
	return child, remainder
}

// LotSet owns the simulation's current lot inventory. Actions never mutate a
// lot in place through shared references: they remove the old record and
// insert one or two replacements (arena-style), so a lot referenced elsewhere
// can never be aliased into an inconsistent state.
type LotSet struct {
	lots     []ShareLot
	ordinals map[string]int // next child ordinal per original lot id
}

// NewLotSet builds a lot set from an initial inventory.
func NewLotSet(lots []ShareLot) (*LotSet, error) {
	s := &LotSet{ordinals: make(map[string]int)}
	for _, l := range lots {
		if err := l.Validate(); err != nil {
			return nil, err
		}
		if _, err := s.Get(l.ID); err == nil {
			return nil, fmt.Errorf("duplicate lot id %q", l.ID)
		}
		s.lots = append(s.lots, l)
	}
	return s, nil
}

// Get returns the lot with the given id.
func (s *LotSet) Get(id string) (ShareLot, error) {
	for _, l := range s.lots {
		if l.ID == id {
			return l, nil
		}
	}
	return ShareLot{}, fmt.Errorf("lot %q not found", id)
}

// All returns a copy of the current inventory.
func (s *LotSet) All() []ShareLot {
	return slices.Clone(s.lots)
}

// Add inserts a new lot, e.g. from a vesting event.
func (s *LotSet) Add(l ShareLot) error {
	if err := l.Validate(); err != nil {
		return err
	}
	if _, err := s.Get(l.ID); err == nil {
		return fmt.Errorf("duplicate lot id %q", l.ID)
	}
	s.lots = append(s.lots, l)
	return nil
}

// Replace removes the lot with the given id and inserts the replacements.
// Zero-quantity replacements are dropped from the inventory: a lot that
// reached zero is terminally gone (disposed or fully carved away).
func (s *LotSet) Replace(id string, replacements ...ShareLot) error {
	idx := slices.IndexFunc(s.lots, func(l ShareLot) bool { return l.ID == id })
	if idx < 0 {
		return fmt.Errorf("lot %q not found", id)
	}
	s.lots = slices.Delete(s.lots, idx, idx+1)
	for _, r := range replacements {
		if r.Quantity.IsZero() {
			continue
		}
		if err := s.Add(r); err != nil {
			return err
		}
	}
	return nil
}

// nextOrdinal hands out the child ordinal for splits of the given lot.
func (s *LotSet) nextOrdinal(id string) int {
	s.ordinals[id]++
	return s.ordinals[id]
}

// Vested returns the total quantity currently vested (any state past vesting)
// for a grant.
func (s *LotSet) Vested(grantID string) Quantity {
	var total Quantity
	for _, l := range s.lots {
		if l.GrantID != grantID || l.State == GrantedNotVested {
			continue
		}
		total = total.Add(l.Quantity)
	}
	return total
}
