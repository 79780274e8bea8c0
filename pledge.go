package equitysim

import (
	"fmt"
	"maps"
	"slices"
	"sort"

	"github.com/etnz/equitysim/date"
	"github.com/google/uuid"
)

// ObligationType says what created a pledge obligation.
type ObligationType string

const (
	SaleObligation         ObligationType = "sale"
	IPORemainderObligation ObligationType = "ipo_remainder"
)

// ObligationStatus is derived from fulfillment and the source window.
type ObligationStatus string

const (
	ObligationOpen               ObligationStatus = "open"
	ObligationPartiallyFulfilled ObligationStatus = "partially_fulfilled"
	ObligationFulfilled          ObligationStatus = "fulfilled"
	ObligationExpired            ObligationStatus = "expired"
)

// LiquidityEventType classifies the event that opens a match window.
type LiquidityEventType string

const (
	TenderOffer LiquidityEventType = "tender_offer"
	IPOEvent    LiquidityEventType = "ipo"
	Secondary   LiquidityEventType = "secondary"
)

// LiquidityEvent opens a 3-year window during which donations are
// match-eligible and obligations can still be discharged.
type LiquidityEvent struct {
	ID            uuid.UUID          `json:"id"`
	Date          date.Date          `json:"date"`
	Type          LiquidityEventType `json:"type"`
	PricePerShare Money              `json:"price_per_share"`
	WindowClose   date.Date          `json:"window_close"`
}

// NewLiquidityEvent builds an event with its window closing 3 years out.
func NewLiquidityEvent(on date.Date, typ LiquidityEventType, price Money) LiquidityEvent {
	return LiquidityEvent{
		ID:            uuid.New(),
		Date:          on,
		Type:          typ,
		PricePerShare: price,
		WindowClose:   on.AddYears(matchWindowYears),
	}
}

// Window returns the event's match window.
func (e LiquidityEvent) Window() date.Range {
	return date.Range{From: e.Date, To: e.WindowClose}
}

// PledgeObligation is a commitment to donate shares, created by a sale or by
// an IPO remainder, discharged FIFO by later donations, and expired when its
// window closes with shares still owed.
type PledgeObligation struct {
	ID            uuid.UUID      `json:"id"`
	SourceEventID uuid.UUID      `json:"source_event_id,omitempty"`
	Type          ObligationType `json:"type"`
	CreationDate  date.Date      `json:"creation_date"`
	GrantID       string         `json:"grant_id,omitempty"`

	Shares    Quantity `json:"shares"`
	Fulfilled Quantity `json:"fulfilled"`

	PledgePercent Percent `json:"pledge_percent"`
	MatchRatio    Percent `json:"match_ratio"`

	WindowClose date.Date `json:"window_close"`

	Expired bool `json:"expired,omitempty"`
}

// Remaining is the unfulfilled share count.
func (o PledgeObligation) Remaining() Quantity { return o.Shares.Sub(o.Fulfilled) }

// Status derives the state-machine position.
func (o PledgeObligation) Status() ObligationStatus {
	switch {
	case o.Expired:
		return ObligationExpired
	case o.Remaining().IsZero():
		return ObligationFulfilled
	case o.Fulfilled.IsPositive():
		return ObligationPartiallyFulfilled
	default:
		return ObligationOpen
	}
}

// open reports whether the obligation can still absorb donated shares on a day.
func (o PledgeObligation) open(on date.Date) bool {
	return !o.Expired && o.Remaining().IsPositive() && !on.After(o.WindowClose)
}

// SaleObligationShares is the maximalist sale-triggered obligation size:
// pledge% x sold / (1 - pledge%), rounded down to whole shares. Donating that
// many additional shares makes the donated fraction of the total disposition
// equal the pledge percentage.
func SaleObligationShares(sharesSold Quantity, pledge Percent) (Quantity, error) {
	if pledge < 0 {
		return Quantity{}, fmt.Errorf("pledge percentage must not be negative, got %s", pledge)
	}
	if pledge >= 1 {
		return Quantity{}, fmt.Errorf("pledge percentage must be below 100%%, got %s", pledge)
	}
	return sharesSold.Scale(pledge).Div(Q(float64(pledge.Complement()))).Floor(), nil
}

// PledgeLedger is the household's pledge state: events, obligations and the
// per-grant donation counters the match rule needs.
type PledgeLedger struct {
	Events      []LiquidityEvent   `json:"events,omitempty"`
	Obligations []PledgeObligation `json:"obligations,omitempty"`

	// DonatedByGrant counts shares already donated per grant, across years.
	DonatedByGrant map[string]Quantity `json:"donated_by_grant,omitempty"`
	// ObligatedByGrant counts shares already obligated per grant, used by the
	// IPO remainder formula.
	ObligatedByGrant map[string]Quantity `json:"obligated_by_grant,omitempty"`
}

// NewPledgeLedger returns an empty ledger.
func NewPledgeLedger() *PledgeLedger {
	return &PledgeLedger{
		DonatedByGrant:   make(map[string]Quantity),
		ObligatedByGrant: make(map[string]Quantity),
	}
}

// Clone returns an independent deep copy for the yearly snapshot.
func (p *PledgeLedger) Clone() *PledgeLedger {
	n := &PledgeLedger{
		Events:           slices.Clone(p.Events),
		Obligations:      slices.Clone(p.Obligations),
		DonatedByGrant:   make(map[string]Quantity),
		ObligatedByGrant: make(map[string]Quantity),
	}
	maps.Copy(n.DonatedByGrant, p.DonatedByGrant)
	maps.Copy(n.ObligatedByGrant, p.ObligatedByGrant)
	return n
}

// AddEvent records a liquidity event.
func (p *PledgeLedger) AddEvent(e LiquidityEvent) {
	p.Events = append(p.Events, e)
}

// eventWindowContaining returns the event whose window contains the day, if any.
func (p *PledgeLedger) eventWindowContaining(on date.Date) (LiquidityEvent, bool) {
	for _, e := range p.Events {
		if e.Window().Contains(on) {
			return e, true
		}
	}
	return LiquidityEvent{}, false
}

// RecordSale creates the sale-triggered obligation for a disposition. The
// obligation is tied to the liquidity event whose window contains the sale
// date when there is one; otherwise its window runs from the sale itself.
func (p *PledgeLedger) RecordSale(on date.Date, grantID string, sharesSold Quantity, pledge, matchRatio Percent) (PledgeObligation, error) {
	shares, err := SaleObligationShares(sharesSold, pledge)
	if err != nil {
		return PledgeObligation{}, fmt.Errorf("sale on %s: %w", on, err)
	}
	o := PledgeObligation{
		ID:            uuid.New(),
		Type:          SaleObligation,
		CreationDate:  on,
		GrantID:       grantID,
		Shares:        shares,
		PledgePercent: pledge,
		MatchRatio:    matchRatio,
		WindowClose:   on.AddYears(matchWindowYears),
	}
	if e, ok := p.eventWindowContaining(on); ok {
		o.SourceEventID = e.ID
		o.WindowClose = e.WindowClose
	}
	p.Obligations = append(p.Obligations, o)
	p.ObligatedByGrant[grantID] = p.ObligatedByGrant[grantID].Add(shares)
	return o, nil
}

// RecordIPO registers the IPO event and creates, per grant, the remainder
// obligation max(0, pledge% x vested - already obligated).
func (p *PledgeLedger) RecordIPO(e LiquidityEvent, vestedByGrant map[string]Quantity, pledge, matchRatio Percent) []PledgeObligation {
	p.AddEvent(e)

	var created []PledgeObligation
	for _, grantID := range slices.Sorted(maps.Keys(vestedByGrant)) {
		target := vestedByGrant[grantID].Scale(pledge).Floor()
		remainder := target.Sub(p.ObligatedByGrant[grantID])
		if !remainder.IsPositive() {
			continue
		}
		o := PledgeObligation{
			ID:            uuid.New(),
			SourceEventID: e.ID,
			Type:          IPORemainderObligation,
			CreationDate:  e.Date,
			GrantID:       grantID,
			Shares:        remainder,
			PledgePercent: pledge,
			MatchRatio:    matchRatio,
			WindowClose:   e.WindowClose,
		}
		p.Obligations = append(p.Obligations, o)
		p.ObligatedByGrant[grantID] = p.ObligatedByGrant[grantID].Add(remainder)
		created = append(created, o)
	}
	return created
}

// DonationCredit is what a donation earned: obligation discharge and match.
type DonationCredit struct {
	DischargedShares Quantity `json:"discharged_shares"`
	MatchShares      Quantity `json:"match_shares"`
	MatchAmount      Money    `json:"match_amount"`
}

// ApplyDonation discharges open obligations with the donated shares in
// creation-date order (FIFO) and computes the company match.
//
// Match eligibility follows the vested-shares rule: eligible shares are
// min(pledge% x vested at donation time - shares already donated from the
// grant, shares donated), and only when the donation date falls inside some
// liquidity event's window. Discharge and match are independent: a donation
// can earn match without touching a specific obligation record.
func (p *PledgeLedger) ApplyDonation(on date.Date, grantID string, shares Quantity, price Money,
	vestedAtDonation Quantity, pledge, matchRatio Percent) DonationCredit {

	var credit DonationCredit

	// FIFO discharge across open obligations. Leftover donated shares beyond
	// the open capacity are not credited to any obligation.
	order := make([]int, 0, len(p.Obligations))
	for i := range p.Obligations {
		if p.Obligations[i].open(on) {
			order = append(order, i)
		}
	}
	sort.SliceStable(order, func(a, b int) bool {
		return p.Obligations[order[a]].CreationDate.Before(p.Obligations[order[b]].CreationDate)
	})
	remaining := shares
	for _, i := range order {
		if !remaining.IsPositive() {
			break
		}
		take := remaining.Min(p.Obligations[i].Remaining())
		p.Obligations[i].Fulfilled = p.Obligations[i].Fulfilled.Add(take)
		remaining = remaining.Sub(take)
		credit.DischargedShares = credit.DischargedShares.Add(take)
	}

	// Company match, per the vested-shares rule.
	if _, inWindow := p.eventWindowContaining(on); inWindow {
		headroom := vestedAtDonation.Scale(pledge).Sub(p.DonatedByGrant[grantID])
		eligible := headroom.Min(shares)
		if eligible.IsPositive() {
			credit.MatchShares = eligible
			credit.MatchAmount = price.Mul(eligible).Scale(matchRatio)
		}
	}

	p.DonatedByGrant[grantID] = p.DonatedByGrant[grantID].Add(shares)
	return credit
}

// ExpireThrough marks every obligation whose window has closed by the given
// date. Fulfilled counts are kept; only the unfulfilled remainder expires.
// It returns the total share count that expired unfulfilled.
func (p *PledgeLedger) ExpireThrough(on date.Date) Quantity {
	var expired Quantity
	for i := range p.Obligations {
		o := &p.Obligations[i]
		if o.Expired || !o.WindowClose.Before(on) {
			continue
		}
		if o.Remaining().IsPositive() {
			expired = expired.Add(o.Remaining())
			o.Expired = true
		}
	}
	return expired
}

// OpenShares is the total unfulfilled share count across live obligations.
func (p *PledgeLedger) OpenShares(on date.Date) Quantity {
	var total Quantity
	for _, o := range p.Obligations {
		if o.open(on) {
			total = total.Add(o.Remaining())
		}
	}
	return total
}
