package equitysim

import (
	"testing"

	"github.com/etnz/equitysim/date"
)

func TestSaleObligationShares(t *testing.T) {
	// At a 50% pledge, selling 1,000 obliges 1,000 more: donating them makes
	// the donated half of the 2,000-share disposition.
	got, err := SaleObligationShares(Q(1000), 0.5)
	if err != nil {
		t.Fatal(err)
	}
	if !got.Equal(Q(1000)) {
		t.Errorf("SaleObligationShares(1000, 50%%) = %s, want 1000", got)
	}

	// At 25%, 1000 * 0.25 / 0.75 = 333.33 rounds down to whole shares.
	got, err = SaleObligationShares(Q(1000), 0.25)
	if err != nil {
		t.Fatal(err)
	}
	if !got.Equal(Q(333)) {
		t.Errorf("SaleObligationShares(1000, 25%%) = %s, want 333", got)
	}

	if _, err := SaleObligationShares(Q(1000), 1.0); err == nil {
		t.Error("expected error for a 100% pledge")
	}
	if _, err := SaleObligationShares(Q(1000), -0.1); err == nil {
		t.Error("expected error for a negative pledge")
	}
}

func TestRecordSaleWindow(t *testing.T) {
	p := NewPledgeLedger()

	// No liquidity event: the obligation window runs from the sale itself.
	o, err := p.RecordSale(date.MustParse("2025-03-01"), "g1", Q(1000), 0.5, 1.0)
	if err != nil {
		t.Fatal(err)
	}
	if want := date.MustParse("2028-03-01"); o.WindowClose != want {
		t.Errorf("standalone sale window closes %s, want %s", o.WindowClose, want)
	}

	// A sale inside an event window inherits the event's close date.
	e := NewLiquidityEvent(date.MustParse("2025-06-01"), TenderOffer, M(20))
	p.AddEvent(e)
	o, err = p.RecordSale(date.MustParse("2025-07-01"), "g1", Q(1000), 0.5, 1.0)
	if err != nil {
		t.Fatal(err)
	}
	if o.SourceEventID != e.ID {
		t.Error("sale inside the event window should reference the event")
	}
	if o.WindowClose != e.WindowClose {
		t.Errorf("event-tied sale window closes %s, want %s", o.WindowClose, e.WindowClose)
	}
}

func TestApplyDonationFIFODischarge(t *testing.T) {
	p := NewPledgeLedger()
	first, _ := p.RecordSale(date.MustParse("2025-03-01"), "g1", Q(1000), 0.5, 1.0)
	second, _ := p.RecordSale(date.MustParse("2025-09-01"), "g1", Q(1000), 0.5, 1.0)

	credit := p.ApplyDonation(date.MustParse("2025-10-01"), "g1", Q(1200), M(20), Q(10000), 0.5, 1.0)
	if !credit.DischargedShares.Equal(Q(1200)) {
		t.Errorf("DischargedShares = %s, want 1200", credit.DischargedShares)
	}

	// Oldest obligation first: fully discharged, then the spill-over.
	if got := p.Obligations[0].Status(); p.Obligations[0].ID != first.ID || got != ObligationFulfilled {
		t.Errorf("first obligation status = %s, want fulfilled", got)
	}
	if got := p.Obligations[1].Status(); p.Obligations[1].ID != second.ID || got != ObligationPartiallyFulfilled {
		t.Errorf("second obligation status = %s, want partially_fulfilled", got)
	}
	if !p.Obligations[1].Remaining().Equal(Q(800)) {
		t.Errorf("second obligation remaining = %s, want 800", p.Obligations[1].Remaining())
	}
}

func TestApplyDonationMatchRule(t *testing.T) {
	p := NewPledgeLedger()
	p.AddEvent(NewLiquidityEvent(date.MustParse("2025-06-01"), IPOEvent, M(20)))

	// 10,000 vested at a 50% pledge caps match eligibility at 5,000 shares,
	// less whatever was already donated from the grant.
	credit := p.ApplyDonation(date.MustParse("2025-07-01"), "g1", Q(2000), M(20), Q(10000), 0.5, 1.0)
	if !credit.MatchShares.Equal(Q(2000)) {
		t.Errorf("MatchShares = %s, want 2000", credit.MatchShares)
	}
	if !credit.MatchAmount.Equal(M(40000)) {
		t.Errorf("MatchAmount = %s, want $40,000.00", credit.MatchAmount)
	}

	// A later over-sized donation only matches up to the remaining headroom.
	credit = p.ApplyDonation(date.MustParse("2025-08-01"), "g1", Q(4000), M(20), Q(10000), 0.5, 1.0)
	if !credit.MatchShares.Equal(Q(3000)) {
		t.Errorf("second MatchShares = %s, want the 3000 left of the 5000 cap", credit.MatchShares)
	}

	// Headroom exhausted: no more match.
	credit = p.ApplyDonation(date.MustParse("2025-09-01"), "g1", Q(500), M(20), Q(10000), 0.5, 1.0)
	if !credit.MatchShares.IsZero() {
		t.Errorf("third MatchShares = %s, want 0", credit.MatchShares)
	}
}

func TestApplyDonationOutsideWindowEarnsNoMatch(t *testing.T) {
	p := NewPledgeLedger()
	// No liquidity event at all: discharge still works, match does not.
	p.RecordSale(date.MustParse("2025-03-01"), "g1", Q(1000), 0.5, 1.0)

	credit := p.ApplyDonation(date.MustParse("2025-04-01"), "g1", Q(500), M(20), Q(10000), 0.5, 1.0)
	if !credit.DischargedShares.Equal(Q(500)) {
		t.Errorf("DischargedShares = %s, want 500", credit.DischargedShares)
	}
	if !credit.MatchShares.IsZero() || !credit.MatchAmount.IsZero() {
		t.Errorf("match outside any window = %s shares %s, want none", credit.MatchShares, credit.MatchAmount)
	}
}

func TestRecordIPORemainder(t *testing.T) {
	p := NewPledgeLedger()
	// 4,000 shares already obligated by an earlier sale.
	p.RecordSale(date.MustParse("2025-03-01"), "g1", Q(4000), 0.5, 1.0)

	e := NewLiquidityEvent(date.MustParse("2025-06-01"), IPOEvent, M(20))
	created := p.RecordIPO(e, map[string]Quantity{"g1": Q(10000)}, 0.5, 1.0)

	// Target 5,000 less the 4,000 already obligated leaves a 1,000 remainder.
	if len(created) != 1 {
		t.Fatalf("RecordIPO created %d obligations, want 1", len(created))
	}
	if !created[0].Shares.Equal(Q(1000)) {
		t.Errorf("IPO remainder = %s shares, want 1000", created[0].Shares)
	}
	if created[0].Type != IPORemainderObligation {
		t.Errorf("IPO obligation type = %s, want ipo_remainder", created[0].Type)
	}

	// Already fully obligated: a second IPO creates nothing.
	if again := p.RecordIPO(NewLiquidityEvent(date.MustParse("2025-07-01"), IPOEvent, M(25)),
		map[string]Quantity{"g1": Q(10000)}, 0.5, 1.0); len(again) != 0 {
		t.Errorf("second IPO created %d obligations, want 0", len(again))
	}
}

func TestExpireThrough(t *testing.T) {
	p := NewPledgeLedger()
	p.RecordSale(date.MustParse("2022-03-01"), "g1", Q(1000), 0.5, 1.0)
	p.ApplyDonation(date.MustParse("2022-06-01"), "g1", Q(400), M(20), Q(10000), 0.5, 1.0)

	// Before the window closes, nothing expires.
	if got := p.ExpireThrough(date.MustParse("2025-03-01")); !got.IsZero() {
		t.Errorf("expired %s shares before window close, want 0", got)
	}

	// After the close the 600 unfulfilled shares expire; the 400 fulfilled
	// stay on the record.
	got := p.ExpireThrough(date.MustParse("2025-03-02"))
	if !got.Equal(Q(600)) {
		t.Errorf("expired %s shares, want 600", got)
	}
	if p.Obligations[0].Status() != ObligationExpired {
		t.Errorf("obligation status = %s, want expired", p.Obligations[0].Status())
	}
	if !p.Obligations[0].Fulfilled.Equal(Q(400)) {
		t.Errorf("fulfilled after expiry = %s, want 400", p.Obligations[0].Fulfilled)
	}
}

func TestOpenShares(t *testing.T) {
	p := NewPledgeLedger()
	p.RecordSale(date.MustParse("2025-03-01"), "g1", Q(1000), 0.5, 1.0)
	p.RecordSale(date.MustParse("2025-04-01"), "g2", Q(500), 0.5, 1.0)
	p.ApplyDonation(date.MustParse("2025-05-01"), "g1", Q(300), M(20), Q(10000), 0.5, 1.0)

	if got := p.OpenShares(date.MustParse("2025-06-01")); !got.Equal(Q(1200)) {
		t.Errorf("OpenShares = %s, want 1200", got)
	}
}
