// Package renderer turns projection results into markdown reports for
// terminal display or export.
package renderer

import (
	"fmt"
	"strings"

	"github.com/etnz/equitysim"
)

// ProjectionMarkdown renders the year-by-year projection as a markdown report.
func ProjectionMarkdown(r *equitysim.ProjectionResult, profile equitysim.UserProfile) string {
	var b strings.Builder

	name := r.Name
	if name == "" {
		name = "Projection"
	}
	fmt.Fprintf(&b, "# %s: %d - %d\n\n", name, r.StartYear, r.EndYear)
	fmt.Fprintf(&b, "Filing %s", profile.FilingStatus)
	if profile.CaliforniaResident {
		fmt.Fprint(&b, ", California resident")
	}
	fmt.Fprintf(&b, ". Pledge %s, match %s.\n\n", profile.PledgePercent, profile.MatchRatio)

	fmt.Fprint(&b, "## Tax by Year\n\n")
	fmt.Fprintln(&b, "| Year | AGI | Federal | California | Total | AMT? | Effective |")
	fmt.Fprintln(&b, "|:---|---:|---:|---:|---:|:---:|---:|")
	for _, y := range r.Years {
		amtFlag := "-"
		if y.Tax.Federal.AMT.IsAMT {
			amtFlag = "federal"
		}
		if y.Tax.California.AMT.IsAMT {
			if amtFlag == "-" {
				amtFlag = "state"
			} else {
				amtFlag = "both"
			}
		}
		fmt.Fprintf(&b, "| %d | %s | %s | %s | %s | %s | %s |\n",
			y.Year,
			y.Tax.Federal.AGI,
			y.Tax.Federal.Tax,
			y.Tax.California.Tax,
			y.Tax.TotalTax,
			amtFlag,
			y.Tax.EffectiveRate,
		)
	}
	fmt.Fprintln(&b)

	fmt.Fprint(&b, "## AMT Credit\n\n")
	fmt.Fprintln(&b, "| Year | Generated | Used | Carryforward |")
	fmt.Fprintln(&b, "|:---|---:|---:|---:|")
	for _, y := range r.Years {
		amt := y.Tax.Federal.AMT
		fmt.Fprintf(&b, "| %d | %s | %s | %s |\n",
			y.Year, amt.CreditGenerated.SignedString(), amt.CreditUsed.SignedString(),
			amt.CreditCarryforward)
	}
	fmt.Fprintln(&b)

	fmt.Fprint(&b, "## Charitable Deductions (federal)\n\n")
	fmt.Fprintln(&b, "| Year | Cash Used | Stock Used | Carried Forward | Expired |")
	fmt.Fprintln(&b, "|:---|---:|---:|---:|---:|")
	for _, y := range r.Years {
		ch := y.Tax.Federal.Charitable
		fmt.Fprintf(&b, "| %d | %s | %s | %s | %s |\n",
			y.Year, ch.CashUsed, ch.StockUsed,
			ch.CashCarriedForward.Add(ch.StockCarriedForward),
			ch.CashExpired.Add(ch.StockExpired).SignedString(),
		)
	}
	fmt.Fprintln(&b)

	fmt.Fprint(&b, "## Cash and Equity\n\n")
	fmt.Fprintln(&b, "| Year | End Cash | Equity Value | Match Earned |")
	fmt.Fprintln(&b, "|:---|---:|---:|---:|")
	for _, y := range r.Years {
		fmt.Fprintf(&b, "| %d | %s | %s | %s |\n",
			y.Year, y.EndCash, y.EquityValue, y.MatchEarned.SignedString())
	}
	fmt.Fprintln(&b)

	b.WriteString(pledgeSection(r))
	return b.String()
}

// pledgeSection renders the final pledge ledger, skipped when empty.
func pledgeSection(r *equitysim.ProjectionResult) string {
	if len(r.Years) == 0 {
		return ""
	}
	last := r.Years[len(r.Years)-1]
	if last.Pledge == nil || len(last.Pledge.Obligations) == 0 {
		return ""
	}

	var b strings.Builder
	fmt.Fprint(&b, "## Pledge Obligations\n\n")
	fmt.Fprintln(&b, "| Created | Type | Grant | Shares | Fulfilled | Status | Window Closes |")
	fmt.Fprintln(&b, "|:---|:---|:---|---:|---:|:---|:---|")
	for _, o := range last.Pledge.Obligations {
		fmt.Fprintf(&b, "| %s | %s | %s | %s | %s | %s | %s |\n",
			o.CreationDate, o.Type, o.GrantID, o.Shares, o.Fulfilled, o.Status(), o.WindowClose)
	}
	fmt.Fprintln(&b)
	return b.String()
}

// YearMarkdown renders a single year's detail, component by component.
func YearMarkdown(y *equitysim.YearlyState) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Year %d\n\n", y.Year)

	if len(y.Components.Exercises) > 0 {
		fmt.Fprint(&b, "## Exercises\n\n")
		fmt.Fprintln(&b, "| Date | Lot | Type | Shares | Bargain Element | Ordinary Income | AMT Adjustment |")
		fmt.Fprintln(&b, "|:---|:---|:---|---:|---:|---:|---:|")
		for _, e := range y.Components.Exercises {
			fmt.Fprintf(&b, "| %s | %s | %s | %s | %s | %s | %s |\n",
				e.Date, e.LotID, e.Type, e.Shares, e.BargainElement, e.OrdinaryIncome, e.AMTAdjustment)
		}
		fmt.Fprintln(&b)
	}

	if len(y.Components.Sales) > 0 {
		fmt.Fprint(&b, "## Sales\n\n")
		fmt.Fprintln(&b, "| Date | Lot | Shares | Proceeds | Ordinary | Short-Term | Long-Term | Disqualifying |")
		fmt.Fprintln(&b, "|:---|:---|---:|---:|---:|---:|---:|:---:|")
		for _, s := range y.Components.Sales {
			fmt.Fprintf(&b, "| %s | %s | %s | %s | %s | %s | %s | %v |\n",
				s.Date, s.LotID, s.Shares, s.Proceeds, s.OrdinaryIncome,
				s.ShortTermGain.SignedString(), s.LongTermGain.SignedString(), s.Disqualifying)
		}
		fmt.Fprintln(&b)
	}

	if len(y.Components.Donations) > 0 {
		fmt.Fprint(&b, "## Donations\n\n")
		fmt.Fprintln(&b, "| Date | Lot | Shares | Deduction | Match |")
		fmt.Fprintln(&b, "|:---|:---|---:|---:|---:|")
		for _, d := range y.Components.Donations {
			lot := d.LotID
			if d.Cash {
				lot = "(cash)"
			}
			fmt.Fprintf(&b, "| %s | %s | %s | %s | %s |\n",
				d.Date, lot, d.Shares, d.DeductionValue, d.MatchAmount.SignedString())
		}
		fmt.Fprintln(&b)
	}
	return b.String()
}
