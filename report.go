package equitysim

import (
	"encoding/csv"
	"fmt"
	"io"
	"maps"
	"slices"
	"strconv"
)

// csvMoney renders a Money as a plain decimal for tabular export.
func csvMoney(m Money) string {
	return strconv.FormatFloat(m.AsFloat(), 'f', 2, 64)
}

// WriteAnnualCSV writes the year-by-year tax detail of a projection.
func WriteAnnualCSV(w io.Writer, r *ProjectionResult) error {
	cw := csv.NewWriter(w)
	header := []string{
		"year",
		"fed_agi", "fed_taxable", "fed_regular_tax", "fed_amt_tax", "fed_is_amt",
		"fed_credit_generated", "fed_credit_used", "fed_credit_carryforward",
		"fed_charitable_used", "fed_charitable_expired",
		"ca_taxable", "ca_tax", "ca_is_amt",
		"total_tax", "effective_rate", "marginal_rate",
		"end_cash", "equity_value", "match_earned",
	}
	if err := cw.Write(header); err != nil {
		return err
	}
	for _, y := range r.Years {
		fed, ca := y.Tax.Federal, y.Tax.California
		row := []string{
			strconv.Itoa(y.Year),
			csvMoney(fed.AGI), csvMoney(fed.TaxableIncome),
			csvMoney(fed.AMT.RegularTax), csvMoney(fed.AMT.TentativeTax),
			strconv.FormatBool(fed.AMT.IsAMT),
			csvMoney(fed.AMT.CreditGenerated), csvMoney(fed.AMT.CreditUsed),
			csvMoney(fed.AMT.CreditCarryforward),
			csvMoney(fed.Charitable.Total()),
			csvMoney(fed.Charitable.CashExpired.Add(fed.Charitable.StockExpired)),
			csvMoney(ca.TaxableIncome), csvMoney(ca.Tax),
			strconv.FormatBool(ca.AMT.IsAMT),
			csvMoney(y.Tax.TotalTax),
			fmt.Sprintf("%.4f", float64(y.Tax.EffectiveRate)),
			fmt.Sprintf("%.4f", float64(y.Tax.MarginalRate)),
			csvMoney(y.EndCash), csvMoney(y.EquityValue), csvMoney(y.MatchEarned),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WritePledgeCSV writes the pledge ledger as of the final projected year.
func WritePledgeCSV(w io.Writer, r *ProjectionResult) error {
	if len(r.Years) == 0 {
		return fmt.Errorf("projection has no years")
	}
	last := r.Years[len(r.Years)-1]

	cw := csv.NewWriter(w)
	header := []string{
		"obligation_id", "type", "grant", "created", "window_close",
		"shares", "fulfilled", "remaining", "status",
	}
	if err := cw.Write(header); err != nil {
		return err
	}
	for _, o := range last.Pledge.Obligations {
		row := []string{
			o.ID.String(), string(o.Type), o.GrantID,
			o.CreationDate.String(), o.WindowClose.String(),
			o.Shares.String(), o.Fulfilled.String(), o.Remaining().String(),
			string(o.Status()),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteCarryforwardCSV writes the charitable carryforward buckets per year.
func WriteCarryforwardCSV(w io.Writer, r *ProjectionResult) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"year", "ledger", "bucket_year", "remaining"}); err != nil {
		return err
	}
	writeLedger := func(year int, name string, c Carryforward) error {
		for _, bucket := range slices.Sorted(maps.Keys(c.Buckets)) {
			if err := cw.Write([]string{
				strconv.Itoa(year), name, strconv.Itoa(bucket), csvMoney(c.Buckets[bucket]),
			}); err != nil {
				return err
			}
		}
		return nil
	}
	for _, y := range r.Years {
		ch := y.Carryforward.Charitable
		for _, l := range []struct {
			name string
			c    Carryforward
		}{
			{"federal_cash", ch.FederalCash},
			{"federal_stock", ch.FederalStock},
			{"state_cash", ch.StateCash},
			{"state_stock", ch.StateStock},
		} {
			if err := writeLedger(y.Year, l.name, l.c); err != nil {
				return err
			}
		}
	}
	cw.Flush()
	return cw.Error()
}
