package equitysim

// CharitableUsage details how one jurisdiction's charitable deductions were
// consumed in a year. Conservation holds per kind:
// donated + prior carryforward == used + new carryforward + expired.
type CharitableUsage struct {
	CashUsed  Money `json:"cash_used"`
	StockUsed Money `json:"stock_used"`

	CashCarriedForward  Money `json:"cash_carried_forward"`
	StockCarriedForward Money `json:"stock_carried_forward"`

	CashExpired  Money `json:"cash_expired"`
	StockExpired Money `json:"stock_expired"`
}

// Total is the deduction actually taken this year.
func (u CharitableUsage) Total() Money { return u.CashUsed.Add(u.StockUsed) }

// JurisdictionResult is one jurisdiction's share of an AnnualTaxResult.
type JurisdictionResult struct {
	AGI           Money `json:"agi"`
	TaxableIncome Money `json:"taxable_income"`

	AMT AMTResult `json:"amt"`

	Charitable CharitableUsage `json:"charitable"`

	// Tax is the amount owed after AMT resolution and credit use.
	Tax Money `json:"tax"`
}

// AnnualTaxResult is the complete tax outcome of one year.
type AnnualTaxResult struct {
	Year int `json:"year"`

	Federal    JurisdictionResult `json:"federal"`
	California JurisdictionResult `json:"california"`

	TotalTax      Money   `json:"total_tax"`
	EffectiveRate Percent `json:"effective_rate"`
	MarginalRate  Percent `json:"marginal_rate"`
}

// TaxCarryforward is the cross-year tax state threaded through the
// projection: AMT credits per jurisdiction and the charitable ledgers.
type TaxCarryforward struct {
	FederalAMTCredit Money           `json:"federal_amt_credit"`
	StateAMTCredit   Money           `json:"state_amt_credit"`
	Charitable       CharitableState `json:"charitable"`
}

// NewTaxCarryforward returns an empty carryforward state.
func NewTaxCarryforward() TaxCarryforward {
	return TaxCarryforward{Charitable: NewCharitableState()}
}

// Clone returns an independent deep copy.
func (t TaxCarryforward) Clone() TaxCarryforward {
	n := t
	n.Charitable = t.Charitable.Clone()
	return n
}

// TaxElections are the year's optional choices affecting deduction ceilings.
type TaxElections struct {
	// BasisElection values all of the year's stock gifts at cost basis in
	// exchange for the higher AGI ceiling.
	BasisElection bool
	// FiftyPercentOrg marks donations to a ceiling-eligible ("50%-limit")
	// organization, which caps stock by the overall ceiling minus cash used.
	FiftyPercentOrg bool
}

// consumeCharitable runs the IRS consumption ordering for one jurisdiction:
// current-year cash, then cash carryforward (oldest first), then current-year
// stock, then stock carryforward, each under its AGI ceiling. Expiration runs
// last, after consumption.
func consumeCharitable(year int, agi Money, ceilings DeductionCeilings, elections TaxElections,
	cashGiven, stockGiven Money, cash, stock *Carryforward) CharitableUsage {

	var u CharitableUsage

	cashCeiling := agi.Scale(ceilings.Cash)

	// (1) current-year cash up to the cash ceiling.
	u.CashUsed = cashGiven.Min(cashCeiling)
	cash.Add(year, cashGiven.Sub(u.CashUsed))

	// (2) cash carryforward, oldest creation year first.
	u.CashUsed = u.CashUsed.Add(cash.Consume(year, cashCeiling.Sub(u.CashUsed)))

	stockPct := ceilings.Stock
	if elections.BasisElection {
		stockPct = ceilings.StockBasisElection
	}
	stockLimit := agi.Scale(stockPct)
	if elections.FiftyPercentOrg {
		stockLimit = stockLimit.Min(agi.Scale(ceilings.Overall).Sub(u.CashUsed).Floor0())
	}

	// (3) current-year stock up to the effective stock limit.
	u.StockUsed = stockGiven.Min(stockLimit)
	stock.Add(year, stockGiven.Sub(u.StockUsed))

	// (4) stock carryforward under the same effective limit.
	u.StockUsed = u.StockUsed.Add(stock.Consume(year, stockLimit.Sub(u.StockUsed)))

	// Expiration happens after consumption: a bucket may be consumed in its
	// fifth year before its remainder expires.
	u.CashExpired = cash.Expire(year)
	u.StockExpired = stock.Expire(year)

	u.CashCarriedForward = cash.Total()
	u.StockCarriedForward = stock.Total()
	return u
}

// calculateJurisdiction computes one jurisdiction's result and mutates its
// slice of the carryforward state.
func calculateJurisdiction(a *AnnualTaxComponents, status FilingStatus, j JurisdictionTables,
	elections TaxElections, cash, stock *Carryforward, amtCredit Money) JurisdictionResult {

	ordinary := a.OrdinaryIncome()
	shortGains := a.ShortTermGains()
	longGains := a.LongTermGains()

	// Net a capital loss in one bucket against gains in the other before
	// taxing anything. A remaining net loss does not offset ordinary income
	// here; it simply drops out of the year (loss carryover is outside this
	// model).
	if shortGains.IsNegative() || longGains.IsNegative() {
		net := shortGains.Add(longGains)
		switch {
		case !net.IsPositive():
			shortGains, longGains = M(0), M(0)
		case shortGains.IsNegative():
			shortGains, longGains = M(0), net
		default:
			shortGains, longGains = net, M(0)
		}
	}

	var r JurisdictionResult
	r.AGI = ordinary.Add(shortGains).Add(longGains)

	r.Charitable = consumeCharitable(a.Year, r.AGI, j.Ceilings, elections,
		a.CashDeductions(), a.StockDeductions(), cash, stock)

	deductions := j.StandardDeduction[status].Add(r.Charitable.Total())

	if j.LongTermGains == nil {
		// No preferential gains rate: everything is ordinary (California).
		taxable := r.AGI.Sub(deductions).Floor0()
		r.TaxableIncome = taxable
		regular := progressiveTax(j.Ordinary[status], taxable)

		amti := r.AGI.Add(a.AMTAdjustment()).Sub(r.Charitable.Total()).Floor0()
		r.AMT = ResolveAMT(j.AMT, status, regular, amti, M(0), M(0), amtCredit)
	} else {
		ordinaryTaxable := ordinary.Add(shortGains).Sub(deductions).Floor0()
		r.TaxableIncome = ordinaryTaxable.Add(longGains)

		gainsTax := stackedGainsTax(j.LongTermGains[status], ordinaryTaxable, longGains)
		regular := progressiveTax(j.Ordinary[status], ordinaryTaxable).Add(gainsTax)

		// AMT income starts from AGI (no standard deduction), adds the ISO
		// preference and keeps the charitable deduction.
		amti := r.AGI.Add(a.AMTAdjustment()).Sub(r.Charitable.Total()).Floor0()
		r.AMT = ResolveAMT(j.AMT, status, regular, amti, longGains, gainsTax, amtCredit)
	}

	r.Tax = r.AMT.TaxOwed
	return r
}

// CalculateAnnualTax aggregates one year's components into the combined
// federal + California liability, consuming and advancing the carryforward
// state. The returned carryforward is a fresh value; the input is not
// modified. Non-residents get a zero California result and their state
// ledgers are left untouched.
func CalculateAnnualTax(a *AnnualTaxComponents, status FilingStatus, tables TaxTables,
	elections TaxElections, carry TaxCarryforward, stateResident bool) (AnnualTaxResult, TaxCarryforward) {

	next := carry.Clone()

	r := AnnualTaxResult{Year: a.Year}
	r.Federal = calculateJurisdiction(a, status, tables.Federal, elections,
		&next.Charitable.FederalCash, &next.Charitable.FederalStock, carry.FederalAMTCredit)
	next.FederalAMTCredit = r.Federal.AMT.CreditCarryforward

	if stateResident {
		r.California = calculateJurisdiction(a, status, tables.California, elections,
			&next.Charitable.StateCash, &next.Charitable.StateStock, carry.StateAMTCredit)
		next.StateAMTCredit = r.California.AMT.CreditCarryforward
	}

	r.TotalTax = r.Federal.Tax.Add(r.California.Tax)
	if r.Federal.AGI.IsPositive() {
		r.EffectiveRate = Percent(r.TotalTax.AsFloat() / r.Federal.AGI.AsFloat())
	}
	r.MarginalRate = marginalRate(tables.Federal.Ordinary[status], r.Federal.TaxableIncome)
	if stateResident {
		r.MarginalRate += marginalRate(tables.California.Ordinary[status], r.California.TaxableIncome)
	}

	return r, next
}
