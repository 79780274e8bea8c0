package equitysim

// progressiveTax applies a progressive rate schedule to a taxable amount.
// The schedule must be sorted by ascending threshold, first threshold zero.
func progressiveTax(schedule []Bracket, taxable Money) Money {
	if !taxable.IsPositive() {
		return M(0)
	}
	var tax Money
	for i, b := range schedule {
		top := taxable
		if i+1 < len(schedule) {
			top = taxable.Min(schedule[i+1].Threshold)
		}
		if top.LessThanOrEqual(b.Threshold) {
			break
		}
		tax = tax.Add(top.Sub(b.Threshold).Scale(b.Rate))
	}
	return tax
}

// stackedGainsTax taxes long-term gains with bracket boundaries evaluated
// starting at the ordinary taxable income level, not from zero. A filer with
// ordinary income inside the 0% gain bracket pays 0% only on the slice of
// gains that fits below the bracket boundary, 15% on the next slice, and so
// on, producing a blended effective rate.
func stackedGainsTax(schedule []Bracket, ordinaryTaxable, gains Money) Money {
	if !gains.IsPositive() {
		return M(0)
	}
	bottom := ordinaryTaxable.Floor0()
	top := bottom.Add(gains)
	var tax Money
	for i, b := range schedule {
		sliceBottom := bottom.Max(b.Threshold)
		sliceTop := top
		if i+1 < len(schedule) {
			sliceTop = top.Min(schedule[i+1].Threshold)
		}
		if sliceTop.GreaterThan(sliceBottom) {
			tax = tax.Add(sliceTop.Sub(sliceBottom).Scale(b.Rate))
		}
	}
	return tax
}

// marginalRate returns the bracket rate that applies at a given taxable income.
func marginalRate(schedule []Bracket, taxable Money) Percent {
	var rate Percent
	for _, b := range schedule {
		if taxable.LessThan(b.Threshold) {
			break
		}
		rate = b.Rate
	}
	return rate
}
