package equitysim

// AMTResult is the outcome of resolving regular tax against the alternative
// minimum tax for one jurisdiction in one year.
type AMTResult struct {
	RegularTax   Money `json:"regular_tax"`
	TentativeTax Money `json:"amt_tax"`
	IsAMT        bool  `json:"is_amt"`

	// TaxOwed is the amount actually due: the tentative tax when AMT applies,
	// otherwise the regular tax reduced by any credit consumed.
	TaxOwed Money `json:"tax_owed"`

	CreditGenerated    Money `json:"credit_generated"`
	CreditUsed         Money `json:"credit_used"`
	CreditCarryforward Money `json:"credit_carryforward"`
}

// amtExemption computes the exemption after phaseout: the exemption shrinks by
// PhaseoutRate per dollar of AMT income above the filing-status threshold,
// floored at zero.
func amtExemption(p AMTParams, status FilingStatus, amtIncome Money) Money {
	exemption := p.Exemption[status]
	start := p.PhaseoutStart[status]
	if amtIncome.GreaterThan(start) {
		exemption = exemption.Sub(amtIncome.Sub(start).Scale(p.PhaseoutRate))
	}
	return exemption.Floor0()
}

// tentativeMinimumTax applies the two-tier AMT rate to the post-exemption base.
// Long-term gains keep their preferential rate under federal AMT, so the gains
// slice is carved out of the two-tier base and its tax added back unchanged.
func tentativeMinimumTax(p AMTParams, status FilingStatus, amtIncome, longTermGains, gainsTax Money) Money {
	base := amtIncome.Sub(amtExemption(p, status, amtIncome)).Floor0()

	ordinaryBase := base.Sub(longTermGains).Floor0()
	var tax Money
	if p.RateThreshold.IsPositive() && ordinaryBase.GreaterThan(p.RateThreshold) {
		tax = p.RateThreshold.Scale(p.LowRate).
			Add(ordinaryBase.Sub(p.RateThreshold).Scale(p.HighRate))
	} else {
		tax = ordinaryBase.Scale(p.LowRate)
	}
	return tax.Add(gainsTax)
}

// ResolveAMT compares the tentative minimum tax against the regular tax and
// settles the year's credit movement.
//
// The comparison uses the regular tax before any credit is applied. When AMT
// wins, the filer pays the tentative tax and generates new credit equal to the
// excess; the existing credit is untouched. When regular tax wins, existing
// credit may be consumed down to the tentative tax level, and no new credit is
// generated. Generation and consumption are mutually exclusive within a year.
func ResolveAMT(p AMTParams, status FilingStatus, regularTax, amtIncome, longTermGains, gainsTax, existingCredit Money) AMTResult {
	tentative := tentativeMinimumTax(p, status, amtIncome, longTermGains, gainsTax)

	r := AMTResult{
		RegularTax:   regularTax,
		TentativeTax: tentative,
	}
	if tentative.GreaterThan(regularTax) {
		r.IsAMT = true
		r.TaxOwed = tentative
		r.CreditGenerated = tentative.Sub(regularTax)
	} else {
		// Credit cannot push the liability below the tentative minimum tax.
		r.CreditUsed = existingCredit.Min(regularTax.Sub(tentative))
		r.TaxOwed = regularTax.Sub(r.CreditUsed)
	}
	r.CreditCarryforward = existingCredit.Sub(r.CreditUsed).Add(r.CreditGenerated)
	return r
}
