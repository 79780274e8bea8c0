package equitysim

import "fmt"

// FilingStatus is the household's federal filing status.
type FilingStatus int

const (
	Single FilingStatus = iota
	MarriedFilingJointly
)

func (s FilingStatus) String() string {
	switch s {
	case Single:
		return "single"
	case MarriedFilingJointly:
		return "married_filing_jointly"
	default:
		return "unknown"
	}
}

// ParseFilingStatus parses a string into a FilingStatus.
func ParseFilingStatus(s string) (FilingStatus, error) {
	switch s {
	case "single":
		return Single, nil
	case "married_filing_jointly", "married":
		return MarriedFilingJointly, nil
	default:
		return 0, fmt.Errorf("unknown filing status: %q", s)
	}
}

// Holding-period and window thresholds. These are statutory and do not vary by year.
const (
	// LongTermHoldingDays is the minimum holding period, in days, for a
	// disposition to receive long-term capital gain treatment.
	LongTermHoldingDays = 366

	// isoQualifyingYearsFromGrant and isoQualifyingYearsFromExercise are the
	// two ISO holding requirements: a sale is qualifying only if it happens at
	// least 2 years after grant and 1 year after exercise.
	isoQualifyingYearsFromGrant    = 2
	isoQualifyingYearsFromExercise = 1

	// matchWindowYears is how long a liquidity event keeps donations
	// match-eligible and sale obligations open.
	matchWindowYears = 3

	// carryforwardYears is the maximum age of a charitable deduction
	// carryforward bucket: a bucket created in year Y may still be consumed in
	// year Y+4 and expires at the close of that year.
	carryforwardYears = 5
)

// Bracket is one step of a progressive rate schedule. Threshold is the lower
// bound of the bracket; the schedule must be sorted by ascending threshold
// with the first threshold at zero.
type Bracket struct {
	Threshold Money
	Rate      Percent
}

// AMTParams holds the parameters of a jurisdiction's alternative minimum tax.
// Federal AMT is two-tier with an exemption phaseout; California AMT is a
// flat rate, expressed here with LowRate == HighRate.
type AMTParams struct {
	Exemption     map[FilingStatus]Money
	PhaseoutStart map[FilingStatus]Money
	PhaseoutRate  Percent // exemption reduction per dollar of AMTI above PhaseoutStart
	LowRate       Percent
	HighRate      Percent
	RateThreshold Money // AMT base above which HighRate applies
}

// DeductionCeilings are the AGI-percentage caps on charitable deductions.
type DeductionCeilings struct {
	Cash               Percent // cash gifts
	Stock              Percent // appreciated stock at fair market value
	StockBasisElection Percent // stock valued at cost basis under the basis election
	Overall            Percent // combined cap for gifts to 50%-limit organizations
}

// JurisdictionTables holds one jurisdiction's rate schedules for one year.
type JurisdictionTables struct {
	Ordinary          map[FilingStatus][]Bracket
	LongTermGains     map[FilingStatus][]Bracket // nil when gains are taxed as ordinary income
	StandardDeduction map[FilingStatus]Money
	AMT               AMTParams
	Ceilings          DeductionCeilings
}

// TaxTables holds the complete constant set for one tax year.
type TaxTables struct {
	Year       int
	Federal    JurisdictionTables
	California JurisdictionTables
}

// brackets is a small helper to build a rate schedule from (threshold, rate) pairs.
func brackets(pairs ...any) []Bracket {
	if len(pairs)%2 != 0 {
		panic("brackets requires (threshold, rate) pairs")
	}
	bs := make([]Bracket, 0, len(pairs)/2)
	for i := 0; i < len(pairs); i += 2 {
		bs = append(bs, Bracket{Threshold: M(pairs[i].(int)), Rate: Percent(pairs[i+1].(float64))})
	}
	return bs
}

// tables2025 is the most recent constant set. Projection years beyond the most
// recent table reuse it unchanged (no inflation indexing of future years).
var tables2025 = TaxTables{
	Year: 2025,
	Federal: JurisdictionTables{
		Ordinary: map[FilingStatus][]Bracket{
			Single: brackets(
				0, 0.10, 11925, 0.12, 48475, 0.22, 103350, 0.24,
				197300, 0.32, 250525, 0.35, 626350, 0.37),
			MarriedFilingJointly: brackets(
				0, 0.10, 23850, 0.12, 96950, 0.22, 206700, 0.24,
				394600, 0.32, 501050, 0.35, 751600, 0.37),
		},
		LongTermGains: map[FilingStatus][]Bracket{
			Single:               brackets(0, 0.0, 48350, 0.15, 533400, 0.20),
			MarriedFilingJointly: brackets(0, 0.0, 96700, 0.15, 600050, 0.20),
		},
		StandardDeduction: map[FilingStatus]Money{
			Single:               M(15000),
			MarriedFilingJointly: M(30000),
		},
		AMT: AMTParams{
			Exemption: map[FilingStatus]Money{
				Single:               M(88100),
				MarriedFilingJointly: M(137000),
			},
			PhaseoutStart: map[FilingStatus]Money{
				Single:               M(626350),
				MarriedFilingJointly: M(1252700),
			},
			PhaseoutRate:  0.25,
			LowRate:       0.26,
			HighRate:      0.28,
			RateThreshold: M(239100),
		},
		Ceilings: DeductionCeilings{
			Cash:               0.60,
			Stock:              0.30,
			StockBasisElection: 0.50,
			Overall:            0.50,
		},
	},
	California: JurisdictionTables{
		Ordinary: map[FilingStatus][]Bracket{
			Single: brackets(
				0, 0.01, 10756, 0.02, 25499, 0.04, 40245, 0.06, 55866, 0.08,
				70606, 0.093, 360659, 0.103, 432787, 0.113, 721314, 0.123),
			MarriedFilingJointly: brackets(
				0, 0.01, 21512, 0.02, 50998, 0.04, 80490, 0.06, 111732, 0.08,
				141212, 0.093, 721318, 0.103, 865574, 0.113, 1442628, 0.123),
		},
		// California taxes capital gains as ordinary income.
		LongTermGains: nil,
		StandardDeduction: map[FilingStatus]Money{
			Single:               M(5540),
			MarriedFilingJointly: M(11080),
		},
		AMT: AMTParams{
			Exemption: map[FilingStatus]Money{
				Single:               M(87171),
				MarriedFilingJointly: M(116229),
			},
			PhaseoutStart: map[FilingStatus]Money{
				Single:               M(326891),
				MarriedFilingJointly: M(435855),
			},
			PhaseoutRate: 0.25,
			LowRate:      0.07,
			HighRate:     0.07,
		},
		Ceilings: DeductionCeilings{
			Cash:               0.50,
			Stock:              0.30,
			StockBasisElection: 0.50,
			Overall:            0.50,
		},
	},
}

// tables2024 kept for projections that start before 2025.
var tables2024 = TaxTables{
	Year: 2024,
	Federal: JurisdictionTables{
		Ordinary: map[FilingStatus][]Bracket{
			Single: brackets(
				0, 0.10, 11600, 0.12, 47150, 0.22, 100525, 0.24,
				191950, 0.32, 243725, 0.35, 609350, 0.37),
			MarriedFilingJointly: brackets(
				0, 0.10, 23200, 0.12, 94300, 0.22, 201050, 0.24,
				383900, 0.32, 487450, 0.35, 731200, 0.37),
		},
		LongTermGains: map[FilingStatus][]Bracket{
			Single:               brackets(0, 0.0, 47025, 0.15, 518900, 0.20),
			MarriedFilingJointly: brackets(0, 0.0, 94050, 0.15, 583750, 0.20),
		},
		StandardDeduction: map[FilingStatus]Money{
			Single:               M(14600),
			MarriedFilingJointly: M(29200),
		},
		AMT: AMTParams{
			Exemption: map[FilingStatus]Money{
				Single:               M(85700),
				MarriedFilingJointly: M(133300),
			},
			PhaseoutStart: map[FilingStatus]Money{
				Single:               M(609350),
				MarriedFilingJointly: M(1218700),
			},
			PhaseoutRate:  0.25,
			LowRate:       0.26,
			HighRate:      0.28,
			RateThreshold: M(232600),
		},
		Ceilings: DeductionCeilings{
			Cash:               0.60,
			Stock:              0.30,
			StockBasisElection: 0.50,
			Overall:            0.50,
		},
	},
	California: JurisdictionTables{
		Ordinary: map[FilingStatus][]Bracket{
			Single: brackets(
				0, 0.01, 10412, 0.02, 24684, 0.04, 38959, 0.06, 54081, 0.08,
				68350, 0.093, 349137, 0.103, 418961, 0.113, 698271, 0.123),
			MarriedFilingJointly: brackets(
				0, 0.01, 20824, 0.02, 49368, 0.04, 77918, 0.06, 108162, 0.08,
				136700, 0.093, 698274, 0.103, 837922, 0.113, 1396542, 0.123),
		},
		LongTermGains: nil,
		StandardDeduction: map[FilingStatus]Money{
			Single:               M(5363),
			MarriedFilingJointly: M(10726),
		},
		AMT: AMTParams{
			Exemption: map[FilingStatus]Money{
				Single:               M(85084),
				MarriedFilingJointly: M(113464),
			},
			PhaseoutStart: map[FilingStatus]Money{
				Single:               M(319265),
				MarriedFilingJointly: M(425727),
			},
			PhaseoutRate: 0.25,
			LowRate:      0.07,
			HighRate:     0.07,
		},
		Ceilings: DeductionCeilings{
			Cash:               0.50,
			Stock:              0.30,
			StockBasisElection: 0.50,
			Overall:            0.50,
		},
	},
}

var tablesByYear = map[int]TaxTables{
	2024: tables2024,
	2025: tables2025,
}

const latestTableYear = 2025

// Constants returns the tax constant tables applicable to a year.
// Years beyond the latest published table reuse the latest table; years
// before the earliest one are rejected, a projection cannot start there.
func Constants(year int) (TaxTables, error) {
	if t, ok := tablesByYear[year]; ok {
		return t, nil
	}
	if year > latestTableYear {
		t := tablesByYear[latestTableYear]
		t.Year = year
		return t, nil
	}
	return TaxTables{}, fmt.Errorf("no tax tables published for year %d", year)
}

// MarshalJSON serializes the filing status as its string form.
func (s FilingStatus) MarshalJSON() ([]byte, error) {
	return []byte(fmt.Sprintf("%q", s.String())), nil
}

// UnmarshalJSON parses the string form.
func (s *FilingStatus) UnmarshalJSON(b []byte) error {
	str := string(b)
	if len(str) >= 2 && str[0] == '"' {
		str = str[1 : len(str)-1]
	}
	parsed, err := ParseFilingStatus(str)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// UnmarshalYAML parses the string form from scenario files.
func (s *FilingStatus) UnmarshalYAML(unmarshal func(any) error) error {
	var str string
	if err := unmarshal(&str); err != nil {
		return err
	}
	parsed, err := ParseFilingStatus(str)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// MarshalYAML serializes the string form.
func (s FilingStatus) MarshalYAML() (any, error) { return s.String(), nil }
