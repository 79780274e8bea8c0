package equitysim

import "fmt"

// Percent is a ratio, e.g. 0.25 for 25%.
type Percent float64

func (p Percent) Equal(q Percent) bool {
	// it has to be compared with some precision
	const precision = 0.0001
	diff := p - q
	if diff < 0 {
		diff = -diff
	}
	return diff < precision
}

func (p Percent) String() string {
	return fmt.Sprintf("%.2f%%", 100*p)
}

// Complement returns 1 - p.
func (p Percent) Complement() Percent { return 1 - p }
