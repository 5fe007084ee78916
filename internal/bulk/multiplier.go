package bulk

import (
	"fmt"
	"math"

	"github.com/mesh-intelligence/typesmith/pkg/types"
)

// Multiplier is one of the fixed factors of the multiplier buttons, kept as
// a fraction so results are computed in integers.
type Multiplier struct {
	Name string
	Num  int64
	Den  int64
}

// The multiplier buttons. Standard restores the default values instead of
// multiplying.
var (
	Times10  = Multiplier{Name: "x10", Num: 10, Den: 1}
	Times5   = Multiplier{Name: "x5", Num: 5, Den: 1}
	Times2   = Multiplier{Name: "x2", Num: 2, Den: 1}
	Standard = Multiplier{Name: "standard", Num: 1, Den: 1}
	Div2     = Multiplier{Name: "/2", Num: 1, Den: 2}
	Div5     = Multiplier{Name: "/5", Num: 1, Den: 5}
	Div10    = Multiplier{Name: "/10", Num: 1, Den: 10}
)

// Multipliers lists the buttons in display order.
var Multipliers = []Multiplier{Times10, Times5, Times2, Standard, Div2, Div5, Div10}

// ParseMultiplier returns the multiplier with the given name.
func ParseMultiplier(name string) (Multiplier, error) {
	for _, m := range Multipliers {
		if m.Name == name {
			return m, nil
		}
	}
	return Multiplier{}, fmt.Errorf("multiplier %q: %w", name, types.ErrUnknownOption)
}

// Apply returns floor(v * m) for a non-negative v. It reports false when
// the product does not fit in an int64.
func (m Multiplier) Apply(v int64) (int64, bool) {
	p, ok := mulCount(v, m.Num)
	if !ok {
		return 0, false
	}
	return p / m.Den, true
}

// mulCount multiplies two non-negative counts, reporting false on overflow.
func mulCount(a, b int64) (int64, bool) {
	if b != 0 && a > math.MaxInt64/b {
		return 0, false
	}
	return a * b, true
}

func (m Multiplier) String() string { return m.Name }
