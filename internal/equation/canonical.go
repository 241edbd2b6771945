package equation

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// NoRoots is the canonical answer text for an equation without real roots.
const NoRoots = "no roots"

// ErrNotQuadratic is returned when the leading coefficient is zero.
var ErrNotQuadratic = errors.New("equation: coefficient a must be non-zero")

// Solution is the canonical solution of a*x^2 + b*x + c = 0.
type Solution struct {
	A, B, C      int
	Discriminant int

	// Roots holds 0, 1 or 2 roots, rounded with Round2 and sorted ascending.
	Roots []float64
}

// Solve computes the discriminant and the canonical roots of the equation.
func Solve(a, b, c int) (Solution, error) {
	if a == 0 {
		return Solution{}, ErrNotQuadratic
	}

	d := b*b - 4*a*c
	sol := Solution{A: a, B: b, C: c, Discriminant: d}

	switch {
	case d < 0:
		// No real roots.
	case d == 0:
		sol.Roots = []float64{Round2(float64(-b) / float64(2*a))}
	default:
		sq := math.Sqrt(float64(d))
		r1 := Round2((float64(-b) + sq) / float64(2*a))
		r2 := Round2((float64(-b) - sq) / float64(2*a))
		if r1 > r2 {
			r1, r2 = r2, r1
		}
		sol.Roots = []float64{r1, r2}
	}
	return sol, nil
}

// RootCount returns the number of distinct real roots.
func (s Solution) RootCount() int {
	return len(s.Roots)
}

// Canonical returns the canonical answer text: "no roots", "r" or "r1, r2".
func (s Solution) Canonical() string {
	if len(s.Roots) == 0 {
		return NoRoots
	}
	return JoinNumbers(s.Roots)
}

// String renders the equation in a human-readable form, e.g. "2x² - 5x + 3 = 0".
func (s Solution) String() string {
	return Format(s.A, s.B, s.C)
}

// Round2 rounds x to two decimal places, half away from zero.
// Rounding works on the shortest decimal form of x, so 1.005 becomes 1.01
// even though its binary value is slightly below 1.005.
// Both the expected roots and the numbers a student types go through this
// function, so values near a .005 boundary round identically on both sides.
func Round2(x float64) float64 {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return x
	}
	digits := strconv.FormatFloat(math.Abs(x), 'f', -1, 64)
	whole, frac, _ := strings.Cut(digits, ".")
	if len(frac) <= 2 {
		return collapseZero(x)
	}

	// A value with more than two fraction digits is below 2^53, so the
	// hundredths count fits in an int64.
	w, err := strconv.ParseInt(whole, 10, 64)
	if err != nil {
		return collapseZero(x)
	}
	h, _ := strconv.ParseInt(frac[:2], 10, 64)
	cents := w*100 + h
	if frac[2] >= '5' {
		cents++
	}

	r, _ := strconv.ParseFloat(fmt.Sprintf("%d.%02d", cents/100, cents%100), 64)
	if x < 0 {
		r = -r
	}
	return collapseZero(r)
}

func collapseZero(x float64) float64 {
	if x == 0 {
		return 0
	}
	return x
}

// FormatNumber renders x in its shortest decimal form ("-1", "1.5").
func FormatNumber(x float64) string {
	if x == 0 {
		x = 0
	}
	return strconv.FormatFloat(x, 'f', -1, 64)
}

// JoinNumbers renders a list of numbers separated by ", ".
func JoinNumbers(nums []float64) string {
	parts := make([]string, len(nums))
	for i, n := range nums {
		parts[i] = FormatNumber(n)
	}
	return strings.Join(parts, ", ")
}

// Format renders the equation with its coefficients, omitting zero terms.
func Format(a, b, c int) string {
	var sb strings.Builder
	sb.WriteString(term(a, "x²", true))
	if b != 0 {
		sb.WriteString(term(b, "x", false))
	}
	if c != 0 {
		sb.WriteString(term(c, "", false))
	}
	sb.WriteString(" = 0")
	return sb.String()
}

func term(coef int, variable string, leading bool) string {
	sign := ""
	abs := coef
	if coef < 0 {
		abs = -coef
	}
	switch {
	case leading && coef < 0:
		sign = "-"
	case !leading && coef < 0:
		sign = " - "
	case !leading:
		sign = " + "
	}

	num := strconv.Itoa(abs)
	if abs == 1 && variable != "" {
		num = ""
	}
	return fmt.Sprintf("%s%s%s", sign, num, variable)
}
