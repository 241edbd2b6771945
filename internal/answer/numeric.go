package answer

import (
	"math"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/abhisek/testdrill/internal/equation"
)

// Epsilon is the absolute tolerance of numeric comparisons.
const Epsilon = 0.01

// slack absorbs binary representation error so that a difference of exactly
// Epsilon (1.51 vs 1.5) is accepted.
const slack = 1e-9

// NoRootsSynonyms is the closed list of phrases meaning "no roots". Masks and
// answers are compared against the same list.
var NoRootsSynonyms = []string{
	equation.NoRoots,
	"no real roots",
	"no solutions",
	"no solution",
	"empty set",
	"нет корней",
	"нет решений",
	"корней нет",
	"решений нет",
	"0 корней",
	"пустое множество",
}

var (
	// rootLabel strips "x =", "x1 =", "x₂ =" prefixes from typed roots.
	rootLabel = regexp.MustCompile(`(?i)x[₁₂12]?\s*=\s*`)

	// andWord separates roots written as "1 and 2".
	andWord = regexp.MustCompile(`(?i)\band\b`)

	// leadingNumber matches the numeric prefix of a token, the way
	// parseFloat-style readers accept "1.5cm".
	leadingNumber = regexp.MustCompile(`^[+-]?(\d+(\.\d*)?|\.\d+)([eE][+-]?\d+)?`)
)

// IsNoRoots reports whether s, case-normalised, is one of the no-roots synonyms.
func IsNoRoots(s string) bool {
	return slices.Contains(NoRootsSynonyms, strings.ToLower(strings.TrimSpace(s)))
}

// mentionsNoRoots reports whether s contains any no-roots synonym.
func mentionsNoRoots(s string) bool {
	s = strings.ToLower(s)
	for _, p := range NoRootsSynonyms {
		if strings.Contains(s, p) {
			return true
		}
	}
	return false
}

// checkNumeric compares number lists within Epsilon, ignoring order.
func checkNumeric(ans, mask string) Result {
	if IsNoRoots(mask) {
		return Result{
			Correct:  mentionsNoRoots(ans),
			Expected: strings.TrimSpace(mask),
		}
	}

	if mentionsNoRoots(ans) {
		return Result{Expected: mask}
	}

	expected := roundAll(ParseNumbers(mask))
	actual := roundAll(ParseNumbers(ans))
	res := Result{Expected: equation.JoinNumbers(expected)}

	if len(expected) != len(actual) {
		return res
	}
	for i := range expected {
		if math.Abs(expected[i]-actual[i]) > Epsilon+slack {
			return res
		}
	}
	res.Correct = true
	return res
}

// roundAll applies equation.Round2 to every number, keeping the order sorted.
func roundAll(nums []float64) []float64 {
	for i, n := range nums {
		nums[i] = equation.Round2(n)
	}
	slices.Sort(nums)
	return nums
}

// ParseNumbers reads a list of numbers separated by commas, semicolons or
// "и"/"and", sorted ascending. Tokens without a number are dropped.
func ParseNumbers(s string) []float64 {
	s = rootLabel.ReplaceAllString(s, "")
	s = andWord.ReplaceAllString(s, ",")
	s = strings.ReplaceAll(s, "и", ",")
	s = strings.ReplaceAll(s, ";", ",")

	var nums []float64
	for _, tok := range strings.Split(s, ",") {
		tok = strings.TrimSpace(tok)
		m := leadingNumber.FindString(tok)
		if m == "" {
			continue
		}
		n, err := strconv.ParseFloat(m, 64)
		if err != nil || math.IsInf(n, 0) {
			continue
		}
		nums = append(nums, n)
	}
	slices.Sort(nums)
	return nums
}
