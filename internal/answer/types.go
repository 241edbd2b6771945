package answer

// Strategy selects how a free-text answer is matched against its mask.
type Strategy string

const (
	StrategyExact    Strategy = "exact"    // comma-separated accepted variants
	StrategyKeywords Strategy = "keywords" // every keyword must occur
	StrategyRegex    Strategy = "regex"    // "/pattern/flags" or a bare pattern
	StrategyNumeric  Strategy = "numeric"  // number lists with tolerance
)

// Strategies lists all supported strategies.
var Strategies = []Strategy{StrategyExact, StrategyKeywords, StrategyRegex, StrategyNumeric}

// Spec describes the correct answer of a question. It is implemented by
// EquationSpec and TextSpec only.
type Spec interface {
	// CanonicalMask returns the mask reported when an answer is empty.
	CanonicalMask() string

	isSpec()
}

// EquationSpec checks the roots of a*x^2 + b*x + c = 0.
type EquationSpec struct {
	A, B, C int
}

// TextSpec checks a free-text answer against a mask with a strategy.
type TextSpec struct {
	Mask     string
	Strategy Strategy
}

func (EquationSpec) isSpec() {}
func (TextSpec) isSpec()     {}

// CanonicalMask returns the text mask as stored.
func (s TextSpec) CanonicalMask() string { return s.Mask }

// Result is the verdict for one answer.
type Result struct {
	Correct bool `json:"is_correct"`

	// Expected is the canonical correct answer shown to the student.
	Expected string `json:"expected"`
}
