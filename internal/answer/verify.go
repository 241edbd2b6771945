package answer

import (
	"regexp"
	"strings"

	"github.com/abhisek/testdrill/internal/equation"
)

// KeywordsPrefix starts the expected text of a keywords question.
const KeywordsPrefix = "answer must contain: "

// delimitedPattern matches masks written as "/pattern/flags".
var delimitedPattern = regexp.MustCompile(`^/(.+)/([gimsuy]*)$`)

// Verify checks a raw student answer against spec.
//
// The answer is trimmed first; an empty answer is always incorrect and
// reports the spec's canonical mask. Verify has no side effects.
func Verify(raw string, spec Spec) Result {
	ans := strings.TrimSpace(raw)
	if ans == "" {
		return Result{Expected: spec.CanonicalMask()}
	}

	switch s := spec.(type) {
	case EquationSpec:
		return checkEquation(ans, s)
	case TextSpec:
		switch s.Strategy {
		case StrategyKeywords:
			return checkKeywords(ans, s.Mask)
		case StrategyRegex:
			return checkRegex(ans, s.Mask)
		case StrategyNumeric:
			return checkNumeric(ans, s.Mask)
		default:
			return checkExact(ans, s.Mask)
		}
	}
	return Result{}
}

// CanonicalMask derives the numeric mask from the equation's roots.
func (s EquationSpec) CanonicalMask() string {
	sol, err := equation.Solve(s.A, s.B, s.C)
	if err != nil {
		return ""
	}
	return sol.Canonical()
}

func checkEquation(ans string, s EquationSpec) Result {
	sol, err := equation.Solve(s.A, s.B, s.C)
	if err != nil {
		return Result{}
	}
	return checkNumeric(ans, sol.Canonical())
}

// checkExact accepts any of the comma-separated variants, ignoring case.
func checkExact(ans, mask string) Result {
	variants := splitList(mask)
	norm := strings.ToLower(ans)

	res := Result{}
	if len(variants) > 0 {
		res.Expected = variants[0]
	}
	for _, v := range variants {
		if strings.ToLower(v) == norm {
			res.Correct = true
			break
		}
	}
	return res
}

// checkKeywords requires every keyword to appear somewhere in the answer.
// Keywords match inside longer words too.
func checkKeywords(ans, mask string) Result {
	keywords := splitList(mask)
	norm := strings.ToLower(ans)

	lowered := make([]string, 0, len(keywords))
	correct := true
	for _, kw := range keywords {
		kw = strings.ToLower(kw)
		if kw == "" {
			continue
		}
		lowered = append(lowered, kw)
		if !strings.Contains(norm, kw) {
			correct = false
		}
	}
	return Result{
		Correct:  correct,
		Expected: KeywordsPrefix + strings.Join(lowered, ", "),
	}
}

// checkRegex matches the answer against the compiled mask. A mask that does
// not compile is matched as an exact-variants mask instead.
func checkRegex(ans, mask string) Result {
	re, err := compileMask(mask)
	if err != nil {
		return checkExact(ans, mask)
	}
	return Result{Correct: re.MatchString(ans), Expected: mask}
}

// compileMask turns "/pattern/flags" or a bare pattern into a regexp.
// Bare patterns and delimited patterns without flags are case-insensitive.
// Only the i, m and s flags have an effect.
func compileMask(mask string) (*regexp.Regexp, error) {
	pattern := mask
	flags := "i"
	if m := delimitedPattern.FindStringSubmatch(mask); m != nil {
		pattern = m[1]
		if m[2] != "" {
			flags = m[2]
		}
	}

	var goFlags strings.Builder
	for _, f := range []string{"i", "m", "s"} {
		if strings.Contains(flags, f) {
			goFlags.WriteString(f)
		}
	}
	if goFlags.Len() > 0 {
		pattern = "(?" + goFlags.String() + ")" + pattern
	}
	return regexp.Compile(pattern)
}

// splitList splits a comma-separated mask and trims each entry.
func splitList(mask string) []string {
	parts := strings.Split(mask, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		out = append(out, strings.TrimSpace(p))
	}
	return out
}
