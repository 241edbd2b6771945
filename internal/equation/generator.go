package equation

import (
	"fmt"
	"math/rand/v2"
	"slices"
)

// Mode selects which kind of equation the Generator produces.
type Mode string

const (
	ModeFull       Mode = "full"       // b != 0
	ModeIncomplete Mode = "incomplete" // b == 0
	ModeRandom     Mode = "random"     // either, chosen per question
)

// OptionCount is the number of answer options offered per drill question.
const OptionCount = 4

// Option is a single multiple choice answer for a drill question.
type Option struct {
	Label   string
	Correct bool
}

// Drill is a generated trainer question.
type Drill struct {
	Mode     Mode
	Solution Solution
	Options  []Option
}

// Generator produces random equations for the trainer.
type Generator struct {
	rng *rand.Rand
}

// NewGenerator creates a Generator. A nil source seeds from the runtime.
func NewGenerator(src rand.Source) *Generator {
	if src == nil {
		src = rand.NewPCG(rand.Uint64(), rand.Uint64())
	}
	return &Generator{rng: rand.New(src)}
}

// ParseMode converts a CLI value into a Mode.
func ParseMode(s string) (Mode, error) {
	switch m := Mode(s); m {
	case ModeFull, ModeIncomplete, ModeRandom:
		return m, nil
	}
	return "", fmt.Errorf("unknown equation mode %q", s)
}

// Generate builds a drill question with shuffled options.
func (g *Generator) Generate(mode Mode) Drill {
	if mode == ModeRandom {
		mode = ModeIncomplete
		if g.rng.IntN(2) == 0 {
			mode = ModeFull
		}
	}

	a := g.nonZero(-5, 5)
	b := 0
	if mode == ModeFull {
		b = g.intRange(-10, 10)
	}
	c := g.nonZero(-10, 10)

	// a is never zero here.
	sol, _ := Solve(a, b, c)

	var options []Option
	if sol.RootCount() == 0 {
		options = append(options, Option{Label: "No roots", Correct: true})
		for len(options) < OptionCount {
			label := fmt.Sprintf("x = %d", g.nonZero(-5, 5))
			if !hasLabel(options, label) {
				options = append(options, Option{Label: label})
			}
		}
	} else {
		for _, r := range sol.Roots {
			options = append(options, Option{Label: "x = " + FormatNumber(r), Correct: true})
		}
		for len(options) < OptionCount {
			fake := Round2(sol.Roots[0] + float64(g.nonZero(-3, 3)))
			label := "x = " + FormatNumber(fake)
			if slices.Contains(sol.Roots, fake) || hasLabel(options, label) {
				continue
			}
			options = append(options, Option{Label: label})
		}
	}

	g.rng.Shuffle(len(options), func(i, j int) {
		options[i], options[j] = options[j], options[i]
	})

	return Drill{Mode: mode, Solution: sol, Options: options}
}

func (g *Generator) intRange(lo, hi int) int {
	return lo + g.rng.IntN(hi-lo+1)
}

func (g *Generator) nonZero(lo, hi int) int {
	for {
		if n := g.intRange(lo, hi); n != 0 {
			return n
		}
	}
}

func hasLabel(options []Option, label string) bool {
	for _, o := range options {
		if o.Label == label {
			return true
		}
	}
	return false
}
