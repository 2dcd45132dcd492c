// Package mathgen generates exponent-rule practice problems with answers in
// LaTeX-style notation.
package mathgen

import (
	"math/rand/v2"
	"strings"

	apperrors "github.com/hrygo/studysheet/internal/errors"
)

// Difficulty controls which templates a generator draws from.
type Difficulty string

const (
	Easy   Difficulty = "easy"
	Medium Difficulty = "medium"
	Hard   Difficulty = "hard"

	// MaxProblems bounds a single worksheet.
	MaxProblems = 60
)

// ParseDifficulty accepts easy, medium or hard, case-insensitively.
func ParseDifficulty(s string) (Difficulty, error) {
	switch d := Difficulty(strings.ToLower(strings.TrimSpace(s))); d {
	case Easy, Medium, Hard:
		return d, nil
	case "":
		return Easy, nil
	default:
		return "", apperrors.InvalidArgument("Unknown difficulty '%s': expected easy, medium or hard", s).
			WithContext("difficulty", s)
	}
}

// Problem is one question with its answer key entry.
type Problem struct {
	Text       string
	Answer     string
	Difficulty Difficulty
}

type template func(r *rand.Rand) Problem

var templates = map[Difficulty][]template{
	Easy: {
		func(r *rand.Rand) Problem { return product(variable(r), between(r, 2, 9), between(r, 2, 9)) },
		func(r *rand.Rand) Problem {
			b := between(r, 2, 8)
			return quotient(variable(r), between(r, b+1, 12), b)
		},
		func(r *rand.Rand) Problem { return powerOfPower(variable(r), between(r, 2, 6), between(r, 2, 4)) },
	},
	Medium: {
		func(r *rand.Rand) Problem {
			return coefficientProduct(variable(r), between(r, 2, 9), between(r, 1, 8), between(r, 2, 9), between(r, 1, 8))
		},
		func(r *rand.Rand) Problem {
			return powerOfProduct(variable(r), between(r, 2, 5), between(r, 1, 5), between(r, 2, 3))
		},
		func(r *rand.Rand) Problem { return zeroExponent(variable(r), between(r, 2, 9), between(r, 2, 9)) },
		func(r *rand.Rand) Problem {
			a := between(r, 1, 7)
			return negativeProduct(variable(r), a, between(r, a+1, 10))
		},
	},
	Hard: {
		func(r *rand.Rand) Problem {
			c := between(r, 2, 8)
			xDen := between(r, 1, 5)
			yNum := between(r, 1, 5)
			return twoVariableQuotient(c*between(r, 2, 6), between(r, xDen+1, 9), yNum, c, xDen, between(r, yNum+1, 9))
		},
		func(r *rand.Rand) Problem {
			return negativePower(between(r, 1, 4), between(r, 1, 4), between(r, 2, 3))
		},
		func(r *rand.Rand) Problem {
			c := between(r, 1, 5)
			b := between(r, 1, 5)
			return mixedProduct(between(r, 2, 7), between(r, c+1, 9), b, between(r, 2, 7), c, between(r, b+1, 9))
		},
	},
}

// Generator produces problems from a caller-supplied random source.
type Generator struct {
	rng *rand.Rand
}

// NewGenerator returns a generator drawing from rng. Seed rng for reproducible worksheets.
func NewGenerator(rng *rand.Rand) *Generator {
	return &Generator{rng: rng}
}

// Generate returns one problem at difficulty d.
func (g *Generator) Generate(d Difficulty) (Problem, error) {
	list, ok := templates[d]
	if !ok {
		return Problem{}, apperrors.InvalidArgument("Unknown difficulty '%s': expected easy, medium or hard", d)
	}
	p := list[g.rng.IntN(len(list))](g.rng)
	p.Difficulty = d
	return p, nil
}

// GenerateSet returns n problems at difficulty d. Identical problem texts are
// regenerated a bounded number of times to keep a worksheet varied.
func (g *Generator) GenerateSet(d Difficulty, n int) ([]Problem, error) {
	if n < 1 || n > MaxProblems {
		return nil, apperrors.InvalidArgument("Problem count must be between 1 and %d, got %d", MaxProblems, n).
			WithContext("count", n)
	}

	problems := make([]Problem, 0, n)
	seen := make(map[string]struct{}, n)
	for len(problems) < n {
		var p Problem
		for attempt := 0; attempt < 10; attempt++ {
			var err error
			if p, err = g.Generate(d); err != nil {
				return nil, err
			}
			if _, dup := seen[p.Text]; !dup {
				break
			}
		}
		seen[p.Text] = struct{}{}
		problems = append(problems, p)
	}
	return problems, nil
}

var variables = []string{"x", "y", "a", "b", "m", "n"}

func variable(r *rand.Rand) string {
	return variables[r.IntN(len(variables))]
}

// between returns a uniform integer in [lo, hi].
func between(r *rand.Rand, lo, hi int) int {
	if hi <= lo {
		return lo
	}
	return lo + r.IntN(hi-lo+1)
}
