// Package race implements the timed arithmetic side-game: expression
// generation by difficulty tier, per-user timed sessions, and exactly-once
// persistence of finished runs.
package race

import (
	"fmt"
	"math/rand"
)

// Level selects the operator mix.
type Level string

const (
	LevelEasy Level = "easy"
	LevelMed  Level = "med"
	LevelHard Level = "hard"
)

func (l Level) Valid() bool { return l == LevelEasy || l == LevelMed || l == LevelHard }

// Equation is one generated expression. Answers are always integers; the
// generator constructs division pairs so the quotient is exact.
type Equation struct {
	Text   string `json:"text"`
	Answer int    `json:"-"`
}

// Generator produces equations from its own rand source. Not safe for
// concurrent use; the session manager serializes access.
type Generator struct {
	rng *rand.Rand
}

func NewGenerator(seed int64) *Generator {
	return &Generator{rng: rand.New(rand.NewSource(seed))}
}

func (g *Generator) randInt(min, max int) int {
	return g.rng.Intn(max-min+1) + min
}

// Next generates an equation for the tier.
//
// easy: addition/subtraction over 0..20.
// med: addition/subtraction over 0..50, multiplication over 2..12, or exact
// division built from quotient and divisor.
// hard: precedence mixes, parenthesized forms, and exact division plus an
// addend.
func (g *Generator) Next(level Level) Equation {
	switch level {
	case LevelEasy:
		a, b := g.randInt(0, 20), g.randInt(0, 20)
		if g.rng.Float64() < 0.5 {
			return Equation{Text: fmt.Sprintf("%d + %d", a, b), Answer: a + b}
		}
		return Equation{Text: fmt.Sprintf("%d - %d", a, b), Answer: a - b}

	case LevelMed:
		switch p := g.rng.Float64(); {
		case p < 0.4:
			a, b := g.randInt(0, 50), g.randInt(0, 50)
			if g.rng.Float64() < 0.5 {
				return Equation{Text: fmt.Sprintf("%d + %d", a, b), Answer: a + b}
			}
			return Equation{Text: fmt.Sprintf("%d - %d", a, b), Answer: a - b}
		case p < 0.8:
			a, b := g.randInt(2, 12), g.randInt(2, 12)
			return Equation{Text: fmt.Sprintf("%d × %d", a, b), Answer: a * b}
		default:
			b, ans := g.randInt(2, 12), g.randInt(2, 12)
			return Equation{Text: fmt.Sprintf("%d ÷ %d", b*ans, b), Answer: ans}
		}

	default: // hard
		switch p := g.rng.Float64(); {
		case p < 0.33:
			a, b, c := g.randInt(2, 20), g.randInt(2, 20), g.randInt(2, 20)
			if g.rng.Float64() < 0.5 {
				return Equation{Text: fmt.Sprintf("%d + %d × %d", a, b, c), Answer: a + b*c}
			}
			return Equation{Text: fmt.Sprintf("%d × %d - %d", a, b, c), Answer: a*b - c}
		case p < 0.66:
			a, b, c := g.randInt(2, 15), g.randInt(2, 15), g.randInt(2, 10)
			if g.rng.Float64() < 0.5 {
				return Equation{Text: fmt.Sprintf("(%d + %d) × %d", a, b, c), Answer: (a + b) * c}
			}
			return Equation{Text: fmt.Sprintf("%d × (%d - %d)", a, b, c), Answer: a * (b - c)}
		default:
			b, ans, c := g.randInt(2, 12), g.randInt(2, 20), g.randInt(1, 20)
			return Equation{Text: fmt.Sprintf("%d ÷ %d + %d", b*ans, b, c), Answer: ans + c}
		}
	}
}
