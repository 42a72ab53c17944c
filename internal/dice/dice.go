// Package dice implements the d10/d6 primitives used by skill checks,
// installation complications and the character sheet roller.
package dice

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"regexp"
	"strconv"
	"sync"
)

// Source is the randomness provider for dice rolls.
//
// Implementations must be safe for concurrent use.
type Source interface {
	// Intn returns a non-negative random int in [0, n). n > 0.
	Intn(n int) int
}

type globalSource struct{}

func (globalSource) Intn(n int) int { return rand.IntN(n) }

// Roller rolls dice against a Source.
type Roller struct {
	src Source
}

// NewRoller returns a roller drawing from src. A nil src uses the process-wide
// generator, which is unseeded and not reproducible.
func NewRoller(src Source) *Roller {
	if src == nil {
		src = globalSource{}
	}
	return &Roller{src: src}
}

// Default returns a roller over the process-wide generator.
func Default() *Roller { return NewRoller(nil) }

// Roll returns a uniform integer in [1, sides].
func (r *Roller) Roll(sides int) int {
	return r.src.Intn(sides) + 1
}

// D10 rolls a ten-sided die.
func (r *Roller) D10() int { return r.Roll(10) }

// D6 rolls a six-sided die.
func (r *Roller) D6() int { return r.Roll(6) }

// SkillCheck returns d10 + skill. There is no upper clamp.
func (r *Roller) SkillCheck(skill int) int {
	return r.D10() + skill
}

// SkillCheckDetail is SkillCheck that also reports the die face.
func (r *Roller) SkillCheckDetail(skill int) (total, die int) {
	die = r.D10()
	return die + skill, die
}

// Multiple rolls count dice of the given size and returns every face.
func (r *Roller) Multiple(count, sides int) []int {
	out := make([]int, 0, max(count, 0))
	for range count {
		out = append(out, r.Roll(sides))
	}
	return out
}

// Initiative is d10 + reflexes.
func (r *Roller) Initiative(reflexes int) int {
	return r.D10() + reflexes
}

// ErrInvalidExpression indicates a damage expression could not be parsed.
var ErrInvalidExpression = errors.New("dice expression must look like NdS, NdS+M or NdS-M")

// DamageRoll holds the audit trail for a damage expression roll.
type DamageRoll struct {
	Expression string `json:"expression"`
	Dice       []int  `json:"dice"`
	Modifier   int    `json:"modifier"`
	Total      int    `json:"total"`
}

var damagePattern = regexp.MustCompile(`^\s*(\d+)d(\d+)\s*(?:([+-])\s*(\d+))?\s*$`)

// Damage rolls a weapon damage expression such as "2d6+1" or "5d6".
func (r *Roller) Damage(expr string) (DamageRoll, error) {
	count, sides, mod, err := ParseExpression(expr)
	if err != nil {
		return DamageRoll{}, err
	}
	faces := r.Multiple(count, sides)
	total := mod
	for _, f := range faces {
		total += f
	}
	return DamageRoll{Expression: expr, Dice: faces, Modifier: mod, Total: total}, nil
}

// ParseExpression splits "NdS[+/-M]" into its parts.
func ParseExpression(expr string) (count, sides, modifier int, err error) {
	m := damagePattern.FindStringSubmatch(expr)
	if m == nil {
		return 0, 0, 0, fmt.Errorf("%w: %q", ErrInvalidExpression, expr)
	}
	count, _ = strconv.Atoi(m[1])
	sides, _ = strconv.Atoi(m[2])
	if count < 1 || sides < 1 {
		return 0, 0, 0, fmt.Errorf("%w: %q", ErrInvalidExpression, expr)
	}
	if m[4] != "" {
		modifier, _ = strconv.Atoi(m[4])
		if m[3] == "-" {
			modifier = -modifier
		}
	}
	return count, sides, modifier, nil
}

// Sequence is a scripted Source returning predetermined die faces in order.
// Each call to Intn(n) consumes one face, which must lie in [1, n].
type Sequence struct {
	mu    sync.Mutex
	faces []int
	next  int
}

// NewSequence returns a Sequence over the given faces.
func NewSequence(faces ...int) *Sequence {
	return &Sequence{faces: append([]int(nil), faces...)}
}

// Intn implements Source.
func (s *Sequence) Intn(n int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.next >= len(s.faces) {
		panic(fmt.Sprintf("dice: sequence exhausted after %d rolls", len(s.faces)))
	}
	face := s.faces[s.next]
	if face < 1 || face > n {
		panic(fmt.Sprintf("dice: scripted face %d out of range for d%d", face, n))
	}
	s.next++
	return face - 1
}

// Remaining reports how many scripted faces have not been consumed.
func (s *Sequence) Remaining() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.faces) - s.next
}
