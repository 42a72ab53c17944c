package dice

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRollBounds(t *testing.T) {
	r := Default()
	for range 2000 {
		d10 := r.D10()
		require.GreaterOrEqual(t, d10, 1)
		require.LessOrEqual(t, d10, 10)
		d6 := r.D6()
		require.GreaterOrEqual(t, d6, 1)
		require.LessOrEqual(t, d6, 6)
	}
}

func TestSkillCheckHasNoUpperClamp(t *testing.T) {
	r := NewRoller(NewSequence(10))
	assert.Equal(t, 40, r.SkillCheck(30))
}

func TestSkillCheckDetail(t *testing.T) {
	r := NewRoller(NewSequence(5))
	total, die := r.SkillCheckDetail(10)
	assert.Equal(t, 15, total)
	assert.Equal(t, 5, die)
}

func TestSequenceConsumesInOrder(t *testing.T) {
	seq := NewSequence(3, 1, 6)
	r := NewRoller(seq)
	assert.Equal(t, []int{3, 1, 6}, r.Multiple(3, 6))
	assert.Zero(t, seq.Remaining())
	assert.Panics(t, func() { r.D6() })
}

func TestSequenceRejectsOutOfRangeFace(t *testing.T) {
	r := NewRoller(NewSequence(9))
	assert.Panics(t, func() { r.D6() })
}

func TestInitiative(t *testing.T) {
	r := NewRoller(NewSequence(4))
	assert.Equal(t, 12, r.Initiative(8))
}

func TestDamage(t *testing.T) {
	cases := []struct {
		expr  string
		faces []int
		total int
		mod   int
	}{
		{"2d6+1", []int{3, 4}, 8, 1},
		{"5d6", []int{1, 2, 3, 4, 5}, 15, 0},
		{"1d6-2", []int{1}, -1, -2},
		{" 3d10 + 2 ", []int{10, 10, 10}, 32, 2},
	}
	for _, tc := range cases {
		t.Run(tc.expr, func(t *testing.T) {
			r := NewRoller(NewSequence(tc.faces...))
			got, err := r.Damage(tc.expr)
			require.NoError(t, err)
			assert.Equal(t, tc.faces, got.Dice)
			assert.Equal(t, tc.mod, got.Modifier)
			assert.Equal(t, tc.total, got.Total)
		})
	}
}

func TestDamageRejectsMalformed(t *testing.T) {
	for _, expr := range []string{"", "d6", "2x6", "0d6", "2d0", "2d6+", "abc"} {
		_, err := Default().Damage(expr)
		assert.True(t, errors.Is(err, ErrInvalidExpression), expr)
	}
}
