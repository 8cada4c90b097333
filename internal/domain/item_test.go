package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestComputePointValue(t *testing.T) {
	cases := []struct {
		name      string
		condition string
		brand     string
		want      int
	}{
		{"fair no brand", ConditionFair, "", 10},
		{"good no brand", ConditionGood, "", 12},
		{"like-new no brand", ConditionLikeNew, "", 15},
		{"new no brand", ConditionNew, "", 20},
		{"new premium", ConditionNew, "Nike", 26},
		{"good premium rounds", ConditionGood, "zara", 16}, // 12 * 1.3 = 15.6
		{"fair premium", ConditionFair, "GUCCI", 13},
		{"unknown brand ignored", ConditionNew, "NoName", 20},
		{"unknown condition keeps base", "worn-out", "", 10},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ComputePointValue(tc.condition, tc.brand))
		})
	}
}

func TestItemSwappable(t *testing.T) {
	i := &Item{Status: ItemAvailable, IsApproved: true}
	assert.True(t, i.Swappable())

	i.IsApproved = false
	assert.False(t, i.Swappable())

	i.IsApproved = true
	i.Status = ItemPending
	assert.False(t, i.Swappable())
}

func TestSwapTerminal(t *testing.T) {
	for status, terminal := range map[string]bool{
		SwapPending:   false,
		SwapAccepted:  false,
		SwapRejected:  true,
		SwapCompleted: true,
	} {
		s := &Swap{Status: status}
		assert.Equal(t, terminal, s.Terminal(), status)
	}
}
