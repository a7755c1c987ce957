package pricing

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLevelForPoints(t *testing.T) {
	cases := []struct {
		points int64
		level  string
	}{
		{0, LevelMember},
		{999, LevelMember},
		{1000, LevelSilver},
		{4999, LevelSilver},
		{5000, LevelGold},
		{19999, LevelGold},
		{20000, LevelDiamond},
		{1000000, LevelDiamond},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.level, LevelForPoints(tc.points), "points=%d", tc.points)
	}
}
