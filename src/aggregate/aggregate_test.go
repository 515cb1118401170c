package aggregate

import (
	"math"
	"testing"

	"github.com/mosaicnetworks/meshkv/src/proto"
	"github.com/mosaicnetworks/meshkv/src/record"
	"github.com/stretchr/testify/assert"
)

func TestComparatorFor(t *testing.T) {
	c, ok := For(proto.GetMax)
	assert.True(t, ok)
	assert.Equal(t, math.MinInt, c.Seed)

	c, ok = For(proto.GetMin)
	assert.True(t, ok)
	assert.Equal(t, math.MaxInt, c.Seed)

	_, ok = For(proto.GetValue)
	assert.False(t, ok)

	assert.True(t, Max.Better(2, 1))
	assert.False(t, Max.Better(1, 1))
	assert.True(t, Min.Better(1, 2))
	assert.Equal(t, math.MaxInt, Max.Best(math.MaxInt, math.MaxInt))
}

func TestReduceMax(t *testing.T) {
	local := record.New(1, 10)
	replies := []string{"2:20", "ERROR", "3:30", "garbage", "UNKNOWN COMMAND get-max"}

	best, ok := ReduceExtremum(Max, Max.Seed, local, replies)
	assert.True(t, ok)
	assert.Equal(t, record.New(3, 30), best)
}

func TestReduceMin(t *testing.T) {
	local := record.New(1, 10)

	best, ok := ReduceExtremum(Min, Min.Seed, local, []string{"2:20", "3:-5"})
	assert.True(t, ok)
	assert.Equal(t, record.New(3, -5), best)
}

func TestReduceTieFavoursLocal(t *testing.T) {
	local := record.New(1, 30)

	best, ok := ReduceExtremum(Max, Max.Seed, local, []string{"2:30", "3:30"})
	assert.True(t, ok)
	assert.Equal(t, local, best)
}

func TestReduceTieFavoursEarliestReply(t *testing.T) {
	local := record.New(1, 10)

	best, ok := ReduceExtremum(Max, Max.Seed, local, []string{"2:30", "3:30"})
	assert.True(t, ok)
	assert.Equal(t, record.New(2, 30), best)
}

func TestReducePrunedBySeed(t *testing.T) {
	local := record.New(1, 10)

	_, ok := ReduceExtremum(Max, 50, local, []string{"ERROR", "2:40"})
	assert.False(t, ok)

	best, ok := ReduceExtremum(Max, 50, local, []string{"2:60"})
	assert.True(t, ok)
	assert.Equal(t, record.New(2, 60), best)
}

func TestComparatorBest(t *testing.T) {
	assert.Equal(t, 5, Max.Best(5, 3))
	assert.Equal(t, 7, Max.Best(5, 7))
	assert.Equal(t, 3, Min.Best(5, 3))
	assert.Equal(t, 5, Min.Best(5, 5))
}
