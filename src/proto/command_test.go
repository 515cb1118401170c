package proto

import (
	"math"
	"testing"

	"github.com/mosaicnetworks/meshkv/src/common"
	"github.com/mosaicnetworks/meshkv/src/record"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCategories(t *testing.T) {
	assert.Equal(t, Point, SetValue.Category())
	assert.Equal(t, Point, GetValue.Category())
	assert.Equal(t, Point, FindKey.Category())
	assert.Equal(t, Aggregate, GetMax.Category())
	assert.Equal(t, Aggregate, GetMin.Category())
	assert.Equal(t, Admin, NewRecord.Category())
	assert.Equal(t, Admin, Terminate.Category())
	assert.Equal(t, Admin, GetCons.Category())
	assert.Equal(t, Admin, AddConnection.Category())
	assert.Equal(t, Unknown, Operation("frobnicate").Category())
}

func TestCommandArguments(t *testing.T) {
	r, err := NewCommand(SetValue, "3:30").Record()
	require.NoError(t, err)
	assert.Equal(t, record.New(3, 30), r)

	_, err = NewCommand(SetValue, "3").Record()
	assert.True(t, common.Is(err, common.Malformed))

	_, err = NewCommand(GetValue).Key()
	assert.True(t, common.Is(err, common.Malformed))

	_, err = NewCommand(GetValue, "x").Key()
	assert.True(t, common.Is(err, common.Malformed))

	a, err := NewCommand(AddConnection, "127.0.0.1:9000").Address()
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:9000", a.String())

	_, err = NewCommand(AddConnection, "127.0.0.1").Address()
	assert.True(t, common.Is(err, common.Malformed))
}

func TestCommandBound(t *testing.T) {
	b, err := NewCommand(GetMax).Bound(math.MinInt)
	require.NoError(t, err)
	assert.Equal(t, math.MinInt, b)

	b, err = NewCommand(GetMax, "-7").Bound(math.MinInt)
	require.NoError(t, err)
	assert.Equal(t, -7, b)

	_, err = NewCommand(GetMax, "1", "2").Bound(0)
	assert.True(t, common.Is(err, common.Malformed))
}

func TestCommandString(t *testing.T) {
	assert.Equal(t, "terminate", NewCommand(Terminate).String())
	assert.Equal(t, "set-value 1:2", NewCommand(SetValue, "1:2").String())
}

func TestIsErrorReply(t *testing.T) {
	assert.True(t, IsErrorReply("ERROR"))
	assert.True(t, IsErrorReply("ERROR dial timeout"))
	assert.True(t, IsErrorReply("UNKNOWN COMMAND frobnicate"))
	assert.False(t, IsErrorReply("OK"))
	assert.False(t, IsErrorReply("3:30"))
	assert.False(t, IsErrorReply("ERRORS"))

	assert.Equal(t, "UNKNOWN COMMAND frobnicate", UnknownCommand("frobnicate"))
	assert.Equal(t, "UNKNOWN COMMAND", UnknownCommand(""))
}
