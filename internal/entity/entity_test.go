package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"tlog.app/go/errors"
)

type slot uint32

func TestTablePushAndLookup(t *testing.T) {
	tab := NewTable[slot, string]("slots", 0)

	a, err := tab.Push("a")
	require.NoError(t, err)
	b, err := tab.Push("b")
	require.NoError(t, err)

	assert.Equal(t, slot(0), a)
	assert.Equal(t, slot(1), b)
	assert.Equal(t, 2, tab.Len())

	v, ok := tab.Get(b)
	require.True(t, ok)
	assert.Equal(t, "b", *v)

	_, ok = tab.Get(2)
	assert.False(t, ok)
	assert.False(t, tab.Valid(slot(Reserved)))

	var keys []slot
	for k, v := range tab.All() {
		keys = append(keys, k)
		*v += "!"
	}

	assert.Equal(t, []slot{0, 1}, keys)
	assert.Equal(t, "a!", *tab.At(0))
}

func TestTableCapacity(t *testing.T) {
	tab := NewTable[slot, int]("insts", 3)

	for i := 0; i < 3; i++ {
		_, err := tab.Push(i)
		require.NoError(t, err)
	}

	k, err := tab.Push(3)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrCapacity))
	assert.Contains(t, err.Error(), "insts")
	assert.Equal(t, slot(Reserved), k)
	assert.Equal(t, 3, tab.Len(), "failed push must not grow the table")
}

func TestCheckCapacityBoundary(t *testing.T) {
	assert.NoError(t, CheckCapacity("insts", MaxPrimary, MaxPrimary))

	err := CheckCapacity("insts", 1<<31, MaxPrimary)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrCapacity))

	assert.NoError(t, CheckCapacity("sigs", MaxSecondary, MaxSecondary))
	assert.Error(t, CheckCapacity("sigs", MaxSecondary+1, MaxSecondary))

	assert.NoError(t, CheckCapacity("params", MaxArgs, MaxArgs))
	assert.Error(t, CheckCapacity("params", MaxArgs+1, MaxArgs))
}

func TestSecondaryMap(t *testing.T) {
	m := NewSecondaryMap[slot, int](-1)

	assert.Equal(t, -1, m.Get(10))
	assert.Equal(t, 0, m.Len())

	m.Set(3, 7)
	assert.Equal(t, 7, m.Get(3))
	assert.Equal(t, -1, m.Get(2))
	assert.Equal(t, 4, m.Len())

	*m.Ref(5) += 2
	assert.Equal(t, 1, m.Get(5))

	m.Clear()
	assert.Equal(t, -1, m.Get(3))
}
