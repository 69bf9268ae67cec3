package vnet

import (
	"testing"

	"github.com/cvcgo/cvc/pkg/ids"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveSingleton(t *testing.T) {
	v := New(3)
	for i := 0; i < 3; i++ {
		root, r := v.Resolve(ids.NetId(i))
		assert.Equal(t, ids.NetId(i), root)
		assert.Equal(t, ids.Resistance(0), r)
		assert.True(t, v.IsTerminal(ids.NetId(i)))
	}
}

func TestSetChainsAndSumsResistance(t *testing.T) {
	v := New(4)
	v.Set(0, 1, 10, 1)
	v.Set(1, 2, 20, 2)

	root, r := v.Resolve(0)
	require.Equal(t, ids.NetId(2), root)
	assert.Equal(t, ids.Resistance(30), r)

	root, r = v.Resolve(1)
	require.Equal(t, ids.NetId(2), root)
	assert.Equal(t, ids.Resistance(20), r)
}

func TestSetRefusesImmediateTwoCycle(t *testing.T) {
	v := New(2)
	v.Set(0, 1, 5, 1)
	// 1 -> 0 would form a two-cycle with 0 -> 1; must be refused.
	v.Set(1, 0, 5, 2)
	assert.True(t, v.IsTerminal(1), "two-cycle edge must be refused, leaving 1 terminal")
}

func TestIsAlreadyShorted(t *testing.T) {
	v := New(3)
	assert.False(t, v.IsAlreadyShorted(0, 1))
	v.Set(0, 2, 1, 1)
	v.Set(1, 2, 1, 2)
	assert.True(t, v.IsAlreadyShorted(0, 1))
}

func TestUnionIdempotence(t *testing.T) {
	v1 := New(3)
	v1.Set(0, 1, 7, 1)

	v2 := New(3)
	v2.Set(0, 1, 7, 1)
	v2.Set(0, 1, 7, 2) // repeating the same short must be a no-op (idempotent)

	r1, res1 := v1.Resolve(0)
	r2, res2 := v2.Resolve(0)
	assert.Equal(t, r1, r2)
	assert.Equal(t, res1, res2)
}

func TestResistanceSaturatesAtMax(t *testing.T) {
	v := New(3)
	v.Set(0, 1, ids.MaxResistance-1, 1)
	v.Set(1, 2, 10, 2)
	_, r := v.Resolve(0)
	assert.Equal(t, ids.MaxResistance, r)
	assert.True(t, v.OverflowWarned[0])
}

func TestBackupRestore(t *testing.T) {
	v := New(3)
	v.Set(0, 1, 5, 1)
	v.Backup()
	v.Set(0, 2, 99, 2)
	root, _ := v.Resolve(0)
	require.Equal(t, ids.NetId(2), root)

	v.Restore(3)
	root, r := v.Resolve(0)
	assert.Equal(t, ids.NetId(1), root)
	assert.Equal(t, ids.Resistance(5), r)
}

func TestChainLengthOverflowPanics(t *testing.T) {
	n := maxChainLength + 10
	v := New(n)
	for i := 0; i < n-1; i++ {
		v.Set(ids.NetId(i), ids.NetId(i+1), 1, uint64(i+1))
	}
	assert.Panics(t, func() {
		v.Resolve(0)
	})
}
