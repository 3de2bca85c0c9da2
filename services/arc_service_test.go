package services

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewArcAddressFormat(t *testing.T) {
	addr := NewArcAddress()

	assert.True(t, strings.HasPrefix(addr, "arc1"))
	assert.Len(t, addr, 4+38) // "arc1" + 38 hex chars

	for _, r := range addr[4:] {
		assert.Contains(t, "0123456789abcdef", string(r))
	}
}

func TestNewArcTxHashFormat(t *testing.T) {
	hash := NewArcTxHash()

	assert.True(t, strings.HasPrefix(hash, "0x"))
	assert.Len(t, hash, 2+64)

	for _, r := range hash[2:] {
		assert.Contains(t, "0123456789abcdef", string(r))
	}
}

func TestOrderedAddresses(t *testing.T) {
	a := "arc1aaaa"
	b := "arc1bbbb"

	// the lock order must not depend on transfer direction
	f1, s1 := orderedAddresses(a, b)
	f2, s2 := orderedAddresses(b, a)
	assert.Equal(t, f1, f2)
	assert.Equal(t, s1, s2)
	assert.Equal(t, a, f1)
	assert.Equal(t, b, s1)
}

func TestArcIdentifiersAreUnique(t *testing.T) {
	seen := make(map[string]struct{})
	for i := 0; i < 100; i++ {
		addr := NewArcAddress()
		hash := NewArcTxHash()

		_, dupAddr := seen[addr]
		_, dupHash := seen[hash]
		assert.False(t, dupAddr)
		assert.False(t, dupHash)

		seen[addr] = struct{}{}
		seen[hash] = struct{}{}
	}
}
