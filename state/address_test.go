package state

import (
	"slices"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsValidAddress(t *testing.T) {
	for _, addr := range []string{"g.usd.alice", "test.connie", "test1.a_b~c-d", "private.x", "example.1"} {
		assert.True(t, IsValidAddress(addr), addr)
	}
	for _, addr := range []string{"", "g", "g.", "g..a", "usd.alice", "g.usd alice", "g.usd/alice", "g." + strings.Repeat("a", MaxAddressLength)} {
		assert.False(t, IsValidAddress(addr), addr)
	}
	assert.Error(t, AddressValidator("nope"))
	assert.NoError(t, AddressValidator("g.nope"))
}

func TestIsValidPrefix(t *testing.T) {
	assert.True(t, IsValidPrefix("g"))
	assert.True(t, IsValidPrefix("test.connie"))
	assert.False(t, IsValidPrefix(""))
	assert.False(t, IsValidPrefix("g."))
	assert.False(t, IsValidPrefix("moon.base"))
}

func TestHasAddressPrefix(t *testing.T) {
	cases := []struct {
		addr, prefix string
		want         bool
	}{
		{"g.usd.alice", "", true},
		{"g.usd.alice", "g", true},
		{"g.usd.alice", "g.usd", true},
		{"g.usd.alice", "g.usd.alice", true},
		{"g.usd.alice", "g.us", false},
		{"g.usdc", "g.usd", false},
		{"g.usd", "g.usd.alice", false},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, HasAddressPrefix(c.addr, c.prefix), "%q %q", c.addr, c.prefix)
	}
}

func TestJoinAddress(t *testing.T) {
	assert.Equal(t, "test.connie.bob", JoinAddress("test.connie", "bob"))
	assert.Equal(t, "bob", JoinAddress("", "bob"))
}

func TestPrefixesOf(t *testing.T) {
	assert.Equal(t, []string{"g.usd.alice", "g.usd", "g", ""}, slices.Collect(PrefixesOf("g.usd.alice")))
	assert.Equal(t, []string{""}, slices.Collect(PrefixesOf("")))

	var first []string
	for p := range PrefixesOf("g.usd.alice") {
		first = append(first, p)
		break
	}
	assert.Equal(t, []string{"g.usd.alice"}, first)
}
