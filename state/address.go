package state

import (
	"fmt"
	"iter"
	"regexp"
	"strings"
)

var (
	addressPattern = regexp.MustCompile(`^(g|private|example|peer|self|test[1-3]?|local)([.][a-zA-Z0-9_~-]+)+$`)
	prefixPattern  = regexp.MustCompile(`^(g|private|example|peer|self|test[1-3]?|local)([.][a-zA-Z0-9_~-]+)*$`)
)

// IsValidAddress reports whether addr is a well-formed ILP address
func IsValidAddress(addr string) bool {
	return len(addr) <= MaxAddressLength && addressPattern.MatchString(addr)
}

// IsValidPrefix reports whether prefix may be advertised in a route update. Unlike addresses, a bare allocation
// scheme (e.g. "g") is a valid prefix.
func IsValidPrefix(prefix string) bool {
	return len(prefix) <= MaxAddressLength && prefixPattern.MatchString(prefix)
}

func AddressValidator(addr string) error {
	if !IsValidAddress(addr) {
		return fmt.Errorf("%q is not a valid ILP address", addr)
	}
	return nil
}

// JoinAddress appends segment to addr
func JoinAddress(addr string, segment string) string {
	if addr == "" {
		return segment
	}
	return addr + "." + segment
}

// HasAddressPrefix reports whether prefix covers addr on segment boundaries. The empty prefix covers everything.
func HasAddressPrefix(addr, prefix string) bool {
	if prefix == "" || addr == prefix {
		return true
	}
	return len(addr) > len(prefix) && addr[len(prefix)] == '.' && strings.HasPrefix(addr, prefix)
}

// PrefixesOf yields addr followed by every shorter segment prefix, ending with the empty prefix
func PrefixesOf(addr string) iter.Seq[string] {
	return func(yield func(string) bool) {
		cur := addr
		for cur != "" {
			if !yield(cur) {
				return
			}
			idx := strings.LastIndexByte(cur, '.')
			if idx == -1 {
				break
			}
			cur = cur[:idx]
		}
		yield("")
	}
}
