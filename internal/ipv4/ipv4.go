// Package ipv4 converts dotted-decimal IPv4 addresses to and from their
// 32-bit integer form. Invalid input yields the zero value, never an error.
package ipv4

import (
	"encoding/binary"
	"net/netip"

	"go4.org/netipx"
)

// Addr is an IPv4 address in host integer form. Ordering and equality use
// the integer value.
type Addr uint32

// Parse returns the address for s, or 0 when s is not a valid dotted-decimal
// IPv4 address.
func Parse(s string) Addr {
	return Addr(ToUint32(s))
}

// String renders the address in dotted-decimal form.
func (a Addr) String() string {
	return ToText(uint32(a))
}

// Compare returns -1, 0 or +1.
func (a Addr) Compare(b Addr) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// IsValid reports whether s is a dotted-decimal IPv4 address with four
// octets in the range 0-255.
func IsValid(s string) bool {
	_, ok := parse(s)
	return ok
}

// ToUint32 converts s to its big-endian integer value, or 0 when invalid.
func ToUint32(s string) uint32 {
	ip, ok := parse(s)
	if !ok {
		return 0
	}
	b := ip.As4()
	return binary.BigEndian.Uint32(b[:])
}

// ToText converts n to dotted-decimal form. It always succeeds.
func ToText(n uint32) string {
	return fromUint32(n).String()
}

func parse(s string) (netip.Addr, bool) {
	ip, err := netip.ParseAddr(s)
	if err != nil || !ip.Is4() {
		return netip.Addr{}, false
	}
	return ip, true
}

func fromUint32(n uint32) netip.Addr {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], n)
	return netip.AddrFrom4(b)
}

// Range is an inclusive span of IPv4 addresses. A range whose lower bound is
// above its upper bound contains nothing.
type Range struct {
	r netipx.IPRange
}

// NewRange returns the inclusive range [lo, hi].
func NewRange(lo, hi uint32) Range {
	return Range{r: netipx.IPRangeFrom(fromUint32(lo), fromUint32(hi))}
}

// Contains reports whether n lies within the range, bounds included.
func (r Range) Contains(n uint32) bool {
	return r.r.Contains(fromUint32(n))
}

// String renders the range as "lo-hi".
func (r Range) String() string {
	return r.r.String()
}
