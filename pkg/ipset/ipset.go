// Package ipset adapts rangeset to IP addresses and converts between range
// sets and the go4.org/netipx types.
//
// Addresses are ordered by netip.Addr.Compare, so every IPv4 address sorts
// before every IPv6 address. Zones are not supported.
package ipset

import (
	"fmt"
	"net/netip"

	"github.com/henderiw/rangeset/pkg/rangeset"
	"go4.org/netipx"
)

var (
	ipv4Max = netip.AddrFrom4([4]byte{255, 255, 255, 255})
	ipv6Max = netip.AddrFrom16([16]byte{
		255, 255, 255, 255, 255, 255, 255, 255,
		255, 255, 255, 255, 255, 255, 255, 255,
	})
)

// Order orders addresses by netip.Addr.Compare.
func Order() rangeset.Order[netip.Addr] { return netip.Addr.Compare }

// Addrs is the discrete domain of IP addresses. The successor of the last
// IPv4 address is the first IPv6 address.
type Addrs struct{}

func (Addrs) Next(a netip.Addr) (netip.Addr, bool) {
	if a == ipv4Max {
		return netip.IPv6Unspecified(), true
	}
	n := a.Next()
	return n, n.IsValid()
}

func prev(a netip.Addr) (netip.Addr, bool) {
	if a == netip.IPv6Unspecified() {
		return ipv4Max, true
	}
	p := a.Prev()
	return p, p.IsValid()
}

// New returns an address set holding the given ranges.
func New(ranges ...netipx.IPRange) (rangeset.RangeSet[netip.Addr], error) {
	rs, err := rangeset.NewWithOrder(Order())
	if err != nil {
		return nil, err
	}
	for _, ipr := range ranges {
		r, err := FromIPRange(ipr)
		if err != nil {
			return nil, err
		}
		if err := rs.Add(r); err != nil {
			return nil, err
		}
	}
	return rs, nil
}

// FromIPSet returns an address set holding the ranges of s.
func FromIPSet(s *netipx.IPSet) (rangeset.RangeSet[netip.Addr], error) {
	if s == nil {
		return nil, fmt.Errorf("%w: nil ip set", rangeset.ErrInvalidArgument)
	}
	return New(s.Ranges()...)
}

// FromIPRange returns the canonical [from‥to+1) range of ipr.
func FromIPRange(ipr netipx.IPRange) (rangeset.Range[netip.Addr], error) {
	if !ipr.IsValid() {
		return rangeset.Range[netip.Addr]{}, fmt.Errorf("%w: ip range %s", rangeset.ErrInvalidRange, ipr)
	}
	return rangeset.Canonical(Order().Closed(ipr.From(), ipr.To()), Addrs{}), nil
}

// FromPrefix returns the range of addresses covered by p.
func FromPrefix(p netip.Prefix) (rangeset.Range[netip.Addr], error) {
	if !p.IsValid() {
		return rangeset.Range[netip.Addr]{}, fmt.Errorf("%w: prefix %s", rangeset.ErrInvalidRange, p)
	}
	return FromIPRange(netipx.RangeOfPrefix(p.Masked()))
}

// ToIPRange returns r as an inclusive netipx.IPRange. An unbounded end is
// clamped to the first or last address of the family of the other end.
func ToIPRange(r rangeset.Range[netip.Addr]) (netipx.IPRange, error) {
	if r.IsEmpty() {
		return netipx.IPRange{}, fmt.Errorf("%w: %s is empty", rangeset.ErrInvalidRange, r)
	}
	if !r.HasLowerBound() && !r.HasUpperBound() {
		return netipx.IPRange{}, fmt.Errorf("%w: %s has no address family", rangeset.ErrInvalidRange, r)
	}

	var from, to netip.Addr
	ok := true
	if v, bounded := r.LowerEndpoint(); bounded {
		from = v
		if r.LowerBoundType() == rangeset.BoundTypeOpen {
			from, ok = Addrs{}.Next(v)
		}
	}
	if v, bounded := r.UpperEndpoint(); bounded && ok {
		to = v
		if r.UpperBoundType() == rangeset.BoundTypeOpen {
			to, ok = prev(v)
		}
	}
	if !ok {
		return netipx.IPRange{}, fmt.Errorf("%w: %s holds no address", rangeset.ErrInvalidRange, r)
	}
	if !r.HasLowerBound() {
		from = familyMin(to)
	}
	if !r.HasUpperBound() {
		to = familyMax(from)
	}

	ipr := netipx.IPRangeFrom(from, to)
	if !ipr.IsValid() {
		return netipx.IPRange{}, fmt.Errorf("%w: %s spans address families", rangeset.ErrInvalidRange, r)
	}
	return ipr, nil
}

// ToIPSet returns the addresses of rs as a netipx.IPSet. Ranges crossing
// from IPv4 into IPv6 are split per family.
func ToIPSet(rs rangeset.RangeSet[netip.Addr]) (*netipx.IPSet, error) {
	families := []rangeset.Range[netip.Addr]{
		Order().AtMost(ipv4Max),
		Order().AtLeast(netip.IPv6Unspecified()),
	}
	var b netipx.IPSetBuilder
	for r := range rs.AsRanges().All() {
		for _, family := range families {
			part, ok := r.Intersection(family)
			if !ok || part.IsEmpty() {
				continue
			}
			ipr, err := ToIPRange(part)
			if err != nil {
				return nil, err
			}
			b.AddRange(ipr)
		}
	}
	return b.IPSet()
}

// Prefixes returns the minimal list of prefixes covering rs.
func Prefixes(rs rangeset.RangeSet[netip.Addr]) ([]netip.Prefix, error) {
	s, err := ToIPSet(rs)
	if err != nil {
		return nil, err
	}
	return s.Prefixes(), nil
}

func familyMin(a netip.Addr) netip.Addr {
	if a.Is4() {
		return netip.IPv4Unspecified()
	}
	return netip.IPv6Unspecified()
}

func familyMax(a netip.Addr) netip.Addr {
	if a.Is4() {
		return ipv4Max
	}
	return ipv6Max
}
