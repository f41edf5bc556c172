// Package idprefix splits integer id ranges into aligned power-of-two
// blocks, written like IP prefixes: 96/7 holds the ids 96..127 of a
// 12 bit id space.
package idprefix

import (
	"fmt"
	"math/bits"
	"strconv"
	"strings"

	"github.com/henderiw/rangeset/pkg/rangeset"
)

// MaxBitSize is the widest supported id space.
const MaxBitSize = 63

type Prefix struct {
	id      int64
	length  uint8
	bitSize uint8
}

func PrefixFrom(id int64, length, bitSize uint8) (Prefix, error) {
	if bitSize == 0 || bitSize > MaxBitSize {
		return Prefix{}, fmt.Errorf("bit size %d out of range [1‥%d]", bitSize, MaxBitSize)
	}
	if length > bitSize {
		return Prefix{}, fmt.Errorf("prefix length %d exceeds bit size %d", length, bitSize)
	}
	if id < 0 || id > maxID(bitSize) {
		return Prefix{}, fmt.Errorf("id %d does not fit in %d bits", id, bitSize)
	}
	return Prefix{id: id, length: length, bitSize: bitSize}, nil
}

// ParsePrefix parses "id/length". A bare id is a full length prefix.
func ParsePrefix(s string, bitSize uint8) (Prefix, error) {
	idStr, lengthStr, found := strings.Cut(s, "/")
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		return Prefix{}, fmt.Errorf("invalid id %q in prefix %q", idStr, s)
	}
	length := uint64(bitSize)
	if found {
		length, err = strconv.ParseUint(lengthStr, 10, 8)
		if err != nil {
			return Prefix{}, fmt.Errorf("invalid length %q in prefix %q", lengthStr, s)
		}
	}
	return PrefixFrom(id, uint8(length), bitSize)
}

func (p Prefix) ID() int64        { return p.id }
func (p Prefix) Length() uint8    { return p.length }
func (p Prefix) BitSize() uint8   { return p.bitSize }
func (p Prefix) IsValid() bool    { return p.bitSize != 0 }
func (p Prefix) IsSingleID() bool { return p.length == p.bitSize }

// Masked returns p with the bits past its length cleared.
func (p Prefix) Masked() Prefix {
	p.id &^= hostMask(p.bitSize - p.length)
	return p
}

// First and Last return the lowest and highest id p covers.
func (p Prefix) First() int64 { return p.Masked().id }
func (p Prefix) Last() int64  { return p.First() | hostMask(p.bitSize-p.length) }

// Range returns the ids of p in canonical [first‥last+1) form.
func (p Prefix) Range() rangeset.Range[int64] {
	return rangeset.Canonical(rangeset.Closed(p.First(), p.Last()), rangeset.Int64s{})
}

func (p Prefix) String() string {
	if !p.IsValid() {
		return "invalid Prefix"
	}
	return fmt.Sprintf("%d/%d", p.id, p.length)
}

// Prefixes returns the minimal sorted list of prefixes covering r, which
// must lie within the id space.
func Prefixes(r rangeset.Range[int64], bitSize uint8) ([]Prefix, error) {
	return appendPrefixes(nil, r, bitSize)
}

// SetPrefixes returns the minimal sorted list of prefixes covering rs.
func SetPrefixes(rs rangeset.RangeSet[int64], bitSize uint8) ([]Prefix, error) {
	var out []Prefix
	var err error
	for r := range rs.AsRanges().All() {
		if out, err = appendPrefixes(out, r, bitSize); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func appendPrefixes(dst []Prefix, r rangeset.Range[int64], bitSize uint8) ([]Prefix, error) {
	if bitSize == 0 || bitSize > MaxBitSize {
		return nil, fmt.Errorf("bit size %d out of range [1‥%d]", bitSize, MaxBitSize)
	}
	space := rangeset.Closed(0, maxID(bitSize))
	if !r.IsValid() || !space.Encloses(r) {
		return nil, fmt.Errorf("%w: %s does not fit in %d bits", rangeset.ErrInvalidRange, r, bitSize)
	}
	r = rangeset.Canonical(r, rangeset.Int64s{})
	if r.IsEmpty() {
		return dst, nil
	}
	first, _ := r.LowerEndpoint()
	end, ok := r.UpperEndpoint()
	last := maxID(bitSize)
	if ok {
		last = end - 1
	}
	return appendRange(dst, bitSize, uint64(first), uint64(last)), nil
}

// appendRange splits [a‥b] in two halves at the first differing bit until
// each half is a single aligned block.
func appendRange(dst []Prefix, bitSize uint8, a, b uint64) []Prefix {
	common := commonBits(a, b, bitSize)
	host := hostMask(bitSize - common)
	if uint64(host)&a == 0 && uint64(host)&b == uint64(host) {
		return append(dst, Prefix{id: int64(a), length: common, bitSize: bitSize})
	}
	half := uint64(host) >> 1
	dst = appendRange(dst, bitSize, a, a|half)
	return appendRange(dst, bitSize, b&^half, b)
}

func commonBits(a, b uint64, bitSize uint8) uint8 {
	return uint8(bits.LeadingZeros64(a^b) - (64 - int(bitSize)))
}

func hostMask(hostBits uint8) int64 {
	return int64(1)<<hostBits - 1
}

func maxID(bitSize uint8) int64 {
	return hostMask(bitSize)
}
