package main

import (
	"errors"
	"fmt"
	"io"
	"net/netip"
	"strings"

	"github.com/go-logr/logr"
	"github.com/henderiw/rangeset/pkg/idprefix"
	"github.com/henderiw/rangeset/pkg/iptable"
	"github.com/henderiw/rangeset/pkg/ipset"
	"github.com/henderiw/rangeset/pkg/rangeset"
	"github.com/henderiw/rangeset/pkg/rangetable"
	"github.com/henderiw/rangeset/pkg/vlantable"
	"github.com/henderiw/rangeset/pkg/vxlantable"
	"go4.org/netipx"
	"k8s.io/apimachinery/pkg/labels"
)

const (
	vlanBits  = 12
	vxlanBits = 24
)

type poolReport struct {
	name    string
	kind    string
	claimed string
	free    string
	entries int
	// set for id pools with a fixed bit size
	freeIDs rangeset.RangeSet[int64]
	bitSize uint8
}

func runPools(w io.Writer, cfg *Config, log logr.Logger, prefixes bool) error {
	var errm error
	for _, p := range cfg.Pools {
		rep, err := buildPool(p, log.WithValues("pool", p.Name))
		if err != nil {
			errm = errors.Join(errm, fmt.Errorf("pool %s: %w", p.Name, err))
			continue
		}
		fmt.Fprintf(w, "%s (%s) entries: %d\n  claimed: %s\n  free:    %s\n",
			rep.name, rep.kind, rep.entries, rep.claimed, rep.free)
		if !prefixes || rep.bitSize == 0 {
			continue
		}
		free, err := idprefix.SetPrefixes(rep.freeIDs, rep.bitSize)
		if err != nil {
			errm = errors.Join(errm, fmt.Errorf("pool %s: %w", p.Name, err))
			continue
		}
		s := make([]string, 0, len(free))
		for _, pfx := range free {
			s = append(s, pfx.String())
		}
		fmt.Fprintf(w, "  free prefixes: %s\n", strings.Join(s, ","))
	}
	return errm
}

func buildPool(p PoolConfig, log logr.Logger) (*poolReport, error) {
	switch p.Kind {
	case kindInt:
		return buildIntPool(p, log)
	case kindVLAN:
		return buildVLANPool(p, log)
	case kindVXLAN:
		return buildVXLANPool(p, log)
	case kindIP:
		return buildIPPool(p, log)
	}
	return nil, fmt.Errorf("unknown kind %q", p.Kind)
}

func buildIntPool(p PoolConfig, log logr.Logger) (*poolReport, error) {
	pool, err := rangeset.ParseInt(p.Range)
	if err != nil {
		return nil, err
	}
	t, err := rangetable.New(rangetable.Config[int64]{
		Name:   p.Name,
		Pool:   pool,
		Domain: rangeset.Int64s{},
		Logger: log,
	})
	if err != nil {
		return nil, err
	}
	for _, c := range p.Claims {
		r, err := rangeset.ParseInt(c.Range)
		if err != nil {
			return nil, err
		}
		if err := t.ClaimRange(r, labels.Set(c.Labels)); err != nil {
			return nil, err
		}
	}
	return &poolReport{
		name:    p.Name,
		kind:    p.Kind,
		claimed: t.Claimed().String(),
		free:    t.Free().String(),
		entries: t.Count(),
	}, nil
}

// closedOpen returns the [start‥end) bounds of an integer range.
func closedOpen(s string) (start, end int64, err error) {
	r, err := rangeset.ParseInt(s)
	if err != nil {
		return 0, 0, err
	}
	r = rangeset.Canonical(r, rangeset.Int64s{})
	start, okStart := r.LowerEndpoint()
	end, okEnd := r.UpperEndpoint()
	if !okStart || !okEnd {
		return 0, 0, fmt.Errorf("%w: %s must be bounded", rangeset.ErrInvalidRange, r)
	}
	return start, end, nil
}

func buildVLANPool(p PoolConfig, log logr.Logger) (*poolReport, error) {
	t, err := vlantable.New(log)
	if err != nil {
		return nil, err
	}
	for _, c := range p.Claims {
		start, end, err := closedOpen(c.Range)
		if err != nil {
			return nil, err
		}
		if err := t.ClaimRange(start, end-start, labels.Set(c.Labels)); err != nil {
			return nil, err
		}
	}
	return &poolReport{
		name:    p.Name,
		kind:    p.Kind,
		claimed: claimedOf(t.GetAll()).String(),
		free:    t.Free().String(),
		entries: t.Count(),
		freeIDs: t.Free(),
		bitSize: vlanBits,
	}, nil
}

func buildVXLANPool(p PoolConfig, log logr.Logger) (*poolReport, error) {
	offset, end, err := closedOpen(p.Range)
	if err != nil {
		return nil, err
	}
	t, err := vxlantable.New(offset, end, log)
	if err != nil {
		return nil, err
	}
	for _, c := range p.Claims {
		start, end, err := closedOpen(c.Range)
		if err != nil {
			return nil, err
		}
		for id := start; id < end; id++ {
			if err := t.Claim(id, labels.Set(c.Labels)); err != nil {
				return nil, err
			}
		}
	}
	return &poolReport{
		name:    p.Name,
		kind:    p.Kind,
		claimed: claimedOf(t.GetAll()).String(),
		free:    t.Free().String(),
		entries: t.Count(),
		freeIDs: t.Free(),
		bitSize: vxlanBits,
	}, nil
}

// claimedOf returns the union of the entry ranges.
func claimedOf(entries rangetable.Entries[int64]) rangeset.RangeSet[int64] {
	// entries are valid and disjoint, so New cannot fail
	claimed, _ := rangeset.New(entries.Ranges()...)
	return claimed
}

func parseIPRange(s string) (netipx.IPRange, error) {
	if strings.Contains(s, "/") {
		p, err := netip.ParsePrefix(s)
		if err != nil {
			return netipx.IPRange{}, err
		}
		return netipx.RangeOfPrefix(p.Masked()), nil
	}
	if strings.Contains(s, "-") {
		return netipx.ParseIPRange(s)
	}
	a, err := netip.ParseAddr(s)
	if err != nil {
		return netipx.IPRange{}, err
	}
	return netipx.IPRangeFrom(a, a), nil
}

func buildIPPool(p PoolConfig, log logr.Logger) (*poolReport, error) {
	pool, err := parseIPRange(p.Range)
	if err != nil {
		return nil, err
	}
	t, err := iptable.New(pool.From(), pool.To(), log)
	if err != nil {
		return nil, err
	}
	for _, c := range p.Claims {
		ipr, err := parseIPRange(c.Range)
		if err != nil {
			return nil, err
		}
		if err := t.ClaimRange(ipr.String(), labels.Set(c.Labels)); err != nil {
			return nil, err
		}
	}

	claimed, err := ipset.New()
	if err != nil {
		return nil, err
	}
	for _, e := range t.GetAll() {
		if err := claimed.Add(e.Range); err != nil {
			return nil, err
		}
	}
	claimedSet, err := ipset.ToIPSet(claimed)
	if err != nil {
		return nil, err
	}
	free, err := t.Free()
	if err != nil {
		return nil, err
	}
	return &poolReport{
		name:    p.Name,
		kind:    p.Kind,
		claimed: formatIPRanges(claimedSet.Ranges()),
		free:    formatIPRanges(free.Ranges()),
		entries: t.Count(),
	}, nil
}

func formatIPRanges(ranges []netipx.IPRange) string {
	if len(ranges) == 0 {
		return "{}"
	}
	s := make([]string, 0, len(ranges))
	for _, r := range ranges {
		s = append(s, r.String())
	}
	return strings.Join(s, ",")
}
