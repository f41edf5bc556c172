package iptable

import (
	"fmt"
	"net/netip"

	"github.com/go-logr/logr"
	"github.com/henderiw/rangeset/pkg/ipset"
	"github.com/henderiw/rangeset/pkg/rangetable"
	"go4.org/netipx"
	"k8s.io/apimachinery/pkg/labels"
)

type IPTable interface {
	Get(addr string) (rangetable.Entry[netip.Addr], error)
	Claim(addr string, d labels.Set) error
	ClaimRange(ipRange string, d labels.Set) error
	ClaimPrefix(prefix string, d labels.Set) error
	ClaimDynamic(d labels.Set) (netip.Addr, error)
	Release(addr string) error
	ReleaseRange(ipRange string) error
	Update(addr string, d labels.Set) error

	Count() int
	Has(addr string) bool

	IsFree(addr string) bool
	FindFree() (netip.Addr, error)
	Free() (*netipx.IPSet, error)

	GetAll() rangetable.Entries[netip.Addr]
	GetByLabel(selector labels.Selector) rangetable.Entries[netip.Addr]
}

// New returns a table of the addresses from..to, both included.
func New(from, to netip.Addr, log logr.Logger) (IPTable, error) {
	ipRange := netipx.IPRangeFrom(from, to)
	pool, err := ipset.FromIPRange(ipRange)
	if err != nil {
		return nil, err
	}
	t, err := rangetable.New(rangetable.Config[netip.Addr]{
		Name:   ipRange.String(),
		Pool:   pool,
		Domain: ipset.Addrs{},
		Logger: log,
	})
	if err != nil {
		return nil, err
	}
	return &ipTable{table: t, ipRange: ipRange}, nil
}

type ipTable struct {
	table   rangetable.Table[netip.Addr]
	ipRange netipx.IPRange
}

func (r *ipTable) Get(addr string) (rangetable.Entry[netip.Addr], error) {
	claimIP, err := r.validateIP(addr)
	if err != nil {
		return rangetable.Entry[netip.Addr]{}, err
	}
	return r.table.Get(claimIP)
}

func (r *ipTable) Claim(addr string, d labels.Set) error {
	claimIP, err := r.validateIP(addr)
	if err != nil {
		return err
	}
	if !r.table.IsFree(claimIP) {
		return fmt.Errorf("claim failed ip %s already claimed", addr)
	}
	return r.table.Claim(claimIP, d)
}

func (r *ipTable) ClaimRange(ipRange string, d labels.Set) error {
	ipr, err := netipx.ParseIPRange(ipRange)
	if err != nil {
		return fmt.Errorf("ip range %s is invalid: %w", ipRange, err)
	}
	rng, err := ipset.FromIPRange(ipr)
	if err != nil {
		return err
	}
	return r.table.ClaimRange(rng, d)
}

func (r *ipTable) ClaimPrefix(prefix string, d labels.Set) error {
	p, err := netip.ParsePrefix(prefix)
	if err != nil {
		return fmt.Errorf("prefix %s is invalid: %w", prefix, err)
	}
	rng, err := ipset.FromPrefix(p)
	if err != nil {
		return err
	}
	return r.table.ClaimRange(rng, d)
}

func (r *ipTable) ClaimDynamic(d labels.Set) (netip.Addr, error) {
	return r.table.ClaimDynamic(d)
}

func (r *ipTable) Release(addr string) error {
	claimIP, err := r.validateIP(addr)
	if err != nil {
		return err
	}
	return r.table.Release(claimIP)
}

func (r *ipTable) ReleaseRange(ipRange string) error {
	ipr, err := netipx.ParseIPRange(ipRange)
	if err != nil {
		return fmt.Errorf("ip range %s is invalid: %w", ipRange, err)
	}
	rng, err := ipset.FromIPRange(ipr)
	if err != nil {
		return err
	}
	return r.table.ReleaseRange(rng)
}

func (r *ipTable) Update(addr string, d labels.Set) error {
	claimIP, err := r.validateIP(addr)
	if err != nil {
		return err
	}
	if r.table.IsFree(claimIP) {
		return fmt.Errorf("update failed ip %s not claimed", addr)
	}
	return r.table.Update(claimIP, d)
}

func (r *ipTable) Count() int {
	return r.table.Count()
}

func (r *ipTable) Has(addr string) bool {
	claimIP, err := r.validateIP(addr)
	if err != nil {
		return false
	}
	return r.table.Has(claimIP)
}

func (r *ipTable) IsFree(addr string) bool {
	claimIP, err := r.validateIP(addr)
	if err != nil {
		return false
	}
	return r.table.IsFree(claimIP)
}

func (r *ipTable) FindFree() (netip.Addr, error) {
	return r.table.FindFree()
}

func (r *ipTable) Free() (*netipx.IPSet, error) {
	return ipset.ToIPSet(r.table.Free())
}

func (r *ipTable) GetAll() rangetable.Entries[netip.Addr] {
	return r.table.GetAll()
}

func (r *ipTable) GetByLabel(selector labels.Selector) rangetable.Entries[netip.Addr] {
	return r.table.GetByLabel(selector)
}

func (r *ipTable) validateIP(addr string) (netip.Addr, error) {
	claimIP, err := netip.ParseAddr(addr)
	if err != nil {
		return netip.Addr{}, fmt.Errorf("ip address %s is invalid", addr)
	}
	if !r.ipRange.Contains(claimIP) {
		return netip.Addr{}, fmt.Errorf("ip address %s, does not fit in the range from %s to %s", addr, r.ipRange.From().String(), r.ipRange.To().String())
	}
	return claimIP, nil
}
