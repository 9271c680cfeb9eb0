package iptable

import (
	"fmt"
	"math/big"
	"net/netip"

	"github.com/hansthienpondt/nipam/pkg/table"
	"github.com/henderiw/addrtable/pkg/addrrange"
	"github.com/henderiw/addrtable/pkg/addrtable"
	"go4.org/netipx"
	"k8s.io/apimachinery/pkg/labels"
)

type IPTable interface {
	Get(addr string) (table.Route, error)
	Claim(addr string, d table.Route) error
	ClaimFree(d table.Route) (netip.Addr, error)
	Release(addr string) error
	Update(addr string, d table.Route) error

	Count() int
	Has(addr string) bool

	IsFree(addr string) bool
	FindFree() (netip.Addr, error)

	GetAll() table.Routes
	GetByLabel(selector labels.Selector) table.Routes
}

func New(from, to netip.Addr) (IPTable, error) {
	ipRange := netipx.IPRangeFrom(from, to)
	if !ipRange.IsValid() {
		return nil, fmt.Errorf("invalid ip range from %s to %s", from, to)
	}
	size := new(big.Int).Sub(ipToInt(to), ipToInt(from))
	if !size.IsUint64() || size.Uint64() == ^uint64(0) {
		return nil, fmt.Errorf("ip range from %s to %s exceeds the 64 bit address space", from, to)
	}
	t, err := addrtable.NewTable[table.Route](
		addrrange.FromTo(0, size.Uint64()),
		nil,
		nil,
	)
	if err != nil {
		return nil, err
	}
	return &ipTable{
		table:   t,
		ipRange: ipRange,
	}, nil
}

type ipTable struct {
	table   addrtable.Table[table.Route]
	ipRange netipx.IPRange
}

func (r *ipTable) Get(addr string) (table.Route, error) {
	var route table.Route
	// Validate IP address
	claimIP, err := r.validateIP(addr)
	if err != nil {
		return route, err
	}
	id := calculateIndex(claimIP, r.ipRange.From())
	return r.table.Get(id)
}

func (r *ipTable) Claim(addr string, d table.Route) error {
	// Validate IP address
	claimIP, err := r.validateIP(addr)
	if err != nil {
		return err
	}
	id := calculateIndex(claimIP, r.ipRange.From())
	if !r.table.IsFree(id) {
		return fmt.Errorf("claim failed ip %s already claimed", addr)
	}
	return r.table.Claim(id, d)
}

func (r *ipTable) ClaimFree(d table.Route) (netip.Addr, error) {
	id, err := r.table.ClaimDynamic(d)
	if err != nil {
		return netip.Addr{}, err
	}
	return calculateIPFromIndex(r.ipRange.From(), id), nil
}

func (r *ipTable) Release(addr string) error {
	// Validate IP address
	claimIP, err := r.validateIP(addr)
	if err != nil {
		return err
	}
	id := calculateIndex(claimIP, r.ipRange.From())
	return r.table.Release(id)
}

func (r *ipTable) Update(addr string, d table.Route) error {
	// Validate IP address
	claimIP, err := r.validateIP(addr)
	if err != nil {
		return err
	}
	id := calculateIndex(claimIP, r.ipRange.From())
	if r.table.IsFree(id) {
		return fmt.Errorf("update failed ip %s not claimed", addr)
	}
	return r.table.Update(id, d)
}

func (r *ipTable) Count() int {
	return r.table.Count()
}

func (r *ipTable) Has(addr string) bool {
	// Validate IP address
	claimIP, err := r.validateIP(addr)
	if err != nil {
		return false
	}
	id := calculateIndex(claimIP, r.ipRange.From())
	return r.table.Has(id)
}

func (r *ipTable) IsFree(addr string) bool {
	// Validate IP address
	claimIP, err := r.validateIP(addr)
	if err != nil {
		return false
	}
	id := calculateIndex(claimIP, r.ipRange.From())
	return r.table.IsFree(id)
}

func (r *ipTable) FindFree() (netip.Addr, error) {
	var addr netip.Addr

	id, err := r.table.FindFree()
	if err != nil {
		return addr, err
	}
	return calculateIPFromIndex(r.ipRange.From(), id), nil
}

func (r *ipTable) GetAll() table.Routes {
	var routes table.Routes
	for _, route := range r.table.GetAll() {
		routes = append(routes, route)
	}
	return routes
}

func (r *ipTable) GetByLabel(selector labels.Selector) table.Routes {
	var routes table.Routes

	iter := r.table.Iterate()

	for iter.Next() {
		route := iter.Value()
		if selector.Matches(route.Labels()) {
			routes = append(routes, route)
		}
	}

	return routes
}

func (r *ipTable) validateIP(addr string) (netip.Addr, error) {
	// Parse IP address
	claimIP, err := netip.ParseAddr(addr)
	if err != nil {
		return netip.Addr{}, fmt.Errorf("ip address %s is invalid", addr)
	}
	if !r.ipRange.Contains(claimIP) {
		return netip.Addr{}, fmt.Errorf("ip address %s, does not fit in the range from %s to %s", addr, r.ipRange.From().String(), r.ipRange.To().String())
	}
	return claimIP, nil
}

func calculateIndex(ip, start netip.Addr) uint64 {
	// Calculate the offset of ip in the range
	return new(big.Int).Sub(ipToInt(ip), ipToInt(start)).Uint64()
}

func ipToInt(ip netip.Addr) *big.Int {
	// Convert IP address to big integer
	bytes := ip.As16()
	ipInt := new(big.Int)
	ipInt.SetBytes(bytes[:])
	return ipInt
}

func calculateIPFromIndex(startIP netip.Addr, id uint64) netip.Addr {
	// Calculate the IP address corresponding to the index
	ipInt := new(big.Int).Add(ipToInt(startIP), new(big.Int).SetUint64(id))
	// Convert the big.Int representing the IP address to a byte slice with length 16
	ipBytes := ipInt.Bytes()

	if len(ipBytes) < 16 {
		// If the byte slice is shorter than 16 bytes, pad it with leading zeros
		paddedBytes := make([]byte, 16-len(ipBytes))
		ipBytes = append(paddedBytes, ipBytes...)
	}

	// Convert the byte slice to a [16]byte
	var ip16 [16]byte
	copy(ip16[:], ipBytes)

	if startIP.Is4() {
		return netip.AddrFrom4(netip.AddrFrom16(ip16).As4())
	}
	return netip.AddrFrom16(ip16)
}
