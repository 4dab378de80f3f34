// Package network reports the host's active network for the fetch
// connectivity precondition.
package network

import (
	"net"
	"sort"
	"strings"

	"github.com/konst007/chgk/internal/engine/types"
	"github.com/konst007/chgk/internal/utils"
)

// Provider returns the current network snapshot.
type Provider interface {
	ActiveNetworkInfo() types.NetworkInfo
}

// Static always reports the same snapshot. Used for --offline and tests.
type Static types.NetworkInfo

func (s Static) ActiveNetworkInfo() types.NetworkInfo { return types.NetworkInfo(s) }

// Offline reports no connectivity.
var Offline = Static{}

// Probe inspects the local interfaces on every call.
type Probe struct {
	// interfaces is swapped in tests.
	interfaces func() ([]iface, error)
}

// iface is the subset of net.Interface the probe needs.
type iface struct {
	Name  string
	Flags net.Flags
	Addrs []net.Addr
}

// NewProbe returns a probe backed by net.Interfaces.
func NewProbe() *Probe {
	return &Probe{interfaces: systemInterfaces}
}

func systemInterfaces() ([]iface, error) {
	ifs, err := net.Interfaces()
	if err != nil {
		return nil, err
	}
	out := make([]iface, 0, len(ifs))
	for _, ni := range ifs {
		addrs, err := ni.Addrs()
		if err != nil {
			continue
		}
		out = append(out, iface{Name: ni.Name, Flags: ni.Flags, Addrs: addrs})
	}
	return out, nil
}

// ActiveNetworkInfo picks the best usable interface: up, not loopback, with a
// global unicast address. Wired beats Wi-Fi beats mobile beats other.
func (p *Probe) ActiveNetworkInfo() types.NetworkInfo {
	ifs, err := p.interfaces()
	if err != nil {
		utils.Debug("network: listing interfaces: %v", err)
		return types.NetworkInfo{}
	}

	var candidates []types.NetworkInfo
	for _, ni := range ifs {
		if ni.Flags&net.FlagUp == 0 || ni.Flags&net.FlagLoopback != 0 {
			continue
		}
		if !hasGlobalUnicast(ni.Addrs) {
			continue
		}
		candidates = append(candidates, types.NetworkInfo{
			Connected: true,
			Type:      Classify(ni.Name),
			Interface: ni.Name,
		})
	}
	if len(candidates) == 0 {
		return types.NetworkInfo{}
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return rank(candidates[i].Type) < rank(candidates[j].Type)
	})
	return candidates[0]
}

func hasGlobalUnicast(addrs []net.Addr) bool {
	for _, a := range addrs {
		var ip net.IP
		switch v := a.(type) {
		case *net.IPNet:
			ip = v.IP
		case *net.IPAddr:
			ip = v.IP
		}
		if ip != nil && ip.IsGlobalUnicast() {
			return true
		}
	}
	return false
}

var prefixes = []struct {
	prefix string
	t      types.Transport
}{
	{"wlan", types.TransportWiFi},
	{"wlp", types.TransportWiFi},
	{"wl", types.TransportWiFi},
	{"wifi", types.TransportWiFi},
	{"wwan", types.TransportMobile},
	{"rmnet", types.TransportMobile},
	{"ccmni", types.TransportMobile},
	{"ppp", types.TransportMobile},
	{"eth", types.TransportWired},
	{"en", types.TransportWired},
}

// Classify maps an interface name to a transport class.
func Classify(name string) types.Transport {
	n := strings.ToLower(name)
	for _, p := range prefixes {
		if strings.HasPrefix(n, p.prefix) {
			return p.t
		}
	}
	return types.TransportOther
}

func rank(t types.Transport) int {
	switch t {
	case types.TransportWired:
		return 0
	case types.TransportWiFi:
		return 1
	case types.TransportMobile:
		return 2
	default:
		return 3
	}
}
