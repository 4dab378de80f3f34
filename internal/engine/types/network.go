package types

// Transport is the coarse class of the interface carrying traffic.
type Transport int

const (
	TransportNone Transport = iota
	TransportWired
	TransportWiFi
	TransportMobile
	TransportOther
)

func (t Transport) String() string {
	switch t {
	case TransportNone:
		return "none"
	case TransportWired:
		return "wired"
	case TransportWiFi:
		return "wifi"
	case TransportMobile:
		return "mobile"
	default:
		return "other"
	}
}

// NetworkInfo is a snapshot of the host's active network.
type NetworkInfo struct {
	Connected bool
	Type      Transport
	Interface string // informational, e.g. "wlan0"
}

// Eligible reports whether a fetch may be attempted over this network:
// it must be connected through a wired/Wi-Fi class or mobile-data class link.
func (n NetworkInfo) Eligible() bool {
	if !n.Connected {
		return false
	}
	switch n.Type {
	case TransportWired, TransportWiFi, TransportMobile:
		return true
	default:
		return false
	}
}
