package wifi

import (
	"fmt"
	"net"
	"time"
)

// An InterfaceType is the operating mode of an Interface.  The values follow
// the ordering of nl80211's interface types.
type InterfaceType int

// Possible InterfaceType values.
const (
	InterfaceTypeUnspecified   InterfaceType = iota // driver decides
	InterfaceTypeAdHoc                              // independent BSS member
	InterfaceTypeStation                            // managed BSS client
	InterfaceTypeAP                                 // access point
	InterfaceTypeAPVLAN                             // VLAN interface of an access point
	InterfaceTypeWDS                                // wireless distribution
	InterfaceTypeMonitor                            // receives all frames
	InterfaceTypeMeshPoint                          // mesh network member
	InterfaceTypeP2PClient                          // peer-to-peer client
	InterfaceTypeP2PGroupOwner                      // peer-to-peer group owner
	InterfaceTypeP2PDevice                          // peer-to-peer device
	InterfaceTypeOCB                                // outside the context of a BSS
	InterfaceTypeNAN                                // near-me area network
)

// String returns the string representation of an InterfaceType.
func (t InterfaceType) String() string {
	switch t {
	case InterfaceTypeUnspecified:
		return "unspecified"
	case InterfaceTypeAdHoc:
		return "ad-hoc"
	case InterfaceTypeStation:
		return "station"
	case InterfaceTypeAP:
		return "access point"
	case InterfaceTypeAPVLAN:
		return "access point/VLAN"
	case InterfaceTypeWDS:
		return "wireless distribution"
	case InterfaceTypeMonitor:
		return "monitor"
	case InterfaceTypeMeshPoint:
		return "mesh point"
	case InterfaceTypeP2PClient:
		return "P2P client"
	case InterfaceTypeP2PGroupOwner:
		return "P2P group owner"
	case InterfaceTypeP2PDevice:
		return "P2P device"
	case InterfaceTypeOCB:
		return "outside context of BSS"
	case InterfaceTypeNAN:
		return "near-me area network"
	default:
		return fmt.Sprintf("unknown(%d)", t)
	}
}

// An Interface is a WiFi network interface.
type Interface struct {
	// The index of the interface.
	Index int

	// The name of the interface.
	Name string

	// The hardware address of the interface.
	HardwareAddr net.HardwareAddr

	// The physical device that this interface belongs to.
	PHY int

	// The virtual device number of this interface within a PHY.
	Device int

	// The operating mode of the interface.
	Type InterfaceType

	// The interface's wireless frequency in MHz.
	Frequency int
}

// BSSLoad holds the contents of a BSS Load element (802.11-2020, 9.4.2.27).
type BSSLoad struct {
	// Version 2 is the 5 byte element defined by 802.11, version 1 the 4
	// byte Cisco QBSS variant.
	Version int

	// Number of stations associated with the BSS.
	StationCount uint16

	// Share of time the primary channel was sensed busy, scaled to 0-255.
	ChannelUtilization uint8

	// Remaining admission controlled medium time; units of 32us/s for
	// version 2.
	AvailableAdmissionCapacity uint16
}

// A BSS is an 802.11 basic service set.  It contains information about a wireless
// network seen by an Interface.
type BSS struct {
	// The service set identifier, or "network name" of the BSS.
	SSID string

	// BSSID: The BSS service set identifier.  In infrastructure mode, this is the
	// hardware address of the wireless access point that a client is associated
	// with.
	BSSID net.HardwareAddr

	// Frequency: The frequency used by the BSS, in MHz.
	Frequency int

	// BeaconInterval: The time interval between beacon transmissions for this BSS.
	BeaconInterval time.Duration

	// LastSeen: The time since the client last scanned this BSS's information.
	LastSeen time.Duration

	// Status: The status of the client within the BSS.
	Status BSSStatus

	// Load: The load element of the BSS (contains StationCount, ChannelUtilization and AvailableAdmissionCapacity).
	Load BSSLoad

	// IEs: The raw information elements most recently received from the BSS.
	IEs []byte

	// Capabilities: HT and VHT settings decoded from IEs.  Nil if the BSS
	// advertises no HT elements or its capability elements are malformed;
	// ParseVHT(IEs) reports the reason.
	Capabilities *VHTSettings
}

// A BSSStatus indicates the current status of client within a BSS.
type BSSStatus int

const (
	// BSSStatusAuthenticated indicates that a client is authenticated with a BSS.
	BSSStatusAuthenticated BSSStatus = iota

	// BSSStatusAssociated indicates that a client is associated with a BSS.
	BSSStatusAssociated

	// BSSStatusIBSSJoined indicates that a client has joined an independent BSS.
	BSSStatusIBSSJoined

	// BSSStatusNotAssociated indicates that a client is not associated with
	// a BSS, as is the case for most entries in a scan result.
	BSSStatusNotAssociated
)

// String returns the string representation of a BSSStatus.
func (s BSSStatus) String() string {
	switch s {
	case BSSStatusAuthenticated:
		return "authenticated"
	case BSSStatusAssociated:
		return "associated"
	case BSSStatusIBSSJoined:
		return "IBSS joined"
	case BSSStatusNotAssociated:
		return "unassociated"
	default:
		return fmt.Sprintf("unknown(%d)", s)
	}
}

// FrequencyToChannel returns the channel number given the frequency in MHz, as
// defined by IEEE802.11-2007, 17.3.8.3.2 and Annex J.
func FrequencyToChannel(freq int) int {
	if freq == 2484 {
		return 14
	} else if freq < 2484 {
		return (freq - 2407) / 5
	} else if freq >= 4910 && freq <= 4980 {
		return (freq - 4000) / 5
	} else if freq <= 45000 {
		return (freq - 5000) / 5
	} else if freq >= 58320 && freq <= 64800 {
		return (freq - 56160) / 2160
	} else {
		return 0
	}
}

// Constants representing the standard WiFi frequency bands, matching the
// values of nl80211's band enumeration.
const (
	Band2GHz  = 0
	Band5GHz  = 1
	Band60GHz = 2
)

// ChannelToFrequency returns the frequency given the channel number and the
// band, as there are overlapping channel numbers between bands.
func ChannelToFrequency(channel int, band int) int {
	if channel <= 0 {
		return 0
	}

	switch band {
	case Band2GHz:
		if channel == 14 {
			return 2484
		} else if channel < 14 {
			return 2407 + channel*5
		}
	case Band5GHz:
		if channel >= 182 && channel <= 196 {
			return 4000 + channel*5
		}
		return 5000 + channel*5
	case Band60GHz:
		if channel < 5 {
			return 56160 + channel*2160
		}
	}
	return 0
}

// decodeIEs stores the raw information elements of a BSS and decodes the
// SSID and BSS load elements from them.  Capabilities are decoded separately
// with ParseVHT.
func (b *BSS) decodeIEs(data []byte) error {
	ies, err := parseIEs(data)
	if err != nil {
		return err
	}

	b.IEs = data
	for _, ie := range ies {
		switch ie.ID {
		case ieSSID:
			b.SSID = decodeSSID(ie.Data)
		case ieBSSLoad:
			load, err := decodeBSSLoad(ie.Data)
			if err != nil {
				continue // This IE is malformed
			}
			b.Load = *load
		}
	}

	return nil
}
