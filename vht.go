package wifi

import (
	"encoding/binary"
	"fmt"
)

// A VHTSupportedWidth is the set of channel widths a VHT station supports,
// as advertised in the VHT Capabilities element.
type VHTSupportedWidth int

const (
	// VHTSupportedWidthEighty indicates no support for 160MHz or 80+80MHz.
	VHTSupportedWidthEighty VHTSupportedWidth = iota

	// VHTSupportedWidthOneSixty indicates support for 160MHz.
	VHTSupportedWidthOneSixty

	// VHTSupportedWidthAll indicates support for 160MHz and 80+80MHz.
	VHTSupportedWidthAll
)

// String returns the string representation of a VHTSupportedWidth.
func (w VHTSupportedWidth) String() string {
	switch w {
	case VHTSupportedWidthEighty:
		return "80MHz"
	case VHTSupportedWidthOneSixty:
		return "160MHz"
	case VHTSupportedWidthAll:
		return "160MHz, 80+80MHz"
	default:
		return fmt.Sprintf("unknown(%d)", w)
	}
}

// parseVHTSupportedWidth maps the Supported Channel Width Set subfield to a
// VHTSupportedWidth.
func parseVHTSupportedWidth(v uint8) (VHTSupportedWidth, error) {
	switch v {
	case 0:
		return VHTSupportedWidthEighty, nil
	case 1:
		return VHTSupportedWidthOneSixty, nil
	case 2:
		return VHTSupportedWidthAll, nil
	default:
		return 0, fmt.Errorf("%w: supported channel width %d", ErrUnknownEnumValue, v)
	}
}

// A VHTChannelWidth is the operating channel width of a VHT BSS, as
// advertised in the VHT Operation element.
type VHTChannelWidth int

const (
	// VHTChannelWidthTwentyOrForty indicates a 20MHz or 40MHz channel; the
	// HT Operation element determines which.
	VHTChannelWidthTwentyOrForty VHTChannelWidth = iota

	// VHTChannelWidthEighty indicates an 80MHz channel.
	VHTChannelWidthEighty

	// VHTChannelWidthOneSixty indicates a 160MHz channel.
	VHTChannelWidthOneSixty

	// VHTChannelWidthEightyPlusEighty indicates a non-contiguous 80+80MHz
	// channel.
	VHTChannelWidthEightyPlusEighty
)

// String returns the string representation of a VHTChannelWidth.
func (w VHTChannelWidth) String() string {
	switch w {
	case VHTChannelWidthTwentyOrForty:
		return "20/40MHz"
	case VHTChannelWidthEighty:
		return "80MHz"
	case VHTChannelWidthOneSixty:
		return "160MHz"
	case VHTChannelWidthEightyPlusEighty:
		return "80+80MHz"
	default:
		return fmt.Sprintf("unknown(%d)", w)
	}
}

// parseVHTChannelWidth maps the Channel Width subfield to a VHTChannelWidth.
func parseVHTChannelWidth(v uint8) (VHTChannelWidth, error) {
	switch v {
	case 0:
		return VHTChannelWidthTwentyOrForty, nil
	case 1:
		return VHTChannelWidthEighty, nil
	case 2:
		return VHTChannelWidthOneSixty, nil
	case 3:
		return VHTChannelWidthEightyPlusEighty, nil
	default:
		return 0, fmt.Errorf("%w: channel width %d", ErrUnknownEnumValue, v)
	}
}

// VHTCapabilities represents the 802.11ac (Very High Throughput) capabilities
// advertised by a BSS in its VHT Capabilities element (802.11-2020,
// 9.4.2.157).
type VHTCapabilities struct {
	// Short guard intervals are supported on 80MHz channels.
	ShortGI80MHz bool

	// Short guard intervals are supported on 160MHz and 80+80MHz channels.
	ShortGI160MHz bool

	// Reserved; not decoded from the element.  Use SupportedWidth.
	Supports160MHz bool

	// Reserved; not decoded from the element.  Use SupportedWidth.
	Supports80Plus80MHz bool

	// Rx Highest Supported Long GI Data Rate field of the supported MCS set.
	MaxReceiveRate uint16

	// Tx Highest Supported Long GI Data Rate field of the supported MCS set.
	MaxTransmitRate uint16

	// Channel widths supported by the BSS.
	SupportedWidth VHTSupportedWidth
}

// VHTOperation represents the operating parameters advertised by a BSS in
// its VHT Operation element (802.11-2020, 9.4.2.158).
type VHTOperation struct {
	ChannelWidth VHTChannelWidth
}

// VHT Capabilities Information bits, first octet.
const (
	vhtCapSupportedWidthMask  = 0x0c
	vhtCapSupportedWidthShift = 2
	vhtCapShortGI80           = 0x20
	vhtCapShortGI160          = 0x40
)

// decodeVHTCapabilities decodes a VHT Capabilities element.
func decodeVHTCapabilities(b []byte) (*VHTCapabilities, error) {
	// 4 bytes of capability bits followed by the 8 byte supported MCS set.
	if err := needBytes(b, 12); err != nil {
		return nil, err
	}

	width, err := parseVHTSupportedWidth((b[0] & vhtCapSupportedWidthMask) >> vhtCapSupportedWidthShift)
	if err != nil {
		return nil, err
	}

	mcs := b[4:12]
	return &VHTCapabilities{
		ShortGI80MHz:    b[0]&vhtCapShortGI80 != 0,
		ShortGI160MHz:   b[0]&vhtCapShortGI160 != 0,
		MaxReceiveRate:  binary.LittleEndian.Uint16(mcs[2:4]),
		MaxTransmitRate: binary.LittleEndian.Uint16(mcs[6:8]),
		SupportedWidth:  width,
	}, nil
}

// decodeVHTOperation decodes a VHT Operation element.
func decodeVHTOperation(b []byte) (*VHTOperation, error) {
	// Channel width, two center frequency segments and the 2 byte basic
	// MCS set.
	if err := needBytes(b, 5); err != nil {
		return nil, err
	}

	width, err := parseVHTChannelWidth(b[0])
	if err != nil {
		return nil, err
	}

	return &VHTOperation{ChannelWidth: width}, nil
}
