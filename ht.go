package wifi

import (
	"encoding/binary"
)

// HTSettings describes the 802.11n (High Throughput) capabilities and
// operating parameters advertised by a BSS in its HT Capabilities and HT
// Operation information elements.
type HTSettings struct {
	// The BSS operates on a 40MHz channel.
	Is40MHz bool

	// Short guard intervals are supported on 20MHz channels.
	ShortGI20MHz bool

	// Short guard intervals are supported on 40MHz channels.
	ShortGI40MHz bool

	// The primary channel field of the HT Operation element.
	PrimaryChannel uint8

	// The secondary channel lies below the primary channel.
	SecondaryChannelLower bool

	// Data rates in Mbit/s for each MCS index advertised in the supported
	// MCS set, in ascending MCS index order.  See MCSRate.
	Rates []float64
}

// Equal reports whether s and x describe the same HT configuration.  Rates
// are not compared.
func (s HTSettings) Equal(x HTSettings) bool {
	return s.Is40MHz == x.Is40MHz &&
		s.ShortGI20MHz == x.ShortGI20MHz &&
		s.ShortGI40MHz == x.ShortGI40MHz &&
		s.PrimaryChannel == x.PrimaryChannel &&
		s.SecondaryChannelLower == x.SecondaryChannelLower
}

// MaxRate returns the highest rate in Rates, or 0 if no MCS index is
// supported.
func (s HTSettings) MaxRate() float64 {
	var best float64
	for _, r := range s.Rates {
		if r > best {
			best = r
		}
	}

	return best
}

// HT Capabilities Information bits, first octet.
const (
	htCapChannelWidth40 = 0x02
	htCapShortGI20      = 0x20
	htCapShortGI40      = 0x40
)

// decodeHTCapabilities decodes an HT Capabilities element into s.
func decodeHTCapabilities(b []byte, s *HTSettings) error {
	// Capability bits and a 4 byte MCS bitmap starting at offset 4.
	if err := needBytes(b, 8); err != nil {
		return err
	}

	s.Is40MHz = b[0]&htCapChannelWidth40 != 0
	s.ShortGI20MHz = b[0]&htCapShortGI20 != 0
	s.ShortGI40MHz = b[0]&htCapShortGI40 != 0

	// One bit per MCS index, least significant bit of the first octet is
	// MCS 0, so walking upward yields rates in index order.
	mcs := binary.LittleEndian.Uint32(b[4:8])
	for i := uint(0); i < 32; i++ {
		if mcs&(1<<i) == 0 {
			continue
		}

		s.Rates = append(s.Rates, MCSRate(i, s.ShortGI20MHz, s.ShortGI40MHz, s.Is40MHz))
	}

	return nil
}

// decodeHTOperation decodes an HT Operation element into s.
//
// The 40MHz refinement only applies when an HT Capabilities element was
// decoded earlier in the same buffer and set Is40MHz, so the result depends
// on element order.
func decodeHTOperation(b []byte, s *HTSettings) error {
	if err := needBytes(b, 2); err != nil {
		return err
	}

	s.PrimaryChannel = b[0]
	s.SecondaryChannelLower = b[0]&0x03 == 0x03

	if s.Is40MHz {
		// Secondary channel offset: 1 is above, 3 is below, 0 is none.
		offset := b[1] & 0x03
		s.Is40MHz = offset == 0x03 || offset == 0x01
	}

	return nil
}
