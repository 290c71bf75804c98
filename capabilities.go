package wifi

import (
	"fmt"
)

// VHTSettings describes the 802.11ac (Very High Throughput) settings of a
// BSS together with the HT settings it also advertises.
type VHTSettings struct {
	HTSettings

	// Decoded VHT Capabilities element, nil if not present.
	Capabilities *VHTCapabilities

	// Decoded VHT Operation element, nil if not present.
	Operation *VHTOperation
}

// A DecodeMode selects which information elements are decoded.
type DecodeMode int

const (
	// DecodeHT decodes the HT Capabilities and HT Operation elements only.
	// VHT elements are ignored, even when malformed.
	DecodeHT DecodeMode = iota

	// DecodeVHT decodes the HT and VHT elements.
	DecodeVHT
)

// An elementDecoder decodes the payload of a single information element into
// the settings accumulated so far.
type elementDecoder func(b []byte, s *VHTSettings) error

// htDecoders and vhtDecoders map element IDs to their decoders.
var (
	htDecoders = map[uint8]elementDecoder{
		ieHTCapabilities: func(b []byte, s *VHTSettings) error {
			return decodeHTCapabilities(b, &s.HTSettings)
		},
		ieHTOperation: func(b []byte, s *VHTSettings) error {
			return decodeHTOperation(b, &s.HTSettings)
		},
	}

	vhtDecoders = map[uint8]elementDecoder{
		ieVHTCapabilities: func(b []byte, s *VHTSettings) error {
			c, err := decodeVHTCapabilities(b)
			if err != nil {
				return err
			}

			s.Capabilities = c
			return nil
		},
		ieVHTOperation: func(b []byte, s *VHTSettings) error {
			op, err := decodeVHTOperation(b)
			if err != nil {
				return err
			}

			s.Operation = op
			return nil
		},
	}
)

// ParseHT decodes the HT Capabilities and HT Operation elements found in a
// buffer of concatenated 802.11 information elements, such as the body of a
// beacon or probe response following its fixed fields.
//
// If neither element is present, ParseHT returns nil settings and a nil
// error.  A malformed element aborts decoding; the returned error wraps
// ErrTruncatedElement.
func ParseHT(b []byte) (*HTSettings, error) {
	s, err := parseCapabilities(b, DecodeHT)
	if err != nil || s == nil {
		return nil, err
	}

	return &s.HTSettings, nil
}

// ParseVHT is like ParseHT, but additionally decodes the VHT Capabilities and
// VHT Operation elements.
//
// Settings are only returned when an HT element is present: a buffer with
// VHT elements but no HT elements yields nil settings and a nil error.  The
// returned error wraps ErrTruncatedElement or ErrUnknownEnumValue.
func ParseVHT(b []byte) (*VHTSettings, error) {
	return parseCapabilities(b, DecodeVHT)
}

// parseCapabilities walks the elements in b and dispatches the ones relevant
// to mode.  Unknown elements are ignored.
func parseCapabilities(b []byte, mode DecodeMode) (*VHTSettings, error) {
	ies, err := parseIEs(b)
	if err != nil {
		return nil, err
	}

	var (
		s     VHTSettings
		found bool
	)

	for _, ie := range ies {
		decode, ok := htDecoders[ie.ID]
		if ok {
			found = true
		} else if mode == DecodeVHT {
			decode, ok = vhtDecoders[ie.ID]
		}
		if !ok {
			continue
		}

		if err := decode(ie.Data, &s); err != nil {
			return nil, fmt.Errorf("wifi: decoding element %d: %w", ie.ID, err)
		}
	}

	if !found {
		return nil, nil
	}

	return &s, nil
}
