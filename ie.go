package wifi

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"unicode/utf8"
)

var (
	// ErrTruncatedElement is returned when an information element header or
	// payload claims more bytes than are available, or when a decoder needs
	// more payload bytes than the element declares.
	ErrTruncatedElement = errors.New("truncated 802.11 information element")

	// ErrUnknownEnumValue is returned when a field which maps to a fixed set
	// of values holds a value outside of that set.
	ErrUnknownEnumValue = errors.New("unknown 802.11 information element enumeration value")
)

// errInvalidBSSLoad is returned when BSSLoad IE has wrong length.
var errInvalidBSSLoad = errors.New("802.11 information element BSSLoad has wrong length")

// List of 802.11 Information Element types.
const (
	ieSSID            = 0
	ieBSSLoad         = 11
	ieHTCapabilities  = 45
	ieHTOperation     = 61
	ieVHTCapabilities = 191
	ieVHTOperation    = 192
)

// An ie is an 802.11 information element.
type ie struct {
	ID uint8
	// Length field implied by length of data
	Data []byte
}

// parseIEs parses zero or more ies from a byte slice. The Data of each
// returned ie aliases b.
// Reference:
//
//	https://www.safaribooksonline.com/library/view/80211-wireless-networks/0596100523/ch04.html#wireless802dot112-CHP-4-FIG-31
func parseIEs(b []byte) ([]ie, error) {
	var ies []ie
	var i int
	for {
		if len(b[i:]) == 0 {
			break
		}
		if len(b[i:]) < 2 {
			return nil, fmt.Errorf("%w: %d byte header at offset %d",
				ErrTruncatedElement, len(b[i:]), i)
		}

		id := b[i]
		i++
		l := int(b[i])
		i++

		if len(b[i:]) < l {
			return nil, fmt.Errorf("%w: element %d declares %d bytes, %d remain",
				ErrTruncatedElement, id, l, len(b[i:]))
		}

		ies = append(ies, ie{
			ID:   id,
			Data: b[i : i+l],
		})

		i += l
	}

	return ies, nil
}

// needBytes reports ErrTruncatedElement if an element's payload is shorter
// than n bytes.
func needBytes(b []byte, n int) error {
	if len(b) < n {
		return fmt.Errorf("%w: need %d bytes, have %d",
			ErrTruncatedElement, n, len(b))
	}

	return nil
}

// decodeSSID safely parses a byte slice into UTF-8 runes, and returns the
// resulting string from the runes.
func decodeSSID(b []byte) string {
	buf := bytes.NewBuffer(nil)
	for len(b) > 0 {
		r, size := utf8.DecodeRune(b)
		b = b[size:]

		buf.WriteRune(r)
	}

	return buf.String()
}

// decodeBSSLoad decodes a BSS Load element.  The 5 byte form is the one
// defined by 802.11 (version 2); the 4 byte form is the Cisco QBSS variant
// (version 1).
func decodeBSSLoad(b []byte) (*BSSLoad, error) {
	var load BSSLoad
	switch len(b) {
	case 5:
		load.Version = 2
		load.StationCount = binary.LittleEndian.Uint16(b[0:2])
		load.ChannelUtilization = b[2]
		load.AvailableAdmissionCapacity = binary.LittleEndian.Uint16(b[3:5])
	case 4:
		load.Version = 1
		load.StationCount = binary.LittleEndian.Uint16(b[0:2])
		load.ChannelUtilization = b[2]
		load.AvailableAdmissionCapacity = uint16(b[3])
	default:
		return nil, errInvalidBSSLoad
	}

	return &load, nil
}
