package wifi

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
	"github.com/google/gopacket/pcapgo"
)

// ErrNotManagementFrame is returned by ParseFrame when a packet is not an
// 802.11 beacon or probe response.
var ErrNotManagementFrame = errors.New("not an 802.11 beacon or probe response")

// A FrameType is the kind of management frame a Frame was decoded from.
type FrameType int

const (
	// FrameTypeBeacon indicates a beacon frame.
	FrameTypeBeacon FrameType = iota

	// FrameTypeProbeResponse indicates a probe response frame.
	FrameTypeProbeResponse
)

// String returns the string representation of a FrameType.
func (t FrameType) String() string {
	switch t {
	case FrameTypeBeacon:
		return "beacon"
	case FrameTypeProbeResponse:
		return "probe response"
	default:
		return fmt.Sprintf("unknown(%d)", t)
	}
}

// A Frame is a captured beacon or probe response and the BSS it advertises.
type Frame struct {
	// The BSS advertised by the frame.  Status and LastSeen are not set.
	BSS

	// The kind of management frame.
	Type FrameType

	// Signal strength at the antenna in dBm, as reported by the radiotap
	// header.  Zero if the capture carries no radiotap header.
	Signal int
}

// DecodeFrame decodes data, starting with the first decoder, and parses the
// resulting packet with ParseFrame.  Use layers.LayerTypeRadioTap for
// monitor mode captures and layers.LayerTypeDot11 for bare 802.11 frames
// including their FCS.
func DecodeFrame(data []byte, first gopacket.Decoder, mode DecodeMode) (*Frame, error) {
	return ParseFrame(gopacket.NewPacket(data, first, gopacket.Default), mode)
}

// ParseFrame extracts the information elements of a beacon or probe response
// and decodes them.  Packets of any other kind return ErrNotManagementFrame.
//
// Capabilities are decoded in the given mode; with DecodeHT the VHT elements
// are not looked at and Capabilities carries HT settings only.  Decoding
// failures are returned as they are by ParseHT or ParseVHT and no Frame is
// returned with them.
func ParseFrame(p gopacket.Packet, mode DecodeMode) (*Frame, error) {
	dot11, ok := p.Layer(layers.LayerTypeDot11).(*layers.Dot11)
	if !ok {
		if el := p.ErrorLayer(); el != nil {
			return nil, el.Error()
		}
		return nil, ErrNotManagementFrame
	}

	f := Frame{
		BSS: BSS{BSSID: dot11.Address3},
	}

	var (
		body     []byte
		interval uint16
	)

	switch dot11.Type {
	case layers.Dot11TypeMgmtBeacon:
		l, ok := p.Layer(layers.LayerTypeDot11MgmtBeacon).(*layers.Dot11MgmtBeacon)
		if !ok {
			return nil, fmt.Errorf("wifi: undecodable beacon from %s", dot11.Address3)
		}
		f.Type = FrameTypeBeacon
		body, interval = l.LayerPayload(), l.Interval
	case layers.Dot11TypeMgmtProbeResp:
		l, ok := p.Layer(layers.LayerTypeDot11MgmtProbeResp).(*layers.Dot11MgmtProbeResp)
		if !ok {
			return nil, fmt.Errorf("wifi: undecodable probe response from %s", dot11.Address3)
		}
		f.Type = FrameTypeProbeResponse
		body, interval = l.LayerPayload(), l.Interval
	default:
		return nil, ErrNotManagementFrame
	}

	// Raw value is in "Time Units (TU)".  See:
	// https://en.wikipedia.org/wiki/Beacon_frame
	f.BeaconInterval = time.Duration(interval) * 1024 * time.Microsecond

	if err := f.decodeIEs(body); err != nil {
		return nil, err
	}

	caps, err := parseCapabilities(body, mode)
	if err != nil {
		return nil, err
	}
	f.Capabilities = caps

	if rt, ok := p.Layer(layers.LayerTypeRadioTap).(*layers.RadioTap); ok {
		f.Frequency = int(rt.ChannelFrequency)
		if rt.Present.DBMAntennaSignal() {
			f.Signal = int(rt.DBMAntennaSignal)
		}
	}

	if f.Frequency == 0 && caps != nil {
		f.Frequency = primaryFrequency(caps.PrimaryChannel)
	}

	return &f, nil
}

// primaryFrequency guesses the frequency of an HT primary channel.  Channel
// numbers 1-14 are assumed to be in the 2.4GHz band.
func primaryFrequency(channel uint8) int {
	if channel <= 14 {
		return ChannelToFrequency(int(channel), Band2GHz)
	}

	return ChannelToFrequency(int(channel), Band5GHz)
}

// ReadCapture reads a pcap stream and calls fn with every beacon or probe
// response it contains, in capture order, decoding capabilities in mode.
// Other packets are skipped.
//
// A frame whose elements fail to decode is passed to onError if it is not
// nil; with a nil onError the failure ends the read.  ReadCapture stops at
// the first error returned by fn or onError.
func ReadCapture(r io.Reader, mode DecodeMode, fn func(*Frame) error, onError func(error) error) error {
	pr, err := pcapgo.NewReader(r)
	if err != nil {
		return err
	}

	lt := pr.LinkType()
	switch lt {
	case layers.LinkTypeIEEE802_11, layers.LinkTypeIEEE80211Radio:
	default:
		return fmt.Errorf("wifi: unsupported capture link type %s", lt)
	}

	for {
		data, _, err := pr.ReadPacketData()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}

		f, err := DecodeFrame(data, lt, mode)
		switch {
		case errors.Is(err, ErrNotManagementFrame):
			continue
		case err != nil:
			if onError == nil {
				return err
			}
			if err := onError(err); err != nil {
				return err
			}
			continue
		}

		if err := fn(f); err != nil {
			return err
		}
	}
}
