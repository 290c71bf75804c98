package schema

import (
	wifi "github.com/metageek-llc/ManagedWifi"
)

type HT struct {
	Is40MHz               bool      `json:"is40MHz" yaml:"is40MHz"`
	ShortGI20MHz          bool      `json:"shortGI20MHz" yaml:"shortGI20MHz"`
	ShortGI40MHz          bool      `json:"shortGI40MHz" yaml:"shortGI40MHz"`
	PrimaryChannel        uint8     `json:"primaryChannel" yaml:"primaryChannel"`
	SecondaryChannelLower bool      `json:"secondaryChannelLower" yaml:"secondaryChannelLower"`
	Rates                 []float64 `json:"rates" yaml:"rates"`
	MaxRate               float64   `json:"maxRate" yaml:"maxRate"`
}

type VHT struct {
	ShortGI80MHz    bool   `json:"shortGI80MHz" yaml:"shortGI80MHz"`
	ShortGI160MHz   bool   `json:"shortGI160MHz" yaml:"shortGI160MHz"`
	SupportedWidth  string `json:"supportedWidth,omitempty" yaml:"supportedWidth,omitempty"`
	MaxReceiveRate  uint16 `json:"maxReceiveRate" yaml:"maxReceiveRate"`
	MaxTransmitRate uint16 `json:"maxTransmitRate" yaml:"maxTransmitRate"`
	ChannelWidth    string `json:"channelWidth,omitempty" yaml:"channelWidth,omitempty"`
}

type Capabilities struct {
	HT  *HT  `json:"ht,omitempty" yaml:"ht,omitempty"`
	VHT *VHT `json:"vht,omitempty" yaml:"vht,omitempty"`
}

type BSS struct {
	BSSID        string `json:"bssid" yaml:"bssid"`
	SSID         string `json:"ssid" yaml:"ssid"`
	Frequency    int    `json:"frequency" yaml:"frequency"`
	Channel      int    `json:"channel" yaml:"channel"`
	Signal       int    `json:"signal,omitempty" yaml:"signal,omitempty"`
	Status       string `json:"status,omitempty" yaml:"status,omitempty"`
	Frame        string `json:"frame,omitempty" yaml:"frame,omitempty"`
	Stations     uint16 `json:"stations" yaml:"stations"`
	Capabilities `yaml:",inline"`
}

func NewHT(s *wifi.HTSettings) *HT {
	if s == nil {
		return nil
	}
	return &HT{
		Is40MHz:               s.Is40MHz,
		ShortGI20MHz:          s.ShortGI20MHz,
		ShortGI40MHz:          s.ShortGI40MHz,
		PrimaryChannel:        s.PrimaryChannel,
		SecondaryChannelLower: s.SecondaryChannelLower,
		Rates:                 s.Rates,
		MaxRate:               s.MaxRate(),
	}
}

// NewCapabilities converts decoded settings.  The VHT section is omitted
// when neither VHT element was present.
func NewCapabilities(s *wifi.VHTSettings) Capabilities {
	if s == nil {
		return Capabilities{}
	}

	c := Capabilities{HT: NewHT(&s.HTSettings)}
	if s.Capabilities == nil && s.Operation == nil {
		return c
	}

	c.VHT = &VHT{}
	if vc := s.Capabilities; vc != nil {
		c.VHT.ShortGI80MHz = vc.ShortGI80MHz
		c.VHT.ShortGI160MHz = vc.ShortGI160MHz
		c.VHT.SupportedWidth = vc.SupportedWidth.String()
		c.VHT.MaxReceiveRate = vc.MaxReceiveRate
		c.VHT.MaxTransmitRate = vc.MaxTransmitRate
	}
	if op := s.Operation; op != nil {
		c.VHT.ChannelWidth = op.ChannelWidth.String()
	}

	return c
}

func NewBSS(b *wifi.BSS) BSS {
	s := BSS{
		BSSID:        b.BSSID.String(),
		SSID:         b.SSID,
		Frequency:    b.Frequency,
		Status:       b.Status.String(),
		Stations:     b.Load.StationCount,
		Capabilities: NewCapabilities(b.Capabilities),
	}
	if b.Frequency > 0 {
		s.Channel = wifi.FrequencyToChannel(b.Frequency)
	}
	return s
}

func NewFrame(f *wifi.Frame) BSS {
	b := NewBSS(&f.BSS)
	// Frames carry no association state.
	b.Status = ""
	b.Signal = f.Signal
	b.Frame = f.Type.String()
	return b
}
