package main

import (
	"fmt"
	"log/slog"

	"github.com/urfave/cli/v2"

	wifi "github.com/metageek-llc/ManagedWifi"
	"github.com/metageek-llc/ManagedWifi/internal/logging"
	"github.com/metageek-llc/ManagedWifi/internal/schema"
	"github.com/metageek-llc/ManagedWifi/internal/telemetry"
)

const sourceScan = "scan"

// A scanner is the part of wifi.Client used by the scan and watch commands.
type scanner interface {
	Interfaces() ([]*wifi.Interface, error)
	AccessPoints(ifi *wifi.Interface) ([]*wifi.BSS, error)
	Close() error
}

var newScanner = func() (scanner, error) {
	return wifi.New()
}

// lookupInterface finds a WiFi interface by name.
func lookupInterface(sc scanner, name string) (*wifi.Interface, error) {
	ifis, err := sc.Interfaces()
	if err != nil {
		return nil, err
	}
	for _, ifi := range ifis {
		if ifi.Name == name {
			return ifi, nil
		}
	}
	return nil, fmt.Errorf("no WiFi interface named %q", name)
}

// capabilities returns the settings of ap decoded in the configured mode.
// The client always decodes VHT elements, so HT-only decoding starts over
// from the raw elements, as does a BSS whose capabilities are unset, to
// tell absent elements from malformed ones.
func capabilities(ap *wifi.BSS, htOnly bool) (*wifi.VHTSettings, error) {
	switch {
	case htOnly:
		s, err := wifi.ParseHT(ap.IEs)
		if err != nil || s == nil {
			return nil, err
		}
		return &wifi.VHTSettings{HTSettings: *s}, nil
	case ap.Capabilities != nil || len(ap.IEs) == 0:
		return ap.Capabilities, nil
	default:
		return wifi.ParseVHT(ap.IEs)
	}
}

// accessPoints fetches the cached scan results of ifi and converts them,
// recording metrics and logging BSS whose capability elements are malformed.
func accessPoints(sc scanner, ifi *wifi.Interface, htOnly bool, log *slog.Logger) ([]schema.BSS, error) {
	aps, err := sc.AccessPoints(ifi)
	if err != nil {
		return nil, err
	}

	out := make([]schema.BSS, 0, len(aps))
	for _, ap := range aps {
		caps, err := capabilities(ap, htOnly)

		bss := *ap
		bss.Capabilities = caps
		out = append(out, schema.NewBSS(&bss))

		if err != nil {
			kind := logging.ErrKind(err)
			telemetry.ObserveError(sourceScan, kind)
			log.Warn("malformed capability elements",
				logging.BSSID(ap.BSSID), logging.SSID(ap.SSID), logging.Kind(kind), logging.Err(err))
			continue
		}

		telemetry.ObserveDecoded(sourceScan)
		if caps != nil {
			telemetry.ObserveMaxRate(ap.BSSID.String(), caps.MaxRate())
		}
	}

	return out, nil
}

type Scan struct {
	Cmd
	app *App
}

func (s Scan) Run(c *cli.Context) error {
	name := c.Args().First()
	if name == "" {
		return cli.Exit("scan: missing interface name", 2)
	}

	sc, err := newScanner()
	if err != nil {
		return err
	}
	defer sc.Close()

	ifi, err := lookupInterface(sc, name)
	if err != nil {
		return err
	}

	log := s.app.Log().With(logging.Interface(ifi)...)
	bss, err := accessPoints(sc, ifi, s.app.cfg.Decode.HTOnly, log)
	if err != nil {
		return err
	}
	s.app.store.Replace(bss)

	log.Debug("scan results", logging.Count("bss", len(bss)))
	return s.Out(c.App.Writer, bss, s.app.cfg.Output.Format, bssTmpl())
}

func (s Scan) Commands() []*cli.Command {
	return []*cli.Command{{
		Name:      "scan",
		Usage:     "Decode capabilities of the access points cached by an interface",
		ArgsUsage: "IFACE",
		Action:    s.Run,
	}}
}
