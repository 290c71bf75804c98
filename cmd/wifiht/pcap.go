package main

import (
	"os"
	"strings"

	"github.com/urfave/cli/v2"

	wifi "github.com/metageek-llc/ManagedWifi"
	"github.com/metageek-llc/ManagedWifi/internal/logging"
	"github.com/metageek-llc/ManagedWifi/internal/schema"
	"github.com/metageek-llc/ManagedWifi/internal/telemetry"
)

const sourcePcap = "pcap"

type Pcap struct {
	Cmd
	app *App
}

// bssTmpl renders a list of schema.BSS.
func bssTmpl() string {
	return strings.Join([]string{
		`# total {{ len . }}`,
		`{{ps -17 "bssid"}} {{ps -24 "ssid"}} {{ps 4 "chan"}} {{ps 5 "dbm"}} {{ps -5 "40MHz"}} {{ps -9 "vht width"}} {{ps 8 "max rate"}}`,
		`{{- range . }}`,
		`{{ps -17 .BSSID}} {{ps -24 .SSID}} {{pi 4 .Channel}} {{pi 5 .Signal}} {{ if .HT }}{{pb -5 .HT.Is40MHz}}{{ else }}{{ps -5 "-"}}{{ end }} {{ if .VHT }}{{ps -9 .VHT.ChannelWidth}}{{ else }}{{ps -9 "-"}}{{ end }} {{ if .HT }}{{pf 8 .HT.MaxRate}}{{ else }}{{ps 8 "-"}}{{ end }}`,
		`{{- end }}`,
		``}, "\n")
}

// frames collects decoded frames, keeping only the last one per BSSID
// unless all is set.
type frames struct {
	all   bool
	order []string
	last  map[string]schema.BSS
	list  []schema.BSS
}

func (f *frames) add(b schema.BSS) {
	if f.all {
		f.list = append(f.list, b)
		return
	}
	if _, ok := f.last[b.BSSID]; !ok {
		f.order = append(f.order, b.BSSID)
	}
	f.last[b.BSSID] = b
}

func (f *frames) result() []schema.BSS {
	if f.all {
		return f.list
	}
	out := make([]schema.BSS, 0, len(f.order))
	for _, id := range f.order {
		out = append(out, f.last[id])
	}
	return out
}

func (p Pcap) Run(c *cli.Context) error {
	if c.NArg() != 1 {
		return cli.Exit("pcap: expected one capture file", 2)
	}

	fd, err := os.Open(c.Args().First())
	if err != nil {
		return err
	}
	defer fd.Close()

	log := p.app.Log().With(logging.Source(sourcePcap), logging.File(fd.Name()))
	mode := wifi.DecodeVHT
	if p.app.cfg.Decode.HTOnly {
		mode = wifi.DecodeHT
	}

	var (
		n       int
		skipped int
	)
	fs := &frames{all: c.Bool("all"), last: make(map[string]schema.BSS)}

	err = wifi.ReadCapture(fd, mode, func(f *wifi.Frame) error {
		n++
		telemetry.ObserveDecoded(sourcePcap)
		if f.Capabilities != nil {
			telemetry.ObserveMaxRate(f.BSSID.String(), f.Capabilities.MaxRate())
		}

		fs.add(schema.NewFrame(f))
		return nil
	}, func(err error) error {
		skipped++
		kind := logging.ErrKind(err)
		telemetry.ObserveError(sourcePcap, kind)
		log.Warn("skipping frame", logging.Kind(kind), logging.Err(err))
		return nil
	})
	if err != nil {
		return err
	}

	log.Info("capture decoded", logging.Count("frame", n), logging.Count("skipped", skipped))
	return p.Out(c.App.Writer, fs.result(), p.app.cfg.Output.Format, bssTmpl())
}

func (p Pcap) Commands() []*cli.Command {
	return []*cli.Command{{
		Name:      "pcap",
		Usage:     "Decode beacons and probe responses from a pcap capture",
		ArgsUsage: "FILE",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "all",
				Usage: "print every frame instead of the last one per BSSID",
			},
		},
		Action: p.Run,
	}}
}
