package main

import (
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/urfave/cli/v2"

	wifi "github.com/metageek-llc/ManagedWifi"
	"github.com/metageek-llc/ManagedWifi/internal/logging"
	"github.com/metageek-llc/ManagedWifi/internal/schema"
	"github.com/metageek-llc/ManagedWifi/internal/telemetry"
)

const sourceDecode = "decode"

type Decode struct {
	Cmd
	app *App
}

func (d Decode) Tmpl() string {
	return strings.Join([]string{
		`{{- if .HT }}`,
		`{{ps -12 "HT"}} 40MHz: {{pb -4 .HT.Is40MHz}} SGI20: {{pb -4 .HT.ShortGI20MHz}} SGI40: {{pb -4 .HT.ShortGI40MHz}}`,
		`{{ps -12 "primary"}} {{.HT.PrimaryChannel}}{{ if .HT.SecondaryChannelLower }} (secondary below){{ end }}`,
		`{{ps -12 "rates"}} {{ range $i, $r := .HT.Rates }}{{ if $i }} {{ end }}{{ $r }}{{ end }}`,
		`{{ps -12 "max rate"}} {{.HT.MaxRate}} Mbit/s`,
		`{{- else }}`,
		`no HT capability elements`,
		`{{- end }}`,
		`{{- if .VHT }}`,
		`{{ps -12 "VHT"}} SGI80: {{pb -4 .VHT.ShortGI80MHz}} SGI160: {{pb -4 .VHT.ShortGI160MHz}}`,
		`{{ps -12 "supported"}} {{.VHT.SupportedWidth}}`,
		`{{ps -12 "operating"}} {{.VHT.ChannelWidth}}`,
		`{{ps -12 "rx/tx"}} {{.VHT.MaxReceiveRate}}/{{.VHT.MaxTransmitRate}} Mbit/s`,
		`{{- end }}`,
		``}, "\n")
}

// parseHex accepts hex with optional whitespace, colon or dash separators.
func parseHex(args []string) ([]byte, error) {
	s := strings.Join(args, "")
	s = strings.NewReplacer(" ", "", "\t", "", "\n", "", ":", "", "-", "").Replace(s)
	s = strings.TrimPrefix(strings.ToLower(s), "0x")

	b, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("invalid information element hex: %w", err)
	}
	return b, nil
}

// Capabilities decodes b the way the configuration asks for.
func (d Decode) Capabilities(b []byte, htOnly bool) (schema.Capabilities, bool, error) {
	if htOnly {
		s, err := wifi.ParseHT(b)
		if err != nil || s == nil {
			return schema.Capabilities{}, false, err
		}
		return schema.Capabilities{HT: schema.NewHT(s)}, true, nil
	}

	s, err := wifi.ParseVHT(b)
	if err != nil || s == nil {
		return schema.Capabilities{}, false, err
	}
	return schema.NewCapabilities(s), true, nil
}

func (d Decode) Run(c *cli.Context) error {
	if c.NArg() == 0 {
		return cli.Exit("decode: missing information element hex", 2)
	}

	b, err := parseHex(c.Args().Slice())
	if err != nil {
		return err
	}

	log := d.app.Log()
	htOnly := d.app.cfg.Decode.HTOnly || c.Bool("ht-only")

	caps, found, err := d.Capabilities(b, htOnly)
	if err != nil {
		kind := logging.ErrKind(err)
		telemetry.ObserveError(sourceDecode, kind)
		log.Debug("decode failed", logging.Source(sourceDecode), logging.Err(err))
		return err
	}

	telemetry.ObserveDecoded(sourceDecode)
	if !found {
		log.Info("no HT capability elements", logging.Count("byte", len(b)))
	}

	return d.Out(c.App.Writer, caps, d.app.cfg.Output.Format, d.Tmpl())
}

func (d Decode) Commands() []*cli.Command {
	return []*cli.Command{{
		Name:      "decode",
		Aliases:   []string{"de"},
		Usage:     "Decode HT/VHT capabilities from information element hex",
		ArgsUsage: "HEX",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "ht-only",
				Usage: "decode HT elements only",
			},
		},
		Action: d.Run,
	}}
}
