package main

import (
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/urfave/cli/v2"

	wifi "github.com/metageek-llc/ManagedWifi"
	"github.com/metageek-llc/ManagedWifi/internal/logging"
	"github.com/metageek-llc/ManagedWifi/internal/schema"
	"github.com/metageek-llc/ManagedWifi/internal/telemetry"
)

type Watch struct {
	Cmd
	app *App
}

// changed reports whether a BSS advertises different capabilities than in
// the previous poll.
func changed(prev, next schema.BSS) bool {
	if (prev.HT == nil) != (next.HT == nil) || (prev.VHT == nil) != (next.VHT == nil) {
		return true
	}
	if prev.HT != nil && (prev.HT.Is40MHz != next.HT.Is40MHz || prev.HT.MaxRate != next.HT.MaxRate) {
		return true
	}
	if prev.VHT != nil && prev.VHT.ChannelWidth != next.VHT.ChannelWidth {
		return true
	}
	return prev.Channel != next.Channel
}

func (w Watch) Run(c *cli.Context) error {
	cfg := w.app.cfg
	name := c.Args().First()
	if name == "" {
		name = cfg.Watch.Interface
	}
	if name == "" {
		return cli.Exit("watch: missing interface name", 2)
	}

	interval := cfg.Watch.Interval
	if c.IsSet("interval") {
		interval = c.Duration("interval")
	}
	if interval <= 0 {
		return cli.Exit("watch: interval must be positive", 2)
	}

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	sc, err := newScanner()
	if err != nil {
		return err
	}
	defer sc.Close()

	ifi, err := lookupInterface(sc, name)
	if err != nil {
		return err
	}

	log := w.app.Log().With(logging.Interface(ifi)...)
	log.Info("watching scan results", logging.Duration("interval", interval))

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	limit := c.Int("count")
	for n := 1; ; n++ {
		if err := w.poll(sc, ifi, log); err != nil {
			return err
		}
		if limit > 0 && n >= limit {
			break
		}

		select {
		case <-ctx.Done():
			log.Info("stopped watching")
		case <-ticker.C:
			continue
		}
		break
	}

	return w.Out(c.App.Writer, w.app.store.List(), cfg.Output.Format, bssTmpl())
}

// poll refreshes the stored scan results and logs BSS that appeared,
// changed or disappeared since the previous poll.
func (w Watch) poll(sc scanner, ifi *wifi.Interface, log *slog.Logger) error {
	bss, err := accessPoints(sc, ifi, w.app.cfg.Decode.HTOnly, log)
	if err != nil {
		return err
	}

	for _, b := range bss {
		prev, ok := w.app.store.Get(b.BSSID)
		switch {
		case !ok:
			log.Info("new BSS", slog.String("bssid", b.BSSID), logging.SSID(b.SSID))
		case changed(prev, b):
			log.Info("BSS capabilities changed", slog.String("bssid", b.BSSID), logging.SSID(b.SSID))
		}
	}

	for _, id := range w.app.store.Replace(bss) {
		telemetry.ForgetBSS(id)
		log.Info("BSS gone", slog.String("bssid", id))
	}

	log.Debug("poll complete", logging.Count("bss", len(bss)))
	return nil
}

func (w Watch) Commands() []*cli.Command {
	return []*cli.Command{{
		Name:      "watch",
		Usage:     "Poll the scan results of an interface and export them as metrics",
		ArgsUsage: "[IFACE]",
		Flags: []cli.Flag{
			&cli.DurationFlag{
				Name:    "interval",
				Aliases: []string{"i"},
				Usage:   "time between polls",
			},
			&cli.IntFlag{
				Name:  "count",
				Usage: "stop after this many polls, 0 for no limit",
			},
		},
		Action: w.Run,
	}}
}
