// Command wifiht decodes the 802.11n (HT) and 802.11ac (VHT) capabilities
// advertised by access points, from hex dumps, pcap captures or live nl80211
// scan results.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/metageek-llc/ManagedWifi/internal/api"
	"github.com/metageek-llc/ManagedWifi/internal/config"
	"github.com/metageek-llc/ManagedWifi/internal/logging"
	"github.com/metageek-llc/ManagedWifi/internal/telemetry"
)

type App struct {
	cfg    *config.Config
	logger *logging.Logger
	store  *api.Store
	http   *api.Http
}

func (a *App) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Usage:   "YAML configuration file",
			EnvVars: []string{"WIFIHT_CONFIG"},
		},
		&cli.StringFlag{
			Name:    "format",
			Aliases: []string{"f"},
			Usage:   "output format: table, json, yaml",
			Value:   config.FormatTable,
		},
		&cli.StringFlag{
			Name:  "log-level",
			Usage: "log level: debug, info, warn, error",
			Value: "info",
		},
		&cli.StringFlag{
			Name:    "metrics-addr",
			Usage:   "serve Prometheus metrics and the BSS API on this address",
			EnvVars: []string{"WIFIHT_METRICS_ADDR"},
		},
	}
}

func (a *App) New() *cli.App {
	return &cli.App{
		Name:     "wifiht",
		Usage:    "802.11 HT/VHT capability decoder",
		Flags:    a.Flags(),
		Commands: []*cli.Command{},
		Before:   a.Before,
		After:    a.After,
	}
}

// Before loads the configuration file, applies flags given on the command
// line on top of it and sets up logging and metrics.
func (a *App) Before(c *cli.Context) error {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return err
	}

	if c.IsSet("format") {
		cfg.Output.Format = c.String("format")
	}
	if c.IsSet("log-level") {
		cfg.Logging.Level = c.String("log-level")
	}
	if c.IsSet("metrics-addr") {
		cfg.Metrics.Addr = c.String("metrics-addr")
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger, err := logging.New(&cfg.Logging, c.App.ErrWriter)
	if err != nil {
		return err
	}

	a.cfg = cfg
	a.logger = logger
	a.store = api.NewStore()

	telemetry.InitMetrics()
	if cfg.Metrics.Addr != "" {
		a.http = api.NewHttp(cfg.Metrics.Addr, cfg.Metrics.Path, a.store, a.Log())
		go func() {
			if err := a.http.Start(); err != nil {
				a.Log().Error("http server failed", logging.Err(err))
			}
		}()
	}

	return nil
}

func (a *App) After(c *cli.Context) error {
	if a.http != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := a.http.Shutdown(ctx); err != nil {
			a.Log().Warn("http server shutdown", logging.Err(err))
		}
	}
	if a.logger != nil {
		return a.logger.Close()
	}
	return nil
}

func (a *App) Log() *slog.Logger {
	return a.logger.Underlying()
}

func (a *App) Commands() []*cli.Command {
	var cmds []*cli.Command
	cmds = append(cmds, Decode{app: a}.Commands()...)
	cmds = append(cmds, Pcap{app: a}.Commands()...)
	cmds = append(cmds, Scan{app: a}.Commands()...)
	cmds = append(cmds, Watch{app: a}.Commands()...)
	return cmds
}

func newApp() *cli.App {
	a := &App{}
	app := a.New()
	app.Commands = a.Commands()
	return app
}

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "wifiht:", err)
		os.Exit(1)
	}
}
