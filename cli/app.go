// Package cli implements the sensors command line tool.
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"runtime/debug"
	"sort"
	"strings"

	"github.com/edaniels/golog"
	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
	goutils "go.viam.com/utils"

	"go.hostsense.dev/hostsense/collect"
	"go.hostsense.dev/hostsense/config"
	"go.hostsense.dev/hostsense/record"
	"go.hostsense.dev/hostsense/registry"
	"go.hostsense.dev/hostsense/sensor"
	"go.hostsense.dev/hostsense/web"
)

const (
	flagConfig  = "config"
	flagDebug   = "debug"
	flagEnvFile = "env-file"
	flagFormat  = "format"
	flagAddress = "address"

	formatPlain = "plain"
	formatTable = "table"
	formatJSON  = "json"

	// exitBadSensor is returned when a requested sensor model does not exist.
	exitBadSensor = 17
)

// NewApp builds the sensors CLI app.
func NewApp() *cli.App {
	var logger golog.Logger

	return &cli.App{
		Name:            "sensors",
		Usage:           "inspect, serve, and record host sensor readings",
		HideHelpCommand: true,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    flagConfig,
				Aliases: []string{"c"},
				Usage:   "load sensor configuration from `FILE`",
			},
			&cli.BoolFlag{
				Name:    flagDebug,
				Aliases: []string{"vvv"},
				Usage:   "enable debug logging",
			},
			&cli.StringFlag{
				Name:  flagEnvFile,
				Usage: "load environment variables from `FILE` before reading config",
			},
			&cli.StringFlag{
				Name:    flagFormat,
				Aliases: []string{"f"},
				Value:   formatPlain,
				Usage:   "output format: plain, table, or json",
			},
		},
		Before: func(c *cli.Context) error {
			if c.Bool(flagDebug) {
				logger = golog.NewDebugLogger("sensors")
			} else {
				logger = zap.NewNop().Sugar()
			}

			if envFile := c.String(flagEnvFile); envFile != "" {
				if err := godotenv.Load(envFile); err != nil {
					return errors.Wrapf(err, "cannot load env file %q", envFile)
				}
			} else if err := godotenv.Load(); err == nil {
				logger.Debugw("loaded .env file")
			}
			return nil
		},
		Action: func(c *cli.Context) error {
			return showSensors(c, logger)
		},
		Commands: []*cli.Command{
			{
				Name:      "show",
				Usage:     "collect readings and print them",
				ArgsUsage: "[sensor name ...]",
				Action: func(c *cli.Context) error {
					return showSensors(c, logger)
				},
			},
			{
				Name:      "develop",
				Usage:     "build a single sensor model without a config and print its reading",
				ArgsUsage: "<model>",
				Action: func(c *cli.Context) error {
					return developSensor(c, logger)
				},
			},
			{
				Name:  "serve",
				Usage: "serve sensor readings over HTTP until interrupted",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:        flagAddress,
						Aliases:     []string{"a"},
						Usage:       "address to listen on",
						DefaultText: web.DefaultBindAddress,
					},
				},
				Action: func(c *cli.Context) error {
					return serveSensors(c, logger)
				},
			},
			{
				Name:  "record",
				Usage: "record readings to the configured sinks on a schedule until interrupted",
				Action: func(c *cli.Context) error {
					return recordSensors(c, logger)
				},
			},
			{
				Name:   "version",
				Usage:  "print version info for this program",
				Action: versionAction,
			},
		},
	}
}

func loadConfig(c *cli.Context) (*config.Config, error) {
	if path := c.String(flagConfig); path != "" {
		return config.Read(path)
	}
	return config.Default(), nil
}

func buildRegistry(c *cli.Context, logger golog.Logger) (*config.Config, *registry.Registry, error) {
	cfg, err := loadConfig(c)
	if err != nil {
		return nil, nil, err
	}
	reg, err := registry.Build(c.Context, cfg.Sensors, logger)
	if err != nil {
		return nil, nil, err
	}
	if reg.Len() == 0 {
		return nil, nil, errors.New("no sensors registered; check the configuration")
	}
	return cfg, reg, nil
}

func showSensors(c *cli.Context, logger golog.Logger) error {
	_, reg, err := buildRegistry(c, logger)
	if err != nil {
		return err
	}
	collector := collect.New(reg, logger)

	var readings []sensor.Reading
	if c.Args().Present() {
		readings, err = collector.CollectNamed(c.Context, c.Args().Slice())
		if err != nil {
			return err
		}
	} else {
		readings = collector.Collect(c.Context)
	}
	return renderReadings(c, readings)
}

func developSensor(c *cli.Context, logger golog.Logger) error {
	model := c.Args().First()
	if model == "" {
		return errors.New("need a sensor model name")
	}
	if registry.SensorModelLookup(model) == nil {
		registered := registry.RegisteredSensorModels()
		models := make([]string, 0, len(registered))
		for name := range registered {
			models = append(models, name)
		}
		sort.Strings(models)
		return cli.Exit(
			fmt.Sprintf("unknown sensor model %q (available: %s)", model, strings.Join(models, ", ")),
			exitBadSensor,
		)
	}

	reg, err := registry.Build(c.Context, []config.Sensor{{Model: model}}, logger)
	if err != nil {
		return err
	}
	return renderReadings(c, collect.New(reg, logger).Collect(c.Context))
}

func serveSensors(c *cli.Context, logger golog.Logger) error {
	cfg, reg, err := buildRegistry(c, logger)
	if err != nil {
		return err
	}

	var options web.Options
	if cfg.Web != nil {
		options.BindAddress = cfg.Web.BindAddress
		options.Pprof = cfg.Web.Pprof
	}
	if address := c.String(flagAddress); address != "" {
		options.BindAddress = address
	}
	return web.RunServer(c.Context, reg, options, logger)
}

func recordSensors(c *cli.Context, logger golog.Logger) error {
	cfg, reg, err := buildRegistry(c, logger)
	if err != nil {
		return err
	}
	if cfg.Record == nil {
		return errors.New(`config has no "record" section`)
	}

	svc, err := record.New(c.Context, cfg.Record, collect.New(reg, logger), logger)
	if err != nil {
		return err
	}
	defer goutils.UncheckedErrorFunc(func() error {
		return svc.Close(context.Background())
	})

	if err := svc.Start(c.Context, cfg.Record.Schedule); err != nil {
		return err
	}
	svc.CaptureNow(c.Context)

	<-c.Context.Done()
	return nil
}

func versionAction(c *cli.Context) error {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return errors.New("error reading build info")
	}
	if c.Bool(flagDebug) {
		fmt.Fprintf(c.App.Writer, "%s\n", info.String())
	}
	settings := make(map[string]string, len(info.Settings))
	for _, setting := range info.Settings {
		settings[setting.Key] = setting.Value
	}
	version := "(dev)"
	if rev, ok := settings["vcs.revision"]; ok {
		if len(rev) > 8 {
			rev = rev[:8]
		}
		version = rev
		if settings["vcs.modified"] == "true" {
			version += "+"
		}
	}
	fmt.Fprintf(c.App.Writer, "%s version %s (%s)\n", c.App.Name, version, info.GoVersion)
	return nil
}

func renderReadings(c *cli.Context, readings []sensor.Reading) error {
	switch format := c.String(flagFormat); format {
	case formatPlain, "":
		renderPlain(c.App.Writer, readings)
		return nil
	case formatTable:
		fmt.Fprintln(c.App.Writer, renderTable(readings))
		return nil
	case formatJSON:
		encoder := json.NewEncoder(c.App.Writer)
		encoder.SetIndent("", "  ")
		return encoder.Encode(readings)
	default:
		return errors.Errorf("unknown format %q (want plain, table, or json)", format)
	}
}

func renderPlain(w io.Writer, readings []sensor.Reading) {
	title := color.New(color.Bold)
	failure := color.New(color.FgRed)
	for _, reading := range readings {
		fmt.Fprintln(w, title.Sprint(reading.Name))
		if reading.Failed() {
			fmt.Fprintln(w, failure.Sprintf("unavailable: %s", reading.Error))
		} else {
			fmt.Fprintln(w, reading.Display)
		}
		fmt.Fprintln(w)
	}
}

func renderTable(readings []sensor.Reading) string {
	t := table.NewWriter()
	t.AppendHeader(table.Row{"Sensor", "Value", "Unit", "Error"})
	for _, reading := range readings {
		t.AppendRow(table.Row{reading.Name, reading.Display, reading.Unit, reading.Error})
	}
	return t.Render()
}
