package main

import (
	"fmt"
	"os"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/urfave/cli/v2"

	"github.com/cvcgo/cvc/internal/consts"
	"github.com/cvcgo/cvc/pkg/circuit"
	"github.com/cvcgo/cvc/pkg/errcheck"
	"github.com/cvcgo/cvc/pkg/ids"
	"github.com/cvcgo/cvc/pkg/modelfile"
	"github.com/cvcgo/cvc/pkg/netlist"
	"github.com/cvcgo/cvc/pkg/power"
	"github.com/cvcgo/cvc/pkg/powerfile"
	"github.com/cvcgo/cvc/pkg/propagator"
	"github.com/cvcgo/cvc/pkg/report"
)

// version is set at build time via -ldflags.
var version = "dev"

func main() {
	app := &cli.App{
		Name:  "cvc",
		Usage: "static electrical rule checker for flat transistor-level netlists",
		Commands: []*cli.Command{
			checkCommand,
			versionCommand,
		},
	}
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var versionCommand = &cli.Command{
	Name:  "version",
	Usage: "print build info",
	Action: func(ctx *cli.Context) error {
		fmt.Println("cvc", version)
		return nil
	},
}

var checkCommand = &cli.Command{
	Name:  "check",
	Usage: "run the full verification pipeline and write the error report",
	Flags: []cli.Flag{
		&cli.StringFlag{Name: "netlist", Required: true, Usage: "netlist file", EnvVars: []string{"CVC_NETLIST"}},
		&cli.StringFlag{Name: "models", Required: true, Usage: "model file", EnvVars: []string{"CVC_MODELS"}},
		&cli.StringFlag{Name: "power", Required: true, Usage: "power file", EnvVars: []string{"CVC_POWER"}},
		&cli.StringFlag{Name: "report", Usage: "report output file; stdout if omitted", EnvVars: []string{"CVC_REPORT"}},
		&cli.Float64Flag{Name: "gate-error-threshold", Value: consts.DefaultGateErrorThreshold, EnvVars: []string{"CVC_GATE_ERROR_THRESHOLD"}},
		&cli.Float64Flag{Name: "forward-error-threshold", Value: consts.DefaultForwardErrorThreshold, EnvVars: []string{"CVC_FORWARD_ERROR_THRESHOLD"}},
		&cli.Float64Flag{Name: "overvoltage-threshold", Value: consts.DefaultOvervoltageThreshold, EnvVars: []string{"CVC_OVERVOLTAGE_THRESHOLD"}},
		&cli.IntFlag{Name: "error-limit", Value: consts.DefaultErrorLimit, Usage: "per-device, per-kind cap", EnvVars: []string{"CVC_ERROR_LIMIT"}},
		&cli.IntFlag{Name: "circuit-error-limit", Value: consts.DefaultCircuitErrorLimit, Usage: "per-circuit, per-kind cap", EnvVars: []string{"CVC_CIRCUIT_ERROR_LIMIT"}},
		&cli.BoolFlag{Name: "permit-undefined-macros", EnvVars: []string{"CVC_PERMIT_UNDEFINED_MACROS"}},
		&cli.BoolFlag{Name: "cvc-vth-gates", EnvVars: []string{"CVC_VTH_GATES"}},
		&cli.BoolFlag{Name: "cvc-analog-gates", EnvVars: []string{"CVC_ANALOG_GATES"}},
		&cli.BoolFlag{Name: "cvc-logic-diodes", EnvVars: []string{"CVC_LOGIC_DIODES"}},
		&cli.BoolFlag{Name: "verbose", Aliases: []string{"v"}, Usage: "log one event per dequeued device", EnvVars: []string{"CVC_VERBOSE"}},
	},
	Action: runCheck,
}

func runCheck(ctx *cli.Context) error {
	log := newLogger(ctx.Bool("verbose"))

	models, err := loadModels(ctx.String("models"))
	if err != nil {
		return err
	}
	c, err := loadNetlist(ctx.String("netlist"), models)
	if err != nil {
		return err
	}
	powers := power.NewTable()
	if err := loadPower(ctx.String("power"), c, powers, models, ctx.Bool("permit-undefined-macros")); err != nil {
		return err
	}

	c.FoldAlwaysOnSwitches()
	c.AnnotateInverters()
	c.AnnotateLatches()

	p := propagator.New(c, powers, models, log)
	p.RunAll()

	opts := errcheck.Options{
		GateErrorThreshold:    ids.FromVolts(ctx.Float64("gate-error-threshold")),
		ForwardErrorThreshold: ids.FromVolts(ctx.Float64("forward-error-threshold")),
		OvervoltageThreshold:  ids.FromVolts(ctx.Float64("overvoltage-threshold")),
		BiasErrorThreshold:    ids.FromVolts(consts.DefaultBiasErrorThreshold),
		ErrorLimit:            ctx.Int("error-limit"),
		CircuitErrorLimit:     ctx.Int("circuit-error-limit"),
		CvcVthGates:           ctx.Bool("cvc-vth-gates"),
		CvcAnalogGates:        ctx.Bool("cvc-analog-gates"),
		CvcLogicDiodes:        ctx.Bool("cvc-logic-diodes"),
	}
	log.Info().Msg("error check")
	ck := errcheck.New(c, powers, models, opts)
	findings := ck.RunAll(p)

	out := os.Stdout
	if path := ctx.String("report"); path != "" {
		f, err := os.Create(path)
		if err != nil {
			return err
		}
		defer f.Close()
		out = f
	}
	if err := report.Write(out, c, findings); err != nil {
		return err
	}
	if len(findings) > 0 {
		os.Exit(1)
	}
	return nil
}

func loadModels(path string) (*modelfile.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "opening model file %s", path)
	}
	defer f.Close()
	tbl, err := modelfile.Parse(f)
	if err != nil {
		return nil, errors.Wrapf(err, "parsing model file %s", path)
	}
	return tbl, nil
}

func loadNetlist(path string, models *modelfile.Table) (*circuit.Circuit, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "opening netlist %s", path)
	}
	defer f.Close()
	c, err := netlist.Parse(f, "top", models)
	if err != nil {
		return nil, errors.Wrapf(err, "parsing netlist %s", path)
	}
	return c, nil
}

func loadPower(path string, c *circuit.Circuit, tbl *power.Table, models *modelfile.Table, permitUndefined bool) error {
	f, err := os.Open(path)
	if err != nil {
		return errors.Wrapf(err, "opening power file %s", path)
	}
	defer f.Close()
	if err := powerfile.Parse(f, c, tbl, models, powerfile.Options{PermitUndefinedMacros: permitUndefined}); err != nil {
		return errors.Wrapf(err, "parsing power file %s", path)
	}
	return nil
}

func newLogger(verbose bool) zerolog.Logger {
	level := zerolog.InfoLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).Level(level).With().Timestamp().Logger()
}
