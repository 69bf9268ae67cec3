// Package errcheck runs the post-propagation sweeps over a fully-settled
// circuit's devices and powers, producing Findings. Grounded on
// original_source/src/CCvcDb_error.cc, one FindXxxErrors function there per
// sweep here. `github.com/pkg/errors` is deliberately NOT used in this
// package — these are recoverable, data-carrying findings, not Go errors,
// matching the propagation layer's own local-recovery model.
package errcheck

import (
	"github.com/cvcgo/cvc/internal/consts"
	"github.com/cvcgo/cvc/pkg/circuit"
	"github.com/cvcgo/cvc/pkg/connection"
	"github.com/cvcgo/cvc/pkg/ids"
	"github.com/cvcgo/cvc/pkg/modelfile"
	"github.com/cvcgo/cvc/pkg/power"
)

// Kind names one reported error code.
type Kind string

const (
	FuseError           Kind = "FUSE_ERROR"
	MinVoltageConflict  Kind = "MIN_VOLTAGE_CONFLICT"
	MaxVoltageConflict  Kind = "MAX_VOLTAGE_CONFLICT"
	ExpectedVoltage     Kind = "EXPECTED_VOLTAGE"
	Leak                Kind = "LEAK"
	HizInput            Kind = "HIZ_INPUT"
	ForwardDiode        Kind = "FORWARD_DIODE"
	NmosSourceBulk      Kind = "NMOS_SOURCE_BULK"
	PmosSourceBulk      Kind = "PMOS_SOURCE_BULK"
	NmosGateSource      Kind = "NMOS_GATE_SOURCE"
	PmosGateSource      Kind = "PMOS_GATE_SOURCE"
	NmosPossibleLeak    Kind = "NMOS_POSSIBLE_LEAK"
	PmosPossibleLeak    Kind = "PMOS_POSSIBLE_LEAK"
	OvervoltageVbg      Kind = "OVERVOLTAGE_VBG"
	OvervoltageVbs      Kind = "OVERVOLTAGE_VBS"
	OvervoltageVds      Kind = "OVERVOLTAGE_VDS"
	OvervoltageVgs      Kind = "OVERVOLTAGE_VGS"
	LddSource           Kind = "LDD_SOURCE"
	ModelCheck          Kind = "MODEL_CHECK"
	GateLogicCheck      Kind = "GATE_LOGIC_CHECK"
	ChainOverflow       Kind = "CHAIN_OVERFLOW"
)

// Finding is one reported violation, carrying enough of the device's
// terminal state for pkg/report to render its per-finding block format.
type Finding struct {
	Kind    Kind
	Device  *circuit.Device
	Message string

	// Conn is the full terminal snapshot at the time of the finding, for
	// the G:/S:/D:/B: and Min:/Sim:/Max: report lines. Nil for findings
	// recorded without a snapshot: those from AbsorbPropagatorFindings and
	// from CheckExpectedValues.
	Conn *connection.FullConnection
}

// Options carries the CLI-tunable thresholds and feature gates governing
// which sweeps run and how strict they are.
type Options struct {
	GateErrorThreshold   ids.Voltage
	ForwardErrorThreshold ids.Voltage
	OvervoltageThreshold ids.Voltage
	BiasErrorThreshold   ids.Voltage
	ErrorLimit           int // per (device, kind)
	CircuitErrorLimit    int // per kind, circuit-wide; 0 = unlimited

	CvcVthGates    bool
	CvcAnalogGates bool
	CvcLogicDiodes bool
}

// DefaultOptions mirrors the original's built-in defaults
// (original_source/src/CCvcParameters.cc).
func DefaultOptions() Options {
	return Options{
		GateErrorThreshold:    ids.FromVolts(consts.DefaultGateErrorThreshold),
		ForwardErrorThreshold: ids.FromVolts(consts.DefaultForwardErrorThreshold),
		OvervoltageThreshold:  ids.FromVolts(consts.DefaultOvervoltageThreshold),
		BiasErrorThreshold:    ids.FromVolts(consts.DefaultBiasErrorThreshold),
		ErrorLimit:            consts.DefaultErrorLimit,
		CircuitErrorLimit:     consts.DefaultCircuitErrorLimit,
	}
}

// Checker accumulates Findings across one circuit's sweeps, applying
// per-device/per-kind and per-circuit/per-kind report limits so one bad
// device or one pervasive pattern can't flood the report.
type Checker struct {
	Circuit *circuit.Circuit
	Powers  *power.Table
	Models  *modelfile.Table
	Opts    Options

	findings   []Finding
	deviceHits map[ids.DeviceId]map[Kind]int
	kindHits   map[Kind]int
}

// New builds a Checker over c/powers/models with opts.
func New(c *circuit.Circuit, powers *power.Table, models *modelfile.Table, opts Options) *Checker {
	return &Checker{
		Circuit:    c,
		Powers:     powers,
		Models:     models,
		Opts:       opts,
		deviceHits: make(map[ids.DeviceId]map[Kind]int),
		kindHits:   make(map[Kind]int),
	}
}

// Findings returns every finding recorded so far.
func (ck *Checker) Findings() []Finding { return ck.findings }

// report records one finding unless the per-device or per-circuit limit for
// kind has already been reached.
func (ck *Checker) report(kind Kind, d *circuit.Device, conn *connection.FullConnection, message string) {
	if ck.Opts.CircuitErrorLimit > 0 && ck.kindHits[kind] >= ck.Opts.CircuitErrorLimit {
		return
	}
	if d != nil {
		hits := ck.deviceHits[d.Id]
		if hits == nil {
			hits = make(map[Kind]int)
			ck.deviceHits[d.Id] = hits
		}
		if ck.Opts.ErrorLimit > 0 && hits[kind] >= ck.Opts.ErrorLimit {
			return
		}
		hits[kind]++
	}
	ck.kindHits[kind]++
	ck.findings = append(ck.findings, Finding{Kind: kind, Device: d, Conn: conn, Message: message})
}

// model resolves d's model record, or nil if the device carries no
// modelName (e.g. a synthetic fold artifact).
func (ck *Checker) model(d *circuit.Device) *modelfile.Model {
	if d.ModelName == "" {
		return nil
	}
	return ck.Models.Get(d.ModelName)
}
