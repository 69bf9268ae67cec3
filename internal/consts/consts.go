// Package consts centralizes the checker's default thresholds and limits
// so errcheck.DefaultOptions and cmd/cvc's flag defaults
// can't drift apart.
package consts

const (
	DefaultGateErrorThreshold    = 0.1 // volts
	DefaultForwardErrorThreshold = 0.1 // volts
	DefaultOvervoltageThreshold  = 0.0 // volts
	DefaultBiasErrorThreshold    = 0.0 // volts

	DefaultErrorLimit        = 50 // per device, per error kind
	DefaultCircuitErrorLimit = 50 // per circuit, per error kind

	// MaxPropagationSteps caps dequeues in one Propagator.Run pass. A
	// netlist needing more hops than this to settle is treated as a
	// malformed chain (e.g. a misparsed bulk tying every device
	// together) rather than run to exhaustion.
	MaxPropagationSteps = 5000
)
