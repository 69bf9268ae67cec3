// Package connection snapshots a device's four terminals — the nets they
// land on, those nets' virtual-net roots, and the Power records attached to
// them — for one or all three interpretations at once. This is the unit the
// propagator and error checker actually reason about.
package connection

import (
	"github.com/cvcgo/cvc/pkg/circuit"
	"github.com/cvcgo/cvc/pkg/ids"
	"github.com/cvcgo/cvc/pkg/power"
)

// Terminal names the four roles a net can play on a device.
type Terminal int

const (
	Source Terminal = iota
	Gate
	Drain
	Bulk
	numTerminals
)

// TerminalMask selects a subset of terminals for a validity check, mirroring
// original_source/src/CConnection.hh's GATE|SOURCE|DRAIN|BULK bitmask.
type TerminalMask int

const (
	MaskSource TerminalMask = 1 << Source
	MaskGate   TerminalMask = 1 << Gate
	MaskDrain  TerminalMask = 1 << Drain
	MaskBulk   TerminalMask = 1 << Bulk
	MaskAll    TerminalMask = MaskSource | MaskGate | MaskDrain | MaskBulk
)

// Connection is a single-interpretation snapshot of one device's terminals
// (original_source/CConnection.hh: CConnection).
type Connection struct {
	Net  [numTerminals]ids.NetId
	Root [numTerminals]ids.NetId
	RootResistance [numTerminals]ids.Resistance
	Voltage [numTerminals]ids.Voltage
	Power   [numTerminals]*power.Power

	Device     *circuit.Device
	DeviceId   ids.DeviceId
	Resistance ids.Resistance
}

// IsUnknownVoltage reports whether term's voltage is undetermined and the
// net isn't pinned Hi-Z (which is a deliberately-unknown, not a
// not-yet-computed, voltage).
func (c *Connection) IsUnknownVoltage(term Terminal) bool {
	v := c.Voltage[term]
	p := c.Power[term]
	return !v.IsKnown() && !(p != nil && p.HasType(power.HizBit))
}

// TerminalSet is one interpretation's worth of a FullConnection's terminal
// data (original_source/CConnection.hh's min*/max*/sim* field groups,
// collapsed into one struct indexed by power.Interpretation).
type TerminalSet struct {
	Voltage     [numTerminals]ids.Voltage
	LeakVoltage [numTerminals]ids.Voltage
	Power       [numTerminals]*power.Power
	Root        [numTerminals]ids.NetId
	RootResistance [numTerminals]ids.Resistance
}

func (t *TerminalSet) isValid(term Terminal, checkHiZ bool) bool {
	v := t.Voltage[term]
	p := t.Power[term]
	if !v.IsKnown() {
		return false
	}
	if !checkHiZ && p != nil && p.HasType(power.HizBit) {
		return false
	}
	return true
}

// FullConnection is a three-interpretation (Min/Sim/Max) snapshot of one
// device's terminals, plus the original (pre-equivalence-fold) net ids
// (original_source/CConnection.hh: CFullConnection).
type FullConnection struct {
	OriginalNet [numTerminals]ids.NetId
	Net         [numTerminals]ids.NetId

	Terminals [3]TerminalSet // indexed by power.Min, power.Sim, power.Max

	Device     *circuit.Device
	DeviceId   ids.DeviceId
	Resistance ids.Resistance
}

// Term returns the terminal set for interpretation which.
func (f *FullConnection) Term(which power.Interpretation) *TerminalSet {
	return &f.Terminals[which]
}

// CheckTerminalMinMaxVoltages reports whether every masked terminal has both
// a known Min and Max voltage with Min <= Max (and, unless checkHiZ is
// false, tolerates Hi-Z terminals as "known") — the device-skip guard used
// throughout the error checker (original_source/CConnection.cc
// CheckTerminalMinMaxVoltages).
func (f *FullConnection) CheckTerminalMinMaxVoltages(mask TerminalMask, checkHiZ bool) bool {
	minT, maxT := &f.Terminals[power.Min], &f.Terminals[power.Max]
	for term := Source; term < numTerminals; term++ {
		if mask&(1<<term) == 0 {
			continue
		}
		if !minT.Voltage[term].IsKnown() || !maxT.Voltage[term].IsKnown() {
			return false
		}
		if minT.Voltage[term] > maxT.Voltage[term] {
			return false
		}
		if !checkHiZ {
			if p := minT.Power[term]; p != nil && p.HasType(power.HizBit) {
				return false
			}
			if p := maxT.Power[term]; p != nil && p.HasType(power.HizBit) {
				return false
			}
		}
	}
	return true
}

// CheckTerminalVoltages reports whether every masked terminal has a known
// voltage (ignoring Hi-Z) under a single interpretation.
func (f *FullConnection) CheckTerminalVoltages(which power.Interpretation, mask TerminalMask) bool {
	t := &f.Terminals[which]
	for term := Source; term < numTerminals; term++ {
		if mask&(1<<term) == 0 {
			continue
		}
		if !t.isValid(term, false) {
			return false
		}
	}
	return true
}

// SetUnknownVoltageToSim fills in any still-unknown Min/Max terminal voltage
// from the Sim pass's value — used once Sim has run and Min/Max are being
// finalized for devices Sim could resolve but Min/Max left ambiguous
// (original_source/CConnection.cc SetUnknownVoltageToSim).
func (f *FullConnection) SetUnknownVoltageToSim() {
	sim := &f.Terminals[power.Sim]
	for _, t := range []power.Interpretation{power.Min, power.Max} {
		dst := &f.Terminals[t]
		for term := Source; term < numTerminals; term++ {
			if sim.Voltage[term].IsKnown() && !dst.Voltage[term].IsKnown() {
				dst.Voltage[term] = sim.Voltage[term]
			}
		}
	}
}

// EstimatedCurrent returns a coarse current estimate in volts/ohm terms
// (I = dV / R) between source and drain under Min/Max, used only to rank
// leak findings by severity, not as a simulation result
// (original_source/CConnection.cc EstimatedCurrent).
func (f *FullConnection) EstimatedCurrent() float64 {
	minT, maxT := &f.Terminals[power.Min], &f.Terminals[power.Max]
	if !minT.Voltage[Source].IsKnown() || !maxT.Voltage[Drain].IsKnown() {
		return 0
	}
	if f.Resistance == 0 || f.Resistance == ids.InfiniteResistance {
		return 0
	}
	dv := maxT.Voltage[Drain].Volts() - minT.Voltage[Source].Volts()
	if dv < 0 {
		dv = -dv
	}
	return dv / float64(f.Resistance)
}

// possibleHiZCheckLimit bounds how many source/drain terminals a gate net
// may have and still be worth walking for a possible-Hi-Z determination
// (original_source/CConnection.cc IsPossibleHiZ "myCheckLimit").
const possibleHiZCheckLimit = 10

// IsPossibleHiZ reports whether this device's gate net looks like it is
// driven by a transfer gate or clocked inverter rather than a solid driver —
// a simplified form of original_source/CConnection.cc's IsPossibleHiZ: it
// checks that the gate net is fed by exactly one NMOS and one PMOS
// source/drain terminal and nothing else, without walking the original's
// full clocked-inverter chain.
func (f *FullConnection) IsPossibleHiZ(c *circuit.Circuit) bool {
	gateNet := f.Net[Gate]
	n := c.Net(gateNet)
	if n == nil {
		return false
	}
	if n.ConnectionCount.SourceDrainCount() > possibleHiZCheckLimit {
		return false
	}
	if p := f.Terminals[power.Max].Power[Gate]; p != nil && p.HasType(power.InputBit) {
		return false
	}
	var nmos, pmos int
	for _, d := range c.Devices {
		if d.Source != gateNet && d.Drain != gateNet {
			continue
		}
		switch {
		case d.Model.IsNmosLike():
			nmos++
		case d.Model.IsPmosLike():
			pmos++
		default:
			return false
		}
	}
	return nmos == 1 && pmos == 1
}

// IsPumpCapacitor reports whether this device is a capacitor whose source
// and drain are on different nets (i.e. used as a charge-pump coupling cap
// rather than a simple decoupling cap), per
// original_source/CConnection.cc IsPumpCapacitor.
func (f *FullConnection) IsPumpCapacitor() bool {
	return f.Device != nil && f.Device.Model == ids.CAPACITOR && f.Net[Source] != f.Net[Drain]
}
