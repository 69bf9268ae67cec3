package connection

import (
	"testing"

	"github.com/cvcgo/cvc/pkg/circuit"
	"github.com/cvcgo/cvc/pkg/ids"
	"github.com/cvcgo/cvc/pkg/power"
	"github.com/stretchr/testify/assert"
)

func TestCheckTerminalMinMaxVoltagesRequiresBothKnown(t *testing.T) {
	var f FullConnection
	f.Terminals[power.Min].Voltage[Source] = 1000
	// Max left unknown.
	assert.False(t, f.CheckTerminalMinMaxVoltages(MaskSource, true))

	f.Terminals[power.Max].Voltage[Source] = 1500
	assert.True(t, f.CheckTerminalMinMaxVoltages(MaskSource, true))
}

func TestCheckTerminalMinMaxVoltagesRejectsInverted(t *testing.T) {
	var f FullConnection
	f.Terminals[power.Min].Voltage[Drain] = 2000
	f.Terminals[power.Max].Voltage[Drain] = 1000
	assert.False(t, f.CheckTerminalMinMaxVoltages(MaskDrain, true))
}

func TestCheckTerminalMinMaxVoltagesHonorsHiZFlag(t *testing.T) {
	var f FullConnection
	hiz := power.New(0, "FLOAT")
	hiz.SetType(power.HizBit)
	f.Terminals[power.Min].Voltage[Gate] = 1000
	f.Terminals[power.Max].Voltage[Gate] = 1000
	f.Terminals[power.Min].Power[Gate] = hiz

	assert.True(t, f.CheckTerminalMinMaxVoltages(MaskGate, true))
	assert.False(t, f.CheckTerminalMinMaxVoltages(MaskGate, false))
}

func TestSetUnknownVoltageToSimFillsMinMax(t *testing.T) {
	var f FullConnection
	f.Terminals[power.Sim].Voltage[Source] = 1800
	f.SetUnknownVoltageToSim()
	assert.Equal(t, ids.Voltage(1800), f.Terminals[power.Min].Voltage[Source])
	assert.Equal(t, ids.Voltage(1800), f.Terminals[power.Max].Voltage[Source])
}

func TestSetUnknownVoltageToSimDoesNotOverwriteKnown(t *testing.T) {
	var f FullConnection
	f.Terminals[power.Sim].Voltage[Source] = 1800
	f.Terminals[power.Min].Voltage[Source] = 0
	f.SetUnknownVoltageToSim()
	assert.Equal(t, ids.Voltage(0), f.Terminals[power.Min].Voltage[Source])
}

func TestEstimatedCurrentZeroWhenResistanceUnknown(t *testing.T) {
	var f FullConnection
	f.Terminals[power.Min].Voltage[Source] = 0
	f.Terminals[power.Max].Voltage[Drain] = 1800
	f.Resistance = ids.InfiniteResistance
	assert.Equal(t, 0.0, f.EstimatedCurrent())
}

func TestEstimatedCurrentNonzero(t *testing.T) {
	var f FullConnection
	f.Terminals[power.Min].Voltage[Source] = 0
	f.Terminals[power.Max].Voltage[Drain] = 1000
	f.Resistance = 1000
	assert.InDelta(t, 0.001, f.EstimatedCurrent(), 1e-9)
}

func TestIsPumpCapacitorRequiresDifferentNets(t *testing.T) {
	c := circuit.New("t")
	a := c.AddNet("A")
	b := c.AddNet("B")
	cap := c.AddDevice("C1", ids.CAPACITOR, a.Id, ids.UnknownNet, b.Id, ids.UnknownNet, 0)

	f := FullConnection{Device: cap}
	f.Net[Source] = a.Id
	f.Net[Drain] = b.Id
	assert.True(t, f.IsPumpCapacitor())

	f.Net[Drain] = a.Id
	assert.False(t, f.IsPumpCapacitor())
}

func TestIsPossibleHiZRequiresExactlyOneNmosOnePmos(t *testing.T) {
	c := circuit.New("t")
	gate := c.AddNet("GATE")
	a := c.AddNet("A")
	b := c.AddNet("B")
	c.AddDevice("MN1", ids.NMOS, a.Id, ids.UnknownNet, gate.Id, ids.UnknownNet, 0)
	c.AddDevice("MP1", ids.PMOS, gate.Id, ids.UnknownNet, b.Id, ids.UnknownNet, 0)

	var f FullConnection
	f.Net[Gate] = gate.Id
	assert.True(t, f.IsPossibleHiZ(c))
}

func TestIsPossibleHiZRejectsInputPort(t *testing.T) {
	c := circuit.New("t")
	gate := c.AddNet("GATE")

	inputPower := power.New(0, "IN")
	inputPower.SetType(power.InputBit)

	var f FullConnection
	f.Net[Gate] = gate.Id
	f.Terminals[power.Max].Power[Gate] = inputPower
	assert.False(t, f.IsPossibleHiZ(c))
}
