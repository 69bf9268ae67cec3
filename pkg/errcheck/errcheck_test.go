package errcheck

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cvcgo/cvc/pkg/circuit"
	"github.com/cvcgo/cvc/pkg/connection"
	"github.com/cvcgo/cvc/pkg/ids"
	"github.com/cvcgo/cvc/pkg/modelfile"
	"github.com/cvcgo/cvc/pkg/power"
	"github.com/cvcgo/cvc/pkg/propagator"
)

// buildInverter wires a classic CMOS inverter: VDD-PMOS(gate=IN)-OUT,
// GND-NMOS(gate=IN)-OUT, with VDD/GND declared powers.
func buildInverter(t *testing.T) (*circuit.Circuit, *power.Table, *modelfile.Table) {
	t.Helper()
	c := circuit.New("inv")
	vdd := c.AddNet("vdd")
	gnd := c.AddNet("gnd")
	in := c.AddNet("in")
	out := c.AddNet("out")
	c.AddDevice("mp", ids.PMOS, vdd.Id, in.Id, out.Id, vdd.Id, 100)
	c.AddDevice("mn", ids.NMOS, gnd.Id, in.Id, out.Id, gnd.Id, 100)
	c.Devices[0].ModelName = "PFET"
	c.Devices[1].ModelName = "NFET"

	tbl := power.NewTable()
	vddPw := power.New(vdd.Id, "VDD")
	vddPw.SetVoltage(power.Min, ids.FromVolts(1.2))
	vddPw.SetVoltage(power.Sim, ids.FromVolts(1.2))
	vddPw.SetVoltage(power.Max, ids.FromVolts(1.2))
	vddPw.SetType(power.PowerBit)
	vddPw.SetActive(power.MinActive)
	vddPw.SetActive(power.MaxActive)
	tbl.Add(vddPw)

	gndPw := power.New(gnd.Id, "GND")
	gndPw.SetVoltage(power.Min, 0)
	gndPw.SetVoltage(power.Sim, 0)
	gndPw.SetVoltage(power.Max, 0)
	gndPw.SetType(power.PowerBit)
	gndPw.SetActive(power.MinActive)
	gndPw.SetActive(power.MaxActive)
	tbl.Add(gndPw)

	inPw := power.New(in.Id, "IN")
	inPw.SetVoltage(power.Min, 0)
	inPw.SetVoltage(power.Sim, 0)
	inPw.SetVoltage(power.Max, ids.FromVolts(1.2))
	inPw.SetType(power.InputBit)
	inPw.SetActive(power.MinActive)
	inPw.SetActive(power.MaxActive)
	tbl.Add(inPw)

	models := modelfile.NewTable()
	models.Add(&modelfile.Model{Name: "PFET", Kind: ids.PMOS, Vth: ids.FromVolts(0.4), HasVth: true})
	models.Add(&modelfile.Model{Name: "NFET", Kind: ids.NMOS, Vth: ids.FromVolts(0.4), HasVth: true})

	return c, tbl, models
}

func runPropagation(t *testing.T, c *circuit.Circuit, tbl *power.Table, models *modelfile.Table) *propagator.Propagator {
	t.Helper()
	p := propagator.New(c, tbl, models, zerolog.Nop())
	p.RunAll()
	return p
}

func TestCheckOvervoltageFlagsVgsBeyondModelLimit(t *testing.T) {
	c, tbl, models := buildInverter(t)
	models.Get("NFET").MaxVgs = modelfile.Limit{Voltage: ids.FromVolts(1.0), Set: true}
	p := runPropagation(t, c, tbl, models)

	ck := New(c, tbl, models, DefaultOptions())
	ck.CheckOvervoltage(p.AllFullSnapshots())

	var found bool
	for _, f := range ck.Findings() {
		if f.Kind == OvervoltageVgs {
			found = true
		}
	}
	assert.True(t, found, "expected an OVERVOLTAGE_VGS finding for the 1.2V swing against a 1.0V limit")
}

func TestCheckOvervoltageSilentWithinModelLimit(t *testing.T) {
	c, tbl, models := buildInverter(t)
	models.Get("NFET").MaxVgs = modelfile.Limit{Voltage: ids.FromVolts(2.0), Set: true}
	p := runPropagation(t, c, tbl, models)

	ck := New(c, tbl, models, DefaultOptions())
	ck.CheckOvervoltage(p.AllFullSnapshots())

	assert.Empty(t, ck.Findings())
}

func TestCheckForwardDiodeFlagsForwardBiasedBodyDiode(t *testing.T) {
	c, tbl, models := buildInverter(t)
	// NMOS bulk is tied to its own source (gnd); declare the diode from
	// drain to bulk so a positive drain voltage forward-biases it.
	models.Get("NFET").BodyDiodes = []modelfile.BodyDiode{{Anode: connection.Drain, Cathode: connection.Bulk}}
	p := runPropagation(t, c, tbl, models)

	opts := DefaultOptions()
	opts.ForwardErrorThreshold = 0
	ck := New(c, tbl, models, opts)
	ck.CheckForwardDiode(p.AllFullSnapshots())

	require.NotEmpty(t, ck.Findings())
	for _, f := range ck.Findings() {
		assert.Equal(t, ForwardDiode, f.Kind)
	}
}

func TestCheckGateVsSourceSilentWhenGateTiedToSource(t *testing.T) {
	c := circuit.New("pass")
	gnd := c.AddNet("gnd")
	gate := c.AddNet("gate")
	drain := c.AddNet("drain")
	c.AddDevice("m1", ids.NMOS, gnd.Id, gate.Id, drain.Id, gnd.Id, 100)
	c.Devices[0].ModelName = "NFET"

	tbl := power.NewTable()
	gndPw := power.New(gnd.Id, "GND")
	gndPw.SetVoltage(power.Min, 0)
	gndPw.SetVoltage(power.Sim, 0)
	gndPw.SetVoltage(power.Max, 0)
	gndPw.SetType(power.PowerBit)
	gndPw.SetActive(power.MinActive)
	gndPw.SetActive(power.MaxActive)
	tbl.Add(gndPw)
	gatePw := power.New(gate.Id, "GND2")
	gatePw.SetVoltage(power.Min, 0)
	gatePw.SetVoltage(power.Sim, 0)
	gatePw.SetVoltage(power.Max, 0)
	gatePw.SetType(power.PowerBit)
	gatePw.Family = "GND"
	gatePw.RelativeFriendly = true
	gatePw.RelativeSet = map[string]bool{"GND": true}
	gatePw.SetActive(power.MinActive)
	gatePw.SetActive(power.MaxActive)
	tbl.Add(gatePw)

	models := modelfile.NewTable()
	models.Add(&modelfile.Model{Name: "NFET", Kind: ids.NMOS})

	p := runPropagation(t, c, tbl, models)
	ck := New(c, tbl, models, DefaultOptions())
	ck.CheckGateVsSource(p, p.AllFullSnapshots())

	assert.Empty(t, ck.Findings(), "gate related to source via family permit must not be flagged")
}

func TestCheckLDDDirectionFlagsReversedLddn(t *testing.T) {
	c := circuit.New("ldd")
	hi := c.AddNet("hi")
	lo := c.AddNet("lo")
	// LDDN wired backwards: source (hi) above drain (lo).
	c.AddDevice("m1", ids.LDDN, hi.Id, lo.Id, lo.Id, hi.Id, 100)
	c.Devices[0].ModelName = "LDDNM"

	tbl := power.NewTable()
	hiPw := power.New(hi.Id, "HI")
	hiPw.SetVoltage(power.Min, ids.FromVolts(1.2))
	hiPw.SetVoltage(power.Sim, ids.FromVolts(1.2))
	hiPw.SetVoltage(power.Max, ids.FromVolts(1.2))
	hiPw.SetType(power.PowerBit)
	hiPw.SetActive(power.MinActive)
	hiPw.SetActive(power.MaxActive)
	tbl.Add(hiPw)
	loPw := power.New(lo.Id, "LO")
	loPw.SetVoltage(power.Min, 0)
	loPw.SetVoltage(power.Sim, 0)
	loPw.SetVoltage(power.Max, 0)
	loPw.SetType(power.PowerBit)
	loPw.SetActive(power.MinActive)
	loPw.SetActive(power.MaxActive)
	tbl.Add(loPw)

	models := modelfile.NewTable()
	models.Add(&modelfile.Model{Name: "LDDNM", Kind: ids.LDDN})

	p := runPropagation(t, c, tbl, models)
	ck := New(c, tbl, models, DefaultOptions())
	ck.CheckLDDDirection(p.AllFullSnapshots())

	require.Len(t, ck.Findings(), 1)
	assert.Equal(t, LddSource, ck.Findings()[0].Kind)
}

func TestCheckExpectedValuesFlagsMismatch(t *testing.T) {
	c, tbl, models := buildInverter(t)
	// "in" is pinned to 0V under Sim; declare a deliberately wrong
	// expectation so the check must flag it.
	tbl.Get(c.NetByName("in")).ExpectedSim = "1000"

	p := runPropagation(t, c, tbl, models)
	ck := New(c, tbl, models, DefaultOptions())
	ck.CheckExpectedValues(p)

	var found bool
	for _, f := range ck.Findings() {
		if f.Kind == ExpectedVoltage {
			found = true
		}
	}
	assert.True(t, found)
}

func TestReportRespectsPerDeviceErrorLimit(t *testing.T) {
	c, tbl, models := buildInverter(t)
	models.Get("NFET").MaxVgs = modelfile.Limit{Voltage: 0, Set: true}
	models.Get("PFET").MaxVgs = modelfile.Limit{Voltage: 0, Set: true}
	p := runPropagation(t, c, tbl, models)

	opts := DefaultOptions()
	opts.ErrorLimit = 1
	ck := New(c, tbl, models, opts)
	ck.CheckOvervoltage(p.AllFullSnapshots())
	ck.CheckOvervoltage(p.AllFullSnapshots()) // run twice to exercise the per-device cap

	counts := map[ids.DeviceId]int{}
	for _, f := range ck.Findings() {
		if f.Kind == OvervoltageVgs {
			counts[f.Device.Id]++
		}
	}
	for id, n := range counts {
		assert.LessOrEqualf(t, n, 1, "device %d exceeded its per-kind error limit", id)
	}
}
