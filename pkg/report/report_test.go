package report

import (
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cvcgo/cvc/pkg/circuit"
	"github.com/cvcgo/cvc/pkg/errcheck"
	"github.com/cvcgo/cvc/pkg/ids"
	"github.com/cvcgo/cvc/pkg/modelfile"
	"github.com/cvcgo/cvc/pkg/power"
	"github.com/cvcgo/cvc/pkg/propagator"
)

// buildOvervoltageCircuit wires GND--M1(NMOS, gate=VDD)-->A with a gate
// limit set low enough that propagation trips OVERVOLTAGE_VGS on m1.
func buildOvervoltageCircuit(t *testing.T) (*circuit.Circuit, *propagator.Propagator, []errcheck.Finding) {
	t.Helper()
	c := circuit.New("top")
	gnd := c.AddNet("gnd")
	vdd := c.AddNet("vdd")
	a := c.AddNet("a")
	c.AddDevice("m1", ids.NMOS, gnd.Id, vdd.Id, a.Id, gnd.Id, 100)
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

	vddPw := power.New(vdd.Id, "VDD")
	vddPw.SetVoltage(power.Min, ids.FromVolts(1.2))
	vddPw.SetVoltage(power.Sim, ids.FromVolts(1.2))
	vddPw.SetVoltage(power.Max, ids.FromVolts(1.2))
	vddPw.SetType(power.PowerBit)
	vddPw.SetActive(power.MinActive)
	vddPw.SetActive(power.MaxActive)
	tbl.Add(vddPw)

	models := modelfile.NewTable()
	models.Add(&modelfile.Model{
		Name: "NFET", Kind: ids.NMOS,
		MaxVgs: modelfile.Limit{Voltage: ids.FromVolts(1.0), Set: true},
	})

	p := propagator.New(c, tbl, models, zerolog.Nop())
	p.RunAll()

	ck := errcheck.New(c, tbl, models, errcheck.DefaultOptions())
	ck.CheckOvervoltage(p.AllFullSnapshots())

	return c, p, ck.Findings()
}

func TestWriteRendersHeadingDeviceAndTerminalBlock(t *testing.T) {
	c, _, findings := buildOvervoltageCircuit(t)
	require.Len(t, findings, 1)

	var buf strings.Builder
	require.NoError(t, Write(&buf, c, findings))
	out := buf.String()

	assert.True(t, strings.HasPrefix(out, "! OVERVOLTAGE_VGS: "), "heading must start with '! KIND: '")
	assert.Contains(t, out, "m1 NFET (r=")
	assert.Contains(t, out, "G: vdd")
	assert.Contains(t, out, "S: gnd")
	assert.Contains(t, out, "D: a")
	assert.Contains(t, out, "B: gnd")
	assert.Contains(t, out, " Min: ")
	assert.Contains(t, out, " Sim: ")
	assert.Contains(t, out, " Max: ")
}

func TestWriteSummaryCountsMatchFindings(t *testing.T) {
	c, _, findings := buildOvervoltageCircuit(t)

	var buf strings.Builder
	require.NoError(t, Write(&buf, c, findings))
	out := buf.String()

	assert.Contains(t, out, "CVC: Error Counts")
	assert.Contains(t, out, "CVC: Overvoltage-VGS:            1")
	assert.Contains(t, out, "CVC: Total:                      1")
}

func TestWriteAnnotatesFindingWithSubcircuitInstance(t *testing.T) {
	c, _, findings := buildOvervoltageCircuit(t)
	require.Len(t, findings, 1)
	c.Devices[0].InstanceOf = c.Instance("X1.X2")

	var buf strings.Builder
	require.NoError(t, Write(&buf, c, findings))
	out := buf.String()

	assert.Contains(t, out, "  in X1.X2\n")
}

func TestWriteHandlesDeviceLessFinding(t *testing.T) {
	c := circuit.New("empty")
	findings := []errcheck.Finding{{Kind: errcheck.ExpectedVoltage, Message: "expected VDD sim 1.200 V but found unknown"}}

	var buf strings.Builder
	require.NoError(t, Write(&buf, c, findings))
	out := buf.String()

	assert.Contains(t, out, "! EXPECTED_VOLTAGE: expected VDD sim 1.200 V but found unknown")
	assert.Contains(t, out, "CVC: Unexpected voltage:         1")
}
