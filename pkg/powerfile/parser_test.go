package powerfile

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cvcgo/cvc/pkg/circuit"
	"github.com/cvcgo/cvc/pkg/ids"
	"github.com/cvcgo/cvc/pkg/power"
)

type noModels struct{}

func (noModels) Vth(string) (ids.Voltage, bool) { return 0, false }

func TestParseSimpleVoltageDeclaration(t *testing.T) {
	c := circuit.New("top")
	tbl := power.NewTable()
	err := Parse(strings.NewReader("VDD 1.2\nGND 0\n"), c, tbl, noModels{}, Options{})
	require.NoError(t, err)

	vdd := tbl.Get(c.NetByName("VDD"))
	require.NotNil(t, vdd)
	assert.Equal(t, ids.FromVolts(1.2), vdd.Voltage(power.Min))
	assert.Equal(t, ids.FromVolts(1.2), vdd.Voltage(power.Sim))
	assert.Equal(t, ids.FromVolts(1.2), vdd.Voltage(power.Max))

	gnd := tbl.Get(c.NetByName("GND"))
	require.NotNil(t, gnd)
	assert.Equal(t, ids.Voltage(0), gnd.Voltage(power.Sim))
}

func TestParseMinSimMaxAndInputBit(t *testing.T) {
	c := circuit.New("top")
	tbl := power.NewTable()
	err := Parse(strings.NewReader("A1 min@0 sim@0.6 max@1.2 input\n"), c, tbl, noModels{}, Options{})
	require.NoError(t, err)

	a1 := tbl.Get(c.NetByName("A1"))
	require.NotNil(t, a1)
	assert.Equal(t, ids.Voltage(0), a1.Voltage(power.Min))
	assert.Equal(t, ids.FromVolts(0.6), a1.Voltage(power.Sim))
	assert.Equal(t, ids.FromVolts(1.2), a1.Voltage(power.Max))
	assert.True(t, a1.HasType(power.InputBit))
}

func TestParseOpenHiZDeclaration(t *testing.T) {
	c := circuit.New("top")
	tbl := power.NewTable()
	err := Parse(strings.NewReader("VDDX min@0 max@1.2 open permit@VSS\n"), c, tbl, noModels{}, Options{})
	require.NoError(t, err)

	vddx := tbl.Get(c.NetByName("VDDX"))
	require.NotNil(t, vddx)
	assert.True(t, vddx.HasType(power.HizBit))
	assert.False(t, vddx.Voltage(power.Sim).IsKnown())
	assert.True(t, vddx.RelativeFriendly)
	assert.True(t, vddx.RelativeSet["VSS"])
}

func TestParseExpectedVoltageDirectives(t *testing.T) {
	c := circuit.New("top")
	tbl := power.NewTable()
	err := Parse(strings.NewReader("A expectSim@600\n"), c, tbl, noModels{}, Options{})
	require.NoError(t, err)

	a := tbl.Get(c.NetByName("A"))
	require.NotNil(t, a)
	assert.Equal(t, "600", a.ExpectedSim)
}

func TestParseFamilyExpandsRelativeSet(t *testing.T) {
	c := circuit.New("top")
	tbl := power.NewTable()
	src := "family vdd VDD,VDD2\nVPP 2.6 permit@vdd\n"
	err := Parse(strings.NewReader(src), c, tbl, noModels{}, Options{})
	require.NoError(t, err)

	vpp := tbl.Get(c.NetByName("VPP"))
	require.NotNil(t, vpp)
	assert.True(t, vpp.RelativeFriendly)
	assert.True(t, vpp.RelativeSet["VDD"])
	assert.True(t, vpp.RelativeSet["VDD2"])
}

func TestParseFamilyDeclaredAfterReference(t *testing.T) {
	c := circuit.New("top")
	tbl := power.NewTable()
	src := "VNWL -0.2 prohibit@vss\nfamily vss VSS,VSS2\n"
	err := Parse(strings.NewReader(src), c, tbl, noModels{}, Options{})
	require.NoError(t, err)

	vnwl := tbl.Get(c.NetByName("VNWL"))
	require.NotNil(t, vnwl)
	assert.False(t, vnwl.RelativeFriendly)
	assert.True(t, vnwl.RelativeSet["VSS"])
	assert.True(t, vnwl.RelativeSet["VSS2"])
	assert.Equal(t, -ids.FromVolts(0.2), vnwl.Voltage(power.Sim))
}

func TestParseDefineMacroReusedByLaterDeclaration(t *testing.T) {
	c := circuit.New("top")
	tbl := power.NewTable()
	src := "#define CORE min@0 max@1.0\nB1 CORE\n"
	err := Parse(strings.NewReader(src), c, tbl, noModels{}, Options{})
	require.NoError(t, err)

	b1 := tbl.Get(c.NetByName("B1"))
	require.NotNil(t, b1)
	assert.Equal(t, ids.Voltage(0), b1.Voltage(power.Min))
	assert.Equal(t, ids.FromVolts(1.0), b1.Voltage(power.Max))
}

func TestParseRejectsUndefinedMacroByDefault(t *testing.T) {
	c := circuit.New("top")
	tbl := power.NewTable()
	err := Parse(strings.NewReader("B1 UNDEFINED_MACRO\n"), c, tbl, noModels{}, Options{})
	assert.Error(t, err)
}

func TestParsePermitsUndefinedMacroWhenFlagSet(t *testing.T) {
	c := circuit.New("top")
	tbl := power.NewTable()
	err := Parse(strings.NewReader("B1 UNDEFINED_MACRO\n"), c, tbl, noModels{}, Options{PermitUndefinedMacros: true})
	assert.NoError(t, err)
}

func TestParseAliasToken(t *testing.T) {
	c := circuit.New("top")
	tbl := power.NewTable()
	err := Parse(strings.NewReader("VDDA VDD 1.2 power\n"), c, tbl, noModels{}, Options{})
	require.NoError(t, err)

	p := tbl.Get(c.NetByName("VDDA"))
	require.NotNil(t, p)
	assert.Equal(t, "VDD", p.Alias)
	assert.True(t, p.HasType(power.PowerBit))
}
