package power

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func newPower(signal string) *Power {
	return New(0, signal)
}

func TestRelatesDefaultsWhenNeitherDeclaresFamily(t *testing.T) {
	a, b := newPower("VDD"), newPower("VSS")
	assert.True(t, Relates(a, b, true))
	assert.False(t, Relates(a, b, false))
}

func TestRelatesFriendFriendRequiresMembership(t *testing.T) {
	a, b := newPower("VDD1"), newPower("VDD2")
	a.RelativeFriendly = true
	b.RelativeFriendly = true
	a.RelativeSet["VDD2"] = true
	assert.True(t, Relates(a, b, false))

	c := newPower("VDD3")
	c.RelativeFriendly = true
	assert.False(t, Relates(a, c, false))
}

func TestRelatesFriendEnemyEnemyMembershipWins(t *testing.T) {
	a, b := newPower("VDD1"), newPower("VSS1")
	a.RelativeFriendly = true
	b.RelativeFriendly = false
	b.RelativeSet["VDD1"] = true // b declares a as an enemy
	assert.False(t, Relates(a, b, true))
}

func TestRelatesEnemyEnemyMutualExclusionIsRelated(t *testing.T) {
	a, b := newPower("VDD1"), newPower("VDD2")
	a.RelativeFriendly = false
	b.RelativeFriendly = false
	a.RelativeSet["VSS1"] = true
	b.RelativeSet["VSS2"] = true
	assert.True(t, Relates(a, b, false), "two unrelated enemy declarations default to related (not mutually excluded)")
}

func TestRelatesEnemyEnemyDeclaredExclusionIsUnrelated(t *testing.T) {
	a, b := newPower("VDD1"), newPower("VDD2")
	a.RelativeFriendly = false
	b.RelativeFriendly = false
	a.RelativeSet["VDD2"] = true
	assert.False(t, Relates(a, b, true))
}

func TestRelatesOneSidedFriendDeclaration(t *testing.T) {
	a, b := newPower("VDD1"), newPower("VDD2")
	a.RelativeFriendly = true
	a.RelativeSet["VDD2"] = true
	assert.True(t, Relates(a, b, false))

	c := newPower("VDD3")
	assert.False(t, Relates(a, c, false))
}

func TestIsSamePowerViaAlias(t *testing.T) {
	a := newPower("VDD")
	a.Alias = "VCC"
	b := newPower("VCC")
	assert.True(t, a.IsSamePower(b))
}

func TestVoltageRoundTrip(t *testing.T) {
	p := newPower("VDD")
	p.SetVoltage(Min, 1200)
	p.SetVoltage(Sim, 1800)
	p.SetVoltage(Max, 2000)
	assert.Equal(t, p.MinVoltage, p.Voltage(Min))
	assert.Equal(t, p.SimVoltage, p.Voltage(Sim))
	assert.Equal(t, p.MaxVoltage, p.Voltage(Max))
}

func TestCalculationTypeRoundTrip(t *testing.T) {
	p := newPower("")
	p.SetCalculationType(Max, MosDiodeCalculation)
	assert.Equal(t, MosDiodeCalculation, p.GetCalculationType(Max))
	assert.Equal(t, UnknownCalculation, p.GetCalculationType(Min))
}
