package propagator

import (
	"github.com/cvcgo/cvc/pkg/ids"
	"github.com/cvcgo/cvc/pkg/power"
)

// NetVoltage resolves net's settled voltage and backing Power under which,
// for callers (pkg/errcheck's expected-value check) that need a bare net's
// state rather than a device's terminal snapshot.
func (p *Propagator) NetVoltage(which power.Interpretation, net ids.NetId) (ids.Voltage, *power.Power) {
	if net == ids.UnknownNet {
		return ids.UnknownVoltage, nil
	}
	root, _ := p.VNets[which].Resolve(net)
	pw := p.lookupPower(net, root)
	if pw == nil {
		return ids.UnknownVoltage, nil
	}
	return pw.Voltage(which), pw
}
