package propagator

import (
	"github.com/cvcgo/cvc/pkg/circuit"
	"github.com/cvcgo/cvc/pkg/ids"
	"github.com/cvcgo/cvc/pkg/power"
)

// inferSCRC finds Hi-Z nets shaped like a source-coupled reference circuit
// — driven by exactly one NMOS and one PMOS, both gated from nets that are
// themselves Hi-Z — and seeds them with the Sim-pass average of their two
// source rails, for expected-value purposes only. Run once, after the first Sim pass has settled everything
// an ordinary driver can resolve, and before the Sim-pass latch seeding.
func (p *Propagator) inferSCRC() {
	for _, n := range p.Circuit.Nets {
		if !n.ConnectionCount.IsSimpleCmosOutput() || n.ConnectionCount.SourceDrainCount() > 2 {
			continue
		}
		if p.isResolved(power.Sim, n.Id) {
			continue
		}
		nmos, pmos, ok := p.cmosPairDriving(n.Id)
		if !ok {
			continue
		}
		if !p.looksHiZ(nmos.Gate) || !p.looksHiZ(pmos.Gate) {
			continue
		}
		v1, ok1 := p.simVoltage(nmos.Source)
		v2, ok2 := p.simVoltage(pmos.Source)
		if !ok1 || !ok2 {
			continue
		}
		avg := ids.Voltage((int64(v1) + int64(v2)) / 2)
		root, _ := p.VNets[power.Sim].Resolve(n.Id)
		calc := power.NewCalculated(n.Id, power.Sim, avg, root, power.AverageCalculation)
		p.Powers.Add(calc)
		p.Log.Debug().Str("net", n.Name).Msg("inferred SCRC reference voltage")
	}
}

// isResolved reports whether net already carries a known voltage under
// which, directly or through its virtual-net root.
func (p *Propagator) isResolved(which power.Interpretation, net ids.NetId) bool {
	root, _ := p.VNets[which].Resolve(net)
	pw := p.lookupPower(net, root)
	return pw != nil && pw.Voltage(which).IsKnown()
}

// cmosPairDriving returns the single NMOS and PMOS device whose source or
// drain terminal lands on net. inferSCRC's IsSimpleCmosOutput and
// SourceDrainCount checks already guarantee exactly one of each before
// this is called.
func (p *Propagator) cmosPairDriving(net ids.NetId) (nmos, pmos *circuit.Device, ok bool) {
	for _, devId := range p.Circuit.DevicesOnNet(net) {
		d := p.Circuit.Device(devId)
		if d == nil || (d.Source != net && d.Drain != net) {
			continue
		}
		switch {
		case d.Model.IsNmosLike():
			nmos = d
		case d.Model.IsPmosLike():
			pmos = d
		}
	}
	return nmos, pmos, nmos != nil && pmos != nil
}

// looksHiZ reports whether net has no known Sim voltage and isn't marked as
// an input pin — the same "undriven by anything solid" signal
// connection.IsPossibleHiZ uses for its own gate-net check.
func (p *Propagator) looksHiZ(net ids.NetId) bool {
	if net == ids.UnknownNet {
		return false
	}
	root, _ := p.VNets[power.Sim].Resolve(net)
	if pw := p.lookupPower(net, root); pw != nil && pw.HasType(power.InputBit) {
		return false
	}
	return !p.isResolved(power.Sim, net)
}

// simVoltage returns net's Sim-pass voltage by root resolution, and whether
// it is known.
func (p *Propagator) simVoltage(net ids.NetId) (ids.Voltage, bool) {
	root, _ := p.VNets[power.Sim].Resolve(net)
	pw := p.lookupPower(net, root)
	if pw == nil {
		return ids.UnknownVoltage, false
	}
	v := pw.Voltage(power.Sim)
	return v, v.IsKnown()
}

// annotateLatches seeds a still-Hi-Z latch node's Sim voltage from its
// cross-coupled partner when the partner already resolved, rather than
// leaving both sides Hi-Z just because neither drove the other during
// ordinary propagation. The seeded value is for expected-value
// checks only — it isn't logically inverted, since a best-effort estimate
// of "the other side's rail" is all error checking needs here.
func (p *Propagator) annotateLatches() {
	for _, n := range p.Circuit.Nets {
		if !n.IsLatchNode || n.InverterOf == ids.UnknownNet {
			continue
		}
		partner := p.Circuit.Net(n.InverterOf)
		if partner == nil || !partner.IsLatchNode {
			continue
		}
		if p.isResolved(power.Sim, n.Id) {
			continue
		}
		v, ok := p.simVoltage(partner.Id)
		if !ok {
			continue
		}
		root, _ := p.VNets[power.Sim].Resolve(n.Id)
		calc := power.NewCalculated(n.Id, power.Sim, v, root, power.EstimatedCalculation)
		p.Powers.Add(calc)
		p.Log.Debug().Str("net", n.Name).Str("from", partner.Name).Msg("seeded latch node from cross-coupled partner")
	}
}
