package propagator

import (
	"github.com/cvcgo/cvc/pkg/circuit"
	"github.com/cvcgo/cvc/pkg/connection"
	"github.com/cvcgo/cvc/pkg/ids"
	"github.com/cvcgo/cvc/pkg/power"
)

// FullSnapshot builds a three-interpretation connection.FullConnection for
// d from this run's post-propagation Power tables and virtual-net vectors
// — the input pkg/errcheck's sweeps consume. Call only after RunAll: each
// interpretation's roots and Power bindings are read fresh, not cached
// from propagation time, so running this mid-pass would see a
// partially-settled circuit.
func (p *Propagator) FullSnapshot(d *circuit.Device) *connection.FullConnection {
	f := &connection.FullConnection{Device: d, DeviceId: d.Id, Resistance: d.Resistance}
	terms := [4]connection.Terminal{connection.Source, connection.Gate, connection.Drain, connection.Bulk}
	nets := [4]ids.NetId{d.Source, d.Gate, d.Drain, d.Bulk}
	for i, term := range terms {
		f.OriginalNet[term] = nets[i]
		f.Net[term] = nets[i]
	}
	for _, which := range []power.Interpretation{power.Min, power.Sim, power.Max} {
		t := f.Term(which)
		vn := p.VNets[which]
		for _, term := range terms {
			net := f.Net[term]
			if net == ids.UnknownNet {
				t.Voltage[term] = ids.UnknownVoltage
				continue
			}
			root, r := vn.Resolve(net)
			t.Root[term] = root
			t.RootResistance[term] = r
			pw := p.lookupPower(net, root)
			t.Power[term] = pw
			if pw != nil {
				t.Voltage[term] = pw.Voltage(which)
			} else {
				t.Voltage[term] = ids.UnknownVoltage
			}
		}
	}
	return f
}

// AllFullSnapshots builds a FullConnection for every device in the circuit,
// in device-id order.
func (p *Propagator) AllFullSnapshots() []*connection.FullConnection {
	out := make([]*connection.FullConnection, len(p.Circuit.Devices))
	for i, d := range p.Circuit.Devices {
		out[i] = p.FullSnapshot(d)
	}
	return out
}
