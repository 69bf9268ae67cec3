package circuit

import "github.com/cvcgo/cvc/pkg/ids"

// AnnotateInverters records every net's InverterOf/InverterPolarityHigh
// fields from FindTrivialInverter's classic CMOS inverter shape — exactly
// one NMOS and one PMOS sharing a gate net and driving the same output.
// This is a structural heuristic, not a netlist directive: it recognizes
// the single-stage inverter only, not transmission-gate latches or
// multi-input gates, the same sense the rest of this package gives
// `inverterOf` as a "simple inverter" back-pointer. Requires
// tallyConnections to have already run (AddDevice calls it per device),
// since FindTrivialInverter reads ConnectionCount.
func (c *Circuit) AnnotateInverters() {
	for _, n := range c.Nets {
		inputNet, ok := c.FindTrivialInverter(n.Id)
		if !ok {
			continue
		}
		n.InverterOf = inputNet
		n.InverterPolarityHigh = true // output is high when input (gate) is low
	}
}

// AnnotateLatches tags both nets of a cross-coupled inverter pair —
// InverterOf forming a 2-cycle, A's input is B and B's input is A — as
// IsLatchNode. Must run after
// AnnotateInverters has populated InverterOf on every net.
func (c *Circuit) AnnotateLatches() {
	for _, n := range c.Nets {
		if n.InverterOf == ids.UnknownNet {
			continue
		}
		partner := c.Net(n.InverterOf)
		if partner == nil || partner.InverterOf != n.Id {
			continue
		}
		n.IsLatchNode = true
		partner.IsLatchNode = true
	}
}
