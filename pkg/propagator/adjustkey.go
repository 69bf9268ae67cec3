package propagator

import (
	"github.com/cvcgo/cvc/pkg/circuit"
	"github.com/cvcgo/cvc/pkg/connection"
	"github.com/cvcgo/cvc/pkg/ids"
	"github.com/cvcgo/cvc/pkg/power"
	"github.com/cvcgo/cvc/pkg/queue"
)

// adjustKey computes the event key the slave terminal would actually receive
// and where to re-queue the device if that key moved later than key: an
// NMOS passing a Max-queue (worst-case-high) voltage through its gate can
// only pull the slave up to Vgate−Vth, and a PMOS passing a Min-queue
// (worst-case-low) voltage can only pull the slave down to Vgate+Vth
// (original_source/src/CCvcDb.cc's propagation loop). The Sim pass and the
// second leak-voltage pass skip the clamp entirely: Sim is nominal-only and
// the post-Sim pass is already resolved.
func (p *Propagator) adjustKey(which power.Interpretation, d *circuit.Device, conn *connection.Connection, key queue.EventKey, master, slave connection.Terminal) (queue.EventKey, queue.Position) {
	base := conn.Voltage[master]
	adjusted := queue.EventKey(base)
	position := queue.MainBack

	if d.Model.IsFuse() {
		return adjusted, queue.DelayBack
	}
	if d.Model == ids.RESISTOR {
		position = queue.DelayBack
	}

	if p.LeakVoltageSet || which == power.Sim {
		return adjusted, position
	}
	if master == connection.Gate || slave == connection.Gate {
		return adjusted, position
	}

	// A diode-connected MOSFET (gate tied to the very terminal being
	// resolved) can't wait for its own gate voltage to become known — it
	// never will, that net is what this call is computing. Its conduction
	// threshold is Vgs = Vslave - Vmaster = Vth, so the slave settles at
	// master's voltage offset by one Vth the same as the ordinary passgate
	// case, just evaluated against master instead of an external gate.
	gateNet := conn.Net[connection.Gate]
	diodeTied := gateNet != ids.UnknownNet && gateNet == conn.Net[slave]

	var gateVoltage ids.Voltage
	if diodeTied {
		gateVoltage = base
	} else {
		gateVoltage = conn.Voltage[connection.Gate]
		if !gateVoltage.IsKnown() {
			return adjusted, position
		}
	}
	vth, ok := p.Models.Vth(d.ModelName)
	if !ok {
		return adjusted, position
	}

	switch {
	case d.Model.IsNmosLike() && which == power.Max:
		clamp := gateVoltage - vth
		if clamp < base {
			adjusted = queue.EventKey(clamp)
			position = queue.DelayBack
		}
	case d.Model.IsPmosLike() && which == power.Min:
		clamp := gateVoltage + vth
		if clamp > base {
			adjusted = queue.EventKey(clamp)
			position = queue.DelayBack
		}
	}
	return adjusted, position
}
