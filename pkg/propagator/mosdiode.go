package propagator

import (
	"github.com/cvcgo/cvc/pkg/circuit"
	"github.com/cvcgo/cvc/pkg/connection"
	"github.com/cvcgo/cvc/pkg/ids"
	"github.com/cvcgo/cvc/pkg/power"
	"github.com/cvcgo/cvc/pkg/queue"
)

func otherMinMax(which power.Interpretation) (power.Interpretation, bool) {
	switch which {
	case power.Min:
		return power.Max, true
	case power.Max:
		return power.Min, true
	default:
		return which, false
	}
}

// tryMosDiodeTrick re-queues a diode-connected MOSFET (gate tied to its own
// drain or source) onto the opposite Min/Max queue the moment it resolves on
// one of them, at MosDiode priority so it is reconsidered ahead of whatever
// else that queue already holds (original_source/src/CCvcDb.cc's "mos diode"
// handling: a diode-tied MOSFET clamps both the worst-case-low and
// worst-case-high side of the net it diodes into, not just the one the
// current pass happened to reach first).
//
// Simplification: the original additionally derates the cross-queue edge's
// resistance by 100x so the mos-diode path is disfavored against a direct
// metal short; this implementation re-queues the bare device instead and
// lets the ordinary adjustKey/shortNets path on the other queue resolve its
// resistance, which is simpler to reason about at the cost of not modeling
// that derating.
func (p *Propagator) tryMosDiodeTrick(which power.Interpretation, d *circuit.Device, conn *connection.Connection) {
	if p.LeakVoltageSet || !d.Model.IsMos() {
		return
	}
	gate := conn.Net[connection.Gate]
	if gate == ids.UnknownNet {
		return
	}
	if gate != conn.Net[connection.Drain] && gate != conn.Net[connection.Source] {
		return
	}
	other, ok := otherMinMax(which)
	if !ok {
		return
	}
	oq := p.Queues[other]
	if oq.Queued(d.Id) {
		return
	}
	v := conn.Voltage[connection.Gate]
	if !v.IsKnown() {
		return
	}
	oq.AddEvent(queue.EventKey(v), d.Id, queue.MosDiode)
}
