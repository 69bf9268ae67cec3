package errcheck

import (
	"fmt"

	"github.com/cvcgo/cvc/pkg/circuit"
	"github.com/cvcgo/cvc/pkg/ids"
	"github.com/cvcgo/cvc/pkg/power"
	"github.com/cvcgo/cvc/pkg/propagator"
)

// AbsorbPropagatorFindings converts a finished run's recorded conflicts,
// leaks, fuse mismatches, and chain overflows into Findings — the error
// kinds that originate inside propagation itself rather than from a
// post-pass sweep over settled connections.
func (ck *Checker) AbsorbPropagatorFindings(p *propagator.Propagator) {
	for _, c := range p.Conflicts {
		kind := MinVoltageConflict
		if c.Which == power.Max {
			kind = MaxVoltageConflict
		}
		d := ck.Circuit.Device(c.Device)
		ck.report(kind, d, nil, fmt.Sprintf("%s voltage conflict on net %d: existing %dmV, attempted %dmV",
			c.Which, c.Net, c.Existing, c.Attempted))
	}
	for _, l := range p.Leaks {
		d := ck.Circuit.Device(l.Device)
		ck.report(Leak, d, nil, fmt.Sprintf("%s leak path, source %dmV drain %dmV (%dmV)",
			l.Which, l.SourceVoltage, l.DrainVoltage, l.Magnitude()))
	}
	for _, id := range p.FuseErrors() {
		d := ck.Circuit.Device(id)
		ck.report(FuseError, d, nil, "fuse source/drain no longer match after propagation")
	}
	for _, o := range p.ChainOverflows {
		var d *circuit.Device
		if o.Device != ids.UnknownDevice {
			d = ck.Circuit.Device(o.Device)
		}
		ck.report(ChainOverflow, d, nil, fmt.Sprintf("%s virtual-net chain exceeded length cap at net %d, net treated as terminal",
			o.Interpretation, o.Net))
	}
}
