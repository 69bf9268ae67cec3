package errcheck

import (
	"fmt"

	"github.com/cvcgo/cvc/pkg/connection"
	"github.com/cvcgo/cvc/pkg/power"
)

// CheckForwardDiode sweeps every device's declared body diodes for a forward bias beyond
// ForwardErrorThreshold under the worst-case Max/Min pairing — a parasitic
// diode conducting is a leak path the original device was never meant to
// carry. Grounded on original_source/src/CCvcDb_error.cc's
// FindForwardDiodeErrors, simplified to a flat per-diode voltage check
// without the original's resistance-backward tie-break refinement.
func (ck *Checker) CheckForwardDiode(conns []*connection.FullConnection) {
	for _, f := range conns {
		m := ck.model(f.Device)
		if m == nil {
			continue
		}
		for _, diode := range m.BodyDiodes {
			mask := connection.TerminalMask(1<<diode.Anode | 1<<diode.Cathode)
			if !f.CheckTerminalMinMaxVoltages(mask, true) {
				continue
			}
			maxT, minT := f.Term(power.Max), f.Term(power.Min)
			forward := maxT.Voltage[diode.Anode] - minT.Voltage[diode.Cathode]
			if forward <= ck.Opts.ForwardErrorThreshold {
				continue
			}
			ck.report(ForwardDiode, f.Device, f, fmt.Sprintf("body diode forward biased %dmV", forward))
		}
	}
}
