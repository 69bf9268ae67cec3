package errcheck

import (
	"fmt"

	"github.com/cvcgo/cvc/pkg/connection"
	"github.com/cvcgo/cvc/pkg/power"
)

// CheckPossibleLeak flags a MOSFET whose gate voltage under Sim is unknown
// (so it can't be proven off) and whose source/drain sit at different Sim
// voltages beyond the leak threshold — a device that might be conducting
// with nobody driving its gate to say otherwise. Grounded on
// original_source/src/CCvcDb_error.cc's FindNmosPossibleLeakErrors/
// FindPmosPossibleLeakErrors, simplified: the original additionally proves
// "always off" from the worst-case gate voltage against source/drain plus
// Vth, tracks Hi-Z cutoff and internal-override exemptions, and falls back
// to a current estimate when Sim is entirely unresolved; this rewrite
// keeps only the off-proof and the flat Sim-voltage-difference test.
func (ck *Checker) CheckPossibleLeak(conns []*connection.FullConnection) {
	for _, f := range conns {
		nmosLike := f.Device.Model.IsNmosLike()
		pmosLike := f.Device.Model.IsPmosLike()
		if !nmosLike && !pmosLike {
			continue
		}
		simT := f.Term(power.Sim)
		if simT.Voltage[connection.Gate].IsKnown() {
			continue // gate is pinned; the regular gate-vs-source check covers it
		}
		m := ck.model(f.Device)
		if f.CheckTerminalMinMaxVoltages(connection.MaskSource|connection.MaskDrain, true) && m != nil && m.HasVth {
			minT, maxT := f.Term(power.Min), f.Term(power.Max)
			if nmosLike {
				gateCeiling := maxT.Voltage[connection.Gate]
				if gateCeiling.IsKnown() &&
					gateCeiling <= minT.Voltage[connection.Source]+m.Vth &&
					gateCeiling <= minT.Voltage[connection.Drain]+m.Vth {
					continue // provably off
				}
			} else {
				gateFloor := minT.Voltage[connection.Gate]
				if gateFloor.IsKnown() &&
					gateFloor >= maxT.Voltage[connection.Source]+m.Vth &&
					gateFloor >= maxT.Voltage[connection.Drain]+m.Vth {
					continue
				}
			}
		}
		if !simT.Voltage[connection.Source].IsKnown() || !simT.Voltage[connection.Drain].IsKnown() {
			continue
		}
		delta := simT.Voltage[connection.Source] - simT.Voltage[connection.Drain]
		if delta < 0 {
			delta = -delta
		}
		if delta <= ck.Opts.ForwardErrorThreshold {
			continue
		}
		kind := NmosPossibleLeak
		if pmosLike {
			kind = PmosPossibleLeak
		}
		ck.report(kind, f.Device, f, fmt.Sprintf("unresolved gate, source/drain differ by %dmV under sim", delta))
	}
}
