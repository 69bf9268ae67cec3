package errcheck

import (
	"fmt"

	"github.com/cvcgo/cvc/pkg/connection"
	"github.com/cvcgo/cvc/pkg/ids"
	"github.com/cvcgo/cvc/pkg/power"
	"github.com/cvcgo/cvc/pkg/propagator"
)

// CheckSourceVsBulk flags an NMOS/LDDN whose bulk can sit above its source,
// or a PMOS/LDDP whose bulk can sit below its source, by more than
// BiasErrorThreshold — the bulk-to-source body diode turning on and
// injecting current onto a net the device was never meant to drive.
// Unrelated powers always error regardless of margin. Grounded on
// original_source/src/CCvcDb_error.cc's FindNmosSourceVsBulkErrors (lines
// ~503-660) and its Pmos mirror, simplified: the original additionally
// walks a resistance-backward tie-break to decide whether the bulk or the
// source is the "driving" side before deciding severity; this rewrite skips
// that refinement and reports on the raw worst-case bias alone.
func (ck *Checker) CheckSourceVsBulk(p *propagator.Propagator, conns []*connection.FullConnection) {
	for _, f := range conns {
		nmosLike := f.Device.Model.IsNmosLike()
		pmosLike := f.Device.Model.IsPmosLike()
		if !nmosLike && !pmosLike {
			continue
		}
		if !f.CheckTerminalMinMaxVoltages(connection.MaskSource|connection.MaskBulk, true) {
			continue
		}
		minT, maxT := f.Term(power.Min), f.Term(power.Max)
		related := ck.Powers.RelatedPowers(
			maxT.Power[connection.Bulk], minT.Power[connection.Source], p.VNets[power.Max], power.Max, true)

		kind := NmosSourceBulk
		var bias ids.Voltage
		if nmosLike {
			bias = maxT.Voltage[connection.Bulk] - minT.Voltage[connection.Source]
		} else {
			kind = PmosSourceBulk
			bias = maxT.Voltage[connection.Source] - minT.Voltage[connection.Bulk]
		}
		if bias <= 0 {
			continue
		}
		if related && bias <= ck.Opts.BiasErrorThreshold {
			continue
		}
		ck.report(kind, f.Device, f, fmt.Sprintf("bulk-source forward bias %dmV", bias))
	}
}
