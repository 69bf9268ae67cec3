package errcheck

import (
	"fmt"

	"github.com/cvcgo/cvc/pkg/connection"
	"github.com/cvcgo/cvc/pkg/ids"
	"github.com/cvcgo/cvc/pkg/power"
)

// CheckLDDDirection flags an LDDN/LDDP device wired backwards: an LDDN's
// source must stay at or below its drain under both Min and Max, mirrored
// for LDDP, since the lightly-doped-drain implant is only protective on one
// side of the channel. Grounded on
// original_source/src/CCvcDb_error.cc's FindLDDErrors (lines ~1185-1251),
// simplified to the direct source-vs-drain comparison without the
// original's additional resistance-backward and gate-voltage override
// special cases.
func (ck *Checker) CheckLDDDirection(conns []*connection.FullConnection) {
	for _, f := range conns {
		ldn := f.Device.Model == ids.LDDN
		ldp := f.Device.Model == ids.LDDP
		if !ldn && !ldp {
			continue
		}
		if !f.CheckTerminalMinMaxVoltages(connection.MaskSource|connection.MaskDrain, true) {
			continue
		}
		minT, maxT := f.Term(power.Min), f.Term(power.Max)
		var violated bool
		if ldn {
			violated = minT.Voltage[connection.Source] > minT.Voltage[connection.Drain] ||
				maxT.Voltage[connection.Source] > maxT.Voltage[connection.Drain]
		} else {
			violated = minT.Voltage[connection.Source] < minT.Voltage[connection.Drain] ||
				maxT.Voltage[connection.Source] < maxT.Voltage[connection.Drain]
		}
		if !violated {
			continue
		}
		ck.report(LddSource, f.Device, f, fmt.Sprintf("source on wrong side of drain (min=%d/%d max=%d/%d)",
			minT.Voltage[connection.Source], minT.Voltage[connection.Drain],
			maxT.Voltage[connection.Source], maxT.Voltage[connection.Drain]))
	}
}
