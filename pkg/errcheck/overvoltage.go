package errcheck

import (
	"fmt"

	"github.com/cvcgo/cvc/pkg/connection"
	"github.com/cvcgo/cvc/pkg/ids"
	"github.com/cvcgo/cvc/pkg/modelfile"
	"github.com/cvcgo/cvc/pkg/power"
)

// worstCaseDelta returns the largest magnitude a's terminal could swing
// relative to b's across the Min/Max passes — max(|Max(a)-Min(b)|,
// |Max(b)-Min(a)|), the symmetric-pair form of the Vgs/Vds/Vbs/Vbg checks.
// Returns (0, false) if either side is never known.
func worstCaseDelta(f *connection.FullConnection, a, b connection.Terminal) (ids.Voltage, bool) {
	minT, maxT := f.Term(power.Min), f.Term(power.Max)
	if !minT.Voltage[a].IsKnown() || !maxT.Voltage[a].IsKnown() ||
		!minT.Voltage[b].IsKnown() || !maxT.Voltage[b].IsKnown() {
		return 0, false
	}
	d1 := maxT.Voltage[a] - minT.Voltage[b]
	d2 := maxT.Voltage[b] - minT.Voltage[a]
	if d1 < 0 {
		d1 = -d1
	}
	if d2 < 0 {
		d2 = -d2
	}
	if d1 > d2 {
		return d1, true
	}
	return d2, true
}

// CheckOvervoltage sweeps every MOSFET for Vgs/Vds/Vbs/Vbg beyond its
// model's declared tolerance plus the global threshold,
// skipping the Vds check for pump capacitors (connection.IsPumpCapacitor).
// IsPumpCapacitor reports CAPACITOR devices only and this sweep visits
// MOSFETs only, so the Vds skip never takes effect here.
// Grounded on original_source/src/CCvcDb_error.cc's FindVgsError/
// FindVdsError/FindVbsError/FindVbgError.
func (ck *Checker) CheckOvervoltage(conns []*connection.FullConnection) {
	for _, f := range conns {
		if !f.Device.Model.IsMos() {
			continue
		}
		m := ck.model(f.Device)
		if m == nil {
			continue
		}
		ck.checkLimit(f, m.MaxVgs, OvervoltageVgs, connection.Gate, connection.Source, "Vgs")
		if !f.IsPumpCapacitor() {
			ck.checkLimit(f, m.MaxVds, OvervoltageVds, connection.Drain, connection.Source, "Vds")
		}
		ck.checkLimit(f, m.MaxVbs, OvervoltageVbs, connection.Bulk, connection.Source, "Vbs")
		ck.checkLimit(f, m.MaxVbg, OvervoltageVbg, connection.Bulk, connection.Gate, "Vbg")
	}
}

func (ck *Checker) checkLimit(f *connection.FullConnection, limit modelfile.Limit, kind Kind, a, b connection.Terminal, label string) {
	if !limit.Set {
		return
	}
	delta, ok := worstCaseDelta(f, a, b)
	if !ok {
		return
	}
	threshold := limit.Voltage + ck.Opts.OvervoltageThreshold
	if delta <= threshold {
		return
	}
	ck.report(kind, f.Device, f, fmt.Sprintf("%s %dmV exceeds limit %dmV", label, delta, limit.Voltage))
}
