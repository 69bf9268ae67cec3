package propagator

import (
	"github.com/cvcgo/cvc/pkg/circuit"
	"github.com/cvcgo/cvc/pkg/connection"
	"github.com/cvcgo/cvc/pkg/ids"
	"github.com/cvcgo/cvc/pkg/power"
)

// Leak records that a device's source and drain both already carry a known,
// unrelated voltage — a short between two powers that were never declared
// friends, rather than a propagation step onto an unknown net.
type Leak struct {
	Which           power.Interpretation
	Device          ids.DeviceId
	SourceVoltage   ids.Voltage
	DrainVoltage    ids.Voltage
}

// Magnitude returns the absolute voltage difference across the leak path.
func (l Leak) Magnitude() ids.Voltage {
	d := l.SourceVoltage - l.DrainVoltage
	if d < 0 {
		d = -d
	}
	return d
}

// checkLeak reports (and records) whether master and slave are both already
// resolved to known, mutually unrelated powers — in which case shortNets
// must not union them; original_source/src/CCvcDb.cc treats this as a leak
// path rather than a short.
func (p *Propagator) checkLeak(which power.Interpretation, d *circuit.Device, conn *connection.Connection, master, slave connection.Terminal) bool {
	mv, sv := conn.Voltage[master], conn.Voltage[slave]
	if !mv.IsKnown() || !sv.IsKnown() {
		return false
	}
	mp, sp := conn.Power[master], conn.Power[slave]
	if mp == nil || sp == nil || mp == sp {
		return false
	}
	if p.Powers.RelatedPowers(mp, sp, p.VNets[which], which, false) {
		return false
	}
	p.Leaks = append(p.Leaks, Leak{
		Which:         which,
		Device:        d.Id,
		SourceVoltage: conn.Voltage[connection.Source],
		DrainVoltage:  conn.Voltage[connection.Drain],
	})
	p.Log.Warn().
		Str("queue", which.String()).
		Uint32("device", uint32(d.Id)).
		Msg("leak path between unrelated powers")
	return true
}
