package propagator

import (
	"github.com/cvcgo/cvc/pkg/circuit"
	"github.com/cvcgo/cvc/pkg/connection"
	"github.com/cvcgo/cvc/pkg/ids"
	"github.com/cvcgo/cvc/pkg/power"
)

// Conflict records that shortNets was asked to union a device's slave
// terminal onto a net that already carries a different known voltage for
// the same interpretation. The propagator records the conflict and leaves
// the existing root alone instead of unioning over it; pkg/errcheck turns
// these into findings.
type Conflict struct {
	Which      power.Interpretation
	Device     ids.DeviceId
	Net        ids.NetId
	Existing   ids.Voltage
	Attempted  ids.Voltage
}

// checkVoltageConflict reports whether unioning slave's net into master
// would overwrite an already-known, different voltage for which, and — if
// so — records the conflict instead of letting the caller union over it.
func (p *Propagator) checkVoltageConflict(which power.Interpretation, d *circuit.Device, conn *connection.Connection, slave connection.Terminal, attempted ids.Voltage) bool {
	existingPw := p.lookupPower(conn.Net[slave], conn.Root[slave])
	if existingPw == nil {
		return false
	}
	existing := existingPw.Voltage(which)
	if !existing.IsKnown() || existing == attempted {
		return false
	}
	p.Conflicts = append(p.Conflicts, Conflict{
		Which:     which,
		Device:    d.Id,
		Net:       conn.Net[slave],
		Existing:  existing,
		Attempted: attempted,
	})
	p.Log.Warn().
		Str("queue", which.String()).
		Uint32("device", uint32(d.Id)).
		Int32("existing_mv", int32(existing)).
		Int32("attempted_mv", int32(attempted)).
		Msg("voltage conflict, union skipped")
	return true
}
