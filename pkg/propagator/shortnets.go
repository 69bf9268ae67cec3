package propagator

import (
	"github.com/cvcgo/cvc/pkg/circuit"
	"github.com/cvcgo/cvc/pkg/connection"
	"github.com/cvcgo/cvc/pkg/ids"
	"github.com/cvcgo/cvc/pkg/power"
	"github.com/cvcgo/cvc/pkg/queue"
)

// vnetStamp hands out a monotonically increasing generation counter for
// vnet.Vector.Set/Restore calls, independent of any event queue's key
// ordering (which may run negated for the Max queue).
func (p *Propagator) vnetStamp() uint64 {
	p.stamp++
	return p.stamp
}

// calculationTypeFor classifies how a short's voltage was derived, for the
// Power record's MinCalculationType/SimCalculationType/MaxCalculationType
// tag (original_source/src/CPower.hh calculation_t).
func calculationTypeFor(d *circuit.Device, conn *connection.Connection, which power.Interpretation, master, slave connection.Terminal) power.CalculationType {
	gateNet := conn.Net[connection.Gate]
	diodeTied := gateNet != ids.UnknownNet && gateNet == conn.Net[slave]
	switch {
	case d.Model.IsFuse():
		return power.NoCalculation
	case d.Model == ids.RESISTOR:
		return power.ResistorCalculation
	case d.Model.IsMos() && diodeTied:
		return power.MosDiodeCalculation
	case d.Model.IsMos() && master != slave:
		if which == power.Max {
			return power.UpCalculation
		}
		return power.DownCalculation
	default:
		return power.EstimatedCalculation
	}
}

// shortNets unions the slave terminal's net into the master's virtual-net
// root at the adjusted key. When the key was not clamped away from the
// master's own voltage (the ordinary resistor/switch case), the slave net
// is now simply part of master's electrical group and inherits its Power by
// root resolution — no new record needed. When the key was clamped (the
// MOSFET Vth-drop rule in adjustKey), the slave net sits on a distinct
// voltage from master despite being merged for resistance-accounting
// purposes, so a calculated Power is bound directly to the slave's own net
// id — lookupPower checks there before falling back to the root.
func (p *Propagator) shortNets(which power.Interpretation, d *circuit.Device, conn *connection.Connection, master, slave connection.Terminal, key queue.EventKey) {
	vn := p.VNets[which]
	masterRoot := conn.Root[master]
	slaveNet := conn.Net[slave]
	if slaveNet == ids.UnknownNet || masterRoot == ids.UnknownNet {
		return
	}

	vn.Set(slaveNet, masterRoot, conn.Resistance, p.vnetStamp())

	if ids.Voltage(key) == conn.Voltage[master] {
		return
	}
	if p.Powers.Get(slaveNet) != nil {
		return
	}
	calc := power.NewCalculated(slaveNet, which, ids.Voltage(key), masterRoot, calculationTypeFor(d, conn, which, master, slave))
	p.Powers.Add(calc)
}
