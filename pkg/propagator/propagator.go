// Package propagator implements the voltage propagation state machine:
// seed every active power onto its net, drain each interpretation's event
// queue dequeuing one device at a time, decide a propagation direction,
// adjust the event key for MOSFET Vth drop, and union the slave net into
// the master's virtual-net root.
package propagator

import (
	"github.com/rs/zerolog"

	"github.com/cvcgo/cvc/internal/consts"
	"github.com/cvcgo/cvc/pkg/circuit"
	"github.com/cvcgo/cvc/pkg/connection"
	"github.com/cvcgo/cvc/pkg/ids"
	"github.com/cvcgo/cvc/pkg/power"
	"github.com/cvcgo/cvc/pkg/queue"
	"github.com/cvcgo/cvc/pkg/vnet"
)

// Models is the subset of model-file data the propagator needs per device:
// threshold voltage lookups for the Vth-drop rule.
type Models interface {
	power.Models
}

// Propagator owns one run's circuit, power table, the three virtual-net
// vectors, and the three event queues, and drives all three propagation
// passes plus the second fixed-Sim Min/Max pass.
type Propagator struct {
	Circuit *circuit.Circuit
	Powers  *power.Table
	Models  Models

	VNets  [3]*vnet.Vector // indexed by power.Interpretation
	Queues [3]*queue.Queue

	// LeakVoltageSet is false during the first Min/Max pass and true
	// during the second (post-Sim) pass, when most key adjustments are
	// disabled.
	LeakVoltageSet bool

	Log zerolog.Logger

	// stamp is the shared generation counter handed to vnet.Set/Restore,
	// independent of event-queue key ordering (vnetStamp, shortnets.go).
	stamp uint64

	// Conflicts accumulates every recorded voltage conflict across all
	// passes, for pkg/errcheck to report (conflict.go).
	Conflicts []Conflict

	// Leaks accumulates every already-known, unrelated-power short found
	// instead of propagated (leak.go).
	Leaks []Leak

	// ChainOverflows accumulates every virtual-net walk that exceeded the
	// chain-length cap, for pkg/errcheck to report.
	ChainOverflows []ChainOverflow

	chainOverflowWarned bool
}

// ChainOverflow records that a virtual-net walk exceeded the chain-length
// cap while resolving a device's terminal; the net it hit is no longer
// trustworthy and is treated as terminal instead of aborting the pass.
type ChainOverflow struct {
	Interpretation power.Interpretation
	Device         ids.DeviceId
	Net            ids.NetId
}

// New builds a Propagator over c, wired to powers/models, sizing its
// virtual-net vectors and event queues for c's net/device counts.
func New(c *circuit.Circuit, powers *power.Table, models Models, log zerolog.Logger) *Propagator {
	numNets := len(c.Nets)
	numDevices := len(c.Devices)
	p := &Propagator{
		Circuit: c,
		Powers:  powers,
		Models:  models,
		Log:     log,
	}
	for _, which := range []power.Interpretation{power.Min, power.Sim, power.Max} {
		p.VNets[which] = vnet.New(numNets)
		p.Queues[which] = queue.New(queueType(which), numDevices)
	}
	return p
}

func queueType(which power.Interpretation) queue.Type {
	switch which {
	case power.Min:
		return queue.MinQueue
	case power.Max:
		return queue.MaxQueue
	default:
		return queue.SimQueue
	}
}

func activeBitFor(which power.Interpretation) power.ActiveBit {
	if which == power.Max {
		return power.MaxActive
	}
	return power.MinActive // Sim has no dedicated active bit; treated like Min
}

func inactiveStatus(which power.Interpretation) circuit.DeviceStatus {
	switch which {
	case power.Min:
		return circuit.MinQueueInactive
	case power.Max:
		return circuit.MaxQueueInactive
	default:
		return circuit.SimQueueInactive
	}
}

// Seed enqueues every device touching a net whose Power has a known voltage
// for which (and the matching active bit set, for Min/Max).
func (p *Propagator) Seed(which power.Interpretation) {
	bit := activeBitFor(which)
	for _, n := range p.Circuit.Nets {
		root := p.Circuit.ResolveEquivalent(n.Id)
		pw := p.Powers.Get(root)
		if pw == nil {
			continue
		}
		if which != power.Sim && !pw.HasActive(bit) {
			continue
		}
		v := pw.Voltage(which)
		if !v.IsKnown() {
			continue
		}
		for _, devId := range p.Circuit.DevicesOnNet(n.Id) {
			if p.Queues[which].Queued(devId) {
				continue
			}
			q := p.Queues[which]
			seedKey := q.SimKey(queue.EventKey(v), p.Circuit.Device(devId).Resistance)
			q.AddEvent(seedKey, devId, queue.MainBack)
		}
	}
}

// Run drains which's queue until empty, calling step on every dequeued
// device. A pass that hasn't settled after
// consts.MaxPropagationSteps dequeues is abandoned rather than run to
// exhaustion — almost always a malformed chain, not a legitimately long
// one, and continuing would produce roots that look resolved but aren't
// trustworthy.
func (p *Propagator) Run(which power.Interpretation) {
	q := p.Queues[which]
	steps := 0
	for !q.Empty() {
		if steps >= consts.MaxPropagationSteps {
			p.Log.Warn().Str("interpretation", which.String()).Int("steps", steps).
				Msg("propagation step limit reached, abandoning remainder of pass")
			break
		}
		key := q.QueueTime()
		devId := q.Pop()
		p.stepRecovering(which, devId, key)
		steps++
	}
	p.refreshRoots(which)
}

// refreshRoots walks every net once so cached roots are warm for the error
// checker. Each net's resolve is individually recovered from
// vnet.ChainOverflow so one corrupted chain doesn't stop the remaining nets
// from being warmed.
func (p *Propagator) refreshRoots(which power.Interpretation) {
	vn := p.VNets[which]
	for i := 0; i < vn.Len(); i++ {
		p.resolveRecovering(which, vn, ids.NetId(i))
	}
}

func (p *Propagator) resolveRecovering(which power.Interpretation, vn *vnet.Vector, net ids.NetId) {
	defer func() {
		r := recover()
		if r == nil {
			return
		}
		overflow, ok := r.(*vnet.ChainOverflow)
		if !ok {
			panic(r)
		}
		p.ChainOverflows = append(p.ChainOverflows, ChainOverflow{Interpretation: which, Device: ids.UnknownDevice, Net: overflow.NetId})
		if p.chainOverflowWarned {
			return
		}
		p.chainOverflowWarned = true
		p.Log.Warn().
			Str("interpretation", which.String()).
			Uint32("net", uint32(overflow.NetId)).
			Msg("virtual-net chain length exceeded, treating net as terminal")
	}()
	vn.Resolve(net)
}

// lookupPower prefers a Power bound directly to net (a clamped/calculated
// voltage specific to this net, shortnets.go) and falls back to whatever is
// bound at its virtual-net root (the ordinary case: net has fully merged
// into an electrically-identical group and shares the group's voltage).
func (p *Propagator) lookupPower(net, root ids.NetId) *power.Power {
	if pw := p.Powers.Get(net); pw != nil {
		return pw
	}
	return p.Powers.Get(root)
}

func (p *Propagator) snapshot(which power.Interpretation, d *circuit.Device) *connection.Connection {
	c := &connection.Connection{Device: d, DeviceId: d.Id, Resistance: d.Resistance}
	c.Net[connection.Source] = d.Source
	c.Net[connection.Gate] = d.Gate
	c.Net[connection.Drain] = d.Drain
	c.Net[connection.Bulk] = d.Bulk
	vn := p.VNets[which]
	for _, term := range []connection.Terminal{connection.Source, connection.Gate, connection.Drain, connection.Bulk} {
		net := c.Net[term]
		if net == ids.UnknownNet {
			c.Voltage[term] = ids.UnknownVoltage
			continue
		}
		root, r := vn.Resolve(net)
		c.Root[term] = root
		c.RootResistance[term] = r
		pw := p.lookupPower(net, root)
		c.Power[term] = pw
		if pw != nil {
			c.Voltage[term] = pw.Voltage(which)
		} else {
			c.Voltage[term] = ids.UnknownVoltage
		}
	}
	return c
}

// stepRecovering calls step, recovering a vnet.ChainOverflow panic: the net
// at the far end of an over-length chain can't be trusted, so it's recorded
// as a one-shot Warn finding and treated terminal rather than crashing the
// whole pass.
func (p *Propagator) stepRecovering(which power.Interpretation, devId ids.DeviceId, key queue.EventKey) {
	defer func() {
		r := recover()
		if r == nil {
			return
		}
		overflow, ok := r.(*vnet.ChainOverflow)
		if !ok {
			panic(r)
		}
		p.ChainOverflows = append(p.ChainOverflows, ChainOverflow{Interpretation: which, Device: devId, Net: overflow.NetId})
		if p.chainOverflowWarned {
			return
		}
		p.chainOverflowWarned = true
		p.Log.Warn().
			Str("interpretation", which.String()).
			Uint32("device", uint32(devId)).
			Uint32("net", uint32(overflow.NetId)).
			Msg("virtual-net chain length exceeded, treating net as terminal")
	}()
	p.step(which, devId, key)
}

// step processes one dequeued device: picks a propagation direction across
// its source/drain, checks for leaks and voltage conflicts, then unions the
// slave terminal into the master's virtual-net root and requeues its
// neighbors.
func (p *Propagator) step(which power.Interpretation, devId ids.DeviceId, key queue.EventKey) {
	d := p.Circuit.Device(devId)
	if d == nil {
		return
	}
	conn := p.snapshot(which, d)

	if p.VNets[which].IsAlreadyShorted(conn.Root[connection.Source], conn.Root[connection.Drain]) {
		d.SetStatus(inactiveStatus(which))
		return
	}

	master, slave, ok := p.pickDirection(which, conn)
	if !ok {
		return
	}

	if p.checkLeak(which, d, conn, master, slave) {
		return
	}

	adjKey, position := p.adjustKey(which, d, conn, key, master, slave)
	q := p.Queues[which]
	if position == queue.Skip {
		return
	}
	if q.Later(adjKey) {
		q.AddEvent(adjKey, devId, position)
		return
	}

	if p.checkVoltageConflict(which, d, conn, slave, ids.Voltage(adjKey)) {
		return
	}

	p.shortNets(which, d, conn, master, slave, adjKey)
	p.tryMosDiodeTrick(which, d, conn)

	for _, nextDev := range p.Circuit.DevicesOnNet(conn.Net[slave]) {
		if nextDev == devId || q.Queued(nextDev) {
			continue
		}
		nextKey := q.SimKey(adjKey, p.Circuit.Device(nextDev).Resistance)
		q.AddEvent(nextKey, nextDev, queue.MainBack)
	}

	p.Log.Debug().
		Str("queue", which.String()).
		Uint32("device", uint32(devId)).
		Int64("key", int64(adjKey)).
		Msg("dequeued")
}

// pickDirection chooses which terminal is the master (known) and which is
// the slave (about to receive a voltage): the unknown one is always the
// slave; if both are known, Min takes the lower-voltage terminal as master
// and Max the higher-voltage one.
func (p *Propagator) pickDirection(which power.Interpretation, conn *connection.Connection) (master, slave connection.Terminal, ok bool) {
	srcKnown := conn.Voltage[connection.Source].IsKnown()
	drnKnown := conn.Voltage[connection.Drain].IsKnown()
	switch {
	case srcKnown && !drnKnown:
		return connection.Source, connection.Drain, true
	case drnKnown && !srcKnown:
		return connection.Drain, connection.Source, true
	case srcKnown && drnKnown:
		sv, dv := conn.Voltage[connection.Source], conn.Voltage[connection.Drain]
		if which == power.Max {
			if sv < dv {
				return connection.Drain, connection.Source, true
			}
			return connection.Source, connection.Drain, true
		}
		if sv > dv {
			return connection.Drain, connection.Source, true
		}
		return connection.Source, connection.Drain, true
	default:
		return 0, 0, false
	}
}
