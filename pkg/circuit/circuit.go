// Package circuit holds the flat, slice-indexed representation of a
// flattened netlist: one Net per node, one Device per transistor/resistor/
// diode/fuse/switch, both addressed by the ids.NetId/ids.DeviceId they were
// assigned at load time. The layout follows a Circuit/Device-by-index
// style generalized from SPICE element stamping to ERC bookkeeping.
package circuit

import (
	"strings"

	"github.com/cvcgo/cvc/pkg/ids"
)

// NetStatus bits record what an ERC pass still owes a given net.
type NetStatus uint16

const (
	MinPower NetStatus = 1 << iota
	MaxPower
	SimPower
	NeedsMinCheck
	NeedsMaxCheck
	NeedsMinConnection
	NeedsMaxConnection
	Analog
)

// Net is one electrical node of the flattened netlist.
type Net struct {
	Id   ids.NetId
	Name string

	ConnectionCount ConnectionCount
	Status          NetStatus

	// EquivalentNet is the canonical representative for a group of nets
	// joined solely by always-on switches (makeEquivalent); it is
	// UnknownNet until the net has been folded into a group.
	EquivalentNet ids.NetId

	// InverterOf/InverterPolarityHigh record that this net is the output of a
	// simple inverter driven by InverterOf, used by AnnotateLatches and
	// LogicRelation.
	InverterOf      ids.NetId
	InverterPolarityHigh bool // true: this net is high when InverterOf is low

	// IsLatchNode marks one side of a cross-coupled inverter pair —
	// InverterOf forming a 2-cycle — set by AnnotateLatches.
	IsLatchNode bool
}

// NewNet builds a Net with no connections yet, its own equivalence class.
func NewNet(id ids.NetId, name string) *Net {
	return &Net{
		Id:            id,
		Name:          name,
		EquivalentNet: id,
		InverterOf:    ids.UnknownNet,
	}
}

func (n *Net) HasStatus(bit NetStatus) bool  { return n.Status&bit != 0 }
func (n *Net) SetStatus(bit NetStatus)       { n.Status |= bit }
func (n *Net) ClearStatus(bit NetStatus)     { n.Status &^= bit }

// DeviceStatus bits track which queues still owe this device an event.
type DeviceStatus uint16

const (
	MinQueuePending DeviceStatus = 1 << iota
	MaxQueuePending
	SimQueuePending
	MinQueueInactive
	MaxQueueInactive
	SimQueueInactive
)

// Device is one transistor/resistor/diode/fuse/switch, addressed by the
// four terminal nets it was wired to at load time (a two-terminal device
// built directly may pass UnknownNet as its gate; pkg/netlist always
// assigns the line's gate net).
type Device struct {
	Id ids.DeviceId

	Name  string
	Model ids.ModelType

	Source ids.NetId
	Gate   ids.NetId
	Drain  ids.NetId
	Bulk   ids.NetId

	Resistance ids.Resistance
	ModelName  string // for Vth[modelName] lookups in power expressions

	Status DeviceStatus

	// InstanceOf groups devices by the subcircuit instance they came from,
	// for error-report grouping only.
	InstanceOf ids.InstanceId
}

func NewDevice(id ids.DeviceId, name string, model ids.ModelType, source, gate, drain, bulk ids.NetId) *Device {
	return &Device{
		Id:     id,
		Name:   name,
		Model:  model,
		Source: source,
		Gate:   gate,
		Drain:  drain,
		Bulk:   bulk,

		InstanceOf: ids.UnknownInstance,
	}
}

func (d *Device) HasStatus(bit DeviceStatus) bool { return d.Status&bit != 0 }
func (d *Device) SetStatus(bit DeviceStatus)      { d.Status |= bit }
func (d *Device) ClearStatus(bit DeviceStatus)    { d.Status &^= bit }

// IsMosTerminal reports whether netId is one of d's MOS-relevant terminals
// (source, gate, drain; bulk is handled separately by the bulk checks).
func (d *Device) IsMosTerminal(netId ids.NetId) bool {
	return netId == d.Source || netId == d.Gate || netId == d.Drain
}

// Circuit owns every Net and Device of one flattened netlist.
type Circuit struct {
	Name string

	Nets    []*Net
	Devices []*Device

	byName map[string]ids.NetId

	sourceDevices map[ids.NetId][]ids.DeviceId
	gateDevices   map[ids.NetId][]ids.DeviceId
	drainDevices  map[ids.NetId][]ids.DeviceId

	// SubcircuitOf maps an instance to the parent instance that
	// instantiated it, for error-report path grouping only — no
	// flattening is ever re-derived from it.
	SubcircuitOf map[ids.InstanceId]ids.InstanceId

	instanceNames  []string
	instanceByPath map[string]ids.InstanceId
}

func New(name string) *Circuit {
	return &Circuit{
		Name:           name,
		byName:         make(map[string]ids.NetId),
		SubcircuitOf:   make(map[ids.InstanceId]ids.InstanceId),
		instanceByPath: make(map[string]ids.InstanceId),
	}
}

// Instance interns a dot-separated hierarchical instance path (the SPICE
// "X1.X2" subcircuit-instantiation convention) and returns its id,
// registering every ancestor along the way into SubcircuitOf. An empty path
// is the top-level circuit itself and returns UnknownInstance.
func (c *Circuit) Instance(path string) ids.InstanceId {
	if path == "" {
		return ids.UnknownInstance
	}
	if id, ok := c.instanceByPath[path]; ok {
		return id
	}
	parent := ids.UnknownInstance
	if i := strings.LastIndex(path, "."); i >= 0 {
		parent = c.Instance(path[:i])
	}
	id := ids.InstanceId(len(c.instanceNames))
	c.instanceNames = append(c.instanceNames, path)
	c.instanceByPath[path] = id
	c.SubcircuitOf[id] = parent
	return id
}

// InstanceName returns the hierarchical path an instance id was interned
// from, or "" for UnknownInstance or an id this circuit never registered.
func (c *Circuit) InstanceName(id ids.InstanceId) string {
	if id == ids.UnknownInstance || int(id) >= len(c.instanceNames) {
		return ""
	}
	return c.instanceNames[id]
}

// AddNet registers a new net, assigning it the next NetId.
func (c *Circuit) AddNet(name string) *Net {
	if id, ok := c.byName[name]; ok {
		return c.Nets[id]
	}
	id := ids.NetId(len(c.Nets))
	n := NewNet(id, name)
	c.Nets = append(c.Nets, n)
	c.byName[name] = id
	return n
}

// NetByName looks up a net's id; UnknownNet if it hasn't been registered.
func (c *Circuit) NetByName(name string) ids.NetId {
	if id, ok := c.byName[name]; ok {
		return id
	}
	return ids.UnknownNet
}

// AddDevice registers a new device, assigning it the next DeviceId, and
// updates the relevant nets' ConnectionCount tallies and adjacency lists.
func (c *Circuit) AddDevice(name string, model ids.ModelType, source, gate, drain, bulk ids.NetId, resistance ids.Resistance) *Device {
	id := ids.DeviceId(len(c.Devices))
	d := NewDevice(id, name, model, source, gate, drain, bulk)
	d.Resistance = resistance
	c.Devices = append(c.Devices, d)
	c.tallyConnections(d)
	c.indexAdjacency(d)
	return d
}

// adjacency records, per net, the devices whose source/gate/drain terminal
// lands there — the equivalent of the original's firstSource_v/nextSource_v
// intrusive lists (original_source/src/CCvcDb.hh), built here as plain
// slices since these circuits are small enough that a flat index beats
// hand-rolled intrusive lists for clarity.
func (c *Circuit) indexAdjacency(d *Device) {
	if c.sourceDevices == nil {
		c.sourceDevices = make(map[ids.NetId][]ids.DeviceId)
		c.gateDevices = make(map[ids.NetId][]ids.DeviceId)
		c.drainDevices = make(map[ids.NetId][]ids.DeviceId)
	}
	if d.Source != ids.UnknownNet {
		c.sourceDevices[d.Source] = append(c.sourceDevices[d.Source], d.Id)
	}
	if d.Gate != ids.UnknownNet {
		c.gateDevices[d.Gate] = append(c.gateDevices[d.Gate], d.Id)
	}
	if d.Drain != ids.UnknownNet {
		c.drainDevices[d.Drain] = append(c.drainDevices[d.Drain], d.Id)
	}
}

// DevicesOnNet returns every device with a source, gate, or drain terminal
// on net, used to find the propagator's re-enqueue set after a short.
func (c *Circuit) DevicesOnNet(net ids.NetId) []ids.DeviceId {
	out := append([]ids.DeviceId{}, c.sourceDevices[net]...)
	out = append(out, c.gateDevices[net]...)
	out = append(out, c.drainDevices[net]...)
	return out
}

// Net returns the net for id, or nil if out of range.
func (c *Circuit) Net(id ids.NetId) *Net {
	if int(id) >= len(c.Nets) {
		return nil
	}
	return c.Nets[id]
}

// Device returns the device for id, or nil if out of range.
func (c *Circuit) Device(id ids.DeviceId) *Device {
	if int(id) >= len(c.Devices) {
		return nil
	}
	return c.Devices[id]
}

// makeEquivalent folds b's equivalence class into a's, used only for
// always-on switches (ids.ModelType.IsAlwaysOnSwitch), which are never
// queued for propagation and instead merge their two nets permanently at
// load time.
func (c *Circuit) makeEquivalent(a, b ids.NetId) {
	rootA := c.equivalentRoot(a)
	rootB := c.equivalentRoot(b)
	if rootA == rootB {
		return
	}
	c.Nets[rootB].EquivalentNet = rootA
}

func (c *Circuit) equivalentRoot(n ids.NetId) ids.NetId {
	for c.Nets[n].EquivalentNet != n {
		n = c.Nets[n].EquivalentNet
	}
	return n
}

// ResolveEquivalent returns the canonical net for n, following any
// always-on-switch equivalence chain built at load time.
func (c *Circuit) ResolveEquivalent(n ids.NetId) ids.NetId {
	return c.equivalentRoot(n)
}

// FoldAlwaysOnSwitches walks every device once, merging the source/drain
// equivalence classes of always-on switches. It must run once,
// after all devices are loaded and before any propagation pass begins.
func (c *Circuit) FoldAlwaysOnSwitches() {
	for _, d := range c.Devices {
		if d.Model.IsAlwaysOnSwitch() {
			c.makeEquivalent(d.Source, d.Drain)
		}
	}
}
