package circuit

import "github.com/cvcgo/cvc/pkg/ids"

// sourceDrainTypeBit flags which model types have a source/drain terminal
// landing on a net, used by the trivial-inverter and latch heuristics
// (original_source/src/CCvcDb.hh connectionCount_v, "sourceDrainType").
type sourceDrainTypeBit uint16

const (
	nmosBit sourceDrainTypeBit = 1 << iota
	pmosBit
	resistorBit
	otherBit
)

func sourceDrainTypeOf(m ids.ModelType) sourceDrainTypeBit {
	switch {
	case m.IsNmosLike():
		return nmosBit
	case m.IsPmosLike():
		return pmosBit
	case m == ids.RESISTOR:
		return resistorBit
	default:
		return otherBit
	}
}

// nmosPmos is the combination SetSCRCPower/inverter detection looks for: a
// net driven by exactly one NMOS and one PMOS source/drain, the classic CMOS
// push-pull output (original_source/src/CCvcDb_init.cc: "!= NMOS_PMOS").
const nmosPmos = nmosBit | pmosBit

// ConnectionCount tallies how many devices connect to a net through each
// terminal role, used by the trivial-inverter, SCRC, and latch-detection
// heuristics instead of by the propagator itself.
type ConnectionCount struct {
	GateCount   int
	SourceCount int
	DrainCount  int
	BulkCount   int

	sourceDrainType sourceDrainTypeBit
}

// SourceDrainCount is the total number of devices with a source or drain
// terminal on this net.
func (c ConnectionCount) SourceDrainCount() int { return c.SourceCount + c.DrainCount }

// IsSimpleCmosOutput reports whether the net is driven by source/drain
// terminals of exactly the NMOS+PMOS combination (no other device types),
// the precondition for both the trivial-inverter and latch heuristics.
func (c ConnectionCount) IsSimpleCmosOutput() bool {
	return c.sourceDrainType == nmosPmos
}

func (c *Circuit) tallyConnections(d *Device) {
	if d.Gate != ids.UnknownNet {
		c.Nets[d.Gate].ConnectionCount.GateCount++
	}
	if d.Bulk != ids.UnknownNet {
		c.Nets[d.Bulk].ConnectionCount.BulkCount++
	}
	bit := sourceDrainTypeOf(d.Model)
	if d.Source != ids.UnknownNet {
		sn := &c.Nets[d.Source].ConnectionCount
		sn.SourceCount++
		sn.sourceDrainType |= bit
	}
	if d.Drain != ids.UnknownNet {
		dn := &c.Nets[d.Drain].ConnectionCount
		dn.DrainCount++
		dn.sourceDrainType |= bit
	}
}

// FindTrivialInverter reports whether outputNet looks like the output of a
// plain CMOS inverter driven by inputNet: exactly one NMOS and one PMOS pull
// the net, both gated by the same input. The nets on the devices' other
// source/drain terminals are not checked.
func (c *Circuit) FindTrivialInverter(outputNet ids.NetId) (inputNet ids.NetId, ok bool) {
	n := c.Net(outputNet)
	if n == nil || !n.ConnectionCount.IsSimpleCmosOutput() || n.ConnectionCount.SourceDrainCount() > 2 {
		return ids.UnknownNet, false
	}
	var nmosGate, pmosGate ids.NetId = ids.UnknownNet, ids.UnknownNet
	sawNmos, sawPmos := false, false
	for _, d := range c.Devices {
		if d.Drain != outputNet && d.Source != outputNet {
			continue
		}
		switch {
		case d.Model.IsNmosLike():
			if sawNmos {
				return ids.UnknownNet, false
			}
			sawNmos = true
			nmosGate = d.Gate
		case d.Model.IsPmosLike():
			if sawPmos {
				return ids.UnknownNet, false
			}
			sawPmos = true
			pmosGate = d.Gate
		default:
			return ids.UnknownNet, false
		}
	}
	if !sawNmos || !sawPmos || nmosGate == ids.UnknownNet || nmosGate != pmosGate {
		return ids.UnknownNet, false
	}
	return nmosGate, true
}
