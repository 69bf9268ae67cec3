// Package power implements the Power record, the per-net power/ground
// table, and the family/permit/prohibit relation model.
package power

import (
	"github.com/cvcgo/cvc/pkg/ids"
)

// TypeBit indexes the type bitset a Power record carries.
type TypeBit int

const (
	PowerBit TypeBit = iota
	InputBit
	HizBit
	ResistorBit
	ReferenceBit
	MinCalculatedBit
	SimCalculatedBit
	MaxCalculatedBit
	numTypeBits
)

// ActiveBit indexes the active bitset.
type ActiveBit int

const (
	MinActive ActiveBit = iota
	MaxActive
	MinIgnore
	MaxIgnore
	numActiveBits
)

// CalculationType records how a calculated voltage was derived.
type CalculationType int

const (
	UnknownCalculation CalculationType = iota
	NoCalculation
	UpCalculation
	DownCalculation
	ResistorCalculation
	MosDiodeCalculation
	EstimatedCalculation
	AverageCalculation // SCRC reference-net voltage: mean of two source rails
)

// bitset is a tiny fixed-size boolean set, matching the small-enum-as-int
// style used elsewhere (device.SourceType, device.AnalysisMode) rather
// than pulling in a general bitset package for eight flags.
type bitset uint16

func (b bitset) get(i int) bool   { return b&(1<<uint(i)) != 0 }
func (b *bitset) set(i int)       { *b |= 1 << uint(i) }
func (b *bitset) clear(i int)     { *b &^= 1 << uint(i) }

// Power is one electrically-distinct voltage source or calculated net
// voltage.
type Power struct {
	PowerId ids.NetId // unique per power, used as the leak-map key half

	Signal string
	Alias  string

	Type   bitset
	Active bitset

	MinVoltage ids.Voltage
	SimVoltage ids.Voltage
	MaxVoltage ids.Voltage

	NetId ids.NetId

	DefaultMinNet ids.NetId
	DefaultSimNet ids.NetId
	DefaultMaxNet ids.NetId

	ExpectedMin string
	ExpectedSim string
	ExpectedMax string

	Family           string
	RelativeSet      map[string]bool
	RelativeFriendly bool // true => RelativeSet is a permit (friends) set

	MinCalculationType CalculationType
	SimCalculationType CalculationType
	MaxCalculationType CalculationType
}

// New builds a declared (non-calculated) Power for netId.
func New(netId ids.NetId, signal string) *Power {
	return &Power{
		PowerId:       netId,
		Signal:        signal,
		NetId:         netId,
		MinVoltage:    ids.UnknownVoltage,
		SimVoltage:    ids.UnknownVoltage,
		MaxVoltage:    ids.UnknownVoltage,
		DefaultMinNet: ids.UnknownNet,
		DefaultSimNet: ids.UnknownNet,
		DefaultMaxNet: ids.UnknownNet,
		RelativeSet:   make(map[string]bool),
	}
}

// NewCalculated builds a calculated Power attached to netId, deriving from
// baseNet under the given interpretation.
func NewCalculated(netId ids.NetId, which Interpretation, voltage ids.Voltage, baseNet ids.NetId, calc CalculationType) *Power {
	p := New(netId, "")
	p.SetVoltage(which, voltage)
	p.SetDefaultNet(which, baseNet)
	p.SetCalculationType(which, calc)
	switch which {
	case Min:
		p.Type.set(int(MinCalculatedBit))
	case Sim:
		p.Type.set(int(SimCalculatedBit))
	case Max:
		p.Type.set(int(MaxCalculatedBit))
	}
	return p
}

// Interpretation selects which of the three propagation passes a value or
// a virtual-net vector belongs to.
type Interpretation int

const (
	Min Interpretation = iota
	Sim
	Max
)

func (w Interpretation) String() string {
	switch w {
	case Min:
		return "Min"
	case Sim:
		return "Sim"
	case Max:
		return "Max"
	default:
		return "?"
	}
}

// HasType reports whether bit is set in p.Type.
func (p *Power) HasType(bit TypeBit) bool { return p.Type.get(int(bit)) }

// SetType sets bit in p.Type.
func (p *Power) SetType(bit TypeBit) { p.Type.set(int(bit)) }

// HasActive reports whether bit is set in p.Active.
func (p *Power) HasActive(bit ActiveBit) bool { return p.Active.get(int(bit)) }

// SetActive sets bit in p.Active.
func (p *Power) SetActive(bit ActiveBit) { p.Active.set(int(bit)) }

// IsExternalPower reports whether p is a declared power or input
// (IsExternalPower_ macro, original_source/src/CPower.hh).
func (p *Power) IsExternalPower() bool {
	return p.HasType(PowerBit) || p.HasType(InputBit)
}

// IsPriorityPower additionally admits resistor-type powers.
func (p *Power) IsPriorityPower() bool {
	return p.HasType(PowerBit) || p.HasType(InputBit) || p.HasType(ResistorBit)
}

// IsCalculated reports whether any of the three calculated bits are set.
func (p *Power) IsCalculated() bool {
	return p.HasType(MinCalculatedBit) || p.HasType(SimCalculatedBit) || p.HasType(MaxCalculatedBit)
}

// Voltage returns the voltage for the given interpretation.
func (p *Power) Voltage(which Interpretation) ids.Voltage {
	switch which {
	case Min:
		return p.MinVoltage
	case Max:
		return p.MaxVoltage
	default:
		return p.SimVoltage
	}
}

// SetVoltage sets the voltage for the given interpretation.
func (p *Power) SetVoltage(which Interpretation, v ids.Voltage) {
	switch which {
	case Min:
		p.MinVoltage = v
	case Max:
		p.MaxVoltage = v
	default:
		p.SimVoltage = v
	}
}

// DefaultNet returns the default-base-net back-reference for which.
func (p *Power) DefaultNet(which Interpretation) ids.NetId {
	switch which {
	case Min:
		return p.DefaultMinNet
	case Max:
		return p.DefaultMaxNet
	default:
		return p.DefaultSimNet
	}
}

// SetDefaultNet sets the default-base-net back-reference for which.
func (p *Power) SetDefaultNet(which Interpretation, net ids.NetId) {
	switch which {
	case Min:
		p.DefaultMinNet = net
	case Max:
		p.DefaultMaxNet = net
	default:
		p.DefaultSimNet = net
	}
}

// GetCalculationType returns the calculation-type tag for which.
func (p *Power) GetCalculationType(which Interpretation) CalculationType {
	switch which {
	case Min:
		return p.MinCalculationType
	case Max:
		return p.MaxCalculationType
	default:
		return p.SimCalculationType
	}
}

// SetCalculationType sets the calculation-type tag for which.
func (p *Power) SetCalculationType(which Interpretation, c CalculationType) {
	switch which {
	case Min:
		p.MinCalculationType = c
	case Max:
		p.MaxCalculationType = c
	default:
		p.SimCalculationType = c
	}
}

// IsSamePower reports whether p and other are literally the same voltage
// source (same signal, or aliased to each other).
func (p *Power) IsSamePower(other *Power) bool {
	if p == other {
		return true
	}
	if other == nil {
		return false
	}
	if p.Signal != "" && (p.Signal == other.Signal || p.Signal == other.Alias) {
		return true
	}
	if p.Alias != "" && (p.Alias == other.Signal || p.Alias == other.Alias) {
		return true
	}
	return false
}

// member implements the CPower.cc "member" helper: other is a declared
// relative of rec iff its signal or alias is named in rec's relative set,
// or the two relative sets intersect.
func member(rec, other *Power) bool {
	if rec.RelativeSet[other.Signal] || (other.Alias != "" && rec.RelativeSet[other.Alias]) {
		return true
	}
	for name := range rec.RelativeSet {
		if other.RelativeSet[name] {
			return true
		}
	}
	return false
}

func hasFamily(p *Power) bool { return len(p.RelativeSet) > 0 }

// Relates decides whether a and b may legally share a net, applying a
// friend/enemy combination table over each side's declared relation.
// defaultResult is used when neither record declares a family relation to
// the other.
func Relates(a, b *Power, defaultResult bool) bool {
	aHas, bHas := hasFamily(a), hasFamily(b)
	switch {
	case aHas && bHas:
		if a.RelativeFriendly && b.RelativeFriendly { // F,F
			return member(a, b) || member(b, a)
		}
		if a.RelativeFriendly && !b.RelativeFriendly { // F,E
			if member(b, a) {
				return false
			}
			if member(a, b) {
				return true
			}
			return defaultResult
		}
		if !a.RelativeFriendly && b.RelativeFriendly { // E,F
			if member(a, b) {
				return false
			}
			if member(b, a) {
				return true
			}
			return defaultResult
		}
		// E,E
		return !(member(a, b) || member(b, a))
	case aHas && !bHas:
		if a.RelativeFriendly {
			return member(a, b)
		}
		return !member(a, b)
	case !aHas && bHas:
		if b.RelativeFriendly {
			return member(b, a)
		}
		return !member(b, a)
	default:
		return defaultResult
	}
}
