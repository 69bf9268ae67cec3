// Package ids defines the flat, 32-bit identifier and fixed-point scalar
// types shared across the cvc core: net/device/instance ids, signed
// millivolt voltages, and saturating ohm resistances.
package ids

import "math"

// NetId identifies a net in the flattened netlist.
type NetId uint32

// DeviceId identifies a device (MOSFET, resistor, diode, ...).
type DeviceId uint32

// InstanceId identifies a subcircuit instance, used only for error grouping.
type InstanceId uint32

// UnknownNet, UnknownDevice, UnknownInstance are the all-ones sentinels.
const (
	UnknownNet      NetId      = math.MaxUint32
	UnknownDevice   DeviceId   = math.MaxUint32
	UnknownInstance InstanceId = math.MaxUint32
)

// Voltage is a signed quantity in millivolts (scale = 1000).
type Voltage int32

// VoltageScale converts a volt float to the Voltage fixed-point unit.
const VoltageScale = 1000

// UnknownVoltage marks "not yet determined" for a terminal or Power field.
const UnknownVoltage Voltage = math.MinInt32

// IsKnown reports whether v has been assigned a real voltage.
func (v Voltage) IsKnown() bool { return v != UnknownVoltage }

// FromVolts builds a Voltage from a float volts value.
func FromVolts(volts float64) Voltage {
	return Voltage(math.Round(volts * VoltageScale))
}

// Volts returns the floating-point volts value, or NaN if unknown.
func (v Voltage) Volts() float64 {
	if !v.IsKnown() {
		return math.NaN()
	}
	return float64(v) / VoltageScale
}

// Resistance is an unsigned ohm value; arithmetic saturates at MaxResistance.
type Resistance uint32

const (
	// InfiniteResistance is the all-ones sentinel for "no path".
	InfiniteResistance Resistance = math.MaxUint32
	// MaxResistance is the saturation ceiling for finite resistance sums;
	// anything at or above this is treated as effectively open and is
	// recorded once per net (vnet.Vector.OverflowWarned).
	MaxResistance Resistance = math.MaxUint32 - 1
)

// AddResistance adds b into *a, saturating at MaxResistance. It returns true
// the first time saturation actually clamped the sum (pkg/vnet records this
// per net in Vector.OverflowWarned; no warning is logged).
func AddResistance(a *Resistance, b Resistance) bool {
	if *a == InfiniteResistance || b == InfiniteResistance {
		*a = InfiniteResistance
		return false
	}
	sum := uint64(*a) + uint64(b)
	if sum >= uint64(MaxResistance) {
		overflowed := *a < MaxResistance
		*a = MaxResistance
		return overflowed
	}
	*a = Resistance(sum)
	return false
}

// ModelType enumerates the device kinds a model record can declare.
type ModelType int

const (
	NMOS ModelType = iota
	PMOS
	LDDN
	LDDP
	RESISTOR
	CAPACITOR
	DIODE
	FUSE_ON
	FUSE_OFF
	SWITCH_ON
	SWITCH_OFF
	BIPOLAR
)

func (m ModelType) String() string {
	switch m {
	case NMOS:
		return "NMOS"
	case PMOS:
		return "PMOS"
	case LDDN:
		return "LDDN"
	case LDDP:
		return "LDDP"
	case RESISTOR:
		return "RESISTOR"
	case CAPACITOR:
		return "CAPACITOR"
	case DIODE:
		return "DIODE"
	case FUSE_ON:
		return "FUSE_ON"
	case FUSE_OFF:
		return "FUSE_OFF"
	case SWITCH_ON:
		return "SWITCH_ON"
	case SWITCH_OFF:
		return "SWITCH_OFF"
	case BIPOLAR:
		return "BIPOLAR"
	default:
		return "UNKNOWN"
	}
}

// IsMos reports whether m is one of the four MOSFET-like kinds.
func (m ModelType) IsMos() bool {
	switch m {
	case NMOS, PMOS, LDDN, LDDP:
		return true
	default:
		return false
	}
}

// IsNmosLike reports whether m carries NMOS polarity (NMOS or LDDN).
func (m ModelType) IsNmosLike() bool { return m == NMOS || m == LDDN }

// IsPmosLike reports whether m carries PMOS polarity (PMOS or LDDP).
func (m ModelType) IsPmosLike() bool { return m == PMOS || m == LDDP }

// IsAlwaysOnSwitch reports whether m is consumed by makeEquivalent as an
// always-on switch rather than a propagated device.
func (m ModelType) IsAlwaysOnSwitch() bool { return m == SWITCH_ON }

// IsFuse reports whether m is one of the two fuse kinds.
func (m ModelType) IsFuse() bool { return m == FUSE_ON || m == FUSE_OFF }
