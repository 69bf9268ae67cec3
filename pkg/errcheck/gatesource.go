package errcheck

import (
	"fmt"

	"github.com/cvcgo/cvc/pkg/circuit"
	"github.com/cvcgo/cvc/pkg/connection"
	"github.com/cvcgo/cvc/pkg/power"
	"github.com/cvcgo/cvc/pkg/propagator"
)

// CheckGateVsSource flags MOSFETs whose gate and source sit on unrelated
// powers without enough margin to guarantee the device stays off. Grounded
// on original_source/src/CCvcDb_error.cc's FindNmosGateVsSourceErrors/
// FindPmosGateVsSourceErrors: an NMOS leaks when its gate can sit above its
// source by more than the threshold on an unrelated power (PMOS mirrors
// this downward). CvcAnalogGates exempts gates flagged Analog; CvcVthGates
// widens the margin by the model's Vth instead of using the flat threshold.
func (ck *Checker) CheckGateVsSource(p *propagator.Propagator, conns []*connection.FullConnection) {
	for _, f := range conns {
		if !f.Device.Model.IsNmosLike() && !f.Device.Model.IsPmosLike() {
			continue
		}
		if !f.CheckTerminalMinMaxVoltages(connection.MaskGate|connection.MaskSource, true) {
			continue
		}
		if ck.Opts.CvcAnalogGates {
			if n := ck.Circuit.Net(f.Net[connection.Gate]); n != nil && n.HasStatus(analogStatusBit) {
				continue
			}
		}
		gateMin, gateMax := f.Terminals[power.Min], f.Terminals[power.Max]
		threshold := ck.Opts.GateErrorThreshold
		if ck.Opts.CvcVthGates {
			if m := ck.model(f.Device); m != nil && m.HasVth {
				threshold = m.Vth
				if threshold < 0 {
					threshold = -threshold
				}
			}
		}
		related := ck.Powers.RelatedPowers(
			gateMax.Power[connection.Gate], gateMin.Power[connection.Source], p.VNets[power.Max], power.Max, true)
		if related {
			continue
		}
		if f.Device.Model.IsNmosLike() {
			delta := gateMax.Voltage[connection.Gate] - gateMin.Voltage[connection.Source]
			if delta > threshold {
				ck.report(NmosGateSource, f.Device, f, fmt.Sprintf("gate-source %dmV on unrelated power", delta))
			}
		} else {
			delta := gateMax.Voltage[connection.Source] - gateMin.Voltage[connection.Gate]
			if delta > threshold {
				ck.report(PmosGateSource, f.Device, f, fmt.Sprintf("source-gate %dmV on unrelated power", delta))
			}
		}
	}
}

// analogStatusBit is the net-status bit marking an analog (non-digital)
// gate net for CvcAnalogGates to exempt. No loader in this rewrite sets
// it, so the CvcAnalogGates branch above exempts nothing unless a caller
// sets circuit.Analog on a net itself.
const analogStatusBit = circuit.Analog
