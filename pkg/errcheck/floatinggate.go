package errcheck

import (
	"github.com/cvcgo/cvc/pkg/connection"
	"github.com/cvcgo/cvc/pkg/power"
)

// CheckFloatingGate flags a MOSFET gate that never resolved to a known,
// solidly-driven voltage under any interpretation — either explicitly
// typed Hi-Z on both Min and Max, or structurally a transfer-gate/clocked-
// inverter output the propagator couldn't pin down (connection.
// IsPossibleHiZ). This rewrite scopes out the original's
// config-file-driven CheckInverterIO/
// CheckOppositeLogic sweeps (original_source/src/CCvcDb_error.cc), which
// depend on an external net-check list this rewrite's netlist/power-file
// grammar has no equivalent directive for. circuit.LogicRelation remains
// available for a future sweep once such a directive exists.
func (ck *Checker) CheckFloatingGate(conns []*connection.FullConnection) {
	for _, f := range conns {
		if !f.Device.Model.IsNmosLike() && !f.Device.Model.IsPmosLike() {
			continue
		}
		gateNet := f.Net[connection.Gate]
		if gateNet == f.Net[connection.Source] || gateNet == f.Net[connection.Drain] {
			continue // diode-tied gate, not floating by construction
		}
		minPw, maxPw := f.Terminals[power.Min].Power[connection.Gate], f.Terminals[power.Max].Power[connection.Gate]
		bothHiZ := minPw != nil && maxPw != nil && minPw.HasType(power.HizBit) && maxPw.HasType(power.HizBit)
		if bothHiZ {
			ck.report(HizInput, f.Device, f, "gate resolves to Hi-Z on both min and max")
			continue
		}
		simVoltage := f.Terminals[power.Sim].Voltage[connection.Gate]
		if !simVoltage.IsKnown() && f.IsPossibleHiZ(ck.Circuit) {
			ck.report(HizInput, f.Device, f, "gate driven by an unresolved transfer-gate/clocked-inverter net")
		}
	}
}
