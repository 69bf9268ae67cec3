package propagator

import (
	"github.com/cvcgo/cvc/pkg/ids"
	"github.com/cvcgo/cvc/pkg/power"
)

// RunAll drives the full propagation sequence: seed
// and drain Min, then Sim, then Max, then — with LeakVoltageSet true — a
// second Min/Max pass so a value only Sim could resolve (e.g. a MOSFET gated
// by a calculated intermediate net) gets one more chance to settle Min/Max
// before the error checker runs.
func (p *Propagator) RunAll() {
	p.Log.Info().Msg("propagation pass 1: min")
	p.Seed(power.Min)
	p.Run(power.Min)

	p.Log.Info().Msg("propagation pass 1: sim")
	p.Seed(power.Sim)
	p.Run(power.Sim)

	p.inferSCRC()
	p.annotateLatches()

	p.Log.Info().Msg("propagation pass 1: max")
	p.Seed(power.Max)
	p.Run(power.Max)

	p.LeakVoltageSet = true

	p.Log.Info().Msg("propagation pass 2: min")
	p.Seed(power.Min)
	p.Run(power.Min)

	p.Log.Info().Msg("propagation pass 2: max")
	p.Seed(power.Max)
	p.Run(power.Max)
}

// FuseErrors reports every fuse device whose source and drain no longer
// resolve to the same root on both the Min and Max vnets after the second
// Min/Max pass — a fuse that blew somewhere along the way.
func (p *Propagator) FuseErrors() []ids.DeviceId {
	var out []ids.DeviceId
	for _, d := range p.Circuit.Devices {
		if !d.Model.IsFuse() {
			continue
		}
		minRootS, _ := p.VNets[power.Min].Resolve(d.Source)
		minRootD, _ := p.VNets[power.Min].Resolve(d.Drain)
		maxRootS, _ := p.VNets[power.Max].Resolve(d.Source)
		maxRootD, _ := p.VNets[power.Max].Resolve(d.Drain)
		if minRootS != minRootD || maxRootS != maxRootD {
			out = append(out, d.Id)
		}
	}
	return out
}
