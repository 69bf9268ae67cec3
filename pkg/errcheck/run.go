package errcheck

import "github.com/cvcgo/cvc/pkg/propagator"

// RunAll runs every sweep against one finished propagation run, overvoltage
// first through expected-value checks last, and returns the accumulated
// Findings.
func (ck *Checker) RunAll(p *propagator.Propagator) []Finding {
	conns := p.AllFullSnapshots()

	ck.AbsorbPropagatorFindings(p)
	ck.CheckOvervoltage(conns)
	ck.CheckGateVsSource(p, conns)
	ck.CheckForwardDiode(conns)
	ck.CheckSourceVsBulk(p, conns)
	ck.CheckLDDDirection(conns)
	ck.CheckPossibleLeak(conns)
	ck.CheckFloatingGate(conns)
	ck.CheckExpectedValues(p)

	return ck.findings
}
