package circuit

import (
	"testing"

	"github.com/cvcgo/cvc/pkg/ids"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnnotateInvertersSetsInverterOf(t *testing.T) {
	c, in, out := buildInverter(t)
	c.AnnotateInverters()
	n := c.Net(out)
	require.NotNil(t, n)
	assert.Equal(t, in, n.InverterOf)
}

// buildLatch wires two cross-coupled inverters: Q is driven by an NMOS/PMOS
// pair gated from QN, and QN is driven by an NMOS/PMOS pair gated from Q —
// the classic SR-latch shape.
func buildLatch(t *testing.T) (c *Circuit, q, qn ids.NetId) {
	t.Helper()
	c = New("test")
	vdd := c.AddNet("VDD")
	vss := c.AddNet("VSS")
	qNet := c.AddNet("Q")
	qnNet := c.AddNet("QN")

	c.AddDevice("MP1", ids.PMOS, vdd.Id, qnNet.Id, qNet.Id, vdd.Id, 0)
	c.AddDevice("MN1", ids.NMOS, vss.Id, qnNet.Id, qNet.Id, vss.Id, 0)
	c.AddDevice("MP2", ids.PMOS, vdd.Id, qNet.Id, qnNet.Id, vdd.Id, 0)
	c.AddDevice("MN2", ids.NMOS, vss.Id, qNet.Id, qnNet.Id, vss.Id, 0)
	return c, qNet.Id, qnNet.Id
}

func TestAnnotateLatchesTagsCrossCoupledPair(t *testing.T) {
	c, q, qn := buildLatch(t)
	c.AnnotateInverters()
	c.AnnotateLatches()

	qNet, qnNet := c.Net(q), c.Net(qn)
	require.NotNil(t, qNet)
	require.NotNil(t, qnNet)
	assert.Equal(t, qn, qNet.InverterOf)
	assert.Equal(t, q, qnNet.InverterOf)
	assert.True(t, qNet.IsLatchNode)
	assert.True(t, qnNet.IsLatchNode)
}

func TestAnnotateLatchesIgnoresPlainInverter(t *testing.T) {
	c, _, out := buildInverter(t)
	c.AnnotateInverters()
	c.AnnotateLatches()

	n := c.Net(out)
	require.NotNil(t, n)
	assert.False(t, n.IsLatchNode)
}
