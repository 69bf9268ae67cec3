package circuit

import "github.com/cvcgo/cvc/pkg/ids"

// inverterChain walks InverterOf back-pointers from net, returning every
// net visited (net itself included, mapped to false); a value of true means
// that net's logic is inverted relative to net.
func (c *Circuit) inverterChain(net ids.NetId) map[ids.NetId]bool {
	out := map[ids.NetId]bool{net: false}
	inverted := false
	cur := net
	for steps := 0; steps < len(c.Nets)+1; steps++ {
		n := c.Net(cur)
		if n == nil || n.InverterOf == ids.UnknownNet {
			break
		}
		inverted = !inverted
		cur = n.InverterOf
		if _, seen := out[cur]; seen {
			break
		}
		out[cur] = inverted
	}
	return out
}

// LogicRelation reports whether a and b share an inverter-chain ancestor,
// and if so whether they carry the same or opposite logic sense at that
// ancestor.
func (c *Circuit) LogicRelation(a, b ids.NetId) (related bool, opposite bool) {
	chainA := c.inverterChain(a)
	chainB := c.inverterChain(b)
	for net, invA := range chainA {
		if invB, ok := chainB[net]; ok {
			return true, invA != invB
		}
	}
	return false, false
}
