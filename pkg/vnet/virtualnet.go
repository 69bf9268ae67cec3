// Package vnet implements the root-caching, resistance-carrying union-find
// used to track one interpretation (Min, Sim, or Max) of "which nets are
// electrically the same node right now".
package vnet

import (
	"fmt"

	"github.com/cvcgo/cvc/pkg/ids"
)

// maxChainLength bounds a Set/Resolve walk; a walk longer than this (a
// cycle, or an acyclic chain of more than maxChainLength edges) panics with
// *ChainOverflow, which pkg/propagator recovers.
const maxChainLength = 5000

// node is one net's entry: an edge to nextNetId with the given resistance,
// plus a lazily-recomputed cached root (finalNetId/finalResistance) valid
// only when updateStamp >= the vector's generation counter.
type node struct {
	nextNetId       ids.NetId
	resistance      ids.Resistance
	finalNetId      ids.NetId
	finalResistance ids.Resistance
	backupNetId     ids.NetId
	backupResistance ids.Resistance
	updateStamp     uint64
}

// ChainOverflow is the panic value Set/Resolve raise when a chain exceeds
// maxChainLength; it indicates a cyclic or corrupted virtual-net vector.
type ChainOverflow struct {
	NetId ids.NetId
}

func (e *ChainOverflow) Error() string {
	return fmt.Sprintf("vnet: chain length exceeded %d at net %d", maxChainLength, e.NetId)
}

// Vector is one interpretation's full union-find structure: one node per net.
// generation is bumped on every Set that changes topology; OverflowWarned
// records, per starting net, that a walk from it saturated at
// MaxResistance. Nothing in this module logs that saturation.
type Vector struct {
	nodes          []node
	generation     uint64
	OverflowWarned map[ids.NetId]bool
	updateCount    int64
	accessCount    int64
}

// New builds a Vector sized for numNets, each net initially its own root
// (nextNetId == self, resistance 0).
func New(numNets int) *Vector {
	v := &Vector{
		nodes:          make([]node, numNets),
		OverflowWarned: make(map[ids.NetId]bool),
	}
	for i := range v.nodes {
		v.nodes[i] = node{
			nextNetId:       ids.NetId(i),
			finalNetId:      ids.NetId(i),
			updateStamp:     0,
		}
	}
	return v
}

// Reset clears every node back to its own singleton root and bumps the
// generation, without reallocating the backing array.
func (v *Vector) Reset() {
	for i := range v.nodes {
		v.nodes[i] = node{
			nextNetId:  ids.NetId(i),
			finalNetId: ids.NetId(i),
		}
	}
	v.generation++
	v.OverflowWarned = make(map[ids.NetId]bool)
}

// IsTerminal reports whether net is its own immediate successor.
func (v *Vector) IsTerminal(net ids.NetId) bool {
	return v.nodes[net].nextNetId == net
}

// Set records that net now points to next with the given edge resistance,
// effective at queueTime. It refuses to create an immediate two-cycle
// (next[nextNet] == net && nextNet != net), recomputes net's root summing
// resistance along the new chain, and bumps the vector generation so other
// nets' cached roots are invalidated lazily. Panics via ChainOverflow if the
// walk exceeds maxChainLength.
func (v *Vector) Set(net, next ids.NetId, resistance ids.Resistance, queueTime uint64) {
	if v.nodes[next].nextNetId == net && next != net {
		// Would create an immediate two-cycle; refuse silently as the
		// original does (a debug-only notice, not an error).
		return
	}
	v.nodes[net].nextNetId = next
	v.nodes[net].resistance = resistance

	var finalNet ids.NetId
	var finalRes ids.Resistance
	if next == ids.UnknownNet {
		finalNet = ids.UnknownNet
		finalRes = ids.InfiniteResistance
	} else {
		finalNet, finalRes = v.walk(net)
	}
	v.nodes[net].finalNetId = finalNet
	v.nodes[net].finalResistance = finalRes
	v.nodes[net].updateStamp = queueTime
	v.generation = queueTime
}

// walk follows next pointers from start to its root, summing resistance and
// saturating via AddResistance; it records the first saturation against
// OverflowWarned.
func (v *Vector) walk(start ids.NetId) (ids.NetId, ids.Resistance) {
	cur := start
	var total ids.Resistance
	count := 0
	for cur != v.nodes[cur].nextNetId {
		if ids.AddResistance(&total, v.nodes[cur].resistance) {
			v.OverflowWarned[start] = true
		}
		cur = v.nodes[cur].nextNetId
		count++
		if count > maxChainLength {
			panic(&ChainOverflow{NetId: cur})
		}
	}
	if ids.AddResistance(&total, v.nodes[cur].resistance) {
		v.OverflowWarned[start] = true
	}
	return cur, total
}

// Resolve returns net's current root and the cumulative resistance to it,
// using the cached value if it is still fresh (stamp >= generation),
// otherwise recomputing and caching.
func (v *Vector) Resolve(net ids.NetId) (root ids.NetId, resistance ids.Resistance) {
	if net == ids.UnknownNet {
		return ids.UnknownNet, ids.InfiniteResistance
	}
	n := &v.nodes[net]
	v.accessCount++
	if n.updateStamp >= v.generation {
		return n.finalNetId, n.finalResistance
	}
	v.updateCount++
	root, resistance = v.walk(net)
	n.finalNetId = root
	n.finalResistance = resistance
	n.updateStamp = v.generation
	return root, resistance
}

// IsAlreadyShorted reports whether a and b currently resolve to the same
// root — the propagator's guard against re-unioning an already-shorted pair.
func (v *Vector) IsAlreadyShorted(a, b ids.NetId) bool {
	rootA, _ := v.Resolve(a)
	rootB, _ := v.Resolve(b)
	return rootA != ids.UnknownNet && rootA == rootB
}

// Backup snapshots every node's current successor into backupNetId, so a
// later pass can be restored.
func (v *Vector) Backup() {
	for i := range v.nodes {
		v.nodes[i].backupNetId = v.nodes[i].nextNetId
		v.nodes[i].backupResistance = v.nodes[i].resistance
	}
}

// Restore rewrites every node's successor from its last Backup snapshot and
// bumps the generation so caches are invalidated.
func (v *Vector) Restore(queueTime uint64) {
	for i := range v.nodes {
		v.nodes[i].nextNetId = v.nodes[i].backupNetId
		v.nodes[i].resistance = v.nodes[i].backupResistance
	}
	v.generation = queueTime
	for i := range v.nodes {
		v.nodes[i].updateStamp = 0
	}
}

// Len returns the number of nets the vector tracks.
func (v *Vector) Len() int { return len(v.nodes) }

// Stats returns the lazy-resolution counters (root-cache hits are
// accessCount-updateCount), useful for diagnostics/logging only.
func (v *Vector) Stats() (access, update int64) { return v.accessCount, v.updateCount }
