package power

import (
	"fmt"

	"github.com/cvcgo/cvc/pkg/ids"
	"github.com/cvcgo/cvc/pkg/vnet"
)

// Table owns every Power record for a run, keyed by the net it's bound to,
// plus the family map pkg/powerfile expands into each Power's RelativeSet
// (original_source/src/CPower.cc: CPowerPtrList/CPowerFamilyMap).
type Table struct {
	byNet   map[ids.NetId]*Power
	Family  map[string]map[string]bool
	nextTmp ids.NetId
}

// NewTable builds an empty power table.
func NewTable() *Table {
	return &Table{
		byNet:  make(map[ids.NetId]*Power),
		Family: make(map[string]map[string]bool),
	}
}

// Add registers p, bound to p.NetId. A later Add for the same net replaces
// the prior record only if the prior one was calculated (declared powers
// always win the tie; the first declared power wins over any later one).
func (t *Table) Add(p *Power) {
	if existing, ok := t.byNet[p.NetId]; ok && !existing.IsCalculated() {
		return
	}
	t.byNet[p.NetId] = p
}

// Get returns the Power bound to net, or nil.
func (t *Table) Get(net ids.NetId) *Power {
	return t.byNet[net]
}

// All returns every registered Power record; order is not guaranteed.
func (t *Table) All() []*Power {
	out := make([]*Power, 0, len(t.byNet))
	for _, p := range t.byNet {
		out = append(out, p)
	}
	return out
}

// AddFamily registers familyName's member list, which pkg/powerfile later
// expands into the RelativeSet of each Power naming that family
// (original_source/src/CPower.cc AddFamily).
func (t *Table) AddFamily(familyName string, members []string) {
	set, ok := t.Family[familyName]
	if !ok {
		set = make(map[string]bool)
		t.Family[familyName] = set
	}
	for _, m := range members {
		set[m] = true
	}
}

// BasePower walks from p.NetId following the default-net back-reference for
// which, then the virtual-net root, repeating until it lands on a
// non-calculated Power — "through which edge did this value arrive".
func (t *Table) BasePower(p *Power, vn *vnet.Vector, which Interpretation) *Power {
	if p == nil {
		return nil
	}
	visited := make(map[ids.NetId]bool)
	cur := p
	for {
		if visited[cur.NetId] {
			return cur // defensive: a cycle means give up where we are
		}
		visited[cur.NetId] = true
		if !cur.IsCalculated() {
			return cur
		}
		defNet := cur.DefaultNet(which)
		if defNet == ids.UnknownNet {
			return cur
		}
		root, _ := vn.Resolve(defNet)
		next := t.Get(root)
		if next == nil || next == cur {
			return cur
		}
		cur = next
	}
}

// RelatedPowers reports whether a and b are related under which: literally
// the same power, sharing an alias, or their base powers satisfy Relates.
func (t *Table) RelatedPowers(a, b *Power, vn *vnet.Vector, which Interpretation, defaultResult bool) bool {
	if a == nil || b == nil {
		return defaultResult
	}
	if a.IsSamePower(b) {
		return true
	}
	baseA := t.BasePower(a, vn, which)
	baseB := t.BasePower(b, vn, which)
	if baseA == baseB {
		return true
	}
	if baseA.IsSamePower(baseB) {
		return true
	}
	return Relates(baseA, baseB, defaultResult)
}

// DebugName returns a stable name for log/report output even for calculated
// powers that have no declared Signal.
func (p *Power) DebugName() string {
	if p.Signal != "" {
		return p.Signal
	}
	return fmt.Sprintf("<calc:%d>", p.NetId)
}
