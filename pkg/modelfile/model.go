// Package modelfile loads the model-file records: per modelKey, a base
// device kind, a resistance expression, Vth, the overvoltage tolerances
// (maxVbg/maxVbs/maxVds/maxVgs) with their condition strings, and the
// body-diode terminal pairs listed in the model line's diode= attribute.
package modelfile

import (
	"github.com/cvcgo/cvc/pkg/connection"
	"github.com/cvcgo/cvc/pkg/ids"
)

// BodyDiode names one parasitic diode formed between two of a device's
// terminals — typically bulk-to-source or bulk-to-drain on a MOSFET.
type BodyDiode struct {
	Anode   connection.Terminal
	Cathode connection.Terminal
}

// Limit pairs an overvoltage tolerance with the condition string the model
// file attaches to it. Condition is carried for report
// output only; this rewrite does not evaluate it as a guard.
type Limit struct {
	Voltage   ids.Voltage
	Set       bool
	Condition string
}

// Model is one modelKey's electrical characteristics.
type Model struct {
	Name string
	Kind ids.ModelType

	Vth    ids.Voltage
	HasVth bool

	ResistanceExpr string

	MaxVbg, MaxVbs, MaxVds, MaxVgs Limit

	BodyDiodes []BodyDiode
}

// Table owns every Model loaded from one model file, keyed by name.
type Table struct {
	byName map[string]*Model
}

// NewTable builds an empty model table.
func NewTable() *Table {
	return &Table{byName: make(map[string]*Model)}
}

// Add registers m, replacing any prior model of the same name.
func (t *Table) Add(m *Model) { t.byName[m.Name] = m }

// Get returns the model named name, or nil.
func (t *Table) Get(name string) *Model { return t.byName[name] }

// Vth looks up modelName's threshold voltage, satisfying power.Models and
// propagator.Models (both only need this one method).
func (t *Table) Vth(modelName string) (ids.Voltage, bool) {
	m := t.byName[modelName]
	if m == nil || !m.HasVth {
		return 0, false
	}
	return m.Vth, true
}

// All returns every registered model; order is not guaranteed.
func (t *Table) All() []*Model {
	out := make([]*Model, 0, len(t.byName))
	for _, m := range t.byName {
		out = append(out, m)
	}
	return out
}
