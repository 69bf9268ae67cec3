// Package netlist loads the flat transistor-level netlist: one record per
// line, `deviceName modelKey gate source drain [bulk] [parameters...]`.
// Deliberately thin — it builds
// circuit.Net/circuit.Device records and resolves each modelKey against a
// modelfile.Table; it performs no electrical reasoning of its own.
package netlist

import (
	"bufio"
	"io"
	"regexp"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/cvcgo/cvc/pkg/circuit"
	"github.com/cvcgo/cvc/pkg/ids"
	"github.com/cvcgo/cvc/pkg/modelfile"
)

// paramPattern matches a `key=value` element parameter; an `r=<value>`
// parameter lets a netlist line (e.g. a fuse or discrete resistor instance)
// set a resistance value directly instead of inheriting the model's
// resistance expression.
var paramPattern = regexp.MustCompile(`^([a-zA-Z_][a-zA-Z0-9_]*)=(.+)$`)

// Parse reads netlist lines from r into circuit using models to resolve
// each line's modelKey to a device kind. An unknown modelKey is a load-time
// fatal error.
func Parse(r io.Reader, circuitName string, models *modelfile.Table) (*circuit.Circuit, error) {
	c := circuit.New(circuitName)
	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "*") || strings.HasPrefix(line, "#") {
			continue
		}
		if err := parseLine(c, models, line); err != nil {
			return nil, errors.Wrapf(err, "netlist line %d", lineNo)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, "reading netlist")
	}
	return c, nil
}

// parseLine parses one `(deviceName, modelKey, gate, source, drain,
// [bulk], parameterString)` record.
func parseLine(c *circuit.Circuit, models *modelfile.Table, line string) error {
	fields := strings.Fields(line)
	if len(fields) < 5 {
		return errors.Errorf("expected at least deviceName modelKey gate source drain, got %q", line)
	}

	name, modelKey := fields[0], fields[1]
	model := models.Get(modelKey)
	if model == nil {
		return errors.Errorf("unknown model %q", modelKey)
	}

	gate := c.AddNet(fields[2])
	source := c.AddNet(fields[3])
	drain := c.AddNet(fields[4])

	rest := fields[5:]
	bulk := source
	if len(rest) > 0 && !paramPattern.MatchString(rest[0]) {
		bulk = c.AddNet(rest[0])
		rest = rest[1:]
	}

	resistance, err := resistanceFor(model, rest)
	if err != nil {
		return errors.Wrapf(err, "device %q", name)
	}

	d := c.AddDevice(name, model.Kind, source.Id, gate.Id, drain.Id, bulk.Id, resistance)
	d.ModelName = modelKey
	if i := strings.LastIndex(name, "."); i >= 0 {
		d.InstanceOf = c.Instance(name[:i])
	}
	return nil
}

// resistanceFor evaluates the device's resistance: an explicit `r=` netlist
// parameter wins, otherwise a bare numeric model resistance
// expression is used directly. Any other expression (e.g. "1/gm(VDD)")
// gives a resistance of zero; it is not evaluated here or later.
func resistanceFor(m *modelfile.Model, params []string) (ids.Resistance, error) {
	for _, p := range params {
		match := paramPattern.FindStringSubmatch(p)
		if match == nil {
			continue
		}
		if strings.EqualFold(match[1], "r") {
			return parseResistance(match[2])
		}
	}
	if m.ResistanceExpr == "" {
		return 0, nil
	}
	if v, err := strconv.ParseFloat(m.ResistanceExpr, 64); err == nil {
		return ids.Resistance(v), nil
	}
	return 0, nil
}

func parseResistance(tok string) (ids.Resistance, error) {
	v, err := strconv.ParseFloat(tok, 64)
	if err != nil {
		return 0, errors.Wrapf(err, "resistance literal %q", tok)
	}
	if v < 0 {
		return 0, errors.Errorf("negative resistance %q", tok)
	}
	return ids.Resistance(v), nil
}
