package modelfile

import (
	"bufio"
	"io"
	"regexp"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/cvcgo/cvc/pkg/connection"
	"github.com/cvcgo/cvc/pkg/ids"
)

// valuePattern matches a millivolt literal with an optional v/mv suffix
// (bare numbers are already millivolts, e.g. "VDD 1200" means 1200 mV),
// a SPICE ParseValue-style unit-suffix regexp scaled to two units instead
// of the SPICE T/G/meg/K/k/m/u/n/p/f ladder.
var valuePattern = regexp.MustCompile(`^([-+]?\d*\.?\d+)(mv|v)?$`)

func parseVoltage(tok string) (ids.Voltage, error) {
	m := valuePattern.FindStringSubmatch(strings.ToLower(tok))
	if m == nil {
		return 0, errors.Errorf("invalid voltage literal %q", tok)
	}
	num, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0, errors.Wrapf(err, "voltage literal %q", tok)
	}
	if m[2] == "v" {
		return ids.FromVolts(num), nil
	}
	return ids.Voltage(num), nil
}

var kindNames = map[string]ids.ModelType{
	"nmos":      ids.NMOS,
	"pmos":      ids.PMOS,
	"lddn":      ids.LDDN,
	"lddp":      ids.LDDP,
	"resistor":  ids.RESISTOR,
	"capacitor": ids.CAPACITOR,
	"diode":     ids.DIODE,
	"fuse_on":   ids.FUSE_ON,
	"fuse_off":  ids.FUSE_OFF,
	"switch_on": ids.SWITCH_ON,
	"switch_off": ids.SWITCH_OFF,
	"bipolar":   ids.BIPOLAR,
}

var terminalNames = map[byte]connection.Terminal{
	's': connection.Source,
	'g': connection.Gate,
	'd': connection.Drain,
	'b': connection.Bulk,
}

// Parse reads model-file lines from r into a Table: `model NAME KIND key=value ...`, blank lines and `#`-comments
// ignored, in the same bufio.Scanner line-loop style as
// pkg/netlist/parser.go's Parse.
func Parse(r io.Reader) (*Table, error) {
	t := NewTable()
	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 3 || strings.ToLower(fields[0]) != "model" {
			return nil, errors.Errorf("model file line %d: expected \"model NAME KIND ...\", got %q", lineNo, line)
		}
		m, err := parseModelLine(fields[1], fields[2], fields[3:])
		if err != nil {
			return nil, errors.Wrapf(err, "model file line %d", lineNo)
		}
		t.Add(m)
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, "reading model file")
	}
	return t, nil
}

func parseModelLine(name, kindTok string, attrs []string) (*Model, error) {
	kind, ok := kindNames[strings.ToLower(kindTok)]
	if !ok {
		return nil, errors.Errorf("unknown model kind %q", kindTok)
	}
	m := &Model{Name: name, Kind: kind}
	for _, attr := range attrs {
		key, val, found := strings.Cut(attr, "=")
		if !found {
			return nil, errors.Errorf("malformed attribute %q (expected key=value)", attr)
		}
		if err := applyAttr(m, strings.ToLower(key), val); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func applyAttr(m *Model, key, val string) error {
	switch key {
	case "vth":
		v, err := parseVoltage(val)
		if err != nil {
			return errors.Wrap(err, "vth")
		}
		m.Vth, m.HasVth = v, true
	case "r":
		m.ResistanceExpr = val
	case "maxvgs":
		return applyLimit(&m.MaxVgs, val)
	case "maxvds":
		return applyLimit(&m.MaxVds, val)
	case "maxvbs":
		return applyLimit(&m.MaxVbs, val)
	case "maxvbg":
		return applyLimit(&m.MaxVbg, val)
	case "diode":
		diodes, err := parseDiodes(val)
		if err != nil {
			return err
		}
		m.BodyDiodes = append(m.BodyDiodes, diodes...)
	default:
		return errors.Errorf("unknown model attribute %q", key)
	}
	return nil
}

// applyLimit parses "1200" or "1200@vdd>1.0" — a voltage and an optional
// condition string.
func applyLimit(l *Limit, val string) error {
	voltTok, condition, _ := strings.Cut(val, "@")
	v, err := parseVoltage(voltTok)
	if err != nil {
		return err
	}
	l.Voltage, l.Set, l.Condition = v, true, condition
	return nil
}

// parseDiodes parses "s-b,d-b" into source-bulk and drain-bulk BodyDiodes.
func parseDiodes(val string) ([]BodyDiode, error) {
	var out []BodyDiode
	for _, pair := range strings.Split(val, ",") {
		anodeTok, cathodeTok, found := strings.Cut(pair, "-")
		if !found || len(anodeTok) != 1 || len(cathodeTok) != 1 {
			return nil, errors.Errorf("malformed diode pair %q (expected a-b)", pair)
		}
		anode, ok := terminalNames[anodeTok[0]]
		if !ok {
			return nil, errors.Errorf("unknown diode terminal %q", anodeTok)
		}
		cathode, ok := terminalNames[cathodeTok[0]]
		if !ok {
			return nil, errors.Errorf("unknown diode terminal %q", cathodeTok)
		}
		out = append(out, BodyDiode{Anode: anode, Cathode: cathode})
	}
	return out, nil
}
