// Package powerfile loads the power-file records: one declaration per
// line, `NAME [ALIAS] {voltage|min@E sim@E max@E|open|input|power|
// resistor|permit@FAMILY|prohibit@FAMILY|expectMin@E|expectSim@E
// |expectMax@E} ...`, plus `family FAMILY member1,member2,…` and `#define
// MACRO …` directives. A plain number, bare or after min@/sim@/max@, is in
// volts; any other voltage value is evaluated by power.CalculateVoltage,
// whose numeric literals are millivolts. Grounded on original_source/src/CPower.cc's
// token-at-a-time power-string constructor, adapted to this codebase's
// bufio.Scanner line-loop style.
package powerfile

import (
	"bufio"
	"io"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/cvcgo/cvc/pkg/circuit"
	"github.com/cvcgo/cvc/pkg/ids"
	"github.com/cvcgo/cvc/pkg/power"
)

// Options controls load-time leniency.
type Options struct {
	PermitUndefinedMacros bool
}

// macro is a named, unbound power definition usable as a bare-token
// reference on later lines (original_source/src/CPower.cc's
// thePowerMacroPtrMap "copy properties" branch).
type macro struct {
	minVoltage, simVoltage, maxVoltage ids.Voltage
	expectedMin, expectedSim, expectedMax string
	family                                string
	relativeFriendly                      bool
	isHiZ                                  bool
}

// Parse reads power-file lines from r, binding each NAME declaration to its
// net in circuit and registering the result (plus family members) in tbl.
// models backs Vth[...] lookups inside voltage expressions.
func Parse(r io.Reader, c *circuit.Circuit, tbl *power.Table, models power.Models, opts Options) error {
	macros := make(map[string]*macro)
	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "*") {
			continue
		}
		var err error
		switch {
		case strings.HasPrefix(line, "#define"):
			err = parseDefine(line, macros, tbl, models, opts)
		case strings.HasPrefix(line, "family "):
			err = parseFamily(line, tbl)
		default:
			err = parseDeclaration(line, c, tbl, models, macros, opts)
		}
		if err != nil {
			return errors.Wrapf(err, "power file line %d", lineNo)
		}
	}
	if err := scanner.Err(); err != nil {
		return errors.Wrap(err, "reading power file")
	}
	expandFamilies(tbl)
	return nil
}

// expandFamilies resolves each Power's bare family name into its member set
// (original_source/src/CPower.cc ~line 906: a registered `family` directive
// expands to its member list; an unregistered name is treated as the sole
// relative — letting `permit@OTHERPOWER` address one power directly without
// a family declaration). Run once after every line is read, since a family
// directive may appear anywhere relative to the powers that reference it.
func expandFamilies(tbl *power.Table) {
	for _, p := range tbl.All() {
		if p.Family == "" {
			continue
		}
		if members, ok := tbl.Family[p.Family]; ok {
			for name := range members {
				p.RelativeSet[name] = true
			}
			continue
		}
		p.RelativeSet[p.Family] = true
	}
}

// parseFamily handles "family FAMILY member1,member2,…".
func parseFamily(line string, tbl *power.Table) error {
	fields := strings.Fields(line)
	if len(fields) != 3 {
		return errors.Errorf("malformed family directive %q", line)
	}
	members := strings.Split(fields[2], ",")
	tbl.AddFamily(fields[1], members)
	return nil
}

// parseDefine handles "#define MACRO token token ...", registering MACRO
// as a reusable bare-token reference for later NAME lines.
func parseDefine(line string, macros map[string]*macro, tbl *power.Table, models power.Models, opts Options) error {
	fields := strings.Fields(line)
	if len(fields) < 2 {
		return errors.Errorf("malformed #define directive %q", line)
	}
	name := fields[1]
	m := &macro{
		minVoltage: ids.UnknownVoltage,
		simVoltage: ids.UnknownVoltage,
		maxVoltage: ids.UnknownVoltage,
	}
	if err := applyTokens(fields[2:], m, nil, tbl, models, macros, opts); err != nil {
		return err
	}
	macros[name] = m
	return nil
}

// parseDeclaration handles one `NAME [ALIAS] token...` line, building and
// registering a Power bound to NAME's net.
func parseDeclaration(line string, c *circuit.Circuit, tbl *power.Table, models power.Models, macros map[string]*macro, opts Options) error {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return nil
	}
	name := fields[0]
	rest := fields[1:]

	alias := ""
	if len(rest) > 0 && !looksLikeAttribute(rest[0], macros) {
		alias = rest[0]
		rest = rest[1:]
	}

	net := c.AddNet(name)
	p := power.New(net.Id, name)
	p.Alias = alias

	m := &macro{
		minVoltage: ids.UnknownVoltage,
		simVoltage: ids.UnknownVoltage,
		maxVoltage: ids.UnknownVoltage,
	}
	if err := applyTokens(rest, m, p, tbl, models, macros, opts); err != nil {
		return err
	}
	applyMacroToPower(m, p)
	tbl.Add(p)
	return nil
}

// looksLikeAttribute reports whether tok parses as a power-line attribute
// token rather than an alias: an "@"-keyed attribute, a bare keyword, a
// bare voltage literal, or a known macro name.
func looksLikeAttribute(tok string, macros map[string]*macro) bool {
	if strings.Contains(tok, "@") {
		return true
	}
	switch tok {
	case "input", "power", "resistor", "reference", "open":
		return true
	}
	if _, err := strconv.ParseFloat(tok, 64); err == nil {
		return true
	}
	_, isMacro := macros[tok]
	return isMacro
}

// applyTokens walks a power line's attribute tokens, mutating m (and, for a
// NAME declaration, the bound Power p directly for the type/HiZ bits that
// only make sense once bound to a net).
func applyTokens(tokens []string, m *macro, p *power.Power, tbl *power.Table, models power.Models, macros map[string]*macro, opts Options) error {
	for _, tok := range tokens {
		key, val, hasAt := strings.Cut(tok, "@")
		if hasAt {
			if err := applyKeyedAttr(key, val, m, p, tbl, models); err != nil {
				return err
			}
			continue
		}
		if err := applyBareAttr(tok, m, p, tbl, models, macros, opts); err != nil {
			return err
		}
	}
	return nil
}

func applyKeyedAttr(key, val string, m *macro, p *power.Power, tbl *power.Table, models power.Models) error {
	// voltage reads a min@/sim@/max@ value: a plain number is volts, as for a
	// bare voltage token; anything else is a power.CalculateVoltage expression.
	voltage := func(which power.Interpretation) ids.Voltage {
		if v, err := strconv.ParseFloat(val, 64); err == nil {
			return ids.FromVolts(v)
		}
		return power.CalculateVoltage(val, which, tbl, models)
	}
	switch key {
	case "min":
		m.minVoltage = voltage(power.Min)
	case "max":
		m.maxVoltage = voltage(power.Max)
	case "sim":
		m.simVoltage = voltage(power.Sim)
	case "expectMin":
		m.expectedMin = val
	case "expectSim":
		m.expectedSim = val
	case "expectMax":
		m.expectedMax = val
	case "permit", "prohibit":
		m.family = val
		m.relativeFriendly = key == "permit"
	default:
		return errors.Errorf("unknown keyed attribute %q", key)
	}
	return nil
}

func applyBareAttr(tok string, m *macro, p *power.Power, tbl *power.Table, models power.Models, macros map[string]*macro, opts Options) error {
	switch tok {
	case "input":
		if p != nil {
			p.SetType(power.InputBit)
		}
		return nil
	case "power":
		if p != nil {
			p.SetType(power.PowerBit)
		}
		return nil
	case "resistor":
		if p != nil {
			p.SetType(power.ResistorBit)
		}
		return nil
	case "reference":
		if p != nil {
			p.SetType(power.ReferenceBit)
		}
		return nil
	case "open":
		if p != nil {
			p.SetType(power.HizBit)
		}
		m.isHiZ = true
		m.simVoltage = ids.UnknownVoltage
		return nil
	}
	if v, err := strconv.ParseFloat(tok, 64); err == nil {
		volt := ids.FromVolts(v)
		m.minVoltage, m.simVoltage, m.maxVoltage = volt, volt, volt
		return nil
	}
	if ref, ok := macros[tok]; ok {
		m.minVoltage, m.simVoltage, m.maxVoltage = ref.minVoltage, ref.simVoltage, ref.maxVoltage
		m.expectedMin, m.expectedSim, m.expectedMax = ref.expectedMin, ref.expectedSim, ref.expectedMax
		m.family, m.relativeFriendly = ref.family, ref.relativeFriendly
		if ref.isHiZ && p != nil {
			p.SetType(power.HizBit)
		}
		return nil
	}
	if !opts.PermitUndefinedMacros {
		return errors.Errorf("undefined macro or attribute %q", tok)
	}
	m.minVoltage = power.CalculateVoltage(tok, power.Min, tbl, models)
	m.simVoltage = power.CalculateVoltage(tok, power.Sim, tbl, models)
	m.maxVoltage = power.CalculateVoltage(tok, power.Max, tbl, models)
	return nil
}

func applyMacroToPower(m *macro, p *power.Power) {
	p.SetVoltage(power.Min, m.minVoltage)
	p.SetVoltage(power.Sim, m.simVoltage)
	p.SetVoltage(power.Max, m.maxVoltage)
	p.ExpectedMin, p.ExpectedSim, p.ExpectedMax = m.expectedMin, m.expectedSim, m.expectedMax
	p.Family, p.RelativeFriendly = m.family, m.relativeFriendly
	if m.minVoltage.IsKnown() {
		p.SetActive(power.MinActive)
	}
	if m.maxVoltage.IsKnown() {
		p.SetActive(power.MaxActive)
	}
}
