// Package report renders errcheck.Findings as a UTF-8 text report: one
// `! ` heading block per finding with a device/terminal dump, then a
// summary of counts by kind.
// Grounded on original_source/src/CCvcDb_print.cc's
// PrintDeviceWithAllConnections/PrintAllTerminalConnections (block layout)
// and PrintErrorTotals (summary layout).
package report

import (
	"bufio"
	"fmt"
	"io"

	"github.com/cvcgo/cvc/pkg/circuit"
	"github.com/cvcgo/cvc/pkg/connection"
	"github.com/cvcgo/cvc/pkg/errcheck"
	"github.com/cvcgo/cvc/pkg/ids"
	"github.com/cvcgo/cvc/pkg/power"
	"github.com/cvcgo/cvc/pkg/util"
)

// Write renders every finding as a block, in order, followed by the
// summary totals, to w.
func Write(w io.Writer, c *circuit.Circuit, findings []errcheck.Finding) error {
	bw := bufio.NewWriter(w)
	for _, f := range findings {
		writeFinding(bw, c, f)
	}
	writeSummary(bw, findings)
	return bw.Flush()
}

func writeFinding(w *bufio.Writer, c *circuit.Circuit, f errcheck.Finding) {
	fmt.Fprintf(w, "! %s: %s\n", f.Kind, f.Message)
	if inst := instanceOf(f); inst != ids.UnknownInstance {
		fmt.Fprintf(w, "  in %s\n", c.InstanceName(inst))
	}
	switch {
	case f.Conn != nil:
		writeDevice(w, c, f.Conn)
	case f.Device != nil:
		fmt.Fprintf(w, "%s %s\n", f.Device.Name, f.Device.ModelName)
	}
	fmt.Fprintln(w)
}

// instanceOf returns the subcircuit instance a finding's device belongs to,
// however the finding carries its device (directly, or via Conn), so a
// hierarchical netlist's report groups readably without a flattening pass.
func instanceOf(f errcheck.Finding) ids.InstanceId {
	switch {
	case f.Conn != nil && f.Conn.Device != nil:
		return f.Conn.Device.InstanceOf
	case f.Device != nil:
		return f.Device.InstanceOf
	default:
		return ids.UnknownInstance
	}
}

type terminalLabel struct {
	label string
	term  connection.Terminal
}

// terminalOrder mirrors PrintDeviceWithAllConnections's switch on model
// type: MOSFETs print G/S/D/B, bipolars print C/B/E (source/gate/drain
// under those labels), everything else prints S/D and B only if the
// device carries a real bulk terminal.
func terminalOrder(model ids.ModelType, hasBulk bool) []terminalLabel {
	switch {
	case model.IsMos():
		order := []terminalLabel{{"G", connection.Gate}, {"S", connection.Source}, {"D", connection.Drain}}
		if hasBulk {
			order = append(order, terminalLabel{"B", connection.Bulk})
		}
		return order
	case model == ids.BIPOLAR:
		return []terminalLabel{{"C", connection.Source}, {"B", connection.Gate}, {"E", connection.Drain}}
	default:
		order := []terminalLabel{{"S", connection.Source}, {"D", connection.Drain}}
		if hasBulk {
			order = append(order, terminalLabel{"B", connection.Bulk})
		}
		return order
	}
}

func writeDevice(w *bufio.Writer, c *circuit.Circuit, conn *connection.FullConnection) {
	fmt.Fprintf(w, "%s %s (r=%s)\n", conn.Device.Name, conn.Device.ModelName, formatResistance(conn.Resistance))
	hasBulk := conn.OriginalNet[connection.Bulk] != ids.UnknownNet
	for _, tl := range terminalOrder(conn.Device.Model, hasBulk) {
		writeTerminal(w, c, tl.label, conn, tl.term)
	}
}

func writeTerminal(w *bufio.Writer, c *circuit.Circuit, label string, conn *connection.FullConnection, term connection.Terminal) {
	fmt.Fprintf(w, "%s: %s\n", label, netName(c, conn.OriginalNet[term]))
	for _, which := range [3]power.Interpretation{power.Min, power.Sim, power.Max} {
		t := conn.Term(which)
		fmt.Fprintf(w, " %s: %s%s\n", which, netName(c, t.Root[term]), voltageSuffix(t, term, which))
	}
}

// calculatedBit maps an interpretation to the Type bit that marks a power
// as calculated under it, so the declared/calculated delimiter can be
// picked without a three-way switch at every call site.
var calculatedBit = [3]power.TypeBit{power.MinCalculatedBit, power.SimCalculatedBit, power.MaxCalculatedBit}

// voltageSuffix renders "{@|=}voltage r=resistance" (PowerDelimiter_ +
// NetVoltageSuffix), or "" when the voltage is unknown — original_source
// skips the suffix entirely rather than printing "???  r=...".
func voltageSuffix(t *connection.TerminalSet, term connection.Terminal, which power.Interpretation) string {
	voltage, known := formatVoltage(t.Voltage[term], t.Power[term])
	if !known {
		return ""
	}
	return delimiter(t.Power[term], calculatedBit[which]) + voltage + " r=" + formatResistance(t.RootResistance[term])
}

func netName(c *circuit.Circuit, id ids.NetId) string {
	if id == ids.UnknownNet {
		return "(none)"
	}
	if n := c.Net(id); n != nil {
		return n.Name
	}
	return fmt.Sprintf("net%d", id)
}

func formatVoltage(v ids.Voltage, p *power.Power) (string, bool) {
	if !v.IsKnown() {
		if p != nil && p.HasType(power.HizBit) {
			return "open", true
		}
		return "", false
	}
	return util.FormatValueFactor(v.Volts(), "V"), true
}

func formatResistance(r ids.Resistance) string {
	switch r {
	case ids.InfiniteResistance:
		return "inf"
	case 0:
		return "0 ohm"
	default:
		return util.FormatValueFactor(float64(r), "ohm")
	}
}

func delimiter(p *power.Power, bit power.TypeBit) string {
	if p == nil || p.HasType(bit) {
		return "="
	}
	return "@"
}

// summaryOrder mirrors PrintErrorTotals's fixed listing order, so report
// totals read the same way across runs regardless of finding order.
var summaryOrder = []struct {
	kind  errcheck.Kind
	label string
}{
	{errcheck.FuseError, "Fuse Problems"},
	{errcheck.MinVoltageConflict, "Min Voltage Conflicts"},
	{errcheck.MaxVoltageConflict, "Max Voltage Conflicts"},
	{errcheck.Leak, "Leaks"},
	{errcheck.LddSource, "LDD drain->source"},
	{errcheck.HizInput, "HI-Z Inputs"},
	{errcheck.ForwardDiode, "Forward Bias Diodes"},
	{errcheck.NmosSourceBulk, "NMOS Source vs Bulk"},
	{errcheck.NmosGateSource, "NMOS Gate vs Source"},
	{errcheck.NmosPossibleLeak, "NMOS Possible Leaks"},
	{errcheck.PmosSourceBulk, "PMOS Source vs Bulk"},
	{errcheck.PmosGateSource, "PMOS Gate vs Source"},
	{errcheck.PmosPossibleLeak, "PMOS Possible Leaks"},
	{errcheck.OvervoltageVbg, "Overvoltage-VBG"},
	{errcheck.OvervoltageVbs, "Overvoltage-VBS"},
	{errcheck.OvervoltageVds, "Overvoltage-VDS"},
	{errcheck.OvervoltageVgs, "Overvoltage-VGS"},
	{errcheck.ExpectedVoltage, "Unexpected voltage"},
	{errcheck.ModelCheck, "Model Check"},
	{errcheck.GateLogicCheck, "Gate Logic Check"},
	{errcheck.ChainOverflow, "Chain Overflows"},
}

func writeSummary(w *bufio.Writer, findings []errcheck.Finding) {
	counts := make(map[errcheck.Kind]int, len(summaryOrder))
	for _, f := range findings {
		counts[f.Kind]++
	}
	fmt.Fprintln(w, "CVC: Error Counts")
	total := 0
	for _, e := range summaryOrder {
		n := counts[e.kind]
		total += n
		fmt.Fprintf(w, "CVC: %-27s %d\n", e.label+":", n)
	}
	fmt.Fprintf(w, "CVC: %-27s %d\n", "Total:", total)
}
