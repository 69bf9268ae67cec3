package power

import (
	"strconv"
	"strings"

	"github.com/cvcgo/cvc/pkg/ids"
)

// Models is the minimal view the evaluator needs of the model table: only
// the threshold voltage lookup for "Vth[modelName]" tokens.
type Models interface {
	Vth(modelName string) (ids.Voltage, bool)
}

// poison marks a token or partial result as undefined; arithmetic operators
// propagate it, min/max operators drop it in favor of the known operand.
const poison = ids.UnknownVoltage

// CalculateVoltage evaluates a voltage expression under interpretation
// which, resolving macro names against table and Vth[model] tokens against
// models. Returns UnknownVoltage if the result is poisoned.
func CalculateVoltage(eq string, which Interpretation, table *Table, models Models) ids.Voltage {
	tokens := tokenize(eq)
	postfix := toPostfix(tokens)
	return evalPostfix(postfix, which, table, models)
}

func tokenize(eq string) []string {
	eq = strings.ReplaceAll(eq, "(", " ( ")
	eq = strings.ReplaceAll(eq, ")", " ) ")
	for _, op := range []string{"+", "-", "*", "/", "<", ">"} {
		eq = strings.ReplaceAll(eq, op, " "+op+" ")
	}
	return strings.Fields(eq)
}

var precedence = map[string]int{
	"<": 1, ">": 1,
	"+": 2, "-": 2,
	"*": 3, "/": 3,
}

// toPostfix runs the shunting-yard algorithm over tokens.
func toPostfix(tokens []string) []string {
	var output []string
	var ops []string
	for _, tok := range tokens {
		switch {
		case tok == "(":
			ops = append(ops, tok)
		case tok == ")":
			for len(ops) > 0 && ops[len(ops)-1] != "(" {
				output = append(output, ops[len(ops)-1])
				ops = ops[:len(ops)-1]
			}
			if len(ops) > 0 {
				ops = ops[:len(ops)-1] // discard "("
			}
		case isOperator(tok):
			for len(ops) > 0 && isOperator(ops[len(ops)-1]) && precedence[ops[len(ops)-1]] >= precedence[tok] {
				output = append(output, ops[len(ops)-1])
				ops = ops[:len(ops)-1]
			}
			ops = append(ops, tok)
		default:
			output = append(output, tok)
		}
	}
	for len(ops) > 0 {
		output = append(output, ops[len(ops)-1])
		ops = ops[:len(ops)-1]
	}
	return output
}

func isOperator(tok string) bool {
	_, ok := precedence[tok]
	return ok
}

// evalPostfix walks the postfix token stream maintaining a stack of
// Voltage values, where poison propagates through arithmetic but is
// discarded by min ("<") / max (">") in favor of the known side.
func evalPostfix(postfix []string, which Interpretation, table *Table, models Models) ids.Voltage {
	var stack []ids.Voltage
	push := func(v ids.Voltage) { stack = append(stack, v) }
	pop := func() ids.Voltage {
		if len(stack) == 0 {
			return poison
		}
		v := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		return v
	}

	for _, tok := range postfix {
		if isOperator(tok) {
			b := pop()
			a := pop()
			push(applyOp(tok, a, b))
			continue
		}
		push(resolveToken(tok, which, table, models))
	}
	if len(stack) == 0 {
		return poison
	}
	return stack[len(stack)-1]
}

func applyOp(op string, a, b ids.Voltage) ids.Voltage {
	switch op {
	case "<":
		return minKnown(a, b)
	case ">":
		return maxKnown(a, b)
	default:
		if a == poison || b == poison {
			return poison
		}
		switch op {
		case "+":
			return a + b
		case "-":
			return a - b
		case "*":
			return ids.Voltage(int64(a) * int64(b) / ids.VoltageScale)
		case "/":
			if b == 0 {
				return poison
			}
			return ids.Voltage(int64(a) * ids.VoltageScale / int64(b))
		default:
			return poison
		}
	}
}

func minKnown(a, b ids.Voltage) ids.Voltage {
	if a == poison {
		return b
	}
	if b == poison {
		return a
	}
	if a < b {
		return a
	}
	return b
}

func maxKnown(a, b ids.Voltage) ids.Voltage {
	if a == poison {
		return b
	}
	if b == poison {
		return a
	}
	if a > b {
		return a
	}
	return b
}

func resolveToken(tok string, which Interpretation, table *Table, models Models) ids.Voltage {
	if strings.HasPrefix(tok, "Vth[") && strings.HasSuffix(tok, "]") {
		name := tok[len("Vth[") : len(tok)-1]
		if models == nil {
			return poison
		}
		if v, ok := models.Vth(name); ok {
			return v
		}
		return poison
	}
	if v, err := strconv.ParseFloat(tok, 64); err == nil {
		return ids.FromVolts(v / 1000) // expression literals are written in mV
	}
	for _, p := range table.All() {
		if p.Signal == tok || p.Alias == tok {
			return p.Voltage(which)
		}
	}
	return poison
}
