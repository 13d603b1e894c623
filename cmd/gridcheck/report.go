package main

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/fatih/color"

	"github.com/JonMunkholm/gridcheck/internal/core"
)

var (
	errorColor   = color.New(color.FgRed, color.Bold)
	warningColor = color.New(color.FgYellow)
	okColor      = color.New(color.FgGreen, color.Bold)
	dimColor     = color.New(color.Faint)
)

// printReport writes the summary line and up to limit violations.
// limit 0 lists everything; a negative limit lists nothing.
func printReport(w io.Writer, res *checkResult, limit int) {
	if len(res.Ignored) > 0 {
		fmt.Fprintf(w, "%s ignored columns: %s\n", warningColor.Sprint("!"), strings.Join(res.Ignored, ", "))
	}
	if len(res.Missing) > 0 {
		fmt.Fprintf(w, "%s missing columns: %s\n", warningColor.Sprint("!"), strings.Join(res.Missing, ", "))
	}

	list := orderedViolations(res.Violations, res.Columns)
	shown := list
	if limit < 0 {
		shown = nil
	} else if limit > 0 && len(list) > limit {
		shown = list[:limit]
	}

	for _, v := range shown {
		msg := core.Explain(v)
		sev := errorColor.Sprint("error  ")
		if v.Severity == core.SeverityWarning {
			sev = warningColor.Sprint("warning")
		}
		fmt.Fprintf(w, "  row %-5d %-16s %s %s %s\n",
			int(v.Cell.Row)+1, v.Cell.Column, sev, dimColor.Sprint("["+msg.Code+"]"), msg.Message)
	}
	if hidden := len(list) - len(shown); hidden > 0 && limit >= 0 {
		fmt.Fprintf(w, "  ... %d more (use --max 0 to list all)\n", hidden)
	}

	name := res.RuleSet
	if res.File != "" {
		name = res.File + " (" + res.RuleSet + ")"
	}
	if res.Summary.Errors == 0 && res.Summary.Warnings == 0 {
		fmt.Fprintf(w, "%s %s: %d rows, no violations\n", okColor.Sprint("✓"), name, len(res.Records))
		return
	}
	fmt.Fprintf(w, "%s %s: %d rows, %s, %s in %d cells\n",
		errorColor.Sprint("✗"), name, len(res.Records),
		plural(res.Summary.Errors, "error"), plural(res.Summary.Warnings, "warning"), res.Summary.Cells)
}

// orderedViolations flattens vs by row, then column order.
func orderedViolations(vs core.Violations, columns []string) []core.Violation {
	position := make(map[string]int, len(columns))
	for i, c := range columns {
		position[c] = i
	}
	ids := make([]core.CellID, 0, len(vs))
	for id := range vs {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		if ids[i].Row != ids[j].Row {
			return ids[i].Row < ids[j].Row
		}
		return position[ids[i].Column] < position[ids[j].Column]
	})

	out := make([]core.Violation, 0, vs.Count())
	for _, id := range ids {
		out = append(out, vs[id]...)
	}
	return out
}

func plural(n int, word string) string {
	if n == 1 {
		return "1 " + word
	}
	return fmt.Sprintf("%d %ss", n, word)
}
