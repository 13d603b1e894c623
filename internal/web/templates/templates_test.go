package templates

import (
	"bytes"
	"context"
	"strings"
	"testing"
)

func TestErrorAlert(t *testing.T) {
	var buf bytes.Buffer
	if err := ErrorAlert("Bad <input>", "Fix it", "REQ004").Render(context.Background(), &buf); err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	out := buf.String()

	for _, want := range []string{"Bad &lt;input&gt;", "Fix it", "REQ004", `role="alert"`} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "<input>") {
		t.Error("message was not escaped")
	}
}

func TestErrorAlert_OmitsEmptyParts(t *testing.T) {
	var buf bytes.Buffer
	if err := ErrorAlert("Oops", "", "").Render(context.Background(), &buf); err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if strings.Contains(buf.String(), "alert-action") || strings.Contains(buf.String(), "alert-code") {
		t.Errorf("unexpected optional parts: %s", buf.String())
	}
}

func TestGridPage(t *testing.T) {
	view := GridView{
		SessionID: "abc",
		RuleSet:   "conversation_turns",
		Enabled:   true,
		Revision:  3,
		Errors:    1,
		Columns:   []GridColumn{{ID: "QueryID", Label: "Query ID"}, {ID: "Turn", Label: "Turn"}},
		Rows: []GridRow{
			{Row: 0, Cells: []GridCell{
				{Column: "QueryID", Value: "q1"},
				{Column: "Turn", Value: "3", Severity: "error", Comment: `[VAL007] QueryID "q1" must start at turn 1`},
			}},
		},
	}

	var buf bytes.Buffer
	if err := GridPage(view).Render(context.Background(), &buf); err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	out := buf.String()

	checks := []string{
		`data-revision="3"`,
		"Validation ON: 1 errors, 0 warnings",
		`<th data-column="QueryID">Query ID</th>`,
		`<td data-column="QueryID">q1</td>`,
		`class="cell-error"`,
		`title="[VAL007] QueryID &#34;q1&#34; must start at turn 1"`,
	}
	for _, want := range checks {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestGridPage_Disabled(t *testing.T) {
	var buf bytes.Buffer
	if err := GridPage(GridView{RuleSet: "x"}).Render(context.Background(), &buf); err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if !strings.Contains(buf.String(), "Validation OFF") {
		t.Errorf("expected OFF status, got %s", buf.String())
	}
}
