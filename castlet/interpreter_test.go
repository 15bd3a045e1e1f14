package castlet

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func compileTestProgram(t *testing.T, name string) *Script {
	t.Helper()
	source, err := os.ReadFile(filepath.Join("testdata", name))
	if err != nil {
		t.Fatalf("read fixture %s: %v", name, err)
	}
	engine := NewEngine(Config{})
	script, err := engine.Compile(string(source))
	if err != nil {
		t.Fatalf("compile %s: %v", name, err)
	}
	return script
}

func runTestProgram(t *testing.T, name string) *Result {
	t.Helper()
	script := compileTestProgram(t, name)
	result, err := script.Run(context.Background(), RunOptions{})
	if err != nil {
		t.Fatalf("run %s: %v", name, err)
	}
	return result
}

func expectOutputs(t *testing.T, result *Result, expected [][]int64) {
	t.Helper()
	if len(result.Outputs) != len(expected) {
		t.Fatalf("expected %d output rows, got %d", len(expected), len(result.Outputs))
	}
	for i, want := range expected {
		got := result.Outputs[i].Values
		if len(got) != len(want) {
			t.Fatalf("row %d: expected %v, got %v", i, want, got)
		}
		for j := range want {
			if got[j] != want[j] {
				t.Fatalf("row %d: expected %v, got %v", i, want, got)
			}
		}
	}
}

func TestCanonicalCastCloneScenario(t *testing.T) {
	result := runTestProgram(t, "canonical.cst")
	expectOutputs(t, result, [][]int64{
		{1, 2},  // call a.show: new A(1, 2) seen through A
		{1},     // call b.show: same object seen through B
		{50, 2}, // b.a = 50 is visible through a
		{50},    // and through b
		{50},    // clone starts from current values
		{9},     // mutating the clone
		{50, 2}, // leaves the original untouched
	})
}

func TestZooFixture(t *testing.T) {
	result := runTestProgram(t, "zoo.cst")
	expectOutputs(t, result, [][]int64{
		{4, 1}, // Puppy view runs Dog's describe override
		{7, 4}, // literal 7 passes through, then legs
		{4},    // Animal view sees only the root describe
	})

	expectedChecks := []TypeCheck{
		{Variable: "p", Class: "Animal", Is: true},
		{Variable: "an", Class: "Puppy", Is: true},
		{Variable: "p", Class: "Dog", Is: true},
	}
	if len(result.Checks) != len(expectedChecks) {
		t.Fatalf("expected %d checks, got %d", len(expectedChecks), len(result.Checks))
	}
	for i, want := range expectedChecks {
		if result.Checks[i] != want {
			t.Fatalf("check %d: expected %+v, got %+v", i, want, result.Checks[i])
		}
	}
}

func TestCastSharesIdentity(t *testing.T) {
	result := runTestProgram(t, "canonical.cst")

	a, _ := result.env.Get("a")
	b, _ := result.env.Get("b")
	if a.Target != b.Target {
		t.Fatalf("cast must not allocate: references diverged")
	}
	if a.Static == b.Static {
		t.Fatalf("cast must change the static view")
	}
	if a.Static.Name != "A" || b.Static.Name != "B" {
		t.Fatalf("unexpected static types: a=%s b=%s", a.Static.Name, b.Static.Name)
	}
	if b.Target.Class.Name != "A" {
		t.Fatalf("cast must not touch the dynamic type, got %s", b.Target.Class.Name)
	}
}

func TestCloneAllocatesAndKeepsStaticType(t *testing.T) {
	result := runTestProgram(t, "canonical.cst")

	b, _ := result.env.Get("b")
	c, _ := result.env.Get("c")
	if b.Target == c.Target {
		t.Fatalf("clone must allocate a fresh instance")
	}
	if c.Static != b.Static {
		t.Fatalf("clone must keep the source's static type, got %s", c.Static.Name)
	}
	if c.Target.Class != b.Target.Class {
		t.Fatalf("clone must keep the dynamic type, got %s", c.Target.Class.Name)
	}
}

func TestAliasBindingSharesViewAndIdentity(t *testing.T) {
	engine := NewEngine(Config{})
	script, err := engine.Compile(analyzerTestClasses + `let a = new A(1, 2)
let b = cast<B> a
let d = b
d.a = 5
call a.show
`)
	if err != nil {
		t.Fatalf("compile failed: %v", err)
	}
	result, err := script.Run(context.Background(), RunOptions{})
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}

	b, _ := result.env.Get("b")
	d, _ := result.env.Get("d")
	if b.Target != d.Target || b.Static != d.Static {
		t.Fatalf("alias must copy the reference unchanged")
	}
	expectOutputs(t, result, [][]int64{{5, 2}})
}

func TestReporterSeesProgramOrder(t *testing.T) {
	script := compileTestProgram(t, "zoo.cst")
	reporter := &recordingReporter{}
	if _, err := script.Run(context.Background(), RunOptions{Reporter: reporter}); err != nil {
		t.Fatalf("run failed: %v", err)
	}

	expected := []string{
		"call p.describe", "call p.tag", "call an.describe",
		"is p Animal", "is an Puppy", "is p Dog",
	}
	if len(reporter.events) != len(expected) {
		t.Fatalf("expected %d events, got %d: %v", len(expected), len(reporter.events), reporter.events)
	}
	for i, want := range expected {
		if reporter.events[i] != want {
			t.Fatalf("event %d: expected %q, got %q", i, want, reporter.events[i])
		}
	}
}

type recordingReporter struct {
	events []string
}

func (r *recordingReporter) MethodCalled(variable, method string, values []int64) {
	r.events = append(r.events, "call "+variable+"."+method)
}

func (r *recordingReporter) TypeChecked(variable, class string, is bool) {
	r.events = append(r.events, "is "+variable+" "+class)
}

// A program may open with an `is` statement right after the last class
// block; it compiles and yields a negative verdict for the unknown name.
func TestIsAsFirstStatement(t *testing.T) {
	engine := NewEngine(Config{})
	script, err := engine.Compile("CLASS A\nbase = None\nfields = []\n\nghost is A\n")
	if err != nil {
		t.Fatalf("compile failed: %v", err)
	}
	result, err := script.Run(context.Background(), RunOptions{})
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if len(result.Checks) != 1 || result.Checks[0].Is {
		t.Fatalf("expected one negative verdict, got %+v", result.Checks)
	}
}

func TestIsUnknownNamesAreNegative(t *testing.T) {
	engine := NewEngine(Config{})
	script, err := engine.Compile(analyzerTestClasses + `let a = new A(1, 2)
ghost is A
a is Phantom
a is A
`)
	if err != nil {
		t.Fatalf("compile failed: %v", err)
	}
	result, err := script.Run(context.Background(), RunOptions{})
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	verdicts := []bool{false, false, true}
	if len(result.Checks) != len(verdicts) {
		t.Fatalf("expected %d checks, got %d", len(verdicts), len(result.Checks))
	}
	for i, want := range verdicts {
		if result.Checks[i].Is != want {
			t.Fatalf("check %d: expected %v, got %+v", i, want, result.Checks[i])
		}
	}
}

func TestRunIsRepeatable(t *testing.T) {
	script := compileTestProgram(t, "canonical.cst")

	first, err := script.Run(context.Background(), RunOptions{})
	if err != nil {
		t.Fatalf("first run: %v", err)
	}
	second, err := script.Run(context.Background(), RunOptions{})
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if len(first.Outputs) != len(second.Outputs) {
		t.Fatalf("runs disagree: %d vs %d rows", len(first.Outputs), len(second.Outputs))
	}
	firstA, _ := first.env.Get("a")
	secondA, _ := second.env.Get("a")
	if firstA.Target == secondA.Target {
		t.Fatalf("each run must own a fresh instance store")
	}
}

func TestInstanceQuotaAborts(t *testing.T) {
	engine := NewEngine(Config{MaxInstances: 2})
	script, err := engine.Compile(analyzerTestClasses + `let a = new A(1, 2)
let b = clone a
let c = clone a
`)
	if err != nil {
		t.Fatalf("compile failed: %v", err)
	}
	_, err = script.Run(context.Background(), RunOptions{})
	if err == nil || !strings.Contains(err.Error(), "instance quota exceeded") {
		t.Fatalf("expected instance quota error, got %v", err)
	}
}

func TestStepQuotaAborts(t *testing.T) {
	engine := NewEngine(Config{StepQuota: 3})
	script, err := engine.Compile(analyzerTestClasses + `let a = new A(1, 2)
call a.show
call a.show
call a.show
`)
	if err != nil {
		t.Fatalf("compile failed: %v", err)
	}
	_, err = script.Run(context.Background(), RunOptions{})
	if err == nil || !strings.Contains(err.Error(), "step quota exceeded") {
		t.Fatalf("expected step quota error, got %v", err)
	}
}

func TestRunHonorsContext(t *testing.T) {
	script := compileTestProgram(t, "canonical.cst")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := script.Run(ctx, RunOptions{}); err != context.Canceled {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestConfigSummary(t *testing.T) {
	engine := NewEngine(Config{StepQuota: 10, MaxInstances: 5})
	summary := engine.ConfigSummary()
	if !strings.Contains(summary, "steps=10") || !strings.Contains(summary, "instances=5") {
		t.Fatalf("unexpected summary: %s", summary)
	}
}
