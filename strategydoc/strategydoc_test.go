// Copyright © 2024 Blsforme Project
//
// SPDX-License-Identifier: GPL-3.0-only

package strategydoc

import (
	"strings"
	"testing"
)

const useWholeDiskDoc = `
strategy name="use-whole-disk" summary="Single-disk install" {
    find-disk "main" { constraints { min (gib)40 } }
    create-partition-table disk="main" type="gpt"
    create-partition disk="main" id="esp" role="boot" {
        constraints { exactly (mib)512 }
    }
    create-partition disk="main" id="root" role="root" {
        constraints { remaining }
    }
}
`

func TestParseUseWholeDiskDocument(t *testing.T) {
	result, err := Parse(strings.NewReader(useWholeDiskDoc))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	for _, d := range result.Diagnostics {
		t.Errorf("unexpected diagnostic: %s", d)
	}
	if len(result.Strategies) != 1 {
		t.Fatalf("expected 1 strategy, got %d", len(result.Strategies))
	}

	s := result.Strategies[0]
	if s.Name != "use-whole-disk" || s.Summary != "Single-disk install" {
		t.Fatalf("unexpected strategy header: %+v", s)
	}
	if len(s.Commands) != 4 {
		t.Fatalf("expected 4 commands, got %d", len(s.Commands))
	}

	fd, ok := s.Commands[0].(FindDiskCommand)
	if !ok {
		t.Fatalf("expected first command to be FindDiskCommand, got %T", s.Commands[0])
	}
	if fd.Name != "main" {
		t.Fatalf("expected find-disk name %q, got %q", "main", fd.Name)
	}
	if fd.Constraint == nil || fd.Constraint.Kind != ConstraintAtLeast || fd.Constraint.Min != 40<<30 {
		t.Fatalf("unexpected find-disk constraint: %+v", fd.Constraint)
	}

	cpt, ok := s.Commands[1].(CreatePartitionTableCommand)
	if !ok || cpt.Disk != "main" || cpt.Type != "gpt" {
		t.Fatalf("unexpected create-partition-table command: %+v (ok=%v)", s.Commands[1], ok)
	}

	esp, ok := s.Commands[2].(CreatePartitionCommand)
	if !ok || esp.ID != "esp" || esp.Role != "boot" {
		t.Fatalf("unexpected esp command: %+v (ok=%v)", s.Commands[2], ok)
	}
	if esp.Constraint == nil || esp.Constraint.Kind != ConstraintExact || esp.Constraint.Min != 512<<20 {
		t.Fatalf("unexpected esp constraint: %+v", esp.Constraint)
	}

	root, ok := s.Commands[3].(CreatePartitionCommand)
	if !ok || root.ID != "root" {
		t.Fatalf("unexpected root command: %+v (ok=%v)", s.Commands[3], ok)
	}
	if root.Constraint == nil || root.Constraint.Kind != ConstraintRemaining {
		t.Fatalf("unexpected root constraint: %+v", root.Constraint)
	}
}

func TestParseRangeConstraint(t *testing.T) {
	doc := `
strategy name="dual-boot" {
    create-partition disk="main" id="home" role="data" {
        constraints { min (gib)20; max (gib)200 }
    }
}
`
	result, err := Parse(strings.NewReader(doc))
	if err != nil {
		t.Fatal(err)
	}
	if len(result.Diagnostics) != 0 {
		t.Fatalf("unexpected diagnostics: %v", result.Diagnostics)
	}
	cp := result.Strategies[0].Commands[0].(CreatePartitionCommand)
	if cp.Constraint.Kind != ConstraintRange || cp.Constraint.Min != 20<<30 || cp.Constraint.Max != 200<<30 {
		t.Fatalf("unexpected range constraint: %+v", cp.Constraint)
	}
}

func TestParseMissingRequiredPropertyProducesDiagnostic(t *testing.T) {
	doc := `
strategy summary="missing a name" {
    find-disk "main"
}
`
	result, err := Parse(strings.NewReader(doc))
	if err != nil {
		t.Fatal(err)
	}
	if len(result.Strategies) != 0 {
		t.Fatalf("expected the malformed strategy to be dropped, got %d", len(result.Strategies))
	}
	if len(result.Diagnostics) == 0 {
		t.Fatal("expected at least one diagnostic")
	}
	if result.Diagnostics[0].Kind != MissingProperty {
		t.Fatalf("expected MissingProperty, got %v", result.Diagnostics[0].Kind)
	}
}

func TestParseUnknownTopLevelNodeIsDiagnosedNotFatal(t *testing.T) {
	doc := `
bogus-node "whatever"
strategy name="ok" {
    find-disk "main"
}
`
	result, err := Parse(strings.NewReader(doc))
	if err != nil {
		t.Fatal(err)
	}
	if len(result.Strategies) != 1 {
		t.Fatalf("expected the valid strategy to still parse, got %d strategies", len(result.Strategies))
	}
	foundUnsupported := false
	for _, d := range result.Diagnostics {
		if d.Kind == UnsupportedNode {
			foundUnsupported = true
		}
	}
	if !foundUnsupported {
		t.Fatal("expected an UnsupportedNode diagnostic for the bogus top-level node")
	}
}

func TestResolveInheritanceFlattensParentCommandsFirst(t *testing.T) {
	base := StrategyDef{
		Name:     "base",
		Commands: []Command{FindDiskCommand{Name: "main"}},
	}
	child := StrategyDef{
		Name:     "child",
		Inherits: "base",
		Commands: []Command{CreatePartitionTableCommand{Disk: "main", Type: "gpt"}},
	}

	resolved, diags := ResolveInheritance([]StrategyDef{base, child})
	if len(diags) != 0 {
		t.Fatalf("unexpected diagnostics: %v", diags)
	}
	r := resolved["child"]
	if len(r.Commands) != 2 {
		t.Fatalf("expected 2 flattened commands, got %d", len(r.Commands))
	}
	if _, ok := r.Commands[0].(FindDiskCommand); !ok {
		t.Fatalf("expected parent's command first, got %T", r.Commands[0])
	}
}

func TestResolveInheritanceRejectsCycles(t *testing.T) {
	a := StrategyDef{Name: "a", Inherits: "b"}
	b := StrategyDef{Name: "b", Inherits: "a"}

	resolved, diags := ResolveInheritance([]StrategyDef{a, b})
	if len(resolved) != 0 {
		t.Fatalf("expected no strategies to resolve out of a cycle, got %d", len(resolved))
	}
	if len(diags) != 2 {
		t.Fatalf("expected one diagnostic per cyclic strategy, got %d", len(diags))
	}
}

func TestResolveInheritanceRejectsUnknownParent(t *testing.T) {
	child := StrategyDef{Name: "child", Inherits: "nonexistent"}
	resolved, diags := ResolveInheritance([]StrategyDef{child})
	if len(resolved) != 0 {
		t.Fatalf("expected no resolution for an unknown parent, got %d", len(resolved))
	}
	if len(diags) != 1 {
		t.Fatalf("expected 1 diagnostic, got %d", len(diags))
	}
}
