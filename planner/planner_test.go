// Copyright © 2024 Blsforme Project
//
// SPDX-License-Identifier: GPL-3.0-only

package planner

import "testing"

const (
	mib = 1 << 20
	gib = 1 << 30
)

func regionsEqual(a, b []Region) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestAlignmentCoercionAndOverlap(t *testing.T) {
	// Scenario 4: alignment coercion on an empty 500 GiB disk.
	p := New(500*gib, nil)

	if err := p.PlanAddPartition(2*mib+100, 3*mib-100); err != nil {
		t.Fatalf("expected aligned add to succeed: %v", err)
	}

	got := p.CurrentLayout()
	want := []Region{{Start: 2 * mib, End: 3 * mib}}
	if !regionsEqual(got, want) {
		t.Fatalf("CurrentLayout() = %+v, want %+v", got, want)
	}

	err := p.PlanAddPartition(2*mib, 3*mib)
	if err == nil {
		t.Fatal("expected second identical add to fail with overlap")
	}
	pe, ok := err.(PlanError)
	if !ok || pe.Kind != ErrRegionOverlap {
		t.Fatalf("expected ErrRegionOverlap, got %v", err)
	}
}

func TestAdjacentRegionsAreNotOverlapping(t *testing.T) {
	p := New(1*gib, nil)

	if err := p.PlanAddPartition(0, 10*mib); err != nil {
		t.Fatalf("first add failed: %v", err)
	}
	if err := p.PlanAddPartition(10*mib, 20*mib); err != nil {
		t.Fatalf("adjacent add should not be rejected as overlap: %v", err)
	}
}

func TestZeroSizeAfterAlignmentRejected(t *testing.T) {
	p := New(1*gib, nil)

	// A sub-alignment request collapses to zero width after rounding.
	err := p.PlanAddPartition(100, 200)
	if err == nil {
		t.Fatal("expected zero-size-after-alignment to be rejected")
	}
	if pe, ok := err.(PlanError); !ok || pe.Kind != ErrRegionOutOfBounds {
		t.Fatalf("expected ErrRegionOutOfBounds, got %v", err)
	}
}

func TestUndoIsNoOpOnCurrentLayout(t *testing.T) {
	p := New(1*gib, nil)
	before := p.CurrentLayout()

	if err := p.PlanAddPartition(0, 10*mib); err != nil {
		t.Fatal(err)
	}
	if !p.Undo() {
		t.Fatal("expected Undo() to pop the add")
	}

	after := p.CurrentLayout()
	if !regionsEqual(before, after) {
		t.Fatalf("apply+undo should be a no-op: before=%+v after=%+v", before, after)
	}
}

func TestUndoIsLIFOAcrossMultipleAdds(t *testing.T) {
	p := New(1*gib, nil)

	if err := p.PlanAddPartition(0, 10*mib); err != nil {
		t.Fatal(err)
	}
	if err := p.PlanAddPartition(10*mib, 20*mib); err != nil {
		t.Fatal(err)
	}

	if !p.Undo() {
		t.Fatal("expected first undo to succeed")
	}
	got := p.CurrentLayout()
	want := []Region{{Start: 0, End: 10 * mib}}
	if !regionsEqual(got, want) {
		t.Fatalf("after one undo: got %+v, want %+v", got, want)
	}

	if !p.Undo() {
		t.Fatal("expected second undo to succeed")
	}
	if len(p.CurrentLayout()) != 0 {
		t.Fatalf("expected empty layout after undoing both adds, got %+v", p.CurrentLayout())
	}

	if p.Undo() {
		t.Fatal("expected third undo to report nothing popped")
	}
}

func TestReplaceLinuxScenario(t *testing.T) {
	// Spec scenario 3: replace Linux.
	initial := []Region{
		{Start: 0, End: 512 * mib},                  // ESP
		{Start: 512 * mib, End: 4*gib + 512*mib},    // swap
		{Start: 4*gib + 512*mib, End: 500 * gib},    // root
	}
	p := New(500*gib, initial)

	if err := p.PlanDeletePartition(1); err != nil {
		t.Fatalf("delete index 1 failed: %v", err)
	}
	if err := p.PlanDeletePartition(2); err != nil {
		t.Fatalf("delete index 2 failed: %v", err)
	}

	if err := p.PlanAddPartition(512*mib, 8*gib+512*mib); err != nil {
		t.Fatalf("add new swap failed: %v", err)
	}
	if err := p.PlanAddPartition(8*gib+512*mib, 500*gib); err != nil {
		t.Fatalf("add new root failed: %v", err)
	}

	layout := p.CurrentLayout()
	if len(layout) != 3 {
		t.Fatalf("expected 3 partitions, got %d: %+v", len(layout), layout)
	}

	if layout[0] != (Region{Start: 0, End: 512 * mib}) {
		t.Fatalf("ESP should remain intact, got %+v", layout[0])
	}

	var newSwap Region
	for _, r := range layout {
		if r.Start == 512*mib {
			newSwap = r
		}
	}
	if newSwap.Size() != 8*gib {
		t.Fatalf("expected new swap to be exactly 8 GiB, got %d bytes", newSwap.Size())
	}
}

func TestDeleteThenAddDisjointEquivalentToSingleAdd(t *testing.T) {
	initial := []Region{{Start: 0, End: 10 * mib}}

	p1 := New(1*gib, initial)
	if err := p1.PlanDeletePartition(0); err != nil {
		t.Fatal(err)
	}
	if err := p1.PlanAddPartition(20*mib, 30*mib); err != nil {
		t.Fatal(err)
	}

	p2 := New(1*gib, nil)
	if err := p2.PlanAddPartition(20*mib, 30*mib); err != nil {
		t.Fatal(err)
	}

	if !regionsEqual(p1.CurrentLayout(), p2.CurrentLayout()) {
		t.Fatalf("delete+add should equal a single add: %+v vs %+v", p1.CurrentLayout(), p2.CurrentLayout())
	}
}

func TestPlanInitializeDiskClearsEverything(t *testing.T) {
	initial := []Region{{Start: 0, End: 10 * mib}}
	p := New(1*gib, initial)

	if err := p.PlanAddPartition(20*mib, 30*mib); err != nil {
		t.Fatal(err)
	}

	p.PlanInitializeDisk()

	if len(p.CurrentLayout()) != 0 {
		t.Fatalf("expected empty layout after PlanInitializeDisk, got %+v", p.CurrentLayout())
	}
}

func TestPlanDeletePartitionOutOfRangeFails(t *testing.T) {
	p := New(1*gib, nil)
	if err := p.PlanDeletePartition(0); err == nil {
		t.Fatal("expected delete of nonexistent index to fail")
	}
}

func TestUsableWindowRejectsAlreadyAlignedStartOutsideWindow(t *testing.T) {
	p := New(1*gib, nil).WithStartOffset(1 * mib).WithEndOffset(1*gib - mib)

	// start=0 is already 1-MiB aligned, so moving it to the usable window's
	// start is not a clamp this planner is allowed to perform silently.
	err := p.PlanAddPartition(0, 2*mib)
	if err == nil {
		t.Fatal("expected an already-aligned start outside the usable window to be rejected")
	}
	if pe, ok := err.(PlanError); !ok || pe.Kind != ErrRegionOutOfBounds {
		t.Fatalf("expected ErrRegionOutOfBounds, got %v", err)
	}
}

func TestUsableWindowClampsUnalignedEndpoints(t *testing.T) {
	p := New(1*gib, nil).WithStartOffset(1 * mib).WithEndOffset(1*gib - mib)

	// start=512KiB is not aligned, so the clamp to the usable window's start
	// is allowed to apply silently.
	if err := p.PlanAddPartition(512*1024, 2*mib); err != nil {
		t.Fatalf("expected clamp to usable start, got error: %v", err)
	}
	got := p.CurrentLayout()
	if got[0].Start != 1*mib {
		t.Fatalf("expected start clamped to 1 MiB, got %d", got[0].Start)
	}
}
