// Copyright © 2024 Blsforme Project
//
// SPDX-License-Identifier: GPL-3.0-only

package provisioner

import (
	"strings"
	"testing"

	"github.com/blsforme/provision-disk/device"
	"github.com/blsforme/provision-disk/strategydoc"
)

const gib = 1 << 30

func mustParse(t *testing.T, doc string) []strategydoc.StrategyDef {
	t.Helper()
	result, err := strategydoc.Parse(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	for _, d := range result.Diagnostics {
		t.Fatalf("unexpected diagnostic: %s", d)
	}
	return result.Strategies
}

func TestPlanAssignsSingleDiskAndAppliesPartitions(t *testing.T) {
	doc := `
strategy name="use-whole-disk" {
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
	defs := mustParse(t, doc)
	resolved, diags := strategydoc.ResolveInheritance(defs)
	if len(diags) != 0 {
		t.Fatalf("unexpected resolve diagnostics: %v", diags)
	}

	pv := New()
	pv.PushDevice(device.NewMockDisk("mockdisk0", 100*gib/device.SectorSize, nil))
	pv.AddStrategy(resolved["use-whole-disk"])

	plans := pv.Plan()
	if len(plans) != 1 {
		t.Fatalf("expected exactly 1 plan (1 matching device), got %d", len(plans))
	}

	p := plans[0]
	if p.StrategyName != "use-whole-disk" {
		t.Fatalf("unexpected strategy name %q", p.StrategyName)
	}
	dp, ok := p.Assignments["main"]
	if !ok {
		t.Fatal("expected assignment for variable \"main\"")
	}
	if !dp.Applied {
		t.Fatal("expected strategy apply to succeed for a sufficiently large disk")
	}
	if !p.HasChanges() {
		t.Fatal("expected HasChanges to report true")
	}

	layout := dp.Planner.CurrentLayout()
	if len(layout) != 2 {
		t.Fatalf("expected 2 partitions planned, got %d", len(layout))
	}
}

func TestPlanRejectsTooSmallDisk(t *testing.T) {
	doc := `
strategy name="needs-big-disk" {
    find-disk "main" { constraints { min (gib)40 } }
}
`
	defs := mustParse(t, doc)
	resolved, _ := strategydoc.ResolveInheritance(defs)

	pv := New()
	pv.PushDevice(device.NewMockDisk("tiny", 10*gib/device.SectorSize, nil))
	pv.AddStrategy(resolved["needs-big-disk"])

	plans := pv.Plan()
	if len(plans) != 0 {
		t.Fatalf("expected no plans for an undersized pool, got %d", len(plans))
	}
}

func TestPlanEnumeratesEveryQualifyingDeviceAssignment(t *testing.T) {
	doc := `
strategy name="needs-one-disk" {
    find-disk "main" { constraints { min (gib)10 } }
}
`
	defs := mustParse(t, doc)
	resolved, _ := strategydoc.ResolveInheritance(defs)

	pv := New()
	pv.PushDevice(device.NewMockDisk("disk-a", 50*gib/device.SectorSize, nil))
	pv.PushDevice(device.NewMockDisk("disk-b", 60*gib/device.SectorSize, nil))
	pv.AddStrategy(resolved["needs-one-disk"])

	plans := pv.Plan()
	if len(plans) != 2 {
		t.Fatalf("expected one plan per qualifying device (2), got %d", len(plans))
	}
}

func TestPlanNeverAssignsSameDeviceTwice(t *testing.T) {
	doc := `
strategy name="two-disks" {
    find-disk "a" { constraints { min (gib)10 } }
    find-disk "b" { constraints { min (gib)10 } }
}
`
	defs := mustParse(t, doc)
	resolved, _ := strategydoc.ResolveInheritance(defs)

	pv := New()
	pv.PushDevice(device.NewMockDisk("disk-a", 50*gib/device.SectorSize, nil))
	pv.PushDevice(device.NewMockDisk("disk-b", 60*gib/device.SectorSize, nil))
	pv.AddStrategy(resolved["two-disks"])

	plans := pv.Plan()
	for _, p := range plans {
		a := p.Assignments["a"]
		b := p.Assignments["b"]
		if a.Device.DevPath() == b.Device.DevPath() {
			t.Fatalf("expected distinct devices for \"a\" and \"b\", got %s twice", a.Device.DevPath())
		}
	}
	// 2 devices, 2 variables, no repeats => exactly 2 orderings.
	if len(plans) != 2 {
		t.Fatalf("expected 2 plans (a permutations of 2 devices over 2 variables), got %d", len(plans))
	}
}

func TestPlanUnknownStrategyNameHarmless(t *testing.T) {
	pv := New()
	pv.PushDevice(device.NewMockDisk("disk-a", 50*gib/device.SectorSize, nil))
	if plans := pv.Plan(); len(plans) != 0 {
		t.Fatalf("expected no plans with no registered strategies, got %d", len(plans))
	}
}
