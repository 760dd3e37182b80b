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

func TestTitleCaseNameFormatsKebabCase(t *testing.T) {
	if got := titleCaseName("use-whole-disk"); got != "Use Whole Disk" {
		t.Fatalf("expected %q, got %q", "Use Whole Disk", got)
	}
}

func TestPlanReportIncludesDeviceAndStrategyName(t *testing.T) {
	doc := `
strategy name="single" {
    find-disk "main" { constraints { min (gib)10 } }
}
`
	defs := mustParse(t, doc)
	resolved, _ := strategydoc.ResolveInheritance(defs)

	pv := New()
	pv.PushDevice(device.NewMockDisk("disk-a", 50*gib/device.SectorSize, nil))
	pv.AddStrategy(resolved["single"])

	plans := pv.Plan()
	if len(plans) != 1 {
		t.Fatalf("expected 1 plan, got %d", len(plans))
	}

	report := NewPlanReport(plans[0]).String()
	if !strings.Contains(report, "Single") {
		t.Fatalf("expected report to mention the Title Case strategy name, got:\n%s", report)
	}
	if !strings.Contains(report, "/dev/disk-a") {
		t.Fatalf("expected report to mention assigned device, got:\n%s", report)
	}
}
