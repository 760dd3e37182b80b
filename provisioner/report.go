// Copyright © 2024 Blsforme Project
//
// SPDX-License-Identifier: GPL-3.0-only

package provisioner

import (
	"fmt"
	"sort"
	"strings"

	"github.com/huandu/xstrings"
)

// titleCaseName renders a kebab-case strategy name ("use-whole-disk") as a
// Title Case heading ("Use Whole Disk") for the report.
func titleCaseName(name string) string {
	words := strings.Split(name, "-")
	for i, w := range words {
		words[i] = xstrings.FirstRuneToUpper(w)
	}
	return strings.Join(words, " ")
}

// PlanReport is a human-oriented rendering of a Plan: one section per
// device assignment, each listing the device's planned layout and whether
// the strategy apply that produced it actually succeeded.
type PlanReport struct {
	plan Plan
}

// NewPlanReport builds a PlanReport for p.
func NewPlanReport(p Plan) *PlanReport {
	return &PlanReport{plan: p}
}

// String renders the report. Device sections are ordered by find-disk
// variable name for a stable, diffable report across runs.
func (r *PlanReport) String() string {
	var out strings.Builder
	fmt.Fprintf(&out, "Strategy: %s\n", titleCaseName(r.plan.StrategyName))

	var names []string
	for name := range r.plan.Assignments {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		dp := r.plan.Assignments[name]
		status := "applied"
		if !dp.Applied {
			status = "failed"
		}
		fmt.Fprintf(&out, "\n%s -> %s [%s]\n", name, dp.Device.DevPath(), status)
		fmt.Fprintf(&out, "%s\n", dp.Strategy.Describe())
		for _, line := range dp.Planner.Describe() {
			fmt.Fprintf(&out, "  %s\n", line)
		}
	}

	if !r.plan.HasChanges() {
		out.WriteString("\n(no changes: every device in this plan failed to apply)\n")
	}

	return out.String()
}
