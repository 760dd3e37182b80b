// Copyright © 2024 Blsforme Project
//
// SPDX-License-Identifier: GPL-3.0-only

// Package provisioner glues a pool of discovered devices to parsed strategy
// documents: it enumerates every way of assigning pool devices to a
// strategy's find-disk variables and, for each satisfiable assignment,
// builds a Planner and a Strategy per device and produces one Plan.
package provisioner

import (
	"sort"

	"github.com/blsforme/provision-disk/device"
	"github.com/blsforme/provision-disk/log"
	"github.com/blsforme/provision-disk/planner"
	"github.com/blsforme/provision-disk/strategy"
	"github.com/blsforme/provision-disk/strategydoc"
)

// DevicePlan is one find-disk variable's resolved device, the planner
// accumulating its layout changes, and the strategy compiling its
// partition requests.
type DevicePlan struct {
	Device   device.BlockDevice
	Planner  *planner.Planner
	Strategy *strategy.Strategy
	Applied  bool // set once Strategy.Apply has been attempted for this device
}

// Plan is one fully-resolved branch of a strategy: a name and the device
// assignment it produced.
type Plan struct {
	StrategyName string
	Assignments  map[string]*DevicePlan
}

// HasChanges reports whether any device in this plan actually had its
// strategy applied successfully. A plan can still be emitted with no
// changes at all if every device's Strategy.Apply failed.
func (p Plan) HasChanges() bool {
	for _, dp := range p.Assignments {
		if dp.Applied {
			return true
		}
	}
	return false
}

// Provisioner holds a device pool and a set of resolved strategies.
type Provisioner struct {
	pool       []device.BlockDevice
	strategies map[string]strategydoc.Resolved
}

// New creates an empty Provisioner.
func New() *Provisioner {
	return &Provisioner{strategies: map[string]strategydoc.Resolved{}}
}

// PushDevice adds a device to the pool plan() enumerates assignments
// against.
func (pv *Provisioner) PushDevice(d device.BlockDevice) {
	pv.pool = append(pv.pool, d)
}

// AddStrategy registers a resolved strategy definition (its inheritance
// chain already flattened by strategydoc.ResolveInheritance).
func (pv *Provisioner) AddStrategy(def strategydoc.Resolved) {
	pv.strategies[def.Name] = def
}

// Plan enumerates every satisfiable device assignment across every
// registered strategy. Strategies are visited in name-sorted order so the
// result is deterministic for a given pool and strategy set.
func (pv *Provisioner) Plan() []Plan {
	var names []string
	for name := range pv.strategies {
		names = append(names, name)
	}
	sort.Strings(names)

	var results []Plan
	for _, name := range names {
		def := pv.strategies[name]
		var branches []Plan
		enumerate(def.Commands, 0, map[string]*DevicePlan{}, map[string]bool{}, pv.pool, &branches)
		for i := range branches {
			branches[i].StrategyName = name
		}
		results = append(results, branches...)
	}
	return results
}

func devicePoolKey(d device.BlockDevice) string {
	return d.DevPath()
}

// enumerate walks commands from idx, branching at every find-disk command
// that introduces a new variable and mutating the current branch's
// assignment map in place for every other command. A completed branch
// (idx == len(commands)) is finalized: every device's strategy is applied
// to its planner and the branch is appended to results.
func enumerate(
	commands []strategydoc.Command,
	idx int,
	assignment map[string]*DevicePlan,
	used map[string]bool,
	pool []device.BlockDevice,
	results *[]Plan,
) {
	if idx == len(commands) {
		*results = append(*results, finalize(assignment))
		return
	}

	switch cmd := commands[idx].(type) {
	case strategydoc.FindDiskCommand:
		if _, bound := assignment[cmd.Name]; bound {
			enumerate(commands, idx+1, assignment, used, pool, results)
			return
		}
		for _, candidate := range pool {
			key := devicePoolKey(candidate)
			if used[key] {
				continue
			}
			if !constraintSatisfied(cmd.Constraint, candidate.Sectors()*device.SectorSize) {
				continue
			}

			nextAssignment := cloneAssignment(assignment)
			nextUsed := cloneUsed(used)
			nextUsed[key] = true
			nextAssignment[cmd.Name] = &DevicePlan{
				Device:   candidate,
				Planner:  seedPlanner(candidate),
				Strategy: strategy.New(strategy.AllocationStrategy{Kind: strategy.LargestFree}),
			}
			enumerate(commands, idx+1, nextAssignment, nextUsed, pool, results)
		}
		return

	case strategydoc.CreatePartitionTableCommand:
		dp, ok := assignment[cmd.Disk]
		if !ok {
			log.Warning("create-partition-table references unknown disk variable %q", cmd.Disk)
		} else {
			dp.Strategy.SetAllocation(strategy.AllocationStrategy{Kind: strategy.InitializeWholeDisk})
		}
		enumerate(commands, idx+1, assignment, used, pool, results)

	case strategydoc.CreatePartitionCommand:
		dp, ok := assignment[cmd.Disk]
		if !ok {
			log.Warning("create-partition references unknown disk variable %q", cmd.Disk)
		} else {
			dp.Strategy.AddRequest(strategy.PartitionRequest{Size: toSizeRequirement(cmd.Constraint)})
		}
		enumerate(commands, idx+1, assignment, used, pool, results)

	default:
		log.Warning("unrecognized strategy command %T; skipping", cmd)
		enumerate(commands, idx+1, assignment, used, pool, results)
	}
}

func finalize(assignment map[string]*DevicePlan) Plan {
	for _, dp := range assignment {
		if err := dp.Strategy.Apply(dp.Planner); err != nil {
			log.Warning("strategy apply failed for %s: %v", dp.Device.DevPath(), err)
			dp.Applied = false
			continue
		}
		dp.Applied = true
	}
	return Plan{Assignments: assignment}
}

func cloneAssignment(m map[string]*DevicePlan) map[string]*DevicePlan {
	out := make(map[string]*DevicePlan, len(m)+1)
	for k, v := range m {
		out[k] = v
	}
	return out
}

func cloneUsed(m map[string]bool) map[string]bool {
	out := make(map[string]bool, len(m)+1)
	for k, v := range m {
		out[k] = v
	}
	return out
}

func seedPlanner(d device.BlockDevice) *planner.Planner {
	parts := d.Parts()
	regions := make([]planner.Region, len(parts))
	for i, part := range parts {
		regions[i] = planner.Region{
			Start: part.Start * device.SectorSize,
			End:   part.End * device.SectorSize,
		}
	}
	return planner.New(d.Sectors()*device.SectorSize, regions)
}

func constraintSatisfied(c *strategydoc.ConstraintSpec, sizeBytes uint64) bool {
	if c == nil {
		return true
	}
	switch c.Kind {
	case strategydoc.ConstraintExact:
		return sizeBytes == c.Min
	case strategydoc.ConstraintAtLeast:
		return sizeBytes >= c.Min
	case strategydoc.ConstraintRange:
		return sizeBytes >= c.Min && sizeBytes <= c.Max
	case strategydoc.ConstraintRemaining:
		return true
	default:
		return false
	}
}

func toSizeRequirement(c *strategydoc.ConstraintSpec) strategy.SizeRequirement {
	if c == nil {
		return strategy.RemainingSize()
	}
	switch c.Kind {
	case strategydoc.ConstraintExact:
		return strategy.ExactSize(c.Min)
	case strategydoc.ConstraintAtLeast:
		return strategy.AtLeastSize(c.Min)
	case strategydoc.ConstraintRange:
		return strategy.RangeSize(c.Min, c.Max)
	default:
		return strategy.RemainingSize()
	}
}
