// Copyright © 2024 Blsforme Project
//
// SPDX-License-Identifier: GPL-3.0-only

// Package strategy provides a high-level abstraction layer over the
// planner's region bookkeeping. Rather than manually planning individual
// partition changes, a caller chooses an AllocationStrategy (e.g. wipe and
// use the whole disk, or use the largest free gap on an existing table),
// describes its PartitionRequests (exact sizes, minimums, ranges, or
// "whatever's left"), and lets Strategy.Apply work out where each partition
// actually lands.
package strategy

import (
	"fmt"
	"sort"
	"strings"

	"github.com/blsforme/provision-disk/planner"
	"github.com/blsforme/provision-disk/units"
)

// AllocationKind selects how Strategy.Apply picks its target region.
type AllocationKind int

const (
	// InitializeWholeDisk wipes every existing partition and plans fresh
	// across the planner's entire usable window.
	InitializeWholeDisk AllocationKind = iota
	// LargestFree uses the single biggest gap in the current layout.
	LargestFree
	// FirstFit uses the first gap (in start-offset order) that exists at all.
	FirstFit
	// SpecificRegionKind uses a caller-chosen region verbatim.
	SpecificRegionKind
)

// AllocationStrategy names the target-selection policy for Apply.
type AllocationStrategy struct {
	Kind   AllocationKind
	Region planner.Region // only meaningful when Kind == SpecificRegionKind
}

// SpecificRegion builds an AllocationStrategy pinned to an explicit region.
func SpecificRegion(r planner.Region) AllocationStrategy {
	return AllocationStrategy{Kind: SpecificRegionKind, Region: r}
}

// SizeKind tags which shape a SizeRequirement takes.
type SizeKind int

const (
	// Exact demands precisely Min bytes.
	Exact SizeKind = iota
	// AtLeast demands at least Min bytes, using more if there is room.
	AtLeast
	// RangeKind demands between Min and Max bytes.
	RangeKind
	// Remaining consumes whatever is left after every other request.
	Remaining
)

// SizeRequirement describes how one PartitionRequest should be sized within
// its allocated region.
type SizeRequirement struct {
	Kind SizeKind
	Min  uint64
	Max  uint64 // only meaningful when Kind == RangeKind
}

// ExactSize requires precisely size bytes.
func ExactSize(size uint64) SizeRequirement {
	return SizeRequirement{Kind: Exact, Min: size}
}

// AtLeastSize requires at least min bytes.
func AtLeastSize(min uint64) SizeRequirement {
	return SizeRequirement{Kind: AtLeast, Min: min}
}

// RangeSize requires between min and max bytes.
func RangeSize(min, max uint64) SizeRequirement {
	return SizeRequirement{Kind: RangeKind, Min: min, Max: max}
}

// RemainingSize consumes whatever space is left.
func RemainingSize() SizeRequirement {
	return SizeRequirement{Kind: Remaining}
}

// PartitionRequest is one partition the caller wants Apply to plan.
type PartitionRequest struct {
	Size SizeRequirement
}

// Strategy accumulates partition requests against a chosen allocation
// policy, then plans them onto a planner.Planner in one call to Apply.
type Strategy struct {
	allocation AllocationStrategy
	requests   []PartitionRequest
}

// New creates a Strategy using the given allocation policy.
func New(allocation AllocationStrategy) *Strategy {
	return &Strategy{allocation: allocation}
}

// AddRequest appends a partition request to this strategy, in the order
// partitions should be laid out left to right within the target region.
func (s *Strategy) AddRequest(req PartitionRequest) {
	s.requests = append(s.requests, req)
}

// SetAllocation replaces this strategy's target-selection policy, keeping
// any requests already added. The provisioner uses this to react to a
// create-partition-table command arriving after a find-disk has already
// created the strategy with its default LargestFree policy.
func (s *Strategy) SetAllocation(allocation AllocationStrategy) {
	s.allocation = allocation
}

// findFreeRegions returns the gaps between p's current partitions (and
// between the usable window's edges and the outermost partitions), sorted
// by start offset.
func findFreeRegions(p *planner.Planner) []planner.Region {
	window := p.UsableWindow()
	current := window.Start

	layout := p.CurrentLayout()
	sort.Slice(layout, func(i, j int) bool { return layout[i].Start < layout[j].Start })

	var free []planner.Region
	for _, r := range layout {
		if r.Start > current {
			free = append(free, planner.Region{Start: current, End: r.Start})
		}
		current = r.End
	}
	if current < window.End {
		free = append(free, planner.Region{Start: current, End: window.End})
	}
	return free
}

func sizeDescription(req PartitionRequest) string {
	switch req.Size.Kind {
	case Exact:
		return fmt.Sprintf("exactly %s", units.HumanReadableXiB(req.Size.Min))
	case AtLeast:
		return fmt.Sprintf("at least %s", units.HumanReadableXiB(req.Size.Min))
	case RangeKind:
		return fmt.Sprintf("between %s and %s", units.HumanReadableXiB(req.Size.Min), units.HumanReadableXiB(req.Size.Max))
	case Remaining:
		return "remaining space"
	default:
		return "unknown"
	}
}

// Describe renders a human-readable summary of the strategy's allocation
// policy and requested partitions, suitable for a PlanReport.
func (s *Strategy) Describe() string {
	var desc strings.Builder

	switch s.allocation.Kind {
	case InitializeWholeDisk:
		desc.WriteString("Initialize new partition layout on entire disk")
	case LargestFree:
		desc.WriteString("Use largest free region")
	case FirstFit:
		desc.WriteString("Use first available region")
	case SpecificRegionKind:
		r := s.allocation.Region
		fmt.Fprintf(&desc, "Use specific region: [%d, %d) (%s)", r.Start, r.End, units.HumanReadableXiB(r.Size()))
	}

	if len(s.requests) > 0 {
		desc.WriteString("\nRequested partitions:\n")
		for i, req := range s.requests {
			fmt.Fprintf(&desc, "  %d: %s\n", i+1, sizeDescription(req))
		}
	}

	return desc.String()
}

// flexibleRequest is a request whose size is not fixed, tracked alongside
// its minimum and (if any) cap while apply works out the fair distribution.
type flexibleRequest struct {
	min    uint64
	max    uint64
	hasMax bool
}

// Apply plans every requested partition onto p within the region chosen by
// this strategy's allocation policy. On any failure p is left exactly as it
// was before Apply was called — planner mutations this call already made
// are unwound via Undo before the error is returned.
func (s *Strategy) Apply(p *planner.Planner) error {
	target, err := s.resolveTarget(p)
	if err != nil {
		return err
	}

	current := target.Start
	remaining := target.End - target.Start

	var flexible []flexibleRequest
	var totalFixed, minFlexible uint64

	for _, req := range s.requests {
		switch req.Size.Kind {
		case Exact:
			totalFixed += req.Size.Min
		case AtLeast:
			minFlexible += req.Size.Min
			flexible = append(flexible, flexibleRequest{min: req.Size.Min})
		case RangeKind:
			minFlexible += req.Size.Min
			flexible = append(flexible, flexibleRequest{min: req.Size.Min, max: req.Size.Max, hasMax: true})
		case Remaining:
			flexible = append(flexible, flexibleRequest{})
		}
	}

	if totalFixed+minFlexible > remaining {
		return planner.PlanError{
			Kind:  planner.ErrRegionOutOfBounds,
			Start: current,
			End:   current + totalFixed + minFlexible,
		}
	}

	distributable := remaining - totalFixed - minFlexible
	var perFlexible uint64
	if len(flexible) > 0 {
		perFlexible = distributable / uint64(len(flexible))
	}

	planned := 0
	undoOnError := func(err error) error {
		for ; planned > 0; planned-- {
			p.Undo()
		}
		return err
	}

	for _, req := range s.requests {
		if req.Size.Kind != Exact {
			continue
		}
		if err := p.PlanAddPartition(current, current+req.Size.Min); err != nil {
			return undoOnError(err)
		}
		planned++
		current += req.Size.Min
		remaining -= req.Size.Min
	}

	lastFlexStart := current
	for _, fr := range flexible {
		size := fr.min + perFlexible
		if fr.hasMax && size > fr.max {
			size = fr.max
		}
		lastFlexStart = current
		if err := p.PlanAddPartition(current, current+size); err != nil {
			return undoOnError(err)
		}
		planned++
		current += size
		remaining -= size
	}

	// Hand any leftover (from integer-division truncation) to the final
	// flexible partition by undoing it and re-adding it with the residual.
	if remaining > 0 && len(flexible) > 0 {
		p.Undo()
		planned--

		last := flexible[len(flexible)-1]
		finalSize := last.min + perFlexible + remaining
		if last.hasMax && finalSize > last.max {
			finalSize = last.max
		}
		if err := p.PlanAddPartition(lastFlexStart, lastFlexStart+finalSize); err != nil {
			return undoOnError(err)
		}
		planned++
	}

	return nil
}

func (s *Strategy) resolveTarget(p *planner.Planner) (planner.Region, error) {
	switch s.allocation.Kind {
	case InitializeWholeDisk:
		p.PlanInitializeDisk()
		return p.UsableWindow(), nil
	case LargestFree:
		free := findFreeRegions(p)
		if len(free) == 0 {
			return planner.Region{}, planner.ErrNoFreeRegionsValue
		}
		largest := free[0]
		for _, r := range free[1:] {
			if r.Size() > largest.Size() {
				largest = r
			}
		}
		return largest, nil
	case FirstFit:
		free := findFreeRegions(p)
		if len(free) == 0 {
			return planner.Region{}, planner.ErrNoFreeRegionsValue
		}
		return free[0], nil
	case SpecificRegionKind:
		return s.allocation.Region, nil
	default:
		return planner.Region{}, planner.ErrNoFreeRegionsValue
	}
}
