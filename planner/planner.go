// Copyright © 2024 Blsforme Project
//
// SPDX-License-Identifier: GPL-3.0-only

package planner

import "sort"

type changeKind int

const (
	changeAdd changeKind = iota
	changeDelete
)

// change is one entry in the planner's ordered, undoable log.
type change struct {
	kind  changeKind
	start uint64 // valid for changeAdd
	end   uint64 // valid for changeAdd
	index int    // valid for changeDelete: index into the initial layout
}

// Planner accumulates pending partition additions and deletions against an
// initial layout snapshot. It never mutates that snapshot in place; every
// read derives the current layout on demand from the snapshot plus the
// change log, so that undo is simply popping the log.
type Planner struct {
	usableStart uint64
	usableEnd   uint64
	initial     []Region
	changes     []change
}

// New creates a Planner over a device of the given size in bytes, seeded
// with its existing partitions (already byte-converted by the caller). The
// usable window defaults to the entire device.
func New(deviceSizeBytes uint64, existing []Region) *Planner {
	initial := make([]Region, len(existing))
	copy(initial, existing)

	return &Planner{
		usableStart: 0,
		usableEnd:   deviceSizeBytes,
		initial:     initial,
	}
}

// WithStartOffset narrows the usable window's start, e.g. to a GPT header's
// first usable LBA converted to bytes.
func (p *Planner) WithStartOffset(n uint64) *Planner {
	p.usableStart = n
	return p
}

// WithEndOffset narrows the usable window's end, e.g. to a GPT header's last
// usable LBA (converted to an exclusive byte bound) by the caller.
func (p *Planner) WithEndOffset(n uint64) *Planner {
	p.usableEnd = n
	return p
}

// UsableWindow returns the planner's current usable region.
func (p *Planner) UsableWindow() Region {
	return Region{Start: p.usableStart, End: p.usableEnd}
}

// PlanAddPartition aligns [start, end) to Alignment and clamps it to the
// usable window — unless an endpoint was already aligned, in which case
// clamping it further would silently move an input the caller had every
// right to expect was left alone, and PlanAddPartition rejects it with
// ErrRegionOutOfBounds instead. Provided the (possibly clamped) result has
// positive size and does not overlap any region in CurrentLayout(), it
// appends an add to the change log.
func (p *Planner) PlanAddPartition(start, end uint64) error {
	alignedStart := align(start)
	alignedEnd := align(end)

	if alignedStart < p.usableStart {
		if alignedStart == start {
			return outOfBoundsError(Region{Start: start, End: end})
		}
		alignedStart = p.usableStart
	}
	if alignedEnd > p.usableEnd {
		if alignedEnd == end {
			return outOfBoundsError(Region{Start: start, End: end})
		}
		alignedEnd = p.usableEnd
	}

	if alignedStart >= alignedEnd {
		return outOfBoundsError(Region{Start: alignedStart, End: alignedEnd})
	}

	candidate := Region{Start: alignedStart, End: alignedEnd}
	for _, r := range p.CurrentLayout() {
		if candidate.Overlaps(r) {
			return overlapError(candidate)
		}
	}

	p.changes = append(p.changes, change{kind: changeAdd, start: alignedStart, end: alignedEnd})
	return nil
}

// PlanDeletePartition marks the partition at `index` in the *initial* layout
// for deletion. index is never renumbered by prior changes.
func (p *Planner) PlanDeletePartition(index int) error {
	if index < 0 || index >= len(p.initial) {
		return outOfBoundsError(Region{})
	}

	p.changes = append(p.changes, change{kind: changeDelete, index: index})
	return nil
}

// PlanInitializeDisk destructively clears both the pending change queue and
// the initial layout snapshot, as if the device had no partitions at all.
func (p *Planner) PlanInitializeDisk() {
	p.initial = nil
	p.changes = nil
}

// Undo pops the most recently planned change, if any, and reports whether
// anything was popped.
func (p *Planner) Undo() bool {
	if len(p.changes) == 0 {
		return false
	}
	p.changes = p.changes[:len(p.changes)-1]
	return true
}

// Reset drops every pending change, restoring CurrentLayout() to the initial
// snapshot.
func (p *Planner) Reset() {
	p.changes = nil
}

// CurrentLayout applies every pending deletion to the initial snapshot (in
// descending index order, so earlier removals never shift a later index),
// then appends every pending addition in insertion order.
func (p *Planner) CurrentLayout() []Region {
	regions := make([]Region, len(p.initial))
	copy(regions, p.initial)

	var deleteIdx []int
	for _, c := range p.changes {
		if c.kind == changeDelete {
			deleteIdx = append(deleteIdx, c.index)
		}
	}
	sort.Sort(sort.Reverse(sort.IntSlice(deleteIdx)))
	for _, idx := range deleteIdx {
		if idx >= 0 && idx < len(regions) {
			regions = append(regions[:idx], regions[idx+1:]...)
		}
	}

	for _, c := range p.changes {
		if c.kind == changeAdd {
			regions = append(regions, Region{Start: c.start, End: c.end})
		}
	}

	return regions
}

// Describe renders CurrentLayout() as human-readable lines, e.g. for a
// PlanReport. Regions are numbered in CurrentLayout() order, not by any
// on-disk partition number.
func (p *Planner) Describe() []string {
	layout := p.CurrentLayout()
	lines := make([]string, 0, len(layout))
	for i, r := range layout {
		lines = append(lines, regionLine(i+1, r))
	}
	return lines
}
