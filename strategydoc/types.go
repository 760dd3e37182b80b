// Copyright © 2024 Blsforme Project
//
// SPDX-License-Identifier: GPL-3.0-only

// Package strategydoc parses the structured configuration language used to
// describe how to carve up a pool of disks: a small KDL-like grammar of
// nodes, properties, and typed scalar values. Parsing never panics and
// never stops at the first problem — errors are collected per strategy as
// Diagnostics, so one malformed strategy in a multi-strategy document does
// not prevent the others from being read.
package strategydoc

// StrategyDoc is every top-level `strategy` node read from one document.
type StrategyDoc struct {
	Strategies []StrategyDef
}

// StrategyDef is a single `strategy` node: its name, an optional summary,
// an optional parent to inherit commands from, and its own commands in
// source order.
type StrategyDef struct {
	Name     string
	Summary  string
	Inherits string // empty if the node carried no `inherits` property
	Commands []Command
}

// ConstraintKind identifies which shape a ConstraintSpec's size predicate
// takes, mirroring strategy.SizeKind.
type ConstraintKind int

const (
	ConstraintExact ConstraintKind = iota
	ConstraintAtLeast
	ConstraintRange
	ConstraintRemaining
)

// ConstraintSpec is the parsed form of a `constraints` child block: one of
// `exactly (unit)n`, `min (unit)n` (optionally with `max (unit)n` too, which
// upgrades it to a range), or a bare `remaining`.
type ConstraintSpec struct {
	Kind ConstraintKind
	Min  uint64
	Max  uint64
}

// Command is the sum type of statements a strategy body can contain.
type Command interface {
	command()
}

// FindDiskCommand binds a pool device to name, subject to an optional size
// constraint used as the candidate-selection predicate.
type FindDiskCommand struct {
	Name       string
	Constraint *ConstraintSpec // nil if the find-disk carried no constraints child
}

// CreatePartitionTableCommand replaces the named assignment's allocation
// strategy with a whole-disk initialization.
type CreatePartitionTableCommand struct {
	Disk string
	Type string // e.g. "gpt"; carried through for diagnostics/reporting only
}

// CreatePartitionCommand appends a partition request to the named
// assignment's strategy.
type CreatePartitionCommand struct {
	Disk       string
	ID         string
	Role       string
	Constraint *ConstraintSpec
}

func (FindDiskCommand) command()            {}
func (CreatePartitionTableCommand) command() {}
func (CreatePartitionCommand) command()      {}
