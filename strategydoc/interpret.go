// Copyright © 2024 Blsforme Project
//
// SPDX-License-Identifier: GPL-3.0-only

package strategydoc

import "github.com/blsforme/provision-disk/units"

// interpretStrategy translates a generic `strategy` node into a
// StrategyDef. fatal reports whether a fatal (error-severity) diagnostic
// was raised anywhere in the strategy, in which case the caller discards
// the whole strategy rather than emitting a partially-built one.
func (p *parser) interpretStrategy(n genericNode) (def StrategyDef, fatal bool) {
	name, ok := p.requireStringProp(n, "name")
	if !ok {
		return StrategyDef{}, true
	}
	def.Name = name

	if summary, ok := n.props["summary"]; ok {
		def.Summary = summary.text
	}
	if inherits, ok := n.props["inherits"]; ok {
		def.Inherits = inherits.text
	}

	diagsBefore := len(p.diag)
	for _, child := range n.children {
		cmd := p.interpretCommand(child)
		if cmd != nil {
			def.Commands = append(def.Commands, cmd)
		}
	}

	fatal = p.hasFatalSince(diagsBefore)
	return def, fatal
}

func (p *parser) hasFatalSince(from int) bool {
	for _, d := range p.diag[from:] {
		if d.Fatal() {
			return true
		}
	}
	return false
}

func (p *parser) requireStringProp(n genericNode, key string) (string, bool) {
	v, ok := n.props[key]
	if !ok {
		p.errorf(n.pos, MissingProperty, "node %q is missing required property %q", n.name, key)
		return "", false
	}
	if v.kind != valString && v.kind != valBare {
		p.errorf(v.pos, InvalidType, "property %q of node %q must be a string", key, n.name)
		return "", false
	}
	return v.text, true
}

func (p *parser) requireStringArg(n genericNode) (string, bool) {
	if len(n.args) == 0 {
		p.errorf(n.pos, MissingEntry, "node %q requires a positional argument", n.name)
		return "", false
	}
	a := n.args[0]
	if a.kind != valString && a.kind != valBare {
		p.errorf(a.pos, InvalidType, "argument of node %q must be a string", n.name)
		return "", false
	}
	return a.text, true
}

func (p *parser) interpretCommand(n genericNode) Command {
	switch n.name {
	case "find-disk":
		name, ok := p.requireStringArg(n)
		if !ok {
			return nil
		}
		return FindDiskCommand{Name: name, Constraint: p.findConstraints(n)}

	case "create-partition-table":
		disk, ok := p.requireStringProp(n, "disk")
		if !ok {
			return nil
		}
		typ := ""
		if t, ok := n.props["type"]; ok {
			typ = t.text
		}
		return CreatePartitionTableCommand{Disk: disk, Type: typ}

	case "create-partition":
		disk, ok := p.requireStringProp(n, "disk")
		if !ok {
			return nil
		}
		id := ""
		if v, ok := n.props["id"]; ok {
			id = v.text
		}
		role := ""
		if v, ok := n.props["role"]; ok {
			role = v.text
		}
		return CreatePartitionCommand{Disk: disk, ID: id, Role: role, Constraint: p.findConstraints(n)}

	default:
		p.errorf(n.pos, UnsupportedNode, "unsupported node %q inside strategy", n.name)
		return nil
	}
}

// findConstraints looks for a `constraints` child of n and compiles it into
// a ConstraintSpec. A missing constraints block is not an error: find-disk
// and create-partition both accept an unconstrained form.
func (p *parser) findConstraints(n genericNode) *ConstraintSpec {
	for _, child := range n.children {
		if child.name == "constraints" {
			return p.interpretConstraints(child)
		}
	}
	return nil
}

func (p *parser) interpretConstraints(n genericNode) *ConstraintSpec {
	spec := &ConstraintSpec{}
	seenMin, seenMax, seenExact, seenRemaining := false, false, false, false

	for _, child := range n.children {
		switch child.name {
		case "min":
			v, ok := p.requireSizeArg(child)
			if !ok {
				continue
			}
			spec.Min = v
			seenMin = true
		case "max":
			v, ok := p.requireSizeArg(child)
			if !ok {
				continue
			}
			spec.Max = v
			seenMax = true
		case "exactly":
			v, ok := p.requireSizeArg(child)
			if !ok {
				continue
			}
			spec.Min = v
			spec.Max = v
			seenExact = true
		case "remaining":
			seenRemaining = true
		default:
			p.errorf(child.pos, UnknownVariant, "unknown constraint variant %q", child.name)
		}
	}

	switch {
	case seenRemaining:
		spec.Kind = ConstraintRemaining
	case seenExact:
		spec.Kind = ConstraintExact
	case seenMin && seenMax:
		spec.Kind = ConstraintRange
	case seenMin:
		spec.Kind = ConstraintAtLeast
	default:
		p.errorf(n.pos, MissingNode, "constraints block has no recognized variant")
		return nil
	}

	return spec
}

func (p *parser) requireSizeArg(n genericNode) (uint64, bool) {
	if len(n.args) == 0 {
		p.errorf(n.pos, MissingEntry, "%q requires a sized argument", n.name)
		return 0, false
	}
	v := n.args[0]
	if v.kind != valNumber {
		p.errorf(v.pos, InvalidType, "%q requires a numeric argument, found %q", n.name, v.text)
		return 0, false
	}
	if v.unit == "" {
		p.errorf(v.pos, UnsupportedValue, "%q requires a unit annotation (e.g. (gib)40)", n.name)
		return 0, false
	}
	unit, ok := units.ParseUnit(v.unit)
	if !ok {
		p.errorf(v.pos, UnknownType, "unknown size unit %q", v.unit)
		return 0, false
	}
	return uint64(v.num * float64(unit.Bytes())), true
}
