// Copyright © 2024 Blsforme Project
//
// SPDX-License-Identifier: GPL-3.0-only

package strategydoc

import "fmt"

// Resolved is a strategy with its full inheritance chain flattened into a
// single command list: every ancestor's commands first (root ancestor
// first), deduplicated by name, followed by the strategy's own commands.
type Resolved struct {
	Name     string
	Summary  string
	Commands []Command
}

// ResolveInheritance flattens every strategy's `inherits` chain. A name
// referenced by `inherits` that does not exist among the parsed strategies,
// or a chain that cycles back on itself, is rejected with a diagnostic and
// that strategy is dropped from the result — it does not abort resolution
// of the other strategies in the document.
func ResolveInheritance(strategies []StrategyDef) (map[string]Resolved, []Diagnostic) {
	byName := make(map[string]StrategyDef, len(strategies))
	for _, s := range strategies {
		byName[s.Name] = s
	}

	var diags []Diagnostic
	out := make(map[string]Resolved, len(strategies))

	for _, s := range strategies {
		chain, ok := resolveChain(byName, s.Name, nil)
		if !ok {
			diags = append(diags, Diagnostic{
				Severity: SeverityError,
				Kind:     MissingNode,
				Message:  fmt.Sprintf("strategy %q has a cyclic or unresolvable inheritance chain", s.Name),
			})
			continue
		}

		var commands []Command
		for i := len(chain) - 1; i >= 0; i-- {
			commands = append(commands, byName[chain[i]].Commands...)
		}
		out[s.Name] = Resolved{Name: s.Name, Summary: s.Summary, Commands: commands}
	}

	return out, diags
}

// resolveChain returns the ordered self-to-ancestor chain of strategy
// names for name (name first, root ancestor last), or ok=false if name
// doesn't exist or the chain revisits a name already on the current path.
// Callers that need root-first order — to flatten commands in the right
// override order — must walk the returned chain back to front.
func resolveChain(byName map[string]StrategyDef, name string, path []string) ([]string, bool) {
	for _, seen := range path {
		if seen == name {
			return nil, false
		}
	}

	def, ok := byName[name]
	if !ok {
		return nil, false
	}

	path = append(path, name)

	if def.Inherits == "" {
		return path, true
	}

	return resolveChain(byName, def.Inherits, path)
}
