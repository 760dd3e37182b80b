// Copyright © 2024 Blsforme Project
//
// SPDX-License-Identifier: GPL-3.0-only

package strategydoc

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/scanner"
)

// valueKind identifies the shape of a single scalar entry: a quoted string,
// a (possibly unit-annotated) number, or a bare word (an identifier used as
// a value, e.g. a type annotation's unit name or a property's right-hand
// side written without quotes).
type valueKind int

const (
	valString valueKind = iota
	valNumber
	valBare
)

type value struct {
	kind  valueKind
	text  string
	num   float64
	unit  string // non-empty only for valNumber entries with a (unit) annotation
	pos   Span
}

// genericNode is this grammar's only AST shape: every node — `strategy`,
// `find-disk`, `constraints`, `min`, and so on — parses into one of these.
// Interpreting it into a StrategyDef/Command happens in a second pass, in
// interpret.go, so the grammar layer stays free of domain knowledge about
// what a "constraints" block means.
type genericNode struct {
	name     string
	args     []value
	props    map[string]value
	children []genericNode
	pos      Span
}

type parser struct {
	lex  *lexer
	diag []Diagnostic
}

// ParseResult is everything parsing a document produced: the strategies
// that parsed cleanly enough to keep, and every diagnostic raised along the
// way (including ones attached to strategies that were ultimately
// discarded because they hit a fatal error).
type ParseResult struct {
	Strategies  []StrategyDef
	Diagnostics []Diagnostic
}

// Parse reads a full strategy document from r.
func Parse(r io.Reader) (*ParseResult, error) {
	p := &parser{lex: newLexer(r)}
	nodes := p.parseNodeList(true)

	var strategies []StrategyDef
	for _, n := range nodes {
		if n.name != "strategy" {
			p.errorf(n.pos, UnsupportedNode, "unsupported top-level node %q", n.name)
			continue
		}
		def, fatal := p.interpretStrategy(n)
		if !fatal {
			strategies = append(strategies, def)
		}
	}

	return &ParseResult{Strategies: strategies, Diagnostics: p.diag}, nil
}

func (p *parser) errorf(pos Span, kind DiagnosticKind, format string, a ...interface{}) {
	p.diag = append(p.diag, Diagnostic{
		Span:     pos,
		Severity: SeverityError,
		Kind:     kind,
		Message:  fmt.Sprintf(format, a...),
	})
}

func (p *parser) warnf(pos Span, kind DiagnosticKind, format string, a ...interface{}) {
	p.diag = append(p.diag, Diagnostic{
		Span:     pos,
		Severity: SeverityWarning,
		Kind:     kind,
		Message:  fmt.Sprintf(format, a...),
	})
}

// skipTerminators consumes any run of newline/semicolon tokens, which this
// grammar treats as equivalent node separators (blank lines collapse).
func (p *parser) skipTerminators() {
	for {
		t := p.lex.peek()
		if t.kind == tokenKind(newlineRune) || t.text == ";" {
			p.lex.next()
			continue
		}
		return
	}
}

// parseNodeList parses nodes until a closing brace (or EOF, if top) is
// reached. Braces are consumed by the caller (parseChildren) except at the
// document's top level, where EOF is the terminator.
func (p *parser) parseNodeList(top bool) []genericNode {
	var nodes []genericNode
	for {
		p.skipTerminators()
		t := p.lex.peek()
		if t.kind == tokenEOF {
			return nodes
		}
		if !top && t.kind == tokenKind('}') {
			return nodes
		}
		if t.kind != tokenKind(scanner.Ident) {
			// Recover by discarding the unexpected token so one stray
			// character doesn't stall the whole document.
			p.errorf(t.pos, InvalidArguments, "expected a node name, found %q", t.text)
			p.lex.next()
			continue
		}
		nodes = append(nodes, p.parseNode())
	}
}

func (p *parser) parseNode() genericNode {
	nameTok := p.lex.next()
	n := genericNode{name: nameTok.text, pos: nameTok.pos, props: map[string]value{}}

	for {
		t := p.lex.peek()
		switch {
		case t.kind == tokenKind(newlineRune) || t.text == ";" || t.kind == tokenEOF || t.kind == tokenKind('}'):
			return n
		case t.kind == tokenKind('{'):
			p.lex.next()
			n.children = p.parseNodeList(false)
			closeTok := p.lex.next()
			if closeTok.kind != tokenKind('}') {
				p.errorf(closeTok.pos, InvalidArguments, "expected closing %q", "}")
			}
			return n
		case t.kind == tokenKind(scanner.Ident) && p.lex.peekN(1).kind == tokenKind('='):
			key := p.lex.next()
			p.lex.next() // consume '='
			v := p.parseValue()
			n.props[key.text] = v
		default:
			n.args = append(n.args, p.parseValue())
		}
	}
}

func (p *parser) parseValue() value {
	t := p.lex.peek()

	if t.kind == tokenKind('(') {
		p.lex.next()
		unitTok := p.lex.next()
		closeTok := p.lex.next()
		if closeTok.kind != tokenKind(')') {
			p.errorf(closeTok.pos, InvalidArguments, "expected closing %q after unit annotation", ")")
		}
		numTok := p.lex.next()
		f, err := strconv.ParseFloat(numTok.text, 64)
		if err != nil {
			p.errorf(numTok.pos, InvalidType, "expected a number after unit annotation, found %q", numTok.text)
		}
		return value{kind: valNumber, num: f, unit: strings.ToLower(unitTok.text), pos: t.pos}
	}

	switch t.kind {
	case tokenKind(scanner.String):
		p.lex.next()
		unquoted, err := strconv.Unquote(t.text)
		if err != nil {
			unquoted = strings.Trim(t.text, `"`)
		}
		return value{kind: valString, text: unquoted, pos: t.pos}
	case tokenKind(scanner.Int), tokenKind(scanner.Float):
		p.lex.next()
		f, _ := strconv.ParseFloat(t.text, 64)
		return value{kind: valNumber, num: f, pos: t.pos}
	case tokenKind(scanner.Ident):
		p.lex.next()
		return value{kind: valBare, text: t.text, pos: t.pos}
	default:
		p.lex.next()
		p.errorf(t.pos, InvalidArguments, "unexpected token %q", t.text)
		return value{kind: valBare, text: t.text, pos: t.pos}
	}
}
