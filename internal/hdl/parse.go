// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

// Package hdl implements the lexer and parser for pin lists and connection
// strings.
//
package hdl

import (
	"strconv"
	"strings"
	"text/scanner"

	"github.com/pkg/errors"
)

// Type is a token type.
//
type Type int

// Tokens
const (
	EOF Type = iota
	Raw
	Ident
	BracketOpen
	BracketClose
	Comma
	Int
	Range
	Equal
)

var typeNames = [...]string{"end of input", "character", "identifier", "'['", "']'", "','", "integer", "'..'", "'='"}

func (t Type) String() string {
	if t < 0 || int(t) >= len(typeNames) {
		return "token(" + strconv.Itoa(int(t)) + ")"
	}
	return typeNames[t]
}

// Item is a lexed token.
//
type Item struct {
	Type  Type
	Pos   int
	Value interface{}
}

func (i Item) String() string {
	switch i.Type {
	case Ident, Raw:
		return i.Type.String() + " " + strconv.Quote(i.Value.(string))
	case Int:
		return i.Type.String() + " " + strconv.Itoa(i.Value.(int))
	}
	return i.Type.String()
}

// Lexer tokenizes i/o specs and connection descriptions.
//
type Lexer struct {
	s    scanner.Scanner
	errs int
}

// NewLexer returns a new lexer for input.
//
func NewLexer(input string) *Lexer {
	l := &Lexer{}
	l.s.Init(strings.NewReader(input))
	l.s.Mode = scanner.ScanIdents | scanner.ScanInts
	l.s.Error = func(*scanner.Scanner, string) { l.errs++ }
	return l
}

// Lex returns the next token. Once the input is exhausted or an invalid
// character is found, it only returns EOF.
//
func (l *Lexer) Lex() Item {
	r := l.s.Scan()
	pos := l.s.Position.Offset
	switch r {
	case scanner.EOF:
		return Item{EOF, pos, nil}
	case scanner.Ident:
		return Item{Ident, pos, l.s.TokenText()}
	case scanner.Int:
		n, err := strconv.Atoi(l.s.TokenText())
		if err != nil {
			return Item{Raw, pos, l.s.TokenText()}
		}
		return Item{Int, pos, n}
	case '[':
		return Item{BracketOpen, pos, "["}
	case ']':
		return Item{BracketClose, pos, "]"}
	case ',':
		return Item{Comma, pos, ","}
	case '=':
		return Item{Equal, pos, "="}
	case '.':
		if l.s.Peek() == '.' {
			l.s.Next()
			return Item{Range, pos, ".."}
		}
	}
	return Item{Raw, pos, string(r)}
}

// Pin is a simple pin name
//
type Pin struct {
	Name string
	Pos  int
}

// PinIndex is an indexed pin p[index]
//
type PinIndex struct {
	Pin
	Index int
}

// PinRange is a pin range p[start..end]
//
type PinRange struct {
	Pin
	Start int
	End   int
}

// PinAssignment is a part pin to nexus assignment. pp=pc
//
type PinAssignment struct {
	LHS interface{}
	RHS interface{}
}

// Parser is a simplistic parser
//
type Parser struct {
	Input string
	l     *Lexer
	i     Item
	state int
}

const (
	stateDone = -1
	stateInit = iota
	stateStarted
)

// Next returns the next item in the input stream: a Pin, PinIndex or
// PinRange, or a PinAssignment if allowConns is true. It returns nil, nil at
// the end of the input.
//
func (p *Parser) Next(allowConns bool) (interface{}, error) {
	if p.state == stateDone {
		return nil, nil
	}
	if p.l == nil {
		p.l = NewLexer(p.Input)
	}

	p.i = p.l.Lex()
	if p.state == stateInit && p.i.Type == EOF {
		p.state = stateDone
		return nil, nil
	}
	p.state = stateStarted

	pin, err := p.getPin()
	if err != nil {
		p.state = stateDone
		return nil, err
	}
	switch p.i.Type {
	case EOF:
		p.state = stateDone
		fallthrough
	case Comma:
		return pin, nil
	case Equal:
		if allowConns {
			break
		}
		fallthrough
	default:
		p.state = stateDone
		return nil, parseError(p.Input, p.i.Pos, "unexpected "+p.i.String())
	}

	p.i = p.l.Lex()
	pin2, err := p.getPin()
	if err != nil {
		p.state = stateDone
		return nil, err
	}
	switch p.i.Type {
	case EOF:
		p.state = stateDone
		fallthrough
	case Comma:
		return PinAssignment{pin, pin2}, nil
	}

	p.state = stateDone
	return nil, parseError(p.Input, p.i.Pos, "unexpected "+p.i.String())
}

func (p *Parser) getPin() (interface{}, error) {
	if p.i.Type != Ident {
		return nil, parseError(p.Input, p.i.Pos, "expected pin name")
	}
	pin := Pin{p.i.Value.(string), p.i.Pos}
	// after ident, expect ',', '[', '=' or EOF
	p.i = p.l.Lex()
	if p.i.Type != BracketOpen {
		return pin, nil
	}
	p.i = p.l.Lex()
	if p.i.Type != Int {
		return nil, parseError(p.Input, p.i.Pos, "integer value expected after '['")
	}
	start := p.i.Value.(int)
	end := -1
	p.i = p.l.Lex()
	if p.i.Type == Range {
		p.i = p.l.Lex()
		if p.i.Type != Int {
			return nil, parseError(p.Input, p.i.Pos, "integer value expected after '..'")
		}
		end = p.i.Value.(int)
		p.i = p.l.Lex()
	}
	if p.i.Type != BracketClose {
		return nil, parseError(p.Input, p.i.Pos, "closing ']' expected after index or range")
	}
	p.i = p.l.Lex()
	if end >= 0 {
		return PinRange{pin, start, end}, nil
	}
	return PinIndex{pin, start}, nil
}

func parseError(in string, pos int, msg string) error {
	return errors.Errorf("in %q at pos %d: %s", in, pos+1, msg)
}
