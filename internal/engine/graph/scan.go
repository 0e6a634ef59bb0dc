package graph

import (
	"go.trai.ch/stitch/internal/core/domain"
	"go.trai.ch/zerr"
)

const (
	eagerCall = "require"
	lazyCall  = "request"
)

// Reference is one module string found in source.
type Reference struct {
	Path    string
	Request bool
}

// Scan extracts require("x") and request("x") calls from JavaScript source, in first-occurrence order.
// Comments, string literals and template literals are skipped. A call preceded by "." is a method call and ignored.
func Scan(src string) ([]Reference, error) {
	s := scanner{src: src}
	var refs []Reference
	seen := make(map[string]int)

	for {
		ref, ok := s.next()
		if !ok {
			return refs, nil
		}
		if i, dup := seen[ref.Path]; dup {
			if refs[i].Request != ref.Request {
				err := zerr.Wrap(domain.ErrInconsistentReference, "same reference used with require and request")
				return nil, zerr.With(err, "reference", ref.Path)
			}
			continue
		}
		seen[ref.Path] = len(refs)
		refs = append(refs, ref)
	}
}

type scanner struct {
	src  string
	pos  int
	last byte
}

func (s *scanner) next() (Reference, bool) {
	for s.pos < len(s.src) {
		c := s.src[s.pos]
		switch {
		case c == '/' && s.peek(1) == '/':
			s.skipUntil("\n")
		case c == '/' && s.peek(1) == '*':
			s.pos += 2
			s.skipUntil("*/")
		case c == '"' || c == '\'' || c == '`':
			s.skipString(c)
			s.last = c
		case isIdentStart(c):
			start := s.pos
			for s.pos < len(s.src) && isIdentPart(s.src[s.pos]) {
				s.pos++
			}
			ident := s.src[start:s.pos]
			prev := s.last
			s.last = 'a'
			if prev == '.' || (ident != eagerCall && ident != lazyCall) {
				continue
			}
			if path, ok := s.call(); ok {
				return Reference{Path: path, Request: ident == lazyCall}, true
			}
		default:
			if !isSpace(c) {
				s.last = c
			}
			s.pos++
		}
	}
	return Reference{}, false
}

// call parses `("literal")` or `("literal", ...` at the current position. On failure the position is left unchanged.
func (s *scanner) call() (string, bool) {
	p := s.pos
	p = skipSpaces(s.src, p)
	if p >= len(s.src) || s.src[p] != '(' {
		return "", false
	}
	p = skipSpaces(s.src, p+1)
	if p >= len(s.src) || (s.src[p] != '"' && s.src[p] != '\'') {
		return "", false
	}
	quote := s.src[p]
	start := p + 1
	end := start
	for end < len(s.src) && s.src[end] != quote {
		if s.src[end] == '\\' || s.src[end] == '\n' {
			return "", false
		}
		end++
	}
	if end >= len(s.src) {
		return "", false
	}
	p = skipSpaces(s.src, end+1)
	if p >= len(s.src) || (s.src[p] != ')' && s.src[p] != ',') {
		return "", false
	}
	s.pos = p + 1
	s.last = s.src[p]
	return s.src[start:end], true
}

func (s *scanner) peek(n int) byte {
	if s.pos+n < len(s.src) {
		return s.src[s.pos+n]
	}
	return 0
}

func (s *scanner) skipUntil(end string) {
	for s.pos < len(s.src) {
		if s.src[s.pos] == end[0] && len(s.src)-s.pos >= len(end) && s.src[s.pos:s.pos+len(end)] == end {
			s.pos += len(end)
			return
		}
		s.pos++
	}
}

func (s *scanner) skipString(quote byte) {
	s.pos++
	for s.pos < len(s.src) {
		switch s.src[s.pos] {
		case '\\':
			s.pos += 2
			continue
		case quote:
			s.pos++
			return
		case '\n':
			if quote != '`' {
				s.pos++
				return
			}
		}
		s.pos++
	}
}

func skipSpaces(src string, p int) int {
	for p < len(src) && isSpace(src[p]) {
		p++
	}
	return p
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}

func isIdentStart(c byte) bool {
	return c == '_' || c == '$' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= 0x80
}

func isIdentPart(c byte) bool {
	return isIdentStart(c) || c >= '0' && c <= '9'
}
