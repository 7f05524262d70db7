package mml

import (
	"fmt"
	"strings"
)

// stripComments drops /* */ blocks and // line comments. A line comment
// keeps its newline so statements stay separated.
func stripComments(src string) string {
	var b strings.Builder
	b.Grow(len(src))
	for rest := src; rest != ""; {
		switch {
		case strings.HasPrefix(rest, "/*"):
			end := strings.Index(rest[2:], "*/")
			if end < 0 {
				return b.String()
			}
			rest = rest[2+end+2:]
		case strings.HasPrefix(rest, "//"):
			nl := strings.IndexByte(rest, '\n')
			if nl < 0 {
				return b.String()
			}
			rest = rest[nl:]
		default:
			b.WriteByte(rest[0])
			rest = rest[1:]
		}
	}
	return b.String()
}

// extractDirectives removes "#NAME{value}" statements from src and returns
// what remains with the collected values. A '#' counts as a directive only
// at the start of a statement, so sharps like "c#" survive. #END stops
// reading.
func extractDirectives(src string) (string, map[string]string) {
	defs := make(map[string]string)
	var b strings.Builder
	b.Grow(len(src))
	for i := 0; i < len(src); {
		if src[i] != '#' || !statementStart(src, i) {
			b.WriteByte(src[i])
			i++
			continue
		}
		end := strings.IndexAny(src[i:], ";\n")
		if end < 0 {
			end = len(src)
		} else {
			end += i
		}
		stmt := strings.TrimSpace(src[i+1 : end])
		i = min(end+1, len(src))
		if strings.EqualFold(stmt, "END") {
			defs["END"] = "1"
			break
		}
		if name, val, ok := directive(stmt); ok {
			defs[name] = val
		}
	}
	return b.String(), defs
}

func statementStart(src string, i int) bool {
	prev := strings.TrimRight(src[:i], " \t\r")
	return prev == "" || strings.HasSuffix(prev, "\n") || strings.HasSuffix(prev, ";")
}

// directive splits "NAME{value}", "NAME=value" or "NAME value".
func directive(stmt string) (name, val string, ok bool) {
	cut := strings.IndexAny(stmt, "{= \t")
	if cut < 0 {
		cut = len(stmt)
	}
	name = strings.ToUpper(strings.TrimSpace(stmt[:cut]))
	if name == "" {
		return "", "", false
	}
	val = strings.TrimSpace(stmt[cut:])
	if open := strings.IndexByte(val, '{'); open == 0 {
		if close := strings.LastIndexByte(val, '}'); close > open {
			return name, strings.TrimSpace(val[open+1 : close]), true
		}
		return name, val, true
	}
	return name, strings.TrimSpace(strings.TrimPrefix(val, "=")), true
}

// splitTracks cuts src at ';' outside loop brackets.
func splitTracks(src string) []string {
	var out []string
	depth, start := 0, 0
	for i := 0; i < len(src); i++ {
		switch src[i] {
		case '[':
			depth++
		case ']':
			depth = max(0, depth-1)
		case ';':
			if depth == 0 {
				out = append(out, src[start:i])
				start = i + 1
			}
		}
	}
	return append(out, src[start:])
}

// expandLoops unrolls "[body|tail]n" blocks: body n times (2 when n is
// missing) with tail between passes but not after the last.
func expandLoops(src string) (string, error) {
	c := &cursor{src: src}
	head, _, err := c.block(false)
	if err != nil {
		return "", err
	}
	if c.more() {
		return "", fmt.Errorf("unmatched ']' at offset %d", c.pos)
	}
	return head, nil
}

// block copies text up to the closing ']' of a loop, or to the end at top
// level. Inside a loop the first '|' starts the tail.
func (c *cursor) block(inLoop bool) (head, tail string, err error) {
	var h, t strings.Builder
	out := &h
	for c.more() {
		ch := c.peek()
		switch {
		case ch == '[':
			c.pos++
			body, err := c.loop()
			if err != nil {
				return "", "", err
			}
			out.WriteString(body)
		case ch == ']':
			return h.String(), t.String(), nil
		case ch == '|' && inLoop && out == &h:
			out = &t
			c.pos++
		default:
			out.WriteByte(ch)
			c.pos++
		}
	}
	if inLoop {
		return "", "", fmt.Errorf("unclosed loop block")
	}
	return h.String(), "", nil
}

func (c *cursor) loop() (string, error) {
	head, tail, err := c.block(true)
	if err != nil {
		return "", err
	}
	c.pos++
	n, err := c.numberOr(2)
	if err != nil {
		return "", err
	}
	n = max(n, 1)
	var b strings.Builder
	for k := 0; k < n; k++ {
		b.WriteString(head)
		if k < n-1 {
			b.WriteString(tail)
		}
	}
	return b.String(), nil
}
