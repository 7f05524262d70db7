package mml

import "strconv"

// cursor is a byte position in MML text.
type cursor struct {
	src string
	pos int
}

func (c *cursor) more() bool { return c.pos < len(c.src) }

// peek returns the current byte, or 0 at the end.
func (c *cursor) peek() byte {
	if c.pos >= len(c.src) {
		return 0
	}
	return c.src[c.pos]
}

// digits reads an unsigned decimal number; ok is false when none follows.
func (c *cursor) digits() (n int, ok bool, err error) {
	start := c.pos
	for c.more() && isDigit(c.peek()) {
		c.pos++
	}
	if start == c.pos {
		return 0, false, nil
	}
	n, err = strconv.Atoi(c.src[start:c.pos])
	if err != nil {
		return 0, false, err
	}
	return n, true, nil
}

func (c *cursor) numberOr(def int) (int, error) {
	n, ok, err := c.digits()
	if err != nil || !ok {
		return def, err
	}
	return n, nil
}

// signedOr reads a number with an optional leading '+' or '-'.
func (c *cursor) signedOr(def int) (int, error) {
	sign := 1
	switch c.peek() {
	case '-':
		sign = -1
		c.pos++
	case '+':
		c.pos++
	}
	n, ok, err := c.digits()
	if err != nil || !ok {
		return def, err
	}
	return sign * n, nil
}
