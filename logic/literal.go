// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package logic

import (
	"math/big"
	"strconv"
	"strings"

	"github.com/hashicorp/golang-lru/v2/simplelru"
	"github.com/pkg/errors"
)

// ParseVector4 parses a vector literal. Accepted forms are:
//
//	C4<01xz>      net constant, MSB first
//	4'b10xz       sized Verilog literal, bases b, o, h and d
//	'hff          unsized Verilog literal (32 bits)
//	01xz          bare binary string, MSB first
//
// Underscores are ignored in Verilog literals and '?' is a Z digit.
//
func ParseVector4(s string) (Vector4, error) {
	switch {
	case strings.HasPrefix(s, "C4<") && strings.HasSuffix(s, ">"):
		return parseBinary(s[3:len(s)-1], s)
	case strings.IndexByte(s, '\'') >= 0:
		return parseVerilog(s)
	}
	return parseBinary(s, s)
}

func parseBinary(bits, lit string) (Vector4, error) {
	n := len(bits)
	v := NewVector4(n, B0)
	for i := 0; i < n; i++ {
		b, ok := Bit4FromRune(rune(bits[i]))
		if !ok {
			return Vector4{}, errors.Errorf("invalid bit %q in literal %q", bits[i], lit)
		}
		v.SetBit(n-1-i, b)
	}
	return v, nil
}

func parseVerilog(s string) (Vector4, error) {
	q := strings.IndexByte(s, '\'')
	size := 32
	if q > 0 {
		n, err := strconv.Atoi(strings.TrimSpace(s[:q]))
		if err != nil || n <= 0 {
			return Vector4{}, errors.Errorf("invalid size in literal %q", s)
		}
		size = n
	}
	rest := s[q+1:]
	if len(rest) > 0 && (rest[0] == 's' || rest[0] == 'S') {
		rest = rest[1:]
	}
	if len(rest) < 2 {
		return Vector4{}, errors.Errorf("malformed literal %q", s)
	}
	base := rest[0] | 0x20
	digits := strings.ReplaceAll(rest[1:], "_", "")
	if digits == "" {
		return Vector4{}, errors.Errorf("missing digits in literal %q", s)
	}

	var bpd int
	switch base {
	case 'b':
		bpd = 1
	case 'o':
		bpd = 3
	case 'h':
		bpd = 4
	case 'd':
		return parseDecimal(size, digits, s)
	default:
		return Vector4{}, errors.Errorf("invalid base %q in literal %q", rest[0], s)
	}

	raw := NewVector4(len(digits)*bpd, B0)
	for i := 0; i < len(digits); i++ {
		c := digits[len(digits)-1-i]
		var d Vector4
		if b, ok := Bit4FromRune(rune(c)); ok && b.IsXZ() {
			d = NewVector4(bpd, b)
		} else {
			x, err := strconv.ParseUint(string(c), 1<<uint(bpd), 8)
			if err != nil {
				return Vector4{}, errors.Errorf("invalid digit %q in literal %q", c, s)
			}
			d = FromUint64(bpd, x)
		}
		raw.SetVec(i*bpd, d)
	}
	// an X or Z leading digit extends to the full size
	pad := PadZero
	switch raw.Value(raw.Size() - 1) {
	case BX:
		pad = PadX
	case BZ:
		pad = PadZ
	}
	return raw.Resize(size, pad), nil
}

func parseDecimal(size int, digits, lit string) (Vector4, error) {
	if len(digits) == 1 {
		if b, ok := Bit4FromRune(rune(digits[0])); ok && b.IsXZ() {
			return NewVector4(size, b), nil
		}
	}
	x, ok := new(big.Int).SetString(digits, 10)
	if !ok {
		return Vector4{}, errors.Errorf("invalid decimal literal %q", lit)
	}
	return fromBig(size, x), nil
}

// ParseVector8 parses a strength vector literal of the form C8<...>, where
// each bit, MSB first, is encoded with three characters: the strength0 digit,
// the strength1 digit and the value (0, 1, x or z).
//
func ParseVector8(s string) (Vector8, error) {
	if !strings.HasPrefix(s, "C8<") || !strings.HasSuffix(s, ">") {
		return Vector8{}, errors.Errorf("not a strength literal: %q", s)
	}
	body := s[3 : len(s)-1]
	if len(body)%3 != 0 {
		return Vector8{}, errors.Errorf("truncated strength literal %q", s)
	}
	n := len(body) / 3
	v := NewVector8(n)
	for i := 0; i < n; i++ {
		c := body[3*i : 3*i+3]
		if c[0] < '0' || c[0] > '7' || c[1] < '0' || c[1] > '7' {
			return Vector8{}, errors.Errorf("invalid strength in literal %q", s)
		}
		b, ok := Bit4FromRune(rune(c[2]))
		if !ok {
			return Vector8{}, errors.Errorf("invalid bit %q in literal %q", c[2], s)
		}
		v.SetBit(n-1-i, NewScalar(b, Strength(c[0]-'0'), Strength(c[1]-'0')))
	}
	return v, nil
}

// LiteralCache memoizes parsed literals. Values returned by the cache are
// private copies that the caller may modify.
//
// A LiteralCache is not safe for concurrent use.
//
type LiteralCache struct {
	v4 *simplelru.LRU[string, Vector4]
	v8 *simplelru.LRU[string, Vector8]
}

// NewLiteralCache returns a new cache holding at most size literals of each
// kind.
//
func NewLiteralCache(size int) (*LiteralCache, error) {
	v4, err := simplelru.NewLRU[string, Vector4](size, nil)
	if err != nil {
		return nil, errors.Wrap(err, "literal cache")
	}
	v8, err := simplelru.NewLRU[string, Vector8](size, nil)
	if err != nil {
		return nil, errors.Wrap(err, "literal cache")
	}
	return &LiteralCache{v4: v4, v8: v8}, nil
}

// Vector4 returns the parsed value of the literal s.
//
func (c *LiteralCache) Vector4(s string) (Vector4, error) {
	if v, ok := c.v4.Get(s); ok {
		return v.Clone(), nil
	}
	v, err := ParseVector4(s)
	if err != nil {
		return v, err
	}
	c.v4.Add(s, v)
	return v.Clone(), nil
}

// Vector8 returns the parsed value of the strength literal s.
//
func (c *LiteralCache) Vector8(s string) (Vector8, error) {
	if v, ok := c.v8.Get(s); ok {
		return v.Clone(), nil
	}
	v, err := ParseVector8(s)
	if err != nil {
		return v, err
	}
	c.v8.Add(s, v)
	return v.Clone(), nil
}

// Len returns the number of cached literals.
//
func (c *LiteralCache) Len() int { return c.v4.Len() + c.v8.Len() }
