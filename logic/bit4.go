// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

// Package logic implements the value model of the simulator: 4-state bits,
// 8-state scalars (a bit with drive strengths), vectors of both and the
// strength resolution rules used on multiply driven nets.
//
// Vector index 0 is always the least significant bit.
//
package logic

// Bit4 is a 4-state logic value.
//
// The numeric encoding is fixed: bit 0 is the value bit and bit 1 flags an
// unknown (X) or high impedance (Z) value. Vector4 relies on it.
//
type Bit4 uint8

// The four logic values.
//
const (
	B0 Bit4 = 0
	B1 Bit4 = 1
	BZ Bit4 = 2
	BX Bit4 = 3
)

// IsXZ returns true if b is BX or BZ.
//
func (b Bit4) IsXZ() bool { return b >= BZ }

// Z2X converts BZ to BX and leaves other values untouched.
//
func (b Bit4) Z2X() Bit4 { return b | b>>1 }

// Not returns the logical inverse of b. Not(X) and Not(Z) are X.
//
func (b Bit4) Not() Bit4 { return (b ^ 1).Z2X() }

// And returns a & b using 4-state rules: a 0 on either side absorbs.
//
func And(a, b Bit4) Bit4 {
	if a == B0 || b == B0 {
		return B0
	}
	return (a | b).Z2X()
}

// Or returns a | b using 4-state rules: a 1 on either side absorbs.
//
func Or(a, b Bit4) Bit4 {
	if a == B1 || b == B1 {
		return B1
	}
	return (a | b).Z2X()
}

// Xor returns a ^ b. Any X or Z operand yields X.
//
func Xor(a, b Bit4) Bit4 {
	if a.IsXZ() || b.IsXZ() {
		return BX
	}
	return a ^ b
}

// AddWithCarry returns the sum bit of a+b+c and updates the carry.
//
func AddWithCarry(a, b Bit4, c *Bit4) Bit4 {
	if a.IsXZ() || b.IsXZ() || c.IsXZ() {
		*c = BX
		return BX
	}
	sum := a + b + *c
	*c = sum >> 1
	return sum & 1
}

var edgeTab = [4][4]int8{
	//       to: 0   1   z   x
	B0: {0, 1, 1, 1},
	B1: {-1, 0, -1, -1},
	BZ: {-1, 1, 0, 0},
	BX: {-1, 1, 0, 0},
}

// Edge returns a positive value if the transition from -> to is a positive
// edge, a negative value for a negative edge, and 0 if there is no edge.
//
func Edge(from, to Bit4) int {
	return int(edgeTab[from&3][to&3])
}

// Rune returns one of '0', '1', 'z' or 'x'.
//
func (b Bit4) Rune() rune {
	return rune("01zx"[b&3])
}

func (b Bit4) String() string {
	return string(b.Rune())
}

// Bit4FromRune converts '0', '1', 'x'/'X', 'z'/'Z'/'?' to a Bit4.
// ok is false for any other rune.
//
func Bit4FromRune(r rune) (b Bit4, ok bool) {
	switch r {
	case '0':
		return B0, true
	case '1':
		return B1, true
	case 'x', 'X':
		return BX, true
	case 'z', 'Z', '?':
		return BZ, true
	}
	return BX, false
}
