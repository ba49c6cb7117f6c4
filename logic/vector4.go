// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package logic

import (
	"math/bits"
	"strings"
)

// Vector4 is a fixed size vector of 4-state bits.
//
// Bits are stored in two planes: a holds the value bit and b the X/Z flag, so
// that bit i of a and b together form the Bit4 encoding of bit i. Bits beyond
// Size are always 0 in both planes.
//
// The zero value is a valid, empty vector. Vector4 values share their storage
// when copied; use Clone before mutating a vector received from someone else.
//
type Vector4 struct {
	size int
	a, b []uint64
}

func nwords(size int) int { return (size + 63) / 64 }

func mask(n int) uint64 {
	if n >= 64 {
		return ^uint64(0)
	}
	return 1<<uint(n) - 1
}

// NewVector4 returns a new vector of the given size with all bits set to
// fill.
//
func NewVector4(size int, fill Bit4) Vector4 {
	if size < 0 {
		panic("logic: negative vector size")
	}
	n := nwords(size)
	v := Vector4{size: size, a: make([]uint64, n), b: make([]uint64, n)}
	if fill != B0 {
		v.fill(fill)
	}
	return v
}

func (v *Vector4) fill(b Bit4) {
	var wa, wb uint64
	if b&1 != 0 {
		wa = ^uint64(0)
	}
	if b&2 != 0 {
		wb = ^uint64(0)
	}
	for i := range v.a {
		v.a[i], v.b[i] = wa, wb
	}
	v.trim()
}

// trim clears the unused bits of the last word.
func (v *Vector4) trim() {
	if r := v.size % 64; r != 0 {
		n := len(v.a) - 1
		v.a[n] &= mask(r)
		v.b[n] &= mask(r)
	}
}

// FromUint64 returns a vector of the given size holding the low bits of x.
//
func FromUint64(size int, x uint64) Vector4 {
	v := NewVector4(size, B0)
	if size > 0 {
		v.a[0] = x
		if size < 64 {
			v.a[0] &= mask(size)
		}
	}
	return v
}

// FromBits returns a vector built from bits, bits[0] being the LSB.
//
func FromBits(bits ...Bit4) Vector4 {
	v := NewVector4(len(bits), B0)
	for i, b := range bits {
		v.SetBit(i, b)
	}
	return v
}

// Size returns the number of bits in v.
//
func (v Vector4) Size() int { return v.size }

// Value returns bit i of v. Out of range bits read as X.
//
func (v Vector4) Value(i int) Bit4 {
	if i < 0 || i >= v.size {
		return BX
	}
	w, s := i/64, uint(i%64)
	return Bit4((v.a[w]>>s)&1 | ((v.b[w]>>s)&1)<<1)
}

// SetBit sets bit i of v to b. It panics if i is out of range.
//
func (v *Vector4) SetBit(i int, b Bit4) {
	if i < 0 || i >= v.size {
		panic("logic: bit index out of range")
	}
	w, s := i/64, uint(i%64)
	m := uint64(1) << s
	v.a[w] = v.a[w]&^m | uint64(b&1)<<s
	v.b[w] = v.b[w]&^m | uint64(b>>1&1)<<s
}

// extract returns wid bits of p starting at bit off.
func extract(p []uint64, off, wid int) []uint64 {
	r := make([]uint64, nwords(wid))
	for i := range r {
		pos := off + 64*i
		w, s := pos/64, uint(pos%64)
		if w >= len(p) {
			break
		}
		x := p[w] >> s
		if s != 0 && w+1 < len(p) {
			x |= p[w+1] << (64 - s)
		}
		r[i] = x
	}
	if n := wid % 64; n != 0 {
		r[len(r)-1] &= mask(n)
	}
	return r
}

// deposit copies wid bits of src into p at bit off.
func deposit(p []uint64, off int, src []uint64, wid int) {
	for k := 0; k*64 < wid; k++ {
		n := wid - 64*k
		if n > 64 {
			n = 64
		}
		m := mask(n)
		x := src[k] & m
		pos := off + 64*k
		w, s := pos/64, uint(pos%64)
		p[w] = p[w]&^(m<<s) | x<<s
		if int(s)+n > 64 {
			hi := int(s) + n - 64
			p[w+1] = p[w+1]&^mask(hi) | x>>(64-s)
		}
	}
}

// SetVec overwrites sub.Size() bits of v starting at off with the contents of
// sub and returns true if any bit actually changed. It panics if the range
// does not fit in v.
//
func (v *Vector4) SetVec(off int, sub Vector4) bool {
	if off < 0 || off+sub.size > v.size {
		panic("logic: SetVec out of range")
	}
	if sub.size == 0 {
		return false
	}
	oa, ob := extract(v.a, off, sub.size), extract(v.b, off, sub.size)
	changed := false
	for i := range oa {
		if oa[i] != sub.a[i] || ob[i] != sub.b[i] {
			changed = true
			break
		}
	}
	if !changed {
		return false
	}
	deposit(v.a, off, sub.a, sub.size)
	deposit(v.b, off, sub.b, sub.size)
	return true
}

// Subvalue returns the wid bits of v starting at off. Bits outside of v are
// X.
//
func (v Vector4) Subvalue(off, wid int) Vector4 {
	if off >= 0 && off+wid <= v.size {
		return Vector4{size: wid, a: extract(v.a, off, wid), b: extract(v.b, off, wid)}
	}
	r := NewVector4(wid, BX)
	for i := 0; i < wid; i++ {
		if j := off + i; j >= 0 && j < v.size {
			r.SetBit(i, v.Value(j))
		}
	}
	return r
}

// EEQ returns true if v and o have the same size and identical bits. X only
// matches X and Z only matches Z.
//
func (v Vector4) EEQ(o Vector4) bool {
	if v.size != o.size {
		return false
	}
	for i := range v.a {
		if v.a[i] != o.a[i] || v.b[i] != o.b[i] {
			return false
		}
	}
	return true
}

// Clone returns a deep copy of v.
//
func (v Vector4) Clone() Vector4 {
	return Vector4{
		size: v.size,
		a:    append([]uint64(nil), v.a...),
		b:    append([]uint64(nil), v.b...),
	}
}

// HasXZ returns true if any bit of v is X or Z.
//
func (v Vector4) HasXZ() bool {
	for _, w := range v.b {
		if w != 0 {
			return true
		}
	}
	return false
}

// IsZero returns true if all bits of v are 0.
//
func (v Vector4) IsZero() bool {
	for i := range v.a {
		if v.a[i]|v.b[i] != 0 {
			return false
		}
	}
	return true
}

// Concat returns the concatenation of vs. The first vector occupies the least
// significant bits of the result.
//
func Concat(vs ...Vector4) Vector4 {
	n := 0
	for _, v := range vs {
		n += v.size
	}
	r := NewVector4(n, B0)
	off := 0
	for _, v := range vs {
		if v.size > 0 {
			deposit(r.a, off, v.a, v.size)
			deposit(r.b, off, v.b, v.size)
		}
		off += v.size
	}
	return r
}

// Pad is a padding policy for vector extension.
//
type Pad int

// Padding policies.
//
const (
	PadZero Pad = iota // zero extend
	PadSign            // replicate the most significant bit
	PadX               // fill with X
	PadZ               // fill with Z
)

// Resize returns v truncated or extended to wid bits. Extension uses the
// given padding policy; truncation drops the most significant bits.
//
func (v Vector4) Resize(wid int, pad Pad) Vector4 {
	if wid <= v.size {
		return v.Subvalue(0, wid)
	}
	var fill Bit4
	switch pad {
	case PadZero:
		fill = B0
	case PadSign:
		fill = v.Value(v.size - 1)
		if v.size == 0 {
			fill = B0
		}
	case PadX:
		fill = BX
	case PadZ:
		fill = BZ
	default:
		panic("logic: invalid padding policy")
	}
	r := NewVector4(wid, fill)
	r.SetVec(0, v)
	return r
}

// Uint64 returns the value of the low 64 bits of v. ok is false if v contains
// any X or Z bit or has set bits above bit 63.
//
func (v Vector4) Uint64() (x uint64, ok bool) {
	if v.HasXZ() {
		return 0, false
	}
	for _, w := range v.a[min(1, len(v.a)):] {
		if w != 0 {
			return 0, false
		}
	}
	if v.size == 0 {
		return 0, true
	}
	return v.a[0], true
}

// Int64 returns the value of v as a signed integer. ok is false if v contains
// X or Z bits or does not fit.
//
func (v Vector4) Int64() (x int64, ok bool) {
	if v.size == 0 {
		return 0, true
	}
	if v.Value(v.size-1) == B1 && v.size <= 64 {
		u, ok := v.Uint64()
		if !ok {
			return 0, false
		}
		return int64(u | ^mask(v.size)), true
	}
	u, ok := v.Uint64()
	if !ok || u > 1<<63-1 {
		return 0, false
	}
	return int64(u), true
}

// Ones returns the number of bits set to 1.
//
func (v Vector4) Ones() int {
	n := 0
	for i := range v.a {
		n += bits.OnesCount64(v.a[i] &^ v.b[i])
	}
	return n
}

// Z2X returns a copy of v where Z bits have been converted to X.
//
func (v Vector4) Z2X() Vector4 {
	r := v.Clone()
	for i := range r.a {
		r.a[i] |= r.b[i]
	}
	return r
}

// Invert returns the bitwise inverse of v. Inverted X and Z bits are X.
//
func (v Vector4) Invert() Vector4 {
	r := v.Clone()
	for i := range r.a {
		r.a[i] = ^r.a[i] | r.b[i]
	}
	r.trim()
	return r
}

func mustMatch(a, b Vector4) {
	if a.size != b.size {
		panic("logic: vector size mismatch")
	}
}

// And returns the bitwise 4-state AND of a and b. Both vectors must have the
// same size.
//
func (a Vector4) And(b Vector4) Vector4 {
	mustMatch(a, b)
	r := NewVector4(a.size, B0)
	for i := range r.a {
		zero := ^a.a[i]&^a.b[i] | ^b.a[i]&^b.b[i]
		one := a.a[i] &^ a.b[i] & b.a[i] &^ b.b[i]
		r.a[i] = ^zero
		r.b[i] = ^zero &^ one
	}
	r.trim()
	return r
}

// Or returns the bitwise 4-state OR of a and b. Both vectors must have the
// same size.
//
func (a Vector4) Or(b Vector4) Vector4 {
	mustMatch(a, b)
	r := NewVector4(a.size, B0)
	for i := range r.a {
		one := a.a[i]&^a.b[i] | b.a[i]&^b.b[i]
		zero := ^a.a[i] &^ a.b[i] & ^b.a[i] &^ b.b[i]
		r.a[i] = ^zero
		r.b[i] = ^zero &^ one
	}
	r.trim()
	return r
}

// Xor returns the bitwise 4-state XOR of a and b. Both vectors must have the
// same size.
//
func (a Vector4) Xor(b Vector4) Vector4 {
	mustMatch(a, b)
	r := NewVector4(a.size, B0)
	for i := range r.a {
		xz := a.b[i] | b.b[i]
		r.a[i] = a.a[i] ^ b.a[i] | xz
		r.b[i] = xz
	}
	return r
}

// String returns the bits of v, most significant bit first.
//
func (v Vector4) String() string {
	var sb strings.Builder
	sb.Grow(v.size)
	for i := v.size - 1; i >= 0; i-- {
		sb.WriteRune(v.Value(i).Rune())
	}
	return sb.String()
}
