// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package logic

import "strings"

// Vector8 is a fixed size vector of scalars. Index 0 is the LSB.
//
type Vector8 struct {
	bits []Scalar
}

// NewVector8 returns a HiZ vector of the given size.
//
func NewVector8(size int) Vector8 {
	return Vector8{bits: make([]Scalar, size)}
}

// FromVector4 converts v to a strength vector, driving 0 bits with strength
// s0 and 1 bits with strength s1. X bits drive both. Z bits are HiZ.
//
func FromVector4(v Vector4, s0, s1 Strength) Vector8 {
	r := NewVector8(v.size)
	for i := range r.bits {
		r.bits[i] = NewScalar(v.Value(i), s0, s1)
	}
	return r
}

// Size returns the number of bits in v.
//
func (v Vector8) Size() int { return len(v.bits) }

// Value returns bit i of v. Out of range bits are HiZ.
//
func (v Vector8) Value(i int) Scalar {
	if i < 0 || i >= len(v.bits) {
		return 0
	}
	return v.bits[i]
}

// SetBit sets bit i of v.
//
func (v Vector8) SetBit(i int, s Scalar) { v.bits[i] = s }

// SetVec overwrites the bits of v starting at off and returns true if any
// bit changed. It panics if sub does not fit.
//
func (v Vector8) SetVec(off int, sub Vector8) bool {
	if off < 0 || off+len(sub.bits) > len(v.bits) {
		panic("logic: SetVec out of range")
	}
	changed := false
	for i, s := range sub.bits {
		if v.bits[off+i] != s {
			v.bits[off+i] = s
			changed = true
		}
	}
	return changed
}

// Subvalue returns wid bits of v starting at off. Bits outside of v are HiZ.
//
func (v Vector8) Subvalue(off, wid int) Vector8 {
	r := NewVector8(wid)
	for i := range r.bits {
		r.bits[i] = v.Value(off + i)
	}
	return r
}

// PartExpand returns a vector of size wid, HiZ everywhere except at offset
// off where v is placed.
//
func (v Vector8) PartExpand(wid, off int) Vector8 {
	r := NewVector8(wid)
	for i, s := range v.bits {
		if j := off + i; j >= 0 && j < wid {
			r.bits[j] = s
		}
	}
	return r
}

// EEQ returns true if v and o are identical, strengths included.
//
func (v Vector8) EEQ(o Vector8) bool {
	if len(v.bits) != len(o.bits) {
		return false
	}
	for i := range v.bits {
		if v.bits[i] != o.bits[i] {
			return false
		}
	}
	return true
}

// Clone returns a copy of v.
//
func (v Vector8) Clone() Vector8 {
	return Vector8{bits: append([]Scalar(nil), v.bits...)}
}

// Reduce4 drops strength information.
//
func (v Vector8) Reduce4() Vector4 {
	r := NewVector4(len(v.bits), B0)
	for i, s := range v.bits {
		r.SetBit(i, s.Value())
	}
	return r
}

// ResolveVector resolves two driver vectors bit by bit. Vectors must have the
// same size.
//
func ResolveVector(a, b Vector8) Vector8 {
	if len(a.bits) != len(b.bits) {
		panic("logic: vector size mismatch")
	}
	r := NewVector8(len(a.bits))
	for i := range r.bits {
		r.bits[i] = Resolve(a.bits[i], b.bits[i])
	}
	return r
}

func (v Vector8) String() string {
	var sb strings.Builder
	for i := len(v.bits) - 1; i >= 0; i-- {
		sb.WriteString(v.bits[i].String())
		if i > 0 {
			sb.WriteByte(' ')
		}
	}
	return sb.String()
}
