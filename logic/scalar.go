// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package logic

// Strength is a drive strength.
//
type Strength uint8

// Drive strengths, from weakest to strongest.
//
const (
	HiZ Strength = iota
	Small
	Medium
	Weak
	Large
	Pull
	Strong
	Supply
)

var strengthNames = [...]string{"HiZ", "Sm", "Me", "We", "La", "Pu", "St", "Su"}

func (s Strength) String() string {
	if s > Supply {
		return "??"
	}
	return strengthNames[s]
}

var switchStrength = [2][8]Strength{
	{HiZ, Small, Medium, Weak, Large, Pull, Strong, Strong},
	{HiZ, Small, Small, Medium, Medium, Weak, Pull, Pull},
}

// SwitchStrength returns the strength of a signal after it went through a
// pass device. Non resistive devices reduce supply to strong, resistive ones
// reduce every strength by at least one notch.
//
func SwitchStrength(s Strength, resistive bool) Strength {
	if resistive {
		return switchStrength[1][s&7]
	}
	return switchStrength[0][s&7]
}

// A Scalar is a bit value with drive strength.
//
// The encoding packs two VSSS nibbles: the high nibble holds the end of the
// strength range closest to supply1, the low nibble the end closest to
// supply0. An unambiguous value has identical nibbles. Zero is HiZ.
//
type Scalar uint8

// NewScalar builds a scalar from a value and its strength0/strength1 drive.
// A HiZ/HiZ drive always yields a HiZ scalar.
//
func NewScalar(v Bit4, s0, s1 Strength) Scalar {
	if s0 > Supply || s1 > Supply {
		panic("logic: strength out of range")
	}
	if s0 == HiZ && s1 == HiZ {
		return 0
	}
	var r Scalar
	switch v {
	case B0:
		r = Scalar(s0 | s0<<4)
	case B1:
		r = Scalar(s1 | s1<<4 | 0x88)
	case BX:
		r = Scalar(s0 | s1<<4 | 0x80)
	}
	if r&0x77 == 0 {
		return 0
	}
	return r
}

// Value returns the 4-state value of s.
//
func (s Scalar) Value() Bit4 {
	if s&0x77 == 0 {
		return BZ
	}
	switch s & 0x88 {
	case 0x00:
		return B0
	case 0x88:
		return B1
	}
	return BX
}

// Strength0 returns the 0-drive strength of s.
//
func (s Scalar) Strength0() Strength {
	if s&0x08 != 0 {
		return HiZ
	}
	return Strength(s & 0x07)
}

// Strength1 returns the 1-drive strength of s.
//
func (s Scalar) Strength1() Strength {
	if s&0x80 == 0 {
		return HiZ
	}
	return Strength(s>>4) & 0x07
}

// IsHiZ returns true if s does not drive.
//
func (s Scalar) IsHiZ() bool { return s&0x77 == 0 }

// EEQ returns true if s and t are identical, strengths included.
//
func (s Scalar) EEQ(t Scalar) bool { return s == t }

func (s Scalar) unambiguous() bool { return s&0x0f == (s>>4)&0x0f }

func (s Scalar) String() string {
	if s.IsHiZ() {
		return "HiZ"
	}
	st := s.Strength0()
	if s1 := s.Strength1(); s1 > st {
		st = s1
	}
	return st.String() + string("01ZX"[s.Value()])
}

// signed strength of one end nibble: positive towards supply1.
func endStrength(n uint8) int {
	s := int(n & 7)
	if n&8 != 0 {
		return s
	}
	return -s
}

// Resolve combines two drivers of the same bit.
//
// The stronger driver wins. Drivers of equal strength and different values
// resolve to X at that strength. HiZ is the identity. An unambiguous driver
// sweeps the weaker ends of an ambiguous one; two ambiguous drivers widen to
// the union of their ranges. The function is commutative.
//
func Resolve(a, b Scalar) Scalar {
	if a.IsHiZ() {
		return b
	}
	if b.IsHiZ() || a == b {
		return a
	}

	var res Scalar
	switch ua, ub := a.unambiguous(), b.unambiguous(); {
	case ua && ub:
		switch {
		case b&0x07 > a&0x07:
			res = b
		case b&0x07 == a&0x07:
			// same strength, different values
			res = a&0x70 | b&0x07 | 0x80
		default:
			res = a
		}
	case ua:
		res = sweep(a, b)
	case ub:
		res = sweep(b, a)
	default:
		hi, lo := b&0xf0, b&0x0f
		if endStrength(uint8(a>>4)) > endStrength(uint8(b>>4)) {
			hi = a & 0xf0
		}
		if endStrength(uint8(a&0x0f)) < endStrength(uint8(b&0x0f)) {
			lo = a & 0x0f
		}
		res = hi | lo
	}
	if res&0x77 == 0 {
		return 0
	}
	return res
}

// sweep resolves unambiguous u against ambiguous v. At each end of the range
// u wins only when strictly stronger.
func sweep(u, v Scalar) Scalar {
	hi, lo := v&0xf0, v&0x0f
	if u&0x70 > v&0x70 {
		hi = u & 0xf0
	}
	if u&0x07 > v&0x07 {
		lo = u & 0x0f
	}
	return hi | lo
}

// ResolveAll resolves any number of drivers of the same bit. With no driver
// the result is HiZ.
//
func ResolveAll(drivers ...Scalar) Scalar {
	var r Scalar
	for _, d := range drivers {
		r = Resolve(r, d)
	}
	return r
}
