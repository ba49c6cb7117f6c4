// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package logic

import "math/big"

// toBig returns the integer value of v. If signed is true, the most
// significant bit of v is a sign bit. v must not have X or Z bits.
func toBig(v Vector4, signed bool) *big.Int {
	x := new(big.Int)
	var w big.Int
	for i := len(v.a) - 1; i >= 0; i-- {
		x.Lsh(x, 64)
		x.Or(x, w.SetUint64(v.a[i]))
	}
	if signed && v.size > 0 && v.Value(v.size-1) == B1 {
		x.Sub(x, new(big.Int).Lsh(big.NewInt(1), uint(v.size)))
	}
	return x
}

// fromBig returns the size low bits of x, using two's complement for
// negative values.
func fromBig(size int, x *big.Int) Vector4 {
	r := NewVector4(size, B0)
	if size == 0 {
		return r
	}
	m := new(big.Int).Lsh(big.NewInt(1), uint(size))
	m.Sub(m, big.NewInt(1))
	y := new(big.Int).And(x, m)
	var t big.Int
	for i := range r.a {
		r.a[i] = t.Rsh(y, uint(64*i)).Uint64()
	}
	r.trim()
	return r
}

func arith(a, b Vector4, f func(x, y *big.Int) *big.Int) Vector4 {
	mustMatch(a, b)
	if a.HasXZ() || b.HasXZ() {
		return NewVector4(a.size, BX)
	}
	return fromBig(a.size, f(toBig(a, false), toBig(b, false)))
}

// Add returns a+b truncated to the operand size. Any X or Z bit in either
// operand yields an all X result.
//
func Add(a, b Vector4) Vector4 {
	return arith(a, b, func(x, y *big.Int) *big.Int { return x.Add(x, y) })
}

// Sub returns a-b truncated to the operand size.
//
func Sub(a, b Vector4) Vector4 {
	return arith(a, b, func(x, y *big.Int) *big.Int { return x.Sub(x, y) })
}

// Mul returns a*b truncated to the operand size.
//
func Mul(a, b Vector4) Vector4 {
	return arith(a, b, func(x, y *big.Int) *big.Int { return x.Mul(x, y) })
}

func divmod(a, b Vector4, signed, mod bool) Vector4 {
	mustMatch(a, b)
	if a.HasXZ() || b.HasXZ() || b.IsZero() {
		return NewVector4(a.size, BX)
	}
	x, y := toBig(a, signed), toBig(b, signed)
	switch {
	case signed && mod:
		x.Rem(x, y)
	case signed:
		x.Quo(x, y)
	case mod:
		x.Mod(x, y)
	default:
		x.Div(x, y)
	}
	return fromBig(a.size, x)
}

// Div returns a/b. Division by zero yields X. Signed division truncates
// towards zero.
//
func Div(a, b Vector4, signed bool) Vector4 { return divmod(a, b, signed, false) }

// Mod returns the remainder of a/b, with the sign of a when signed.
// Division by zero yields X.
//
func Mod(a, b Vector4, signed bool) Vector4 { return divmod(a, b, signed, true) }

// Pow returns a**b truncated to the size of a. When signed, a negative
// exponent yields 0 except for bases 1 (1), -1 (+/-1 depending on parity)
// and 0 (X).
//
func Pow(a, b Vector4, signed bool) Vector4 {
	if a.HasXZ() || b.HasXZ() {
		return NewVector4(a.size, BX)
	}
	x, y := toBig(a, signed), toBig(b, signed)
	if y.Sign() < 0 {
		switch {
		case x.Sign() == 0:
			return NewVector4(a.size, BX)
		case x.IsInt64() && x.Int64() == 1:
			return fromBig(a.size, x)
		case x.IsInt64() && x.Int64() == -1:
			if y.Bit(0) == 0 {
				return fromBig(a.size, big.NewInt(1))
			}
			return fromBig(a.size, x)
		}
		return NewVector4(a.size, B0)
	}
	if a.size == 0 {
		return a
	}
	m := new(big.Int).Lsh(big.NewInt(1), uint(a.size))
	if x.Sign() < 0 {
		x.Add(x, m)
	}
	return fromBig(a.size, x.Exp(x, y, m))
}

// Negate returns the two's complement of v.
//
func Negate(v Vector4) Vector4 {
	if v.HasXZ() {
		return NewVector4(v.size, BX)
	}
	x := toBig(v, false)
	return fromBig(v.size, x.Neg(x))
}

// Eq returns the result of the logical equality a == b: 0 if any pair of
// known bits differ, X if any bit is X or Z, 1 otherwise.
//
func Eq(a, b Vector4) Bit4 {
	mustMatch(a, b)
	res := B1
	for i := range a.a {
		xz := a.b[i] | b.b[i]
		if (a.a[i]^b.a[i])&^xz != 0 {
			return B0
		}
		if xz != 0 {
			res = BX
		}
	}
	return res
}

// Ne returns the logical inequality of a and b.
//
func Ne(a, b Vector4) Bit4 { return Eq(a, b).Not() }

// CaseEq returns 1 if a and b are identical including X and Z bits, 0
// otherwise.
//
func CaseEq(a, b Vector4) Bit4 {
	if a.EEQ(b) {
		return B1
	}
	return B0
}

// CaseNe is the inverse of CaseEq.
//
func CaseNe(a, b Vector4) Bit4 { return CaseEq(a, b) ^ 1 }

func cmp(a, b Vector4, signed bool) (int, bool) {
	mustMatch(a, b)
	if a.HasXZ() || b.HasXZ() {
		return 0, false
	}
	return toBig(a, signed).Cmp(toBig(b, signed)), true
}

// Lt returns a < b, X if either operand has X or Z bits.
//
func Lt(a, b Vector4, signed bool) Bit4 {
	c, ok := cmp(a, b, signed)
	switch {
	case !ok:
		return BX
	case c < 0:
		return B1
	}
	return B0
}

// Le returns a <= b, X if either operand has X or Z bits.
//
func Le(a, b Vector4, signed bool) Bit4 {
	c, ok := cmp(a, b, signed)
	switch {
	case !ok:
		return BX
	case c <= 0:
		return B1
	}
	return B0
}

// Shl returns v shifted left by n bits, filling with 0.
//
func Shl(v Vector4, n int) Vector4 {
	r := NewVector4(v.size, B0)
	if n < v.size {
		r.SetVec(n, v.Subvalue(0, v.size-n))
	}
	return r
}

// Shr returns v shifted right by n bits. Vacated bits are filled with 0, or
// with the most significant bit of v when arithmetic is true.
//
func Shr(v Vector4, n int, arithmetic bool) Vector4 {
	fill := B0
	if arithmetic && v.size > 0 {
		fill = v.Value(v.size - 1)
	}
	r := NewVector4(v.size, fill)
	if n < v.size {
		r.SetVec(0, v.Subvalue(n, v.size-n))
	}
	return r
}

// ReduceAnd returns the AND of all bits of v. The reduction of an empty
// vector is 1.
//
func ReduceAnd(v Vector4) Bit4 {
	r := B1
	for i := 0; i < v.size; i++ {
		r = And(r, v.Value(i))
		if r == B0 {
			break
		}
	}
	return r
}

// ReduceOr returns the OR of all bits of v.
//
func ReduceOr(v Vector4) Bit4 {
	r := B0
	for i := 0; i < v.size; i++ {
		r = Or(r, v.Value(i))
		if r == B1 {
			break
		}
	}
	return r
}

// ReduceXor returns the XOR of all bits of v.
//
func ReduceXor(v Vector4) Bit4 {
	if v.HasXZ() {
		return BX
	}
	return Bit4(v.Ones() & 1)
}
