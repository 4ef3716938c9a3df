// Copyright (c) 2023 Colin McRae

// Package bignumber provides arbitrary precision complex numbers built on
// big.Float. Unlike big.Float, whose precision is a property of each value,
// the numbers here are usually created at the precision of one recognition
// attempt and then combined freely. The receiver of an arithmetic method is
// set to the result and returned, as with math/big.
package bignumber

import (
	"fmt"
	"math"
	"math/big"
	"strings"
)

// Complex is a complex number whose real and imaginary parts are big.Floats
// sharing one precision.
type Complex struct {
	re big.Float
	im big.Float
}

// New returns 0 with precision prec
func New(prec uint) *Complex {
	retVal := &Complex{}
	retVal.re.SetPrec(prec)
	retVal.im.SetPrec(prec)
	return retVal
}

// NewFromFloat64 returns re + im*i with precision prec. Since the inputs are
// float64s, only 53 bits of the result are meaningful.
func NewFromFloat64(re, im float64, prec uint) *Complex {
	retVal := New(prec)
	retVal.re.SetFloat64(re)
	retVal.im.SetFloat64(im)
	return retVal
}

// NewFromInt64 returns the real number x with precision prec
func NewFromInt64(x int64, prec uint) *Complex {
	retVal := New(prec)
	retVal.re.SetInt64(x)
	return retVal
}

// NewFromInt returns the real number x with precision prec
func NewFromInt(x *big.Int, prec uint) *Complex {
	retVal := New(prec)
	retVal.re.SetInt(x)
	return retVal
}

// NewFromRat returns the real number x, rounded to precision prec
func NewFromRat(x *big.Rat, prec uint) *Complex {
	retVal := New(prec)
	retVal.re.SetRat(x)
	return retVal
}

// NewFromParts returns re + im*i, with deep copies of re and im. The
// precision is the larger of the precisions of re and im.
func NewFromParts(re, im *big.Float) *Complex {
	prec := re.Prec()
	if im.Prec() > prec {
		prec = im.Prec()
	}
	retVal := New(prec)
	retVal.re.Set(re)
	retVal.im.Set(im)
	return retVal
}

// NewFromDecimalString parses re and im as decimal numbers, e.g. "-0.5" and
// "0.86602540378443864676", and returns re + im*i with precision prec.
// An empty im means 0.
func NewFromDecimalString(re, im string, prec uint) (*Complex, error) {
	retVal := New(prec)
	if _, _, err := retVal.re.Parse(strings.TrimSpace(re), 10); err != nil {
		return nil, fmt.Errorf("NewFromDecimalString: could not parse real part %q: %q", re, err.Error())
	}
	if strings.TrimSpace(im) == "" {
		return retVal, nil
	}
	if _, _, err := retVal.im.Parse(strings.TrimSpace(im), 10); err != nil {
		return nil, fmt.Errorf("NewFromDecimalString: could not parse imaginary part %q: %q", im, err.Error())
	}
	return retVal, nil
}

// Prec returns the precision of z in bits
func (z *Complex) Prec() uint {
	if z.im.Prec() > z.re.Prec() {
		return z.im.Prec()
	}
	return z.re.Prec()
}

// SetPrec rounds z to prec bits, or extends its precision to prec bits,
// and returns z.
func (z *Complex) SetPrec(prec uint) *Complex {
	z.re.SetPrec(prec)
	z.im.SetPrec(prec)
	return z
}

// Real returns a deep copy of the real part of z
func (z *Complex) Real() *big.Float {
	return new(big.Float).Copy(&z.re)
}

// Imag returns a deep copy of the imaginary part of z
func (z *Complex) Imag() *big.Float {
	return new(big.Float).Copy(&z.im)
}

// Set sets z to x and returns z. This is a deep copy that takes on the
// precision of z, unless z has precision 0, in which case it takes on
// the precision of x.
func (z *Complex) Set(x *Complex) *Complex {
	if z == x {
		return z
	}
	if z.Prec() == 0 {
		z.SetPrec(x.Prec())
	}
	z.re.Set(&x.re)
	z.im.Set(&x.im)
	return z
}

// Copy returns a deep copy of z with the same precision
func (z *Complex) Copy() *Complex {
	retVal := &Complex{}
	retVal.re.Copy(&z.re)
	retVal.im.Copy(&z.im)
	return retVal
}

// Add sets z to x + y and returns z
func (z *Complex) Add(x, y *Complex) *Complex {
	z.re.Add(&x.re, &y.re)
	z.im.Add(&x.im, &y.im)
	return z
}

// Sub sets z to x - y and returns z
func (z *Complex) Sub(x, y *Complex) *Complex {
	z.re.Sub(&x.re, &y.re)
	z.im.Sub(&x.im, &y.im)
	return z
}

// Neg sets z to -x and returns z
func (z *Complex) Neg(x *Complex) *Complex {
	z.re.Neg(&x.re)
	z.im.Neg(&x.im)
	return z
}

// Conj sets z to the complex conjugate of x and returns z
func (z *Complex) Conj(x *Complex) *Complex {
	z.re.Set(&x.re)
	z.im.Neg(&x.im)
	return z
}

// Mul sets z to the product xy and returns z. z may be x or y.
func (z *Complex) Mul(x, y *Complex) *Complex {
	prec := z.workingPrec(x, y)

	// (a + bi)(c + di) = (ac - bd) + (ad + bc)i
	ac := new(big.Float).SetPrec(prec).Mul(&x.re, &y.re)
	bd := new(big.Float).SetPrec(prec).Mul(&x.im, &y.im)
	ad := new(big.Float).SetPrec(prec).Mul(&x.re, &y.im)
	bc := new(big.Float).SetPrec(prec).Mul(&x.im, &y.re)
	z.re.Sub(ac, bd)
	z.im.Add(ad, bc)
	return z
}

// MulFloat sets z to the product of x and the real number f, and returns z
func (z *Complex) MulFloat(x *Complex, f *big.Float) *Complex {
	z.re.Mul(&x.re, f)
	z.im.Mul(&x.im, f)
	return z
}

// Quo sets z to x/y for y != 0 and returns z. If y == 0, a division-by-zero
// error is returned and z is unchanged.
func (z *Complex) Quo(x, y *Complex) (*Complex, error) {
	if y.IsZero() {
		return nil, fmt.Errorf("Complex.Quo: division by zero")
	}
	prec := z.workingPrec(x, y)

	// x/y = x conj(y) / |y|^2
	denominator := y.AbsSquared()
	conjY := New(prec).Conj(y)
	numerator := New(prec).Mul(x, conjY)
	z.re.Quo(&numerator.re, denominator)
	z.im.Quo(&numerator.im, denominator)
	return z, nil
}

// Inv sets z to 1/x and returns z, or returns an error if x == 0
func (z *Complex) Inv(x *Complex) (*Complex, error) {
	one := NewFromInt64(1, z.workingPrec(x, x))
	return z.Quo(one, x)
}

// Pow sets z to x^n and returns z. Negative n requires x != 0.
func (z *Complex) Pow(x *Complex, n int) (*Complex, error) {
	prec := z.workingPrec(x, x)
	base := New(prec).Set(x)
	if n < 0 {
		if _, err := base.Inv(base); err != nil {
			return nil, fmt.Errorf("Complex.Pow: negative power of 0: %q", err.Error())
		}
		n = -n
	}
	result := NewFromInt64(1, prec)
	for n > 0 {
		if n&1 == 1 {
			result.Mul(result, base)
		}
		n >>= 1
		if n > 0 {
			base.Mul(base, base)
		}
	}
	return z.Set(result), nil
}

// AbsSquared returns |z|^2 at the precision of z
func (z *Complex) AbsSquared() *big.Float {
	prec := z.Prec()
	r2 := new(big.Float).SetPrec(prec).Mul(&z.re, &z.re)
	i2 := new(big.Float).SetPrec(prec).Mul(&z.im, &z.im)
	return r2.Add(r2, i2)
}

// Abs returns |z| at the precision of z
func (z *Complex) Abs() *big.Float {
	absSquared := z.AbsSquared()
	if absSquared.Sign() == 0 {
		return absSquared
	}
	return absSquared.Sqrt(absSquared)
}

// Sqrt sets z to the principal square root of x and returns z
func (z *Complex) Sqrt(x *Complex) *Complex {
	prec := z.workingPrec(x, x)
	if x.IsZero() {
		z.re.SetPrec(prec).SetInt64(0)
		z.im.SetPrec(prec).SetInt64(0)
		return z
	}

	// sqrt(x) = sqrt((|x| + re)/2) + sign(im) sqrt((|x| - re)/2) i
	absX := New(prec).Set(x).Abs()
	half := new(big.Float).SetPrec(prec).SetFloat64(0.5)
	re := new(big.Float).SetPrec(prec).Add(absX, &x.re)
	re.Mul(re, half)
	im := new(big.Float).SetPrec(prec).Sub(absX, &x.re)
	im.Mul(im, half)
	if re.Sign() < 0 {
		re.SetInt64(0)
	}
	if im.Sign() < 0 {
		im.SetInt64(0)
	}
	re.Sqrt(re)
	im.Sqrt(im)
	if x.im.Sign() < 0 {
		im.Neg(im)
	}
	z.re.Set(re)
	z.im.Set(im)
	return z
}

// Mix returns Re(z) + c*Im(z). For a transcendental c, a rational linear
// relation among mixed values is, heuristically, a relation among the
// complex values themselves.
func (z *Complex) Mix(c *big.Float) *big.Float {
	prec := z.Prec()
	retVal := new(big.Float).SetPrec(prec).Mul(&z.im, c)
	return retVal.Add(retVal, &z.re)
}

// Distance returns |z - x|
func (z *Complex) Distance(x *Complex) *big.Float {
	return New(z.workingPrec(z, x)).Sub(z, x).Abs()
}

// IsZero reports whether z is exactly 0
func (z *Complex) IsZero() bool {
	return z.re.Sign() == 0 && z.im.Sign() == 0
}

// IsReal reports whether the imaginary part of z is exactly 0
func (z *Complex) IsReal() bool {
	return z.im.Sign() == 0
}

// Log2Abs returns an integer approximation to log2|z|, accurate to within
// one. If z == 0, math.MinInt32 is returned.
func (z *Complex) Log2Abs() int {
	if z.IsZero() {
		return math.MinInt32
	}
	reExp, imExp := math.MinInt32, math.MinInt32
	if z.re.Sign() != 0 {
		reExp = z.re.MantExp(nil)
	}
	if z.im.Sign() != 0 {
		imExp = z.im.MantExp(nil)
	}
	if reExp > imExp {
		return reExp
	}
	return imExp
}

// IsSmall reports whether |z| < 2^log2bound, up to a factor of 2
func (z *Complex) IsSmall(log2bound int) bool {
	return z.IsZero() || z.Log2Abs() < log2bound
}

// Equals reports whether z is equal to x, within tolerance
func (z *Complex) Equals(x *Complex, tolerance *big.Float) bool {
	return z.Distance(x).Cmp(tolerance) <= 0
}

// Complex128 returns the nearest complex128 to z
func (z *Complex) Complex128() complex128 {
	re, _ := z.re.Float64()
	im, _ := z.im.Float64()
	return complex(re, im)
}

// Text formats z as "re + im*I" (or "re - im*I") with digits significant
// decimal digits in each part. A real z is formatted as its real part only.
func (z *Complex) Text(digits int) string {
	reStr := z.re.Text('g', digits)
	if z.im.Sign() == 0 {
		return reStr
	}
	absIm := new(big.Float).Abs(&z.im)
	sign := "+"
	if z.im.Sign() < 0 {
		sign = "-"
	}
	if z.re.Sign() == 0 {
		if sign == "-" {
			return fmt.Sprintf("-%s*I", absIm.Text('g', digits))
		}
		return fmt.Sprintf("%s*I", absIm.Text('g', digits))
	}
	return fmt.Sprintf("%s %s %s*I", reStr, sign, absIm.Text('g', digits))
}

// String formats z with 20 significant digits in each part
func (z *Complex) String() string {
	return z.Text(20)
}

// workingPrec returns the precision of z, or if that is 0, the larger of the
// precisions of x and y
func (z *Complex) workingPrec(x, y *Complex) uint {
	if prec := z.Prec(); prec > 0 {
		return prec
	}
	prec := x.Prec()
	if y.Prec() > prec {
		prec = y.Prec()
	}
	return prec
}
