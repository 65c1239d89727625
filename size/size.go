/*
MIT License

Copyright (c) 2019 Nicolas JUHEL

Permission is hereby granted, free of charge, to any person obtaining a copy
of this software and associated documentation files (the "Software"), to deal
in the Software without restriction, including without limitation the rights
to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
copies of the Software, and to permit persons to whom the Software is
furnished to do so, subject to the following conditions:

The above copyright notice and this permission notice shall be included in all
copies or substantial portions of the Software.

THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
SOFTWARE.
*/

// Package size gives a byte count a comparable, marshalable type with a
// human-readable K/M/G/T representation, used for the connection dump's
// Bytes-R/Bytes-W columns and for buffer-size configuration fields.
package size

import (
	"fmt"
	"strconv"
	"strings"
)

type Size int64

const (
	SizeNul  Size = 0
	SizeKilo Size = 1 << (10 * iota)
	SizeMega
	SizeGiga
	SizeTera
)

func (s Size) Int64() int64 {
	return int64(s)
}

func (s Size) Float64() float64 {
	return float64(s)
}

func (s Size) Mul(n int64) Size {
	return Size(s.Int64() * n)
}

func (s Size) MulErr(n int64) (Size, error) {
	if n != 0 && s.Int64() > (1<<62)/n {
		return SizeNul, fmt.Errorf("size: multiplication overflow")
	}
	return s.Mul(n), nil
}

func (s Size) String() string {
	v := s.Float64()
	abs := v
	if abs < 0 {
		abs = -abs
	}

	switch {
	case abs >= float64(SizeTera):
		return trimFloat(v/float64(SizeTera)) + "T"
	case abs >= float64(SizeGiga):
		return trimFloat(v/float64(SizeGiga)) + "G"
	case abs >= float64(SizeMega):
		return trimFloat(v/float64(SizeMega)) + "M"
	case abs >= float64(SizeKilo):
		return trimFloat(v/float64(SizeKilo)) + "K"
	default:
		return strconv.FormatInt(s.Int64(), 10)
	}
}

func trimFloat(f float64) string {
	s := strconv.FormatFloat(f, 'f', 2, 64)
	s = strings.TrimRight(s, "0")
	s = strings.TrimRight(s, ".")
	return s
}

// Parse accepts a plain byte count or a K/M/G/T-suffixed value, as used by
// viper-decoded configuration fields.
func Parse(s string) (Size, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return SizeNul, nil
	}

	mul := Size(1)
	last := s[len(s)-1]

	switch last {
	case 'k', 'K':
		mul, s = SizeKilo, s[:len(s)-1]
	case 'm', 'M':
		mul, s = SizeMega, s[:len(s)-1]
	case 'g', 'G':
		mul, s = SizeGiga, s[:len(s)-1]
	case 't', 'T':
		mul, s = SizeTera, s[:len(s)-1]
	}

	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return SizeNul, fmt.Errorf("size: invalid value %q: %w", s, err)
	}

	return Size(f * float64(mul)), nil
}
