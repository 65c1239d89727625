/*
 * MIT License
 *
 * Copyright (c) 2025 Nicolas JUHEL
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in all
 * copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 *
 */

// Package perm gives the unix listener's socket file a typed, octal-string
// permission value instead of a bare os.FileMode, the way socket/config
// wants to validate and (un)marshal it alongside the rest of a Server.
package perm

import (
	"fmt"
	"os"
	"strconv"
)

// Perm is an os.FileMode restricted to the permission bits a unix socket
// file is chmod'd to after bind.
type Perm os.FileMode

// Parse reads an octal string ("0644", "644") into a Perm.
func Parse(s string) (Perm, error) {
	if s == "" {
		return 0, nil
	}
	v, err := strconv.ParseUint(s, 8, 32)
	if err != nil {
		return 0, fmt.Errorf("perm: invalid octal permission %q: %w", s, err)
	}
	return Perm(v), nil
}

// ParseFileMode converts an os.FileMode into a Perm.
func ParseFileMode(m os.FileMode) Perm { return Perm(m) }

// ParseInt converts an int into a Perm, treating it as already-decoded bits
// (not an octal string) - e.g. ParseInt(0644) in Go source, not ParseInt(644).
func ParseInt(i int) (Perm, error) {
	return Perm(i), nil
}

func (p Perm) FileMode() os.FileMode { return os.FileMode(p) }
func (p Perm) Uint32() uint32        { return uint32(p) }

func (p Perm) String() string {
	return fmt.Sprintf("0%o", uint32(p))
}

func (p Perm) MarshalText() ([]byte, error) { return []byte(p.String()), nil }

func (p *Perm) UnmarshalText(b []byte) error {
	v, err := Parse(string(b))
	if err != nil {
		return err
	}
	*p = v
	return nil
}
