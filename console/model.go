/*
 * MIT License
 *
 * Copyright (c) 2020 Nicolas JUHEL
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
 */

package console

import (
	"fmt"

	"github.com/fatih/color"
)

// SetColor installs col as this ColorType's scheme; nil resets to an
// uncolored scheme.
func (c ColorType) SetColor(col *color.Color) {
	if col == nil {
		lst.Store(c, color.Color{})
	} else {
		lst.Store(c, *col)
	}
}

// Println writes text plus a newline to stdout in this ColorType's scheme.
func (c ColorType) Println(text string) {
	_, _ = GetColor(c).Println(text)
}

// Print writes text to stdout in this ColorType's scheme.
func (c ColorType) Print(text string) {
	_, _ = GetColor(c).Print(text)
}

// Sprintf returns the formatted string wrapped in this ColorType's ANSI
// codes without printing it.
func (c ColorType) Sprintf(format string, args ...interface{}) string {
	return GetColor(c).Sprintf(format, args...)
}

// Printf is Print of the formatted string.
func (c ColorType) Printf(format string, args ...interface{}) {
	c.Print(fmt.Sprintf(format, args...))
}

// PrintLnf is Println of the formatted string.
func (c ColorType) PrintLnf(format string, args ...interface{}) {
	c.Println(fmt.Sprintf(format, args...))
}
