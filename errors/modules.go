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
 *
 */

package errors

// Each package of this module owns one disjoint code range, claimed in its
// init by RegisterIdFctMessage against the MinPkg constant below. Packages
// compiled into the same binary must never share a base (the reactor
// drivers offset within MinPkgReactor for that reason).
const (
	MinPkgCertificate = 300
	MinPkgConsole     = 800
	MinPkgLogger      = 1600
	MinPkgNetwork     = 2200
	MinPkgSemaphore   = 2900
	MinPkgStatus      = 3200
	MinPkgVersion     = 3300
	MinPkgViper       = 3400

	MinPkgConnection = 3500
	MinPkgListener   = 3600
	MinPkgReactor    = 3700
	MinPkgCodec      = 3800
	MinPkgSocket     = 3900
	MinPkgRunner     = 4000
	MinPkgSupervisor = 4100

	MinAvailable = 4200

	// MIN_AVAILABLE @Deprecated use MinAvailable constant
	MIN_AVAILABLE = MinAvailable
)
