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

// Package version builds the static identity block a CLI prints for
// --version and embeds in its banner: package name, description, build
// hash, release tag, author, license and build date, derived once at
// NewVersion call time via reflection on a caller-supplied root struct.
package version

import (
	"fmt"
	"reflect"
	"runtime"
	"strings"
	"time"
)

// License identifies the license a Version reports through GetLicenseName
// and GetLicenseBoiler.
type License uint8

const (
	License_MIT License = iota
	License_GNU_GPL_v3
	License_GNU_Affero_GPL_v3
	License_GNU_Lesser_GPL_v3
	License_Mozilla_PL_v2
	License_Apache_v2
	License_Unlicense
	License_Creative_Common_Zero_v1
	License_Creative_Common_Attribution_v4_int
	License_Creative_Common_Attribution_Share_Alike_v4_int
	License_SIL_Open_Font_1_1
)

var licenseNames = map[License]string{
	License_MIT:                     "MIT License",
	License_GNU_GPL_v3:              "GNU GENERAL PUBLIC LICENSE, Version 3",
	License_GNU_Affero_GPL_v3:       "GNU AFFERO GENERAL PUBLIC LICENSE, Version 3",
	License_GNU_Lesser_GPL_v3:       "GNU LESSER GENERAL PUBLIC LICENSE, Version 3",
	License_Mozilla_PL_v2:           "Mozilla Public License 2.0",
	License_Apache_v2:               "Apache License, Version 2.0",
	License_Unlicense:               "The Unlicense",
	License_Creative_Common_Zero_v1: "Creative Commons Zero v1.0 Universal",
	License_Creative_Common_Attribution_v4_int:             "Creative Commons Attribution 4.0 International",
	License_Creative_Common_Attribution_Share_Alike_v4_int: "Creative Commons Attribution-ShareAlike 4.0 International",
	License_SIL_Open_Font_1_1:                              "SIL Open Font License 1.1",
}

var licenseBoiler = map[License]string{
	License_MIT: "Permission is hereby granted, free of charge, to any person obtaining a copy " +
		"of this software and associated documentation files, to deal in the Software " +
		"without restriction, subject to the inclusion of the above copyright notice.",
	License_Apache_v2: "Licensed under the Apache License, Version 2.0; you may not use this file " +
		"except in compliance with the License. You may obtain a copy at " +
		"http://www.apache.org/licenses/LICENSE-2.0.",
}

// GetLicenseName returns the canonical display name for l.
func (l License) GetLicenseName() string {
	if n, ok := licenseNames[l]; ok {
		return n
	}
	return "Unknown License"
}

// GetLicenseBoiler returns the short notice text conventionally embedded
// at the top of a source file under l.
func (l License) GetLicenseBoiler() string {
	if b, ok := licenseBoiler[l]; ok {
		return b
	}
	return l.GetLicenseName()
}

// Version is the read-only identity block exposed to CLI wiring (cobra's
// --version handler) and log banners.
type Version interface {
	GetPackage() string
	GetDescription() string
	GetBuild() string
	GetRelease() string
	GetAuthor() string
	GetPrefix() string
	GetDate() string
	GetTime() time.Time
	GetAppId() string
	GetHeader() string
	GetInfo() string
	GetRootPackagePath() string
	GetLicenseName() string
	GetLicenseBoiler(l ...License) string
	GetLicenseLegal() string
	GetLicenseFull() string
}

type version struct {
	license     License
	pkg         string
	description string
	build       string
	release     string
	author      string
	prefix      string
	date        time.Time
	rootPath    string
}

// NewVersion builds a Version. pkg, when empty or "noname", is derived
// from the package path of root via reflection; numSubPackage trims that
// many trailing path segments off the derived root package path.
func NewVersion(license License, pkg, description, buildDate, build, release, author, prefix string, root any, numSubPackage int) Version {
	t, err := time.Parse(time.RFC3339, buildDate)
	if err != nil {
		t, err = time.Parse("2006-01-02 15:04:05", buildDate)
	}
	if err != nil {
		t = time.Now()
	}

	rt := reflect.TypeOf(root)
	rootPath := ""
	if rt != nil {
		rootPath = rt.PkgPath()
	}

	if pkg == "" || strings.EqualFold(pkg, "noname") {
		parts := strings.Split(rootPath, "/")
		if len(parts) > 0 {
			pkg = parts[len(parts)-1]
		}
	}

	trimmedRoot := rootPath
	if numSubPackage > 0 {
		parts := strings.Split(rootPath, "/")
		if numSubPackage < len(parts) {
			trimmedRoot = strings.Join(parts[:len(parts)-numSubPackage], "/")
		}
	}

	return &version{
		license:     license,
		pkg:         pkg,
		description: description,
		build:       build,
		release:     release,
		author:      author,
		prefix:      strings.ToUpper(prefix),
		date:        t,
		rootPath:    trimmedRoot,
	}
}

func (v *version) GetPackage() string     { return v.pkg }
func (v *version) GetDescription() string { return v.description }
func (v *version) GetBuild() string       { return v.build }
func (v *version) GetRelease() string     { return v.release }
func (v *version) GetAuthor() string      { return v.author }
func (v *version) GetPrefix() string      { return v.prefix }
func (v *version) GetDate() string        { return v.date.Format("2006-01-02 15:04:05") }
func (v *version) GetTime() time.Time     { return v.date }
func (v *version) GetRootPackagePath() string { return v.rootPath }

func (v *version) GetAppId() string {
	return fmt.Sprintf("%s/%s (%s)", runtime.GOOS, runtime.GOARCH, runtime.Version())
}

func (v *version) GetHeader() string {
	return fmt.Sprintf("%s - %s (%s)", v.pkg, v.description, v.release)
}

func (v *version) GetInfo() string {
	return fmt.Sprintf("%s %s build %s by %s on %s", v.pkg, v.release, v.build, v.author, v.GetDate())
}

func (v *version) GetLicenseName() string { return v.license.GetLicenseName() }

func (v *version) GetLicenseBoiler(l ...License) string {
	if len(l) > 0 {
		return l[0].GetLicenseBoiler()
	}
	return v.license.GetLicenseBoiler()
}

func (v *version) GetLicenseLegal() string {
	return fmt.Sprintf("%s is licensed under the %s.", v.pkg, v.GetLicenseName())
}

func (v *version) GetLicenseFull() string {
	return v.GetLicenseLegal() + "\n\n" + v.GetLicenseBoiler()
}
