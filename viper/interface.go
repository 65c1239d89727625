/*
 * MIT License
 *
 * Copyright (c) 2022 Nicolas JUHEL
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

// Package viper wraps spf13/viper behind one instance-based handle: a
// config file resolved from an explicit path or a dotfile in the user's
// home, an env-var prefix, an in-memory default config used when no file
// exists, and typed read-through getters.
package viper

import (
	"context"
	"io"
	"time"

	liblog "github.com/sabouaram/reactord/logger"
	spfvpr "github.com/spf13/viper"
)

// Viper is the configuration handle the CLI and the listener loader read
// through.
type Viper interface {
	// Viper exposes the raw underlying instance for operations this
	// wrapper does not cover.
	Viper() *spfvpr.Viper

	// SetConfigFile pins the config to an explicit path, bypassing the
	// home-dotfile lookup.
	SetConfigFile(path string)
	// SetHomeBaseName sets the dotfile base name looked up in the user's
	// home directory when no explicit path is set, e.g. "myapp" resolves
	// $HOME/.myapp.(json|yaml|toml).
	SetHomeBaseName(base string)
	// SetEnvVarsPrefix enables environment overrides with the given
	// prefix, dots mapped to underscores.
	SetEnvVarsPrefix(prefix string)
	// SetDefaultConfig installs the JSON document read when neither an
	// explicit path nor a home dotfile yields a config.
	SetDefaultConfig(fct func() io.Reader)

	// Config resolves and reads the configuration, in order: explicit
	// file, home dotfile, default document. Reading only the default is
	// reported through ErrorConfigIsDefault on the returned error chain.
	Config() error

	Unmarshal(out any) error
	UnmarshalKey(key string, out any) error
	UnmarshalExact(out any) error

	GetBool(key string) bool
	GetString(key string) string
	GetStringSlice(key string) []string
	GetStringMap(key string) map[string]any
	GetStringMapString(key string) map[string]string
	GetInt(key string) int
	GetInt64(key string) int64
	GetUint(key string) uint
	GetUint64(key string) uint64
	GetFloat64(key string) float64
	GetDuration(key string) time.Duration
	GetTime(key string) time.Time

	// Unset removes keys previously set on the raw instance.
	Unset(keys ...string) error
}

// New returns a Viper bound to ctx; log resolves the logger used for
// config-resolution diagnostics and may be nil.
func New(ctx context.Context, log liblog.FuncLog) Viper {
	return &vpr{
		ctx: ctx,
		prm: spfvpr.New(),
		log: log,
	}
}
