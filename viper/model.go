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

package viper

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	liblog "github.com/sabouaram/reactord/logger"
	spfvpr "github.com/spf13/viper"
)

type vpr struct {
	ctx context.Context
	prm *spfvpr.Viper
	log liblog.FuncLog

	cfgFile  string
	homeBase string
	envPfx   string
	defCfg   func() io.Reader
}

func (v *vpr) Viper() *spfvpr.Viper {
	return v.prm
}

func (v *vpr) SetConfigFile(path string)  { v.cfgFile = path }
func (v *vpr) SetHomeBaseName(base string) { v.homeBase = base }

func (v *vpr) SetEnvVarsPrefix(prefix string) {
	v.envPfx = prefix
}

func (v *vpr) SetDefaultConfig(fct func() io.Reader) {
	v.defCfg = fct
}

func (v *vpr) logger() liblog.Logger {
	if v.log != nil {
		if l := v.log(); l != nil {
			return l
		}
	}

	return liblog.New(os.Getpid())
}

// Config resolves the configuration source, in order: the explicit file,
// the home dotfile, the default document.
func (v *vpr) Config() error {
	if v.envPfx != "" {
		v.prm.SetEnvPrefix(strings.ToUpper(v.envPfx))
		v.prm.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
		v.prm.AutomaticEnv()
	}

	if v.cfgFile != "" {
		v.prm.SetConfigFile(v.cfgFile)
		if err := v.prm.ReadInConfig(); err != nil {
			return ErrorConfigRead.Error(err)
		}
		v.logger().Debug("config loaded", liblog.Fields{"file": v.prm.ConfigFileUsed()})
		return nil
	}

	if v.homeBase != "" {
		if home, err := os.UserHomeDir(); err != nil {
			return ErrorHomePathNotFound.Error(err)
		} else {
			v.prm.SetConfigName("." + v.homeBase)
			v.prm.AddConfigPath(filepath.Clean(home))
		}

		if err := v.prm.ReadInConfig(); err == nil {
			v.logger().Debug("config loaded", liblog.Fields{"file": v.prm.ConfigFileUsed()})
			return nil
		}
	}

	if v.defCfg == nil {
		return ErrorParamMissing.Error(nil)
	}

	v.prm.SetConfigType("json")
	if err := v.prm.ReadConfig(v.defCfg()); err != nil {
		return ErrorConfigReadDefault.Error(err)
	}

	// loaded, but flag to the caller that only defaults were found
	return ErrorConfigIsDefault.Error(nil)
}

func (v *vpr) Unmarshal(out any) error {
	if err := v.prm.Unmarshal(out); err != nil {
		return ErrorConfigRead.Error(err)
	}

	return nil
}

func (v *vpr) UnmarshalKey(key string, out any) error {
	if err := v.prm.UnmarshalKey(key, out); err != nil {
		return ErrorConfigRead.Error(err)
	}

	return nil
}

func (v *vpr) UnmarshalExact(out any) error {
	if err := v.prm.UnmarshalExact(out); err != nil {
		return ErrorConfigRead.Error(err)
	}

	return nil
}

func (v *vpr) GetBool(key string) bool                      { return v.prm.GetBool(key) }
func (v *vpr) GetString(key string) string                  { return v.prm.GetString(key) }
func (v *vpr) GetStringSlice(key string) []string           { return v.prm.GetStringSlice(key) }
func (v *vpr) GetStringMap(key string) map[string]any       { return v.prm.GetStringMap(key) }
func (v *vpr) GetStringMapString(key string) map[string]string {
	return v.prm.GetStringMapString(key)
}
func (v *vpr) GetInt(key string) int              { return v.prm.GetInt(key) }
func (v *vpr) GetInt64(key string) int64          { return v.prm.GetInt64(key) }
func (v *vpr) GetUint(key string) uint            { return v.prm.GetUint(key) }
func (v *vpr) GetUint64(key string) uint64        { return v.prm.GetUint64(key) }
func (v *vpr) GetFloat64(key string) float64      { return v.prm.GetFloat64(key) }
func (v *vpr) GetDuration(key string) time.Duration { return v.prm.GetDuration(key) }
func (v *vpr) GetTime(key string) time.Time       { return v.prm.GetTime(key) }

// Unset rebuilds the underlying instance without the given keys; viper has
// no native delete, so the settings are copied minus the keys.
func (v *vpr) Unset(keys ...string) error {
	var (
		del = make(map[string]bool, len(keys))
		n   = spfvpr.New()
	)

	for _, k := range keys {
		del[strings.ToLower(k)] = true
	}

	for _, k := range v.prm.AllKeys() {
		if del[strings.ToLower(k)] {
			continue
		}
		n.Set(k, v.prm.Get(k))
	}

	v.prm = n

	return nil
}
