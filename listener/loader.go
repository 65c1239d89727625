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

package listener

import (
	libvpr "github.com/sabouaram/reactord/viper"
)

// ConfigKey is the config-tree key LoadConfigs reads listener definitions
// from.
const ConfigKey = "listeners"

// LoadConfigs decodes and validates the listener set from a loaded config
// handle. The file shape is a list under the "listeners" key, each entry a
// Config (name, listen, codec, reusePort, limits, tls).
func LoadConfigs(v libvpr.Viper) ([]Config, error) {
	var out []Config

	if err := v.UnmarshalKey(ConfigKey, &out); err != nil {
		return nil, err
	}

	for i := range out {
		if err := out[i].Validate(); err != nil {
			return nil, err
		}
	}

	return out, nil
}
