// Copyright 2026 Harald Albrecht.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//    http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package config loads the server configuration from defaults, an optional
// configuration file, PWASERVE_* environment variables and command line
// flags, in increasing order of precedence.
package config

import (
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/sirupsen/logrus"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Defaults.
const (
	DefaultPort  = 3000
	DefaultIndex = "index.html"
	EnvPrefix    = "PWASERVE"
)

// Config describes a server instance; it is fixed for the lifetime of the
// process.
type Config struct {
	Port              int           `mapstructure:"port"`
	Root              string        `mapstructure:"root"`
	Index             string        `mapstructure:"index"`
	APIPrefix         string        `mapstructure:"apiPrefix"`
	AssetDirs         []string      `mapstructure:"assetDirs"`
	RewriteBase       bool          `mapstructure:"rewriteBase"`
	LogLevel          string        `mapstructure:"logLevel"`
	LogFile           string        `mapstructure:"logFile"`
	LogMaxSize        int           `mapstructure:"logMaxSize"`
	LogMaxBackups     int           `mapstructure:"logMaxBackups"`
	LogCompress       bool          `mapstructure:"logCompress"`
	ShutdownTimeout   time.Duration `mapstructure:"shutdownTimeout"`
	ReadHeaderTimeout time.Duration `mapstructure:"readHeaderTimeout"`
}

// flagKeys maps flag names onto configuration keys.
var flagKeys = map[string]string{
	"port":         "port",
	"root":         "root",
	"index":        "index",
	"api-prefix":   "apiPrefix",
	"asset-dirs":   "assetDirs",
	"rewrite-base": "rewriteBase",
	"log-level":    "logLevel",
	"log-file":     "logFile",
}

// RegisterFlags adds the configuration flags to the specified flag set.
func RegisterFlags(fs *pflag.FlagSet) {
	fs.String("config", "", "configuration file (overrides $"+EnvPrefix+"_CONFIG)")
	fs.IntP("port", "p", DefaultPort, "port to listen on")
	fs.StringP("root", "r", ".", "directory containing the entry document and static assets")
	fs.String("index", DefaultIndex, "entry document, relative to the root")
	fs.String("api-prefix", "/api/", "path prefix of the backend API; requests get rejected")
	fs.StringSlice("asset-dirs", []string{"/assets/"}, "path prefixes of static asset directories")
	fs.Bool("rewrite-base", false, "rewrite the entry document's <base href> from X-Forwarded-* headers")
	fs.String("log-level", "info", "log level (trace, debug, info, warn, error)")
	fs.String("log-file", "", "log to a rotated file instead of stdout")
}

// Load reads the configuration, binding the (optional) flag set, and
// validates it. The returned configuration has an absolute root directory.
func Load(fs *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()

	if fs != nil {
		for name, key := range flagKeys {
			if flag := fs.Lookup(name); flag != nil {
				if err := v.BindPFlag(key, flag); err != nil {
					return nil, fmt.Errorf("cannot bind flag %q: %w", name, err)
				}
			}
		}
	}

	if path := configPath(fs); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("cannot read configuration: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg, viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
	))); err != nil {
		return nil, fmt.Errorf("cannot decode configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	absRoot, err := filepath.Abs(cfg.Root)
	if err != nil {
		return nil, fmt.Errorf("cannot resolve root directory: %w", err)
	}
	cfg.Root = absRoot
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("port", DefaultPort)
	v.SetDefault("root", ".")
	v.SetDefault("index", DefaultIndex)
	v.SetDefault("apiPrefix", "/api/")
	v.SetDefault("assetDirs", []string{"/assets/"})
	v.SetDefault("rewriteBase", false)
	v.SetDefault("logLevel", "info")
	v.SetDefault("logFile", "")
	v.SetDefault("logMaxSize", 100)
	v.SetDefault("logMaxBackups", 10)
	v.SetDefault("logCompress", true)
	v.SetDefault("shutdownTimeout", "5s")
	v.SetDefault("readHeaderTimeout", "10s")
}

// configPath returns the configuration file path from the --config flag or
// the environment, if any.
func configPath(fs *pflag.FlagSet) string {
	if fs != nil {
		if flag := fs.Lookup("config"); flag != nil && flag.Value.String() != "" {
			return flag.Value.String()
		}
	}
	return os.Getenv(EnvPrefix + "_CONFIG")
}

// Validate checks the configuration for semantic errors, returning the first
// one found as a FieldError.
func (c *Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return newFieldError("port", "must be in 1-65535")
	}
	if c.Root == "" {
		return newFieldError("root", "must not be empty")
	}
	info, err := os.Stat(c.Root)
	if err != nil {
		return newFieldError("root", fmt.Sprintf("cannot access: %v", err))
	}
	if !info.IsDir() {
		return newFieldError("root", "not a directory")
	}
	index := path.Clean("/" + filepath.ToSlash(c.Index))[1:]
	if index == "" || index != filepath.ToSlash(c.Index) {
		return newFieldError("index", "must be a plain path relative to the root")
	}
	info, err = os.Stat(filepath.Join(c.Root, filepath.FromSlash(index)))
	if err != nil {
		return newFieldError("index", fmt.Sprintf("cannot access: %v", err))
	}
	if !info.Mode().IsRegular() {
		return newFieldError("index", "not a regular file")
	}
	if c.APIPrefix != "" && !isDirPrefix(c.APIPrefix) {
		return newFieldError("apiPrefix", "must start and end with \"/\"")
	}
	for _, dir := range c.AssetDirs {
		if !isDirPrefix(dir) {
			return newFieldError("assetDirs", fmt.Sprintf("%q must start and end with \"/\"", dir))
		}
	}
	if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
		return newFieldError("logLevel", err.Error())
	}
	if c.LogMaxSize < 0 || c.LogMaxBackups < 0 {
		return newFieldError("logMaxSize", "log rotation limits must not be negative")
	}
	if c.ShutdownTimeout < 0 {
		return newFieldError("shutdownTimeout", "must not be negative")
	}
	if c.ReadHeaderTimeout < 0 {
		return newFieldError("readHeaderTimeout", "must not be negative")
	}
	return nil
}

func isDirPrefix(p string) bool {
	return strings.HasPrefix(p, "/") && strings.HasSuffix(p, "/")
}
