// Package config builds the immutable run configuration for cdn-bundle.
//
// Values come from, in increasing precedence: built-in defaults, an
// optional cdn-bundle.yaml, CDN_BUNDLE_* environment variables, and
// command-line flags applied by the caller. The defaults reproduce the
// fixed monorepo layout the tool was written for, so a bare invocation
// needs no config file.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/shinji-kodama/cdn-bundle/internal/model"
)

const (
	// DefaultSourcePattern matches the package roots, relative to RootDir.
	DefaultSourcePattern = "packages/web-components/*"

	// DefaultDestRoot is the CDN drop scripts folder, relative to RootDir.
	DefaultDestRoot = "sites/site-utilities/statics/assets/scripts/"

	// FileName is the config file looked up in the root directory.
	FileName = "cdn-bundle"

	envPrefix = "CDN_BUNDLE"
)

// Config is built once at startup and passed by value afterwards.
type Config struct {
	// RootDir is the monorepo root. Relative SourcePattern and DestRoot
	// are resolved against it, and git runs there.
	RootDir string `mapstructure:"root_dir"`

	// SourcePattern is a one-level glob of package directories.
	SourcePattern string `mapstructure:"source_pattern"`

	// DestRoot is the directory that holds <package>/<version>/ folders.
	DestRoot string `mapstructure:"dest_root"`

	// DefaultVersion is used when the tag lookup fails.
	DefaultVersion string `mapstructure:"default_version"`

	// Debug enables path and version logging.
	Debug bool `mapstructure:"debug"`
}

// Default returns the built-in configuration rooted at rootDir.
func Default(rootDir string) Config {
	return Config{
		RootDir:        rootDir,
		SourcePattern:  DefaultSourcePattern,
		DestRoot:       DefaultDestRoot,
		DefaultVersion: model.DefaultVersion,
	}
}

// LoadOptions controls where Load looks for configuration.
type LoadOptions struct {
	// RootDir is the working directory. Empty means os.Getwd().
	RootDir string

	// ConfigFile is an explicit config file path. When set it must exist.
	// When empty, <RootDir>/cdn-bundle.yaml is used if present.
	ConfigFile string
}

// Load reads defaults, the optional config file and the environment into
// a Config. The returned string is the config file that was used, or ""
// when none was found.
func Load(opts LoadOptions) (Config, string, error) {
	rootDir := opts.RootDir
	if rootDir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return Config{}, "", fmt.Errorf("determine working directory: %w", err)
		}
		rootDir = wd
	}

	v := viper.New()

	defaults := Default(rootDir)
	v.SetDefault("root_dir", defaults.RootDir)
	v.SetDefault("source_pattern", defaults.SourcePattern)
	v.SetDefault("dest_root", defaults.DestRoot)
	v.SetDefault("default_version", defaults.DefaultVersion)
	v.SetDefault("debug", defaults.Debug)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	usedFile := ""
	if opts.ConfigFile != "" {
		v.SetConfigFile(opts.ConfigFile)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, "", fmt.Errorf("read config file %s: %w", opts.ConfigFile, err)
		}
		usedFile = opts.ConfigFile
	} else {
		v.SetConfigName(FileName)
		v.SetConfigType("yaml")
		v.AddConfigPath(rootDir)
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return Config{}, "", fmt.Errorf("read config file in %s: %w", rootDir, err)
			}
		} else {
			usedFile = v.ConfigFileUsed()
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, "", fmt.Errorf("decode config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, "", err
	}

	return cfg, usedFile, nil
}

// Validate checks that every required field is set.
func (c Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.RootDir) == "" {
		errs = append(errs, errors.New("root_dir must not be empty"))
	}
	if strings.TrimSpace(c.SourcePattern) == "" {
		errs = append(errs, errors.New("source_pattern must not be empty"))
	}
	if strings.TrimSpace(c.DestRoot) == "" {
		errs = append(errs, errors.New("dest_root must not be empty"))
	}
	if strings.TrimSpace(c.DefaultVersion) == "" {
		errs = append(errs, errors.New("default_version must not be empty"))
	}
	return errors.Join(errs...)
}

// SourceGlob returns SourcePattern resolved against RootDir.
func (c Config) SourceGlob() string {
	return c.resolve(c.SourcePattern)
}

// DestDir returns DestRoot resolved against RootDir.
func (c Config) DestDir() string {
	return c.resolve(c.DestRoot)
}

func (c Config) resolve(p string) string {
	p = filepath.FromSlash(p)
	if filepath.IsAbs(p) {
		return filepath.Clean(p)
	}
	return filepath.Join(c.RootDir, p)
}

// WithDebug returns a copy of c with Debug set.
func (c Config) WithDebug(debug bool) Config {
	c.Debug = debug
	return c
}
