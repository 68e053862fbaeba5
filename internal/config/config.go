// Package config resolves a types.ScanConfig from layered sources:
// CLI flags, environment variables, an optional global YAML file, and
// built-in defaults. Precedence (highest to lowest): CLI > environment
// > ~/.dupedog.yaml > defaults.
package config

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/spf13/viper"

	"github.com/ivoronin/dupedog/internal/types"
)

const envPrefix = "DUPEDOG"

// Keys used both as viper settings and as the basis for DUPEDOG_*
// environment variable names (dots become underscores).
const (
	keyScanHidden  = "scan.hidden"
	keyScanImages  = "scan.images"
	keyScanVideos  = "scan.videos"
	keyScanZips    = "scan.zips"
	keyMinFileSize = "scan.min_file_size"
	keyWorkers     = "workers"
	keyCachePath   = "cache_path"
)

// Overrides carries CLI flag values. A nil pointer means "flag not set,
// defer to the next layer"; this lets CLI flags with boolean defaults
// avoid clobbering an explicit environment or file setting.
type Overrides struct {
	ScanHidden  *bool
	ScanImages  *bool
	ScanVideos  *bool
	ScanZips    *bool
	MinFileSize *uint64
	Workers     *int
	CachePath   *string
}

// Resolver loads configuration from the layers described in the
// package doc and produces a types.ScanConfig.
type Resolver struct {
	v *viper.Viper
}

// NewResolver builds a Resolver with defaults and environment binding
// set up, and the global config file loaded if present.
func NewResolver() *Resolver {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault(keyScanHidden, false)
	v.SetDefault(keyScanImages, true)
	v.SetDefault(keyScanVideos, true)
	v.SetDefault(keyScanZips, false)
	v.SetDefault(keyMinFileSize, uint64(1))
	v.SetDefault(keyWorkers, runtime.NumCPU())
	v.SetDefault(keyCachePath, defaultCachePath())

	r := &Resolver{v: v}
	r.loadGlobalFile()
	return r
}

// loadGlobalFile merges ~/.dupedog.yaml into the config if it exists.
// A missing file is not an error; a malformed one is ignored rather
// than failing scan startup over a cosmetic config problem.
func (r *Resolver) loadGlobalFile() {
	home, err := os.UserHomeDir()
	if err != nil {
		return
	}
	path := filepath.Join(home, ".dupedog.yaml")
	if _, err := os.Stat(path); err != nil {
		return
	}
	r.v.SetConfigFile(path)
	_ = r.v.MergeInConfig()
}

// defaultCachePath returns ~/.cache/dupedog/hashes.sqlite, falling
// back to a relative path if the home directory can't be resolved.
func defaultCachePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "dupedog-hashes.sqlite"
	}
	return filepath.Join(home, ".cache", "dupedog", "hashes.sqlite")
}

// Resolve applies CLI overrides on top of environment/file/defaults
// and returns the resulting filters, worker count and cache path.
// Roots are supplied separately by the caller (they come from
// positional CLI arguments, not from env or file config).
func (r *Resolver) Resolve(roots []string, overrides Overrides) types.ScanConfig {
	applyBoolOverride(r.v, keyScanHidden, overrides.ScanHidden)
	applyBoolOverride(r.v, keyScanImages, overrides.ScanImages)
	applyBoolOverride(r.v, keyScanVideos, overrides.ScanVideos)
	applyBoolOverride(r.v, keyScanZips, overrides.ScanZips)
	if overrides.MinFileSize != nil {
		r.v.Set(keyMinFileSize, *overrides.MinFileSize)
	}
	if overrides.Workers != nil {
		r.v.Set(keyWorkers, *overrides.Workers)
	}
	if overrides.CachePath != nil {
		r.v.Set(keyCachePath, *overrides.CachePath)
	}

	return types.ScanConfig{
		Roots: roots,
		Filters: types.ScanFilters{
			ScanHidden:  r.v.GetBool(keyScanHidden),
			ScanImages:  r.v.GetBool(keyScanImages),
			ScanVideos:  r.v.GetBool(keyScanVideos),
			ScanZips:    r.v.GetBool(keyScanZips),
			MinFileSize: uint64(r.v.GetInt64(keyMinFileSize)),
		},
		Workers:   r.v.GetInt(keyWorkers),
		CachePath: r.v.GetString(keyCachePath),
	}
}

func applyBoolOverride(v *viper.Viper, key string, override *bool) {
	if override != nil {
		v.Set(key, *override)
	}
}
