package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/spf13/viper"
)

// Config holds the run configuration loaded from photomigrate.toml.
type Config struct {
	RawDirs    []string `mapstructure:"raw_dirs"`
	ArchiveDir string   `mapstructure:"archive_dir"`

	ImageExt   []string `mapstructure:"image_extensions"`
	VideoExt   []string `mapstructure:"video_extensions"`
	ExcludeExt []string `mapstructure:"exclude_extensions"`

	SkipLivePhotoClips bool `mapstructure:"skip_live_photo_clips"`

	Workers int `mapstructure:"workers"`

	// Near-duplicate detection bands and thresholds.
	SmallMaxBytes   int64 `mapstructure:"small_max_bytes"`
	LargeMinBytes   int64 `mapstructure:"large_min_bytes"`
	WindowDays      int   `mapstructure:"window_days"`
	MaxHashDistance int   `mapstructure:"max_hash_distance"`
}

// Load reads the configuration, falling back to defaults when no
// config file exists. An explicit path overrides the search path.
func Load(path string) (*Config, error) {
	v := viper.New()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		configDir, err := os.UserConfigDir()
		if err != nil {
			return nil, fmt.Errorf("failed to find user config dir: %w", err)
		}
		v.SetConfigName("photomigrate")
		v.SetConfigType("toml")
		v.AddConfigPath(filepath.Join(configDir, "photomigrate"))
		v.AddConfigPath(".")
	}

	v.SetDefault("raw_dirs", []string{"raw"})
	v.SetDefault("archive_dir", "processed")
	v.SetDefault("image_extensions", []string{".jpg", ".jpeg", ".png", ".gif", ".webp", ".tiff", ".tif", ".heic"})
	v.SetDefault("video_extensions", []string{".mov", ".mp4", ".m4v", ".avi", ".mkv"})
	v.SetDefault("exclude_extensions", []string{".aae"})
	v.SetDefault("skip_live_photo_clips", true)
	v.SetDefault("workers", runtime.NumCPU())
	v.SetDefault("small_max_bytes", 500*1024)
	v.SetDefault("large_min_bytes", 1024*1024)
	v.SetDefault("window_days", 10)
	v.SetDefault("max_hash_distance", 3)

	if err := v.ReadInConfig(); err != nil {
		if path != "" {
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		}
		// No config file found; defaults apply.
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if cfg.Workers < 1 {
		cfg.Workers = 1
	}

	return &cfg, nil
}
