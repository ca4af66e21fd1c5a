package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"cocoload/internal/progress"
)

// Archive names one dataset archive: the split/annotation set name used
// as the destination subdirectory, and the URL it is fetched from.
type Archive struct {
	Name string `yaml:"name"`
	URL  string `yaml:"url"`
}

// Config defines configuration for the cocoload CLI.
type Config struct {
	// ScratchDir is local ephemeral staging space for archives and
	// extracted trees.
	ScratchDir string `yaml:"scratch_dir"`

	// Dest is the destination root: a mounted directory path or a
	// bucket URL (s3://, gs://, file://).
	Dest string `yaml:"dest"`

	// Workers is the size of the copy/upload worker pool.
	Workers int `yaml:"workers"`

	// BufferSize is the per-worker copy buffer size in bytes.
	BufferSize int `yaml:"buffer_size"`

	// Command is the external downloader command line with {url}/{dest}
	// placeholders. Empty means the built-in HTTP downloader.
	Command []string `yaml:"command"`

	// Progress enables progress output.
	Progress bool `yaml:"progress"`

	// DiskInterval is the free-space sampling interval. Zero disables
	// the disk monitor.
	DiskInterval time.Duration `yaml:"disk_interval"`

	// Archives is the import manifest.
	Archives []Archive `yaml:"archives"`
}

// DefaultArchives is the COCO 2017 import manifest: the four image sets
// and four annotation sets.
func DefaultArchives() []Archive {
	return []Archive{
		{Name: "train2017", URL: "http://images.cocodataset.org/zips/train2017.zip"},
		{Name: "val2017", URL: "http://images.cocodataset.org/zips/val2017.zip"},
		{Name: "test2017", URL: "http://images.cocodataset.org/zips/test2017.zip"},
		{Name: "unlabeled2017", URL: "http://images.cocodataset.org/zips/unlabeled2017.zip"},
		{Name: "annotations_trainval2017", URL: "http://images.cocodataset.org/annotations/annotations_trainval2017.zip"},
		{Name: "stuff_annotations_trainval2017", URL: "http://images.cocodataset.org/annotations/stuff_annotations_trainval2017.zip"},
		{Name: "image_info_test2017", URL: "http://images.cocodataset.org/annotations/image_info_test2017.zip"},
		{Name: "image_info_unlabeled2017", URL: "http://images.cocodataset.org/annotations/image_info_unlabeled2017.zip"},
	}
}

// Default returns a Config with sensible defaults. Scratch space lives
// in a tool-owned subdirectory of the system temp dir, never the temp
// dir itself: clean removes the scratch dir wholesale.
func Default() Config {
	return Config{
		ScratchDir:   filepath.Join(os.TempDir(), "cocoload"),
		Workers:      48,
		BufferSize:   1 << 20,
		Command:      []string{"wget", "{url}", "-O", "{dest}"},
		DiskInterval: 30 * time.Second,
		Archives:     DefaultArchives(),
	}
}

// yamlConfig is used for YAML unmarshaling with human-readable sizes
// and durations.
type yamlConfig struct {
	ScratchDir   string    `yaml:"scratch_dir"`
	Dest         string    `yaml:"dest"`
	Workers      int       `yaml:"workers"`
	BufferSize   string    `yaml:"buffer_size"`
	Command      []string  `yaml:"command"`
	Progress     bool      `yaml:"progress"`
	DiskInterval string    `yaml:"disk_interval"`
	Archives     []Archive `yaml:"archives"`
}

// LoadFromFile loads configuration from a YAML file on top of defaults.
func LoadFromFile(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config file: %w", err)
	}

	var yc yamlConfig
	if err := yaml.Unmarshal(data, &yc); err != nil {
		return Config{}, fmt.Errorf("parse config file: %w", err)
	}

	cfg := Default()

	if yc.ScratchDir != "" {
		cfg.ScratchDir = yc.ScratchDir
	}
	if yc.Dest != "" {
		cfg.Dest = yc.Dest
	}
	if yc.Workers != 0 {
		cfg.Workers = yc.Workers
	}
	if yc.BufferSize != "" {
		size, err := progress.ParseBytes(yc.BufferSize)
		if err != nil {
			return Config{}, fmt.Errorf("parse buffer_size: %w", err)
		}
		cfg.BufferSize = int(size)
	}
	if yc.Command != nil {
		cfg.Command = yc.Command
	}
	cfg.Progress = yc.Progress
	if yc.DiskInterval != "" {
		d, err := time.ParseDuration(yc.DiskInterval)
		if err != nil {
			return Config{}, fmt.Errorf("parse disk_interval: %w", err)
		}
		cfg.DiskInterval = d
	}
	if len(yc.Archives) > 0 {
		cfg.Archives = yc.Archives
	}

	return cfg, nil
}

// LoadDotEnv loads a .env file into the process environment if one
// exists in the working directory. Missing files are not an error.
func LoadDotEnv() error {
	if _, err := os.Stat(".env"); err != nil {
		return nil
	}
	return godotenv.Load()
}

// LoadFromEnv applies COCOLOAD_* environment variables on top of c.
func (c *Config) LoadFromEnv() error {
	if v := os.Getenv("COCOLOAD_SCRATCH_DIR"); v != "" {
		c.ScratchDir = v
	}
	if v := os.Getenv("COCOLOAD_DEST"); v != "" {
		c.Dest = v
	}
	if v := os.Getenv("COCOLOAD_WORKERS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("parse COCOLOAD_WORKERS: %w", err)
		}
		c.Workers = n
	}
	if v := os.Getenv("COCOLOAD_BUFFER_SIZE"); v != "" {
		size, err := progress.ParseBytes(v)
		if err != nil {
			return fmt.Errorf("parse COCOLOAD_BUFFER_SIZE: %w", err)
		}
		c.BufferSize = int(size)
	}
	if v := os.Getenv("COCOLOAD_COMMAND"); v != "" {
		if v == "builtin" {
			c.Command = nil
		} else {
			c.Command = strings.Fields(v)
		}
	}
	if v := os.Getenv("COCOLOAD_PROGRESS"); v != "" {
		c.Progress = v == "true" || v == "1"
	}
	if v := os.Getenv("COCOLOAD_DISK_INTERVAL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("parse COCOLOAD_DISK_INTERVAL: %w", err)
		}
		c.DiskInterval = d
	}
	return nil
}

// Validate validates the full configuration.
func (c *Config) Validate() error {
	if c.Dest == "" {
		return errors.New("config: dest is required")
	}
	if c.Workers <= 0 {
		return errors.New("config: workers must be positive")
	}
	if c.BufferSize <= 0 {
		return errors.New("config: buffer_size must be positive")
	}
	return c.ValidateFetch()
}

// ValidateFetch validates the subset of the configuration the fetch
// phase uses: scratch space and the archive manifest. The destination
// is not required, since fetching never touches it.
func (c *Config) ValidateFetch() error {
	if c.ScratchDir == "" {
		return errors.New("config: scratch_dir is required")
	}
	if len(c.Archives) == 0 {
		return errors.New("config: at least one archive is required")
	}
	seen := make(map[string]bool, len(c.Archives))
	for _, a := range c.Archives {
		if a.Name == "" || a.URL == "" {
			return fmt.Errorf("config: archive must have name and url (name=%q url=%q)", a.Name, a.URL)
		}
		if seen[a.Name] {
			return fmt.Errorf("config: duplicate archive name %q", a.Name)
		}
		seen[a.Name] = true
	}
	return nil
}

// Merge merges override values into c, returning a new Config.
// Zero values in override are ignored.
func (c Config) Merge(override Config) Config {
	if override.ScratchDir != "" {
		c.ScratchDir = override.ScratchDir
	}
	if override.Dest != "" {
		c.Dest = override.Dest
	}
	if override.Workers != 0 {
		c.Workers = override.Workers
	}
	if override.BufferSize != 0 {
		c.BufferSize = override.BufferSize
	}
	if override.Command != nil {
		c.Command = override.Command
	}
	if override.Progress {
		c.Progress = override.Progress
	}
	if override.DiskInterval != 0 {
		c.DiskInterval = override.DiskInterval
	}
	if len(override.Archives) > 0 {
		c.Archives = override.Archives
	}
	return c
}
