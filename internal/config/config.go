package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config is the vault configuration loaded from vault.yaml.
type Config struct {
	SavesRoot   string       `yaml:"saves_root"`
	ArchivesDir string       `yaml:"archives_dir"`
	IndexDB     string       `yaml:"index_db"`
	DisableDB   bool         `yaml:"disable_db"`
	WorldName   string       `yaml:"world_name"`
	Chunk       ChunkConfig  `yaml:"chunk"`
	Mirror      MirrorConfig `yaml:"mirror"`
}

type ChunkConfig struct {
	Width      int `yaml:"width"`
	Height     int `yaml:"height"`
	RegionSize int `yaml:"region_size"`
}

// MirrorConfig enables off-site copies of archive snapshots to an
// S3-compatible bucket. Disabled unless an endpoint is set.
type MirrorConfig struct {
	Enabled         bool   `yaml:"enabled"`
	Endpoint        string `yaml:"endpoint"`
	Bucket          string `yaml:"bucket"`
	AccessKeyID     string `yaml:"access_key_id"`
	SecretAccessKey string `yaml:"secret_access_key"`
	Prefix          string `yaml:"prefix"`
	Workers         int    `yaml:"workers"`
	QueueCapacity   int    `yaml:"queue_capacity"`
}

// Load reads the config file, falling back to defaults when path is empty.
func Load(path string) (Config, error) {
	cfg := defaults()
	if strings.TrimSpace(path) == "" {
		cfg.Normalize()
		return cfg, nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return cfg, fmt.Errorf("vault.yaml: %w", err)
	}
	cfg.Normalize()
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("vault.yaml: %w", err)
	}
	return cfg, nil
}

// UnderDataDir rebases the writable paths under one data directory, keeping
// the rest of the config intact. Used by the -data flag.
func UnderDataDir(c Config, dataDir string) Config {
	c.SavesRoot = filepath.Join(dataDir, "saves")
	c.ArchivesDir = filepath.Join(dataDir, "archives")
	if !c.DisableDB {
		c.IndexDB = filepath.Join(dataDir, "index.db")
	}
	return c
}

func defaults() Config {
	return Config{
		SavesRoot:   "./data/saves",
		ArchivesDir: "./data/archives",
		IndexDB:     "./data/index.db",
		WorldName:   "world_1",
		Chunk: ChunkConfig{
			Width:      16,
			Height:     16,
			RegionSize: 4,
		},
	}
}

func (c *Config) Normalize() {
	if c == nil {
		return
	}
	if strings.TrimSpace(c.SavesRoot) == "" {
		c.SavesRoot = "./data/saves"
	}
	if strings.TrimSpace(c.ArchivesDir) == "" {
		c.ArchivesDir = "./data/archives"
	}
	if strings.TrimSpace(c.WorldName) == "" {
		c.WorldName = "world_1"
	}
	if c.Chunk.Width <= 0 {
		c.Chunk.Width = 16
	}
	if c.Chunk.Height <= 0 {
		c.Chunk.Height = 16
	}
	if c.Chunk.RegionSize <= 0 {
		c.Chunk.RegionSize = 4
	}
	if c.Mirror.Workers <= 0 {
		c.Mirror.Workers = 2
	}
	if c.Mirror.QueueCapacity <= 0 {
		c.Mirror.QueueCapacity = 1024
	}
}

func (c Config) Validate() error {
	if c.Chunk.Width > 256 || c.Chunk.Height > 256 {
		return fmt.Errorf("chunk size must be <= 256 per side")
	}
	if c.SavesRoot == c.ArchivesDir {
		return fmt.Errorf("saves_root and archives_dir must differ")
	}
	if !c.DisableDB && strings.TrimSpace(c.IndexDB) == "" {
		return fmt.Errorf("index_db must be set unless disable_db is true")
	}
	if c.Mirror.Enabled {
		if strings.TrimSpace(c.Mirror.Endpoint) == "" || strings.TrimSpace(c.Mirror.Bucket) == "" {
			return fmt.Errorf("mirror requires endpoint and bucket")
		}
		if strings.TrimSpace(c.Mirror.AccessKeyID) == "" || strings.TrimSpace(c.Mirror.SecretAccessKey) == "" {
			return fmt.Errorf("mirror requires access_key_id and secret_access_key")
		}
	}
	return nil
}
