package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/RowanDark/knitcipher/internal/cipher"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "KNITCHART_"

// Config captures the knitchart configuration resolved from defaults, optional
// files, and environment overrides.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Store    StoreConfig    `yaml:"store"`
	Audit    AuditConfig    `yaml:"audit"`
	Defaults DefaultsConfig `yaml:"defaults"`
}

// ServerConfig controls the knitchartd REST listener and its token issuer.
type ServerConfig struct {
	Addr        string        `yaml:"addr"`
	StaticToken string        `yaml:"static_token"`
	JWTSecret   string        `yaml:"jwt_secret"`
	JWTIssuer   string        `yaml:"jwt_issuer"`
	TokenTTL    time.Duration `yaml:"token_ttl"`
}

// StoreConfig locates the saved chart library.
type StoreConfig struct {
	Path string `yaml:"path"`
}

// AuditConfig selects where audit events are mirrored. An empty file keeps
// them on stdout only.
type AuditConfig struct {
	File string `yaml:"file"`
}

// DefaultsConfig holds the values the CLI uses when a flag is omitted.
type DefaultsConfig struct {
	Algorithm string `yaml:"algorithm"`
	Repeat    bool   `yaml:"repeat"`
}

// Default returns the built-in knitchart configuration.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Addr:      "127.0.0.1:8787",
			JWTIssuer: "knitchart",
			TokenTTL:  time.Hour,
		},
		Store: StoreConfig{
			Path: defaultStorePath(),
		},
		Defaults: DefaultsConfig{
			Algorithm: cipher.KeyCaesar,
		},
	}
}

func defaultStorePath() string {
	home, err := os.UserHomeDir()
	if err != nil || strings.TrimSpace(home) == "" {
		return filepath.Join(".knitchart", "charts.db")
	}
	return filepath.Join(home, ".knitchart", "charts.db")
}

// Load resolves the knitchart configuration using defaults, configuration
// files, and environment overrides. Files are applied in this order, later
// ones winning:
//  1. ~/.knitchart/config.yml
//  2. ./knitchart.yml
//  3. the file named by $KNITCHART_CONFIG
//
// Environment variables prefixed with KNITCHART_ have the highest precedence.
func Load() (Config, error) {
	cfg := Default()

	if err := loadHomeConfig(&cfg); err != nil {
		return Config{}, err
	}
	if err := loadLocalConfig(&cfg); err != nil {
		return Config{}, err
	}
	if path := strings.TrimSpace(os.Getenv(EnvPrefix + "CONFIG")); path != "" {
		if err := loadFile(&cfg, path, true); err != nil {
			return Config{}, err
		}
	}

	if err := applyEnvOverrides(&cfg); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate reports configuration values the tools cannot run with.
func (c Config) Validate() error {
	if strings.TrimSpace(c.Server.Addr) == "" {
		return errors.New("config: server.addr must not be empty")
	}
	if c.Server.TokenTTL <= 0 {
		return fmt.Errorf("config: server.token_ttl must be positive, got %s", c.Server.TokenTTL)
	}
	if strings.TrimSpace(c.Store.Path) == "" {
		return errors.New("config: store.path must not be empty")
	}
	if _, ok := cipher.Default().Get(c.Defaults.Algorithm); !ok {
		return fmt.Errorf("config: defaults.algorithm %q is not a registered algorithm", c.Defaults.Algorithm)
	}
	return nil
}

func loadHomeConfig(cfg *Config) error {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil
	}
	return loadFile(cfg, filepath.Join(home, ".knitchart", "config.yml"), false)
}

func loadLocalConfig(cfg *Config) error {
	wd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("determine working directory: %w", err)
	}
	return loadFile(cfg, filepath.Join(wd, "knitchart.yml"), false)
}

// loadFile applies the YAML file at path. A missing file is only an error
// when the caller asked for it explicitly.
func loadFile(cfg *Config, path string, required bool) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if !required && errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read config %s: %w", path, err)
	}
	if err := applyFileConfig(cfg, data); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

// fileConfig mirrors Config with pointers so that keys absent from a file
// leave earlier values untouched.
type fileConfig struct {
	Server *struct {
		Addr        *string        `yaml:"addr"`
		StaticToken *string        `yaml:"static_token"`
		JWTSecret   *string        `yaml:"jwt_secret"`
		JWTIssuer   *string        `yaml:"jwt_issuer"`
		TokenTTL    *time.Duration `yaml:"token_ttl"`
	} `yaml:"server"`
	Store *struct {
		Path *string `yaml:"path"`
	} `yaml:"store"`
	Audit *struct {
		File *string `yaml:"file"`
	} `yaml:"audit"`
	Defaults *struct {
		Algorithm *string `yaml:"algorithm"`
		Repeat    *bool   `yaml:"repeat"`
	} `yaml:"defaults"`
}

func applyFileConfig(cfg *Config, data []byte) error {
	var fc fileConfig
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&fc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return err
	}

	if s := fc.Server; s != nil {
		setString(&cfg.Server.Addr, s.Addr)
		setString(&cfg.Server.StaticToken, s.StaticToken)
		setString(&cfg.Server.JWTSecret, s.JWTSecret)
		setString(&cfg.Server.JWTIssuer, s.JWTIssuer)
		if s.TokenTTL != nil {
			cfg.Server.TokenTTL = *s.TokenTTL
		}
	}
	if s := fc.Store; s != nil {
		setString(&cfg.Store.Path, s.Path)
	}
	if a := fc.Audit; a != nil {
		setString(&cfg.Audit.File, a.File)
	}
	if d := fc.Defaults; d != nil {
		setString(&cfg.Defaults.Algorithm, d.Algorithm)
		if d.Repeat != nil {
			cfg.Defaults.Repeat = *d.Repeat
		}
	}
	return nil
}

func setString(dst *string, val *string) {
	if val != nil {
		*dst = strings.TrimSpace(*val)
	}
}

func applyEnvOverrides(cfg *Config) error {
	strs := map[string]*string{
		"ADDR":       &cfg.Server.Addr,
		"TOKEN":      &cfg.Server.StaticToken,
		"JWT_SECRET": &cfg.Server.JWTSecret,
		"JWT_ISSUER": &cfg.Server.JWTIssuer,
		"DB":         &cfg.Store.Path,
		"AUDIT_LOG":  &cfg.Audit.File,
		"ALGORITHM":  &cfg.Defaults.Algorithm,
	}
	for name, dst := range strs {
		if val, ok := os.LookupEnv(EnvPrefix + name); ok {
			*dst = strings.TrimSpace(val)
		}
	}

	if val, ok := os.LookupEnv(EnvPrefix + "TOKEN_TTL"); ok {
		ttl, err := time.ParseDuration(strings.TrimSpace(val))
		if err != nil {
			return fmt.Errorf("parse %sTOKEN_TTL: %w", EnvPrefix, err)
		}
		cfg.Server.TokenTTL = ttl
	}
	if val, ok := os.LookupEnv(EnvPrefix + "REPEAT"); ok {
		repeat, err := parseBool(val)
		if err != nil {
			return fmt.Errorf("parse %sREPEAT: %w", EnvPrefix, err)
		}
		cfg.Defaults.Repeat = repeat
	}
	return nil
}

func parseBool(val string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(val)) {
	case "1", "true", "yes", "on":
		return true, nil
	case "0", "false", "no", "off", "":
		return false, nil
	default:
		return strconv.ParseBool(val)
	}
}
