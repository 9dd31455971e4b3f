package command

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"elibrary/internal/viewstate"

	"gopkg.in/yaml.v3"
)

const DefaultAPIURL = "http://localhost:8080"

// CLIConfig is read from ~/.elibrary/config.yaml. Every key is optional.
type CLIConfig struct {
	APIURL         string        `yaml:"api_url"`
	SearchDebounce time.Duration `yaml:"search_debounce"`
	Timeout        time.Duration `yaml:"timeout"`
	LogLevel       string        `yaml:"log_level"`
}

func DefaultCLIConfig() CLIConfig {
	return CLIConfig{
		APIURL:         DefaultAPIURL,
		SearchDebounce: viewstate.DefaultSearchDelay,
		Timeout:        10 * time.Second,
		LogLevel:       "warn",
	}
}

func defaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".elibrary", "config.yaml")
}

// LoadCLIConfig overlays the file at path onto the defaults. A missing file
// is not an error.
func LoadCLIConfig(path string) (CLIConfig, error) {
	cfg := DefaultCLIConfig()
	if path == "" {
		return cfg, nil
	}

	file, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	if err := yaml.NewDecoder(file).Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, cfg.Validate()
}

func (c CLIConfig) Validate() error {
	u, err := url.Parse(c.APIURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("api_url must be an http(s) URL, got %q", c.APIURL)
	}
	if c.SearchDebounce < 0 {
		return fmt.Errorf("search_debounce must not be negative")
	}
	if c.Timeout < 0 {
		return fmt.Errorf("timeout must not be negative")
	}
	return nil
}
