package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"

	"github.com/mitchellh/go-homedir"
	toml "github.com/pelletier/go-toml/v2"

	"github.com/verdala/va-client/internal/messages"
)

// DefaultConfigPath is where the client config lives on a managed machine.
const DefaultConfigPath = "/etc/verdala/advantage.toml"

// DefaultContractURL is the production contract service endpoint.
const DefaultContractURL = "https://contracts.verdala.com"

// defaultDataDir holds machine state when running as root.
const defaultDataDir = "/var/lib/verdala-advantage"

// ErrConfigValidation is a sentinel that wraps config validation failures
// (as opposed to TOML syntax or filesystem errors). Callers can use
// errors.Is(err, ErrConfigValidation) to distinguish the two.
var ErrConfigValidation = errors.New("config validation failed")

// Features holds opt-in behavior toggles.
type Features struct {
	// AllowBeta treats beta services as generally available.
	AllowBeta bool `toml:"allow_beta"`
	// DisableAutoAttach refuses cloud-identity attach on this machine.
	DisableAutoAttach bool `toml:"disable_auto_attach"`
}

// Config is the client configuration read from advantage.toml.
type Config struct {
	// ContractURL is the base URL of the contract service.
	ContractURL string `toml:"contract_url"`
	// DataDir overrides where machine state (token, caches) is stored.
	DataDir  string   `toml:"data_dir"`
	Features Features `toml:"features"`
}

// Default returns the built-in configuration used when no config file
// exists.
func Default() *Config {
	return &Config{ContractURL: DefaultContractURL}
}

// Load reads and validates the config at path. A missing file yields the
// defaults; any other read error is fatal.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return nil, fmt.Errorf(messages.ConfigReadErrFmt, path, err)
	}
	return Parse(data, path)
}

// Parse decodes and validates raw TOML config. source names the origin for
// error messages.
func Parse(data []byte, source string) (*Config, error) {
	cfg := Default()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf(messages.ConfigParseErrFmt, source, err)
	}
	if err := cfg.validate(source); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate(source string) error {
	u, err := url.Parse(c.ContractURL)
	if err != nil {
		return errors.Join(ErrConfigValidation, fmt.Errorf(messages.ConfigInvalidURLFmt, source, c.ContractURL, err))
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return errors.Join(ErrConfigValidation, fmt.Errorf(messages.ConfigInvalidURLFmt, source, c.ContractURL,
			fmt.Errorf("scheme must be http or https")))
	}
	return nil
}

// ResolveDataDir returns the directory for machine state: the configured
// override, the system data dir for root, or a per-user cache dir otherwise.
func (c *Config) ResolveDataDir() (string, error) {
	if c.DataDir != "" {
		return c.DataDir, nil
	}
	if os.Geteuid() == 0 {
		return defaultDataDir, nil
	}
	home, err := homedir.Dir()
	if err != nil {
		return "", fmt.Errorf(messages.ConfigDataDirErrFmt, err)
	}
	return filepath.Join(home, ".cache", "verdala-advantage"), nil
}
