package config

import (
	"bytes"
	"os"

	"go.uber.org/config"
)

// Config defines the configuration structure for hlf-lifecycle app.
type Config struct {
	LogLevel    string          `yaml:"logLevel"`
	AccessToken string          `yaml:"accessToken"`
	MspID       string          `yaml:"mspId"`
	Identity    *Identity       `yaml:"identity"`
	TLS         *TLSCredentials `yaml:"tls"`

	Listen struct {
		HTTP string `yaml:"http"`
		GRPC string `yaml:"grpc"`
	} `yaml:"listen"`

	HostMatcher map[string]string `yaml:"hostMatcher"`

	// Defaults apply to every network option left unset.
	Defaults NetworkOptions      `yaml:"defaults"`
	Networks map[string]*Network `yaml:"networks"`
}

// Load config by file path
func Load(path string) (*Config, error) {
	pr, err := config.NewYAML(config.Expand(os.LookupEnv), config.File(path))
	if err != nil {
		return nil, err
	}
	return populate(pr)
}

// LoadBytes creates config from byte slice
func LoadBytes(b []byte) (*Config, error) {
	pr, err := config.NewYAML(config.Expand(os.LookupEnv), config.Source(bytes.NewBuffer(b)))
	if err != nil {
		return nil, err
	}
	return populate(pr)
}

func populate(pr *config.YAML) (*Config, error) {
	var c Config
	if err := pr.Get(config.Root).Populate(&c); err != nil {
		return nil, err
	}
	if err := c.applyDefaults(); err != nil {
		return nil, err
	}
	return &c, nil
}
