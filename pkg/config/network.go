package config

import (
	"fmt"
	"sort"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/imdario/mergo"
)

const (
	defaultPeerTimeout   = 30 * time.Second
	defaultCommitTimeout = 2 * time.Minute
	defaultConcurrency   = 8
)

// NetworkOptions tune interaction with network nodes.
type NetworkOptions struct {
	PeerTimeout   time.Duration `yaml:"peerTimeout"`
	CommitTimeout time.Duration `yaml:"commitTimeout"`
	Concurrency   int           `yaml:"concurrency"`
	WaitForCommit *bool         `yaml:"waitForCommit"`
	Discovery     *bool         `yaml:"discovery"`
}

// Network is a channel of Fabric network with its nodes.
type Network struct {
	Channel  string `yaml:"channel"`
	Peers    []Node `yaml:"peers"`
	Orderers []Node `yaml:"orderers"`

	NetworkOptions `yaml:",inline"`
}

// Node is a peer or orderer endpoint. TLSCACerts are paths to PEM files.
type Node struct {
	Name       string   `yaml:"name"`
	Host       string   `yaml:"host"`
	Port       int32    `yaml:"port"`
	MspID      string   `yaml:"mspId"`
	TLSCACerts []string `yaml:"tlsCACerts"`
}

func builtinDefaults() NetworkOptions {
	waitForCommit, discovery := true, false
	return NetworkOptions{
		PeerTimeout:   defaultPeerTimeout,
		CommitTimeout: defaultCommitTimeout,
		Concurrency:   defaultConcurrency,
		WaitForCommit: &waitForCommit,
		Discovery:     &discovery,
	}
}

func (c *Config) applyDefaults() error {
	if err := mergo.Merge(&c.Defaults, builtinDefaults()); err != nil {
		return fmt.Errorf("merge builtin defaults: %w", err)
	}
	for name, n := range c.Networks {
		if n == nil {
			continue
		}
		if err := mergo.Merge(&n.NetworkOptions, c.Defaults); err != nil {
			return fmt.Errorf("merge defaults of network %s: %w", name, err)
		}
	}
	return nil
}

// NetworkNames returns sorted names of configured networks.
func (c *Config) NetworkNames() []string {
	names := make([]string, 0, len(c.Networks))
	for name := range c.Networks {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Validate checks required settings, every problem found is reported.
func (c *Config) Validate() error {
	var result *multierror.Error
	if c.MspID == "" {
		result = multierror.Append(result, fmt.Errorf("mspId is required"))
	}
	if len(c.Networks) == 0 {
		result = multierror.Append(result, fmt.Errorf("at least one network is required"))
	}
	for _, name := range c.NetworkNames() {
		n := c.Networks[name]
		if n == nil {
			result = multierror.Append(result, fmt.Errorf("network %s: empty definition", name))
			continue
		}
		if err := n.validate(c.MspID); err != nil {
			result = multierror.Append(result, fmt.Errorf("network %s: %w", name, err))
		}
	}
	return result.ErrorOrNil()
}

func (n *Network) validate(mspID string) error {
	var result *multierror.Error
	if n.Channel == "" {
		result = multierror.Append(result, fmt.Errorf("channel is required"))
	}
	if len(n.Peers) == 0 {
		result = multierror.Append(result, fmt.Errorf("at least one peer is required"))
	}
	var local int
	for i, p := range n.Peers {
		if p.MspID == "" {
			result = multierror.Append(result, fmt.Errorf("peer %d: mspId is required", i))
		}
		if p.MspID == mspID {
			local++
		}
		if err := p.validate(); err != nil {
			result = multierror.Append(result, fmt.Errorf("peer %d: %w", i, err))
		}
	}
	if len(n.Peers) > 0 && local == 0 {
		result = multierror.Append(result, fmt.Errorf("no peers of %s", mspID))
	}
	for i, o := range n.Orderers {
		if err := o.validate(); err != nil {
			result = multierror.Append(result, fmt.Errorf("orderer %d: %w", i, err))
		}
	}
	if n.Concurrency < 0 {
		result = multierror.Append(result, fmt.Errorf("concurrency must not be negative"))
	}
	if n.PeerTimeout < 0 || n.CommitTimeout < 0 {
		result = multierror.Append(result, fmt.Errorf("timeouts must not be negative"))
	}
	return result.ErrorOrNil()
}

func (n Node) validate() error {
	if n.Host == "" {
		return fmt.Errorf("host is required")
	}
	if n.Port <= 0 {
		return fmt.Errorf("port must be positive")
	}
	return nil
}
