package main

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

const (
	kindInt   = "int"
	kindVLAN  = "vlan"
	kindVXLAN = "vxlan"
	kindIP    = "ip"
)

type Config struct {
	Pools []PoolConfig `yaml:"pools"`
}

// PoolConfig describes one pool. Range is ignored for vlan pools, which
// always cover 0..4095. Integer ranges use the rangeset notation or the
// "a-b" shorthand; ip ranges are "from-to" or a prefix.
type PoolConfig struct {
	Name   string        `yaml:"name"`
	Kind   string        `yaml:"kind"`
	Range  string        `yaml:"range,omitempty"`
	Claims []ClaimConfig `yaml:"claims,omitempty"`
}

type ClaimConfig struct {
	Range  string            `yaml:"range"`
	Labels map[string]string `yaml:"labels,omitempty"`
}

func loadConfig(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg, err := parseConfig(b)
	if err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

func parseConfig(b []byte) (*Config, error) {
	cfg := &Config{}
	dec := yaml.NewDecoder(bytes.NewReader(b))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	return cfg, cfg.validate()
}

func (r *Config) validate() error {
	var errm error
	names := map[string]struct{}{}
	for i, p := range r.Pools {
		if p.Name == "" {
			errm = errors.Join(errm, fmt.Errorf("pool %d: missing name", i))
		}
		if _, ok := names[p.Name]; ok {
			errm = errors.Join(errm, fmt.Errorf("pool %s: duplicate name", p.Name))
		}
		names[p.Name] = struct{}{}

		switch p.Kind {
		case kindVLAN:
		case kindInt, kindVXLAN, kindIP:
			if p.Range == "" {
				errm = errors.Join(errm, fmt.Errorf("pool %s: missing range", p.Name))
			}
		default:
			errm = errors.Join(errm, fmt.Errorf("pool %s: unknown kind %q", p.Name, p.Kind))
		}
	}
	return errm
}
