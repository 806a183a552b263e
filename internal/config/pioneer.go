package config

import (
	"encoding/json"
	"fmt"
	"os"
)

// pioneerConfigEnvVar and defaultPioneerConfigPath locate the single JSON
// config file: PIONEER_CONFIG_PATH if set, else .pioneer.json in the
// working directory.
const (
	pioneerConfigEnvVar      = "PIONEER_CONFIG_PATH"
	defaultPioneerConfigPath = ".pioneer.json"
)

// ClusterConfig is the "cluster { name, port, fqdn_service, version,
// initial_peers, user, group }" section.
type ClusterConfig struct {
	Name         string   `yaml:"name" json:"name"`
	Port         int      `yaml:"port" json:"port"`
	FQDNService  string   `yaml:"fqdn_service" json:"fqdn_service"`
	Version      string   `yaml:"version" json:"version"`
	InitialPeers []string `yaml:"initial_peers" json:"initial_peers"`
	User         string   `yaml:"user" json:"user"`
	Group        string   `yaml:"group" json:"group"`
}

// StorageTargetConfig is one entry of the "storage { name ->
// {endpoint, repository, region, secure, access_key, secret_key} }" map.
type StorageTargetConfig struct {
	Endpoint   string `yaml:"endpoint" json:"endpoint"`
	Repository string `yaml:"repository" json:"repository"`
	Region     string `yaml:"region" json:"region"`
	Secure     bool   `yaml:"secure" json:"secure"`
	AccessKey  string `yaml:"access_key" json:"access_key"`
	SecretKey  string `yaml:"secret_key" json:"secret_key"`
}

// LockingConfig is the "locking { objects {duration, grace},
// storage {duration, grace} }" section, consumed by internal/plocking.
type LockingConfig struct {
	Objects LockTimingConfig `yaml:"objects" json:"objects"`
	Storage LockTimingConfig `yaml:"storage" json:"storage"`
}

// LockTimingConfig is one {duration, grace} pair, in seconds.
type LockTimingConfig struct {
	Duration float64 `yaml:"duration" json:"duration"`
	Grace    float64 `yaml:"grace" json:"grace"`
}

// SerializationConfig is the "serialization {encoding,
// formatting{JSON{indent, sort_keys}}, fallback?}" section.
type SerializationConfig struct {
	Encoding   string               `yaml:"encoding" json:"encoding"`
	Formatting SerializationFormats `yaml:"formatting" json:"formatting"`
	Fallback   string               `yaml:"fallback,omitempty" json:"fallback,omitempty"`
}

// SerializationFormats holds per-encoding formatting knobs; only JSON is
// specified today.
type SerializationFormats struct {
	JSON JSONFormatConfig `yaml:"json" json:"json"`
}

// JSONFormatConfig controls JSON record serialization (used by pdata/
// pdatabase's encode paths).
type JSONFormatConfig struct {
	Indent   string `yaml:"indent" json:"indent"`
	SortKeys bool   `yaml:"sort_keys" json:"sort_keys"`
}

// NewDefaultPioneerSections fills in the Pioneer-specific sections'
// defaults on an otherwise-zero Configuration, mirroring NewDefault's style
// for the ambient sections.
func NewDefaultPioneerSections() Configuration {
	return Configuration{
		Cluster: ClusterConfig{
			Name:        "pioneer",
			Port:        7946,
			FQDNService: "pioneer.local",
			Version:     "1",
		},
		Storage: map[string]StorageTargetConfig{},
		Locking: LockingConfig{
			Objects: LockTimingConfig{Duration: 30, Grace: 5},
			Storage: LockTimingConfig{Duration: 60, Grace: 10},
		},
		Serialization: SerializationConfig{
			Encoding: "json",
			Formatting: SerializationFormats{
				JSON: JSONFormatConfig{Indent: "", SortKeys: true},
			},
		},
	}
}

// PioneerConfigPath resolves the JSON config file path: PIONEER_CONFIG_PATH
// if set, else the default ".pioneer.json" in the working directory.
func PioneerConfigPath() string {
	if p := os.Getenv(pioneerConfigEnvVar); p != "" {
		return p
	}
	return defaultPioneerConfigPath
}

// LoadPioneerConfig reads the Pioneer-specific sections (cluster/storage/
// locking/serialization) from a JSON file, defaulting missing sections.
// Unlike LoadFromFile (YAML, the ambient sections), this is the entry point
// for Pioneer's own configuration.
func LoadPioneerConfig(path string) (*Configuration, error) {
	cfg := NewDefaultPioneerSections()

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return &cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}

	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	return &cfg, nil
}
