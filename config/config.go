// Package config loads connection-level defaults for dnsclient: the
// preferred nameserver list, default query timeout, DoT server name, and
// cookie behavior. It and resolvconf.go are external collaborators (spec
// §6.4) — the core multiplexer/transport/wire packages never import
// this package, only callers assembling a Client do.
package config

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// File is the YAML configuration structure a caller may load to build a
// Client, mirroring the shape of the teacher's gRPC server config file.
type File struct {
	Nameservers    []string      `yaml:"nameservers"`
	DefaultTimeout time.Duration `yaml:"default_timeout"`
	DoTServerName  string        `yaml:"dot_server_name"`
	EnableCookies  bool          `yaml:"enable_cookies"`
}

// rawFile mirrors File but with DefaultTimeout as the string yaml actually
// carries (e.g. "5s"), since time.Duration has no native YAML scalar form.
type rawFile struct {
	Nameservers    []string `yaml:"nameservers"`
	DefaultTimeout string   `yaml:"default_timeout"`
	DoTServerName  string   `yaml:"dot_server_name"`
	EnableCookies  bool     `yaml:"enable_cookies"`
}

// UnmarshalYAML parses default_timeout with time.ParseDuration so config
// files write "5s" rather than a raw nanosecond count.
func (f *File) UnmarshalYAML(value *yaml.Node) error {
	var raw rawFile
	if err := value.Decode(&raw); err != nil {
		return err
	}
	f.Nameservers = raw.Nameservers
	f.DoTServerName = raw.DoTServerName
	f.EnableCookies = raw.EnableCookies
	if raw.DefaultTimeout != "" {
		d, err := time.ParseDuration(raw.DefaultTimeout)
		if err != nil {
			return err
		}
		f.DefaultTimeout = d
	}
	return nil
}

// LoadConfig reads and parses the YAML file at path.
func LoadConfig(path string) (*File, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var f File
	if err := yaml.Unmarshal(b, &f); err != nil {
		return nil, err
	}
	return &f, nil
}
