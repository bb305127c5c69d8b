package config

import (
	"io"

	"github.com/a8m/envsubst"
	"github.com/pkg/errors"
	"github.com/yosuke-furukawa/json5/encoding/json5"
)

// Read reads a config from the given file. The file is JSON5, so comments
// and trailing commas are fine, and ${VAR} references are expanded from the
// environment before parsing.
func Read(filePath string) (*Config, error) {
	buf, err := envsubst.ReadFile(filePath)
	if err != nil {
		return nil, errors.Wrapf(err, "cannot read config file %q", filePath)
	}
	return fromBytes(buf)
}

// FromReader reads a config from the given reader, with the same expansion
// and validation as Read.
func FromReader(r io.Reader) (*Config, error) {
	buf, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	expanded, err := envsubst.Bytes(buf)
	if err != nil {
		return nil, err
	}
	return fromBytes(expanded)
}

func fromBytes(buf []byte) (*Config, error) {
	cfg := &Config{}
	if err := json5.Unmarshal(buf, cfg); err != nil {
		return nil, errors.Wrap(err, "cannot parse config")
	}
	if err := cfg.Ensure(); err != nil {
		return nil, err
	}
	return cfg, nil
}
