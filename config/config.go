// Copyright (C) 2022 Sneller, Inc.
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program. If not, see <http://www.gnu.org/licenses/>.

// Package config loads the runtime settings that govern when a
// storage.Buffer should be flushed and how the grid operator sizes its
// batches. CLI/environment wiring around this package is out of scope here;
// config only covers parsing a settings document into a typed value.
package config

import (
	"fmt"
	"io"
	"os"

	"sigs.k8s.io/yaml"
)

// Storage holds CompressedDataBuffer flush policy.
type Storage struct {
	// FlushThresholdBytes is the in-memory footprint (storage.Buffer.
	// SizeInBytes) at which a caller should flush. This is advisory: the
	// buffer itself never flushes on its own.
	FlushThresholdBytes int64 `json:"flushThresholdBytes"`
	// CompressionAlgorithm names the compr.Compression algorithm used to
	// compress a flushed file's payload, e.g. "zstd" or "s2".
	CompressionAlgorithm string `json:"compressionAlgorithm"`
}

// Grid holds grid operator defaults.
type Grid struct {
	// EngineBatchSize is the batch size a host query engine would otherwise
	// supply via its session configuration; it is surfaced here so a
	// standalone deployment has a sensible default.
	EngineBatchSize int `json:"engineBatchSize"`
}

// Config is the top-level settings document.
type Config struct {
	Storage Storage `json:"storage"`
	Grid    Grid    `json:"grid"`
}

// Default returns the configuration this module uses when no settings
// document is supplied.
func Default() Config {
	return Config{
		Storage: Storage{
			FlushThresholdBytes:  64 << 20, // 64 MiB
			CompressionAlgorithm: "zstd",
		},
		Grid: Grid{
			EngineBatchSize: 1024,
		},
	}
}

// Load reads a YAML settings document from r, overlaying it onto Default().
// Fields absent from the document keep their default values.
func Load(r io.Reader) (Config, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return Config{}, fmt.Errorf("config: reading settings: %w", err)
	}
	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: parsing settings: %w", err)
	}
	return cfg, nil
}

// LoadFile is a convenience wrapper around Load for a settings file on
// disk.
func LoadFile(path string) (Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: opening settings file: %w", err)
	}
	defer f.Close()
	return Load(f)
}
