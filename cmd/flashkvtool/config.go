package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/tailscale/hujson"
)

// regionConfig describes the file-backed region a flashkvtool invocation
// operates on: the device geometry fileblockdevice needs plus the store
// parameters passed to flashkv.New. It is hand-edited JSON-with-comments,
// hence hujson rather than encoding/json alone.
type regionConfig struct {
	Path        string `json:"path"`
	Start       uint32 `json:"start"`
	Length      uint32 `json:"length"`
	ReadSize    uint32 `json:"read_size"`
	ProgramSize uint32 `json:"program_size"`
	EraseSize   uint32 `json:"erase_size"`
	MaxKeySize  uint16 `json:"max_key_size"`
}

func loadConfig(path string) (regionConfig, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return regionConfig{}, fmt.Errorf("flashkvtool: reading config %s: %w", path, err)
	}
	standardized, err := hujson.Standardize(raw)
	if err != nil {
		return regionConfig{}, fmt.Errorf("flashkvtool: parsing config %s: %w", path, err)
	}
	var cfg regionConfig
	if err := json.Unmarshal(standardized, &cfg); err != nil {
		return regionConfig{}, fmt.Errorf("flashkvtool: decoding config %s: %w", path, err)
	}
	if cfg.Path == "" {
		return regionConfig{}, fmt.Errorf("flashkvtool: config %s: path is required", path)
	}
	return cfg, nil
}
