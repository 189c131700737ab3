package main

import (
	"fmt"

	"github.com/Priyanshu23/flashkv"
	"github.com/Priyanshu23/flashkv/internal/blockdevice/fileblockdevice"
)

// openStore loads the configured region, opens the file-backed device, and
// initializes a flashkv.Store over it. Every subcommand goes through this,
// so the region is always re-scanned from whatever state the previous
// invocation (or a simulated power failure) left on disk.
func openStore() (*flashkv.Store, *fileblockdevice.Device, error) {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return nil, nil, err
	}

	dev, err := fileblockdevice.Open(cfg.Path, cfg.Start+cfg.Length, cfg.ReadSize, cfg.ProgramSize, cfg.EraseSize)
	if err != nil {
		return nil, nil, fmt.Errorf("flashkvtool: opening region: %w", err)
	}

	var opts []flashkv.Option
	if cfg.MaxKeySize != 0 {
		opts = append(opts, flashkv.WithMaxKeySize(cfg.MaxKeySize))
	}

	s := flashkv.New(dev, opts...)
	if err := s.Init(cfg.Start, cfg.Length); err != nil {
		dev.Close()
		return nil, nil, fmt.Errorf("flashkvtool: init: %w", err)
	}
	return s, dev, nil
}
