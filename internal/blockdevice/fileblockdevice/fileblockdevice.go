// Package fileblockdevice implements blockdevice.Device over a plain file,
// standing in for the physical medium when flashkv runs on a host instead
// of an embedded target (the CLI in cmd/flashkvtool is the only consumer).
//
// The region bytes themselves are written with direct, non-atomic
// pwrite-style calls (os.File.WriteAt), matching the "program is not
// atomic" contract every medium must honor. atomic.WriteFile is
// deliberately NOT used there, only for the sidecar geometry file below,
// which is metadata, not medium content.
package fileblockdevice

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"

	"github.com/natefinch/atomic"
)

const sidecarSuffix = ".flashkv-geometry.json"

type geometry struct {
	Size        uint32 `json:"size"`
	ReadSize    uint32 `json:"read_size"`
	ProgramSize uint32 `json:"program_size"`
	EraseSize   uint32 `json:"erase_size"`
}

// Device is a file-backed medium of fixed geometry.
type Device struct {
	f  *os.File
	ge geometry
}

// Open opens (creating if absent) path as a region of the given geometry.
// On an existing file, the sidecar's recorded geometry must match; a
// mismatch is almost certainly a misconfigured caller pointing at the
// wrong region file, not something flashkv should silently paper over.
func Open(path string, size, readSize, programSize, eraseSize uint32) (*Device, error) {
	ge := geometry{Size: size, ReadSize: readSize, ProgramSize: programSize, EraseSize: eraseSize}

	sidecarPath := path + sidecarSuffix
	if existing, err := os.ReadFile(sidecarPath); err == nil {
		var prev geometry
		if err := json.Unmarshal(existing, &prev); err != nil {
			return nil, fmt.Errorf("fileblockdevice: corrupt sidecar %s: %w", sidecarPath, err)
		}
		if prev != ge {
			return nil, fmt.Errorf("fileblockdevice: %s geometry %+v does not match requested %+v", path, prev, ge)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("fileblockdevice: reading sidecar: %w", err)
	}

	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0o644)
	if err != nil {
		return nil, fmt.Errorf("fileblockdevice: opening %s: %w", path, err)
	}

	stat, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("fileblockdevice: stat %s: %w", path, err)
	}
	if stat.Size() < int64(size) {
		if err := f.Truncate(int64(size)); err != nil {
			f.Close()
			return nil, fmt.Errorf("fileblockdevice: truncate %s: %w", path, err)
		}
		blank := make([]byte, size)
		for i := range blank {
			blank[i] = 0xFF
		}
		if _, err := f.WriteAt(blank, 0); err != nil {
			f.Close()
			return nil, fmt.Errorf("fileblockdevice: initializing %s: %w", path, err)
		}
	}

	encoded, err := json.Marshal(ge)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("fileblockdevice: encoding sidecar: %w", err)
	}
	if err := atomic.WriteFile(sidecarPath, bytes.NewReader(encoded)); err != nil {
		f.Close()
		return nil, fmt.Errorf("fileblockdevice: writing sidecar: %w", err)
	}

	return &Device{f: f, ge: ge}, nil
}

func (d *Device) Close() error { return d.f.Close() }

func (d *Device) Read(addr uint32, buf []byte) error {
	_, err := d.f.ReadAt(buf, int64(addr))
	return err
}

func (d *Device) Program(addr uint32, data []byte) error {
	_, err := d.f.WriteAt(data, int64(addr))
	if err != nil {
		return err
	}
	return d.f.Sync()
}

func (d *Device) Erase(addr uint32, length uint32) error {
	blank := make([]byte, length)
	for i := range blank {
		blank[i] = 0xFF
	}
	if _, err := d.f.WriteAt(blank, int64(addr)); err != nil {
		return err
	}
	return d.f.Sync()
}

func (d *Device) ReadSize(uint32) uint32    { return d.ge.ReadSize }
func (d *Device) ProgramSize(uint32) uint32 { return d.ge.ProgramSize }
func (d *Device) EraseSize(uint32) uint32   { return d.ge.EraseSize }
