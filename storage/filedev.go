package storage

import (
	"fmt"
	"os"
)

const deviceSize = 0x10000

// FileDevice is a file-backed BlockDevice for host deployments. The file is
// a flat 64 KiB image of the part. A new image is filled with 0xFF so that
// header recovery sees it as erased, the same as a factory-fresh EEPROM.
type FileDevice struct {
	f *os.File
}

// OpenFileDevice opens or creates the image at path.
func OpenFileDevice(path string) (*FileDevice, error) {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open device image: %w", err)
	}
	st, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("stat device image: %w", err)
	}
	if st.Size() < deviceSize {
		blank := make([]byte, deviceSize)
		for i := range blank {
			blank[i] = 0xFF
		}
		if _, err := f.WriteAt(blank, 0); err != nil {
			f.Close()
			return nil, fmt.Errorf("initialize device image: %w", err)
		}
	}
	return &FileDevice{f: f}, nil
}

func (d *FileDevice) ReadBlock(addr uint16, buf []byte) error {
	// Reads that would run past the top of the part wrap, like the
	// in-address-counter wrap of the physical chip.
	end := int(addr) + len(buf)
	if end <= deviceSize {
		_, err := d.f.ReadAt(buf, int64(addr))
		return err
	}
	head := deviceSize - int(addr)
	if _, err := d.f.ReadAt(buf[:head], int64(addr)); err != nil {
		return err
	}
	_, err := d.f.ReadAt(buf[head:], 0)
	return err
}

func (d *FileDevice) WriteBlock(addr uint16, data []byte) error {
	end := int(addr) + len(data)
	if end <= deviceSize {
		_, err := d.f.WriteAt(data, int64(addr))
		return err
	}
	head := deviceSize - int(addr)
	if _, err := d.f.WriteAt(data[:head], int64(addr)); err != nil {
		return err
	}
	_, err := d.f.WriteAt(data[head:], 0)
	return err
}

// Close releases the underlying file.
func (d *FileDevice) Close() error { return d.f.Close() }
