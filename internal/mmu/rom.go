package mmu

import "os"

// ROM is a flat, read-only 24-bit physical address space backed by the
// loaded ROM image. The PPU's character fetcher reads it directly with
// physical addresses; there is no banking on this path.
type ROM struct {
	data []byte
}

func New(data []byte) *ROM {
	return &ROM{data: data}
}

// LoadFile reads a ROM image from disk.
func LoadFile(path string) (*ROM, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return New(data), nil
}

// ReadPhysical returns the byte at a physical address. Reads past the end
// of the image return 0xFF, matching open-bus behaviour.
func (r *ROM) ReadPhysical(addr uint32) byte {
	if int64(addr) >= int64(len(r.data)) {
		return 0xFF
	}
	return r.data[addr]
}

// Size returns the image length in bytes.
func (r *ROM) Size() int { return len(r.data) }
