package emu

import (
	"bytes"
	"encoding/gob"
	"errors"
	"log"
	"os"
	"time"

	"github.com/FabianRolfMatthiasNoll/VT168Emulator/internal/input"
	"github.com/FabianRolfMatthiasNoll/VT168Emulator/internal/mmu"
	"github.com/FabianRolfMatthiasNoll/VT168Emulator/internal/ppu"
)

// Buttons is re-exported so frontends do not import internal/input.
type Buttons = input.Buttons

// Machine wires the ROM, the PPU and the gamepad into a steppable
// console. The CPU core is not part of this build; StepFrame drives the
// PPU's video counter directly at one tick per CPU clock.
type Machine struct {
	cfg    Config
	timing ppu.Timing

	rom *mmu.ROM
	ppu *ppu.PPU
	pad *input.Dev

	fb      []byte // RGBA, OutWidth x OutHeight x 4
	romPath string
}

func New(cfg Config) *Machine {
	t := ppu.PAL
	if cfg.VBlankLen != 0 {
		t.VBlankLen = cfg.VBlankLen
	}
	if cfg.VTotal != 0 {
		t.VTotal = cfg.VTotal
	}
	return &Machine{
		cfg:    cfg,
		timing: t,
		pad:    input.New(),
		fb:     make([]byte, ppu.OutWidth*ppu.OutHeight*4),
	}
}

// LoadROM replaces the current ROM image and restarts the PPU on it.
func (m *Machine) LoadROM(data []byte) error {
	return m.setROM(mmu.New(data))
}

// LoadROMFromFile loads a ROM image from disk and remembers its path for
// savestate placement.
func (m *Machine) LoadROMFromFile(path string) error {
	rom, err := mmu.LoadFile(path)
	if err != nil {
		return err
	}
	if err := m.setROM(rom); err != nil {
		return err
	}
	m.romPath = path
	return nil
}

func (m *Machine) setROM(rom *mmu.ROM) error {
	if rom.Size() == 0 {
		return errors.New("empty ROM image")
	}
	if m.ppu != nil {
		m.ppu.Stop()
	}
	m.rom = rom
	m.ppu = ppu.New(rom)
	m.ppu.SetTiming(m.timing)
	m.ppu.SetLCDOutput(m.cfg.LCDOutput)
	return nil
}

// ROMPath returns the currently loaded ROM file path, if any.
func (m *Machine) ROMPath() string { return m.romPath }

// Stop shuts down the PPU's render worker.
func (m *Machine) Stop() {
	if m.ppu != nil {
		m.ppu.Stop()
		m.ppu = nil
	}
}

// PPU exposes the chip for register-level pokes from tools and tests.
func (m *Machine) PPU() *ppu.PPU { return m.ppu }

// Pad exposes the gamepad port the CPU core would poll.
func (m *Machine) Pad() *input.Dev { return m.pad }

// StepFrame advances the machine by one video frame: v_total ticks, then
// waits for the render worker to finish the frame it kicked off. The
// worker renders well inside the active portion of the frame, so the wait
// is a short bounded spin.
func (m *Machine) StepFrame() {
	if m.ppu == nil {
		return
	}
	start := time.Now()
	for i := uint32(0); i < m.timing.VTotal; i++ {
		m.ppu.Tick()
	}
	deadline := time.Now().Add(time.Second)
	for !m.ppu.IsRenderDone() {
		if time.Now().After(deadline) {
			log.Printf("emu: render worker missed a frame deadline")
			break
		}
		time.Sleep(50 * time.Microsecond)
	}
	if m.cfg.Trace {
		log.Printf("frame: %s", time.Since(start))
	}
}

// Framebuffer converts the PPU's ARGB8888 output into the RGBA byte order
// ebiten's WritePixels wants and returns the backing slice.
func (m *Machine) Framebuffer() []byte {
	if m.ppu == nil {
		return m.fb
	}
	src := m.ppu.RenderBuffer()
	for i, px := range src {
		m.fb[4*i+0] = byte(px >> 16)
		m.fb[4*i+1] = byte(px >> 8)
		m.fb[4*i+2] = byte(px)
		m.fb[4*i+3] = byte(px >> 24)
	}
	return m.fb
}

// SetButtons latches the frontend's button state into the pad.
func (m *Machine) SetButtons(b Buttons) { m.pad.SetButtons(b) }

// --- Save/Load state ---

type machineState struct {
	PPU []byte
	Pad []byte
}

func (m *Machine) SaveState() []byte {
	if m.ppu == nil {
		return nil
	}
	var buf bytes.Buffer
	enc := gob.NewEncoder(&buf)
	_ = enc.Encode(machineState{PPU: m.ppu.SaveState(), Pad: m.pad.SaveState()})
	return buf.Bytes()
}

func (m *Machine) LoadState(data []byte) error {
	if m.ppu == nil {
		return errors.New("no ROM loaded")
	}
	var s machineState
	dec := gob.NewDecoder(bytes.NewReader(data))
	if err := dec.Decode(&s); err != nil {
		return err
	}
	m.ppu.LoadState(s.PPU)
	m.pad.LoadState(s.Pad)
	return nil
}

func (m *Machine) SaveStateToFile(path string) error {
	data := m.SaveState()
	if len(data) == 0 {
		return nil
	}
	return os.WriteFile(path, data, 0644)
}

func (m *Machine) LoadStateFromFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return m.LoadState(data)
}
