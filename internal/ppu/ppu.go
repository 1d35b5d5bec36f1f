package ppu

import (
	"bytes"
	"encoding/gob"
	"sync"
	"sync/atomic"
)

// Memory and geometry of the chip. The four layers are square so sprites
// and tiles can be blitted at negative offsets and scroll in from any
// edge; the visible output is the top 240 lines.
const (
	vramSize  = 8192
	spramSize = 2048

	palBank1Base = 0x1C00 // palette bank 1: 16 palettes x 16 entries x 2 bytes
	palBank0Base = 0x1E00

	layerWidth  = 256
	layerHeight = 256

	OutWidth  = 256
	OutHeight = 240

	spriteSlots = 240 // slots 240..255 exist in SPRAM but are never drawn
)

// Timing describes the video counter in CPU clocks. Rendering starts when
// the counter crosses VBlankLen (the end of VBLANK) and the counter wraps
// at VTotal.
type Timing struct {
	VBlankStart uint32
	VBlankLen   uint32
	VTotal      uint32
}

// PAL is the default VT168 video timing.
var PAL = Timing{VBlankStart: 0, VBlankLen: 22036, VTotal: 106392}

type command int

const (
	cmdRender command = iota
	cmdStop
)

// PPU is the VT168 picture processing unit: 256 registers, 8 KiB VRAM,
// 2 KiB sprite RAM, a four-layer dual-palette frame renderer and a video
// counter. The CPU side drives Write/Read/Tick; a worker goroutine renders
// one full frame each time the counter leaves VBLANK.
type PPU struct {
	mem PhysicalReader

	regsMu sync.Mutex
	regs   [256]byte
	shadow [256]byte // renderer's snapshot, taken at frame start

	vram  [vramSize]byte
	spram [spramSize]byte

	layers [4][]DualPixel
	obuf   []uint32 // ARGB8888, OutWidth x OutHeight

	lcdOutput bool

	renderDone atomic.Bool
	nmi        func()

	cmds chan command
	done chan struct{}

	ticks  uint32
	timing Timing
}

// New allocates the layer and output buffers and starts the render worker.
// Call Stop to shut the worker down.
func New(mem PhysicalReader) *PPU {
	p := &PPU{
		mem:    mem,
		obuf:   make([]uint32, OutWidth*OutHeight),
		cmds:   make(chan command, 1),
		done:   make(chan struct{}),
		timing: PAL,
	}
	for i := range p.layers {
		p.layers[i] = make([]DualPixel, layerWidth*layerHeight)
	}
	go p.renderLoop()
	return p
}

// SetTiming replaces the video timing. Intended for setup, before the
// guest starts ticking.
func (p *PPU) SetTiming(t Timing) { p.timing = t }

// SetLCDOutput switches the compositor between the LCD and TV output
// palette selects in reg 0x0E.
func (p *PPU) SetLCDOutput(lcd bool) { p.lcdOutput = lcd }

// SetVBlankNMI registers a hook invoked when the video counter wraps with
// NMI enabled (reg 0x00 bit 0). Wiring it to the CPU's NMI line is the
// caller's business; the default is no hook.
func (p *PPU) SetVBlankNMI(fn func()) { p.nmi = fn }

// Tick advances the video counter by one CPU clock. Crossing the end of
// VBLANK hands the frame to the render worker; the send never blocks the
// CPU side.
func (p *PPU) Tick() {
	p.ticks++
	if p.ticks >= p.timing.VTotal {
		p.ticks = 0
		if p.nmi != nil && p.NMIEnabled() {
			p.nmi()
		}
	} else if p.ticks == p.timing.VBlankLen {
		p.renderDone.Store(false)
		select {
		case p.cmds <- cmdRender:
		default:
			// previous frame still rendering; the guest outran the worker
		}
	}
}

// IsVBlank reports whether the counter is inside the vertical blanking
// interval, during which the guest may safely update PPU memory.
func (p *PPU) IsVBlank() bool {
	return p.ticks >= p.timing.VBlankStart && p.ticks < p.timing.VBlankLen
}

// IsRenderDone reports whether the frame kicked off by the last VBLANK end
// has finished.
func (p *PPU) IsRenderDone() bool { return p.renderDone.Load() }

// RenderBuffer returns the ARGB8888 output buffer. The renderer rewrites
// it each frame; read it between IsRenderDone and the next VBLANK end.
func (p *PPU) RenderBuffer() []uint32 { return p.obuf }

// Stop shuts down the render worker and waits for it to exit. A frame in
// progress is finished first.
func (p *PPU) Stop() {
	p.cmds <- cmdStop
	<-p.done
}

func (p *PPU) renderLoop() {
	defer close(p.done)
	for cmd := range p.cmds {
		if cmd == cmdStop {
			return
		}
		p.renderFrame()
	}
}

// renderFrame renders and composes one complete frame: snapshot the
// registers, clear the layers, draw background plane 1 then plane 0 then
// the sprites, and merge everything into the output buffer.
func (p *PPU) renderFrame() {
	p.renderDone.Store(false)
	p.regsMu.Lock()
	p.shadow = p.regs
	p.regsMu.Unlock()
	p.clearLayers()
	for i := 1; i >= 0; i-- {
		p.renderBackground(i)
	}
	p.renderSprites()
	p.mergeLayers(p.lcdOutput)
	p.renderDone.Store(true)
}

func (p *PPU) clearLayers() {
	for _, l := range p.layers {
		for i := range l {
			l[i] = clearPixel
		}
	}
}

// --- Save/Load state ---

type ppuState struct {
	Regs  [256]byte
	VRAM  [vramSize]byte
	SPRAM [spramSize]byte
	Ticks uint32
}

// SaveState serializes registers, VRAM, SPRAM and the video counter.
// Call it while the guest is paused (no render in flight).
func (p *PPU) SaveState() []byte {
	var buf bytes.Buffer
	enc := gob.NewEncoder(&buf)
	p.regsMu.Lock()
	s := ppuState{Regs: p.regs, VRAM: p.vram, SPRAM: p.spram, Ticks: p.ticks}
	p.regsMu.Unlock()
	_ = enc.Encode(s)
	return buf.Bytes()
}

func (p *PPU) LoadState(data []byte) {
	var s ppuState
	dec := gob.NewDecoder(bytes.NewReader(data))
	if err := dec.Decode(&s); err != nil {
		return
	}
	p.regsMu.Lock()
	p.regs = s.Regs
	p.vram = s.VRAM
	p.spram = s.SPRAM
	p.ticks = s.Ticks
	p.regsMu.Unlock()
}
