package ppu

// sprite is one decoded 8-byte SPRAM slot.
type sprite struct {
	vector  uint16 // 12-bit character vector; 0 = slot disabled
	palette int    // 0..15
	layer   int    // 0..3
	psel    bool   // palette-bank select
	x, y    int    // signed screen position
}

func decodeSprite(slot []byte) sprite {
	s := sprite{
		vector:  uint16(slot[1]&0x0F)<<8 | uint16(slot[0]),
		palette: int(slot[1]>>4) & 0x0F,
		layer:   int(slot[3]>>3) & 0x03,
		psel:    getBit(slot[5], 1),
		x:       int(slot[2]),
		y:       int(slot[4]),
	}
	if getBit(slot[3], 0) {
		s.x -= 256
	}
	if getBit(slot[5], 0) {
		s.y -= 256
	}
	return s
}

// spriteSize decodes reg 0x18 bits 1:0 into (width, height).
func spriteSize(ctrl byte) (w, h int) {
	w, h = 8, 8
	if ctrl&0x02 != 0 {
		w = 16
	}
	if ctrl&0x01 != 0 {
		h = 16
	}
	return
}

// renderSprites walks the sprite table back to front (slot 239 first, so
// slot 0 lands on top) and blits each enabled sprite into its layer.
// Sprites are always IDX_16. The palette routing: with spalsel set both
// banks are looked up; otherwise psel picks bank 1 over bank 0.
func (p *PPU) renderSprites() {
	ctrl := p.shadow[regSpCtrl]
	if !getBit(ctrl, 2) {
		return
	}
	spalsel := getBit(ctrl, 3)
	w, h := spriteSize(ctrl)
	seg := uint16(p.shadow[regSpSegMSB]&0x0F)<<8 | uint16(p.shadow[regSpSegLSB])

	var buf [16 * 16]byte
	for idx := spriteSlots - 1; idx >= 0; idx-- {
		s := decodeSprite(p.spram[8*idx : 8*idx+8])
		if s.vector == 0 {
			continue
		}
		src := charData(p.mem, seg, s.vector, w, h, Idx16, false, buf[:])
		var pal0, pal1 []byte
		if spalsel || !s.psel {
			pal0 = p.vram[palBank0Base+32*s.palette:]
		}
		if spalsel || s.psel {
			pal1 = p.vram[palBank1Base+32*s.palette:]
		}
		blit(w, h, src, layerWidth, layerHeight, layerWidth, s.x, s.y,
			p.layers[s.layer], Idx16, pal0, pal1)
	}
}
