package ppu

import "fmt"

// scrollMode is the background paging mode in bkg ctrl1 bits 3:2.
type scrollMode int

const (
	scrollFix scrollMode = iota // single page
	scrollH                     // two pages side by side
	scrollV                     // two pages stacked
	scroll4P                    // four pages (not with 8x8 tiles)
)

func b2i(b bool) int {
	if b {
		return 1
	}
	return 0
}

// tileAddr resolves the VRAM address of the tile-map cell for tile (tx,
// ty), and whether that tile is mapped at all under the current paging.
// The map layout differs per tile size: 8x8 tiles use two 2 KiB pages
// selected by the scroll mode and the x8/y8 scroll high bits, 16x16 tiles
// pack four 512-byte pages per plane, and bitmap mode is a single column
// of 256 row cells. 4-page scrolling of 8x8 tiles does not exist on this
// chip.
func tileAddr(tx, ty int, y8, x8 bool, size int, bmp bool, layer int, scrl scrollMode) (uint16, bool) {
	switch {
	case size == 8:
		base := uint16(0)
		offset := uint16((tx%32)+32*(ty%32)) * 2
		mapped := false
		switch scrl {
		case scrollFix:
			if x8 || y8 {
				base = 0x800
			}
			mapped = tx < 32 && ty < 32
		case scrollH:
			if (tx > 32) != x8 {
				base = 0x800
			}
			mapped = ty < 32
		case scrollV:
			if (ty > 32) != y8 {
				base = 0x800
			}
			mapped = tx < 32
		case scroll4P:
			panic("ppu: 4-page scroll is unsupported with 8x8 tiles")
		}
		return base + offset, mapped
	case size == 16:
		base := uint16(layer)<<11 | uint16(b2i(y8))<<10 | uint16(b2i(x8))<<9
		offset := uint16((tx%16)+16*(ty%16)) * 2
		mapped := false
		switch scrl {
		case scrollFix:
			mapped = tx < 16 && ty < 16
		case scrollH:
			base = uint16(layer) << 11
			if (tx > 16) != x8 {
				base |= 0x200
			}
			mapped = ty < 16
		case scrollV:
			base = uint16(layer) << 11
			if (ty > 16) != y8 {
				base |= 0x200
			}
			mapped = tx < 16
		case scroll4P:
			base = uint16(layer) << 11
			if (tx > 16) != x8 {
				base |= 0x200
			}
			if (ty > 16) != y8 {
				base |= 0x400
			}
			mapped = true
		}
		return base + offset, mapped
	case bmp:
		if layer != 0 {
			panic("ppu: bitmap mode on plane 1")
		}
		base := uint16(0)
		offset := uint16(ty%256) * 2
		mapped := false
		switch scrl {
		case scrollFix:
			base = uint16(b2i(y8))<<10 | uint16(b2i(x8))<<9
			mapped = tx < 1 && ty < 256
		case scrollH:
			if (tx > 1) != x8 {
				base = 0x200
			}
			mapped = ty < 256
		case scrollV:
			if (ty > 256) != y8 {
				base = 0x200
			}
			mapped = tx < 1
		case scroll4P:
			if (tx > 1) != x8 {
				base |= 0x200
			}
			if (ty > 256) != y8 {
				base |= 0x400
			}
			mapped = true
		}
		return base + offset, mapped
	}
	panic(fmt.Sprintf("ppu: bad tile size %d", size))
}

// bkgFormat decodes the colour mode for a plane: plane 0 can force direct
// colour via ctrl1 bit 4, otherwise ctrl2 bits 3:2 select the indexed
// depth.
func bkgFormat(idx int, ctrl1, ctrl2 byte) ColourMode {
	if idx == 0 && getBit(ctrl1, 4) {
		return ARGB1555
	}
	switch (ctrl2 >> 2) & 0x03 {
	case 0:
		return Idx4
	case 1:
		return Idx16
	case 2:
		return Idx64
	default:
		return Idx256
	}
}

// renderBackground draws background plane idx (0 or 1) into the layer
// buffers. Each mapped tile cell supplies a character vector plus four
// attribute bits that, depending on ctrl2 bit 6, carry either the palette
// bank or the target depth.
func (p *PPU) renderBackground(idx int) {
	ctrl1 := p.shadow[regBkgCtrl1[idx]]
	ctrl2 := p.shadow[regBkgCtrl2[idx]]
	if !getBit(ctrl2, 7) {
		return
	}
	bkxPal := getBit(ctrl2, 6)
	format := bkgFormat(idx, ctrl1, ctrl2)
	x8 := getBit(ctrl1, 0)
	y8 := getBit(ctrl1, 1)
	renderPal0 := getBit(p.shadow[regBkgPalSel], uint(2*idx))
	renderPal1 := getBit(p.shadow[regBkgPalSel], uint(2*idx+1))

	xoff := int(p.shadow[regBkgX[idx]])
	if x8 {
		xoff -= 256
	}
	yoff := int(p.shadow[regBkgY[idx]])
	if y8 {
		yoff -= 256
	}

	bmp := idx == 0 && getBit(ctrl2, 1)
	scrl := scrollMode((ctrl1 >> 2) & 0x03)
	tileW, tileH := 8, 8
	if getBit(ctrl2, 0) {
		tileW, tileH = 16, 16
	}
	if bmp {
		tileW, tileH = 256, 1
	}
	x0, y0 := 0, 0
	if !bmp {
		if scrl == scrollV || scrl == scroll4P {
			y0 = -256
		}
		if scrl == scrollH || scrl == scroll4P {
			x0 = -256
		}
	}

	seg := uint16(p.shadow[regBkgSegMSB[idx]]&0x0F)<<8 | uint16(p.shadow[regBkgSegLSB[idx]])

	var buf [512]byte
	for y := y0; y < 256; y += tileH {
		for x := x0; x < 256; x += tileW {
			tx := (x - x0) / tileW
			ty := (y - y0) / tileH
			addr, mapped := tileAddr(tx, ty, y8, x8, tileW, bmp, idx, scrl)
			if !mapped {
				continue
			}
			cell := uint16(p.vram[addr+1])<<8 | uint16(p.vram[addr])
			vector := cell & 0xFFF
			cellPalBk := byte(cell>>12) & 0x0F
			if vector == 0 { // transparent tile
				continue
			}
			var palBank, depth byte
			if bkxPal {
				depth = (ctrl2 >> 4) & 0x03
				switch format {
				case Idx16:
					palBank = cellPalBk
				case Idx64:
					palBank = cellPalBk >> 2
				}
			} else {
				depth = cellPalBk & 0x03
				switch format {
				case Idx16:
					palBank = (ctrl2>>4)&0x03 | cellPalBk>>2
				case Idx64:
					palBank = cellPalBk >> 2
				}
			}

			src := charData(p.mem, seg, vector, tileW, tileH, format, bmp, buf[:])
			var palOffset int
			switch format {
			case Idx16:
				palOffset = int(palBank) * 32
			case Idx64:
				palOffset = int(palBank) * 128
			}
			var pal0, pal1 []byte
			if renderPal0 {
				pal0 = p.vram[palBank0Base+palOffset:]
			}
			if renderPal1 {
				pal1 = p.vram[palBank1Base+palOffset:]
			}
			blit(tileW, tileH, src, layerWidth, layerHeight, layerWidth,
				x+xoff, y+yoff, p.layers[depth&0x03], format, pal0, pal1)
		}
	}
}
