package ppu

// mergeLayers flattens the four layers into the ARGB8888 output buffer.
// Layers are walked 3 down to 0 so layer 0 wins each bank. Register 0x0E
// then selects which banks reach the output and whether they blend; the
// LCD and TV outputs use different bits of the same register. When both
// banks are enabled and solid, bank 1 wins outright and the blend result
// only shows where the later assignments do not fire.
func (p *PPU) mergeLayers(lcd bool) {
	sel := p.shadow[regPalSel]
	var outputPal0, outputPal1, blendPal bool
	if lcd {
		outputPal0 = getBit(sel, 0)
		outputPal1 = getBit(sel, 2)
		blendPal = getBit(sel, 5)
	} else {
		outputPal0 = getBit(sel, 1)
		outputPal1 = getBit(sel, 3)
		blendPal = getBit(sel, 4)
	}
	for y := 0; y < OutHeight; y++ {
		for x := 0; x < OutWidth; x++ {
			pal0, pal1 := transparent, transparent
			for l := 3; l >= 0; l-- {
				raw := p.layers[l][y*layerWidth+x]
				if !raw.bank0().Transparent() {
					pal0 = raw.bank0()
				}
				if !raw.bank1().Transparent() {
					pal1 = raw.bank1()
				}
			}
			res := transparent
			if blendPal && outputPal0 && outputPal1 {
				res = blend1555(pal0, pal1)
			}
			if outputPal0 && !pal0.Transparent() {
				res = pal0
			}
			if outputPal1 && !pal1.Transparent() {
				res = pal1
			}
			p.obuf[y*OutWidth+x] = res.ARGB8888()
		}
	}
}
