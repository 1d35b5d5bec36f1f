package ppu

import "testing"

func TestC5To8(t *testing.T) {
	cases := []struct{ in, want byte }{
		{0x00, 0x00},
		{0x01, 0x0F},
		{0x10, 0x80},
		{0x1E, 0xF0},
		{0x1F, 0xFF},
	}
	for _, tc := range cases {
		if got := c5to8(tc.in); got != tc.want {
			t.Fatalf("c5to8(%02x) = %02x, want %02x", tc.in, got, tc.want)
		}
	}
}

func TestARGB8888(t *testing.T) {
	cases := []struct {
		in   Colour
		want uint32
	}{
		{0x001F, 0xFFFF0000}, // full red
		{0x03E0, 0xFF00FF00}, // full green
		{0x7C00, 0xFF0000FF}, // full blue
		{0x8000, 0xFF000000}, // transparent -> opaque black
		{0xFFFF, 0xFF000000}, // transparency bit wins regardless of channels
	}
	for _, tc := range cases {
		if got := tc.in.ARGB8888(); got != tc.want {
			t.Fatalf("%04x.ARGB8888() = %08x, want %08x", uint16(tc.in), got, tc.want)
		}
	}
}

func TestBlendTransparentSides(t *testing.T) {
	red := Colour(0x001F)
	if got := blend1555(transparent, red); got != red {
		t.Fatalf("blend(T, red) = %04x, want red", uint16(got))
	}
	if got := blend1555(red, transparent); got != red {
		t.Fatalf("blend(red, T) = %04x, want red", uint16(got))
	}
	if got := blend1555(transparent, transparent); got != transparent {
		t.Fatalf("blend(T, T) = %04x, want transparent", uint16(got))
	}
}

func TestBlendRedAverages(t *testing.T) {
	if got := blend1555(0x001F, 0x001F); got != 0x001F {
		t.Fatalf("red+red = %04x, want 001F", uint16(got))
	}
	if got := blend1555(0x001F, 0x0000); got != 0x000F {
		t.Fatalf("red+black = %04x, want 000F", uint16(got))
	}
}

func TestBlendGreenTruncatesSecondOperand(t *testing.T) {
	// The second operand's green contributes only its lowest bit, so two
	// full greens average to 16, not 31.
	got := blend1555(0x03E0, 0x03E0)
	if g := (got >> 5) & 0x1F; g != 16 {
		t.Fatalf("green(full,full) = %d, want 16", g)
	}
	// Green 30 in b has bit 0 clear: (31+0)/2 = 15.
	got = blend1555(0x03E0, 30<<5)
	if g := (got >> 5) & 0x1F; g != 15 {
		t.Fatalf("green(31,30) = %d, want 15", g)
	}
}

func TestBlendBlueReadsOneBitHigh(t *testing.T) {
	// Blue is sampled from bit 11 up but written back at bit 10, halving
	// it once more: two full blues blend to 0xF << 10.
	got := blend1555(0x7C00, 0x7C00)
	if got != 0xF<<10 {
		t.Fatalf("blue(full,full) = %04x, want %04x", uint16(got), uint16(0xF<<10))
	}
}

// fillLayer paints one pixel of a layer at (x, y).
func fillLayer(p *PPU, layer, x, y int, px DualPixel) {
	p.layers[layer][y*layerWidth+x] = px
}

func prepCompose(t *testing.T, sel byte) *PPU {
	t.Helper()
	p := newTestPPU(t)
	p.clearLayers()
	p.shadow[regPalSel] = sel
	return p
}

func TestComposeBank1BeatsBank0(t *testing.T) {
	// TV output, both banks enabled with blending: the bank 1 colour is
	// what reaches the output when both banks are solid.
	p := prepCompose(t, 0x1A)
	fillLayer(p, 0, 0, 0, clearPixel.withBank0(0x001F).withBank1(0x7C00))
	p.mergeLayers(false)
	if got := p.obuf[0]; got != 0xFF0000FF {
		t.Fatalf("pixel = %08x, want blue FF0000FF", got)
	}
}

func TestComposeBlendShowsThroughBank1Hole(t *testing.T) {
	// Bank 1 enabled but transparent at this pixel: bank 0 shows.
	p := prepCompose(t, 0x1A)
	fillLayer(p, 0, 0, 0, clearPixel.withBank0(0x001F))
	p.mergeLayers(false)
	if got := p.obuf[0]; got != 0xFFFF0000 {
		t.Fatalf("pixel = %08x, want red FFFF0000", got)
	}
}

func TestComposeLayerZeroWins(t *testing.T) {
	p := prepCompose(t, 0x02)
	fillLayer(p, 3, 0, 0, clearPixel.withBank0(0x7C00))
	fillLayer(p, 0, 0, 0, clearPixel.withBank0(0x001F))
	p.mergeLayers(false)
	if got := p.obuf[0]; got != 0xFFFF0000 {
		t.Fatalf("pixel = %08x, want layer 0 red", got)
	}
}

func TestComposeLowerLayerShowsThroughTransparency(t *testing.T) {
	p := prepCompose(t, 0x02)
	fillLayer(p, 3, 0, 0, clearPixel.withBank0(0x7C00))
	p.mergeLayers(false)
	if got := p.obuf[0]; got != 0xFF0000FF {
		t.Fatalf("pixel = %08x, want layer 3 blue", got)
	}
}

func TestComposeBanksResolvePerLayerIndependently(t *testing.T) {
	// Bank 0 solid on layer 2, bank 1 solid on layer 1: each bank resolves
	// across layers on its own, then bank 1 wins the final select.
	p := prepCompose(t, 0x0A)
	fillLayer(p, 2, 0, 0, clearPixel.withBank0(0x001F))
	fillLayer(p, 1, 0, 0, clearPixel.withBank1(0x7C00))
	p.mergeLayers(false)
	if got := p.obuf[0]; got != 0xFF0000FF {
		t.Fatalf("pixel = %08x, want bank 1 blue", got)
	}
}

func TestComposeDisabledBankIsBlack(t *testing.T) {
	p := prepCompose(t, 0x00)
	fillLayer(p, 0, 0, 0, clearPixel.withBank0(0x001F).withBank1(0x7C00))
	p.mergeLayers(false)
	if got := p.obuf[0]; got != 0xFF000000 {
		t.Fatalf("pixel = %08x, want black with no banks selected", got)
	}
}

func TestComposeLCDUsesItsOwnSelectBits(t *testing.T) {
	// Bit 0 enables bank 0 on the LCD output only.
	p := prepCompose(t, 0x01)
	fillLayer(p, 0, 0, 0, clearPixel.withBank0(0x001F))
	p.mergeLayers(true)
	if got := p.obuf[0]; got != 0xFFFF0000 {
		t.Fatalf("LCD pixel = %08x, want red", got)
	}
	p.mergeLayers(false)
	if got := p.obuf[0]; got != 0xFF000000 {
		t.Fatalf("TV pixel = %08x, want black with bit 1 clear", got)
	}
}
