package input

import "log"

// Buttons is the VT168 gamepad state as seen by the frontend.
type Buttons struct {
	A, B, Select, Start   bool
	Up, Down, Left, Right bool
}

// mask packs the buttons into the 8-bit state register: A=bit 0, B=1,
// Select=2, Start=3, Up=4, Down=5, Left=6, Right=7.
func (b Buttons) mask() byte {
	var m byte
	if b.A {
		m |= 1 << 0
	}
	if b.B {
		m |= 1 << 1
	}
	if b.Select {
		m |= 1 << 2
	}
	if b.Start {
		m |= 1 << 3
	}
	if b.Up {
		m |= 1 << 4
	}
	if b.Down {
		m |= 1 << 5
	}
	if b.Left {
		m |= 1 << 6
	}
	if b.Right {
		m |= 1 << 7
	}
	return m
}

// Dev is the gamepad shift register. The guest polls it by reading its
// I/O port: each read shifts out the register's LSB and refills the MSB
// from bit 0 of the button state.
type Dev struct {
	shiftreg byte
	state    byte
	warned   bool
}

func New() *Dev { return &Dev{} }

// Read shifts one bit out of the register.
func (d *Dev) Read() byte {
	res := d.shiftreg & 0x01
	d.shiftreg >>= 1
	d.shiftreg |= (d.state & 0x01) << 7
	return res
}

// Write is not a valid operation on the pad port; the byte is dropped.
func (d *Dev) Write(data byte) {
	if !d.warned {
		d.warned = true
		log.Printf("input: ignoring write %02x to pad port", data)
	}
}

// SetButtons latches the frontend's button state and reloads the shift
// register with it.
func (d *Dev) SetButtons(b Buttons) {
	d.state = b.mask()
	d.shiftreg = d.state
}

// SaveState serializes the shift register and button state.
func (d *Dev) SaveState() []byte { return []byte{d.shiftreg, d.state} }

func (d *Dev) LoadState(data []byte) {
	if len(data) < 2 {
		return
	}
	d.shiftreg = data[0]
	d.state = data[1]
}
