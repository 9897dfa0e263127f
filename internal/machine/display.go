package machine

import "github.com/retroenv/retrochip8/internal/options"

// spriteWidth is the number of pixels of a sprite row.
const spriteWidth = 8

// Display returns a row-major snapshot of the framebuffer.
func (m *Machine) Display() [DisplaySize]bool {
	return m.display
}

// Pixel returns whether the pixel at the given coordinates is set.
// Coordinates wrap around the display edges.
func (m *Machine) Pixel(x, y int) bool {
	x = ((x % DisplayWidth) + DisplayWidth) % DisplayWidth
	y = ((y % DisplayHeight) + DisplayHeight) % DisplayHeight
	return m.display[y*DisplayWidth+x]
}

func (m *Machine) clearDisplay() {
	m.display = [DisplaySize]bool{}
}

// spriteRows returns the number of sprite rows that a draw instruction
// with the given height nibble reads.
func (m *Machine) spriteRows(n uint8) int {
	switch m.opts.Quirks.DrawRows {
	case options.DrawRowsExact:
		return int(n)
	case options.DrawRowsZeroIs16:
		if n == 0 {
			return 16
		}
		return int(n)
	default:
		return int(n) + 1
	}
}

// drawSprite XORs the sprite at I onto the framebuffer at the position
// (Vx, Vy) and sets VF if any lit pixel got turned off.
func (m *Machine) drawSprite(x, y, n uint8) error {
	rows := m.spriteRows(n)
	if err := m.checkRange(m.i, rows); err != nil {
		return err
	}

	originX := int(m.v[x])
	originY := int(m.v[y])
	var collision uint8

	for row := range rows {
		sprite := m.memory[int(m.i)+row]
		py := (originY + row) % DisplayHeight

		for col := range spriteWidth {
			if sprite&(0x80>>col) == 0 {
				continue
			}

			px := (originX + col) % DisplayWidth
			offset := py*DisplayWidth + px
			if m.display[offset] {
				collision = 1
			}
			m.display[offset] = !m.display[offset]
		}
	}

	m.v[flagRegister] = collision
	return nil
}
