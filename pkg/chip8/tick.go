package chip8

// Tick fetches, decodes and executes one instruction. On a fault the program
// counter is left on the faulting instruction.
func (m *Machine) Tick() error {
	addr := m.pc
	op := uint16(m.read(addr))<<8 | uint16(m.read(addr+1))
	m.skip()

	x := (op >> 8) & 0xF
	y := (op >> 4) & 0xF
	n := op & 0xF
	kk := byte(op & 0xFF)
	nnn := op & 0x0FFF

	v := m.gpr()

	fault := func(err error) error {
		m.pc = addr
		return &ErrFault{Addr: addr, Opcode: op, Err: err}
	}

	switch op >> 12 {
	case 0x0:
		switch op {
		case 0x00E0: // CLS
			clear(m.display())
		case 0x00EE: // RET
			if m.sp == 0 {
				return fault(ErrStackUnderflow)
			}
			m.sp--
			m.pc = m.stackEntry(int(m.sp)) & addrMask
		default:
			return fault(ErrIllegalOpcode)
		}
	case 0x1: // JP nnn
		m.pc = nnn
	case 0x2: // CALL nnn
		if int(m.sp) >= StackDepth {
			return fault(ErrStackOverflow)
		}
		m.setStackEntry(int(m.sp), m.pc)
		m.sp++
		m.pc = nnn
	case 0x3: // SE Vx, kk
		if v[x] == kk {
			m.skip()
		}
	case 0x4: // SNE Vx, kk
		if v[x] != kk {
			m.skip()
		}
	case 0x5: // SE Vx, Vy
		if n != 0 {
			return fault(ErrIllegalOpcode)
		}
		if v[x] == v[y] {
			m.skip()
		}
	case 0x6: // LD Vx, kk
		v[x] = kk
	case 0x7: // ADD Vx, kk
		v[x] += kk
	case 0x8:
		if err := m.alu(v, x, y, n); err != nil {
			return fault(err)
		}
	case 0x9: // SNE Vx, Vy
		if n != 0 {
			return fault(ErrIllegalOpcode)
		}
		if v[x] != v[y] {
			m.skip()
		}
	case 0xA: // LD I, nnn
		m.i = nnn
	case 0xB: // JP V0, nnn
		m.pc = (uint16(v[0]) + nnn) & addrMask
	case 0xC: // RND Vx, kk
		v[x] = byte(m.rng.IntN(256)) & kk
	case 0xD: // DRW Vx, Vy, n
		m.draw(v, x, y, n)
	case 0xE:
		pressed := m.keyboard&(1<<(v[x]&0xF)) != 0
		switch kk {
		case 0x9E: // SKP Vx
			if pressed {
				m.skip()
			}
		case 0xA1: // SKNP Vx
			if !pressed {
				m.skip()
			}
		default:
			return fault(ErrIllegalOpcode)
		}
	case 0xF:
		if err := m.misc(v, x, kk, addr); err != nil {
			return fault(err)
		}
	}
	return nil
}

func (m *Machine) alu(v []byte, x, y, n uint16) error {
	switch n {
	case 0x0: // LD Vx, Vy
		v[x] = v[y]
	case 0x1: // OR
		v[x] |= v[y]
	case 0x2: // AND
		v[x] &= v[y]
	case 0x3: // XOR
		v[x] ^= v[y]
	case 0x4: // ADD, VF = carry
		sum := uint16(v[x]) + uint16(v[y])
		v[x] = byte(sum)
		v[0xF] = byte(sum >> 8)
	case 0x5: // SUB, VF = NOT borrow
		borrow := v[y] > v[x]
		v[x] -= v[y]
		v[0xF] = notFlag(borrow)
	case 0x6: // SHR
		v[0xF] = v[x] & 0x01
		v[x] >>= 1
	case 0x7: // SUBN, VF = NOT borrow
		borrow := v[x] > v[y]
		v[x] = v[y] - v[x]
		v[0xF] = notFlag(borrow)
	case 0xE: // SHL
		v[0xF] = v[x] >> 7
		v[x] <<= 1
	default:
		return ErrIllegalOpcode
	}
	return nil
}

func (m *Machine) misc(v []byte, x uint16, kk byte, addr uint16) error {
	switch kk {
	case 0x07: // LD Vx, DT
		v[x] = m.dt
	case 0x0A: // LD Vx, K
		if m.keyboard == 0 {
			m.pc = addr
			return nil
		}
		for key := range 16 {
			if m.keyboard&(1<<key) != 0 {
				v[x] = byte(key)
				break
			}
		}
	case 0x15: // LD DT, Vx
		m.dt = v[x]
	case 0x18: // LD ST, Vx
		m.st = v[x]
	case 0x1E: // ADD I, Vx
		m.i += uint16(v[x])
	case 0x29: // LD F, Vx
		m.i = uint16(v[x]) * SpriteHeight
	case 0x33: // LD B, Vx
		m.write(m.i, v[x]/100)
		m.write(m.i+1, v[x]%100/10)
		m.write(m.i+2, v[x]%10)
	case 0x55: // LD [I], Vx
		for r := uint16(0); r <= x; r++ {
			m.write(m.i+r, v[r])
		}
	case 0x65: // LD Vx, [I]
		for r := uint16(0); r <= x; r++ {
			v[r] = m.read(m.i + r)
		}
	default:
		return ErrIllegalOpcode
	}
	return nil
}

// draw XORs an n-row sprite from memory[I] onto the display at (Vx, Vy),
// wrapping at the edges. VF is set when any lit pixel is erased.
func (m *Machine) draw(v []byte, x, y, n uint16) {
	v[0xF] = 0
	ox := int(v[x])
	oy := int(v[y])
	display := m.display()

	for row := range int(n) {
		bits := m.read(m.i + uint16(row))
		for col := range 8 {
			if bits&(0x80>>col) == 0 {
				continue
			}
			px := (ox + col) % DisplayWidth
			py := (oy + row) % DisplayHeight
			pixel := display[(py*DisplayWidth+px)*3:][:3]
			if pixel[0] == 0 {
				copy(pixel, PixelOn[:])
			} else {
				v[0xF] = 1
				copy(pixel, PixelOff[:])
			}
		}
	}
}

func notFlag(b bool) byte {
	if b {
		return 0
	}
	return 1
}
