package cartridge

import "testing"

func writeMMC1(m *mmc1, addr uint16, value uint8) {
	m.WritePRG(addr, value)
}

// writeMMC1Value shifts a full byte into the MMC1 shift register one bit
// at a time, low bit first, as real software does.
func writeMMC1Value(m *mmc1, addr uint16, value uint8) {
	for i := 0; i < 5; i++ {
		writeMMC1(m, addr, (value>>uint(i))&1)
	}
}

func newMMC1TestCartridge(prgBanks int) (*Cartridge, *mmc1) {
	cart := newTestCartridge(make([]uint8, 0x4000*prgBanks), make([]uint8, 0x2000), MirrorHorizontal, true)
	return cart, newMMC1(cart)
}

func TestMMC1_ShiftRegisterCommitsOnFifthWrite(t *testing.T) {
	_, m := newMMC1TestCartridge(4)

	writeMMC1(m, 0xE000, 1) // bit0=1
	writeMMC1(m, 0xE000, 0)
	writeMMC1(m, 0xE000, 0)
	writeMMC1(m, 0xE000, 0)
	if m.prg != 0 {
		t.Fatalf("register must not update before the fifth write, got prg=%d", m.prg)
	}
	writeMMC1(m, 0xE000, 0) // fifth write commits

	if m.prg != 1 {
		t.Errorf("PRG bank register: want 1, got %d", m.prg)
	}
}

func TestMMC1_ResetWriteClearsShifterWithoutMutatingRegisters(t *testing.T) {
	_, m := newMMC1TestCartridge(4)
	m.chr0 = 0x07
	m.prg = 0x03

	writeMMC1(m, 0x8000, 0x80) // bit 7 set: reset

	if m.shiftCount != 0 || m.shift != 0b10000 {
		t.Errorf("shift register not reset: shift=%05b count=%d", m.shift, m.shiftCount)
	}
	if m.chr0 != 0x07 || m.prg != 0x03 {
		t.Error("reset write mutated a destination register")
	}
	if m.prgMode() != 3 {
		t.Errorf("reset write must force PRG mode 3, got %d", m.prgMode())
	}
}

func TestMMC1_PRGBankSelection(t *testing.T) {
	// Scenario from spec.md §8.5: write $01 (low bits) to $E000 selects
	// PRG bank 1; a read at $8000 returns byte 0 of PRG bank 1.
	_, m := newMMC1TestCartridge(4)
	for bank := 0; bank < 4; bank++ {
		m.cart.prgROM[bank*0x4000] = uint8(0x10 + bank)
	}

	writeMMC1Value(m, 0xE000, 0x01)

	if v := m.ReadPRG(0x8000); v != 0x11 {
		t.Errorf("want PRG bank 1 byte 0 (0x11), got %#02x", v)
	}
}

func TestMMC1_MirroringFollowsControlRegister(t *testing.T) {
	_, m := newMMC1TestCartridge(2)

	tests := []struct {
		bits uint8
		want MirrorMode
	}{
		{0, MirrorSingleScreenLower},
		{1, MirrorSingleScreenUpper},
		{2, MirrorVertical},
		{3, MirrorHorizontal},
	}
	for _, tt := range tests {
		writeMMC1Value(m, 0x8000, tt.bits)
		if got := m.Mirroring(); got != tt.want {
			t.Errorf("control bits %02b: want mirror %d, got %d", tt.bits, tt.want, got)
		}
	}
}

func TestMMC1_CHRRAMBanking4KMode(t *testing.T) {
	_, m := newMMC1TestCartridge(2)

	// Select 4KB CHR mode (bit 4 of control) while keeping PRG mode 3.
	writeMMC1Value(m, 0x8000, 0x1C)
	if m.chrMode() != 1 {
		t.Fatalf("expected 4KB CHR mode, got chrMode=%d", m.chrMode())
	}

	writeMMC1Value(m, 0xA000, 1) // chr0 -> bank 1
	m.WriteCHR(0x0000, 0xAB)
	if v := m.ReadCHR(0x0000); v != 0xAB {
		t.Errorf("CHR RAM bank 0 write/read: want 0xAB, got %#02x", v)
	}
}
