package cartridge

import "testing"

func TestUxROM_SwitchableLowBankFixedHighBank(t *testing.T) {
	prg := make([]uint8, 0x4000*4) // 4 banks
	for bank := 0; bank < 4; bank++ {
		for i := 0; i < 0x4000; i++ {
			prg[bank*0x4000+i] = uint8(bank)
		}
	}
	cart := newTestCartridge(prg, make([]uint8, 0x2000), MirrorHorizontal, true)
	m := newUxROM(cart)

	if v := m.ReadPRG(0xC000); v != 3 {
		t.Errorf("fixed high bank: want last bank (3), got %d", v)
	}

	m.WritePRG(0x8000, 2)
	if v := m.ReadPRG(0x8000); v != 2 {
		t.Errorf("switchable low bank: want 2, got %d", v)
	}
	if v := m.ReadPRG(0xC000); v != 3 {
		t.Errorf("fixed high bank should not change: got %d", v)
	}
}

func TestUxROM_CHRIsAlwaysRAM(t *testing.T) {
	cart := newTestCartridge(make([]uint8, 0x4000), make([]uint8, 0x2000), MirrorHorizontal, true)
	m := newUxROM(cart)

	m.WriteCHR(0x0000, 0x77)
	if v := m.ReadCHR(0x0000); v != 0x77 {
		t.Errorf("CHR RAM write/read: want 0x77, got %#02x", v)
	}
}
