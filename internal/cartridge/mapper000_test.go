package cartridge

import "testing"

func TestNROM_16KBMirrorsAcrossFullWindow(t *testing.T) {
	prg := make([]uint8, 0x4000)
	for i := range prg {
		prg[i] = uint8(i & 0xFF)
	}
	cart := newTestCartridge(prg, make([]uint8, 0x2000), MirrorHorizontal, false)
	m := newNROM(cart)

	if m.prgBanks != 1 {
		t.Fatalf("want 1 PRG bank, got %d", m.prgBanks)
	}
	if v1, v2 := m.ReadPRG(0x8123), m.ReadPRG(0xC123); v1 != v2 {
		t.Errorf("16KB ROM should mirror: 0x8123=%#02x 0xC123=%#02x", v1, v2)
	}
}

func TestNROM_32KBDoesNotMirror(t *testing.T) {
	prg := make([]uint8, 0x8000)
	for i := range prg {
		prg[i] = uint8((i >> 8) & 0xFF)
	}
	cart := newTestCartridge(prg, make([]uint8, 0x2000), MirrorVertical, false)
	m := newNROM(cart)

	if m.prgBanks != 2 {
		t.Fatalf("want 2 PRG banks, got %d", m.prgBanks)
	}
	if v := m.ReadPRG(0x8000); v != 0x00 {
		t.Errorf("0x8000: want 0x00, got %#02x", v)
	}
	if v := m.ReadPRG(0xC000); v != 0x40 {
		t.Errorf("0xC000: want 0x40, got %#02x", v)
	}
}

func TestNROM_CHRROMIsReadOnly(t *testing.T) {
	chr := make([]uint8, 0x2000)
	chr[0x100] = 0x40
	cart := newTestCartridge(make([]uint8, 0x4000), chr, MirrorHorizontal, false)
	m := newNROM(cart)

	m.WriteCHR(0x100, 0xFF)
	if v := m.ReadCHR(0x100); v != 0x40 {
		t.Errorf("CHR ROM write was not ignored: got %#02x", v)
	}
}

func TestNROM_CHRRAMIsWritable(t *testing.T) {
	cart := newTestCartridge(make([]uint8, 0x4000), make([]uint8, 0x2000), MirrorHorizontal, true)
	m := newNROM(cart)

	m.WriteCHR(0x100, 0xAB)
	if v := m.ReadCHR(0x100); v != 0xAB {
		t.Errorf("CHR RAM write/read: want 0xAB, got %#02x", v)
	}
}

func TestNROM_PRGRAMRoundTrips(t *testing.T) {
	cart := newTestCartridge(make([]uint8, 0x4000), make([]uint8, 0x2000), MirrorHorizontal, false)
	m := newNROM(cart)

	m.WritePRG(0x6000, 0xDE)
	m.WritePRG(0x7FFF, 0xAD)
	if v := m.ReadPRG(0x6000); v != 0xDE {
		t.Errorf("PRG RAM at 0x6000: want 0xDE, got %#02x", v)
	}
	if v := m.ReadPRG(0x7FFF); v != 0xAD {
		t.Errorf("PRG RAM at 0x7FFF: want 0xAD, got %#02x", v)
	}

	m.WritePRG(0x8000, 0x55) // ROM area: write ignored
	if v := m.ReadPRG(0x6000); v != 0xDE {
		t.Errorf("PRG RAM changed by a ROM-area write: got %#02x", v)
	}
}

func TestLoadFromReader_UsesNROMForMapper0(t *testing.T) {
	cart := newTestCartridge(make([]uint8, 0x4000), make([]uint8, 0x2000), MirrorHorizontal, false)
	mapper, err := newMapper(0, cart)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := mapper.(*nrom); !ok {
		t.Errorf("want *nrom, got %T", mapper)
	}
}
