package memory

import "testing"

type mockPPU struct {
	registers  [8]uint8
	writeCalls []uint16
}

func (m *mockPPU) ReadRegister(address uint16) uint8 { return m.registers[address&7] }
func (m *mockPPU) WriteRegister(address uint16, value uint8) {
	m.writeCalls = append(m.writeCalls, address)
	m.registers[address&7] = value
}

type mockAPU struct {
	registers [0x18]uint8
}

func (m *mockAPU) WriteRegister(address uint16, value uint8) {
	if address >= 0x4000 && address <= 0x4017 {
		m.registers[address-0x4000] = value
	}
}
func (m *mockAPU) ReadStatus() uint8 { return 0 }

type mockInput struct {
	reads  []uint16
	writes []uint8
}

func (m *mockInput) Read(address uint16) uint8 {
	m.reads = append(m.reads, address)
	return 0
}
func (m *mockInput) Write(address uint16, value uint8) { m.writes = append(m.writes, value) }

type mockCartridge struct {
	prgRAM  [0x2000]uint8
	prgROM  [0x8000]uint8
	chr     [0x2000]uint8
	mirror  MirrorMode
	chrLog  []uint16
}

func (c *mockCartridge) ReadPRG(address uint16) uint8 {
	if address < 0x8000 {
		return c.prgRAM[address-0x6000]
	}
	return c.prgROM[address-0x8000]
}
func (c *mockCartridge) WritePRG(address uint16, value uint8) {
	if address < 0x8000 {
		c.prgRAM[address-0x6000] = value
	}
}
func (c *mockCartridge) ReadCHR(address uint16) uint8 {
	c.chrLog = append(c.chrLog, address)
	return c.chr[address&0x1FFF]
}
func (c *mockCartridge) WriteCHR(address uint16, value uint8) { c.chr[address&0x1FFF] = value }
func (c *mockCartridge) Mirroring() MirrorMode                { return c.mirror }

func TestMemory_RAMMirroring(t *testing.T) {
	mem := New(&mockPPU{}, &mockAPU{}, &mockCartridge{})
	mem.Write(0x0000, 0x42)
	if v := mem.Read(0x0800); v != 0x42 {
		t.Errorf("RAM mirror at 0x0800: want 0x42, got %#02x", v)
	}
	if v := mem.Read(0x1800); v != 0x42 {
		t.Errorf("RAM mirror at 0x1800: want 0x42, got %#02x", v)
	}
}

func TestMemory_PPURegisterMirroring(t *testing.T) {
	ppu := &mockPPU{}
	mem := New(ppu, &mockAPU{}, &mockCartridge{})
	mem.Write(0x2000, 0x80)
	if v := mem.Read(0x2008); v != 0x80 {
		t.Errorf("PPU register mirror at 0x2008: want 0x80, got %#02x", v)
	}
}

func TestMemory_OAMDMADefaultsToDirectCopy(t *testing.T) {
	ppu := &mockPPU{}
	mem := New(ppu, &mockAPU{}, &mockCartridge{})
	mem.Write(0x0200, 0x11)
	mem.Write(0x4014, 0x02) // page 2 -> $0200-$02FF

	if len(ppu.writeCalls) == 0 {
		t.Fatal("expected OAM DMA to write OAMDATA")
	}
	for _, addr := range ppu.writeCalls {
		if addr != 0x2004 {
			t.Errorf("OAM DMA wrote to %#04x, want 0x2004", addr)
		}
	}
}

func TestMemory_OAMDMAUsesCallbackWhenSet(t *testing.T) {
	mem := New(&mockPPU{}, &mockAPU{}, &mockCartridge{})
	var gotPage uint8
	called := false
	mem.SetDMACallback(func(page uint8) {
		called = true
		gotPage = page
	})
	mem.Write(0x4014, 0x07)
	if !called || gotPage != 0x07 {
		t.Errorf("DMA callback not invoked correctly: called=%v page=%#02x", called, gotPage)
	}
}

func TestMemory_ControllerRouting(t *testing.T) {
	input := &mockInput{}
	mem := New(&mockPPU{}, &mockAPU{}, &mockCartridge{})
	mem.SetInputSystem(input)

	mem.Write(0x4016, 1)
	mem.Read(0x4016)
	mem.Read(0x4017)

	if len(input.writes) != 1 || input.writes[0] != 1 {
		t.Errorf("strobe write not routed: %v", input.writes)
	}
	if len(input.reads) != 2 || input.reads[0] != 0x4016 || input.reads[1] != 0x4017 {
		t.Errorf("controller reads not routed: %v", input.reads)
	}
}

func TestMemory_PRGRAMAndROM(t *testing.T) {
	cart := &mockCartridge{}
	cart.prgROM[0] = 0x99
	mem := New(&mockPPU{}, &mockAPU{}, cart)

	mem.Write(0x6000, 0x55)
	if v := mem.Read(0x6000); v != 0x55 {
		t.Errorf("PRG RAM: want 0x55, got %#02x", v)
	}
	if v := mem.Read(0x8000); v != 0x99 {
		t.Errorf("PRG ROM: want 0x99, got %#02x", v)
	}
}

func TestMemory_OpenBusWithoutCartridge(t *testing.T) {
	mem := New(&mockPPU{}, &mockAPU{}, nil)
	mem.Read(0x0000) // openBusValue starts at 0
	if v := mem.Read(0x4020); v != 0 {
		t.Errorf("unmapped read without prior bus activity: want 0, got %#02x", v)
	}
}

func TestPPUMemory_NametableMirroringHorizontal(t *testing.T) {
	cart := &mockCartridge{mirror: MirrorHorizontal}
	pm := NewPPUMemory(cart)

	pm.Write(0x2000, 0xAB)
	if v := pm.Read(0x2400); v != 0xAB {
		t.Errorf("horizontal mirroring: nametable 1 should mirror 0, got %#02x", v)
	}
	if v := pm.Read(0x2800); v == 0xAB {
		t.Errorf("horizontal mirroring: nametable 2 should not mirror 0")
	}
}

func TestPPUMemory_NametableMirroringVertical(t *testing.T) {
	cart := &mockCartridge{mirror: MirrorVertical}
	pm := NewPPUMemory(cart)

	pm.Write(0x2000, 0xCD)
	if v := pm.Read(0x2800); v != 0xCD {
		t.Errorf("vertical mirroring: nametable 2 should mirror 0, got %#02x", v)
	}
	if v := pm.Read(0x2400); v == 0xCD {
		t.Errorf("vertical mirroring: nametable 1 should not mirror 0")
	}
}

func TestPPUMemory_MirroringFollowsCartridgeDynamically(t *testing.T) {
	cart := &mockCartridge{mirror: MirrorVertical}
	pm := NewPPUMemory(cart)

	pm.Write(0x2000, 0x11)
	if v := pm.Read(0x2800); v != 0x11 {
		t.Fatalf("expected vertical mirroring initially")
	}

	cart.mirror = MirrorSingleScreenUpper
	if v := pm.Read(0x2000); v != 0x00 {
		t.Errorf("single-screen-upper should not read nametable 0's data at $2000: got %#02x", v)
	}
}

func TestPPUMemory_NametableMirrorRegion(t *testing.T) {
	cart := &mockCartridge{mirror: MirrorHorizontal}
	pm := NewPPUMemory(cart)

	pm.Write(0x2000, 0x42)
	if v := pm.Read(0x3000); v != 0x42 {
		t.Errorf("$3000-$3EFF should mirror $2000-$2EFF: got %#02x", v)
	}
}

func TestPPUMemory_PaletteRAMAndMirroring(t *testing.T) {
	pm := NewPPUMemory(&mockCartridge{})

	pm.Write(0x3F00, 0x20)
	if v := pm.Read(0x3F10); v != 0x20 {
		t.Errorf("sprite backdrop 0x3F10 should alias 0x3F00: got %#02x", v)
	}

	pm.Write(0x3F04, 0x21)
	if v := pm.Read(0x3F24); v != 0x21 {
		t.Errorf("palette mirror 0x3F24 should alias 0x3F04: got %#02x", v)
	}
}

func TestPPUMemory_CHRDelegatesToCartridge(t *testing.T) {
	cart := &mockCartridge{}
	pm := NewPPUMemory(cart)

	pm.Write(0x0010, 0x7F)
	if v := pm.Read(0x0010); v != 0x7F {
		t.Errorf("CHR read/write through cartridge: want 0x7F, got %#02x", v)
	}
	if len(cart.chrLog) == 0 {
		t.Error("expected CHR read to be delegated to cartridge")
	}
}
