package ppu

import (
	"testing"

	"gones/internal/memory"
)

type mockCartridge struct {
	chr    [0x2000]uint8
	mirror memory.MirrorMode
}

func (m *mockCartridge) ReadPRG(address uint16) uint8  { return 0 }
func (m *mockCartridge) WritePRG(address uint16, value uint8) {}
func (m *mockCartridge) ReadCHR(address uint16) uint8  { return m.chr[address&0x1FFF] }
func (m *mockCartridge) WriteCHR(address uint16, value uint8) { m.chr[address&0x1FFF] = value }
func (m *mockCartridge) Mirroring() memory.MirrorMode  { return m.mirror }

func newTestPPU() (*PPU, *mockCartridge) {
	p := New()
	cart := &mockCartridge{mirror: memory.MirrorHorizontal}
	p.SetMemory(memory.NewPPUMemory(cart))
	return p, cart
}

func TestPPU_ResetState(t *testing.T) {
	p, _ := newTestPPU()
	p.Reset()

	if p.scanline != -1 || p.cycle != 0 {
		t.Errorf("reset should start at pre-render: scanline=%d cycle=%d", p.scanline, p.cycle)
	}
	if p.ppuStatus&0x80 == 0 {
		t.Error("reset should leave VBL flag set")
	}
}

func TestPPU_PPUCTRLNametableSelectLatchesIntoT(t *testing.T) {
	p, _ := newTestPPU()
	p.WriteRegister(0x2000, 0x03)
	if p.t&0x0C00 != 0x0C00 {
		t.Errorf("PPUCTRL nametable bits should latch into t: got t=%#04x", p.t)
	}
}

func TestPPU_PPUSTATUSReadClearsVBLAndLatch(t *testing.T) {
	p, _ := newTestPPU()
	p.ppuStatus = 0x80
	p.w = true

	status := p.ReadRegister(0x2002)
	if status&0x80 == 0 {
		t.Error("read should return the VBL flag as it was before clearing")
	}
	if p.ppuStatus&0x80 != 0 {
		t.Error("reading PPUSTATUS should clear the VBL flag")
	}
	if p.w {
		t.Error("reading PPUSTATUS should reset the write latch")
	}
}

func TestPPU_PPUSTATUSReadDoesNotClearSprite0Hit(t *testing.T) {
	p, _ := newTestPPU()
	p.ppuStatus = 0xC0 // VBL + sprite 0 hit
	p.sprite0Hit = true

	p.ReadRegister(0x2002)
	if p.ppuStatus&0x40 == 0 {
		t.Error("sprite 0 hit flag must survive a PPUSTATUS read; it clears only at pre-render dot 1")
	}
}

func TestPPU_PPUSCROLLTwoWriteSequence(t *testing.T) {
	p, _ := newTestPPU()
	p.WriteRegister(0x2005, 0x7D) // X: coarse=15, fine=5
	if p.x != 5 {
		t.Errorf("fine X: want 5, got %d", p.x)
	}
	if !p.w {
		t.Fatal("write latch should be set after first PPUSCROLL write")
	}

	p.WriteRegister(0x2005, 0x5E) // Y: coarse=11, fine=6
	if p.w {
		t.Error("write latch should clear after second PPUSCROLL write")
	}
	gotCoarseY := (p.t >> 5) & 0x1F
	if gotCoarseY != 11 {
		t.Errorf("coarse Y: want 11, got %d", gotCoarseY)
	}
}

func TestPPU_PPUADDRTwoWriteSequence(t *testing.T) {
	p, _ := newTestPPU()
	p.WriteRegister(0x2006, 0x21)
	p.WriteRegister(0x2006, 0x08)

	if p.v != 0x2108 {
		t.Errorf("PPUADDR should load v after the second write: got %#04x", p.v)
	}
}

func TestPPU_PPUDATAIncrementsByOneOrThirtyTwo(t *testing.T) {
	p, _ := newTestPPU()
	p.WriteRegister(0x2006, 0x20)
	p.WriteRegister(0x2006, 0x00)
	p.WriteRegister(0x2007, 0x11)
	if p.v != 0x2001 {
		t.Errorf("PPUCTRL increment=1 default: want v=0x2001, got %#04x", p.v)
	}

	p.WriteRegister(0x2000, 0x04) // increment mode = 32
	p.WriteRegister(0x2007, 0x22)
	if p.v != 0x2021 {
		t.Errorf("after increment-by-32 mode: want v=0x2021, got %#04x", p.v)
	}
}

func TestPPU_PPUDATAReadIsBuffered(t *testing.T) {
	p, cart := newTestPPU()
	cart.chr[0x0010] = 0x55
	p.WriteRegister(0x2006, 0x00)
	p.WriteRegister(0x2006, 0x10)

	first := p.ReadRegister(0x2007)
	if first == 0x55 {
		t.Error("first $2007 read of CHR space should return the stale buffer, not the fresh byte")
	}
	second := p.ReadRegister(0x2007)
	if second != 0x55 {
		t.Errorf("second $2007 read should return the buffered byte: got %#02x", second)
	}
}

func TestPPU_VBlankSetsStatusAndFiresNMI(t *testing.T) {
	p, _ := newTestPPU()
	p.Reset()
	p.ppuCtrl = 0x80 // NMI enabled
	nmiFired := false
	p.SetNMICallback(func() { nmiFired = true })

	p.scanline = 241
	p.cycle = 0
	p.Step()

	if p.ppuStatus&0x80 == 0 {
		t.Error("VBL flag should be set at scanline 241, cycle 1")
	}
	if !nmiFired {
		t.Error("NMI callback should fire at VBlank start when PPUCTRL bit 7 is set")
	}
}

func TestPPU_PreRenderClearsVBLSprite0AndOverflow(t *testing.T) {
	p, _ := newTestPPU()
	p.Reset()
	p.ppuStatus = 0xE0 // VBL + sprite0hit + overflow
	p.sprite0Hit = true
	p.spriteOverflow = true

	p.scanline = -1
	p.cycle = 0
	p.Step()

	if p.ppuStatus&0x80 != 0 {
		t.Error("VBL flag should clear at pre-render dot 1")
	}
}

func TestPPU_FrameCompleteCallbackFiresEveryFrame(t *testing.T) {
	p, _ := newTestPPU()
	p.Reset()
	count := 0
	p.SetFrameCompleteCallback(func() { count++ })

	p.scanline = 260
	p.cycle = 340
	p.Step()

	if count != 1 {
		t.Errorf("expected one frame-complete callback, got %d", count)
	}
	if p.scanline != -1 {
		t.Errorf("scanline should wrap to -1 after scanline 260: got %d", p.scanline)
	}
}

func TestPPU_EvaluateSpritesRespectsEightSpriteLimit(t *testing.T) {
	p, _ := newTestPPU()
	p.Reset()
	p.spritesEnabled = true
	p.scanline = 10

	for i := 0; i < 10; i++ {
		base := i * 4
		p.oam[base] = 9 // Y, visible at scanline 10 (Y+1..Y+8)
		p.oam[base+1] = uint8(i)
		p.oam[base+3] = uint8(i * 10)
	}

	p.evaluateSprites()

	if p.spriteCount != 8 {
		t.Errorf("want 8 sprites evaluated (hardware limit), got %d", p.spriteCount)
	}
	if !p.spriteOverflow {
		t.Error("expected sprite overflow flag when more than 8 sprites are on a scanline")
	}
	if p.ppuStatus&0x20 == 0 {
		t.Error("sprite overflow should be reflected in PPUSTATUS bit 5")
	}
}

func TestPPU_Sprite0HitRequiresOpaqueBackgroundAndSprite(t *testing.T) {
	p, cart := newTestPPU()
	p.Reset()
	p.backgroundEnabled = true
	p.spritesEnabled = true
	p.ppuMask = 0x1E // show background/sprites everywhere, leftmost included

	// Nametable tile 0 -> pattern bits all set, producing a non-zero color.
	cart.chr[0] = 0xFF
	cart.chr[8] = 0x00

	p.spriteCount = 1
	p.spriteIndexes[0] = 0

	p.checkSprite0Hit(16, 16, 1)
	if !p.sprite0Hit {
		t.Error("expected sprite 0 hit when both background and sprite pixels are opaque")
	}
}

func TestPPU_NESColorToRGBIsStable(t *testing.T) {
	a := NESColorToRGB(0x01)
	b := NESColorToRGB(0x01)
	if a != b {
		t.Error("color lookup should be deterministic")
	}
	if NESColorToRGB(0x3F) == NESColorToRGB(0x01) && 0x3F != 0x01 {
		t.Error("distinct palette entries should not accidentally collide for common indices")
	}
}

func TestPPU_IncrementYWrapsNametableAtRow29(t *testing.T) {
	p, _ := newTestPPU()
	p.v = 29 << 5 // coarse Y = 29, fine Y = 0
	p.incrementY()

	coarseY := (p.v >> 5) & 0x1F
	if coarseY != 0 {
		t.Errorf("coarse Y should wrap to 0 at row 29, got %d", coarseY)
	}
	if p.v&0x0800 == 0 {
		t.Error("incrementY should toggle the vertical nametable bit when wrapping at row 29")
	}
}

func TestPPU_CopyXAndCopyYRestoreFromT(t *testing.T) {
	p, _ := newTestPPU()
	p.t = 0x7BFF
	p.v = 0

	p.copyX()
	if p.v&0x041F != 0x041F {
		t.Errorf("copyX should restore horizontal bits from t: got v=%#04x", p.v)
	}

	p.copyY()
	if p.v&0x7BE0 != 0x7BE0 {
		t.Errorf("copyY should restore vertical bits from t: got v=%#04x", p.v)
	}
}
