// Package memory implements the CPU and PPU address-decoding logic that
// glues the NES's RAM, registers, and cartridge together.
package memory

import "gones/internal/cartridge"

// Memory represents the CPU's view of the NES memory map.
type Memory struct {
	ram [0x800]uint8

	ppuRegisters PPUInterface
	apuRegisters APUInterface
	inputSystem  InputInterface
	cartridge    CartridgeInterface

	dmaCallback func(uint8)

	// openBusValue is the last byte that crossed the bus; unmapped reads
	// return it, approximating open-bus behavior.
	openBusValue uint8
}

// PPUMemory represents the PPU's own $0000-$3FFF address space: pattern
// tables (via the cartridge), nametables, and palette RAM.
type PPUMemory struct {
	vram       [0x1000]uint8 // 4KB, enough for four 1KB nametables
	paletteRAM [32]uint8
	cartridge  CartridgeInterface
}

// MirrorMode is the cartridge's nametable mirroring mode.
type MirrorMode = cartridge.MirrorMode

const (
	MirrorHorizontal        = cartridge.MirrorHorizontal
	MirrorVertical          = cartridge.MirrorVertical
	MirrorSingleScreenLower = cartridge.MirrorSingleScreenLower
	MirrorSingleScreenUpper = cartridge.MirrorSingleScreenUpper
	MirrorFourScreen        = cartridge.MirrorFourScreen
)

// PPUInterface is the CPU-visible register surface of the PPU.
type PPUInterface interface {
	ReadRegister(address uint16) uint8
	WriteRegister(address uint16, value uint8)
}

// APUInterface is the CPU-visible register surface of the APU stub.
type APUInterface interface {
	WriteRegister(address uint16, value uint8)
	ReadStatus() uint8
}

// InputInterface is the CPU-visible register surface of the gamepad.
type InputInterface interface {
	Read(address uint16) uint8
	Write(address uint16, value uint8)
}

// CartridgeInterface is the subset of Cartridge that both CPU and PPU
// memory need: bank-switched PRG/CHR access plus the mapper's current
// mirroring mode (mutable at runtime under MMC1).
type CartridgeInterface interface {
	ReadPRG(address uint16) uint8
	WritePRG(address uint16, value uint8)
	ReadCHR(address uint16) uint8
	WriteCHR(address uint16, value uint8)
	Mirroring() MirrorMode
}

// New creates a CPU memory map. cart may be nil until a cartridge is
// loaded; accesses to cartridge space return open bus until it is set.
func New(ppu PPUInterface, apu APUInterface, cart CartridgeInterface) *Memory {
	return &Memory{
		ppuRegisters: ppu,
		apuRegisters: apu,
		cartridge:    cart,
	}
}

// SetCartridge installs (or replaces) the cartridge backing PRG space.
func (m *Memory) SetCartridge(cart CartridgeInterface) { m.cartridge = cart }

// SetInputSystem sets the input system for controller access.
func (m *Memory) SetInputSystem(input InputInterface) { m.inputSystem = input }

// SetDMACallback sets the callback invoked when $4014 is written; the
// callback receives the DMA source page.
func (m *Memory) SetDMACallback(callback func(uint8)) { m.dmaCallback = callback }

// Read reads a byte from the CPU's memory map (spec.md §4.2).
func (m *Memory) Read(address uint16) uint8 {
	var value uint8

	switch {
	case address < 0x2000:
		value = m.ram[address&0x07FF]

	case address < 0x4000:
		value = m.ppuRegisters.ReadRegister(0x2000 + (address & 0x0007))

	case address < 0x4020:
		switch {
		case address == 0x4015:
			value = m.apuRegisters.ReadStatus()
		case address == 0x4016 || address == 0x4017:
			if m.inputSystem != nil {
				value = m.inputSystem.Read(address)
			}
		default:
			value = m.openBusValue
		}

	case address >= 0x6000 && address < 0x8000:
		if m.cartridge != nil {
			value = m.cartridge.ReadPRG(address)
		} else {
			value = m.openBusValue
		}

	case address < 0x8000:
		value = m.openBusValue // $4020-$5FFF: cartridge expansion, unmapped

	default:
		if m.cartridge != nil {
			value = m.cartridge.ReadPRG(address)
		} else {
			value = m.openBusValue
		}
	}

	m.openBusValue = value
	return value
}

// Write writes a byte to the CPU's memory map (spec.md §4.2).
func (m *Memory) Write(address uint16, value uint8) {
	switch {
	case address < 0x2000:
		m.ram[address&0x07FF] = value

	case address < 0x4000:
		m.ppuRegisters.WriteRegister(0x2000+(address&0x0007), value)

	case address < 0x4020:
		switch {
		case address == 0x4014:
			if m.dmaCallback != nil {
				m.dmaCallback(value)
			} else {
				m.performOAMDMA(value)
			}
		case address == 0x4016:
			if m.inputSystem != nil {
				m.inputSystem.Write(address, value)
			}
		case address >= 0x4000 && address <= 0x4013, address == 0x4015, address == 0x4017:
			m.apuRegisters.WriteRegister(address, value)
		}
		// $4018-$401F: test-mode registers, ignored.

	case address >= 0x6000 && address < 0x8000:
		if m.cartridge != nil {
			m.cartridge.WritePRG(address, value)
		}

	case address < 0x8000:
		// $4020-$5FFF: cartridge expansion, unmapped; writes ignored.

	default:
		if m.cartridge != nil {
			m.cartridge.WritePRG(address, value)
		}
	}
}

// performOAMDMA copies 256 bytes starting at page<<8 into OAM via the PPU's
// OAMDATA register. Used only as a fallback when no DMA callback (which
// models the CPU stall) has been installed.
func (m *Memory) performOAMDMA(page uint8) {
	base := uint16(page) << 8
	for i := uint16(0); i < 256; i++ {
		m.ppuRegisters.WriteRegister(0x2004, m.Read(base+i))
	}
}

// NewPPUMemory creates a PPU memory instance backed by cart.
func NewPPUMemory(cart CartridgeInterface) *PPUMemory {
	mem := &PPUMemory{cartridge: cart}
	for i := 0; i < 32; i += 4 {
		mem.paletteRAM[i] = 0x0F // universal background defaults to black
	}
	return mem
}

// SetCartridge installs (or replaces) the cartridge backing CHR space.
func (pm *PPUMemory) SetCartridge(cart CartridgeInterface) { pm.cartridge = cart }

// Read reads from the PPU's $0000-$3FFF address space (spec.md §4.3).
func (pm *PPUMemory) Read(address uint16) uint8 {
	address &= 0x3FFF

	switch {
	case address < 0x2000:
		return pm.cartridge.ReadCHR(address)
	case address < 0x3000:
		return pm.readNametable(address)
	case address < 0x3F00:
		return pm.readNametable(address - 0x1000)
	default:
		return pm.readPalette(address)
	}
}

// Write writes to the PPU's $0000-$3FFF address space (spec.md §4.3).
func (pm *PPUMemory) Write(address uint16, value uint8) {
	address &= 0x3FFF

	switch {
	case address < 0x2000:
		pm.cartridge.WriteCHR(address, value)
	case address < 0x3000:
		pm.writeNametable(address, value)
	case address < 0x3F00:
		pm.writeNametable(address-0x1000, value)
	default:
		pm.writePalette(address, value)
	}
}

func (pm *PPUMemory) readNametable(address uint16) uint8 {
	return pm.vram[pm.nametableIndex(address)]
}

func (pm *PPUMemory) writeNametable(address uint16, value uint8) {
	pm.vram[pm.nametableIndex(address)] = value
}

// nametableIndex maps a $2000-$2FFF address to a physical VRAM offset
// according to the cartridge's current mirroring mode.
func (pm *PPUMemory) nametableIndex(address uint16) uint16 {
	address &= 0x0FFF
	nametable := (address >> 10) & 3
	offset := address & 0x3FF

	switch pm.cartridge.Mirroring() {
	case MirrorHorizontal:
		if nametable >= 2 {
			return 0x400 + offset
		}
		return offset

	case MirrorVertical:
		if nametable == 1 || nametable == 3 {
			return 0x400 + offset
		}
		return offset

	case MirrorSingleScreenLower:
		return offset

	case MirrorSingleScreenUpper:
		return 0x400 + offset

	case MirrorFourScreen:
		return nametable*0x400 + offset

	default:
		return offset
	}
}

// paletteIndex folds a $3F00-$3FFF address into the 32-byte palette RAM,
// aliasing the sprite-palette backdrop entries onto the background ones.
func paletteIndex(address uint16) uint16 {
	index := (address - 0x3F00) & 0x1F
	if index == 0x10 || index == 0x14 || index == 0x18 || index == 0x1C {
		index &= 0x0F
	}
	return index
}

func (pm *PPUMemory) readPalette(address uint16) uint8 {
	return pm.paletteRAM[paletteIndex(address)]
}

func (pm *PPUMemory) writePalette(address uint16, value uint8) {
	pm.paletteRAM[paletteIndex(address)] = value
}
