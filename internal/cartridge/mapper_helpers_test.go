package cartridge

// newTestCartridge builds a Cartridge bypassing the iNES reader, for
// mapper unit tests that want direct control over PRG/CHR contents.
func newTestCartridge(prg, chr []uint8, mirror MirrorMode, hasCHRRAM bool) *Cartridge {
	var flags6 uint8
	switch mirror {
	case MirrorVertical:
		flags6 = 0x01
	case MirrorFourScreen:
		flags6 = 0x08
	}
	cart := &Cartridge{
		prgROM:    prg,
		chrROM:    chr,
		hasCHRRAM: hasCHRRAM,
		header:    iNESHeader{Flags6: flags6},
	}
	return cart
}
