package cartridge

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
)

const validINESMagic = "NES\x1A"

// createValidINESHeader creates a valid 16-byte iNES header for testing.
func createValidINESHeader(prgSize, chrSize, mapper, flags6, flags7 uint8) []byte {
	header := make([]byte, 16)
	copy(header[0:4], validINESMagic)
	header[4] = prgSize
	header[5] = chrSize

	if mapper != 0 {
		header[6] = (mapper << 4) | (flags6 & 0x0F)
		header[7] = (mapper & 0xF0) | (flags7 & 0x0F)
	} else {
		header[6] = flags6
		header[7] = flags7
	}
	return header
}

// createMinimalValidROM creates a minimal valid iNES ROM with specified sizes.
func createMinimalValidROM(prgSize, chrSize uint8) []byte {
	header := createValidINESHeader(prgSize, chrSize, 0, 0, 0)

	prgData := make([]byte, int(prgSize)*16384)
	for i := range prgData {
		prgData[i] = uint8(i % 256)
	}

	chrData := make([]byte, int(chrSize)*8192)
	for i := range chrData {
		chrData[i] = uint8((i + 128) % 256)
	}

	rom := append(header, prgData...)
	if chrSize > 0 {
		rom = append(rom, chrData...)
	}
	return rom
}

func TestLoadFromReader_ValidiNESFormat_ShouldSucceed(t *testing.T) {
	tests := []struct {
		name        string
		prgSize     uint8
		chrSize     uint8
		expectedPRG int
		expectedCHR int
	}{
		{"16KB PRG, 8KB CHR", 1, 1, 16384, 8192},
		{"32KB PRG, 8KB CHR", 2, 1, 32768, 8192},
		{"16KB PRG, CHR RAM", 1, 0, 16384, 8192},
		{"32KB PRG, 16KB CHR", 2, 2, 32768, 16384},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reader := bytes.NewReader(createMinimalValidROM(tt.prgSize, tt.chrSize))

			cart, err := LoadFromReader(reader)
			if err != nil {
				t.Fatalf("expected successful load, got error: %v", err)
			}
			if len(cart.prgROM) != tt.expectedPRG {
				t.Errorf("PRG ROM size: want %d, got %d", tt.expectedPRG, len(cart.prgROM))
			}
			if len(cart.chrROM) != tt.expectedCHR {
				t.Errorf("CHR ROM size: want %d, got %d", tt.expectedCHR, len(cart.chrROM))
			}
		})
	}
}

func TestLoadFromReader_InvalidMagicNumber_ShouldFail(t *testing.T) {
	header := make([]byte, 16)
	copy(header[0:4], "ROM\x1A")
	header[4], header[5] = 1, 1
	romData := append(header, make([]byte, 16384+8192)...)

	_, err := LoadFromReader(bytes.NewReader(romData))
	var loadErr *LoadError
	if err == nil {
		t.Fatal("expected error for invalid magic number")
	}
	if !asLoadError(err, &loadErr) {
		t.Fatalf("expected *LoadError, got %T", err)
	}
}

func TestLoadFromReader_UnsupportedMapper_ShouldFail(t *testing.T) {
	header := createValidINESHeader(1, 1, 99, 0, 0)
	romData := append(header, make([]byte, 16384+8192)...)

	_, err := LoadFromReader(bytes.NewReader(romData))
	if err == nil {
		t.Fatal("expected error for unsupported mapper")
	}
}

func TestLoadFromReader_MapperIdentification_ShouldExtractCorrectly(t *testing.T) {
	tests := []struct {
		name           string
		flags6         uint8
		flags7         uint8
		expectedMapper uint8
	}{
		{"Mapper 0 (NROM)", 0x00, 0x00, 0},
		{"Mapper 1 (MMC1)", 0x10, 0x00, 1},
		{"Mapper 2 (UxROM)", 0x20, 0x00, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			header := createValidINESHeader(1, 1, 0, tt.flags6, tt.flags7)
			romData := append(header, make([]byte, 16384+8192)...)

			cart, err := LoadFromReader(bytes.NewReader(romData))
			if err != nil {
				t.Fatalf("expected success, got error: %v", err)
			}
			if cart.MapperID() != tt.expectedMapper {
				t.Errorf("mapper ID: want %d, got %d", tt.expectedMapper, cart.MapperID())
			}
		})
	}
}

func TestLoadFromReader_MirroringModes_ShouldDetectCorrectly(t *testing.T) {
	tests := []struct {
		name           string
		flags6         uint8
		expectedMirror MirrorMode
	}{
		{"Horizontal mirroring", 0x00, MirrorHorizontal},
		{"Vertical mirroring", 0x01, MirrorVertical},
		{"Four-screen mirroring", 0x08, MirrorFourScreen},
		{"Four-screen overrides vertical", 0x09, MirrorFourScreen},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			header := createValidINESHeader(1, 1, 0, tt.flags6, 0)
			romData := append(header, make([]byte, 16384+8192)...)

			cart, err := LoadFromReader(bytes.NewReader(romData))
			if err != nil {
				t.Fatalf("expected success, got error: %v", err)
			}
			if cart.Mirroring() != tt.expectedMirror {
				t.Errorf("mirror mode: want %d, got %d", tt.expectedMirror, cart.Mirroring())
			}
		})
	}
}

func TestLoadFromReader_TrainerHandling_ShouldSkipCorrectly(t *testing.T) {
	header := createValidINESHeader(1, 1, 0, 0x04, 0)
	trainerData := bytes.Repeat([]byte{0xFF}, 512)
	prgData := make([]byte, 16384)
	for i := range prgData {
		prgData[i] = uint8(i % 256)
	}
	chrData := make([]byte, 8192)

	romData := append(header, trainerData...)
	romData = append(romData, prgData...)
	romData = append(romData, chrData...)

	cart, err := LoadFromReader(bytes.NewReader(romData))
	if err != nil {
		t.Fatalf("expected success, got error: %v", err)
	}
	if cart.prgROM[0] != 0 || cart.prgROM[1] != 1 {
		t.Error("PRG ROM doesn't match expected pattern; trainer was not skipped")
	}
}

func TestLoadFromReader_IncompleteHeader_ShouldFail(t *testing.T) {
	_, err := LoadFromReader(bytes.NewReader([]byte("NES\x1A\x01\x01")))
	if err == nil {
		t.Fatal("expected error for incomplete header")
	}
}

func TestLoadFromReader_IncompletePRGData_ShouldFail(t *testing.T) {
	header := createValidINESHeader(1, 1, 0, 0, 0)
	romData := append(header, make([]byte, 8192)...) // half the expected PRG data

	_, err := LoadFromReader(bytes.NewReader(romData))
	if err == nil {
		t.Fatal("expected error for incomplete PRG data")
	}
}

func TestLoadFromReader_ZeroPRGSize_ShouldFail(t *testing.T) {
	header := createValidINESHeader(0, 1, 0, 0, 0)
	romData := append(header, make([]byte, 8192)...)

	_, err := LoadFromReader(bytes.NewReader(romData))
	if err == nil {
		t.Fatal("expected error for zero PRG size")
	}
}

func TestLoadFromFile_NonexistentFile_ShouldFail(t *testing.T) {
	_, err := LoadFromFile("/nonexistent/path/file.nes")
	if err == nil {
		t.Fatal("expected error for nonexistent file")
	}
}

func TestLoadFromFile_ValidFile_ShouldSucceed(t *testing.T) {
	romData := createMinimalValidROM(1, 1)
	tmpDir := t.TempDir()
	filename := filepath.Join(tmpDir, "test.nes")
	if err := os.WriteFile(filename, romData, 0644); err != nil {
		t.Fatalf("failed to create test ROM file: %v", err)
	}

	cart, err := LoadFromFile(filename)
	if err != nil {
		t.Fatalf("expected success loading from file, got error: %v", err)
	}
	if cart == nil {
		t.Fatal("expected cartridge, got nil")
	}
}

func TestCartridge_PRGAccess_ShouldDelegateToMapper(t *testing.T) {
	cart, err := LoadFromReader(bytes.NewReader(createMinimalValidROM(1, 1)))
	if err != nil {
		t.Fatalf("failed to load ROM: %v", err)
	}

	if value := cart.ReadPRG(0x8000); value != 0 {
		t.Errorf("PRG read: want 0, got %d", value)
	}

	cart.WritePRG(0x6000, 0x42)
	if readBack := cart.ReadPRG(0x6000); readBack != 0x42 {
		t.Errorf("PRG RAM write/read: want 0x42, got 0x%02X", readBack)
	}
}

func TestCartridge_CHRRAMAccess_ShouldAllowWriteRead(t *testing.T) {
	cart, err := LoadFromReader(bytes.NewReader(createMinimalValidROM(1, 0)))
	if err != nil {
		t.Fatalf("failed to load ROM: %v", err)
	}

	cart.WriteCHR(0x0000, 0x55)
	if value := cart.ReadCHR(0x0000); value != 0x55 {
		t.Errorf("CHR RAM write/read: want 0x55, got 0x%02X", value)
	}
}

func asLoadError(err error, target **LoadError) bool {
	le, ok := err.(*LoadError)
	if ok {
		*target = le
	}
	return ok
}
