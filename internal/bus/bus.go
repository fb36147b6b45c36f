// Package bus wires the CPU, PPU, APU, memory map, and controller input
// together into a single steppable console and drives their relative
// timing (3 PPU dots and 1 APU tick per CPU cycle).
package bus

import (
	"fmt"

	"gones/internal/apu"
	"gones/internal/cpu"
	"gones/internal/input"
	"gones/internal/memory"
	"gones/internal/ppu"
)

// ntscPPUCyclesPerFrame is 341 dots * 262 scanlines.
const ntscPPUCyclesPerFrame = 89342

// Bus is the console: it owns every component and is the only thing a
// host needs to step to advance emulation by one CPU instruction.
type Bus struct {
	CPU    *cpu.CPU
	PPU    *ppu.PPU
	APU    *apu.APU
	Memory *memory.Memory
	Input  *input.InputState

	totalCycles uint64
	cpuCycles   uint64
	ppuCycles   uint64
	frameCount  uint64

	dmaSuspendCycles uint64
	dmaInProgress    bool
	nmiPending       bool

	// execution trace, captured only while loggingEnabled is set
	executionLog   []BusExecutionEvent
	loggingEnabled bool

	// memoryWatchpoints maps an address to the value last observed at
	// it; CheckMemoryWatchpoints reports deltas when watchpointLogging
	// is on. Populated by AddMemoryWatchpoint, not preseeded for any
	// particular ROM.
	memoryWatchpoints map[uint16]uint8
	watchpointLogging bool
}

// New builds a console with no cartridge loaded; LoadCartridge must be
// called before Step produces meaningful output.
func New() *Bus {
	b := &Bus{
		PPU:               ppu.New(),
		APU:               apu.New(),
		Input:             input.NewInputState(),
		memoryWatchpoints: make(map[uint16]uint8),
	}

	b.Memory = memory.New(b.PPU, b.APU, nil)
	b.Memory.SetInputSystem(b.Input)
	b.CPU = cpu.New(b.Memory)

	b.PPU.SetNMICallback(b.triggerNMI)
	b.PPU.SetFrameCompleteCallback(b.handleFrameComplete)
	b.Memory.SetDMACallback(b.TriggerOAMDMA)

	b.Reset()
	return b
}

// Reset returns every component to its power-on state and clears bus
// bookkeeping (cycle counters, DMA state, logs, watchpoints).
func (b *Bus) Reset() {
	b.CPU.Reset()
	b.PPU.Reset()
	b.APU.Reset()
	b.Input.Reset()

	b.totalCycles = 0
	b.cpuCycles = 0
	b.ppuCycles = 0
	b.frameCount = 0
	b.dmaSuspendCycles = 0
	b.dmaInProgress = false
	b.nmiPending = false

	b.PPU.SetFrameCount(0)

	b.executionLog = b.executionLog[:0]
	b.loggingEnabled = false

	b.memoryWatchpoints = make(map[uint16]uint8)
	b.watchpointLogging = false
}

// triggerNMI is the PPU's callback for entering VBlank with NMI enabled.
// The CPU doesn't see it until the start of the next Step, matching the
// one-instruction NMI latency real hardware exhibits.
func (b *Bus) triggerNMI() {
	b.nmiPending = true
}

// handleFrameComplete is the PPU's callback for finishing a scanline
// sweep; it mirrors the PPU's own frame counter onto the bus so callers
// reading GetFrameCount see a consistent value regardless of which
// component they ask.
func (b *Bus) handleFrameComplete() {
	b.frameCount = b.PPU.GetFrameCount()
}

// Step executes exactly one CPU instruction (or one DMA-suspended
// cycle), then advances the PPU 3 dots and the APU 1 tick per CPU cycle
// consumed, keeping the three clocks locked together.
func (b *Bus) Step() {
	prePC := b.CPU.PC
	var preOpcode uint8
	if b.Memory != nil {
		preOpcode = b.Memory.Read(prePC)
	}
	preFrameCount := b.frameCount

	var cpuCycles uint64
	if b.dmaSuspendCycles > 0 {
		cpuCycles = 1
		b.dmaSuspendCycles--
		if b.dmaSuspendCycles == 0 {
			b.dmaInProgress = false
		}
	} else {
		if b.nmiPending {
			b.CPU.TriggerNMI()
			b.nmiPending = false
		}
		cpuCycles = b.CPU.Step()
	}

	for i := uint64(0); i < cpuCycles*3; i++ {
		b.PPU.Step()
		b.ppuCycles++
	}
	for i := uint64(0); i < cpuCycles; i++ {
		b.APU.Tick()
	}

	b.cpuCycles += cpuCycles
	b.totalCycles += cpuCycles

	if b.watchpointLogging && b.frameCount%300 == 0 {
		b.CheckMemoryWatchpoints()
	}

	if b.loggingEnabled {
		b.executionLog = append(b.executionLog, BusExecutionEvent{
			StepNumber:    len(b.executionLog) + 1,
			CPUCycles:     b.cpuCycles,
			PPUCycles:     b.cpuCycles * 3,
			FrameCount:    b.frameCount,
			DMAActive:     b.dmaInProgress,
			NMIProcessed:  b.frameCount > preFrameCount,
			PCValue:       prePC,
			InstructionOp: preOpcode,
		})
	}
}

// TriggerOAMDMA performs a $4014 OAM DMA transfer and suspends the CPU
// for the 513 (or 514, on an odd cycle) cycles the transfer costs.
func (b *Bus) TriggerOAMDMA(sourcePage uint8) {
	if b.dmaInProgress {
		return
	}

	dmaCycles := uint64(513)
	if b.cpuCycles%2 == 1 {
		dmaCycles = 514
	}
	b.dmaInProgress = true
	b.dmaSuspendCycles = dmaCycles

	base := uint16(sourcePage) << 8
	for i := 0; i < 256; i++ {
		b.PPU.WriteOAM(uint8(i), b.Memory.Read(base+uint16(i)))
	}
}

// LoadCartridge rebuilds the memory map and CPU around cart and resets
// the console so execution starts at the cartridge's reset vector.
func (b *Bus) LoadCartridge(cart memory.CartridgeInterface) {
	b.Memory = memory.New(b.PPU, b.APU, cart)
	b.Memory.SetInputSystem(b.Input)
	b.CPU = cpu.New(b.Memory)

	b.PPU.SetMemory(memory.NewPPUMemory(cart))

	b.PPU.SetNMICallback(b.triggerNMI)
	b.Memory.SetDMACallback(b.TriggerOAMDMA)

	b.CPU.Reset()
}

// Run steps the console until frames additional frames have completed.
func (b *Bus) Run(frames int) {
	target := b.frameCount + uint64(frames)
	for b.frameCount < target {
		b.Step()
	}
}

// RunCycles steps the console until cycles additional CPU cycles have
// elapsed.
func (b *Bus) RunCycles(cycles uint64) {
	target := b.cpuCycles + cycles
	for b.cpuCycles < target {
		b.Step()
	}
}

// GetFrameRate returns the nominal NTSC frame rate.
func (b *Bus) GetFrameRate() float64 {
	return 1789773.0 / (1789773.0 / 60.098803)
}

// GetFrameBuffer returns the PPU's current 256x240 ARGB framebuffer.
func (b *Bus) GetFrameBuffer() []uint32 {
	fb := b.PPU.GetFrameBuffer()
	return fb[:]
}

// GetAudioSamples drains and returns every sample the APU has queued
// since the last call.
func (b *Bus) GetAudioSamples() []float32 {
	return b.APU.DrainSamples()
}

// SetAudioSampleRate forwards the host's target sample rate to the APU.
func (b *Bus) SetAudioSampleRate(rate int) {
	b.APU.SetSampleRate(rate)
}

// GetCycleCount returns the total CPU cycles executed since Reset.
func (b *Bus) GetCycleCount() uint64 {
	return b.cpuCycles
}

// GetFrameCount returns the number of frames the PPU has completed.
func (b *Bus) GetFrameCount() uint64 {
	return b.frameCount
}

// IsDMAInProgress reports whether an OAM DMA transfer is suspending the CPU.
func (b *Bus) IsDMAInProgress() bool {
	return b.dmaInProgress
}

func (b *Bus) isRenderingEnabled() bool {
	mask := b.PPU.ReadRegister(0x2001)
	return mask&0x18 != 0
}

// SetControllerButton sets a single button's pressed state on controller
// 1 (accepting both 0- and 1-based indices) or controller 2.
func (b *Bus) SetControllerButton(controller int, button input.Button, pressed bool) {
	switch controller {
	case 0, 1:
		b.Input.Controller1.SetButton(button, pressed)
	case 2:
		b.Input.Controller2.SetButton(button, pressed)
	}
}

// SetControllerButtons replaces all eight button states at once for the
// given controller.
func (b *Bus) SetControllerButtons(controller int, buttons [8]bool) {
	switch controller {
	case 0, 1:
		b.Input.SetButtons1(buttons)
	case 2:
		b.Input.SetButtons2(buttons)
	}
}

// EnableInputDebug toggles verbose controller logging.
func (b *Bus) EnableInputDebug(enable bool) {
	b.Input.EnableDebug(enable)
}

// GetInputState returns the shared controller state for direct polling.
func (b *Bus) GetInputState() *input.InputState {
	return b.Input
}

// Frame steps the console for one NTSC frame's worth of CPU cycles
// (89,342 PPU dots / 3).
func (b *Bus) Frame() {
	target := b.cpuCycles + 29781
	for b.cpuCycles < target {
		b.Step()
	}
}

// GetExecutionLog returns the recorded per-step trace; empty unless
// EnableExecutionLogging has been called.
func (b *Bus) GetExecutionLog() []BusExecutionEvent {
	return b.executionLog
}

// EnableExecutionLogging starts recording a BusExecutionEvent per Step.
func (b *Bus) EnableExecutionLogging() {
	b.loggingEnabled = true
}

// DisableExecutionLogging stops recording Step events.
func (b *Bus) DisableExecutionLogging() {
	b.loggingEnabled = false
}

// ClearExecutionLog discards any recorded Step events.
func (b *Bus) ClearExecutionLog() {
	b.executionLog = b.executionLog[:0]
}

// BusExecutionEvent is a single recorded Step, used by integration tests
// to assert on cycle counts and NMI timing without re-deriving them.
type BusExecutionEvent struct {
	StepNumber    int
	CPUCycles     uint64
	PPUCycles     uint64
	FrameCount    uint64
	DMAActive     bool
	NMIProcessed  bool
	PCValue       uint16
	InstructionOp uint8
}

// GetCPUState snapshots the CPU's registers and flags.
func (b *Bus) GetCPUState() CPUState {
	return CPUState{
		PC:     b.CPU.PC,
		A:      b.CPU.A,
		X:      b.CPU.X,
		Y:      b.CPU.Y,
		SP:     b.CPU.SP,
		Cycles: b.cpuCycles,
		Flags: CPUFlags{
			N: b.CPU.N,
			V: b.CPU.V,
			B: b.CPU.B,
			D: b.CPU.D,
			I: b.CPU.I,
			Z: b.CPU.Z,
			C: b.CPU.C,
		},
	}
}

// CPUState is a point-in-time snapshot of the CPU used by tests and the
// host's debug overlay.
type CPUState struct {
	PC      uint16
	A, X, Y uint8
	SP      uint8
	Cycles  uint64
	Flags   CPUFlags
}

// CPUFlags mirrors the 6502 status register's individual flags.
type CPUFlags struct {
	N, V, B, D, I, Z, C bool
}

// GetPPUState snapshots the PPU's current scanline/dot position and
// rendering flags.
func (b *Bus) GetPPUState() PPUState {
	scanline := int((b.ppuCycles % ntscPPUCyclesPerFrame) / 341)
	cycle := int((b.ppuCycles % ntscPPUCyclesPerFrame) % 341)

	return PPUState{
		Scanline:    scanline,
		Cycle:       cycle,
		FrameCount:  b.frameCount,
		VBlankFlag:  b.PPU.ReadRegister(0x2002)&0x80 != 0,
		RenderingOn: b.isRenderingEnabled(),
		NMIEnabled:  true,
	}
}

// PPUState is a point-in-time snapshot of the PPU used by tests and the
// host's debug overlay.
type PPUState struct {
	Scanline    int
	Cycle       int
	FrameCount  uint64
	VBlankFlag  bool
	RenderingOn bool
	NMIEnabled  bool
}

// AddMemoryWatchpoint starts tracking address for changes; the initial
// value is read immediately so the first CheckMemoryWatchpoints call
// only reports genuine writes, not the watch's own registration.
func (b *Bus) AddMemoryWatchpoint(address uint16) {
	if b.Memory != nil {
		b.memoryWatchpoints[address] = b.Memory.Read(address)
	}
}

// EnableWatchpointLogging turns watchpoint change reporting on or off.
func (b *Bus) EnableWatchpointLogging(enabled bool) {
	b.watchpointLogging = enabled
}

// CheckMemoryWatchpoints re-reads every registered watchpoint and prints
// a line for each one whose value changed since the last check.
func (b *Bus) CheckMemoryWatchpoints() {
	if !b.watchpointLogging || b.Memory == nil {
		return
	}
	for address, previous := range b.memoryWatchpoints {
		current := b.Memory.Read(address)
		if current != previous {
			fmt.Printf("[MEMORY_WATCH] frame %d: $%04X changed from $%02X to $%02X\n",
				b.frameCount, address, previous, current)
			b.memoryWatchpoints[address] = current
		}
	}
}
