// Package app provides emulator integration for the main application.
package app

import (
	"fmt"
	"time"

	"gones/internal/bus"
)

// Emulator drives a Bus at a fixed NTSC cadence (29,781 CPU cycles per
// frame) and caches the frame buffer and drained audio samples between
// Update calls so the render/audio layers can read them without
// stepping the console themselves.
type Emulator struct {
	bus    *bus.Bus
	config *Config

	cyclesPerFrame uint64
	targetFrameTime time.Duration

	frameBuffer  []uint32
	audioSamples []float32

	actualFrameTime  time.Duration
	emulationTime    time.Duration
	averageFrameTime time.Duration
	cycleCount       uint64
	frameCount       uint64

	isRunning     bool
	lastResetTime time.Time
}

// NewEmulator creates an emulator driving bus at a fixed 60fps cadence.
func NewEmulator(bus *bus.Bus, config *Config) *Emulator {
	e := &Emulator{
		bus:             bus,
		config:          config,
		targetFrameTime: 16666667 * time.Nanosecond,
		cyclesPerFrame:  29781,
		frameBuffer:     make([]uint32, 256*240),
		audioSamples:    make([]float32, 0, 1024),
		lastResetTime:   time.Now(),
	}
	e.Reset()
	return e
}

// Reset clears frame/audio buffers and timing statistics without
// touching the underlying bus.
func (e *Emulator) Reset() {
	e.frameCount = 0
	e.cycleCount = 0
	e.emulationTime = 0
	e.actualFrameTime = 0
	e.averageFrameTime = 0
	e.lastResetTime = time.Now()

	for i := range e.frameBuffer {
		e.frameBuffer[i] = 0
	}
	e.audioSamples = e.audioSamples[:0]
}

// Start marks the emulator as running; Update becomes a no-op until Start is called.
func (e *Emulator) Start() {
	e.isRunning = true
}

// Stop marks the emulator as paused.
func (e *Emulator) Stop() {
	e.isRunning = false
}

// Update runs exactly one frame of emulation and refreshes the cached
// frame buffer and audio samples. Intended to be called once per host
// tick (e.g. once per Ebitengine Update()).
func (e *Emulator) Update() error {
	if !e.isRunning {
		return nil
	}

	start := time.Now()
	if err := e.StepFrame(); err != nil {
		return fmt.Errorf("frame execution error: %w", err)
	}
	e.actualFrameTime = time.Since(start)

	if e.averageFrameTime == 0 {
		e.averageFrameTime = e.actualFrameTime
	} else {
		e.averageFrameTime = time.Duration(
			float64(e.averageFrameTime)*0.95 + float64(e.actualFrameTime)*0.05,
		)
	}
	return nil
}

// StepFrame runs one NTSC frame's worth of CPU cycles and refreshes the
// cached frame buffer and audio samples.
func (e *Emulator) StepFrame() error {
	if e.bus == nil {
		return fmt.Errorf("bus not initialized")
	}

	emulationStart := time.Now()

	target := e.bus.GetCycleCount() + e.cyclesPerFrame
	for e.bus.GetCycleCount() < target {
		e.bus.Step()
	}
	e.frameCount++

	if nesBuffer := e.bus.GetFrameBuffer(); len(nesBuffer) == len(e.frameBuffer) {
		copy(e.frameBuffer, nesBuffer)
	}
	if samples := e.bus.GetAudioSamples(); len(samples) > 0 {
		if cap(e.audioSamples) < len(samples) {
			e.audioSamples = make([]float32, len(samples))
		} else {
			e.audioSamples = e.audioSamples[:len(samples)]
		}
		copy(e.audioSamples, samples)
	}

	e.emulationTime = time.Since(emulationStart)
	e.cycleCount = e.bus.GetCycleCount()
	return nil
}

// StepInstruction executes a single CPU instruction, for single-step debugging.
func (e *Emulator) StepInstruction() error {
	if e.bus == nil {
		return fmt.Errorf("bus not initialized")
	}
	e.bus.Step()
	e.cycleCount = e.bus.GetCycleCount()
	return nil
}

// GetFrameBuffer returns the most recently rendered frame.
func (e *Emulator) GetFrameBuffer() []uint32 {
	return e.frameBuffer
}

// GetAudioSamples returns the audio samples drained during the last frame.
func (e *Emulator) GetAudioSamples() []float32 {
	return e.audioSamples
}

// GetFrameCount returns the number of frames executed since Reset.
func (e *Emulator) GetFrameCount() uint64 {
	return e.frameCount
}

// GetCycleCount returns the current CPU cycle count.
func (e *Emulator) GetCycleCount() uint64 {
	return e.cycleCount
}

// GetEmulationTime returns the time spent emulating the last frame, excluding render/audio handoff.
func (e *Emulator) GetEmulationTime() time.Duration {
	return e.emulationTime
}

// GetActualFrameTime returns the wall-clock time the last Update call took.
func (e *Emulator) GetActualFrameTime() time.Duration {
	return e.actualFrameTime
}

// GetAverageFrameTime returns an exponential moving average of frame time.
func (e *Emulator) GetAverageFrameTime() time.Duration {
	return e.averageFrameTime
}

// GetTargetFrameTime returns the configured target frame time (60fps by default).
func (e *Emulator) GetTargetFrameTime() time.Duration {
	return e.targetFrameTime
}

// GetEmulationSpeed returns the last frame's speed as a percentage of real-time.
func (e *Emulator) GetEmulationSpeed() float64 {
	if e.actualFrameTime == 0 {
		return 0
	}
	return float64(e.targetFrameTime) / float64(e.actualFrameTime) * 100.0
}

// IsRunning reports whether Update currently advances emulation.
func (e *Emulator) IsRunning() bool {
	return e.isRunning
}

// GetUptime returns the time elapsed since the last Reset.
func (e *Emulator) GetUptime() time.Duration {
	return time.Since(e.lastResetTime)
}

// GetCPUState returns the CPU register/flag snapshot for debugging.
func (e *Emulator) GetCPUState() bus.CPUState {
	if e.bus == nil {
		return bus.CPUState{}
	}
	return e.bus.GetCPUState()
}

// GetPPUState returns the PPU scanline/dot snapshot for debugging.
func (e *Emulator) GetPPUState() bus.PPUState {
	if e.bus == nil {
		return bus.PPUState{}
	}
	return e.bus.GetPPUState()
}

// Cleanup releases the emulator's buffers.
func (e *Emulator) Cleanup() error {
	e.Stop()
	e.frameBuffer = nil
	e.audioSamples = nil
	return nil
}
