package graphics

import (
	"fmt"
	"os"
)

// HeadlessBackend is the Backend used for scripted/CI runs: it opens no
// window and has no input, but still dumps a handful of sample frames to
// disk as PPM images so a run's output can be sanity-checked visually.
type HeadlessBackend struct {
	initialized bool
	config      Config
}

// HeadlessWindow is the Window implementation paired with HeadlessBackend.
type HeadlessWindow struct {
	title      string
	width      int
	height     int
	running    bool
	frameCount int
}

// NewHeadlessBackend creates an uninitialized headless backend.
func NewHeadlessBackend() Backend {
	return &HeadlessBackend{}
}

func (b *HeadlessBackend) Initialize(config Config) error {
	if b.initialized {
		return fmt.Errorf("headless backend already initialized")
	}
	b.config = config
	b.initialized = true
	return nil
}

func (b *HeadlessBackend) CreateWindow(title string, width, height int) (Window, error) {
	if !b.initialized {
		return nil, fmt.Errorf("backend not initialized")
	}
	return &HeadlessWindow{title: title, width: width, height: height, running: true}, nil
}

func (b *HeadlessBackend) Cleanup() error {
	b.initialized = false
	return nil
}

func (b *HeadlessBackend) IsHeadless() bool {
	return true
}

func (b *HeadlessBackend) GetName() string {
	return "Headless"
}

func (w *HeadlessWindow) SetTitle(title string) {
	w.title = title
}

func (w *HeadlessWindow) GetSize() (width, height int) {
	return w.width, w.height
}

func (w *HeadlessWindow) ShouldClose() bool {
	return !w.running
}

func (w *HeadlessWindow) SwapBuffers() {}

// PollEvents always returns nil: the headless backend has no input source.
func (w *HeadlessWindow) PollEvents() []InputEvent {
	return nil
}

// sampleFrames are the frame numbers dumped to disk as a visual sanity
// check, matching the frames cmd/gones's own headless runner inspects.
var sampleFrames = map[int]bool{31: true, 61: true, 120: true}

// RenderFrame dumps select frames to a PPM file; all others are a no-op.
func (w *HeadlessWindow) RenderFrame(frameBuffer [256 * 240]uint32) error {
	w.frameCount++
	if !sampleFrames[w.frameCount] {
		return nil
	}
	return w.saveFrameAsPPM(frameBuffer, fmt.Sprintf("frame_%03d.ppm", w.frameCount))
}

func (w *HeadlessWindow) saveFrameAsPPM(frameBuffer [256 * 240]uint32, filename string) error {
	file, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("failed to create file %s: %w", filename, err)
	}
	defer file.Close()

	fmt.Fprintf(file, "P3\n256 240\n255\n")
	for y := 0; y < 240; y++ {
		for x := 0; x < 256; x++ {
			pixel := frameBuffer[y*256+x]
			fmt.Fprintf(file, "%d %d %d ", (pixel>>16)&0xFF, (pixel>>8)&0xFF, pixel&0xFF)
		}
		fmt.Fprintf(file, "\n")
	}

	return nil
}

func (w *HeadlessWindow) Cleanup() error {
	w.running = false
	return nil
}
