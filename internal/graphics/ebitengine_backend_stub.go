//go:build headless
// +build headless

package graphics

import "errors"

var errEbitengineUnavailable = errors.New("ebitengine backend not available in headless build")

// EbitengineBackend is a stand-in for the real Ebitengine backend in builds
// tagged "headless", where the ebiten dependency (and its cgo/GL
// requirements) is compiled out entirely.
type EbitengineBackend struct{}

// EbitengineWindow is the stub Window paired with the stub backend above.
type EbitengineWindow struct{}

// NewEbitengineBackend returns a stub backend that errors on any real use.
func NewEbitengineBackend() Backend {
	return &EbitengineBackend{}
}

func (b *EbitengineBackend) Initialize(config Config) error { return errEbitengineUnavailable }

func (b *EbitengineBackend) CreateWindow(title string, width, height int) (Window, error) {
	return nil, errEbitengineUnavailable
}

func (b *EbitengineBackend) Cleanup() error { return nil }

func (b *EbitengineBackend) IsHeadless() bool { return true }

func (b *EbitengineBackend) GetName() string { return "Ebitengine-Stub" }

func (w *EbitengineWindow) SetTitle(title string)        {}
func (w *EbitengineWindow) GetSize() (width, height int) { return 0, 0 }
func (w *EbitengineWindow) ShouldClose() bool            { return true }
func (w *EbitengineWindow) SwapBuffers()                 {}
func (w *EbitengineWindow) PollEvents() []InputEvent     { return nil }
func (w *EbitengineWindow) RenderFrame(frameBuffer [256 * 240]uint32) error {
	return errEbitengineUnavailable
}
func (w *EbitengineWindow) Cleanup() error { return nil }
func (w *EbitengineWindow) Run() error     { return errEbitengineUnavailable }
func (w *EbitengineWindow) SetEmulatorUpdateFunc(updateFunc func() error) {}
