// Package input implements the NES's two controller ports and their
// $4016/$4017 shift-register protocol.
package input

import "log"

// Button identifies one of the eight standard NES controller buttons,
// encoded as the bit it occupies in Controller's internal state byte.
type Button uint8

const (
	ButtonA Button = 1 << iota
	ButtonB
	ButtonSelect
	ButtonStart
	ButtonUp
	ButtonDown
	ButtonLeft
	ButtonRight
)

// Short aliases for the button constants, used at the call sites that
// translate host key/gamepad events into NES buttons.
const (
	A      = ButtonA
	B      = ButtonB
	Select = ButtonSelect
	Start  = ButtonStart
	Up     = ButtonUp
	Down   = ButtonDown
	Left   = ButtonLeft
	Right  = ButtonRight
)

// Controller is one NES controller: a live button-state byte plus the
// strobe-driven shift register games poll one bit at a time through
// $4016/$4017.
type Controller struct {
	buttons uint8 // live state, written by SetButton/SetButtons

	strobe         bool
	buttonSnapshot uint8 // buttons latched when strobe went high
	shiftRegister  uint8 // buttonSnapshot, shifted right on each Read
	bitPosition    uint8 // 0-7 cover the 8 buttons; 8+ reads return 0

	readCount, writeCount uint64
	debugEnabled          bool
}

// New creates a Controller with no buttons pressed.
func New() *Controller {
	return &Controller{}
}

// SetButton sets or clears a single button.
func (c *Controller) SetButton(button Button, pressed bool) {
	if pressed {
		c.buttons |= uint8(button)
	} else {
		c.buttons &^= uint8(button)
	}
	if c.debugEnabled {
		log.Printf("[BUTTON_DEBUG] button=%d pressed=%t buttons=0x%02X", uint8(button), pressed, c.buttons)
	}
}

// SetButtons replaces all eight button states at once, in NES order:
// A, B, Select, Start, Up, Down, Left, Right.
func (c *Controller) SetButtons(buttons [8]bool) {
	var state uint8
	order := [8]Button{ButtonA, ButtonB, ButtonSelect, ButtonStart, ButtonUp, ButtonDown, ButtonLeft, ButtonRight}
	for i, pressed := range buttons {
		if pressed {
			state |= uint8(order[i])
		}
	}
	c.buttons = state
	if c.debugEnabled {
		log.Printf("[BUTTON_DEBUG] buttons=%v state=0x%02X", buttons, c.buttons)
	}
}

// IsPressed reports whether button is currently held.
func (c *Controller) IsPressed(button Button) bool {
	return c.buttons&uint8(button) != 0
}

// Write handles a CPU write to $4016. Bit 0 is the strobe line: while
// high the shift register continuously reloads from the live button
// state; the falling edge latches whatever was pressed at that instant
// for the upcoming serial read.
func (c *Controller) Write(value uint8) {
	c.writeCount++
	wasStrobe := c.strobe
	c.strobe = value&1 != 0

	if c.strobe || wasStrobe {
		c.buttonSnapshot = c.buttons
		c.shiftRegister = c.buttonSnapshot
		c.bitPosition = 0
	}
}

// Read handles a CPU read from $4016/$4017: pops one bit off the shift
// register per call. While strobe is held high the register keeps
// reloading, so every read returns button A's current state.
func (c *Controller) Read() uint8 {
	c.readCount++

	if c.strobe {
		c.bitPosition = 0
		return c.buttonSnapshot & 1
	}

	if c.bitPosition >= 8 {
		c.bitPosition++
		return 0
	}

	result := c.shiftRegister & 1
	c.shiftRegister >>= 1
	c.bitPosition++
	return result
}

// Reset clears all controller state, as if freshly powered on.
func (c *Controller) Reset() {
	*c = Controller{debugEnabled: c.debugEnabled}
}

// EnableDebug toggles verbose per-button logging.
func (c *Controller) EnableDebug(enable bool) {
	c.debugEnabled = enable
}

// GetBitPosition reports how many bits have been shifted out since the
// last strobe edge, for tests asserting on read-sequence position.
func (c *Controller) GetBitPosition() uint8 {
	return c.bitPosition
}

// InputState owns both controller ports and dispatches $4016/$4017
// reads and writes to them.
type InputState struct {
	Controller1 *Controller
	Controller2 *Controller
}

// NewInputState creates an InputState with two fresh controllers.
func NewInputState() *InputState {
	return &InputState{Controller1: New(), Controller2: New()}
}

// Reset resets both controllers.
func (is *InputState) Reset() {
	is.Controller1.Reset()
	is.Controller2.Reset()
}

// EnableDebug toggles verbose logging on both controllers.
func (is *InputState) EnableDebug(enable bool) {
	is.Controller1.EnableDebug(enable)
	is.Controller2.EnableDebug(enable)
}

// SetButtons1 replaces all of controller 1's button states.
func (is *InputState) SetButtons1(buttons [8]bool) {
	is.Controller1.SetButtons(buttons)
}

// SetButtons2 replaces all of controller 2's button states.
func (is *InputState) SetButtons2(buttons [8]bool) {
	is.Controller2.SetButtons(buttons)
}

// Read dispatches a CPU read to the controller port at address
// ($4016 or $4017); any other address reads as open bus (0).
func (is *InputState) Read(address uint16) uint8 {
	switch address {
	case 0x4016:
		return is.Controller1.Read()
	case 0x4017:
		// Bit 6 set is real NES open-bus behavior on this port.
		return is.Controller2.Read() | 0x40
	default:
		return 0
	}
}

// Write dispatches a CPU write to $4016; both controllers share the
// same strobe line, so both receive every write.
func (is *InputState) Write(address uint16, value uint8) {
	if address == 0x4016 {
		is.Controller1.Write(value)
		is.Controller2.Write(value)
	}
}
