package render

import (
	"fmt"
	"strings"
	"sync/atomic"
)

// Mode selects how the X, Y and Z oscillators are combined into a
// position before rotation.
type Mode int32

const (
	// Mode1 uses the three axes as they are.
	Mode1 Mode = iota
	// Mode2 flattens Z and uses it as an amplitude for X and Y.
	Mode2
	// Mode3 modulates X and Y by the sine of their summed phases.
	Mode3
	// Mode4 modulates X by a sine running slightly faster than itself.
	Mode4
	// Mode5 modulates X and Y by the sine of the X phase.
	Mode5
	// Mode6 gently modulates X and Y by the Y phase and shrinks Z.
	Mode6

	numModes
)

func (m Mode) String() string {
	if m < 0 || m >= numModes {
		return fmt.Sprintf("Mode(%d)", int32(m))
	}
	return fmt.Sprintf("MODE%d", int32(m)+1)
}

// ParseMode returns the Mode named name, MODE1 through MODE6.
func ParseMode(name string) (Mode, error) {
	for m := Mode1; m < numModes; m++ {
		if strings.EqualFold(m.String(), name) {
			return m, nil
		}
	}
	return 0, fmt.Errorf("render: unknown mode %q", name)
}

// ModeControl holds the active Mode.
type ModeControl struct {
	mode atomic.Int32
}

// NewModeControl returns a ModeControl set to m.
func NewModeControl(m Mode) *ModeControl {
	c := &ModeControl{}
	c.Set(m)
	return c
}

// Mode returns the active mode.
func (c *ModeControl) Mode() Mode { return Mode(c.mode.Load()) }

// Set activates m.
func (c *ModeControl) Set(m Mode) { c.mode.Store(int32(m)) }

// Update activates the mode named by the first argument.
func (c *ModeControl) Update(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("render: missing mode")
	}
	m, err := ParseMode(args[0])
	if err != nil {
		return err
	}
	c.Set(m)
	return nil
}
