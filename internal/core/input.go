package core

// Action is a semantic input, abstracted from physical key presses.
type Action int

const (
	ActionNone      Action = iota
	ActionLeft             // Left arrow, A
	ActionRight            // Right arrow, D
	ActionRotateCW         // X, Up arrow
	ActionRotateCCW        // Z
	ActionSoftDrop         // Down arrow, S
	ActionHardDrop         // Space
	ActionUndo             // U - rewind to the previous drop
	ActionConfirm          // Enter
	ActionBack             // Esc
	ActionRestart          // R
	ActionQuit             // Q, Ctrl+C
	ActionPause            // P
)

var actionNames = [...]string{
	ActionNone:      "None",
	ActionLeft:      "Left",
	ActionRight:     "Right",
	ActionRotateCW:  "RotateCW",
	ActionRotateCCW: "RotateCCW",
	ActionSoftDrop:  "SoftDrop",
	ActionHardDrop:  "HardDrop",
	ActionUndo:      "Undo",
	ActionConfirm:   "Confirm",
	ActionBack:      "Back",
	ActionRestart:   "Restart",
	ActionQuit:      "Quit",
	ActionPause:     "Pause",
}

// String returns a human-readable name for the action.
func (a Action) String() string {
	if a < 0 || int(a) >= len(actionNames) {
		return "Unknown"
	}
	return actionNames[a]
}

// InputFrame holds the actions triggered during one simulation tick.
// Column and Rotation carry pointer-style direct placement when HasColumn or
// HasRotation is set.
type InputFrame struct {
	Actions map[Action]bool

	Column      int
	HasColumn   bool
	Rotation    int
	HasRotation bool
}

// NewInputFrame creates an empty input frame.
func NewInputFrame() InputFrame {
	return InputFrame{
		Actions: make(map[Action]bool),
	}
}

// Set marks an action as triggered for this frame.
func (f *InputFrame) Set(a Action) {
	if f.Actions == nil {
		f.Actions = make(map[Action]bool)
	}
	f.Actions[a] = true
}

// SetColumn requests the falling piece be moved directly to col.
func (f *InputFrame) SetColumn(col int) {
	f.Column = col
	f.HasColumn = true
}

// SetRotation requests the falling piece be turned directly to rotation r.
func (f *InputFrame) SetRotation(r int) {
	f.Rotation = r
	f.HasRotation = true
}

// Has returns true if the given action was triggered this frame.
func (f InputFrame) Has(a Action) bool {
	if f.Actions == nil {
		return false
	}
	return f.Actions[a]
}

// Empty reports whether nothing was triggered.
func (f InputFrame) Empty() bool {
	return len(f.Actions) == 0 && !f.HasColumn && !f.HasRotation
}

// Clear resets all actions for the next frame.
func (f *InputFrame) Clear() {
	for k := range f.Actions {
		delete(f.Actions, k)
	}
	f.HasColumn = false
	f.HasRotation = false
}

// Clone creates a copy of this input frame.
func (f InputFrame) Clone() InputFrame {
	clone := f
	clone.Actions = make(map[Action]bool, len(f.Actions))
	for k, v := range f.Actions {
		clone.Actions[k] = v
	}
	return clone
}
