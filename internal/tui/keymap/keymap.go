// Package keymap defines the declarative key-binding tables for the TUI.
// Bindings are data, not switch statements: the update loop asks the keymap
// which command a key maps to in the current mode, and the help overlay
// renders the same tables back to the user.
package keymap

import tea "github.com/charmbracelet/bubbletea"

// Mode is an input mode. Each mode has its own binding table; keys that
// miss the table fall through to the mode's default handling (the path
// prompt forwards unbound keys to its text input, normal mode ignores
// them).
type Mode int

const (
	// ModeNormal is table navigation and lock operations.
	ModeNormal Mode = iota
	// ModeInput is the path prompt shown while composing a lock request.
	ModeInput
	// ModeConfirm is the yes/no guard in front of a force unlock.
	ModeConfirm
)

// String returns the mode name for logs and tests.
func (m Mode) String() string {
	switch m {
	case ModeNormal:
		return "normal"
	case ModeInput:
		return "input"
	case ModeConfirm:
		return "confirm"
	default:
		return "unknown"
	}
}

// Command identifies an action the update loop knows how to execute.
type Command string

// Normal mode commands.
const (
	CmdQuit       Command = "quit"
	CmdHelp       Command = "toggle_help"
	CmdCursorUp   Command = "cursor_up"
	CmdCursorDown Command = "cursor_down"

	CmdRefresh     Command = "refresh"
	CmdLock        Command = "lock"
	CmdUnlock      Command = "unlock"
	CmdForceUnlock Command = "force_unlock"

	CmdCycleSort         Command = "cycle_sort"
	CmdToggleSortDir     Command = "toggle_sort_direction"
	CmdToggleAutoRefresh Command = "toggle_auto_refresh"
	CmdToggleGUIDs       Command = "toggle_guids"
)

// Input mode commands. Unbound keys are forwarded to the text input.
const (
	CmdAcceptInput Command = "accept_input"
	CmdCancelInput Command = "cancel_input"
)

// Confirm mode commands.
const (
	CmdConfirmYes Command = "confirm_yes"
	CmdConfirmNo  Command = "confirm_no"
)

// KeyBinding maps one key to one command.
type KeyBinding struct {
	// KeyType matches special keys directly (enter, escape, arrows).
	// Rune-based keys use tea.KeyRunes with Rune set.
	KeyType tea.KeyType

	// Rune is the character for rune keys, ignored for special keys.
	Rune rune

	// Command runs when the binding matches.
	Command Command

	// Description is the one-line help text.
	Description string

	// Category groups bindings in the help overlay.
	Category string
}

// Matches reports whether a key message triggers this binding.
func (kb KeyBinding) Matches(msg tea.KeyMsg) bool {
	if kb.KeyType != tea.KeyRunes {
		return msg.Type == kb.KeyType
	}
	if msg.Type != tea.KeyRunes || len(msg.Runes) == 0 {
		return false
	}
	return msg.Runes[0] == kb.Rune
}

// Label returns the key name shown in help.
func (kb KeyBinding) Label() string {
	if kb.KeyType != tea.KeyRunes {
		return kb.KeyType.String()
	}
	if kb.Rune == ' ' {
		return "space"
	}
	return string(kb.Rune)
}

// ModeBindings is the ordered binding table for one mode. Order matters
// twice: lookup takes the first match, and help renders in table order.
type ModeBindings struct {
	Mode     Mode
	Bindings []KeyBinding
}

// Lookup finds the command bound to a key in this mode.
func (mb *ModeBindings) Lookup(msg tea.KeyMsg) (Command, bool) {
	for _, b := range mb.Bindings {
		if b.Matches(msg) {
			return b.Command, true
		}
	}
	return "", false
}

// Keymap holds the binding tables for every mode.
type Keymap struct {
	Name  string
	Modes map[Mode]*ModeBindings
}

// Lookup finds the command bound to a key in the given mode.
func (km *Keymap) Lookup(msg tea.KeyMsg, mode Mode) (Command, bool) {
	mb, ok := km.Modes[mode]
	if !ok {
		return "", false
	}
	return mb.Lookup(msg)
}

// Bindings returns the binding table for a mode, nil when the mode is
// unknown.
func (km *Keymap) Bindings(mode Mode) []KeyBinding {
	mb, ok := km.Modes[mode]
	if !ok {
		return nil
	}
	return mb.Bindings
}

// Categories returns the distinct categories of a mode in first-seen
// order, for stable help layout.
func (km *Keymap) Categories(mode Mode) []string {
	seen := make(map[string]bool)
	var out []string
	for _, b := range km.Bindings(mode) {
		if b.Category == "" || seen[b.Category] {
			continue
		}
		seen[b.Category] = true
		out = append(out, b.Category)
	}
	return out
}

// ByCategory returns a mode's bindings grouped by category.
func (km *Keymap) ByCategory(mode Mode) map[string][]KeyBinding {
	out := make(map[string][]KeyBinding)
	for _, b := range km.Bindings(mode) {
		cat := b.Category
		if cat == "" {
			cat = "Other"
		}
		out[cat] = append(out[cat], b)
	}
	return out
}

// Default returns the built-in keymap.
func Default() *Keymap {
	return &Keymap{
		Name: "default",
		Modes: map[Mode]*ModeBindings{
			ModeNormal: {
				Mode: ModeNormal,
				Bindings: []KeyBinding{
					// Locks
					{KeyType: tea.KeyRunes, Rune: 'r', Command: CmdRefresh, Description: "Refresh lock list", Category: "Locks"},
					{KeyType: tea.KeyRunes, Rune: 'l', Command: CmdLock, Description: "Lock a path", Category: "Locks"},
					{KeyType: tea.KeyRunes, Rune: 'u', Command: CmdUnlock, Description: "Unlock selected", Category: "Locks"},
					{KeyType: tea.KeyRunes, Rune: 'F', Command: CmdForceUnlock, Description: "Force-unlock selected", Category: "Locks"},

					// View
					{KeyType: tea.KeyRunes, Rune: 'j', Command: CmdCursorDown, Description: "Move down", Category: "View"},
					{KeyType: tea.KeyDown, Command: CmdCursorDown, Description: "Move down", Category: "View"},
					{KeyType: tea.KeyRunes, Rune: 'k', Command: CmdCursorUp, Description: "Move up", Category: "View"},
					{KeyType: tea.KeyUp, Command: CmdCursorUp, Description: "Move up", Category: "View"},
					{KeyType: tea.KeyRunes, Rune: 's', Command: CmdCycleSort, Description: "Cycle sort column", Category: "View"},
					{KeyType: tea.KeyRunes, Rune: 'd', Command: CmdToggleSortDir, Description: "Reverse sort direction", Category: "View"},
					{KeyType: tea.KeyRunes, Rune: 'g', Command: CmdToggleGUIDs, Description: "Toggle GUID column", Category: "View"},
					{KeyType: tea.KeyRunes, Rune: '?', Command: CmdHelp, Description: "Toggle help", Category: "View"},

					// Session
					{KeyType: tea.KeyRunes, Rune: 'a', Command: CmdToggleAutoRefresh, Description: "Toggle auto-refresh", Category: "Session"},
					{KeyType: tea.KeyRunes, Rune: 'q', Command: CmdQuit, Description: "Quit", Category: "Session"},
					{KeyType: tea.KeyCtrlC, Command: CmdQuit, Description: "Quit", Category: "Session"},
				},
			},
			ModeInput: {
				Mode: ModeInput,
				Bindings: []KeyBinding{
					{KeyType: tea.KeyEnter, Command: CmdAcceptInput, Description: "Lock the entered path", Category: "Prompt"},
					{KeyType: tea.KeyEsc, Command: CmdCancelInput, Description: "Cancel", Category: "Prompt"},
					{KeyType: tea.KeyCtrlC, Command: CmdCancelInput, Description: "Cancel", Category: "Prompt"},
				},
			},
			ModeConfirm: {
				Mode: ModeConfirm,
				Bindings: []KeyBinding{
					{KeyType: tea.KeyRunes, Rune: 'y', Command: CmdConfirmYes, Description: "Confirm force unlock", Category: "Confirm"},
					{KeyType: tea.KeyRunes, Rune: 'n', Command: CmdConfirmNo, Description: "Cancel", Category: "Confirm"},
					{KeyType: tea.KeyEsc, Command: CmdConfirmNo, Description: "Cancel", Category: "Confirm"},
					{KeyType: tea.KeyCtrlC, Command: CmdConfirmNo, Description: "Cancel", Category: "Confirm"},
				},
			},
		},
	}
}
