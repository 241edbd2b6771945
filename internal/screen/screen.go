package screen

import (
	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/testdrill/internal/ui/layout"
)

// Screen defines the interface for all application screens.
type Screen interface {
	// Init returns an initial command when the screen is first created.
	Init() tea.Cmd

	// Update handles messages and returns updated screen + command.
	Update(msg tea.Msg) (Screen, tea.Cmd)

	// View renders the screen content (excluding header/footer).
	View(width, height int) string

	// Title returns the screen name for the header.
	Title() string
}

// KeyHintProvider is implemented by screens with their own footer hints.
type KeyHintProvider interface {
	KeyHints() []layout.KeyHint
}

// StatusProvider is implemented by screens that show a status on the right
// of the header, such as a countdown.
type StatusProvider interface {
	Status() string
}

// EscCapturer is implemented by screens that handle Esc themselves, for
// example to confirm before leaving a running test.
type EscCapturer interface {
	CapturesEsc() bool
}

// ResumedMsg is delivered to a screen when it becomes active again after
// the screen above it was popped.
type ResumedMsg struct{}
