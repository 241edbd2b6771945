package runner

import (
	"time"

	"github.com/abhisek/testdrill/internal/assessment"
)

// loadedMsg carries the test and the answers already given when the
// screen opens.
type loadedMsg struct {
	Test   *assessment.Test
	Result *assessment.Result
	Err    error
}

// timerTickMsg is sent every second to update the countdown.
type timerTickMsg time.Time

// submittedMsg carries the engine's verdict on an answer.
type submittedMsg struct {
	Submission *assessment.Submission
	Err        error
}

// finishedMsg is sent once the session is terminal and its result loaded.
type finishedMsg struct {
	Result *assessment.Result
	Err    error
}
