package app

import "quiz-player/internal/domain"

// EventType enumerates what a presentation layer can observe about a run.
type EventType string

const (
	EventLoading    EventType = "loading"
	EventQuestion   EventType = "question"   // a new question is open
	EventTick       EventType = "tick"       // countdown moved
	EventLocked     EventType = "locked"     // answer immutable, feedback visible
	EventTransition EventType = "transition" // next-question interstitial
	EventComplete   EventType = "complete"   // result reached
	EventError      EventType = "error"      // load failed; restart to recover
	EventSound      EventType = "sound"      // fire-and-forget audio cue
)

// Sound cue names. Playback is an external concern; consumers that cannot
// play audio simply ignore these events.
const (
	CueTick       = "tick"
	CueSuccess    = "success"
	CueWrong      = "wrong"
	CueTimeUp     = "timeup"
	CueTransition = "transition"
)

// QuestionView is what a renderer may see while a question is open. The
// correct answer is deliberately absent until the lock.
type QuestionView struct {
	Index      int               `json:"index"`
	Total      int               `json:"total"`
	Text       string            `json:"text"`
	Options    []string          `json:"options"`
	Category   string            `json:"category"`
	Difficulty domain.Difficulty `json:"difficulty"`
	Image      string            `json:"image,omitempty"`
}

// LockedView reveals the outcome once the question is immutable.
type LockedView struct {
	Index         int    `json:"index"`
	Correct       bool   `json:"correct"`
	TimedOut      bool   `json:"timedOut"`
	Selected      string `json:"selected"`
	CorrectAnswer string `json:"correctAnswer"`
	Explanation   string `json:"explanation,omitempty"`
	Score         int    `json:"score"`
}

// Event is one observable state change of a running session.
type Event struct {
	Type      EventType       `json:"type"`
	Question  *QuestionView   `json:"question,omitempty"`
	Remaining int             `json:"remaining,omitempty"`
	Warning   bool            `json:"warning,omitempty"`
	Danger    bool            `json:"danger,omitempty"`
	Locked    *LockedView     `json:"locked,omitempty"`
	NextIndex int             `json:"nextIndex,omitempty"` // transition target, 0-based
	Result    *domain.Summary `json:"result,omitempty"`
	Cue       string          `json:"cue,omitempty"`
	Message   string          `json:"message,omitempty"` // error text
}

// Listener receives session events on the runner's loop goroutine and must
// not block.
type Listener interface {
	OnEvent(Event)
}

// ListenerFunc adapts a function to the Listener interface.
type ListenerFunc func(Event)

// OnEvent calls f.
func (f ListenerFunc) OnEvent(e Event) { f(e) }
