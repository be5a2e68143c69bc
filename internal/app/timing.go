package app

import "time"

// Timing gathers every fixed delay of a run in one place. They are
// configuration rather than literals so tests can shrink them and keep runs
// deterministic.
type Timing struct {
	// QuestionSeconds is the countdown total armed for each question.
	QuestionSeconds int
	// TickInterval is the wall-clock period between countdown ticks.
	TickInterval time.Duration
	// FeedbackHold is how long the answered state stays visible before the
	// run advances. Not user-skippable.
	FeedbackHold time.Duration
	// TransitionShow and TransitionFade bound the inter-question interstitial.
	TransitionShow time.Duration
	TransitionFade time.Duration
	// InitialPause delays each question's countdown, giving players a moment
	// to read before the clock starts. Zero disables the pause.
	InitialPause time.Duration
	// TickSoundBelow is the remaining-seconds threshold under which the tick
	// sound cue fires.
	TickSoundBelow int
	// WarnBelow and DangerBelow are the presentation thresholds derived from
	// the remaining time.
	WarnBelow   int
	DangerBelow int
}

// DefaultTiming returns the production delays.
func DefaultTiming() Timing {
	return Timing{
		QuestionSeconds: 10,
		TickInterval:    time.Second,
		FeedbackHold:    3 * time.Second,
		TransitionShow:  2 * time.Second,
		TransitionFade:  500 * time.Millisecond,
		InitialPause:    5 * time.Second,
		TickSoundBelow:  8,
		WarnBelow:       5,
		DangerBelow:     3,
	}
}
