package app

import (
	"fmt"

	"quiz-player/internal/domain"
)

// Phase is the lifecycle position of a quiz run.
type Phase int

const (
	PhaseConfiguring Phase = iota // waiting for a configuration
	PhaseLoading                  // questions being fetched
	PhasePresenting               // current question open, countdown running
	PhaseLocked                   // answer immutable, feedback visible
	PhaseAdvancing                // between questions
	PhaseComplete                 // result reached
	PhaseError                    // load failed, explicit restart required
)

func (p Phase) String() string {
	switch p {
	case PhaseConfiguring:
		return "configuring"
	case PhaseLoading:
		return "loading"
	case PhasePresenting:
		return "presenting"
	case PhaseLocked:
		return "locked"
	case PhaseAdvancing:
		return "advancing"
	case PhaseComplete:
		return "complete"
	case PhaseError:
		return "error"
	default:
		return "unknown"
	}
}

// ScorePolicy selects how a correct answer is rewarded.
type ScorePolicy string

const (
	// ScoreByDifficulty awards the question's difficulty weight.
	ScoreByDifficulty ScorePolicy = "points"
	// ScoreSimple awards one point per correct answer.
	ScoreSimple ScorePolicy = "simple"
)

// Machine owns all state of one quiz run. It is purely synchronous: every
// method is a transition and callers serialize access (the Runner does this
// on its loop goroutine; tests call directly).
//
// Methods acting on the current question take the generation they were
// scheduled for. The generation bumps every time a new question is presented
// and on restart, so a tick or answer armed for question i can never touch
// question i+1.
type Machine struct {
	timing Timing
	policy ScorePolicy

	phase      Phase
	generation uint64
	cfg        domain.Config
	questions  []domain.Question
	index      int
	score      int
	correct    int
	answered   bool
	selected   string
	sessionID  string
	countdown  Countdown
	err        error
}

// NewMachine builds a machine in the Configuring phase.
func NewMachine(timing Timing, policy ScorePolicy) *Machine {
	if policy == "" {
		policy = ScoreByDifficulty
	}
	return &Machine{timing: timing, policy: policy}
}

// Phase returns the current lifecycle position.
func (m *Machine) Phase() Phase { return m.phase }

// Generation identifies the current question instance. Callbacks must carry
// it back; mismatches are discarded.
func (m *Machine) Generation() uint64 { return m.generation }

// Config returns the configuration of the current run.
func (m *Machine) Config() domain.Config { return m.cfg }

// Index is the 0-based position of the current question.
func (m *Machine) Index() int { return m.index }

// Total is the number of questions in this run.
func (m *Machine) Total() int { return len(m.questions) }

// Score is the accumulated weighted score.
func (m *Machine) Score() int { return m.score }

// Correct is the count of correctly answered questions.
func (m *Machine) Correct() int { return m.correct }

// SessionID is the server session identifier, empty for local runs.
func (m *Machine) SessionID() string { return m.sessionID }

// Err returns the load error when the machine is in PhaseError.
func (m *Machine) Err() error { return m.err }

// Remaining is the countdown value for the current question.
func (m *Machine) Remaining() int { return m.countdown.Remaining() }

// Question returns the current question while one is open or locked.
func (m *Machine) Question() (domain.Question, bool) {
	if m.phase != PhasePresenting && m.phase != PhaseLocked && m.phase != PhaseAdvancing {
		return domain.Question{}, false
	}
	if m.index >= len(m.questions) {
		return domain.Question{}, false
	}
	return m.questions[m.index], true
}

// Selected returns the chosen answer and whether the question is locked. The
// answer stays empty when the lock came from timer expiry.
func (m *Machine) Selected() (string, bool) { return m.selected, m.answered }

// Summary builds the final result. Only meaningful once complete.
func (m *Machine) Summary() domain.Summary {
	return domain.Summarize(m.score, m.correct, len(m.questions))
}

// StartLoad begins a run: Configuring (or a finished/failed run) -> Loading.
// The configuration is immutable from here on.
func (m *Machine) StartLoad(cfg domain.Config) error {
	switch m.phase {
	case PhaseConfiguring, PhaseComplete, PhaseError:
	default:
		return fmt.Errorf("cannot start load from phase %s", m.phase)
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	m.reset()
	m.cfg = cfg
	m.phase = PhaseLoading
	m.generation++
	return nil
}

// LoadSucceeded installs the fetched questions: Loading -> Presenting(0).
// An empty list is a defect in the repository contract and moves the machine
// to PhaseError instead.
func (m *Machine) LoadSucceeded(questions []domain.Question, sessionID string) error {
	if m.phase != PhaseLoading {
		return fmt.Errorf("unexpected load result in phase %s", m.phase)
	}
	if len(questions) == 0 {
		m.fail(domain.ErrEmptyResultSet)
		return domain.ErrEmptyResultSet
	}
	m.questions = questions
	m.sessionID = sessionID
	m.present()
	return nil
}

// LoadFailed records a load error: Loading -> Error.
func (m *Machine) LoadFailed(err error) {
	if m.phase != PhaseLoading {
		return
	}
	m.fail(err)
}

// Answer submits an answer for the current question. Exactly one of Answer
// and timer expiry locks each question; later calls, and calls carrying a
// stale generation, are no-ops. The return value reports whether this call
// locked the question.
func (m *Machine) Answer(gen uint64, answer string) bool {
	if m.phase != PhasePresenting || gen != m.generation || m.answered {
		return false
	}
	m.countdown.Stop()
	m.selected = answer
	m.answered = true
	if answer != "" && answer == m.questions[m.index].CorrectAnswer {
		m.correct++
		m.score += m.pointsFor(m.questions[m.index])
	}
	m.phase = PhaseLocked
	return true
}

// TimerTick advances the countdown by one second. On expiry the question
// locks with no selected answer. Stale generations are discarded.
func (m *Machine) TimerTick(gen uint64) (remaining int, expired bool) {
	if m.phase != PhasePresenting || gen != m.generation {
		return m.countdown.Remaining(), false
	}
	remaining, expired = m.countdown.Tick()
	if expired {
		m.selected = ""
		m.answered = true
		m.phase = PhaseLocked
	}
	return remaining, expired
}

// BeginAdvance leaves the feedback hold: Locked -> Advancing.
func (m *Machine) BeginAdvance(gen uint64) bool {
	if m.phase != PhaseLocked || gen != m.generation {
		return false
	}
	m.phase = PhaseAdvancing
	return true
}

// Advance moves to the next question or completes the run. Advancing with a
// matching generation is the only way to reach PhaseComplete, so completion
// happens exactly once.
func (m *Machine) Advance(gen uint64) (Phase, bool) {
	if m.phase != PhaseAdvancing || gen != m.generation {
		return m.phase, false
	}
	if m.index+1 < len(m.questions) {
		m.index++
		m.present()
		return m.phase, true
	}
	m.phase = PhaseComplete
	m.generation++
	return m.phase, true
}

// Restart abandons the current run: any phase -> Configuring. Pending
// callbacks die on the generation bump.
func (m *Machine) Restart() {
	m.reset()
	m.phase = PhaseConfiguring
	m.generation++
}

func (m *Machine) present() {
	m.phase = PhasePresenting
	m.answered = false
	m.selected = ""
	m.generation++
	m.countdown.Reset(m.timing.QuestionSeconds)
}

func (m *Machine) fail(err error) {
	m.err = err
	m.phase = PhaseError
	m.generation++
}

func (m *Machine) reset() {
	m.cfg = domain.Config{}
	m.questions = nil
	m.index = 0
	m.score = 0
	m.correct = 0
	m.answered = false
	m.selected = ""
	m.sessionID = ""
	m.err = nil
	m.countdown = Countdown{}
}

func (m *Machine) pointsFor(q domain.Question) int {
	if m.policy == ScoreSimple {
		return 1
	}
	return q.Difficulty.Points()
}
