package app

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"quiz-player/internal/domain"
)

// Repository is the slice of the question service a run needs.
type Repository interface {
	LoadByFilter(ctx context.Context, cfg domain.Config) ([]domain.Question, error)
	LoadCuratedSet(ctx context.Context) (string, []domain.Question, error)
	LoadByID(ctx context.Context, id string) (domain.Question, error)
	FinishSession(ctx context.Context, sessionID string, score int) error
}

// finishTimeout bounds the best-effort session-finish call.
const finishTimeout = 5 * time.Second

// Runner drives a Machine with wall-clock time. All state mutation happens on
// the loop goroutine started by Run: ticks, answers, load results and
// sequencer callbacks arrive as commands, each carrying the generation it was
// issued for, so superseded work is dropped on arrival. An in-flight fetch
// that completes after a restart is discarded the same way.
type Runner struct {
	id       string
	repo     Repository
	timing   Timing
	machine  *Machine
	seq      *Sequencer
	listener Listener
	logger   *log.Logger

	ctx      context.Context
	cmds     chan func()
	done     chan struct{}
	stopOnce sync.Once
	ticker   *time.Ticker
	ticking  bool
}

// NewRunner wires a runner. The repository and timing come from the
// composition root; listener may be nil.
func NewRunner(repo Repository, timing Timing, policy ScorePolicy, listener Listener, logger *log.Logger) *Runner {
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		id:       uuid.NewString(),
		repo:     repo,
		timing:   timing,
		machine:  NewMachine(timing, policy),
		seq:      NewSequencer(),
		listener: listener,
		logger:   logger,
		cmds:     make(chan func(), 16),
		done:     make(chan struct{}),
	}
}

// ID identifies this run for logging.
func (r *Runner) ID() string { return r.id }

// Run owns the event loop until ctx is cancelled or Stop is called. Callers
// start it on its own goroutine before issuing commands.
func (r *Runner) Run(ctx context.Context) {
	r.ctx = ctx
	r.ticker = time.NewTicker(r.timing.TickInterval)
	defer r.ticker.Stop()
	defer r.seq.Stop()
	defer r.Stop()
	for {
		select {
		case fn := <-r.cmds:
			fn()
		case <-r.ticker.C:
			r.onTick()
		case <-ctx.Done():
			return
		case <-r.done:
			return
		}
	}
}

// Begin submits the configuration and starts loading questions.
func (r *Runner) Begin(cfg domain.Config) {
	r.post(func() { r.startLoad(cfg) })
}

// Answer submits an answer for the current question. Calls after the lock,
// or landing on a later question, are no-ops.
func (r *Runner) Answer(answer string) {
	r.post(func() {
		gen := r.machine.Generation()
		if r.machine.Answer(gen, answer) {
			r.locked(gen, false)
		}
	})
}

// Restart abandons the current run and starts a fresh one.
func (r *Runner) Restart(cfg domain.Config) {
	r.post(func() {
		r.machine.Restart()
		r.seq.Invalidate(r.machine.Generation())
		r.startLoad(cfg)
	})
}

// Stop terminates the loop. Safe to call more than once.
func (r *Runner) Stop() {
	r.stopOnce.Do(func() { close(r.done) })
}

func (r *Runner) post(fn func()) {
	select {
	case r.cmds <- fn:
	case <-r.done:
	}
}

func (r *Runner) emit(e Event) {
	if r.listener != nil {
		r.listener.OnEvent(e)
	}
}

func (r *Runner) startLoad(cfg domain.Config) {
	if err := r.machine.StartLoad(cfg); err != nil {
		r.emit(Event{Type: EventError, Message: err.Error()})
		return
	}
	gen := r.machine.Generation()
	r.seq.Invalidate(gen)
	r.ticking = false
	r.emit(Event{Type: EventLoading})

	ctx := r.ctx
	go func() {
		var (
			questions []domain.Question
			sessionID string
			err       error
		)
		switch {
		case cfg.QuestionID != "":
			var q domain.Question
			q, err = r.repo.LoadByID(ctx, cfg.QuestionID)
			if err == nil {
				questions = []domain.Question{q}
			}
		case cfg.Curated:
			sessionID, questions, err = r.repo.LoadCuratedSet(ctx)
		default:
			questions, err = r.repo.LoadByFilter(ctx, cfg)
		}
		r.post(func() { r.loadResult(gen, questions, sessionID, err) })
	}()
}

func (r *Runner) loadResult(gen uint64, questions []domain.Question, sessionID string, err error) {
	// A result for a superseded load (user restarted meanwhile) is discarded.
	if r.machine.Generation() != gen || r.machine.Phase() != PhaseLoading {
		return
	}
	if err != nil {
		r.machine.LoadFailed(err)
		r.logger.Printf("run %s: load failed: %v", r.id, err)
		r.emit(Event{Type: EventError, Message: err.Error()})
		return
	}
	if err := r.machine.LoadSucceeded(questions, sessionID); err != nil {
		r.emit(Event{Type: EventError, Message: err.Error()})
		return
	}
	r.present()
}

func (r *Runner) present() {
	gen := r.machine.Generation()
	r.seq.Invalidate(gen)

	q, ok := r.machine.Question()
	if !ok {
		return
	}
	view := QuestionView{
		Index:      r.machine.Index(),
		Total:      r.machine.Total(),
		Text:       q.Text,
		Options:    q.Options,
		Category:   q.Category,
		Difficulty: q.Difficulty,
		Image:      q.Image,
	}
	r.emit(Event{Type: EventQuestion, Question: &view, Remaining: r.machine.Remaining()})

	if r.timing.InitialPause > 0 {
		// Every question gets the reading pause before its clock starts.
		r.ticking = false
		r.seq.After(gen, r.timing.InitialPause, func() {
			r.post(func() {
				if r.machine.Generation() == gen {
					r.startTicking()
				}
			})
		})
		return
	}
	r.startTicking()
}

// startTicking re-phases the ticker so the question's first second is not
// shortened by however much of the previous interval had already elapsed.
func (r *Runner) startTicking() {
	r.ticker.Reset(r.timing.TickInterval)
	r.ticking = true
}

func (r *Runner) onTick() {
	if !r.ticking || r.machine.Phase() != PhasePresenting {
		return
	}
	gen := r.machine.Generation()
	remaining, expired := r.machine.TimerTick(gen)

	r.emit(Event{
		Type:      EventTick,
		Remaining: remaining,
		Warning:   remaining <= r.timing.WarnBelow,
		Danger:    remaining <= r.timing.DangerBelow,
	})
	if expired {
		r.emit(Event{Type: EventSound, Cue: CueTimeUp})
		r.locked(gen, true)
		return
	}
	if remaining > 0 && remaining <= r.timing.TickSoundBelow {
		r.emit(Event{Type: EventSound, Cue: CueTick})
	}
}

func (r *Runner) locked(gen uint64, timedOut bool) {
	r.ticking = false
	q, ok := r.machine.Question()
	if !ok {
		return
	}
	selected, _ := r.machine.Selected()
	correct := selected != "" && selected == q.CorrectAnswer

	if !timedOut {
		cue := CueWrong
		if correct {
			cue = CueSuccess
		}
		r.emit(Event{Type: EventSound, Cue: cue})
	}
	r.emit(Event{Type: EventLocked, Locked: &LockedView{
		Index:         r.machine.Index(),
		Correct:       correct,
		TimedOut:      timedOut,
		Selected:      selected,
		CorrectAnswer: q.CorrectAnswer,
		Explanation:   q.Explanation,
		Score:         r.machine.Score(),
	}})

	r.seq.After(gen, r.timing.FeedbackHold, func() {
		r.post(func() { r.advance(gen) })
	})
}

func (r *Runner) advance(gen uint64) {
	if !r.machine.BeginAdvance(gen) {
		return
	}
	if r.machine.Index()+1 < r.machine.Total() {
		r.emit(Event{Type: EventTransition, NextIndex: r.machine.Index() + 1})
		r.emit(Event{Type: EventSound, Cue: CueTransition})
		hold := r.timing.TransitionShow + r.timing.TransitionFade
		r.seq.After(gen, hold, func() {
			r.post(func() {
				if phase, ok := r.machine.Advance(gen); ok && phase == PhasePresenting {
					r.present()
				}
			})
		})
		return
	}
	r.complete(gen)
}

func (r *Runner) complete(gen uint64) {
	phase, ok := r.machine.Advance(gen)
	if !ok || phase != PhaseComplete {
		return
	}
	summary := r.machine.Summary()
	sessionID := r.machine.SessionID()
	r.emit(Event{Type: EventComplete, Result: &summary})

	if sessionID == "" {
		return
	}
	// Best-effort telemetry: the result above never waits for this.
	score := summary.Score
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), finishTimeout)
		defer cancel()
		if err := r.repo.FinishSession(ctx, sessionID, score); err != nil {
			r.logger.Printf("run %s: finish session %s: %v", r.id, sessionID, err)
		}
	}()
}
