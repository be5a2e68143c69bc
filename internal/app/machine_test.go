package app

import (
	"errors"
	"testing"

	"quiz-player/internal/domain"
)

func testTiming() Timing {
	tm := DefaultTiming()
	tm.QuestionSeconds = 3
	tm.InitialPause = 0
	return tm
}

func testQuestions(n int) []domain.Question {
	questions := make([]domain.Question, n)
	for i := range questions {
		questions[i] = domain.Question{
			ID:            string(rune('a' + i)),
			Text:          "question",
			Options:       []string{"right", "wrong"},
			CorrectAnswer: "right",
			Difficulty:    domain.DifficultyEasy,
		}
	}
	return questions
}

func startedMachine(t *testing.T, policy ScorePolicy, questions []domain.Question, sessionID string) *Machine {
	t.Helper()
	m := NewMachine(testTiming(), policy)
	if err := m.StartLoad(domain.Config{TotalQuestions: len(questions), Difficulty: domain.DifficultyAny}); err != nil {
		t.Fatalf("StartLoad: %v", err)
	}
	if err := m.LoadSucceeded(questions, sessionID); err != nil {
		t.Fatalf("LoadSucceeded: %v", err)
	}
	return m
}

// lockAndAdvance walks one question through the full lock/advance cycle.
func lockAndAdvance(t *testing.T, m *Machine, answer string) {
	t.Helper()
	gen := m.Generation()
	if answer != "" {
		if !m.Answer(gen, answer) {
			t.Fatalf("answer did not lock question %d", m.Index())
		}
	} else {
		for m.Phase() == PhasePresenting {
			m.TimerTick(gen)
		}
	}
	if !m.BeginAdvance(gen) {
		t.Fatalf("BeginAdvance failed at question %d", m.Index())
	}
	if _, ok := m.Advance(gen); !ok {
		t.Fatalf("Advance failed at question %d", m.Index())
	}
}

func TestMachineHappyPathScoresAndCompletes(t *testing.T) {
	// Scenario: three questions, answers correct/wrong/correct.
	m := startedMachine(t, ScoreByDifficulty, testQuestions(3), "")

	if m.Phase() != PhasePresenting || m.Index() != 0 {
		t.Fatalf("expected Presenting(0), got %s(%d)", m.Phase(), m.Index())
	}
	if m.Remaining() != 3 {
		t.Fatalf("countdown not armed: %d", m.Remaining())
	}

	lockAndAdvance(t, m, "right")
	if m.Index() != 1 || m.Phase() != PhasePresenting {
		t.Fatalf("expected Presenting(1), got %s(%d)", m.Phase(), m.Index())
	}
	lockAndAdvance(t, m, "wrong")
	lockAndAdvance(t, m, "right")

	if m.Phase() != PhaseComplete {
		t.Fatalf("expected Complete, got %s", m.Phase())
	}
	if m.Correct() != 2 || m.Score() != 20 {
		t.Fatalf("expected 2 correct / 20 points, got %d / %d", m.Correct(), m.Score())
	}
	s := m.Summary()
	if s.Percentage != 67 || s.Band != domain.BandGood {
		t.Fatalf("expected 67%% good, got %d%% %q", s.Percentage, s.Band)
	}
}

func TestMachineSimplePolicyAwardsOnePoint(t *testing.T) {
	m := startedMachine(t, ScoreSimple, testQuestions(1), "")
	m.Answer(m.Generation(), "right")
	if m.Score() != 1 || m.Correct() != 1 {
		t.Fatalf("expected score 1, got %d", m.Score())
	}
}

func TestMachineTimeoutLocksWithoutAnswer(t *testing.T) {
	// Scenario: one question, no answer before the clock runs out.
	m := startedMachine(t, ScoreByDifficulty, testQuestions(1), "")
	gen := m.Generation()

	var expired bool
	for i := 0; i < 3; i++ {
		_, expired = m.TimerTick(gen)
	}
	if !expired || m.Phase() != PhaseLocked {
		t.Fatalf("expected expiry lock, got phase %s", m.Phase())
	}
	selected, locked := m.Selected()
	if selected != "" || !locked {
		t.Fatalf("expected empty selection after timeout, got %q", selected)
	}
	if m.Score() != 0 {
		t.Fatalf("timeout must not score, got %d", m.Score())
	}

	// The timer never goes negative and never re-expires.
	if remaining, again := m.TimerTick(gen); remaining != 0 || again {
		t.Fatalf("tick at zero must be a no-op, got %d/%v", remaining, again)
	}

	m.BeginAdvance(gen)
	m.Advance(gen)
	s := m.Summary()
	if s.Percentage != 0 || s.Band != domain.BandEncouragement {
		t.Fatalf("expected 0%% encouragement, got %d%% %q", s.Percentage, s.Band)
	}
}

func TestMachineLockIsImmutable(t *testing.T) {
	m := startedMachine(t, ScoreByDifficulty, testQuestions(1), "")
	gen := m.Generation()

	if !m.Answer(gen, "wrong") {
		t.Fatalf("first answer must lock")
	}
	score := m.Score()

	// A second answer, even the correct one, changes nothing.
	if m.Answer(gen, "right") {
		t.Fatalf("second answer must be a no-op")
	}
	selected, _ := m.Selected()
	if selected != "wrong" || m.Score() != score {
		t.Fatalf("lock mutated: selected=%q score=%d", selected, m.Score())
	}
}

func TestMachineStaleGenerationIsDiscarded(t *testing.T) {
	m := startedMachine(t, ScoreByDifficulty, testQuestions(2), "")
	staleGen := m.Generation()

	lockAndAdvance(t, m, "right")

	// Question 0's generation must not touch question 1.
	if m.Answer(staleGen, "right") {
		t.Fatalf("stale answer must be discarded")
	}
	before := m.Remaining()
	if _, expired := m.TimerTick(staleGen); expired || m.Remaining() != before {
		t.Fatalf("stale tick mutated the countdown")
	}
}

func TestMachineIndexMonotonicAndCompleteOnce(t *testing.T) {
	m := startedMachine(t, ScoreByDifficulty, testQuestions(2), "")

	lastIndex := -1
	for m.Phase() != PhaseComplete {
		if m.Index() != lastIndex+1 {
			t.Fatalf("index jumped from %d to %d", lastIndex, m.Index())
		}
		lastIndex = m.Index()
		lockAndAdvance(t, m, "right")
	}
	if lastIndex != 1 {
		t.Fatalf("expected to end on index 1, got %d", lastIndex)
	}

	// A stray advance after completion must not fire again.
	if _, ok := m.Advance(m.Generation()); ok {
		t.Fatalf("advance after completion must be a no-op")
	}
}

func TestMachineEmptyLoadEntersError(t *testing.T) {
	m := NewMachine(testTiming(), ScoreByDifficulty)
	if err := m.StartLoad(domain.Config{TotalQuestions: 3, Difficulty: domain.DifficultyAny}); err != nil {
		t.Fatalf("StartLoad: %v", err)
	}
	err := m.LoadSucceeded(nil, "")
	if !errors.Is(err, domain.ErrEmptyResultSet) || m.Phase() != PhaseError {
		t.Fatalf("expected ErrEmptyResultSet error phase, got %v / %s", err, m.Phase())
	}
}

func TestMachineLoadFailureRequiresRestart(t *testing.T) {
	m := NewMachine(testTiming(), ScoreByDifficulty)
	if err := m.StartLoad(domain.Config{Curated: true}); err != nil {
		t.Fatalf("StartLoad: %v", err)
	}
	m.LoadFailed(domain.ErrNoQuestionsSelected)

	if m.Phase() != PhaseError || !errors.Is(m.Err(), domain.ErrNoQuestionsSelected) {
		t.Fatalf("expected error phase, got %s / %v", m.Phase(), m.Err())
	}
	// Recovery is an explicit new configuration.
	if err := m.StartLoad(domain.Config{TotalQuestions: 1, Difficulty: domain.DifficultyAny}); err != nil {
		t.Fatalf("restart from error: %v", err)
	}
	if m.Phase() != PhaseLoading {
		t.Fatalf("expected Loading after restart, got %s", m.Phase())
	}
}

func TestMachineRestartResetsState(t *testing.T) {
	m := startedMachine(t, ScoreByDifficulty, testQuestions(2), "sess-1")
	m.Answer(m.Generation(), "right")

	gen := m.Generation()
	m.Restart()
	if m.Phase() != PhaseConfiguring || m.Score() != 0 || m.SessionID() != "" {
		t.Fatalf("restart left state behind: %s score=%d session=%q", m.Phase(), m.Score(), m.SessionID())
	}
	if m.Generation() == gen {
		t.Fatalf("restart must bump the generation")
	}
}

func TestMachineRejectsInvalidConfig(t *testing.T) {
	m := NewMachine(testTiming(), ScoreByDifficulty)
	if err := m.StartLoad(domain.Config{TotalQuestions: 0}); err == nil {
		t.Fatalf("expected validation error")
	}
	if m.Phase() != PhaseConfiguring {
		t.Fatalf("invalid config must leave the machine untouched, got %s", m.Phase())
	}
}
