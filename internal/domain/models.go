package domain

import (
	"fmt"
	"strings"
	"time"
)

// Difficulty is the canonical difficulty scale. Wire payloads and localized
// screens spell it a dozen ways; ParseDifficulty maps them at the boundary so
// scoring only ever sees these values.
type Difficulty string

const (
	DifficultyAny    Difficulty = "any"
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// ParseDifficulty normalizes a wire or display spelling onto the canonical
// scale. Unknown values come back as DifficultyAny.
func ParseDifficulty(raw string) Difficulty {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "easy", "fácil", "facil":
		return DifficultyEasy
	case "medium", "médio", "medio":
		return DifficultyMedium
	case "hard", "difícil", "dificil":
		return DifficultyHard
	default:
		return DifficultyAny
	}
}

// Points returns the score weight for a correct answer at this difficulty.
func (d Difficulty) Points() int {
	switch d {
	case DifficultyMedium:
		return 20
	case DifficultyHard:
		return 30
	default:
		return 10
	}
}

// Question is one multiple-choice question as the engine sees it, already
// normalized from the wire shape.
type Question struct {
	ID            string     `json:"id"`
	Text          string     `json:"text"`
	Options       []string   `json:"options"`
	CorrectAnswer string     `json:"correctAnswer"`
	Category      string     `json:"category"`
	CategoryID    int        `json:"categoryId"`
	Difficulty    Difficulty `json:"difficulty"`
	Explanation   string     `json:"explanation,omitempty"`
	Image         string     `json:"image,omitempty"`
	Source        string     `json:"source,omitempty"`
	CreatedAt     time.Time  `json:"createdAt,omitempty"`
	UpdatedAt     time.Time  `json:"updatedAt,omitempty"`
}

// Valid reports whether the question can be played: it has text, at least two
// options, and the correct answer is one of them.
func (q Question) Valid() bool {
	if q.Text == "" || len(q.Options) < 2 {
		return false
	}
	for _, opt := range q.Options {
		if opt == q.CorrectAnswer {
			return true
		}
	}
	return false
}

// Category is one entry of the category picker.
type Category struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// MaxQuestions bounds how many questions a single run may request.
const MaxQuestions = 50

// Config is the configuration of one quiz run. It is fixed once the session
// starts; a new run needs a fresh Config.
type Config struct {
	TotalQuestions int        `json:"totalQuestions"`
	Difficulty     Difficulty `json:"difficulty"`
	CategoryID     int        `json:"categoryId,omitempty"` // 0 = all categories
	Curated        bool       `json:"curated"`              // play the server-side curated selection
	QuestionID     string     `json:"questionId,omitempty"` // single-question test mode
}

// Validate checks the run bounds. Curated and single-question runs take their
// size from the server, so only filtered runs carry a count.
func (c Config) Validate() error {
	if c.QuestionID != "" || c.Curated {
		return nil
	}
	if c.TotalQuestions < 1 || c.TotalQuestions > MaxQuestions {
		return fmt.Errorf("total questions must be between 1 and %d, got %d", MaxQuestions, c.TotalQuestions)
	}
	return nil
}
