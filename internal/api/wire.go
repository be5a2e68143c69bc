package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"quiz-player/internal/domain"
)

// flexID accepts both string and numeric identifiers; the service assigns
// them and has used both shapes across revisions.
type flexID string

func (f *flexID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || string(b) == "null" {
		*f = ""
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = flexID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("question id is neither string nor number: %w", err)
	}
	*f = flexID(n.String())
	return nil
}

// wireQuestion mirrors the service payload. Image naming drifted across
// revisions (image, imageUrl, scrImage), so all three are accepted.
type wireQuestion struct {
	ID            flexID     `json:"id"`
	Text          string     `json:"text"`
	Options       []string   `json:"options"`
	CorrectAnswer string     `json:"correctAnswer"`
	Category      string     `json:"category"`
	CategoryID    int        `json:"categoryId"`
	Difficulty    string     `json:"difficulty"`
	Explanation   string     `json:"explanation"`
	Image         string     `json:"image"`
	ImageURL      string     `json:"imageUrl"`
	ScrImage      string     `json:"scrImage"`
	Source        string     `json:"source"`
	CreatedAt     *time.Time `json:"createdAt"`
	UpdatedAt     *time.Time `json:"updatedAt"`
}

func (w wireQuestion) toDomain() domain.Question {
	image := w.Image
	if image == "" {
		image = w.ImageURL
	}
	if image == "" {
		image = w.ScrImage
	}
	q := domain.Question{
		ID:            strings.TrimSpace(string(w.ID)),
		Text:          w.Text,
		Options:       w.Options,
		CorrectAnswer: w.CorrectAnswer,
		Category:      w.Category,
		CategoryID:    w.CategoryID,
		Difficulty:    domain.ParseDifficulty(w.Difficulty),
		Explanation:   w.Explanation,
		Image:         image,
		Source:        w.Source,
	}
	if w.CreatedAt != nil {
		q.CreatedAt = *w.CreatedAt
	}
	if w.UpdatedAt != nil {
		q.UpdatedAt = *w.UpdatedAt
	}
	return q
}

// decodeQuestionList handles both list shapes the service returns: a bare
// array, or an object {"questions": [...], "total": n}.
func decodeQuestionList(raw json.RawMessage) ([]wireQuestion, int, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return nil, 0, nil
	}
	if trimmed[0] == '[' {
		var list []wireQuestion
		if err := json.Unmarshal(trimmed, &list); err != nil {
			return nil, 0, err
		}
		return list, len(list), nil
	}
	var wrapped struct {
		Questions []wireQuestion `json:"questions"`
		Total     int            `json:"total"`
	}
	if err := json.Unmarshal(trimmed, &wrapped); err != nil {
		return nil, 0, err
	}
	return wrapped.Questions, wrapped.Total, nil
}

// normalize converts wire questions to the internal shape, dropping entries
// that violate the question invariant instead of failing the run.
func normalize(raw []wireQuestion) []domain.Question {
	questions := make([]domain.Question, 0, len(raw))
	for _, w := range raw {
		q := w.toDomain()
		if q.ID == "" || !q.Valid() {
			continue
		}
		questions = append(questions, q)
	}
	return questions
}
