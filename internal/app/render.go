package app

import (
	"fmt"
	"strings"

	"quiz-player/internal/domain"
)

// CardRenderer turns session views into terminal lines. Two layouts exist and
// both receive the same capability set (question, countdown state, lock
// feedback), so they are interchangeable behind the layout flag.
type CardRenderer interface {
	Question(view QuestionView) []string
	Tick(remaining int, timing Timing) string
	Locked(view LockedView) []string
	Result(summary domain.Summary) []string
}

// RendererFor selects a layout strategy. Unknown names fall back to classic.
func RendererFor(layout string) CardRenderer {
	if layout == "panel" {
		return PanelRenderer{}
	}
	return ClassicRenderer{}
}

// bandMessages is the display mapping for result tiers; the tier itself never
// carries locale-specific text.
var bandMessages = map[domain.Band]string{
	domain.BandExcellent:     "Excellent! You are a genius!",
	domain.BandGreat:         "Very good! You did great!",
	domain.BandGood:          "Good job! Keep practicing!",
	domain.BandEncouragement: "Don't give up! Practice and try again!",
}

func optionLetter(i int) string {
	return string(rune('A' + i))
}

// ClassicRenderer is the plain list layout: question text, lettered options,
// a bracketed time bar.
type ClassicRenderer struct{}

func (ClassicRenderer) Question(v QuestionView) []string {
	lines := []string{
		fmt.Sprintf("Question %d/%d  [%s | %s]", v.Index+1, v.Total, v.Category, v.Difficulty),
		"",
		v.Text,
		"",
	}
	for i, opt := range v.Options {
		lines = append(lines, fmt.Sprintf("  %s. %s", optionLetter(i), opt))
	}
	return lines
}

func (ClassicRenderer) Tick(remaining int, timing Timing) string {
	total := timing.QuestionSeconds
	if total <= 0 {
		total = 1
	}
	filled := remaining * 20 / total
	bar := strings.Repeat("#", filled) + strings.Repeat(".", 20-filled)
	mark := ""
	switch {
	case remaining <= timing.DangerBelow:
		mark = " !!"
	case remaining <= timing.WarnBelow:
		mark = " !"
	}
	return fmt.Sprintf("[%s] %2ds%s", bar, remaining, mark)
}

func (ClassicRenderer) Locked(v LockedView) []string {
	lines := make([]string, 0, 3)
	switch {
	case v.Correct:
		lines = append(lines, "Correct!")
	case v.TimedOut:
		lines = append(lines, fmt.Sprintf("Time's up! The correct answer was: %s", v.CorrectAnswer))
	default:
		lines = append(lines, fmt.Sprintf("Wrong. The correct answer was: %s", v.CorrectAnswer))
	}
	if v.Explanation != "" {
		lines = append(lines, v.Explanation)
	}
	lines = append(lines, fmt.Sprintf("Score: %d", v.Score))
	return lines
}

func (ClassicRenderer) Result(s domain.Summary) []string {
	return []string{
		fmt.Sprintf("Final result: %d/%d correct (%d%%), score %d", s.Correct, s.Total, s.Percentage, s.Score),
		bandMessages[s.Band],
	}
}

// PanelRenderer is the boxed layout used by the alternate question card: a
// framed panel with the category header and an image note.
type PanelRenderer struct{}

func (PanelRenderer) Question(v QuestionView) []string {
	width := 56
	top := "+" + strings.Repeat("-", width-2) + "+"
	lines := []string{
		top,
		panelLine(fmt.Sprintf("Q %d/%d  %s (%s)", v.Index+1, v.Total, v.Category, v.Difficulty), width),
		panelLine("", width),
		panelLine(v.Text, width),
		panelLine("", width),
	}
	for i, opt := range v.Options {
		lines = append(lines, panelLine(fmt.Sprintf("%s. %s", optionLetter(i), opt), width))
	}
	if v.Image != "" {
		lines = append(lines, panelLine("", width), panelLine("[image: "+v.Image+"]", width))
	}
	lines = append(lines, top)
	return lines
}

func (PanelRenderer) Tick(remaining int, timing Timing) string {
	mark := ""
	switch {
	case remaining <= timing.DangerBelow:
		mark = " (!)"
	case remaining <= timing.WarnBelow:
		mark = " (*)"
	}
	return fmt.Sprintf("| time left: %2ds%s", remaining, mark)
}

func (PanelRenderer) Locked(v LockedView) []string {
	verdict := "WRONG"
	if v.Correct {
		verdict = "CORRECT"
	} else if v.TimedOut {
		verdict = "TIME'S UP"
	}
	lines := []string{fmt.Sprintf("| %s - answer: %s", verdict, v.CorrectAnswer)}
	if v.Explanation != "" {
		lines = append(lines, "| "+v.Explanation)
	}
	lines = append(lines, fmt.Sprintf("| score: %d", v.Score))
	return lines
}

func (PanelRenderer) Result(s domain.Summary) []string {
	return []string{
		fmt.Sprintf("| %d%%: %d of %d correct, score %d", s.Percentage, s.Correct, s.Total, s.Score),
		"| " + bandMessages[s.Band],
	}
}

func panelLine(text string, width int) string {
	inner := width - 4
	runes := []rune(text)
	if len(runes) > inner {
		runes = append(runes[:inner-3], '.', '.', '.')
	}
	return "| " + string(runes) + strings.Repeat(" ", inner-len(runes)) + " |"
}
