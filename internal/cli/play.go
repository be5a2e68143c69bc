package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"quiz-player/internal/app"
	"quiz-player/internal/domain"
)

// NewPlayCmd builds the interactive terminal session.
func NewPlayCmd(configPath *string) *cobra.Command {
	var (
		count      int
		difficulty string
		category   int
		curated    bool
		questionID string
		layout     string
	)
	cmd := &cobra.Command{
		Use:   "play",
		Short: "Play a timed quiz in the terminal",
		RunE: func(cmd *cobra.Command, args []string) error {
			runCfg := domain.Config{
				TotalQuestions: count,
				Difficulty:     domain.ParseDifficulty(difficulty),
				CategoryID:     category,
				Curated:        curated,
				QuestionID:     questionID,
			}
			return runPlay(cmd.Context(), *configPath, runCfg, layout)
		},
	}
	cmd.Flags().IntVar(&count, "count", 10, "number of questions")
	cmd.Flags().StringVar(&difficulty, "difficulty", "any", "easy, medium, hard or any")
	cmd.Flags().IntVar(&category, "category", 0, "category id filter (0 for all)")
	cmd.Flags().BoolVar(&curated, "curated", false, "play the curated selection")
	cmd.Flags().StringVar(&questionID, "question-id", "", "play a single question by id")
	cmd.Flags().StringVar(&layout, "layout", "", "card layout: classic or panel")
	return cmd
}

func runPlay(ctx context.Context, configPath string, runCfg domain.Config, layout string) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	client, cleanup := buildClient(cfg)
	defer cleanup()

	if layout == "" {
		layout = cfg.Quiz.Layout
	}
	renderer := app.RendererFor(layout)
	timing := timingFromConfig(cfg)

	events := make(chan app.Event, 256)
	runner := app.NewRunner(client, timing, scorePolicyFromConfig(cfg), app.ListenerFunc(func(e app.Event) {
		select {
		case events <- e:
		default:
		}
	}), log.New(os.Stderr, "", log.LstdFlags))

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	go runner.Run(runCtx)
	defer runner.Stop()

	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
	}()

	runner.Begin(runCfg)

	var (
		options  []string
		awaiting bool // waiting for the play-again answer
		lastErr  string
	)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case e := <-events:
			switch e.Type {
			case app.EventLoading:
				fmt.Println("Loading questions...")
			case app.EventQuestion:
				options = e.Question.Options
				fmt.Println()
				for _, line := range renderer.Question(*e.Question) {
					fmt.Println(line)
				}
			case app.EventTick:
				fmt.Printf("\r%s", renderer.Tick(e.Remaining, timing))
			case app.EventLocked:
				options = nil
				fmt.Println()
				for _, line := range renderer.Locked(*e.Locked) {
					fmt.Println(line)
				}
			case app.EventTransition:
				fmt.Printf("Question %d coming up...\n", e.NextIndex+1)
			case app.EventComplete:
				fmt.Println()
				for _, line := range renderer.Result(*e.Result) {
					fmt.Println(line)
				}
				fmt.Print("Play again? [y/N] ")
				awaiting = true
			case app.EventError:
				fmt.Printf("Something went wrong: %s\n", e.Message)
				fmt.Print("Try again? [y/N] ")
				lastErr = e.Message
				awaiting = true
			}

		case line, ok := <-lines:
			if !ok {
				// stdin closed; let a finished prompt mean "no"
				if awaiting {
					if lastErr != "" {
						return errors.New(lastErr)
					}
					return nil
				}
				lines = nil
				continue
			}
			answer := strings.TrimSpace(line)
			if awaiting {
				awaiting = false
				if strings.EqualFold(answer, "y") || strings.EqualFold(answer, "yes") {
					lastErr = ""
					runner.Restart(runCfg)
					continue
				}
				if lastErr != "" {
					return errors.New(lastErr)
				}
				return nil
			}
			if answer == "" || options == nil {
				continue
			}
			runner.Answer(resolveAnswer(answer, options))
		}
	}
}

// resolveAnswer maps a letter (A, b, ...) to its option, falling back to the
// raw text so typing the full answer also works.
func resolveAnswer(input string, options []string) string {
	if len(input) == 1 {
		idx := int(strings.ToUpper(input)[0] - 'A')
		if idx >= 0 && idx < len(options) {
			return options[idx]
		}
	}
	return input
}
