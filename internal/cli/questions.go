package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"quiz-player/internal/api"
	"quiz-player/internal/config"
	"quiz-player/internal/domain"
)

// NewQuestionsCmd groups the question-bank maintenance commands.
func NewQuestionsCmd(configPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "questions",
		Short: "Maintain the question bank",
	}
	cmd.AddCommand(newQuestionsListCmd(configPath))
	cmd.AddCommand(newQuestionsGetCmd(configPath))
	cmd.AddCommand(newQuestionsCreateCmd(configPath))
	cmd.AddCommand(newQuestionsUpdateCmd(configPath))
	cmd.AddCommand(newQuestionsDeleteCmd(configPath))
	cmd.AddCommand(newQuestionsSelectCmd(configPath))
	cmd.AddCommand(newQuestionsClearCmd(configPath))
	cmd.AddCommand(newCategoriesCmd(configPath))
	return cmd
}

func withClient(configPath string, fn func(*api.Client, config.Config) error) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	client, cleanup := buildClient(cfg)
	defer cleanup()
	return fn(client, cfg)
}

func newQuestionsListCmd(configPath *string) *cobra.Command {
	var (
		limit      int
		page       int
		difficulty string
		category   int
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List questions",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(*configPath, func(client *api.Client, _ config.Config) error {
				questions, total, err := client.ListQuestions(cmd.Context(), api.ListOptions{
					Limit:      limit,
					Page:       page,
					Difficulty: domain.ParseDifficulty(difficulty),
					CategoryID: category,
				})
				if err != nil {
					return err
				}
				for _, q := range questions {
					fmt.Printf("%s  [%s/%s]  %s\n", q.ID, q.Category, q.Difficulty, q.Text)
				}
				fmt.Printf("%d of %d questions\n", len(questions), total)
				return nil
			})
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 20, "page size")
	cmd.Flags().IntVar(&page, "page", 1, "page number")
	cmd.Flags().StringVar(&difficulty, "difficulty", "any", "difficulty filter")
	cmd.Flags().IntVar(&category, "category", 0, "category id filter (0 for all)")
	return cmd
}

func newQuestionsGetCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Show one question",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(*configPath, func(client *api.Client, _ config.Config) error {
				q, err := client.LoadByID(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				fmt.Printf("%s  [%s/%s]\n%s\n", q.ID, q.Category, q.Difficulty, q.Text)
				for i, opt := range q.Options {
					marker := " "
					if opt == q.CorrectAnswer {
						marker = "*"
					}
					fmt.Printf(" %s %c) %s\n", marker, 'A'+i, opt)
				}
				if q.Explanation != "" {
					fmt.Printf("explanation: %s\n", q.Explanation)
				}
				images, err := client.QuestionImages(cmd.Context(), q.ID)
				if err == nil {
					for _, img := range images {
						fmt.Printf("image: %s\n", img.URL)
					}
				}
				return nil
			})
		},
	}
}

func newQuestionsCreateCmd(configPath *string) *cobra.Command {
	var (
		text        string
		options     []string
		correct     string
		category    int
		difficulty  string
		explanation string
	)
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a question",
		RunE: func(cmd *cobra.Command, args []string) error {
			q := domain.Question{
				Text:          text,
				Options:       options,
				CorrectAnswer: correct,
				CategoryID:    category,
				Difficulty:    domain.ParseDifficulty(difficulty),
				Explanation:   explanation,
			}
			if !q.Valid() {
				return fmt.Errorf("question needs text, at least two options and a correct answer that is one of them")
			}
			return withClient(*configPath, func(client *api.Client, _ config.Config) error {
				created, err := client.CreateQuestion(cmd.Context(), q)
				if err != nil {
					return err
				}
				fmt.Printf("created %s\n", created.ID)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&text, "text", "", "question text")
	cmd.Flags().StringArrayVar(&options, "option", nil, "answer option (repeat per option)")
	cmd.Flags().StringVar(&correct, "correct", "", "the correct option text")
	cmd.Flags().IntVar(&category, "category", 0, "category id")
	cmd.Flags().StringVar(&difficulty, "difficulty", "easy", "easy, medium or hard")
	cmd.Flags().StringVar(&explanation, "explanation", "", "shown after the answer lock")
	return cmd
}

func newQuestionsUpdateCmd(configPath *string) *cobra.Command {
	var (
		text        string
		options     []string
		correct     string
		category    int
		difficulty  string
		explanation string
	)
	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Replace a question",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			q := domain.Question{
				Text:          text,
				Options:       options,
				CorrectAnswer: correct,
				CategoryID:    category,
				Difficulty:    domain.ParseDifficulty(difficulty),
				Explanation:   explanation,
			}
			if !q.Valid() {
				return fmt.Errorf("question needs text, at least two options and a correct answer that is one of them")
			}
			return withClient(*configPath, func(client *api.Client, _ config.Config) error {
				updated, err := client.UpdateQuestion(cmd.Context(), args[0], q)
				if err != nil {
					return err
				}
				fmt.Printf("updated %s\n", updated.ID)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&text, "text", "", "question text")
	cmd.Flags().StringArrayVar(&options, "option", nil, "answer option (repeat per option)")
	cmd.Flags().StringVar(&correct, "correct", "", "the correct option text")
	cmd.Flags().IntVar(&category, "category", 0, "category id")
	cmd.Flags().StringVar(&difficulty, "difficulty", "easy", "easy, medium or hard")
	cmd.Flags().StringVar(&explanation, "explanation", "", "shown after the answer lock")
	return cmd
}

func newQuestionsDeleteCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a question",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(*configPath, func(client *api.Client, _ config.Config) error {
				if err := client.DeleteQuestion(cmd.Context(), args[0]); err != nil {
					return err
				}
				fmt.Printf("deleted %s\n", args[0])
				return nil
			})
		},
	}
}

func newQuestionsSelectCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "select <id>...",
		Short: "Save the curated selection",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(*configPath, func(client *api.Client, _ config.Config) error {
				if err := client.SaveSelected(cmd.Context(), args); err != nil {
					return err
				}
				fmt.Printf("selected %d questions\n", len(args))
				return nil
			})
		},
	}
}

func newQuestionsClearCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "clear-selection",
		Short: "Clear the curated selection",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(*configPath, func(client *api.Client, _ config.Config) error {
				return client.ClearSelected(cmd.Context())
			})
		},
	}
}

func newCategoriesCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "categories",
		Short: "List categories",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(*configPath, func(client *api.Client, _ config.Config) error {
				categories, err := client.Categories(cmd.Context())
				if err != nil {
					return err
				}
				for _, c := range categories {
					fmt.Printf("%d  %s\n", c.ID, c.Name)
				}
				return nil
			})
		},
	}
}
