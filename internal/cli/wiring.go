package cli

import (
	"net/http"
	"os"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"quiz-player/internal/api"
	"quiz-player/internal/app"
	"quiz-player/internal/config"
	"quiz-player/internal/infra/memory"
	redisstore "quiz-player/internal/infra/redis"
)

const defaultBaseURL = "http://localhost:3000"

// loadConfig reads the YAML config; a missing file falls back to defaults so
// the client works out of the box against a local question service.
func loadConfig(path string) (config.Config, error) {
	cfg, err := config.Load(path)
	if err != nil {
		if os.IsNotExist(err) {
			return config.Config{}, nil
		}
		return config.Config{}, err
	}
	return cfg, nil
}

// buildClient wires the question service client with either a Redis-backed or
// in-process used-question store. The returned func releases the Redis
// connection when one was opened.
func buildClient(cfg config.Config) (*api.Client, func()) {
	baseURL := cfg.API.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	httpClient := &http.Client{Timeout: config.TTLDuration(cfg.API.Timeout, 10*time.Second)}
	categoryTTL := config.TTLDuration(cfg.API.CategoryTTL, 5*time.Minute)

	var used api.UsedStore = memory.NewUsedStore()
	cleanup := func() {}
	if cfg.Redis.Addr != "" {
		client := goredis.NewClient(&goredis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		ttl := config.TTLDuration(cfg.Redis.TTL, 24*time.Hour)
		used = redisstore.NewUsedStore(client, cfg.Redis.Namespace, ttl)
		cleanup = func() { client.Close() }
	}

	return api.NewClient(baseURL, httpClient, used, categoryTTL), cleanup
}

// timingFromConfig starts from the standard choreography and applies any
// overrides the config carries.
func timingFromConfig(cfg config.Config) app.Timing {
	t := app.DefaultTiming()
	q := cfg.Quiz.Timing
	if q.QuestionSeconds > 0 {
		t.QuestionSeconds = q.QuestionSeconds
	}
	t.TickInterval = config.TTLDuration(q.TickInterval, t.TickInterval)
	t.FeedbackHold = config.TTLDuration(q.FeedbackHold, t.FeedbackHold)
	t.TransitionShow = config.TTLDuration(q.TransitionShow, t.TransitionShow)
	t.TransitionFade = config.TTLDuration(q.TransitionFade, t.TransitionFade)
	t.InitialPause = config.TTLDuration(q.InitialPause, t.InitialPause)
	return t
}

func scorePolicyFromConfig(cfg config.Config) app.ScorePolicy {
	if cfg.Quiz.Scoring == string(app.ScoreSimple) {
		return app.ScoreSimple
	}
	return app.ScoreByDifficulty
}
