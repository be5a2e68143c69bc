package integration

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"

	"quiz-player/internal/api"
	"quiz-player/internal/app"
	"quiz-player/internal/domain"
	redisstore "quiz-player/internal/infra/redis"
)

type wireQuestion struct {
	ID            string   `json:"id"`
	Text          string   `json:"text"`
	Options       []string `json:"options"`
	CorrectAnswer string   `json:"correctAnswer"`
	Category      string   `json:"category"`
	Difficulty    string   `json:"difficulty"`
}

// questionService fakes the remote question API over real HTTP.
type questionService struct {
	mu       sync.Mutex
	bank     []wireQuestion
	finished map[string]int
}

func newQuestionService(size int) *questionService {
	svc := &questionService{finished: make(map[string]int)}
	for i := 1; i <= size; i++ {
		svc.bank = append(svc.bank, wireQuestion{
			ID:            fmt.Sprintf("%d", i),
			Text:          fmt.Sprintf("question %d", i),
			Options:       []string{"right", "wrong"},
			CorrectAnswer: "right",
			Category:      "General",
			Difficulty:    "easy",
		})
	}
	return svc
}

func (s *questionService) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/questions", func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		defer s.mu.Unlock()
		json.NewEncoder(w).Encode(s.bank)
	})
	mux.HandleFunc("/api/quiz/", func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/finish") {
			http.NotFound(w, r)
			return
		}
		var body struct {
			Score int `json:"score"`
		}
		json.NewDecoder(r.Body).Decode(&body)
		sessionID := strings.TrimSuffix(strings.TrimPrefix(r.URL.Path, "/api/quiz/"), "/finish")
		s.mu.Lock()
		s.finished[sessionID] = body.Score
		s.mu.Unlock()
		w.WriteHeader(http.StatusNoContent)
	})
	mux.HandleFunc("/api/quiz/start", func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		defer s.mu.Unlock()
		json.NewEncoder(w).Encode(map[string]any{
			"sessionId": "sess-e2e",
			"questions": s.bank[:1],
		})
	})
	return mux
}

func (s *questionService) finishedScore(sessionID string) (int, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	score, ok := s.finished[sessionID]
	return score, ok
}

func fastTiming() app.Timing {
	t := app.DefaultTiming()
	t.TickInterval = 2 * time.Millisecond
	t.FeedbackHold = 5 * time.Millisecond
	t.TransitionShow = 3 * time.Millisecond
	t.TransitionFade = 2 * time.Millisecond
	t.InitialPause = 0
	t.QuestionSeconds = 100000
	return t
}

func TestCuratedSessionEndToEnd(t *testing.T) {
	svc := newQuestionService(5)
	server := httptest.NewServer(svc.handler())
	defer server.Close()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()
	redisClient := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	defer redisClient.Close()
	used := redisstore.NewUsedStore(redisClient, "e2e", time.Hour)

	client := api.NewClient(server.URL, server.Client(), used, time.Minute)

	events := make(chan app.Event, 256)
	runner := app.NewRunner(client, fastTiming(), app.ScoreByDifficulty, app.ListenerFunc(func(e app.Event) {
		select {
		case events <- e:
		default:
		}
	}), nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go runner.Run(ctx)
	defer runner.Stop()

	runner.Begin(domain.Config{Curated: true})

	awaitEvent(t, events, app.EventQuestion)
	runner.Answer("right")
	complete := awaitEvent(t, events, app.EventComplete)
	if complete.Result.Correct != 1 || complete.Result.Score != 10 {
		t.Fatalf("unexpected result: %+v", complete.Result)
	}

	// The finish call is fire and forget; give it a moment to land.
	deadline := time.Now().Add(2 * time.Second)
	for {
		if score, ok := svc.finishedScore("sess-e2e"); ok {
			if score != 10 {
				t.Fatalf("finish reported score %d, want 10", score)
			}
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("finish was never reported")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestFilteredRunsAvoidRepeatsAcrossClients(t *testing.T) {
	svc := newQuestionService(6)
	server := httptest.NewServer(svc.handler())
	defer server.Close()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()
	redisClient := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	defer redisClient.Close()

	cfg := domain.Config{TotalQuestions: 3, Difficulty: domain.DifficultyAny}
	ctx := context.Background()
	seen := make(map[string]int)

	// Two client instances sharing one Redis history must not repeat IDs.
	for i := 0; i < 2; i++ {
		used := redisstore.NewUsedStore(redisClient, "shared", time.Hour)
		client := api.NewClient(server.URL, server.Client(), used, time.Minute)
		questions, err := client.LoadByFilter(ctx, cfg)
		if err != nil {
			t.Fatalf("load %d: %v", i, err)
		}
		if len(questions) != 3 {
			t.Fatalf("load %d returned %d questions", i, len(questions))
		}
		for _, q := range questions {
			seen[q.ID]++
		}
	}
	for id, n := range seen {
		if n > 1 {
			t.Fatalf("question %s served %d times", id, n)
		}
	}
}

func awaitEvent(t *testing.T, events chan app.Event, want app.EventType) app.Event {
	t.Helper()
	deadline := time.After(5 * time.Second)
	for {
		select {
		case e := <-events:
			if e.Type == want {
				return e
			}
			if e.Type == app.EventError && want != app.EventError {
				t.Fatalf("unexpected error event: %s", e.Message)
			}
		case <-deadline:
			t.Fatalf("timed out waiting for %s", want)
		}
	}
}
