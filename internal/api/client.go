package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"quiz-player/internal/domain"
)

// overfetchFactor is how many times the requested count we ask the service
// for, leaving room to drop malformed entries and already-played questions.
const overfetchFactor = 2

// UsedStore remembers question IDs already played, so consecutive runs from
// the same pool avoid repeats.
type UsedStore interface {
	MarkUsed(ctx context.Context, ids []string) error
	Used(ctx context.Context) (map[string]struct{}, error)
	Clear(ctx context.Context) error
}

// Client talks to the question service. The service itself is external; this
// package owns only the wire contract and the normalization of its payloads
// into the internal Question shape.
type Client struct {
	baseURL string
	http    *http.Client
	used    UsedStore
	rnd     *rand.Rand

	sf     singleflight.Group
	catTTL time.Duration
	mu     sync.Mutex
	cats   []domain.Category
	catsAt time.Time
}

// NewClient builds a client for the service at baseURL. httpClient may be
// nil; used may be nil when de-duplication is not wanted.
func NewClient(baseURL string, httpClient *http.Client, used UsedStore, categoryTTL time.Duration) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	if categoryTTL <= 0 {
		categoryTTL = 5 * time.Minute
	}
	return &Client{
		baseURL: baseURL,
		http:    httpClient,
		used:    used,
		rnd:     rand.New(rand.NewSource(time.Now().UnixNano())),
		catTTL:  categoryTTL,
	}
}

// Categories lists the category picker entries, cached with a TTL and
// collapsed through singleflight so concurrent sessions share one request.
func (c *Client) Categories(ctx context.Context) ([]domain.Category, error) {
	c.mu.Lock()
	if c.cats != nil && time.Since(c.catsAt) < c.catTTL {
		cached := c.cats
		c.mu.Unlock()
		return cached, nil
	}
	c.mu.Unlock()

	result, err, _ := c.sf.Do("categories", func() (interface{}, error) {
		var cats []domain.Category
		if err := c.do(ctx, http.MethodGet, "/api/categories", nil, nil, &cats); err != nil {
			return nil, err
		}
		c.mu.Lock()
		c.cats = cats
		c.catsAt = time.Now()
		c.mu.Unlock()
		return cats, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]domain.Category), nil
}

// LoadByFilter fetches questions for an ad-hoc filtered run. It over-fetches,
// drops malformed entries, skips questions recorded in the used store, and
// widens the query once (clearing the used set) when the first pass comes up
// short. The returned list always has exactly cfg.TotalQuestions entries.
func (c *Client) LoadByFilter(ctx context.Context, cfg domain.Config) ([]domain.Question, error) {
	want := cfg.TotalQuestions

	usable, err := c.fetchFiltered(ctx, cfg, want*overfetchFactor)
	if err != nil {
		return nil, err
	}
	if len(usable) == 0 {
		return nil, domain.ErrEmptyResultSet
	}

	fresh := c.withoutUsed(ctx, usable)
	if len(fresh) < want {
		// The pool is nearly exhausted: forget what was played and take the
		// widened query as the new pool.
		if c.used != nil {
			_ = c.used.Clear(ctx)
		}
		usable, err = c.fetchFiltered(ctx, cfg, want*overfetchFactor*2)
		if err != nil {
			return nil, err
		}
		fresh = usable
	}
	if len(fresh) < want {
		return nil, domain.ErrEmptyResultSet
	}

	c.rnd.Shuffle(len(fresh), func(i, j int) { fresh[i], fresh[j] = fresh[j], fresh[i] })
	picked := fresh[:want]

	if c.used != nil {
		ids := make([]string, len(picked))
		for i, q := range picked {
			ids[i] = q.ID
		}
		_ = c.used.MarkUsed(ctx, ids)
	}
	return picked, nil
}

// LoadCuratedSet starts a server-tracked session from the persisted curated
// selection. The returned session ID must be closed with FinishSession once
// the run completes.
func (c *Client) LoadCuratedSet(ctx context.Context) (string, []domain.Question, error) {
	var payload struct {
		SessionID string         `json:"sessionId"`
		Questions []wireQuestion `json:"questions"`
	}
	if err := c.do(ctx, http.MethodPost, "/api/quiz/start", nil, struct{}{}, &payload); err != nil {
		return "", nil, err
	}
	if len(payload.Questions) == 0 {
		return "", nil, domain.ErrNoQuestionsSelected
	}
	questions := normalize(payload.Questions)
	if len(questions) == 0 {
		return "", nil, domain.ErrEmptyResultSet
	}
	return payload.SessionID, questions, nil
}

// LoadByID fetches a single question for the test/preview flow. A 404 here
// means exactly "no such question", so it maps to ErrNotFound; list and
// collection endpoints keep their FetchError.
func (c *Client) LoadByID(ctx context.Context, id string) (domain.Question, error) {
	var raw wireQuestion
	if err := c.do(ctx, http.MethodGet, "/api/questions/"+url.PathEscape(id), nil, nil, &raw); err != nil {
		var fe *domain.FetchError
		if errors.As(err, &fe) && fe.Status == http.StatusNotFound {
			return domain.Question{}, domain.ErrNotFound
		}
		return domain.Question{}, err
	}
	q := raw.toDomain()
	if !q.Valid() {
		return domain.Question{}, domain.ErrEmptyResultSet
	}
	return q, nil
}

// FinishSession closes a server-tracked session with the final score. Callers
// treat failure as telemetry loss, never as a reason to withhold the result.
func (c *Client) FinishSession(ctx context.Context, sessionID string, score int) error {
	body := map[string]int{"score": score}
	return c.do(ctx, http.MethodPost, "/api/quiz/"+url.PathEscape(sessionID)+"/finish", nil, body, nil)
}

// ListOptions filter and paginate the authoring question list.
type ListOptions struct {
	Limit      int
	Page       int
	Difficulty domain.Difficulty
	CategoryID int
}

// ListQuestions returns one page of questions plus the total count when the
// service reports it (0 otherwise).
func (c *Client) ListQuestions(ctx context.Context, opts ListOptions) ([]domain.Question, int, error) {
	query := url.Values{}
	if opts.Limit > 0 {
		query.Set("limit", strconv.Itoa(opts.Limit))
	}
	if opts.Page > 0 {
		query.Set("page", strconv.Itoa(opts.Page))
	}
	if opts.Difficulty != "" && opts.Difficulty != domain.DifficultyAny {
		query.Set("difficulty", string(opts.Difficulty))
	}
	if opts.CategoryID > 0 {
		query.Set("categoryId", strconv.Itoa(opts.CategoryID))
	}

	var raw json.RawMessage
	if err := c.do(ctx, http.MethodGet, "/api/questions", query, nil, &raw); err != nil {
		return nil, 0, err
	}
	list, total, err := decodeQuestionList(raw)
	if err != nil {
		return nil, 0, &domain.FetchError{Op: "list questions", Err: err}
	}
	return normalize(list), total, nil
}

// CreateQuestion adds a question through the authoring contract.
func (c *Client) CreateQuestion(ctx context.Context, q domain.Question) (domain.Question, error) {
	var raw wireQuestion
	if err := c.do(ctx, http.MethodPost, "/api/questions", nil, q, &raw); err != nil {
		return domain.Question{}, err
	}
	return raw.toDomain(), nil
}

// UpdateQuestion replaces a question by id.
func (c *Client) UpdateQuestion(ctx context.Context, id string, q domain.Question) (domain.Question, error) {
	var raw wireQuestion
	if err := c.do(ctx, http.MethodPut, "/api/questions/"+url.PathEscape(id), nil, q, &raw); err != nil {
		return domain.Question{}, err
	}
	return raw.toDomain(), nil
}

// DeleteQuestion removes a question by id.
func (c *Client) DeleteQuestion(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/questions/"+url.PathEscape(id), nil, nil, nil)
}

// Image is a candidate illustration for a question.
type Image struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

// QuestionImages lists candidate images for the authoring flow.
func (c *Client) QuestionImages(ctx context.Context, id string) ([]Image, error) {
	var images []Image
	err := c.do(ctx, http.MethodGet, "/api/questions/"+url.PathEscape(id)+"/images", nil, nil, &images)
	return images, err
}

// SaveSelected persists the curated question-id selection server-side.
func (c *Client) SaveSelected(ctx context.Context, ids []string) error {
	body := map[string][]string{"ids": ids}
	return c.do(ctx, http.MethodPost, "/api/questions/selected", nil, body, nil)
}

// ClearSelected drops the curated selection.
func (c *Client) ClearSelected(ctx context.Context) error {
	return c.do(ctx, http.MethodDelete, "/api/questions/selected", nil, nil, nil)
}

func (c *Client) fetchFiltered(ctx context.Context, cfg domain.Config, limit int) ([]domain.Question, error) {
	query := url.Values{}
	query.Set("limit", strconv.Itoa(limit))
	if cfg.Difficulty != "" && cfg.Difficulty != domain.DifficultyAny {
		query.Set("difficulty", string(cfg.Difficulty))
	}
	if cfg.CategoryID > 0 {
		query.Set("categoryId", strconv.Itoa(cfg.CategoryID))
	}

	var raw json.RawMessage
	if err := c.do(ctx, http.MethodGet, "/api/questions", query, nil, &raw); err != nil {
		return nil, err
	}
	list, _, err := decodeQuestionList(raw)
	if err != nil {
		return nil, &domain.FetchError{Op: "load questions", Err: err}
	}
	return normalize(list), nil
}

func (c *Client) withoutUsed(ctx context.Context, questions []domain.Question) []domain.Question {
	if c.used == nil {
		return questions
	}
	used, err := c.used.Used(ctx)
	if err != nil {
		// A broken store must not break the run; play without dedup.
		return questions
	}
	fresh := make([]domain.Question, 0, len(questions))
	for _, q := range questions {
		if _, seen := used[q.ID]; !seen {
			fresh = append(fresh, q)
		}
	}
	return fresh
}

// do performs one JSON round trip. Non-2xx responses become FetchError;
// callers that care about a specific status inspect it.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	op := method + " " + path

	reqURL := c.baseURL + path
	if len(query) > 0 {
		reqURL += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode %s body: %w", op, err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL, reader)
	if err != nil {
		return fmt.Errorf("build %s request: %w", op, err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return &domain.FetchError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &domain.FetchError{Op: op, Status: resp.StatusCode}
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &domain.FetchError{Op: op, Err: fmt.Errorf("decode response: %w", err)}
	}
	return nil
}
