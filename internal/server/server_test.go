package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/jonathan/bio-generator/internal/bios"
	"github.com/jonathan/bio-generator/internal/db"
	"github.com/jonathan/bio-generator/internal/server/ratelimit"
	"github.com/jonathan/bio-generator/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

const threeBios = "1. Alpha bio here 2. Beta bio here 3. Gamma bio here"

// stubClient answers every prompt with the same completion.
type stubClient struct {
	mu      sync.Mutex
	text    string
	err     error
	prompts []string
}

func (c *stubClient) GenerateContent(_ context.Context, prompt string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.prompts = append(c.prompts, prompt)
	return c.text, c.err
}

func (c *stubClient) Model() string { return "stub-model" }
func (c *stubClient) Close() error  { return nil }

func (c *stubClient) lastPrompt() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.prompts) == 0 {
		return ""
	}
	return c.prompts[len(c.prompts)-1]
}

type testEnv struct {
	server *Server
	client *stubClient
	store  *db.MemoryStore
	logs   *observer.ObservedLogs
}

func newTestEnv(t *testing.T, client *stubClient, rl *ratelimit.Config) *testEnv {
	t.Helper()
	core, logs := observer.New(zapcore.DebugLevel)
	logger := zap.New(core)
	store := db.NewMemoryStore()

	gen := bios.NewGenerator(client,
		bios.WithRecorder(store),
		bios.WithLogger(logger),
		bios.WithTimeout(5*time.Second))

	srv, err := New(Config{
		Port:      0,
		Generator: gen,
		Store:     store,
		RateLimit: rl,
		Logger:    logger,
	})
	require.NoError(t, err)
	t.Cleanup(srv.rateLimiter.Stop)

	return &testEnv{server: srv, client: client, store: store, logs: logs}
}

func (e *testEnv) do(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	e.server.Handler().ServeHTTP(rec, req)
	return rec
}

func submitForm(values url.Values) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

func postJSON(path, body string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func parseHTML(t *testing.T, rec *httptest.ResponseRecorder) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(rec.Body)
	require.NoError(t, err)
	return doc
}

func TestNew_RequiresGenerator(t *testing.T) {
	_, err := New(Config{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "generator is required")
}

func TestHandlePage_EmptyForm(t *testing.T) {
	env := newTestEnv(t, &stubClient{text: threeBios}, nil)

	rec := env.do(httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))

	doc := parseHTML(t, rec)
	assert.Equal(t, "0", doc.Find("#generated").Text())
	assert.Equal(t, "e.g. Amazon CEO", doc.Find("textarea#text").AttrOr("placeholder", ""))
	assert.Equal(t, "Pick Location", doc.Find("#location option[selected]").Text())
	assert.Equal(t, "Professional", doc.Find("#vibe option[selected]").Text())
	assert.Equal(t, "Japan 🇯🇵", doc.Find(`#location option[value="Japan"]`).Text())
	assert.Equal(t, 3, doc.Find("#vibe option").Length())
	assert.Equal(t, 0, doc.Find(".bio-card").Length())
	assert.Equal(t, 0, doc.Find("#bios").Length())
	_, disabled := doc.Find("#submit").Attr("disabled")
	assert.False(t, disabled)
	assert.Contains(t, doc.Find("#toast").Text(), "Bio copied to clipboard")
}

func TestHandlePage_UnknownPathIsNotFound(t *testing.T) {
	env := newTestEnv(t, &stubClient{text: threeBios}, nil)

	rec := env.do(httptest.NewRequest(http.MethodGet, "/nope", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandleSubmit_JapanFunny(t *testing.T) {
	env := newTestEnv(t, &stubClient{text: threeBios}, nil)

	rec := env.do(submitForm(url.Values{
		"text":     {"Amazon CEO"},
		"vibe":     {"Funny"},
		"location": {"Japan"},
	}))
	require.Equal(t, http.StatusOK, rec.Code)

	prompt := env.client.lastPrompt()
	assert.Contains(t, prompt, "funny Twitter biographies")
	assert.Contains(t, prompt, "Make them humorous.")
	assert.Contains(t, prompt, "Japan 🇯🇵")
	assert.Contains(t, prompt, "Amazon CEO.")

	doc := parseHTML(t, rec)
	assert.Equal(t, "Your generated bios", doc.Find("#bios h2").Text())
	cards := doc.Find("#bios .bio-card")
	require.Equal(t, 3, cards.Length())
	assert.Equal(t, "Alpha bio here", cards.Eq(0).Text())
	assert.Equal(t, "Beta bio here", cards.Eq(1).Text())
	assert.Equal(t, "Gamma bio here", cards.Eq(2).Text())
	assert.Equal(t, "1", cards.Eq(0).AttrOr("data-bio", ""))
	assert.Equal(t, 0, doc.Find(".warning").Length())
	assert.Equal(t, 0, doc.Find(".error").Length())
	// none of the stub bios carry the flag
	notes := doc.Find(".notes li")
	assert.Equal(t, 3, notes.Length())
	assert.Contains(t, notes.First().Text(), "does not include the 🇯🇵 flag")

	// form keeps the submitted values
	assert.Equal(t, "Amazon CEO", doc.Find("textarea#text").Text())
	assert.Equal(t, "Japan 🇯🇵", doc.Find("#location option[selected]").Text())
	assert.Equal(t, "Funny", doc.Find("#vibe option[selected]").Text())

	assert.Equal(t, "3", doc.Find("#generated").Text())
	n, err := env.store.CountBios(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
}

func TestHandleSubmit_PartialCompletionShowsWarning(t *testing.T) {
	env := newTestEnv(t, &stubClient{text: "1. Alpha bio here 3. Gamma bio here"}, nil)

	rec := env.do(submitForm(url.Values{"text": {"Baker"}}))
	require.Equal(t, http.StatusOK, rec.Code)

	doc := parseHTML(t, rec)
	assert.Equal(t, 2, doc.Find(".bio-card").Length())
	assert.Contains(t, doc.Find(".warning").Text(), "Only some of your bios")
	assert.Equal(t, "2", doc.Find("#generated").Text())

	recent, err := env.store.RecentGenerations(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, recent, 1)
	assert.True(t, recent[0].Degraded)
}

func TestHandleSubmit_UnparseableCompletion(t *testing.T) {
	env := newTestEnv(t, &stubClient{text: "I cannot help with that."}, nil)

	rec := env.do(submitForm(url.Values{"text": {"Baker"}}))
	require.Equal(t, http.StatusBadGateway, rec.Code)

	doc := parseHTML(t, rec)
	assert.Equal(t, 0, doc.Find(".bio-card").Length())
	assert.Contains(t, doc.Find(".error").Text(), "could not be read")
	assert.Equal(t, "0", doc.Find("#generated").Text())
}

func TestHandleSubmit_CompletionFailure(t *testing.T) {
	env := newTestEnv(t, &stubClient{err: errors.New("quota exceeded")}, nil)

	rec := env.do(submitForm(url.Values{"text": {"Baker"}, "vibe": {"Casual"}}))
	require.Equal(t, http.StatusBadGateway, rec.Code)

	doc := parseHTML(t, rec)
	assert.Equal(t, 0, doc.Find(".bio-card").Length())
	assert.Contains(t, doc.Find(".error").Text(), "Could not reach the bio generator")
	_, disabled := doc.Find("#submit").Attr("disabled")
	assert.False(t, disabled, "submit must be enabled again after a failure")

	logged := env.logs.FilterMessage("Error calling Gemini API").All()
	require.Len(t, logged, 1)
	assert.Equal(t, zapcore.ErrorLevel, logged[0].Level)
}

func TestHandleSubmit_InvalidVibe(t *testing.T) {
	client := &stubClient{text: threeBios}
	env := newTestEnv(t, client, nil)

	rec := env.do(submitForm(url.Values{"text": {"Baker"}, "vibe": {"Angry"}}))
	require.Equal(t, http.StatusBadRequest, rec.Code)

	doc := parseHTML(t, rec)
	assert.Contains(t, doc.Find(".error").Text(), "unknown vibe")
	assert.Equal(t, "Baker", doc.Find("textarea#text").Text())
	_, disabled := doc.Find("#submit").Attr("disabled")
	assert.False(t, disabled)
	assert.Empty(t, client.prompts)
}

func TestHandleGenerate(t *testing.T) {
	env := newTestEnv(t, &stubClient{text: threeBios}, nil)

	rec := env.do(postJSON("/api/bios", `{"text":"Amazon CEO","vibe":"Casual","location":"Japan"}`))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var resp types.GenerateResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.ID)
	require.Len(t, resp.Bios, 3)
	assert.Equal(t, "Beta bio here", resp.Bios[1].Text)
	assert.False(t, resp.Degraded)
	assert.Empty(t, resp.Warning)
	assert.Contains(t, resp.Prompt, "relaxed")
	assert.Len(t, resp.Violations, 3)
}

func TestHandleGenerate_Degraded(t *testing.T) {
	env := newTestEnv(t, &stubClient{text: "1. Alpha bio here"}, nil)

	rec := env.do(postJSON("/api/bios", `{"text":"Baker"}`))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp types.GenerateResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Len(t, resp.Bios, 1)
	assert.True(t, resp.Degraded)
	assert.Contains(t, resp.Warning, "found 1 of 3")
}

func TestHandleGenerate_Errors(t *testing.T) {
	tests := []struct {
		name       string
		client     *stubClient
		body       string
		wantStatus int
		wantError  string
	}{
		{
			name:       "unknown field",
			client:     &stubClient{text: threeBios},
			body:       `{"text":"Baker","mood":"sad"}`,
			wantStatus: http.StatusBadRequest,
			wantError:  "validation failed",
		},
		{
			name:       "not json",
			client:     &stubClient{text: threeBios},
			body:       `text=Baker`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "unknown vibe",
			client:     &stubClient{text: threeBios},
			body:       `{"text":"Baker","vibe":"Angry"}`,
			wantStatus: http.StatusBadRequest,
			wantError:  "vibe",
		},
		{
			name:       "text too long",
			client:     &stubClient{text: threeBios},
			body:       `{"text":"` + strings.Repeat("a", 1001) + `"}`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "body too large",
			client:     &stubClient{text: threeBios},
			body:       `{"text":"` + strings.Repeat("a", maxBodyBytes) + `"}`,
			wantStatus: http.StatusRequestEntityTooLarge,
		},
		{
			name:       "upstream failure",
			client:     &stubClient{err: errors.New("boom")},
			body:       `{"text":"Baker"}`,
			wantStatus: http.StatusBadGateway,
			wantError:  "the bio generator is unavailable",
		},
		{
			name:       "no bios",
			client:     &stubClient{text: "nothing numbered"},
			body:       `{"text":"Baker"}`,
			wantStatus: http.StatusBadGateway,
			wantError:  "unreadable response",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t, tt.client, nil)

			rec := env.do(postJSON("/api/bios", tt.body))
			assert.Equal(t, tt.wantStatus, rec.Code)

			var resp map[string]string
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.NotEmpty(t, resp["error"])
			if tt.wantError != "" {
				assert.Contains(t, resp["error"], tt.wantError)
			}
			assert.NotContains(t, resp["error"], "boom")
		})
	}
}

func TestHandleGenerateStream(t *testing.T) {
	env := newTestEnv(t, &stubClient{text: threeBios}, nil)

	rec := env.do(postJSON("/api/bios/stream", `{"text":"Baker","vibe":"Funny","location":"Japan"}`))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/event-stream", rec.Header().Get("Content-Type"))

	var states []stateEvent
	var complete map[string]string
	for _, block := range strings.Split(strings.TrimSpace(rec.Body.String()), "\n\n") {
		lines := strings.SplitN(block, "\n", 2)
		require.Len(t, lines, 2)
		data := strings.TrimPrefix(lines[1], "data: ")
		switch strings.TrimPrefix(lines[0], "event: ") {
		case "state":
			var ev stateEvent
			require.NoError(t, json.Unmarshal([]byte(data), &ev))
			states = append(states, ev)
		case "complete":
			require.NoError(t, json.Unmarshal([]byte(data), &complete))
		}
	}

	require.Len(t, states, 2)
	assert.True(t, states[0].Busy)
	assert.Equal(t, "submitting", string(states[0].Phase))
	assert.False(t, states[1].Busy)
	assert.Equal(t, "results", string(states[1].Phase))
	assert.Len(t, states[1].Bios, 3)
	assert.Empty(t, states[0].Violations)
	require.Len(t, states[1].Violations, 3)
	assert.Equal(t, "missing_flag", states[1].Violations[0].Type)
	assert.Equal(t, "results", complete["phase"])
	assert.NotEmpty(t, complete["id"])
}

func TestHandleGenerateStream_Failure(t *testing.T) {
	env := newTestEnv(t, &stubClient{err: errors.New("boom")}, nil)

	rec := env.do(postJSON("/api/bios/stream", `{"text":"Baker"}`))
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `"phase":"failed"`)
	assert.Contains(t, body, "Could not reach the bio generator")
	assert.Contains(t, body, "event: complete")
}

func TestHandleRecent(t *testing.T) {
	env := newTestEnv(t, &stubClient{text: threeBios}, nil)

	rec := env.do(httptest.NewRequest(http.MethodGet, "/api/bios/recent", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())

	for range 3 {
		require.Equal(t, http.StatusOK, env.do(postJSON("/api/bios", `{"text":"Baker"}`)).Code)
	}

	rec = env.do(httptest.NewRequest(http.MethodGet, "/api/bios/recent?limit=2", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var gens []types.Generation
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &gens))
	assert.Len(t, gens, 2)

	rec = env.do(httptest.NewRequest(http.MethodGet, "/api/bios/recent?limit=zero", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleOptions(t *testing.T) {
	env := newTestEnv(t, &stubClient{text: threeBios}, nil)

	rec := env.do(httptest.NewRequest(http.MethodGet, "/api/options", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp types.OptionsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, []types.Vibe{types.VibeProfessional, types.VibeCasual, types.VibeFunny}, resp.Vibes)
	assert.NotEmpty(t, resp.Countries)

	var japan *types.CountryOption
	for i := range resp.Countries {
		if resp.Countries[i].Name == "Japan" {
			japan = &resp.Countries[i]
		}
	}
	require.NotNil(t, japan)
	assert.Equal(t, "🇯🇵", japan.Flag)
}

func TestHandleStats(t *testing.T) {
	env := newTestEnv(t, &stubClient{text: threeBios}, nil)
	require.Equal(t, http.StatusOK, env.do(postJSON("/api/bios", `{"text":"Baker"}`)).Code)

	rec := env.do(httptest.NewRequest(http.MethodGet, "/api/stats", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"generated":3}`, rec.Body.String())
}

func TestHandleHealth(t *testing.T) {
	env := newTestEnv(t, &stubClient{text: threeBios}, nil)

	rec := env.do(httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestRequestIDHeader(t *testing.T) {
	env := newTestEnv(t, &stubClient{text: threeBios}, nil)

	rec := env.do(httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("X-Request-ID", "0b6f5e5c-3c9a-4d4e-9a4e-2f1d8c7b6a50")
	rec = env.do(req)
	assert.Equal(t, "0b6f5e5c-3c9a-4d4e-9a4e-2f1d8c7b6a50", rec.Header().Get("X-Request-ID"))

	req = httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("X-Request-ID", "not a uuid")
	rec = env.do(req)
	assert.NotEqual(t, "not a uuid", rec.Header().Get("X-Request-ID"))
}

func TestRequestLogging(t *testing.T) {
	env := newTestEnv(t, &stubClient{text: threeBios}, nil)
	env.do(httptest.NewRequest(http.MethodGet, "/api/options", nil))

	logged := env.logs.FilterMessage("Request completed").All()
	require.Len(t, logged, 1)
	fields := logged[0].ContextMap()
	assert.Equal(t, "/api/options", fields["path"])
	assert.Equal(t, int64(http.StatusOK), fields["status"])
	assert.NotEmpty(t, fields["request_id"])
}

func TestCORS_Preflight(t *testing.T) {
	env := newTestEnv(t, &stubClient{text: threeBios}, nil)

	req := httptest.NewRequest(http.MethodOptions, "/api/bios", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	rec := env.do(req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestRateLimit(t *testing.T) {
	rl := ratelimit.DefaultConfig()
	rl.EndpointConfigs = ratelimit.GenerateEndpointConfigs(1, time.Hour, 1)
	env := newTestEnv(t, &stubClient{text: threeBios}, rl)

	rec := env.do(postJSON("/api/bios", `{"text":"Baker"}`))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "1", rec.Header().Get("X-RateLimit-Limit"))

	rec = env.do(postJSON("/api/bios", `{"text":"Baker"}`))
	require.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))

	var resp map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "rate_limit_exceeded", resp["error"])

	// the stream calls Gemini too and has its own bucket under the same limit
	rec = env.do(postJSON("/api/bios/stream", `{"text":"Baker"}`))
	require.Equal(t, http.StatusOK, rec.Code)
	rec = env.do(postJSON("/api/bios/stream", `{"text":"Baker"}`))
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)

	// health is never limited
	for range 5 {
		assert.Equal(t, http.StatusOK, env.do(httptest.NewRequest(http.MethodGet, "/health", nil)).Code)
	}
}
