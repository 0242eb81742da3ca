package http_test

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/aretw0/triage"
	"github.com/aretw0/triage/internal/retry"
	"github.com/aretw0/triage/internal/testutils"
	triagehttp "github.com/aretw0/triage/pkg/adapters/http"
	"github.com/aretw0/triage/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	t   *testing.T
	srv *httptest.Server
	svc *triage.Service
}

func newFixture(t *testing.T, reasoner *testutils.Reasoner, opts ...triagehttp.Option) *fixture {
	t.Helper()
	streams := triagehttp.NewStreamManager(nil)
	svc, err := triage.New(reasoner, testutils.SeededReferences(t),
		triage.WithLifecycleHooks(streams.Hooks()),
		triage.WithRetryPolicy(retry.None()),
	)
	require.NoError(t, err)

	opts = append([]triagehttp.Option{triagehttp.WithStreams(streams)}, opts...)
	srv := httptest.NewServer(triagehttp.NewHandler(svc, opts...))
	t.Cleanup(func() {
		srv.Close()
		_ = svc.Close(context.Background())
	})
	return &fixture{t: t, srv: srv, svc: svc}
}

func benign() *testutils.Reasoner {
	return testutils.Canned(testutils.BenignExtraction, testutils.BenignClassification, testutils.BenignRouting)
}

// do sends a request and decodes the JSON response into out when non-nil.
func (f *fixture) do(method, path, body string, out any, headers ...string) int {
	f.t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, f.srv.URL+path, r)
	require.NoError(f.t, err)
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}

	resp, err := f.srv.Client().Do(req)
	require.NoError(f.t, err)
	defer resp.Body.Close()
	if out != nil {
		require.NoError(f.t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

type apiError struct {
	Error string `json:"error"`
	Code  string `json:"code"`
	Hint  string `json:"hint"`
}

func (f *fixture) completeIntake() string {
	f.t.Helper()
	var sess struct {
		SessionID string `json:"session_id"`
	}
	require.Equal(f.t, http.StatusOK, f.do("POST", "/api/session", "", &sess))

	for _, msg := range append([]string{"en"}, testutils.BenignAnswers()...) {
		body, _ := json.Marshal(map[string]string{"session_id": sess.SessionID, "message": msg})
		require.Equal(f.t, http.StatusOK, f.do("POST", "/api/chat", string(body), nil))
	}
	return sess.SessionID
}

func TestHealth(t *testing.T) {
	f := newFixture(t, benign(), triagehttp.WithAPIKey("secret"))

	var body map[string]string
	assert.Equal(t, http.StatusOK, f.do("GET", "/api/health", "", &body))
	assert.Equal(t, "healthy", body["status"])
	assert.Equal(t, triage.Version, body["version"])
}

func TestSessionAndChat(t *testing.T) {
	f := newFixture(t, benign())

	var sess struct {
		SessionID           string `json:"session_id"`
		IsLanguageSelection bool   `json:"is_language_selection"`
		LanguageOptions     []struct {
			Code string `json:"code"`
		} `json:"language_options"`
		Prompt string `json:"prompt"`
	}
	require.Equal(t, http.StatusOK, f.do("POST", "/api/session", "", &sess))
	assert.True(t, sess.IsLanguageSelection)
	assert.Len(t, sess.LanguageOptions, 4)
	assert.NotEmpty(t, sess.Prompt)

	var chat struct {
		QuestionNumber int    `json:"question_number"`
		NextQuestion   string `json:"next_question"`
		IsComplete     bool   `json:"is_complete"`
	}
	status := f.do("POST", "/api/chat", `{"session_id": "`+sess.SessionID+`", "message": "pt-BR"}`, &chat)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, 1, chat.QuestionNumber)
	assert.NotEmpty(t, chat.NextQuestion)
	assert.False(t, chat.IsComplete)

	var state struct {
		CurrentQuestion int    `json:"current_question"`
		Language        string `json:"language"`
		AnswersCount    int    `json:"answers_count"`
	}
	require.Equal(t, http.StatusOK, f.do("GET", "/api/session/"+sess.SessionID, "", &state))
	assert.Equal(t, 1, state.CurrentQuestion)
	assert.Equal(t, "pt-BR", state.Language)
	assert.Zero(t, state.AnswersCount)
}

func TestChat_Errors(t *testing.T) {
	f := newFixture(t, benign())
	id := f.completeIntake()

	tests := []struct {
		name   string
		body   string
		status int
		code   string
	}{
		{"malformed body", `{"session_id":`, http.StatusBadRequest, "invalid_request"},
		{"missing message", `{"session_id": "x"}`, http.StatusBadRequest, "invalid_request"},
		{"unknown field", `{"session_id": "x", "message": "hi", "extra": 1}`, http.StatusBadRequest, "invalid_request"},
		{"unknown session", `{"session_id": "missing", "message": "hi"}`, http.StatusNotFound, "session_not_found"},
		{"complete session", `{"session_id": "` + id + `", "message": "hi"}`, http.StatusConflict, "session_complete"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var e apiError
			assert.Equal(t, tt.status, f.do("POST", "/api/chat", tt.body, &e))
			assert.Equal(t, tt.code, e.Code)
		})
	}
}

func TestChat_InvalidLanguage(t *testing.T) {
	f := newFixture(t, benign())

	var sess struct {
		SessionID string `json:"session_id"`
	}
	require.Equal(t, http.StatusOK, f.do("POST", "/api/session", "", &sess))

	var e apiError
	assert.Equal(t, http.StatusBadRequest, f.do("POST", "/api/chat", `{"session_id": "`+sess.SessionID+`", "message": "xx"}`, &e))
	assert.Equal(t, "invalid_language", e.Code)
	assert.Equal(t, "fix_request", e.Hint)
}

func TestProcessAndResult(t *testing.T) {
	f := newFixture(t, benign())
	id := f.completeIntake()

	var started struct {
		Status string `json:"status"`
		JobID  string `json:"job_id"`
	}
	require.Equal(t, http.StatusAccepted, f.do("POST", "/api/process", `{"session_id": "`+id+`"}`, &started))
	assert.Equal(t, "processing", started.Status)
	require.NotEmpty(t, started.JobID)

	var res struct {
		Status string                 `json:"status"`
		Result *domain.PipelineResult `json:"result"`
	}
	require.Eventually(t, func() bool {
		return f.do("GET", "/api/result/"+started.JobID, "", &res) == http.StatusOK &&
			res.Status != "processing"
	}, 5*time.Second, 10*time.Millisecond)

	assert.Equal(t, "completed", res.Status)
	require.NotNil(t, res.Result)
	assert.Equal(t, domain.SeverityGreen, res.Result.Classification.Level)

	resp, err := f.srv.Client().Get(f.srv.URL + "/api/result/" + started.JobID + "/graph")
	require.NoError(t, err)
	defer resp.Body.Close()
	diagram, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(diagram), "class routing visited;")
	assert.Contains(t, string(diagram), "class done current;")
}

func TestProcess_FailedJobHidesModelOutput(t *testing.T) {
	f := newFixture(t, testutils.Canned("I am not JSON, sorry", testutils.BenignClassification, testutils.BenignRouting))
	id := f.completeIntake()

	var started struct {
		JobID string `json:"job_id"`
	}
	require.Equal(t, http.StatusAccepted, f.do("POST", "/api/process", `{"session_id": "`+id+`"}`, &started))

	var raw map[string]any
	require.Eventually(t, func() bool {
		raw = nil
		f.do("GET", "/api/result/"+started.JobID, "", &raw)
		return raw["status"] != "processing"
	}, 5*time.Second, 10*time.Millisecond)

	assert.Equal(t, "error", raw["status"])
	failure, ok := raw["error"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "extracting", failure["stage"])
	assert.Equal(t, "restart_session", failure["hint"])
	b, _ := json.Marshal(raw)
	assert.NotContains(t, string(b), "not JSON, sorry")
}

func TestProcess_Errors(t *testing.T) {
	f := newFixture(t, benign())

	var sess struct {
		SessionID string `json:"session_id"`
	}
	require.Equal(t, http.StatusOK, f.do("POST", "/api/session", "", &sess))

	var e apiError
	assert.Equal(t, http.StatusConflict, f.do("POST", "/api/process", `{"session_id": "`+sess.SessionID+`"}`, &e))
	assert.Equal(t, "session_not_complete", e.Code)

	assert.Equal(t, http.StatusNotFound, f.do("GET", "/api/result/nope", "", &e))
	assert.Equal(t, "job_not_found", e.Code)

	assert.Equal(t, http.StatusNotFound, f.do("GET", "/api/session/nope", "", &e))
	assert.Equal(t, "session_not_found", e.Code)
}

func TestAPIKey(t *testing.T) {
	f := newFixture(t, benign(), triagehttp.WithAPIKey("secret"))

	var e apiError
	assert.Equal(t, http.StatusUnauthorized, f.do("POST", "/api/session", "", &e))
	assert.Equal(t, "unauthorized", e.Code)

	assert.Equal(t, http.StatusUnauthorized, f.do("POST", "/api/session", "", nil, "X-API-Key", "wrong"))
	assert.Equal(t, http.StatusOK, f.do("POST", "/api/session", "", nil, "X-API-Key", "secret"))
	assert.Equal(t, http.StatusOK, f.do("POST", "/api/session", "", nil, "Authorization", "Bearer secret"))
}

func TestCORS(t *testing.T) {
	f := newFixture(t, benign(), triagehttp.WithCORSOrigins("https://chat.example.org"))

	req, err := http.NewRequest(http.MethodOptions, f.srv.URL+"/api/chat", nil)
	require.NoError(t, err)
	req.Header.Set("Origin", "https://chat.example.org")
	resp, err := f.srv.Client().Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.Equal(t, "https://chat.example.org", resp.Header.Get("Access-Control-Allow-Origin"))

	req.Header.Set("Origin", "https://evil.example")
	resp, err = f.srv.Client().Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Empty(t, resp.Header.Get("Access-Control-Allow-Origin"))
}

func TestMetricsMount(t *testing.T) {
	metrics := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, "triage_up 1\n")
	})
	f := newFixture(t, benign(), triagehttp.WithMetrics(metrics))

	resp, err := f.srv.Client().Get(f.srv.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	assert.Equal(t, "triage_up 1\n", string(body))
}

func TestSubscribeEvents(t *testing.T) {
	reasoner := testutils.NewReasoner(map[domain.Stage][]testutils.Reply{
		domain.StageExtracting:  {{Text: testutils.BenignExtraction, Delay: 100 * time.Millisecond}},
		domain.StageClassifying: {{Text: testutils.BenignClassification}},
		domain.StageRouting:     {{Text: testutils.BenignRouting}},
	})
	f := newFixture(t, reasoner)
	id := f.completeIntake()

	var started struct {
		JobID string `json:"job_id"`
	}
	require.Equal(t, http.StatusAccepted, f.do("POST", "/api/process", `{"session_id": "`+id+`"}`, &started))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, "GET", f.srv.URL+"/api/result/"+started.JobID+"/events", nil)
	require.NoError(t, err)
	resp, err := f.srv.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	var events []string
	scanner := bufio.NewScanner(resp.Body)
	for scanner.Scan() {
		if line := scanner.Text(); strings.HasPrefix(line, "data: ") {
			events = append(events, strings.TrimPrefix(line, "data: "))
		}
	}

	require.NotEmpty(t, events)
	last := events[len(events)-1]
	assert.Contains(t, last, `"status":"completed"`)
	assert.Contains(t, strings.Join(events, "\n"), `"stage":"routing"`)
}
