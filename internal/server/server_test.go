package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/jd-refiner/internal/llm"
	"github.com/jonathan/jd-refiner/internal/session"
)

// scriptedClient pops one reply per GenerateContent call.
type scriptedClient struct {
	replies []string
	calls   int
}

func (c *scriptedClient) GenerateContent(context.Context, string, llm.ModelTier) (string, error) {
	if c.calls >= len(c.replies) {
		return "", fmt.Errorf("unscripted call %d", c.calls)
	}
	r := c.replies[c.calls]
	c.calls++
	return r, nil
}

func (c *scriptedClient) GetModel(llm.ModelTier) string { return "stub-model" }
func (c *scriptedClient) Close() error                  { return nil }

func newTestServer(t *testing.T, replies ...string) *Server {
	t.Helper()
	srv, err := New(Config{Port: 0, Client: &scriptedClient{replies: replies}})
	require.NoError(t, err)
	return srv
}

func doRequest(t *testing.T, srv *Server, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	rec := httptest.NewRecorder()
	srv.httpServer.Handler.ServeHTTP(rec, req)
	return rec
}

func decodeSnapshot(t *testing.T, rec *httptest.ResponseRecorder) session.Snapshot {
	t.Helper()
	var snap session.Snapshot
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &snap))
	return snap
}

func createSession(t *testing.T, srv *Server) string {
	t.Helper()
	rec := doRequest(t, srv, http.MethodPost, "/sessions", nil)
	require.Equal(t, http.StatusCreated, rec.Code)

	var resp CreateSessionResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.SessionID)
	assert.Equal(t, "none", resp.Round)
	return resp.SessionID
}

func TestNewRequiresClient(t *testing.T) {
	_, err := New(Config{Port: 0})
	assert.Error(t, err)
}

func TestHealth(t *testing.T) {
	srv := newTestServer(t)
	rec := doRequest(t, srv, http.MethodGet, "/health", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status": "ok"}`, rec.Body.String())
}

func TestCreateAndGetSession(t *testing.T) {
	srv := newTestServer(t)
	id := createSession(t, srv)

	rec := doRequest(t, srv, http.MethodGet, "/sessions/"+id, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	snap := decodeSnapshot(t, rec)
	assert.Equal(t, "none", snap.Round)
}

func TestGetSessionErrors(t *testing.T) {
	srv := newTestServer(t)

	rec := doRequest(t, srv, http.MethodGet, "/sessions/not-a-uuid", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doRequest(t, srv, http.MethodGet, "/sessions/00000000-0000-0000-0000-000000000000", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSubmitDescription(t *testing.T) {
	srv := newTestServer(t,
		`{"Job Title": "Senior Go Engineer"}`,
		"1. What is the salary?\n2. Where is the office?",
	)
	id := createSession(t, srv)

	rec := doRequest(t, srv, http.MethodPost, "/sessions/"+id+"/description",
		DescriptionRequest{Text: "Senior Go Engineer, remote, 5 yrs exp"})
	require.Equal(t, http.StatusOK, rec.Code)

	snap := decodeSnapshot(t, rec)
	assert.Equal(t, "gap", snap.Round)
	assert.Equal(t, "Senior Go Engineer", snap.Entities["Job Title"])
	assert.Len(t, snap.Questions, 2)
	assert.Equal(t, "1. What is the salary?", snap.ActiveQuestion)
}

func TestSubmitDescriptionValidation(t *testing.T) {
	srv := newTestServer(t)
	id := createSession(t, srv)

	// Neither text nor URL.
	rec := doRequest(t, srv, http.MethodPost, "/sessions/"+id+"/description", DescriptionRequest{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// Malformed URL.
	rec = doRequest(t, srv, http.MethodPost, "/sessions/"+id+"/description",
		DescriptionRequest{JobURL: "not a url"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// Malformed body.
	req := httptest.NewRequest(http.MethodPost, "/sessions/"+id+"/description",
		bytes.NewReader([]byte("{broken")))
	recRaw := httptest.NewRecorder()
	srv.httpServer.Handler.ServeHTTP(recRaw, req)
	assert.Equal(t, http.StatusBadRequest, recRaw.Code)
}

func TestAnswerFlow(t *testing.T) {
	srv := newTestServer(t,
		`{"Job Title": "Engineer"}`,
		"1. What is the salary?\n2. Where is the office?",
	)
	id := createSession(t, srv)

	rec := doRequest(t, srv, http.MethodPost, "/sessions/"+id+"/description",
		DescriptionRequest{Text: "posting"})
	require.Equal(t, http.StatusOK, rec.Code)

	index := 0
	rec = doRequest(t, srv, http.MethodPost, "/sessions/"+id+"/answers",
		AnswerRequest{Round: "gap", Index: &index, Text: "$180k"})
	require.Equal(t, http.StatusOK, rec.Code)

	snap := decodeSnapshot(t, rec)
	assert.Equal(t, "$180k", snap.Answers["answer_0"])
	assert.Equal(t, 1, snap.Cursor)
	assert.False(t, snap.RoundComplete)

	index = 1
	rec = doRequest(t, srv, http.MethodPost, "/sessions/"+id+"/answers",
		AnswerRequest{Round: "gap", Index: &index, Text: "Remote"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, decodeSnapshot(t, rec).RoundComplete)
}

func TestAnswerMismatch(t *testing.T) {
	srv := newTestServer(t,
		`{"Job Title": "Engineer"}`,
		"1. Only question?",
	)
	id := createSession(t, srv)

	rec := doRequest(t, srv, http.MethodPost, "/sessions/"+id+"/description",
		DescriptionRequest{Text: "posting"})
	require.Equal(t, http.StatusOK, rec.Code)

	// Wrong round tag.
	index := 0
	rec = doRequest(t, srv, http.MethodPost, "/sessions/"+id+"/answers",
		AnswerRequest{Round: "follow_up", Index: &index, Text: "answer"})
	assert.Equal(t, http.StatusConflict, rec.Code)

	// Stale index.
	index = 5
	rec = doRequest(t, srv, http.MethodPost, "/sessions/"+id+"/answers",
		AnswerRequest{Round: "gap", Index: &index, Text: "answer"})
	assert.Equal(t, http.StatusConflict, rec.Code)

	// Unknown round tag fails validation.
	index = 0
	rec = doRequest(t, srv, http.MethodPost, "/sessions/"+id+"/answers",
		AnswerRequest{Round: "bogus", Index: &index, Text: "answer"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestFullWorkflowOverHTTP(t *testing.T) {
	srv := newTestServer(t,
		`{"Job Title": "Engineer"}`, // extraction
		"1. Gap question?",          // gap questions
		`{"Job Title": "Engineer", "Job Summary": "Refined"}`, // gap refine
		"0. Generalized question?",                            // generalized questions
		"1. Follow-up question?",                              // follow-up questions
		`{"Job Title": "Engineer (Final)"}`,                   // final refine
	)
	id := createSession(t, srv)

	rec := doRequest(t, srv, http.MethodPost, "/sessions/"+id+"/description",
		DescriptionRequest{Text: "posting"})
	require.Equal(t, http.StatusOK, rec.Code)

	answer := func(round string, idx int, text string) {
		t.Helper()
		rec := doRequest(t, srv, http.MethodPost, "/sessions/"+id+"/answers",
			AnswerRequest{Round: round, Index: &idx, Text: text})
		require.Equal(t, http.StatusOK, rec.Code)
	}

	answer("gap", 0, "gap answer")

	rec = doRequest(t, srv, http.MethodPost, "/sessions/"+id+"/advance", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	snap := decodeSnapshot(t, rec)
	assert.Equal(t, "generalized", snap.Round)
	assert.Equal(t, "Refined", snap.Generalized["Job Summary"])

	answer("generalized", 0, "generalized answer")

	rec = doRequest(t, srv, http.MethodPost, "/sessions/"+id+"/advance", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "follow_up", decodeSnapshot(t, rec).Round)

	answer("follow_up", 0, "follow-up answer")

	// No fourth round.
	rec = doRequest(t, srv, http.MethodPost, "/sessions/"+id+"/advance", nil)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = doRequest(t, srv, http.MethodPost, "/sessions/"+id+"/finalize", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	snap = decodeSnapshot(t, rec)
	assert.Equal(t, "final", snap.Round)
	assert.Equal(t, "Engineer (Final)", snap.Final["Job Title"])
	assert.Equal(t, "gap answer", snap.Answers["answer_0"])

	// Finalized sessions reject further events.
	rec = doRequest(t, srv, http.MethodPost, "/sessions/"+id+"/finalize", nil)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestAdvanceBeforeDescription(t *testing.T) {
	srv := newTestServer(t)
	id := createSession(t, srv)

	rec := doRequest(t, srv, http.MethodPost, "/sessions/"+id+"/advance", nil)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = doRequest(t, srv, http.MethodPost, "/sessions/"+id+"/finalize", nil)
	assert.Equal(t, http.StatusConflict, rec.Code)
}
