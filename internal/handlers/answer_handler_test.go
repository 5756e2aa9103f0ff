package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/voxlore/voxlore/internal/models"
)

// stubAnswerService returns a canned answer or error and captures the query
type stubAnswerService struct {
	answer *models.Answer
	err    error
	query  *models.Query
	calls  int
}

func (s *stubAnswerService) Answer(ctx context.Context, query *models.Query) (*models.Answer, error) {
	s.calls++
	s.query = query
	if s.err != nil {
		return nil, s.err
	}
	return s.answer, nil
}

func postAnswer(t *testing.T, handler *AnswerHandler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest("POST", "/api/answer", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	handler.AnswerQuestionHandler(w, req)
	return w
}

func TestAnswerHandlerSuccess(t *testing.T) {
	stub := &stubAnswerService{
		answer: &models.Answer{
			Text:           "The creator talked about cats in two videos.",
			Model:          "gpt-4.1",
			Mode:           models.ModeRAG,
			Tone:           models.ToneCreator,
			Provider:       "openai",
			CitedRecordIDs: []string{"v1", "v2"},
		},
	}
	handler := NewAnswerHandler(stub)

	w := postAnswer(t, handler, `{"question":"What about cats?","mode":"rag","model":"gpt-4.1","top_k":10}`)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var got models.Answer
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatalf("response is not valid JSON: %v", err)
	}
	if got.Text != stub.answer.Text || got.Model != "gpt-4.1" {
		t.Errorf("unexpected answer payload: %+v", got)
	}
	if len(got.CitedRecordIDs) != 2 {
		t.Errorf("expected 2 cited records, got %v", got.CitedRecordIDs)
	}

	if stub.query == nil {
		t.Fatal("service never received the query")
	}
	if stub.query.Mode != models.ModeRAG || stub.query.TopK != 10 {
		t.Errorf("query fields lost in translation: %+v", stub.query)
	}
}

func TestAnswerHandlerInvalidJSON(t *testing.T) {
	stub := &stubAnswerService{}
	handler := NewAnswerHandler(stub)

	w := postAnswer(t, handler, `{"question": `)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for broken JSON, got %d", w.Code)
	}
	if stub.calls != 0 {
		t.Error("service should not be called for broken JSON")
	}
}

func TestAnswerHandlerMissingQuestion(t *testing.T) {
	stub := &stubAnswerService{}
	handler := NewAnswerHandler(stub)

	w := postAnswer(t, handler, `{"mode":"full"}`)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for missing question, got %d", w.Code)
	}
	if stub.calls != 0 {
		t.Error("service should not be called without a question")
	}
}

func TestAnswerHandlerRejectsBadEnums(t *testing.T) {
	stub := &stubAnswerService{}
	handler := NewAnswerHandler(stub)

	for _, body := range []string{
		`{"question":"q","mode":"hybrid"}`,
		`{"question":"q","tone":"sarcastic"}`,
		`{"question":"q","top_k":0}`,
		`{"question":"q","top_k":9999}`,
	} {
		w := postAnswer(t, handler, body)
		if w.Code != http.StatusBadRequest {
			t.Errorf("body %s: expected 400, got %d", body, w.Code)
		}
	}
	if stub.calls != 0 {
		t.Error("service should not be called for invalid requests")
	}
}

func TestAnswerHandlerMethodNotAllowed(t *testing.T) {
	handler := NewAnswerHandler(&stubAnswerService{})

	req := httptest.NewRequest("GET", "/api/answer", nil)
	w := httptest.NewRecorder()
	handler.AnswerQuestionHandler(w, req)

	if w.Code != http.StatusMethodNotAllowed {
		t.Errorf("expected 405, got %d", w.Code)
	}
}

func TestAnswerHandlerErrorMapping(t *testing.T) {
	tests := []struct {
		err    error
		status int
	}{
		{models.ErrInvalidRequest, http.StatusBadRequest},
		{models.ErrModelMismatch, http.StatusBadRequest},
		{models.ErrIndexUnavailable, http.StatusServiceUnavailable},
		{models.ErrProviderRateLimited, http.StatusTooManyRequests},
		{models.ErrProviderTimeout, http.StatusGatewayTimeout},
		{models.ErrProviderFailed, http.StatusBadGateway},
	}

	for _, tt := range tests {
		handler := NewAnswerHandler(&stubAnswerService{err: tt.err})
		w := postAnswer(t, handler, `{"question":"What about cats?"}`)
		if w.Code != tt.status {
			t.Errorf("%v: expected %d, got %d", tt.err, tt.status, w.Code)
		}
		if !strings.Contains(w.Body.String(), "error") {
			t.Errorf("%v: error body missing error field: %s", tt.err, w.Body.String())
		}
	}
}
