package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/replywatch/replywatch/internal/daemon/storage"
	"github.com/replywatch/replywatch/internal/daemon/store"
	"github.com/replywatch/replywatch/pkg/models"
)

func newTestServer(t *testing.T) (*Server, *store.Store) {
	t.Helper()
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	entry := logrus.NewEntry(logger)

	st, err := store.New(storage.New(filepath.Join(t.TempDir(), "conversations.yml")), entry)
	require.NoError(t, err)

	srv := New(entry)
	srv.SetStore(st)
	srv.SetRunningConfig(&RunningConfig{
		QuietPeriod:   2 * time.Second,
		PreviewLength: 50,
		AlertsEnabled: true,
		SoundEnabled:  true,
		StartedAt:     time.Now(),
	})
	return srv, st
}

func doRequest(t *testing.T, srv *Server, method, path string, body interface{}) *httptest.ResponseRecorder {
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
	srv.Handler().ServeHTTP(rec, req)
	return rec
}

func decodeAck(t *testing.T, rec *httptest.ResponseRecorder) models.Ack {
	t.Helper()
	var ack models.Ack
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &ack))
	return ack
}

func TestHealthEndpoint(t *testing.T) {
	srv, _ := newTestServer(t)
	rec := doRequest(t, srv, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
}

func TestGetConversations(t *testing.T) {
	srv, st := newTestServer(t)
	_, err := st.BeginConversation("conv_1", "prompt", "tab-1")
	require.NoError(t, err)

	rec := doRequest(t, srv, http.MethodGet, "/api/conversations", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var conversations []*models.Conversation
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &conversations))
	require.Len(t, conversations, 1)
	assert.Equal(t, "conv_1", conversations[0].ID)
}

func TestDeleteConversation(t *testing.T) {
	srv, st := newTestServer(t)
	_, err := st.BeginConversation("conv_1", "prompt", "tab-1")
	require.NoError(t, err)

	rec := doRequest(t, srv, http.MethodDelete, "/api/conversations/conv_1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, decodeAck(t, rec).Success)

	_, ok := st.Get("conv_1")
	assert.False(t, ok)
}

func TestDeleteUnknownConversationAcksFailure(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := doRequest(t, srv, http.MethodDelete, "/api/conversations/ghost", nil)
	// The protocol acknowledges with success=false rather than an HTTP error.
	require.Equal(t, http.StatusOK, rec.Code)
	ack := decodeAck(t, rec)
	assert.False(t, ack.Success)
	assert.NotEmpty(t, ack.Error)
}

func TestEditedContentEndpoints(t *testing.T) {
	srv, st := newTestServer(t)
	_, err := st.BeginConversation("conv_1", "prompt", "tab-1")
	require.NoError(t, err)
	_, _, err = st.CompleteConversation("conv_1", "original")
	require.NoError(t, err)

	rec := doRequest(t, srv, http.MethodPut, "/api/conversations/conv_1/edited", map[string]string{"content": "edited"})
	require.True(t, decodeAck(t, rec).Success)

	conv, _ := st.Get("conv_1")
	require.NotNil(t, conv.EditedContent)
	assert.Equal(t, "edited", *conv.EditedContent)

	rec = doRequest(t, srv, http.MethodDelete, "/api/conversations/conv_1/edited", nil)
	require.True(t, decodeAck(t, rec).Success)
	conv, _ = st.Get("conv_1")
	assert.Nil(t, conv.EditedContent)
}

func TestEditedContentUnknownID(t *testing.T) {
	srv, _ := newTestServer(t)
	rec := doRequest(t, srv, http.MethodPut, "/api/conversations/ghost/edited", map[string]string{"content": "x"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, decodeAck(t, rec).Success)
}

func TestPromptCRUD(t *testing.T) {
	srv, _ := newTestServer(t)

	// Create
	rec := doRequest(t, srv, http.MethodPost, "/api/prompts", map[string]string{
		"title":   "Summarize",
		"content": "Summarize the following.",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	var created models.PromptTemplate
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	require.NotEmpty(t, created.ID)

	// List
	rec = doRequest(t, srv, http.MethodGet, "/api/prompts", nil)
	var prompts []*models.PromptTemplate
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &prompts))
	require.Len(t, prompts, 1)

	// Update
	rec = doRequest(t, srv, http.MethodPut, "/api/prompts/"+created.ID, map[string]string{
		"title":   "Summarize briefly",
		"content": "TL;DR the following.",
	})
	require.True(t, decodeAck(t, rec).Success)

	// Pin toggle
	rec = doRequest(t, srv, http.MethodPost, "/api/prompts/"+created.ID+"/pin", nil)
	var pinResp map[string]bool
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &pinResp))
	assert.True(t, pinResp["pinned"])

	// Delete
	rec = doRequest(t, srv, http.MethodDelete, "/api/prompts/"+created.ID, nil)
	require.True(t, decodeAck(t, rec).Success)

	rec = doRequest(t, srv, http.MethodDelete, "/api/prompts/"+created.ID, nil)
	assert.False(t, decodeAck(t, rec).Success)
}

func TestSoundEndpoints(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := doRequest(t, srv, http.MethodPut, "/api/sound", map[string]string{"sound": "c291bmQ="})
	require.True(t, decodeAck(t, rec).Success)

	rec = doRequest(t, srv, http.MethodGet, "/api/sound", nil)
	var resp map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "c291bmQ=", resp["sound"])
}

func TestGetRunningConfig(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := doRequest(t, srv, http.MethodGet, "/api/config", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var cfg RunningConfig
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &cfg))
	assert.Equal(t, 2*time.Second, cfg.QuietPeriod)
	assert.Equal(t, 50, cfg.PreviewLength)
}

func TestInvalidBodyIsBadRequest(t *testing.T) {
	srv, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/api/prompts", bytes.NewReader([]byte("{not json")))
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
