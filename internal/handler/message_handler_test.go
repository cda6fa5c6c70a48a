package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"relaychat/internal/app/chat"
	"relaychat/internal/app/message"
	"relaychat/internal/pkg/errs"
	"relaychat/internal/pkg/resp"
)

func seedConversation(td *testDeps) {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	td.messages.records = []message.Record{
		{ID: uuid.New(), Sender: "alice", Recipient: "bob", Body: "first", CreatedAt: base},
		{ID: uuid.New(), Sender: "bob", Recipient: "alice", Body: "second", CreatedAt: base.Add(time.Minute)},
		{ID: uuid.New(), Sender: "alice", Recipient: "carol", Body: "other pair", CreatedAt: base.Add(2 * time.Minute)},
	}
}

func doRequest(t *testing.T, td *testDeps, method, target string) *httptest.ResponseRecorder {
	t.Helper()

	router := Router(td.deps)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(method, target, nil))
	return rr
}

func TestGetMessages_ReturnsPairHistoryNewestFirst(t *testing.T) {
	td := newTestDeps()
	seedConversation(td)

	rr := doRequest(t, td, http.MethodGet, "/messages/alice/bob")
	require.Equal(t, http.StatusOK, rr.Code)

	var body struct {
		Data   []chat.ChatPayload `json:"data"`
		Status bool               `json:"status"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))

	assert.True(t, body.Status)
	require.Len(t, body.Data, 2)
	assert.Equal(t, "second", body.Data[0].Message)
	assert.Equal(t, "first", body.Data[1].Message)
}

func TestGetMessages_HonorsLimit(t *testing.T) {
	td := newTestDeps()
	seedConversation(td)

	rr := doRequest(t, td, http.MethodGet, "/messages/alice/bob?limit=1")
	require.Equal(t, http.StatusOK, rr.Code)

	var body struct {
		Data []chat.ChatPayload `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))

	require.Len(t, body.Data, 1)
	assert.Equal(t, "second", body.Data[0].Message)
}

func TestGetMessages_UnparsableLimitFallsBackToDefault(t *testing.T) {
	td := newTestDeps()
	seedConversation(td)

	rr := doRequest(t, td, http.MethodGet, "/messages/alice/bob?limit=banana")
	require.Equal(t, http.StatusOK, rr.Code)

	var body struct {
		Data []chat.ChatPayload `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Len(t, body.Data, 2)
}

func TestGetMessages_EmptyHistoryIsNotFound(t *testing.T) {
	td := newTestDeps()

	rr := doRequest(t, td, http.MethodGet, "/messages/alice/bob")
	require.Equal(t, http.StatusNotFound, rr.Code)

	var body resp.JSONResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Equal(t, errs.ErrNoMessagesFound, body.Code)
}

func TestExportTranscript_UploadsAndPresigns(t *testing.T) {
	td := newTestDeps()
	seedConversation(td)

	rr := doRequest(t, td, http.MethodPost, "/messages/alice/bob/export")
	require.Equal(t, http.StatusOK, rr.Code)

	var body struct {
		Data struct {
			Key         string `json:"key"`
			DownloadURL string `json:"download_url"`
			Count       int    `json:"count"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))

	assert.Equal(t, 2, body.Data.Count)
	assert.Contains(t, body.Data.Key, "transcripts/alice-bob-")
	assert.Contains(t, body.Data.DownloadURL, body.Data.Key)

	// The stored transcript decodes back into the exported messages.
	blob, ok := td.archive.uploads[body.Data.Key]
	require.True(t, ok)

	var doc struct {
		UserA    string             `json:"user_a"`
		UserB    string             `json:"user_b"`
		Messages []chat.ChatPayload `json:"messages"`
	}
	require.NoError(t, json.Unmarshal(blob, &doc))
	assert.Equal(t, "alice", doc.UserA)
	assert.Len(t, doc.Messages, 2)
}

func TestExportTranscript_EmptyHistoryIsNotFound(t *testing.T) {
	td := newTestDeps()

	rr := doRequest(t, td, http.MethodPost, "/messages/alice/bob/export")
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Empty(t, td.archive.uploads)
}

func TestExportTranscript_UploadFailure(t *testing.T) {
	td := newTestDeps()
	seedConversation(td)
	td.archive.uploadErr = assert.AnError

	rr := doRequest(t, td, http.MethodPost, "/messages/alice/bob/export")
	require.Equal(t, http.StatusInternalServerError, rr.Code)

	var body resp.JSONResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Equal(t, errs.ErrArchiveFailed, body.Code)
}
