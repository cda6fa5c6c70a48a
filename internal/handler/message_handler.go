/*
Package handler provides HTTP handler functions for the chat history read path
and transcript export.
*/
package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"relaychat/internal/app/archive"
	"relaychat/internal/app/chat"
	"relaychat/internal/app/message"
	"relaychat/internal/pkg/errs"
	"relaychat/internal/pkg/logx"
	"relaychat/internal/pkg/resp"
)

// exportHistoryLimit caps how many records one transcript export covers.
const exportHistoryLimit = 1000

// historyResponse is the wire shape of a successful history query.
type historyResponse struct {
	Data   []chat.ChatPayload `json:"data"`
	Status bool               `json:"status"`
}

// toPayloads converts stored records to their wire representation.
func toPayloads(records []message.Record) []chat.ChatPayload {
	payloads := make([]chat.ChatPayload, 0, len(records))
	for _, rec := range records {
		payloads = append(payloads, chat.ChatPayload{
			Sender:    rec.Sender,
			Recipient: rec.Recipient,
			Message:   rec.Body,
			Timestamp: rec.CreatedAt,
		})
	}
	return payloads
}

// HandleGetMessages returns the stored messages exchanged between the two
// users named in the path, newest first. An unparsable or missing limit falls
// back to the default. An empty result is reported as not found.
func HandleGetMessages(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userA := chi.URLParam(r, "user_a")
		userB := chi.URLParam(r, "user_b")

		if userA == "" || userB == "" {
			resp.RespondError(w, r, errs.NewError(errs.ErrInvalidParams))
			return
		}

		limit := message.DefaultHistoryLimit
		if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
			if parsed, err := strconv.Atoi(limitStr); err == nil && parsed > 0 {
				limit = parsed
			}
		}

		records, err := deps.Messages.History(r.Context(), userA, userB, limit)
		if err != nil {
			logx.Error(err, "History query failed", "user_a", userA, "user_b", userB)
			resp.RespondError(w, r, errs.NewError(errs.ErrUnknown, err))
			return
		}

		if len(records) == 0 {
			resp.RespondError(w, r, errs.NewError(errs.ErrNoMessagesFound))
			return
		}

		resp.RespondJSON(w, r, http.StatusOK, historyResponse{
			Data:   toPayloads(records),
			Status: true,
		})
	}
}

// transcript is the JSON document written to object storage by an export.
type transcript struct {
	UserA      string             `json:"user_a"`
	UserB      string             `json:"user_b"`
	ExportedAt time.Time          `json:"exported_at"`
	Messages   []chat.ChatPayload `json:"messages"`
}

// HandleExportTranscript writes the conversation between the two users named
// in the path to object storage and returns a presigned download URL.
func HandleExportTranscript(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userA := chi.URLParam(r, "user_a")
		userB := chi.URLParam(r, "user_b")

		if userA == "" || userB == "" {
			resp.RespondError(w, r, errs.NewError(errs.ErrInvalidParams))
			return
		}

		records, err := deps.Messages.History(r.Context(), userA, userB, exportHistoryLimit)
		if err != nil {
			logx.Error(err, "History query failed for export", "user_a", userA, "user_b", userB)
			resp.RespondError(w, r, errs.NewError(errs.ErrUnknown, err))
			return
		}

		if len(records) == 0 {
			resp.RespondError(w, r, errs.NewError(errs.ErrNoMessagesFound))
			return
		}

		doc := transcript{
			UserA:      userA,
			UserB:      userB,
			ExportedAt: time.Now().UTC(),
			Messages:   toPayloads(records),
		}

		blob, err := json.Marshal(doc)
		if err != nil {
			logx.Error(err, "Failed to encode transcript")
			resp.RespondError(w, r, errs.NewError(errs.ErrUnknown, err))
			return
		}

		key := fmt.Sprintf("transcripts/%s-%s-%s.json", userA, userB, uuid.New())

		if err := deps.Archive.UploadTranscript(r.Context(), key, blob); err != nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrArchiveFailed))
			return
		}

		url, err := deps.Archive.PresignDownload(r.Context(), key, archive.PresignedURLDuration)
		if err != nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrArchiveFailed))
			return
		}

		resp.RespondSuccess(w, r, map[string]any{
			"key":          key,
			"download_url": url,
			"count":        len(records),
		})
	}
}
