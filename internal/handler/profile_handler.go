/*
Package handler provides the HTTP handler function for push profile registration.
*/
package handler

import (
	"net/http"

	"relaychat/internal/app/profile"
	"relaychat/internal/pkg/errs"
	"relaychat/internal/pkg/logx"
	"relaychat/internal/pkg/req"
	"relaychat/internal/pkg/resp"
)

type UpsertProfileInput struct {
	UserID      string `json:"user_id"`
	DisplayName string `json:"display_name"`
	DeviceToken string `json:"device_token,omitempty"`
}

// HandleUpsertProfile registers or replaces the push profile used by the
// notification gateway when the user is offline.
func HandleUpsertProfile(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var input UpsertProfileInput

		if customErr := req.BindJSON(r, &input); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		if input.UserID == "" || input.DisplayName == "" {
			resp.RespondError(w, r, errs.NewError(errs.ErrInvalidParams))
			return
		}

		rec := profile.Record{
			UserID:      input.UserID,
			DisplayName: input.DisplayName,
			DeviceToken: input.DeviceToken,
		}

		if err := deps.Profiles.Upsert(r.Context(), rec); err != nil {
			logx.Error(err, "Profile upsert failed", "user_id", input.UserID)
			resp.RespondError(w, r, errs.NewError(errs.ErrUnknown, err))
			return
		}

		resp.RespondSuccess(w, r, map[string]any{
			"user_id": input.UserID,
		})
	}
}
