package handler

import (
	"relaychat/internal/app/archive"
	"relaychat/internal/app/chat"
	"relaychat/internal/app/message"
	"relaychat/internal/app/profile"
	"relaychat/internal/configs"
)

type AppDeps struct {
	Hub      *chat.Hub
	Config   *configs.AppConfig
	Messages message.Store
	Profiles profile.Store
	Archive  archive.ArchiveService
}
