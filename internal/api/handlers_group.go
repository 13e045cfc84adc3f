package api

import "Tasbih/internal/api/handler"

// HandlersGroup 封装了所有已初始化的 Handler 实例
type HandlersGroup struct {
	ChallengeHandler *handler.ChallengeHandler
	ProgressHandler  *handler.ProgressHandler
	StatsHandler     *handler.StatsHandler
	NoticeHandler    *handler.NoticeHandler
	WSHandler        *handler.WsHandler
}
