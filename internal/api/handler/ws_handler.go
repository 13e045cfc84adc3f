package handler

import (
	"Tasbih/internal/pkg/consts"
	"Tasbih/internal/pkg/redis"
	"Tasbih/internal/service"
	"context"
	log "log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/goccy/go-json"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

type WsHandler struct {
	progressSvc service.ProgressService
}

func NewWsHandler(progressSvc service.ProgressService) *WsHandler {
	return &WsHandler{progressSvc: progressSvc}
}

type liveCountFrame struct {
	ChallengeID uint64 `json:"challenge_id"`
	TotalCount  int64  `json:"total_count"`
}

// LiveCount 协作挑战共享计数实时推送。
// 连接先下发一帧当前值，之后订阅 Redis 频道转发增量。
func (s *WsHandler) LiveCount(c *gin.Context) {
	challengeID, err := strconv.ParseUint(c.Param("challenge_id"), 10, 64)
	if err != nil {
		c.Status(http.StatusBadRequest)
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error("WS 协议升级失败", "err", err)
		return
	}
	defer func() {
		_ = conn.Close()
	}()

	// 首帧：当前共享计数
	stats, err := s.progressSvc.GetCollaborativeStats(context.Background(), challengeID)
	if err != nil {
		log.Warn("获取协作计数失败", "challengeID", challengeID, "err", err)
		return
	}
	first, _ := json.Marshal(liveCountFrame{ChallengeID: challengeID, TotalCount: stats.TotalCount})
	if err = conn.WriteMessage(websocket.TextMessage, first); err != nil {
		return
	}

	channel := consts.ChallengeLiveKey + strconv.FormatUint(challengeID, 10)
	pubsub := redis.Subscribe(context.Background(), channel)
	if pubsub == nil {
		log.Warn("Redis 订阅不可用，实时推送关闭", "challengeID", challengeID)
		return
	}
	defer func() {
		_ = pubsub.Close()
	}()

	log.Info("实时计数 WS 连接已建立", "challengeID", challengeID)

	stopChan := make(chan struct{})

	// 读循环：监听客户端主动断开
	go func() {
		for {
			_, _, err := conn.ReadMessage()
			if err != nil {
				close(stopChan)
				return
			}
		}
	}()

	// 写循环：监听 Redis 并推送至客户端
	redisCh := pubsub.Channel()
	for {
		select {
		case msg := <-redisCh:
			total, parseErr := strconv.ParseInt(msg.Payload, 10, 64)
			if parseErr != nil {
				continue
			}
			frame, _ := json.Marshal(liveCountFrame{ChallengeID: challengeID, TotalCount: total})
			_ = conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err = conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				log.Error("WS 推送失败", "challengeID", challengeID, "err", err)
				return
			}
		case <-stopChan:
			log.Info("实时计数 WS 连接已断开", "challengeID", challengeID)
			return
		}
	}
}
