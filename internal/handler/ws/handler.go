package ws

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	chathandler "github.com/zhouzirui/companion/backend/internal/handler/chat"
	"github.com/zhouzirui/companion/backend/internal/model/chat"
)

const (
	readTimeout  = 60 * time.Second
	pingInterval = 54 * time.Second
	writeTimeout = 10 * time.Second
	maxFrameSize = 64 << 10
)

// Chatter runs one chat turn.
type Chatter interface {
	Chat(ctx context.Context, req chat.Request) (chat.Response, error)
}

// ErrorFrame is sent in place of a ChatResponse when a turn fails.
type ErrorFrame struct {
	Error string `json:"error"`
	Code  int    `json:"code"`
}

// Handler WebSocket聊天处理器，每一帧都是一次独立的 /chat 请求
type Handler struct {
	chatter  Chatter
	upgrader websocket.Upgrader
}

// New 创建WebSocket处理器
func New(chatter Chatter) *Handler {
	return &Handler{
		chatter: chatter,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
}

// RegisterRoutes 注册WebSocket路由
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/ws/chat", h.handleWebSocket)
}

func (h *Handler) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written the HTTP error.
		log.Warn().Str("component", "ws").Err(err).Msg("upgrade failed")
		return
	}
	defer conn.Close()

	logger := log.With().Str("component", "ws").Str("conn_id", uuid.NewString()).Logger()
	logger.Info().Str("remote", r.RemoteAddr).Msg("connection opened")
	defer logger.Info().Msg("connection closed")

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	conn.SetReadLimit(maxFrameSize)
	_ = conn.SetReadDeadline(time.Now().Add(readTimeout))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(readTimeout))
	})

	go pingLoop(ctx, conn)

	for {
		var req chat.Request
		if err := conn.ReadJSON(&req); err != nil {
			var closeErr *websocket.CloseError
			switch {
			case errors.As(err, &closeErr):
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
					logger.Warn().Err(err).Msg("read error")
				}
				return
			case isFrameDecodeError(err):
				if !h.write(conn, logger, ErrorFrame{Error: "invalid request body", Code: http.StatusBadRequest}) {
					return
				}
				continue
			default:
				logger.Debug().Err(err).Msg("read stopped")
				return
			}
		}
		_ = conn.SetReadDeadline(time.Now().Add(readTimeout))

		resp, err := h.chatter.Chat(ctx, req)
		if err != nil {
			code, message := chathandler.ChatErrorStatus(err)
			if !h.write(conn, logger, ErrorFrame{Error: message, Code: code}) {
				return
			}
			continue
		}
		if !h.write(conn, logger, resp) {
			return
		}
	}
}

func isFrameDecodeError(err error) bool {
	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	return errors.As(err, &syntaxErr) || errors.As(err, &typeErr) || errors.Is(err, io.ErrUnexpectedEOF)
}

func (h *Handler) write(conn *websocket.Conn, logger zerolog.Logger, v any) bool {
	_ = conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	if err := conn.WriteJSON(v); err != nil {
		logger.Warn().Err(err).Msg("write failed")
		return false
	}
	return true
}

// pingLoop 定期发送ping消息。WriteControl 可与其他写操作并发调用。
func pingLoop(ctx context.Context, conn *websocket.Conn) {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeTimeout)); err != nil {
				return
			}
		}
	}
}
