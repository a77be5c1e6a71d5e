package handler

import (
	"errors"
	"log"

	"github.com/beatline/beatline/internal/apperrors"
	"github.com/beatline/beatline/internal/game/room"
	"github.com/beatline/beatline/internal/protocol"
	"github.com/beatline/beatline/internal/server/session"
	"github.com/beatline/beatline/internal/server/storage"
	"github.com/beatline/beatline/internal/types"
)

// handlerFunc 消息处理函数签名
type handlerFunc func(client types.ClientInterface, msg *protocol.Message)

// Deps 处理器依赖
type Deps struct {
	Server         types.ServerInterface
	RoomManager    *room.Manager
	SessionManager *session.SessionManager
	ChatLimiter    types.ChatLimiter
	Store          *storage.RedisStore
}

// Handler 消息分发器
type Handler struct {
	server         types.ServerInterface
	roomManager    *room.Manager
	sessionManager *session.SessionManager
	chatLimiter    types.ChatLimiter
	store          *storage.RedisStore

	handlers map[protocol.MessageType]handlerFunc
}

// NewHandler 创建消息处理器
func NewHandler(deps Deps) *Handler {
	h := &Handler{
		server:         deps.Server,
		roomManager:    deps.RoomManager,
		sessionManager: deps.SessionManager,
		chatLimiter:    deps.ChatLimiter,
		store:          deps.Store,
	}
	h.initHandlers()
	return h
}

// initHandlers 注册消息处理函数
func (h *Handler) initHandlers() {
	h.handlers = map[protocol.MessageType]handlerFunc{
		// 连接
		protocol.MsgPing:      h.handlePing,
		protocol.MsgReconnect: h.handleReconnect,

		// 房间
		protocol.MsgCreateRoom:  h.handleCreateRoom,
		protocol.MsgJoinRoom:    h.handleJoinRoom,
		protocol.MsgSyncRoom:    h.handleSyncRoom,
		protocol.MsgLeaveRoom:   h.handleLeaveRoom,
		protocol.MsgAssignTeam:  h.handleAssignTeam,
		protocol.MsgUpdateRules: h.handleUpdateRules,

		// 游戏
		protocol.MsgStartGame:  h.handleStartGame,
		protocol.MsgNextCard:   h.handleNextCard,
		protocol.MsgPlaceCard:  h.handlePlaceCard,
		protocol.MsgRevealCard: h.handleRevealCard,

		// 信息查询
		protocol.MsgGetStats:       h.handleGetStats,
		protocol.MsgGetLeaderboard: h.handleGetLeaderboard,
		protocol.MsgChat:           h.handleChat,
	}
}

// HandleMessage 分发消息到对应的处理函数
func (h *Handler) HandleMessage(client types.ClientInterface, msg *protocol.Message) {
	fn, ok := h.handlers[msg.Type]
	if !ok {
		log.Printf("未知消息类型: %s (来自 %s)", msg.Type, client.GetID())
		client.SendMessage(protocol.NewErrorMessage(protocol.ErrCodeInvalidMsg))
		return
	}
	fn(client, msg)
}

// sendError 将错误翻译成错误消息下发。
// 业务错误携带自己的错误码，其余归为未知错误。
func sendError(client types.ClientInterface, err error) {
	var gameErr *apperrors.GameError
	if errors.As(err, &gameErr) {
		client.SendMessage(protocol.NewErrorMessageWithText(gameErr.Code, gameErr.Message))
		return
	}
	client.SendMessage(protocol.NewErrorMessageWithText(protocol.ErrCodeUnknown, err.Error()))
}
