package handler

import (
	"github.com/beatline/beatline/internal/protocol"
	"github.com/beatline/beatline/internal/types"
)

// handleStartGame 开始游戏（仅房主）
func (h *Handler) handleStartGame(client types.ClientInterface, _ *protocol.Message) {
	if err := h.roomManager.StartGame(client); err != nil {
		sendError(client, err)
	}
}

// handleNextCard 进入下一回合并抽牌
func (h *Handler) handleNextCard(client types.ClientInterface, _ *protocol.Message) {
	if err := h.roomManager.NextCard(client); err != nil {
		sendError(client, err)
	}
}

// handlePlaceCard 提交摆放位置
func (h *Handler) handlePlaceCard(client types.ClientInterface, msg *protocol.Message) {
	payload, err := protocol.ParsePayload[protocol.PlaceCardPayload](msg)
	if err != nil {
		client.SendMessage(protocol.NewErrorMessage(protocol.ErrCodeInvalidMsg))
		return
	}

	if err := h.roomManager.PlaceCard(client, payload.TeamID, payload.Position); err != nil {
		sendError(client, err)
	}
}

// handleRevealCard 揭晓摆放结果
func (h *Handler) handleRevealCard(client types.ClientInterface, _ *protocol.Message) {
	if err := h.roomManager.RevealCard(client); err != nil {
		sendError(client, err)
	}
}
