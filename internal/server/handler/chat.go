package handler

import (
	"strings"
	"time"

	"github.com/beatline/beatline/internal/protocol"
	"github.com/beatline/beatline/internal/types"
)

const maxChatLength = 200

// handleChat 房间内聊天，发送者身份由服务端填充
func (h *Handler) handleChat(client types.ClientInterface, msg *protocol.Message) {
	payload, err := protocol.ParsePayload[protocol.ChatPayload](msg)
	if err != nil {
		client.SendMessage(protocol.NewErrorMessage(protocol.ErrCodeInvalidMsg))
		return
	}

	content := strings.TrimSpace(payload.Content)
	if content == "" {
		return
	}
	if runes := []rune(content); len(runes) > maxChatLength {
		content = string(runes[:maxChatLength])
	}

	if allowed, reason := h.chatLimiter.AllowChat(client.GetID()); !allowed {
		client.SendMessage(protocol.NewErrorMessageWithText(protocol.ErrCodeRateLimit, reason))
		return
	}

	room := h.roomManager.GetRoom(client.GetRoom())
	if room == nil {
		client.SendMessage(protocol.NewErrorMessage(protocol.ErrCodeNotInRoom))
		return
	}

	sender := room.GetPlayerInfo(client.GetID())
	senderName := sender.Name
	if senderName == "" {
		senderName = client.GetName()
	}

	room.BroadcastMessage(protocol.MustNewMessage(protocol.MsgChat, protocol.ChatPayload{
		SenderID:   client.GetID(),
		SenderName: senderName,
		Content:    content,
		Time:       time.Now().UnixMilli(),
	}))
}
