package handler

import (
	"log"
	"time"

	"github.com/beatline/beatline/internal/protocol"
	"github.com/beatline/beatline/internal/types"
)

// handlePing 心跳，附带时间戳方便客户端估算延迟
func (h *Handler) handlePing(client types.ClientInterface, msg *protocol.Message) {
	var clientTS int64
	if payload, err := protocol.ParsePayload[protocol.PingPayload](msg); err == nil {
		clientTS = payload.Timestamp
	}

	client.SendMessage(protocol.MustNewMessage(protocol.MsgPong, protocol.PongPayload{
		ClientTimestamp: clientTS,
		ServerTimestamp: time.Now().UnixMilli(),
	}))
}

// handleReconnect 断线重连：校验令牌后把旧会话迁移到新连接，
// 如果旧会话还在房间里，顺带把玩家挂回房间并下发最新快照。
func (h *Handler) handleReconnect(client types.ClientInterface, msg *protocol.Message) {
	payload, err := protocol.ParsePayload[protocol.ReconnectPayload](msg)
	if err != nil {
		client.SendMessage(protocol.NewErrorMessage(protocol.ErrCodeInvalidMsg))
		return
	}

	if !h.sessionManager.CanReconnect(payload.Token, payload.PlayerID) {
		client.SendMessage(protocol.NewErrorMessageWithText(protocol.ErrCodeUnknown, "重连令牌无效或已过期"))
		return
	}

	sess := h.sessionManager.RebindSession(payload.PlayerID, client.GetID())
	if sess == nil {
		client.SendMessage(protocol.NewErrorMessageWithText(protocol.ErrCodeUnknown, "会话不存在"))
		return
	}

	// 新连接自带的临时会话在重绑时被作废，旧会话的令牌继续生效
	playerName, clientID, roomCode := sess.Info()

	reconnected := protocol.ReconnectedPayload{
		PlayerID:   client.GetID(),
		PlayerName: playerName,
	}

	if roomCode != "" {
		if r, _, err := h.roomManager.JoinRoom(client, roomCode, playerName, clientID); err == nil {
			state := r.StateSnapshot()
			reconnected.RoomCode = roomCode
			reconnected.State = &state
		} else {
			// 房间在掉线期间已经解散
			h.sessionManager.SetRoom(client.GetID(), "")
		}
	}

	client.SendMessage(protocol.MustNewMessage(protocol.MsgReconnected, reconnected))
	log.Printf("📶 玩家 %s 重连成功 (旧连接 %s)", playerName, payload.PlayerID)
}
