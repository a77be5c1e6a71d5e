package handler

import (
	"context"
	"time"

	"github.com/beatline/beatline/internal/protocol"
	"github.com/beatline/beatline/internal/types"
)

const storeTimeout = 5 * time.Second

// handleGetStats 查询个人战绩。战绩按稳定客户端标识记录，
// 没有标识的玩家退回用连接 ID 查询。
func (h *Handler) handleGetStats(client types.ClientInterface, _ *protocol.Message) {
	if h.store == nil {
		client.SendMessage(protocol.NewErrorMessageWithText(protocol.ErrCodeUnknown, "统计功能不可用"))
		return
	}

	key := client.GetID()
	playerName := client.GetName()
	if sess := h.sessionManager.GetSession(client.GetID()); sess != nil {
		name, clientID, _ := sess.Info()
		if clientID != "" {
			key = clientID
		}
		if name != "" {
			playerName = name
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
	defer cancel()

	stats, err := h.store.LoadStats(ctx, key)
	if err != nil {
		client.SendMessage(protocol.NewErrorMessageWithText(protocol.ErrCodeUnknown, "查询战绩失败"))
		return
	}

	result := protocol.StatsResultPayload{
		PlayerID:   client.GetID(),
		PlayerName: playerName,
	}
	if stats != nil {
		result.TotalGames = stats.TotalGames
		result.Wins = stats.Wins
		result.Placements = stats.Placements
		result.CorrectPlaced = stats.CorrectPlaced
		if stats.Placements > 0 {
			result.Accuracy = float64(stats.CorrectPlaced) / float64(stats.Placements)
		}
	}

	client.SendMessage(protocol.MustNewMessage(protocol.MsgStatsResult, result))
}

// handleGetLeaderboard 查询排行榜
func (h *Handler) handleGetLeaderboard(client types.ClientInterface, msg *protocol.Message) {
	if h.store == nil {
		client.SendMessage(protocol.NewErrorMessageWithText(protocol.ErrCodeUnknown, "排行榜不可用"))
		return
	}

	offset, limit := 0, 10
	if payload, err := protocol.ParsePayload[protocol.GetLeaderboardPayload](msg); err == nil {
		if payload.Offset > 0 {
			offset = payload.Offset
		}
		if payload.Limit > 0 && payload.Limit <= 100 {
			limit = payload.Limit
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
	defer cancel()

	entries, err := h.store.Leaderboard(ctx, offset, limit)
	if err != nil {
		client.SendMessage(protocol.NewErrorMessageWithText(protocol.ErrCodeUnknown, "查询排行榜失败"))
		return
	}

	client.SendMessage(protocol.MustNewMessage(protocol.MsgLeaderboardResult, protocol.LeaderboardResultPayload{
		Entries: entries,
	}))
}
