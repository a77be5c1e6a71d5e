package client

import (
	"errors"
	"time"

	"github.com/beatline/beatline/internal/protocol"
)

// 对服务端操作的便捷封装

// CreateRoom 创建房间
func (c *Client) CreateRoom(hostName string) error {
	return c.SendMessage(protocol.MustNewMessage(protocol.MsgCreateRoom, protocol.CreateRoomPayload{
		HostName: hostName,
		ClientID: c.ClientID,
	}))
}

// JoinRoom 加入房间
func (c *Client) JoinRoom(roomCode, playerName string) error {
	return c.SendMessage(protocol.MustNewMessage(protocol.MsgJoinRoom, protocol.JoinRoomPayload{
		RoomCode:   roomCode,
		PlayerName: playerName,
		ClientID:   c.ClientID,
	}))
}

// LeaveRoom 离开房间
func (c *Client) LeaveRoom() error {
	return c.SendMessage(protocol.MustNewMessage(protocol.MsgLeaveRoom, nil))
}

// SyncRoom 请求房间快照
func (c *Client) SyncRoom() error {
	return c.SendMessage(protocol.MustNewMessage(protocol.MsgSyncRoom, nil))
}

// AssignTeam 选择队伍，teamID 为空表示退出当前队伍
func (c *Client) AssignTeam(teamID string) error {
	return c.SendMessage(protocol.MustNewMessage(protocol.MsgAssignTeam, protocol.AssignTeamPayload{
		TeamID: teamID,
	}))
}

// UpdateRules 修改房间规则（只发送要修改的字段）
func (c *Client) UpdateRules(patch protocol.UpdateRulesPayload) error {
	return c.SendMessage(protocol.MustNewMessage(protocol.MsgUpdateRules, patch))
}

// StartGame 开始游戏（仅房主）
func (c *Client) StartGame() error {
	return c.SendMessage(protocol.MustNewMessage(protocol.MsgStartGame, nil))
}

// NextCard 进入下一回合并抽牌
func (c *Client) NextCard() error {
	return c.SendMessage(protocol.MustNewMessage(protocol.MsgNextCard, nil))
}

// PlaceCard 提交摆放位置
func (c *Client) PlaceCard(teamID string, position int) error {
	return c.SendMessage(protocol.MustNewMessage(protocol.MsgPlaceCard, protocol.PlaceCardPayload{
		TeamID:   teamID,
		Position: position,
	}))
}

// RevealCard 揭晓摆放结果
func (c *Client) RevealCard() error {
	return c.SendMessage(protocol.MustNewMessage(protocol.MsgRevealCard, nil))
}

// SendChat 发送聊天消息
func (c *Client) SendChat(content string) error {
	return c.SendMessage(protocol.MustNewMessage(protocol.MsgChat, protocol.ChatPayload{
		Content: content,
	}))
}

// GetStats 获取个人统计
func (c *Client) GetStats() error {
	return c.SendMessage(protocol.MustNewMessage(protocol.MsgGetStats, nil))
}

// GetLeaderboard 获取排行榜
func (c *Client) GetLeaderboard(offset, limit int) error {
	return c.SendMessage(protocol.MustNewMessage(protocol.MsgGetLeaderboard, protocol.GetLeaderboardPayload{
		Offset: offset,
		Limit:  limit,
	}))
}

// Ping 发送心跳
func (c *Client) Ping() error {
	return c.SendMessage(protocol.MustNewMessage(protocol.MsgPing, protocol.PingPayload{
		Timestamp: time.Now().UnixMilli(),
	}))
}

// Reconnect 手动发送重连请求
func (c *Client) Reconnect() error {
	if c.ReconnectToken == "" || c.PlayerID == "" {
		return errors.New("no reconnect token")
	}
	return c.SendMessage(protocol.MustNewMessage(protocol.MsgReconnect, protocol.ReconnectPayload{
		Token:    c.ReconnectToken,
		PlayerID: c.PlayerID,
	}))
}
