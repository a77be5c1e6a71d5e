package room

import (
	"fmt"
	"log"
	"time"

	"github.com/beatline/beatline/internal/apperrors"
	"github.com/beatline/beatline/internal/protocol"
	"github.com/beatline/beatline/internal/types"
)

// Join 加入房间。clientID 与已有玩家匹配时为重连：
// 重绑连接 ID 并保留队伍归属和得分历史，不会产生重复玩家。
// 返回是否为重连。
func (r *Room) Join(client types.ClientInterface, name, clientID string) bool {
	r.mu.Lock()

	if name == "" {
		name = client.GetName()
	}

	var rejoined bool
	if existing := r.findByClientID(clientID); existing != nil {
		// 重连：旧连接 ID 换新，其余记录原样保留
		oldID := existing.ID
		delete(r.Players, oldID)

		existing.ID = client.GetID()
		existing.Name = name
		existing.Client = client
		r.Players[existing.ID] = existing

		for i, id := range r.PlayerOrder {
			if id == oldID {
				r.PlayerOrder[i] = existing.ID
				break
			}
		}
		// 房主重连后身份随之迁移
		if r.HostID == oldID {
			r.HostID = existing.ID
		}
		rejoined = true

		log.Printf("📶 玩家 %s 重连到房间 %s", name, r.Code)
	} else {
		p := &Player{
			ID:       client.GetID(),
			ClientID: clientID,
			Name:     name,
			Client:   client,
		}
		r.Players[p.ID] = p
		r.PlayerOrder = append(r.PlayerOrder, p.ID)

		log.Printf("👤 玩家 %s 加入房间 %s", name, r.Code)
	}

	client.SetRoom(r.Code)
	r.touch()

	if rejoined {
		r.BroadcastExcept(client.GetID(), protocol.MustNewMessage(protocol.MsgPlayerOnline, protocol.PlayerOnlinePayload{
			PlayerID:   client.GetID(),
			PlayerName: name,
		}))
	}
	r.broadcastPlayers()
	r.broadcastState()
	r.mu.Unlock()

	return rejoined
}

// RemovePlayer 从房间移除玩家（主动离开），返回房间是否已空
func (r *Room) RemovePlayer(connID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.Players[connID]; !exists {
		return len(r.Players) == 0
	}

	delete(r.Players, connID)
	for i, id := range r.PlayerOrder {
		if id == connID {
			r.PlayerOrder = append(r.PlayerOrder[:i], r.PlayerOrder[i+1:]...)
			break
		}
	}

	if len(r.Players) == 0 {
		return true
	}

	// 房主离开则按加入顺序迁移给下一位
	if r.HostID == connID {
		r.HostID = r.PlayerOrder[0]
		log.Printf("👑 房间 %s 房主迁移给 %s", r.Code, r.Players[r.HostID].Name)
	}

	r.touch()
	r.broadcastPlayers()
	r.broadcastState()
	return false
}

// MarkOffline 标记玩家掉线。带稳定标识的玩家保留记录等待重连，
// 匿名玩家直接移除。返回房间是否已空。
func (r *Room) MarkOffline(connID string, reconnectTimeout time.Duration) bool {
	r.mu.Lock()

	player, exists := r.Players[connID]
	if !exists {
		empty := len(r.Players) == 0
		r.mu.Unlock()
		return empty
	}

	if player.ClientID == "" {
		r.mu.Unlock()
		return r.RemovePlayer(connID)
	}

	player.Client = nil
	r.touch()

	r.Broadcast(protocol.MustNewMessage(protocol.MsgPlayerOffline, protocol.PlayerOfflinePayload{
		PlayerID:   connID,
		PlayerName: player.Name,
		Timeout:    int(reconnectTimeout.Seconds()),
	}))
	r.broadcastPlayers()
	r.broadcastState()
	r.mu.Unlock()
	return false
}

// AssignTeam 设置玩家的队伍。队伍不存在时静默忽略，不改状态——
// 规则调整可能让客户端手里的队伍列表过期，这类请求不算错误。
func (r *Room) AssignTeam(connID, teamID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	player, exists := r.Players[connID]
	if !exists {
		return apperrors.ErrNotInRoom
	}

	if teamID != "" {
		if _, ok := r.Teams[teamID]; !ok {
			return nil
		}
	}

	player.TeamID = teamID
	r.touch()

	r.broadcastPlayers()
	r.broadcastState()
	return nil
}

// UpdateRules 合并规则补丁，未给出的字段保持原值。
// 队伍数量变化时重建队伍并清空所有玩家的队伍归属。
func (r *Room) UpdateRules(connID string, patch protocol.UpdateRulesPayload) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.Players[connID]; !exists {
		return apperrors.ErrNotInRoom
	}

	// 对局中改规则会重建队伍、丢弃已摆放的时间线，只允许在大厅阶段调整
	if r.State != RoomStateLobby {
		return apperrors.ErrGameStarted
	}

	if patch.Packs != nil {
		r.Rules.Packs = append([]string(nil), (*patch.Packs)...)
	}
	if patch.WinTarget != nil && *patch.WinTarget > 0 {
		r.Rules.WinTarget = *patch.WinTarget
	}
	if patch.GuessMode != nil && *patch.GuessMode != "" {
		r.Rules.GuessMode = *patch.GuessMode
	}
	if patch.TimerEnabled != nil {
		r.Rules.TimerEnabled = *patch.TimerEnabled
	}
	if patch.TimerDuration != nil && *patch.TimerDuration > 0 {
		r.Rules.TimerDuration = *patch.TimerDuration
	}
	if patch.TeamCount != nil && *patch.TeamCount >= 2 && *patch.TeamCount != r.Rules.TeamCount {
		r.Rules.TeamCount = *patch.TeamCount
		r.applyTeamCount(r.Rules.TeamCount)
	}

	r.touch()

	r.broadcastRules()
	r.broadcastTeams()
	r.broadcastPlayers()
	r.broadcastState()
	return nil
}

// applyTeamCount 重建队伍集合 team-1..team-N，并清空所有玩家的队伍归属。
// 创建房间和修改队伍数量时调用。
func (r *Room) applyTeamCount(n int) {
	r.Teams = make(map[string]*Team, n)
	for i := 1; i <= n; i++ {
		id := fmt.Sprintf("team-%d", i)
		r.Teams[id] = &Team{
			ID:   id,
			Name: fmt.Sprintf("Team %d", i),
		}
	}
	for _, p := range r.Players {
		p.TeamID = ""
	}
}

// findByClientID 按稳定客户端标识查找玩家，调用方需持有房间锁
func (r *Room) findByClientID(clientID string) *Player {
	if clientID == "" {
		return nil
	}
	for _, p := range r.Players {
		if p.ClientID == clientID {
			return p
		}
	}
	return nil
}

// Expired 房间是否可以被清理：长期无动作的大厅房间，
// 或所有玩家都已掉线且超过等待期的房间
func (r *Room) Expired(now time.Time, timeout time.Duration) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if now.Sub(r.LastActive) <= timeout {
		return false
	}
	if r.State == RoomStateLobby {
		return true
	}
	for _, p := range r.Players {
		if p.Online() {
			return false
		}
	}
	return true
}

// NotifyClosed 通知所有在线玩家房间已关闭并解除其房间归属
func (r *Room) NotifyClosed() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.Broadcast(protocol.NewErrorMessageWithText(protocol.ErrCodeUnknown, "房间超时已关闭"))
	for _, p := range r.Players {
		if p.Client != nil {
			p.Client.SetRoom("")
		}
	}
}
