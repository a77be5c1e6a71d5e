package room

import (
	"time"

	"github.com/beatline/beatline/internal/game/card"
	"github.com/beatline/beatline/internal/protocol"
	"github.com/beatline/beatline/internal/server/storage"
	"github.com/beatline/beatline/internal/types"
)

// Broadcast 向房间内所有在线玩家发送消息，调用方需持有房间锁
func (r *Room) Broadcast(msg *protocol.Message) {
	for _, p := range r.Players {
		if p.Client != nil {
			p.Client.SendMessage(msg)
		}
	}
}

// BroadcastExcept 向除指定玩家外的在线玩家发送消息，调用方需持有房间锁
func (r *Room) BroadcastExcept(exceptID string, msg *protocol.Message) {
	for id, p := range r.Players {
		if id != exceptID && p.Client != nil {
			p.Client.SendMessage(msg)
		}
	}
}

// BroadcastMessage 对外广播入口（聊天等房间外调用方使用），自行加锁
func (r *Room) BroadcastMessage(msg *protocol.Message) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Broadcast(msg)
}

// SendStateTo 向单个客户端补发当前状态快照
func (r *Room) SendStateTo(client types.ClientInterface) {
	r.mu.Lock()
	defer r.mu.Unlock()
	client.SendMessage(protocol.MustNewMessage(protocol.MsgRoomState, r.buildStatePayload()))
}

// BuildJoinedPayload 构建加入房间的应答
func (r *Room) BuildJoinedPayload(playerID string) protocol.RoomJoinedPayload {
	r.mu.Lock()
	defer r.mu.Unlock()
	return protocol.RoomJoinedPayload{
		RoomCode: r.Code,
		Player:   r.playerInfo(playerID),
		Rules:    r.rulesInfo(),
		Teams:    r.teamsInfo(),
		Players:  r.playersInfo(),
		State:    r.State.String(),
	}
}

// GetPlayerInfo 获取单个玩家信息
func (r *Room) GetPlayerInfo(playerID string) protocol.PlayerInfo {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.playerInfo(playerID)
}

// StateSnapshot 当前状态快照（对外入口，自行加锁）
func (r *Room) StateSnapshot() protocol.RoomStatePayload {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.buildStatePayload()
}

// broadcastState 广播状态快照，每个成功动作收尾时调用
func (r *Room) broadcastState() {
	r.Broadcast(protocol.MustNewMessage(protocol.MsgRoomState, r.buildStatePayload()))
}

func (r *Room) broadcastPlayers() {
	r.Broadcast(protocol.MustNewMessage(protocol.MsgRoomPlayers, protocol.RoomPlayersPayload{
		Players: r.playersInfo(),
	}))
}

func (r *Room) broadcastTeams() {
	r.Broadcast(protocol.MustNewMessage(protocol.MsgRoomTeams, protocol.RoomTeamsPayload{
		Teams: r.teamsInfo(),
	}))
}

func (r *Room) broadcastRules() {
	r.Broadcast(protocol.MustNewMessage(protocol.MsgRoomRules, protocol.RoomRulesPayload{
		Rules: r.rulesInfo(),
	}))
}

// buildStatePayload 生成协议层状态快照。当前卡牌只暴露脱敏视图，
// 年份、曲名、歌手等可反查年代的字段在揭晓前不出服务器。
func (r *Room) buildStatePayload() protocol.RoomStatePayload {
	p := protocol.RoomStatePayload{
		Version:        r.Version,
		State:          r.State.String(),
		Rules:          r.rulesInfo(),
		Players:        r.playersInfo(),
		Teams:          r.teamsInfo(),
		ActiveTeamID:   r.activeTeamID(),
		RemainingCards: len(r.Deck),
		SuddenDeath:    r.SuddenDeath,
	}
	if r.CurrentCard != nil {
		hc := hiddenCardInfo(r.CurrentCard)
		p.CurrentCard = &hc
	}
	if r.PendingPlacement != nil {
		p.PendingPlacement = &protocol.PendingPlacementInfo{
			TeamID:   r.PendingPlacement.TeamID,
			Position: r.PendingPlacement.Position,
		}
	}
	return p
}

func (r *Room) playersInfo() []protocol.PlayerInfo {
	infos := make([]protocol.PlayerInfo, 0, len(r.Players))
	for _, id := range r.PlayerOrder {
		if _, ok := r.Players[id]; !ok {
			continue
		}
		infos = append(infos, r.playerInfo(id))
	}
	return infos
}

func (r *Room) playerInfo(id string) protocol.PlayerInfo {
	p, ok := r.Players[id]
	if !ok {
		return protocol.PlayerInfo{}
	}
	return protocol.PlayerInfo{
		ID:     p.ID,
		Name:   p.Name,
		TeamID: p.TeamID,
		IsHost: p.ID == r.HostID,
		Online: p.Online(),
	}
}

func (r *Room) teamsInfo() []protocol.TeamInfo {
	infos := make([]protocol.TeamInfo, 0, len(r.Teams))
	for _, id := range r.sortedTeamIDs() {
		t := r.Teams[id]
		timeline := make([]protocol.CardInfo, len(t.Timeline))
		for i, c := range t.Timeline {
			timeline[i] = cardInfo(c)
		}
		infos = append(infos, protocol.TeamInfo{
			ID:       t.ID,
			Name:     t.Name,
			Score:    t.Score,
			Timeline: timeline,
		})
	}
	return infos
}

func (r *Room) rulesInfo() protocol.RulesInfo {
	return protocol.RulesInfo{
		Packs:         append([]string(nil), r.Rules.Packs...),
		WinTarget:     r.Rules.WinTarget,
		GuessMode:     r.Rules.GuessMode,
		TimerEnabled:  r.Rules.TimerEnabled,
		TimerDuration: r.Rules.TimerDuration,
		TeamCount:     r.Rules.TeamCount,
	}
}

// cardInfo 完整卡牌信息，只在揭晓后（含时间线快照）下发
func cardInfo(c *card.Card) protocol.CardInfo {
	return protocol.CardInfo{
		ID:           c.ID,
		PackID:       c.PackID,
		CardNumber:   c.CardNumber,
		Title:        c.Title,
		Artist:       c.Artist,
		Year:         c.Year,
		RawYear:      c.RawYear,
		URL:          c.URL,
		YoutubeTitle: c.YoutubeTitle,
		ISRC:         c.ISRC,
	}
}

// hiddenCardInfo 脱敏卡牌视图，只含播放所需字段
func hiddenCardInfo(c *card.Card) protocol.HiddenCardInfo {
	return protocol.HiddenCardInfo{
		ID:           c.ID,
		PackID:       c.PackID,
		URL:          c.URL,
		YoutubeTitle: c.YoutubeTitle,
	}
}

// ToRoomData 为 Redis 序列化准备数据
func (r *Room) ToRoomData() *storage.RoomData {
	r.mu.Lock()
	defer r.mu.Unlock()

	return &storage.RoomData{
		Code:      r.Code,
		State:     r.State.String(),
		HostID:    r.HostID,
		Version:   r.Version,
		Rules:     r.rulesInfo(),
		Players:   r.playersInfo(),
		Teams:     r.teamsInfo(),
		CreatedAt: r.CreatedAt.Unix(),
		UpdatedAt: time.Now().Unix(),
	}
}
