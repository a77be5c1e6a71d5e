package client

import (
	"github.com/beatline/beatline/internal/protocol"
)

// GameState 客户端侧的房间状态镜像。
// 以服务端快照为准，version 小于已知版本的快照视为乱序直接丢弃。
type GameState struct {
	RoomCode string
	HostID   string
	MyTeamID string

	Version      uint64
	State        string // lobby/playing/finished
	Rules        protocol.RulesInfo
	Players      []protocol.PlayerInfo
	Teams        []protocol.TeamInfo
	ActiveTeamID string
	CurrentCard  *protocol.HiddenCardInfo
	Remaining    int
	Pending      *protocol.PendingPlacementInfo
	SuddenDeath  bool

	// 最近一次揭晓结果
	LastReveal *protocol.CardRevealedPayload

	// 游戏结果
	WinnerTeamID string
	WinnerName   string
	FinalScores  map[string]int
}

// NewGameState 创建空状态
func NewGameState() *GameState {
	return &GameState{}
}

// ApplySnapshot 应用房间快照，返回是否采纳（乱序快照返回 false）
func (gs *GameState) ApplySnapshot(s *protocol.RoomStatePayload) bool {
	if s.Version < gs.Version {
		return false
	}

	gs.Version = s.Version
	gs.State = s.State
	gs.Rules = s.Rules
	gs.Players = s.Players
	gs.Teams = s.Teams
	gs.ActiveTeamID = s.ActiveTeamID
	gs.CurrentCard = s.CurrentCard
	gs.Remaining = s.RemainingCards
	gs.Pending = s.PendingPlacement
	gs.SuddenDeath = s.SuddenDeath

	// 自己的队伍归属随玩家列表更新
	for _, p := range s.Players {
		if p.IsHost {
			gs.HostID = p.ID
		}
	}
	return true
}

// SetMyTeam 根据玩家 ID 更新自己的队伍归属
func (gs *GameState) SetMyTeam(playerID string) {
	for _, p := range gs.Players {
		if p.ID == playerID {
			gs.MyTeamID = p.TeamID
			return
		}
	}
	gs.MyTeamID = ""
}

// TeamByID 按 ID 查队伍，找不到返回 nil
func (gs *GameState) TeamByID(id string) *protocol.TeamInfo {
	for i := range gs.Teams {
		if gs.Teams[i].ID == id {
			return &gs.Teams[i]
		}
	}
	return nil
}

// IsMyTurn 是否轮到自己的队伍
func (gs *GameState) IsMyTurn() bool {
	return gs.MyTeamID != "" && gs.MyTeamID == gs.ActiveTeamID
}

// Reset 清空所有状态
func (gs *GameState) Reset() {
	*gs = GameState{}
}
