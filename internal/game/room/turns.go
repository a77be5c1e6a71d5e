package room

import (
	"log"
	"sort"
	"strconv"
	"strings"

	"github.com/beatline/beatline/internal/apperrors"
	"github.com/beatline/beatline/internal/game/pack"
	"github.com/beatline/beatline/internal/protocol"
)

// Start 开始游戏。依次检查：房主身份、队伍数量、曲包配置、
// 玩家队伍归属、构出的牌堆非空。通过后重置比分与时间线、
// 洗牌并建立第一轮的行动顺序。
func (r *Room) Start(connID string, source pack.Source) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.Players[connID]; !exists {
		return apperrors.ErrNotInRoom
	}
	if connID != r.HostID {
		return apperrors.ErrNotHost
	}
	if r.State != RoomStateLobby {
		return apperrors.ErrGameStarted
	}
	if len(r.Teams) < 2 {
		return apperrors.ErrNotEnoughTeams
	}
	if len(r.Rules.Packs) == 0 {
		return apperrors.ErrNoPacks
	}
	for _, p := range r.Players {
		if p.TeamID == "" {
			return apperrors.ErrUnassignedPlayers
		}
	}

	deck := BuildDeck(source, r.Rules.Packs)
	if len(deck) == 0 {
		return apperrors.ErrEmptyDeck
	}

	for _, t := range r.Teams {
		t.Score = 0
		t.Timeline = nil
		t.Placements = 0
		t.Correct = 0
	}
	deck.Shuffle(r.rng)
	r.Deck = deck
	r.Discard = nil
	r.CurrentCard = nil
	r.PendingPlacement = nil
	r.PendingDiscard = nil
	r.SuddenDeath = false
	r.beginRound(r.sortedTeamIDs())
	r.State = RoomStatePlaying

	r.touch()

	log.Printf("✅ 房间 %s 游戏开始，%d 支队伍，牌堆 %d 张", r.Code, len(r.TurnOrder), len(r.Deck))

	r.Broadcast(protocol.MustNewMessage(protocol.MsgGameStarted, protocol.GameStartedPayload{
		TurnOrder:    append([]string(nil), r.TurnOrder...),
		ActiveTeamID: r.activeTeamID(),
	}))
	r.broadcastState()
	return nil
}

// NextCard 进入下一回合：先把上一张摆错的卡牌移入弃牌堆，再抽一张新牌。
// 牌堆已空时只发空牌堆通知，不视为硬错误。
func (r *Room) NextCard(connID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	player, exists := r.Players[connID]
	if !exists {
		return apperrors.ErrNotInRoom
	}
	if r.State != RoomStatePlaying {
		return apperrors.ErrGameNotStarted
	}
	if r.CurrentCard != nil {
		return apperrors.ErrCardPending
	}
	if r.PendingPlacement != nil {
		return apperrors.ErrPlacementPending
	}
	// 当前队伍的玩家或房主才能推进回合
	if player.TeamID != r.activeTeamID() && connID != r.HostID {
		return apperrors.ErrNotActiveTeam
	}

	r.flushPendingDiscard()

	c := r.Deck.Draw()
	if c == nil {
		r.touch()
		r.Broadcast(protocol.MustNewMessage(protocol.MsgDeckEmpty, nil))
		r.broadcastState()
		return nil
	}

	r.CurrentCard = c
	r.touch()

	// 揭晓前只下发脱敏视图，年份等比较信息不出服务器
	r.Broadcast(protocol.MustNewMessage(protocol.MsgCardDealt, protocol.CardDealtPayload{
		TeamID:         r.activeTeamID(),
		Card:           hiddenCardInfo(c),
		RemainingCards: len(r.Deck),
	}))
	r.broadcastState()
	return nil
}

// activeTeamID 当前行动队伍，非游戏中为空。调用方需持有房间锁。
func (r *Room) activeTeamID() string {
	if r.State != RoomStatePlaying || len(r.TurnOrder) == 0 {
		return ""
	}
	return r.TurnOrder[r.TurnIndex]
}

// ActiveTeamID 当前行动队伍
func (r *Room) ActiveTeamID() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.activeTeamID()
}

// sortedTeamIDs 全部队伍 ID 按数字后缀排序（team-2 在 team-10 之前）
func (r *Room) sortedTeamIDs() []string {
	ids := make([]string, 0, len(r.Teams))
	for id := range r.Teams {
		ids = append(ids, id)
	}
	sortTeamIDs(ids)
	return ids
}

func sortTeamIDs(ids []string) {
	sort.SliceStable(ids, func(i, j int) bool {
		a, aok := teamSuffix(ids[i])
		b, bok := teamSuffix(ids[j])
		if aok && bok {
			return a < b
		}
		return ids[i] < ids[j]
	})
}

func teamSuffix(id string) (int, bool) {
	idx := strings.LastIndexByte(id, '-')
	if idx < 0 {
		return 0, false
	}
	n, err := strconv.Atoi(id[idx+1:])
	if err != nil {
		return 0, false
	}
	return n, true
}
