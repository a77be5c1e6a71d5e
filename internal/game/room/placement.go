package room

import (
	"log"

	"github.com/beatline/beatline/internal/apperrors"
	"github.com/beatline/beatline/internal/game/card"
	"github.com/beatline/beatline/internal/protocol"
)

// Place 提交摆放位置（两阶段的第一步）。位置夹取到 [0, 时间线长度]。
// 特例：时间线为空时任何位置都正确，直接计分并结算本回合，
// 不经过揭晓阶段。其余情况只记录待揭晓的摆放并广播，
// 卡牌年份仍不下发。
func (r *Room) Place(connID, teamID string, position int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	player, exists := r.Players[connID]
	if !exists {
		return apperrors.ErrNotInRoom
	}
	if r.State != RoomStatePlaying {
		return apperrors.ErrGameNotStarted
	}
	if r.CurrentCard == nil {
		return apperrors.ErrNoCard
	}
	if r.PendingPlacement != nil {
		return apperrors.ErrPlacementPending
	}

	team, ok := r.Teams[teamID]
	if !ok {
		return apperrors.ErrTeamNotFound
	}
	// 摆放是队伍自己的动作：必须是当前队伍，且请求者属于该队
	if teamID != r.activeTeamID() || player.TeamID != teamID {
		return apperrors.ErrNotActiveTeam
	}

	position = clamp(position, 0, len(team.Timeline))

	if len(team.Timeline) == 0 {
		// 空时间线快速路径：必然正确，立即揭晓并结算
		c := r.CurrentCard
		r.CurrentCard = nil
		team.Timeline = []*card.Card{c}
		team.Score++
		team.Placements++
		team.Correct++
		r.touch()

		log.Printf("✅ 房间 %s 队伍 %s 首张卡牌直接上线", r.Code, teamID)

		r.Broadcast(protocol.MustNewMessage(protocol.MsgCardRevealed, protocol.CardRevealedPayload{
			TeamID:   teamID,
			Position: 0,
			Correct:  true,
			Card:     cardInfo(c),
			Score:    team.Score,
		}))
		r.broadcastTeams()
		r.resolveTurn(teamID, true)
		r.broadcastState()
		return nil
	}

	r.PendingPlacement = &Placement{TeamID: teamID, Position: position}
	r.touch()

	r.Broadcast(protocol.MustNewMessage(protocol.MsgCardPlaced, protocol.CardPlacedPayload{
		TeamID:   teamID,
		Position: position,
	}))
	r.broadcastState()
	return nil
}

// Reveal 揭晓摆放结果（两阶段的第二步）。正确性按相邻卡牌年份判定，
// 与边界年份持平算正确（闭区间）。正确则插入时间线并计分；
// 错误则把卡牌暂存为待弃牌，下次抽牌前移入弃牌堆。
// 两种结果都会记录本轮战果、推进回合并触发轮次结算。
func (r *Room) Reveal(connID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	player, exists := r.Players[connID]
	if !exists {
		return apperrors.ErrNotInRoom
	}
	if r.State != RoomStatePlaying {
		return apperrors.ErrGameNotStarted
	}
	if r.PendingPlacement == nil || r.CurrentCard == nil {
		return apperrors.ErrNoPlacement
	}

	pending := r.PendingPlacement
	team, ok := r.Teams[pending.TeamID]
	if !ok {
		return apperrors.ErrTeamNotFound
	}
	if pending.TeamID != r.activeTeamID() {
		return apperrors.ErrNotActiveTeam
	}
	if player.TeamID != pending.TeamID && connID != r.HostID {
		return apperrors.ErrNotActiveTeam
	}

	c := r.CurrentCard
	pos := clamp(pending.Position, 0, len(team.Timeline))
	correct := placementCorrect(team.Timeline, pos, c.Year)

	r.CurrentCard = nil
	r.PendingPlacement = nil
	team.Placements++

	if correct {
		team.Timeline = insertCard(team.Timeline, pos, c)
		team.Score++
		team.Correct++
	} else {
		r.PendingDiscard = c
	}
	r.touch()

	log.Printf("🃏 房间 %s 队伍 %s 揭晓：%s (%d) 位置 %d 正确=%v",
		r.Code, pending.TeamID, c.Title, c.Year, pos, correct)

	r.Broadcast(protocol.MustNewMessage(protocol.MsgCardRevealed, protocol.CardRevealedPayload{
		TeamID:   pending.TeamID,
		Position: pos,
		Correct:  correct,
		Card:     cardInfo(c),
		Score:    team.Score,
	}))
	r.broadcastTeams()
	r.resolveTurn(pending.TeamID, correct)
	r.broadcastState()
	return nil
}

// placementCorrect 位置 pos 处插入年份 year 是否正确：
// 前邻年份 ≤ year ≤ 后邻年份，头尾分别视为 ∓∞，边界持平算正确
func placementCorrect(timeline []*card.Card, pos, year int) bool {
	if pos > 0 && timeline[pos-1].Year > year {
		return false
	}
	if pos < len(timeline) && timeline[pos].Year < year {
		return false
	}
	return true
}

// insertCard 在 pos 处插入卡牌
func insertCard(timeline []*card.Card, pos int, c *card.Card) []*card.Card {
	timeline = append(timeline, nil)
	copy(timeline[pos+1:], timeline[pos:])
	timeline[pos] = c
	return timeline
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
