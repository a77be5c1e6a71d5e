package room

import (
	"log"

	"github.com/beatline/beatline/internal/protocol"
)

// resolveTurn 记录本轮战果并推进回合，整轮打完后进入轮次结算。
// 只在卡牌揭晓（含空时间线快速路径）后调用，调用方需持有房间锁。
func (r *Room) resolveTurn(teamID string, correct bool) {
	r.RoundResults[teamID] = correct
	r.TurnIndex = (r.TurnIndex + 1) % len(r.TurnOrder)
	r.RoundTurnsLeft--
	if r.RoundTurnsLeft > 0 {
		return
	}
	r.resolveRound()
}

// resolveRound 轮次结算：每支队伍都行动过一次后评估胜负。
// 普通模式按得分是否达标取胜者；多队同时达标进入加时赛。
// 加时赛模式按本轮答对与否收缩参赛队伍，直到只剩一队。
func (r *Room) resolveRound() {
	r.Broadcast(protocol.MustNewMessage(protocol.MsgRoundEnded, protocol.RoundEndedPayload{
		Results: copyResults(r.RoundResults),
	}))

	if r.SuddenDeath {
		r.resolveSuddenDeathRound()
		return
	}

	var winners []string
	for _, id := range r.TurnOrder {
		if r.Teams[id].Score >= r.Rules.WinTarget {
			winners = append(winners, id)
		}
	}

	switch len(winners) {
	case 0:
		// 无人达标：清空战果、重置计数，行动顺序不变
		r.beginRound(r.TurnOrder)
	case 1:
		r.finishGame(winners[0])
	default:
		// 同轮多队达标：只有并列者进入加时赛
		r.enterSuddenDeath(winners)
	}
}

// resolveSuddenDeathRound 加时赛轮次结算。答对的队伍晋级；
// 全员答错则无人淘汰，原班人马再打一轮。只剩一队时该队获胜。
func (r *Room) resolveSuddenDeathRound() {
	var survivors []string
	for _, id := range r.TurnOrder {
		if r.RoundResults[id] {
			survivors = append(survivors, id)
		}
	}

	switch len(survivors) {
	case 0:
		r.beginRound(r.TurnOrder)
	case 1:
		r.finishGame(survivors[0])
	default:
		r.enterSuddenDeath(survivors)
	}
}

// beginRound 建立新一轮：行动顺序固定，回合计数按顺序长度重置。
// 计数取自本轮实际参赛队伍数，并列队伍数与上一轮不同也不会算错。
func (r *Room) beginRound(order []string) {
	r.TurnOrder = append([]string(nil), order...)
	r.TurnIndex = 0
	r.RoundTurnsLeft = len(r.TurnOrder)
	r.RoundResults = make(map[string]bool, len(r.TurnOrder))
}

// enterSuddenDeath 进入（或收缩）加时赛，参赛队伍按 ID 重排行动顺序
func (r *Room) enterSuddenDeath(cohort []string) {
	cohort = append([]string(nil), cohort...)
	sortTeamIDs(cohort)

	r.SuddenDeath = true
	r.beginRound(cohort)

	log.Printf("⚔️ 房间 %s 进入加时赛：%v", r.Code, cohort)

	r.Broadcast(protocol.MustNewMessage(protocol.MsgSuddenDeath, protocol.SuddenDeathPayload{
		Teams: append([]string(nil), cohort...),
	}))
}

// finishGame 结束游戏并广播胜者与终盘比分
func (r *Room) finishGame(winnerTeamID string) {
	r.State = RoomStateFinished
	winner := r.Teams[winnerTeamID]

	scores := make(map[string]int, len(r.Teams))
	for id, t := range r.Teams {
		scores[id] = t.Score
	}

	log.Printf("🏆 房间 %s 游戏结束，%s 获胜", r.Code, winner.Name)

	r.Broadcast(protocol.MustNewMessage(protocol.MsgGameOver, protocol.GameOverPayload{
		WinnerTeamID: winnerTeamID,
		WinnerName:   winner.Name,
		Scores:       scores,
	}))

	if r.onGameEnd != nil {
		// 战绩落库在房间锁外执行
		go r.onGameEnd(r.buildGameResult(winnerTeamID))
	}
}

// buildGameResult 生成结算摘要，调用方需持有房间锁
func (r *Room) buildGameResult(winnerTeamID string) GameResult {
	res := GameResult{
		RoomCode:     r.Code,
		WinnerTeamID: winnerTeamID,
		Players:      make([]PlayerResult, 0, len(r.Players)),
	}
	for _, id := range r.PlayerOrder {
		p, ok := r.Players[id]
		if !ok || p.TeamID == "" {
			continue
		}
		team, ok := r.Teams[p.TeamID]
		if !ok {
			continue
		}
		res.Players = append(res.Players, PlayerResult{
			PlayerID:   p.ID,
			ClientID:   p.ClientID,
			PlayerName: p.Name,
			Won:        p.TeamID == winnerTeamID,
			Placements: team.Placements,
			Correct:    team.Correct,
		})
	}
	return res
}

func copyResults(src map[string]bool) map[string]bool {
	dst := make(map[string]bool, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}
