package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/beatline/beatline/internal/protocol"
)

func (m *Model) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	var content string
	switch m.phase {
	case PhaseConnecting:
		content = m.connectingView()
	case PhaseName:
		content = m.nameView()
	case PhaseLobby:
		content = m.lobbyView()
	case PhaseJoin:
		content = m.joinView()
	case PhaseRoom:
		content = m.roomView()
	case PhasePlaying:
		content = m.gameView()
	case PhaseGameOver:
		content = m.gameOverView()
	case PhaseStats:
		content = m.statsView()
	}

	if m.notice != "" {
		style := okStyle
		if m.noticeErr {
			style = errorStyle
		}
		content += "\n\n" + style.Render(m.notice)
	}

	return docStyle.Render(content)
}

func (m *Model) connectingView() string {
	text := "正在连接服务器..."
	if m.notice != "" {
		text = errorStyle.Render(m.notice)
	}
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, text)
}

func (m *Model) nameView() string {
	var sb strings.Builder
	sb.WriteString(titleStyle.Render("🎵 Beatline — 音乐时间线") + "\n\n")
	sb.WriteString("给自己起个昵称：\n\n")
	sb.WriteString(m.input.View())
	sb.WriteString("\n\n" + subtleStyle.Render("回车确认"))
	return sb.String()
}

func (m *Model) lobbyView() string {
	var sb strings.Builder
	sb.WriteString(titleStyle.Render("🎵 Beatline — 音乐时间线") + "\n\n")
	sb.WriteString(fmt.Sprintf("你好，%s！\n\n", m.playerName))
	sb.WriteString("  [1] 创建房间\n")
	sb.WriteString("  [2] 加入房间\n")
	sb.WriteString("  [3] 我的战绩\n")
	sb.WriteString("  [4] 排行榜\n")
	sb.WriteString("  [q] 退出\n")
	if m.latency > 0 {
		sb.WriteString("\n" + subtleStyle.Render(fmt.Sprintf("延迟: %dms", m.latency)))
	}
	return sb.String()
}

func (m *Model) joinView() string {
	var sb strings.Builder
	sb.WriteString(titleStyle.Render("加入房间") + "\n\n")
	sb.WriteString(m.input.View())
	sb.WriteString("\n\n" + subtleStyle.Render("回车加入，ESC 返回"))
	return sb.String()
}

func (m *Model) roomView() string {
	var sb strings.Builder
	sb.WriteString(titleStyle.Render(fmt.Sprintf("房间 %s", m.state.RoomCode)) + "\n\n")

	// 规则
	r := m.state.Rules
	packs := strings.Join(r.Packs, ", ")
	if packs == "" {
		packs = subtleStyle.Render("(未选择)")
	}
	sb.WriteString(fmt.Sprintf("曲包: %s   目标: %d 分   队伍数: %d\n\n", packs, r.WinTarget, r.TeamCount))

	// 队伍与成员
	sb.WriteString(m.renderTeams(false))

	// 未入队玩家
	var unassigned []string
	for _, p := range m.state.Players {
		if p.TeamID == "" {
			unassigned = append(unassigned, m.playerLabel(p))
		}
	}
	if len(unassigned) > 0 {
		sb.WriteString("\n观战中: " + strings.Join(unassigned, ", ") + "\n")
	}

	sb.WriteString("\n" + m.renderChat())

	if m.chatMode {
		sb.WriteString("\n" + m.input.View())
	} else {
		sb.WriteString("\n" + subtleStyle.Render("[1-9] 选队伍  [0] 退出队伍  [s] 开始游戏  [t] 聊天  [ESC] 离开房间"))
	}
	return sb.String()
}

func (m *Model) gameView() string {
	var sb strings.Builder

	header := fmt.Sprintf("房间 %s", m.state.RoomCode)
	if m.state.SuddenDeath {
		header += "  ⚔️ 加时赛"
	}
	sb.WriteString(titleStyle.Render(header) + "\n\n")

	sb.WriteString(m.renderTeams(true))
	sb.WriteString(fmt.Sprintf("\n剩余卡牌: %d\n", m.state.Remaining))

	// 当前回合
	if m.state.CurrentCard != nil {
		sb.WriteString("\n" + cardStyle.Render("🎵 正在播放神秘歌曲\n"+subtleStyle.Render(m.state.CurrentCard.URL)) + "\n")
		if m.state.IsMyTurn() {
			sb.WriteString("\n轮到你们队了！输入插入位置（0 = 时间线最前）:\n")
			sb.WriteString(m.input.View() + "\n")
		} else {
			sb.WriteString("\n" + subtleStyle.Render(fmt.Sprintf("等待 %s 摆放...", m.teamName(m.state.ActiveTeamID))) + "\n")
		}
	} else if m.state.Pending != nil {
		sb.WriteString(fmt.Sprintf("\n%s 已提交位置 %d，等待揭晓\n",
			m.teamName(m.state.Pending.TeamID), m.state.Pending.Position))
		sb.WriteString(subtleStyle.Render("[r] 揭晓") + "\n")
	} else {
		active := m.teamName(m.state.ActiveTeamID)
		if m.state.IsMyTurn() {
			sb.WriteString("\n轮到你们队了！" + subtleStyle.Render("[n] 抽牌") + "\n")
		} else {
			sb.WriteString("\n" + subtleStyle.Render(fmt.Sprintf("等待 %s 抽牌...", active)) + "\n")
		}
	}

	// 最近揭晓结果
	if lr := m.state.LastReveal; lr != nil {
		verdict := okStyle.Render("✅ 正确")
		if !lr.Correct {
			verdict = errorStyle.Render("❌ 错误")
		}
		sb.WriteString(fmt.Sprintf("\n上一张: %s — %s (%s) %s\n",
			lr.Card.Title, lr.Card.Artist, yearStyle.Render(fmt.Sprint(lr.Card.Year)), verdict))
	}

	sb.WriteString("\n" + m.renderChat())
	sb.WriteString("\n" + subtleStyle.Render("[ESC] 离开房间"))
	return sb.String()
}

func (m *Model) gameOverView() string {
	var sb strings.Builder
	sb.WriteString(titleStyle.Render("🏆 游戏结束") + "\n\n")
	sb.WriteString(fmt.Sprintf("获胜队伍: %s\n\n", m.state.WinnerName))

	for i, team := range m.state.Teams {
		score := team.Score
		if s, ok := m.state.FinalScores[team.ID]; ok {
			score = s
		}
		sb.WriteString(fmt.Sprintf("  %s  %d 分\n", teamStyle(i).Render(team.Name), score))
	}

	sb.WriteString("\n" + subtleStyle.Render("[s] 再来一局 (房主)  [回车] 返回房间  [ESC] 离开"))
	return sb.String()
}

func (m *Model) statsView() string {
	var sb strings.Builder
	sb.WriteString(titleStyle.Render("📊 战绩") + "\n\n")

	if m.stats != nil {
		s := m.stats
		sb.WriteString(fmt.Sprintf("  %s\n", s.PlayerName))
		sb.WriteString(fmt.Sprintf("  总场次: %d   胜场: %d\n", s.TotalGames, s.Wins))
		sb.WriteString(fmt.Sprintf("  摆放: %d   正确: %d   准确率: %.0f%%\n\n",
			s.Placements, s.CorrectPlaced, s.Accuracy*100))
	}

	if len(m.leaderboard) > 0 {
		sb.WriteString(titleStyle.Render("🏆 排行榜") + "\n\n")
		for _, e := range m.leaderboard {
			sb.WriteString(fmt.Sprintf("  %2d. %-16s %d 胜\n", e.Rank, e.PlayerName, e.Wins))
		}
	}

	sb.WriteString("\n" + subtleStyle.Render("[ESC] 返回"))
	return sb.String()
}

// renderTeams 渲染队伍面板，对局中附带时间线
func (m *Model) renderTeams(withTimeline bool) string {
	var boxes []string
	for i, team := range m.state.Teams {
		var sb strings.Builder

		name := teamStyle(i).Render(team.Name)
		if team.ID == m.state.ActiveTeamID && withTimeline {
			name = activeStyle.Render("▶ ") + name
		}
		sb.WriteString(fmt.Sprintf("%s  %d 分\n", name, team.Score))

		// 成员
		var members []string
		for _, p := range m.state.Players {
			if p.TeamID == team.ID {
				members = append(members, m.playerLabel(p))
			}
		}
		if len(members) == 0 {
			sb.WriteString(subtleStyle.Render("(空)"))
		} else {
			sb.WriteString(strings.Join(members, ", "))
		}

		if withTimeline {
			sb.WriteString("\n" + renderTimeline(team.Timeline))
		}

		boxes = append(boxes, boxStyle.Render(sb.String()))
	}
	return lipgloss.JoinVertical(lipgloss.Left, boxes...) + "\n"
}

// renderTimeline 渲染一条时间线：年份升序，插入位置标注在间隙上
func renderTimeline(cards []protocol.CardInfo) string {
	if len(cards) == 0 {
		return subtleStyle.Render("时间线为空")
	}

	var parts []string
	for i, c := range cards {
		parts = append(parts, subtleStyle.Render(fmt.Sprintf("·%d·", i)))
		parts = append(parts, yearStyle.Render(fmt.Sprint(c.Year))+" "+c.Title)
	}
	parts = append(parts, subtleStyle.Render(fmt.Sprintf("·%d·", len(cards))))
	return strings.Join(parts, "  ")
}

func (m *Model) renderChat() string {
	if len(m.chatLog) == 0 {
		return ""
	}
	return "💬 " + strings.Join(m.chatLog, "\n   ") + "\n"
}

func (m *Model) playerLabel(p protocol.PlayerInfo) string {
	label := p.Name
	if p.IsHost {
		label = hostIcon + label
	}
	if !p.Online {
		label += offlineIcon
	}
	if p.ID == m.client.PlayerID {
		label += subtleStyle.Render("(我)")
	}
	return label
}

func (m *Model) teamName(id string) string {
	if t := m.state.TeamByID(id); t != nil {
		return t.Name
	}
	return id
}
