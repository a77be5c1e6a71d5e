package ui

import (
	"fmt"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/beatline/beatline/internal/protocol"
)

// handleKey 按阶段分发按键，返回 (是否已处理, 命令)
func (m *Model) handleKey(msg tea.KeyMsg) (bool, tea.Cmd) {
	// 全局快捷键
	switch msg.String() {
	case "ctrl+c":
		m.client.Close()
		return true, tea.Quit
	}

	switch m.phase {
	case PhaseConnecting:
		if msg.String() == "esc" {
			return true, tea.Quit
		}
		return true, nil
	case PhaseName:
		return m.handleNameKey(msg)
	case PhaseLobby:
		return m.handleLobbyKey(msg)
	case PhaseJoin:
		return m.handleJoinKey(msg)
	case PhaseRoom:
		return m.handleRoomKey(msg)
	case PhasePlaying:
		return m.handlePlayingKey(msg)
	case PhaseGameOver:
		return m.handleGameOverKey(msg)
	case PhaseStats:
		if msg.String() == "esc" || msg.String() == "enter" {
			m.phase = PhaseLobby
			return true, nil
		}
		return true, nil
	}

	return false, nil
}

func (m *Model) handleNameKey(msg tea.KeyMsg) (bool, tea.Cmd) {
	if msg.String() == "enter" {
		name := strings.TrimSpace(m.input.Value())
		if name == "" {
			return true, m.setNotice("昵称不能为空", true)
		}
		m.playerName = name
		m.phase = PhaseLobby
		m.input.Reset()
		return true, nil
	}
	return false, nil
}

func (m *Model) handleLobbyKey(msg tea.KeyMsg) (bool, tea.Cmd) {
	switch msg.String() {
	case "1", "c":
		_ = m.client.CreateRoom(m.playerName)
		return true, nil
	case "2", "j":
		m.phase = PhaseJoin
		m.input.Reset()
		m.input.Placeholder = "输入 4 位房间号"
		m.input.Focus()
		return true, nil
	case "3":
		_ = m.client.GetStats()
		return true, nil
	case "4":
		_ = m.client.GetLeaderboard(0, 10)
		return true, nil
	case "q", "esc":
		m.client.Close()
		return true, tea.Quit
	}
	return true, nil
}

func (m *Model) handleJoinKey(msg tea.KeyMsg) (bool, tea.Cmd) {
	switch msg.String() {
	case "enter":
		code := strings.ToUpper(strings.TrimSpace(m.input.Value()))
		if len(code) != 4 {
			return true, m.setNotice("房间号应为 4 位", true)
		}
		_ = m.client.JoinRoom(code, m.playerName)
		return true, nil
	case "esc":
		m.phase = PhaseLobby
		m.input.Reset()
		return true, nil
	}
	return false, nil
}

func (m *Model) handleRoomKey(msg tea.KeyMsg) (bool, tea.Cmd) {
	// 聊天输入模式下按键交给输入框
	if m.chatMode {
		switch msg.String() {
		case "enter":
			line := strings.TrimSpace(m.input.Value())
			m.input.Reset()
			m.chatMode = false
			m.input.Blur()
			if line == "" {
				return true, nil
			}
			if strings.HasPrefix(line, "/") {
				return true, m.runCommand(line)
			}
			_ = m.client.SendChat(line)
			return true, nil
		case "esc":
			m.chatMode = false
			m.input.Reset()
			m.input.Blur()
			return true, nil
		}
		return false, nil
	}

	switch msg.String() {
	case "1", "2", "3", "4", "5", "6", "7", "8", "9":
		n, _ := strconv.Atoi(msg.String())
		_ = m.client.AssignTeam(fmt.Sprintf("team-%d", n))
		return true, nil
	case "0":
		// 退出当前队伍
		_ = m.client.AssignTeam("")
		return true, nil
	case "s":
		_ = m.client.StartGame()
		return true, nil
	case "t", "/":
		m.chatMode = true
		m.input.Reset()
		m.input.Placeholder = "聊天，或 /packs /target /teams 修改规则"
		m.input.Focus()
		return true, nil
	case "esc":
		_ = m.client.LeaveRoom()
		m.state.Reset()
		m.phase = PhaseLobby
		return true, nil
	}
	return true, nil
}

// runCommand 处理房间内的斜杠命令（修改规则）
func (m *Model) runCommand(line string) tea.Cmd {
	fields := strings.Fields(line)
	cmd := fields[0]
	arg := ""
	if len(fields) > 1 {
		arg = fields[1]
	}

	switch cmd {
	case "/packs":
		if arg == "" {
			return m.setNotice("用法: /packs rock,pop", true)
		}
		packs := strings.Split(arg, ",")
		_ = m.client.UpdateRules(protocol.UpdateRulesPayload{Packs: &packs})
	case "/target":
		n, err := strconv.Atoi(arg)
		if err != nil || n <= 0 {
			return m.setNotice("用法: /target 10", true)
		}
		_ = m.client.UpdateRules(protocol.UpdateRulesPayload{WinTarget: &n})
	case "/teams":
		n, err := strconv.Atoi(arg)
		if err != nil || n < 2 {
			return m.setNotice("用法: /teams 3", true)
		}
		_ = m.client.UpdateRules(protocol.UpdateRulesPayload{TeamCount: &n})
	default:
		return m.setNotice("未知命令: "+cmd, true)
	}
	return nil
}

func (m *Model) handlePlayingKey(msg tea.KeyMsg) (bool, tea.Cmd) {
	isHost := m.client.PlayerID == m.state.HostID

	switch msg.String() {
	case "n":
		// 抽牌：当前队伍成员或房主
		if m.state.CurrentCard == nil && m.state.Pending == nil && (m.state.IsMyTurn() || isHost) {
			_ = m.client.NextCard()
			return true, nil
		}
	case "r":
		// 揭晓：摆放队伍成员或房主
		if m.state.Pending != nil {
			_ = m.client.RevealCard()
			return true, nil
		}
	case "enter":
		// 输入了数字则提交摆放
		if m.state.CurrentCard != nil && m.state.IsMyTurn() {
			pos, err := strconv.Atoi(strings.TrimSpace(m.input.Value()))
			if err != nil {
				return true, m.setNotice("请输入摆放位置数字", true)
			}
			_ = m.client.PlaceCard(m.state.MyTeamID, pos)
			m.input.Reset()
			return true, nil
		}
		// 没有卡牌时回车等同抽牌
		if m.state.CurrentCard == nil && m.state.Pending == nil && (m.state.IsMyTurn() || isHost) {
			_ = m.client.NextCard()
			return true, nil
		}
	case "esc":
		_ = m.client.LeaveRoom()
		m.state.Reset()
		m.phase = PhaseLobby
		return true, nil
	}

	// 数字输入交给输入框
	return false, nil
}

func (m *Model) handleGameOverKey(msg tea.KeyMsg) (bool, tea.Cmd) {
	switch msg.String() {
	case "s":
		// 房主可直接再来一局
		_ = m.client.StartGame()
		return true, nil
	case "enter", " ":
		m.enterRoom()
		return true, nil
	case "esc":
		_ = m.client.LeaveRoom()
		m.state.Reset()
		m.phase = PhaseLobby
		return true, nil
	}
	return true, nil
}
