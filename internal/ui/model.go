package ui

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/beatline/beatline/internal/client"
	"github.com/beatline/beatline/internal/protocol"
	"github.com/beatline/beatline/internal/sound"
)

// Model 客户端主模型
type Model struct {
	client *client.Client
	state  *client.GameState
	phase  Phase

	input    textinput.Model
	sound    *sound.SoundManager
	chatMode bool

	playerName string

	// 临时提示（错误、系统通知）
	notice    string
	noticeErr bool

	// 聊天记录（最近若干条）
	chatLog []string

	// 战绩与排行榜
	stats       *protocol.StatsResultPayload
	leaderboard []protocol.LeaderboardEntry

	// 重连事件从网络协程转发到 bubbletea
	reconnectChan chan tea.Msg

	latency int64
	width   int
	height  int
}

// NewModel 创建主模型
func NewModel(serverURL string) *Model {
	ti := textinput.New()
	ti.Placeholder = "输入昵称"
	ti.CharLimit = 24
	ti.Width = 30
	ti.Focus()

	c := client.NewClient(serverURL)
	reconnectChan := make(chan tea.Msg, 10)

	m := &Model{
		client:        c,
		state:         client.NewGameState(),
		phase:         PhaseConnecting,
		input:         ti,
		sound:         sound.NewSoundManager(),
		reconnectChan: reconnectChan,
	}

	c.OnReconnect = func() {
		select {
		case reconnectChan <- ReconnectSuccessMsg{}:
		default:
		}
	}
	c.OnLatencyUpdate = func(l int64) {
		m.latency = l
	}

	return m
}

func (m *Model) Init() tea.Cmd {
	go func() {
		_ = m.sound.Init()
	}()

	return tea.Batch(
		m.connectToServer(),
		textinput.Blink,
		m.listenForReconnect(),
	)
}

func (m *Model) connectToServer() tea.Cmd {
	return func() tea.Msg {
		if err := m.client.Connect(); err != nil {
			return ConnectionErrorMsg{Err: err}
		}
		return ConnectedMsg{}
	}
}

func (m *Model) listenForMessages() tea.Cmd {
	return func() tea.Msg {
		msg, err := m.client.Receive()
		if err != nil {
			return ConnectionErrorMsg{Err: err}
		}
		return ServerMessage{Msg: msg}
	}
}

func (m *Model) listenForReconnect() tea.Cmd {
	return func() tea.Msg {
		return <-m.reconnectChan
	}
}

// setNotice 设置临时提示，3 秒后自动清除
func (m *Model) setNotice(text string, isErr bool) tea.Cmd {
	m.notice = text
	m.noticeErr = isErr
	return tea.Tick(3*time.Second, func(time.Time) tea.Msg {
		return ClearNoticeMsg{}
	})
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case ConnectedMsg:
		m.phase = PhaseName
		m.client.StartHeartbeat()
		cmds = append(cmds, m.listenForMessages())

	case ConnectionErrorMsg:
		if m.client.IsReconnecting() {
			cmds = append(cmds, m.setNotice("🔄 连接断开，正在重连...", true))
			break
		}
		m.notice = fmt.Sprintf("无法连接到服务器: %v\n\n按 Ctrl+C 退出", msg.Err)
		m.noticeErr = true
		m.phase = PhaseConnecting

	case ReconnectSuccessMsg:
		cmds = append(cmds, m.setNotice("✅ 重连成功", false))
		cmds = append(cmds, m.listenForReconnect())
		if m.client.IsConnected() {
			cmds = append(cmds, m.listenForMessages())
		}

	case ClearNoticeMsg:
		m.notice = ""

	case ServerMessage:
		if cmd := m.handleServerMessage(msg.Msg); cmd != nil {
			cmds = append(cmds, cmd)
		}
		if m.client.IsConnected() {
			cmds = append(cmds, m.listenForMessages())
		}

	case tea.KeyMsg:
		handled, cmd := m.handleKey(msg)
		if cmd != nil {
			cmds = append(cmds, cmd)
		}
		if handled {
			return m, tea.Batch(cmds...)
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

// handleServerMessage 处理服务端推送
func (m *Model) handleServerMessage(msg *protocol.Message) tea.Cmd {
	switch msg.Type {
	case protocol.MsgRoomCreated:
		var p protocol.RoomCreatedPayload
		if err := json.Unmarshal(msg.Payload, &p); err == nil {
			m.state.Reset()
			m.state.RoomCode = p.RoomCode
			m.state.HostID = p.HostID
			m.enterRoom()
		}

	case protocol.MsgRoomJoined:
		var p protocol.RoomJoinedPayload
		if err := json.Unmarshal(msg.Payload, &p); err == nil {
			m.state.Reset()
			m.state.RoomCode = p.RoomCode
			m.state.Rules = p.Rules
			m.state.Teams = p.Teams
			m.state.Players = p.Players
			m.state.State = p.State
			m.enterRoom()
		}

	case protocol.MsgRoomState:
		var p protocol.RoomStatePayload
		if err := json.Unmarshal(msg.Payload, &p); err == nil {
			if m.state.ApplySnapshot(&p) {
				m.state.SetMyTeam(m.client.PlayerID)
				m.syncPhase()
			}
		}

	case protocol.MsgRoomPlayers:
		var p protocol.RoomPlayersPayload
		if err := json.Unmarshal(msg.Payload, &p); err == nil {
			m.state.Players = p.Players
			m.state.SetMyTeam(m.client.PlayerID)
		}

	case protocol.MsgRoomTeams:
		var p protocol.RoomTeamsPayload
		if err := json.Unmarshal(msg.Payload, &p); err == nil {
			m.state.Teams = p.Teams
		}

	case protocol.MsgRoomRules:
		var p protocol.RoomRulesPayload
		if err := json.Unmarshal(msg.Payload, &p); err == nil {
			m.state.Rules = p.Rules
		}

	case protocol.MsgGameStarted:
		m.sound.Play("game_start")
		m.phase = PhasePlaying
		m.input.Reset()
		m.input.Placeholder = "回车抽牌"

	case protocol.MsgCardDealt:
		m.sound.Play("card_deal")
		m.input.Placeholder = "输入摆放位置 (0 = 最早)"

	case protocol.MsgCardRevealed:
		var p protocol.CardRevealedPayload
		if err := json.Unmarshal(msg.Payload, &p); err == nil {
			m.state.LastReveal = &p
			if p.Correct {
				m.sound.Play("correct")
			} else {
				m.sound.Play("wrong")
			}
		}

	case protocol.MsgDeckEmpty:
		return m.setNotice("🃏 牌堆已空", false)

	case protocol.MsgSuddenDeath:
		m.sound.Play("sudden_death")
		return m.setNotice("⚔️ 平局！进入加时赛", false)

	case protocol.MsgGameOver:
		var p protocol.GameOverPayload
		if err := json.Unmarshal(msg.Payload, &p); err == nil {
			m.state.WinnerTeamID = p.WinnerTeamID
			m.state.WinnerName = p.WinnerName
			m.state.FinalScores = p.Scores
			m.sound.Play("game_over")
			m.phase = PhaseGameOver
		}

	case protocol.MsgPlayerOffline:
		var p protocol.PlayerOfflinePayload
		if err := json.Unmarshal(msg.Payload, &p); err == nil {
			return m.setNotice(fmt.Sprintf("📴 %s 掉线了", p.PlayerName), false)
		}

	case protocol.MsgPlayerOnline:
		var p protocol.PlayerOnlinePayload
		if err := json.Unmarshal(msg.Payload, &p); err == nil {
			return m.setNotice(fmt.Sprintf("📶 %s 回来了", p.PlayerName), false)
		}

	case protocol.MsgChat:
		var p protocol.ChatPayload
		if err := json.Unmarshal(msg.Payload, &p); err == nil {
			m.appendChat(fmt.Sprintf("%s: %s", p.SenderName, p.Content))
		}

	case protocol.MsgStatsResult:
		var p protocol.StatsResultPayload
		if err := json.Unmarshal(msg.Payload, &p); err == nil {
			m.stats = &p
			m.phase = PhaseStats
		}

	case protocol.MsgLeaderboardResult:
		var p protocol.LeaderboardResultPayload
		if err := json.Unmarshal(msg.Payload, &p); err == nil {
			m.leaderboard = p.Entries
			m.phase = PhaseStats
		}

	case protocol.MsgError:
		var p protocol.ErrorPayload
		if err := json.Unmarshal(msg.Payload, &p); err == nil {
			return m.setNotice("⚠️ "+p.Message, true)
		}
	}

	return nil
}

// enterRoom 进入房间界面
func (m *Model) enterRoom() {
	m.phase = PhaseRoom
	m.input.Reset()
	m.input.Placeholder = "1-9 选队伍 / s 开始 / 输入文字聊天"
}

// syncPhase 根据房间状态对齐界面阶段（重连恢复用）
func (m *Model) syncPhase() {
	switch m.state.State {
	case "playing":
		if m.phase != PhasePlaying {
			m.phase = PhasePlaying
			m.input.Reset()
		}
	case "finished":
		m.phase = PhaseGameOver
	case "lobby":
		if m.phase == PhasePlaying || m.phase == PhaseGameOver {
			m.enterRoom()
		}
	}
}

const maxChatLog = 8

func (m *Model) appendChat(line string) {
	m.chatLog = append(m.chatLog, line)
	if len(m.chatLog) > maxChatLog {
		m.chatLog = m.chatLog[len(m.chatLog)-maxChatLog:]
	}
}

// Run 启动客户端界面
func Run(serverURL string) error {
	p := tea.NewProgram(NewModel(serverURL), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
