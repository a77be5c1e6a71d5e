package ui

import (
	"github.com/beatline/beatline/internal/protocol"
)

// Phase 界面阶段
type Phase int

const (
	PhaseConnecting Phase = iota
	PhaseName             // 输入昵称
	PhaseLobby            // 主菜单
	PhaseJoin             // 输入房间号
	PhaseRoom             // 房间等待界面
	PhasePlaying          // 对局中
	PhaseGameOver         // 结算
	PhaseStats            // 战绩与排行榜
)

// --- tea.Msg 类型 ---

// ConnectedMsg 连接成功
type ConnectedMsg struct{}

// ConnectionErrorMsg 连接失败或断开
type ConnectionErrorMsg struct{ Err error }

// ServerMessage 服务端推送的消息
type ServerMessage struct{ Msg *protocol.Message }

// ReconnectSuccessMsg 重连成功
type ReconnectSuccessMsg struct{}

// ClearNoticeMsg 清除临时提示
type ClearNoticeMsg struct{}
