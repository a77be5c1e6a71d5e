package protocol

import "encoding/json"

// Message 基础消息结构
type Message struct {
	Type    MessageType     `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// MessageType 消息类型
type MessageType string

// 客户端 → 服务端 消息类型
const (
	// 连接操作
	MsgReconnect MessageType = "reconnect" // 断线重连
	MsgPing      MessageType = "ping"      // 心跳 ping

	// 房间操作
	MsgCreateRoom  MessageType = "create_room"  // 创建房间
	MsgJoinRoom    MessageType = "join_room"    // 加入房间
	MsgSyncRoom    MessageType = "sync_room"    // 重连后请求房间快照
	MsgLeaveRoom   MessageType = "leave_room"   // 离开房间
	MsgAssignTeam  MessageType = "assign_team"  // 选择队伍
	MsgUpdateRules MessageType = "update_rules" // 修改规则

	// 游戏操作
	MsgStartGame  MessageType = "start_game"  // 开始游戏
	MsgNextCard   MessageType = "next_card"   // 进入下一回合（抽牌）
	MsgPlaceCard  MessageType = "place_card"  // 提交摆放位置
	MsgRevealCard MessageType = "reveal_card" // 揭晓摆放结果

	// 信息查询
	MsgGetStats       MessageType = "get_stats"       // 获取个人统计
	MsgGetLeaderboard MessageType = "get_leaderboard" // 获取排行榜
	MsgChat           MessageType = "chat"            // 聊天消息
)

// 服务端 → 客户端 消息类型
const (
	// 连接相关
	MsgConnected     MessageType = "connected"      // 连接成功
	MsgReconnected   MessageType = "reconnected"    // 重连成功
	MsgPong          MessageType = "pong"           // 心跳 pong
	MsgPlayerOffline MessageType = "player_offline" // 玩家掉线通知
	MsgPlayerOnline  MessageType = "player_online"  // 玩家上线通知

	// 房间相关
	MsgRoomCreated MessageType = "room_created" // 房间创建成功
	MsgRoomJoined  MessageType = "room_joined"  // 加入房间成功
	MsgRoomPlayers MessageType = "room_players" // 玩家列表更新
	MsgRoomRules   MessageType = "room_rules"   // 规则更新
	MsgRoomTeams   MessageType = "room_teams"   // 队伍列表更新
	MsgRoomState   MessageType = "room_state"   // 房间状态快照

	// 游戏流程
	MsgGameStarted  MessageType = "game_started"  // 游戏开始
	MsgCardDealt    MessageType = "card_dealt"    // 新卡牌揭示给当前队伍
	MsgDeckEmpty    MessageType = "deck_empty"    // 牌堆已空
	MsgCardPlaced   MessageType = "card_placed"   // 摆放位置已提交（未验证）
	MsgCardRevealed MessageType = "card_revealed" // 摆放结果揭晓
	MsgRoundEnded   MessageType = "round_ended"   // 一轮结束
	MsgSuddenDeath  MessageType = "sudden_death"  // 进入加时赛
	MsgGameOver     MessageType = "game_over"     // 游戏结束

	// 排行榜
	MsgStatsResult       MessageType = "stats_result"       // 个人统计结果
	MsgLeaderboardResult MessageType = "leaderboard_result" // 排行榜结果

	// 错误
	MsgError MessageType = "error" // 错误消息
)
