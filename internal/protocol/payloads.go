package protocol

// --- 客户端请求 Payloads ---

// ReconnectPayload 断线重连请求
type ReconnectPayload struct {
	Token    string `json:"token"`     // 重连令牌
	PlayerID string `json:"player_id"` // 玩家 ID
}

// PingPayload 心跳请求
type PingPayload struct {
	Timestamp int64 `json:"timestamp"` // 客户端时间戳（毫秒）
}

// CreateRoomPayload 创建房间请求
type CreateRoomPayload struct {
	HostName string `json:"host_name"`           // 房主昵称
	ClientID string `json:"client_id,omitempty"` // 稳定客户端标识（跨重连不变）
}

// JoinRoomPayload 加入房间请求
type JoinRoomPayload struct {
	RoomCode   string `json:"room_code"`
	PlayerName string `json:"player_name"`
	ClientID   string `json:"client_id,omitempty"` // 稳定客户端标识（跨重连不变）
}

// AssignTeamPayload 选择队伍请求
type AssignTeamPayload struct {
	TeamID string `json:"team_id"`
}

// UpdateRulesPayload 修改规则请求（字段为空表示不修改）
type UpdateRulesPayload struct {
	Packs         *[]string `json:"packs,omitempty"`
	WinTarget     *int      `json:"win_target,omitempty"`
	GuessMode     *string   `json:"guess_mode,omitempty"`
	TimerEnabled  *bool     `json:"timer_enabled,omitempty"`
	TimerDuration *int      `json:"timer_duration,omitempty"`
	TeamCount     *int      `json:"team_count,omitempty"`
}

// PlaceCardPayload 提交摆放位置请求
type PlaceCardPayload struct {
	TeamID   string `json:"team_id"`
	Position int    `json:"position"` // 时间线上的插入位置，自动夹取到 [0, len]
}

// GetLeaderboardPayload 获取排行榜请求
type GetLeaderboardPayload struct {
	Offset int `json:"offset"` // 偏移量
	Limit  int `json:"limit"`  // 数量
}

// --- 服务端响应 Payloads ---

// ConnectedPayload 连接成功响应
type ConnectedPayload struct {
	PlayerID       string `json:"player_id"`
	PlayerName     string `json:"player_name"`
	ReconnectToken string `json:"reconnect_token"` // 重连令牌
}

// ReconnectedPayload 重连成功响应
type ReconnectedPayload struct {
	PlayerID   string            `json:"player_id"`
	PlayerName string            `json:"player_name"`
	RoomCode   string            `json:"room_code,omitempty"` // 如果在房间中
	State      *RoomStatePayload `json:"state,omitempty"`     // 如果在房间中
}

// PongPayload 心跳响应
type PongPayload struct {
	ClientTimestamp int64 `json:"client_timestamp"` // 客户端发送的时间戳
	ServerTimestamp int64 `json:"server_timestamp"` // 服务器时间戳（毫秒）
}

// PlayerOfflinePayload 玩家掉线通知
type PlayerOfflinePayload struct {
	PlayerID   string `json:"player_id"`
	PlayerName string `json:"player_name"`
	Timeout    int    `json:"timeout"` // 等待重连超时（秒）
}

// PlayerOnlinePayload 玩家上线通知
type PlayerOnlinePayload struct {
	PlayerID   string `json:"player_id"`
	PlayerName string `json:"player_name"`
}

// RoomCreatedPayload 房间创建成功响应
type RoomCreatedPayload struct {
	RoomCode string     `json:"room_code"`
	HostID   string     `json:"host_id"`
	Player   PlayerInfo `json:"player"`
}

// RoomJoinedPayload 加入房间成功响应
type RoomJoinedPayload struct {
	RoomCode string       `json:"room_code"`
	Player   PlayerInfo   `json:"player"`
	Rules    RulesInfo    `json:"rules"`
	Teams    []TeamInfo   `json:"teams"`
	Players  []PlayerInfo `json:"players"` // 房间内所有玩家
	State    string       `json:"state"`   // lobby/playing/finished
}

// RoomPlayersPayload 玩家列表更新通知
type RoomPlayersPayload struct {
	Players []PlayerInfo `json:"players"`
}

// RoomRulesPayload 规则更新通知
type RoomRulesPayload struct {
	Rules RulesInfo `json:"rules"`
}

// RoomTeamsPayload 队伍列表更新通知
type RoomTeamsPayload struct {
	Teams []TeamInfo `json:"teams"`
}

// RoomStatePayload 房间状态快照（version 严格递增，接收方据此丢弃乱序快照）
type RoomStatePayload struct {
	Version          uint64                `json:"version"`
	State            string                `json:"state"` // lobby/playing/finished
	Rules            RulesInfo             `json:"rules"`
	Players          []PlayerInfo          `json:"players"`
	Teams            []TeamInfo            `json:"teams"`
	ActiveTeamID     string                `json:"active_team_id,omitempty"`
	CurrentCard      *HiddenCardInfo       `json:"current_card,omitempty"`
	RemainingCards   int                   `json:"remaining_cards"`
	PendingPlacement *PendingPlacementInfo `json:"pending_placement,omitempty"`
	SuddenDeath      bool                  `json:"sudden_death,omitempty"`
}

// GameStartedPayload 游戏开始通知
type GameStartedPayload struct {
	TurnOrder    []string `json:"turn_order"` // 队伍行动顺序
	ActiveTeamID string   `json:"active_team_id"`
}

// CardDealtPayload 新卡牌揭示通知（年份等比较信息在揭晓前不下发）
type CardDealtPayload struct {
	TeamID         string         `json:"team_id"`
	Card           HiddenCardInfo `json:"card"`
	RemainingCards int            `json:"remaining_cards"`
}

// CardPlacedPayload 摆放位置提交通知
type CardPlacedPayload struct {
	TeamID   string `json:"team_id"`
	Position int    `json:"position"`
}

// CardRevealedPayload 摆放结果揭晓通知
type CardRevealedPayload struct {
	TeamID   string   `json:"team_id"`
	Position int      `json:"position"`
	Correct  bool     `json:"correct"`
	Card     CardInfo `json:"card"` // 揭晓后下发完整卡牌信息
	Score    int      `json:"score"`
}

// RoundEndedPayload 一轮结束通知
type RoundEndedPayload struct {
	Results map[string]bool `json:"results"` // teamID -> 本轮是否摆放正确
}

// SuddenDeathPayload 进入加时赛通知
type SuddenDeathPayload struct {
	Teams []string `json:"teams"` // 参与加时赛的队伍
}

// GameOverPayload 游戏结束通知
type GameOverPayload struct {
	WinnerTeamID string         `json:"winner_team_id"`
	WinnerName   string         `json:"winner_name"`
	Scores       map[string]int `json:"scores"` // teamID -> 最终得分
}

// ErrorPayload 错误响应
type ErrorPayload struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// StatsResultPayload 个人统计结果
type StatsResultPayload struct {
	PlayerID      string  `json:"player_id"`
	PlayerName    string  `json:"player_name"`
	TotalGames    int     `json:"total_games"`
	Wins          int     `json:"wins"`
	Placements    int     `json:"placements"`
	CorrectPlaced int     `json:"correct_placed"`
	Accuracy      float64 `json:"accuracy"`
}

// LeaderboardResultPayload 排行榜结果
type LeaderboardResultPayload struct {
	Entries []LeaderboardEntry `json:"entries"`
}

// LeaderboardEntry 排行榜条目
type LeaderboardEntry struct {
	Rank       int    `json:"rank"`
	PlayerID   string `json:"player_id"`
	PlayerName string `json:"player_name"`
	Wins       int    `json:"wins"`
}

// ChatPayload 聊天消息
type ChatPayload struct {
	SenderID   string `json:"sender_id,omitempty"`   // 发送者 ID (服务端填充)
	SenderName string `json:"sender_name,omitempty"` // 发送者名字 (服务端填充)
	Content    string `json:"content"`               // 消息内容
	Time       int64  `json:"time,omitempty"`        // 发送时间 (服务端填充)
}

// --- 通用数据结构 ---

// PlayerInfo 玩家信息
type PlayerInfo struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	TeamID   string `json:"team_id,omitempty"` // 未选队伍时为空
	IsHost   bool   `json:"is_host"`
	Online   bool   `json:"online"` // 是否在线
}

// TeamInfo 队伍信息
type TeamInfo struct {
	ID       string     `json:"id"`
	Name     string     `json:"name"`
	Score    int        `json:"score"`
	Timeline []CardInfo `json:"timeline"` // 已摆放的卡牌，按年份升序
}

// RulesInfo 房间规则
type RulesInfo struct {
	Packs         []string `json:"packs"`          // 启用的曲包
	WinTarget     int      `json:"win_target"`     // 获胜所需得分
	GuessMode     string   `json:"guess_mode"`     // 猜测模式
	TimerEnabled  bool     `json:"timer_enabled"`  // 是否启用计时（由客户端执行，核心不强制）
	TimerDuration int      `json:"timer_duration"` // 计时时长（秒）
	TeamCount     int      `json:"team_count"`     // 队伍数量
}

// CardInfo 完整卡牌信息（仅在揭晓后下发）
type CardInfo struct {
	ID           string `json:"id"`
	PackID       string `json:"pack_id"`
	CardNumber   string `json:"card_number"`
	Title        string `json:"title"`
	Artist       string `json:"artist"`
	Year         int    `json:"year"`
	RawYear      string `json:"raw_year,omitempty"` // 源数据中无法解析的年份原文
	URL          string `json:"url"`
	YoutubeTitle string `json:"youtube_title,omitempty"`
	ISRC         string `json:"isrc,omitempty"`
}

// HiddenCardInfo 脱敏卡牌信息（揭晓前下发，只含播放所需字段，
// 年份、曲名、歌手等可反查年代的字段一律隐藏）
type HiddenCardInfo struct {
	ID           string `json:"id"`
	PackID       string `json:"pack_id"`
	URL          string `json:"url"`
	YoutubeTitle string `json:"youtube_title,omitempty"`
}

// PendingPlacementInfo 待揭晓的摆放
type PendingPlacementInfo struct {
	TeamID   string `json:"team_id"`
	Position int    `json:"position"`
}
