package protocol

// 错误码
const (
	ErrCodeUnknown     = 1000
	ErrCodeInvalidMsg  = 1001
	ErrCodeRateLimit   = 1002 // 速率限制
	ErrCodeMaintenance = 1003 // 维护模式

	ErrCodeRoomNotFound = 2001
	ErrCodeNotInRoom    = 2002
	ErrCodeTeamNotFound = 2003
	ErrCodeNotHost      = 2004

	ErrCodeGameNotStarted    = 3001
	ErrCodeGameStarted       = 3002
	ErrCodeNotActiveTeam     = 3003
	ErrCodeNotEnoughTeams    = 3004
	ErrCodeNoPacks           = 3005
	ErrCodeUnassignedPlayers = 3006
	ErrCodeEmptyDeck         = 3007
	ErrCodeCardPending       = 3008
	ErrCodePlacementPending  = 3009
	ErrCodeNoCard            = 3010
	ErrCodeNoPlacement       = 3011
)

// ErrorMessages 错误码对应的消息
var ErrorMessages = map[int]string{
	ErrCodeUnknown:     "未知错误",
	ErrCodeInvalidMsg:  "无效的消息格式",
	ErrCodeRateLimit:   "请求过于频繁",
	ErrCodeMaintenance: "服务器维护中，暂时无法执行此操作",

	ErrCodeRoomNotFound: "房间不存在",
	ErrCodeNotInRoom:    "您不在房间中",
	ErrCodeTeamNotFound: "队伍不存在",
	ErrCodeNotHost:      "只有房主可以执行此操作",

	ErrCodeGameNotStarted:    "游戏尚未开始",
	ErrCodeGameStarted:       "游戏已开始",
	ErrCodeNotActiveTeam:     "还没轮到您的队伍",
	ErrCodeNotEnoughTeams:    "至少需要两支队伍",
	ErrCodeNoPacks:           "尚未选择任何曲包",
	ErrCodeUnassignedPlayers: "还有玩家未加入队伍",
	ErrCodeEmptyDeck:         "牌堆已空",
	ErrCodeCardPending:       "当前卡牌尚未处理",
	ErrCodePlacementPending:  "上一次摆放尚未揭晓",
	ErrCodeNoCard:            "当前没有待摆放的卡牌",
	ErrCodeNoPlacement:       "当前没有待揭晓的摆放",
}
