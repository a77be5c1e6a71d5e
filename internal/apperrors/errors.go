package apperrors

import (
	"github.com/beatline/beatline/internal/protocol"
)

// GameError 游戏错误（房间和回合逻辑共享）
type GameError struct {
	Code    int
	Message string
}

func (e *GameError) Error() string {
	return e.Message
}

// 预定义错误
var (
	ErrRoomNotFound = &GameError{Code: protocol.ErrCodeRoomNotFound, Message: "房间不存在"}
	ErrNotInRoom    = &GameError{Code: protocol.ErrCodeNotInRoom, Message: "您不在房间中"}
	ErrTeamNotFound = &GameError{Code: protocol.ErrCodeTeamNotFound, Message: "队伍不存在"}
	ErrNotHost      = &GameError{Code: protocol.ErrCodeNotHost, Message: "只有房主可以执行此操作"}

	ErrGameNotStarted    = &GameError{Code: protocol.ErrCodeGameNotStarted, Message: "游戏尚未开始"}
	ErrGameStarted       = &GameError{Code: protocol.ErrCodeGameStarted, Message: "游戏已开始"}
	ErrNotActiveTeam     = &GameError{Code: protocol.ErrCodeNotActiveTeam, Message: "还没轮到您的队伍"}
	ErrNotEnoughTeams    = &GameError{Code: protocol.ErrCodeNotEnoughTeams, Message: "至少需要两支队伍"}
	ErrNoPacks           = &GameError{Code: protocol.ErrCodeNoPacks, Message: "尚未选择任何曲包"}
	ErrUnassignedPlayers = &GameError{Code: protocol.ErrCodeUnassignedPlayers, Message: "还有玩家未加入队伍"}
	ErrEmptyDeck         = &GameError{Code: protocol.ErrCodeEmptyDeck, Message: "牌堆已空"}
	ErrCardPending       = &GameError{Code: protocol.ErrCodeCardPending, Message: "当前卡牌尚未处理"}
	ErrPlacementPending  = &GameError{Code: protocol.ErrCodePlacementPending, Message: "上一次摆放尚未揭晓"}
	ErrNoCard            = &GameError{Code: protocol.ErrCodeNoCard, Message: "当前没有待摆放的卡牌"}
	ErrNoPlacement       = &GameError{Code: protocol.ErrCodeNoPlacement, Message: "当前没有待揭晓的摆放"}
)
