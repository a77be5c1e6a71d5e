package room

// RoomState 房间状态
type RoomState int

const (
	RoomStateLobby RoomState = iota
	RoomStatePlaying
	RoomStateFinished
)

// String 返回状态的线上表示（与协议快照中的 state 字段一致）
func (s RoomState) String() string {
	switch s {
	case RoomStateLobby:
		return "lobby"
	case RoomStatePlaying:
		return "playing"
	case RoomStateFinished:
		return "finished"
	default:
		return "unknown"
	}
}
