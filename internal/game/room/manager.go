package room

import (
	"context"
	"log"
	"math/rand/v2"
	"time"

	"github.com/beatline/beatline/internal/apperrors"
	"github.com/beatline/beatline/internal/protocol"
	"github.com/beatline/beatline/internal/types"
)

// CreateRoom 创建房间，创建者自动成为房主
func (rm *Manager) CreateRoom(client types.ClientInterface, hostName, clientID string) (*Room, error) {
	rm.mu.Lock()
	defer rm.mu.Unlock()

	// 生成唯一房间号
	code := rm.generateRoomCode()

	if hostName == "" {
		hostName = client.GetName()
	}

	now := time.Now()
	room := &Room{
		Code:        code,
		HostID:      client.GetID(),
		State:       RoomStateLobby,
		Rules:       DefaultRules(),
		Players:     make(map[string]*Player),
		Teams:       make(map[string]*Team),
		PlayerOrder: make([]string, 0, 4),
		CreatedAt:   now,
		LastActive:  now,
		// 每个房间独立的随机源，房间内洗牌不与其它房间竞争
		rng:       rand.New(rand.NewPCG(rm.rng.Uint64(), rm.rng.Uint64())),
		onGameEnd: rm.onGameEnd,
	}
	room.applyTeamCount(room.Rules.TeamCount)

	// 添加房主
	host := &Player{
		ID:       client.GetID(),
		ClientID: clientID,
		Name:     hostName,
		Client:   client,
	}
	room.Players[host.ID] = host
	room.PlayerOrder = append(room.PlayerOrder, host.ID)
	client.SetRoom(code)

	rm.rooms[code] = room
	rm.saveRoomLocked(room)

	log.Printf("🏠 房间 %s 已创建，房主 %s", code, hostName)

	return room, nil
}

// JoinRoom 加入房间。clientID 与房间内已有玩家匹配时重绑该玩家的连接
// 而不是新建玩家（断线重连）。
func (rm *Manager) JoinRoom(client types.ClientInterface, code, name, clientID string) (*Room, bool, error) {
	rm.mu.RLock()
	room, exists := rm.rooms[code]
	rm.mu.RUnlock()
	if !exists {
		return nil, false, apperrors.ErrRoomNotFound
	}

	rejoined := room.Join(client, name, clientID)
	rm.saveRoom(room)

	return room, rejoined, nil
}

// LeaveRoom 主动离开房间，玩家记录立即移除
func (rm *Manager) LeaveRoom(client types.ClientInterface) {
	room, err := rm.roomOf(client)
	if err != nil {
		return
	}

	empty := room.RemovePlayer(client.GetID())
	client.SetRoom("")

	log.Printf("👋 玩家 %s 离开房间 %s", client.GetName(), room.Code)

	if empty {
		rm.destroyRoom(room.Code)
	} else {
		rm.saveRoom(room)
	}
}

// HandleDisconnect 处理玩家掉线。带稳定标识的玩家保留记录等待重连，
// 匿名玩家等同主动离开。
func (rm *Manager) HandleDisconnect(client types.ClientInterface, reconnectTimeout time.Duration) {
	room, err := rm.roomOf(client)
	if err != nil {
		return
	}

	empty := room.MarkOffline(client.GetID(), reconnectTimeout)

	log.Printf("📴 玩家 %s 在房间 %s 中掉线", client.GetName(), room.Code)

	if empty {
		rm.destroyRoom(room.Code)
	} else {
		rm.saveRoom(room)
	}
}

// SyncRoom 重连后向请求者补发房间快照
func (rm *Manager) SyncRoom(client types.ClientInterface) error {
	room, err := rm.roomOf(client)
	if err != nil {
		return err
	}
	room.SendStateTo(client)
	return nil
}

// AssignTeam 选择队伍
func (rm *Manager) AssignTeam(client types.ClientInterface, teamID string) error {
	room, err := rm.roomOf(client)
	if err != nil {
		return err
	}
	if err := room.AssignTeam(client.GetID(), teamID); err != nil {
		return err
	}
	rm.saveRoom(room)
	return nil
}

// UpdateRules 修改房间规则
func (rm *Manager) UpdateRules(client types.ClientInterface, patch protocol.UpdateRulesPayload) error {
	room, err := rm.roomOf(client)
	if err != nil {
		return err
	}
	if err := room.UpdateRules(client.GetID(), patch); err != nil {
		return err
	}
	rm.saveRoom(room)
	return nil
}

// StartGame 开始游戏
func (rm *Manager) StartGame(client types.ClientInterface) error {
	room, err := rm.roomOf(client)
	if err != nil {
		return err
	}
	if err := room.Start(client.GetID(), rm.source); err != nil {
		return err
	}
	rm.saveRoom(room)
	return nil
}

// NextCard 进入下一回合（抽牌）
func (rm *Manager) NextCard(client types.ClientInterface) error {
	room, err := rm.roomOf(client)
	if err != nil {
		return err
	}
	if err := room.NextCard(client.GetID()); err != nil {
		return err
	}
	rm.saveRoom(room)
	return nil
}

// PlaceCard 提交摆放位置
func (rm *Manager) PlaceCard(client types.ClientInterface, teamID string, position int) error {
	room, err := rm.roomOf(client)
	if err != nil {
		return err
	}
	if err := room.Place(client.GetID(), teamID, position); err != nil {
		return err
	}
	rm.saveRoom(room)
	return nil
}

// RevealCard 揭晓摆放结果
func (rm *Manager) RevealCard(client types.ClientInterface) error {
	room, err := rm.roomOf(client)
	if err != nil {
		return err
	}
	if err := room.Reveal(client.GetID()); err != nil {
		return err
	}
	rm.saveRoom(room)
	return nil
}

// GetRoom 获取房间
func (rm *Manager) GetRoom(code string) *Room {
	rm.mu.RLock()
	defer rm.mu.RUnlock()
	return rm.rooms[code]
}

// RoomCount 当前房间数
func (rm *Manager) RoomCount() int {
	rm.mu.RLock()
	defer rm.mu.RUnlock()
	return len(rm.rooms)
}

// ActiveGamesCount 进行中的对局数（优雅停机前的等待依据）
func (rm *Manager) ActiveGamesCount() int {
	rm.mu.RLock()
	defer rm.mu.RUnlock()

	count := 0
	for _, r := range rm.rooms {
		r.mu.Lock()
		if r.State == RoomStatePlaying {
			count++
		}
		r.mu.Unlock()
	}
	return count
}

// roomOf 按客户端当前所在房间号取房间
func (rm *Manager) roomOf(client types.ClientInterface) (*Room, error) {
	code := client.GetRoom()
	if code == "" {
		return nil, apperrors.ErrNotInRoom
	}

	rm.mu.RLock()
	room, exists := rm.rooms[code]
	rm.mu.RUnlock()
	if !exists {
		return nil, apperrors.ErrRoomNotFound
	}
	return room, nil
}

// generateRoomCode 生成唯一房间号，调用方需持有管理器锁
func (rm *Manager) generateRoomCode() string {
	for {
		code := make([]byte, roomCodeLength)
		for i := range code {
			code[i] = roomCodeChars[rm.rng.IntN(len(roomCodeChars))]
		}
		codeStr := string(code)
		if _, exists := rm.rooms[codeStr]; !exists {
			return codeStr
		}
	}
}

// saveRoom 异步保存房间到存储
func (rm *Manager) saveRoom(room *Room) {
	if rm.store == nil {
		return
	}
	go func() { _ = rm.store.SaveRoom(context.Background(), room.Code, room.ToRoomData()) }()
}

// saveRoomLocked 同 saveRoom，调用方已持有管理器锁
func (rm *Manager) saveRoomLocked(room *Room) {
	if rm.store == nil {
		return
	}
	store := rm.store
	go func() { _ = store.SaveRoom(context.Background(), room.Code, room.ToRoomData()) }()
}

// destroyRoom 解散房间
func (rm *Manager) destroyRoom(code string) {
	rm.mu.Lock()
	delete(rm.rooms, code)
	rm.mu.Unlock()

	if rm.store != nil {
		go func() { _ = rm.store.DeleteRoom(context.Background(), code) }()
	}

	log.Printf("🏠 房间 %s 已解散", code)
}

// cleanupLoop 定期清理闲置房间
func (rm *Manager) cleanupLoop() {
	ticker := time.NewTicker(1 * time.Minute)
	defer ticker.Stop()

	for range ticker.C {
		rm.cleanup()
	}
}

// cleanup 清理超时房间：大厅状态长期无动作的房间，
// 以及所有玩家都已掉线且超过等待期的房间
func (rm *Manager) cleanup() {
	rm.mu.Lock()
	defer rm.mu.Unlock()

	now := time.Now()

	for code, room := range rm.rooms {
		if !room.Expired(now, rm.roomTimeout) {
			continue
		}

		room.NotifyClosed()
		delete(rm.rooms, code)
		if rm.store != nil {
			store := rm.store
			go func() { _ = store.DeleteRoom(context.Background(), code) }()
		}
		log.Printf("🧹 房间 %s 超时已清理", code)
	}
}
