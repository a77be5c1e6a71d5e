package session

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"sync"
	"time"

	"github.com/beatline/beatline/internal/server/storage"
)

const (
	// 会话过期时间（离线超过该时长后清理）
	sessionExpireTime = 10 * time.Minute
)

// PlayerSession 玩家会话（用于断线重连）
type PlayerSession struct {
	PlayerID       string // 连接 ID
	PlayerName     string
	ClientID       string // 客户端自报的稳定标识
	ReconnectToken string
	RoomCode       string

	DisconnectedAt time.Time // 断线时间
	IsOnline       bool      // 是否在线

	mu sync.RWMutex
}

// Info 读取会话身份快照
func (s *PlayerSession) Info() (playerName, clientID, roomCode string) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.PlayerName, s.ClientID, s.RoomCode
}

// SessionManager 会话管理器
type SessionManager struct {
	store            *storage.RedisStore // 可为 nil
	reconnectTimeout time.Duration
	sessions         map[string]*PlayerSession // playerID -> session
	tokens           map[string]string         // token -> playerID
	mu               sync.RWMutex
}

// NewSessionManager 创建会话管理器
func NewSessionManager(store *storage.RedisStore, reconnectTimeout time.Duration) *SessionManager {
	sm := &SessionManager{
		store:            store,
		reconnectTimeout: reconnectTimeout,
		sessions:         make(map[string]*PlayerSession),
		tokens:           make(map[string]string),
	}

	// 启动会话清理协程
	go sm.cleanupLoop()

	return sm
}

// ReconnectTimeout 掉线重连等待时长
func (sm *SessionManager) ReconnectTimeout() time.Duration {
	return sm.reconnectTimeout
}

// CreateSession 创建新会话
func (sm *SessionManager) CreateSession(playerID, playerName, clientID string) *PlayerSession {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	token := generateToken()

	session := &PlayerSession{
		PlayerID:       playerID,
		PlayerName:     playerName,
		ClientID:       clientID,
		ReconnectToken: token,
		IsOnline:       true,
	}

	sm.sessions[playerID] = session
	sm.tokens[token] = playerID

	sm.persist(session)

	return session
}

// GetSession 获取会话
func (sm *SessionManager) GetSession(playerID string) *PlayerSession {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return sm.sessions[playerID]
}

// GetSessionByToken 通过 token 获取会话
func (sm *SessionManager) GetSessionByToken(token string) *PlayerSession {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	playerID, ok := sm.tokens[token]
	if !ok {
		return nil
	}
	return sm.sessions[playerID]
}

// SetOffline 设置玩家离线
func (sm *SessionManager) SetOffline(playerID string) {
	sm.mu.RLock()
	session, ok := sm.sessions[playerID]
	sm.mu.RUnlock()

	if ok {
		session.mu.Lock()
		session.IsOnline = false
		session.DisconnectedAt = time.Now()
		session.mu.Unlock()
		sm.persist(session)
	}
}

// SetOnline 设置玩家上线
func (sm *SessionManager) SetOnline(playerID string) {
	sm.mu.RLock()
	session, ok := sm.sessions[playerID]
	sm.mu.RUnlock()

	if ok {
		session.mu.Lock()
		session.IsOnline = true
		session.DisconnectedAt = time.Time{}
		session.mu.Unlock()
		sm.persist(session)
	}
}

// SetRoom 设置玩家所在房间
func (sm *SessionManager) SetRoom(playerID, roomCode string) {
	sm.mu.RLock()
	session, ok := sm.sessions[playerID]
	sm.mu.RUnlock()

	if ok {
		session.mu.Lock()
		session.RoomCode = roomCode
		session.mu.Unlock()
		sm.persist(session)
	}
}

// SetIdentity 更新玩家身份（建房/加房时自报的昵称和稳定客户端标识）
func (sm *SessionManager) SetIdentity(playerID, playerName, clientID string) {
	sm.mu.RLock()
	session, ok := sm.sessions[playerID]
	sm.mu.RUnlock()

	if ok {
		session.mu.Lock()
		if playerName != "" {
			session.PlayerName = playerName
		}
		if clientID != "" {
			session.ClientID = clientID
		}
		session.mu.Unlock()
		sm.persist(session)
	}
}

// RebindSession 把会话迁移到新的连接 ID（重连后沿用重连令牌）
func (sm *SessionManager) RebindSession(oldPlayerID, newPlayerID string) *PlayerSession {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	session, ok := sm.sessions[oldPlayerID]
	if !ok {
		return nil
	}

	delete(sm.sessions, oldPlayerID)
	session.mu.Lock()
	session.PlayerID = newPlayerID
	session.IsOnline = true
	session.DisconnectedAt = time.Time{}
	session.mu.Unlock()

	// 新连接连上时创建的临时会话被顶替，其令牌一并作废
	if temp, ok := sm.sessions[newPlayerID]; ok && temp != session {
		delete(sm.tokens, temp.ReconnectToken)
	}
	sm.sessions[newPlayerID] = session
	sm.tokens[session.ReconnectToken] = newPlayerID

	if sm.store != nil {
		go func() { _ = sm.store.DeleteSession(context.Background(), oldPlayerID) }()
	}
	sm.persist(session)

	return session
}

// DeleteSession 删除会话
func (sm *SessionManager) DeleteSession(playerID string) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if session, ok := sm.sessions[playerID]; ok {
		delete(sm.tokens, session.ReconnectToken)
		delete(sm.sessions, playerID)
		if sm.store != nil {
			go func() { _ = sm.store.DeleteSession(context.Background(), playerID) }()
		}
	}
}

// CanReconnect 检查玩家是否可以重连
func (sm *SessionManager) CanReconnect(token, playerID string) bool {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	storedPlayerID, ok := sm.tokens[token]
	if !ok || storedPlayerID != playerID {
		return false
	}

	session, ok := sm.sessions[playerID]
	if !ok {
		return false
	}

	session.mu.RLock()
	defer session.mu.RUnlock()

	// 检查是否在重连时限内
	if !session.IsOnline && time.Since(session.DisconnectedAt) > sm.reconnectTimeout {
		return false
	}

	return true
}

// IsOnline 检查玩家是否在线
func (sm *SessionManager) IsOnline(playerID string) bool {
	sm.mu.RLock()
	session, ok := sm.sessions[playerID]
	sm.mu.RUnlock()

	if !ok {
		return false
	}

	session.mu.RLock()
	defer session.mu.RUnlock()
	return session.IsOnline
}

// persist 异步落库
func (sm *SessionManager) persist(session *PlayerSession) {
	if sm.store == nil {
		return
	}

	session.mu.RLock()
	data := &storage.PlayerSessionData{
		PlayerID:       session.PlayerID,
		PlayerName:     session.PlayerName,
		ClientID:       session.ClientID,
		ReconnectToken: session.ReconnectToken,
		RoomCode:       session.RoomCode,
		IsOnline:       session.IsOnline,
	}
	if !session.DisconnectedAt.IsZero() {
		data.DisconnectedAt = session.DisconnectedAt.Unix()
	}
	session.mu.RUnlock()

	go func() { _ = sm.store.SaveSession(context.Background(), data) }()
}

// cleanupLoop 定期清理过期会话
func (sm *SessionManager) cleanupLoop() {
	ticker := time.NewTicker(1 * time.Minute)
	defer ticker.Stop()

	for range ticker.C {
		sm.cleanup()
	}
}

// cleanup 清理过期会话
func (sm *SessionManager) cleanup() {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	now := time.Now()
	for playerID, session := range sm.sessions {
		session.mu.RLock()
		expired := !session.IsOnline && now.Sub(session.DisconnectedAt) > sessionExpireTime
		session.mu.RUnlock()

		if expired {
			delete(sm.tokens, session.ReconnectToken)
			delete(sm.sessions, playerID)
			if sm.store != nil {
				go func() { _ = sm.store.DeleteSession(context.Background(), playerID) }()
			}
		}
	}
}

// generateToken 生成随机 token
func generateToken() string {
	bytes := make([]byte, 32)
	_, _ = rand.Read(bytes)
	return hex.EncodeToString(bytes)
}
