package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/beatline/beatline/internal/protocol"
)

const (
	// Redis key 前缀
	roomKeyPrefix    = "room:"
	sessionKeyPrefix = "session:"
	statsKeyPrefix   = "stats:"
	leaderboardKey   = "leaderboard:wins"

	// 房间数据过期时间
	roomExpiration = 2 * time.Hour
)

// RoomData 房间数据（用于 Redis 序列化）
type RoomData struct {
	Code      string                `json:"code"`
	State     string                `json:"state"`
	HostID    string                `json:"host_id"`
	Version   uint64                `json:"version"`
	Rules     protocol.RulesInfo    `json:"rules"`
	Players   []protocol.PlayerInfo `json:"players"`
	Teams     []protocol.TeamInfo   `json:"teams"`
	CreatedAt int64                 `json:"created_at"`
	UpdatedAt int64                 `json:"updated_at"`
}

// PlayerSessionData 玩家会话数据（用于 Redis 序列化）
type PlayerSessionData struct {
	PlayerID       string `json:"player_id"`
	PlayerName     string `json:"player_name"`
	ClientID       string `json:"client_id"`
	ReconnectToken string `json:"token"`
	RoomCode       string `json:"room_code"`
	IsOnline       bool   `json:"is_online"`
	DisconnectedAt int64  `json:"disconnected_at,omitempty"`
}

// PlayerStats 玩家统计数据
type PlayerStats struct {
	PlayerName    string
	TotalGames    int
	Wins          int
	Placements    int
	CorrectPlaced int
}

// RedisStore Redis 存储
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore 创建 Redis 存储
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

// --- 房间存储 ---

// SaveRoom 保存房间到 Redis
func (rs *RedisStore) SaveRoom(ctx context.Context, roomCode string, data *RoomData) error {
	if data == nil {
		return nil
	}

	jsonData, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("序列化房间数据失败: %w", err)
	}

	key := roomKeyPrefix + roomCode
	return rs.client.Set(ctx, key, jsonData, roomExpiration).Err()
}

// LoadRoom 从 Redis 加载房间（仅返回数据，需要外部重建）
func (rs *RedisStore) LoadRoom(ctx context.Context, code string) (*RoomData, error) {
	key := roomKeyPrefix + code
	data, err := rs.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil // 房间不存在
		}
		return nil, err
	}

	var roomData RoomData
	if err := json.Unmarshal(data, &roomData); err != nil {
		return nil, fmt.Errorf("反序列化房间数据失败: %w", err)
	}

	return &roomData, nil
}

// DeleteRoom 从 Redis 删除房间
func (rs *RedisStore) DeleteRoom(ctx context.Context, code string) error {
	key := roomKeyPrefix + code
	return rs.client.Del(ctx, key).Err()
}

// GetAllRoomCodes 获取所有房间号
func (rs *RedisStore) GetAllRoomCodes(ctx context.Context) ([]string, error) {
	keys, err := rs.client.Keys(ctx, roomKeyPrefix+"*").Result()
	if err != nil {
		return nil, err
	}

	codes := make([]string, len(keys))
	for i, key := range keys {
		codes[i] = key[len(roomKeyPrefix):]
	}
	return codes, nil
}

// SetRoomExpiration 设置房间过期时间
func (rs *RedisStore) SetRoomExpiration(ctx context.Context, code string, expiration time.Duration) error {
	key := roomKeyPrefix + code
	return rs.client.Expire(ctx, key, expiration).Err()
}

// --- 会话存储 ---

// SaveSession 保存会话到 Redis
func (rs *RedisStore) SaveSession(ctx context.Context, session *PlayerSessionData) error {
	data := map[string]any{
		"player_id":   session.PlayerID,
		"player_name": session.PlayerName,
		"client_id":   session.ClientID,
		"token":       session.ReconnectToken,
		"room_code":   session.RoomCode,
		"is_online":   session.IsOnline,
	}

	if session.DisconnectedAt != 0 {
		data["disconnected_at"] = session.DisconnectedAt
	}

	key := sessionKeyPrefix + session.PlayerID
	return rs.client.HSet(ctx, key, data).Err()
}

// LoadSession 从 Redis 加载会话
func (rs *RedisStore) LoadSession(ctx context.Context, playerID string) (*PlayerSessionData, error) {
	key := sessionKeyPrefix + playerID
	data, err := rs.client.HGetAll(ctx, key).Result()
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, nil
	}

	session := &PlayerSessionData{
		PlayerID:       data["player_id"],
		PlayerName:     data["player_name"],
		ClientID:       data["client_id"],
		ReconnectToken: data["token"],
		RoomCode:       data["room_code"],
		IsOnline:       data["is_online"] == "1",
	}
	if raw, ok := data["disconnected_at"]; ok {
		if ts, err := strconv.ParseInt(raw, 10, 64); err == nil {
			session.DisconnectedAt = ts
		}
	}

	return session, nil
}

// DeleteSession 删除会话
func (rs *RedisStore) DeleteSession(ctx context.Context, playerID string) error {
	key := sessionKeyPrefix + playerID
	return rs.client.Del(ctx, key).Err()
}

// --- 统计与排行榜 ---

// RecordGameResult 记录一局游戏的个人战绩，胜者同时计入排行榜
func (rs *RedisStore) RecordGameResult(ctx context.Context, playerID, playerName string, won bool, placements, correct int) error {
	key := statsKeyPrefix + playerID

	pipe := rs.client.Pipeline()
	pipe.HSet(ctx, key, "player_name", playerName)
	pipe.HIncrBy(ctx, key, "total_games", 1)
	pipe.HIncrBy(ctx, key, "placements", int64(placements))
	pipe.HIncrBy(ctx, key, "correct_placed", int64(correct))
	if won {
		pipe.HIncrBy(ctx, key, "wins", 1)
		pipe.ZIncrBy(ctx, leaderboardKey, 1, playerID)
	}

	_, err := pipe.Exec(ctx)
	return err
}

// LoadStats 加载玩家统计数据，无记录时返回 nil
func (rs *RedisStore) LoadStats(ctx context.Context, playerID string) (*PlayerStats, error) {
	key := statsKeyPrefix + playerID
	data, err := rs.client.HGetAll(ctx, key).Result()
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, nil
	}

	atoi := func(s string) int {
		n, _ := strconv.Atoi(s)
		return n
	}

	return &PlayerStats{
		PlayerName:    data["player_name"],
		TotalGames:    atoi(data["total_games"]),
		Wins:          atoi(data["wins"]),
		Placements:    atoi(data["placements"]),
		CorrectPlaced: atoi(data["correct_placed"]),
	}, nil
}

// Leaderboard 按胜场数倒序返回排行榜分页
func (rs *RedisStore) Leaderboard(ctx context.Context, offset, limit int) ([]protocol.LeaderboardEntry, error) {
	if limit <= 0 {
		limit = 10
	}

	results, err := rs.client.ZRevRangeWithScores(ctx, leaderboardKey, int64(offset), int64(offset+limit-1)).Result()
	if err != nil {
		return nil, err
	}

	entries := make([]protocol.LeaderboardEntry, 0, len(results))
	for i, z := range results {
		playerID, _ := z.Member.(string)
		name, err := rs.client.HGet(ctx, statsKeyPrefix+playerID, "player_name").Result()
		if err != nil && !errors.Is(err, redis.Nil) {
			return nil, err
		}

		entries = append(entries, protocol.LeaderboardEntry{
			Rank:       offset + i + 1,
			PlayerID:   playerID,
			PlayerName: name,
			Wins:       int(z.Score),
		})
	}

	return entries, nil
}
