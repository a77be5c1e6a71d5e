package storage

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/beatline/beatline/internal/protocol"
)

func newTestStore(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisStore(client), mr
}

func TestSaveLoadRoom(t *testing.T) {
	t.Parallel()

	store, _ := newTestStore(t)
	ctx := context.Background()

	data := &RoomData{
		Code:    "AB12",
		State:   "lobby",
		HostID:  "host-1",
		Version: 3,
		Rules:   protocol.RulesInfo{WinTarget: 10, TeamCount: 2},
	}
	require.NoError(t, store.SaveRoom(ctx, "AB12", data))

	loaded, err := store.LoadRoom(ctx, "AB12")
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, "AB12", loaded.Code)
	assert.Equal(t, "host-1", loaded.HostID)
	assert.Equal(t, uint64(3), loaded.Version)
	assert.Equal(t, 10, loaded.Rules.WinTarget)
}

func TestLoadRoomNotFound(t *testing.T) {
	t.Parallel()

	store, _ := newTestStore(t)

	loaded, err := store.LoadRoom(context.Background(), "NOPE")
	require.NoError(t, err)
	assert.Nil(t, loaded, "不存在的房间应返回 nil 而非错误")
}

func TestSaveRoomNilData(t *testing.T) {
	t.Parallel()

	store, _ := newTestStore(t)
	assert.NoError(t, store.SaveRoom(context.Background(), "AB12", nil))
}

func TestDeleteRoom(t *testing.T) {
	t.Parallel()

	store, _ := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.SaveRoom(ctx, "AB12", &RoomData{Code: "AB12"}))
	require.NoError(t, store.DeleteRoom(ctx, "AB12"))

	loaded, err := store.LoadRoom(ctx, "AB12")
	require.NoError(t, err)
	assert.Nil(t, loaded)
}

func TestGetAllRoomCodes(t *testing.T) {
	t.Parallel()

	store, _ := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.SaveRoom(ctx, "AB12", &RoomData{Code: "AB12"}))
	require.NoError(t, store.SaveRoom(ctx, "CD34", &RoomData{Code: "CD34"}))

	codes, err := store.GetAllRoomCodes(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"AB12", "CD34"}, codes)
}

func TestRoomExpiration(t *testing.T) {
	t.Parallel()

	store, mr := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.SaveRoom(ctx, "AB12", &RoomData{Code: "AB12"}))
	require.NoError(t, store.SetRoomExpiration(ctx, "AB12", time.Minute))

	mr.FastForward(2 * time.Minute)

	loaded, err := store.LoadRoom(ctx, "AB12")
	require.NoError(t, err)
	assert.Nil(t, loaded, "过期房间应被清理")
}

func TestSaveLoadSession(t *testing.T) {
	t.Parallel()

	store, _ := newTestStore(t)
	ctx := context.Background()

	sess := &PlayerSessionData{
		PlayerID:       "p1",
		PlayerName:     "小明",
		ClientID:       "client-1",
		ReconnectToken: "tok-abc",
		RoomCode:       "AB12",
		IsOnline:       true,
	}
	require.NoError(t, store.SaveSession(ctx, sess))

	loaded, err := store.LoadSession(ctx, "p1")
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, "小明", loaded.PlayerName)
	assert.Equal(t, "client-1", loaded.ClientID)
	assert.Equal(t, "tok-abc", loaded.ReconnectToken)
	assert.Equal(t, "AB12", loaded.RoomCode)
	assert.True(t, loaded.IsOnline)
}

func TestLoadSessionKeepsDisconnectTime(t *testing.T) {
	t.Parallel()

	store, _ := newTestStore(t)
	ctx := context.Background()

	sess := &PlayerSessionData{
		PlayerID:       "p2",
		PlayerName:     "小红",
		ReconnectToken: "tok-def",
		IsOnline:       false,
		DisconnectedAt: 1735689600,
	}
	require.NoError(t, store.SaveSession(ctx, sess))

	loaded, err := store.LoadSession(ctx, "p2")
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.False(t, loaded.IsOnline)
	assert.Equal(t, int64(1735689600), loaded.DisconnectedAt, "断线时间应随会话恢复")
}

func TestLoadSessionNotFound(t *testing.T) {
	t.Parallel()

	store, _ := newTestStore(t)

	loaded, err := store.LoadSession(context.Background(), "nope")
	require.NoError(t, err)
	assert.Nil(t, loaded)
}

func TestDeleteSession(t *testing.T) {
	t.Parallel()

	store, _ := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.SaveSession(ctx, &PlayerSessionData{PlayerID: "p1"}))
	require.NoError(t, store.DeleteSession(ctx, "p1"))

	loaded, err := store.LoadSession(ctx, "p1")
	require.NoError(t, err)
	assert.Nil(t, loaded)
}

func TestRecordGameResult(t *testing.T) {
	t.Parallel()

	store, _ := newTestStore(t)
	ctx := context.Background()

	// 两局：一胜一负
	require.NoError(t, store.RecordGameResult(ctx, "p1", "小明", true, 5, 4))
	require.NoError(t, store.RecordGameResult(ctx, "p1", "小明", false, 3, 1))

	stats, err := store.LoadStats(ctx, "p1")
	require.NoError(t, err)
	require.NotNil(t, stats)
	assert.Equal(t, "小明", stats.PlayerName)
	assert.Equal(t, 2, stats.TotalGames)
	assert.Equal(t, 1, stats.Wins)
	assert.Equal(t, 8, stats.Placements)
	assert.Equal(t, 5, stats.CorrectPlaced)
}

func TestLoadStatsNotFound(t *testing.T) {
	t.Parallel()

	store, _ := newTestStore(t)

	stats, err := store.LoadStats(context.Background(), "nope")
	require.NoError(t, err)
	assert.Nil(t, stats)
}

func TestLeaderboard(t *testing.T) {
	t.Parallel()

	store, _ := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.RecordGameResult(ctx, "p1", "小明", true, 5, 5))
	require.NoError(t, store.RecordGameResult(ctx, "p1", "小明", true, 5, 5))
	require.NoError(t, store.RecordGameResult(ctx, "p2", "小红", true, 5, 5))
	require.NoError(t, store.RecordGameResult(ctx, "p3", "小刚", false, 5, 2))

	entries, err := store.Leaderboard(ctx, 0, 10)
	require.NoError(t, err)
	require.Len(t, entries, 2, "没有胜场的玩家不上榜")

	assert.Equal(t, 1, entries[0].Rank)
	assert.Equal(t, "p1", entries[0].PlayerID)
	assert.Equal(t, "小明", entries[0].PlayerName)
	assert.Equal(t, 2, entries[0].Wins)

	assert.Equal(t, 2, entries[1].Rank)
	assert.Equal(t, "p2", entries[1].PlayerID)
}

func TestLeaderboardPagination(t *testing.T) {
	t.Parallel()

	store, _ := newTestStore(t)
	ctx := context.Background()

	names := []string{"甲", "乙", "丙", "丁", "戊"}
	for i, name := range names {
		id := string(rune('a' + i))
		// 胜场数递减：a 赢 5 场，e 赢 1 场
		for j := 0; j < len(names)-i; j++ {
			require.NoError(t, store.RecordGameResult(ctx, id, name, true, 1, 1))
		}
	}

	page, err := store.Leaderboard(ctx, 2, 2)
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, 3, page[0].Rank)
	assert.Equal(t, "c", page[0].PlayerID)
	assert.Equal(t, 4, page[1].Rank)
	assert.Equal(t, "d", page[1].PlayerID)
}
