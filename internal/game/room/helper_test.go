package room

import (
	"fmt"
	"math/rand/v2"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/beatline/beatline/internal/game/card"
	"github.com/beatline/beatline/internal/game/pack"
	"github.com/beatline/beatline/internal/protocol"
	"github.com/beatline/beatline/internal/testutil"
)

// testPacks 测试曲包：年份覆盖正常值和脏值
func testPacks() *pack.StaticSource {
	return pack.NewStaticSource(&pack.Pack{
		ID:   "hits",
		Name: "Test Hits",
		Cards: []pack.SourceCard{
			{Number: "1", Title: "Yesterday", Artist: "The Beatles", Year: "1965"},
			{Number: "2", Title: "Hotel California", Artist: "Eagles", Year: "1977"},
			{Number: "3", Title: "Billie Jean", Artist: "Michael Jackson", Year: "1983"},
			{Number: "4", Title: "Smells Like Teen Spirit", Artist: "Nirvana", Year: "1991"},
			{Number: "5", Title: "Rolling in the Deep", Artist: "Adele", Year: "2010"},
			{Number: "", Title: "Mystery Track", Artist: "Unknown", Year: "199?"},
		},
	})
}

func newTestManager() *Manager {
	rm := NewManager(testPacks(), nil, time.Hour)
	rm.SetRand(rand.New(rand.NewPCG(42, 7)))
	return rm
}

func newClient(id, name string) *testutil.SimpleClient {
	return &testutil.SimpleClient{ID: id, Name: name}
}

// setupLobby 建好一个两人房：房主在 team-1，第二名玩家在 team-2，
// 规则已启用测试曲包
func setupLobby(t *testing.T) (*Manager, *Room, *testutil.SimpleClient, *testutil.SimpleClient) {
	t.Helper()

	rm := newTestManager()
	host := newClient("conn-host", "Alice")
	p2 := newClient("conn-p2", "Bob")

	room, err := rm.CreateRoom(host, "Alice", "client-host")
	require.NoError(t, err)
	_, _, err = rm.JoinRoom(p2, room.Code, "Bob", "client-p2")
	require.NoError(t, err)

	require.NoError(t, rm.AssignTeam(host, "team-1"))
	require.NoError(t, rm.AssignTeam(p2, "team-2"))

	packs := []string{"hits"}
	require.NoError(t, rm.UpdateRules(host, protocol.UpdateRulesPayload{Packs: &packs}))

	return rm, room, host, p2
}

// setupStarted 在 setupLobby 基础上开始游戏
func setupStarted(t *testing.T) (*Manager, *Room, *testutil.SimpleClient, *testutil.SimpleClient) {
	t.Helper()

	rm, room, host, p2 := setupLobby(t)
	require.NoError(t, rm.StartGame(host))
	return rm, room, host, p2
}

// stackDeck 用年份已知的卡牌替换牌堆。牌从末尾抽出，
// 即 years 的最后一个年份最先被抽到。
func stackDeck(r *Room, years ...int) {
	deck := make(card.Deck, 0, len(years))
	for i, y := range years {
		deck = append(deck, &card.Card{
			ID:     fmt.Sprintf("stack-%d", i),
			PackID: "stack",
			Title:  fmt.Sprintf("Song %d", y),
			Year:   y,
		})
	}
	r.Deck = deck
}

// cardCount 全部集合中的卡牌总数（划分不变量检查用）
func cardCount(r *Room) int {
	n := len(r.Deck) + len(r.Discard)
	if r.CurrentCard != nil {
		n++
	}
	if r.PendingDiscard != nil {
		n++
	}
	for _, t := range r.Teams {
		n += len(t.Timeline)
	}
	return n
}

// playTurn 替一支队伍走完一个回合：抽牌、摆放、揭晓。
// 空时间线摆放会立即结算，此时跳过揭晓。
func playTurn(t *testing.T, rm *Manager, cl *testutil.SimpleClient, room *Room, teamID string, pos int) {
	t.Helper()

	require.NoError(t, rm.NextCard(cl))
	fastPath := len(room.Teams[teamID].Timeline) == 0
	require.NoError(t, rm.PlaceCard(cl, teamID, pos))
	if !fastPath {
		require.NoError(t, rm.RevealCard(cl))
	}
}

// parsePayload 解析消息负载，失败即终止测试
func parsePayload[T any](t *testing.T, msg *protocol.Message) *T {
	t.Helper()

	require.NotNil(t, msg)
	p, err := protocol.ParsePayload[T](msg)
	require.NoError(t, err)
	return p
}
