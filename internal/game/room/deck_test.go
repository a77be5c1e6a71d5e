package room

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/beatline/beatline/internal/game/pack"
)

func TestBuildDeck(t *testing.T) {
	t.Parallel()

	deck := BuildDeck(testPacks(), []string{"hits"})
	require.Len(t, deck, 6)

	// ID 由曲包 ID 和编号拼出
	ids := make(map[string]bool)
	for _, c := range deck {
		assert.False(t, ids[c.ID], "卡牌 ID %s 重复", c.ID)
		ids[c.ID] = true
		assert.Equal(t, "hits", c.PackID)
	}
	assert.True(t, ids["hits-1"])

	// 缺编号的卡牌退回计数 ID
	assert.True(t, ids["hits-x1"], "缺编号的卡牌应获得计数 ID")
}

func TestBuildDeckNormalizesYears(t *testing.T) {
	t.Parallel()

	deck := BuildDeck(testPacks(), []string{"hits"})

	var mystery, normal bool
	for _, c := range deck {
		switch c.Title {
		case "Mystery Track":
			// 脏年份归一化为 0 并保留原文，不让整个构建失败
			assert.Zero(t, c.Year)
			assert.Equal(t, "199?", c.RawYear)
			mystery = true
		case "Yesterday":
			assert.Equal(t, 1965, c.Year)
			assert.Empty(t, c.RawYear)
			normal = true
		}
	}
	assert.True(t, mystery)
	assert.True(t, normal)
}

func TestBuildDeckSkipsUnknownPacks(t *testing.T) {
	t.Parallel()

	deck := BuildDeck(testPacks(), []string{"nope", "hits"})
	assert.Len(t, deck, 6)

	deck = BuildDeck(testPacks(), []string{"nope"})
	assert.Empty(t, deck)
}

func TestBuildDeckDuplicateNumbers(t *testing.T) {
	t.Parallel()

	source := pack.NewStaticSource(&pack.Pack{
		ID: "dup",
		Cards: []pack.SourceCard{
			{Number: "7", Title: "First", Year: "1990"},
			{Number: "7", Title: "Second", Year: "1995"},
		},
	})

	deck := BuildDeck(source, []string{"dup"})
	require.Len(t, deck, 2)
	assert.NotEqual(t, deck[0].ID, deck[1].ID, "撞号的卡牌也必须获得不同 ID")
}

func TestFlushPendingDiscard(t *testing.T) {
	t.Parallel()

	_, room, _, _ := setupStarted(t)
	stackDeck(room, 1980, 1990)

	c := room.Deck.Draw()
	room.PendingDiscard = c

	// 恰好执行一次
	room.flushPendingDiscard()
	assert.Len(t, room.Discard, 1)
	assert.Nil(t, room.PendingDiscard)

	room.flushPendingDiscard()
	assert.Len(t, room.Discard, 1, "重复冲刷不应重复入弃牌堆")
}
