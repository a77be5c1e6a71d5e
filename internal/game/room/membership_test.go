package room

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/beatline/beatline/internal/apperrors"
	"github.com/beatline/beatline/internal/protocol"
)

func TestAssignTeam(t *testing.T) {
	t.Parallel()

	rm, room, host, _ := setupLobby(t)

	require.NoError(t, rm.AssignTeam(host, "team-2"))
	assert.Equal(t, "team-2", room.Players["conn-host"].TeamID)

	// 空队伍 ID 表示退出队伍
	require.NoError(t, rm.AssignTeam(host, ""))
	assert.Empty(t, room.Players["conn-host"].TeamID)
}

func TestAssignUnknownTeamSilentlyIgnored(t *testing.T) {
	t.Parallel()

	rm, room, host, _ := setupLobby(t)
	before := room.Version

	require.NoError(t, rm.AssignTeam(host, "team-99"), "未知队伍不算错误")
	assert.Equal(t, "team-1", room.Players["conn-host"].TeamID, "归属不应改变")
	assert.Equal(t, before, room.Version, "状态不应变更")
}

func TestUpdateRulesMergesPatch(t *testing.T) {
	t.Parallel()

	rm, room, host, _ := setupLobby(t)

	target := 5
	enabled := true
	require.NoError(t, rm.UpdateRules(host, protocol.UpdateRulesPayload{
		WinTarget:    &target,
		TimerEnabled: &enabled,
	}))

	assert.Equal(t, 5, room.Rules.WinTarget)
	assert.True(t, room.Rules.TimerEnabled)
	// 未给出的字段保持原值
	assert.Equal(t, []string{"hits"}, room.Rules.Packs)
	assert.Equal(t, 60, room.Rules.TimerDuration)
}

func TestUpdateRulesRejectsInvalidValues(t *testing.T) {
	t.Parallel()

	rm, room, host, _ := setupLobby(t)

	zero := 0
	one := 1
	require.NoError(t, rm.UpdateRules(host, protocol.UpdateRulesPayload{
		WinTarget: &zero,
		TeamCount: &one,
	}))

	assert.Equal(t, 10, room.Rules.WinTarget)
	assert.Equal(t, 2, room.Rules.TeamCount)
}

func TestTeamCountChangeRebuildsTeams(t *testing.T) {
	t.Parallel()

	rm, room, host, p2 := setupLobby(t)

	count := 3
	require.NoError(t, rm.UpdateRules(host, protocol.UpdateRulesPayload{TeamCount: &count}))

	assert.Len(t, room.Teams, 3)
	assert.Contains(t, room.Teams, "team-3")

	// 队伍重建后所有玩家的归属被清空
	assert.Empty(t, room.Players["conn-host"].TeamID)
	assert.Empty(t, room.Players["conn-p2"].TeamID)

	// 客户端收到规则和队伍更新
	assert.NotEmpty(t, p2.MessagesOfType(protocol.MsgRoomRules))
	assert.NotEmpty(t, p2.MessagesOfType(protocol.MsgRoomTeams))
}

func TestSameTeamCountKeepsAssignments(t *testing.T) {
	t.Parallel()

	rm, room, host, _ := setupLobby(t)

	count := 2
	require.NoError(t, rm.UpdateRules(host, protocol.UpdateRulesPayload{TeamCount: &count}))

	assert.Equal(t, "team-1", room.Players["conn-host"].TeamID, "队伍数量未变不应清空归属")
}

func TestUpdateRulesNotHostGated(t *testing.T) {
	t.Parallel()

	rm, room, _, p2 := setupLobby(t)

	target := 7
	require.NoError(t, rm.UpdateRules(p2, protocol.UpdateRulesPayload{WinTarget: &target}),
		"普通成员也可以修改规则")
	assert.Equal(t, 7, room.Rules.WinTarget)
}

func TestUpdateRulesRejectedWhilePlaying(t *testing.T) {
	t.Parallel()

	rm, room, host, _ := setupStarted(t)
	stackDeck(room, 1977, 1965)

	// team-1 摆上第一张牌（空时间线快速通道）
	playTurn(t, rm, host, room, "team-1", 0)
	before := cardCount(room)
	require.Len(t, room.Teams["team-1"].Timeline, 1)

	count := 3
	assert.ErrorIs(t, rm.UpdateRules(host, protocol.UpdateRulesPayload{TeamCount: &count}),
		apperrors.ErrGameStarted)

	// 队伍、时间线和卡牌划分原样保留
	assert.Len(t, room.Teams, 2, "对局中不应重建队伍")
	assert.Len(t, room.Teams["team-1"].Timeline, 1, "已摆放的时间线不应被丢弃")
	assert.Equal(t, before, cardCount(room), "卡牌划分不变量应保持")
	assert.Equal(t, 1, room.Teams["team-1"].Score)

	// 其余规则补丁同样被拒绝
	target := 20
	assert.ErrorIs(t, rm.UpdateRules(host, protocol.UpdateRulesPayload{WinTarget: &target}),
		apperrors.ErrGameStarted)
}
