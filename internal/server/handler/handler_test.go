package handler

import (
	"math/rand/v2"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/beatline/beatline/internal/game/pack"
	"github.com/beatline/beatline/internal/game/room"
	"github.com/beatline/beatline/internal/protocol"
	"github.com/beatline/beatline/internal/server/session"
	"github.com/beatline/beatline/internal/testutil"
	"github.com/beatline/beatline/internal/types"
)

// fakeServer 测试用 ServerInterface 实现
type fakeServer struct {
	clients     map[string]types.ClientInterface
	maintenance bool
}

func newFakeServer() *fakeServer {
	return &fakeServer{clients: make(map[string]types.ClientInterface)}
}

func (s *fakeServer) GetOnlineCount() int { return len(s.clients) }
func (s *fakeServer) GetClientByID(id string) types.ClientInterface {
	if c, ok := s.clients[id]; ok {
		return c
	}
	return nil
}
func (s *fakeServer) RegisterClient(id string, c types.ClientInterface) { s.clients[id] = c }
func (s *fakeServer) UnregisterClient(id string)                       { delete(s.clients, id) }
func (s *fakeServer) IsMaintenanceMode() bool                          { return s.maintenance }

// noopChatLimiter 不限流的聊天限制器
type noopChatLimiter struct{}

func (noopChatLimiter) AllowChat(string) (bool, string) { return true, "" }
func (noopChatLimiter) RemoveClient(string)             {}

func testPacks() pack.Source {
	return pack.NewStaticSource(&pack.Pack{
		ID:   "hits",
		Name: "测试曲包",
		Cards: []pack.SourceCard{
			{Number: "1", Title: "Song A", Artist: "A", Year: "1970", URL: "https://example.com/a"},
			{Number: "2", Title: "Song B", Artist: "B", Year: "1980", URL: "https://example.com/b"},
			{Number: "3", Title: "Song C", Artist: "C", Year: "1990", URL: "https://example.com/c"},
		},
	})
}

func newTestHandler(t *testing.T) (*Handler, *fakeServer) {
	t.Helper()

	srv := newFakeServer()
	rm := room.NewManager(testPacks(), nil, time.Hour)
	rm.SetRand(rand.New(rand.NewPCG(42, 7)))
	sm := session.NewSessionManager(nil, time.Minute)

	h := NewHandler(Deps{
		Server:         srv,
		RoomManager:    rm,
		SessionManager: sm,
		ChatLimiter:    noopChatLimiter{},
		Store:          nil,
	})
	return h, srv
}

func connect(h *Handler, srv *fakeServer, id, name string) *testutil.SimpleClient {
	c := &testutil.SimpleClient{ID: id, Name: name}
	srv.RegisterClient(id, c)
	h.sessionManager.CreateSession(id, name, "")
	return c
}

func parsePayload[T any](t *testing.T, msg *protocol.Message) *T {
	t.Helper()
	require.NotNil(t, msg)
	payload, err := protocol.ParsePayload[T](msg)
	require.NoError(t, err)
	return payload
}

func TestHandleUnknownMessageType(t *testing.T) {
	t.Parallel()

	h, srv := newTestHandler(t)
	c := connect(h, srv, "c1", "小明")

	h.HandleMessage(c, &protocol.Message{Type: "no_such_type"})

	errMsg := parsePayload[protocol.ErrorPayload](t, c.LastOfType(protocol.MsgError))
	assert.Equal(t, protocol.ErrCodeInvalidMsg, errMsg.Code)
}

func TestHandleCreateRoom(t *testing.T) {
	t.Parallel()

	h, srv := newTestHandler(t)
	c := connect(h, srv, "c1", "小明")

	h.HandleMessage(c, protocol.MustNewMessage(protocol.MsgCreateRoom, protocol.CreateRoomPayload{
		HostName: "房主",
		ClientID: "stable-1",
	}))

	created := parsePayload[protocol.RoomCreatedPayload](t, c.LastOfType(protocol.MsgRoomCreated))
	assert.Len(t, created.RoomCode, 4)
	assert.Equal(t, "c1", created.HostID)
	assert.Equal(t, "房主", created.Player.Name)
	assert.True(t, created.Player.IsHost)
	assert.Equal(t, created.RoomCode, c.RoomCode)

	// 创建后应收到房间快照
	state := parsePayload[protocol.RoomStatePayload](t, c.LastOfType(protocol.MsgRoomState))
	assert.Equal(t, "lobby", state.State)
	assert.Len(t, state.Teams, 2)

	// 会话应记录身份和房间
	sess := h.sessionManager.GetSession("c1")
	require.NotNil(t, sess)
	name, clientID, roomCode := sess.Info()
	assert.Equal(t, "房主", name)
	assert.Equal(t, "stable-1", clientID)
	assert.Equal(t, created.RoomCode, roomCode)
}

func TestHandleJoinRoom(t *testing.T) {
	t.Parallel()

	h, srv := newTestHandler(t)
	host := connect(h, srv, "c1", "小明")
	guest := connect(h, srv, "c2", "小红")

	h.HandleMessage(host, protocol.MustNewMessage(protocol.MsgCreateRoom, protocol.CreateRoomPayload{HostName: "房主"}))
	created := parsePayload[protocol.RoomCreatedPayload](t, host.LastOfType(protocol.MsgRoomCreated))

	// 房间号大小写和空白应被规整
	h.HandleMessage(guest, protocol.MustNewMessage(protocol.MsgJoinRoom, protocol.JoinRoomPayload{
		RoomCode:   " " + created.RoomCode + " ",
		PlayerName: "客人",
	}))

	joined := parsePayload[protocol.RoomJoinedPayload](t, guest.LastOfType(protocol.MsgRoomJoined))
	assert.Equal(t, created.RoomCode, joined.RoomCode)
	assert.Equal(t, "客人", joined.Player.Name)
	assert.False(t, joined.Player.IsHost)
	assert.Len(t, joined.Players, 2)

	// 房主应收到玩家列表更新
	players := parsePayload[protocol.RoomPlayersPayload](t, host.LastOfType(protocol.MsgRoomPlayers))
	assert.Len(t, players.Players, 2)
}

func TestHandleJoinUnknownRoom(t *testing.T) {
	t.Parallel()

	h, srv := newTestHandler(t)
	c := connect(h, srv, "c1", "小明")

	h.HandleMessage(c, protocol.MustNewMessage(protocol.MsgJoinRoom, protocol.JoinRoomPayload{
		RoomCode:   "ZZZZ",
		PlayerName: "客人",
	}))

	errMsg := parsePayload[protocol.ErrorPayload](t, c.LastOfType(protocol.MsgError))
	assert.Equal(t, protocol.ErrCodeRoomNotFound, errMsg.Code)
}

func TestCreateRoomRejectedInMaintenance(t *testing.T) {
	t.Parallel()

	h, srv := newTestHandler(t)
	srv.maintenance = true
	c := connect(h, srv, "c1", "小明")

	h.HandleMessage(c, protocol.MustNewMessage(protocol.MsgCreateRoom, protocol.CreateRoomPayload{HostName: "房主"}))

	errMsg := parsePayload[protocol.ErrorPayload](t, c.LastOfType(protocol.MsgError))
	assert.Equal(t, protocol.ErrCodeMaintenance, errMsg.Code)
	assert.Nil(t, c.LastOfType(protocol.MsgRoomCreated))
}

func TestCreateRoomLeavesPreviousRoom(t *testing.T) {
	t.Parallel()

	h, srv := newTestHandler(t)
	c := connect(h, srv, "c1", "小明")

	h.HandleMessage(c, protocol.MustNewMessage(protocol.MsgCreateRoom, protocol.CreateRoomPayload{HostName: "房主"}))
	first := parsePayload[protocol.RoomCreatedPayload](t, c.LastOfType(protocol.MsgRoomCreated))

	h.HandleMessage(c, protocol.MustNewMessage(protocol.MsgCreateRoom, protocol.CreateRoomPayload{HostName: "房主"}))
	second := parsePayload[protocol.RoomCreatedPayload](t, c.LastOfType(protocol.MsgRoomCreated))

	assert.NotEqual(t, first.RoomCode, second.RoomCode)
	assert.Nil(t, h.roomManager.GetRoom(first.RoomCode), "空房间应被销毁")
	assert.Equal(t, second.RoomCode, c.RoomCode)
}

func TestHandleLeaveRoom(t *testing.T) {
	t.Parallel()

	h, srv := newTestHandler(t)
	c := connect(h, srv, "c1", "小明")

	h.HandleMessage(c, protocol.MustNewMessage(protocol.MsgCreateRoom, protocol.CreateRoomPayload{HostName: "房主"}))
	created := parsePayload[protocol.RoomCreatedPayload](t, c.LastOfType(protocol.MsgRoomCreated))

	h.HandleMessage(c, &protocol.Message{Type: protocol.MsgLeaveRoom})

	assert.Empty(t, c.RoomCode)
	assert.Nil(t, h.roomManager.GetRoom(created.RoomCode))
	_, _, roomCode := h.sessionManager.GetSession("c1").Info()
	assert.Empty(t, roomCode)
}

func TestGamePlayThroughHandlers(t *testing.T) {
	t.Parallel()

	h, srv := newTestHandler(t)
	host := connect(h, srv, "c1", "小明")
	guest := connect(h, srv, "c2", "小红")

	h.HandleMessage(host, protocol.MustNewMessage(protocol.MsgCreateRoom, protocol.CreateRoomPayload{HostName: "房主"}))
	created := parsePayload[protocol.RoomCreatedPayload](t, host.LastOfType(protocol.MsgRoomCreated))
	h.HandleMessage(guest, protocol.MustNewMessage(protocol.MsgJoinRoom, protocol.JoinRoomPayload{
		RoomCode: created.RoomCode, PlayerName: "客人",
	}))

	h.HandleMessage(host, protocol.MustNewMessage(protocol.MsgAssignTeam, protocol.AssignTeamPayload{TeamID: "team-1"}))
	h.HandleMessage(guest, protocol.MustNewMessage(protocol.MsgAssignTeam, protocol.AssignTeamPayload{TeamID: "team-2"}))

	packs := []string{"hits"}
	h.HandleMessage(host, protocol.MustNewMessage(protocol.MsgUpdateRules, protocol.UpdateRulesPayload{Packs: &packs}))

	h.HandleMessage(host, &protocol.Message{Type: protocol.MsgStartGame})
	started := parsePayload[protocol.GameStartedPayload](t, host.LastOfType(protocol.MsgGameStarted))
	require.Len(t, started.TurnOrder, 2)

	// 第一支队伍抽牌
	r := h.roomManager.GetRoom(created.RoomCode)
	require.NotNil(t, r)
	active := started.ActiveTeamID
	actor := host
	if active != "team-1" {
		actor = guest
	}

	h.HandleMessage(actor, &protocol.Message{Type: protocol.MsgNextCard})
	dealt := parsePayload[protocol.CardDealtPayload](t, actor.LastOfType(protocol.MsgCardDealt))
	assert.Equal(t, active, dealt.TeamID)
	assert.NotEmpty(t, dealt.Card.ID)

	// 空时间线快速路径：摆放立即判定正确
	h.HandleMessage(actor, protocol.MustNewMessage(protocol.MsgPlaceCard, protocol.PlaceCardPayload{
		TeamID: active, Position: 0,
	}))
	revealed := parsePayload[protocol.CardRevealedPayload](t, actor.LastOfType(protocol.MsgCardRevealed))
	assert.True(t, revealed.Correct)
	assert.Equal(t, 1, revealed.Score)
}

func TestGameActionErrorsMapped(t *testing.T) {
	t.Parallel()

	h, srv := newTestHandler(t)
	c := connect(h, srv, "c1", "小明")

	// 不在房间中的游戏操作应返回业务错误码
	h.HandleMessage(c, &protocol.Message{Type: protocol.MsgStartGame})
	errMsg := parsePayload[protocol.ErrorPayload](t, c.LastOfType(protocol.MsgError))
	assert.Equal(t, protocol.ErrCodeNotInRoom, errMsg.Code)

	h.HandleMessage(c, &protocol.Message{Type: protocol.MsgNextCard})
	errMsg = parsePayload[protocol.ErrorPayload](t, c.LastOfType(protocol.MsgError))
	assert.Equal(t, protocol.ErrCodeNotInRoom, errMsg.Code)
}

func TestHandlePing(t *testing.T) {
	t.Parallel()

	h, srv := newTestHandler(t)
	c := connect(h, srv, "c1", "小明")

	h.HandleMessage(c, protocol.MustNewMessage(protocol.MsgPing, protocol.PingPayload{Timestamp: 12345}))

	pong := parsePayload[protocol.PongPayload](t, c.LastOfType(protocol.MsgPong))
	assert.Equal(t, int64(12345), pong.ClientTimestamp)
	assert.Positive(t, pong.ServerTimestamp)
}

func TestHandleReconnectRestoresRoom(t *testing.T) {
	t.Parallel()

	h, srv := newTestHandler(t)
	host := connect(h, srv, "c1", "小明")

	h.HandleMessage(host, protocol.MustNewMessage(protocol.MsgCreateRoom, protocol.CreateRoomPayload{
		HostName: "房主", ClientID: "stable-1",
	}))
	created := parsePayload[protocol.RoomCreatedPayload](t, host.LastOfType(protocol.MsgRoomCreated))
	token := h.sessionManager.GetSession("c1").ReconnectToken

	// 掉线
	h.sessionManager.SetOffline("c1")
	h.roomManager.HandleDisconnect(host, time.Minute)

	// 新连接重连
	fresh := connect(h, srv, "c9", "玩家-c9")
	h.HandleMessage(fresh, protocol.MustNewMessage(protocol.MsgReconnect, protocol.ReconnectPayload{
		Token: token, PlayerID: "c1",
	}))

	rec := parsePayload[protocol.ReconnectedPayload](t, fresh.LastOfType(protocol.MsgReconnected))
	assert.Equal(t, "c9", rec.PlayerID)
	assert.Equal(t, "房主", rec.PlayerName)
	assert.Equal(t, created.RoomCode, rec.RoomCode)
	require.NotNil(t, rec.State)
	assert.Equal(t, "lobby", rec.State.State)
	assert.Equal(t, created.RoomCode, fresh.RoomCode)

	// 房间内玩家应重绑到新连接，房主身份保留
	r := h.roomManager.GetRoom(created.RoomCode)
	require.NotNil(t, r)
	assert.Equal(t, "c9", r.HostID)
}

func TestHandleReconnectBadToken(t *testing.T) {
	t.Parallel()

	h, srv := newTestHandler(t)
	c := connect(h, srv, "c1", "小明")

	h.HandleMessage(c, protocol.MustNewMessage(protocol.MsgReconnect, protocol.ReconnectPayload{
		Token: "bogus", PlayerID: "nope",
	}))

	errMsg := parsePayload[protocol.ErrorPayload](t, c.LastOfType(protocol.MsgError))
	assert.Equal(t, protocol.ErrCodeUnknown, errMsg.Code)
	assert.Nil(t, c.LastOfType(protocol.MsgReconnected))
}

func TestHandleChat(t *testing.T) {
	t.Parallel()

	h, srv := newTestHandler(t)
	host := connect(h, srv, "c1", "小明")
	guest := connect(h, srv, "c2", "小红")

	h.HandleMessage(host, protocol.MustNewMessage(protocol.MsgCreateRoom, protocol.CreateRoomPayload{HostName: "房主"}))
	created := parsePayload[protocol.RoomCreatedPayload](t, host.LastOfType(protocol.MsgRoomCreated))
	h.HandleMessage(guest, protocol.MustNewMessage(protocol.MsgJoinRoom, protocol.JoinRoomPayload{
		RoomCode: created.RoomCode, PlayerName: "客人",
	}))

	h.HandleMessage(host, protocol.MustNewMessage(protocol.MsgChat, protocol.ChatPayload{Content: "  大家好  "}))

	chat := parsePayload[protocol.ChatPayload](t, guest.LastOfType(protocol.MsgChat))
	assert.Equal(t, "c1", chat.SenderID)
	assert.Equal(t, "房主", chat.SenderName, "发送者身份由服务端填充")
	assert.Equal(t, "大家好", chat.Content)
	assert.Positive(t, chat.Time)
}

func TestHandleChatOutsideRoom(t *testing.T) {
	t.Parallel()

	h, srv := newTestHandler(t)
	c := connect(h, srv, "c1", "小明")

	h.HandleMessage(c, protocol.MustNewMessage(protocol.MsgChat, protocol.ChatPayload{Content: "喂"}))

	errMsg := parsePayload[protocol.ErrorPayload](t, c.LastOfType(protocol.MsgError))
	assert.Equal(t, protocol.ErrCodeNotInRoom, errMsg.Code)
}

func TestHandleChatEmptyIgnored(t *testing.T) {
	t.Parallel()

	h, srv := newTestHandler(t)
	c := connect(h, srv, "c1", "小明")

	h.HandleMessage(c, protocol.MustNewMessage(protocol.MsgChat, protocol.ChatPayload{Content: "   "}))
	assert.Empty(t, c.Messages, "空白消息应被静默忽略")
}

func TestHandleGetStatsWithoutStore(t *testing.T) {
	t.Parallel()

	h, srv := newTestHandler(t)
	c := connect(h, srv, "c1", "小明")

	h.HandleMessage(c, &protocol.Message{Type: protocol.MsgGetStats})

	errMsg := parsePayload[protocol.ErrorPayload](t, c.LastOfType(protocol.MsgError))
	assert.Equal(t, protocol.ErrCodeUnknown, errMsg.Code)
}
