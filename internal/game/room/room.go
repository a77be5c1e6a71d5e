package room

import (
	"context"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/beatline/beatline/internal/game/card"
	"github.com/beatline/beatline/internal/game/pack"
	"github.com/beatline/beatline/internal/server/storage"
	"github.com/beatline/beatline/internal/types"
)

const (
	roomCodeLength = 4
	// 去掉易混淆字符（I/L/O/0/1）的房间号字符集
	roomCodeChars = "ABCDEFGHJKMNPQRSTUVWXYZ23456789"
)

// Rules 房间规则
type Rules struct {
	Packs         []string // 启用的曲包 ID
	WinTarget     int      // 获胜所需得分
	GuessMode     string   // 猜测模式
	TimerEnabled  bool     // 是否启用回合计时（由客户端执行）
	TimerDuration int      // 计时时长（秒）
	TeamCount     int      // 队伍数量
}

// DefaultRules 新房间的默认规则
func DefaultRules() Rules {
	return Rules{
		Packs:         []string{},
		WinTarget:     10,
		GuessMode:     "year",
		TimerEnabled:  false,
		TimerDuration: 60,
		TeamCount:     2,
	}
}

// Player 房间中的玩家。ID 是当前连接 ID，断线重连后会变；
// ClientID 是客户端自报的稳定标识，同一 ClientID 再次加入时
// 绑定到原玩家记录而不是新建玩家。ClientID 为空的玩家掉线即移除。
type Player struct {
	ID       string
	ClientID string
	Name     string
	TeamID   string                // 未选队伍时为空
	Client   types.ClientInterface // 掉线时为 nil
}

// Online 玩家是否在线
func (p *Player) Online() bool {
	return p.Client != nil
}

// Team 一支队伍及其时间线
type Team struct {
	ID         string
	Name       string
	Score      int
	Timeline   []*card.Card // 已摆放卡牌，按年份升序
	Placements int          // 本局摆放次数（战绩统计用）
	Correct    int          // 本局摆放正确次数
}

// Placement 待揭晓的摆放
type Placement struct {
	TeamID   string
	Position int
}

// Room 游戏房间。所有字段都由房间锁保护，
// 同一房间内的动作串行执行，不同房间互不干扰。
type Room struct {
	Code    string
	HostID  string // 房主的连接 ID，重连后随之重绑
	State   RoomState
	Rules   Rules
	Players map[string]*Player // 连接 ID -> 玩家
	Teams   map[string]*Team

	// 加入顺序（房主迁移和玩家列表展示用）
	PlayerOrder []string

	// 游戏进行中状态
	Deck             card.Deck
	Discard          []*card.Card
	CurrentCard      *card.Card
	PendingPlacement *Placement
	PendingDiscard   *card.Card // 摆错的卡牌，下次抽牌前移入弃牌堆
	TurnOrder        []string
	TurnIndex        int
	RoundTurnsLeft   int
	RoundResults     map[string]bool // teamID -> 本轮是否摆放正确
	SuddenDeath      bool

	// Version 每次状态变更后严格递增，快照携带它供接收方丢弃乱序投递
	Version uint64

	CreatedAt  time.Time
	LastActive time.Time

	rng       *rand.Rand
	onGameEnd func(GameResult)

	mu sync.Mutex
}

// GameResult 一局游戏的结算摘要（战绩落库用，在房间锁外消费）
type GameResult struct {
	RoomCode     string
	WinnerTeamID string
	Players      []PlayerResult
}

// PlayerResult 单个玩家的结算数据。落库以 ClientID 为准（跨重连稳定），
// ClientID 为空时退回连接 ID。
type PlayerResult struct {
	PlayerID   string
	ClientID   string
	PlayerName string
	Won        bool
	Placements int
	Correct    int
}

// StatsKey 战绩落库用的稳定键
func (pr *PlayerResult) StatsKey() string {
	if pr.ClientID != "" {
		return pr.ClientID
	}
	return pr.PlayerID
}

// Store 房间持久化接口，*storage.RedisStore 实现之。为 nil 时跳过持久化。
type Store interface {
	SaveRoom(ctx context.Context, code string, data *storage.RoomData) error
	DeleteRoom(ctx context.Context, code string) error
}

// Manager 房间管理器
type Manager struct {
	store       Store
	source      pack.Source
	roomTimeout time.Duration
	rooms       map[string]*Room
	rng         *rand.Rand
	onGameEnd   func(GameResult)
	mu          sync.RWMutex
}

// NewManager 创建房间管理器
func NewManager(source pack.Source, store Store, roomTimeout time.Duration) *Manager {
	rm := &Manager{
		store:       store,
		source:      source,
		roomTimeout: roomTimeout,
		rooms:       make(map[string]*Room),
		rng:         rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
	}

	// 启动房间清理协程
	go rm.cleanupLoop()

	return rm
}

// SetRand 替换随机源。房间号和洗牌都从它派生，
// 测试时传入固定种子可获得确定的结果。须在创建房间前调用。
func (rm *Manager) SetRand(rng *rand.Rand) {
	rm.mu.Lock()
	defer rm.mu.Unlock()
	rm.rng = rng
}

// SetGameEndHook 注册游戏结束回调（战绩落库）。回调在独立协程中执行。
func (rm *Manager) SetGameEndHook(fn func(GameResult)) {
	rm.mu.Lock()
	defer rm.mu.Unlock()
	rm.onGameEnd = fn
}

// touch 记一次状态变更：版本号递增，活跃时间刷新。
// 每个成功的变更动作恰好调用一次，调用方必须持有房间锁。
func (r *Room) touch() {
	r.Version++
	r.LastActive = time.Now()
}
