package server

import (
	"net"
	"net/http"
	"strings"
	"sync"
	"time"
)

// RateLimiter 按 IP 的连接速率限制，超限后封禁一段时间
type RateLimiter struct {
	maxPerSecond int
	maxPerMinute int
	banDuration  time.Duration

	secondCounts map[string]*windowCounter
	minuteCounts map[string]*windowCounter
	bannedUntil  map[string]time.Time
	mu           sync.Mutex
}

type windowCounter struct {
	windowStart time.Time
	count       int
}

// NewRateLimiter 创建连接速率限制器
func NewRateLimiter(maxPerSecond, maxPerMinute int, banDuration time.Duration) *RateLimiter {
	return &RateLimiter{
		maxPerSecond: maxPerSecond,
		maxPerMinute: maxPerMinute,
		banDuration:  banDuration,
		secondCounts: make(map[string]*windowCounter),
		minuteCounts: make(map[string]*windowCounter),
		bannedUntil:  make(map[string]time.Time),
	}
}

// Allow 检查该 IP 是否允许建立连接
func (rl *RateLimiter) Allow(ip string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()

	if until, ok := rl.bannedUntil[ip]; ok {
		if now.Before(until) {
			return false
		}
		delete(rl.bannedUntil, ip)
	}

	if !bump(rl.secondCounts, ip, now, time.Second, rl.maxPerSecond) ||
		!bump(rl.minuteCounts, ip, now, time.Minute, rl.maxPerMinute) {
		rl.bannedUntil[ip] = now.Add(rl.banDuration)
		return false
	}
	return true
}

// IsBanned 该 IP 是否处于封禁中
func (rl *RateLimiter) IsBanned(ip string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	until, ok := rl.bannedUntil[ip]
	return ok && time.Now().Before(until)
}

// bump 滑动窗口计数，超限返回 false
func bump(counts map[string]*windowCounter, key string, now time.Time, window time.Duration, limit int) bool {
	c, ok := counts[key]
	if !ok || now.Sub(c.windowStart) >= window {
		counts[key] = &windowCounter{windowStart: now, count: 1}
		return true
	}
	c.count++
	return c.count <= limit
}

// MessageRateLimiter 按客户端的消息速率限制。
// 超过一半额度时返回警告标记，让客户端在被掐断前收到提示。
type MessageRateLimiter struct {
	maxPerSecond int
	counts       map[string]*windowCounter
	mu           sync.Mutex
}

// NewMessageRateLimiter 创建消息速率限制器
func NewMessageRateLimiter(maxPerSecond int) *MessageRateLimiter {
	return &MessageRateLimiter{
		maxPerSecond: maxPerSecond,
		counts:       make(map[string]*windowCounter),
	}
}

// AllowMessage 检查该客户端是否还能发消息，返回 (允许, 警告)
func (ml *MessageRateLimiter) AllowMessage(clientID string) (allowed, warning bool) {
	ml.mu.Lock()
	defer ml.mu.Unlock()

	now := time.Now()
	c, ok := ml.counts[clientID]
	if !ok || now.Sub(c.windowStart) >= time.Second {
		ml.counts[clientID] = &windowCounter{windowStart: now, count: 1}
		return true, false
	}

	c.count++
	warning = c.count > ml.maxPerSecond/2
	return c.count <= ml.maxPerSecond, warning
}

// RemoveClient 清理客户端的计数状态
func (ml *MessageRateLimiter) RemoveClient(clientID string) {
	ml.mu.Lock()
	defer ml.mu.Unlock()
	delete(ml.counts, clientID)
}

// ChatRateLimiter 聊天速率限制，实现 types.ChatLimiter
type ChatRateLimiter struct {
	maxPerSecond int
	maxPerMinute int
	cooldown     time.Duration

	secondCounts  map[string]*windowCounter
	minuteCounts  map[string]*windowCounter
	cooldownUntil map[string]time.Time
	mu            sync.Mutex
}

// NewChatRateLimiter 创建聊天速率限制器
func NewChatRateLimiter(maxPerSecond, maxPerMinute int, cooldown time.Duration) *ChatRateLimiter {
	return &ChatRateLimiter{
		maxPerSecond:  maxPerSecond,
		maxPerMinute:  maxPerMinute,
		cooldown:      cooldown,
		secondCounts:  make(map[string]*windowCounter),
		minuteCounts:  make(map[string]*windowCounter),
		cooldownUntil: make(map[string]time.Time),
	}
}

// AllowChat 检查该客户端是否还能发聊天消息
func (cl *ChatRateLimiter) AllowChat(clientID string) (bool, string) {
	cl.mu.Lock()
	defer cl.mu.Unlock()

	now := time.Now()

	if until, ok := cl.cooldownUntil[clientID]; ok {
		if now.Before(until) {
			return false, "发言太快了，请稍后再试"
		}
		delete(cl.cooldownUntil, clientID)
	}

	if !bump(cl.secondCounts, clientID, now, time.Second, cl.maxPerSecond) ||
		!bump(cl.minuteCounts, clientID, now, time.Minute, cl.maxPerMinute) {
		cl.cooldownUntil[clientID] = now.Add(cl.cooldown)
		return false, "发言太快了，请稍后再试"
	}
	return true, ""
}

// RemoveClient 清理客户端的计数状态
func (cl *ChatRateLimiter) RemoveClient(clientID string) {
	cl.mu.Lock()
	defer cl.mu.Unlock()
	delete(cl.secondCounts, clientID)
	delete(cl.minuteCounts, clientID)
	delete(cl.cooldownUntil, clientID)
}

// IPFilter IP 黑白名单。白名单非空时只放行白名单内的 IP。
type IPFilter struct {
	whitelist map[string]struct{}
	blacklist map[string]struct{}
	mu        sync.RWMutex
}

// NewIPFilter 创建 IP 过滤器
func NewIPFilter() *IPFilter {
	return &IPFilter{
		whitelist: make(map[string]struct{}),
		blacklist: make(map[string]struct{}),
	}
}

// IsAllowed 检查 IP 是否放行
func (f *IPFilter) IsAllowed(ip string) bool {
	f.mu.RLock()
	defer f.mu.RUnlock()

	if _, banned := f.blacklist[ip]; banned {
		return false
	}
	if len(f.whitelist) > 0 {
		_, ok := f.whitelist[ip]
		return ok
	}
	return true
}

// AddToBlacklist 加入黑名单
func (f *IPFilter) AddToBlacklist(ip string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.blacklist[ip] = struct{}{}
}

// RemoveFromBlacklist 移出黑名单
func (f *IPFilter) RemoveFromBlacklist(ip string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.blacklist, ip)
}

// AddToWhitelist 加入白名单
func (f *IPFilter) AddToWhitelist(ip string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.whitelist[ip] = struct{}{}
}

// OriginChecker WebSocket 握手来源校验
type OriginChecker struct {
	allowed map[string]struct{}
}

// NewOriginChecker 创建来源校验器，列表为空时放行所有来源
func NewOriginChecker(origins []string) *OriginChecker {
	oc := &OriginChecker{allowed: make(map[string]struct{}, len(origins))}
	for _, o := range origins {
		oc.allowed[strings.TrimRight(o, "/")] = struct{}{}
	}
	return oc
}

// Check 校验请求的 Origin 头
func (oc *OriginChecker) Check(r *http.Request) bool {
	if len(oc.allowed) == 0 {
		return true
	}

	origin := r.Header.Get("Origin")
	if origin == "" {
		// 非浏览器客户端不带 Origin
		return true
	}

	_, ok := oc.allowed[strings.TrimRight(origin, "/")]
	return ok
}

// GetClientIP 获取真实客户端 IP，优先使用反代头
func GetClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		parts := strings.Split(xff, ",")
		return strings.TrimSpace(parts[0])
	}
	if rip := r.Header.Get("X-Real-IP"); rip != "" {
		return rip
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
