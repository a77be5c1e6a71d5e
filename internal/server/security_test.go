package server

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRateLimiterAllow(t *testing.T) {
	t.Parallel()

	rl := NewRateLimiter(3, 100, time.Minute)

	for i := 0; i < 3; i++ {
		assert.True(t, rl.Allow("1.2.3.4"), "第 %d 次连接应放行", i+1)
	}
	assert.False(t, rl.Allow("1.2.3.4"), "超限后应拒绝")
	assert.True(t, rl.IsBanned("1.2.3.4"), "超限后应进入封禁")

	// 其它 IP 不受影响
	assert.True(t, rl.Allow("5.6.7.8"))
	assert.False(t, rl.IsBanned("5.6.7.8"))
}

func TestRateLimiterBanExpires(t *testing.T) {
	t.Parallel()

	rl := NewRateLimiter(1, 100, 10*time.Millisecond)

	assert.True(t, rl.Allow("1.2.3.4"))
	assert.False(t, rl.Allow("1.2.3.4"))
	assert.True(t, rl.IsBanned("1.2.3.4"))

	time.Sleep(20 * time.Millisecond)
	assert.False(t, rl.IsBanned("1.2.3.4"), "封禁到期后应解除")
}

func TestMessageRateLimiter(t *testing.T) {
	t.Parallel()

	ml := NewMessageRateLimiter(10)

	var warned bool
	for i := 0; i < 10; i++ {
		allowed, warning := ml.AllowMessage("c1")
		assert.True(t, allowed, "限额内第 %d 条消息应放行", i+1)
		if warning {
			warned = true
		}
	}
	assert.True(t, warned, "接近限额时应收到警告")

	allowed, _ := ml.AllowMessage("c1")
	assert.False(t, allowed, "超限后应拒绝")

	// 清理后重新计数
	ml.RemoveClient("c1")
	allowed, warning := ml.AllowMessage("c1")
	assert.True(t, allowed)
	assert.False(t, warning)
}

func TestChatRateLimiter(t *testing.T) {
	t.Parallel()

	cl := NewChatRateLimiter(2, 100, 50*time.Millisecond)

	allowed, _ := cl.AllowChat("c1")
	assert.True(t, allowed)
	allowed, _ = cl.AllowChat("c1")
	assert.True(t, allowed)

	allowed, reason := cl.AllowChat("c1")
	assert.False(t, allowed, "超限后应拒绝")
	assert.NotEmpty(t, reason)

	// 冷却期内持续拒绝
	allowed, _ = cl.AllowChat("c1")
	assert.False(t, allowed)

	time.Sleep(60 * time.Millisecond)
	allowed, _ = cl.AllowChat("c1")
	assert.True(t, allowed, "冷却结束后应恢复")
}

func TestIPFilter(t *testing.T) {
	t.Parallel()

	f := NewIPFilter()
	assert.True(t, f.IsAllowed("1.2.3.4"), "默认放行")

	f.AddToBlacklist("1.2.3.4")
	assert.False(t, f.IsAllowed("1.2.3.4"))

	f.RemoveFromBlacklist("1.2.3.4")
	assert.True(t, f.IsAllowed("1.2.3.4"))

	// 白名单非空后只放行白名单内的 IP
	f.AddToWhitelist("9.9.9.9")
	assert.True(t, f.IsAllowed("9.9.9.9"))
	assert.False(t, f.IsAllowed("1.2.3.4"))
}

func TestOriginChecker(t *testing.T) {
	t.Parallel()

	newReq := func(origin string) *http.Request {
		r := httptest.NewRequest(http.MethodGet, "/ws", nil)
		if origin != "" {
			r.Header.Set("Origin", origin)
		}
		return r
	}

	open := NewOriginChecker(nil)
	assert.True(t, open.Check(newReq("https://evil.com")), "列表为空时放行所有来源")

	oc := NewOriginChecker([]string{"https://example.com/"})
	assert.True(t, oc.Check(newReq("https://example.com")), "尾部斜杠不影响匹配")
	assert.False(t, oc.Check(newReq("https://evil.com")))
	assert.True(t, oc.Check(newReq("")), "非浏览器客户端不带 Origin")
}

func TestGetClientIP(t *testing.T) {
	t.Parallel()

	r := httptest.NewRequest(http.MethodGet, "/ws", nil)
	r.RemoteAddr = "10.0.0.1:5000"
	assert.Equal(t, "10.0.0.1", GetClientIP(r))

	r.Header.Set("X-Real-IP", "2.2.2.2")
	assert.Equal(t, "2.2.2.2", GetClientIP(r))

	r.Header.Set("X-Forwarded-For", "3.3.3.3, 4.4.4.4")
	assert.Equal(t, "3.3.3.3", GetClientIP(r), "多级代理取最左侧的原始 IP")
}
