package card

import (
	"math/rand/v2"
	"strconv"
	"strings"
)

// Card 一张歌曲卡牌。游戏开始时从曲包数据构造一次，
// 此后只在牌堆、弃牌堆、当前卡牌和各队时间线之间移动，不再修改。
type Card struct {
	ID           string // 唯一标识：packID-cardNumber（源数据缺编号时用递增计数兜底）
	PackID       string
	CardNumber   string
	Title        string
	Artist       string
	Year         int    // 归一化年份，无法解析时为 0
	RawYear      string // 无法解析时保留的年份原文
	URL          string
	YoutubeTitle string
	ISRC         string
}

// NormalizeYear 归一化年份。源数据里的年份偶尔是 "199?"、"unknown"
// 这类脏值，解析失败时降级为 0 并保留原文，不让整个动作失败。
func NormalizeYear(raw string) (year int, rawKept string) {
	s := strings.TrimSpace(raw)
	if y, err := strconv.Atoi(s); err == nil {
		return y, ""
	}
	return 0, raw
}

// Deck 牌堆，从末尾消耗（栈式）
type Deck []*Card

// Shuffle 用给定随机源做 Fisher–Yates 均匀洗牌。
// 随机源由调用方注入，测试时可传入固定种子获得确定顺序。
func (d Deck) Shuffle(rng *rand.Rand) {
	rng.Shuffle(len(d), func(i, j int) {
		d[i], d[j] = d[j], d[i]
	})
}

// Draw 从牌堆末尾抽一张牌，牌堆为空时返回 nil
func (d *Deck) Draw() *Card {
	old := *d
	n := len(old)
	if n == 0 {
		return nil
	}
	c := old[n-1]
	old[n-1] = nil
	*d = old[:n-1]
	return c
}
