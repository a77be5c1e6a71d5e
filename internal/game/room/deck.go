package room

import (
	"fmt"

	"github.com/beatline/beatline/internal/game/card"
	"github.com/beatline/beatline/internal/game/pack"
)

// BuildDeck 把启用曲包里的所有歌曲平铺成一副牌。
// 卡牌 ID 取 packID-cardNumber；源数据缺编号或撞号时退回递增计数，
// 保证即使源数据畸形 ID 也不重复。未知曲包 ID 直接跳过。
func BuildDeck(source pack.Source, packIDs []string) card.Deck {
	deck := make(card.Deck, 0, 64)
	seen := make(map[string]struct{})
	counter := 0

	for _, packID := range packIDs {
		p, ok := source.Get(packID)
		if !ok {
			continue
		}

		for _, sc := range p.Cards {
			id := ""
			if sc.Number != "" {
				id = packID + "-" + sc.Number
			}
			if _, dup := seen[id]; id == "" || dup {
				counter++
				id = fmt.Sprintf("%s-x%d", packID, counter)
			}
			seen[id] = struct{}{}

			year, rawYear := card.NormalizeYear(sc.Year)
			deck = append(deck, &card.Card{
				ID:           id,
				PackID:       packID,
				CardNumber:   sc.Number,
				Title:        sc.Title,
				Artist:       sc.Artist,
				Year:         year,
				RawYear:      rawYear,
				URL:          sc.URL,
				YoutubeTitle: sc.YoutubeTitle,
				ISRC:         sc.ISRC,
			})
		}
	}

	return deck
}

// flushPendingDiscard 把上一张摆错的卡牌移入弃牌堆。
// 揭晓时不立即弃牌，留到下次抽牌前执行，摆错的卡牌在下个回合
// 开始前始终可见可查。恰好执行一次，调用方需持有房间锁。
func (r *Room) flushPendingDiscard() {
	if r.PendingDiscard == nil {
		return
	}
	r.Discard = append(r.Discard, r.PendingDiscard)
	r.PendingDiscard = nil
}
