//go:build !production

// Package testutil 提供测试用的假客户端。
package testutil

import (
	"github.com/beatline/beatline/internal/protocol"
)

// SimpleClient 实现 types.ClientInterface 的假客户端。
// 收到的消息按序记录，便于检查广播内容和顺序。
type SimpleClient struct {
	ID       string
	Name     string
	RoomCode string
	Messages []*protocol.Message
	Closed   bool
}

func (c *SimpleClient) GetID() string   { return c.ID }
func (c *SimpleClient) GetName() string { return c.Name }
func (c *SimpleClient) GetRoom() string { return c.RoomCode }

func (c *SimpleClient) SetRoom(code string) { c.RoomCode = code }

func (c *SimpleClient) SendMessage(msg *protocol.Message) {
	c.Messages = append(c.Messages, msg)
}

func (c *SimpleClient) Close() { c.Closed = true }

// MessagesOfType 按类型过滤收到的消息
func (c *SimpleClient) MessagesOfType(t protocol.MessageType) []*protocol.Message {
	var out []*protocol.Message
	for _, msg := range c.Messages {
		if msg.Type == t {
			out = append(out, msg)
		}
	}
	return out
}

// LastOfType 最后一条指定类型的消息，没有时返回 nil
func (c *SimpleClient) LastOfType(t protocol.MessageType) *protocol.Message {
	msgs := c.MessagesOfType(t)
	if len(msgs) == 0 {
		return nil
	}
	return msgs[len(msgs)-1]
}
