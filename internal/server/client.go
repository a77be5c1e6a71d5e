package server

import (
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/beatline/beatline/internal/protocol"
)

const (
	// 写超时
	writeWait = 10 * time.Second
	// Pong 等待时间，超过视为断线
	pongWait = 60 * time.Second
	// Ping 间隔，必须小于 pongWait
	pingPeriod = (pongWait * 9) / 10
	// 单条消息大小上限
	maxMessageSize = 4096
	// 发送队列长度
	sendQueueSize = 64
)

// Client 一条 WebSocket 连接上的玩家
type Client struct {
	ID   string
	Name string
	IP   string

	server *Server
	conn   *websocket.Conn
	send   chan *protocol.Message

	room   string
	roomMu sync.RWMutex

	mu     sync.RWMutex
	closed bool
}

// NewClient 创建客户端，连接 ID 和占位昵称自动生成
func NewClient(s *Server, conn *websocket.Conn) *Client {
	id := uuid.NewString()
	return &Client{
		ID:     id,
		Name:   fmt.Sprintf("玩家-%s", id[:4]),
		server: s,
		conn:   conn,
		send:   make(chan *protocol.Message, sendQueueSize),
	}
}

func (c *Client) GetID() string   { return c.ID }
func (c *Client) GetName() string { return c.Name }

func (c *Client) GetRoom() string {
	c.roomMu.RLock()
	defer c.roomMu.RUnlock()
	return c.room
}

func (c *Client) SetRoom(code string) {
	c.roomMu.Lock()
	defer c.roomMu.Unlock()
	c.room = code
}

// SendMessage 异步发送消息。发送队列满说明客户端已经跟不上，
// 丢弃消息并掐断连接，让它走重连路径。
// 连接关闭后的消息静默丢弃，广播路径随时可能撞上刚被掐断的客户端。
func (c *Client) SendMessage(msg *protocol.Message) {
	c.mu.RLock()
	if c.closed {
		c.mu.RUnlock()
		return
	}

	overflow := false
	select {
	case c.send <- msg:
	default:
		overflow = true
	}
	c.mu.RUnlock()

	if overflow {
		log.Printf("⚠️ 客户端 %s 发送队列已满，断开连接", c.ID)
		c.Close()
	}
}

// Close 关闭发送通道，幂等
func (c *Client) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}
	c.closed = true
	close(c.send)
}

// ReadPump 读协程：读取消息并交给分发器，连接断开时做善后。
// 在连接的 HTTP 处理协程中同步运行。
func (c *Client) ReadPump() {
	defer func() {
		c.server.handleClientDisconnect(c)
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("读取消息异常: %v", err)
			}
			return
		}

		// 消息速率限制
		allowed, warning := c.server.messageLimiter.AllowMessage(c.ID)
		if !allowed {
			c.SendMessage(protocol.NewErrorMessage(protocol.ErrCodeRateLimit))
			continue
		}
		if warning {
			c.SendMessage(protocol.NewErrorMessageWithText(protocol.ErrCodeRateLimit, "消息发送过快，请放慢速度"))
		}

		msg, err := protocol.Decode(data)
		if err != nil {
			c.SendMessage(protocol.NewErrorMessage(protocol.ErrCodeInvalidMsg))
			continue
		}

		c.server.handler.HandleMessage(c, msg)
	}
}

// WritePump 写协程：串行写出发送队列，定期发 ping 保活
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			data, err := msg.Encode()
			if err != nil {
				log.Printf("编码消息失败: %v", err)
				continue
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
