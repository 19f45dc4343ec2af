package websocket

import (
	"encoding/json"
	"sync"

	"github.com/sirupsen/logrus"
)

// EventSubmissionCreated 新完成记录事件
const EventSubmissionCreated = "submission.created"

// Event 推送给订阅客户端的事件
type Event struct {
	Type      string      `json:"type"`
	CompanyID string      `json:"-"`
	TaskID    string      `json:"task_id"`
	Date      string      `json:"date,omitempty"`
	Data      interface{} `json:"data,omitempty"`
}

// Topic 订阅主题,一个公司内的一个任务
func Topic(companyID, taskID string) string {
	return companyID + "/" + taskID
}

type envelope struct {
	topic   string
	message []byte
}

// Hub 管理所有 WebSocket 连接,按任务主题分发消息
type Hub struct {
	// 已注册的客户端
	clients map[*Client]bool

	// 发布到主题
	broadcast chan envelope

	// 注册新客户端
	Register chan *Client

	// 注销客户端
	Unregister chan *Client

	done   chan struct{}
	closed sync.Once

	logger logrus.FieldLogger

	// 保护 clients map
	mu sync.RWMutex
}

// NewHub 创建新的 Hub
func NewHub(logger logrus.FieldLogger) *Hub {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Hub{
		clients:    make(map[*Client]bool),
		broadcast:  make(chan envelope, 64),
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
		done:       make(chan struct{}),
		logger:     logger.WithField("component", "realtime_hub"),
	}
}

// Run 运行 Hub,直到 Close 被调用
func (h *Hub) Run() {
	for {
		select {
		case <-h.done:
			h.mu.Lock()
			for client := range h.clients {
				delete(h.clients, client)
				close(client.Send)
			}
			h.mu.Unlock()
			return

		case client := <-h.Register:
			h.mu.Lock()
			h.clients[client] = true
			h.mu.Unlock()

		case client := <-h.Unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.Send)
			}
			h.mu.Unlock()

		case env := <-h.broadcast:
			h.mu.Lock()
			for client := range h.clients {
				if client.Topic != env.topic {
					continue
				}
				select {
				case client.Send <- env.message:
				default:
					// 发送队列已满,断开慢客户端
					close(client.Send)
					delete(h.clients, client)
				}
			}
			h.mu.Unlock()
		}
	}
}

// Close 停止 Hub 并断开所有客户端
func (h *Hub) Close() {
	h.closed.Do(func() { close(h.done) })
}

// Publish 发布事件到对应任务的订阅者
// Hub 已停止或队列已满时丢弃事件
func (h *Hub) Publish(event Event) {
	message, err := json.Marshal(event)
	if err != nil {
		h.logger.WithError(err).WithField("type", event.Type).Warn("failed to encode event")
		return
	}

	select {
	case <-h.done:
	case h.broadcast <- envelope{topic: Topic(event.CompanyID, event.TaskID), message: message}:
	default:
		h.logger.WithFields(logrus.Fields{
			"type":    event.Type,
			"task_id": event.TaskID,
		}).Warn("event queue full, dropping event")
	}
}

// GetClientCount 获取客户端数量
func (h *Hub) GetClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return len(h.clients)
}
