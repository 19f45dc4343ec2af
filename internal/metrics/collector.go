package metrics

import (
	"context"
	"time"

	"gorm.io/gorm"
)

// Collector 定期采集连接池和实时推送连接数
type Collector struct {
	db       *gorm.DB
	clients  func() int
	interval time.Duration
	ctx      context.Context
	cancel   context.CancelFunc
	done     chan struct{}
}

// NewCollector 创建指标收集器,clients 可为 nil
func NewCollector(db *gorm.DB, clients func() int, interval time.Duration) *Collector {
	ctx, cancel := context.WithCancel(context.Background())
	return &Collector{
		db:       db,
		clients:  clients,
		interval: interval,
		ctx:      ctx,
		cancel:   cancel,
		done:     make(chan struct{}),
	}
}

// Start 启动指标收集器
func (c *Collector) Start() {
	go c.collect()
}

// Stop 停止指标收集器
func (c *Collector) Stop() {
	c.cancel()
	<-c.done
}

func (c *Collector) collect() {
	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()
	defer close(c.done)

	for {
		select {
		case <-c.ctx.Done():
			return
		case <-ticker.C:
			c.CollectOnce()
		}
	}
}

// CollectOnce 立即采集一次
func (c *Collector) CollectOnce() {
	if c.db != nil {
		_ = UpdateDatabaseConnections(c.db)
	}
	if c.clients != nil {
		SetRealtimeClients(c.clients())
	}
}
