package auth

import (
	"sync"
	"time"
)

// MembershipCache 用户到公司的查找结果缓存
type MembershipCache struct {
	cache *sync.Map
	ttl   time.Duration
}

type cacheEntry struct {
	companyID string
	expiresAt time.Time
}

// NewMembershipCache 创建成员关系缓存
func NewMembershipCache(ttl time.Duration) *MembershipCache {
	return &MembershipCache{
		cache: &sync.Map{},
		ttl:   ttl,
	}
}

// Get 获取缓存
func (c *MembershipCache) Get(userID string) (string, bool) {
	val, found := c.cache.Load(userID)
	if !found {
		return "", false
	}

	entry := val.(*cacheEntry)
	if time.Now().After(entry.expiresAt) {
		c.cache.Delete(userID)
		return "", false
	}

	return entry.companyID, true
}

// Set 设置缓存
func (c *MembershipCache) Set(userID, companyID string) {
	c.cache.Store(userID, &cacheEntry{
		companyID: companyID,
		expiresAt: time.Now().Add(c.ttl),
	})
}

// Invalidate 删除单个用户的缓存
func (c *MembershipCache) Invalidate(userID string) {
	c.cache.Delete(userID)
}

// Clear 清空缓存
func (c *MembershipCache) Clear() {
	c.cache.Range(func(key, value interface{}) bool {
		c.cache.Delete(key)
		return true
	})
}
