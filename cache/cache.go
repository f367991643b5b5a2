package cache

import (
	"encoding/json"
	"time"
)

// Cache is the read-through cache in front of ledger queries. Entries have
// no independent lifecycle: they are invalidated and rebuilt after mutating
// operations or an account change, never edited in place.
type Cache struct {
	Cache ICache
}

type ICache interface {
	Set(key string, entry []byte) error

	Get(key string) ([]byte, error)

	Delete(key string) error
}

func NewLocalCache(allKeysExpTime time.Duration) (*Cache, error) {
	cache, err := NewBigCache(allKeysExpTime)
	if err != nil {
		return nil, err
	}
	return &Cache{Cache: cache}, nil
}

func (c *Cache) SetJSON(key string, val interface{}) error {
	by, err := json.Marshal(val)
	if err != nil {
		return err
	}
	return c.Cache.Set(key, by)
}

func (c *Cache) GetJSON(key string, val interface{}) error {
	by, err := c.Cache.Get(key)
	if err != nil {
		return err
	}
	return json.Unmarshal(by, val)
}

func (c *Cache) Invalidate(keys ...string) {
	for _, key := range keys {
		_ = c.Cache.Delete(key)
	}
}
