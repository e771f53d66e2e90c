package middleware

// Responses are kept in an in-process LRU. Only responses the policy marks as
// final are stored, so values that keep changing (clock readings, collections
// still loading) always reach the handler.

import (
	"context"
	"fmt"

	lru "github.com/hashicorp/golang-lru"
	jsoniter "github.com/json-iterator/go"
	"google.golang.org/grpc"
	"google.golang.org/protobuf/proto"
)

// Cacheable decides whether a successful response may be stored
type Cacheable func(method string, resp interface{}) bool

type Cache struct {
	entries   *lru.Cache
	cacheable Cacheable
}

// NewCache creates a response cache holding at most size entries
func NewCache(size int, cacheable Cacheable) (*Cache, error) {
	entries, err := lru.New(size)
	if err != nil {
		return nil, err
	}
	if cacheable == nil {
		cacheable = func(string, interface{}) bool { return true }
	}
	return &Cache{entries: entries, cacheable: cacheable}, nil
}

// Interceptor serves cached responses and stores cacheable ones.
func (c *Cache) Interceptor(
	ctx context.Context,
	req interface{},
	info *grpc.UnaryServerInfo,
	handler grpc.UnaryHandler,
) (interface{}, error) {
	key := generateCacheKey(info.FullMethod, req)

	if cachedResp, ok := c.entries.Get(key); ok {
		return cachedResp, nil
	}

	resp, err := handler(ctx, req)
	if err != nil {
		return nil, err
	}

	if c.cacheable(info.FullMethod, resp) {
		c.entries.Add(key, resp)
	}
	return resp, nil
}

// Purge drops every cached response
func (c *Cache) Purge() {
	c.entries.Purge()
}

func (c *Cache) Len() int {
	return c.entries.Len()
}

func (c *Cache) contains(method string, req interface{}) bool {
	return c.entries.Contains(generateCacheKey(method, req))
}

func generateCacheKey(method string, req interface{}) string {
	var reqBytes []byte
	if msg, ok := req.(proto.Message); ok {
		reqBytes, _ = proto.MarshalOptions{Deterministic: true}.Marshal(msg)
	} else {
		reqBytes, _ = jsoniter.ConfigCompatibleWithStandardLibrary.Marshal(req)
	}
	return fmt.Sprintf("%s:%s", method, string(reqBytes))
}
