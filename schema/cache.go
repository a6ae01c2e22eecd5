package schema

import (
	"crypto/sha256"
	"encoding/hex"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// compiledCache caches compiled JSON Schema validators keyed by the SHA-256
// of the raw schema text, identical in shape to the teacher's
// validatorCache (core/types/validation_cache.go).
type compiledCache struct {
	mu      sync.RWMutex
	entries map[string]*jsonschema.Schema
	maxSize int
}

func newCompiledCache(maxSize int) *compiledCache {
	return &compiledCache{entries: make(map[string]*jsonschema.Schema), maxSize: maxSize}
}

func (c *compiledCache) get(key string) (*jsonschema.Schema, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	v, ok := c.entries[key]
	return v, ok
}

func (c *compiledCache) put(key string, v *jsonschema.Schema) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.entries) >= c.maxSize {
		c.entries = make(map[string]*jsonschema.Schema)
	}
	c.entries[key] = v
}

func hashSchemaText(text []byte) string {
	sum := sha256.Sum256(text)
	return hex.EncodeToString(sum[:])
}
