package live

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/Mousewarriors/SEIM-Project/internal/model"
)

// DedupMode selects how an event's identity key is derived.
type DedupMode string

const (
	// DedupIdentity keys events by timestamp-host-action. Two distinct
	// events sharing all three fields are indistinguishable and only the
	// first is evaluated.
	DedupIdentity DedupMode = "identity"
	// DedupPayload keys events by a hash of the full JSON payload. Opt-in
	// stronger identity for feeds where the identity triple collides.
	DedupPayload DedupMode = "payload"
)

// Seen-set bounds: once the set exceeds maxSeenKeys it is truncated to the
// most recent keepSeenKeys in insertion order (a soft, approximate LRU).
const (
	maxSeenKeys  = 1000
	keepSeenKeys = 500
)

// seenCache tracks already-processed event identities in insertion order.
// Not safe for concurrent use; the engine guards it.
type seenCache struct {
	keys  map[string]struct{}
	order []string
}

func newSeenCache() *seenCache {
	return &seenCache{keys: make(map[string]struct{})}
}

func (c *seenCache) Has(key string) bool {
	_, ok := c.keys[key]
	return ok
}

// Add marks a key seen and applies the memory bound.
func (c *seenCache) Add(key string) {
	if _, ok := c.keys[key]; ok {
		return
	}
	c.keys[key] = struct{}{}
	c.order = append(c.order, key)

	if len(c.order) > maxSeenKeys {
		keep := c.order[len(c.order)-keepSeenKeys:]
		c.order = append([]string(nil), keep...)
		c.keys = make(map[string]struct{}, len(c.order))
		for _, k := range c.order {
			c.keys[k] = struct{}{}
		}
	}
}

func (c *seenCache) Len() int {
	return len(c.order)
}

// dedupKey derives the identity key for an event under the given mode.
// Missing fields resolve to empty strings in identity mode.
func dedupKey(evt model.Event, mode DedupMode) string {
	if mode == DedupPayload {
		raw, err := json.Marshal(evt)
		if err != nil {
			// Unmarshalable payloads fall back to the identity triple.
			return identityKey(evt)
		}
		sum := sha256.Sum256(raw)
		return hex.EncodeToString(sum[:])
	}
	return identityKey(evt)
}

func identityKey(evt model.Event) string {
	return fmt.Sprintf("%s-%s-%s", evt.Timestamp(), evt.HostName(), evt.EventAction())
}
