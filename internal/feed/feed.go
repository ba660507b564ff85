// Package feed carries store change notifications between processes.
//
// Two transports are provided: Redis Pub/Sub and PostgreSQL LISTEN/NOTIFY. Both encode
// a store.Change as JSON and drop notifications for a subscriber whose buffer is full;
// a buffered notification already guarantees the subscriber will reload.
package feed

import (
	"encoding/json"
	"fmt"

	"taskboard/internal/store"
)

const subscriberBuffer = 16

func encode(change store.Change) ([]byte, error) {
	data, err := json.Marshal(change)
	if err != nil {
		return nil, fmt.Errorf("encode change: %w", err)
	}
	return data, nil
}

func decode(payload string) (store.Change, error) {
	var change store.Change
	if err := json.Unmarshal([]byte(payload), &change); err != nil {
		return store.Change{}, fmt.Errorf("decode change: %w", err)
	}
	return change, nil
}

// offer delivers change without blocking.
func offer(out chan<- store.Change, change store.Change) {
	select {
	case out <- change:
	default:
	}
}
