package pubsub

import (
	"context"
	"fmt"
	"sync"

	"keycrm-sync-layer/internal/domain"

	"github.com/rs/zerolog"
)

// SyncResultChannel represents a subscription channel.
type SyncResultChannel struct {
	ID      string
	Filter  *SyncResultFilter
	Results chan *domain.SyncResult
	Done    chan struct{}
	ctx     context.Context
	cancel  context.CancelFunc
}

// SyncResultFilter filters sync results. The zero filter matches everything.
type SyncResultFilter struct {
	OrderID      int64 // 0 matches any order
	FailuresOnly bool
}

// SyncPubSub fans sync outcomes out to in-process subscribers (the admin
// activity feed). Delivery is best-effort: a slow subscriber drops results
// rather than blocking the sync path.
type SyncPubSub struct {
	mu       sync.RWMutex
	channels map[string]*SyncResultChannel
	logger   zerolog.Logger
	nextID   int64
	idMu     sync.Mutex
}

// NewSyncPubSub creates a new sync result pub/sub system.
func NewSyncPubSub(logger zerolog.Logger) *SyncPubSub {
	return &SyncPubSub{
		channels: make(map[string]*SyncResultChannel),
		logger:   logger,
	}
}

// Subscribe creates a new subscription channel. It is removed automatically
// when ctx is cancelled.
func (ps *SyncPubSub) Subscribe(ctx context.Context, filter *SyncResultFilter) *SyncResultChannel {
	ps.idMu.Lock()
	ps.nextID++
	id := fmt.Sprintf("channel-%d", ps.nextID)
	ps.idMu.Unlock()

	subCtx, cancel := context.WithCancel(ctx)

	channel := &SyncResultChannel{
		ID:      id,
		Filter:  filter,
		Results: make(chan *domain.SyncResult, 10),
		Done:    make(chan struct{}),
		ctx:     subCtx,
		cancel:  cancel,
	}

	ps.mu.Lock()
	ps.channels[id] = channel
	ps.mu.Unlock()

	ps.logger.Debug().
		Str("channelId", id).
		Msg("Sync result subscription created")

	go func() {
		<-subCtx.Done()
		ps.Unsubscribe(id)
	}()

	return channel
}

// Unsubscribe removes a subscription channel.
func (ps *SyncPubSub) Unsubscribe(channelID string) {
	ps.mu.Lock()
	defer ps.mu.Unlock()

	channel, exists := ps.channels[channelID]
	if !exists {
		return
	}

	close(channel.Results)
	close(channel.Done)
	channel.cancel()
	delete(ps.channels, channelID)

	ps.logger.Debug().
		Str("channelId", channelID).
		Msg("Sync result subscription removed")
}

// Publish broadcasts a sync result to all matching subscribers.
func (ps *SyncPubSub) Publish(result *domain.SyncResult) {
	ps.mu.RLock()
	defer ps.mu.RUnlock()

	for _, channel := range ps.channels {
		if !matchesFilter(result, channel.Filter) {
			continue
		}
		select {
		case channel.Results <- result:
		case <-channel.ctx.Done():
		default:
			ps.logger.Warn().
				Str("channelId", channel.ID).
				Msg("Channel buffer full, dropping sync result")
		}
	}
}

// SubscriberCount returns the number of active subscriptions.
func (ps *SyncPubSub) SubscriberCount() int {
	ps.mu.RLock()
	defer ps.mu.RUnlock()
	return len(ps.channels)
}

func matchesFilter(result *domain.SyncResult, filter *SyncResultFilter) bool {
	if filter == nil {
		return true
	}
	if filter.OrderID != 0 && result.OrderID != filter.OrderID {
		return false
	}
	if filter.FailuresOnly && result.Success {
		return false
	}
	return true
}
