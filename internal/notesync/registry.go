package notesync

import (
	"context"
	"log/slog"
	"time"

	"note-sync/internal/mutation"
	"note-sync/internal/querycache"
	"note-sync/internal/services/auth"

	cmap "github.com/orcaman/concurrent-map/v2"
)

// DefaultIdleTTL is how long an unused client is kept.
const DefaultIdleTTL = time.Hour

// Options configure the clients created by a Registry.
type Options struct {
	StaleTime time.Duration
	Timeout   time.Duration
	// GCTime is passed to every client cache as querycache.Options.GCTime.
	GCTime time.Duration
	// IdleTTL drops clients unused for that long.
	IdleTTL          time.Duration
	Now              func() time.Time
	Logger           *slog.Logger
	CacheMetrics     *querycache.Metrics
	MutationMetrics  *mutation.Metrics
	MutationObserver mutation.Observer
}

// Registry hands out one Client per user, so every request of a user shares the
// same cache.
type Registry struct {
	clients    cmap.ConcurrentMap[string, *Client]
	notes      NoteService
	activities ActivityService
	opts       Options
}

// NewRegistry creates an empty registry.
func NewRegistry(noteSvc NoteService, activitySvc ActivityService, opts Options) *Registry {
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.DiscardHandler)
	}
	if opts.IdleTTL <= 0 {
		opts.IdleTTL = DefaultIdleTTL
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Registry{
		clients:    cmap.New[*Client](),
		notes:      noteSvc,
		activities: activitySvc,
		opts:       opts,
	}
}

// For returns the client of id, creating it on first use.
func (r *Registry) For(id auth.Identity) *Client {
	now := r.opts.Now()
	return r.clients.Upsert(id.UserID.Hex(), nil, func(exist bool, current, _ *Client) *Client {
		if !exist {
			current = r.newClient(id)
		}
		current.lastUsed.Store(now.UnixNano())
		return current
	})
}

// Sweep drops clients idle for longer than IdleTTL and evicts idle entries from
// the caches of the others. It returns the number of dropped clients.
func (r *Registry) Sweep() int {
	now := r.opts.Now()
	dropped := 0
	for item := range r.clients.IterBuffered() {
		removed := r.clients.RemoveCb(item.Key, func(_ string, c *Client, exists bool) bool {
			return exists && c.idleSince(now) >= r.opts.IdleTTL
		})
		if removed {
			item.Val.cache.Clear()
			dropped++
			continue
		}
		item.Val.cache.Sweep()
	}
	if dropped > 0 {
		r.opts.Logger.Debug("dropped idle sync clients", "dropped", dropped, "remaining", r.clients.Count())
	}
	return dropped
}

// Run sweeps every interval until ctx ends.
func (r *Registry) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.Sweep()
		}
	}
}

// Forget drops the client of userID and clears its cache, e.g. on sign-out.
func (r *Registry) Forget(id auth.Identity) {
	if c, ok := r.clients.Pop(id.UserID.Hex()); ok {
		c.cache.Clear()
	}
}

// Len returns the number of live clients.
func (r *Registry) Len() int {
	return r.clients.Count()
}

func (r *Registry) newClient(id auth.Identity) *Client {
	log := r.opts.Logger.With("user_id", id.UserID.Hex())
	cache := querycache.New(querycache.Options{
		StaleTime:    r.opts.StaleTime,
		FetchTimeout: r.opts.Timeout,
		GCTime:       r.opts.GCTime,
		Now:          r.opts.Now,
		Logger:       log,
		Metrics:      r.opts.CacheMetrics,
	})
	return &Client{
		identity:   id,
		notes:      r.notes,
		activities: r.activities,
		cache:      cache,
		coord: mutation.New(cache, mutation.Options{
			Timeout:  r.opts.Timeout,
			Logger:   log,
			Metrics:  r.opts.MutationMetrics,
			Observer: r.opts.MutationObserver,
		}),
		log: log,
		now: func() time.Time { return time.Now().UTC() },
	}
}
