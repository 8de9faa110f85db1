package entry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	domainEntry "bloglist/internal/domain/entry"
	"bloglist/internal/domain/identity"
	"bloglist/internal/domain/repository"
	"bloglist/internal/domain/user"
)

// ListCache stores the entry listing and its summary per generation.
// Invalidate must advance the value Generation returns.
type ListCache interface {
	Generation(ctx context.Context) (uint64, error)
	GetList(ctx context.Context, gen uint64) ([]*domainEntry.Entry, bool, error)
	SetList(ctx context.Context, gen uint64, entries []*domainEntry.Entry) error
	GetStats(ctx context.Context, gen uint64) (domainEntry.Stats, bool, error)
	SetStats(ctx context.Context, gen uint64, stats domainEntry.Stats) error
	Invalidate(ctx context.Context) error
}

// Recorder counts operation outcomes.
type Recorder interface {
	Observe(operation, outcome string)
}

// Service orchestrates the entry lifecycle: create, delete, update and listing.
type Service struct {
	entries repository.EntryRepository
	users   repository.UserRepository
	cache   ListCache
	metrics Recorder
	logger  *slog.Logger
	now     func() time.Time
}

// NewService instantiates the service. cache and metrics may be nil.
func NewService(entries repository.EntryRepository, users repository.UserRepository, cache ListCache, metrics Recorder, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		entries: entries,
		users:   users,
		cache:   cache,
		metrics: metrics,
		logger:  logger,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// Create validates in, stores a new entry owned by actor and appends it to the
// actor's entry list. The two writes are not atomic.
func (s *Service) Create(ctx context.Context, actor identity.Identity, in domainEntry.CreateInput) (*domainEntry.Entry, error) {
	if err := domainEntry.Validate(in); err != nil {
		s.observe("create", "invalid")
		return nil, err
	}
	if actor.IsZero() {
		return nil, identity.ErrUnknownActor
	}

	owner, err := s.users.Get(ctx, actor.UserID)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			s.observe("create", "unknown_actor")
			return nil, fmt.Errorf("%w: %s", identity.ErrUnknownActor, actor.UserID)
		}
		return nil, fmt.Errorf("resolve owner: %w", err)
	}

	e, err := domainEntry.New(domainEntry.Params{
		ID:        uuid.New(),
		Title:     in.Title,
		Author:    in.Author,
		URL:       in.URL,
		Likes:     in.LikesOrZero(),
		Owner:     owner.Public(),
		CreatedAt: s.now(),
	})
	if err != nil {
		return nil, err
	}

	if err := s.entries.Create(ctx, e); err != nil {
		return nil, fmt.Errorf("create entry: %w", err)
	}
	s.invalidate(ctx)

	if err := s.users.AppendEntry(ctx, owner.ID, e.ID); err != nil {
		s.logger.ErrorContext(ctx, "entry stored without owner back-reference",
			"entry_id", e.ID, "user_id", owner.ID, "error", err)
		return nil, fmt.Errorf("append entry to owner: %w", err)
	}

	s.observe("create", "ok")
	return e, nil
}

// Delete removes the entry when actor owns it. The owner's entry list keeps the id.
func (s *Service) Delete(ctx context.Context, actor identity.Identity, id domainEntry.ID) error {
	e, err := s.entries.Get(ctx, id)
	if err != nil {
		if errors.Is(err, domainEntry.ErrNotFound) {
			s.observe("delete", "not_found")
		}
		return fmt.Errorf("get entry: %w", err)
	}

	if !domainEntry.CanDelete(actor, e) {
		s.observe("delete", "forbidden")
		return domainEntry.ErrNotOwner
	}

	if err := s.entries.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete entry: %w", err)
	}
	s.invalidate(ctx)
	s.observe("delete", "ok")
	return nil
}

// Update applies patch to the entry. Any caller may update; create validation is not applied.
func (s *Service) Update(ctx context.Context, id domainEntry.ID, patch domainEntry.Patch) (*domainEntry.Entry, error) {
	e, err := s.entries.Get(ctx, id)
	if err != nil {
		if errors.Is(err, domainEntry.ErrNotFound) {
			s.observe("update", "not_found")
		}
		return nil, fmt.Errorf("get entry: %w", err)
	}

	if err := e.Apply(patch, s.now()); err != nil {
		s.observe("update", "invalid")
		return nil, err
	}

	if err := s.entries.Update(ctx, e); err != nil {
		return nil, fmt.Errorf("update entry: %w", err)
	}
	s.invalidate(ctx)
	s.observe("update", "ok")
	return e, nil
}

// List returns every entry with its owner projection.
func (s *Service) List(ctx context.Context) ([]*domainEntry.Entry, error) {
	gen, cached := s.generation(ctx)
	return s.list(ctx, gen, cached)
}

// Stats summarises every entry.
func (s *Service) Stats(ctx context.Context) (domainEntry.Stats, error) {
	gen, cached := s.generation(ctx)
	if cached {
		stats, ok, err := s.cache.GetStats(ctx, gen)
		if err != nil {
			s.logDebug("entry stats cache lookup failed", err)
		} else if ok {
			return stats, nil
		}
	}

	entries, err := s.list(ctx, gen, cached)
	if err != nil {
		return domainEntry.Stats{}, err
	}
	stats := domainEntry.Summarize(entries)

	if cached {
		if err := s.cache.SetStats(ctx, gen, stats); err != nil {
			s.logDebug("entry stats cache set failed", err)
		}
	}
	return stats, nil
}

// list serves the listing from generation gen when cached is true. gen is
// read before the repository so a write that lands mid-query bumps the
// generation and the fill below goes stale unseen.
func (s *Service) list(ctx context.Context, gen uint64, cached bool) ([]*domainEntry.Entry, error) {
	if cached {
		entries, ok, err := s.cache.GetList(ctx, gen)
		if err != nil {
			s.logDebug("entry list cache lookup failed", err)
		} else if ok {
			return entries, nil
		}
	}

	entries, err := s.entries.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list entries: %w", err)
	}

	if cached {
		if err := s.cache.SetList(ctx, gen, entries); err != nil {
			s.logDebug("entry list cache set failed", err)
		}
	}
	return entries, nil
}

// generation reports false when the cache is absent or unreadable; callers then bypass it entirely.
func (s *Service) generation(ctx context.Context) (uint64, bool) {
	if s.cache == nil {
		return 0, false
	}
	gen, err := s.cache.Generation(ctx)
	if err != nil {
		s.logDebug("entry cache generation lookup failed", err)
		return 0, false
	}
	return gen, true
}

func (s *Service) invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx); err != nil {
		s.logDebug("entry cache invalidation failed", err)
	}
}

func (s *Service) observe(operation, outcome string) {
	if s.metrics != nil {
		s.metrics.Observe(operation, outcome)
	}
}

func (s *Service) logDebug(msg string, err error) {
	if s.logger == nil || err == nil {
		return
	}
	s.logger.Debug(msg, "error", err)
}
