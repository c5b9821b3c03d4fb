package service

import (
	"context"
	"errors"
	"fmt"
	"hash/fnv"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	domainauth "github.com/target/storefront-web/internal/domain/auth"
	"github.com/target/storefront-web/internal/ports"
	"golang.org/x/sync/singleflight"
)

const lockStripes = 256

// Session fetch outcomes reported to SessionObserver.
const (
	FetchOutcomeFulfilled = "fulfilled"
	FetchOutcomeRejected  = "rejected"
)

// SessionObserver receives session lifecycle events for metrics.
type SessionObserver interface {
	ObserveSessionStarted()
	ObserveSessionFetch(outcome string)
}

// SessionServiceOptions groups dependencies for SessionService.
type SessionServiceOptions struct {
	Store   ports.SessionStore
	Fetcher ports.SessionFetcher
	// Dedup collapses concurrent fetches for one session into a single backend call.
	Dedup    bool
	Logger   *slog.Logger
	Observer SessionObserver
	Now      func() time.Time
	NewID    func() string
}

// SessionService is the single writer of visitor session state. Every mutation
// is load, reduce, save under a per-session lock; stores implementing
// ports.SessionUpdater also make that step atomic across instances.
type SessionService struct {
	store    ports.SessionStore
	fetcher  ports.SessionFetcher
	dedup    bool
	logger   *slog.Logger
	observer SessionObserver
	now      func() time.Time
	newID    func() string

	locks    [lockStripes]sync.Mutex
	flights  singleflight.Group
	inflight sync.WaitGroup
}

// NewSessionService constructs a SessionService. Store and Fetcher are required.
func NewSessionService(opts SessionServiceOptions) *SessionService {
	if opts.Store == nil {
		panic("service: SessionServiceOptions.Store is required")
	}
	if opts.Fetcher == nil {
		panic("service: SessionServiceOptions.Fetcher is required")
	}

	svc := &SessionService{
		store:    opts.Store,
		fetcher:  opts.Fetcher,
		dedup:    opts.Dedup,
		logger:   opts.Logger,
		observer: opts.Observer,
		now:      opts.Now,
		newID:    opts.NewID,
	}
	if svc.logger == nil {
		svc.logger = slog.Default()
	}
	if svc.now == nil {
		svc.now = time.Now
	}
	if svc.newID == nil {
		svc.newID = uuid.NewString
	}
	return svc
}

// Start creates a session in the initial state: no user, loading.
func (s *SessionService) Start(ctx context.Context) (domainauth.Session, error) {
	sess := domainauth.Session{
		ID:        s.newID(),
		State:     domainauth.InitialState(),
		UpdatedAt: s.now(),
	}
	if err := s.store.Save(ctx, sess); err != nil {
		return domainauth.Session{}, fmt.Errorf("save new session: %w", err)
	}
	if s.observer != nil {
		s.observer.ObserveSessionStarted()
	}
	return sess, nil
}

// Get returns the stored session or ports.ErrSessionNotFound.
func (s *SessionService) Get(ctx context.Context, id string) (domainauth.Session, error) {
	sess, err := s.store.Get(ctx, id)
	if err != nil {
		return domainauth.Session{}, fmt.Errorf("load session: %w", err)
	}
	return sess, nil
}

// Resolve returns the session for id, starting a new one when id is empty or unknown.
func (s *SessionService) Resolve(ctx context.Context, id string) (domainauth.Session, bool, error) {
	if id != "" {
		sess, err := s.store.Get(ctx, id)
		if err == nil {
			return sess, false, nil
		}
		if !errors.Is(err, ports.ErrSessionNotFound) {
			return domainauth.Session{}, false, fmt.Errorf("load session: %w", err)
		}
	}
	sess, err := s.Start(ctx)
	if err != nil {
		return domainauth.Session{}, false, err
	}
	return sess, true, nil
}

// Dispatch commits a through the reducer and returns the new state.
func (s *SessionService) Dispatch(ctx context.Context, id string, a domainauth.Action) (domainauth.State, error) {
	sess, err := s.update(ctx, id, func(sess *domainauth.Session) {
		sess.State = domainauth.Reduce(sess.State, a)
	})
	if err != nil {
		return domainauth.State{}, err
	}
	return sess.State, nil
}

// Authenticate commits a and stores the backend credentials in the same write.
func (s *SessionService) Authenticate(
	ctx context.Context,
	id string,
	a domainauth.Action,
	creds domainauth.Credentials,
) (domainauth.State, error) {
	sess, err := s.update(ctx, id, func(sess *domainauth.Session) {
		sess.State = domainauth.Reduce(sess.State, a)
		sess.Credentials = sess.Credentials.Merge(creds)
	})
	if err != nil {
		return domainauth.State{}, err
	}
	return sess.State, nil
}

// Logout clears the user without any backend call and forgets the stored credentials.
// It returns the credentials that were held so the caller can expire them on the browser.
func (s *SessionService) Logout(ctx context.Context, id string) (domainauth.Credentials, error) {
	var held domainauth.Credentials
	_, err := s.update(ctx, id, func(sess *domainauth.Session) {
		held = sess.Credentials
		sess.State = domainauth.Reduce(sess.State, domainauth.Logout())
		sess.Credentials = nil
	})
	if err != nil {
		return nil, err
	}
	return held, nil
}

// BeginFetch commits the pending transition and starts the current-user fetch
// detached from ctx's cancellation. The returned channel closes once the fetch
// has settled. A session whose user is already present is left alone and gets
// a closed channel.
func (s *SessionService) BeginFetch(
	ctx context.Context,
	id string,
	creds domainauth.Credentials,
) (domainauth.State, <-chan struct{}, error) {
	skip := false
	sess, err := s.update(ctx, id, func(sess *domainauth.Session) {
		if skip = !domainauth.NeedsFetch(sess.State); skip {
			return
		}
		sess.State = domainauth.Reduce(sess.State, domainauth.FetchPending())
	})
	if err != nil {
		return domainauth.State{}, nil, err
	}

	done := make(chan struct{})
	if skip {
		close(done)
		return sess.State, done, nil
	}

	creds = sess.Credentials.Merge(creds)
	detached := context.WithoutCancel(ctx)

	s.inflight.Add(1)
	if !s.dedup {
		go func() {
			defer s.inflight.Done()
			defer close(done)
			s.settle(detached, id, creds)
		}()
		return sess.State, done, nil
	}

	results := s.flights.DoChan(id, func() (any, error) {
		s.settle(detached, id, creds)
		return nil, nil
	})
	go func() {
		defer s.inflight.Done()
		defer close(done)
		<-results
	}()
	return sess.State, done, nil
}

// AwaitSettled waits for done, up to wait, then returns the latest state of id.
func (s *SessionService) AwaitSettled(
	ctx context.Context,
	id string,
	done <-chan struct{},
	wait time.Duration,
) (domainauth.State, error) {
	if done != nil && wait > 0 {
		timer := time.NewTimer(wait)
		defer timer.Stop()
		select {
		case <-done:
		case <-timer.C:
		case <-ctx.Done():
			return domainauth.State{}, ctx.Err()
		}
	}
	sess, err := s.Get(ctx, id)
	if err != nil {
		return domainauth.State{}, err
	}
	return sess.State, nil
}

// Wait blocks until every detached fetch has settled or ctx is done.
func (s *SessionService) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		s.inflight.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *SessionService) settle(ctx context.Context, id string, creds domainauth.Credentials) {
	action := domainauth.FetchRejected(domainauth.NotAuthenticatedMessage)
	outcome := FetchOutcomeRejected

	func() {
		defer func() {
			if r := recover(); r != nil {
				s.logger.ErrorContext(ctx, "session fetch panicked", "session", shortSessionID(id), "panic", r)
			}
		}()
		user, err := s.fetcher.FetchCurrentUser(ctx, creds)
		if err != nil {
			s.logger.DebugContext(ctx, "session fetch rejected", "session", shortSessionID(id), "error", err)
			return
		}
		action = domainauth.FetchFulfilled(user)
		outcome = FetchOutcomeFulfilled
	}()

	if s.observer != nil {
		s.observer.ObserveSessionFetch(outcome)
	}

	if _, err := s.Dispatch(ctx, id, action); err != nil {
		if errors.Is(err, ports.ErrSessionNotFound) {
			s.logger.DebugContext(ctx, "session gone before fetch settled", "session", shortSessionID(id))
			return
		}
		s.logger.WarnContext(ctx, "commit session fetch", "session", shortSessionID(id), "error", err)
	}
}

func (s *SessionService) update(
	ctx context.Context,
	id string,
	fn func(*domainauth.Session),
) (domainauth.Session, error) {
	if id == "" {
		return domainauth.Session{}, ports.ErrSessionNotFound
	}

	mu := s.lockFor(id)
	mu.Lock()
	defer mu.Unlock()

	// Shared stores serialize writers across instances themselves.
	if updater, ok := s.store.(ports.SessionUpdater); ok {
		sess, err := updater.Update(ctx, id, func(sess *domainauth.Session) {
			fn(sess)
			sess.UpdatedAt = s.now()
		})
		if err != nil {
			return domainauth.Session{}, fmt.Errorf("update session: %w", err)
		}
		return sess, nil
	}

	sess, err := s.store.Get(ctx, id)
	if err != nil {
		return domainauth.Session{}, fmt.Errorf("load session: %w", err)
	}
	fn(&sess)
	sess.UpdatedAt = s.now()
	if err := s.store.Save(ctx, sess); err != nil {
		return domainauth.Session{}, fmt.Errorf("save session: %w", err)
	}
	return sess, nil
}

func (s *SessionService) lockFor(id string) *sync.Mutex {
	h := fnv.New32a()
	_, _ = h.Write([]byte(id))
	return &s.locks[h.Sum32()%lockStripes]
}

// shortSessionID keeps session ids out of logs in full.
func shortSessionID(id string) string {
	if len(id) <= 8 {
		return id
	}
	return id[:8]
}
