package services

import (
	"errors"
	"sync"
	"time"

	"shopfront/internal/domain"
	applog "shopfront/internal/log"
)

// Session is the per-login context: the user snapshot plus the cart,
// wishlist, checkout and notices that belong to it. It replaces any
// process-wide cart or auth state.
type Session struct {
	ID       string
	Cart     *Cart
	Wishlist *Wishlist
	Checkout *Checkout
	Notices  *NoticeBox

	mu    sync.Mutex
	user  domain.User
	queue *SyncQueue
}

func newSession(sid string, u *domain.User, users UserStore, wait time.Duration, after AfterFunc) *Session {
	box := NewNoticeBox(u.ID)
	q := NewSyncQueue(wait, func(err error) {
		box.Notify(NoticeError, "Failed to update cart")
	})
	if after != nil {
		q.SetAfterFunc(after)
	}
	return &Session{
		ID:       sid,
		Cart:     NewCart(u.ID, u.Cart, users, q),
		Wishlist: NewWishlist(u.ID, u.Wishlist, users, box),
		Checkout: NewCheckout(),
		Notices:  box,
		user:     *u,
		queue:    q,
	}
}

// User returns a copy of the session's user record.
func (s *Session) User() domain.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.user
}

func (s *Session) UserID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.user.ID
}

func (s *Session) setUser(u *domain.User) {
	s.mu.Lock()
	s.user = *u
	s.mu.Unlock()
}

// end flushes the pending cart write, then stops the queue.
func (s *Session) end() error {
	err := s.queue.Flush()
	s.queue.Stop()
	return err
}

// SessionRegistry maps session ids to live sessions.
type SessionRegistry struct {
	mu       sync.Mutex
	sessions map[string]*Session
	users    UserStore
	store    SessionStore
	wait     time.Duration
	after    AfterFunc
}

func NewSessionRegistry(users UserStore, store SessionStore, cartSyncWait time.Duration) *SessionRegistry {
	if store == nil {
		store = NewMemorySessions(users)
	}
	return &SessionRegistry{sessions: map[string]*Session{}, users: users, store: store, wait: cartSyncWait}
}

// SetAfterFunc makes new sessions use f for their cart sync timers.
func (r *SessionRegistry) SetAfterFunc(f AfterFunc) {
	r.mu.Lock()
	r.after = f
	r.mu.Unlock()
}

// Start binds sid to u and returns a fresh session hydrated from u's record.
// An existing session under sid is ended first.
func (r *SessionRegistry) Start(sid string, u *domain.User) (*Session, error) {
	if err := r.store.BindSession(sid, u.ID); err != nil {
		return nil, err
	}
	r.mu.Lock()
	old := r.sessions[sid]
	s := newSession(sid, u, r.users, r.wait, r.after)
	r.sessions[sid] = s
	r.mu.Unlock()
	if old != nil {
		_ = old.end()
	}
	return s, nil
}

// Get returns the live session for sid, rehydrating it from the session
// store after a restart.
func (r *SessionRegistry) Get(sid string) (*Session, error) {
	if sid == "" {
		return nil, ErrNoSession
	}
	r.mu.Lock()
	s, ok := r.sessions[sid]
	r.mu.Unlock()
	if ok {
		return s, nil
	}
	u, err := r.store.SessionUser(sid)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, ErrNoSession
	}
	if err != nil {
		return nil, err
	}
	if u.Status == domain.UserBlocked {
		return nil, ErrUserBlocked
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.sessions[sid]; ok {
		return s, nil
	}
	s = newSession(sid, u, r.users, r.wait, r.after)
	r.sessions[sid] = s
	return s, nil
}

// End flushes and drops the session's local state and unbinds sid.
func (r *SessionRegistry) End(sid string) error {
	r.mu.Lock()
	s := r.sessions[sid]
	delete(r.sessions, sid)
	r.mu.Unlock()
	var flushErr error
	if s != nil {
		flushErr = s.end()
		if flushErr != nil {
			applog.Error(nil, "session.end.flush.fail", flushErr, map[string]any{"user_id": s.UserID()})
		}
	}
	if err := r.store.UnbindSession(sid); err != nil {
		return err
	}
	return flushErr
}

// EndUser ends every session that belongs to userID.
func (r *SessionRegistry) EndUser(userID string) {
	r.mu.Lock()
	var sids []string
	for sid, s := range r.sessions {
		if s.UserID() == userID {
			sids = append(sids, sid)
		}
	}
	r.mu.Unlock()
	for _, sid := range sids {
		_ = r.End(sid)
	}
}

// FlushAll pushes every live session's pending cart write. Used on shutdown.
func (r *SessionRegistry) FlushAll() error {
	r.mu.Lock()
	live := make([]*Session, 0, len(r.sessions))
	for _, s := range r.sessions {
		live = append(live, s)
	}
	r.mu.Unlock()
	var errs []error
	for _, s := range live {
		if err := s.Cart.Flush(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// MemorySessions is a SessionStore for deployments without a session table.
type MemorySessions struct {
	mu    sync.Mutex
	users UserStore
	binds map[string]string
}

func NewMemorySessions(users UserStore) *MemorySessions {
	return &MemorySessions{users: users, binds: map[string]string{}}
}

func (m *MemorySessions) BindSession(sid, userID string) error {
	m.mu.Lock()
	m.binds[sid] = userID
	m.mu.Unlock()
	return nil
}

func (m *MemorySessions) SessionUser(sid string) (*domain.User, error) {
	m.mu.Lock()
	id, ok := m.binds[sid]
	m.mu.Unlock()
	if !ok {
		return nil, domain.ErrNotFound
	}
	return m.users.ByID(id)
}

func (m *MemorySessions) UnbindSession(sid string) error {
	m.mu.Lock()
	delete(m.binds, sid)
	m.mu.Unlock()
	return nil
}
