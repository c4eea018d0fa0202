package services_test

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"shopfront/internal/domain"
	"shopfront/internal/repos"
	"shopfront/internal/services"
)

var errRemote = errors.New("remote write failed")

type env struct {
	users    *countingUsers
	products *flakyProducts
	sessions *services.SessionRegistry
	clock    *manualClock
	repo     *repos.UserRepo
}

func newEnv(t *testing.T) *env {
	t.Helper()
	db, err := repos.OpenDB(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	userRepo := repos.NewUserRepo(db)
	users := &countingUsers{UserStore: userRepo}
	products := &flakyProducts{ProductStore: repos.NewProductRepo(db), fail: map[string]bool{}}
	clock := &manualClock{}
	reg := services.NewSessionRegistry(users, userRepo, 300*time.Millisecond)
	reg.SetAfterFunc(clock.After)
	return &env{users: users, products: products, sessions: reg, clock: clock, repo: userRepo}
}

func (e *env) login(t *testing.T, sid, email string) *services.Session {
	t.Helper()
	u, err := e.users.ByEmail(email)
	require.NoError(t, err)
	s, err := e.sessions.Start(sid, u)
	require.NoError(t, err)
	return s
}

func (e *env) product(t *testing.T, id string) domain.Product {
	t.Helper()
	p, err := e.products.Get(id)
	require.NoError(t, err)
	return p
}

// countingUsers counts patches and can be told to fail them or to answer
// reads slowly, like a remote store.
type countingUsers struct {
	services.UserStore
	mu        sync.Mutex
	patches   int
	failPatch bool
	readDelay time.Duration
}

func (c *countingUsers) ByID(id string) (*domain.User, error) {
	c.mu.Lock()
	d := c.readDelay
	c.mu.Unlock()
	time.Sleep(d)
	return c.UserStore.ByID(id)
}

func (c *countingUsers) setReadDelay(d time.Duration) {
	c.mu.Lock()
	c.readDelay = d
	c.mu.Unlock()
}

func (c *countingUsers) Patch(id string, p domain.UserPatch) (*domain.User, error) {
	c.mu.Lock()
	c.patches++
	fail := c.failPatch
	c.mu.Unlock()
	if fail {
		return nil, errRemote
	}
	return c.UserStore.Patch(id, p)
}

func (c *countingUsers) setFail(v bool) {
	c.mu.Lock()
	c.failPatch = v
	c.mu.Unlock()
}

func (c *countingUsers) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.patches
}

// flakyProducts fails patches for the listed product ids.
type flakyProducts struct {
	services.ProductStore
	fail map[string]bool
}

func (f *flakyProducts) Patch(id string, p domain.ProductPatch) (domain.Product, error) {
	if f.fail[id] {
		return domain.Product{}, errRemote
	}
	return f.ProductStore.Patch(id, p)
}

// manualClock hands out timers that only fire when told to.
type manualClock struct {
	mu     sync.Mutex
	timers []*manualTimer
}

type manualTimer struct {
	mu      sync.Mutex
	f       func()
	stopped bool
}

func (t *manualTimer) Stop() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	was := !t.stopped
	t.stopped = true
	return was
}

func (c *manualClock) After(_ time.Duration, f func()) services.Timer {
	t := &manualTimer{f: f}
	c.mu.Lock()
	c.timers = append(c.timers, t)
	c.mu.Unlock()
	return t
}

// Fire runs every timer that has not been stopped and returns how many ran.
func (c *manualClock) Fire() int {
	c.mu.Lock()
	timers := c.timers
	c.timers = nil
	c.mu.Unlock()
	n := 0
	for _, t := range timers {
		t.mu.Lock()
		live := !t.stopped
		t.stopped = true
		t.mu.Unlock()
		if live {
			t.f()
			n++
		}
	}
	return n
}

// fakeGateway signs callbacks with a fixed secret.
type fakeGateway struct {
	orders  int
	failNew bool
}

func (g *fakeGateway) KeyID() string { return "rzp_test_key" }

func (g *fakeGateway) CreateOrder(amount int64, currency, receipt string) (string, error) {
	if g.failNew {
		return "", errRemote
	}
	g.orders++
	return "order_" + string(rune('A'+g.orders-1)), nil
}

func (g *fakeGateway) VerifySignature(orderID, paymentID, signature string) bool {
	return signature == "sig:"+orderID+"|"+paymentID
}
