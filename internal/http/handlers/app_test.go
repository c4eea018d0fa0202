package handlers_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	html "github.com/gofiber/template/html/v2"
	"github.com/stretchr/testify/require"

	"shopfront/internal/config"
	"shopfront/internal/http/handlers"
	applog "shopfront/internal/log"
	"shopfront/internal/payment"
	"shopfront/internal/repos"
)

const testSecret = "test_secret"

type testApp struct {
	app      *fiber.App
	deps     *handlers.Deps
	users    *repos.UserRepo
	products *repos.ProductRepo
}

// newTestApp builds the real route table over an in-memory database.
// gw may be nil.
func newTestApp(t *testing.T, gw payment.Gateway) *testApp {
	t.Helper()
	db, err := repos.OpenDB(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	users := repos.NewUserRepo(db)
	products := repos.NewProductRepo(db)

	cfg := config.Config{Currency: "INR", CartSyncWait: time.Hour}
	deps := handlers.NewDeps(users, products, users, gw, cfg)

	engine := html.New("../../../web/templates", ".html")
	app := fiber.New(fiber.Config{Views: engine, ErrorHandler: handlers.ErrorHandler, BodyLimit: 1 << 20})
	app.Use(requestid.New())
	handlers.Mount(app, deps)
	return &testApp{app: app, deps: deps, users: users, products: products}
}

// do sends body as JSON (when non-nil) with the given session cookie.
func (a *testApp) do(t *testing.T, method, path string, body any, sid string) (*http.Response, []byte) {
	t.Helper()
	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, r)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if sid != "" {
		req.AddCookie(&http.Cookie{Name: "sid", Value: sid})
	}
	resp, err := a.app.Test(req, -1)
	require.NoError(t, err)
	out, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, out
}

func (a *testApp) login(t *testing.T, email string) string {
	t.Helper()
	resp, body := a.do(t, "POST", "/api/auth/login", map[string]string{"email": email, "password": "Passw0rd!"}, "")
	require.Equal(t, fiber.StatusOK, resp.StatusCode, string(body))
	sid := cookie(resp, "sid")
	require.NotEmpty(t, sid)
	return sid
}

func cookie(resp *http.Response, name string) string {
	for _, c := range resp.Cookies() {
		if c.Name == name {
			return c.Value
		}
	}
	return ""
}

func decode[T any](t *testing.T, body []byte) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(body, &v), string(body))
	return v
}

type logEntry struct {
	Level  string         `json:"level"`
	Kind   string         `json:"kind"`
	Action string         `json:"action"`
	Fields map[string]any `json:"fields"`
}

type lockedWriter struct {
	mu sync.Mutex
	w  bytes.Buffer
}

func (lw *lockedWriter) Write(p []byte) (int, error) {
	lw.mu.Lock()
	defer lw.mu.Unlock()
	return lw.w.Write(p)
}

// captureLogs collects the structured entries written while fn runs.
func captureLogs(t *testing.T, fn func()) []logEntry {
	t.Helper()
	lw := &lockedWriter{}
	applog.SetOutput(lw)
	defer applog.SetOutput(os.Stderr)

	fn()

	lw.mu.Lock()
	defer lw.mu.Unlock()
	var entries []logEntry
	for _, line := range strings.Split(strings.TrimSpace(lw.w.String()), "\n") {
		var e logEntry
		if err := json.Unmarshal([]byte(line), &e); err == nil {
			entries = append(entries, e)
		}
	}
	return entries
}

func findAction(entries []logEntry, action string) *logEntry {
	for i := range entries {
		if entries[i].Action == action {
			return &entries[i]
		}
	}
	return nil
}

// stubGateway hands out sequential order refs and checks real HMAC signatures.
type stubGateway struct{ n int }

func (g *stubGateway) KeyID() string { return "rzp_test_key" }

func (g *stubGateway) CreateOrder(amount int64, currency, receipt string) (string, error) {
	g.n++
	return "order_" + strings.Repeat("x", g.n), nil
}

func (g *stubGateway) VerifySignature(orderID, paymentID, signature string) bool {
	return payment.Signature(testSecret, orderID, paymentID) == signature
}

var shipping = map[string]string{
	"name": "Alice", "email": "alice@shopfront.test", "phone": "9876543210",
	"address": "12 MG Road", "city": "Pune", "state": "MH", "postalCode": "411001", "country": "India",
}

func shippingWith(method string) map[string]string {
	out := map[string]string{"paymentMethod": method}
	for k, v := range shipping {
		out[k] = v
	}
	return out
}
