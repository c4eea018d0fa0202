package restclient_test

import (
	"net"
	"sync"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shopfront/internal/domain"
	"shopfront/internal/restclient"
)

type doc = map[string]any

// jsonServer is a small in-memory stand-in for the REST backend.
type jsonServer struct {
	mu        sync.Mutex
	users     map[string]doc
	products  map[string]doc
	lastPatch doc
	lastQuery string
}

func (s *jsonServer) collection(name string) map[string]doc {
	switch name {
	case "users":
		return s.users
	case "products":
		return s.products
	}
	return nil
}

func (s *jsonServer) routes(app *fiber.App) {
	app.Get("/:coll", func(c *fiber.Ctx) error {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.lastQuery = string(c.Request().URI().QueryString())
		coll := s.collection(c.Params("coll"))
		if coll == nil {
			return fiber.ErrInternalServerError
		}
		ids := map[string]bool{}
		for _, id := range c.Context().QueryArgs().PeekMulti("id") {
			ids[string(id)] = true
		}
		out := []doc{}
		for id, d := range coll {
			if len(ids) > 0 && !ids[id] {
				continue
			}
			if email := c.Query("email"); email != "" && d["email"] != email {
				continue
			}
			if cat := c.Query("category"); cat != "" && d["category"] != cat {
				continue
			}
			out = append(out, d)
		}
		return c.JSON(out)
	})
	app.Get("/:coll/:id", func(c *fiber.Ctx) error {
		s.mu.Lock()
		defer s.mu.Unlock()
		coll := s.collection(c.Params("coll"))
		if coll == nil {
			return fiber.ErrInternalServerError
		}
		d, ok := coll[c.Params("id")]
		if !ok {
			return c.Status(fiber.StatusNotFound).JSON(doc{})
		}
		return c.JSON(d)
	})
	app.Post("/:coll", func(c *fiber.Ctx) error {
		var d doc
		if err := c.BodyParser(&d); err != nil {
			return fiber.ErrBadRequest
		}
		s.mu.Lock()
		defer s.mu.Unlock()
		s.collection(c.Params("coll"))[d["id"].(string)] = d
		return c.Status(fiber.StatusCreated).JSON(d)
	})
	app.Patch("/:coll/:id", func(c *fiber.Ctx) error {
		var patch doc
		if err := c.BodyParser(&patch); err != nil {
			return fiber.ErrBadRequest
		}
		s.mu.Lock()
		defer s.mu.Unlock()
		d, ok := s.collection(c.Params("coll"))[c.Params("id")]
		if !ok {
			return c.Status(fiber.StatusNotFound).JSON(doc{})
		}
		s.lastPatch = patch
		for k, v := range patch {
			d[k] = v
		}
		return c.JSON(d)
	})
	app.Delete("/:coll/:id", func(c *fiber.Ctx) error {
		s.mu.Lock()
		defer s.mu.Unlock()
		coll := s.collection(c.Params("coll"))
		if _, ok := coll[c.Params("id")]; !ok {
			return c.Status(fiber.StatusNotFound).JSON(doc{})
		}
		delete(coll, c.Params("id"))
		return c.JSON(doc{})
	})
}

func startServer(t *testing.T) (*jsonServer, *restclient.Client) {
	t.Helper()
	srv := &jsonServer{
		users: map[string]doc{
			"u1": {"id": "u1", "name": "Alice", "email": "alice@shopfront.test", "passwordHash": "h",
				"role": "User", "status": "Active", "cart": []any{}, "wishlist": []any{}, "orders": []any{}},
		},
		products: map[string]doc{
			"p1": {"id": "p1", "name": "Jacket", "price": 500, "stock": 20, "category": "men", "active": true},
			"p2": {"id": "p2", "name": "Dress", "price": 1299, "stock": 8, "category": "women", "active": true},
		},
	}
	app := fiber.New(fiber.Config{DisableStartupMessage: true})
	srv.routes(app)
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	go func() { _ = app.Listener(ln) }()
	t.Cleanup(func() { _ = app.Shutdown() })
	return srv, restclient.New("http://" + ln.Addr().String() + "/")
}

func TestServerErrorIsStatusError(t *testing.T) {
	_, c := startServer(t)
	broken := restclient.New(c.BaseURL + "/v0")
	_, err := restclient.NewProducts(broken).List(domain.ProductFilter{})
	var se *restclient.StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, fiber.StatusInternalServerError, se.Code)
}

func TestUsersLookup(t *testing.T) {
	_, c := startServer(t)
	users := restclient.NewUsers(c)

	u, err := users.ByEmail("alice@shopfront.test")
	require.NoError(t, err)
	assert.Equal(t, "u1", u.ID)
	assert.Equal(t, "h", u.Hash)
	assert.Equal(t, domain.UserActive, u.Status)

	_, err = users.ByEmail("nobody@shopfront.test")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = users.ByID("missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestUsersPatchSendsOnlySetFields(t *testing.T) {
	srv, c := startServer(t)
	users := restclient.NewUsers(c)

	cart := []domain.CartItem{{Product: domain.Product{ID: "p1", Name: "Jacket", Price: 500}, Quantity: 2}}
	u, err := users.Patch("u1", domain.UserPatch{Cart: &cart})
	require.NoError(t, err)
	require.Len(t, u.Cart, 1)
	assert.Equal(t, 2, u.Cart[0].Quantity)
	assert.Equal(t, "Alice", u.Name)

	srv.mu.Lock()
	keys := make([]string, 0, len(srv.lastPatch))
	for k := range srv.lastPatch {
		keys = append(keys, k)
	}
	srv.mu.Unlock()
	assert.Equal(t, []string{"cart"}, keys)
}

func TestUsersCreateAndList(t *testing.T) {
	_, c := startServer(t)
	users := restclient.NewUsers(c)

	u := &domain.User{Name: "Bob", Email: "bob@shopfront.test", Hash: "x", Role: domain.RoleUser, Status: domain.UserActive}
	require.NoError(t, users.Create(u))
	assert.NotEmpty(t, u.ID)

	all, err := users.List()
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestProductsFilterAndStockPatch(t *testing.T) {
	srv, c := startServer(t)
	products := restclient.NewProducts(c)

	list, err := products.List(domain.ProductFilter{IDs: []string{"p1", "p2"}, Category: "men"})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "p1", list[0].ID)
	srv.mu.Lock()
	assert.Contains(t, srv.lastQuery, "id=p1&id=p2")
	srv.mu.Unlock()

	stock := 0
	p, err := products.Patch("p2", domain.ProductPatch{Stock: &stock})
	require.NoError(t, err)
	assert.Equal(t, 0, p.Stock)
	assert.Equal(t, "Dress", p.Name)

	_, err = products.Patch("ghost", domain.ProductPatch{Stock: &stock})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	require.NoError(t, products.Delete("p1"))
	_, err = products.Get("p1")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestOlderRecordShapes(t *testing.T) {
	srv, c := startServer(t)
	srv.mu.Lock()
	srv.products["p9"] = doc{"id": "p9", "name": "Beanie", "price": 249, "count": 5, "category": "accessories"}
	srv.users["u9"] = doc{"id": "u9", "name": "Old", "email": "old@shopfront.test", "passwordHash": "h",
		"orders": []any{doc{
			"orderId": "COD-1700000000000", "date": "2023-11-14T22:13:20.000Z", "status": "Pending",
			"totalAmount": 1180, "paymentId": nil,
			"items": []any{doc{"id": "p1", "name": "Jacket", "quantity": 2, "price": 500, "gst": "180.00", "total": "1180.00"}},
		}}}
	srv.mu.Unlock()

	products := restclient.NewProducts(c)
	p, err := products.Get("p9")
	require.NoError(t, err)
	assert.Equal(t, 5, p.Stock)

	left := 3
	p, err = products.Patch("p9", domain.ProductPatch{Stock: &left})
	require.NoError(t, err)
	assert.Equal(t, 3, p.Stock)
	srv.mu.Lock()
	assert.EqualValues(t, 3, srv.lastPatch["count"])
	assert.EqualValues(t, 3, srv.lastPatch["stock"])
	srv.mu.Unlock()

	u, err := restclient.NewUsers(c).ByID("u9")
	require.NoError(t, err)
	require.Len(t, u.Orders, 1)
	o := u.Orders[0]
	assert.Equal(t, "COD-1700000000000", o.ID)
	assert.Equal(t, domain.PaymentCOD, o.PaymentMethod)
	assert.Equal(t, 2023, o.CreatedAt.Year())
	require.Len(t, o.Items, 1)
	assert.Equal(t, "p1", o.Items[0].ProductID)
	assert.InDelta(t, 180.0, o.Items[0].GST, 0.001)
	assert.InDelta(t, 1180.0, o.Items[0].Total, 0.001)
}
