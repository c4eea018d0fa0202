package services

import (
	"sync"
	"time"

	"shopfront/internal/domain"
	applog "shopfront/internal/log"
	"shopfront/internal/validate"
)

// Cart is the session's in-memory cart. It is the source of truth for the
// session; every mutation schedules a debounced write of the whole collection
// to the user record. A failed write is reported but not retried, so the
// stored cart may lag until the next successful write.
type Cart struct {
	mu     sync.Mutex
	userID string
	items  []domain.CartItem
	users  UserStore
	queue  *SyncQueue
	now    func() time.Time
}

func NewCart(userID string, initial []domain.CartItem, users UserStore, queue *SyncQueue) *Cart {
	items := make([]domain.CartItem, 0, len(initial))
	for _, it := range initial {
		if it.Quantity >= 1 {
			items = append(items, it)
		}
	}
	return &Cart{userID: userID, items: items, users: users, queue: queue, now: time.Now}
}

func (c *Cart) indexOf(productID string) int {
	for i, it := range c.items {
		if it.ID == productID {
			return i
		}
	}
	return -1
}

// Add merges qty into the existing line for p or appends a new line. A line
// never holds more than validate.MaxQty units.
func (c *Cart) Add(p domain.Product, qty int) domain.CartItem {
	qty = validate.ClampQty(qty)
	c.mu.Lock()
	defer c.mu.Unlock()
	var out domain.CartItem
	if i := c.indexOf(p.ID); i >= 0 {
		c.items[i].Quantity = min(c.items[i].Quantity+qty, validate.MaxQty)
		out = c.items[i]
	} else {
		out = domain.CartItem{Product: p, Quantity: qty, AddedAt: c.now().UTC()}
		c.items = append(c.items, out)
	}
	c.scheduleLocked()
	return out
}

// Remove deletes the line for productID; it reports whether one existed.
func (c *Cart) Remove(productID string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.removeLocked(productID)
}

func (c *Cart) removeLocked(productID string) bool {
	i := c.indexOf(productID)
	if i < 0 {
		return false
	}
	c.items = append(c.items[:i], c.items[i+1:]...)
	c.scheduleLocked()
	return true
}

// SetQuantity sets the line quantity, capped at validate.MaxQty; anything
// below 1 removes the line.
func (c *Cart) SetQuantity(productID string, qty int) bool {
	qty = min(qty, validate.MaxQty)
	c.mu.Lock()
	defer c.mu.Unlock()
	if qty < 1 {
		return c.removeLocked(productID)
	}
	i := c.indexOf(productID)
	if i < 0 {
		return false
	}
	c.items[i].Quantity = qty
	c.scheduleLocked()
	return true
}

func (c *Cart) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = c.items[:0]
	c.scheduleLocked()
}

func (c *Cart) Items() []domain.CartItem {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

// Count is the total number of units in the cart.
func (c *Cart) Count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, it := range c.items {
		n += it.Quantity
	}
	return n
}

func (c *Cart) Subtotal() float64 {
	return domain.CartSubtotal(c.Items())
}

// Flush pushes any pending write immediately.
func (c *Cart) Flush() error { return c.queue.Flush() }

func (c *Cart) snapshotLocked() []domain.CartItem {
	out := make([]domain.CartItem, len(c.items))
	copy(out, c.items)
	return out
}

func (c *Cart) scheduleLocked() {
	snap := c.snapshotLocked()
	userID := c.userID
	c.queue.Schedule(func() error {
		if _, err := c.users.Patch(userID, domain.UserPatch{Cart: &snap}); err != nil {
			applog.Error(nil, "cart.sync.fail", err, map[string]any{"user_id": userID, "lines": len(snap)})
			return err
		}
		return nil
	})
}
