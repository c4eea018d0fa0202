package services

import (
	"sync"
	"time"

	"shopfront/internal/domain"
	applog "shopfront/internal/log"
)

// Wishlist writes through on every mutation and rolls the local collection
// back to its pre-mutation value when the write fails.
type Wishlist struct {
	mu     sync.Mutex
	userID string
	items  []domain.WishlistItem
	users  UserStore
	notify Notifier
	now    func() time.Time
}

func NewWishlist(userID string, initial []domain.WishlistItem, users UserStore, n Notifier) *Wishlist {
	items := make([]domain.WishlistItem, len(initial))
	copy(items, initial)
	if n == nil {
		n = LogNotifier{}
	}
	return &Wishlist{userID: userID, items: items, users: users, notify: n, now: time.Now}
}

func (w *Wishlist) indexOf(productID string) int {
	for i, it := range w.items {
		if it.ID == productID {
			return i
		}
	}
	return -1
}

// Add is a no-op when the product is already saved.
func (w *Wishlist) Add(p domain.Product) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.indexOf(p.ID) >= 0 {
		return nil
	}
	prev := w.snapshotLocked()
	w.items = append(w.items, domain.WishlistItem{Product: p, AddedAt: w.now().UTC()})
	if err := w.commitLocked(prev); err != nil {
		return err
	}
	w.notify.Notify(NoticeSuccess, "Added to wishlist")
	return nil
}

func (w *Wishlist) Remove(productID string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	i := w.indexOf(productID)
	if i < 0 {
		return nil
	}
	prev := w.snapshotLocked()
	w.items = append(w.items[:i:i], w.items[i+1:]...)
	if err := w.commitLocked(prev); err != nil {
		return err
	}
	w.notify.Notify(NoticeInfo, "Removed from wishlist")
	return nil
}

// Toggle adds p when absent and removes it when present.
func (w *Wishlist) Toggle(p domain.Product) (added bool, err error) {
	if w.Contains(p.ID) {
		return false, w.Remove(p.ID)
	}
	return true, w.Add(p)
}

func (w *Wishlist) Contains(productID string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.indexOf(productID) >= 0
}

func (w *Wishlist) Items() []domain.WishlistItem {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.snapshotLocked()
}

func (w *Wishlist) snapshotLocked() []domain.WishlistItem {
	out := make([]domain.WishlistItem, len(w.items))
	copy(out, w.items)
	return out
}

func (w *Wishlist) commitLocked(prev []domain.WishlistItem) error {
	next := w.snapshotLocked()
	if _, err := w.users.Patch(w.userID, domain.UserPatch{Wishlist: &next}); err != nil {
		w.items = prev
		applog.Error(nil, "wishlist.sync.fail", err, map[string]any{"user_id": w.userID})
		w.notify.Notify(NoticeError, "Failed to update wishlist")
		return err
	}
	return nil
}
