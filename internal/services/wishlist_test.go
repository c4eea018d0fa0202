package services_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shopfront/internal/services"
)

func TestWishlistAddIsIdempotent(t *testing.T) {
	e := newEnv(t)
	s := e.login(t, "sid-1", "alice@shopfront.test")
	p2 := e.product(t, "p2")

	require.NoError(t, s.Wishlist.Add(p2))
	writes := e.users.count()
	require.NoError(t, s.Wishlist.Add(p2))

	assert.Len(t, s.Wishlist.Items(), 1)
	assert.Equal(t, writes, e.users.count(), "second add does not write")

	u, err := e.repo.ByID(s.UserID())
	require.NoError(t, err)
	require.Len(t, u.Wishlist, 1)
	assert.Equal(t, "p2", u.Wishlist[0].ID)
}

func TestWishlistToggle(t *testing.T) {
	e := newEnv(t)
	s := e.login(t, "sid-1", "alice@shopfront.test")
	p1 := e.product(t, "p1")

	added, err := s.Wishlist.Toggle(p1)
	require.NoError(t, err)
	assert.True(t, added)
	assert.True(t, s.Wishlist.Contains("p1"))

	added, err = s.Wishlist.Toggle(p1)
	require.NoError(t, err)
	assert.False(t, added)
	assert.False(t, s.Wishlist.Contains("p1"))
}

func TestWishlistRollsBackOnFailedWrite(t *testing.T) {
	e := newEnv(t)
	s := e.login(t, "sid-1", "alice@shopfront.test")
	require.NoError(t, s.Wishlist.Add(e.product(t, "p1")))
	s.Notices.Drain()

	e.users.setFail(true)
	err := s.Wishlist.Add(e.product(t, "p2"))
	assert.ErrorIs(t, err, errRemote)
	items := s.Wishlist.Items()
	require.Len(t, items, 1)
	assert.Equal(t, "p1", items[0].ID)

	err = s.Wishlist.Remove("p1")
	assert.ErrorIs(t, err, errRemote)
	assert.True(t, s.Wishlist.Contains("p1"))

	notices := s.Notices.Drain()
	require.Len(t, notices, 2)
	for _, n := range notices {
		assert.Equal(t, services.NoticeError, n.Level)
		assert.Equal(t, "Failed to update wishlist", n.Message)
	}
}
