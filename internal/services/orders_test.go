package services_test

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shopfront/internal/domain"
	"shopfront/internal/services"
)

var fixedNow = time.Date(2025, 3, 14, 9, 30, 0, 0, time.UTC)

func newOrders(e *env, gw *fakeGateway) *services.OrderService {
	var o *services.OrderService
	if gw == nil {
		o = services.NewOrderService(e.users, services.NewInventoryService(e.products), nil, "INR")
	} else {
		o = services.NewOrderService(e.users, services.NewInventoryService(e.products), gw, "INR")
	}
	o.Now = func() time.Time { return fixedNow }
	return o
}

func TestPlaceCODOrder(t *testing.T) {
	e := newEnv(t)
	s := e.login(t, "sid-1", "alice@shopfront.test")
	s.Cart.Add(e.product(t, "p1"), 2)
	require.NoError(t, s.Checkout.Next(shippingForm("cod")))

	res, err := newOrders(e, nil).Submit(s)
	require.NoError(t, err)
	require.NotNil(t, res.Order)
	assert.NoError(t, res.StockErr)
	assert.Equal(t, "/orders", res.Redirect)

	o := res.Order
	assert.Equal(t, fmt.Sprintf("COD-%d", fixedNow.UnixMilli()), o.ID)
	assert.Equal(t, domain.StatusPending, o.Status)
	assert.Equal(t, domain.PaymentCOD, o.PaymentMethod)
	assert.InDelta(t, 1180.0, o.TotalAmount, 0.001)
	require.Len(t, o.Items, 1)
	assert.InDelta(t, 180.0, o.Items[0].GST, 0.001)
	assert.Equal(t, "Pune", o.Shipping.City)

	assert.Equal(t, 18, e.product(t, "p1").Stock)
	assert.Empty(t, s.Cart.Items())
	assert.Equal(t, services.StepShipping, s.Checkout.Step())

	u, err := e.repo.ByID(s.UserID())
	require.NoError(t, err)
	require.Len(t, u.Orders, 1)
	assert.Equal(t, o.ID, u.Orders[0].ID)
}

func TestOrderWriteFailureLeavesStockAndCart(t *testing.T) {
	e := newEnv(t)
	s := e.login(t, "sid-1", "alice@shopfront.test")
	s.Cart.Add(e.product(t, "p1"), 2)
	require.NoError(t, s.Checkout.Next(shippingForm("cod")))
	e.users.setFail(true)

	_, err := newOrders(e, nil).Submit(s)
	assert.ErrorIs(t, err, errRemote)
	assert.Equal(t, 20, e.product(t, "p1").Stock)
	assert.Equal(t, 2, s.Cart.Count())
	assert.Equal(t, services.StepReview, s.Checkout.Step())
}

func TestStockDecrementFloorsAtZero(t *testing.T) {
	e := newEnv(t)
	s := e.login(t, "sid-1", "alice@shopfront.test")
	s.Cart.Add(e.product(t, "p3"), 5)
	require.NoError(t, s.Checkout.Next(shippingForm("cod")))

	res, err := newOrders(e, nil).Submit(s)
	require.NoError(t, err)
	assert.Equal(t, 5, res.Order.Items[0].Quantity)
	assert.Equal(t, 0, e.product(t, "p3").Stock)
}

func TestPartialStockFailureStillPlacesOrder(t *testing.T) {
	e := newEnv(t)
	s := e.login(t, "sid-1", "alice@shopfront.test")
	s.Cart.Add(e.product(t, "p1"), 1)
	s.Cart.Add(e.product(t, "p2"), 1)
	require.NoError(t, s.Checkout.Next(shippingForm("cod")))
	s.Notices.Drain()
	e.products.fail["p2"] = true

	res, err := newOrders(e, nil).Submit(s)
	require.NoError(t, err)
	require.Error(t, res.StockErr)
	assert.Contains(t, res.StockErr.Error(), "p2")
	assert.Equal(t, 19, e.product(t, "p1").Stock, "earlier product stays decremented")
	assert.Equal(t, 8, e.product(t, "p2").Stock)

	var msgs []string
	for _, n := range s.Notices.Drain() {
		msgs = append(msgs, n.Message)
	}
	assert.Contains(t, msgs, "Order placed successfully")
	assert.Contains(t, msgs, "Order placed, but stock could not be updated for some items")
}

func TestGatewayPaymentFlow(t *testing.T) {
	e := newEnv(t)
	s := e.login(t, "sid-1", "alice@shopfront.test")
	s.Cart.Add(e.product(t, "p1"), 2)
	require.NoError(t, s.Checkout.Next(shippingForm("gateway")))
	orders := newOrders(e, &fakeGateway{})

	res, err := orders.Submit(s)
	require.NoError(t, err)
	assert.Nil(t, res.Order)
	require.NotNil(t, res.Intent)
	in := res.Intent
	assert.Equal(t, int64(118000), in.Amount)
	assert.Equal(t, "INR", in.Currency)
	assert.Equal(t, "rzp_test_key", in.Key)
	assert.Equal(t, "alice@shopfront.test", in.Prefill.Email)
	assert.Equal(t, "/pay/"+in.OrderRef, res.Redirect)

	// nothing is persisted until the callback
	assert.Equal(t, 20, e.product(t, "p1").Stock)
	assert.Equal(t, 2, s.Cart.Count())

	again, err := orders.Intent(s, in.OrderRef)
	require.NoError(t, err)
	assert.Equal(t, in.Amount, again.Amount)

	_, err = orders.CompleteGatewayPayment(s, "pay_1", in.OrderRef, "forged")
	assert.ErrorIs(t, err, services.ErrBadSignature)
	assert.Equal(t, 20, e.product(t, "p1").Stock)

	done, err := orders.CompleteGatewayPayment(s, "pay_1", in.OrderRef, "sig:"+in.OrderRef+"|pay_1")
	require.NoError(t, err)
	assert.Equal(t, "pay_1", done.Order.ID)
	assert.Equal(t, "pay_1", done.Order.PaymentID)
	assert.Equal(t, domain.PaymentGateway, done.Order.PaymentMethod)
	assert.InDelta(t, 1180.0, done.Order.TotalAmount, 0.001)
	assert.Equal(t, 18, e.product(t, "p1").Stock)
	assert.Empty(t, s.Cart.Items())

	_, err = orders.CompleteGatewayPayment(s, "pay_1", in.OrderRef, "sig:"+in.OrderRef+"|pay_1")
	assert.ErrorIs(t, err, services.ErrUnknownPayment, "reference is single use")
}

// callOnce runs fn from eight goroutines and counts the calls that succeed.
func callOnce(t *testing.T, fn func() error, wantErr error) int {
	t.Helper()
	var (
		wg sync.WaitGroup
		mu sync.Mutex
		ok int
	)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := fn(); err != nil {
				assert.ErrorIs(t, err, wantErr)
				return
			}
			mu.Lock()
			ok++
			mu.Unlock()
		}()
	}
	wg.Wait()
	return ok
}

func TestRepeatedGatewayCallbackPlacesOneOrder(t *testing.T) {
	e := newEnv(t)
	s := e.login(t, "sid-1", "alice@shopfront.test")
	s.Cart.Add(e.product(t, "p1"), 2)
	require.NoError(t, s.Checkout.Next(shippingForm("gateway")))
	orders := newOrders(e, &fakeGateway{})
	res, err := orders.Submit(s)
	require.NoError(t, err)
	ref := res.Intent.OrderRef
	e.users.setReadDelay(20 * time.Millisecond)

	ok := callOnce(t, func() error {
		_, err := orders.CompleteGatewayPayment(s, "pay_1", ref, "sig:"+ref+"|pay_1")
		return err
	}, services.ErrUnknownPayment)

	assert.Equal(t, 1, ok)
	u, err := e.repo.ByID(s.UserID())
	require.NoError(t, err)
	assert.Len(t, u.Orders, 1)
	assert.Equal(t, 18, e.product(t, "p1").Stock)
}

func TestGatewayCallbackWriteFailureKeepsReference(t *testing.T) {
	e := newEnv(t)
	s := e.login(t, "sid-1", "alice@shopfront.test")
	s.Cart.Add(e.product(t, "p1"), 1)
	require.NoError(t, s.Checkout.Next(shippingForm("gateway")))
	orders := newOrders(e, &fakeGateway{})
	res, err := orders.Submit(s)
	require.NoError(t, err)
	ref := res.Intent.OrderRef

	e.users.setFail(true)
	_, err = orders.CompleteGatewayPayment(s, "pay_1", ref, "sig:"+ref+"|pay_1")
	assert.ErrorIs(t, err, errRemote)

	e.users.setFail(false)
	done, err := orders.CompleteGatewayPayment(s, "pay_1", ref, "sig:"+ref+"|pay_1")
	require.NoError(t, err)
	assert.Equal(t, "pay_1", done.Order.ID)
}

func TestConcurrentCODSubmitPlacesOneOrder(t *testing.T) {
	e := newEnv(t)
	s := e.login(t, "sid-1", "alice@shopfront.test")
	s.Cart.Add(e.product(t, "p1"), 2)
	require.NoError(t, s.Checkout.Next(shippingForm("cod")))
	orders := newOrders(e, nil)
	e.users.setReadDelay(20 * time.Millisecond)

	ok := callOnce(t, func() error {
		_, err := orders.Submit(s)
		return err
	}, services.ErrInvalidStep)

	assert.Equal(t, 1, ok)
	u, err := e.repo.ByID(s.UserID())
	require.NoError(t, err)
	assert.Len(t, u.Orders, 1)
	assert.Equal(t, 18, e.product(t, "p1").Stock)
	assert.Equal(t, services.StepShipping, s.Checkout.Step())
}

func TestAbandonedGatewayPaymentLeavesNoOrder(t *testing.T) {
	e := newEnv(t)
	s := e.login(t, "sid-1", "alice@shopfront.test")
	s.Cart.Add(e.product(t, "p2"), 1)
	require.NoError(t, s.Checkout.Next(shippingForm("gateway")))

	_, err := newOrders(e, &fakeGateway{}).Submit(s)
	require.NoError(t, err)

	u, err := e.repo.ByID(s.UserID())
	require.NoError(t, err)
	assert.Empty(t, u.Orders)
	assert.Equal(t, 8, e.product(t, "p2").Stock)
}

func TestGatewayRefusedForOtherSession(t *testing.T) {
	e := newEnv(t)
	alice := e.login(t, "sid-a", "alice@shopfront.test")
	admin := e.login(t, "sid-b", "admin@shopfront.test")
	alice.Cart.Add(e.product(t, "p1"), 1)
	require.NoError(t, alice.Checkout.Next(shippingForm("gateway")))
	orders := newOrders(e, &fakeGateway{})

	res, err := orders.Submit(alice)
	require.NoError(t, err)
	ref := res.Intent.OrderRef

	_, err = orders.Intent(admin, ref)
	assert.ErrorIs(t, err, services.ErrUnknownPayment)
	_, err = orders.CompleteGatewayPayment(admin, "pay_x", ref, "sig:"+ref+"|pay_x")
	assert.ErrorIs(t, err, services.ErrUnknownPayment)
}

func TestGatewayUnavailable(t *testing.T) {
	e := newEnv(t)
	s := e.login(t, "sid-1", "alice@shopfront.test")
	s.Cart.Add(e.product(t, "p1"), 1)
	require.NoError(t, s.Checkout.Next(shippingForm("gateway")))

	_, err := newOrders(e, nil).Submit(s)
	assert.ErrorIs(t, err, services.ErrGatewayUnavailable)

	gw := &fakeGateway{failNew: true}
	_, err = newOrders(e, gw).Submit(s)
	assert.ErrorIs(t, err, errRemote)
	assert.Equal(t, services.StepReview, s.Checkout.Step())
}

func TestHistoryNewestFirst(t *testing.T) {
	e := newEnv(t)
	s := e.login(t, "sid-1", "alice@shopfront.test")
	orders := newOrders(e, nil)

	for i, id := range []string{"p1", "p2"} {
		orders.Now = func() time.Time { return fixedNow.Add(time.Duration(i) * time.Hour) }
		s.Cart.Add(e.product(t, id), 1)
		require.NoError(t, s.Checkout.Next(shippingForm("cod")))
		_, err := orders.Submit(s)
		require.NoError(t, err)
	}

	hist, err := orders.History(s.UserID())
	require.NoError(t, err)
	require.Len(t, hist, 2)
	assert.Equal(t, "p2", hist[0].Items[0].ProductID)
	assert.Equal(t, "p1", hist[1].Items[0].ProductID)
}
