package services

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"shopfront/internal/domain"
	applog "shopfront/internal/log"
	"shopfront/internal/payment"
)

const (
	historyPath = "/orders"
	pendingTTL  = 24 * time.Hour
)

// PaymentIntent is everything the hosted widget needs to take a payment.
type PaymentIntent struct {
	Key         string  `json:"key"`
	OrderRef    string  `json:"orderRef"`
	Amount      int64   `json:"amount"` // minor units
	Currency    string  `json:"currency"`
	Total       float64 `json:"total"`
	Name        string  `json:"name"`
	Prefill     Prefill `json:"prefill"`
	CallbackURL string  `json:"callbackUrl"`
}

type Prefill struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Contact string `json:"contact,omitempty"`
}

// SubmitResult is the outcome of a checkout submission. COD fills Order;
// the gateway path fills Intent and no order exists until the callback.
type SubmitResult struct {
	Order    *domain.Order  `json:"order,omitempty"`
	Intent   *PaymentIntent `json:"intent,omitempty"`
	Redirect string         `json:"redirect"`
	// StockErr reports products whose decrement failed after the order was saved.
	StockErr error `json:"-"`
}

type pendingPayment struct {
	userID   string
	lines    []domain.OrderLine
	total    float64
	shipping domain.Shipping
	created  time.Time
}

type OrderService struct {
	Users    UserStore
	Inv      *InventoryService
	Gateway  payment.Gateway // nil disables the gateway path
	Currency string
	Now      func() time.Time

	mu      sync.Mutex
	pending map[string]pendingPayment
}

func NewOrderService(users UserStore, inv *InventoryService, gw payment.Gateway, currency string) *OrderService {
	if currency == "" {
		currency = "INR"
	}
	return &OrderService{Users: users, Inv: inv, Gateway: gw, Currency: currency, Now: time.Now, pending: map[string]pendingPayment{}}
}

// Submit is the only exit from the Review step. Only one submit per session
// runs at a time; a concurrent one gets ErrInvalidStep.
func (s *OrderService) Submit(sess *Session) (*SubmitResult, error) {
	form, err := sess.Checkout.claim()
	if err != nil {
		return nil, err
	}
	res, err := s.submit(sess, form)
	if err != nil || res.Order == nil {
		// a started gateway payment stays on Review until its callback
		sess.Checkout.release()
	}
	return res, err
}

func (s *OrderService) submit(sess *Session, form ShippingForm) (*SubmitResult, error) {
	items := sess.Cart.Items()
	if len(items) == 0 {
		return nil, ErrEmptyCart
	}
	lines := domain.LinesFor(items)
	switch domain.PaymentMethod(form.PaymentMethod) {
	case domain.PaymentCOD:
		return s.placeCOD(sess, lines, form.Shipping)
	case domain.PaymentGateway:
		return s.beginGateway(sess, lines, form.Shipping)
	default:
		return nil, &ValidationError{Fields: map[string]string{"paymentMethod": "must be one of: cod gateway"}}
	}
}

// placeCOD ids the order "COD-<epoch millis>". Two orders in the same
// millisecond get the same id; that collision is not detected.
func (s *OrderService) placeCOD(sess *Session, lines []domain.OrderLine, ship domain.Shipping) (*SubmitResult, error) {
	now := s.Now().UTC()
	o := domain.Order{
		ID:            fmt.Sprintf("COD-%d", now.UnixMilli()),
		Items:         lines,
		TotalAmount:   domain.OrderTotal(lines),
		CreatedAt:     now,
		Status:        domain.StatusPending,
		PaymentMethod: domain.PaymentCOD,
		Shipping:      ship,
	}
	return s.persist(sess, o)
}

func (s *OrderService) beginGateway(sess *Session, lines []domain.OrderLine, ship domain.Shipping) (*SubmitResult, error) {
	if s.Gateway == nil {
		return nil, ErrGatewayUnavailable
	}
	total := domain.OrderTotal(lines)
	amount := domain.MinorUnits(total)
	receipt := fmt.Sprintf("rcpt-%s-%d", sess.UserID(), s.Now().UnixMilli())
	ref, err := s.Gateway.CreateOrder(amount, s.Currency, receipt)
	if err != nil {
		applog.Error(nil, "payment.intent.fail", err, map[string]any{"user_id": sess.UserID(), "amount": amount})
		sess.Notices.Notify(NoticeError, "Could not start payment")
		return nil, err
	}

	s.mu.Lock()
	s.pruneLocked()
	s.pending[ref] = pendingPayment{userID: sess.UserID(), lines: lines, total: total, shipping: ship, created: s.Now()}
	s.mu.Unlock()

	applog.Info(nil, "payment.intent", map[string]any{"user_id": sess.UserID(), "order_ref": ref, "amount": amount})
	return &SubmitResult{
		Intent: &PaymentIntent{
			Key:         s.Gateway.KeyID(),
			OrderRef:    ref,
			Amount:      amount,
			Currency:    s.Currency,
			Total:       total,
			Name:        "shopfront",
			Prefill:     Prefill{Name: ship.Name, Email: ship.Email, Contact: ship.Phone},
			CallbackURL: "/api/payments/callback",
		},
		Redirect: "/pay/" + ref,
	}, nil
}

// Intent rebuilds the widget parameters for a pending payment owned by sess.
func (s *OrderService) Intent(sess *Session, ref string) (*PaymentIntent, error) {
	s.mu.Lock()
	p, ok := s.pending[ref]
	s.mu.Unlock()
	if !ok || p.userID != sess.UserID() || s.Gateway == nil {
		return nil, ErrUnknownPayment
	}
	return &PaymentIntent{
		Key: s.Gateway.KeyID(), OrderRef: ref, Amount: domain.MinorUnits(p.total), Currency: s.Currency,
		Total: p.total, Name: "shopfront",
		Prefill:     Prefill{Name: p.shipping.Name, Email: p.shipping.Email, Contact: p.shipping.Phone},
		CallbackURL: "/api/payments/callback",
	}, nil
}

// CompleteGatewayPayment is the widget's success callback. The order is
// saved under the provider's payment id; a payment that never calls back
// leaves no order behind.
func (s *OrderService) CompleteGatewayPayment(sess *Session, paymentID, orderRef, signature string) (*SubmitResult, error) {
	if s.Gateway == nil {
		return nil, ErrGatewayUnavailable
	}
	if paymentID == "" || !s.Gateway.VerifySignature(orderRef, paymentID, signature) {
		applog.Security(nil, "payment.signature.fail", map[string]any{"user_id": sess.UserID(), "order_ref": orderRef})
		return nil, ErrBadSignature
	}
	// The entry is taken under the lock so a repeated callback finds nothing.
	s.mu.Lock()
	p, ok := s.pending[orderRef]
	if ok && p.userID == sess.UserID() {
		delete(s.pending, orderRef)
	}
	s.mu.Unlock()
	if !ok || p.userID != sess.UserID() {
		return nil, ErrUnknownPayment
	}

	o := domain.Order{
		ID:            paymentID,
		Items:         p.lines,
		TotalAmount:   p.total,
		CreatedAt:     s.Now().UTC(),
		Status:        domain.StatusPending,
		PaymentID:     paymentID,
		PaymentMethod: domain.PaymentGateway,
		Shipping:      p.shipping,
	}
	res, err := s.persist(sess, o)
	if err != nil {
		s.mu.Lock()
		s.pending[orderRef] = p
		s.mu.Unlock()
		return nil, err
	}
	return res, nil
}

// persist appends o to the owner's orders with one merge-patch, then
// decrements stock, clears the cart and resets checkout. Stock is only
// touched after the order write succeeds.
func (s *OrderService) persist(sess *Session, o domain.Order) (*SubmitResult, error) {
	userID := sess.UserID()
	u, err := s.Users.ByID(userID)
	if err != nil {
		applog.Error(nil, "order.place.fail", err, map[string]any{"user_id": userID, "order_id": o.ID})
		sess.Notices.Notify(NoticeError, "Failed to place order")
		return nil, err
	}
	orders := append(append([]domain.Order{}, u.Orders...), o)
	updated, err := s.Users.Patch(userID, domain.UserPatch{Orders: &orders})
	if err != nil {
		applog.Error(nil, "order.place.fail", err, map[string]any{"user_id": userID, "order_id": o.ID})
		sess.Notices.Notify(NoticeError, "Failed to place order")
		return nil, err
	}
	sess.setUser(updated)
	applog.Audit(nil, "order.place", map[string]any{
		"user_id": userID, "order_id": o.ID, "total": o.TotalAmount, "method": string(o.PaymentMethod),
	})

	res := &SubmitResult{Order: &o, Redirect: historyPath}
	if err := s.Inv.Decrement(o.Items); err != nil {
		res.StockErr = err
		applog.Error(nil, "order.stock.partial", err, map[string]any{"order_id": o.ID})
		sess.Notices.Notify(NoticeError, "Order placed, but stock could not be updated for some items")
	}
	sess.Cart.Clear()
	sess.Checkout.Reset()
	sess.Notices.Notify(NoticeSuccess, "Order placed successfully")
	return res, nil
}

func (s *OrderService) pruneLocked() {
	cutoff := s.Now().Add(-pendingTTL)
	for ref, p := range s.pending {
		if p.created.Before(cutoff) {
			delete(s.pending, ref)
		}
	}
}

// History returns the user's orders, newest first.
func (s *OrderService) History(userID string) ([]domain.Order, error) {
	u, err := s.Users.ByID(userID)
	if err != nil {
		return nil, err
	}
	out := append([]domain.Order{}, u.Orders...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}
