package services

import (
	"sync"

	"shopfront/internal/domain"
)

type CheckoutStep string

const (
	StepShipping CheckoutStep = "shipping"
	StepReview   CheckoutStep = "review"
)

// ShippingForm is the step-one input.
type ShippingForm struct {
	domain.Shipping
	PaymentMethod string `json:"paymentMethod" validate:"required,oneof=cod gateway"`
}

// Checkout is a two-step machine: ShippingInput -> Review. Submission from
// Review is the only exit and is driven by OrderService.
type Checkout struct {
	mu     sync.Mutex
	step   CheckoutStep
	form   ShippingForm
	errors map[string]string
	// submitting is set while one Submit owns the Review exit.
	submitting bool
}

func NewCheckout() *Checkout { return &Checkout{step: StepShipping, errors: map[string]string{}} }

// Next stores the form and advances to Review if it validates. On failure the
// field errors are kept and the step does not change.
func (c *Checkout) Next(form ShippingForm) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.step != StepShipping {
		return ErrInvalidStep
	}
	c.form = form
	if err := check(form); err != nil {
		if ve, ok := err.(*ValidationError); ok {
			c.errors = ve.Fields
		}
		return err
	}
	c.errors = map[string]string{}
	c.step = StepReview
	return nil
}

// Back returns from Review to ShippingInput, keeping the entered form.
func (c *Checkout) Back() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.step != StepReview || c.submitting {
		return ErrInvalidStep
	}
	c.step = StepShipping
	return nil
}

func (c *Checkout) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.step = StepShipping
	c.form = ShippingForm{}
	c.errors = map[string]string{}
	c.submitting = false
}

func (c *Checkout) Step() CheckoutStep {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.step
}

func (c *Checkout) Form() ShippingForm {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.form
}

func (c *Checkout) Errors() map[string]string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make(map[string]string, len(c.errors))
	for k, v := range c.errors {
		out[k] = v
	}
	return out
}

// claim returns the reviewed form and marks the checkout as submitting.
// Outside Review, or while another submit holds it, it is ErrInvalidStep.
func (c *Checkout) claim() (ShippingForm, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.step != StepReview || c.submitting {
		return ShippingForm{}, ErrInvalidStep
	}
	c.submitting = true
	return c.form, nil
}

// release gives the Review exit back after a submit that did not finish
// the checkout.
func (c *Checkout) release() {
	c.mu.Lock()
	c.submitting = false
	c.mu.Unlock()
}
