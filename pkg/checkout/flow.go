// Package checkout drives the two-step checkout from shipping details to a
// confirmed order.
package checkout

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"sync"
	"time"

	"julianmorley.ca/con-plar/storefront/pkg/cart"
	"julianmorley.ca/con-plar/storefront/pkg/models"
)

// ConfirmationRoute is where a completed checkout navigates to
const ConfirmationRoute = "/thank-you"

var (
	ErrInvalidStep     = errors.New("action not allowed in the current checkout step")
	ErrEmptyCart       = errors.New("cart is empty")
	ErrPaymentDeclined = errors.New("payment declined")
	ErrCancelled       = errors.New("checkout cancelled")
)

type Step string

const (
	StepShipping   Step = "shipping"
	StepPayment    Step = "payment"
	StepProcessing Step = "processing"
	StepCompleted  Step = "completed"
)

// Cart is the part of the cart store checkout reads and resets
type Cart interface {
	State() models.CartState
	Dispatch(actions ...cart.Action) models.CartState
}

// Navigator receives "go to route carrying payload" requests
type Navigator interface {
	Navigate(route string, payload any)
}

// Recorder is told about every order placed
type Recorder interface {
	Record(order models.Order)
}

// Outcome is delivered once per payment submission
type Outcome struct {
	Order *models.Order
	Err   error
}

// View is a snapshot of the flow for rendering
type View struct {
	Step     Step                `json:"step"`
	Shipping models.ShippingInfo `json:"shipping"`
	Errors   []models.FieldError `json:"errors,omitempty"`
	Error    string              `json:"error,omitempty"`
	Order    *models.Order       `json:"order,omitempty"`
}

type Options struct {
	Processor Processor
	Navigator Navigator
	Recorder  Recorder
	// OrderID generates confirmation numbers, random below one million by default
	OrderID func() int64
	Now     func() time.Time
	Logger  *slog.Logger
}

type Flow struct {
	mu sync.Mutex

	cart      Cart
	processor Processor
	navigator Navigator
	recorder  Recorder
	orderID   func() int64
	now       func() time.Time
	log       *slog.Logger

	step        Step
	shipping    models.ShippingInfo
	fieldErrors []models.FieldError
	lastError   string
	order       *models.Order

	// attempt identifies the in-flight payment; a stale result is dropped
	attempt uint64
	cancel  context.CancelFunc
}

func New(c Cart, opts Options) *Flow {
	f := &Flow{
		cart:      c,
		processor: opts.Processor,
		navigator: opts.Navigator,
		recorder:  opts.Recorder,
		orderID:   opts.OrderID,
		now:       opts.Now,
		log:       opts.Logger,
		step:      StepShipping,
	}
	if f.processor == nil {
		f.processor = NewSimulatedProcessor(DefaultProcessingDelay)
	}
	if f.orderID == nil {
		f.orderID = func() int64 { return rand.Int64N(1_000_000) }
	}
	if f.now == nil {
		f.now = time.Now
	}
	if f.log == nil {
		f.log = slog.Default()
	}
	return f
}

func (f *Flow) View() View {
	f.mu.Lock()
	defer f.mu.Unlock()

	v := View{
		Step:     f.step,
		Shipping: f.shipping,
		Error:    f.lastError,
		Order:    f.order,
	}
	if len(f.fieldErrors) > 0 {
		v.Errors = append([]models.FieldError(nil), f.fieldErrors...)
	}
	return v
}

// SubmitShipping records the shipping details and moves on to payment. On
// validation failure the flow stays on the shipping step.
func (f *Flow) SubmitShipping(info models.ShippingInfo) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.step != StepShipping {
		return ErrInvalidStep
	}

	info = normalizeShipping(info)
	f.shipping = info

	if err := validateShipping(info); err != nil {
		var verr *ValidationError
		if errors.As(err, &verr) {
			f.fieldErrors = verr.Fields
		}
		return err
	}

	f.fieldErrors = nil
	f.lastError = ""
	f.step = StepPayment
	return nil
}

// Back returns from payment to shipping, keeping what was entered
func (f *Flow) Back() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.step != StepPayment {
		return ErrInvalidStep
	}
	f.step = StepShipping
	f.lastError = ""
	return nil
}

// SubmitPayment starts processing the cart total. Processing continues after
// ctx ends; use Cancel to abandon it. The returned channel yields exactly one
// Outcome and is then closed.
func (f *Flow) SubmitPayment(ctx context.Context, details models.PaymentDetails) (<-chan Outcome, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.step != StepPayment {
		return nil, ErrInvalidStep
	}

	snapshot := f.cart.State()
	if len(snapshot.Items) == 0 {
		return nil, ErrEmptyCart
	}

	req := PaymentRequest{
		Amount:  snapshot.Total(),
		Email:   f.shipping.Email,
		Details: details,
	}

	procCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	f.attempt++
	attempt := f.attempt
	f.cancel = cancel
	f.step = StepProcessing
	f.lastError = ""

	f.log.Info("processing payment", "amount", req.Amount.StringFixed(2), "items", snapshot.TotalItems())

	done := make(chan Outcome, 1)
	go func() {
		defer close(done)
		defer cancel()

		result, err := f.processor.Process(procCtx, req)
		outcome := f.finish(attempt, snapshot, req, result, err)
		if outcome.Order != nil {
			if f.recorder != nil {
				f.recorder.Record(*outcome.Order)
			}
			if f.navigator != nil {
				f.navigator.Navigate(ConfirmationRoute, *outcome.Order)
			}
		}
		done <- outcome
	}()

	return done, nil
}

func (f *Flow) finish(attempt uint64, snapshot models.CartState, req PaymentRequest, result PaymentResult, err error) Outcome {
	f.mu.Lock()
	defer f.mu.Unlock()

	if attempt != f.attempt || f.step != StepProcessing {
		f.log.Info("discarding result of cancelled payment")
		return Outcome{Err: ErrCancelled}
	}
	f.cancel = nil

	if err != nil {
		f.log.Error("payment processing failed", "error", err)
		f.step = StepPayment
		f.lastError = "Payment could not be processed. Please try again."
		return Outcome{Err: fmt.Errorf("payment processing failed: %w", err)}
	}

	if !result.Accepted {
		f.log.Warn("payment declined", "reason", result.Reason)
		f.step = StepPayment
		f.lastError = "Payment was declined. Please use a different payment method."
		return Outcome{Err: fmt.Errorf("%w: %s", ErrPaymentDeclined, result.Reason)}
	}

	f.cart.Dispatch(cart.RemovePurchased{Lines: snapshot.Items}, cart.CloseCart{})

	order := &models.Order{
		ID:                f.orderID(),
		Total:             req.Amount,
		EstimatedDelivery: models.EstimatedDelivery,
		Items:             models.OrderItemsFromCart(snapshot.Items),
		Shipping:          f.shipping,
		PlacedAt:          f.now(),
	}
	f.order = order
	f.step = StepCompleted

	f.log.Info("order placed", "order_id", order.ID, "total", order.Total.StringFixed(2))
	return Outcome{Order: order}
}

// Cancel abandons an in-flight payment. The flow returns to the payment step
// and the cart is left as it was.
func (f *Flow) Cancel() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.step != StepProcessing {
		return ErrInvalidStep
	}
	f.abortLocked()
	f.step = StepPayment
	return nil
}

// Reset starts a new checkout, abandoning any payment in flight
func (f *Flow) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.step == StepProcessing {
		f.abortLocked()
	}
	f.step = StepShipping
	f.shipping = models.ShippingInfo{}
	f.fieldErrors = nil
	f.lastError = ""
	f.order = nil
}

func (f *Flow) abortLocked() {
	f.attempt++
	if f.cancel != nil {
		f.cancel()
		f.cancel = nil
	}
}
