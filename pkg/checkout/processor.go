package checkout

import (
	"context"
	"slices"
	"time"

	"github.com/shopspring/decimal"

	"julianmorley.ca/con-plar/storefront/pkg/clock"
	"julianmorley.ca/con-plar/storefront/pkg/models"
)

const DefaultProcessingDelay = 2 * time.Second

type PaymentRequest struct {
	Amount  decimal.Decimal
	Email   string
	Details models.PaymentDetails
}

type PaymentResult struct {
	Accepted bool
	Reason   string
}

// Processor settles a payment. A declined payment is a result, not an error;
// errors mean the processor could not be reached or gave up.
type Processor interface {
	Process(ctx context.Context, req PaymentRequest) (PaymentResult, error)
}

// SimulatedProcessor accepts every payment after Delay, except for card
// numbers listed in DeclinedCards.
type SimulatedProcessor struct {
	Delay         time.Duration
	Clock         clock.Clock
	DeclinedCards []string
}

func NewSimulatedProcessor(delay time.Duration) *SimulatedProcessor {
	return &SimulatedProcessor{Delay: delay, Clock: clock.System{}}
}

func (p *SimulatedProcessor) Process(ctx context.Context, req PaymentRequest) (PaymentResult, error) {
	if err := clock.Sleep(ctx, p.Clock, p.Delay); err != nil {
		return PaymentResult{}, err
	}
	if slices.Contains(p.DeclinedCards, req.Details.CardNumber) {
		return PaymentResult{Accepted: false, Reason: "card declined"}, nil
	}
	return PaymentResult{Accepted: true}, nil
}
