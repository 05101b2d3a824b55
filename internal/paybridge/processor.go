// Package paybridge is a stand-in card processor for demo clients. It
// validates card details, optionally remembers the card, and always
// approves after a short simulated delay. Nothing leaves the process.
package paybridge

import (
	"context"
	"fmt"
	"math/rand/v2"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Error codes surfaced to bridge callers.
const (
	CodeInvalidArguments = "INVALID_ARGUMENTS"
	CodePaymentError     = "PAYMENT_ERROR"
	CodeNotImplemented   = "NOT_IMPLEMENTED"
)

var (
	ErrInvalidCardDetails = &MethodError{Code: CodePaymentError, Message: "Invalid card details. Please check and try again."}
	ErrCardNotFound       = &MethodError{Code: CodePaymentError, Message: "Saved card not found."}
)

// MethodError is the error shape returned over the channel.
type MethodError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *MethodError) Error() string { return e.Code + ": " + e.Message }

// Card is a new card as typed by the passenger.
type Card struct {
	Number         string
	ExpiryDate     string
	CVV            string
	CardholderName string
}

// Result is an approved charge.
type Result struct {
	Success       bool            `json:"success"`
	TransactionID string          `json:"transactionId"`
	Timestamp     int64           `json:"timestamp"`
	Amount        decimal.Decimal `json:"amount"`
	Last4Digits   string          `json:"last4Digits"`
}

type Processor struct {
	Cards *CardStore
	Delay time.Duration
	now   func() time.Time
}

func NewProcessor(cards *CardStore, delay time.Duration) *Processor {
	return &Processor{Cards: cards, Delay: delay, now: time.Now}
}

// Charge validates c and approves amount. With save set the card is kept
// for later charges.
func (p *Processor) Charge(ctx context.Context, c Card, amount decimal.Decimal, save bool) (*Result, error) {
	if err := p.wait(ctx); err != nil {
		return nil, err
	}
	number := strings.ReplaceAll(c.Number, " ", "")
	if !validCard(number, c.ExpiryDate, c.CVV, c.CardholderName) {
		return nil, ErrInvalidCardDetails
	}
	last4 := number[len(number)-4:]
	if save {
		p.Cards.Save(last4, c.ExpiryDate, strings.TrimSpace(c.CardholderName))
	}
	return p.approve(amount, last4), nil
}

// ChargeSaved approves amount against a previously saved card.
func (p *Processor) ChargeSaved(ctx context.Context, cardID string, amount decimal.Decimal) (*Result, error) {
	if err := p.wait(ctx); err != nil {
		return nil, err
	}
	card, ok := p.Cards.Get(cardID)
	if !ok {
		return nil, ErrCardNotFound
	}
	return p.approve(amount, card.LastFourDigits), nil
}

func (p *Processor) approve(amount decimal.Decimal, last4 string) *Result {
	return &Result{
		Success:       true,
		TransactionID: fmt.Sprintf("TR%06d", 100000+rand.IntN(900000)),
		Timestamp:     p.now().UnixMilli(),
		Amount:        amount,
		Last4Digits:   last4,
	}
}

func (p *Processor) wait(ctx context.Context) error {
	if p.Delay <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(p.Delay)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// validCard expects number with spaces already removed.
func validCard(number, expiry, cvv, holder string) bool {
	if len(number) < 13 || len(number) > 19 || !digits(number) {
		return false
	}
	mm, yy, ok := strings.Cut(expiry, "/")
	if !ok {
		return false
	}
	month, err := strconv.Atoi(mm)
	if err != nil || month < 1 || month > 12 {
		return false
	}
	year, err := strconv.Atoi(yy)
	if err != nil || year < 23 {
		return false
	}
	if len(cvv) < 3 || len(cvv) > 4 || !digits(cvv) {
		return false
	}
	return strings.TrimSpace(holder) != ""
}

func digits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}
