package paybridge

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newChannel() *Channel {
	return NewChannel(NewProcessor(NewCardStore(), 0), zap.NewNop())
}

func validArgs() map[string]any {
	return map[string]any{
		"cardNumber":     "4242 4242 4242 4242",
		"expiryDate":     "12/27",
		"cvv":            "123",
		"cardholderName": "Ada Lovelace",
		"amount":         24.5,
		"saveCard":       true,
	}
}

func TestProcessPaymentApproves(t *testing.T) {
	ch := newChannel()
	out, err := ch.Invoke(context.Background(), "processPayment", validArgs())
	require.NoError(t, err)

	res := out.(*Result)
	assert.True(t, res.Success)
	assert.Regexp(t, regexp.MustCompile(`^TR\d{6}$`), res.TransactionID)
	assert.Equal(t, "4242", res.Last4Digits)
	assert.Equal(t, "24.5", res.Amount.String())
	assert.NotZero(t, res.Timestamp)

	cards, err := ch.Invoke(context.Background(), "getSavedCards", nil)
	require.NoError(t, err)
	require.Len(t, cards, 1)
	saved := cards.([]SavedCard)[0]
	assert.Equal(t, "4242", saved.LastFourDigits)
	assert.Equal(t, "Ada Lovelace", saved.CardholderName)

	out, err = ch.Invoke(context.Background(), "processPaymentWithSavedCard", map[string]any{"cardId": saved.ID, "amount": "9.99"})
	require.NoError(t, err)
	assert.Equal(t, "4242", out.(*Result).Last4Digits)

	ok, err := ch.Invoke(context.Background(), "deleteSavedCard", map[string]any{"cardId": saved.ID})
	require.NoError(t, err)
	assert.Equal(t, true, ok)

	_, err = ch.Invoke(context.Background(), "processPaymentWithSavedCard", map[string]any{"cardId": saved.ID, "amount": 1.0})
	assert.ErrorIs(t, err, ErrCardNotFound)
}

func TestProcessPaymentRejectsBadCards(t *testing.T) {
	cases := map[string]func(map[string]any){
		"short number":  func(a map[string]any) { a["cardNumber"] = "4242 4242 42" },
		"letters":       func(a map[string]any) { a["cardNumber"] = "4242x42424242424" },
		"expiry format": func(a map[string]any) { a["expiryDate"] = "1227" },
		"expiry month":  func(a map[string]any) { a["expiryDate"] = "13/27" },
		"expiry year":   func(a map[string]any) { a["expiryDate"] = "12/22" },
		"cvv":           func(a map[string]any) { a["cvv"] = "12" },
		"cvv digits":    func(a map[string]any) { a["cvv"] = "12a" },
		"blank name":    func(a map[string]any) { a["cardholderName"] = "   " },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			ch := newChannel()
			args := validArgs()
			mutate(args)
			_, err := ch.Invoke(context.Background(), "processPayment", args)
			assert.ErrorIs(t, err, ErrInvalidCardDetails)
			assert.Empty(t, ch.proc.Cards.All(), "rejected cards are never saved")
		})
	}
}

func TestInvokeArgumentErrors(t *testing.T) {
	ch := newChannel()
	args := validArgs()
	delete(args, "cvv")
	_, err := ch.Invoke(context.Background(), "processPayment", args)
	var me *MethodError
	require.ErrorAs(t, err, &me)
	assert.Equal(t, CodeInvalidArguments, me.Code)

	_, err = ch.Invoke(context.Background(), "deleteSavedCard", map[string]any{})
	require.ErrorAs(t, err, &me)
	assert.Equal(t, CodeInvalidArguments, me.Code)

	_, err = ch.Invoke(context.Background(), "refund", nil)
	require.ErrorAs(t, err, &me)
	assert.Equal(t, CodeNotImplemented, me.Code)
}

func TestDelayHonoursContext(t *testing.T) {
	ch := NewChannel(NewProcessor(NewCardStore(), time.Minute), zap.NewNop())
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := ch.Invoke(ctx, "processPayment", validArgs())
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
