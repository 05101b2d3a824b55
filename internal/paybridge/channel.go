package paybridge

import (
	"context"
	"encoding/json"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// ChannelName identifies the bridge to clients.
const ChannelName = "com.skycomfort.payment"

// Channel dispatches named method calls with loosely typed arguments to a
// Processor, the way a mobile method channel does.
type Channel struct {
	proc *Processor
	log  *zap.Logger
}

func NewChannel(proc *Processor, log *zap.Logger) *Channel {
	return &Channel{proc: proc, log: log}
}

func (ch *Channel) Name() string { return ChannelName }

// Invoke runs method with args. Errors are *MethodError unless ctx ended.
func (ch *Channel) Invoke(ctx context.Context, method string, args map[string]any) (any, error) {
	ch.log.Debug("bridge call", zap.String("channel", ChannelName), zap.String("method", method))
	switch method {
	case "processPayment":
		a := argReader{args: args}
		card := Card{
			Number:         a.str("cardNumber"),
			ExpiryDate:     a.str("expiryDate"),
			CVV:            a.str("cvv"),
			CardholderName: a.str("cardholderName"),
		}
		amount := a.amount("amount")
		save := a.optBool("saveCard")
		if a.bad {
			return nil, invalidArguments()
		}
		res, err := ch.proc.Charge(ctx, card, amount, save)
		if err != nil {
			return nil, err
		}
		ch.log.Info("bridge payment approved", zap.String("transaction_id", res.TransactionID), zap.String("last4", res.Last4Digits))
		return res, nil

	case "processPaymentWithSavedCard":
		a := argReader{args: args}
		id := a.str("cardId")
		amount := a.amount("amount")
		if a.bad {
			return nil, invalidArguments()
		}
		return ch.proc.ChargeSaved(ctx, id, amount)

	case "getSavedCards":
		return ch.proc.Cards.All(), nil

	case "deleteSavedCard":
		a := argReader{args: args}
		id := a.str("cardId")
		if a.bad {
			return nil, invalidArguments()
		}
		ch.proc.Cards.Delete(id)
		return true, nil
	}
	return nil, &MethodError{Code: CodeNotImplemented, Message: "Method " + method + " is not implemented"}
}

func invalidArguments() *MethodError {
	return &MethodError{Code: CodeInvalidArguments, Message: "Invalid arguments"}
}

// argReader pulls typed values out of a decoded JSON object, remembering
// whether any required one was missing or of the wrong type.
type argReader struct {
	args map[string]any
	bad  bool
}

func (a *argReader) str(key string) string {
	s, ok := a.args[key].(string)
	if !ok {
		a.bad = true
	}
	return s
}

func (a *argReader) optBool(key string) bool {
	v, present := a.args[key]
	if !present || v == nil {
		return false
	}
	b, ok := v.(bool)
	if !ok {
		a.bad = true
	}
	return b
}

func (a *argReader) amount(key string) decimal.Decimal {
	var (
		d   decimal.Decimal
		err error
	)
	switch v := a.args[key].(type) {
	case float64:
		d = decimal.NewFromFloat(v)
	case json.Number:
		d, err = decimal.NewFromString(v.String())
	case string:
		d, err = decimal.NewFromString(v)
	default:
		a.bad = true
		return d
	}
	if err != nil || !d.IsPositive() {
		a.bad = true
	}
	return d
}
