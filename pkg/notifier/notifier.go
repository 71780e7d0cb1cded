package notifier

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

type Channel string

const (
	ChannelEmail Channel = "EMAIL"
	ChannelPhone Channel = "PHONE"
)

// Notifier delivers a verification code to a destination. Delivery is
// best-effort: the caller has already committed the code to the ledger and
// never waits on the result.
type Notifier interface {
	Send(ctx context.Context, destination string, channel Channel, code string) error
}

// Dispatcher routes a send to the channel's transport. A channel without a
// configured transport degrades to log-only, which is how codes surface
// during development.
type Dispatcher struct {
	email Notifier
	sms   Notifier
	log   *zap.Logger
}

func NewDispatcher(email, sms Notifier, log *zap.Logger) *Dispatcher {
	return &Dispatcher{
		email: email,
		sms:   sms,
		log:   log.With(zap.String("component", "notifier")),
	}
}

func (d *Dispatcher) Send(ctx context.Context, destination string, channel Channel, code string) error {
	var transport Notifier
	switch channel {
	case ChannelEmail:
		transport = d.email
	case ChannelPhone:
		transport = d.sms
	default:
		return fmt.Errorf("unsupported channel: %s", channel)
	}

	if transport == nil {
		d.log.Info("Verification code (no transport configured)",
			zap.String("destination", destination),
			zap.String("channel", string(channel)),
			zap.String("code", code),
		)
		return nil
	}

	return transport.Send(ctx, destination, channel, code)
}
