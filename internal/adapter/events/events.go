// Package events holds ledger event publishers that need no broker.
package events

import (
	"context"

	"investment-ledger/internal/core/domain"

	"github.com/rs/zerolog"
)

// LogPublisher implements ports.EventPublisher by logging each event.
// It is used when no Kafka brokers are configured.
type LogPublisher struct {
	log zerolog.Logger
}

func NewLogPublisher(log zerolog.Logger) *LogPublisher {
	return &LogPublisher{log: log}
}

func (p *LogPublisher) Publish(ctx context.Context, event domain.LedgerEvent) error {
	ev := p.log.Info().
		Str("event_type", string(event.Type)).
		Str("entry_id", event.EntryID.String()).
		Str("account_id", event.AccountID.String()).
		Str("amount", event.Amount.String())
	if event.Balance != nil {
		ev = ev.Str("balance", event.Balance.String())
	}
	ev.Msg("ledger event")
	return nil
}
