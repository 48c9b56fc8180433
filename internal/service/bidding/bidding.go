package bidding

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	domainbid "github.com/omarsel/bidworks/internal/domain/bid"
	"github.com/omarsel/bidworks/internal/domain/event"
	portbid "github.com/omarsel/bidworks/internal/port/bid"
	portbus "github.com/omarsel/bidworks/internal/port/eventbus"
	portledger "github.com/omarsel/bidworks/internal/port/ledger"
)

// Service validates and records bids: one bid per provider per task, each
// funded by one bid coin. Submission never triggers assignment — the
// assignment engine runs on its own schedule.
type Service struct {
	bids  portbid.Repository
	coins portledger.Ledger
	bus   portbus.EventBus
}

func NewService(bids portbid.Repository, coins portledger.Ledger, bus portbus.EventBus) *Service {
	return &Service{
		bids:  bids,
		coins: coins,
		bus:   bus,
	}
}

// Submit debits one coin and persists the bid. The debit doubles as the
// balance check, so a provider at zero fails before any write. If the insert
// fails after the debit — duplicate bid, unknown task, or a store error — the
// coin is credited back; a debited-but-bidless state is never left behind.
//
// Task openness is deliberately not checked: a bid landing after the deadline
// but before the engine has run is accepted, per the marketplace rules.
func (s *Service) Submit(ctx context.Context, taskID, providerID uuid.UUID, amount int64) (domainbid.Bid, error) {
	if amount <= 0 {
		return domainbid.Bid{}, domainbid.ErrInvalidAmount
	}

	if err := s.coins.Debit(ctx, providerID); err != nil {
		return domainbid.Bid{}, fmt.Errorf("debit bid coin: %w", err)
	}

	created, err := s.bids.Insert(ctx, domainbid.New(taskID, providerID, amount))
	if err != nil {
		if cerr := s.coins.Credit(ctx, providerID, 1); cerr != nil {
			slog.ErrorContext(ctx, "refund after failed bid insert",
				"provider_id", providerID, "task_id", taskID, "error", cerr)
		}
		return domainbid.Bid{}, fmt.Errorf("insert bid: %w", err)
	}

	s.bus.Publish(ctx, event.New(event.TypeBidPlaced, created.ID)) //nolint:errcheck
	return created, nil
}

func (s *Service) ListForTask(ctx context.Context, taskID uuid.UUID) ([]domainbid.Bid, error) {
	bids, err := s.bids.ListByTask(ctx, taskID)
	if err != nil {
		return nil, fmt.Errorf("list bids: %w", err)
	}
	return bids, nil
}

func (s *Service) Balance(ctx context.Context, providerID uuid.UUID) (int64, error) {
	balance, err := s.coins.Balance(ctx, providerID)
	if err != nil {
		return 0, fmt.Errorf("get balance: %w", err)
	}
	return balance, nil
}
