package engine

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/radieske/auction-escrow-platform-poc/pkg/contracts/events"
)

// Settle encerra o leilão depois do prazo e paga o lance vencedor ao dono.
//
// O fim (Ended) é irrevogável e acontece antes da transferência. O valor a
// pagar é zerado antes de transferir; se a transferência falhar ele é
// restaurado, o leilão continua encerrado e RetryPayout pode repetir o pagamento.
func (e *Engine) Settle(ctx context.Context, auctionID uint64, caller string) (err error) {
	defer e.observe("settle", time.Now(), &err)

	release, err := e.guard.enter()
	if err != nil {
		return err
	}
	defer release()

	e.mu.Lock()
	a, u, err := e.lookup(auctionID, caller)
	if err == nil {
		err = a.end(e.now())
	}
	if err != nil {
		e.mu.Unlock()
		return err
	}
	u.recordWin()
	owner, winner := a.Owner, a.Winner
	amount := a.HighestBid
	a.HighestBid = 0
	e.mu.Unlock()

	e.log.Info("auction ended",
		zap.Uint64("auction_id", auctionID),
		zap.String("winner", winner),
		zap.Int64("amount", amount),
		zap.String("settled_by", caller),
	)
	return e.payOwner(ctx, "settle", auctionID, owner, winner, amount)
}

// RetryPayout repete o pagamento ao dono de um leilão encerrado cujo
// settlement falhou na transferência
func (e *Engine) RetryPayout(ctx context.Context, auctionID uint64, caller string) (err error) {
	defer e.observe("retry_payout", time.Now(), &err)

	release, err := e.guard.enter()
	if err != nil {
		return err
	}
	defer release()

	e.mu.Lock()
	a, _, err := e.lookup(auctionID, caller)
	switch {
	case err != nil:
	case !a.Ended():
		err = ErrAuctionOpen
	case a.PendingProceeds() == 0:
		err = ErrNothingToPay
	}
	if err != nil {
		e.mu.Unlock()
		return err
	}
	owner, winner := a.Owner, a.Winner
	amount := a.HighestBid
	a.HighestBid = 0
	e.mu.Unlock()

	return e.payOwner(ctx, "retry_payout", auctionID, owner, winner, amount)
}

// payOwner transfere amount ao dono; em falha restaura o HighestBid.
// Leilão sem lances não tem o que transferir. A ref é uma por leilão: Settle e
// RetryPayout pagam a mesma obrigação e o wallet deduplica pela ref.
func (e *Engine) payOwner(ctx context.Context, kind string, auctionID uint64, owner, winner string, amount int64) error {
	if amount > 0 {
		ref := fmt.Sprintf("settle:%s:%d", e.instance, auctionID)
		terr := e.transfer.Transfer(ctx, owner, amount, ref)
		e.observer.ObserveTransfer(kind, terr)

		if terr != nil {
			e.mu.Lock()
			e.auctions[auctionID].HighestBid = amount
			e.mu.Unlock()

			e.log.Warn("settlement transfer failed",
				zap.Uint64("auction_id", auctionID),
				zap.String("owner", owner),
				zap.Int64("amount", amount),
				zap.Error(terr),
			)
			e.notify(ctx, events.TypeSettlementFailed, auctionID, owner, events.Settlement{
				AuctionID: auctionID,
				Owner:     owner,
				Winner:    winner,
				Amount:    amount,
				Reason:    terr.Error(),
			})
			return fmt.Errorf("%w: %v", ErrTransferFailed, terr)
		}
	}

	e.notify(ctx, events.TypeSettlementSucceeded, auctionID, owner, events.Settlement{
		AuctionID: auctionID,
		Owner:     owner,
		Winner:    winner,
		Amount:    amount,
	})
	return nil
}
