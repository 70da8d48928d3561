package engine

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/radieske/auction-escrow-platform-poc/pkg/contracts/events"
)

// Withdraw paga ao caller o reembolso acumulado no leilão (pull payment).
// O saldo é zerado antes da transferência; se ela falhar o valor volta ao
// escrow e o erro embrulha ErrTransferFailed.
//
// A ref da transferência é withdraw:<instância>:<leilão>:<identidade>:<seq>. Depois de uma
// falha o próximo Withdraw repete a mesma ref e o mesmo valor, então uma
// transferência que o wallet aplicou mas não confirmou não é paga duas vezes.
func (e *Engine) Withdraw(ctx context.Context, auctionID uint64, caller string) (amount int64, err error) {
	defer e.observe("withdraw", time.Now(), &err)

	release, err := e.guard.enter()
	if err != nil {
		return 0, err
	}
	defer release()

	e.mu.Lock()
	if _, _, err = e.lookup(auctionID, caller); err != nil {
		e.mu.Unlock()
		return 0, err
	}
	wd, ok := e.escrow.BeginWithdrawal(auctionID, caller)
	if !ok {
		e.mu.Unlock()
		return 0, ErrNothingToWithdraw
	}
	e.mu.Unlock()
	amount = wd.Amount

	ref := fmt.Sprintf("withdraw:%s:%d:%s:%d", e.instance, auctionID, caller, wd.Seq)
	terr := e.transfer.Transfer(ctx, caller, amount, ref)
	e.observer.ObserveTransfer("withdraw", terr)

	if terr != nil {
		e.mu.Lock()
		// soma em vez de sobrescrever: um crédito feito durante a transferência não se perde
		cerr := e.escrow.FailWithdrawal(auctionID, caller, wd)
		outstanding := e.escrow.Outstanding()
		e.mu.Unlock()
		e.observer.SetEscrowOutstanding(outstanding)
		if cerr != nil {
			e.log.Error("restore escrow", zap.Uint64("auction_id", auctionID), zap.Error(cerr))
		}

		e.log.Warn("withdrawal transfer failed",
			zap.Uint64("auction_id", auctionID),
			zap.String("identity", caller),
			zap.Int64("amount", amount),
			zap.Error(terr),
		)
		e.notify(ctx, events.TypeWithdrawalFailed, auctionID, caller, events.Withdrawal{
			AuctionID: auctionID,
			Identity:  caller,
			Amount:    amount,
			Reason:    terr.Error(),
		})
		return 0, fmt.Errorf("%w: %v", ErrTransferFailed, terr)
	}

	e.mu.Lock()
	e.escrow.CompleteWithdrawal(auctionID, caller)
	outstanding := e.escrow.Outstanding()
	e.mu.Unlock()

	e.observer.SetEscrowOutstanding(outstanding)
	e.log.Info("withdrawal paid",
		zap.Uint64("auction_id", auctionID),
		zap.String("identity", caller),
		zap.Int64("amount", amount),
	)
	e.notify(ctx, events.TypeWithdrawalSucceeded, auctionID, caller, events.Withdrawal{
		AuctionID: auctionID,
		Identity:  caller,
		Amount:    amount,
	})
	return amount, nil
}
