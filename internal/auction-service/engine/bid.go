package engine

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/radieske/auction-escrow-platform-poc/pkg/contracts/events"
)

// BidReceipt é o resultado de um lance aceito
type BidReceipt struct {
	AuctionID uint64    `json:"auction_id"`
	Bidder    string    `json:"bidder"`
	Amount    int64     `json:"amount"`
	EndTime   time.Time `json:"end_time"`
	Extended  bool      `json:"extended"`
}

// PlaceBid valida e aplica um lance. Qualquer pré-condição violada aborta
// sem alterar estado; quando aceito, todos os efeitos são aplicados juntos.
func (e *Engine) PlaceBid(ctx context.Context, auctionID uint64, caller string, amount int64) (receipt BidReceipt, err error) {
	defer e.observe("place_bid", time.Now(), &err)

	e.mu.Lock()
	now := e.now()
	a, u, err := e.lookup(auctionID, caller)
	if err == nil {
		err = e.checkBid(a, amount, now)
	}
	if err != nil {
		e.mu.Unlock()
		e.log.Debug("bid rejected",
			zap.Uint64("auction_id", auctionID),
			zap.String("bidder", caller),
			zap.Int64("amount", amount),
			zap.Error(err),
		)
		return BidReceipt{}, err
	}

	// o valor creditado é o lance anterior do bidder superado, não o novo
	if a.HighestBidder != "" && a.HighestBid > 0 {
		if err = e.escrow.Credit(a.ID, a.HighestBidder, a.HighestBid); err != nil {
			e.mu.Unlock()
			return BidReceipt{}, err
		}
	}

	extended := false
	if a.EndTime.Sub(now) < e.policy.Window {
		a.EndTime = now.Add(e.policy.Extension)
		a.AdditionalTime += e.policy.Extension
		extended = true
	}

	a.HighestBid = amount
	a.HighestBidder = caller
	a.TotalValueBid += amount
	a.BidCount++
	u.recordBid(amount)
	e.stats.recordBid(caller, amount)
	leader := e.ranking.Record(caller, u.TotalValueBid)

	receipt = BidReceipt{
		AuctionID: a.ID,
		Bidder:    caller,
		Amount:    amount,
		EndTime:   a.EndTime,
		Extended:  extended,
	}
	additional := a.AdditionalTime
	bidderTotal := u.TotalValueBid
	outstanding := e.escrow.Outstanding()
	e.mu.Unlock()

	e.observer.SetEscrowOutstanding(outstanding)
	if extended {
		e.log.Info("deadline extended",
			zap.Uint64("auction_id", auctionID),
			zap.Time("end_time", receipt.EndTime),
		)
		e.notify(ctx, events.TypeDeadlineExtended, auctionID, caller, events.DeadlineExtended{
			AuctionID:      auctionID,
			Bidder:         caller,
			EndTime:        receipt.EndTime,
			AdditionalTime: additional,
		})
	}
	e.notify(ctx, events.TypeBidPlaced, auctionID, caller, events.BidPlaced{
		AuctionID:   auctionID,
		Bidder:      caller,
		Amount:      amount,
		BidderTotal: bidderTotal,
		EndTime:     receipt.EndTime,
		Leader:      leader,
	})
	return receipt, nil
}

// checkBid aplica as regras de aceitação do lance; chamar com e.mu travado
func (e *Engine) checkBid(a *Auction, amount int64, now time.Time) error {
	switch {
	case a.Ended():
		return ErrAuctionEnded
	case now.After(a.EndTime):
		return ErrBiddingClosed
	case amount < a.ReservePrice:
		return ErrBelowReserve
	case amount <= a.HighestBid:
		return ErrBidTooLow
	}
	return nil
}
