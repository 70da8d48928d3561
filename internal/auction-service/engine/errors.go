package engine

import (
	"errors"

	"github.com/radieske/auction-escrow-platform-poc/internal/auction-service/registry"
)

// Violação de pré-condição: a operação inteira é abortada sem alterar estado
var (
	ErrNotRegistered      = errors.New("caller not registered")
	ErrAlreadyRegistered  = registry.ErrAlreadyRegistered
	ErrNotOwner           = registry.ErrNotOwner
	ErrOutOfRange         = registry.ErrOutOfRange
	ErrAuctionNotFound    = errors.New("auction not found")
	ErrAuctionEnded       = errors.New("auction already ended")
	ErrAuctionOpen        = errors.New("auction not ended yet")
	ErrBiddingClosed      = errors.New("bidding period is over")
	ErrBelowReserve       = errors.New("bid below reserve price")
	ErrBidTooLow          = errors.New("bid must exceed current highest bid")
	ErrDeadlineNotReached = errors.New("auction deadline not reached")
	ErrNothingToWithdraw  = errors.New("no funds to withdraw")
	ErrNothingToPay       = errors.New("no pending proceeds")
	ErrInvalidDuration    = errors.New("bidding duration must be positive")
	ErrInvalidReserve     = errors.New("reserve price must not be negative")
	ErrInvalidIdentity    = registry.ErrEmptyIdentity
)

// ErrReentrantCall é retornado quando uma operação protegida já está em andamento
var ErrReentrantCall = errors.New("reentrant call")

// ErrTransferFailed é a única falha recuperável: o estado foi restaurado
// e a operação pode ser repetida depois
var ErrTransferFailed = errors.New("value transfer failed")

var preconditions = []error{
	ErrNotRegistered, ErrAlreadyRegistered, ErrNotOwner, ErrOutOfRange,
	ErrAuctionNotFound, ErrAuctionEnded, ErrAuctionOpen, ErrBiddingClosed,
	ErrBelowReserve, ErrBidTooLow, ErrDeadlineNotReached, ErrNothingToWithdraw,
	ErrNothingToPay, ErrInvalidDuration, ErrInvalidReserve, ErrInvalidIdentity,
}

// IsPrecondition indica se err é uma violação de pré-condição
func IsPrecondition(err error) bool {
	for _, p := range preconditions {
		if errors.Is(err, p) {
			return true
		}
	}
	return false
}

// Classify devolve a categoria do erro para métricas e logs
func Classify(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, ErrReentrantCall):
		return "reentrant"
	case errors.Is(err, ErrTransferFailed):
		return "transfer_failed"
	case IsPrecondition(err):
		return "rejected"
	default:
		return "error"
	}
}
