package engine

import (
	"context"

	"github.com/radieske/auction-escrow-platform-poc/pkg/contracts/events"
)

//go:generate mockgen -source=$GOFILE -destination=mocks_test.go -package=$GOPACKAGE

// Registry é o registro de identidades do qual o engine depende
type Registry interface {
	Register(identity string) error
	IsRegistered(identity string) bool
	TransferOwnership(caller, newOwner string) (previous string, err error)
	Identities(offset, limit int) ([]string, error)
}

// Transferer move valor para uma parte externa (wallet).
// Um erro significa que nada foi transferido.
type Transferer interface {
	Transfer(ctx context.Context, to string, amount int64, ref string) error
}

// Notifier publica notificações; falhas são logadas e ignoradas pelo engine
type Notifier interface {
	Publish(ctx context.Context, env events.Envelope) error
}
