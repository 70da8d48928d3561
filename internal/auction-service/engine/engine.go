// Package engine implementa a máquina de estados de lances, escrow e settlement.
//
// Todo o estado (leilões, usuários, escrow, estatísticas e ranking) pertence ao
// Engine. O mutex interno só protege a contabilidade e nunca fica preso durante
// uma transferência externa; Withdraw, Settle e RetryPayout passam pelo guard
// de reentrância durante toda a execução, inclusive a transferência.
package engine

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/radieske/auction-escrow-platform-poc/internal/auction-service/ledger"
	"github.com/radieske/auction-escrow-platform-poc/internal/auction-service/registry"
	"github.com/radieske/auction-escrow-platform-poc/pkg/contracts/events"
)

// Policy é a regra anti-snipe: lance com menos de Window restante
// empurra o fim para now + Extension
type Policy struct {
	Window    time.Duration
	Extension time.Duration
}

func DefaultPolicy() Policy {
	return Policy{Window: 10 * time.Minute, Extension: 5 * time.Minute}
}

// Observer recebe métricas do engine (ver shared/metrics.Engine)
type Observer interface {
	ObserveOperation(operation string, err error, started time.Time)
	ObserveTransfer(kind string, err error)
	SetEscrowOutstanding(v int64)
}

type nopObserver struct{}

func (nopObserver) ObserveOperation(string, error, time.Time) {}
func (nopObserver) ObserveTransfer(string, error)             {}
func (nopObserver) SetEscrowOutstanding(int64)                {}

// Config agrupa as dependências opcionais do engine
type Config struct {
	Policy   Policy
	Now      func() time.Time
	Observer Observer
	// Instance prefixa as refs de transferência; ids de leilão recomeçam em 1
	// a cada processo e as refs não podem colidir no wallet. Vazio gera um uuid.
	Instance string
}

type Engine struct {
	log      *zap.Logger
	registry Registry
	transfer Transferer
	notifier Notifier
	observer Observer
	now      func() time.Time
	policy   Policy
	instance string

	guard guard

	mu       sync.Mutex
	nextID   uint64
	auctions map[uint64]*Auction
	order    []uint64
	users    map[string]*User
	escrow   *ledger.Escrow
	stats    GlobalStats
	ranking  *Ranking
}

// New cria o engine. notifier pode ser nil (notificações descartadas).
func New(log *zap.Logger, reg Registry, transfer Transferer, notifier Notifier, cfg Config) *Engine {
	if cfg.Policy == (Policy{}) {
		cfg.Policy = DefaultPolicy()
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.Observer == nil {
		cfg.Observer = nopObserver{}
	}
	if cfg.Instance == "" {
		cfg.Instance = uuid.NewString()
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Engine{
		log:      log,
		registry: reg,
		transfer: transfer,
		notifier: notifier,
		observer: cfg.Observer,
		now:      cfg.Now,
		policy:   cfg.Policy,
		instance: cfg.Instance,
		auctions: make(map[uint64]*Auction),
		users:    make(map[string]*User),
		escrow:   ledger.NewEscrow(),
		ranking:  NewRanking(),
	}
}

// Register registra a identidade e cria o usuário correspondente
func (e *Engine) Register(ctx context.Context, identity string) (err error) {
	defer e.observe("register", time.Now(), &err)

	e.mu.Lock()
	if err = e.registry.Register(identity); err != nil {
		e.mu.Unlock()
		return err
	}
	e.users[identity] = &User{Identity: identity}
	e.stats.TotalUsers++
	e.mu.Unlock()

	e.log.Info("user registered", zap.String("identity", identity))
	e.notify(ctx, events.TypeUserRegistered, 0, identity, events.UserRegistered{Identity: identity})
	return nil
}

// CreateAuction abre um leilão com prazo now + duration e retorna o id
func (e *Engine) CreateAuction(ctx context.Context, caller, name, description string, duration time.Duration, reserve int64) (id uint64, err error) {
	defer e.observe("create_auction", time.Now(), &err)

	e.mu.Lock()
	owner, ok := e.users[caller]
	switch {
	case !ok || !e.registry.IsRegistered(caller):
		err = ErrNotRegistered
	case duration <= 0:
		err = ErrInvalidDuration
	case reserve < 0:
		err = ErrInvalidReserve
	}
	if err != nil {
		e.mu.Unlock()
		return 0, err
	}

	now := e.now()
	e.nextID++
	a := &Auction{
		ID:              e.nextID,
		Owner:           caller,
		Name:            name,
		Description:     description,
		ReservePrice:    reserve,
		BiddingDuration: duration,
		CreatedAt:       now,
		EndTime:         now.Add(duration),
		State:           StateOpen,
	}
	e.auctions[a.ID] = a
	e.order = append(e.order, a.ID)
	owner.AuctionsCreated++
	e.stats.TotalAuctions++
	created := events.AuctionCreated{
		AuctionID:    a.ID,
		Owner:        a.Owner,
		Name:         a.Name,
		ReservePrice: a.ReservePrice,
		EndTime:      a.EndTime,
	}
	e.mu.Unlock()

	e.log.Info("auction created",
		zap.Uint64("auction_id", created.AuctionID),
		zap.String("owner", caller),
		zap.Time("end_time", created.EndTime),
	)
	e.notify(ctx, events.TypeAuctionCreated, created.AuctionID, caller, created)
	return created.AuctionID, nil
}

// TransferOwnership troca o dono do processo
func (e *Engine) TransferOwnership(ctx context.Context, caller, newOwner string) (err error) {
	defer e.observe("transfer_ownership", time.Now(), &err)

	prev, err := e.registry.TransferOwnership(caller, newOwner)
	if err != nil {
		return err
	}
	e.log.Info("ownership transferred", zap.String("previous", prev), zap.String("new_owner", newOwner))
	e.notify(ctx, events.TypeOwnershipTransferred, 0, newOwner, events.OwnershipTransferred{
		PreviousOwner: prev,
		NewOwner:      newOwner,
	})
	return nil
}

// Identities retorna uma página das identidades registradas
func (e *Engine) Identities(offset, limit int) ([]string, error) {
	return e.registry.Identities(offset, limit)
}

// AuctionIDs retorna uma página dos ids de leilão em ordem de criação
func (e *Engine) AuctionIDs(offset, limit int) ([]uint64, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return registry.Paginate(e.order, offset, limit)
}

// Auction retorna uma cópia do leilão
func (e *Engine) Auction(id uint64) (Auction, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	a, ok := e.auctions[id]
	if !ok {
		return Auction{}, ErrAuctionNotFound
	}
	return *a, nil
}

// User retorna uma cópia do usuário
func (e *Engine) User(identity string) (User, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	u, ok := e.users[identity]
	if !ok {
		return User{}, ErrNotRegistered
	}
	return *u, nil
}

func (e *Engine) Stats() GlobalStats {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.stats
}

// EscrowBalance é o valor reembolsável de identity no leilão
func (e *Engine) EscrowBalance(auctionID uint64, identity string) (int64, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if _, ok := e.auctions[auctionID]; !ok {
		return 0, ErrAuctionNotFound
	}
	return e.escrow.Balance(auctionID, identity), nil
}

// EscrowOutstanding é o total em escrow em todos os leilões
func (e *Engine) EscrowOutstanding() int64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.escrow.Outstanding()
}

func (e *Engine) Leaderboard(n int) []Standing {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.ranking.Top(n)
}

func (e *Engine) Standing(identity string) (Standing, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.ranking.Standing(identity)
}

// lookup valida id e registro; chamar com e.mu travado
func (e *Engine) lookup(auctionID uint64, caller string) (*Auction, *User, error) {
	a, ok := e.auctions[auctionID]
	if !ok {
		return nil, nil, ErrAuctionNotFound
	}
	u, ok := e.users[caller]
	if !ok || !e.registry.IsRegistered(caller) {
		return nil, nil, ErrNotRegistered
	}
	return a, u, nil
}

func (e *Engine) observe(op string, started time.Time, err *error) {
	e.observer.ObserveOperation(op, *err, started)
}

// notify é fire-and-forget: erro de publicação só vira log
func (e *Engine) notify(ctx context.Context, typ string, auctionID uint64, identity string, payload any) {
	if e.notifier == nil {
		return
	}
	env, err := events.New(typ, auctionID, identity, payload, e.now())
	if err != nil {
		e.log.Error("encode notification", zap.String("type", typ), zap.Error(err))
		return
	}
	if err := e.notifier.Publish(ctx, env); err != nil {
		e.log.Warn("publish notification failed",
			zap.String("type", typ),
			zap.Uint64("auction_id", auctionID),
			zap.Error(err),
		)
	}
}
