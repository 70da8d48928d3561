// Package registry mantém as identidades registradas e o dono do processo.
package registry

import (
	"errors"
	"sync"
)

var (
	ErrAlreadyRegistered = errors.New("identity already registered")
	ErrEmptyIdentity     = errors.New("identity required")
	ErrNotOwner          = errors.New("caller is not the owner")
	ErrOutOfRange        = errors.New("page out of range")
)

// Registry guarda identidades na ordem de registro
type Registry struct {
	mu         sync.RWMutex
	owner      string
	registered map[string]struct{}
	order      []string
}

// New cria o registry com o dono inicial do processo
func New(owner string) *Registry {
	return &Registry{
		owner:      owner,
		registered: make(map[string]struct{}),
	}
}

func (r *Registry) Register(identity string) error {
	if identity == "" {
		return ErrEmptyIdentity
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.registered[identity]; ok {
		return ErrAlreadyRegistered
	}
	r.registered[identity] = struct{}{}
	r.order = append(r.order, identity)
	return nil
}

func (r *Registry) IsRegistered(identity string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.registered[identity]
	return ok
}

func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.order)
}

func (r *Registry) Owner() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.owner
}

// TransferOwnership troca o dono; só o dono atual pode chamar.
// Retorna o dono anterior.
func (r *Registry) TransferOwnership(caller, newOwner string) (string, error) {
	if newOwner == "" {
		return "", ErrEmptyIdentity
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if caller != r.owner {
		return "", ErrNotOwner
	}
	prev := r.owner
	r.owner = newOwner
	return prev, nil
}

// Identities retorna uma página das identidades em ordem de registro
func (r *Registry) Identities(offset, limit int) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return Paginate(r.order, offset, limit)
}

// Paginate devolve uma cópia de items[offset:offset+limit], com o fim limitado a len(items).
// offset > len(items) ou limit <= 0 é erro; offset == len(items) devolve página vazia.
func Paginate[T any](items []T, offset, limit int) ([]T, error) {
	if offset < 0 || limit <= 0 || offset > len(items) {
		return nil, ErrOutOfRange
	}
	end := offset + limit
	if end > len(items) || end < offset {
		end = len(items)
	}
	out := make([]T, end-offset)
	copy(out, items[offset:end])
	return out, nil
}
