// Package provenance holds the ledger's service layer: actor registry,
// ingestion, event chain appends, anchoring runs, and verification. Handlers
// and CLI commands call into this package; persistence lives in store, cas,
// and anchors.
package provenance

import (
	"log/slog"
	"sync"

	"provl/internal/anchors"
	"provl/internal/cas"
	"provl/internal/store"
)

// Service wires the store, the content-addressed blob store, and the anchor
// ledger behind the ledger's operations.
type Service struct {
	store  *store.Store
	blobs  cas.Store
	ledger *anchors.Ledger
	log    *slog.Logger

	// chainMu serializes appends per object. The store re-checks the chain
	// head inside its insert transaction as well, so external writers still
	// surface as ErrChainConflict.
	chainMu keyedMutex

	// anchorMu makes anchoring runs mutually exclusive.
	anchorMu sync.Mutex
}

// New builds a Service. A nil logger discards service logs.
func New(st *store.Store, blobs cas.Store, ledger *anchors.Ledger, log *slog.Logger) *Service {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Service{
		store:  st,
		blobs:  blobs,
		ledger: ledger,
		log:    log,
	}
}

// Store exposes the underlying store for read paths that need no service
// logic, such as the chain and batch listing handlers.
func (s *Service) Store() *store.Store {
	return s.store
}

type keyedMutex struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func (k *keyedMutex) lock(key string) *sync.Mutex {
	k.mu.Lock()
	if k.locks == nil {
		k.locks = make(map[string]*sync.Mutex)
	}
	m, ok := k.locks[key]
	if !ok {
		m = &sync.Mutex{}
		k.locks[key] = m
	}
	k.mu.Unlock()

	m.Lock()
	return m
}
