// Package memory is a process-local ledger backing with the same locking
// contract as the PostgreSQL repositories. Rows read with a ForUpdate method
// stay locked until the unit of work ends. Writes are staged on the Tx and
// applied together at Commit.
package memory

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"investment-ledger/internal/core/domain"
	"investment-ledger/internal/core/ports"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// ErrTxDone is returned when a Tx is used after Commit or Rollback.
var ErrTxDone = errors.New("memory: transaction already finished")

// Store holds every table. mu guards the maps; row locks live in locks.
type Store struct {
	mu           sync.RWMutex
	accounts     map[uuid.UUID]domain.Account
	accountOrder []uuid.UUID
	emails       map[string]uuid.UUID
	entries      map[uuid.UUID]domain.Entry
	entryOrder   []uuid.UUID
	methods      []domain.PaymentMethod
	audit        []domain.AuditLog

	locksMu sync.Mutex
	locks   map[string]*sync.Mutex

	wal *WAL
	log zerolog.Logger
}

// New returns an empty store without durability.
func New(log zerolog.Logger) *Store {
	return &Store{
		accounts: make(map[uuid.UUID]domain.Account),
		emails:   make(map[string]uuid.UUID),
		entries:  make(map[uuid.UUID]domain.Entry),
		locks:    make(map[string]*sync.Mutex),
		log:      log,
	}
}

// Open returns a store backed by the write-ahead log at walPath, replaying
// whatever it already holds. An empty walPath behaves like New.
func Open(walPath string, log zerolog.Logger) (*Store, error) {
	s := New(log)
	if walPath == "" {
		return s, nil
	}

	wal, err := OpenWAL(walPath)
	if err != nil {
		return nil, err
	}

	records := 0
	err = wal.Replay(func(rec walRecord) error {
		records++
		for _, op := range rec.Ops {
			if err := s.apply(op); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		wal.Close()
		return nil, fmt.Errorf("replay wal: %w", err)
	}

	s.wal = wal
	log.Info().
		Str("path", walPath).
		Int("records", records).
		Int("accounts", len(s.accounts)).
		Int("entries", len(s.entries)).
		Msg("memory store recovered from WAL")
	return s, nil
}

// Close releases the write-ahead log.
func (s *Store) Close() error {
	if s.wal == nil {
		return nil
	}
	return s.wal.Close()
}

// Ping implements ports.HealthChecker.
func (s *Store) Ping(ctx context.Context) error {
	return ctx.Err()
}

func (s *Store) Name() string {
	return "memory"
}

// Begin implements ports.DBTransactor.
func (s *Store) Begin(ctx context.Context) (ports.Tx, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return &Tx{
		store:    s,
		held:     make(map[string]*sync.Mutex),
		accounts: make(map[uuid.UUID]domain.Account),
		entries:  make(map[uuid.UUID]domain.Entry),
	}, nil
}

// Rows are never deleted, so a row seen here still exists once its lock is held.
func (s *Store) hasAccount(id uuid.UUID) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.accounts[id]
	return ok
}

func (s *Store) hasEntry(id uuid.UUID) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.entries[id]
	return ok
}

// rowLock returns the lock for key. Callers only ask for rows that exist, so
// the map grows with the tables.
func (s *Store) rowLock(key string) *sync.Mutex {
	s.locksMu.Lock()
	defer s.locksMu.Unlock()

	if _, exists := s.locks[key]; !exists {
		s.locks[key] = &sync.Mutex{}
	}
	return s.locks[key]
}

// commit logs ops as one record, then applies them.
func (s *Store) commit(ops []walOp) error {
	if len(ops) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.wal != nil {
		if err := s.wal.Append(walRecord{Ops: ops}); err != nil {
			return fmt.Errorf("memory: write wal: %w", err)
		}
	}
	for _, op := range ops {
		if err := s.apply(op); err != nil {
			return err
		}
	}
	return nil
}

// apply mutates the maps. Callers hold mu, or are single-threaded during replay.
func (s *Store) apply(op walOp) error {
	switch op.Kind {
	case opAccountCreate:
		a := op.Account.account()
		if _, exists := s.accounts[a.ID]; !exists {
			s.accountOrder = append(s.accountOrder, a.ID)
		}
		s.accounts[a.ID] = a
		s.emails[a.Email] = a.ID
	case opAccountUpdate:
		a := op.Account.account()
		s.accounts[a.ID] = a
	case opEntryCreate:
		e := cloneEntry(*op.Entry)
		if _, exists := s.entries[e.ID]; !exists {
			s.entryOrder = append(s.entryOrder, e.ID)
		}
		s.entries[e.ID] = e
	case opEntryUpdate:
		e := cloneEntry(*op.Entry)
		s.entries[e.ID] = e
	case opPaymentMethodReplace:
		s.methods = []domain.PaymentMethod{*op.PaymentMethod}
	case opAuditCreate:
		s.audit = append(s.audit, *op.Audit)
	default:
		return fmt.Errorf("memory: unknown wal operation %q", op.Kind)
	}
	return nil
}

func (s *Store) tx(tx ports.Tx) (*Tx, error) {
	t, ok := tx.(*Tx)
	if !ok || t.store != s {
		return nil, fmt.Errorf("memory: unsupported transaction type %T", tx)
	}
	if t.done {
		return nil, ErrTxDone
	}
	return t, nil
}

// Tx is a unit of work on a Store. It must not be shared between goroutines.
type Tx struct {
	store    *Store
	held     map[string]*sync.Mutex
	accounts map[uuid.UUID]domain.Account
	entries  map[uuid.UUID]domain.Entry
	ops      []walOp
	done     bool
}

// Commit applies the staged writes and releases every row lock.
func (t *Tx) Commit(ctx context.Context) error {
	if t.done {
		return ErrTxDone
	}
	t.done = true
	defer t.release()
	return t.store.commit(t.ops)
}

// Rollback discards staged writes. It is a no-op after Commit.
func (t *Tx) Rollback(ctx context.Context) error {
	if t.done {
		return nil
	}
	t.done = true
	t.release()
	return nil
}

func (t *Tx) lock(key string) {
	if _, ok := t.held[key]; ok {
		return
	}
	m := t.store.rowLock(key)
	m.Lock()
	t.held[key] = m
}

func (t *Tx) holds(key string) bool {
	_, ok := t.held[key]
	return ok
}

func (t *Tx) release() {
	for key, m := range t.held {
		m.Unlock()
		delete(t.held, key)
	}
}

func (t *Tx) stage(op walOp) {
	t.ops = append(t.ops, op)
}

func accountKey(id uuid.UUID) string { return "account:" + id.String() }
func entryKey(id uuid.UUID) string   { return "entry:" + id.String() }

func cloneEntry(e domain.Entry) domain.Entry {
	if e.Deposit != nil {
		d := *e.Deposit
		e.Deposit = &d
	}
	if e.Withdrawal != nil {
		w := *e.Withdrawal
		e.Withdrawal = &w
	}
	if e.SettledAt != nil {
		at := *e.SettledAt
		e.SettledAt = &at
	}
	return e
}
