package memory

import (
	"context"
	"fmt"
	"sort"

	"investment-ledger/internal/core/domain"
	"investment-ledger/internal/core/ports"

	"github.com/google/uuid"
)

// AccountRepo implements ports.AccountRepository on a Store.
type AccountRepo struct{ s *Store }

// EntryRepo implements ports.EntryRepository on a Store.
type EntryRepo struct{ s *Store }

// PaymentMethodRepo implements ports.PaymentMethodRepository on a Store.
type PaymentMethodRepo struct{ s *Store }

// AuditRepo implements ports.AuditRepository on a Store.
type AuditRepo struct{ s *Store }

func (s *Store) Accounts() *AccountRepo { return &AccountRepo{s: s} }

func (s *Store) Entries() *EntryRepo { return &EntryRepo{s: s} }

func (s *Store) PaymentMethods() *PaymentMethodRepo { return &PaymentMethodRepo{s: s} }

func (s *Store) AuditLogs() *AuditRepo { return &AuditRepo{s: s} }

// ---- Accounts ----

// Create stores a new account outside any unit of work.
func (r *AccountRepo) Create(ctx context.Context, a *domain.Account) error {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, taken := s.emails[a.Email]; taken {
		return fmt.Errorf("insert account: %w", ports.ErrDuplicateKey)
	}
	op := walOp{Kind: opAccountCreate, Account: newWALAccount(a)}
	if s.wal != nil {
		if err := s.wal.Append(walRecord{Ops: []walOp{op}}); err != nil {
			return fmt.Errorf("memory: write wal: %w", err)
		}
	}
	return s.apply(op)
}

func (r *AccountRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Account, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	a, ok := r.s.accounts[id]
	if !ok {
		return nil, nil
	}
	return &a, nil
}

func (r *AccountRepo) GetByEmail(ctx context.Context, email string) (*domain.Account, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	id, ok := r.s.emails[email]
	if !ok {
		return nil, nil
	}
	a := r.s.accounts[id]
	return &a, nil
}

// GetByIDForUpdate locks the account row for the rest of tx.
func (r *AccountRepo) GetByIDForUpdate(ctx context.Context, tx ports.Tx, id uuid.UUID) (*domain.Account, error) {
	t, err := r.s.tx(tx)
	if err != nil {
		return nil, err
	}
	if _, staged := t.accounts[id]; !staged && !r.s.hasAccount(id) {
		return nil, nil
	}
	t.lock(accountKey(id))

	if a, ok := t.accounts[id]; ok {
		return &a, nil
	}
	return r.GetByID(ctx, id)
}

// Update stages the new account state. The row must be locked by tx.
func (r *AccountRepo) Update(ctx context.Context, tx ports.Tx, a *domain.Account) error {
	t, err := r.s.tx(tx)
	if err != nil {
		return err
	}
	if !t.holds(accountKey(a.ID)) {
		return fmt.Errorf("update account %s: row not locked", a.ID)
	}
	if _, staged := t.accounts[a.ID]; !staged {
		if existing, _ := r.GetByID(ctx, a.ID); existing == nil {
			return fmt.Errorf("account not found: %s", a.ID)
		}
	}

	t.accounts[a.ID] = *a
	t.stage(walOp{Kind: opAccountUpdate, Account: newWALAccount(a)})
	return nil
}

// List returns every account, newest first.
func (r *AccountRepo) List(ctx context.Context) ([]domain.Account, error) {
	r.s.mu.RLock()
	accounts := make([]domain.Account, 0, len(r.s.accountOrder))
	for _, id := range r.s.accountOrder {
		accounts = append(accounts, r.s.accounts[id])
	}
	r.s.mu.RUnlock()

	sort.SliceStable(accounts, func(i, j int) bool {
		return accounts[i].CreatedAt.After(accounts[j].CreatedAt)
	})
	return accounts, nil
}

// ---- Entries ----

func (r *EntryRepo) Create(ctx context.Context, tx ports.Tx, e *domain.Entry) error {
	t, err := r.s.tx(tx)
	if err != nil {
		return err
	}
	c := cloneEntry(*e)
	t.entries[e.ID] = c
	t.stage(walOp{Kind: opEntryCreate, Entry: &c})
	return nil
}

func (r *EntryRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Entry, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	e, ok := r.s.entries[id]
	if !ok {
		return nil, nil
	}
	c := cloneEntry(e)
	return &c, nil
}

// GetByIDForUpdate locks the entry row for the rest of tx.
func (r *EntryRepo) GetByIDForUpdate(ctx context.Context, tx ports.Tx, id uuid.UUID) (*domain.Entry, error) {
	t, err := r.s.tx(tx)
	if err != nil {
		return nil, err
	}
	if _, staged := t.entries[id]; !staged && !r.s.hasEntry(id) {
		return nil, nil
	}
	t.lock(entryKey(id))

	if e, ok := t.entries[id]; ok {
		c := cloneEntry(e)
		return &c, nil
	}
	return r.GetByID(ctx, id)
}

// UpdateStatus stages the entry's new status. The row must be locked by tx.
func (r *EntryRepo) UpdateStatus(ctx context.Context, tx ports.Tx, e *domain.Entry) error {
	t, err := r.s.tx(tx)
	if err != nil {
		return err
	}
	if !t.holds(entryKey(e.ID)) {
		return fmt.Errorf("update ledger entry %s: row not locked", e.ID)
	}

	current, staged := t.entries[e.ID]
	if !staged {
		stored, _ := r.GetByID(ctx, e.ID)
		if stored == nil {
			return fmt.Errorf("ledger entry not found: %s", e.ID)
		}
		current = *stored
	}

	current.Status = e.Status
	current.SettledAt = e.SettledAt
	c := cloneEntry(current)
	t.entries[e.ID] = c
	t.stage(walOp{Kind: opEntryUpdate, Entry: &c})
	return nil
}

// ListByAccount returns an account's entries, newest first.
func (r *EntryRepo) ListByAccount(ctx context.Context, accountID uuid.UUID) ([]domain.Entry, error) {
	entries := r.filter(func(e *domain.Entry) bool { return e.AccountID == accountID })
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].CreatedAt.After(entries[j].CreatedAt)
	})
	return entries, nil
}

// ListPending returns pending entries of one kind, oldest first.
func (r *EntryRepo) ListPending(ctx context.Context, kind domain.EntryKind) ([]domain.Entry, error) {
	entries := r.filter(func(e *domain.Entry) bool { return e.Kind == kind && e.IsPending() })
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].CreatedAt.Before(entries[j].CreatedAt)
	})
	return entries, nil
}

func (r *EntryRepo) filter(keep func(*domain.Entry) bool) []domain.Entry {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var out []domain.Entry
	for _, id := range r.s.entryOrder {
		e := r.s.entries[id]
		if keep(&e) {
			out = append(out, cloneEntry(e))
		}
	}
	return out
}

// ---- Payment methods ----

func (r *PaymentMethodRepo) Replace(ctx context.Context, tx ports.Tx, m *domain.PaymentMethod) error {
	t, err := r.s.tx(tx)
	if err != nil {
		return err
	}
	c := *m
	t.stage(walOp{Kind: opPaymentMethodReplace, PaymentMethod: &c})
	return nil
}

func (r *PaymentMethodRepo) Latest(ctx context.Context) (*domain.PaymentMethod, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	if len(r.s.methods) == 0 {
		return nil, nil
	}
	m := r.s.methods[len(r.s.methods)-1]
	return &m, nil
}

func (r *PaymentMethodRepo) List(ctx context.Context) ([]domain.PaymentMethod, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	methods := make([]domain.PaymentMethod, len(r.s.methods))
	copy(methods, r.s.methods)
	return methods, nil
}

// ---- Audit ----

func (r *AuditRepo) Create(ctx context.Context, log *domain.AuditLog) error {
	c := *log
	if log.AccountID != nil {
		id := *log.AccountID
		c.AccountID = &id
	}
	return r.s.commit([]walOp{{Kind: opAuditCreate, Audit: &c}})
}

// Logs returns a copy of the stored audit logs in insertion order.
func (r *AuditRepo) Logs() []domain.AuditLog {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	logs := make([]domain.AuditLog, len(r.s.audit))
	copy(logs, r.s.audit)
	return logs
}
