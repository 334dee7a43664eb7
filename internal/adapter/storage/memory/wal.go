package memory

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"sync"

	"investment-ledger/internal/core/domain"
)

const walFileMode fs.FileMode = 0600

// Operation kinds recorded in the write-ahead log.
const (
	opAccountCreate        = "account.create"
	opAccountUpdate        = "account.update"
	opEntryCreate          = "entry.create"
	opEntryUpdate          = "entry.update"
	opPaymentMethodReplace = "payment_method.replace"
	opAuditCreate          = "audit.create"
)

// walRecord is one committed unit of work. It is applied all-or-nothing on replay.
type walRecord struct {
	Ops []walOp `json:"ops"`
}

type walOp struct {
	Kind          string                `json:"kind"`
	Account       *walAccount           `json:"account,omitempty"`
	Entry         *domain.Entry         `json:"entry,omitempty"`
	PaymentMethod *domain.PaymentMethod `json:"payment_method,omitempty"`
	Audit         *domain.AuditLog      `json:"audit,omitempty"`
}

// walAccount carries the password hash, which domain.Account never serialises.
type walAccount struct {
	domain.Account
	PasswordHash string `json:"password_hash"`
}

func newWALAccount(a *domain.Account) *walAccount {
	return &walAccount{Account: *a, PasswordHash: a.PasswordHash}
}

func (w *walAccount) account() domain.Account {
	a := w.Account
	a.PasswordHash = w.PasswordHash
	return a
}

// WAL is an append-only JSON-lines file. Every Append is fsynced before it returns.
type WAL struct {
	file *os.File
	mu   sync.Mutex
}

// OpenWAL opens or creates the log at path.
func OpenWAL(path string) (*WAL, error) {
	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_RDWR, walFileMode)
	if err != nil {
		return nil, fmt.Errorf("open wal: %w", err)
	}
	return &WAL{file: file}, nil
}

// Append writes one record and syncs it to disk.
func (w *WAL) Append(rec walRecord) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if err := json.NewEncoder(w.file).Encode(rec); err != nil {
		return err
	}
	return w.file.Sync()
}

// Replay calls fn for every record in file order. A torn final record left by
// a crash mid-append is cut off so later appends start on a clean line.
func (w *WAL) Replay(fn func(walRecord) error) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if _, err := w.file.Seek(0, io.SeekStart); err != nil {
		return err
	}

	dec := json.NewDecoder(w.file)
	var good int64
	for {
		var rec walRecord
		err := dec.Decode(&rec)
		if errors.Is(err, io.EOF) {
			return nil
		}
		if errors.Is(err, io.ErrUnexpectedEOF) {
			return w.cutTail(good)
		}
		if err != nil {
			return fmt.Errorf("decode wal record at offset %d: %w", good, err)
		}
		if err := fn(rec); err != nil {
			return err
		}
		good = dec.InputOffset()
	}
}

// cutTail drops everything after offset and restores the line terminator.
func (w *WAL) cutTail(offset int64) error {
	if err := w.file.Truncate(offset); err != nil {
		return fmt.Errorf("truncate torn wal record: %w", err)
	}
	if offset == 0 {
		return nil
	}
	_, err := w.file.Write([]byte("\n"))
	return err
}

func (w *WAL) Close() error {
	return w.file.Close()
}
