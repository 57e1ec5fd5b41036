package integration

import (
	"context"
	"fmt"
	"sync"
	"time"

	"ledger-service/internal/core/domain"
	"ledger-service/pkg/apperror"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// lockAcquireTimeout bounds how long a transfer waits for a row lock,
// mirroring the lock_timeout the postgres adapter sets on its connections.
const lockAcquireTimeout = 2 * time.Second

// memStore is an in-memory ledger store shared by the account and
// transaction repos. It emulates the postgres adapter's semantics:
// FindByNumberForUpdate takes a per-account lock held until the unit of
// work finishes, and Save/Append are buffered until commit, so a rollback
// leaves no trace.
type memStore struct {
	mu        sync.Mutex
	accounts  map[string]*domain.Account
	locks     map[string]chan struct{}
	txns      []domain.Transaction
	nextAccID int64
	nextTxnID int64
}

func newMemStore() *memStore {
	return &memStore{
		accounts: make(map[string]*domain.Account),
		locks:    make(map[string]chan struct{}),
	}
}

func (s *memStore) lockChan(accountNumber string) chan struct{} {
	s.mu.Lock()
	defer s.mu.Unlock()
	ch, ok := s.locks[accountNumber]
	if !ok {
		ch = make(chan struct{}, 1)
		s.locks[accountNumber] = ch
	}
	return ch
}

func (s *memStore) acquire(ctx context.Context, accountNumber string) error {
	ch := s.lockChan(accountNumber)
	select {
	case ch <- struct{}{}:
		return nil
	case <-ctx.Done():
		return apperror.ErrLockTimeout(ctx.Err())
	case <-time.After(lockAcquireTimeout):
		return apperror.ErrLockTimeout(fmt.Errorf("lock wait on account %s exceeded %s", accountNumber, lockAcquireTimeout))
	}
}

func (s *memStore) release(accountNumber string) {
	<-s.lockChan(accountNumber)
}

// --- In-Memory Transactor ---

type inMemoryTransactor struct {
	store *memStore
}

func newInMemoryTransactor(store *memStore) *inMemoryTransactor {
	return &inMemoryTransactor{store: store}
}

func (t *inMemoryTransactor) Begin(ctx context.Context) (pgx.Tx, error) {
	return &memTx{store: t.store, saves: make(map[string]domain.Account)}, nil
}

// memTx is a pgx.Tx implementation backed by memStore. Writes are buffered
// and published atomically on Commit; held locks are released when the
// transaction finishes either way.
type memTx struct {
	store   *memStore
	mu      sync.Mutex
	held    []string
	saves   map[string]domain.Account
	appends []domain.Transaction
	done    bool
}

func (t *memTx) lock(ctx context.Context, accountNumber string) error {
	t.mu.Lock()
	for _, held := range t.held {
		if held == accountNumber {
			t.mu.Unlock()
			return nil
		}
	}
	t.mu.Unlock()

	if err := t.store.acquire(ctx, accountNumber); err != nil {
		return err
	}

	t.mu.Lock()
	t.held = append(t.held, accountNumber)
	t.mu.Unlock()
	return nil
}

func (t *memTx) bufferSave(a *domain.Account) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.saves[a.AccountNumber] = *a
}

func (t *memTx) bufferAppend(txn domain.Transaction) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.appends = append(t.appends, txn)
}

func (t *memTx) finish(publish bool) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.done {
		if publish {
			return fmt.Errorf("tx is closed")
		}
		return nil
	}
	t.done = true

	if publish {
		t.store.mu.Lock()
		for number, saved := range t.saves {
			s := saved
			t.store.accounts[number] = &s
		}
		t.store.txns = append(t.store.txns, t.appends...)
		t.store.mu.Unlock()
	}

	for i := len(t.held) - 1; i >= 0; i-- {
		t.store.release(t.held[i])
	}
	t.held = nil
	return nil
}

func (t *memTx) Commit(ctx context.Context) error   { return t.finish(true) }
func (t *memTx) Rollback(ctx context.Context) error { return t.finish(false) }

func (t *memTx) Begin(ctx context.Context) (pgx.Tx, error) { return t, nil }
func (t *memTx) CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error) {
	return 0, nil
}
func (t *memTx) SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults { return nil }
func (t *memTx) LargeObjects() pgx.LargeObjects                               { return pgx.LargeObjects{} }
func (t *memTx) Prepare(ctx context.Context, name, sql string) (*pgconn.StatementDescription, error) {
	return nil, nil
}
func (t *memTx) Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error) {
	return pgconn.NewCommandTag(""), nil
}
func (t *memTx) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return nil, nil
}
func (t *memTx) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	return nil
}
func (t *memTx) Conn() *pgx.Conn { return nil }

// --- In-Memory Account Repo ---

type inMemoryAccountRepo struct {
	store *memStore
}

func newInMemoryAccountRepo(store *memStore) *inMemoryAccountRepo {
	return &inMemoryAccountRepo{store: store}
}

func (r *inMemoryAccountRepo) Create(ctx context.Context, a *domain.Account) (*domain.Account, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if _, exists := r.store.accounts[a.AccountNumber]; exists {
		return nil, fmt.Errorf("account number already exists: %s", a.AccountNumber)
	}
	r.store.nextAccID++
	created := *a
	created.ID = r.store.nextAccID
	r.store.accounts[a.AccountNumber] = &created

	result := created
	return &result, nil
}

func (r *inMemoryAccountRepo) FindByNumber(ctx context.Context, accountNumber string) (*domain.Account, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	a, ok := r.store.accounts[accountNumber]
	if !ok {
		return nil, nil
	}
	result := *a
	return &result, nil
}

func (r *inMemoryAccountRepo) FindByNumberForUpdate(ctx context.Context, tx pgx.Tx, accountNumber string) (*domain.Account, error) {
	mtx, ok := tx.(*memTx)
	if !ok {
		return nil, fmt.Errorf("unexpected tx type %T", tx)
	}
	if err := mtx.lock(ctx, accountNumber); err != nil {
		return nil, err
	}
	return r.FindByNumber(ctx, accountNumber)
}

func (r *inMemoryAccountRepo) Save(ctx context.Context, tx pgx.Tx, a *domain.Account) error {
	mtx, ok := tx.(*memTx)
	if !ok {
		return fmt.Errorf("unexpected tx type %T", tx)
	}
	saved := *a
	saved.UpdatedAt = time.Now().UTC()
	mtx.bufferSave(&saved)
	return nil
}

func (r *inMemoryAccountRepo) UpdateStatus(ctx context.Context, accountNumber string, status domain.AccountStatus) (*domain.Account, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	a, ok := r.store.accounts[accountNumber]
	if !ok {
		return nil, nil
	}
	a.Status = status
	a.UpdatedAt = time.Now().UTC()
	result := *a
	return &result, nil
}

func (r *inMemoryAccountRepo) ExistsByNumber(ctx context.Context, accountNumber string) (bool, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	_, ok := r.store.accounts[accountNumber]
	return ok, nil
}

func (r *inMemoryAccountRepo) List(ctx context.Context) ([]domain.Account, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	accounts := make([]domain.Account, 0, len(r.store.accounts))
	for _, a := range r.store.accounts {
		accounts = append(accounts, *a)
	}
	return accounts, nil
}

// --- In-Memory Transaction Repo ---

type inMemoryTransactionRepo struct {
	store *memStore
}

func newInMemoryTransactionRepo(store *memStore) *inMemoryTransactionRepo {
	return &inMemoryTransactionRepo{store: store}
}

func (r *inMemoryTransactionRepo) Append(ctx context.Context, tx pgx.Tx, txn *domain.Transaction) (*domain.Transaction, error) {
	mtx, ok := tx.(*memTx)
	if !ok {
		return nil, fmt.Errorf("unexpected tx type %T", tx)
	}

	r.store.mu.Lock()
	r.store.nextTxnID++
	id := r.store.nextTxnID
	r.store.mu.Unlock()

	recorded := *txn
	recorded.ID = id
	recorded.RecordedAt = time.Now().UTC()
	mtx.bufferAppend(recorded)

	result := recorded
	return &result, nil
}

func (r *inMemoryTransactionRepo) FindByAccountNumber(ctx context.Context, accountNumber string) ([]domain.Transaction, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var result []domain.Transaction
	for _, t := range r.store.txns {
		if t.FromAccountNumber == accountNumber || t.ToAccountNumber == accountNumber {
			result = append(result, t)
		}
	}
	return result, nil
}
