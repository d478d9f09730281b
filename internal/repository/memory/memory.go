// Package memory is the single-process store: plain maps guarded by one
// mutex, with an undo journal so a failed unit of work leaves no trace.
package memory

import (
	"context"
	"sync"

	"carshare-escrow/internal/domain"
	"carshare-escrow/internal/repository"
)

type DB struct {
	mu sync.Mutex

	participants map[domain.Principal]domain.Participant
	roles        domain.RoleAssignment
	listings     []domain.Listing
	bookings     []domain.Booking
	balances     map[domain.Principal]domain.Amount
	entries      []domain.LedgerEntry
	ratings      map[ratingKey]domain.Rating
	holdings     domain.Amount
	accounts     map[domain.Principal]domain.Amount
}

type ratingKey struct {
	bookingID int64
	side      domain.RatingSide
}

type txKey struct{}

type txn struct {
	undo []func()
}

func NewDB() *DB {
	return &DB{
		participants: make(map[domain.Principal]domain.Participant),
		balances:     make(map[domain.Principal]domain.Amount),
		ratings:      make(map[ratingKey]domain.Rating),
		accounts:     make(map[domain.Principal]domain.Amount),
	}
}

// NewStore wires every repository to one in-memory database.
func NewStore(db *DB) *repository.Store {
	return &repository.Store{
		Transactor:   db,
		Participants: &participantRepository{db: db},
		Roles:        &roleRepository{db: db},
		Listings:     &listingRepository{db: db},
		Bookings:     &bookingRepository{db: db},
		Ledger:       &ledgerRepository{db: db},
		Ratings:      &ratingRepository{db: db},
		Custody:      &custodyRepository{db: db},
	}
}

func (db *DB) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := ctx.Value(txKey{}).(*txn); ok {
		return fn(ctx)
	}

	t := &txn{}
	if err := fn(context.WithValue(ctx, txKey{}, t)); err != nil {
		db.mu.Lock()
		for i := len(t.undo) - 1; i >= 0; i-- {
			t.undo[i]()
		}
		db.mu.Unlock()
		return err
	}
	return nil
}

// record registers how to revert a mutation. Callers hold db.mu.
func (db *DB) record(ctx context.Context, undo func()) {
	if t, ok := ctx.Value(txKey{}).(*txn); ok {
		t.undo = append(t.undo, undo)
	}
}

// adjust applies delta to m[key], refusing a negative result. Callers hold
// db.mu.
func (db *DB) adjust(ctx context.Context, m map[domain.Principal]domain.Amount, key domain.Principal, delta domain.Amount) (domain.Amount, error) {
	prev, had := m[key]
	next := prev.Add(delta)
	if next.Sign() < 0 {
		return prev, repository.ErrInsufficientFunds
	}
	m[key] = next
	db.record(ctx, func() {
		if had {
			m[key] = prev
		} else {
			delete(m, key)
		}
	})
	return next, nil
}
