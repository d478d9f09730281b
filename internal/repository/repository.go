package repository

import (
	"context"
	"errors"

	"carshare-escrow/internal/domain"
)

// ErrNotFound is returned by repositories when a row does not exist.
var ErrNotFound = errors.New("not found")

// Transactor runs fn as one all-or-nothing unit of work. Repository calls made
// with the ctx passed to fn join the unit; nested calls reuse it.
type Transactor interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
}

type ParticipantRepository interface {
	Create(ctx context.Context, p *domain.Participant) error
	GetByPrincipal(ctx context.Context, principal domain.Principal) (*domain.Participant, error)
}

type RoleRepository interface {
	Get(ctx context.Context) (*domain.RoleAssignment, error)
	Save(ctx context.Context, roles *domain.RoleAssignment) error
}

type ListingRepository interface {
	// Create assigns the next sequential id, starting at 0.
	Create(ctx context.Context, l *domain.Listing) error
	GetByID(ctx context.Context, id int64) (*domain.Listing, error)
	Update(ctx context.Context, l *domain.Listing) error
	List(ctx context.Context) ([]domain.Listing, error)
	ListByOwner(ctx context.Context, owner domain.Principal) ([]domain.Listing, error)
}

type BookingRepository interface {
	// Create assigns the next sequential id, starting at 0.
	Create(ctx context.Context, b *domain.Booking) error
	GetByID(ctx context.Context, id int64) (*domain.Booking, error)
	Update(ctx context.Context, b *domain.Booking) error
	List(ctx context.Context) ([]domain.Booking, error)
	ListByRenter(ctx context.Context, renter domain.Principal) ([]domain.Booking, error)
	ListByOwner(ctx context.Context, owner domain.Principal) ([]domain.Booking, error)
	// HeldEscrow sums the escrow of bookings whose funds are still in custody.
	HeldEscrow(ctx context.Context) (total domain.Amount, count int64, err error)
}

type LedgerRepository interface {
	GetBalance(ctx context.Context, principal domain.Principal) (domain.Amount, error)
	// AddBalance applies delta and returns the new balance. A result below
	// zero is an error.
	AddBalance(ctx context.Context, principal domain.Principal, delta domain.Amount) (domain.Amount, error)
	TotalBalances(ctx context.Context) (domain.Amount, error)
	AppendEntry(ctx context.Context, e *domain.LedgerEntry) error
	ListEntries(ctx context.Context, principal domain.Principal) ([]domain.LedgerEntry, error)
}

// ErrInsufficientFunds is returned when a custody debit would go below zero.
var ErrInsufficientFunds = errors.New("insufficient funds")

// CustodyRepository keeps the books of the currency the engine holds and of
// the external accounts it pays to and pulls from.
type CustodyRepository interface {
	Holdings(ctx context.Context) (domain.Amount, error)
	// AddHoldings applies delta to the engine's holdings. A result below
	// zero is ErrInsufficientFunds.
	AddHoldings(ctx context.Context, delta domain.Amount) (domain.Amount, error)
	AccountBalance(ctx context.Context, principal domain.Principal) (domain.Amount, error)
	// AddAccount applies delta to an external account. A result below zero
	// is ErrInsufficientFunds.
	AddAccount(ctx context.Context, principal domain.Principal, delta domain.Amount) (domain.Amount, error)
	// OpenAccount creates an account holding amount unless one exists, and
	// reports whether it did.
	OpenAccount(ctx context.Context, principal domain.Principal, amount domain.Amount) (bool, error)
}

type RatingRepository interface {
	// Get returns an unset rating when none exists.
	Get(ctx context.Context, bookingID int64, side domain.RatingSide) (*domain.Rating, error)
	Create(ctx context.Context, r *domain.Rating) error
	ListBySubject(ctx context.Context, subject domain.Principal) ([]domain.Rating, error)
}

// Store groups the repositories behind one transactor.
type Store struct {
	Transactor
	Participants ParticipantRepository
	Roles        RoleRepository
	Listings     ListingRepository
	Bookings     BookingRepository
	Ledger       LedgerRepository
	Ratings      RatingRepository
	Custody      CustodyRepository
}
