package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"carshare-escrow/internal/clock"
	"carshare-escrow/internal/domain"
	"carshare-escrow/internal/events"
	"carshare-escrow/internal/logger"
	"carshare-escrow/internal/payout"
	"carshare-escrow/internal/repository"

	"github.com/google/uuid"
)

// Engine runs one operation at a time. Each mutating call is a single unit of
// work against the store; events go out only after it commits.
type Engine struct {
	mu      sync.Mutex
	store   *repository.Store
	custody payout.Custody
	clock   clock.Clock
	events  events.Publisher
}

func NewEngine(store *repository.Store, custody payout.Custody, clk clock.Clock, pub events.Publisher) *Engine {
	return &Engine{store: store, custody: custody, clock: clk, events: pub}
}

// Bootstrap installs the role assignment on first start. An existing
// assignment is left alone so that later SetRoles and SetPlatformFee calls
// survive restarts.
func (e *Engine) Bootstrap(ctx context.Context, initial domain.RoleAssignment) error {
	if initial.PlatformOwner.IsZero() {
		return errors.New("platform owner is required")
	}
	if initial.PlatformFeeBps < 0 || initial.PlatformFeeBps > domain.MaxPlatformFeeBps {
		return domain.ErrFeeTooHigh
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	return e.store.WithTx(ctx, func(ctx context.Context) error {
		roles, err := e.store.Roles.Get(ctx)
		if err != nil {
			return fmt.Errorf("load roles: %w", err)
		}
		if !roles.PlatformOwner.IsZero() {
			if roles.PlatformOwner != initial.PlatformOwner {
				logger.Warn("Configured platform owner differs from stored one; keeping stored",
					"stored", roles.PlatformOwner, "configured", initial.PlatformOwner)
			}
			return nil
		}
		logger.Info("Bootstrapping platform roles", "owner", initial.PlatformOwner, "fee_bps", initial.PlatformFeeBps)
		return e.store.Roles.Save(ctx, &initial)
	})
}

type transfer struct {
	in        bool
	principal domain.Principal
	amount    domain.Amount
}

// unit carries the state of one operation: its timestamp, the events to
// publish on commit and the custody transfers to reverse if the store fails
// to commit after they ran. Store-backed custody rolls back with the store
// and records no transfers.
type unit struct {
	e         *Engine
	now       time.Time
	events    []domain.Event
	transfers []transfer
}

func (e *Engine) run(ctx context.Context, method string, fn func(ctx context.Context, u *unit) error, args ...any) error {
	logger.EnterMethod(method, args...)

	e.mu.Lock()
	u := &unit{e: e, now: e.clock.Now()}
	err := e.store.WithTx(ctx, func(ctx context.Context) error {
		return fn(ctx, u)
	})
	if err != nil {
		u.compensate(ctx)
		e.mu.Unlock()
		logger.ExitMethodWithError(method, err, domain.KindOf(err), args...)
		return err
	}
	// Publish never blocks, so units reach subscribers in commit order.
	if e.events != nil && len(u.events) > 0 {
		e.events.Publish(u.events...)
	}
	e.mu.Unlock()

	logger.ExitMethod(method, args...)
	return nil
}

// read runs fn under the engine lock so queries never observe a unit of work
// halfway through.
func (e *Engine) read(ctx context.Context, fn func(ctx context.Context) error) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return fn(ctx)
}

func (u *unit) emit(ev domain.Event) {
	u.events = append(u.events, ev)
}

func (u *unit) receive(ctx context.Context, from domain.Principal, amount domain.Amount) error {
	if err := u.e.custody.Receive(ctx, from, amount); err != nil {
		return fmt.Errorf("receive escrow: %w", err)
	}
	u.track(transfer{in: true, principal: from, amount: amount})
	return nil
}

func (u *unit) send(ctx context.Context, to domain.Principal, amount domain.Amount) error {
	if err := u.e.custody.Send(ctx, to, amount); err != nil {
		return fmt.Errorf("send funds: %w", err)
	}
	u.track(transfer{principal: to, amount: amount})
	return nil
}

func (u *unit) track(t transfer) {
	if _, ok := u.e.custody.(payout.StoreBacked); ok {
		return
	}
	u.transfers = append(u.transfers, t)
}

func (u *unit) compensate(ctx context.Context) {
	for i := len(u.transfers) - 1; i >= 0; i-- {
		t := u.transfers[i]
		var err error
		if t.in {
			err = u.e.custody.Send(ctx, t.principal, t.amount)
		} else {
			err = u.e.custody.Receive(ctx, t.principal, t.amount)
		}
		if err != nil {
			logger.Error("Failed to reverse custody transfer", "principal", t.principal, "amount", t.amount.String(), "inbound", t.in, "error", err)
		}
	}
}

// credit adds amount to p's withdrawable balance and journals it.
func (u *unit) credit(ctx context.Context, p domain.Principal, bookingID int64, kind domain.EntryKind, amount domain.Amount) error {
	if amount.IsZero() {
		return nil
	}
	if _, err := u.e.store.Ledger.AddBalance(ctx, p, amount); err != nil {
		return fmt.Errorf("credit %s: %w", kind, err)
	}
	return u.journal(ctx, p, &bookingID, kind, amount)
}

func (u *unit) journal(ctx context.Context, p domain.Principal, bookingID *int64, kind domain.EntryKind, amount domain.Amount) error {
	entry := &domain.LedgerEntry{
		ID:        uuid.New(),
		Principal: p,
		BookingID: bookingID,
		Kind:      kind,
		Amount:    amount,
		CreatedOn: u.now,
	}
	if err := u.e.store.Ledger.AppendEntry(ctx, entry); err != nil {
		return fmt.Errorf("journal %s: %w", kind, err)
	}
	return nil
}

// transition moves b to the next status and queues the change event. The
// caller persists b.
func (u *unit) transition(b *domain.Booking, to domain.BookingStatus) error {
	from := b.Status
	if !domain.CanTransition(from, to) {
		return fmt.Errorf("%s -> %s: %w", from, to, domain.ErrBadStatus)
	}
	b.Status = to
	b.UpdatedOn = u.now
	logger.StatusChange(b.ID, string(from), string(to))

	ev := domain.NewEvent(domain.EventBookingStatusChanged, u.now)
	id, listingID := b.ID, b.ListingID
	ev.BookingID = &id
	ev.ListingID = &listingID
	ev.Status = to
	u.emit(ev)
	return nil
}

func (e *Engine) roles(ctx context.Context) (*domain.RoleAssignment, error) {
	roles, err := e.store.Roles.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("load roles: %w", err)
	}
	return roles, nil
}

func (e *Engine) requireRegistered(ctx context.Context, p domain.Principal) error {
	_, err := e.store.Participants.GetByPrincipal(ctx, p)
	if errors.Is(err, repository.ErrNotFound) {
		return domain.ErrNotRegistered
	}
	return err
}

func (e *Engine) listing(ctx context.Context, id int64) (*domain.Listing, error) {
	l, err := e.store.Listings.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, domain.ErrListingNotFound
	}
	return l, err
}

func (e *Engine) booking(ctx context.Context, id int64) (*domain.Booking, error) {
	b, err := e.store.Bookings.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, domain.ErrBookingNotFound
	}
	return b, err
}
