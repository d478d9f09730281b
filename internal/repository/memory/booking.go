package memory

import (
	"context"

	"carshare-escrow/internal/domain"
	"carshare-escrow/internal/repository"
)

type bookingRepository struct {
	db *DB
}

func (r *bookingRepository) Create(ctx context.Context, b *domain.Booking) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	b.ID = int64(len(r.db.bookings))
	r.db.bookings = append(r.db.bookings, *b)
	r.db.record(ctx, func() { r.db.bookings = r.db.bookings[:len(r.db.bookings)-1] })
	return nil
}

func (r *bookingRepository) GetByID(ctx context.Context, id int64) (*domain.Booking, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	if id < 0 || id >= int64(len(r.db.bookings)) {
		return nil, repository.ErrNotFound
	}
	b := r.db.bookings[id]
	return &b, nil
}

func (r *bookingRepository) Update(ctx context.Context, b *domain.Booking) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	if b.ID < 0 || b.ID >= int64(len(r.db.bookings)) {
		return repository.ErrNotFound
	}
	prev := r.db.bookings[b.ID]
	r.db.bookings[b.ID] = *b
	r.db.record(ctx, func() { r.db.bookings[prev.ID] = prev })
	return nil
}

func (r *bookingRepository) List(ctx context.Context) ([]domain.Booking, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	out := make([]domain.Booking, len(r.db.bookings))
	copy(out, r.db.bookings)
	return out, nil
}

func (r *bookingRepository) ListByRenter(ctx context.Context, renter domain.Principal) ([]domain.Booking, error) {
	return r.filter(func(b *domain.Booking) bool { return b.Renter == renter }), nil
}

func (r *bookingRepository) ListByOwner(ctx context.Context, owner domain.Principal) ([]domain.Booking, error) {
	return r.filter(func(b *domain.Booking) bool { return b.Owner == owner }), nil
}

func (r *bookingRepository) HeldEscrow(ctx context.Context) (domain.Amount, int64, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	var total domain.Amount
	var count int64
	for i := range r.db.bookings {
		if r.db.bookings[i].Status.HoldsEscrow() {
			total = total.Add(r.db.bookings[i].Escrow)
			count++
		}
	}
	return total, count, nil
}

func (r *bookingRepository) filter(keep func(*domain.Booking) bool) []domain.Booking {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	var out []domain.Booking
	for i := range r.db.bookings {
		if keep(&r.db.bookings[i]) {
			out = append(out, r.db.bookings[i])
		}
	}
	return out
}
