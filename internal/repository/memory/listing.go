package memory

import (
	"context"

	"carshare-escrow/internal/domain"
	"carshare-escrow/internal/repository"
)

type listingRepository struct {
	db *DB
}

func (r *listingRepository) Create(ctx context.Context, l *domain.Listing) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	l.ID = int64(len(r.db.listings))
	r.db.listings = append(r.db.listings, *l)
	r.db.record(ctx, func() { r.db.listings = r.db.listings[:len(r.db.listings)-1] })
	return nil
}

func (r *listingRepository) GetByID(ctx context.Context, id int64) (*domain.Listing, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	if id < 0 || id >= int64(len(r.db.listings)) {
		return nil, repository.ErrNotFound
	}
	l := r.db.listings[id]
	return &l, nil
}

func (r *listingRepository) Update(ctx context.Context, l *domain.Listing) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	if l.ID < 0 || l.ID >= int64(len(r.db.listings)) {
		return repository.ErrNotFound
	}
	prev := r.db.listings[l.ID]
	r.db.listings[l.ID] = *l
	r.db.record(ctx, func() { r.db.listings[prev.ID] = prev })
	return nil
}

func (r *listingRepository) List(ctx context.Context) ([]domain.Listing, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	out := make([]domain.Listing, len(r.db.listings))
	copy(out, r.db.listings)
	return out, nil
}

func (r *listingRepository) ListByOwner(ctx context.Context, owner domain.Principal) ([]domain.Listing, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	var out []domain.Listing
	for _, l := range r.db.listings {
		if l.Owner == owner {
			out = append(out, l)
		}
	}
	return out, nil
}
