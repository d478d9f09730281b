package memory

import (
	"context"

	"carshare-escrow/internal/domain"
)

type ratingRepository struct {
	db *DB
}

func (r *ratingRepository) Get(ctx context.Context, bookingID int64, side domain.RatingSide) (*domain.Rating, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	rt, ok := r.db.ratings[ratingKey{bookingID, side}]
	if !ok {
		return &domain.Rating{BookingID: bookingID, Side: side}, nil
	}
	return &rt, nil
}

func (r *ratingRepository) Create(ctx context.Context, rt *domain.Rating) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	key := ratingKey{rt.BookingID, rt.Side}
	if _, exists := r.db.ratings[key]; exists {
		return domain.ErrAlreadyRated
	}
	rt.Set = true
	r.db.ratings[key] = *rt
	r.db.record(ctx, func() { delete(r.db.ratings, key) })
	return nil
}

func (r *ratingRepository) ListBySubject(ctx context.Context, subject domain.Principal) ([]domain.Rating, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	var out []domain.Rating
	for _, rt := range r.db.ratings {
		if rt.Subject == subject {
			out = append(out, rt)
		}
	}
	return out, nil
}
