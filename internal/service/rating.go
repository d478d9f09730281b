package service

import (
	"context"

	"carshare-escrow/internal/domain"
)

type ratingService struct {
	e *Engine
}

func NewRatingService(e *Engine) RatingService {
	return &ratingService{e: e}
}

func (s *ratingService) RateOwner(ctx context.Context, caller domain.Principal, id int64, score int32) error {
	return s.e.run(ctx, "ratingService.RateOwner", func(ctx context.Context, u *unit) error {
		return s.rate(ctx, u, caller, id, domain.RatingSideOwner, score)
	}, "caller", caller, "bookingID", id, "score", score)
}

func (s *ratingService) RateRenter(ctx context.Context, caller domain.Principal, id int64, score int32) error {
	return s.e.run(ctx, "ratingService.RateRenter", func(ctx context.Context, u *unit) error {
		return s.rate(ctx, u, caller, id, domain.RatingSideRenter, score)
	}, "caller", caller, "bookingID", id, "score", score)
}

// rate records the score given to one side of a completed booking. The renter
// rates the owner and the owner rates the renter.
func (s *ratingService) rate(ctx context.Context, u *unit, caller domain.Principal, id int64, side domain.RatingSide, score int32) error {
	b, err := s.e.booking(ctx, id)
	if err != nil {
		return err
	}
	rater, subject, denied := b.Renter, b.Owner, domain.ErrOnlyRenter
	if side == domain.RatingSideRenter {
		rater, subject, denied = b.Owner, b.Renter, domain.ErrOnlyCarOwner
	}
	if caller != rater {
		return denied
	}
	if b.Status != domain.BookingStatusCompleted {
		return domain.ErrBadStatus
	}
	if err := domain.ValidScore(score); err != nil {
		return err
	}
	existing, err := s.e.store.Ratings.Get(ctx, id, side)
	if err != nil {
		return err
	}
	if existing.Set {
		return domain.ErrAlreadyRated
	}
	return s.e.store.Ratings.Create(ctx, &domain.Rating{
		BookingID: id,
		Side:      side,
		Score:     score,
		RatedBy:   caller,
		Subject:   subject,
		RatedOn:   u.now,
	})
}

func (s *ratingService) GetOwnerRating(ctx context.Context, id int64) (*domain.Rating, error) {
	return s.get(ctx, id, domain.RatingSideOwner)
}

func (s *ratingService) GetRenterRating(ctx context.Context, id int64) (*domain.Rating, error) {
	return s.get(ctx, id, domain.RatingSideRenter)
}

func (s *ratingService) get(ctx context.Context, id int64, side domain.RatingSide) (*domain.Rating, error) {
	var r *domain.Rating
	err := s.e.read(ctx, func(ctx context.Context) error {
		if _, err := s.e.booking(ctx, id); err != nil {
			return err
		}
		var err error
		r, err = s.e.store.Ratings.Get(ctx, id, side)
		return err
	})
	return r, err
}

func (s *ratingService) Reputation(ctx context.Context, p domain.Principal) (*domain.Reputation, error) {
	var ratings []domain.Rating
	err := s.e.read(ctx, func(ctx context.Context) error {
		var err error
		ratings, err = s.e.store.Ratings.ListBySubject(ctx, p)
		return err
	})
	if err != nil {
		return nil, err
	}

	rep := &domain.Reputation{Principal: p}
	var ownerSum, renterSum int64
	for _, r := range ratings {
		switch r.Side {
		case domain.RatingSideOwner:
			rep.AsOwnerCount++
			ownerSum += int64(r.Score)
		case domain.RatingSideRenter:
			rep.AsRenterCount++
			renterSum += int64(r.Score)
		}
	}
	if rep.AsOwnerCount > 0 {
		rep.AsOwnerAverage = float64(ownerSum) / float64(rep.AsOwnerCount)
	}
	if rep.AsRenterCount > 0 {
		rep.AsRenterAverage = float64(renterSum) / float64(rep.AsRenterCount)
	}
	return rep, nil
}
