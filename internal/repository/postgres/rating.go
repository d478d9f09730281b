package postgres

import (
	"context"
	"database/sql"
	"errors"

	"carshare-escrow/internal/domain"
	"carshare-escrow/internal/repository"

	"github.com/lib/pq"
)

type ratingRepository struct {
	db *sql.DB
}

func NewRatingRepository(db *sql.DB) repository.RatingRepository {
	return &ratingRepository{db: db}
}

func (r *ratingRepository) Get(ctx context.Context, bookingID int64, side domain.RatingSide) (*domain.Rating, error) {
	rt := &domain.Rating{BookingID: bookingID, Side: side}
	query := `SELECT score, rated_by, subject, rated_on FROM ratings WHERE booking_id = $1 AND side = $2`
	err := conn(ctx, r.db).QueryRowContext(ctx, query, bookingID, side).Scan(&rt.Score, &rt.RatedBy, &rt.Subject, &rt.RatedOn)
	if err == sql.ErrNoRows {
		return rt, nil
	}
	if err != nil {
		return nil, err
	}
	rt.Set = true
	return rt, nil
}

func (r *ratingRepository) Create(ctx context.Context, rt *domain.Rating) error {
	query := `INSERT INTO ratings (booking_id, side, score, rated_by, subject, rated_on) VALUES ($1, $2, $3, $4, $5, $6)`
	_, err := conn(ctx, r.db).ExecContext(ctx, query, rt.BookingID, rt.Side, rt.Score, rt.RatedBy, rt.Subject, rt.RatedOn)
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == "23505" {
		return domain.ErrAlreadyRated
	}
	if err != nil {
		return err
	}
	rt.Set = true
	return nil
}

func (r *ratingRepository) ListBySubject(ctx context.Context, subject domain.Principal) ([]domain.Rating, error) {
	query := `SELECT booking_id, side, score, rated_by, subject, rated_on FROM ratings WHERE subject = $1 ORDER BY booking_id, side`
	rows, err := conn(ctx, r.db).QueryContext(ctx, query, subject)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ratings []domain.Rating
	for rows.Next() {
		var rt domain.Rating
		if err := rows.Scan(&rt.BookingID, &rt.Side, &rt.Score, &rt.RatedBy, &rt.Subject, &rt.RatedOn); err != nil {
			return nil, err
		}
		rt.Set = true
		ratings = append(ratings, rt)
	}
	return ratings, rows.Err()
}
