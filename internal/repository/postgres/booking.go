package postgres

import (
	"context"
	"database/sql"

	"carshare-escrow/internal/domain"
	"carshare-escrow/internal/logger"
	"carshare-escrow/internal/repository"
)

type bookingRepository struct {
	db *sql.DB
}

func NewBookingRepository(db *sql.DB) repository.BookingRepository {
	return &bookingRepository{db: db}
}

const bookingColumns = `id, listing_id, owner, renter, start_date, end_date, days, daily_price, rental_cost, deposit, escrow, status,
	renter_pickup, renter_pickup_proof, owner_pickup, owner_pickup_proof,
	renter_return, renter_return_proof, owner_return, owner_return_proof,
	disputed, created_on, updated_on`

func (r *bookingRepository) Create(ctx context.Context, b *domain.Booking) error {
	query := `INSERT INTO bookings (id, listing_id, owner, renter, start_date, end_date, days, daily_price, rental_cost, deposit, escrow, status, created_on, updated_on)
	          VALUES ((SELECT COALESCE(MAX(id) + 1, 0) FROM bookings), $1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	          RETURNING id`
	logger.DatabaseCall("insert", "bookings", "listing_id", b.ListingID, "renter", b.Renter)
	return conn(ctx, r.db).QueryRowContext(ctx, query,
		b.ListingID, b.Owner, b.Renter, b.StartDate, b.EndDate, b.Days, b.DailyPrice, b.RentalCost,
		b.Deposit, b.Escrow, b.Status, b.CreatedOn, b.UpdatedOn,
	).Scan(&b.ID)
}

func (r *bookingRepository) GetByID(ctx context.Context, id int64) (*domain.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE id = $1`
	b, err := scanBooking(conn(ctx, r.db).QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, notFound(err)
	}
	return b, nil
}

// Update writes the mutable lifecycle columns; the price snapshot is never
// rewritten.
func (r *bookingRepository) Update(ctx context.Context, b *domain.Booking) error {
	query := `UPDATE bookings SET status=$1,
	          renter_pickup=$2, renter_pickup_proof=$3, owner_pickup=$4, owner_pickup_proof=$5,
	          renter_return=$6, renter_return_proof=$7, owner_return=$8, owner_return_proof=$9,
	          disputed=$10, updated_on=$11 WHERE id=$12`
	res, err := conn(ctx, r.db).ExecContext(ctx, query, b.Status,
		b.RenterPickup.Confirmed, b.RenterPickup.ProofURI, b.OwnerPickup.Confirmed, b.OwnerPickup.ProofURI,
		b.RenterReturn.Confirmed, b.RenterReturn.ProofURI, b.OwnerReturn.Confirmed, b.OwnerReturn.ProofURI,
		b.Disputed, b.UpdatedOn, b.ID,
	)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	logger.DatabaseResult("update booking", n, err, "booking_id", b.ID, "status", b.Status)
	if err != nil {
		return err
	}
	if n == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *bookingRepository) List(ctx context.Context) ([]domain.Booking, error) {
	return r.query(ctx, `SELECT `+bookingColumns+` FROM bookings ORDER BY id`)
}

func (r *bookingRepository) ListByRenter(ctx context.Context, renter domain.Principal) ([]domain.Booking, error) {
	return r.query(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE renter = $1 ORDER BY id`, renter)
}

func (r *bookingRepository) ListByOwner(ctx context.Context, owner domain.Principal) ([]domain.Booking, error) {
	return r.query(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE owner = $1 ORDER BY id`, owner)
}

func (r *bookingRepository) HeldEscrow(ctx context.Context) (domain.Amount, int64, error) {
	var total domain.Amount
	var count int64
	query := `SELECT COALESCE(SUM(escrow), 0), COUNT(*) FROM bookings WHERE status IN ($1, $2, $3, $4, $5)`
	err := conn(ctx, r.db).QueryRowContext(ctx, query,
		domain.BookingStatusRequested, domain.BookingStatusApproved, domain.BookingStatusActive,
		domain.BookingStatusReturnPending, domain.BookingStatusDisputed,
	).Scan(&total, &count)
	return total, count, err
}

func (r *bookingRepository) query(ctx context.Context, query string, args ...any) ([]domain.Booking, error) {
	rows, err := conn(ctx, r.db).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var bookings []domain.Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		bookings = append(bookings, *b)
	}
	return bookings, rows.Err()
}

func scanBooking(row scanner) (*domain.Booking, error) {
	b := &domain.Booking{}
	err := row.Scan(&b.ID, &b.ListingID, &b.Owner, &b.Renter, &b.StartDate, &b.EndDate, &b.Days,
		&b.DailyPrice, &b.RentalCost, &b.Deposit, &b.Escrow, &b.Status,
		&b.RenterPickup.Confirmed, &b.RenterPickup.ProofURI, &b.OwnerPickup.Confirmed, &b.OwnerPickup.ProofURI,
		&b.RenterReturn.Confirmed, &b.RenterReturn.ProofURI, &b.OwnerReturn.Confirmed, &b.OwnerReturn.ProofURI,
		&b.Disputed, &b.CreatedOn, &b.UpdatedOn)
	if err != nil {
		return nil, err
	}
	return b, nil
}
