package postgres

import (
	"context"
	"database/sql"

	"carshare-escrow/internal/domain"
	"carshare-escrow/internal/logger"
	"carshare-escrow/internal/repository"
)

type listingRepository struct {
	db *sql.DB
}

func NewListingRepository(db *sql.DB) repository.ListingRepository {
	return &listingRepository{db: db}
}

const listingColumns = `id, owner, daily_price, security_deposit, active, insurance_status, insurance_doc_uri, make, model, year, location, created_on, updated_on`

// Create takes MAX(id)+1 rather than a sequence so ids stay gap-free when a
// unit of work rolls back; the engine lock makes this safe.
func (r *listingRepository) Create(ctx context.Context, l *domain.Listing) error {
	query := `INSERT INTO listings (id, owner, daily_price, security_deposit, active, insurance_status, insurance_doc_uri, make, model, year, location, created_on, updated_on)
	          VALUES ((SELECT COALESCE(MAX(id) + 1, 0) FROM listings), $1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	          RETURNING id`
	logger.DatabaseCall("insert", "listings", "owner", l.Owner)
	return conn(ctx, r.db).QueryRowContext(ctx, query,
		l.Owner, l.DailyPrice, l.SecurityDeposit, l.Active, l.InsuranceStatus, l.InsuranceDocURI,
		l.Make, l.Model, l.Year, l.Location, l.CreatedOn, l.UpdatedOn,
	).Scan(&l.ID)
}

func (r *listingRepository) GetByID(ctx context.Context, id int64) (*domain.Listing, error) {
	query := `SELECT ` + listingColumns + ` FROM listings WHERE id = $1`
	l, err := scanListing(conn(ctx, r.db).QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, notFound(err)
	}
	return l, nil
}

func (r *listingRepository) Update(ctx context.Context, l *domain.Listing) error {
	query := `UPDATE listings SET daily_price=$1, security_deposit=$2, active=$3, insurance_status=$4, insurance_doc_uri=$5,
	          make=$6, model=$7, year=$8, location=$9, updated_on=$10 WHERE id=$11`
	res, err := conn(ctx, r.db).ExecContext(ctx, query,
		l.DailyPrice, l.SecurityDeposit, l.Active, l.InsuranceStatus, l.InsuranceDocURI,
		l.Make, l.Model, l.Year, l.Location, l.UpdatedOn, l.ID,
	)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	logger.DatabaseResult("update listing", n, err, "listing_id", l.ID)
	if err != nil {
		return err
	}
	if n == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *listingRepository) List(ctx context.Context) ([]domain.Listing, error) {
	query := `SELECT ` + listingColumns + ` FROM listings ORDER BY id`
	return r.query(ctx, query)
}

func (r *listingRepository) ListByOwner(ctx context.Context, owner domain.Principal) ([]domain.Listing, error) {
	query := `SELECT ` + listingColumns + ` FROM listings WHERE owner = $1 ORDER BY id`
	return r.query(ctx, query, owner)
}

func (r *listingRepository) query(ctx context.Context, query string, args ...any) ([]domain.Listing, error) {
	rows, err := conn(ctx, r.db).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var listings []domain.Listing
	for rows.Next() {
		l, err := scanListing(rows)
		if err != nil {
			return nil, err
		}
		listings = append(listings, *l)
	}
	return listings, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanListing(row scanner) (*domain.Listing, error) {
	l := &domain.Listing{}
	err := row.Scan(&l.ID, &l.Owner, &l.DailyPrice, &l.SecurityDeposit, &l.Active, &l.InsuranceStatus,
		&l.InsuranceDocURI, &l.Make, &l.Model, &l.Year, &l.Location, &l.CreatedOn, &l.UpdatedOn)
	if err != nil {
		return nil, err
	}
	return l, nil
}
