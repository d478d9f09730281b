package postgres

import (
	"context"
	"database/sql"
	"errors"

	"carshare-escrow/internal/domain"
	"carshare-escrow/internal/repository"

	"github.com/lib/pq"
)

type participantRepository struct {
	db *sql.DB
}

func NewParticipantRepository(db *sql.DB) repository.ParticipantRepository {
	return &participantRepository{db: db}
}

func (r *participantRepository) Create(ctx context.Context, p *domain.Participant) error {
	query := `INSERT INTO participants (principal, registered_on) VALUES ($1, $2)`
	_, err := conn(ctx, r.db).ExecContext(ctx, query, p.Principal, p.RegisteredOn)
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == "23505" {
		return domain.ErrAlreadyRegistered
	}
	return err
}

func (r *participantRepository) GetByPrincipal(ctx context.Context, principal domain.Principal) (*domain.Participant, error) {
	p := &domain.Participant{}
	query := `SELECT principal, registered_on FROM participants WHERE principal = $1`
	err := conn(ctx, r.db).QueryRowContext(ctx, query, principal).Scan(&p.Principal, &p.RegisteredOn)
	if err != nil {
		return nil, notFound(err)
	}
	p.Registered = true
	return p, nil
}

type roleRepository struct {
	db *sql.DB
}

func NewRoleRepository(db *sql.DB) repository.RoleRepository {
	return &roleRepository{db: db}
}

// Get returns the zero assignment until the platform has been bootstrapped.
func (r *roleRepository) Get(ctx context.Context) (*domain.RoleAssignment, error) {
	roles := &domain.RoleAssignment{}
	query := `SELECT platform_owner, insurance_verifier, arbitrator, platform_fee_bps FROM platform_roles WHERE id = 1`
	err := conn(ctx, r.db).QueryRowContext(ctx, query).Scan(&roles.PlatformOwner, &roles.InsuranceVerifier, &roles.Arbitrator, &roles.PlatformFeeBps)
	if err == sql.ErrNoRows {
		return roles, nil
	}
	if err != nil {
		return nil, err
	}
	return roles, nil
}

func (r *roleRepository) Save(ctx context.Context, roles *domain.RoleAssignment) error {
	query := `INSERT INTO platform_roles (id, platform_owner, insurance_verifier, arbitrator, platform_fee_bps)
	          VALUES (1, $1, $2, $3, $4)
	          ON CONFLICT (id) DO UPDATE SET platform_owner = $1, insurance_verifier = $2, arbitrator = $3, platform_fee_bps = $4`
	_, err := conn(ctx, r.db).ExecContext(ctx, query, roles.PlatformOwner, roles.InsuranceVerifier, roles.Arbitrator, roles.PlatformFeeBps)
	return err
}
