package memory

import (
	"context"

	"carshare-escrow/internal/domain"
	"carshare-escrow/internal/repository"
)

type participantRepository struct {
	db *DB
}

func (r *participantRepository) Create(ctx context.Context, p *domain.Participant) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	if _, exists := r.db.participants[p.Principal]; exists {
		return domain.ErrAlreadyRegistered
	}
	r.db.participants[p.Principal] = *p
	key := p.Principal
	r.db.record(ctx, func() { delete(r.db.participants, key) })
	return nil
}

func (r *participantRepository) GetByPrincipal(ctx context.Context, principal domain.Principal) (*domain.Participant, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	p, ok := r.db.participants[principal]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &p, nil
}

type roleRepository struct {
	db *DB
}

func (r *roleRepository) Get(ctx context.Context) (*domain.RoleAssignment, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	roles := r.db.roles
	return &roles, nil
}

func (r *roleRepository) Save(ctx context.Context, roles *domain.RoleAssignment) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	prev := r.db.roles
	r.db.roles = *roles
	r.db.record(ctx, func() { r.db.roles = prev })
	return nil
}
