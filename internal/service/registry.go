package service

import (
	"context"
	"errors"

	"carshare-escrow/internal/domain"
	"carshare-escrow/internal/repository"
)

type registryService struct {
	e *Engine
}

func NewRegistryService(e *Engine) RegistryService {
	return &registryService{e: e}
}

func (s *registryService) Register(ctx context.Context, caller domain.Principal) error {
	return s.e.run(ctx, "registryService.Register", func(ctx context.Context, u *unit) error {
		_, err := s.e.store.Participants.GetByPrincipal(ctx, caller)
		if err == nil {
			return domain.ErrAlreadyRegistered
		}
		if !errors.Is(err, repository.ErrNotFound) {
			return err
		}
		return s.e.store.Participants.Create(ctx, &domain.Participant{
			Principal:    caller,
			Registered:   true,
			RegisteredOn: u.now,
		})
	}, "caller", caller)
}

func (s *registryService) SetRoles(ctx context.Context, caller, verifier, arbitrator domain.Principal) error {
	return s.e.run(ctx, "registryService.SetRoles", func(ctx context.Context, u *unit) error {
		roles, err := s.e.roles(ctx)
		if err != nil {
			return err
		}
		if !roles.IsPlatformOwner(caller) {
			return domain.ErrNotContractOwner
		}
		roles.InsuranceVerifier = verifier
		roles.Arbitrator = arbitrator
		return s.e.store.Roles.Save(ctx, roles)
	}, "caller", caller, "verifier", verifier, "arbitrator", arbitrator)
}

func (s *registryService) SetPlatformFee(ctx context.Context, caller domain.Principal, bps int64) error {
	return s.e.run(ctx, "registryService.SetPlatformFee", func(ctx context.Context, u *unit) error {
		roles, err := s.e.roles(ctx)
		if err != nil {
			return err
		}
		if !roles.IsPlatformOwner(caller) {
			return domain.ErrNotContractOwner
		}
		if bps < 0 || bps > domain.MaxPlatformFeeBps {
			return domain.ErrFeeTooHigh
		}
		roles.PlatformFeeBps = bps
		return s.e.store.Roles.Save(ctx, roles)
	}, "caller", caller, "bps", bps)
}

func (s *registryService) GetRoles(ctx context.Context) (*domain.RoleAssignment, error) {
	var roles *domain.RoleAssignment
	err := s.e.read(ctx, func(ctx context.Context) error {
		var err error
		roles, err = s.e.roles(ctx)
		return err
	})
	return roles, err
}

func (s *registryService) GetParticipant(ctx context.Context, p domain.Principal) (*domain.Participant, error) {
	var participant *domain.Participant
	err := s.e.read(ctx, func(ctx context.Context) error {
		var err error
		participant, err = s.e.store.Participants.GetByPrincipal(ctx, p)
		if errors.Is(err, repository.ErrNotFound) {
			return domain.ErrNotRegistered
		}
		return err
	})
	return participant, err
}

func (s *registryService) IsRegistered(ctx context.Context, p domain.Principal) (bool, error) {
	_, err := s.GetParticipant(ctx, p)
	if errors.Is(err, domain.ErrNotRegistered) {
		return false, nil
	}
	return err == nil, err
}

func (s *registryService) IsPlatformOwner(ctx context.Context, p domain.Principal) (bool, error) {
	roles, err := s.GetRoles(ctx)
	if err != nil {
		return false, err
	}
	return roles.IsPlatformOwner(p), nil
}

func (s *registryService) IsInsuranceVerifier(ctx context.Context, p domain.Principal) (bool, error) {
	roles, err := s.GetRoles(ctx)
	if err != nil {
		return false, err
	}
	return roles.IsInsuranceVerifier(p), nil
}

func (s *registryService) IsArbitrator(ctx context.Context, p domain.Principal) (bool, error) {
	roles, err := s.GetRoles(ctx)
	if err != nil {
		return false, err
	}
	return roles.IsArbitrator(p), nil
}

func (s *registryService) RolesOf(ctx context.Context, p domain.Principal) ([]domain.Role, error) {
	roles, err := s.GetRoles(ctx)
	if err != nil {
		return nil, err
	}
	return roles.Capabilities(p), nil
}
