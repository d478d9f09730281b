package service

import (
	"context"

	"carshare-escrow/internal/domain"
)

type listingService struct {
	e *Engine
}

func NewListingService(e *Engine) ListingService {
	return &listingService{e: e}
}

func (s *listingService) CreateListing(ctx context.Context, caller domain.Principal, in domain.ListingInput) (int64, error) {
	var id int64
	err := s.e.run(ctx, "listingService.CreateListing", func(ctx context.Context, u *unit) error {
		if err := s.e.requireRegistered(ctx, caller); err != nil {
			return err
		}
		roles, err := s.e.roles(ctx)
		if err != nil {
			return err
		}
		if roles.HasConflict(caller) {
			return domain.ErrRoleConflict
		}
		if err := in.Validate(); err != nil {
			return err
		}

		l := &domain.Listing{
			Owner:           caller,
			Active:          true,
			InsuranceStatus: domain.InsuranceStatusPending,
			CreatedOn:       u.now,
			UpdatedOn:       u.now,
		}
		l.Apply(in)
		if err := s.e.store.Listings.Create(ctx, l); err != nil {
			return err
		}
		id = l.ID

		ev := domain.NewEvent(domain.EventListingCreated, u.now)
		ev.ListingID = &id
		ev.Principal = caller
		u.emit(ev)
		return nil
	}, "caller", caller, "dailyPrice", in.DailyPrice.String())
	return id, err
}

func (s *listingService) EditListing(ctx context.Context, caller domain.Principal, id int64, in domain.ListingInput) error {
	return s.e.run(ctx, "listingService.EditListing", func(ctx context.Context, u *unit) error {
		l, err := s.e.listing(ctx, id)
		if err != nil {
			return err
		}
		if l.Owner != caller {
			return domain.ErrNotCarOwner
		}
		if err := in.Validate(); err != nil {
			return err
		}
		l.Apply(in)
		l.UpdatedOn = u.now
		return s.e.store.Listings.Update(ctx, l)
	}, "caller", caller, "listingID", id)
}

func (s *listingService) SetListingActive(ctx context.Context, caller domain.Principal, id int64, active bool) error {
	return s.e.run(ctx, "listingService.SetListingActive", func(ctx context.Context, u *unit) error {
		l, err := s.e.listing(ctx, id)
		if err != nil {
			return err
		}
		if l.Owner != caller {
			return domain.ErrNotCarOwner
		}
		l.Active = active
		l.UpdatedOn = u.now
		return s.e.store.Listings.Update(ctx, l)
	}, "caller", caller, "listingID", id, "active", active)
}

func (s *listingService) VerifyInsurance(ctx context.Context, caller domain.Principal, id int64, isValid bool) error {
	return s.e.run(ctx, "listingService.VerifyInsurance", func(ctx context.Context, u *unit) error {
		roles, err := s.e.roles(ctx)
		if err != nil {
			return err
		}
		if !roles.IsInsuranceVerifier(caller) {
			return domain.ErrNotInsuranceVerifier
		}
		l, err := s.e.listing(ctx, id)
		if err != nil {
			return err
		}
		l.InsuranceStatus = domain.InsuranceStatusRejected
		if isValid {
			l.InsuranceStatus = domain.InsuranceStatusApproved
		}
		l.UpdatedOn = u.now
		return s.e.store.Listings.Update(ctx, l)
	}, "caller", caller, "listingID", id, "isValid", isValid)
}

func (s *listingService) GetListing(ctx context.Context, id int64) (*domain.Listing, error) {
	var l *domain.Listing
	err := s.e.read(ctx, func(ctx context.Context) error {
		var err error
		l, err = s.e.listing(ctx, id)
		return err
	})
	return l, err
}

func (s *listingService) ListListings(ctx context.Context) ([]domain.Listing, error) {
	var listings []domain.Listing
	err := s.e.read(ctx, func(ctx context.Context) error {
		var err error
		listings, err = s.e.store.Listings.List(ctx)
		return err
	})
	return listings, err
}

func (s *listingService) ListListingsByOwner(ctx context.Context, owner domain.Principal) ([]domain.Listing, error) {
	var listings []domain.Listing
	err := s.e.read(ctx, func(ctx context.Context) error {
		var err error
		listings, err = s.e.store.Listings.ListByOwner(ctx, owner)
		return err
	})
	return listings, err
}
