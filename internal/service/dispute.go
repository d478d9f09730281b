package service

import (
	"context"

	"carshare-escrow/internal/domain"
)

type disputeService struct {
	e *Engine
}

func NewDisputeService(e *Engine) DisputeService {
	return &disputeService{e: e}
}

// ResolveDispute splits a disputed booking's escrow as the arbitrator
// decides. The platform fee comes out of the owner's share only.
func (s *disputeService) ResolveDispute(ctx context.Context, caller domain.Principal, id int64, ownerPayout, renterPayout domain.Amount) error {
	return s.e.run(ctx, "disputeService.ResolveDispute", func(ctx context.Context, u *unit) error {
		roles, err := s.e.roles(ctx)
		if err != nil {
			return err
		}
		if !roles.IsArbitrator(caller) {
			return domain.ErrNotArbitrator
		}
		b, err := s.e.booking(ctx, id)
		if err != nil {
			return err
		}
		if b.Status != domain.BookingStatusDisputed {
			return domain.ErrNotDisputed
		}
		split, err := domain.DisputeSplit(b, ownerPayout, renterPayout, roles.PlatformFeeBps)
		if err != nil {
			return err
		}

		if err := u.transition(b, domain.BookingStatusCompleted); err != nil {
			return err
		}
		if err := s.e.store.Bookings.Update(ctx, b); err != nil {
			return err
		}
		if err := u.credit(ctx, b.Owner, b.ID, domain.EntryKindDisputeOwnerPayout, split.Owner); err != nil {
			return err
		}
		if err := u.credit(ctx, b.Renter, b.ID, domain.EntryKindDisputeRenterPayout, split.Renter); err != nil {
			return err
		}
		if err := u.credit(ctx, roles.PlatformOwner, b.ID, domain.EntryKindPlatformFee, split.Platform); err != nil {
			return err
		}

		ev := domain.NewEvent(domain.EventDisputeResolved, u.now)
		ev.BookingID = &b.ID
		ev.ListingID = &b.ListingID
		ev.Principal = caller
		ev.Amount = &b.Escrow
		ev.Status = b.Status
		u.emit(ev)
		return nil
	}, "caller", caller, "bookingID", id, "ownerPayout", ownerPayout.String(), "renterPayout", renterPayout.String())
}
