package service

import (
	"context"

	"carshare-escrow/internal/domain"
)

type bookingService struct {
	e *Engine
}

func NewBookingService(e *Engine) BookingService {
	return &bookingService{e: e}
}

func (s *bookingService) RequestBooking(ctx context.Context, caller domain.Principal, listingID, start, end int64, value domain.Amount) (int64, error) {
	var id int64
	err := s.e.run(ctx, "bookingService.RequestBooking", func(ctx context.Context, u *unit) error {
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
		l, err := s.e.listing(ctx, listingID)
		if err != nil {
			return err
		}
		if l.Owner == caller {
			return domain.ErrOwnCarBooking
		}
		if err := l.Bookable(); err != nil {
			return err
		}
		quote, err := domain.QuoteBooking(l, start, end)
		if err != nil {
			return err
		}
		if !value.Equal(quote.Escrow) {
			return domain.ErrIncorrectEscrow
		}

		b := &domain.Booking{
			ListingID:  l.ID,
			Owner:      l.Owner,
			Renter:     caller,
			StartDate:  start,
			EndDate:    end,
			Days:       quote.Days,
			DailyPrice: quote.DailyPrice,
			RentalCost: quote.RentalCost,
			Deposit:    quote.Deposit,
			Escrow:     quote.Escrow,
			Status:     domain.BookingStatusRequested,
			CreatedOn:  u.now,
			UpdatedOn:  u.now,
		}
		if err := s.e.store.Bookings.Create(ctx, b); err != nil {
			return err
		}
		id = b.ID
		if err := u.receive(ctx, caller, value); err != nil {
			return err
		}

		ev := domain.NewEvent(domain.EventBookingRequested, u.now)
		ev.BookingID = &id
		ev.ListingID = &b.ListingID
		ev.Principal = caller
		ev.Amount = &value
		ev.Status = b.Status
		u.emit(ev)
		return nil
	}, "caller", caller, "listingID", listingID, "start", start, "end", end, "value", value.String())
	return id, err
}

func (s *bookingService) ApproveBooking(ctx context.Context, caller domain.Principal, id int64) error {
	return s.e.run(ctx, "bookingService.ApproveBooking", func(ctx context.Context, u *unit) error {
		b, err := s.ownerRequested(ctx, caller, id)
		if err != nil {
			return err
		}
		if err := u.transition(b, domain.BookingStatusApproved); err != nil {
			return err
		}
		return s.e.store.Bookings.Update(ctx, b)
	}, "caller", caller, "bookingID", id)
}

func (s *bookingService) RejectBooking(ctx context.Context, caller domain.Principal, id int64) error {
	return s.e.run(ctx, "bookingService.RejectBooking", func(ctx context.Context, u *unit) error {
		b, err := s.ownerRequested(ctx, caller, id)
		if err != nil {
			return err
		}
		return s.refund(ctx, u, b, domain.BookingStatusRejected, domain.EntryKindRejectRefund)
	}, "caller", caller, "bookingID", id)
}

func (s *bookingService) CancelBeforeActive(ctx context.Context, caller domain.Principal, id int64) error {
	return s.e.run(ctx, "bookingService.CancelBeforeActive", func(ctx context.Context, u *unit) error {
		b, err := s.e.booking(ctx, id)
		if err != nil {
			return err
		}
		if b.Renter != caller {
			return domain.ErrOnlyRenter
		}
		if b.Status != domain.BookingStatusRequested && b.Status != domain.BookingStatusApproved {
			return domain.ErrCannotCancel
		}
		return s.refund(ctx, u, b, domain.BookingStatusCancelled, domain.EntryKindCancelRefund)
	}, "caller", caller, "bookingID", id)
}

func (s *bookingService) ConfirmPickup(ctx context.Context, caller domain.Principal, id int64, proofURI string) error {
	return s.e.run(ctx, "bookingService.ConfirmPickup", func(ctx context.Context, u *unit) error {
		b, role, err := s.party(ctx, caller, id)
		if err != nil {
			return err
		}
		if b.Status != domain.BookingStatusApproved {
			return domain.ErrNotApproved
		}
		b.UpdatedOn = u.now
		if b.ConfirmPickup(role, proofURI) {
			if err := u.transition(b, domain.BookingStatusActive); err != nil {
				return err
			}
		}
		return s.e.store.Bookings.Update(ctx, b)
	}, "caller", caller, "bookingID", id)
}

func (s *bookingService) ConfirmReturn(ctx context.Context, caller domain.Principal, id int64, proofURI string) error {
	return s.e.run(ctx, "bookingService.ConfirmReturn", func(ctx context.Context, u *unit) error {
		b, role, err := s.party(ctx, caller, id)
		if err != nil {
			return err
		}
		if b.Status != domain.BookingStatusActive && b.Status != domain.BookingStatusReturnPending {
			return domain.ErrNotActive
		}
		b.UpdatedOn = u.now
		if !b.ConfirmReturn(role, proofURI) {
			if b.Status == domain.BookingStatusActive {
				if err := u.transition(b, domain.BookingStatusReturnPending); err != nil {
					return err
				}
			}
			return s.e.store.Bookings.Update(ctx, b)
		}

		roles, err := s.e.roles(ctx)
		if err != nil {
			return err
		}
		split := domain.CompletionSplit(b, roles.PlatformFeeBps)
		if err := u.transition(b, domain.BookingStatusCompleted); err != nil {
			return err
		}
		if err := s.e.store.Bookings.Update(ctx, b); err != nil {
			return err
		}
		if err := u.credit(ctx, b.Owner, b.ID, domain.EntryKindOwnerEarning, split.Owner); err != nil {
			return err
		}
		if err := u.credit(ctx, roles.PlatformOwner, b.ID, domain.EntryKindPlatformFee, split.Platform); err != nil {
			return err
		}
		return u.credit(ctx, b.Renter, b.ID, domain.EntryKindDepositRefund, split.Renter)
	}, "caller", caller, "bookingID", id)
}

func (s *bookingService) OpenDispute(ctx context.Context, caller domain.Principal, id int64) error {
	return s.e.run(ctx, "bookingService.OpenDispute", func(ctx context.Context, u *unit) error {
		b, _, err := s.party(ctx, caller, id)
		if err != nil {
			return err
		}
		switch b.Status {
		case domain.BookingStatusApproved, domain.BookingStatusActive, domain.BookingStatusReturnPending:
		default:
			return domain.ErrBadStatus
		}
		b.Disputed = true
		if err := u.transition(b, domain.BookingStatusDisputed); err != nil {
			return err
		}
		return s.e.store.Bookings.Update(ctx, b)
	}, "caller", caller, "bookingID", id)
}

func (s *bookingService) GetBooking(ctx context.Context, id int64) (*domain.Booking, error) {
	var b *domain.Booking
	err := s.e.read(ctx, func(ctx context.Context) error {
		var err error
		b, err = s.e.booking(ctx, id)
		return err
	})
	return b, err
}

func (s *bookingService) ListBookings(ctx context.Context) ([]domain.Booking, error) {
	var bookings []domain.Booking
	err := s.e.read(ctx, func(ctx context.Context) error {
		var err error
		bookings, err = s.e.store.Bookings.List(ctx)
		return err
	})
	return bookings, err
}

func (s *bookingService) ListBookingsByRenter(ctx context.Context, renter domain.Principal) ([]domain.Booking, error) {
	var bookings []domain.Booking
	err := s.e.read(ctx, func(ctx context.Context) error {
		var err error
		bookings, err = s.e.store.Bookings.ListByRenter(ctx, renter)
		return err
	})
	return bookings, err
}

func (s *bookingService) ListBookingsByOwner(ctx context.Context, owner domain.Principal) ([]domain.Booking, error) {
	var bookings []domain.Booking
	err := s.e.read(ctx, func(ctx context.Context) error {
		var err error
		bookings, err = s.e.store.Bookings.ListByOwner(ctx, owner)
		return err
	})
	return bookings, err
}

// ownerRequested loads a booking the caller owns that is still awaiting a
// decision.
func (s *bookingService) ownerRequested(ctx context.Context, caller domain.Principal, id int64) (*domain.Booking, error) {
	b, err := s.e.booking(ctx, id)
	if err != nil {
		return nil, err
	}
	if b.Owner != caller {
		return nil, domain.ErrNotCarOwner
	}
	if b.Status != domain.BookingStatusRequested {
		return nil, domain.ErrBadStatus
	}
	return b, nil
}

func (s *bookingService) party(ctx context.Context, caller domain.Principal, id int64) (*domain.Booking, domain.Role, error) {
	b, err := s.e.booking(ctx, id)
	if err != nil {
		return nil, "", err
	}
	role, ok := b.RoleOf(caller)
	if !ok {
		return nil, "", domain.ErrNotParty
	}
	return b, role, nil
}

// refund finalises b in status to and only then pushes the full escrow back
// to the renter. The push bypasses the balance ledger and is journalled only.
func (s *bookingService) refund(ctx context.Context, u *unit, b *domain.Booking, to domain.BookingStatus, kind domain.EntryKind) error {
	if err := u.transition(b, to); err != nil {
		return err
	}
	if err := s.e.store.Bookings.Update(ctx, b); err != nil {
		return err
	}
	if err := u.journal(ctx, b.Renter, &b.ID, kind, b.Escrow); err != nil {
		return err
	}
	return u.send(ctx, b.Renter, b.Escrow)
}
