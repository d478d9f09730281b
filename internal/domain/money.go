package domain

// SecondsPerDay is the length of one billable rental day.
const SecondsPerDay = 86400

// RentalDays returns floor((end-start)/86400). It fails with ErrInvalidRange
// when end <= start or the span is shorter than a full day.
func RentalDays(start, end int64) (int64, error) {
	if end <= start {
		return 0, ErrInvalidRange
	}
	days := (end - start) / SecondsPerDay
	if days < 1 {
		return 0, ErrInvalidRange
	}
	return days, nil
}

// Quote is the cost snapshot a booking takes from its listing.
type Quote struct {
	Days       int64  `json:"days"`
	DailyPrice Amount `json:"daily_price"`
	RentalCost Amount `json:"rental_cost"`
	Deposit    Amount `json:"deposit"`
	Escrow     Amount `json:"escrow"`
}

// QuoteBooking prices a rental of listing l from start to end.
func QuoteBooking(l *Listing, start, end int64) (Quote, error) {
	days, err := RentalDays(start, end)
	if err != nil {
		return Quote{}, err
	}
	cost := l.DailyPrice.MulInt64(days)
	return Quote{
		Days:       days,
		DailyPrice: l.DailyPrice,
		RentalCost: cost,
		Deposit:    l.SecurityDeposit,
		Escrow:     cost.Add(l.SecurityDeposit),
	}, nil
}

// PlatformFee returns floor(amount * bps / 10000).
func PlatformFee(amount Amount, bps int64) Amount {
	if amount.Sign() <= 0 || bps <= 0 {
		return Amount{}
	}
	return amount.MulDivFloor(bps, BpsDenominator)
}

// Split is how a settled escrow is distributed across the ledger.
type Split struct {
	Owner    Amount `json:"owner"`
	Renter   Amount `json:"renter"`
	Platform Amount `json:"platform"`
}

func (s Split) Total() Amount { return s.Owner.Add(s.Renter).Add(s.Platform) }

// CompletionSplit settles a booking that finished without dispute. The fee
// applies to the rental cost only; the deposit returns to the renter whole.
func CompletionSplit(b *Booking, feeBps int64) Split {
	fee := PlatformFee(b.RentalCost, feeBps)
	return Split{
		Owner:    b.RentalCost.Sub(fee),
		Renter:   b.Deposit,
		Platform: fee,
	}
}

// DisputeSplit settles an arbitrated booking. The fee is taken from the
// owner's share only.
func DisputeSplit(b *Booking, ownerPayout, renterPayout Amount, feeBps int64) (Split, error) {
	if ownerPayout.Sign() < 0 || renterPayout.Sign() < 0 {
		return Split{}, ErrSplitMismatch
	}
	if !ownerPayout.Add(renterPayout).Equal(b.Escrow) {
		return Split{}, ErrSplitMismatch
	}
	fee := PlatformFee(ownerPayout, feeBps)
	return Split{
		Owner:    ownerPayout.Sub(fee),
		Renter:   renterPayout,
		Platform: fee,
	}, nil
}
