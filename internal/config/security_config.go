package config

type SecurityLevel int

const (
	SecurityPublic SecurityLevel = iota // No authentication
	SecurityAccess                      // Access token required; subject is the caller principal
)

// EndpointSecurityConfig maps methods to their required security level
var EndpointSecurityConfig = map[string]SecurityLevel{
	// Queries - Public
	"/carshare.v1.CarShareService/GetRoles":          SecurityPublic,
	"/carshare.v1.CarShareService/GetListing":        SecurityPublic,
	"/carshare.v1.CarShareService/ListListings":      SecurityPublic,
	"/carshare.v1.CarShareService/GetBooking":        SecurityPublic,
	"/carshare.v1.CarShareService/ListBookings":      SecurityPublic,
	"/carshare.v1.CarShareService/GetBalance":        SecurityPublic,
	"/carshare.v1.CarShareService/GetRating":         SecurityPublic,
	"/carshare.v1.CarShareService/GetReputation":     SecurityPublic,
	"/carshare.v1.CarShareService/GetLedgerSummary":  SecurityPublic,
	"/carshare.v1.CarShareService/ListLedgerEntries": SecurityPublic,

	// Role Registry - Access Protected
	"/carshare.v1.CarShareService/WhoAmI":         SecurityAccess,
	"/carshare.v1.CarShareService/Register":       SecurityAccess,
	"/carshare.v1.CarShareService/SetRoles":       SecurityAccess,
	"/carshare.v1.CarShareService/SetPlatformFee": SecurityAccess,

	// Listing Catalog - Access Protected
	"/carshare.v1.CarShareService/CreateListing":    SecurityAccess,
	"/carshare.v1.CarShareService/EditListing":      SecurityAccess,
	"/carshare.v1.CarShareService/SetListingActive": SecurityAccess,
	"/carshare.v1.CarShareService/VerifyInsurance":  SecurityAccess,

	// Booking lifecycle - Access Protected
	"/carshare.v1.CarShareService/RequestBooking":     SecurityAccess,
	"/carshare.v1.CarShareService/ApproveBooking":     SecurityAccess,
	"/carshare.v1.CarShareService/RejectBooking":      SecurityAccess,
	"/carshare.v1.CarShareService/CancelBeforeActive": SecurityAccess,
	"/carshare.v1.CarShareService/ConfirmPickup":      SecurityAccess,
	"/carshare.v1.CarShareService/ConfirmReturn":      SecurityAccess,
	"/carshare.v1.CarShareService/OpenDispute":        SecurityAccess,
	"/carshare.v1.CarShareService/ResolveDispute":     SecurityAccess,
	"/carshare.v1.CarShareService/RateOwner":          SecurityAccess,
	"/carshare.v1.CarShareService/RateRenter":         SecurityAccess,
	"/carshare.v1.CarShareService/Withdraw":           SecurityAccess,
}

// GetSecurityLevel returns the security level for a given method
func GetSecurityLevel(method string) SecurityLevel {
	if level, exists := EndpointSecurityConfig[method]; exists {
		return level
	}
	// Default to highest security for unknown endpoints
	return SecurityAccess
}
