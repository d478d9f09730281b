package domain

import "time"

// MaxPlatformFeeBps caps the platform fee at 10%.
const MaxPlatformFeeBps = 1000

// BpsDenominator converts basis points into a fraction.
const BpsDenominator = 10000

type Role string

const (
	RoleOwner             Role = "OWNER"
	RoleRenter            Role = "RENTER"
	RoleInsuranceVerifier Role = "INSURANCE_VERIFIER"
	RoleArbitrator        Role = "ARBITRATOR"
	RolePlatformOwner     Role = "PLATFORM_OWNER"
)

// RoleAssignment is the process-wide configuration singleton. Only the
// platform owner may change it.
type RoleAssignment struct {
	PlatformOwner     Principal `json:"platform_owner"`
	InsuranceVerifier Principal `json:"insurance_verifier"`
	Arbitrator        Principal `json:"arbitrator"`
	PlatformFeeBps    int64     `json:"platform_fee_bps"`
}

func (r RoleAssignment) IsPlatformOwner(p Principal) bool {
	return !p.IsZero() && p == r.PlatformOwner
}

func (r RoleAssignment) IsInsuranceVerifier(p Principal) bool {
	return !p.IsZero() && p == r.InsuranceVerifier
}

func (r RoleAssignment) IsArbitrator(p Principal) bool {
	return !p.IsZero() && p == r.Arbitrator
}

// HasConflict reports whether p holds an oversight role and therefore may not
// list or rent cars.
func (r RoleAssignment) HasConflict(p Principal) bool {
	return r.IsInsuranceVerifier(p) || r.IsArbitrator(p)
}

// Capabilities lists the platform-wide roles p holds. Owner and Renter are
// per-booking roles and are resolved with Booking.RoleOf.
func (r RoleAssignment) Capabilities(p Principal) []Role {
	var roles []Role
	if r.IsPlatformOwner(p) {
		roles = append(roles, RolePlatformOwner)
	}
	if r.IsInsuranceVerifier(p) {
		roles = append(roles, RoleInsuranceVerifier)
	}
	if r.IsArbitrator(p) {
		roles = append(roles, RoleArbitrator)
	}
	return roles
}

type Participant struct {
	Principal    Principal `json:"principal"`
	Registered   bool      `json:"registered"`
	RegisteredOn time.Time `json:"registered_on"`
}
