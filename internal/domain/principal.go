package domain

import (
	"encoding/hex"
	"strings"

	"golang.org/x/crypto/sha3"
)

// Principal identifies a caller. Hex addresses are kept in EIP-55 checksum
// form so the same account always compares equal.
type Principal string

// ParsePrincipal canonicalises a caller identity. A 0x-prefixed 20-byte hex
// address is returned in checksum case; any other non-blank token is treated
// as an opaque identity.
func ParsePrincipal(s string) (Principal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", ErrInvalidPrincipal
	}
	if !isHexAddress(s) {
		if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
			return "", ErrInvalidPrincipal
		}
		return Principal(s), nil
	}
	return Principal(checksumAddress(strings.ToLower(s[2:]))), nil
}

// MustPrincipal is ParsePrincipal for constants and tests.
func MustPrincipal(s string) Principal {
	p, err := ParsePrincipal(s)
	if err != nil {
		panic(err)
	}
	return p
}

func (p Principal) String() string { return string(p) }

func (p Principal) IsZero() bool { return p == "" }

func isHexAddress(s string) bool {
	if len(s) != 42 || (s[:2] != "0x" && s[:2] != "0X") {
		return false
	}
	_, err := hex.DecodeString(s[2:])
	return err == nil
}

func checksumAddress(lowerHex string) string {
	h := sha3.NewLegacyKeccak256()
	h.Write([]byte(lowerHex))
	digest := hex.EncodeToString(h.Sum(nil))

	out := make([]byte, 0, 42)
	out = append(out, '0', 'x')
	for i := 0; i < len(lowerHex); i++ {
		c := lowerHex[i]
		if c >= 'a' && c <= 'f' && digest[i] >= '8' {
			c -= 'a' - 'A'
		}
		out = append(out, c)
	}
	return string(out)
}
