package enums

import "fmt"

// VerificationPurpose scopes a verification code to one flow.
type VerificationPurpose string

const VerificationPurposePasswordReset VerificationPurpose = "password_reset"

var validVerificationPurposes = []VerificationPurpose{
	VerificationPurposePasswordReset,
}

// String implements fmt.Stringer.
func (v VerificationPurpose) String() string {
	return string(v)
}

// IsValid reports whether the value is a known VerificationPurpose.
func (v VerificationPurpose) IsValid() bool {
	for _, candidate := range validVerificationPurposes {
		if candidate == v {
			return true
		}
	}
	return false
}

// ParseVerificationPurpose converts raw input into a VerificationPurpose.
func ParseVerificationPurpose(value string) (VerificationPurpose, error) {
	for _, candidate := range validVerificationPurposes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid verification purpose %q", value)
}
