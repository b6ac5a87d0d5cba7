package enums

import "fmt"

// AuthProvider records how an account signs in.
type AuthProvider string

const (
	AuthProviderLocal  AuthProvider = "LOCAL"
	AuthProviderGoogle AuthProvider = "GOOGLE"
	AuthProviderKakao  AuthProvider = "KAKAO"
)

var validAuthProviders = []AuthProvider{
	AuthProviderLocal,
	AuthProviderGoogle,
	AuthProviderKakao,
}

// String implements fmt.Stringer.
func (v AuthProvider) String() string {
	return string(v)
}

// IsValid reports whether the value is a known AuthProvider.
func (v AuthProvider) IsValid() bool {
	for _, candidate := range validAuthProviders {
		if candidate == v {
			return true
		}
	}
	return false
}

// ParseAuthProvider converts raw input into a AuthProvider.
func ParseAuthProvider(value string) (AuthProvider, error) {
	for _, candidate := range validAuthProviders {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid auth provider %q", value)
}
