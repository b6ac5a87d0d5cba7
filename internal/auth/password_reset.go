package auth

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/angelmondragon/minimart-backend/internal/users"
	"github.com/angelmondragon/minimart-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/minimart-backend/pkg/errors"
)

// PasswordResetConfirmRequest completes a reset with the emailed code.
type PasswordResetConfirmRequest struct {
	Email       string `json:"email" validate:"required,email"`
	Code        string `json:"code" validate:"required,len=6,numeric"`
	NewPassword string `json:"new_password" validate:"required,min=8"`
}

// RequestPasswordReset issues a reset code for local accounts. Unknown emails
// succeed silently so the endpoint does not reveal which emails exist.
func (s *service) RequestPasswordReset(ctx context.Context, email string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "email is required")
	}
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup user")
	}
	if user.Provider != enums.AuthProviderLocal || !user.IsActive {
		return nil
	}
	return s.verification.Issue(ctx, enums.VerificationPurposePasswordReset, email)
}

func (s *service) ConfirmPasswordReset(ctx context.Context, req PasswordResetConfirmRequest) error {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "email is required")
	}
	if err := users.ValidatePassword(req.NewPassword); err != nil {
		return err
	}
	if err := s.verification.Verify(ctx, enums.VerificationPurposePasswordReset, email, req.Code); err != nil {
		return err
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "user not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup user")
	}
	hash, err := s.hasher.Hash(req.NewPassword)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
	}
	if err := s.users.UpdatePasswordHash(ctx, user.ID, hash); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: update password")
	}
	return nil
}

// FindEmailByPhone tells a user which email their phone number is registered
// under, masked so the full address is never disclosed.
func (s *service) FindEmailByPhone(ctx context.Context, phone string) (string, error) {
	phone = strings.TrimSpace(phone)
	if phone == "" {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "phone is required")
	}
	user, err := s.users.FindActiveByPhone(ctx, phone)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "no account registered with this phone")
		}
		return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup user")
	}
	return users.MaskEmail(user.Email), nil
}
