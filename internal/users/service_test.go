package users

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/angelmondragon/minimart-backend/pkg/config"
	"github.com/angelmondragon/minimart-backend/pkg/db/dbtest"
	"github.com/angelmondragon/minimart-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/minimart-backend/pkg/errors"
	"github.com/angelmondragon/minimart-backend/pkg/security"
)

var fastArgon = config.PasswordConfig{ArgonMemoryKB: 8, ArgonTime: 1, ArgonParallelism: 1, ArgonSaltLen: 16, ArgonKeyLen: 32}

type revokeRecorder struct {
	revoked []uuid.UUID
}

func (r *revokeRecorder) RevokeAll(_ context.Context, userID uuid.UUID) error {
	r.revoked = append(r.revoked, userID)
	return nil
}

func TestUpdateMe(t *testing.T) {
	client := dbtest.Open(t)
	repo := NewRepository(client.DB())
	svc, err := NewService(repo, security.NewHasher(fastArgon), &revokeRecorder{})
	require.NoError(t, err)
	ctx := context.Background()

	user := dbtest.SeedUser(t, client, enums.UserRoleBuyer)
	name, phone, address := " Kim ", "010-1234", "Seoul"
	got, err := svc.UpdateMe(ctx, user.ID, UpdateProfileInput{Name: &name, Phone: &phone, Address: &address})
	require.NoError(t, err)
	require.Equal(t, "Kim", got.Name)
	require.Equal(t, "010-1234", *got.Phone)

	empty := ""
	got, err = svc.UpdateMe(ctx, user.ID, UpdateProfileInput{Phone: &empty})
	require.NoError(t, err)
	require.Nil(t, got.Phone)
	require.Equal(t, "Seoul", *got.Address)

	blank := "  "
	_, err = svc.UpdateMe(ctx, user.ID, UpdateProfileInput{Name: &blank})
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

func TestChangePassword(t *testing.T) {
	client := dbtest.Open(t)
	repo := NewRepository(client.DB())
	hasher := security.NewHasher(fastArgon)
	svc, err := NewService(repo, hasher, &revokeRecorder{})
	require.NoError(t, err)
	ctx := context.Background()

	hash, err := hasher.Hash("original-pass")
	require.NoError(t, err)
	user, err := repo.Create(ctx, CreateUserDTO{Email: "pw@example.com", PasswordHash: hash, Name: "pw"})
	require.NoError(t, err)
	require.Equal(t, enums.UserRoleBuyer, user.Role)
	require.True(t, user.IsActive)

	err = svc.ChangePassword(ctx, user.ID, "wrong-pass", "next-password")
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeUnauthorized))

	err = svc.ChangePassword(ctx, user.ID, "original-pass", "short")
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	require.NoError(t, svc.ChangePassword(ctx, user.ID, "original-pass", "next-password"))
	stored, err := repo.FindByID(ctx, user.ID)
	require.NoError(t, err)
	ok, err := hasher.Verify("next-password", stored.PasswordHash)
	require.NoError(t, err)
	require.True(t, ok)
}

func TestDeleteMeDeactivatesAndRevokes(t *testing.T) {
	client := dbtest.Open(t)
	repo := NewRepository(client.DB())
	sessions := &revokeRecorder{}
	svc, err := NewService(repo, security.NewHasher(fastArgon), sessions)
	require.NoError(t, err)
	ctx := context.Background()

	user := dbtest.SeedUser(t, client, enums.UserRoleBuyer)
	require.NoError(t, svc.DeleteMe(ctx, user.ID))

	stored, err := repo.FindByID(ctx, user.ID)
	require.NoError(t, err)
	require.False(t, stored.IsActive)
	require.Equal(t, []uuid.UUID{user.ID}, sessions.revoked)

	err = svc.DeleteMe(ctx, uuid.New())
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
	require.Len(t, sessions.revoked, 1)
}

func TestFindActiveByPhoneSkipsClosedAccounts(t *testing.T) {
	client := dbtest.Open(t)
	repo := NewRepository(client.DB())
	ctx := context.Background()

	phone := "010-5555-0000"
	open, err := repo.Create(ctx, CreateUserDTO{Email: "open@example.com", PasswordHash: "x", Name: "open", Phone: &phone})
	require.NoError(t, err)

	found, err := repo.FindActiveByPhone(ctx, phone)
	require.NoError(t, err)
	require.Equal(t, open.ID, found.ID)

	require.NoError(t, repo.Deactivate(ctx, open.ID))
	_, err = repo.FindActiveByPhone(ctx, phone)
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestMaskEmail(t *testing.T) {
	cases := map[string]string{
		"test@google.com": "t***@google.com",
		"a@b.com":         "a@b.com",
		"김민수@example.kr":  "김**@example.kr",
		"no-at-sign":      "no-at-sign",
	}
	for in, want := range cases {
		require.Equal(t, want, MaskEmail(in), in)
	}
}
