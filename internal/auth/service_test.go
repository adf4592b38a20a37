package auth_test

import (
	"testing"

	"github.com/hugh/recipe-api/internal/auth"
	"github.com/hugh/recipe-api/internal/database/models"
	"github.com/hugh/recipe-api/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(t *testing.T) *auth.Service {
	t.Helper()
	db := testutil.SetupTestDB(t)
	t.Cleanup(func() { testutil.CleanupTestDB(t, db) })
	return auth.NewService(db, testutil.CreateTestJWTService())
}

func TestService_CreateUser(t *testing.T) {
	svc := newTestService(t)
	ctx := testutil.TestContext(t)

	t.Run("create user with email", func(t *testing.T) {
		user, err := svc.CreateUser(ctx, "test001@azgmail.com", "Test001")
		require.NoError(t, err)

		assert.Equal(t, "test001@azgmail.com", user.Email)
		assert.True(t, user.CheckPassword("Test001"))
		assert.NotEqual(t, "Test001", user.PasswordHash)
		assert.True(t, user.IsActive)
		assert.False(t, user.IsStaff)
		assert.False(t, user.IsSuperuser)
	})

	t.Run("email is normalized", func(t *testing.T) {
		user, err := svc.CreateUser(ctx, "Test002@AZGMAIL.COM", "Test001")
		require.NoError(t, err)
		assert.Equal(t, "test002@azgmail.com", user.Email)
	})

	t.Run("empty email fails", func(t *testing.T) {
		_, err := svc.CreateUser(ctx, "", "Test123")
		assert.ErrorIs(t, err, auth.ErrEmailRequired)

		_, err = svc.CreateUser(ctx, "   ", "Test123")
		assert.ErrorIs(t, err, auth.ErrEmailRequired)
	})

	t.Run("duplicate email is case-insensitive", func(t *testing.T) {
		_, err := svc.CreateUser(ctx, "dup@example.com", "pass1234")
		require.NoError(t, err)

		_, err = svc.CreateUser(ctx, "DUP@Example.com", "pass1234")
		assert.ErrorIs(t, err, auth.ErrUserExists)
	})

	t.Run("empty password is unusable", func(t *testing.T) {
		user, err := svc.CreateUser(ctx, "nopass@example.com", "")
		require.NoError(t, err)
		assert.False(t, user.CheckPassword(""))
	})

	t.Run("name option", func(t *testing.T) {
		user, err := svc.CreateUser(ctx, "named@example.com", "pass1234", auth.WithName("Julia"))
		require.NoError(t, err)
		assert.Equal(t, "Julia", user.Name)
	})
}

func TestService_CreateSuperuser(t *testing.T) {
	svc := newTestService(t)
	ctx := testutil.TestContext(t)

	user, err := svc.CreateSuperuser(ctx, "test001@azgmail.com", "Test001")
	require.NoError(t, err)

	assert.True(t, user.IsSuperuser)
	assert.True(t, user.IsStaff)

	stored, err := svc.GetUserByID(ctx, user.ID)
	require.NoError(t, err)
	assert.True(t, stored.IsSuperuser)
	assert.True(t, stored.IsStaff)
}

func TestService_Login(t *testing.T) {
	svc := newTestService(t)
	ctx := testutil.TestContext(t)

	_, err := svc.Register(ctx, auth.RegisterInput{Email: "login@example.com", Password: "secret123", Name: "Login"})
	require.NoError(t, err)

	t.Run("valid credentials", func(t *testing.T) {
		resp, err := svc.Login(ctx, auth.LoginInput{Email: "LOGIN@example.com", Password: "secret123"})
		require.NoError(t, err)
		assert.NotEmpty(t, resp.Token)
		assert.Equal(t, "login@example.com", resp.User.Email)
	})

	t.Run("wrong password", func(t *testing.T) {
		_, err := svc.Login(ctx, auth.LoginInput{Email: "login@example.com", Password: "wrong"})
		assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
	})

	t.Run("unknown user", func(t *testing.T) {
		_, err := svc.Login(ctx, auth.LoginInput{Email: "nobody@example.com", Password: "secret123"})
		assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
	})
}

func TestService_Login_InactiveUser(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)
	svc := auth.NewService(db, testutil.CreateTestJWTService())
	ctx := testutil.TestContext(t)

	user := testutil.CreateTestUser(t, db)
	require.NoError(t, db.Model(user).Update("is_active", false).Error)

	_, err := svc.Login(ctx, auth.LoginInput{Email: user.Email, Password: testutil.TestPassword})
	assert.ErrorIs(t, err, auth.ErrInactiveUser)
}

func TestService_UpdateUser(t *testing.T) {
	svc := newTestService(t)
	ctx := testutil.TestContext(t)

	user, err := svc.CreateUser(ctx, "update@example.com", "oldpass1")
	require.NoError(t, err)

	name := "New Name"
	password := "newpass1"
	updated, err := svc.UpdateUser(ctx, user.ID, auth.UpdateUserInput{Name: &name, Password: &password})
	require.NoError(t, err)
	assert.Equal(t, "New Name", updated.Name)
	assert.True(t, updated.CheckPassword("newpass1"))
	assert.False(t, updated.CheckPassword("oldpass1"))

	_, err = svc.UpdateUser(ctx, 9999, auth.UpdateUserInput{Name: &name})
	assert.ErrorIs(t, err, auth.ErrUserNotFound)
}

func TestNormalizeEmail(t *testing.T) {
	assert.Equal(t, "test001@azgmail.com", auth.NormalizeEmail("test001@AZGMAIL.COM"))
	assert.Equal(t, "a@b.co", auth.NormalizeEmail("  A@B.CO "))
	assert.Equal(t, "", auth.NormalizeEmail(""))
}

func TestHashPassword(t *testing.T) {
	hash, err := auth.HashPassword("secret")
	require.NoError(t, err)
	user := &models.User{PasswordHash: hash}
	assert.True(t, user.CheckPassword("secret"))
	assert.False(t, user.CheckPassword("other"))
}
