package identity

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/aresmartinezoscar-dev/App-Hotel-Angelina/internal/domain"
	"github.com/aresmartinezoscar-dev/App-Hotel-Angelina/pkg/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestService(t *testing.T, allowRegister bool) *Service {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(domain.Tables...))
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	tokens := NewTokenManager("test-secret", "hotelledger-test", time.Hour)
	return NewService(db, tokens, Options{AllowRegister: allowRegister, BcryptCost: bcrypt.MinCost})
}

func TestSignUpAndSignIn(t *testing.T) {
	s := newTestService(t, true)
	ctx := context.Background()

	var states []State
	unsub, err := s.OnAuthStateChanged(func(st State) { states = append(states, st) })
	require.NoError(t, err)
	defer unsub()

	res, err := s.SignUp(ctx, " Recepcion@Angelina.co ", "secreto", "Recepción")
	require.NoError(t, err)
	assert.Equal(t, "recepcion@angelina.co", res.User.Email)
	assert.Equal(t, "Recepción", res.User.DisplayName)
	assert.Equal(t, LevelOperator, res.User.Level)
	assert.NotEmpty(t, res.Token)

	_, err = s.SignUp(ctx, "recepcion@angelina.co", "otrosecreto", "")
	assert.ErrorIs(t, err, ErrEmailInUse)

	_, err = s.SignIn(ctx, "recepcion@angelina.co", "wrong-pass")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = s.SignIn(ctx, "nadie@angelina.co", "secreto")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	signed, err := s.SignIn(ctx, "RECEPCION@angelina.co", "secreto")
	require.NoError(t, err)
	assert.Equal(t, res.User.UID, signed.User.UID)

	require.NoError(t, s.SignOut(ctx, signed.User.UID))
	require.Len(t, states, 3)
	assert.NotNil(t, states[0].User)
	assert.NotNil(t, states[1].User)
	assert.Nil(t, states[2].User)
	assert.Equal(t, res.User.UID, states[2].UID)
}

func TestSignUpValidation(t *testing.T) {
	s := newTestService(t, true)
	ctx := context.Background()

	_, err := s.SignUp(ctx, "not-an-email", "secreto", "")
	assert.ErrorIs(t, err, ErrInvalidEmail)
	_, err = s.SignUp(ctx, "a@b.co", "12345", "")
	assert.ErrorIs(t, err, ErrWeakPassword)
	_, err = s.SignIn(ctx, "", "secreto")
	assert.ErrorIs(t, err, ErrInvalidEmail)
}

func TestSignUpDisabled(t *testing.T) {
	s := newTestService(t, false)
	_, err := s.SignUp(context.Background(), "a@b.co", "secreto", "")
	assert.ErrorIs(t, err, ErrRegisterDisabled)
}

func TestAuthenticate(t *testing.T) {
	s := newTestService(t, true)
	ctx := context.Background()
	res, err := s.SignUp(ctx, "noche@angelina.co", "secreto", "")
	require.NoError(t, err)

	claims, err := s.Authenticate(ctx, res.Token)
	require.NoError(t, err)
	assert.Equal(t, res.User.UID, claims.UID)
	assert.Equal(t, res.User.Email, claims.Email)

	_, err = s.Authenticate(ctx, res.Token+"x")
	assert.ErrorIs(t, err, ErrInvalidToken)

	other := NewTokenManager("other-secret", "hotelledger-test", time.Hour)
	forged, _, err := other.Generate(res.User)
	require.NoError(t, err)
	_, err = s.Authenticate(ctx, forged)
	assert.ErrorIs(t, err, ErrInvalidToken)

	foreign := NewTokenManager("test-secret", "someone-else", time.Hour)
	forged, _, err = foreign.Generate(res.User)
	require.NoError(t, err)
	_, err = s.Authenticate(ctx, forged)
	assert.ErrorIs(t, err, ErrInvalidToken)

	user := res.User
	uid := user.UID
	require.NoError(t, s.db.Model(&domain.SysOpr{}).Where("email = ?", user.Email).
		Update("status", common.DISABLED).Error)
	_, err = s.User(ctx, uid)
	assert.ErrorIs(t, err, ErrInvalidToken)
	_, err = s.SignIn(ctx, "noche@angelina.co", "secreto")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestSignOutRevokesTokens(t *testing.T) {
	s := newTestService(t, true)
	ctx := context.Background()
	first, err := s.SignUp(ctx, "turno@angelina.co", "secreto", "")
	require.NoError(t, err)
	second, err := s.SignIn(ctx, "turno@angelina.co", "secreto")
	require.NoError(t, err)

	require.NoError(t, s.SignOut(ctx, first.User.UID))
	_, err = s.Authenticate(ctx, first.Token)
	assert.ErrorIs(t, err, ErrTokenRevoked)
	_, err = s.Authenticate(ctx, second.Token)
	assert.ErrorIs(t, err, ErrTokenRevoked)

	again, err := s.SignIn(ctx, "turno@angelina.co", "secreto")
	require.NoError(t, err)
	assert.Equal(t, int64(1), again.User.TokenVersion)
	claims, err := s.Authenticate(ctx, again.Token)
	require.NoError(t, err)
	assert.Equal(t, int64(1), claims.Version)

	assert.ErrorIs(t, s.SignOut(ctx, "not-a-uid"), ErrInvalidToken)
}

func TestEnsureOperatorIsIdempotent(t *testing.T) {
	s := newTestService(t, false)
	ctx := context.Background()
	require.NoError(t, s.EnsureOperator(ctx, "admin@angelina.co", "angelina", "Admin", LevelSuper))
	require.NoError(t, s.EnsureOperator(ctx, "admin@angelina.co", "otra-clave", "Admin", LevelSuper))

	res, err := s.SignIn(ctx, "admin@angelina.co", "angelina")
	require.NoError(t, err)
	assert.Equal(t, LevelSuper, res.User.Level)
}

func TestOnAuthStateChangedUnsubscribe(t *testing.T) {
	s := newTestService(t, true)
	var calls int
	unsub, err := s.OnAuthStateChanged(func(State) { calls++ })
	require.NoError(t, err)
	s.SignOut(context.Background(), "1")
	unsub()
	s.SignOut(context.Background(), "1")
	assert.Equal(t, 1, calls)
}

func TestTokenExpired(t *testing.T) {
	m := NewTokenManager("s", "i", time.Hour)
	m.duration = -time.Minute
	token, _, err := m.Generate(User{UID: "1", Email: "a@b.co"})
	require.NoError(t, err)
	_, err = m.Validate(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
