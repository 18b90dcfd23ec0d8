// Package identity authenticates hotel operators and announces sign-in and
// sign-out to the rest of the application.
package identity

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/aresmartinezoscar-dev/App-Hotel-Angelina/internal/domain"
	"github.com/aresmartinezoscar-dev/App-Hotel-Angelina/pkg/common"
	"github.com/asaskevich/EventBus"
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailInUse         = errors.New("email already registered")
	ErrWeakPassword       = errors.New("password must have at least 6 characters")
	ErrInvalidEmail       = errors.New("invalid email")
	ErrInvalidToken       = errors.New("invalid or expired token")
	ErrRegisterDisabled   = errors.New("registration disabled")
	ErrTokenRevoked       = errors.New("session signed out")
)

const topicAuthState = "identity:state"

const (
	LevelSuper    = "super"
	LevelOperator = "operator"
)

// User is the public view of an operator.
type User struct {
	UID         string `json:"uid"`
	Email       string `json:"email"`
	DisplayName string `json:"displayName,omitempty"`
	Level       string `json:"level"`

	// TokenVersion is copied into issued tokens.
	TokenVersion int64 `json:"-"`
}

// State is an auth state change. User is nil when UID signed out.
type State struct {
	UID  string
	User *User
}

// AuthResult is returned by a successful sign-in or sign-up.
type AuthResult struct {
	User      User      `json:"user"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

type Options struct {
	AllowRegister bool
	BcryptCost    int
}

// Service stores operators in the sys_opr table.
type Service struct {
	db       *gorm.DB
	hasher   *PasswordHasher
	tokens   *TokenManager
	bus      EventBus.Bus
	validate *validator.Validate
	opts     Options
}

func NewService(db *gorm.DB, tokens *TokenManager, opts Options) *Service {
	return &Service{
		db:       db,
		hasher:   NewPasswordHasher(opts.BcryptCost),
		tokens:   tokens,
		bus:      EventBus.New(),
		validate: validator.New(),
		opts:     opts,
	}
}

func (s *Service) Tokens() *TokenManager {
	return s.tokens
}

func toUser(op domain.SysOpr) User {
	return User{
		UID:          strconv.FormatInt(op.ID, 10),
		Email:        op.Email,
		DisplayName:  op.Realname,
		Level:        op.Level,
		TokenVersion: op.TokenVersion,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *Service) checkEmail(email string) error {
	if err := s.validate.Var(email, "required,email"); err != nil {
		return errors.Wrap(ErrInvalidEmail, email)
	}
	return nil
}

func (s *Service) issue(op domain.SysOpr) (*AuthResult, error) {
	user := toUser(op)
	token, expires, err := s.tokens.Generate(user)
	if err != nil {
		return nil, err
	}
	return &AuthResult{User: user, Token: token, ExpiresAt: expires}, nil
}

// SignIn checks email and password and announces the signed-in operator.
func (s *Service) SignIn(ctx context.Context, email, password string) (*AuthResult, error) {
	email = normalizeEmail(email)
	if err := s.checkEmail(email); err != nil {
		return nil, err
	}
	var op domain.SysOpr
	err := s.db.WithContext(ctx).Where("email = ?", email).First(&op).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if op.Status != common.ENABLED || !s.hasher.Verify(password, op.Password) {
		return nil, ErrInvalidCredentials
	}

	now := time.Now()
	if err := s.db.WithContext(ctx).Model(&op).Update("last_login", now).Error; err != nil {
		zap.L().Warn("update last login failed",
			zap.String("namespace", "identity"),
			zap.Error(err))
	}
	res, err := s.issue(op)
	if err != nil {
		return nil, err
	}
	s.publish(State{UID: res.User.UID, User: &res.User})
	return res, nil
}

// SignUp registers an operator and signs it in.
func (s *Service) SignUp(ctx context.Context, email, password, displayName string) (*AuthResult, error) {
	if !s.opts.AllowRegister {
		return nil, ErrRegisterDisabled
	}
	op, err := s.createOperator(ctx, email, password, displayName, LevelOperator)
	if err != nil {
		return nil, err
	}
	res, err := s.issue(*op)
	if err != nil {
		return nil, err
	}
	s.publish(State{UID: res.User.UID, User: &res.User})
	return res, nil
}

func (s *Service) createOperator(ctx context.Context, email, password, displayName, level string) (*domain.SysOpr, error) {
	email = normalizeEmail(email)
	if err := s.checkEmail(email); err != nil {
		return nil, err
	}
	if len(password) < MinPasswordLength {
		return nil, ErrWeakPassword
	}
	var count int64
	if err := s.db.WithContext(ctx).Model(&domain.SysOpr{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, ErrEmailInUse
	}
	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, err
	}
	op := &domain.SysOpr{
		ID:       common.UUIDint64(),
		Realname: strings.TrimSpace(displayName),
		Email:    email,
		Password: hash,
		Level:    level,
		Status:   common.ENABLED,
	}
	if err := s.db.WithContext(ctx).Create(op).Error; err != nil {
		return nil, err
	}
	return op, nil
}

// EnsureOperator creates the operator unless its email is already taken.
func (s *Service) EnsureOperator(ctx context.Context, email, password, displayName, level string) error {
	_, err := s.createOperator(ctx, email, password, displayName, level)
	if errors.Is(err, ErrEmailInUse) {
		return nil
	}
	return err
}

// SignOut revokes every token issued to uid so far and announces the
// sign-out. The announcement is made even when the revocation fails.
func (s *Service) SignOut(ctx context.Context, uid string) error {
	defer s.publish(State{UID: uid})
	id, err := strconv.ParseInt(uid, 10, 64)
	if err != nil {
		return ErrInvalidToken
	}
	err = s.db.WithContext(ctx).Model(&domain.SysOpr{}).Where("id = ?", id).
		Update("token_version", gorm.Expr("token_version + 1")).Error
	return errors.Wrap(err, "revoke tokens")
}

// Authenticate resolves a session token to the claims of an enabled
// operator. Tokens issued before the operator's last sign-out fail with
// ErrTokenRevoked.
func (s *Service) Authenticate(ctx context.Context, token string) (*Claims, error) {
	claims, err := s.tokens.Validate(token)
	if err != nil {
		return nil, err
	}
	op, err := s.operator(ctx, claims.UID)
	if err != nil {
		return nil, err
	}
	if claims.Version != op.TokenVersion {
		return nil, ErrTokenRevoked
	}
	return claims, nil
}

// User loads an enabled operator by uid.
func (s *Service) User(ctx context.Context, uid string) (User, error) {
	op, err := s.operator(ctx, uid)
	if err != nil {
		return User{}, err
	}
	return toUser(op), nil
}

func (s *Service) operator(ctx context.Context, uid string) (domain.SysOpr, error) {
	id, err := strconv.ParseInt(uid, 10, 64)
	if err != nil {
		return domain.SysOpr{}, ErrInvalidToken
	}
	var op domain.SysOpr
	err = s.db.WithContext(ctx).Where("id = ?", id).First(&op).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.SysOpr{}, ErrInvalidToken
	}
	if err != nil {
		return domain.SysOpr{}, err
	}
	if op.Status != common.ENABLED {
		return domain.SysOpr{}, ErrInvalidToken
	}
	return op, nil
}

// OnAuthStateChanged registers fn for every sign-in and sign-out. fn runs
// on the caller's goroutine and must not call SignIn, SignUp or SignOut.
func (s *Service) OnAuthStateChanged(fn func(State)) (func(), error) {
	if err := s.bus.Subscribe(topicAuthState, fn); err != nil {
		return nil, err
	}
	return func() {
		_ = s.bus.Unsubscribe(topicAuthState, fn)
	}, nil
}

func (s *Service) publish(st State) {
	s.bus.Publish(topicAuthState, st)
}
