package services

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/vncsmyrnk/polls/internal/core/domain"
	"github.com/vncsmyrnk/polls/internal/core/ports"
)

const DefaultTokenTTL = 15 * time.Minute

const (
	minPasswordLength = 8
	// bcrypt ignores everything past 72 bytes.
	maxPasswordBytes = 72
	maxNameLength    = 255

	msgEmailTaken = "The email has already been taken."
)

type AuthService struct {
	userRepo  ports.UserRepository
	authRepo  ports.AuthRepository
	jwtSecret []byte
	ttl       time.Duration
	now       ports.Clock
}

func NewAuthService(userRepo ports.UserRepository, authRepo ports.AuthRepository, secret string, ttl time.Duration) *AuthService {
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	return &AuthService{
		userRepo:  userRepo,
		authRepo:  authRepo,
		jwtSecret: []byte(secret),
		ttl:       ttl,
		now:       time.Now,
	}
}

func (s *AuthService) Register(ctx context.Context, input ports.RegisterInput) (*domain.Session, error) {
	verr := domain.NewValidationError()
	wrong := typeErrors(verr, input.WrongType)
	email := normalizeEmail(input.Email)

	if !wrong["name"] {
		switch {
		case strings.TrimSpace(input.Name) == "":
			verr.Add("name", "The name field is required.")
		case utf8.RuneCountInString(input.Name) > maxNameLength:
			verr.Add("name", "The name field must not be greater than 255 characters.")
		}
	}

	if !wrong["email"] {
		switch {
		case email == "":
			verr.Add("email", "The email field is required.")
		case !validEmail(email):
			verr.Add("email", "The email field must be a valid email address.")
		default:
			existing, err := s.userRepo.GetByEmail(ctx, email)
			if err != nil {
				return nil, fmt.Errorf("failed to get user: %w", err)
			}
			if existing != nil {
				verr.Add("email", msgEmailTaken)
			}
		}
	}

	if !wrong["password"] {
		switch {
		case input.Password == "":
			verr.Add("password", "The password field is required.")
		case utf8.RuneCountInString(input.Password) < minPasswordLength:
			verr.Add("password", "The password field must be at least 8 characters.")
		case len(input.Password) > maxPasswordBytes:
			verr.Add("password", "The password field must not be greater than 72 characters.")
		case !wrong["password_confirmation"] &&
			(input.PasswordConfirmation == nil || *input.PasswordConfirmation != input.Password):
			verr.Add("password", "The password field confirmation does not match.")
		}
	}

	if err := verr.Err(); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &domain.User{
		Email:        email,
		Name:         strings.TrimSpace(input.Name),
		PasswordHash: string(hash),
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, domain.ErrEmailTaken) {
			return nil, domain.FieldError(err, "email", msgEmailTaken)
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return s.session(user)
}

// Login reports an unknown email and a wrong password alike as
// domain.ErrInvalidCredentials.
func (s *AuthService) Login(ctx context.Context, input ports.LoginInput) (*domain.Session, error) {
	verr := domain.NewValidationError()
	wrong := typeErrors(verr, input.WrongType)
	email := normalizeEmail(input.Email)

	if !wrong["email"] && email == "" {
		verr.Add("email", "The email field is required.")
	}
	if !wrong["password"] && input.Password == "" {
		verr.Add("password", "The password field is required.")
	}
	if err := verr.Err(); err != nil {
		return nil, err
	}

	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil || user.PasswordHash == "" {
		return nil, domain.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)); err != nil {
		return nil, domain.ErrInvalidCredentials
	}

	return s.session(user)
}

// Logout revokes the token the caller authenticated with. Other tokens of the
// same user stay valid.
func (s *AuthService) Logout(ctx context.Context, token *domain.AccessToken) error {
	if token == nil {
		return domain.ErrUnauthorized
	}
	if err := s.authRepo.RevokeToken(ctx, token); err != nil {
		return fmt.Errorf("failed to revoke token: %w", err)
	}
	return nil
}

// IssueForEmail finds or creates the user behind email and signs a token for
// it. admin only ever promotes; it never revokes an existing privilege.
func (s *AuthService) IssueForEmail(ctx context.Context, email, name string, admin bool) (string, *domain.User, error) {
	email = normalizeEmail(email)
	if email == "" {
		return "", nil, errors.New("email is required")
	}

	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return "", nil, fmt.Errorf("failed to get user: %w", err)
	}

	if user == nil {
		user = &domain.User{
			Email:   email,
			Name:    name,
			IsAdmin: admin,
		}
		if err := s.userRepo.Create(ctx, user); err != nil {
			return "", nil, fmt.Errorf("failed to create user: %w", err)
		}
	} else if admin && !user.IsAdmin {
		if err := s.userRepo.SetAdmin(ctx, user.ID, true); err != nil {
			return "", nil, fmt.Errorf("failed to promote user: %w", err)
		}
		user.IsAdmin = true
	}

	token, err := s.Issue(user, s.ttl)
	if err != nil {
		return "", nil, fmt.Errorf("failed to generate access token: %w", err)
	}
	return token, user, nil
}

func (s *AuthService) Issue(user *domain.User, ttl time.Duration) (string, error) {
	token, _, err := s.sign(user, ttl)
	return token, err
}

func (s *AuthService) sign(user *domain.User, ttl time.Duration) (string, time.Time, error) {
	now := s.now()
	expiresAt := now.Add(ttl)
	claims := jwt.MapClaims{
		"jti":   uuid.NewString(),
		"sub":   user.ID.String(),
		"email": user.Email,
		"exp":   expiresAt.Unix(),
		"iat":   now.Unix(),
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.jwtSecret)
	return token, expiresAt, err
}

// Parse verifies signature and expiry and checks the token was not revoked.
func (s *AuthService) Parse(ctx context.Context, raw string) (*domain.AccessToken, error) {
	token, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		return s.jwtSecret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, fmt.Errorf("%w: unexpected claims", domain.ErrInvalidToken)
	}

	sub, err := claims.GetSubject()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidToken, err)
	}
	userID, err := uuid.Parse(sub)
	if err != nil {
		return nil, fmt.Errorf("%w: bad subject", domain.ErrInvalidToken)
	}

	jti, _ := claims["jti"].(string)
	tokenID, err := uuid.Parse(jti)
	if err != nil {
		return nil, fmt.Errorf("%w: bad token id", domain.ErrInvalidToken)
	}

	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return nil, fmt.Errorf("%w: bad expiry", domain.ErrInvalidToken)
	}

	revoked, err := s.authRepo.IsRevoked(ctx, tokenID)
	if err != nil {
		return nil, fmt.Errorf("failed to check token revocation: %w", err)
	}
	if revoked {
		return nil, fmt.Errorf("%w: revoked", domain.ErrInvalidToken)
	}

	return &domain.AccessToken{ID: tokenID, UserID: userID, ExpiresAt: exp.Time}, nil
}

func (s *AuthService) session(user *domain.User) (*domain.Session, error) {
	token, expiresAt, err := s.sign(user, s.ttl)
	if err != nil {
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}
	return &domain.Session{
		Token:     token,
		ExpiresAt: expiresAt,
		User:      user,
	}, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// validEmail accepts a bare address only, not a "Name <addr>" form.
func validEmail(email string) bool {
	addr, err := mail.ParseAddress(email)
	return err == nil && addr.Address == email
}

var (
	_ ports.TokenService = (*AuthService)(nil)
	_ ports.AuthService  = (*AuthService)(nil)
)
