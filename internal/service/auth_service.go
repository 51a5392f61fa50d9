package service

import (
	"alcyxob/swimtrack/internal/domain"
	"alcyxob/swimtrack/internal/repository"
	"context"
	"errors"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
)

// --- Error Definitions ---
var (
	ErrUserAlreadyExists    = errors.New("user with this email already exists")
	ErrAuthenticationFailed = errors.New("authentication failed: invalid email or password")
	ErrHashingFailed        = errors.New("failed to hash password")
	ErrTokenGeneration      = errors.New("failed to generate authentication token")
)

// AuthEvent describes a session appearing: a successful login or signup.
// Observers receive it asynchronously, the way an auth-state listener would.
type AuthEvent struct {
	AccountID string
	Email     string
}

// AuthObserver is a callback registered for auth-state changes.
type AuthObserver func(event AuthEvent)

type AuthService interface {
	Register(ctx context.Context, name, email, password string, role domain.Role, strava *domain.StravaCredentials) (*domain.Account, error)
	Login(ctx context.Context, email, password string) (token string, err error)
	Subscribe(observer AuthObserver)
	GetJWTSecret() string
}

// authService implements the AuthService interface. The authentication
// identity lives in the relational backend; the role-bearing profile lives
// in the document store and is created best-effort after the identity.
type authService struct {
	accountRepo   repository.AccountRepository
	userRepo      repository.UserRepository
	jwtSecret     string
	jwtExpiration time.Duration
	log           zerolog.Logger

	mu        sync.Mutex
	observers []AuthObserver
}

// NewAuthService creates a new instance of authService.
func NewAuthService(accountRepo repository.AccountRepository, userRepo repository.UserRepository, jwtSecret string, jwtExpiration time.Duration, log zerolog.Logger) AuthService {
	if jwtSecret == "" {
		panic("JWT secret cannot be empty") // Critical configuration
	}
	if jwtExpiration <= 0 {
		jwtExpiration = time.Hour * 1
	}
	return &authService{
		accountRepo:   accountRepo,
		userRepo:      userRepo,
		jwtSecret:     jwtSecret,
		jwtExpiration: jwtExpiration,
		log:           log.With().Str("component", "auth").Logger(),
	}
}

// Subscribe registers an observer notified after every successful login or
// registration. Notification runs on its own goroutine, detached from the
// call that triggered it.
func (s *authService) Subscribe(observer AuthObserver) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.observers = append(s.observers, observer)
}

func (s *authService) notify(event AuthEvent) {
	s.mu.Lock()
	observers := make([]AuthObserver, len(s.observers))
	copy(observers, s.observers)
	s.mu.Unlock()

	go func() {
		for _, observer := range observers {
			observer(event)
		}
	}()
}

// Register creates the authentication identity, then the profile document.
// A profile failure after the identity succeeded leaves the identity
// orphaned: it is logged, not rolled back, and the profile is synthesized
// lazily on the next authenticated session.
func (s *authService) Register(ctx context.Context, name, email, password string, role domain.Role, strava *domain.StravaCredentials) (*domain.Account, error) {
	if name == "" || email == "" || password == "" || role == "" {
		return nil, errors.New("name, email, password, and role cannot be empty")
	}

	_, err := s.accountRepo.GetByEmail(ctx, email)
	if err == nil {
		return nil, ErrUserAlreadyExists
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, ErrHashingFailed
	}

	account := &domain.Account{
		Email:        email,
		PasswordHash: string(hashedPassword),
	}
	accountID, err := s.accountRepo.Create(ctx, account)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrUserAlreadyExists
		}
		return nil, err
	}
	account.ID = accountID

	profile := &domain.User{
		Name:   name,
		Email:  email,
		Role:   role,
		Strava: strava,
	}
	if _, err := s.userRepo.Create(ctx, profile); err != nil {
		// Identity exists, profile does not. No compensating rollback; the
		// profile is backfilled on first authenticated session.
		s.log.Warn().Err(err).Str("email", email).Msg("profile creation failed after signup, leaving identity orphaned")
	}

	s.notify(AuthEvent{AccountID: accountID.String(), Email: email})

	account.PasswordHash = ""
	return account, nil
}

// Login authenticates the identity and returns a signed JWT. Invalid
// credentials map to ErrAuthenticationFailed; session hydration happens
// through the subscribed observers, not inline here.
func (s *authService) Login(ctx context.Context, email, password string) (string, error) {
	if email == "" || password == "" {
		return "", ErrAuthenticationFailed
	}

	account, err := s.accountRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", ErrAuthenticationFailed
		}
		return "", err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(password)); err != nil {
		return "", ErrAuthenticationFailed
	}

	token, err := s.generateJWT(account)
	if err != nil {
		return "", ErrTokenGeneration
	}

	s.notify(AuthEvent{AccountID: account.ID.String(), Email: account.Email})

	return token, nil
}

// --- JWT Helper ---

// jwtClaims defines the structure of the JWT payload.
type jwtClaims struct {
	AccountID string `json:"uid"`
	Email     string `json:"email"`
	jwt.RegisteredClaims
}

// generateJWT creates a new JWT token for the given identity. The token
// carries no role: authorization is checked against the stored profile
// document on every privileged request.
func (s *authService) generateJWT(account *domain.Account) (string, error) {
	expirationTime := time.Now().Add(s.jwtExpiration)
	claims := &jwtClaims{
		AccountID: account.ID.String(),
		Email:     account.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   account.ID.String(),
			ExpiresAt: jwt.NewNumericDate(expirationTime),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			Issuer:    "swimtrack",
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signedToken, err := token.SignedString([]byte(s.jwtSecret))
	if err != nil {
		return "", err
	}
	return signedToken, nil
}

// GetJWTSecret returns the JWT secret for middleware authentication
func (s *authService) GetJWTSecret() string {
	return s.jwtSecret
}
