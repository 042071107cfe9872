package service

import (
	"alcyxob/fitcoach/internal/access"
	"alcyxob/fitcoach/internal/domain"
	"alcyxob/fitcoach/internal/repository"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"
)

// --- Error Definitions ---
var (
	ErrUserAlreadyExists    = errors.New("user with this email already exists")
	ErrAuthenticationFailed = errors.New("authentication failed: invalid email or password")
	ErrAccountDisabled      = errors.New("account is not active")
	ErrUserNotFound         = errors.New("user not found")
	ErrHashingFailed        = errors.New("failed to hash password")
	ErrTokenGeneration      = errors.New("failed to generate authentication token")
	ErrInvalidToken         = errors.New("invalid token")
	ErrTokenExpired         = errors.New("token has expired")
)

const minPasswordLength = 8

type AuthService interface {
	// Register signs up a trainer or client. Admin accounts are only created by admins.
	Register(ctx context.Context, name, email, password string, role domain.Role) (*domain.User, error)
	// CreateUser creates an account of any role together with its profile stub.
	CreateUser(ctx context.Context, name, email, password string, role domain.Role) (*domain.User, error)
	Login(ctx context.Context, email, password string) (token string, user *domain.User, err error)
	// ParseToken validates a bearer token and returns the caller it identifies.
	ParseToken(tokenString string) (*access.Caller, error)
	// Authenticate parses the token and re-checks that the account still
	// exists and is active, so suspension takes effect before expiry.
	Authenticate(ctx context.Context, tokenString string) (*access.Caller, error)
	GetUser(ctx context.Context, id primitive.ObjectID) (*domain.User, error)
}

// authService implements the AuthService interface.
type authService struct {
	userRepo      repository.UserRepository
	profileRepo   repository.ProfileRepository
	jwtSecret     string
	jwtExpiration time.Duration
	hashCost      int
	now           func() time.Time
}

// NewAuthService creates a new instance of authService.
func NewAuthService(userRepo repository.UserRepository, profileRepo repository.ProfileRepository, jwtSecret string, jwtExpiration time.Duration) AuthService {
	if jwtSecret == "" {
		panic("JWT secret cannot be empty") // Critical configuration
	}
	if jwtExpiration <= 0 {
		jwtExpiration = time.Hour
	}
	return &authService{
		userRepo:      userRepo,
		profileRepo:   profileRepo,
		jwtSecret:     jwtSecret,
		jwtExpiration: jwtExpiration,
		hashCost:      bcrypt.DefaultCost,
		now:           time.Now,
	}
}

func (s *authService) Register(ctx context.Context, name, email, password string, role domain.Role) (*domain.User, error) {
	if role != domain.RoleTrainer && role != domain.RoleClient {
		return nil, invalid("role must be trainer or client")
	}
	return s.createUser(ctx, name, email, password, role)
}

func (s *authService) CreateUser(ctx context.Context, name, email, password string, role domain.Role) (*domain.User, error) {
	if !role.Valid() {
		return nil, invalid(fmt.Sprintf("unknown role %q", role))
	}
	return s.createUser(ctx, name, email, password, role)
}

func (s *authService) createUser(ctx context.Context, name, email, password string, role domain.Role) (*domain.User, error) {
	name = strings.TrimSpace(name)
	email = normalizeEmail(email)
	if name == "" || email == "" {
		return nil, invalid("name and email cannot be empty")
	}
	if len(password) < minPasswordLength {
		return nil, invalid(fmt.Sprintf("password must be at least %d characters", minPasswordLength))
	}

	_, err := s.userRepo.GetByEmail(ctx, email)
	if err == nil {
		return nil, ErrUserAlreadyExists
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, unavailable("lookup user", err)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), s.hashCost)
	if err != nil {
		return nil, ErrHashingFailed
	}

	user := &domain.User{
		Name:         name,
		Email:        email,
		PasswordHash: string(hashedPassword),
		Role:         role,
		Status:       domain.UserStatusActive,
	}
	userID, err := s.userRepo.Create(ctx, user)
	if err != nil {
		// Unique index caught a concurrent registration of the same email
		if errors.Is(err, repository.ErrConflict) {
			return nil, ErrUserAlreadyExists
		}
		return nil, unavailable("create user", err)
	}
	user.ID = userID

	// Downstream relations (mappings, workout logs) hang off the profile
	switch role {
	case domain.RoleTrainer:
		_, err = s.profileRepo.EnsureTrainer(ctx, userID)
	case domain.RoleClient:
		_, err = s.profileRepo.EnsureClient(ctx, userID)
	}
	if err != nil {
		return nil, unavailable("create profile", err)
	}

	user.PasswordHash = ""
	return user, nil
}

// Login handles user authentication and JWT generation.
func (s *authService) Login(ctx context.Context, email, password string) (token string, user *domain.User, err error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return "", nil, invalid("email and password cannot be empty")
	}

	user, err = s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", nil, ErrAuthenticationFailed
		}
		return "", nil, unavailable("lookup user", err)
	}

	if err = bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", nil, ErrAuthenticationFailed
	}
	if user.Status != "" && user.Status != domain.UserStatusActive {
		return "", nil, ErrAccountDisabled
	}

	token, err = s.generateJWT(user)
	if err != nil {
		return "", nil, ErrTokenGeneration
	}

	user.PasswordHash = ""
	return token, user, nil
}

func (s *authService) GetUser(ctx context.Context, id primitive.ObjectID) (*domain.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, unavailable("get user", err)
	}
	user.PasswordHash = ""
	return user, nil
}

// --- JWT Helpers ---

// jwtClaims defines the structure of the JWT payload.
type jwtClaims struct {
	UserID string      `json:"uid"`
	Role   domain.Role `json:"role"`
	jwt.RegisteredClaims
}

const tokenIssuer = "fitcoach"

// generateJWT creates a new JWT token for the given user.
func (s *authService) generateJWT(user *domain.User) (string, error) {
	now := s.now()
	claims := &jwtClaims{
		UserID: user.ID.Hex(),
		Role:   user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID.Hex(),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.jwtExpiration)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    tokenIssuer,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.jwtSecret))
}

func (s *authService) ParseToken(tokenString string) (*access.Caller, error) {
	claims := &jwtClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.jwtSecret), nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !token.Valid || claims.UserID == "" || !claims.Role.Valid() {
		return nil, ErrInvalidToken
	}

	userID, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		return nil, fmt.Errorf("%w: malformed subject", ErrInvalidToken)
	}
	return &access.Caller{UserID: userID, Role: claims.Role}, nil
}

func (s *authService) Authenticate(ctx context.Context, tokenString string) (*access.Caller, error) {
	caller, err := s.ParseToken(tokenString)
	if err != nil {
		return nil, err
	}

	user, err := s.userRepo.GetByID(ctx, caller.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: account no longer exists", ErrInvalidToken)
		}
		return nil, unavailable("authenticate", err)
	}
	if user.Status != "" && user.Status != domain.UserStatusActive {
		return nil, ErrAccountDisabled
	}
	caller.Role = user.Role
	return caller, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
