package service

import (
	"aloop3/flow/internal/domain"
	"aloop3/flow/internal/repository"
	"context"
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrUserAlreadyExists    = errors.New("user with this email already exists")
	ErrAuthenticationFailed = errors.New("authentication failed: invalid email or password")
	ErrHashingFailed        = errors.New("failed to hash password")
	ErrTokenGeneration      = errors.New("failed to generate authentication token")
	ErrInvalidRole          = errors.New("role must be coach or athlete")
	ErrNotACoach            = errors.New("only coaches can manage athletes")
	ErrNotAnAthlete         = errors.New("user is not an athlete")
)

type AuthService interface {
	Register(ctx context.Context, name, email, password string, role domain.Role) (*domain.User, error)
	Login(ctx context.Context, email, password string) (token string, user *domain.User, err error)
	GetUser(ctx context.Context, userID string) (*domain.User, error)
	UpdateWeightPreference(ctx context.Context, userID, preference string) (*domain.User, error)
	LinkAthlete(ctx context.Context, coachID, athleteEmail string) (*domain.User, error)
	ListAthletes(ctx context.Context, coachID string) ([]domain.User, error)
	GetJWTSecret() string
}

// authService implements the AuthService interface.
type authService struct {
	userRepo      repository.UserRepository
	jwtSecret     string
	jwtExpiration time.Duration
}

// NewAuthService creates a new instance of authService.
func NewAuthService(userRepo repository.UserRepository, jwtSecret string, jwtExpiration time.Duration) AuthService {
	if jwtSecret == "" {
		panic("JWT secret cannot be empty") // Critical configuration
	}
	if jwtExpiration <= 0 {
		jwtExpiration = time.Hour
	}
	return &authService{
		userRepo:      userRepo,
		jwtSecret:     jwtSecret,
		jwtExpiration: jwtExpiration,
	}
}

// Register handles new user registration.
func (s *authService) Register(ctx context.Context, name, email, password string, role domain.Role) (*domain.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if name == "" || email == "" || password == "" {
		return nil, errors.New("name, email and password cannot be empty")
	}
	if role != domain.RoleCoach && role != domain.RoleAthlete {
		return nil, ErrInvalidRole
	}

	_, err := s.userRepo.GetByEmail(ctx, email)
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

	user := &domain.User{
		ID:           uuid.NewString(),
		Name:         name,
		Email:        email,
		PasswordHash: string(hashedPassword),
		Role:         role,
	}
	if role == domain.RoleAthlete {
		user.WeightUnitPreference = domain.PreferenceAuto
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		// Another request may have registered the same email after our check.
		if errors.Is(err, repository.ErrConflict) {
			return nil, ErrUserAlreadyExists
		}
		return nil, err
	}
	log.Infof("registered %s %s", user.Role, user.ID)

	user.PasswordHash = ""
	return user, nil
}

// Login handles user authentication and JWT generation.
func (s *authService) Login(ctx context.Context, email, password string) (token string, user *domain.User, err error) {
	if email == "" || password == "" {
		err = errors.New("email and password cannot be empty")
		return
	}

	user, err = s.userRepo.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			err = ErrAuthenticationFailed
		}
		return "", nil, err
	}

	if err = bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", nil, ErrAuthenticationFailed
	}

	token, err = s.generateJWT(user)
	if err != nil {
		log.Errorf("sign token for %s: %s", user.ID, err)
		return "", nil, ErrTokenGeneration
	}

	user.PasswordHash = ""
	return token, user, nil
}

func (s *authService) GetUser(ctx context.Context, userID string) (*domain.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, mapNotFound(err, ErrUserNotFound)
	}
	user.PasswordHash = ""
	return user, nil
}

// UpdateWeightPreference changes the default for future records only; stored sets keep their units.
func (s *authService) UpdateWeightPreference(ctx context.Context, userID, preference string) (*domain.User, error) {
	pref, err := domain.ParseUnitPreference(preference)
	if err != nil {
		return nil, err
	}
	if err := s.userRepo.UpdateWeightPreference(ctx, userID, pref); err != nil {
		return nil, mapNotFound(err, ErrUserNotFound)
	}
	return s.GetUser(ctx, userID)
}

// LinkAthlete puts the athlete with the given email on the coach's roster.
func (s *authService) LinkAthlete(ctx context.Context, coachID, athleteEmail string) (*domain.User, error) {
	coach, err := s.userRepo.GetByID(ctx, coachID)
	if err != nil {
		return nil, mapNotFound(err, ErrUserNotFound)
	}
	if !coach.IsCoach() {
		return nil, ErrNotACoach
	}
	athlete, err := s.userRepo.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(athleteEmail)))
	if err != nil {
		return nil, mapNotFound(err, ErrUserNotFound)
	}
	if !athlete.IsAthlete() {
		return nil, ErrNotAnAthlete
	}

	if err := s.userRepo.AddAthleteToCoach(ctx, coach.ID, athlete.ID); err != nil {
		return nil, err
	}
	if err := s.userRepo.SetCoachForAthlete(ctx, athlete.ID, coach.ID); err != nil {
		return nil, err
	}
	athlete.CoachID = &coach.ID
	athlete.PasswordHash = ""
	return athlete, nil
}

func (s *authService) ListAthletes(ctx context.Context, coachID string) ([]domain.User, error) {
	coach, err := s.userRepo.GetByID(ctx, coachID)
	if err != nil {
		return nil, mapNotFound(err, ErrUserNotFound)
	}
	if !coach.IsCoach() {
		return nil, ErrNotACoach
	}
	athletes, err := s.userRepo.GetAthletesByCoachID(ctx, coachID)
	if err != nil {
		return nil, err
	}
	for i := range athletes {
		athletes[i].PasswordHash = ""
	}
	return athletes, nil
}

// Claims is the JWT payload issued on login.
type Claims struct {
	UserID string      `json:"uid"`
	Role   domain.Role `json:"role"`
	jwt.RegisteredClaims
}

func (s *authService) generateJWT(user *domain.User) (string, error) {
	now := time.Now()
	claims := &Claims{
		UserID: user.ID,
		Role:   user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			ExpiresAt: jwt.NewNumericDate(now.Add(s.jwtExpiration)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    "flow",
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.jwtSecret))
}

// GetJWTSecret returns the JWT secret for middleware authentication
func (s *authService) GetJWTSecret() string {
	return s.jwtSecret
}
