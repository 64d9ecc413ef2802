package service

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/securevote/election-system/internal/core/domain"
	"github.com/securevote/election-system/internal/core/ports"
)

// AuthService implements login for enrolled voters and admins.
type AuthService struct {
	voters    ports.VoterRepository
	jwtSecret string
	tokenTTL  time.Duration
}

func NewAuthService(voters ports.VoterRepository, jwtSecret string, tokenTTL time.Duration) *AuthService {
	if tokenTTL <= 0 {
		tokenTTL = 7 * 24 * time.Hour
	}
	return &AuthService{voters: voters, jwtSecret: jwtSecret, tokenTTL: tokenTTL}
}

// Login authenticates by email scoped to role. A voter record never grants an
// admin token. Not-found and bad-password collapse into the same error so the
// response does not reveal which one failed.
func (s *AuthService) Login(ctx context.Context, email, password, role string) (string, *domain.Voter, error) {
	if email == "" || password == "" || role == "" {
		return "", nil, domain.ErrInvalidCredentials
	}

	voter, err := s.voters.FindByEmailAndRole(ctx, email, role)
	if err != nil {
		if errors.Is(err, domain.ErrVoterNotFound) {
			return "", nil, domain.ErrInvalidCredentials
		}
		return "", nil, err
	}

	if bcrypt.CompareHashAndPassword([]byte(voter.PasswordHash), []byte(password)) != nil {
		return "", nil, domain.ErrInvalidCredentials
	}

	token, err := s.generateToken(voter)
	if err != nil {
		return "", nil, err
	}

	return token, voter, nil
}

func (s *AuthService) generateToken(voter *domain.Voter) (string, error) {
	claims := jwt.MapClaims{
		"sub":   voter.ID,
		"email": voter.Email,
		"role":  voter.Role,
		"exp":   time.Now().Add(s.tokenTTL).Unix(),
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString([]byte(s.jwtSecret))
}
