package services

import (
	"fmt"
	"time"

	"chatline/auth"
	"chatline/domain"
	"chatline/errors"
	"chatline/repositories"
)

type IAuthService interface {
	Register(name, email, password string) (Token, domain.PublicUser, error)
	Login(email, password string) (Token, domain.PublicUser, error)
}

type AuthService struct {
	userRepository repositories.IUserRepository
	tokenDuration  time.Duration
}

type Token string

func NewAuthService(repo repositories.IUserRepository, tokenDuration time.Duration) *AuthService {
	return &AuthService{userRepository: repo, tokenDuration: tokenDuration}
}

func (s *AuthService) Register(name, email, password string) (Token, domain.PublicUser, error) {
	valReq := auth.RegisterRequest{
		Name:     name,
		Email:    email,
		Password: password,
	}

	// 1. Validate business rules (email format, password complexity)
	// We check this before any expensive cryptographic operation.
	if err := auth.ValidateRegister(valReq); err != nil {
		return "", domain.PublicUser{}, fmt.Errorf("%w: %v", errors.ErrInvalidInput, err)
	}

	// 2. Hash the password using Argon2id
	// Done in the service layer to keep the repository unaware of plain passwords.
	hashedPassword, err := auth.HashPassword(password)
	if err != nil {
		return "", domain.PublicUser{}, fmt.Errorf("hashing failed: %w", err)
	}

	// 3. Persist the user with the generated hash
	user, err := s.userRepository.CreateUser(name, email, hashedPassword)
	if err != nil {
		return "", domain.PublicUser{}, err // Will propagate ErrUserAlreadyExists if email is taken
	}

	// 4. Generate the initial session token
	token, err := auth.GenerateToken(user.ID, user.Name, s.tokenDuration)
	if err != nil {
		return "", domain.PublicUser{}, errors.ErrTokenGeneration
	}

	return Token(token), user.Public(), nil
}

func (s *AuthService) Login(email, password string) (Token, domain.PublicUser, error) {
	// 1. Retrieve user by email from storage
	user, err := s.userRepository.GetByEmail(email)
	if err != nil {
		// Generic error to prevent user enumeration attacks
		return "", domain.PublicUser{}, errors.ErrInvalidCredentials
	}

	// 2. Compare the provided password with the stored hash
	match, err := auth.ComparePassword(password, user.PasswordHash)
	if err != nil || !match {
		return "", domain.PublicUser{}, errors.ErrInvalidCredentials
	}

	// 3. Issue the JWT token
	token, err := auth.GenerateToken(user.ID, user.Name, s.tokenDuration)
	if err != nil {
		return "", domain.PublicUser{}, errors.ErrTokenGeneration
	}

	return Token(token), user.Public(), nil
}
