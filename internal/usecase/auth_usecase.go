package usecase

import (
	"context"
	"regexp"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"

	"abcstore/internal/domain/entity"
	"abcstore/internal/domain/repository"
	"abcstore/internal/infrastructure/auth"
	"abcstore/pkg/errors"
	"abcstore/pkg/logger"
)

const (
	bcryptCost        = 12
	minPasswordLength = 6
)

var emailPattern = regexp.MustCompile(`^\w+([.-]?\w+)*@\w+([.-]?\w+)*(\.\w{2,3})+$`)

type RegisterInput struct {
	Name            string `json:"name" validate:"required"`
	Email           string `json:"email" validate:"required,email"`
	Password        string `json:"password" validate:"required,min=6"`
	ConfirmPassword string `json:"confirmPassword" validate:"required,eqfield=Password"`
}

type LoginInput struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// UserProfile is the user projection returned to clients. The password
// hash never leaves the use case layer.
type UserProfile struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	Avatar    string    `json:"avatar,omitempty"`
	LastLogin time.Time `json:"lastLogin,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

type AuthResult struct {
	User  UserProfile
	Token string
}

type AuthUseCase struct {
	userRepo repository.UserRepository
	jwt      *auth.JWTManager
}

func NewAuthUseCase(userRepo repository.UserRepository, jwt *auth.JWTManager) *AuthUseCase {
	return &AuthUseCase{userRepo: userRepo, jwt: jwt}
}

func (uc *AuthUseCase) Register(ctx context.Context, input RegisterInput) (*AuthResult, error) {
	name := strings.TrimSpace(input.Name)
	email := strings.ToLower(strings.TrimSpace(input.Email))

	if name == "" || email == "" || input.Password == "" || input.ConfirmPassword == "" {
		return nil, errors.BadRequest("All fields are required", nil)
	}
	if !emailPattern.MatchString(email) {
		return nil, errors.BadRequest("Please provide a valid email address", nil)
	}
	if len(input.Password) < minPasswordLength {
		return nil, errors.BadRequest("Password must be at least 6 characters long", nil)
	}
	if input.Password != input.ConfirmPassword {
		return nil, errors.BadRequest("Passwords do not match", nil)
	}

	if existing, err := uc.userRepo.GetByEmail(ctx, email); err == nil && existing != nil {
		return nil, errors.Conflict("User with this email already exists")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcryptCost)
	if err != nil {
		return nil, errors.Internal("Failed to process password", err)
	}

	// First back-office operator signs up with the reserved name.
	role := entity.RoleUser
	if strings.EqualFold(name, "admin") {
		role = entity.RoleAdmin
	}

	now := time.Now()
	user := &entity.User{
		Name:         name,
		Email:        email,
		PasswordHash: string(hash),
		Role:         role,
		IsActive:     true,
		LastLogin:    now,
	}
	if err := uc.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	token, err := uc.jwt.Generate(user)
	if err != nil {
		return nil, errors.Internal("Failed to generate token", err)
	}

	return &AuthResult{User: toProfile(user), Token: token}, nil
}

func (uc *AuthUseCase) Login(ctx context.Context, input LoginInput) (*AuthResult, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if email == "" || input.Password == "" {
		return nil, errors.BadRequest("Email and password are required", nil)
	}

	user, err := uc.userRepo.GetByEmail(ctx, email)
	if err != nil || user == nil {
		return nil, errors.Unauthorized("Invalid email or password", nil)
	}
	if !user.IsActive {
		return nil, errors.Unauthorized("Invalid email or password", nil)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)); err != nil {
		return nil, errors.Unauthorized("Invalid email or password", nil)
	}

	if err := uc.userRepo.UpdateLastLogin(ctx, user.ID, time.Now()); err != nil {
		logger.Warn("Failed to record last login for %s: %v", user.ID.Hex(), err)
	}

	token, err := uc.jwt.Generate(user)
	if err != nil {
		return nil, errors.Internal("Failed to generate token", err)
	}

	return &AuthResult{User: toProfile(user), Token: token}, nil
}

func (uc *AuthUseCase) GetUserByID(ctx context.Context, id string) (*UserProfile, error) {
	userID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, errors.Unauthorized("Invalid user identity", err)
	}
	user, err := uc.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	profile := toProfile(user)
	return &profile, nil
}

func toProfile(user *entity.User) UserProfile {
	return UserProfile{
		ID:        user.ID.Hex(),
		Name:      user.Name,
		Email:     user.Email,
		Role:      user.Role,
		Avatar:    user.Avatar,
		LastLogin: user.LastLogin,
		CreatedAt: user.CreatedAt,
	}
}
