package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/skillpath/backend/internal/platform/apierr"
	"github.com/skillpath/backend/internal/platform/logger"
	"github.com/skillpath/backend/internal/repos"
	"github.com/skillpath/backend/internal/requestdata"
	"github.com/skillpath/backend/internal/types"
)

type AuthService interface {
	RegisterUser(ctx context.Context, user *types.User) error
	LoginUser(ctx context.Context, email, password string) (string, string, error)
	RefreshUser(ctx context.Context, refreshToken string) (string, string, error)
	LogoutUser(ctx context.Context) error
	ContextFromToken(ctx context.Context, tokenString string) (context.Context, error)
}

type authService struct {
	db            *gorm.DB
	log           *logger.Logger
	userRepo      repos.UserRepo
	userTokenRepo repos.UserTokenRepo
	jwtSecretKey  string
	accessTTL     time.Duration
	refreshTTL    time.Duration
}

func NewAuthService(
	db *gorm.DB,
	baseLog *logger.Logger,
	userRepo repos.UserRepo,
	userTokenRepo repos.UserTokenRepo,
	jwtSecretKey string,
	accessTTL time.Duration,
	refreshTTL time.Duration,
) AuthService {
	return &authService{
		db:            db,
		log:           baseLog.With("service", "AuthService"),
		userRepo:      userRepo,
		userTokenRepo: userTokenRepo,
		jwtSecretKey:  jwtSecretKey,
		accessTTL:     accessTTL,
		refreshTTL:    refreshTTL,
	}
}

func (as *authService) RegisterUser(ctx context.Context, user *types.User) error {
	if user == nil {
		return apierr.Validation("missing_body", fmt.Errorf("please provide registration details"))
	}
	user.Email = strings.ToLower(strings.TrimSpace(user.Email))
	switch {
	case user.Email == "":
		return apierr.Validation("missing_email", fmt.Errorf("an email is required to register"))
	case user.Password == "":
		return apierr.Validation("missing_password", fmt.Errorf("a password is required to register"))
	case strings.TrimSpace(user.FirstName) == "":
		return apierr.Validation("missing_first_name", fmt.Errorf("a first name is required to register"))
	case strings.TrimSpace(user.LastName) == "":
		return apierr.Validation("missing_last_name", fmt.Errorf("a last name is required to register"))
	}

	exists, err := as.userRepo.EmailExists(ctx, nil, user.Email)
	if err != nil {
		return fmt.Errorf("check user email: %w", err)
	}
	if exists {
		return apierr.Conflict("email_taken", fmt.Errorf("email is already in use"))
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(user.Password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	user.Password = string(hashed)
	user.ID = uuid.New()
	if user.Role == "" {
		user.Role = types.RoleUser
	}
	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now

	if _, err := as.userRepo.Create(ctx, nil, []*types.User{user}); err != nil {
		return asConflict(err, "email_taken")
	}
	as.log.Info("User registered", "user_id", user.ID.String())
	return nil
}

func (as *authService) LoginUser(ctx context.Context, email, password string) (string, string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return "", "", apierr.Validation("missing_credentials", fmt.Errorf("email and password are required to login"))
	}

	users, err := as.userRepo.GetByEmails(ctx, nil, []string{email})
	if err != nil {
		return "", "", fmt.Errorf("load user by email: %w", err)
	}
	if len(users) == 0 || users[0] == nil {
		return "", "", apierr.Unauthorized("invalid_credentials", fmt.Errorf("invalid email or password"))
	}
	user := users[0]
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return "", "", apierr.Unauthorized("invalid_credentials", fmt.Errorf("invalid email or password"))
	}

	var accessToken, refreshToken string
	err = as.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := as.userTokenRepo.FullDeleteByUserIDs(ctx, tx, []uuid.UUID{user.ID}); err != nil {
			return fmt.Errorf("clear previous tokens: %w", err)
		}
		accessToken, refreshToken, err = as.issueTokenPair(ctx, tx, user)
		return err
	})
	if err != nil {
		return "", "", err
	}
	as.log.Info("User logged in", "user_id", user.ID.String())
	return accessToken, refreshToken, nil
}

func (as *authService) RefreshUser(ctx context.Context, refreshToken string) (string, string, error) {
	if refreshToken == "" {
		return "", "", apierr.Validation("missing_refresh_token", fmt.Errorf("a refresh token is required"))
	}

	row, err := as.userTokenRepo.GetByRefreshToken(ctx, nil, refreshToken)
	if err != nil {
		return "", "", fmt.Errorf("load refresh token: %w", err)
	}
	if row == nil || row.ExpiresAt.Before(time.Now()) {
		return "", "", apierr.Unauthorized("invalid_refresh_token", fmt.Errorf("refresh token is invalid or expired"))
	}

	users, err := as.userRepo.GetByIDs(ctx, nil, []uuid.UUID{row.UserID})
	if err != nil {
		return "", "", fmt.Errorf("load user: %w", err)
	}
	if len(users) == 0 || users[0] == nil {
		return "", "", apierr.Unauthorized("invalid_refresh_token", fmt.Errorf("user for token no longer exists"))
	}
	user := users[0]

	var accessToken, newRefreshToken string
	err = as.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := as.userTokenRepo.FullDeleteByUserIDs(ctx, tx, []uuid.UUID{user.ID}); err != nil {
			return fmt.Errorf("rotate tokens: %w", err)
		}
		accessToken, newRefreshToken, err = as.issueTokenPair(ctx, tx, user)
		return err
	})
	if err != nil {
		return "", "", err
	}
	return accessToken, newRefreshToken, nil
}

func (as *authService) LogoutUser(ctx context.Context) error {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil || rd.UserID == uuid.Nil {
		return apierr.Unauthorized("unauthorized", fmt.Errorf("no authenticated user in context"))
	}
	return as.userTokenRepo.FullDeleteByUserIDs(ctx, nil, []uuid.UUID{rd.UserID})
}

// ContextFromToken validates a bearer token and attaches the caller identity
// to the context.
func (as *authService) ContextFromToken(ctx context.Context, tokenString string) (context.Context, error) {
	claims := jwt.MapClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return []byte(as.jwtSecretKey), nil
	})
	if err != nil || !token.Valid {
		return ctx, apierr.Unauthorized("invalid_token", fmt.Errorf("missing or invalid token"))
	}

	sub, _ := claims["sub"].(string)
	userID, err := uuid.Parse(sub)
	if err != nil {
		return ctx, apierr.Unauthorized("invalid_token", fmt.Errorf("token subject is not a user id"))
	}
	role, _ := claims["role"].(string)

	rd := &requestdata.RequestData{
		TokenString: tokenString,
		UserID:      userID,
		Role:        role,
	}
	return requestdata.WithRequestData(ctx, rd), nil
}

func (as *authService) issueTokenPair(ctx context.Context, tx *gorm.DB, user *types.User) (string, string, error) {
	now := time.Now()
	accessToken, err := as.signToken(user, now, as.accessTTL)
	if err != nil {
		return "", "", fmt.Errorf("sign access token: %w", err)
	}
	refreshToken, err := as.signToken(user, now, as.refreshTTL)
	if err != nil {
		return "", "", fmt.Errorf("sign refresh token: %w", err)
	}

	row := &types.UserToken{
		ID:           uuid.New(),
		UserID:       user.ID,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresAt:    now.Add(as.refreshTTL),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if _, err := as.userTokenRepo.Create(ctx, tx, row); err != nil {
		return "", "", fmt.Errorf("store token pair: %w", err)
	}
	return accessToken, refreshToken, nil
}

func (as *authService) signToken(user *types.User, issuedAt time.Time, ttl time.Duration) (string, error) {
	claims := jwt.MapClaims{
		"sub":  user.ID.String(),
		"role": user.Role,
		"iat":  issuedAt.Unix(),
		"exp":  issuedAt.Add(ttl).Unix(),
		"jti":  uuid.NewString(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(as.jwtSecretKey))
}
