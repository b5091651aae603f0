package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/brauliobolano/LinkedInClone/dto"
	"github.com/brauliobolano/LinkedInClone/internal/models"
	"github.com/brauliobolano/LinkedInClone/internal/repository"
)

const DefaultUserImage = "https://www.gravatar.com/avatar/?d=mp"

// Identity is the signed-in user as carried by a token.
type Identity struct {
	UserID    string
	UserImage string
	FirstName string
	LastName  string
}

func (i *Identity) Ref() (models.UserRef, error) {
	return models.NewUserRef(i.UserID, i.UserImage, i.FirstName, i.LastName)
}

type Claims struct {
	UID       string `json:"uid,omitempty"`
	UserImage string `json:"image,omitempty"`
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
	jwt.RegisteredClaims
}

type UserStore interface {
	Create(ctx context.Context, u *models.User) error
	FindByEmail(ctx context.Context, email string) (*models.User, error)
}

type AuthService struct {
	users  UserStore
	secret []byte
	ttl    time.Duration
	log    *zap.Logger
	now    func() time.Time
}

func NewAuthService(users UserStore, secret string, ttl time.Duration, log *zap.Logger) *AuthService {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &AuthService{users: users, secret: []byte(secret), ttl: ttl, log: log, now: time.Now}
}

func (s *AuthService) Register(ctx context.Context, req dto.RegisterReq) (*dto.TokenResp, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" || req.Password == "" || strings.TrimSpace(req.FirstName) == "" {
		return nil, fmt.Errorf("%w: email, password and firstName are required", ErrValidation)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, validationErr(err)
	}

	image := strings.TrimSpace(req.UserImage)
	if image == "" {
		image = DefaultUserImage
	}
	user := &models.User{
		ID:           bson.NewObjectID(),
		Email:        email,
		PasswordHash: string(hash),
		FirstName:    strings.TrimSpace(req.FirstName),
		LastName:     strings.TrimSpace(req.LastName),
		UserImage:    image,
		CreatedAt:    s.now().UTC(),
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return nil, fmt.Errorf("%w: email already registered", ErrConflict)
		}
		return nil, storeErr("create user", err)
	}

	s.log.Info("User registered", zap.String("user_id", user.ID.Hex()))
	return s.IssueToken(*user)
}

func (s *AuthService) Login(ctx context.Context, req dto.LoginReq) (*dto.TokenResp, error) {
	user, err := s.users.FindByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: invalid email or password", ErrUnauthorized)
		}
		return nil, storeErr("find user", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, fmt.Errorf("%w: invalid email or password", ErrUnauthorized)
	}
	return s.IssueToken(*user)
}

func (s *AuthService) IssueToken(u models.User) (*dto.TokenResp, error) {
	now := s.now()
	exp := now.Add(s.ttl)
	uid := u.ID.Hex()

	claims := Claims{
		UID:       uid,
		UserImage: u.UserImage,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   uid,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return nil, fmt.Errorf("sign token: %w", err)
	}

	return &dto.TokenResp{
		AccessToken: signed,
		TokenType:   "Bearer",
		ExpiresAt:   exp.UTC().Format(time.RFC3339),
		User:        toUserRefResp(u.Ref()),
	}, nil
}

// ParseToken verifies an HS256 token and returns the identity it carries.
func (s *AuthService) ParseToken(tokenStr string) (*Identity, error) {
	var claims Claims
	token, err := jwt.ParseWithClaims(
		tokenStr,
		&claims,
		func(t *jwt.Token) (any, error) { return s.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil || !token.Valid {
		return nil, fmt.Errorf("%w: invalid token", ErrUnauthorized)
	}

	uid := claims.UID
	if uid == "" {
		uid = claims.Subject
	}
	if uid == "" {
		return nil, fmt.Errorf("%w: missing uid", ErrUnauthorized)
	}
	image := claims.UserImage
	if image == "" {
		image = DefaultUserImage
	}
	return &Identity{
		UserID:    uid,
		UserImage: image,
		FirstName: claims.FirstName,
		LastName:  claims.LastName,
	}, nil
}
