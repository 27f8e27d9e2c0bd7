package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/uatas-cs/complaint-service/internal/errs"
	"github.com/uatas-cs/complaint-service/internal/model"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// UserService handles accounts and login tokens.
type UserService struct {
	db        *gorm.DB
	jwtSecret string
	jwtTTL    time.Duration
}

func NewUserService(db *gorm.DB, jwtSecret string, jwtTTL time.Duration) *UserService {
	if jwtTTL <= 0 {
		jwtTTL = 12 * time.Hour
	}
	return &UserService{db: db, jwtSecret: jwtSecret, jwtTTL: jwtTTL}
}

// Claims carried by issued bearer tokens.
type Claims struct {
	UserID uint   `json:"userId"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// Register creates an account. Self-registration always gets the staff role;
// admin user creation passes an explicit role. Duplicate username/email is
// rejected before any write.
func (s *UserService) Register(ctx context.Context, username, email, phone, password, role string) (*model.User, error) {
	username = strings.TrimSpace(username)
	email = strings.ToLower(strings.TrimSpace(email))
	if username == "" || email == "" || password == "" {
		return nil, errs.Validation("username, email dan password wajib diisi")
	}
	if role == "" {
		role = model.RoleStaff
	}

	var count int64
	if err := s.db.WithContext(ctx).Model(&model.User{}).Where("username = ?", username).Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, errs.ErrUsernameTaken
	}
	if err := s.db.WithContext(ctx).Model(&model.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, errs.ErrEmailTaken
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	user := &model.User{
		Username: username,
		Email:    email,
		Phone:    strings.TrimSpace(phone),
		Password: string(hashed),
		Role:     role,
	}
	if err := s.db.WithContext(ctx).Create(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

// Login checks the password against the user found by username or email and
// returns a signed token plus the account.
func (s *UserService) Login(ctx context.Context, login, password string) (string, *model.User, error) {
	var user model.User
	err := s.db.WithContext(ctx).
		Where("username = ? OR email = ?", login, strings.ToLower(login)).
		First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", nil, errs.ErrInvalidCredentials
		}
		return "", nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)) != nil {
		return "", nil, errs.ErrInvalidCredentials
	}
	claims := &Claims{
		UserID: user.ID,
		Role:   user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(s.jwtTTL)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.jwtSecret))
	if err != nil {
		return "", nil, err
	}
	return token, &user, nil
}

// Delete removes an account. Deleting your own account is rejected.
func (s *UserService) Delete(ctx context.Context, actorID, userID uint) error {
	if actorID == userID {
		return errs.ErrSelfDelete
	}
	var user model.User
	if err := s.db.WithContext(ctx).First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errs.ErrUserNotFound
		}
		return err
	}
	return s.db.WithContext(ctx).Delete(&user).Error
}

// List returns accounts, optionally restricted to one role.
func (s *UserService) List(ctx context.Context, role string) ([]model.User, error) {
	q := s.db.WithContext(ctx).Model(&model.User{})
	if role != "" {
		q = q.Where("role = ?", role)
	} else {
		q = q.Where("role <> ?", model.RoleAdmin)
	}
	var users []model.User
	err := q.Order("username").Find(&users).Error
	return users, err
}

// QCUsers lists the QC reviewers available for escalation.
func (s *UserService) QCUsers(ctx context.Context) ([]model.User, error) {
	return s.List(ctx, model.RoleQC)
}
