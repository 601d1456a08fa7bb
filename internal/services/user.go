package services

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/HammerMeetNail/barberbook/internal/models"
)

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrPhoneAlreadyExists = errors.New("phone already registered")
	ErrInvalidPhone       = errors.New("phone must be exactly 10 digits")
	ErrInvalidName        = errors.New("first and last name are required")
	ErrInvalidCredentials = errors.New("invalid phone or password")
)

var phonePattern = regexp.MustCompile(`^\d{10}$`)

const userColumns = `id, phone, email, password_hash, first_name, last_name, created_at`

type UserService struct {
	db Querier
}

func NewUserService(db Querier) *UserService {
	return &UserService{db: db}
}

func (s *UserService) Create(ctx context.Context, params models.CreateUserParams) (*models.User, error) {
	phone := strings.TrimSpace(params.Phone)
	if !phonePattern.MatchString(phone) {
		return nil, ErrInvalidPhone
	}
	first := strings.TrimSpace(params.FirstName)
	last := strings.TrimSpace(params.LastName)
	if first == "" || last == "" {
		return nil, ErrInvalidName
	}

	var exists bool
	err := s.db.QueryRow(ctx, "SELECT EXISTS(SELECT 1 FROM users WHERE phone = $1)", phone).Scan(&exists)
	if err != nil {
		return nil, fmt.Errorf("checking phone existence: %w", err)
	}
	if exists {
		return nil, ErrPhoneAlreadyExists
	}

	user := &models.User{}
	err = s.db.QueryRow(ctx,
		`INSERT INTO users (phone, password_hash, first_name, last_name)
		 VALUES ($1, $2, $3, $4)
		 RETURNING `+userColumns,
		phone, params.PasswordHash, first, last,
	).Scan(userFields(user)...)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrPhoneAlreadyExists
		}
		return nil, fmt.Errorf("creating user: %w", err)
	}

	return user, nil
}

func (s *UserService) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	user := &models.User{}
	err := s.db.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1`,
		id,
	).Scan(userFields(user)...)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting user by id: %w", err)
	}
	return user, nil
}

func (s *UserService) GetByPhone(ctx context.Context, phone string) (*models.User, error) {
	user := &models.User{}
	err := s.db.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE phone = $1`,
		strings.TrimSpace(phone),
	).Scan(userFields(user)...)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting user by phone: %w", err)
	}
	return user, nil
}

// Authenticate checks a phone/password pair. Unknown phones and wrong
// passwords are indistinguishable to the caller.
func (s *UserService) Authenticate(ctx context.Context, phone, password string) (*models.User, error) {
	user, err := s.GetByPhone(ctx, phone)
	if errors.Is(err, ErrUserNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if user.PasswordHash == nil || !VerifyPassword(*user.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hashing password: %w", err)
	}
	return string(hash), nil
}

func VerifyPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

func userFields(u *models.User) []any {
	return []any{&u.ID, &u.Phone, &u.Email, &u.PasswordHash, &u.FirstName, &u.LastName, &u.CreatedAt}
}
