package client

import (
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/HappyTails-Pet-Care/service-boarding/internal/domain"
)

// Client is the aggregate root for a registered account, either a customer or
// a staff member.
type Client struct {
	id           uuid.UUID
	email        string
	name         string
	phone        string
	language     string
	role         domain.Role
	passwordHash string
	version      int64
	createdAt    time.Time
	updatedAt    time.Time
}

// NewClient registers a new customer account with a bcrypt password hash.
func NewClient(email, name, phone, language, password string) (*Client, error) {
	return newAccount(email, name, phone, language, password, domain.RoleClient)
}

// NewStaff registers a staff account.
func NewStaff(email, name, phone, language, password string) (*Client, error) {
	return newAccount(email, name, phone, language, password, domain.RoleStaff)
}

func newAccount(email, name, phone, language, password string, role domain.Role) (*Client, error) {
	if email == "" {
		return nil, domain.NewValidationError("email is required")
	}
	if name == "" {
		return nil, domain.NewValidationError("name is required")
	}
	if len(password) < 8 {
		return nil, domain.NewValidationError("password must be at least 8 characters")
	}
	if language == "" {
		language = "en"
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, domain.NewValidationError("failed to hash password")
	}

	now := time.Now().UTC()
	return &Client{
		id:           uuid.New(),
		email:        email,
		name:         name,
		phone:        phone,
		language:     language,
		role:         role,
		passwordHash: string(hash),
		version:      1,
		createdAt:    now,
		updatedAt:    now,
	}, nil
}

// Reconstruct rebuilds a Client from persistence data (no validation).
func Reconstruct(
	id uuid.UUID,
	email, name, phone, language string,
	role domain.Role,
	passwordHash string,
	version int64,
	createdAt, updatedAt time.Time,
) *Client {
	return &Client{
		id:           id,
		email:        email,
		name:         name,
		phone:        phone,
		language:     language,
		role:         role,
		passwordHash: passwordHash,
		version:      version,
		createdAt:    createdAt,
		updatedAt:    updatedAt,
	}
}

// --- Getters ---

func (c *Client) ID() uuid.UUID        { return c.id }
func (c *Client) Email() string        { return c.email }
func (c *Client) Name() string         { return c.name }
func (c *Client) Phone() string        { return c.phone }
func (c *Client) Language() string     { return c.language }
func (c *Client) Role() domain.Role    { return c.role }
func (c *Client) PasswordHash() string { return c.passwordHash }
func (c *Client) Version() int64       { return c.version }
func (c *Client) CreatedAt() time.Time { return c.createdAt }
func (c *Client) UpdatedAt() time.Time { return c.updatedAt }

// IsStaff reports whether the account has the staff role.
func (c *Client) IsStaff() bool {
	return c.role == domain.RoleStaff
}

// CheckPassword verifies a plaintext password against the stored hash.
func (c *Client) CheckPassword(password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(c.passwordHash), []byte(password)) == nil
}

// UpdateProfile applies partial updates to contact information.
func (c *Client) UpdateProfile(name, phone, language string) {
	if name != "" {
		c.name = name
	}
	if phone != "" {
		c.phone = phone
	}
	if language != "" {
		c.language = language
	}
	c.version++
	c.updatedAt = time.Now().UTC()
}
