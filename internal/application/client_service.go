package application

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/HappyTails-Pet-Care/service-boarding/internal/domain"
	"github.com/HappyTails-Pet-Care/service-boarding/internal/domain/audit"
	clientDomain "github.com/HappyTails-Pet-Care/service-boarding/internal/domain/client"
	"github.com/HappyTails-Pet-Care/service-boarding/internal/platform/auth"
)

// RegisterRequest creates a new client account.
type RegisterRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Name     string `json:"name" binding:"required"`
	Phone    string `json:"phone"`
	Language string `json:"language"`
	Password string `json:"password" binding:"required,min=8"`
}

// LoginRequest authenticates a client or staff account.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// UpdateProfileRequest holds the editable profile fields.
type UpdateProfileRequest struct {
	Name     string `json:"name"`
	Phone    string `json:"phone"`
	Language string `json:"language"`
}

// ClientDTO is the response representation of a client account.
type ClientDTO struct {
	ID        uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Phone     string    `json:"phone,omitempty"`
	Language  string    `json:"language"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TokenPairDTO carries the issued JWT pair.
type TokenPairDTO struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	Client       ClientDTO `json:"client"`
}

// ClientService is the application service for accounts and authentication.
type ClientService struct {
	clients clientDomain.ClientRepository
	audits  audit.AuditRepository
	jwt     *auth.JWTManager
	logger  *zap.Logger
}

// NewClientService creates a new ClientService.
func NewClientService(
	clients clientDomain.ClientRepository,
	audits audit.AuditRepository,
	jwt *auth.JWTManager,
	logger *zap.Logger,
) *ClientService {
	return &ClientService{clients: clients, audits: audits, jwt: jwt, logger: logger}
}

// Register creates a client account and returns a token pair.
func (s *ClientService) Register(ctx context.Context, req RegisterRequest) (*TokenPairDTO, error) {
	if existing, err := s.clients.FindByEmail(ctx, req.Email); err == nil && existing != nil {
		return nil, domain.NewConflictError("email is already registered")
	}

	cl, err := clientDomain.NewClient(req.Email, req.Name, req.Phone, req.Language, req.Password)
	if err != nil {
		return nil, err
	}
	if err := s.clients.Save(ctx, cl); err != nil {
		return nil, fmt.Errorf("failed to save client: %w", err)
	}

	return s.issueTokens(cl)
}

// Login verifies credentials and returns a token pair.
func (s *ClientService) Login(ctx context.Context, req LoginRequest) (*TokenPairDTO, error) {
	cl, err := s.clients.FindByEmail(ctx, req.Email)
	if err != nil {
		return nil, domain.NewUnauthorizedError("invalid credentials")
	}
	if !cl.CheckPassword(req.Password) {
		return nil, domain.NewUnauthorizedError("invalid credentials")
	}
	return s.issueTokens(cl)
}

// GetProfile returns the caller's own account.
func (s *ClientService) GetProfile(ctx context.Context, clientID uuid.UUID) (*ClientDTO, error) {
	cl, err := s.clients.FindByID(ctx, clientID)
	if err != nil {
		return nil, err
	}
	dto := toClientDTO(cl)
	return &dto, nil
}

// UpdateProfile edits the caller's own account.
func (s *ClientService) UpdateProfile(ctx context.Context, clientID uuid.UUID, req UpdateProfileRequest) (*ClientDTO, error) {
	cl, err := s.clients.FindByID(ctx, clientID)
	if err != nil {
		return nil, err
	}

	cl.UpdateProfile(req.Name, req.Phone, req.Language)
	if err := s.clients.Update(ctx, cl); err != nil {
		return nil, err
	}

	dto := toClientDTO(cl)
	return &dto, nil
}

// ListClients returns all accounts (staff).
func (s *ClientService) ListClients(ctx context.Context, page, limit int) (*domain.PaginatedResult[ClientDTO], error) {
	clients, total, err := s.clients.ListAll(ctx, page, limit)
	if err != nil {
		return nil, err
	}
	dtos := make([]ClientDTO, len(clients))
	for i, cl := range clients {
		dtos[i] = toClientDTO(cl)
	}
	result := domain.NewPaginatedResult(dtos, total, page, limit)
	return &result, nil
}

// DeleteClient removes a client account and everything that belongs to it in
// one transaction (staff).
func (s *ClientService) DeleteClient(ctx context.Context, staffID, clientID uuid.UUID) error {
	cl, err := s.clients.FindByID(ctx, clientID)
	if err != nil {
		return err
	}
	if cl.IsStaff() {
		return domain.NewForbiddenError("staff accounts cannot be deleted through this operation")
	}

	if err := s.clients.DeleteCascade(ctx, clientID); err != nil {
		return err
	}

	entry := audit.NewEntry(staffID, domain.RoleStaff, "client", clientID, "client.deleted", cl.Email())
	if err := s.audits.Save(ctx, entry); err != nil {
		s.logger.Error("failed to save audit entry",
			zap.String("action", "client.deleted"),
			zap.Error(err),
		)
	}
	return nil
}

func (s *ClientService) issueTokens(cl *clientDomain.Client) (*TokenPairDTO, error) {
	access, err := s.jwt.GenerateAccessToken(cl.ID(), cl.Role())
	if err != nil {
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}
	refresh, err := s.jwt.GenerateRefreshToken(cl.ID(), cl.Role())
	if err != nil {
		return nil, fmt.Errorf("failed to generate refresh token: %w", err)
	}
	return &TokenPairDTO{
		AccessToken:  access,
		RefreshToken: refresh,
		Client:       toClientDTO(cl),
	}, nil
}

func toClientDTO(cl *clientDomain.Client) ClientDTO {
	return ClientDTO{
		ID:        cl.ID(),
		Email:     cl.Email(),
		Name:      cl.Name(),
		Phone:     cl.Phone(),
		Language:  cl.Language(),
		Role:      string(cl.Role()),
		CreatedAt: cl.CreatedAt(),
		UpdatedAt: cl.UpdatedAt(),
	}
}
