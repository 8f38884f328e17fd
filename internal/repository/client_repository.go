package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/HappyTails-Pet-Care/service-boarding/internal/domain"
	clientDomain "github.com/HappyTails-Pet-Care/service-boarding/internal/domain/client"
)

// ClientModel is the GORM model for the clients table.
type ClientModel struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey"`
	Email        string    `gorm:"uniqueIndex;not null;size:255"`
	Name         string    `gorm:"not null;size:100"`
	Phone        string    `gorm:"size:30"`
	Language     string    `gorm:"not null;size:10;default:'en'"`
	Role         string    `gorm:"not null;size:20"`
	PasswordHash string    `gorm:"not null;size:255"`
	Version      int64     `gorm:"not null;default:1"`
	CreatedAt    time.Time `gorm:"not null"`
	UpdatedAt    time.Time `gorm:"not null"`
}

// TableName returns the table name for the GORM model.
func (ClientModel) TableName() string {
	return "clients"
}

// GormClientRepository is the GORM-based implementation of ClientRepository.
type GormClientRepository struct {
	db *gorm.DB
}

// NewGormClientRepository creates a new GormClientRepository.
func NewGormClientRepository(db *gorm.DB) *GormClientRepository {
	return &GormClientRepository{db: db}
}

// FindByID retrieves a client by its unique identifier.
func (r *GormClientRepository) FindByID(ctx context.Context, id uuid.UUID) (*clientDomain.Client, error) {
	var model ClientModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("Client", id.String())
		}
		return nil, fmt.Errorf("failed to find client by ID: %w", err)
	}
	return toDomainClient(&model), nil
}

// FindByEmail retrieves a client by email address.
func (r *GormClientRepository) FindByEmail(ctx context.Context, email string) (*clientDomain.Client, error) {
	var model ClientModel
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("Client", email)
		}
		return nil, fmt.Errorf("failed to find client by email: %w", err)
	}
	return toDomainClient(&model), nil
}

// ListAll retrieves all clients with pagination.
func (r *GormClientRepository) ListAll(ctx context.Context, page, limit int) ([]*clientDomain.Client, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&ClientModel{}).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count clients: %w", err)
	}

	var models []ClientModel
	offset := (page - 1) * limit
	if err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&models).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list clients: %w", err)
	}

	clients := make([]*clientDomain.Client, len(models))
	for i := range models {
		clients[i] = toDomainClient(&models[i])
	}
	return clients, total, nil
}

// Save persists a new client.
func (r *GormClientRepository) Save(ctx context.Context, c *clientDomain.Client) error {
	model := toClientModel(c)
	if err := r.db.WithContext(ctx).Create(&model).Error; err != nil {
		return fmt.Errorf("failed to save client: %w", err)
	}
	return nil
}

// Update persists changes to an existing client with optimistic locking.
func (r *GormClientRepository) Update(ctx context.Context, c *clientDomain.Client) error {
	model := toClientModel(c)
	expectedVersion := c.Version() - 1

	result := r.db.WithContext(ctx).Model(&ClientModel{}).
		Where("id = ? AND version = ?", model.ID, expectedVersion).
		Updates(map[string]interface{}{
			"name":       model.Name,
			"phone":      model.Phone,
			"language":   model.Language,
			"version":    model.Version,
			"updated_at": model.UpdatedAt,
		})
	if result.Error != nil {
		return fmt.Errorf("failed to update client: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.NewConflictError("client was modified by another transaction")
	}
	return nil
}

// DeleteCascade removes the client and every row that belongs to them in a
// single transaction. Booking child rows go first so no foreign keys dangle
// mid-transaction.
func (r *GormClientRepository) DeleteCascade(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var bookingIDs []uuid.UUID
		if err := tx.Model(&BookingModel{}).
			Where("client_id = ?", id).
			Pluck("id", &bookingIDs).Error; err != nil {
			return fmt.Errorf("failed to collect client bookings: %w", err)
		}

		if len(bookingIDs) > 0 {
			if err := tx.Where("booking_id IN ?", bookingIDs).Delete(&StayPhotoModel{}).Error; err != nil {
				return fmt.Errorf("failed to delete stay photos: %w", err)
			}
			if err := tx.Where("booking_id IN ?", bookingIDs).Delete(&BookingPetModel{}).Error; err != nil {
				return fmt.Errorf("failed to delete booking pet links: %w", err)
			}
			if err := tx.Where("booking_id IN ?", bookingIDs).Delete(&BoardingDetailModel{}).Error; err != nil {
				return fmt.Errorf("failed to delete boarding details: %w", err)
			}
			if err := tx.Where("booking_id IN ?", bookingIDs).Delete(&TaxiDetailModel{}).Error; err != nil {
				return fmt.Errorf("failed to delete taxi details: %w", err)
			}
			if err := tx.Where("id IN ?", bookingIDs).Delete(&BookingModel{}).Error; err != nil {
				return fmt.Errorf("failed to delete bookings: %w", err)
			}
		}

		var invoiceIDs []uuid.UUID
		if err := tx.Model(&InvoiceModel{}).
			Where("client_id = ?", id).
			Pluck("id", &invoiceIDs).Error; err != nil {
			return fmt.Errorf("failed to collect client invoices: %w", err)
		}
		if len(invoiceIDs) > 0 {
			if err := tx.Where("invoice_id IN ?", invoiceIDs).Delete(&InvoiceItemModel{}).Error; err != nil {
				return fmt.Errorf("failed to delete invoice items: %w", err)
			}
			if err := tx.Where("id IN ?", invoiceIDs).Delete(&InvoiceModel{}).Error; err != nil {
				return fmt.Errorf("failed to delete invoices: %w", err)
			}
		}

		if err := tx.Where("owner_id = ?", id).Delete(&PetModel{}).Error; err != nil {
			return fmt.Errorf("failed to delete pets: %w", err)
		}
		if err := tx.Where("client_id = ?", id).Delete(&GradeModel{}).Error; err != nil {
			return fmt.Errorf("failed to delete loyalty grade: %w", err)
		}
		if err := tx.Where("actor_id = ? OR entity_id = ?", id, id).Delete(&AuditEntryModel{}).Error; err != nil {
			return fmt.Errorf("failed to delete audit entries: %w", err)
		}

		result := tx.Where("id = ?", id).Delete(&ClientModel{})
		if result.Error != nil {
			return fmt.Errorf("failed to delete client: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return domain.NewNotFoundError("Client", id.String())
		}
		return nil
	})
}

func toClientModel(c *clientDomain.Client) ClientModel {
	return ClientModel{
		ID:           c.ID(),
		Email:        c.Email(),
		Name:         c.Name(),
		Phone:        c.Phone(),
		Language:     c.Language(),
		Role:         string(c.Role()),
		PasswordHash: c.PasswordHash(),
		Version:      c.Version(),
		CreatedAt:    c.CreatedAt(),
		UpdatedAt:    c.UpdatedAt(),
	}
}

func toDomainClient(m *ClientModel) *clientDomain.Client {
	return clientDomain.Reconstruct(
		m.ID,
		m.Email,
		m.Name,
		m.Phone,
		m.Language,
		domain.Role(m.Role),
		m.PasswordHash,
		m.Version,
		m.CreatedAt,
		m.UpdatedAt,
	)
}
