package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/HappyTails-Pet-Care/service-boarding/internal/domain"
	invoiceDomain "github.com/HappyTails-Pet-Care/service-boarding/internal/domain/invoice"
)

// InvoiceModel is the GORM model for the invoices table.
type InvoiceModel struct {
	ID            uuid.UUID  `gorm:"type:uuid;primaryKey"`
	Number        string     `gorm:"uniqueIndex;not null;size:20"`
	ClientID      uuid.UUID  `gorm:"type:uuid;index;not null"`
	BookingID     *uuid.UUID `gorm:"type:uuid;index"`
	Status        string     `gorm:"not null;size:20;index"`
	AmountCents   int64      `gorm:"not null"`
	Notes         string     `gorm:"size:1000"`
	PaymentMethod string     `gorm:"size:50"`
	IssuedAt      time.Time  `gorm:"not null"`
	PaidAt        *time.Time `gorm:""`
	Version       int64      `gorm:"not null;default:1"`
	CreatedAt     time.Time  `gorm:"not null"`
	UpdatedAt     time.Time  `gorm:"not null"`
}

// TableName returns the table name for the GORM model.
func (InvoiceModel) TableName() string {
	return "invoices"
}

// InvoiceItemModel is one line item row belonging to an invoice.
type InvoiceItemModel struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	InvoiceID      uuid.UUID `gorm:"type:uuid;index;not null"`
	Position       int       `gorm:"not null"`
	Description    string    `gorm:"not null;size:255"`
	Quantity       int64     `gorm:"not null"`
	UnitPriceCents int64     `gorm:"not null"`
	TotalCents     int64     `gorm:"not null"`
}

// TableName returns the table name for the GORM model.
func (InvoiceItemModel) TableName() string {
	return "invoice_items"
}

// InvoiceSequenceModel holds the per-year invoice number counter.
type InvoiceSequenceModel struct {
	Year    int   `gorm:"primaryKey"`
	LastSeq int64 `gorm:"not null"`
}

// TableName returns the table name for the GORM model.
func (InvoiceSequenceModel) TableName() string {
	return "invoice_sequences"
}

// GormInvoiceRepository is the GORM-based implementation of InvoiceRepository.
type GormInvoiceRepository struct {
	db *gorm.DB
}

// NewGormInvoiceRepository creates a new GormInvoiceRepository.
func NewGormInvoiceRepository(db *gorm.DB) *GormInvoiceRepository {
	return &GormInvoiceRepository{db: db}
}

// FindByID retrieves an invoice with its items.
func (r *GormInvoiceRepository) FindByID(ctx context.Context, id uuid.UUID) (*invoiceDomain.Invoice, error) {
	var model InvoiceModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("Invoice", id.String())
		}
		return nil, fmt.Errorf("failed to find invoice by ID: %w", err)
	}
	return r.assemble(ctx, &model)
}

// FindByClientID retrieves a client's invoices with pagination.
func (r *GormInvoiceRepository) FindByClientID(ctx context.Context, clientID uuid.UUID, page, limit int) ([]*invoiceDomain.Invoice, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&InvoiceModel{}).Where("client_id = ?", clientID).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count client invoices: %w", err)
	}

	var models []InvoiceModel
	offset := (page - 1) * limit
	if err := r.db.WithContext(ctx).
		Where("client_id = ?", clientID).
		Order("issued_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&models).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to find client invoices: %w", err)
	}

	invoices, err := r.assembleAll(ctx, models)
	if err != nil {
		return nil, 0, err
	}
	return invoices, total, nil
}

// ListAll retrieves all invoices with pagination (staff).
func (r *GormInvoiceRepository) ListAll(ctx context.Context, page, limit int) ([]*invoiceDomain.Invoice, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&InvoiceModel{}).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count invoices: %w", err)
	}

	var models []InvoiceModel
	offset := (page - 1) * limit
	if err := r.db.WithContext(ctx).
		Order("issued_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&models).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list invoices: %w", err)
	}

	invoices, err := r.assembleAll(ctx, models)
	if err != nil {
		return nil, 0, err
	}
	return invoices, total, nil
}

// SumPaidByClient returns the total amount of the client's paid invoices.
func (r *GormInvoiceRepository) SumPaidByClient(ctx context.Context, clientID uuid.UUID) (int64, error) {
	var sum int64
	if err := r.db.WithContext(ctx).Model(&InvoiceModel{}).
		Select("COALESCE(SUM(amount_cents), 0)").
		Where("client_id = ? AND status = ?", clientID, string(invoiceDomain.StatusPaid)).
		Scan(&sum).Error; err != nil {
		return 0, fmt.Errorf("failed to sum paid invoices: %w", err)
	}
	return sum, nil
}

// Create assigns the next sequential invoice number and inserts the invoice
// with its items. The per-year counter row is locked FOR UPDATE so concurrent
// creations serialize on it.
func (r *GormInvoiceRepository) Create(ctx context.Context, inv *invoiceDomain.Invoice) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		year := inv.IssuedAt().UTC().Year()

		var seq InvoiceSequenceModel
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("year = ?", year).
			First(&seq).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			seq = InvoiceSequenceModel{Year: year, LastSeq: 0}
			if err := tx.Create(&seq).Error; err != nil {
				return fmt.Errorf("failed to create invoice sequence: %w", err)
			}
		case err != nil:
			return fmt.Errorf("failed to lock invoice sequence: %w", err)
		}

		seq.LastSeq++
		if err := tx.Model(&InvoiceSequenceModel{}).
			Where("year = ?", year).
			Update("last_seq", seq.LastSeq).Error; err != nil {
			return fmt.Errorf("failed to advance invoice sequence: %w", err)
		}

		if err := inv.AssignNumber(invoiceDomain.FormatNumber(year, seq.LastSeq)); err != nil {
			return err
		}

		model := toInvoiceModel(inv)
		if err := tx.Create(&model).Error; err != nil {
			return fmt.Errorf("failed to save invoice: %w", err)
		}
		for i, item := range inv.Items() {
			row := InvoiceItemModel{
				ID:             uuid.New(),
				InvoiceID:      inv.ID(),
				Position:       i,
				Description:    item.Description,
				Quantity:       item.Quantity,
				UnitPriceCents: item.UnitPriceCents,
				TotalCents:     item.TotalCents,
			}
			if err := tx.Create(&row).Error; err != nil {
				return fmt.Errorf("failed to save invoice item: %w", err)
			}
		}
		return nil
	})
}

// Update persists changes to an existing invoice with optimistic locking.
// Items are immutable after creation.
func (r *GormInvoiceRepository) Update(ctx context.Context, inv *invoiceDomain.Invoice) error {
	model := toInvoiceModel(inv)
	expectedVersion := inv.Version() - 1

	result := r.db.WithContext(ctx).Model(&InvoiceModel{}).
		Where("id = ? AND version = ?", model.ID, expectedVersion).
		Updates(map[string]interface{}{
			"status":         model.Status,
			"payment_method": model.PaymentMethod,
			"paid_at":        model.PaidAt,
			"notes":          model.Notes,
			"version":        model.Version,
			"updated_at":     model.UpdatedAt,
		})
	if result.Error != nil {
		return fmt.Errorf("failed to update invoice: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.NewConflictError("invoice was modified by another transaction")
	}
	return nil
}

func toInvoiceModel(inv *invoiceDomain.Invoice) InvoiceModel {
	return InvoiceModel{
		ID:            inv.ID(),
		Number:        inv.Number(),
		ClientID:      inv.ClientID(),
		BookingID:     inv.BookingID(),
		Status:        string(inv.Status()),
		AmountCents:   inv.AmountCents(),
		Notes:         inv.Notes(),
		PaymentMethod: inv.PaymentMethod(),
		IssuedAt:      inv.IssuedAt(),
		PaidAt:        inv.PaidAt(),
		Version:       inv.Version(),
		CreatedAt:     inv.CreatedAt(),
		UpdatedAt:     inv.UpdatedAt(),
	}
}

func (r *GormInvoiceRepository) assembleAll(ctx context.Context, models []InvoiceModel) ([]*invoiceDomain.Invoice, error) {
	invoices := make([]*invoiceDomain.Invoice, len(models))
	for i := range models {
		inv, err := r.assemble(ctx, &models[i])
		if err != nil {
			return nil, err
		}
		invoices[i] = inv
	}
	return invoices, nil
}

func (r *GormInvoiceRepository) assemble(ctx context.Context, m *InvoiceModel) (*invoiceDomain.Invoice, error) {
	var rows []InvoiceItemModel
	if err := r.db.WithContext(ctx).
		Where("invoice_id = ?", m.ID).
		Order("position ASC").
		Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to load invoice items: %w", err)
	}

	items := make([]invoiceDomain.Item, len(rows))
	for i, row := range rows {
		items[i] = invoiceDomain.Item{
			Description:    row.Description,
			Quantity:       row.Quantity,
			UnitPriceCents: row.UnitPriceCents,
			TotalCents:     row.TotalCents,
		}
	}

	return invoiceDomain.Reconstruct(
		m.ID,
		m.Number,
		m.ClientID,
		m.BookingID,
		invoiceDomain.InvoiceStatus(m.Status),
		m.AmountCents,
		items,
		m.Notes,
		m.PaymentMethod,
		m.IssuedAt,
		m.PaidAt,
		m.Version,
		m.CreatedAt,
		m.UpdatedAt,
	), nil
}
