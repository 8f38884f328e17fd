package photo

import (
	"time"

	"github.com/google/uuid"

	"github.com/HappyTails-Pet-Care/service-boarding/internal/domain"
)

// StayPhoto is a picture staff attach to a boarding stay so the owner can see
// how their pet is doing.
type StayPhoto struct {
	id         uuid.UUID
	bookingID  uuid.UUID
	uploadedBy uuid.UUID
	photoURL   string
	caption    string
	takenAt    time.Time
	createdAt  time.Time
}

// NewStayPhoto creates a new stay photo.
func NewStayPhoto(bookingID, uploadedBy uuid.UUID, photoURL, caption string) (*StayPhoto, error) {
	if bookingID == uuid.Nil {
		return nil, domain.NewValidationError("booking ID is required")
	}
	if photoURL == "" {
		return nil, domain.NewValidationError("photo URL is required")
	}

	now := time.Now().UTC()
	return &StayPhoto{
		id:         uuid.New(),
		bookingID:  bookingID,
		uploadedBy: uploadedBy,
		photoURL:   photoURL,
		caption:    caption,
		takenAt:    now,
		createdAt:  now,
	}, nil
}

// Reconstruct rebuilds a StayPhoto from persistence.
func Reconstruct(id, bookingID, uploadedBy uuid.UUID, photoURL, caption string, takenAt, createdAt time.Time) *StayPhoto {
	return &StayPhoto{
		id:         id,
		bookingID:  bookingID,
		uploadedBy: uploadedBy,
		photoURL:   photoURL,
		caption:    caption,
		takenAt:    takenAt,
		createdAt:  createdAt,
	}
}

// Getters.
func (p *StayPhoto) ID() uuid.UUID         { return p.id }
func (p *StayPhoto) BookingID() uuid.UUID  { return p.bookingID }
func (p *StayPhoto) UploadedBy() uuid.UUID { return p.uploadedBy }
func (p *StayPhoto) PhotoURL() string      { return p.photoURL }
func (p *StayPhoto) Caption() string       { return p.caption }
func (p *StayPhoto) TakenAt() time.Time    { return p.takenAt }
func (p *StayPhoto) CreatedAt() time.Time  { return p.createdAt }
