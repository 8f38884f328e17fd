package domain

// Role identifies who is acting on an operation.
type Role string

const (
	RoleClient Role = "client"
	RoleStaff  Role = "staff"
)

// IsValid returns true if the role is recognized.
func (r Role) IsValid() bool {
	return r == RoleClient || r == RoleStaff
}

// CurrencyEUR is the only currency the business bills in.
const CurrencyEUR = "EUR"

// PaginatedResult wraps a page of items with paging metadata.
type PaginatedResult[T any] struct {
	Items []T   `json:"items"`
	Total int64 `json:"total"`
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
}

// NewPaginatedResult creates a PaginatedResult for the given page.
func NewPaginatedResult[T any](items []T, total int64, page, limit int) PaginatedResult[T] {
	return PaginatedResult[T]{Items: items, Total: total, Page: page, Limit: limit}
}
