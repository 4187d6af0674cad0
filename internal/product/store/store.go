// Package store provides an interface for product storage operations.
package store

import (
	"context"
	"time"
)

// Product is a stored product row.
type Product struct {
	ID        int64
	Name      string
	Price     float64
	Stock     int64
	CreatedAt time.Time
	UpdatedAt time.Time
}

// ProductStore is an interface for product storage operations.
// It abstracts the underlying data store, allowing for different implementations (e.g., in-memory, database).
type ProductStore interface {
	// FindByID retrieves a single product by its unique identifier.
	// Returns ErrProductNotFound if no product exists with the given ID.
	FindByID(ctx context.Context, id int64) (*Product, error)

	// FindAll returns all products ordered by ID.
	// Returns an empty slice if no products exist.
	FindAll(ctx context.Context) ([]Product, error)

	// Create adds a new product and assigns its ID.
	Create(ctx context.Context, name string, price float64, stock int64) (*Product, error)

	// Update replaces the product's details.
	// Returns ErrProductNotFound if no product exists with the given ID.
	Update(ctx context.Context, id int64, name string, price float64, stock int64) (*Product, error)

	// DeleteByID removes a product by its ID.
	// Returns ErrProductNotFound if no product exists with the given ID.
	DeleteByID(ctx context.Context, id int64) error

	// Ping reports whether the store can serve requests.
	Ping(ctx context.Context) error
}
