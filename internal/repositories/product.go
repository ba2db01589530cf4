package repositories

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/arredohq/arredo/internal/models"
	"github.com/arredohq/arredo/internal/shared"
)

// ProductRepository implements models.Repository[*models.PersistedProduct]
// for the local catalog cache.
//
// Products are cached on every search page so selections keep rendering with
// names and images when the CRM is unreachable. Duplicates are deduplicated
// by catalog product id.
type ProductRepository struct {
	db *sql.DB
}

// NewProductRepository creates a new ProductRepository with the given database connection
func NewProductRepository(db *sql.DB) *ProductRepository {
	return &ProductRepository{db: db}
}

// Create inserts a new [models.PersistedProduct] into the database with generated ID and sequence
func (r *ProductRepository) Create(product *models.PersistedProduct) error {
	sequence, err := NextSequence(r.db, "products")
	if err != nil {
		return fmt.Errorf("failed to generate sequence: %w", err)
	}

	id := shared.GenerateID()
	product.SetID(id)

	if err := product.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	p := product.Product()
	query := `
		INSERT INTO products (id, sequence, product_id, name, base_name, category, collection, image_url, price, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err = r.db.Exec(query,
		id,
		sequence,
		p.ID,
		p.Name,
		p.BaseName,
		p.Category,
		p.Collection,
		p.ImageURL,
		p.Price,
		product.CreatedAt(),
		product.UpdatedAt(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert product: %w", err)
	}

	return nil
}

// Get retrieves a cached product by its local ID, excluding soft-deleted rows
func (r *ProductRepository) Get(id string) (*models.PersistedProduct, error) {
	query := `
		SELECT id, sequence, product_id, name, base_name, category, collection, image_url, price, created_at, updated_at, deleted_at
		FROM products
		WHERE id = ? AND deleted_at IS NULL
	`

	return r.scanOne(r.db.QueryRow(query, id))
}

// GetByProductID retrieves a cached product by its catalog id
func (r *ProductRepository) GetByProductID(productID string) (*models.PersistedProduct, error) {
	query := `
		SELECT id, sequence, product_id, name, base_name, category, collection, image_url, price, created_at, updated_at, deleted_at
		FROM products
		WHERE product_id = ? AND deleted_at IS NULL
	`

	return r.scanOne(r.db.QueryRow(query, productID))
}

// Update modifies an existing cached product
func (r *ProductRepository) Update(product *models.PersistedProduct) error {
	if err := product.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	product.Touch()
	p := product.Product()

	query := `
		UPDATE products
		SET name = ?, base_name = ?, category = ?, collection = ?, image_url = ?, price = ?, updated_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`

	result, err := r.db.Exec(query,
		p.Name,
		p.BaseName,
		p.Category,
		p.Collection,
		p.ImageURL,
		p.Price,
		product.UpdatedAt(),
		product.ID(),
	)
	if err != nil {
		return fmt.Errorf("failed to update product: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check update result: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: %s", shared.ErrProductNotFound, product.ID())
	}

	return nil
}

// Delete soft-deletes a cached product by its local ID
func (r *ProductRepository) Delete(id string) error {
	query := `UPDATE products SET deleted_at = ? WHERE id = ? AND deleted_at IS NULL`

	result, err := r.db.Exec(query, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check delete result: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: %s", shared.ErrProductNotFound, id)
	}

	return nil
}

// List retrieves cached products matching the given criteria. Supported keys:
// "category", "collection".
func (r *ProductRepository) List(criteria map[string]any) ([]*models.PersistedProduct, error) {
	query := `
		SELECT id, sequence, product_id, name, base_name, category, collection, image_url, price, created_at, updated_at, deleted_at
		FROM products
		WHERE deleted_at IS NULL
	`

	var args []any
	if category, ok := criteria["category"]; ok {
		query += " AND category = ?"
		args = append(args, category)
	}
	if collection, ok := criteria["collection"]; ok {
		query += " AND collection = ?"
		args = append(args, collection)
	}

	query += " ORDER BY sequence"

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	defer rows.Close()

	var products []*models.PersistedProduct
	for rows.Next() {
		product, err := r.scanRow(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, product)
	}

	return products, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (r *ProductRepository) scanOne(row *sql.Row) (*models.PersistedProduct, error) {
	product, err := r.scanRow(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w", shared.ErrProductNotFound)
	}
	return product, err
}

func (r *ProductRepository) scanRow(row rowScanner) (*models.PersistedProduct, error) {
	var (
		id, productID, name                  string
		baseName, category, collection, img  sql.NullString
		price                                sql.NullFloat64
		sequence                             int
		createdAt, updatedAt                 time.Time
		deletedAt                            sql.NullTime
	)

	err := row.Scan(&id, &sequence, &productID, &name, &baseName, &category, &collection, &img, &price, &createdAt, &updatedAt, &deletedAt)
	if err != nil {
		return nil, err
	}

	dto := models.Product{
		ID:         productID,
		Name:       name,
		BaseName:   baseName.String,
		Category:   category.String,
		Collection: collection.String,
		ImageURL:   img.String,
		Price:      price.Float64,
	}

	product := models.NewPersistedProduct(sequence, dto)
	product.SetID(id)

	var deleted *time.Time
	if deletedAt.Valid {
		deleted = &deletedAt.Time
	}
	product.SetTimestamps(createdAt, updatedAt, deleted)

	return product, nil
}
