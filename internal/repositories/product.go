package repositories

import (
	"errors"

	"gorm.io/gorm"

	"catalog/internal/models"
)

// ErrNotFound is returned when no product exists for a given id. It is
// the only storage detail callers are expected to branch on.
var ErrNotFound = errors.New("product not found")

// ProductRepository is the narrow gateway the service uses to read and
// write persisted products, independent of the storage technology.
type ProductRepository interface {
	FindAll() ([]models.Product, error)
	FindByID(id uint) (*models.Product, error)
	Create(product *models.Product) error
	Update(product *models.Product) error
	Delete(product *models.Product) error
}

// GORMProductRepository implements ProductRepository on top of a GORM
// connection (PostgreSQL in production, SQLite in tests).
type GORMProductRepository struct {
	db *gorm.DB
}

func NewGORMProductRepository(db *gorm.DB) *GORMProductRepository {
	return &GORMProductRepository{db: db}
}

// FindAll returns every product ordered by id ascending.
func (r *GORMProductRepository) FindAll() ([]models.Product, error) {
	products := make([]models.Product, 0)
	if err := r.db.Order("id asc").Find(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}

func (r *GORMProductRepository) FindByID(id uint) (*models.Product, error) {
	var product models.Product
	err := r.db.First(&product, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *GORMProductRepository) Create(product *models.Product) error {
	return r.db.Create(product).Error
}

// Update persists the full current state of the record. The merge of
// partial input happens in the service before this call.
func (r *GORMProductRepository) Update(product *models.Product) error {
	return r.db.Save(product).Error
}

func (r *GORMProductRepository) Delete(product *models.Product) error {
	return r.db.Delete(product).Error
}
