package services

import (
	"os"

	"github.com/rs/zerolog"

	"catalog/internal/models"
	"catalog/internal/repositories"
	"catalog/pkg/rabbitmq"
)

var logger = zerolog.New(os.Stdout).With().Timestamp().Str("component", "product-service").Logger()

// ProductService orchestrates validation, existence checks and storage
// calls for the product catalog. It holds no state of its own between
// requests; concurrent updates to the same id are resolved by the
// database, not serialized here.
type ProductService struct {
	productRepo repositories.ProductRepository
	publisher   rabbitmq.Publisher
}

// NewProductService wires the service to its storage gateway and an
// optional event publisher (nil disables event publishing).
func NewProductService(productRepo repositories.ProductRepository, publisher rabbitmq.Publisher) *ProductService {
	return &ProductService{
		productRepo: productRepo,
		publisher:   publisher,
	}
}

// List returns every product, ordered by id ascending. An empty slice
// is a valid result.
func (s *ProductService) List() ([]models.Product, error) {
	return s.productRepo.FindAll()
}

// Get returns the product with the given id, or
// repositories.ErrNotFound. Update and Delete funnel their existence
// checks through this same lookup.
func (s *ProductService) Get(id uint) (*models.Product, error) {
	return s.productRepo.FindByID(id)
}

// Create validates the payload, persists a new product and returns the
// stored record with its assigned id and timestamps.
func (s *ProductService) Create(input *models.CreateProductInput) (*models.Product, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}

	product := &models.Product{
		Title:       input.Title,
		Description: input.Description,
	}
	if err := s.productRepo.Create(product); err != nil {
		return nil, err
	}

	s.publishEvent("created", product)
	return product, nil
}

// Update validates the payload, loads the current record, merges only
// the present fields and persists the result. The storage layer
// refreshes UpdatedAt on save.
func (s *ProductService) Update(id uint, input *models.UpdateProductInput) (*models.Product, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}

	product, err := s.Get(id)
	if err != nil {
		return nil, err
	}

	input.Apply(product)
	if err := s.productRepo.Update(product); err != nil {
		return nil, err
	}

	s.publishEvent("updated", product)
	return product, nil
}

// Delete removes the product with the given id and returns its last
// known state for confirmation to the caller.
func (s *ProductService) Delete(id uint) (*models.Product, error) {
	product, err := s.Get(id)
	if err != nil {
		return nil, err
	}

	if err := s.productRepo.Delete(product); err != nil {
		return nil, err
	}

	s.publishEvent("deleted", product)
	return product, nil
}

// publishEvent emits a lifecycle event on a best-effort basis. A broker
// failure never fails the request that triggered it.
func (s *ProductService) publishEvent(action string, product *models.Product) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishProductEvent(action, product); err != nil {
		logger.Error().Err(err).Uint("product_id", product.ID).Msgf("Failed to publish product %s event", action)
	}
}
