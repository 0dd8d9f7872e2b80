package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"catalogapi/internal/logging"
	"catalogapi/internal/model"
	"catalogapi/internal/repository"
)

// productRequest is the inbound shape for product writes.
type productRequest struct {
	ID         int64   `json:"id"`
	Name       string  `json:"name"`
	SKU        string  `json:"sku"`
	Price      float64 `json:"price"`
	Stock      int     `json:"stock"`
	CategoryID int64   `json:"category_id"`
}

// ListProducts returns a page of products, optionally restricted to one
// category via ?category_id=.
func ListProducts(db *bun.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		pq, err := parsePageQuery(c)
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_PAGINATION", err.Error())
		}

		uow := repository.NewUnitOfWork(db)
		defer uow.Close()

		var res *repository.PageResult[model.Product]
		if catID := c.QueryInt("category_id"); catID > 0 {
			res, err = uow.Products().ListByCategory(c.UserContext(), int64(catID), pq)
		} else {
			res, err = uow.Products().List(c.UserContext(), pq)
		}
		if err != nil {
			return err
		}
		return c.JSON(listResult[model.Product]{Items: res.Items, Total: res.Total})
	}
}

// ListProductsByCategory returns the products belonging to the category
// named in the path.
func ListProductsByCategory(db *bun.DB, log *logging.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := parseID(c)
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		pq, err := parsePageQuery(c)
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_PAGINATION", err.Error())
		}

		uow := repository.NewUnitOfWork(db)
		defer uow.Close()

		// both repositories observe the same session
		if _, err := uow.Categories().FindByID(c.UserContext(), id); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				log.WithFields(logging.Fields{
					"request_id":  requestIDFromCtx(c),
					"category_id": id,
				}).Info("category not found")
				return writeError(c, fiber.StatusNotFound, "NOT_FOUND", "category not found")
			}
			return err
		}

		res, err := uow.Products().ListByCategory(c.UserContext(), id, pq)
		if err != nil {
			return err
		}
		return c.JSON(listResult[model.Product]{Items: res.Items, Total: res.Total})
	}
}

// GetProduct returns one product joined to its category.
func GetProduct(db *bun.DB, log *logging.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := parseID(c)
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}

		uow := repository.NewUnitOfWork(db)
		defer uow.Close()

		prod, err := uow.Products().FindWithCategory(c.UserContext(), id)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				log.WithFields(logging.Fields{
					"request_id": requestIDFromCtx(c),
					"product_id": id,
				}).Info("product not found")
				return writeError(c, fiber.StatusNotFound, "NOT_FOUND", "product not found")
			}
			return err
		}
		return c.JSON(prod)
	}
}

// CreateProduct stages and commits a new product after checking its
// category exists. A missing SKU is generated.
func CreateProduct(db *bun.DB, log *logging.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var in productRequest
		if err := c.BodyParser(&in); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "cannot parse request body")
		}
		if in.Name == "" {
			return writeError(c, fiber.StatusBadRequest, "NAME_REQUIRED", "name is required")
		}
		if in.CategoryID == 0 {
			return writeError(c, fiber.StatusBadRequest, "CATEGORY_REQUIRED", "category_id is required")
		}
		if in.SKU == "" {
			in.SKU = uuid.NewString()
		}

		uow := repository.NewUnitOfWork(db)
		defer uow.Close()

		if _, err := uow.Categories().FindByID(c.UserContext(), in.CategoryID); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				log.WithFields(logging.Fields{
					"request_id":  requestIDFromCtx(c),
					"category_id": in.CategoryID,
				}).Info("category not found")
				return writeError(c, fiber.StatusBadRequest, "CATEGORY_NOT_FOUND", "category does not exist")
			}
			return err
		}

		prod := &model.Product{
			Name:       in.Name,
			SKU:        in.SKU,
			Price:      in.Price,
			Stock:      in.Stock,
			CategoryID: in.CategoryID,
		}
		if err := uow.Products().Add(c.UserContext(), prod); err != nil {
			return err
		}
		if err := uow.Commit(c.UserContext()); err != nil {
			return err
		}

		log.WithFields(logging.Fields{
			"request_id": requestIDFromCtx(c),
			"product_id": prod.ID,
		}).Info("product created")
		return c.Status(fiber.StatusCreated).JSON(prod)
	}
}

// UpdateProduct stages a full-record overwrite of an existing product.
func UpdateProduct(db *bun.DB, log *logging.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := parseID(c)
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		var in productRequest
		if err := c.BodyParser(&in); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "cannot parse request body")
		}
		if in.ID != 0 && in.ID != id {
			return writeError(c, fiber.StatusBadRequest, "ID_MISMATCH", "body id does not match path id")
		}
		if in.Name == "" || in.SKU == "" || in.CategoryID == 0 {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "name, sku and category_id are required")
		}

		uow := repository.NewUnitOfWork(db)
		defer uow.Close()

		prod := &model.Product{
			ID:         id,
			Name:       in.Name,
			SKU:        in.SKU,
			Price:      in.Price,
			Stock:      in.Stock,
			CategoryID: in.CategoryID,
		}
		if err := uow.Products().Update(c.UserContext(), prod); err != nil {
			return err
		}
		if err := uow.Commit(c.UserContext()); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				log.WithFields(logging.Fields{
					"request_id": requestIDFromCtx(c),
					"product_id": id,
				}).Info("product not found")
				return writeError(c, fiber.StatusNotFound, "NOT_FOUND", "product not found")
			}
			return err
		}
		return c.JSON(prod)
	}
}

// DeleteProduct stages and commits removal of a product.
func DeleteProduct(db *bun.DB, log *logging.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := parseID(c)
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}

		uow := repository.NewUnitOfWork(db)
		defer uow.Close()

		if err := uow.Products().Delete(c.UserContext(), &model.Product{ID: id}); err != nil {
			return err
		}
		if err := uow.Commit(c.UserContext()); err != nil {
			return err
		}

		log.WithFields(logging.Fields{
			"request_id": requestIDFromCtx(c),
			"product_id": id,
		}).Info("product deleted")
		return c.SendStatus(fiber.StatusNoContent)
	}
}
