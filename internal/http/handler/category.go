package handler

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/uptrace/bun"

	"catalogapi/internal/logging"
	"catalogapi/internal/model"
	"catalogapi/internal/repository"
)

// categoryRequest is the inbound shape for category writes.
type categoryRequest struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// listResult is the outbound shape for paginated collections.
type listResult[T any] struct {
	Items []*T `json:"data"`
	Total int  `json:"total"`
}

func parseID(c *fiber.Ctx) (int64, error) {
	return strconv.ParseInt(c.Params("id"), 10, 64)
}

func parsePageQuery(c *fiber.Ctx) (repository.PageQuery, error) {
	limit, err := strconv.Atoi(c.Query("limit", "10"))
	if err != nil {
		return repository.PageQuery{}, errors.New("invalid limit")
	}
	offset, err := strconv.Atoi(c.Query("offset", "0"))
	if err != nil {
		return repository.PageQuery{}, errors.New("invalid offset")
	}
	return repository.PageQuery{Limit: limit, Offset: offset}, nil
}

// ListCategories returns a page of categories. ?with_products=true
// expands the product relation; ?nonempty=true restricts the list to
// categories that have at least one product.
func ListCategories(db *bun.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		pq, err := parsePageQuery(c)
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_PAGINATION", err.Error())
		}

		uow := repository.NewUnitOfWork(db)
		defer uow.Close()

		if c.QueryBool("nonempty") {
			cats, err := uow.Categories().ListNonEmpty(c.UserContext())
			if err != nil {
				return err
			}
			return c.JSON(listResult[model.Category]{Items: cats, Total: len(cats)})
		}

		var res *repository.PageResult[model.Category]
		if c.QueryBool("with_products") {
			res, err = uow.Categories().ListWithProducts(c.UserContext(), pq)
		} else {
			res, err = uow.Categories().List(c.UserContext(), pq)
		}
		if err != nil {
			return err
		}
		return c.JSON(listResult[model.Category]{Items: res.Items, Total: res.Total})
	}
}

// GetCategory returns one category with its products.
func GetCategory(db *bun.DB, log *logging.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := parseID(c)
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}

		uow := repository.NewUnitOfWork(db)
		defer uow.Close()

		cat, err := uow.Categories().FindWithProducts(c.UserContext(), id)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				log.WithFields(logging.Fields{
					"request_id":  requestIDFromCtx(c),
					"category_id": id,
				}).Info("category not found")
				return writeError(c, fiber.StatusNotFound, "NOT_FOUND", "category not found")
			}
			return err
		}
		return c.JSON(cat)
	}
}

// CreateCategory stages and commits a new category.
func CreateCategory(db *bun.DB, log *logging.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var in categoryRequest
		if err := c.BodyParser(&in); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "cannot parse request body")
		}
		if in.Name == "" {
			return writeError(c, fiber.StatusBadRequest, "NAME_REQUIRED", "name is required")
		}

		uow := repository.NewUnitOfWork(db)
		defer uow.Close()

		cat := &model.Category{Name: in.Name, Description: in.Description}
		if err := uow.Categories().Add(c.UserContext(), cat); err != nil {
			return err
		}
		if err := uow.Commit(c.UserContext()); err != nil {
			return err
		}

		log.WithFields(logging.Fields{
			"request_id":  requestIDFromCtx(c),
			"category_id": cat.ID,
		}).Info("category created")
		return c.Status(fiber.StatusCreated).JSON(cat)
	}
}

// UpdateCategory stages a full-record overwrite of an existing category.
func UpdateCategory(db *bun.DB, log *logging.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := parseID(c)
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		var in categoryRequest
		if err := c.BodyParser(&in); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "cannot parse request body")
		}
		if in.ID != 0 && in.ID != id {
			return writeError(c, fiber.StatusBadRequest, "ID_MISMATCH", "body id does not match path id")
		}
		if in.Name == "" {
			return writeError(c, fiber.StatusBadRequest, "NAME_REQUIRED", "name is required")
		}

		uow := repository.NewUnitOfWork(db)
		defer uow.Close()

		cat := &model.Category{ID: id, Name: in.Name, Description: in.Description}
		if err := uow.Categories().Update(c.UserContext(), cat); err != nil {
			return err
		}
		if err := uow.Commit(c.UserContext()); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				log.WithFields(logging.Fields{
					"request_id":  requestIDFromCtx(c),
					"category_id": id,
				}).Info("category not found")
				return writeError(c, fiber.StatusNotFound, "NOT_FOUND", "category not found")
			}
			return err
		}
		return c.JSON(cat)
	}
}

// DeleteCategory stages and commits removal of a category.
func DeleteCategory(db *bun.DB, log *logging.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := parseID(c)
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}

		uow := repository.NewUnitOfWork(db)
		defer uow.Close()

		if err := uow.Categories().Delete(c.UserContext(), &model.Category{ID: id}); err != nil {
			return err
		}
		if err := uow.Commit(c.UserContext()); err != nil {
			return err
		}

		log.WithFields(logging.Fields{
			"request_id":  requestIDFromCtx(c),
			"category_id": id,
		}).Info("category deleted")
		return c.SendStatus(fiber.StatusNoContent)
	}
}
