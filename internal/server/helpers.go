package server

import (
	"errors"
	"strconv"

	"folio/internal/middleware"
	"folio/internal/models"
	"folio/internal/query"

	"github.com/gofiber/fiber/v2"
)

// errResponseWritten is a sentinel indicating the HTTP response was already
// committed by a helper. Handlers must return nil (not this error) to avoid
// Fiber's ErrorHandler overwriting the response.
var errResponseWritten = errors.New("response already written")

const (
	defaultPaginationLimit = 20
	maxPaginationLimit     = 100
)

// listParams turns the query string into listing params. A missing or zero
// limit becomes the default page size and larger limits are capped.
func listParams(c *fiber.Ctx) (query.Params, error) {
	params, err := query.ParamsFromQuery(c.Queries())
	if err != nil {
		_ = respondError(c, err)
		return query.Params{}, errResponseWritten
	}
	if params.Limit <= 0 {
		params.Limit = defaultPaginationLimit
	}
	params.Limit = min(params.Limit, maxPaginationLimit)
	return params, nil
}

// parseID extracts a route parameter by name as a positive uint.
// On failure it writes a 404 JSON response and returns errResponseWritten.
func parseID(c *fiber.Ctx, param string) (uint, error) {
	id, err := strconv.ParseUint(c.Params(param), 10, 0)
	if err != nil || id == 0 {
		_ = respondError(c, models.NewNotFoundError("Resource", c.Params(param)))
		return 0, errResponseWritten
	}
	return uint(id), nil
}

// parseBody decodes the JSON request body into dest.
func parseBody(c *fiber.Ctx, dest any) error {
	if err := c.BodyParser(dest); err != nil {
		_ = respondError(c, models.NewValidationError("Invalid request body"))
		return errResponseWritten
	}
	return nil
}

// respondError writes err and logs it when it is not a client error.
func respondError(c *fiber.Ctx, err error) error {
	if models.CodeOf(err) == models.CodeInternal {
		middleware.Logger.ErrorContext(c.UserContext(), "request failed",
			"path", c.Path(), "method", c.Method(), "error", err)
	}
	return models.RespondWithError(c, err)
}

// respondList writes one page of seq with the unpaginated total in
// X-Total-Count.
func respondList[T any](c *fiber.Ctx, seq query.Sequence[T], err error) error {
	if err != nil {
		return respondError(c, err)
	}
	ctx := c.UserContext()
	total, err := seq.Count(ctx)
	if err != nil {
		return respondError(c, err)
	}
	items, err := seq.List(ctx)
	if err != nil {
		return respondError(c, err)
	}
	if items == nil {
		items = []T{}
	}
	c.Set("X-Total-Count", strconv.FormatInt(total, 10))
	return c.JSON(items)
}

func respondCreated(c *fiber.Ctx, v any, err error) error {
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(v)
}

func respondOK(c *fiber.Ctx, v any, err error) error {
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(v)
}

func respondDeleted(c *fiber.Ctx, err error) error {
	if err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
