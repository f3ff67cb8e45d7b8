package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/artem13815/recruitment/api/http/presenter"
)

const defaultPageSize = 50

func parseLimitOffset(c *fiber.Ctx, defLimit int) (limit, offset int) {
	limit = defLimit
	offset = 0
	if v := strings.TrimSpace(c.Query("limit")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 200 {
			limit = n
		}
	}
	if v := strings.TrimSpace(c.Query("offset")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			offset = n
		}
	}
	return limit, offset
}

func unauthorized(c *fiber.Ctx) error {
	return presenter.ErrorCode(c, http.StatusUnauthorized, "UNAUTHORIZED", "authentication required")
}

func invalidParam(c *fiber.Ctx, name string) error {
	return presenter.ErrorCode(c, http.StatusBadRequest, "VALIDATION_ERROR", "invalid "+name)
}
