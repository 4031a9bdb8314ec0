package handler

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/gofiber/fiber/v2"

	"ocrdocs/internal/storage"
)

// ServeBlob streams a stored blob by key for backends that are not plain directories.
func ServeBlob(store storage.Storage) fiber.Handler {
	return func(c *fiber.Ctx) error {
		key, err := url.PathUnescape(c.Params("name"))
		if err != nil {
			return fiber.ErrNotFound
		}

		rc, info, err := store.Get(c.UserContext(), key)
		if err != nil {
			if errors.Is(err, storage.ErrNotFound) || errors.Is(err, storage.ErrInvalidKey) || errors.Is(err, storage.ErrEmptyKey) {
				return fiber.ErrNotFound
			}
			return writeError(c, fiber.StatusInternalServerError, err.Error())
		}

		if info.ContentType != "" {
			c.Set(fiber.HeaderContentType, info.ContentType)
		}
		if !info.LastModified.IsZero() {
			c.Set(fiber.HeaderLastModified, info.LastModified.UTC().Format(http.TimeFormat))
		}
		// the response owns rc from here and closes it once the body is written
		if info.Size >= 0 {
			return c.SendStream(rc, int(info.Size))
		}
		return c.SendStream(rc)
	}
}
