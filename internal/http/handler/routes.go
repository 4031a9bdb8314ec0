package handler

import (
	"github.com/gofiber/fiber/v2"

	"ocrdocs/internal/service"
	"ocrdocs/internal/storage"
)

// RegisterRoutes attaches HTTP routes to the provided Fiber app.
// Stored blobs are served under uploadPrefix: straight from disk when the store is a
// local directory, otherwise streamed through the store.
func RegisterRoutes(app *fiber.App, health Pinger, docSvc service.DocumentService, store storage.Storage, uploadPrefix string) {
	app.Get("/", Root())
	app.Get("/health", HealthCheck(health))
	app.Get("/healthz", LivenessProbe())

	app.Post("/upload", UploadDocument(docSvc))
	app.Get("/documents", ListDocuments(docSvc))
	app.Get("/documents/:id", GetDocument(docSvc))

	if local, ok := store.(storage.LocalRoot); ok {
		app.Static(uploadPrefix, local.Root(), fiber.Static{
			Browse: false,
		})
		return
	}
	if store != nil {
		app.Get(uploadPrefix+"/:name", ServeBlob(store))
	}
}
