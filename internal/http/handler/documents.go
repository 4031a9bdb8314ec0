package handler

import (
	"encoding/json"
	"errors"
	"mime/multipart"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"

	"ocrdocs/internal/model"
	"ocrdocs/internal/repository"
	"ocrdocs/internal/service"
)

const (
	fieldTitle   = "title"
	fieldOCRText = "ocrText"
	fieldFile    = "file"

	msgNotFound = "Document not found"
)

var errUnexpectedFile = errors.New("unexpected field")

type uploadResponse struct {
	Success  bool            `json:"success"`
	Document *model.Document `json:"document"`
}

// UploadDocument handles POST /upload.
//
//	@Summary	Upload a document
//	@Tags		documents
//	@Accept		multipart/form-data
//	@Produce	json
//	@Param		title	formData	string	false	"Document title"
//	@Param		ocrText	formData	string	false	"Recognised text"
//	@Param		file	formData	file	false	"Scanned file"
//	@Success	200		{object}	uploadResponse
//	@Failure	500		{object}	errorPayload
//	@Router		/upload [post]
func UploadDocument(docSvc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		in, cleanup, err := parseUpload(c)
		if cleanup != nil {
			defer cleanup()
		}
		if err != nil {
			var fe *fiber.Error
			if errors.As(err, &fe) {
				return writeError(c, fe.Code, fe.Message)
			}
			return writeError(c, fiber.StatusInternalServerError, err.Error())
		}

		doc, err := docSvc.Upload(c.UserContext(), in)
		if err != nil {
			return writeError(c, fiber.StatusInternalServerError, err.Error())
		}
		return c.Status(fiber.StatusOK).JSON(uploadResponse{Success: true, Document: doc})
	}
}

// ListDocuments handles GET /documents. The response is the bare array, newest first.
//
//	@Summary	List documents
//	@Tags		documents
//	@Produce	json
//	@Success	200	{array}		model.Document
//	@Failure	500	{object}	errorPayload
//	@Router		/documents [get]
func ListDocuments(docSvc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		items, err := docSvc.List(c.UserContext())
		if err != nil {
			return writeError(c, fiber.StatusInternalServerError, err.Error())
		}
		if items == nil {
			items = []model.Document{}
		}
		return c.JSON(items)
	}
}

// GetDocument handles GET /documents/:id. The response is the bare record.
//
//	@Summary	Get a document
//	@Tags		documents
//	@Produce	json
//	@Param		id	path		string	true	"Document ID"
//	@Success	200	{object}	model.Document
//	@Failure	404	{object}	errorPayload
//	@Failure	500	{object}	errorPayload
//	@Router		/documents/{id} [get]
func GetDocument(docSvc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := utils.CopyString(c.Params("id"))
		doc, err := docSvc.Get(c.UserContext(), id)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return writeError(c, fiber.StatusNotFound, msgNotFound)
			}
			return writeError(c, fiber.StatusInternalServerError, err.Error())
		}
		return c.JSON(doc)
	}
}

// parseUpload reads title, ocrText and the optional file from a multipart or JSON body.
// Any other body is treated as a form without fields.
func parseUpload(c *fiber.Ctx) (service.UploadInput, func(), error) {
	ct := strings.ToLower(string(c.Request().Header.ContentType()))

	switch {
	case strings.HasPrefix(ct, fiber.MIMEMultipartForm):
		form, err := c.MultipartForm()
		if err != nil {
			return service.UploadInput{}, nil, err
		}
		return fromMultipart(form)

	case strings.HasPrefix(ct, fiber.MIMEApplicationJSON):
		if len(c.Body()) == 0 {
			return service.UploadInput{}, nil, nil
		}
		var body struct {
			Title   *string `json:"title"`
			OCRText *string `json:"ocrText"`
		}
		if err := json.Unmarshal(c.Body(), &body); err != nil {
			return service.UploadInput{}, nil, fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		return service.UploadInput{Title: body.Title, OCRText: body.OCRText}, nil, nil
	}

	return service.UploadInput{}, nil, nil
}

func fromMultipart(form *multipart.Form) (service.UploadInput, func(), error) {
	in := service.UploadInput{
		Title:   firstValue(form.Value, fieldTitle),
		OCRText: firstValue(form.Value, fieldOCRText),
	}

	for name, files := range form.File {
		if name != fieldFile || len(files) > 1 {
			return in, nil, errUnexpectedFile
		}
	}

	files := form.File[fieldFile]
	if len(files) == 0 {
		return in, nil, nil
	}

	fh := files[0]
	f, err := fh.Open()
	if err != nil {
		return in, nil, err
	}

	in.File = &service.FileInput{
		Name:        fh.Filename,
		ContentType: fh.Header.Get(fiber.HeaderContentType),
		Size:        fh.Size,
		Reader:      f,
	}
	return in, func() { f.Close() }, nil
}

// firstValue returns nil when the field was absent, so absent and empty stay distinct.
func firstValue(values map[string][]string, key string) *string {
	v, ok := values[key]
	if !ok || len(v) == 0 {
		return nil
	}
	s := v[0]
	return &s
}
