package handlers

import (
	"errors"
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/imcalledaditi/MomCare-AI-Assistant/internal/api/middleware"
	"github.com/imcalledaditi/MomCare-AI-Assistant/internal/appwrite"
	"github.com/imcalledaditi/MomCare-AI-Assistant/internal/documents"
)

// maxUploadSize caps a single uploaded file.
const maxUploadSize = 20 << 20

// readUpload opens the multipart "file" field. The caller closes the returned closer.
func readUpload(c *gin.Context) (documents.File, func() error, error) {
	header, err := c.FormFile("file")
	if err != nil {
		return documents.File{}, nil, fmt.Errorf("no file uploaded: %w", err)
	}
	if header.Size > maxUploadSize {
		return documents.File{}, nil, fmt.Errorf("file is larger than %d MB", maxUploadSize>>20)
	}
	f, err := header.Open()
	if err != nil {
		return documents.File{}, nil, fmt.Errorf("opening upload: %w", err)
	}
	return documents.File{
		Name:     header.Filename,
		MimeType: header.Header.Get("Content-Type"),
		Content:  f,
	}, f.Close, nil
}

func (h *handler) ListDocuments(c *gin.Context) {
	c.JSON(http.StatusOK, h.medical.List(c.Request.Context(), middleware.SessionSecret(c)))
}

func (h *handler) UploadDocument(c *gin.Context) {
	file, closeFile, err := readUpload(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	defer closeFile()

	ctx := c.Request.Context()
	secret := middleware.SessionSecret(c)
	doc, err := h.medical.Upload(ctx, secret, file, documents.MedicalDocumentTypes)
	if err != nil {
		if errors.Is(err, documents.ErrDisallowedFormat) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid file format. Only PNG, JPEG, and PDF are allowed."})
			return
		}
		c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to upload document"})
		return
	}

	log.Printf("✅ Uploaded medical document %s", doc.ID)
	c.JSON(http.StatusCreated, gin.H{
		"document":  doc,
		"documents": h.medical.List(ctx, secret),
	})
}

func (h *handler) DeleteDocument(c *gin.Context) {
	ctx := c.Request.Context()
	secret := middleware.SessionSecret(c)
	if err := h.medical.Delete(ctx, secret, c.Param("id")); err != nil {
		var apiErr *appwrite.Error
		if errors.As(err, &apiErr) && apiErr.Code == http.StatusNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "Document not found"})
			return
		}
		c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to delete document"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"documents": h.medical.List(ctx, secret)})
}
