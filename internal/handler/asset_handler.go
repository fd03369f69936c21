package handler

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/hallticket-api/internal/service"
	"github.com/noah-isme/hallticket-api/internal/ticket"
	appErrors "github.com/noah-isme/hallticket-api/pkg/errors"
	"github.com/noah-isme/hallticket-api/pkg/response"
)

// AssetHandler exposes photo and logo upload endpoints.
type AssetHandler struct {
	assets *service.AssetService
}

// NewAssetHandler constructs the handler.
func NewAssetHandler(assets *service.AssetService) *AssetHandler {
	return &AssetHandler{assets: assets}
}

// UploadPhoto godoc
// @Summary Upload a student photo
// @Description Stores the photo keyed by student identifier; replaces any previous upload
// @Tags Assets
// @Accept multipart/form-data
// @Produce json
// @Param identifier path string true "Student identifier"
// @Param file formData file true "Image file (JPEG, PNG, GIF or WEBP)"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /assets/photos/{identifier} [post]
func (h *AssetHandler) UploadPhoto(c *gin.Context) {
	data, err := h.readFile(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	if err := h.assets.StorePhoto(c.Param("identifier"), data); err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, gin.H{"identifier": c.Param("identifier")})
}

// UploadLogo godoc
// @Summary Upload a logo
// @Description Slot is either "primary" (institution logo) or "secondary" (emblem)
// @Tags Assets
// @Accept multipart/form-data
// @Produce json
// @Param slot path string true "Logo slot"
// @Param file formData file true "Image file"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /assets/logos/{slot} [post]
func (h *AssetHandler) UploadLogo(c *gin.Context) {
	data, err := h.readFile(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	kind := logoKindFromSlot(c.Param("slot"))
	if err := h.assets.StoreLogo(kind, data); err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, gin.H{"slot": c.Param("slot")})
}

// DeletePhoto godoc
// @Summary Delete a stored student photo
// @Tags Assets
// @Param identifier path string true "Student identifier"
// @Success 204 {object} response.Envelope
// @Router /assets/photos/{identifier} [delete]
func (h *AssetHandler) DeletePhoto(c *gin.Context) {
	h.assets.DeletePhoto(c.Param("identifier"))
	response.NoContent(c)
}

// ListPhotos godoc
// @Summary List identifiers with stored photos
// @Tags Assets
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /assets/photos [get]
func (h *AssetHandler) ListPhotos(c *gin.Context) {
	response.JSON(c, http.StatusOK, h.assets.PhotoIdentifiers(), nil)
}

func (h *AssetHandler) readFile(c *gin.Context) ([]byte, error) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "file field required")
	}
	file, err := fileHeader.Open()
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to open upload")
	}
	defer file.Close()
	data, err := io.ReadAll(file)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to read upload")
	}
	return data, nil
}

func logoKindFromSlot(slot string) ticket.LogoKind {
	if slot == "secondary" {
		return ticket.LogoSecondary
	}
	if slot == "primary" {
		return ticket.LogoPrimary
	}
	return ticket.LogoKind(slot)
}
