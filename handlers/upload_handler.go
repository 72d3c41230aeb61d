package handlers

import (
	"fmt"
	"strconv"
	"time"

	"github.com/anjiri1684/tutor_hunt/apperrors"
	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/gofiber/fiber/v2"
)

var errUploadsDisabled = &apperrors.AppError{
	Status:  fiber.StatusServiceUnavailable,
	Code:    "uploads_disabled",
	Message: "image uploads are not configured",
}

// UploadHandler signs direct-to-Cloudinary uploads of tutor images.
type UploadHandler struct {
	apiKey    string
	apiSecret string
	folder    string
	now       func() time.Time
}

// NewUploadHandler returns nil, nil when cloudinaryURL is empty.
func NewUploadHandler(cloudinaryURL, folder string) (*UploadHandler, error) {
	if cloudinaryURL == "" {
		return nil, nil
	}
	cld, err := cloudinary.NewFromURL(cloudinaryURL)
	if err != nil {
		return nil, fmt.Errorf("cloudinary: %w", err)
	}
	return &UploadHandler{
		apiKey:    cld.Config.Cloud.APIKey,
		apiSecret: cld.Config.Cloud.APISecret,
		folder:    folder,
		now:       time.Now,
	}, nil
}

// GenerateUploadSignature creates a secure signature for a frontend upload.
func (h *UploadHandler) GenerateUploadSignature(c *fiber.Ctx) error {
	if h == nil {
		return apperrors.Respond(c, errUploadsDisabled)
	}

	paramsToSign, err := api.StructToParams(uploader.UploadParams{Folder: h.folder})
	if err != nil {
		return apperrors.Respond(c, apperrors.ErrInternal.WithMessage("failed to prepare signature params"))
	}

	timestamp := h.now().Unix()
	paramsToSign.Set("timestamp", strconv.FormatInt(timestamp, 10))

	signature, err := api.SignParameters(paramsToSign, h.apiSecret)
	if err != nil {
		return apperrors.Respond(c, apperrors.ErrInternal.WithMessage("failed to sign upload params"))
	}

	return c.JSON(fiber.Map{
		"signature": signature,
		"timestamp": timestamp,
		"api_key":   h.apiKey,
		"folder":    h.folder,
	})
}
