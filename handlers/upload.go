package handlers

import (
	"bytes"
	"context"
	"io"
	"log"
	"net/http"

	"github.com/sjbaraho/app-places-backend/services"
	"github.com/sjbaraho/app-places-backend/utils/errors"
)

const (
	maxImageBytes = 500_000
	// room for the other form fields
	maxFormBytes = maxImageBytes + 64<<10
)

var imageExtensions = map[string]string{
	"image/png":  "png",
	"image/jpeg": "jpeg",
	"image/jpg":  "jpg",
}

// parseImageForm parses a multipart body whose "image" part must be a PNG or
// JPEG of at most 500 KB.
func parseImageForm(w http.ResponseWriter, r *http.Request) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxFormBytes)
	if err := r.ParseMultipartForm(maxFormBytes); err != nil {
		return errors.Wrap(err, errors.ErrInvalidInput)
	}
	return nil
}

// saveImage stores the already parsed "image" part and returns its path.
func saveImage(ctx context.Context, r *http.Request, assets services.AssetStore) (string, error) {
	file, header, err := r.FormFile("image")
	if err != nil {
		return "", errors.Wrap(err, errors.ErrInvalidInput.WithMessage("An image is required"))
	}
	defer file.Close()
	if header.Size > maxImageBytes {
		return "", errors.ErrInvalidInput.WithMessage("Image is too large")
	}

	head := make([]byte, 512)
	n, err := io.ReadFull(file, head)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return "", errors.Wrap(err, errors.ErrInvalidInput)
	}
	head = head[:n]
	ext, ok := imageExtensions[http.DetectContentType(head)]
	if !ok {
		return "", errors.ErrInvalidInput.WithMessage("Invalid mime type")
	}

	path, err := assets.Save(ctx, io.MultiReader(bytes.NewReader(head), file), ext)
	if err != nil {
		return "", errors.Wrap(err, errors.ErrInternal)
	}
	return path, nil
}

// discardImage removes an upload whose request failed afterwards.
func discardImage(ctx context.Context, assets services.AssetStore, path string) {
	if err := assets.DeleteByPath(context.WithoutCancel(ctx), path); err != nil {
		log.Printf("Failed to discard upload %s: %v", path, err)
	}
}
