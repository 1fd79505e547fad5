package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"useraccount/metrics"
	"useraccount/uploads"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// imageField is the multipart field carrying the optional profile image.
const imageField = "profileImage"

type submission struct {
	Fields   map[string]string
	ImageURL *string
	image    *uploads.Stored
}

// parseSubmission reads the text fields and writes the first file of the
// image field, if any, to the content directory. Urlencoded bodies are
// accepted and never carry a file.
func (h *ProfileHandler) parseSubmission(c *gin.Context) (*submission, error) {
	sub := &submission{Fields: make(map[string]string)}

	form, err := c.MultipartForm()
	switch {
	case err == nil:
		for key, values := range form.Value {
			if len(values) > 0 {
				sub.Fields[key] = values[0]
			}
		}

		files := form.File[imageField]
		if len(files) == 0 {
			return sub, nil
		}

		stored, err := h.content.Save(files[0])
		if err != nil {
			return nil, fmt.Errorf("store %s: %w", imageField, err)
		}
		metrics.ProfileUploadsTotal.Inc()
		metrics.ProfileUploadBytesTotal.Add(float64(stored.Size))
		h.log.Info("Profile image stored",
			zap.String("file", stored.Filename),
			zap.String("original", files[0].Filename),
			zap.Int64("size", stored.Size),
		)

		url := stored.URL
		sub.ImageURL = &url
		sub.image = stored

	case errors.Is(err, http.ErrNotMultipart):
		if err := c.Request.ParseForm(); err != nil {
			return nil, fmt.Errorf("parse form: %w", err)
		}
		for key, values := range c.Request.PostForm {
			if len(values) > 0 {
				sub.Fields[key] = values[0]
			}
		}

	default:
		return nil, fmt.Errorf("parse multipart form: %w", err)
	}

	return sub, nil
}
