package handlers

import (
	"context"
	"net/http"
	"time"

	"useraccount/metrics"
	"useraccount/middleware"
	"useraccount/models"
	"useraccount/uploads"
	"useraccount/views"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

const (
	statusSaved        = "Saved to MongoDB"
	statusNotConnected = "MongoDB not connected"
)

// ProfileStore persists profile records. Connected reports false while the
// database is unavailable; inserts are then skipped.
type ProfileStore interface {
	Connected() bool
	InsertProfile(ctx context.Context, profile *models.Profile) (primitive.ObjectID, error)
}

type ProfileHandler struct {
	store   ProfileStore
	content *uploads.ContentDir
	log     *zap.Logger
	now     func() time.Time
}

func NewProfileHandler(store ProfileStore, content *uploads.ContentDir, log *zap.Logger) *ProfileHandler {
	return &ProfileHandler{store: store, content: content, log: log, now: time.Now}
}

type savedView struct {
	Name      string
	Email     string
	Interests string
	ImageURL  string
	Status    string
}

// Index serves the profile form.
func (h *ProfileHandler) Index(c *gin.Context) {
	c.Data(http.StatusOK, "text/html; charset=utf-8", views.IndexPage)
}

// SaveProfile stores the optional image, inserts the record when the
// database is connected and renders a confirmation fragment.
func (h *ProfileHandler) SaveProfile(c *gin.Context) {
	log := h.log.With(zap.String("requestId", c.GetString(middleware.RequestIDKey)))
	log.Info("Profile save request received")

	sub, err := h.parseSubmission(c)
	if err != nil {
		log.Error("Error saving profile", zap.Error(err))
		metrics.ProfileSubmissionsTotal.WithLabelValues(metrics.StatusFailed).Inc()
		RenderError(c, http.StatusInternalServerError, "Error Saving Profile",
			"An error occurred while saving your profile. Please try again.")
		return
	}

	profile := models.NewProfile(sub.Fields, sub.ImageURL, h.now())

	status := statusNotConnected
	if h.store != nil && h.store.Connected() {
		id, err := h.store.InsertProfile(c.Request.Context(), profile)
		if err != nil {
			log.Error("Error saving profile", zap.Error(err))
			// The record that would reference the image was never written.
			if rmErr := h.content.Remove(sub.image); rmErr != nil {
				log.Warn("Could not remove orphaned profile image", zap.Error(rmErr))
			}
			metrics.ProfileSubmissionsTotal.WithLabelValues(metrics.StatusFailed).Inc()
			RenderError(c, http.StatusInternalServerError, "Error Saving Profile",
				"An error occurred while saving your profile. Please try again.")
			return
		}
		status = statusSaved
		metrics.ProfileSubmissionsTotal.WithLabelValues(metrics.StatusSaved).Inc()
		log.Info("Profile saved", zap.String("documentId", id.Hex()))
	} else {
		metrics.ProfileSubmissionsTotal.WithLabelValues(metrics.StatusSkipped).Inc()
		log.Warn("MongoDB not connected, skipping database save")
	}

	view := savedView{
		Name:      profile.Name,
		Email:     profile.Email,
		Interests: profile.Interests,
		Status:    status,
	}
	if profile.ProfileImage != nil {
		view.ImageURL = *profile.ProfileImage
	}

	c.HTML(http.StatusOK, "saved.html", view)
}

// RenderError writes the generic error fragment.
func RenderError(c *gin.Context, code int, title, message string) {
	c.HTML(code, "error.html", gin.H{
		"Title":   title,
		"Message": message,
	})
}
