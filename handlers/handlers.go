package handlers

import (
	"encoding/base64"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"road-condition-service/database"
	"road-condition-service/directions"
	"road-condition-service/geocell"
	"road-condition-service/models"
	"road-condition-service/service"
)

// Handlers represents the HTTP handlers
type Handlers struct {
	db         *database.Database
	service    *service.Service
	directions *directions.Client
}

// NewHandlers creates new HTTP handlers
func NewHandlers(db *database.Database, svc *service.Service, dir *directions.Client) *Handlers {
	return &Handlers{db: db, service: svc, directions: dir}
}

// reportImage is one base64-encoded photo in a report submission.
type reportImage struct {
	Data     string `json:"data" binding:"required"`
	MimeType string `json:"mime_type"`
}

// reportRequest is the body of the report submission endpoints. location_id
// takes precedence over the coordinate pair when both are present.
type reportRequest struct {
	PostedBy   string        `json:"posted_by"`
	LocationID string        `json:"location_id"`
	Latitude   *float64      `json:"latitude"`
	Longitude  *float64      `json:"longitude"`
	TextDescr  string        `json:"text_descr"`
	Images     []reportImage `json:"images"`
}

func (r *reportRequest) decodeImages() ([]models.Image, error) {
	images := make([]models.Image, 0, len(r.Images))
	for _, img := range r.Images {
		data, err := base64.StdEncoding.DecodeString(img.Data)
		if err != nil {
			return nil, err
		}
		mime := img.MimeType
		if mime == "" {
			mime = "image/jpeg"
		}
		images = append(images, models.Image{Data: data, MimeType: mime})
	}
	return images, nil
}

func (r *reportRequest) resolveLocationID() string {
	if r.LocationID != "" {
		return r.LocationID
	}
	if r.Latitude != nil && r.Longitude != nil {
		return geocell.LocationID(*r.Latitude, *r.Longitude)
	}
	return ""
}

// HealthCheck handles health check requests
func (h *Handlers) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "road-condition-service",
	})
}

// PreviewReport scores a submission without recording it.
func (h *Handlers) PreviewReport(c *gin.Context) {
	var req reportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	images, err := req.decodeImages()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid base64 image data"})
		return
	}

	result, err := h.service.ScoreReport(c.Request.Context(), images, req.TextDescr)
	if err != nil {
		if errors.Is(err, service.ErrEmptyReport) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Report must include at least one image or a text description"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to score report"})
		return
	}

	c.JSON(http.StatusOK, result)
}

// SubmitReport scores a submission, records it and folds it into the
// location aggregate.
func (h *Handlers) SubmitReport(c *gin.Context) {
	var req reportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	locationID := req.resolveLocationID()
	if locationID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Report must include location_id or a latitude/longitude pair"})
		return
	}

	images, err := req.decodeImages()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid base64 image data"})
		return
	}

	report, err := h.service.ScoreAndRecord(c.Request.Context(), images, req.TextDescr, locationID, req.PostedBy)
	if err != nil {
		if errors.Is(err, service.ErrEmptyReport) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Report must include at least one image or a text description"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to record report"})
		return
	}

	c.JSON(http.StatusOK, report)
}

// GetLocationAverage returns the running score average for one location.
// A location with no recorded reports is a 404.
func (h *Handlers) GetLocationAverage(c *gin.Context) {
	locationID := c.Param("id")

	avg, err := h.db.GetLocationAverage(c.Request.Context(), locationID)
	if err != nil {
		if errors.Is(err, database.ErrLocationNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Location not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get location average"})
		return
	}

	c.JSON(http.StatusOK, avg)
}

// GetLocationsAverages returns averages for a batch of locations. Locations
// without reports are omitted from the response rather than erroring the
// whole batch.
func (h *Handlers) GetLocationsAverages(c *gin.Context) {
	var req struct {
		LocationIDs []string `json:"location_ids" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	averages, err := h.db.GetLocationsAverages(c.Request.Context(), req.LocationIDs)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get location averages"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"averages": averages})
}

// GetRoute proxies a directions request to the routing backend.
func (h *Handlers) GetRoute(c *gin.Context) {
	origin := c.Query("origin")
	destination := c.Query("destination")
	if origin == "" || destination == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "origin and destination query parameters are required"})
		return
	}

	route, err := h.directions.GetRoute(c.Request.Context(), origin, destination)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to get route"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"route": route})
}

// CreateOrUpdateUser upserts a user record.
func (h *Handlers) CreateOrUpdateUser(c *gin.Context) {
	var user models.User
	if err := c.ShouldBindJSON(&user); err != nil || user.ID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user"})
		return
	}

	if err := h.db.CreateOrUpdateUser(c.Request.Context(), &user); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save user"})
		return
	}

	c.JSON(http.StatusOK, user)
}

// GetUser returns one user by id.
func (h *Handlers) GetUser(c *gin.Context) {
	user, err := h.db.GetUser(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	c.JSON(http.StatusOK, user)
}

// SearchUsers returns users whose name matches the query.
func (h *Handlers) SearchUsers(c *gin.Context) {
	name := c.Query("name")
	if name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "name query parameter is required"})
		return
	}

	users, err := h.db.SearchUsers(c.Request.Context(), name)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to search users"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"users": users})
}
