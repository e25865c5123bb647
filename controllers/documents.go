package controllers

import (
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/AyanAhmedKhan/scholar/models"
	"github.com/AyanAhmedKhan/scholar/services"
)

type DocumentController struct {
	vault        *services.VaultService
	formats      services.FormatStore
	profiles     services.ProfileStore
	scholarships services.ScholarshipStore
}

func NewDocumentController(vault *services.VaultService, formats services.FormatStore, profiles services.ProfileStore, scholarships services.ScholarshipStore) *DocumentController {
	return &DocumentController{vault: vault, formats: formats, profiles: profiles, scholarships: scholarships}
}

// UploadVaultDocument stores one document in the student's vault, superseding
// any previous version in the same slot. The slot comes from the
// document_format_id form field, or document_type for legacy free-text slots.
func (d *DocumentController) UploadVaultDocument(c *gin.Context) {
	userID, _ := currentUser(c)

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No file uploaded"})
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to read uploaded file"})
		return
	}

	enrollmentNo := ""
	if profile, err := d.profiles.FindProfileByUser(userID); err == nil && profile != nil {
		enrollmentNo = profile.EnrollmentNo
	}

	input := services.UploadInput{
		StudentID:    userID,
		EnrollmentNo: enrollmentNo,
		DocumentType: c.PostForm("document_type"),
		Filename:     header.Filename,
		MimeType:     detectMime(header, data),
		Data:         data,
	}
	if raw := c.PostForm("document_format_id"); raw != "" {
		formatID, err := strconv.Atoi(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid document_format_id"})
			return
		}
		input.DocumentFormatID = &formatID
	}
	if raw := c.PostForm("max_pages"); raw != "" {
		maxPages, err := strconv.Atoi(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid max_pages"})
			return
		}
		input.MaxPages = &maxPages
	}

	doc, err := d.vault.Upload(input)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message":  "Document uploaded successfully",
		"document": doc,
	})
}

// GetMyDocuments lists the caller's active vault documents.
func (d *DocumentController) GetMyDocuments(c *gin.Context) {
	userID, _ := currentUser(c)

	docs, err := d.vault.MyDocuments(userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"documents": docs,
		"total":     len(docs),
	})
}

// GetDocumentFormats lists the active document formats students upload into.
func (d *DocumentController) GetDocumentFormats(c *gin.Context) {
	formats, err := d.formats.ActiveFormats()
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"formats": formats})
}

// GetScholarshipRequirements lists the document slots one scholarship asks
// for, in display order.
func (d *DocumentController) GetScholarshipRequirements(c *gin.Context) {
	scholarshipID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid scholarship ID"})
		return
	}

	if _, err := d.scholarships.GetScholarship(scholarshipID); err != nil {
		respondError(c, err)
		return
	}
	reqs, err := d.scholarships.Requirements(scholarshipID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"requirements": reqs})
}

type formatRequest struct {
	Name        string  `json:"name" binding:"required"`
	Description *string `json:"description"`
	MaxSizeMB   int     `json:"max_size_mb"`
	OrderIndex  int     `json:"order_index"`
}

// CreateDocumentFormat adds a new document slot. Admin only.
func (d *DocumentController) CreateDocumentFormat(c *gin.Context) {
	var req formatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	format := &models.DocumentFormat{
		Name:        req.Name,
		Description: req.Description,
		MaxSizeMB:   req.MaxSizeMB,
		OrderIndex:  req.OrderIndex,
		IsActive:    true,
	}
	if err := d.formats.CreateFormat(format); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"format": format})
}

// UpdateDocumentFormat edits a document slot. Formats referenced by vault
// rows or requirements are deactivated instead of deleted.
func (d *DocumentController) UpdateDocumentFormat(c *gin.Context) {
	formatID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid format ID"})
		return
	}

	format, err := d.formats.GetFormat(formatID)
	if err != nil {
		respondError(c, err)
		return
	}

	var req struct {
		Name        *string `json:"name"`
		Description *string `json:"description"`
		MaxSizeMB   *int    `json:"max_size_mb"`
		OrderIndex  *int    `json:"order_index"`
		IsActive    *bool   `json:"is_active"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if req.Name != nil {
		format.Name = *req.Name
	}
	if req.Description != nil {
		format.Description = req.Description
	}
	if req.MaxSizeMB != nil {
		format.MaxSizeMB = *req.MaxSizeMB
	}
	if req.OrderIndex != nil {
		format.OrderIndex = *req.OrderIndex
	}
	if req.IsActive != nil {
		format.IsActive = *req.IsActive
	}
	now := time.Now()
	format.UpdateAt = &now

	if err := d.formats.UpdateFormat(format); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"format": format})
}

// detectMime prefers the multipart header's declared type and falls back to
// the filename extension.
func detectMime(header *multipart.FileHeader, data []byte) string {
	if ct := header.Header.Get("Content-Type"); ct != "" && ct != "application/octet-stream" {
		return ct
	}
	switch strings.ToLower(filepath.Ext(header.Filename)) {
	case ".pdf":
		return "application/pdf"
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".png":
		return "image/png"
	}
	return http.DetectContentType(data)
}
