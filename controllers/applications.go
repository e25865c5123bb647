package controllers

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/AyanAhmedKhan/scholar/models"
	"github.com/AyanAhmedKhan/scholar/services"
)

type ApplicationController struct {
	apps   *services.ApplicationService
	render *services.RenderService
	store  services.ApplicationStore
	audit  services.AuditSink
}

func NewApplicationController(apps *services.ApplicationService, render *services.RenderService, store services.ApplicationStore, audit services.AuditSink) *ApplicationController {
	return &ApplicationController{apps: apps, render: render, store: store, audit: audit}
}

type applyRequest struct {
	ScholarshipID int     `json:"scholarship_id" binding:"required"`
	Remarks       *string `json:"remarks"`
}

// Apply submits a fresh application and snapshots the vault.
func (a *ApplicationController) Apply(c *gin.Context) {
	userID, _ := currentUser(c)

	var req applyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	app, outcomes, err := a.apps.Apply(userID, req.ScholarshipID, req.Remarks)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message":     "Application submitted successfully",
		"application": app,
		"documents":   outcomes,
	})
}

// Resubmit refreshes a docs_required application from the current vault.
func (a *ApplicationController) Resubmit(c *gin.Context) {
	userID, _ := currentUser(c)
	applicationID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid application ID"})
		return
	}

	var req struct {
		Remarks *string `json:"remarks"`
	}
	if err := c.ShouldBindJSON(&req); err != nil && c.Request.ContentLength > 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	app, outcomes, err := a.apps.Resubmit(userID, applicationID, req.Remarks)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":     "Application resubmitted successfully",
		"application": app,
		"documents":   outcomes,
	})
}

type renewRequest struct {
	ScholarshipID int     `json:"scholarship_id" binding:"required"`
	Remarks       *string `json:"remarks"`
	AsDraft       bool    `json:"as_draft"`
}

// Renew creates a renewal application for a previously approved scholarship.
func (a *ApplicationController) Renew(c *gin.Context) {
	userID, _ := currentUser(c)

	var req renewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	app, outcomes, err := a.apps.Renew(userID, req.ScholarshipID, req.Remarks, req.AsDraft)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message":     "Renewal application created",
		"application": app,
		"documents":   outcomes,
	})
}

// SwitchScholarship deletes the application conflicting with the target
// scholarship, spending one switch from the student's allowance.
func (a *ApplicationController) SwitchScholarship(c *gin.Context) {
	userID, _ := currentUser(c)

	var req struct {
		ScholarshipID int `json:"scholarship_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	deletedID, err := a.apps.SwitchScholarship(userID, req.ScholarshipID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":                "Conflicting application withdrawn",
		"deleted_application_id": deletedID,
	})
}

// CheckEligibility evaluates a scholarship's profile rules for the caller.
func (a *ApplicationController) CheckEligibility(c *gin.Context) {
	userID, _ := currentUser(c)
	scholarshipID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid scholarship ID"})
		return
	}

	result, err := a.apps.Eligibility(userID, scholarshipID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetMyApplications lists the caller's applications.
func (a *ApplicationController) GetMyApplications(c *gin.Context) {
	userID, _ := currentUser(c)

	apps, err := a.store.ApplicationsByStudent(userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"applications": apps,
		"total":        len(apps),
	})
}

// GetApplication returns one application with its document snapshot.
// Students see only their own; staff see any.
func (a *ApplicationController) GetApplication(c *gin.Context) {
	userID, roleID := currentUser(c)
	applicationID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid application ID"})
		return
	}

	app, err := a.store.GetApplication(applicationID)
	if err != nil {
		respondError(c, err)
		return
	}
	if roleID == models.RoleStudent && app.StudentID != userID {
		respondError(c, services.ErrForbidden)
		return
	}

	docs, err := a.store.Documents(applicationID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"application": app,
		"documents":   docs,
	})
}

// DownloadApplicationPDF streams the merged snapshot PDF.
func (a *ApplicationController) DownloadApplicationPDF(c *gin.Context) {
	userID, roleID := currentUser(c)
	applicationID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid application ID"})
		return
	}

	data, _, err := a.render.ApplicationPDF(c.Request.Context(), userID, roleID, applicationID)
	if err != nil {
		respondError(c, err)
		return
	}

	filename := fmt.Sprintf("application_%d.pdf", applicationID)
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, "application/pdf", data)
}

var staffStatuses = map[models.ApplicationStatus]bool{
	models.StatusUnderVerification: true,
	models.StatusDocsRequired:      true,
	models.StatusApproved:          true,
	models.StatusRejected:          true,
}

// UpdateStatus moves an application through the staff review workflow.
func (a *ApplicationController) UpdateStatus(c *gin.Context) {
	userID, _ := currentUser(c)
	applicationID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid application ID"})
		return
	}

	var req struct {
		Status  models.ApplicationStatus `json:"status" binding:"required"`
		Remarks *string                  `json:"remarks"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !staffStatuses[req.Status] {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("Invalid status: %s", req.Status)})
		return
	}

	app, err := a.store.GetApplication(applicationID)
	if err != nil {
		respondError(c, err)
		return
	}

	now := time.Now()
	app.Status = req.Status
	if req.Remarks != nil {
		app.Remarks = req.Remarks
	}
	app.UpdateAt = &now
	if err := a.store.UpdateApplication(app); err != nil {
		respondError(c, err)
		return
	}

	if a.audit != nil {
		a.audit.Record(&userID, "UPDATE_APPLICATION", "application", strconv.Itoa(applicationID),
			map[string]any{"status": string(req.Status)})
	}

	c.JSON(http.StatusOK, gin.H{
		"message":     "Application status updated",
		"application": app,
	})
}
