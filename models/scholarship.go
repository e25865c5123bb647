package models

import (
	"encoding/json"
	"strings"
	"time"
)

type Scholarship struct {
	ScholarshipID        int             `gorm:"primaryKey;column:scholarship_id" json:"scholarship_id"`
	Name                 string          `gorm:"column:name" json:"name"`
	Description          *string         `gorm:"column:description" json:"description,omitempty"`
	Category             string          `gorm:"column:category" json:"category"`
	LastDate             *time.Time      `gorm:"column:last_date" json:"last_date,omitempty"`
	MutuallyExclusiveIDs json.RawMessage `gorm:"column:mutually_exclusive_ids;type:json" json:"mutually_exclusive_ids,omitempty"`
	MaxFamilyIncome      *float64        `gorm:"column:max_family_income" json:"max_family_income,omitempty"`
	MinPercentage        *float64        `gorm:"column:min_percentage" json:"min_percentage,omitempty"`
	AllowedCategories    json.RawMessage `gorm:"column:allowed_categories;type:json" json:"allowed_categories,omitempty"`
	AllowedDepartments   json.RawMessage `gorm:"column:allowed_departments;type:json" json:"allowed_departments,omitempty"`
	AllowedYears         json.RawMessage `gorm:"column:allowed_years;type:json" json:"allowed_years,omitempty"`
	GovtJobAllowed       bool            `gorm:"column:govt_job_allowed;default:true" json:"govt_job_allowed"`
	IsRenewable          bool            `gorm:"column:is_renewable" json:"is_renewable"`
	IsActive             bool            `gorm:"column:is_active;default:true" json:"is_active"`
	CreateAt             *time.Time      `gorm:"column:create_at" json:"create_at"`
	UpdateAt             *time.Time      `gorm:"column:update_at" json:"update_at"`
	DeleteAt             *time.Time      `gorm:"column:delete_at" json:"delete_at,omitempty"`
}

// DocumentFormat is a named document slot ("Income Certificate", "Aadhaar
// Card"). Formats are deactivated, never hard-deleted, once requirements or
// vault rows reference them.
type DocumentFormat struct {
	DocumentFormatID int        `gorm:"primaryKey;column:document_format_id" json:"document_format_id"`
	Name             string     `gorm:"column:name" json:"name"`
	Description      *string    `gorm:"column:description" json:"description,omitempty"`
	MaxSizeMB        int        `gorm:"column:max_size_mb" json:"max_size_mb"`
	OrderIndex       int        `gorm:"column:order_index" json:"order_index"`
	IsActive         bool       `gorm:"column:is_active;default:true" json:"is_active"`
	CreateAt         *time.Time `gorm:"column:create_at" json:"create_at"`
	UpdateAt         *time.Time `gorm:"column:update_at" json:"update_at"`
}

// ScholarshipRequirement declares that a scholarship needs one document of a
// given format. At most one requirement exists per (scholarship, format).
type ScholarshipRequirement struct {
	RequirementID      int             `gorm:"primaryKey;column:requirement_id" json:"requirement_id"`
	ScholarshipID      int             `gorm:"column:scholarship_id" json:"scholarship_id"`
	DocumentFormatID   int             `gorm:"column:document_format_id" json:"document_format_id"`
	IsMandatory        bool            `gorm:"column:is_mandatory;default:true" json:"is_mandatory"`
	IsRenewalRequired  bool            `gorm:"column:is_renewal_required" json:"is_renewal_required"`
	RenewalInstruction *string         `gorm:"column:renewal_instruction" json:"renewal_instruction,omitempty"`
	AllowedTypes       json.RawMessage `gorm:"column:allowed_types;type:json" json:"allowed_types,omitempty"`
	MaxPages           *int            `gorm:"column:max_pages" json:"max_pages,omitempty"`
	DisplayOrder       int             `gorm:"column:display_order" json:"display_order"`
	CreateAt           *time.Time      `gorm:"column:create_at" json:"create_at"`
	UpdateAt           *time.Time      `gorm:"column:update_at" json:"update_at"`

	// Relations
	DocumentFormat DocumentFormat `gorm:"foreignKey:DocumentFormatID" json:"document_format,omitempty"`
}

// TableName overrides
func (Scholarship) TableName() string {
	return "scholarships"
}

func (DocumentFormat) TableName() string {
	return "document_formats"
}

func (ScholarshipRequirement) TableName() string {
	return "scholarship_requirements"
}

// ExclusiveIDs parses the mutually_exclusive_ids JSON column. A missing or
// malformed column means no exclusions.
func (s *Scholarship) ExclusiveIDs() []int {
	if len(s.MutuallyExclusiveIDs) == 0 {
		return nil
	}
	var ids []int
	if err := json.Unmarshal(s.MutuallyExclusiveIDs, &ids); err != nil {
		return nil
	}
	return ids
}

func parseStringList(raw json.RawMessage) []string {
	if len(raw) == 0 {
		return nil
	}
	var values []string
	if err := json.Unmarshal(raw, &values); err != nil {
		return nil
	}
	out := make([]string, 0, len(values))
	for _, v := range values {
		if trimmed := strings.TrimSpace(v); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func (s *Scholarship) CategoryList() []string {
	return parseStringList(s.AllowedCategories)
}

func (s *Scholarship) DepartmentList() []string {
	return parseStringList(s.AllowedDepartments)
}

func (s *Scholarship) YearList() []string {
	return parseStringList(s.AllowedYears)
}

// AllowedTypeList parses the allowed_types JSON column ("pdf", "jpg", ...).
// An empty column falls back to the full upload allow-list.
func (r *ScholarshipRequirement) AllowedTypeList() []string {
	types := parseStringList(r.AllowedTypes)
	if len(types) == 0 {
		return []string{"pdf", "jpg", "png"}
	}
	return types
}
