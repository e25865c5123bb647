package services

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/AyanAhmedKhan/scholar/models"
)

func eligibleProfile() *models.StudentProfile {
	return &models.StudentProfile{
		UserID:                 7,
		Department:             "CSE",
		Category:               "OBC",
		CurrentYearOrSemester:  "2",
		AnnualFamilyIncome:     floatPtr(250000),
		PreviousExamPercentage: floatPtr(82.5),
	}
}

func TestCheckEligibilityPasses(t *testing.T) {
	sch := &models.Scholarship{
		MaxFamilyIncome:    floatPtr(300000),
		MinPercentage:      floatPtr(75),
		AllowedCategories:  json.RawMessage(`["SC","ST","OBC"]`),
		AllowedDepartments: json.RawMessage(`["CSE","ECE"]`),
		GovtJobAllowed:     true,
	}

	result := CheckEligibility(eligibleProfile(), sch)
	if !result.Eligible || len(result.Reasons) != 0 {
		t.Fatalf("result = %+v, want eligible", result)
	}
}

func TestCheckEligibilityCollectsAllReasons(t *testing.T) {
	profile := eligibleProfile()
	profile.AnnualFamilyIncome = floatPtr(500000)
	profile.PreviousExamPercentage = floatPtr(60)
	profile.ParentsGovtJob = true

	sch := &models.Scholarship{
		MaxFamilyIncome: floatPtr(300000),
		MinPercentage:   floatPtr(75),
		GovtJobAllowed:  false,
	}

	result := CheckEligibility(profile, sch)
	if result.Eligible {
		t.Fatal("expected ineligible")
	}
	if len(result.Reasons) != 3 {
		t.Fatalf("reasons = %v, want 3 entries", result.Reasons)
	}
}

func TestCheckEligibilityUnsetRulesAreNotEnforced(t *testing.T) {
	// A scholarship with no criteria accepts everyone, including an
	// empty profile.
	result := CheckEligibility(&models.StudentProfile{}, &models.Scholarship{GovtJobAllowed: true})
	if !result.Eligible {
		t.Fatalf("result = %+v, want eligible", result)
	}
}

func TestCheckEligibilityFailsClosedOnMissingProfileFields(t *testing.T) {
	profile := eligibleProfile()
	profile.AnnualFamilyIncome = nil

	sch := &models.Scholarship{MaxFamilyIncome: floatPtr(300000), GovtJobAllowed: true}

	result := CheckEligibility(profile, sch)
	if result.Eligible {
		t.Fatal("expected ineligible when income is unset but a ceiling exists")
	}
	if len(result.Reasons) != 1 || !strings.Contains(result.Reasons[0], "income is not set") {
		t.Fatalf("reasons = %v", result.Reasons)
	}
}

func TestCheckEligibilityCategoryMatchIsCaseInsensitive(t *testing.T) {
	profile := eligibleProfile()
	profile.Category = "obc"

	sch := &models.Scholarship{
		AllowedCategories: json.RawMessage(`["OBC"]`),
		GovtJobAllowed:    true,
	}

	result := CheckEligibility(profile, sch)
	if !result.Eligible {
		t.Fatalf("result = %+v, want eligible", result)
	}
}
