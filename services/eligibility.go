package services

import (
	"fmt"
	"strings"

	"github.com/AyanAhmedKhan/scholar/models"
)

// EligibilityResult explains whether a student profile meets a scholarship's
// criteria, listing every failed rule.
type EligibilityResult struct {
	Eligible bool     `json:"eligible"`
	Reasons  []string `json:"reasons,omitempty"`
}

// CheckEligibility evaluates the scholarship's profile rules. A rule whose
// column is unset (nil ceiling, empty list) is not enforced; a rule whose
// profile side is unset fails closed with a reason asking for the profile to
// be completed.
func CheckEligibility(profile *models.StudentProfile, sch *models.Scholarship) EligibilityResult {
	var reasons []string

	if sch.MaxFamilyIncome != nil {
		switch {
		case profile.AnnualFamilyIncome == nil:
			reasons = append(reasons, "Annual family income is not set in your profile")
		case *profile.AnnualFamilyIncome > *sch.MaxFamilyIncome:
			reasons = append(reasons, fmt.Sprintf("Family income %.0f exceeds the limit of %.0f",
				*profile.AnnualFamilyIncome, *sch.MaxFamilyIncome))
		}
	}

	if sch.MinPercentage != nil {
		switch {
		case profile.PreviousExamPercentage == nil:
			reasons = append(reasons, "Previous exam percentage is not set in your profile")
		case *profile.PreviousExamPercentage < *sch.MinPercentage:
			reasons = append(reasons, fmt.Sprintf("Percentage %.2f is below the required %.2f",
				*profile.PreviousExamPercentage, *sch.MinPercentage))
		}
	}

	if cats := sch.CategoryList(); len(cats) > 0 && !containsFold(cats, profile.Category) {
		reasons = append(reasons, fmt.Sprintf("Category %s is not eligible", profile.Category))
	}

	if depts := sch.DepartmentList(); len(depts) > 0 && !containsFold(depts, profile.Department) {
		reasons = append(reasons, fmt.Sprintf("Department %s is not eligible", profile.Department))
	}

	if years := sch.YearList(); len(years) > 0 && !containsFold(years, profile.CurrentYearOrSemester) {
		reasons = append(reasons, fmt.Sprintf("Year/semester %s is not eligible", profile.CurrentYearOrSemester))
	}

	if !sch.GovtJobAllowed && profile.ParentsGovtJob {
		reasons = append(reasons, "Students whose parents hold a government job are not eligible")
	}

	return EligibilityResult{Eligible: len(reasons) == 0, Reasons: reasons}
}

func containsFold(values []string, target string) bool {
	for _, v := range values {
		if strings.EqualFold(strings.TrimSpace(v), strings.TrimSpace(target)) {
			return true
		}
	}
	return false
}
