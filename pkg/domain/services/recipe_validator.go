package services

import (
	"fmt"

	"github.com/vsinha/gestionale/pkg/domain/entities"
)

// RecipeValidator checks recipe lines before they replace a product's recipe
type RecipeValidator struct{}

// NewRecipeValidator creates a new recipe validator
func NewRecipeValidator() *RecipeValidator {
	return &RecipeValidator{}
}

// ValidationResult contains the results of recipe validation
type ValidationResult struct {
	DuplicateMaterials  []entities.MaterialID
	NonPositiveLines    []entities.RecipeLine
	UnresolvedMaterials []entities.MaterialID
	Errors              []string
}

// IsValid reports whether validation found no problems
func (r *ValidationResult) IsValid() bool {
	return len(r.Errors) == 0
}

// ValidateRecipe validates a full set of recipe lines for a product.
// A nil materials snapshot skips the reference check.
func (v *RecipeValidator) ValidateRecipe(productID entities.ProductID, lines []entities.RecipeLine, materials entities.MaterialSnapshot) *ValidationResult {
	result := &ValidationResult{
		DuplicateMaterials:  make([]entities.MaterialID, 0),
		NonPositiveLines:    make([]entities.RecipeLine, 0),
		UnresolvedMaterials: make([]entities.MaterialID, 0),
		Errors:              make([]string, 0),
	}

	if string(productID) == "" {
		result.Errors = append(result.Errors, "product id cannot be empty")
	}

	for i, line := range lines {
		if string(line.MaterialID) == "" {
			result.Errors = append(result.Errors, fmt.Sprintf("line %d: material id cannot be empty", i+1))
			continue
		}
		if !line.QuantityRequired.IsPositive() {
			result.NonPositiveLines = append(result.NonPositiveLines, line)
			result.Errors = append(result.Errors, fmt.Sprintf("line %d: quantity required for %s must be positive, got %s",
				i+1, line.MaterialID, line.QuantityRequired))
		}
	}

	result.DuplicateMaterials = v.detectDuplicateMaterials(lines)
	for _, id := range result.DuplicateMaterials {
		result.Errors = append(result.Errors, fmt.Sprintf("material %s appears more than once", id))
	}

	if materials != nil {
		result.UnresolvedMaterials = v.detectUnresolvedMaterials(lines, materials)
		for _, id := range result.UnresolvedMaterials {
			result.Errors = append(result.Errors, fmt.Sprintf("material %s does not exist", id))
		}
	}

	return result
}

// detectDuplicateMaterials finds material IDs used by more than one line
func (v *RecipeValidator) detectDuplicateMaterials(lines []entities.RecipeLine) []entities.MaterialID {
	seen := make(map[entities.MaterialID]int)
	duplicates := make([]entities.MaterialID, 0)

	for _, line := range lines {
		if string(line.MaterialID) == "" {
			continue
		}
		seen[line.MaterialID]++
		if seen[line.MaterialID] == 2 {
			duplicates = append(duplicates, line.MaterialID)
		}
	}

	return duplicates
}

// detectUnresolvedMaterials finds lines whose material is not in the snapshot
func (v *RecipeValidator) detectUnresolvedMaterials(lines []entities.RecipeLine, materials entities.MaterialSnapshot) []entities.MaterialID {
	reported := make(map[entities.MaterialID]bool)
	unresolved := make([]entities.MaterialID, 0)

	for _, line := range lines {
		if string(line.MaterialID) == "" || reported[line.MaterialID] {
			continue
		}
		if !materials.Has(line.MaterialID) {
			reported[line.MaterialID] = true
			unresolved = append(unresolved, line.MaterialID)
		}
	}

	return unresolved
}
