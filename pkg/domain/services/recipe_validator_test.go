package services

import (
	"testing"

	"github.com/vsinha/gestionale/pkg/domain/entities"
)

func TestRecipeValidator_CollectsAllProblems(t *testing.T) {
	validator := NewRecipeValidator()
	lines := []entities.RecipeLine{
		{MaterialID: "A", QuantityRequired: dec("1")},
		{MaterialID: "A", QuantityRequired: dec("-1")},
		{MaterialID: "Z", QuantityRequired: dec("1")},
	}
	materials := entities.MaterialSnapshot{"A": {ID: "A"}}

	result := validator.ValidateRecipe("", lines, materials)

	if result.IsValid() {
		t.Fatal("Expected validation to fail")
	}
	if len(result.DuplicateMaterials) != 1 || result.DuplicateMaterials[0] != "A" {
		t.Errorf("Expected duplicate A, got %v", result.DuplicateMaterials)
	}
	if len(result.NonPositiveLines) != 1 {
		t.Errorf("Expected 1 non-positive line, got %d", len(result.NonPositiveLines))
	}
	if len(result.UnresolvedMaterials) != 1 || result.UnresolvedMaterials[0] != "Z" {
		t.Errorf("Expected unresolved Z, got %v", result.UnresolvedMaterials)
	}
	if len(result.Errors) != 4 {
		t.Errorf("Expected 4 errors, got %d: %v", len(result.Errors), result.Errors)
	}
}
