package entities

// Catalog is a full snapshot of materials, products and their recipes,
// as read from a seed file.
type Catalog struct {
	Materials []*Material
	Products  []*Product
	Recipes   []*Recipe
}
