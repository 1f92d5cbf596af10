package memory

import (
	"github.com/MuzammilBaloch-22/Cakelora/internal/domain"
)

const placeholderImage = "/placeholder.svg"

// CatalogRepository serves the fixed storefront catalog from memory.
type CatalogRepository struct {
	products []domain.Product
	byID     map[string]int
}

// NewCatalogRepository returns the reference twelve-cake catalog.
func NewCatalogRepository() *CatalogRepository {
	return NewCatalogRepositoryFrom(referenceCatalog())
}

// NewCatalogRepositoryFrom builds a catalog from an arbitrary product list.
// Later duplicates of an ID are ignored.
func NewCatalogRepositoryFrom(products []domain.Product) *CatalogRepository {
	r := &CatalogRepository{byID: make(map[string]int, len(products))}
	for _, p := range products {
		if _, dup := r.byID[p.ID]; dup {
			continue
		}
		r.byID[p.ID] = len(r.products)
		r.products = append(r.products, p.Clone())
	}
	return r
}

// List returns copies of every product in declaration order.
func (r *CatalogRepository) List() []domain.Product {
	return domain.CloneProducts(r.products)
}

// Get returns a copy of the product with the given ID.
func (r *CatalogRepository) Get(id string) (domain.Product, bool) {
	i, ok := r.byID[id]
	if !ok {
		return domain.Product{}, false
	}
	return r.products[i].Clone(), true
}

func referenceCatalog() []domain.Product {
	type (
		occ = domain.Occasion
		rec = domain.RecipientType
		sz  = domain.Size
	)
	var (
		small  = domain.SizeSmall
		medium = domain.SizeMedium
		large  = domain.SizeLarge
		xl     = domain.SizeExtraLarge
	)

	return []domain.Product{
		{
			ID:             "cake-1",
			Name:           "Rose Petal Dream",
			Description:    "Elegant vanilla cake adorned with delicate edible rose petals and buttercream rosettes",
			Price:          domain.MoneyFromInt(85),
			Category:       domain.CategoryAnniversary,
			Occasions:      []occ{domain.OccasionAnniversary, domain.OccasionValentines, domain.OccasionWedding},
			RecipientTypes: []rec{domain.RecipientCouple, domain.RecipientIndividual},
			Sizes:          []sz{small, medium, large},
			Image:          placeholderImage,
			IsBestSeller:   true,
		},
		{
			ID:             "cake-2",
			Name:           "Chocolate Symphony",
			Description:    "Rich Belgian chocolate layers with ganache, topped with chocolate shards and gold dust",
			Price:          domain.MoneyFromInt(95),
			Category:       domain.CategoryBirthday,
			Occasions:      []occ{domain.OccasionBirthday, domain.OccasionAnniversary, domain.OccasionCorporate},
			RecipientTypes: []rec{domain.RecipientIndividual, domain.RecipientFamily, domain.RecipientCorporate},
			Sizes:          []sz{small, medium, large, xl},
			Image:          placeholderImage,
			IsBestSeller:   true,
		},
		{
			ID:             "cake-3",
			Name:           "Enchanted Garden",
			Description:    "Three-tier masterpiece with cascading sugar flowers and botanical fondant details",
			Price:          domain.MoneyFromInt(280),
			Category:       domain.CategoryWedding,
			Occasions:      []occ{domain.OccasionWedding},
			RecipientTypes: []rec{domain.RecipientCouple},
			Sizes:          []sz{large, xl},
			Image:          placeholderImage,
		},
		{
			ID:             "cake-4",
			Name:           "Rainbow Unicorn Magic",
			Description:    "Colorful layers with rainbow frosting, edible glitter, and a magical unicorn topper",
			Price:          domain.MoneyFromInt(75),
			Category:       domain.CategoryKids,
			Occasions:      []occ{domain.OccasionBirthday, domain.OccasionBabyShower},
			RecipientTypes: []rec{domain.RecipientKids},
			Sizes:          []sz{small, medium, large},
			Image:          placeholderImage,
			IsBestSeller:   true,
		},
		{
			ID:             "cake-5",
			Name:           "Strawberry Blush",
			Description:    "Fresh strawberry cake with cream cheese frosting and macaron decorations",
			Price:          domain.MoneyFromInt(88),
			Category:       domain.CategoryBirthday,
			Occasions:      []occ{domain.OccasionBirthday, domain.OccasionAnniversary, domain.OccasionBabyShower},
			RecipientTypes: []rec{domain.RecipientIndividual, domain.RecipientCouple, domain.RecipientFamily},
			Sizes:          []sz{small, medium, large},
			Image:          placeholderImage,
			IsNew:          true,
		},
		{
			ID:             "cake-6",
			Name:           "Golden Elegance",
			Description:    "White fondant with hand-painted gold accents and fresh flower arrangements",
			Price:          domain.MoneyFromInt(320),
			Category:       domain.CategoryWedding,
			Occasions:      []occ{domain.OccasionWedding, domain.OccasionAnniversary},
			RecipientTypes: []rec{domain.RecipientCouple},
			Sizes:          []sz{large, xl},
			Image:          placeholderImage,
		},
		{
			ID:             "cake-7",
			Name:           "Dinosaur Adventure",
			Description:    "Chocolate cake with prehistoric landscape and edible dinosaur figurines",
			Price:          domain.MoneyFromInt(70),
			Category:       domain.CategoryKids,
			Occasions:      []occ{domain.OccasionBirthday},
			RecipientTypes: []rec{domain.RecipientKids},
			Sizes:          []sz{small, medium},
			Image:          placeholderImage,
		},
		{
			ID:             "cake-8",
			Name:           "Corporate Classic",
			Description:    "Professional design with company branding, perfect for milestones and events",
			Price:          domain.MoneyFromInt(120),
			Category:       domain.CategoryCustom,
			Occasions:      []occ{domain.OccasionCorporate, domain.OccasionGraduation, domain.OccasionOther},
			RecipientTypes: []rec{domain.RecipientCorporate},
			Sizes:          []sz{medium, large, xl},
			Image:          placeholderImage,
		},
		{
			ID:             "cake-9",
			Name:           "Lavender Dreams",
			Description:    "Lavender-infused sponge with honey buttercream and dried lavender garnish",
			Price:          domain.MoneyFromInt(92),
			Category:       domain.CategoryAnniversary,
			Occasions:      []occ{domain.OccasionAnniversary, domain.OccasionBirthday, domain.OccasionOther},
			RecipientTypes: []rec{domain.RecipientCouple, domain.RecipientIndividual},
			Sizes:          []sz{small, medium, large},
			Image:          placeholderImage,
			IsNew:          true,
		},
		{
			ID:             "cake-10",
			Name:           "Princess Castle",
			Description:    "Multi-tiered castle design with towers, edible pearls, and princess figurine",
			Price:          domain.MoneyFromInt(150),
			Category:       domain.CategoryKids,
			Occasions:      []occ{domain.OccasionBirthday},
			RecipientTypes: []rec{domain.RecipientKids},
			Sizes:          []sz{medium, large},
			Image:          placeholderImage,
		},
		{
			ID:             "cake-11",
			Name:           "Rustic Naked Cake",
			Description:    "Semi-naked layers with fresh berries and seasonal blooms",
			Price:          domain.MoneyFromInt(95),
			Category:       domain.CategoryWedding,
			Occasions:      []occ{domain.OccasionWedding, domain.OccasionAnniversary},
			RecipientTypes: []rec{domain.RecipientCouple, domain.RecipientFamily},
			Sizes:          []sz{medium, large, xl},
			Image:          placeholderImage,
		},
		{
			ID:             "cake-12",
			Name:           "Tropical Paradise",
			Description:    "Coconut cake with passion fruit curd and tropical fruit decorations",
			Price:          domain.MoneyFromInt(88),
			Category:       domain.CategoryBirthday,
			Occasions:      []occ{domain.OccasionBirthday, domain.OccasionBabyShower, domain.OccasionOther},
			RecipientTypes: []rec{domain.RecipientIndividual, domain.RecipientFamily},
			Sizes:          []sz{small, medium, large},
			Image:          placeholderImage,
		},
	}
}
