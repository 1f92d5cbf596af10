package service

import (
	"github.com/MuzammilBaloch-22/Cakelora/internal/domain"
	"github.com/MuzammilBaloch-22/Cakelora/internal/repository"
	apperrors "github.com/MuzammilBaloch-22/Cakelora/pkg/errors"
)

// RecommendationLimit is the number of cakes shown in the finder panel.
const RecommendationLimit = 3

// FacetQuery selects products by occasion, recipient type and size. A nil
// facet imposes no constraint.
type FacetQuery struct {
	Occasion  *domain.Occasion
	Recipient *domain.RecipientType
	Size      *domain.Size
}

// Empty reports whether no facet is set.
func (q FacetQuery) Empty() bool {
	return q.Occasion == nil && q.Recipient == nil && q.Size == nil
}

func (q FacetQuery) matches(p *domain.Product) bool {
	if q.Occasion != nil && !p.HasOccasion(*q.Occasion) {
		return false
	}
	if q.Recipient != nil && !p.HasRecipient(*q.Recipient) {
		return false
	}
	if q.Size != nil && !p.OffersSize(*q.Size) {
		return false
	}
	return true
}

// CatalogService answers read-only catalog queries. Every result is a fresh
// copy in declaration order and is never nil.
type CatalogService struct {
	repo repository.CatalogRepository
}

// NewCatalogService creates a catalog service over repo.
func NewCatalogService(repo repository.CatalogRepository) *CatalogService {
	return &CatalogService{repo: repo}
}

// All returns the whole catalog.
func (s *CatalogService) All() []domain.Product {
	return s.repo.List()
}

// ByCategory returns the products listed under c. An undeclared category
// yields an empty result.
func (s *CatalogService) ByCategory(c domain.Category) []domain.Product {
	return s.where(func(p *domain.Product) bool { return p.Category == c })
}

// BestSellers returns the products flagged as best sellers.
func (s *CatalogService) BestSellers() []domain.Product {
	return s.where(func(p *domain.Product) bool { return p.IsBestSeller })
}

// NewArrivals returns the products flagged as new.
func (s *CatalogService) NewArrivals() []domain.Product {
	return s.where(func(p *domain.Product) bool { return p.IsNew })
}

// Filter returns the products matching every facet in q. A query with no
// facets set returns an empty result rather than the whole catalog.
func (s *CatalogService) Filter(q FacetQuery) []domain.Product {
	if q.Empty() {
		return []domain.Product{}
	}
	return s.where(q.matches)
}

// Recommend returns at most RecommendationLimit products from Filter.
func (s *CatalogService) Recommend(q FacetQuery) []domain.Product {
	out := s.Filter(q)
	if len(out) > RecommendationLimit {
		out = out[:RecommendationLimit:RecommendationLimit]
	}
	return out
}

// Product returns a single product by ID.
func (s *CatalogService) Product(id string) (domain.Product, error) {
	p, ok := s.repo.Get(id)
	if !ok {
		return domain.Product{}, apperrors.NotFound("product", id)
	}
	return p, nil
}

func (s *CatalogService) where(keep func(*domain.Product) bool) []domain.Product {
	all := s.repo.List()
	out := make([]domain.Product, 0, len(all))
	for i := range all {
		if keep(&all[i]) {
			out = append(out, all[i])
		}
	}
	return out
}

// Option is a selectable enum value with its display label.
type Option struct {
	Code  string `json:"code"`
	Label string `json:"label"`
}

// SizeOption is a size with its label and price multiplier.
type SizeOption struct {
	Code       string `json:"code"`
	Label      string `json:"label"`
	Multiplier string `json:"multiplier"`
}

// Labels lists every enum value the presentation layer offers.
type Labels struct {
	Categories     []Option     `json:"categories"`
	Occasions      []Option     `json:"occasions"`
	RecipientTypes []Option     `json:"recipient_types"`
	Sizes          []SizeOption `json:"sizes"`
}

// Labels returns the option lists for every enum in declaration order.
func (s *CatalogService) Labels() Labels {
	var l Labels
	for _, c := range domain.Categories() {
		l.Categories = append(l.Categories, Option{Code: c.String(), Label: c.Label()})
	}
	for _, o := range domain.Occasions() {
		l.Occasions = append(l.Occasions, Option{Code: o.String(), Label: o.Label()})
	}
	for _, r := range domain.RecipientTypes() {
		l.RecipientTypes = append(l.RecipientTypes, Option{Code: r.String(), Label: r.Label()})
	}
	for _, sz := range domain.Sizes() {
		l.Sizes = append(l.Sizes, SizeOption{
			Code:       sz.String(),
			Label:      sz.Label(),
			Multiplier: sz.Multiplier().String(),
		})
	}
	return l
}
