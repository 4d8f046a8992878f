package usecase

import (
	"unicode/utf8"

	"github.com/shelfmatch/backend/internal/domain"
)

// RepresentativeSelector picks the description that stands for a group.
type RepresentativeSelector interface {
	Select(products []domain.ProductRecord, scores []float64) string
}

// FirstMember selects the group member with the lowest input index.
type FirstMember struct{}

func (FirstMember) Select(products []domain.ProductRecord, _ []float64) string {
	if len(products) == 0 {
		return ""
	}
	return products[0].Description
}

// ShortestDescription selects the shortest description; ties go to the earlier member.
type ShortestDescription struct{}

func (ShortestDescription) Select(products []domain.ProductRecord, _ []float64) string {
	if len(products) == 0 {
		return ""
	}
	best := products[0].Description
	for _, p := range products[1:] {
		if utf8.RuneCountInString(p.Description) < utf8.RuneCountInString(best) {
			best = p.Description
		}
	}
	return best
}

// SelectorByName resolves a configured strategy name. Unknown names select FirstMember.
func SelectorByName(name string) RepresentativeSelector {
	switch name {
	case "shortest":
		return ShortestDescription{}
	default:
		return FirstMember{}
	}
}
