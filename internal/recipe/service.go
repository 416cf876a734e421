package recipe

import (
	"strings"

	"golang.org/x/text/cases"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// List returns recipe summaries whose name contains query, ignoring case.
// An empty query lists everything.
func (s *Service) List(query string) []Summary {
	query = strings.TrimSpace(query)
	fold := cases.Fold()
	needle := fold.String(query)

	out := make([]Summary, 0)
	for _, r := range s.repo.List() {
		if needle == "" || strings.Contains(fold.String(r.Name), needle) {
			out = append(out, r.Summary())
		}
	}
	return out
}

// All returns the full recipes, in catalog order.
func (s *Service) All() []Recipe {
	return s.repo.List()
}

func (s *Service) GetByID(id string) (Recipe, error) {
	return s.repo.GetByID(strings.TrimSpace(id))
}
