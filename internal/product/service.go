package product

import "context"

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) List(ctx context.Context) ([]Product, error) {
	return s.repo.List(ctx)
}

func (s *Service) GetByID(ctx context.Context, id int) (Product, error) {
	return s.repo.GetByID(ctx, id)
}

// Lookup returns the products for ids keyed by id. Unknown ids are absent
// from the map.
func (s *Service) Lookup(ctx context.Context, ids []int) (map[int]Product, error) {
	products, err := s.repo.ListByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	out := make(map[int]Product, len(products))
	for _, p := range products {
		out[p.ID] = p
	}
	return out, nil
}

func (s *Service) Create(ctx context.Context, p Product) (Product, error) {
	return s.repo.Create(ctx, p)
}

func (s *Service) Update(ctx context.Context, id int, p Product) (Product, error) {
	return s.repo.Update(ctx, id, p)
}

func (s *Service) Delete(ctx context.Context, id int) error {
	return s.repo.Delete(ctx, id)
}
