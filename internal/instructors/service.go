package instructors

import "context"

// Service exposes read access to materialized instructor profiles. Writes
// happen inside the approval cascade.
type Service struct {
	Repo Repo
}

func NewService(repo Repo) *Service {
	return &Service{Repo: repo}
}

func (s *Service) GetByUser(ctx context.Context, userID string) (Profile, error) {
	return s.Repo.GetByUser(ctx, userID)
}
