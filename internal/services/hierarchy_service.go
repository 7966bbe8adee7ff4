package services

import "github.com/dmorhart/fieldforce/internal/models"

type HierarchyReader interface {
	ListByTeam(teamID uint) ([]models.User, error)
}

// HierarchyService binds forest construction and validation to the store so
// callers work in team ids. Both operations read a consistent snapshot of
// the flat relation set and never mutate it.
type HierarchyService struct {
	users HierarchyReader
}

func NewHierarchyService(users HierarchyReader) *HierarchyService {
	return &HierarchyService{users: users}
}

func (service *HierarchyService) BuildTeam(teamID uint) (*HierarchyNode, error) {
	users, err := service.users.ListByTeam(teamID)
	if err != nil {
		return nil, err
	}
	return BuildTeamForest(users)
}

type TeamDiagnostics struct {
	TotalUsers  int                  `json:"total_users"`
	BrokenCount int                  `json:"broken_count"`
	BrokenUsers []BrokenRelationship `json:"broken_users"`
}

func (service *HierarchyService) Diagnostics(teamID uint) (TeamDiagnostics, error) {
	users, err := service.users.ListByTeam(teamID)
	if err != nil {
		return TeamDiagnostics{}, err
	}
	broken := ValidateTeam(users)
	return TeamDiagnostics{
		TotalUsers:  len(users),
		BrokenCount: len(broken),
		BrokenUsers: broken,
	}, nil
}
