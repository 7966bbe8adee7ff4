package services

import (
	"sort"

	"github.com/dmorhart/fieldforce/internal/models"
)

const (
	IssueNoManager        = "no_manager"
	IssueManagerNotFound  = "manager_not_found"
	IssueManagerWrongRole = "manager_wrong_role"
	IssueCycleMember      = "cycle_member"
)

// BrokenRelationship is a diagnostic row for one user whose reporting link
// is unusable. CandidateManagers lists every team member holding a rank that
// may manage this user, state managers always included as the escalation
// fallback.
type BrokenRelationship struct {
	UserID            uint          `json:"user_id"`
	Issue             string        `json:"issue"`
	CandidateManagers []models.User `json:"candidate_managers"`
}

// ValidateTeam enumerates structural violations in a team's flat relation
// set without mutating anything. Every user is checked independent of tree
// membership; checks apply in priority order and the first match wins.
func ValidateTeam(users []models.User) []BrokenRelationship {
	byID := make(map[uint]models.User, len(users))
	for _, user := range users {
		byID[user.ID] = user
	}

	ordered := append([]models.User(nil), users...)
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].ID < ordered[j].ID })

	broken := make([]BrokenRelationship, 0)
	for _, user := range ordered {
		issue, flagged := checkUser(user, byID, len(users))
		if !flagged {
			continue
		}
		broken = append(broken, BrokenRelationship{
			UserID:            user.ID,
			Issue:             issue,
			CandidateManagers: candidateManagers(user, ordered),
		})
	}
	return broken
}

func checkUser(user models.User, byID map[uint]models.User, teamSize int) (string, bool) {
	if !models.IsOperationalRole(user.Role) {
		return "", false
	}

	if user.Role == models.RoleStateManager {
		if user.ManagerID == nil {
			return "", false
		}
		if _, exists := byID[*user.ManagerID]; !exists {
			return IssueManagerNotFound, true
		}
		// No rank is senior to a state manager.
		return IssueManagerWrongRole, true
	}

	if user.ManagerID == nil {
		return IssueNoManager, true
	}

	manager, exists := byID[*user.ManagerID]
	if !exists {
		return IssueManagerNotFound, true
	}

	if !models.IsAllowedManagerRole(user.Role, manager.Role) {
		return IssueManagerWrongRole, true
	}

	if isCycleMember(user, byID, teamSize) {
		return IssueCycleMember, true
	}

	return "", false
}

// isCycleMember walks manager pointers upward from the user. The walk is
// capped at teamSize+1 hops; exceeding the bound means the chain never
// terminates and counts as a cycle.
func isCycleMember(user models.User, byID map[uint]models.User, teamSize int) bool {
	current := user
	for hop := 0; hop <= teamSize; hop++ {
		if current.ManagerID == nil {
			return false
		}
		next, exists := byID[*current.ManagerID]
		if !exists {
			return false
		}
		if next.ID == user.ID {
			return true
		}
		current = next
	}
	return true
}

func candidateManagers(user models.User, users []models.User) []models.User {
	expected, hasManagerRole := models.ManagerRoleFor(user.Role)
	candidates := make([]models.User, 0)
	for _, candidate := range users {
		if candidate.ID == user.ID {
			continue
		}
		if hasManagerRole && candidate.Role == expected {
			candidates = append(candidates, candidate)
			continue
		}
		// An unassigned report can always escalate to the state manager.
		if hasManagerRole && expected != models.RoleStateManager && candidate.Role == models.RoleStateManager {
			candidates = append(candidates, candidate)
		}
	}
	return candidates
}
