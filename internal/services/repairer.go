package services

import (
	"fmt"
	"sort"
	"sync"

	"github.com/dmorhart/fieldforce/internal/models"
)

// RepairStore is the slice of the hierarchy store the repairer needs: flat
// relation reads plus manager_id writes. Nothing else is ever written.
type RepairStore interface {
	ListByTeam(teamID uint) ([]models.User, error)
	UpdateManagerID(userID uint, managerID *uint) error
	ApplyManagerAssignments(assignments []models.ManagerAssignment, roleByUser map[uint]string) error
}

// RepairResult reports the outcome of one targeted assignment. Failures are
// per-item: a rejected assignment never aborts the batch.
type RepairResult struct {
	UserID    uint   `json:"user_id"`
	ManagerID uint   `json:"manager_id"`
	Applied   bool   `json:"applied"`
	Reason    string `json:"reason,omitempty"`
}

// RebuildEntry is one line of the rebuild audit trail.
type RebuildEntry struct {
	UserID uint   `json:"user_id"`
	Before *uint  `json:"before"`
	After  *uint  `json:"after"`
	Reason string `json:"reason"`
}

type RebuildReport struct {
	TeamID      uint           `json:"team_id"`
	RepairsMade int            `json:"repairs_made"`
	Details     []RebuildEntry `json:"details"`
}

// Repairer applies manager_id fixes. Writes for one team are serialized
// behind a per-team mutex so two concurrent repairs cannot interleave into
// a transiently cyclic graph; reads elsewhere stay unlocked.
type Repairer struct {
	store RepairStore

	mu        sync.Mutex
	teamLocks map[uint]*sync.Mutex
}

func NewRepairer(store RepairStore) *Repairer {
	return &Repairer{
		store:     store,
		teamLocks: make(map[uint]*sync.Mutex),
	}
}

func (repairer *Repairer) lockTeam(teamID uint) func() {
	repairer.mu.Lock()
	lock, exists := repairer.teamLocks[teamID]
	if !exists {
		lock = &sync.Mutex{}
		repairer.teamLocks[teamID] = lock
	}
	repairer.mu.Unlock()

	lock.Lock()
	return lock.Unlock
}

// Repair applies an administrator-chosen map of user → new manager. Each
// assignment is validated against the team state including earlier
// assignments from the same batch, applied one by one, and reported
// individually. Users outside the map are never touched.
func (repairer *Repairer) Repair(teamID uint, assignments map[uint]uint) ([]RepairResult, error) {
	unlock := repairer.lockTeam(teamID)
	defer unlock()

	users, err := repairer.store.ListByTeam(teamID)
	if err != nil {
		return nil, err
	}

	byID := make(map[uint]models.User, len(users))
	managerOf := make(map[uint]*uint, len(users))
	for _, user := range users {
		byID[user.ID] = user
		managerOf[user.ID] = user.ManagerID
	}

	ordered := orderAssignments(assignments, byID)

	results := make([]RepairResult, 0, len(ordered))
	for _, pair := range ordered {
		result := RepairResult{UserID: pair.userID, ManagerID: pair.managerID}

		reason, ok := vetAssignment(pair.userID, pair.managerID, byID, managerOf, len(users))
		if !ok {
			result.Reason = reason
			results = append(results, result)
			continue
		}

		managerID := pair.managerID
		if err := repairer.store.UpdateManagerID(pair.userID, &managerID); err != nil {
			result.Reason = fmt.Sprintf("write failed: %v", err)
			results = append(results, result)
			continue
		}

		managerOf[pair.userID] = &managerID
		result.Applied = true
		results = append(results, result)
	}

	return results, nil
}

type assignmentPair struct {
	userID    uint
	managerID uint
}

// orderAssignments sorts a batch role-ascending (agents first) with user id
// as the tie break, so a junior fix never depends on a senior fix that has
// not landed yet.
func orderAssignments(assignments map[uint]uint, byID map[uint]models.User) []assignmentPair {
	ordered := make([]assignmentPair, 0, len(assignments))
	for userID, managerID := range assignments {
		ordered = append(ordered, assignmentPair{userID: userID, managerID: managerID})
	}
	sort.Slice(ordered, func(i, j int) bool {
		rankI := models.RoleRank(byID[ordered[i].userID].Role)
		rankJ := models.RoleRank(byID[ordered[j].userID].Role)
		if rankI == rankJ {
			return ordered[i].userID < ordered[j].userID
		}
		return rankI < rankJ
	})
	return ordered
}

func vetAssignment(userID uint, managerID uint, byID map[uint]models.User, managerOf map[uint]*uint, teamSize int) (string, bool) {
	user, exists := byID[userID]
	if !exists {
		return "user not found in team", false
	}
	manager, exists := byID[managerID]
	if !exists {
		return "manager not found in team", false
	}
	if userID == managerID {
		return "user cannot manage themselves", false
	}

	expected, hasManagerRole := models.ManagerRoleFor(user.Role)
	if !hasManagerRole {
		return fmt.Sprintf("%s does not take a manager", user.Role), false
	}
	if !models.IsAllowedManagerRole(user.Role, manager.Role) {
		return fmt.Sprintf("manager must be %s or more senior", expected), false
	}

	if wouldCreateCycle(userID, managerID, managerOf, teamSize) {
		return "assignment would create a cycle", false
	}

	return "", true
}

// wouldCreateCycle simulates the proposed edge and walks upward from the
// new manager. Reaching the user again within the team-size bound means the
// edge closes a loop.
func wouldCreateCycle(userID uint, managerID uint, managerOf map[uint]*uint, teamSize int) bool {
	current := managerID
	for hop := 0; hop <= teamSize; hop++ {
		if current == userID {
			return true
		}
		next, exists := managerOf[current]
		if !exists || next == nil {
			return false
		}
		current = *next
	}
	return true
}

// Rebuild deterministically reconstructs a team's manager assignments from
// role-order rules. It only touches users the validator flags, commits all
// writes in one transaction, and is idempotent: a second run on a healthy
// team makes zero repairs.
func (repairer *Repairer) Rebuild(teamID uint) (RebuildReport, error) {
	unlock := repairer.lockTeam(teamID)
	defer unlock()

	users, err := repairer.store.ListByTeam(teamID)
	if err != nil {
		return RebuildReport{}, err
	}

	plan := planRebuild(users)

	report := RebuildReport{TeamID: teamID, RepairsMade: len(plan.entries), Details: plan.entries}
	if len(plan.assignments) == 0 {
		return report, nil
	}

	roleByUser := make(map[uint]string, len(users))
	for _, user := range users {
		roleByUser[user.ID] = user.Role
	}

	if err := repairer.store.ApplyManagerAssignments(plan.assignments, roleByUser); err != nil {
		// Nothing committed; the caller retries the whole rebuild.
		return RebuildReport{}, err
	}
	return report, nil
}

type rebuildPlan struct {
	assignments []models.ManagerAssignment
	entries     []RebuildEntry
}

func planRebuild(users []models.User) rebuildPlan {
	byID := make(map[uint]models.User, len(users))
	managerOf := make(map[uint]*uint, len(users))
	for _, user := range users {
		byID[user.ID] = user
		managerOf[user.ID] = user.ManagerID
	}

	brokenByID := make(map[uint]string)
	for _, violation := range ValidateTeam(users) {
		brokenByID[violation.UserID] = violation.Issue
	}

	plan := rebuildPlan{
		assignments: make([]models.ManagerAssignment, 0),
		entries:     make([]RebuildEntry, 0),
	}

	record := func(user models.User, after *uint, reason string) {
		plan.assignments = append(plan.assignments, models.ManagerAssignment{UserID: user.ID, ManagerID: after})
		plan.entries = append(plan.entries, RebuildEntry{
			UserID: user.ID,
			Before: user.ManagerID,
			After:  after,
			Reason: reason,
		})
		managerOf[user.ID] = after
	}

	ordered := append([]models.User(nil), users...)
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].ID < ordered[j].ID })

	// State managers share the root level; any manager pointer on one is
	// cleared rather than demoting the holder.
	for _, user := range ordered {
		if user.Role == models.RoleStateManager && user.ManagerID != nil {
			record(user, nil, "state manager detached to root level")
		}
	}

	for _, role := range []string{models.RoleRegionalManager, models.RoleDistrictManager, models.RoleAgent} {
		for _, user := range ordered {
			if user.Role != role {
				continue
			}
			if _, flagged := brokenByID[user.ID]; !flagged {
				continue
			}
			managerID, reason := pickManager(user, ordered, managerOf)
			if managerID == nil {
				// No seniors exist at all; the validator keeps
				// reporting this user until one is provisioned.
				continue
			}
			record(user, managerID, reason)
		}
	}

	return plan
}

// pickManager walks the fallback chain for a broken user's role and picks
// the lowest-headcount candidate, smallest id on ties.
func pickManager(user models.User, users []models.User, managerOf map[uint]*uint) (*uint, string) {
	chains := map[string][]string{
		models.RoleRegionalManager: {models.RoleStateManager},
		models.RoleDistrictManager: {models.RoleRegionalManager, models.RoleStateManager},
		models.RoleAgent:           {models.RoleDistrictManager, models.RoleRegionalManager, models.RoleStateManager},
	}

	expected, _ := models.ManagerRoleFor(user.Role)
	for _, candidateRole := range chains[user.Role] {
		best := lowestHeadcount(user.ID, candidateRole, users, managerOf)
		if best == nil {
			continue
		}
		reason := fmt.Sprintf("assigned to %s %d (lowest headcount)", candidateRole, *best)
		if candidateRole != expected {
			reason = fmt.Sprintf("no %s available, fell back to %s %d (lowest headcount)", expected, candidateRole, *best)
		}
		return best, reason
	}
	return nil, ""
}

func lowestHeadcount(excludeID uint, role string, users []models.User, managerOf map[uint]*uint) *uint {
	headcounts := make(map[uint]int)
	for _, candidate := range users {
		if candidate.Role == role && candidate.ID != excludeID {
			headcounts[candidate.ID] = 0
		}
	}
	if len(headcounts) == 0 {
		return nil
	}

	for userID, managerID := range managerOf {
		if managerID == nil || userID == excludeID {
			continue
		}
		if _, tracked := headcounts[*managerID]; tracked {
			headcounts[*managerID]++
		}
	}

	var best *uint
	bestCount := 0
	for candidateID, count := range headcounts {
		candidateID := candidateID
		if best == nil || count < bestCount || (count == bestCount && candidateID < *best) {
			best = &candidateID
			bestCount = count
		}
	}
	return best
}
