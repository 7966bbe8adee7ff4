package services

import (
	"errors"
	"fmt"
	"sort"

	"github.com/dmorhart/fieldforce/internal/models"
)

// HierarchyNode wraps one user plus that user's direct reports. Trees are
// built fresh per query and never mutated afterward; a changed relationship
// means rebuilding the tree, not patching a node in place.
type HierarchyNode struct {
	User     models.User      `json:"user"`
	Children []*HierarchyNode `json:"children"`
}

var ErrNoRootFound = errors.New("team has no state manager root")

// MultipleRootsError reports every root contender instead of silently
// picking a winner; primacy between co-equal state managers is an admin
// decision.
type MultipleRootsError struct {
	RootIDs []uint
}

func (err *MultipleRootsError) Error() string {
	return fmt.Sprintf("team has %d state manager roots: %v", len(err.RootIDs), err.RootIDs)
}

// BuildTeamForest converts a team's flat relation set into a tree rooted at
// the team's state manager. Users not reachable from the root are omitted,
// not rejected: a partial but valid tree must still be usable for the
// members it contains, and the validator reports the rest.
func BuildTeamForest(users []models.User) (*HierarchyNode, error) {
	roots := make([]models.User, 0, 1)
	for _, user := range users {
		if user.Role == models.RoleStateManager && user.ManagerID == nil {
			roots = append(roots, user)
		}
	}

	if len(roots) == 0 {
		return nil, ErrNoRootFound
	}
	if len(roots) > 1 {
		rootIDs := make([]uint, 0, len(roots))
		for _, root := range roots {
			rootIDs = append(rootIDs, root.ID)
		}
		sort.Slice(rootIDs, func(i, j int) bool { return rootIDs[i] < rootIDs[j] })
		return nil, &MultipleRootsError{RootIDs: rootIDs}
	}

	childrenByManager := make(map[uint][]models.User, len(users))
	for _, user := range users {
		if user.ManagerID == nil || user.ID == roots[0].ID {
			continue
		}
		if *user.ManagerID == user.ID {
			// Self-managed users can never attach anywhere.
			continue
		}
		childrenByManager[*user.ManagerID] = append(childrenByManager[*user.ManagerID], user)
	}

	visited := map[uint]bool{roots[0].ID: true}
	return attachReports(roots[0], childrenByManager, visited), nil
}

func attachReports(user models.User, childrenByManager map[uint][]models.User, visited map[uint]bool) *HierarchyNode {
	node := &HierarchyNode{User: user, Children: make([]*HierarchyNode, 0)}

	reports := append([]models.User(nil), childrenByManager[user.ID]...)
	sort.Slice(reports, func(i, j int) bool { return reports[i].ID < reports[j].ID })

	for _, report := range reports {
		if visited[report.ID] {
			// A user id attaches to at most one parent; a second
			// attempt is dropped, not applied.
			continue
		}
		visited[report.ID] = true
		node.Children = append(node.Children, attachReports(report, childrenByManager, visited))
	}
	return node
}

// Walk visits every node of the subtree in depth-first order, root first.
func (node *HierarchyNode) Walk(visit func(*HierarchyNode)) {
	if node == nil {
		return
	}
	visit(node)
	for _, child := range node.Children {
		child.Walk(visit)
	}
}

// Find returns the subtree node holding the given user, or nil.
func (node *HierarchyNode) Find(userID uint) *HierarchyNode {
	if node == nil {
		return nil
	}
	if node.User.ID == userID {
		return node
	}
	for _, child := range node.Children {
		if found := child.Find(userID); found != nil {
			return found
		}
	}
	return nil
}

// MemberCount counts distinct users in the subtree including the root.
func (node *HierarchyNode) MemberCount() int {
	count := 0
	node.Walk(func(*HierarchyNode) { count++ })
	return count
}
