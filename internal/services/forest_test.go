package services

import (
	"errors"
	"testing"

	"github.com/dmorhart/fieldforce/internal/models"
)

func uintPtr(value uint) *uint {
	return &value
}

func teamFixture() []models.User {
	return []models.User{
		{ID: 1, Name: "Sasha", Role: models.RoleStateManager, TeamID: 7},
		{ID: 2, Name: "Reka", Role: models.RoleRegionalManager, TeamID: 7, ManagerID: uintPtr(1)},
		{ID: 3, Name: "Daan", Role: models.RoleDistrictManager, TeamID: 7, ManagerID: uintPtr(2)},
		{ID: 4, Name: "Ana", Role: models.RoleAgent, TeamID: 7, ManagerID: uintPtr(3)},
		{ID: 5, Name: "Bo", Role: models.RoleAgent, TeamID: 7, ManagerID: uintPtr(3)},
	}
}

func TestBuildTeamForestHappyPath(t *testing.T) {
	root, err := BuildTeamForest(teamFixture())
	if err != nil {
		t.Fatalf("build forest: %v", err)
	}

	if root.User.ID != 1 {
		t.Fatalf("expected root user 1, got %d", root.User.ID)
	}
	if root.MemberCount() != 5 {
		t.Fatalf("expected 5 members, got %d", root.MemberCount())
	}

	district := root.Find(3)
	if district == nil {
		t.Fatal("district manager not attached")
	}
	if len(district.Children) != 2 {
		t.Fatalf("expected 2 agents under district manager, got %d", len(district.Children))
	}
	if district.Children[0].User.ID != 4 || district.Children[1].User.ID != 5 {
		t.Fatalf("expected agents in id order, got %d %d", district.Children[0].User.ID, district.Children[1].User.ID)
	}
}

func TestBuildTeamForestNoRoot(t *testing.T) {
	users := teamFixture()[1:]
	if _, err := BuildTeamForest(users); !errors.Is(err, ErrNoRootFound) {
		t.Fatalf("expected ErrNoRootFound, got %v", err)
	}
}

func TestBuildTeamForestRootWithManagerIsNotARoot(t *testing.T) {
	users := teamFixture()
	users[0].ManagerID = uintPtr(2)
	if _, err := BuildTeamForest(users); !errors.Is(err, ErrNoRootFound) {
		t.Fatalf("expected ErrNoRootFound, got %v", err)
	}
}

func TestBuildTeamForestMultipleRoots(t *testing.T) {
	users := append(teamFixture(), models.User{ID: 9, Name: "Io", Role: models.RoleStateManager, TeamID: 7})

	_, err := BuildTeamForest(users)
	var multipleRoots *MultipleRootsError
	if !errors.As(err, &multipleRoots) {
		t.Fatalf("expected MultipleRootsError, got %v", err)
	}
	if len(multipleRoots.RootIDs) != 2 || multipleRoots.RootIDs[0] != 1 || multipleRoots.RootIDs[1] != 9 {
		t.Fatalf("expected both roots reported, got %v", multipleRoots.RootIDs)
	}
}

func TestBuildTeamForestOmitsUnreachableUsers(t *testing.T) {
	users := append(teamFixture(), models.User{ID: 6, Name: "Li", Role: models.RoleAgent, TeamID: 7, ManagerID: uintPtr(99)})

	root, err := BuildTeamForest(users)
	if err != nil {
		t.Fatalf("build forest: %v", err)
	}
	if root.Find(6) != nil {
		t.Fatal("user with unknown manager must be omitted, not attached")
	}
	if root.MemberCount() != 5 {
		t.Fatalf("expected 5 reachable members, got %d", root.MemberCount())
	}
}

func TestBuildTeamForestIgnoresSelfManagedUsers(t *testing.T) {
	users := append(teamFixture(), models.User{ID: 8, Name: "Nyx", Role: models.RoleAgent, TeamID: 7, ManagerID: uintPtr(8)})

	root, err := BuildTeamForest(users)
	if err != nil {
		t.Fatalf("build forest: %v", err)
	}
	if root.Find(8) != nil {
		t.Fatal("self-managed user must not appear in the tree")
	}
}

// Every built tree must be cycle-free: no node may be its own ancestor.
func TestBuildTeamForestNoCycleInvariant(t *testing.T) {
	users := teamFixture()
	// A mutual-manager pair that must never both attach.
	users = append(users,
		models.User{ID: 10, Role: models.RoleDistrictManager, TeamID: 7, ManagerID: uintPtr(11)},
		models.User{ID: 11, Role: models.RoleAgent, TeamID: 7, ManagerID: uintPtr(10)},
	)

	root, err := BuildTeamForest(users)
	if err != nil {
		t.Fatalf("build forest: %v", err)
	}

	var assertNoAncestorRepeat func(node *HierarchyNode, ancestors map[uint]bool)
	assertNoAncestorRepeat = func(node *HierarchyNode, ancestors map[uint]bool) {
		if ancestors[node.User.ID] {
			t.Fatalf("user %d is its own ancestor", node.User.ID)
		}
		ancestors[node.User.ID] = true
		for _, child := range node.Children {
			assertNoAncestorRepeat(child, ancestors)
		}
		delete(ancestors, node.User.ID)
	}
	assertNoAncestorRepeat(root, map[uint]bool{})
}
