// internal/game/assign_test.go
package game

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/whodunit-live/whodunit/internal/catalog"
	"github.com/whodunit-live/whodunit/internal/models"
)

func testRoster(n int) []RosterEntry {
	roster := make([]RosterEntry, 0, n)
	for i := 0; i < n; i++ {
		roster = append(roster, RosterEntry{
			ConnID:   uuid.New(),
			Identity: models.Identity{ID: uuid.New(), DisplayName: "player"},
		})
	}
	return roster
}

func TestAssignRolesAreABijection(t *testing.T) {
	cat := catalog.Builtin()

	// The permutation is random, so check the bijection property over many
	// deals rather than a single outcome.
	for i := 0; i < 50; i++ {
		g, err := Assign(cat, CaseSelectFixed, uuid.New(), testRoster(catalog.RoleCount))
		require.NoError(t, err)
		require.Len(t, g.Players, catalog.RoleCount)

		seen := make(map[string]bool, catalog.RoleCount)
		for _, p := range g.Players {
			assert.False(t, seen[p.Role], "role %q dealt twice", p.Role)
			seen[p.Role] = true
			_, ok := cat.Role(p.Role)
			assert.True(t, ok, "unknown role %q", p.Role)
		}
		assert.Len(t, seen, catalog.RoleCount)
	}
}

func TestAssignRejectsWrongTableSize(t *testing.T) {
	cat := catalog.Builtin()

	for _, n := range []int{0, 1, 3, 5} {
		_, err := Assign(cat, CaseSelectFixed, uuid.New(), testRoster(n))
		assert.Error(t, err, "roster of %d must be rejected", n)
	}
}

func TestAssignFixedSelectsFirstCase(t *testing.T) {
	cat := catalog.Builtin()

	g, err := Assign(cat, CaseSelectFixed, uuid.New(), testRoster(catalog.RoleCount))
	require.NoError(t, err)
	assert.Equal(t, cat.CaseIDs()[0], g.CaseID)
}

func TestAssignViewsPartitionCluesByRole(t *testing.T) {
	cat := catalog.Builtin()
	roster := testRoster(catalog.RoleCount)

	g, err := Assign(cat, CaseSelectFixed, uuid.New(), roster)
	require.NoError(t, err)

	def, ok := cat.Case(g.CaseID)
	require.True(t, ok)

	for _, entry := range roster {
		view, ok := g.View(entry.ConnID)
		require.True(t, ok)
		assert.Equal(t, view.Role, view.RoleInfo.ID)
		assert.Equal(t, def.ID, view.CaseSummary.ID)
		assert.Equal(t, def.Suspects, view.Suspects)
		assert.NotEmpty(t, view.RoleSpecifics)

		// Each view holds exactly the clues its role may see.
		for _, clue := range view.VisibleClues {
			assert.True(t, clue.VisibleTo(view.Role),
				"clue %q leaked into %s view", clue.ID, view.Role)
		}
		for _, clue := range def.Clues {
			if clue.VisibleTo(view.Role) {
				assert.Contains(t, view.VisibleClues, clue,
					"clue %q missing from %s view", clue.ID, view.Role)
			}
		}
	}
}

func TestAssignSharedCluesAppearInEveryView(t *testing.T) {
	cat := catalog.Builtin()
	roster := testRoster(catalog.RoleCount)

	g, err := Assign(cat, CaseSelectFixed, uuid.New(), roster)
	require.NoError(t, err)

	def, _ := cat.Case(g.CaseID)
	for _, clue := range def.Clues {
		if clue.FoundBy != "" && clue.FoundBy != catalog.FoundByAll {
			continue
		}
		for _, entry := range roster {
			view, _ := g.View(entry.ConnID)
			assert.Contains(t, view.VisibleClues, clue)
		}
	}
}

func TestAssignEmptyCatalog(t *testing.T) {
	empty := &catalog.Catalog{}
	_, err := Assign(empty, CaseSelectFixed, uuid.New(), testRoster(catalog.RoleCount))
	assert.ErrorIs(t, err, ErrNoCaseAvailable)
}

func TestParseCaseSelect(t *testing.T) {
	assert.Equal(t, CaseSelectRandom, ParseCaseSelect("random"))
	assert.Equal(t, CaseSelectFixed, ParseCaseSelect(""))
	assert.Equal(t, CaseSelectFixed, ParseCaseSelect("fixed"))
}
