package game

import (
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"github.com/whodunit-live/whodunit/internal/catalog"
	"github.com/whodunit-live/whodunit/internal/models"
)

// ErrNoCaseAvailable is returned when the catalog has no usable case; the
// caller rolls the room back to Waiting.
var ErrNoCaseAvailable = errors.New("no case available")

// CaseSelect decides which case a new game plays.
type CaseSelect int

const (
	// CaseSelectFixed always picks the first case in catalog order (the
	// tutorial case in the built-in set).
	CaseSelectFixed CaseSelect = iota
	// CaseSelectRandom picks uniformly from the catalog.
	CaseSelectRandom
)

// ParseCaseSelect maps a config string to a strategy, defaulting to fixed.
func ParseCaseSelect(s string) CaseSelect {
	if s == "random" {
		return CaseSelectRandom
	}
	return CaseSelectFixed
}

// RosterEntry is a seat request: one connected player about to enter a game.
type RosterEntry struct {
	ConnID   uuid.UUID
	Identity models.Identity
}

// Assign materializes a Game for a starting room: picks a case, deals the
// four roles as a uniform random permutation (each role used exactly once),
// and partitions the case's clues into per-player views using the foundBy
// filter. The same clue may appear in several views.
func Assign(cat *catalog.Catalog, strategy CaseSelect, roomID uuid.UUID, roster []RosterEntry) (*Game, error) {
	if len(roster) != catalog.RoleCount {
		return nil, fmt.Errorf("need exactly %d players, have %d", catalog.RoleCount, len(roster))
	}

	caseIDs := cat.CaseIDs()
	if len(caseIDs) == 0 {
		return nil, ErrNoCaseAvailable
	}
	var caseID string
	switch strategy {
	case CaseSelectRandom:
		caseID = caseIDs[rand.Intn(len(caseIDs))]
	default:
		caseID = caseIDs[0]
	}
	def, ok := cat.Case(caseID)
	if !ok {
		return nil, ErrNoCaseAvailable
	}

	roleIDs := cat.RoleIDs()
	if len(roleIDs) != catalog.RoleCount {
		return nil, fmt.Errorf("catalog has %d roles, want %d: %w", len(roleIDs), catalog.RoleCount, ErrNoCaseAvailable)
	}
	perm := rand.Perm(len(roleIDs))

	g := &Game{
		ID:        uuid.New(),
		RoomID:    roomID,
		CaseID:    caseID,
		StartTime: time.Now(),
		views:     make(map[uuid.UUID]*PlayerView, len(roster)),
	}

	summary := def.Summarize()
	for i, entry := range roster {
		roleID := roleIDs[perm[i]]
		roleDef, _ := cat.Role(roleID)

		g.Players = append(g.Players, GamePlayer{
			ConnID:   entry.ConnID,
			Identity: entry.Identity,
			Role:     roleID,
		})

		visible := make([]catalog.Clue, 0, len(def.Clues))
		for _, clue := range def.Clues {
			if clue.VisibleTo(roleID) {
				visible = append(visible, clue)
			}
		}

		g.views[entry.ConnID] = &PlayerView{
			Role:          roleID,
			RoleInfo:      roleDef,
			CaseSummary:   summary,
			VisibleClues:  visible,
			Suspects:      def.Suspects,
			RoleSpecifics: briefingFor(roleID, def),
		}
	}

	return g, nil
}
