// Package catalog loads the static mystery case and role definitions the
// server hands out at game start. Content is read once at startup and is
// immutable afterwards; if loading fails the built-in tutorial set is used so
// the service stays operable.
package catalog

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"
)

// FoundByAll marks a clue as visible to every role.
const FoundByAll = "all"

// Clue is a single piece of case evidence. FoundBy is empty, "all", or a
// comma-separated list of role ids that may see it.
type Clue struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Location    string `json:"location"`
	FoundBy     string `json:"foundBy,omitempty"`
}

// VisibleTo reports whether a player assigned roleID may see this clue.
func (c Clue) VisibleTo(roleID string) bool {
	if c.FoundBy == "" || c.FoundBy == FoundByAll {
		return true
	}
	for _, r := range strings.Split(c.FoundBy, ",") {
		if strings.TrimSpace(r) == roleID {
			return true
		}
	}
	return false
}

// Suspect is a person of interest in a case.
type Suspect struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Alibi       string `json:"alibi"`
	Motive      string `json:"motive"`
}

// CaseDefinition is one pre-authored mystery.
type CaseDefinition struct {
	ID       string    `json:"id"`
	Title    string    `json:"title"`
	Summary  string    `json:"summary"`
	Setting  string    `json:"setting"`
	Suspects []Suspect `json:"suspects"`
	Clues    []Clue    `json:"clues"`
	Culprit  string    `json:"culprit"`
}

// Summary is the spoiler-free projection of a case sent to clients.
type CaseSummary struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	Summary string `json:"summary"`
	Setting string `json:"setting"`
}

// Summarize strips solution material from the case.
func (c CaseDefinition) Summarize() CaseSummary {
	return CaseSummary{ID: c.ID, Title: c.Title, Summary: c.Summary, Setting: c.Setting}
}

// RoleDefinition describes one of the four fixed investigative personas.
type RoleDefinition struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Abilities   []string `json:"abilities"`
}

// Catalog holds all loaded cases and roles. Read-only after Load.
type Catalog struct {
	cases map[string]CaseDefinition
	roles map[string]RoleDefinition

	// caseOrder preserves a stable iteration order for selection strategies.
	caseOrder []string
}

// Load reads cases/*.json and roles.json from dir. Any failure degrades to
// the built-in tutorial content rather than returning an error; the service
// must never crash because a content file is missing or corrupt.
func Load(dir string, logger *logrus.Logger) *Catalog {
	cat, err := loadFromDir(dir)
	if err != nil {
		if logger != nil {
			logger.Warnf("catalog: falling back to built-in content: %v", err)
		}
		return Builtin()
	}
	if logger != nil {
		logger.Infof("catalog: loaded %d case(s), %d role(s) from %s", len(cat.cases), len(cat.roles), dir)
	}
	return cat
}

func loadFromDir(dir string) (*Catalog, error) {
	if dir == "" {
		return nil, fmt.Errorf("no content directory configured")
	}

	roleData, err := os.ReadFile(filepath.Join(dir, "roles.json"))
	if err != nil {
		return nil, fmt.Errorf("read roles.json: %w", err)
	}
	var roleList []RoleDefinition
	if err := json.Unmarshal(roleData, &roleList); err != nil {
		return nil, fmt.Errorf("parse roles.json: %w", err)
	}
	if len(roleList) != RoleCount {
		return nil, fmt.Errorf("roles.json defines %d roles, want %d", len(roleList), RoleCount)
	}

	caseFiles, err := filepath.Glob(filepath.Join(dir, "cases", "*.json"))
	if err != nil {
		return nil, err
	}
	if len(caseFiles) == 0 {
		return nil, fmt.Errorf("no case files under %s", filepath.Join(dir, "cases"))
	}
	sort.Strings(caseFiles)

	cat := &Catalog{
		cases: make(map[string]CaseDefinition),
		roles: make(map[string]RoleDefinition),
	}
	for _, r := range roleList {
		cat.roles[r.ID] = r
	}
	for _, f := range caseFiles {
		data, err := os.ReadFile(f)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", f, err)
		}
		var def CaseDefinition
		if err := json.Unmarshal(data, &def); err != nil {
			return nil, fmt.Errorf("parse %s: %w", f, err)
		}
		if def.ID == "" {
			return nil, fmt.Errorf("case file %s has no id", f)
		}
		if _, dup := cat.cases[def.ID]; dup {
			return nil, fmt.Errorf("duplicate case id %q", def.ID)
		}
		cat.cases[def.ID] = def
		cat.caseOrder = append(cat.caseOrder, def.ID)
	}
	return cat, nil
}

// Case looks up a case definition by id.
func (c *Catalog) Case(id string) (CaseDefinition, bool) {
	def, ok := c.cases[id]
	return def, ok
}

// Role looks up a role definition by id.
func (c *Catalog) Role(id string) (RoleDefinition, bool) {
	r, ok := c.roles[id]
	return r, ok
}

// CaseIDs returns all case ids in load order.
func (c *Catalog) CaseIDs() []string {
	out := make([]string, len(c.caseOrder))
	copy(out, c.caseOrder)
	return out
}

// RoleIDs returns the fixed role id set in canonical order.
func (c *Catalog) RoleIDs() []string {
	ids := make([]string, 0, len(c.roles))
	for _, id := range canonicalRoleOrder {
		if _, ok := c.roles[id]; ok {
			ids = append(ids, id)
		}
	}
	// Content packs may rename roles; fall back to sorted ids if the
	// canonical four are not all present.
	if len(ids) != len(c.roles) {
		ids = ids[:0]
		for id := range c.roles {
			ids = append(ids, id)
		}
		sort.Strings(ids)
	}
	return ids
}
