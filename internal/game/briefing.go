package game

import (
	"fmt"

	"github.com/whodunit-live/whodunit/internal/catalog"
)

// briefingTemplates maps each role id to its narrative seeding function. The
// role set is closed, so a plain lookup table replaces the dynamic dispatch
// the original client scripts used. The content is flavor, not gameplay
// state; it leans on the case's suspects and setting for texture.
var briefingTemplates = map[string]func(catalog.CaseDefinition) []string{
	catalog.RoleDetective:    detectiveBriefing,
	catalog.RoleForensics:    forensicsBriefing,
	catalog.RoleInformant:    informantBriefing,
	catalog.RoleSurveillance: surveillanceBriefing,
}

// briefingFor returns the role-specific narrative lines for a case. Unknown
// roles (custom content packs) get a generic briefing.
func briefingFor(roleID string, def catalog.CaseDefinition) []string {
	if tmpl, ok := briefingTemplates[roleID]; ok {
		return tmpl(def)
	}
	return []string{
		fmt.Sprintf("You have been assigned to the case at %s.", def.Setting),
		"Share what you learn; nobody solves this alone.",
	}
}

func detectiveBriefing(def catalog.CaseDefinition) []string {
	lines := []string{
		fmt.Sprintf("The official case file for %q is on your desk.", def.Title),
		fmt.Sprintf("There are %d persons of interest. Every alibi in the file has at least one soft spot.", len(def.Suspects)),
	}
	if len(def.Suspects) > 0 {
		lines = append(lines, fmt.Sprintf("Your interrogation notes flag %s as evasive under questioning.", def.Suspects[0].Name))
	}
	return lines
}

func forensicsBriefing(def catalog.CaseDefinition) []string {
	return []string{
		"The lab has processed the scene overnight. Your results are attached to your clue list.",
		fmt.Sprintf("Physical evidence recovered at %s is in better condition than usual.", def.Setting),
		"Remember: the others cannot read a lab report. Translate.",
	}
}

func informantBriefing(def catalog.CaseDefinition) []string {
	lines := []string{
		"Your contacts started talking before the police tape went up.",
		"Word is this was not an outside job.",
	}
	for _, s := range def.Suspects {
		if s.Motive != "" {
			lines = append(lines, fmt.Sprintf("A rumor ties %s to it: %s", s.Name, lowerFirst(s.Motive)))
			break
		}
	}
	return lines
}

func surveillanceBriefing(def catalog.CaseDefinition) []string {
	return []string{
		fmt.Sprintf("You pulled every camera and access log covering %s.", def.Setting),
		"The timeline has gaps. Gaps are information.",
		"Cross-check your logs against whatever the others claim people were doing.",
	}
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	r := []rune(s)
	if r[0] >= 'A' && r[0] <= 'Z' {
		r[0] = r[0] - 'A' + 'a'
	}
	return string(r)
}
