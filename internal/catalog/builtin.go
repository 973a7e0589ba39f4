package catalog

// RoleCount is the fixed table size. Every game seats exactly four
// investigators, one per role.
const RoleCount = 4

// The four fixed role ids.
const (
	RoleDetective    = "detective"
	RoleForensics    = "forensics"
	RoleInformant    = "informant"
	RoleSurveillance = "surveillance"
)

var canonicalRoleOrder = []string{RoleDetective, RoleForensics, RoleInformant, RoleSurveillance}

// Builtin returns the embedded tutorial content used when no content
// directory is configured or loading fails.
func Builtin() *Catalog {
	cat := &Catalog{
		cases: map[string]CaseDefinition{tutorialCase.ID: tutorialCase},
		roles: map[string]RoleDefinition{
			RoleDetective:    builtinRoles[0],
			RoleForensics:    builtinRoles[1],
			RoleInformant:    builtinRoles[2],
			RoleSurveillance: builtinRoles[3],
		},
		caseOrder: []string{tutorialCase.ID},
	}
	return cat
}

var builtinRoles = []RoleDefinition{
	{
		ID:          RoleDetective,
		Name:        "Lead Detective",
		Description: "Coordinates the investigation and holds the official case file.",
		Abilities:   []string{"case_file", "interrogation_notes"},
	},
	{
		ID:          RoleForensics,
		Name:        "Forensic Analyst",
		Description: "Reads lab results and physical evidence nobody else understands.",
		Abilities:   []string{"lab_analysis", "evidence_report"},
	},
	{
		ID:          RoleInformant,
		Name:        "Street Informant",
		Description: "Hears the rumors and knows who owes whom a favor.",
		Abilities:   []string{"rumors", "social_map"},
	},
	{
		ID:          RoleSurveillance,
		Name:        "Surveillance Officer",
		Description: "Has the camera footage and the movement logs.",
		Abilities:   []string{"camera_logs", "movement_report"},
	},
}

// tutorialCase is the fixed case used by the default selection strategy.
var tutorialCase = CaseDefinition{
	ID:      "gallery-theft",
	Title:   "The Gallery Theft",
	Summary: "A priceless miniature vanished from the Harrowgate Gallery during Friday's private viewing. Four investigators have until dawn to name the thief.",
	Setting: "Harrowgate Gallery, Friday night",
	Suspects: []Suspect{
		{
			ID:          "curator",
			Name:        "Margaret Voss",
			Description: "Gallery curator, twenty years at Harrowgate.",
			Alibi:       "Claims she was giving a tour of the east wing all evening.",
			Motive:      "The gallery's insurance payout would cover its debts.",
		},
		{
			ID:          "collector",
			Name:        "Theodore Bell",
			Description: "Private collector who bid on the miniature twice and lost.",
			Alibi:       "Says he left before the viewing ended; no one saw him go.",
			Motive:      "Obsessive about completing his collection.",
		},
		{
			ID:          "restorer",
			Name:        "Ana Ferreira",
			Description: "Freelance restorer with keys to the storage vault.",
			Alibi:       "Was in the basement workshop, alone.",
			Motive:      "Recently dismissed from the gallery's payroll.",
		},
		{
			ID:          "critic",
			Name:        "Julian Marsh",
			Description: "Art critic covering the viewing for a magazine.",
			Alibi:       "Interviewing guests in the lobby, corroborated by two waiters.",
			Motive:      "Wrote that the miniature was a forgery; owning it would prove it.",
		},
	},
	Clues: []Clue{
		{
			ID:          "broken-case",
			Title:       "Forced display case",
			Description: "The display case latch was pried open with a thin blade, not smashed.",
			Location:    "east wing",
			FoundBy:     FoundByAll,
		},
		{
			ID:          "guest-list",
			Title:       "Annotated guest list",
			Description: "Bell's name is crossed out and re-added in different ink.",
			Location:    "front desk",
		},
		{
			ID:          "solvent-residue",
			Title:       "Solvent residue",
			Description: "Traces of restoration solvent on the case latch match workshop stock.",
			Location:    "east wing",
			FoundBy:     RoleForensics,
		},
		{
			ID:          "vault-ledger",
			Title:       "Vault access ledger",
			Description: "The vault was opened at 21:40, between scheduled checks.",
			Location:    "basement",
			FoundBy:     RoleDetective + "," + RoleSurveillance,
		},
		{
			ID:          "pawnshop-whisper",
			Title:       "Pawnshop whisper",
			Description: "A fence on Calder Street was told to expect 'something small and old' this weekend.",
			Location:    "off-site",
			FoundBy:     RoleInformant,
		},
		{
			ID:          "camera-gap",
			Title:       "Camera gap",
			Description: "The east wing camera feed drops for six minutes starting 21:38.",
			Location:    "security room",
			FoundBy:     RoleSurveillance,
		},
		{
			ID:          "fiber-sample",
			Title:       "Wool fiber",
			Description: "A dark wool fiber caught on the case hinge matches the workshop's packing blankets.",
			Location:    "east wing",
			FoundBy:     RoleForensics + "," + RoleDetective,
		},
	},
	Culprit: "restorer",
}
