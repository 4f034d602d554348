package similarity

import "github.com/p-n-ai/pai-classmatch/internal/content"

// Breakdown explains which elements of two content sets matched.
// It is built fresh on every comparison and never mutated afterwards.
type Breakdown struct {
	MatchingSkills      []content.LearningSkill `json:"matchingSkills"`
	MissingSkills       []content.LearningSkill `json:"missingSkills"`
	AdditionalSkills    []content.LearningSkill `json:"additionalSkills"`
	CommonObjectives    []string                `json:"commonObjectives"`
	DifferentObjectives []string                `json:"differentObjectives"`
	PrerequisitesStatus PrerequisitesStatus     `json:"prerequisitesStatus"`
}

// PrerequisitesStatus describes the candidate side's prerequisites.
type PrerequisitesStatus struct {
	// Satisfied lists candidate prerequisites the student has mastered.
	Satisfied []string `json:"satisfied"`
	// Missing lists candidate prerequisites the student has not mastered.
	Missing []string `json:"missing"`
	// Additional lists candidate prerequisites the preferred content does not require.
	Additional []string `json:"additional"`
}

func emptyBreakdown() Breakdown {
	return Breakdown{
		MatchingSkills:      []content.LearningSkill{},
		MissingSkills:       []content.LearningSkill{},
		AdditionalSkills:    []content.LearningSkill{},
		CommonObjectives:    []string{},
		DifferentObjectives: []string{},
		PrerequisitesStatus: PrerequisitesStatus{
			Satisfied:  []string{},
			Missing:    []string{},
			Additional: []string{},
		},
	}
}

func buildBreakdown(
	skillsA, skillsB []content.LearningSkill,
	objectivesA, objectivesB []string,
	prereqsA, prereqsB []string,
	mastered map[string]struct{},
) Breakdown {
	bd := emptyBreakdown()

	keysA, keysB := skillKeySet(skillsA), skillKeySet(skillsB)
	for _, sk := range skillsA {
		if _, ok := keysB[skillKey(sk)]; ok {
			bd.MatchingSkills = append(bd.MatchingSkills, sk)
		} else {
			bd.MissingSkills = append(bd.MissingSkills, sk)
		}
	}
	for _, sk := range skillsB {
		if _, ok := keysA[skillKey(sk)]; !ok {
			bd.AdditionalSkills = append(bd.AdditionalSkills, sk)
		}
	}

	for _, oa := range objectivesA {
		if hasCommonObjective(oa, objectivesB) {
			bd.CommonObjectives = append(bd.CommonObjectives, oa)
		} else {
			bd.DifferentObjectives = append(bd.DifferentObjectives, oa)
		}
	}

	required := make(map[string]struct{}, len(prereqsA))
	for _, id := range prereqsA {
		required[id] = struct{}{}
	}
	seen := make(map[string]struct{}, len(prereqsB))
	for _, id := range prereqsB {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}

		if _, ok := mastered[id]; ok {
			bd.PrerequisitesStatus.Satisfied = append(bd.PrerequisitesStatus.Satisfied, id)
		} else {
			bd.PrerequisitesStatus.Missing = append(bd.PrerequisitesStatus.Missing, id)
		}
		if _, ok := required[id]; !ok {
			bd.PrerequisitesStatus.Additional = append(bd.PrerequisitesStatus.Additional, id)
		}
	}

	return bd
}

func hasCommonObjective(objective string, others []string) bool {
	for _, o := range others {
		if TextSimilarity(objective, o) > CommonObjectiveThreshold {
			return true
		}
	}
	return false
}
