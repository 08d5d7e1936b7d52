package application

import "sort"

// Attribute names reported in Comparison.MatchesByAttribute.
const (
	AttrStudyHabits   = "studyHabits"
	AttrSleepSchedule = "sleepSchedule"
	AttrCleanliness   = "cleanliness"
	AttrVisitors      = "visitors"
	AttrClassYear     = "classYear"
)

// Compare evaluates two students' profiles attribute by attribute. Attribute
// compatibility is exact equality; interests are compared as sets. The result
// is deterministic: interest slices come back sorted.
func Compare(first, second Student) Comparison {
	a := profileOf(first)
	b := profileOf(second)

	matches := map[string]bool{
		AttrStudyHabits:   a.StudyHabits == b.StudyHabits,
		AttrSleepSchedule: a.SleepSchedule == b.SleepSchedule,
		AttrCleanliness:   a.Cleanliness == b.Cleanliness,
		AttrVisitors:      a.Visitors == b.Visitors,
		AttrClassYear:     first.ClassYear == second.ClassYear,
	}

	shared, uniqueA, uniqueB := splitInterests(a.Interests, b.Interests)

	return Comparison{
		MatchesByAttribute: matches,
		SharedInterests:    shared,
		UniqueToFirst:      uniqueA,
		UniqueToSecond:     uniqueB,
	}
}

// MatchCandidates returns the candidates satisfying every constraint set on
// the filter. Unset constraints are ignored; Interests requires ALL listed
// interests to be present on the candidate. Candidates already connected to,
// or already requested by, the caller are excluded upstream by the roommate
// service before this runs.
func MatchCandidates(candidates []Student, filter CandidateFilter) []Student {
	matched := make([]Student, 0, len(candidates))
	for _, candidate := range candidates {
		if matchesFilter(candidate, filter) {
			matched = append(matched, candidate)
		}
	}
	return matched
}

func matchesFilter(candidate Student, filter CandidateFilter) bool {
	prefs := profileOf(candidate)

	if filter.ClassYear != nil && candidate.ClassYear != *filter.ClassYear {
		return false
	}
	if filter.StudyHabits != nil && prefs.StudyHabits != *filter.StudyHabits {
		return false
	}
	if filter.SleepSchedule != nil && prefs.SleepSchedule != *filter.SleepSchedule {
		return false
	}
	if filter.Cleanliness != nil && prefs.Cleanliness != *filter.Cleanliness {
		return false
	}
	if filter.Visitors != nil && prefs.Visitors != *filter.Visitors {
		return false
	}
	if len(filter.Interests) > 0 {
		have := make(map[string]struct{}, len(prefs.Interests))
		for _, interest := range prefs.Interests {
			have[interest] = struct{}{}
		}
		for _, required := range filter.Interests {
			if _, ok := have[required]; !ok {
				return false
			}
		}
	}
	return true
}

// profileOf resolves a student's preferences with empty defaults so the
// comparison never dereferences nil.
func profileOf(s Student) Preferences {
	if s.Preferences == nil {
		return Preferences{Interests: []string{}}
	}
	return *s.Preferences
}

func splitInterests(first, second []string) (shared, uniqueFirst, uniqueSecond []string) {
	inFirst := make(map[string]struct{}, len(first))
	for _, interest := range first {
		inFirst[interest] = struct{}{}
	}
	inSecond := make(map[string]struct{}, len(second))
	for _, interest := range second {
		inSecond[interest] = struct{}{}
	}

	shared = make([]string, 0)
	uniqueFirst = make([]string, 0)
	uniqueSecond = make([]string, 0)

	for interest := range inFirst {
		if _, ok := inSecond[interest]; ok {
			shared = append(shared, interest)
		} else {
			uniqueFirst = append(uniqueFirst, interest)
		}
	}
	for interest := range inSecond {
		if _, ok := inFirst[interest]; !ok {
			uniqueSecond = append(uniqueSecond, interest)
		}
	}

	sort.Strings(shared)
	sort.Strings(uniqueFirst)
	sort.Strings(uniqueSecond)
	return shared, uniqueFirst, uniqueSecond
}
