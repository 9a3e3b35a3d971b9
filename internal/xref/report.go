package xref

import (
	"sort"
	"strings"

	"github.com/hbollon/go-edlib"
)

// Unresolved is one qualified reference that never matched an entity, with
// close entity paths offered as likely intended targets.
type Unresolved struct {
	Token       string
	Count       int
	Suggestions []string
}

// Report lists the qualified tokens that failed to resolve during this
// resolver's lifetime, ordered by token. Suggestions come from fuzzy matching
// against every known entity path; a token too far from anything known gets
// none.
func (r *Resolver) Report() []Unresolved {
	if len(r.unresolved) == 0 {
		return nil
	}

	candidates := r.entityPaths()
	report := make([]Unresolved, 0, len(r.unresolved))
	for token, count := range r.unresolved {
		query := strings.TrimSuffix(token, "()")
		suggestions, err := edlib.FuzzySearchSetThreshold(query, candidates, 3, 0.7, edlib.Levenshtein)
		if err != nil {
			suggestions = nil
		}
		// FuzzySearchSetThreshold pads its result with empty slots.
		trimmed := suggestions[:0]
		for _, s := range suggestions {
			if s != "" {
				trimmed = append(trimmed, s)
			}
		}
		report = append(report, Unresolved{Token: token, Count: count, Suggestions: trimmed})
	}

	sort.Slice(report, func(i, j int) bool { return report[i].Token < report[j].Token })
	return report
}

// entityPaths enumerates every resolvable path in the namespace table, in
// both namespace-qualified and class-relative spellings.
func (r *Resolver) entityPaths() []string {
	var paths []string
	for nsName, ns := range r.Namespaces {
		paths = append(paths, nsName)
		for enumName := range ns.Enums {
			paths = append(paths, nsName+"::"+enumName, enumName)
		}
		for className, class := range ns.Classes {
			paths = append(paths, nsName+"::"+className, className)
			members := make([]string, 0, len(class.PublicMethods)+len(class.PublicAttributes)+len(class.PublicEnums))
			for _, method := range class.PublicMethods {
				members = append(members, method.Name)
			}
			for _, attr := range class.PublicAttributes {
				members = append(members, attr.Name)
			}
			for enumName := range class.PublicEnums {
				members = append(members, enumName)
			}
			for _, member := range members {
				paths = append(paths, nsName+"::"+className+"::"+member, className+"::"+member)
			}
		}
	}
	sort.Strings(paths)
	return paths
}
