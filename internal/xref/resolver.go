// Package xref rewrites entity mentions inside documentation prose into
// rendered reference links. Words are matched against the parsed entity graph
// through a scope chain: the element's own class first, then its namespace,
// then the global namespace table. Resolution failure is never an error; the
// word stays exactly as written.
package xref

import (
	"strings"

	"github.com/projectd/projectd/internal/debug"
	"github.com/projectd/projectd/internal/docmodel"
)

// LinkFunc renders one resolved reference. It receives the matched token text
// exactly as it appeared (punctuation-trimmed, member parentheses intact) and
// the resolved path; class and member are empty when not applicable. The
// return value replaces the matched text inside the word.
type LinkFunc func(matched, namespace, class, member string) string

// Scope names the documentation element whose text is being resolved. For a
// method or attribute, Class is its owning class; for a class, the class
// itself. Namespace may be set alone for namespace-level text.
type Scope struct {
	Namespace *docmodel.NamespaceDoc
	Class     *docmodel.ClassDoc
}

// punctuationCutset is trimmed from both ends of a word before matching.
// Parentheses stay: a trailing "()" marks a method reference and belongs to
// the matched text.
const punctuationCutset = "\"'`.,;:!?"

// Resolver resolves token paths against the global namespace table. Not safe
// for concurrent mutation of the unresolved report; each rendering pass gets
// its own Resolver.
type Resolver struct {
	Namespaces map[string]*docmodel.NamespaceDoc
	Link       LinkFunc

	unresolved map[string]int
}

// NewResolver creates a resolver over the given namespace table.
func NewResolver(namespaces map[string]*docmodel.NamespaceDoc, link LinkFunc) *Resolver {
	return &Resolver{
		Namespaces: namespaces,
		Link:       link,
		unresolved: make(map[string]int),
	}
}

// ResolveText rewrites every resolvable entity mention in one text element.
// Leading whitespace of the element survives; the words themselves are
// rejoined with single spaces, as the renderer treats prose as flowing text.
func (r *Resolver) ResolveText(text string, scope Scope) string {
	trimmed := strings.TrimLeft(text, " \t\n")
	prefix := text[:len(text)-len(trimmed)]

	var words []string
	for _, word := range strings.Fields(text) {
		if word == "@ref" || word == `\ref` {
			continue
		}

		token := strings.Trim(word, punctuationCutset)
		// A mention wrapped in parentheses resolves as the inner token; the
		// wrapper stays part of the surrounding word.
		for len(token) >= 2 && token[0] == '(' && token[len(token)-1] == ')' {
			token = strings.Trim(token[1:len(token)-1], punctuationCutset)
		}
		namespace, class, member, ok := r.resolve(token, scope)
		if !ok {
			r.noteUnresolved(token)
			words = append(words, word)
			continue
		}

		debug.LogXref("resolved %q to %s/%s/%s\n", token, namespace, class, member)
		words = append(words, strings.Replace(word, token, r.Link(token, namespace, class, member), 1))
	}

	return prefix + strings.Join(words, " ")
}

// resolve matches one punctuation-trimmed token path against the scope chain.
func (r *Resolver) resolve(token string, scope Scope) (namespace, class, member string, ok bool) {
	if token == "" {
		return "", "", "", false
	}

	tokens := strings.Split(strings.ReplaceAll(token, "#", "::"), "::")
	last := len(tokens) - 1
	tokens[last] = strings.TrimSuffix(tokens[last], "()")
	for _, t := range tokens {
		if t == "" {
			return "", "", "", false
		}
	}

	switch len(tokens) {
	case 1:
		return r.resolveSimple(tokens[0], scope)
	case 2:
		return r.resolveQualified(tokens[0], tokens[1], scope)
	case 3:
		return r.resolveFull(tokens[0], tokens[1], tokens[2])
	}
	return "", "", "", false
}

// resolveSimple handles a 1-token path: an enum of the element's own class, a
// class or enum of its namespace, or a namespace name.
func (r *Resolver) resolveSimple(token string, scope Scope) (string, string, string, bool) {
	if scope.Class != nil && scope.Class.Namespace != nil {
		if _, ok := scope.Class.PublicEnums[token]; ok {
			return scope.Class.Namespace.Name, scope.Class.Name, token, true
		}
	}
	if ns := scope.Namespace; ns != nil {
		if _, ok := ns.Classes[token]; ok {
			return ns.Name, token, "", true
		}
		if _, ok := ns.Enums[token]; ok {
			return ns.Name, "", token, true
		}
	}
	if _, ok := r.Namespaces[token]; ok {
		return token, "", "", true
	}
	return "", "", "", false
}

// resolveQualified handles a 2-token path: Class::member in the element's
// namespace, or Namespace::Class / Namespace::Enum through the global table.
func (r *Resolver) resolveQualified(first, second string, scope Scope) (string, string, string, bool) {
	if ns := scope.Namespace; ns != nil {
		if class, ok := ns.Classes[first]; ok && isPublicMember(class, second) {
			return ns.Name, first, second, true
		}
	}
	if ns, ok := r.Namespaces[first]; ok {
		if _, ok := ns.Classes[second]; ok {
			return first, second, "", true
		}
		if _, ok := ns.Enums[second]; ok {
			return first, "", second, true
		}
	}
	return "", "", "", false
}

// resolveFull handles a 3-token Namespace::Class::member path.
func (r *Resolver) resolveFull(first, second, third string) (string, string, string, bool) {
	ns, ok := r.Namespaces[first]
	if !ok {
		return "", "", "", false
	}
	class, ok := ns.Classes[second]
	if !ok || !isPublicMember(class, third) {
		return "", "", "", false
	}
	return first, second, third, true
}

// isPublicMember reports whether name is a public method, attribute, or enum
// of the class.
func isPublicMember(class *docmodel.ClassDoc, name string) bool {
	for _, method := range class.PublicMethods {
		if method.Name == name {
			return true
		}
	}
	for _, attr := range class.PublicAttributes {
		if attr.Name == name {
			return true
		}
	}
	_, ok := class.PublicEnums[name]
	return ok
}

// noteUnresolved records a qualified token that failed to resolve. Plain
// words are not recorded: only paths that were clearly written as references.
func (r *Resolver) noteUnresolved(token string) {
	if !strings.Contains(token, "::") && !strings.Contains(token, "#") {
		return
	}
	r.unresolved[token]++
}
