// Package postprocess resolves cross-references and renders code samples over
// a private copy of the parsed entity graph. The original graph is never
// mutated: every rendering configuration gets its own deep copy, while all
// symbol lookups run against the original, so passes are independent and
// reproducible.
package postprocess

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/projectd/projectd/internal/docmodel"
	"github.com/projectd/projectd/internal/xref"
)

// Callbacks are the two collaborators a pass renders with. Both must be pure:
// they are called once per element with no ordering guarantees.
type Callbacks struct {
	// RenderCode renders the text of one code or verbatim element.
	RenderCode func(text string) string
	// RenderLink renders one resolved entity reference.
	RenderLink xref.LinkFunc
}

// pass carries the state of one post-processing run.
type pass struct {
	resolver *xref.Resolver
	// original is the un-mutated graph all scope lookups resolve against.
	original *docmodel.ParsedData
	cb       Callbacks
}

// Run deep-copies the graph, rewrites every text element through the
// cross-reference resolver and every code/verbatim element through the code
// callback, and returns the copy together with the unresolved-reference
// report. The input graph is left untouched.
func Run(data *docmodel.ParsedData, cb Callbacks) (*docmodel.ParsedData, []xref.Unresolved) {
	p := &pass{
		resolver: xref.NewResolver(data.Namespaces, cb.RenderLink),
		original: data,
		cb:       cb,
	}

	out := data.Clone()
	for _, ns := range out.Namespaces {
		p.processNamespace(ns)
	}
	for _, class := range out.Classes {
		p.processClass(class)
	}
	return out, p.resolver.Report()
}

// scopeFor rebuilds the element's scope against the original graph. The copy
// under rewrite shares no instances with the resolver's symbol tables, so
// scoping goes by name.
func (p *pass) scopeFor(namespaceName, className string) xref.Scope {
	scope := xref.Scope{Namespace: p.original.Namespaces[namespaceName]}
	if className != "" && scope.Namespace != nil {
		scope.Class = scope.Namespace.Classes[className]
	}
	return scope
}

// processBlock builds the rewritten form of one block. A nil block stays nil.
func (p *pass) processBlock(block *docmodel.DocBlock, scope xref.Scope) *docmodel.DocBlock {
	if block == nil {
		return nil
	}
	out := &docmodel.DocBlock{Elements: make([]docmodel.DocElement, 0, len(block.Elements))}
	for _, element := range block.Elements {
		text := element.Text
		switch element.Kind {
		case docmodel.ElementCode, docmodel.ElementVerbatim:
			text = p.cb.RenderCode(text)
		case docmodel.ElementText:
			text = p.resolver.ResolveText(text, scope)
		}
		out.Elements = append(out.Elements, docmodel.DocElement{Text: text, Kind: element.Kind})
	}
	return out
}

func (p *pass) processEntity(entity *docmodel.EntityDoc, scope xref.Scope) {
	entity.Brief = p.processBlock(entity.Brief, scope)
	entity.Desc = p.processBlock(entity.Desc, scope)
}

func (p *pass) processMethod(method *docmodel.MethodDoc, scope xref.Scope) {
	p.processEntity(&method.EntityDoc, scope)
	for _, param := range method.Params {
		param.Desc = p.processBlock(param.Desc, scope)
	}
	method.Returns = p.processBlock(method.Returns, scope)
}

func (p *pass) processEnum(enum *docmodel.EnumDoc, scope xref.Scope) {
	p.processEntity(&enum.EntityDoc, scope)
	for _, value := range enum.Values {
		p.processEntity(&value.EntityDoc, scope)
	}
}

func (p *pass) processClass(class *docmodel.ClassDoc) {
	namespaceName := ""
	if class.Namespace != nil {
		namespaceName = class.Namespace.Name
	}
	scope := p.scopeFor(namespaceName, class.Name)

	p.processEntity(&class.EntityDoc, scope)
	for _, method := range class.PublicMethods {
		p.processMethod(method, scope)
	}
	for _, attr := range class.PublicAttributes {
		p.processEntity(&attr.EntityDoc, scope)
	}
	for _, enum := range class.PublicEnums {
		p.processEnum(enum, scope)
	}
}

func (p *pass) processNamespace(ns *docmodel.NamespaceDoc) {
	scope := p.scopeFor(ns.Name, "")
	p.processEntity(&ns.EntityDoc, scope)
	for _, enum := range ns.Enums {
		p.processEnum(enum, scope)
	}
}

// Result is the output of one named pass run by RunAll.
type Result struct {
	Data       *docmodel.ParsedData
	Unresolved []xref.Unresolved
}

// Pass names one rendering configuration for RunAll.
type Pass struct {
	Name      string
	Callbacks Callbacks
}

// RunAll executes every pass in parallel. Each pass reads the shared graph
// and writes only its own copy, so no synchronization beyond the group is
// needed. A canceled context abandons passes not yet started.
func RunAll(ctx context.Context, data *docmodel.ParsedData, passes []Pass) (map[string]Result, error) {
	results := make([]Result, len(passes))

	g, ctx := errgroup.WithContext(ctx)
	for i, ps := range passes {
		i, ps := i, ps
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			out, unresolved := Run(data, ps.Callbacks)
			results[i] = Result{Data: out, Unresolved: unresolved}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	byName := make(map[string]Result, len(passes))
	for i, ps := range passes {
		byName[ps.Name] = results[i]
	}
	return byName, nil
}
