package converter

import (
	"reflect"
	"sort"
	"strconv"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// namer hands out provisional component names while a generation runs. A
// type keeps its name for the lifetime of the namer. The names written to
// the document come from settleNames.
type namer struct {
	typeNames map[reflect.Type]string // type -> chosen schema name
	nameTypes map[string]reflect.Type // schema name -> type that claimed it
}

func newNamer() *namer {
	return &namer{
		typeNames: make(map[reflect.Type]string),
		nameTypes: make(map[string]reflect.Type),
	}
}

// name returns a unique component name for t. If two types from different
// packages share a simple name (models.User and api.User), the second one is
// prefixed with its package's last path segment ("ApiUser"); when that still
// collides a numeric suffix is appended ("ApiUser2"). Unnamed types get "".
func (n *namer) name(t reflect.Type) string {
	if name, ok := n.typeNames[t]; ok {
		return name
	}

	simple := SimpleName(t)
	if simple == "" {
		return ""
	}

	name := simple
	if existing, ok := n.nameTypes[name]; ok && existing != t {
		name = pkgPrefix(t.PkgPath()) + simple
		if existing, ok := n.nameTypes[name]; ok && existing != t {
			base := name
			for i := 2; ; i++ {
				candidate := base + strconv.Itoa(i)
				if _, ok := n.nameTypes[candidate]; !ok {
					name = candidate
					break
				}
			}
		}
	}

	n.typeNames[t] = name
	n.nameTypes[name] = t
	return name
}

// settleNames assigns the final component names for a set of types. A type
// whose simple name is unique keeps it. Types sharing a simple name are all
// prefixed with their package's last path segment ("ModelsUser",
// "ApiUser"), in package path order; a name still taken gets a numeric
// suffix. The result depends only on the set, not on its order.
func settleNames(types []reflect.Type) map[reflect.Type]string {
	groups := make(map[string][]reflect.Type)
	for _, t := range types {
		if simple := SimpleName(t); simple != "" {
			groups[simple] = append(groups[simple], t)
		}
	}

	keys := make([]string, 0, len(groups))
	for k := range groups {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	names := make(map[reflect.Type]string, len(types))
	taken := make(map[string]bool, len(types))

	for _, k := range keys {
		if g := groups[k]; len(g) == 1 {
			names[g[0]] = k
			taken[k] = true
		}
	}

	for _, k := range keys {
		g := groups[k]
		if len(g) == 1 {
			continue
		}
		sort.Slice(g, func(i, j int) bool {
			if g[i].PkgPath() != g[j].PkgPath() {
				return g[i].PkgPath() < g[j].PkgPath()
			}
			return g[i].String() < g[j].String()
		})
		for _, t := range g {
			name := pkgPrefix(t.PkgPath()) + k
			if taken[name] {
				base := name
				for i := 2; taken[name]; i++ {
					name = base + strconv.Itoa(i)
				}
			}
			names[t] = name
			taken[name] = true
		}
	}

	return names
}

// SimpleName derives the component name of a named type from its simple
// name. Generic arguments are flattened and stripped of their package
// paths: "Page[github.com/acme/models.User]" becomes "PageUser" and
// "Page[[]github.com/acme/models.User]" becomes "PageUserList". Pointers
// are dereferenced; unnamed types yield "".
func SimpleName(t reflect.Type) string {
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t == nil {
		return ""
	}
	return sanitizeSchemaName(t.Name())
}

// sanitizeSchemaName turns a Go type name into a component key.
func sanitizeSchemaName(name string) string {
	open := strings.IndexByte(name, '[')
	if open < 0 {
		return name
	}

	base := name[:open]
	var b strings.Builder
	b.WriteString(base)
	for _, arg := range typeArgs(name) {
		b.WriteString(argName(arg))
	}
	return b.String()
}

// argName renders one type argument: containers become suffixes, nested
// generics are flattened recursively.
func argName(arg string) string {
	switch {
	case strings.HasPrefix(arg, "[]"):
		return argName(arg[2:]) + "List"
	case strings.HasPrefix(arg, "*"):
		return argName(arg[1:])
	case strings.HasPrefix(arg, "map["):
		if end := strings.IndexByte(arg, ']'); end > 0 {
			return argName(arg[end+1:]) + "Map"
		}
	}

	base, _, _ := strings.Cut(arg, "[")
	if dot := strings.LastIndexByte(base, '.'); dot >= 0 {
		arg = arg[dot+1:]
	}
	return exportName(sanitizeSchemaName(arg))
}

// exportName upper-cases the first letter so builtin arguments read well
// ("Pageint" -> "PageInt").
func exportName(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// pkgPrefix extracts the last segment of a package path and title-cases it
// for use as a schema name prefix (e.g., "net/http" -> "Http").
func pkgPrefix(pkgPath string) string {
	if idx := strings.LastIndexByte(pkgPath, '/'); idx >= 0 {
		pkgPath = pkgPath[idx+1:]
	}
	if pkgPath == "" {
		return ""
	}
	pkgPath = strings.ReplaceAll(pkgPath, "-", "_")
	pkgPath = strings.ReplaceAll(pkgPath, ".", "_")
	// A Caser keeps state, so each call gets its own.
	return cases.Title(language.Und, cases.NoLower).String(pkgPath)
}
