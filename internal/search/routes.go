package search

import "maps"

// Routes maps a source table to the path prefix of its detail view.
// Tables without an entry use "/<table>".
type Routes map[string]string

var DefaultRoutes = Routes{
	"order": "/orders/details",
}

// With returns a copy of r with overrides applied.
func (r Routes) With(overrides map[string]string) Routes {
	out := maps.Clone(r)
	if out == nil {
		out = Routes{}
	}

	maps.Copy(out, overrides)

	return out
}

func (r Routes) For(table, id string) string {
	prefix, ok := r[table]
	if !ok {
		prefix = "/" + table
	}

	return prefix + "/" + id
}
