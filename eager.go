package activerecord

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"
)

// Builder model query with eager loaded relations
type Builder struct {
	model      *Model
	wheres     []func(QueryBuilder) QueryBuilder
	eagerLoads map[string]func(QueryBuilder) QueryBuilder
	err        error
}

// Query new model query on def
func (d *Definition) Query() *Builder {
	return d.blank().NewQuery()
}

// Query new model query on def
func Query(def *Definition) *Builder {
	return def.Query()
}

// NewQuery new model query on the table and connection of m
func (m *Model) NewQuery() *Builder {
	return &Builder{model: m, eagerLoads: map[string]func(QueryBuilder) QueryBuilder{}}
}

// Model the blank model the builder hydrates from
func (b *Builder) Model() *Model {
	return b.model
}

// With eager load relations. Accepts names, []string and map[string]func(QueryBuilder) QueryBuilder
// of constrained names; "name:col1,col2" selects columns and "a.b" loads b on every a.
func (b *Builder) With(relations ...interface{}) *Builder {
	for _, relation := range relations {
		switch value := relation.(type) {
		case string:
			b.addEagerLoad(value, nil)
		case []string:
			for _, name := range value {
				b.addEagerLoad(name, nil)
			}
		case map[string]func(QueryBuilder) QueryBuilder:
			names := make([]string, 0, len(value))
			for name := range value {
				names = append(names, name)
			}
			sort.Strings(names)
			for _, name := range names {
				b.addEagerLoad(name, value[name])
			}
		default:
			panic(fmt.Sprintf("activerecord: unsupported eager load %T", relation))
		}
	}
	return b
}

func (b *Builder) addEagerLoad(name string, constraint func(QueryBuilder) QueryBuilder) {
	name = strings.TrimSpace(name)
	if name == "" {
		return
	}

	if relation, columns, ok := strings.Cut(name, ":"); ok {
		name = relation
		selected := strings.Split(columns, ",")
		for idx := range selected {
			selected[idx] = strings.TrimSpace(selected[idx])
		}
		previous := constraint
		constraint = func(q QueryBuilder) QueryBuilder {
			q = q.Select(selected...)
			if previous != nil {
				q = previous(q)
			}
			return q
		}
	}

	// register the parents of nested relations without constraints
	segments := strings.Split(name, ".")
	for idx := 1; idx < len(segments); idx++ {
		parent := strings.Join(segments[:idx], ".")
		if _, ok := b.eagerLoads[parent]; !ok {
			b.eagerLoads[parent] = noConstraint
		}
	}

	if constraint == nil {
		constraint = noConstraint
	}
	b.eagerLoads[name] = constraint
}

func noConstraint(q QueryBuilder) QueryBuilder { return q }

// Without stop eager loading names
func (b *Builder) Without(names ...string) *Builder {
	for _, name := range names {
		delete(b.eagerLoads, name)
	}
	return b
}

// EagerLoads copy of the eager loads, keyed by relation path
func (b *Builder) EagerLoads() map[string]func(QueryBuilder) QueryBuilder {
	loads := make(map[string]func(QueryBuilder) QueryBuilder, len(b.eagerLoads))
	for name, constraint := range b.eagerLoads {
		loads[name] = constraint
	}
	return loads
}

// Where add a where condition
func (b *Builder) Where(column, operator string, value interface{}) *Builder {
	b.wheres = append(b.wheres, func(q QueryBuilder) QueryBuilder {
		return q.Where(column, operator, value)
	})
	return b
}

// WhereIn add a where in condition
func (b *Builder) WhereIn(column string, values []interface{}) *Builder {
	b.wheres = append(b.wheres, func(q QueryBuilder) QueryBuilder {
		return q.WhereIn(column, values)
	})
	return b
}

// Scope apply the query scope name declared on the model
func (b *Builder) Scope(name string, args ...interface{}) *Builder {
	scope, ok := b.model.def.scopes[name]
	if !ok {
		if b.err == nil {
			b.err = fmt.Errorf("%w: %s.%s", ErrUnknownScope, b.model.def.Name, name)
		}
		return b
	}
	if scoped := scope(b, args...); scoped != nil {
		return scoped
	}
	return b
}

// Scopes apply the argument-less scopes names in order
func (b *Builder) Scopes(names ...string) *Builder {
	for _, name := range names {
		b = b.Scope(name)
	}
	return b
}

// Get fetch and hydrate the matching models, then eager load the requested relations
func (b *Builder) Get(ctx context.Context) (Collection, error) {
	if b.err != nil {
		return nil, b.err
	}

	query, conn, err := b.model.newBaseQuery()
	if err != nil {
		return nil, err
	}
	for _, where := range b.wheres {
		query = where(query)
	}

	begin := time.Now()
	rows, err := query.Get(ctx)
	b.model.trace(ctx, "select", begin, int64(len(rows)), err)
	if err != nil {
		return nil, err
	}

	models := make(Collection, 0, len(rows))
	for _, row := range processRows(conn, rows) {
		models = append(models, b.model.newFromBuilder(row).WithContext(ctx))
	}

	if len(models) > 0 {
		if err := b.eagerLoadRelations(ctx, models); err != nil {
			return nil, err
		}
	}
	return models, nil
}

// First the first matching model, ErrRecordNotFound when nothing matches
func (b *Builder) First(ctx context.Context) (*Model, error) {
	models, err := b.Get(ctx)
	if err != nil {
		return nil, err
	}
	if len(models) == 0 {
		return nil, ErrRecordNotFound
	}
	return models[0], nil
}

// Find the model keyed by id
func (b *Builder) Find(ctx context.Context, id interface{}) (*Model, error) {
	return b.Where(b.model.KeyName(), "=", id).First(ctx)
}

// eagerLoadRelations load every top level eager load onto models, nested loads follow
func (b *Builder) eagerLoadRelations(ctx context.Context, models Collection) error {
	names := make([]string, 0, len(b.eagerLoads))
	for name := range b.eagerLoads {
		if !strings.Contains(name, ".") {
			names = append(names, name)
		}
	}
	sort.Strings(names)

	for _, name := range names {
		if err := b.eagerLoadRelation(ctx, models, name, b.eagerLoads[name]); err != nil {
			return err
		}
	}
	return nil
}

func (b *Builder) eagerLoadRelation(ctx context.Context, models Collection, name string, constraint func(QueryBuilder) QueryBuilder) error {
	rel, err := models[0].Relation(name)
	if err != nil {
		return err
	}
	rel.Constrain(constraint)

	results, err := rel.eagerResults(ctx, models)
	if err != nil {
		return err
	}
	for idx, m := range models {
		m.SetRelation(name, results[idx])
	}

	nested := b.nestedRelations(name)
	if len(nested) == 0 {
		return nil
	}

	// related models may come from different definitions through morph-to
	var defs []*Definition
	byDef := map[*Definition]Collection{}
	for _, result := range results {
		var children Collection
		switch value := result.(type) {
		case *Model:
			if value != nil {
				children = Collection{value}
			}
		case Collection:
			children = value
		}
		for _, child := range children {
			if _, ok := byDef[child.def]; !ok {
				defs = append(defs, child.def)
			}
			byDef[child.def] = append(byDef[child.def], child)
		}
	}

	for _, def := range defs {
		child := &Builder{model: byDef[def][0], eagerLoads: nested}
		if err := child.eagerLoadRelations(ctx, byDef[def]); err != nil {
			return err
		}
	}
	return nil
}

// nestedRelations eager loads below name, relative to it
func (b *Builder) nestedRelations(name string) map[string]func(QueryBuilder) QueryBuilder {
	nested := map[string]func(QueryBuilder) QueryBuilder{}
	prefix := name + "."
	for path, constraint := range b.eagerLoads {
		if strings.HasPrefix(path, prefix) {
			nested[strings.TrimPrefix(path, prefix)] = constraint
		}
	}
	return nested
}
