package activerecord

import (
	"context"
	"fmt"
	"time"

	"github.com/go-gorm/activerecord/utils"
)

// RelationKind kind of a relation
type RelationKind string

const (
	HasOne        RelationKind = "has_one"
	HasMany       RelationKind = "has_many"
	BelongsTo     RelationKind = "belongs_to"
	BelongsToMany RelationKind = "belongs_to_many"
	MorphOne      RelationKind = "morph_one"
	MorphMany     RelationKind = "morph_many"
	MorphTo       RelationKind = "morph_to"
)

// Relation relation descriptor, built by Model.HasOne and friends
type Relation struct {
	Kind    RelationKind
	Name    string
	Parent  *Model
	Related *Model

	// ForeignKey column on the related table for has-* and morph-one/many relations,
	// on the parent table for belongs-to and morph-to relations
	ForeignKey string
	// LocalKey parent column referenced by has-* and morph-one/many relations
	LocalKey string
	// OwnerKey related column referenced by belongs-to and morph-to relations
	OwnerKey string

	// Table pivot table of belongs-to-many relations
	Table           string
	ForeignPivotKey string
	RelatedPivotKey string
	ParentKey       string
	RelatedKey      string

	// MorphType column holding the morph class
	MorphType string

	constraints []func(QueryBuilder) QueryBuilder
	err         error
}

// Where constrain the related query
func (r *Relation) Where(column, operator string, value interface{}) *Relation {
	return r.Constrain(func(q QueryBuilder) QueryBuilder {
		return q.Where(column, operator, value)
	})
}

// Constrain add a constraint applied to the related query
func (r *Relation) Constrain(fn func(QueryBuilder) QueryBuilder) *Relation {
	if fn != nil {
		r.constraints = append(r.constraints, fn)
	}
	return r
}

// IsMany reports whether the relation resolves to a Collection
func (r *Relation) IsMany() bool {
	return r.Kind == HasMany || r.Kind == MorphMany || r.Kind == BelongsToMany
}

// ForeignKeyName unqualified foreign key
func (r *Relation) ForeignKeyName() string {
	return r.ForeignKey
}

// QualifiedForeignKeyName foreign key prefixed with the table holding it
func (r *Relation) QualifiedForeignKeyName() string {
	switch r.Kind {
	case BelongsTo, MorphTo:
		return r.Parent.QualifyColumn(r.ForeignKey)
	}
	return r.Related.QualifyColumn(r.ForeignKey)
}

// QualifiedParentKeyName the parent column the relation is keyed on
func (r *Relation) QualifiedParentKeyName() string {
	if r.Kind == BelongsToMany {
		return r.Parent.QualifyColumn(r.ParentKey)
	}
	return r.Parent.QualifyColumn(r.LocalKey)
}

// OwnerKeyName related key referenced by belongs-to and morph-to relations
func (r *Relation) OwnerKeyName() string {
	if r.OwnerKey == "" && r.Related != nil {
		return r.Related.KeyName()
	}
	return r.OwnerKey
}

// QualifiedOwnerKeyName owner key prefixed with the related table
func (r *Relation) QualifiedOwnerKeyName() string {
	return r.Related.QualifyColumn(r.OwnerKeyName())
}

// QualifiedForeignPivotKeyName foreign pivot key prefixed with the pivot table
func (r *Relation) QualifiedForeignPivotKeyName() string {
	return r.Table + "." + r.ForeignPivotKey
}

// QualifiedRelatedPivotKeyName related pivot key prefixed with the pivot table
func (r *Relation) QualifiedRelatedPivotKeyName() string {
	return r.Table + "." + r.RelatedPivotKey
}

// QualifiedMorphType morph type column prefixed with its table
func (r *Relation) QualifiedMorphType() string {
	if r.Kind == MorphTo {
		return r.Parent.QualifyColumn(r.MorphType)
	}
	return r.Related.QualifyColumn(r.MorphType)
}

// MorphClass value stored in the morph type column for the parent, resolved against the
// morph map at call time
func (r *Relation) MorphClass() string {
	if r.Kind == MorphTo {
		if r.Related == nil {
			return ""
		}
		return r.Related.MorphClass()
	}
	return r.Parent.MorphClass()
}

// GetResults query the related model(s) of the parent, the relation cache is not touched
func (r *Relation) GetResults(ctx context.Context) (interface{}, error) {
	results, err := r.eagerResults(ctx, []*Model{r.Parent})
	if err != nil {
		return nil, err
	}
	return results[0], nil
}

// Touch refresh the update timestamp of the related rows
func (r *Relation) Touch(ctx context.Context) error {
	if r.err != nil {
		return r.err
	}

	related := r.Related
	if related == nil || !related.timestamps || related.registry().IsIgnoringTouch(related.def) {
		return nil
	}

	query, _, err := related.newBaseQuery()
	if err != nil {
		return err
	}

	switch r.Kind {
	case HasOne, HasMany, MorphOne, MorphMany:
		query = query.Where(r.ForeignKey, "=", r.Parent.attributes[r.LocalKey])
		if r.Kind == MorphOne || r.Kind == MorphMany {
			query = query.Where(r.MorphType, "=", r.MorphClass())
		}
	case BelongsTo, MorphTo:
		key := r.Parent.attributes[r.ForeignKey]
		if key == nil {
			return nil
		}
		query = query.Where(r.OwnerKeyName(), "=", key)
	case BelongsToMany:
		ids, err := r.relatedIDs(ctx, []*Model{r.Parent})
		if err != nil {
			return err
		}
		if len(ids) == 0 {
			return nil
		}
		query = query.WhereIn(r.RelatedKey, ids)
	}

	timestamp, err := related.FreshTimestampString()
	if err != nil {
		return err
	}

	begin := time.Now()
	rows, err := query.Update(ctx, map[string]interface{}{related.UpdatedAtColumn(): timestamp})
	related.trace(ctx, "touch", begin, rows, err)
	return err
}

// relatedIDs related keys found in the pivot table for parents
func (r *Relation) relatedIDs(ctx context.Context, parents []*Model) ([]interface{}, error) {
	pivots, err := r.pivotRows(ctx, parents)
	if err != nil {
		return nil, err
	}
	return distinctValues(pivots, r.RelatedPivotKey), nil
}

func (r *Relation) pivotRows(ctx context.Context, parents []*Model) ([]map[string]interface{}, error) {
	keys := modelValues(parents, r.ParentKey)
	if len(keys) == 0 {
		return nil, nil
	}

	conn, err := r.Related.Connection()
	if err != nil {
		return nil, err
	}

	begin := time.Now()
	rows, err := conn.Table(r.Table).WhereIn(r.ForeignPivotKey, keys).Get(ctx)
	r.Related.registry().Logger.Trace(ctx, begin, func() (string, int64) {
		return "select " + r.Table, int64(len(rows))
	}, err)
	if err != nil {
		return nil, err
	}
	return processRows(conn, rows), nil
}

// eagerResults the relation value of every parent, in parent order
func (r *Relation) eagerResults(ctx context.Context, parents []*Model) ([]interface{}, error) {
	if r.err != nil {
		return nil, r.err
	}

	switch r.Kind {
	case HasOne, HasMany, MorphOne, MorphMany:
		return r.eagerHas(ctx, parents)
	case BelongsTo:
		return r.eagerBelongsTo(ctx, parents)
	case BelongsToMany:
		return r.eagerBelongsToMany(ctx, parents)
	case MorphTo:
		return r.eagerMorphTo(ctx, parents)
	}
	return nil, fmt.Errorf("%w: %s has kind %q", ErrUnknownRelation, r.Name, r.Kind)
}

// fetch run the constrained related query
func (r *Relation) fetch(ctx context.Context, related *Model, column string, keys []interface{}, extra func(QueryBuilder) QueryBuilder) (Collection, error) {
	if len(keys) == 0 {
		return Collection{}, nil
	}

	query, conn, err := related.newBaseQuery()
	if err != nil {
		return nil, err
	}

	query = query.WhereIn(column, keys)
	if extra != nil {
		query = extra(query)
	}
	for _, constraint := range r.constraints {
		query = constraint(query)
	}

	begin := time.Now()
	rows, err := query.Get(ctx)
	related.trace(ctx, "select", begin, int64(len(rows)), err)
	if err != nil {
		return nil, err
	}

	results := make(Collection, 0, len(rows))
	for _, row := range processRows(conn, rows) {
		results = append(results, related.newFromBuilder(row))
	}
	return results, nil
}

func (r *Relation) eagerHas(ctx context.Context, parents []*Model) ([]interface{}, error) {
	var extra func(QueryBuilder) QueryBuilder
	if r.Kind == MorphOne || r.Kind == MorphMany {
		morphClass := r.MorphClass()
		extra = func(q QueryBuilder) QueryBuilder { return q.Where(r.MorphType, "=", morphClass) }
	}

	children, err := r.fetch(ctx, r.Related, r.ForeignKey, modelValues(parents, r.LocalKey), extra)
	if err != nil {
		return nil, err
	}

	dictionary := buildDictionary(children, r.ForeignKey)
	results := make([]interface{}, len(parents))
	for idx, parent := range parents {
		matched := dictionary[dictionaryKey(parent.attributes[r.LocalKey])]
		results[idx] = r.matchOneOrMany(matched)
	}
	return results, nil
}

func (r *Relation) eagerBelongsTo(ctx context.Context, parents []*Model) ([]interface{}, error) {
	owners, err := r.fetch(ctx, r.Related, r.OwnerKeyName(), modelValues(parents, r.ForeignKey), nil)
	if err != nil {
		return nil, err
	}

	dictionary := buildDictionary(owners, r.OwnerKeyName())
	results := make([]interface{}, len(parents))
	for idx, parent := range parents {
		results[idx] = r.matchOneOrMany(dictionary[dictionaryKey(parent.attributes[r.ForeignKey])])
	}
	return results, nil
}

func (r *Relation) eagerBelongsToMany(ctx context.Context, parents []*Model) ([]interface{}, error) {
	pivots, err := r.pivotRows(ctx, parents)
	if err != nil {
		return nil, err
	}

	related, err := r.fetch(ctx, r.Related, r.RelatedKey, distinctValues(pivots, r.RelatedPivotKey), nil)
	if err != nil {
		return nil, err
	}
	dictionary := buildDictionary(related, r.RelatedKey)

	results := make([]interface{}, len(parents))
	for idx, parent := range parents {
		matched := Collection{}
		parentKey := dictionaryKey(parent.attributes[r.ParentKey])
		for _, pivot := range pivots {
			if dictionaryKey(pivot[r.ForeignPivotKey]) == parentKey {
				matched = append(matched, dictionary[dictionaryKey(pivot[r.RelatedPivotKey])]...)
			}
		}
		results[idx] = matched
	}
	return results, nil
}

func (r *Relation) eagerMorphTo(ctx context.Context, parents []*Model) ([]interface{}, error) {
	var types []string
	byType := map[string][]*Model{}
	for _, parent := range parents {
		morphType, ok := parent.attributes[r.MorphType].(string)
		if !ok || morphType == "" {
			continue
		}
		if _, seen := byType[morphType]; !seen {
			types = append(types, morphType)
		}
		byType[morphType] = append(byType[morphType], parent)
	}

	registry := r.Parent.registry()
	found := map[*Model]*Model{}
	for _, morphType := range types {
		def, err := registry.Definition(registry.MorphMap().Resolve(morphType))
		if err != nil {
			return nil, err
		}

		related := r.Parent.newRelatedInstance(def)
		ownerKey := r.OwnerKey
		if ownerKey == "" {
			ownerKey = related.KeyName()
		}

		owners, err := r.fetch(ctx, related, ownerKey, modelValues(byType[morphType], r.ForeignKey), nil)
		if err != nil {
			return nil, err
		}

		dictionary := buildDictionary(owners, ownerKey)
		for _, parent := range byType[morphType] {
			if matched := dictionary[dictionaryKey(parent.attributes[r.ForeignKey])]; len(matched) > 0 {
				found[parent] = matched[0]
			}
		}
	}

	results := make([]interface{}, len(parents))
	for idx, parent := range parents {
		if owner, ok := found[parent]; ok {
			results[idx] = owner
		} else {
			results[idx] = nil
		}
	}
	return results, nil
}

func (r *Relation) matchOneOrMany(matched Collection) interface{} {
	if r.IsMany() {
		if matched == nil {
			return Collection{}
		}
		return matched
	}
	if len(matched) == 0 {
		return nil
	}
	return matched[0]
}

func dictionaryKey(value interface{}) string {
	return utils.ToStringKey(value)
}

func buildDictionary(models Collection, column string) map[string]Collection {
	dictionary := map[string]Collection{}
	for _, m := range models {
		key := dictionaryKey(m.attributes[column])
		dictionary[key] = append(dictionary[key], m)
	}
	return dictionary
}

// modelValues distinct non nil values of column over models
func modelValues(models []*Model, column string) []interface{} {
	rows := make([]map[string]interface{}, 0, len(models))
	for _, m := range models {
		rows = append(rows, m.attributes)
	}
	return distinctValues(rows, column)
}

func distinctValues(rows []map[string]interface{}, column string) []interface{} {
	var (
		values []interface{}
		seen   = map[string]bool{}
	)
	for _, row := range rows {
		value := row[column]
		if value == nil {
			continue
		}
		if key := dictionaryKey(value); !seen[key] {
			seen[key] = true
			values = append(values, value)
		}
	}
	return values
}
