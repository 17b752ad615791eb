package activerecord

import (
	"context"
	"fmt"

	"github.com/go-gorm/activerecord/schema"
	"github.com/go-gorm/activerecord/utils"
)

// MorphClass value stored in morph type columns for this model, its morph map alias if any
func (m *Model) MorphClass() string {
	return m.registry().MorphMap().AliasOf(m.def.Name)
}

// newRelatedInstance blank instance of def, on the parent connection unless def sets one
func (m *Model) newRelatedInstance(def *Definition) *Model {
	instance := def.blank()
	if instance.connection == "" {
		instance.connection = m.connection
	}
	return instance
}

// newFromBuilder hydrate a fetched row on the table and connection of m
func (m *Model) newFromBuilder(row map[string]interface{}) *Model {
	instance := m.def.blank()
	instance.table = m.table
	instance.connection = m.connection
	instance.exists = true
	instance.SetRawAttributes(row, true)
	instance.fireModelEvent("retrieved", false)
	return instance
}

func (m *Model) relationName(name string) string {
	if name != "" {
		return name
	}
	return m.relating
}

func valueOr(value, fallback string) string {
	if value != "" {
		return value
	}
	return fallback
}

// HasOne declare a one to one relation, the foreign key lives on the related table.
// Empty keys default to <parent>_<pk> and the parent primary key.
func (m *Model) HasOne(related *Definition, foreignKey, localKey string) *Relation {
	instance := m.newRelatedInstance(related)
	return &Relation{
		Kind:       HasOne,
		Name:       m.relating,
		Parent:     m,
		Related:    instance,
		ForeignKey: valueOr(foreignKey, m.ForeignKey()),
		LocalKey:   valueOr(localKey, m.KeyName()),
	}
}

// HasMany declare a one to many relation
func (m *Model) HasMany(related *Definition, foreignKey, localKey string) *Relation {
	rel := m.HasOne(related, foreignKey, localKey)
	rel.Kind = HasMany
	return rel
}

// BelongsTo declare the inverse of a has-one or has-many relation, the foreign key lives
// on the parent table and defaults to <relation>_<related pk>
func (m *Model) BelongsTo(related *Definition, foreignKey, ownerKey, name string) *Relation {
	instance := m.newRelatedInstance(related)
	name = m.relationName(name)
	return &Relation{
		Kind:       BelongsTo,
		Name:       name,
		Parent:     m,
		Related:    instance,
		ForeignKey: valueOr(foreignKey, schema.ToSnake(name)+"_"+instance.KeyName()),
		OwnerKey:   valueOr(ownerKey, instance.KeyName()),
	}
}

// BelongsToMany declare a many to many relation through a pivot table. The table defaults
// to both snake names joined in alphabetical order.
func (m *Model) BelongsToMany(related *Definition, table, foreignPivotKey, relatedPivotKey, parentKey, relatedKey, name string) *Relation {
	instance := m.newRelatedInstance(related)
	return &Relation{
		Kind:            BelongsToMany,
		Name:            m.relationName(name),
		Parent:          m,
		Related:         instance,
		Table:           valueOr(table, m.registry().NamingStrategy.JoinTableName(m.def.Name, related.Name)),
		ForeignPivotKey: valueOr(foreignPivotKey, m.ForeignKey()),
		RelatedPivotKey: valueOr(relatedPivotKey, instance.ForeignKey()),
		ParentKey:       valueOr(parentKey, m.KeyName()),
		RelatedKey:      valueOr(relatedKey, instance.KeyName()),
	}
}

// MorphOne declare a polymorphic one to one relation, name defaults the <name>_type and
// <name>_id columns of the related table
func (m *Model) MorphOne(related *Definition, name, typeColumn, idColumn, localKey string) *Relation {
	instance := m.newRelatedInstance(related)
	defaultType, defaultID := m.registry().NamingStrategy.MorphColumns(name)
	return &Relation{
		Kind:       MorphOne,
		Name:       m.relating,
		Parent:     m,
		Related:    instance,
		ForeignKey: valueOr(idColumn, defaultID),
		MorphType:  valueOr(typeColumn, defaultType),
		LocalKey:   valueOr(localKey, m.KeyName()),
	}
}

// MorphMany declare a polymorphic one to many relation
func (m *Model) MorphMany(related *Definition, name, typeColumn, idColumn, localKey string) *Relation {
	rel := m.MorphOne(related, name, typeColumn, idColumn, localKey)
	rel.Kind = MorphMany
	return rel
}

// MorphTo declare the inverse of a polymorphic relation, the related definition is read
// from the type column through the morph map
func (m *Model) MorphTo(name, typeColumn, idColumn, ownerKey string) *Relation {
	name = m.relationName(name)
	defaultType, defaultID := m.registry().NamingStrategy.MorphColumns(name)

	rel := &Relation{
		Kind:       MorphTo,
		Name:       name,
		Parent:     m,
		ForeignKey: valueOr(idColumn, defaultID),
		MorphType:  valueOr(typeColumn, defaultType),
		OwnerKey:   ownerKey,
	}

	if morphType, ok := m.attributes[rel.MorphType].(string); ok && morphType != "" {
		def, err := m.registry().Definition(m.registry().MorphMap().Resolve(morphType))
		if err != nil {
			rel.err = err
		} else {
			rel.Related = m.newRelatedInstance(def)
		}
	} else {
		rel.Related = m
	}
	return rel
}

// Relation resolve the declared relation name
func (m *Model) Relation(name string) (*Relation, error) {
	fn, ok := m.def.relations[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s on %s", ErrUnknownRelation, name, m.def.Name)
	}

	previous := m.relating
	m.relating = name
	defer func() { m.relating = previous }()

	rel := fn(m)
	if rel == nil {
		return nil, &RelationTypeError{Relation: name, Model: m.def.Name}
	}
	if rel.Name == "" {
		rel.Name = name
	}
	return rel, nil
}

// getRelationshipFromMethod lazily load a declared relation and cache it
func (m *Model) getRelationshipFromMethod(name string) (interface{}, error) {
	rel, err := m.Relation(name)
	if err != nil {
		return nil, err
	}

	results, err := rel.GetResults(m.Context())
	if err != nil {
		return nil, err
	}
	m.SetRelation(name, results)
	return results, nil
}

// Load eager load relations onto the model, already loaded relations are loaded again
func (m *Model) Load(ctx context.Context, relations ...string) error {
	return m.def.Query().With(toInterfaces(relations)...).eagerLoadRelations(ctx, Collection{m})
}

// LoadMissing like Load, skipping relations already loaded
func (m *Model) LoadMissing(ctx context.Context, relations ...string) error {
	var missing []string
	for _, name := range relations {
		if !m.RelationLoaded(name) {
			missing = append(missing, name)
		}
	}
	if len(missing) == 0 {
		return nil
	}
	return m.Load(ctx, missing...)
}

// GetRelation cached value of relation name
func (m *Model) GetRelation(name string) interface{} {
	return m.relations[name]
}

// RelationLoaded reports whether relation name is cached
func (m *Model) RelationLoaded(name string) bool {
	_, ok := m.relations[name]
	return ok
}

// SetRelation cache value as relation name, value may be a *Model, a Collection, nil or any plain value
func (m *Model) SetRelation(name string, value interface{}) *Model {
	if _, ok := m.relations[name]; !ok {
		m.relationOrder = append(m.relationOrder, name)
	}
	m.relations[name] = value
	return m
}

// UnsetRelation remove relation name from the cache
func (m *Model) UnsetRelation(name string) *Model {
	if _, ok := m.relations[name]; ok {
		delete(m.relations, name)
		m.relationOrder = utils.Without(m.relationOrder, name)
	}
	return m
}

// Relations copy of the cached relations
func (m *Model) Relations() map[string]interface{} {
	relations := make(map[string]interface{}, len(m.relations))
	for name, value := range m.relations {
		relations[name] = value
	}
	return relations
}

// SetRelations replace the relation cache
func (m *Model) SetRelations(relations map[string]interface{}) *Model {
	m.relations = map[string]interface{}{}
	m.relationOrder = nil
	for _, name := range sortedKeys(relations) {
		m.SetRelation(name, relations[name])
	}
	return m
}

// WithoutRelations copy of the model with an empty relation cache
func (m *Model) WithoutRelations() *Model {
	clone := *m
	clone.relations = map[string]interface{}{}
	clone.relationOrder = nil
	return &clone
}

// Touches reports whether saving touches the owners of relation name
func (m *Model) Touches(name string) bool {
	return utils.Contains(m.touches, name)
}

// TouchedRelations relations whose owners are touched on save
func (m *Model) TouchedRelations() []string {
	return append([]string{}, m.touches...)
}

// SetTouchedRelations replace the touched relations of this instance
func (m *Model) SetTouchedRelations(names ...string) *Model {
	m.touches = append([]string{}, names...)
	return m
}

// TouchOwners touch the owners of every touched relation, then theirs. Each instance is
// visited once per walk.
func (m *Model) TouchOwners(ctx context.Context) error {
	return m.touchOwners(ctx, map[*Model]bool{})
}

func (m *Model) touchOwners(ctx context.Context, visited map[*Model]bool) error {
	if visited[m] {
		return nil
	}
	visited[m] = true

	for _, name := range m.touches {
		rel, err := m.Relation(name)
		if err != nil {
			return err
		}
		if err := rel.Touch(ctx); err != nil {
			return err
		}

		switch owner := m.relations[name].(type) {
		case *Model:
			if owner == nil {
				continue
			}
			owner.fireModelEvent("saved", false)
			if err := owner.touchOwners(ctx, visited); err != nil {
				return err
			}
		case Collection:
			for _, o := range owner {
				if err := o.touchOwners(ctx, visited); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

func toInterfaces(values []string) []interface{} {
	results := make([]interface{}, len(values))
	for idx, v := range values {
		results[idx] = v
	}
	return results
}
