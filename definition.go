package activerecord

import (
	"fmt"

	"github.com/go-gorm/activerecord/schema"
	"github.com/google/uuid"
)

const (
	// KeyTypeInt numeric primary keys
	KeyTypeInt = "int"
	// KeyTypeString string primary keys
	KeyTypeString = "string"

	// CreatedAt default creation timestamp column
	CreatedAt = "created_at"
	// UpdatedAt default update timestamp column
	UpdatedAt = "updated_at"
)

// Accessor computes the value read for an attribute, value is the raw stored value
type Accessor func(m *Model, value interface{}) (interface{}, error)

// Mutator stores a written value, usually through Model.SetRawAttribute
type Mutator func(m *Model, value interface{}) error

// RelationFunc declares a relation of m, see Model.HasOne and friends
type RelationFunc func(m *Model) *Relation

// ScopeFunc constrains a model query, args are the ones given to Builder.Scope
type ScopeFunc func(b *Builder, args ...interface{}) *Builder

// EventFunc builds a typed event value for a model event
type EventFunc func(m *Model) interface{}

// Definition type level declarations shared by every instance of a model type
type Definition struct {
	Name string

	table           string
	connection      string
	primaryKey      string
	keyType         string
	incrementing    bool
	timestamps      bool
	createdAt       string
	updatedAt       string
	dateFormat      string
	snakeAttributes bool

	casts   map[string]schema.CastKind
	casters map[string]schema.Caster
	dates   []string

	fillable []string
	guarded  []string
	hidden   []string
	visible  []string
	appends  []string
	touches  []string

	accessors     map[string]Accessor
	accessorOrder []string
	mutators      map[string]Mutator
	relations     map[string]RelationFunc
	scopes        map[string]ScopeFunc

	initializers []func(*Model)
	boots        []func(*Definition)

	dispatchesEvents map[string]EventFunc
	observables      []string
	keyGenerator     func() interface{}

	registry *Registry
}

// Option configures a Definition
type Option func(d *Definition)

// Define declare a model type on DefaultRegistry
func Define(name string, opts ...Option) *Definition {
	return DefaultRegistry.Define(name, opts...)
}

// Define declare a model type, it panics when a cast name is unknown
func (r *Registry) Define(name string, opts ...Option) *Definition {
	def := &Definition{
		Name:             name,
		primaryKey:       "id",
		keyType:          KeyTypeInt,
		incrementing:     true,
		timestamps:       true,
		createdAt:        CreatedAt,
		updatedAt:        UpdatedAt,
		snakeAttributes:  true,
		casts:            map[string]schema.CastKind{},
		casters:          map[string]schema.Caster{},
		guarded:          []string{"*"},
		accessors:        map[string]Accessor{},
		mutators:         map[string]Mutator{},
		relations:        map[string]RelationFunc{},
		scopes:           map[string]ScopeFunc{},
		dispatchesEvents: map[string]EventFunc{},
		registry:         r,
	}

	for _, opt := range opts {
		opt(def)
	}

	r.register(def)
	return def
}

// Registry the registry the definition belongs to
func (d *Definition) Registry() *Registry {
	return d.registry
}

// Table table name, derived from the definition name unless set
func (d *Definition) Table() string {
	if d.table != "" {
		return d.table
	}
	return d.registry.NamingStrategy.TableName(d.Name)
}

// PrimaryKey primary key column
func (d *Definition) PrimaryKey() string {
	return d.primaryKey
}

// ForeignKey default foreign key referencing this definition, e.g. user_id
func (d *Definition) ForeignKey() string {
	return d.registry.NamingStrategy.ForeignKey(d.Name, d.primaryKey)
}

// UsesTimestamps reports whether created_at and updated_at are maintained
func (d *Definition) UsesTimestamps() bool {
	return d.timestamps
}

// Relations names of declared relations
func (d *Definition) Relations() []string {
	names := make([]string, 0, len(d.relations))
	for name := range d.relations {
		names = append(names, name)
	}
	return names
}

// HasRelation reports whether name is a declared relation
func (d *Definition) HasRelation(name string) bool {
	_, ok := d.relations[name]
	return ok
}

// HasScope reports whether the query scope name is declared
func (d *Definition) HasScope(name string) bool {
	_, ok := d.scopes[name]
	return ok
}

// WithScope declare a query scope, applied by Builder.Scope
func WithScope(name string, scope ScopeFunc) Option {
	return func(d *Definition) { d.scopes[name] = scope }
}

// WithTable set table name
func WithTable(table string) Option {
	return func(d *Definition) { d.table = table }
}

// WithConnection set connection name
func WithConnection(name string) Option {
	return func(d *Definition) { d.connection = name }
}

// WithPrimaryKey set primary key column
func WithPrimaryKey(name string) Option {
	return func(d *Definition) { d.primaryKey = name }
}

// WithKeyType set primary key type, KeyTypeInt or KeyTypeString
func WithKeyType(keyType string) Option {
	return func(d *Definition) { d.keyType = keyType }
}

// WithIncrementing set whether the primary key is generated by the data source
func WithIncrementing(incrementing bool) Option {
	return func(d *Definition) { d.incrementing = incrementing }
}

// WithoutTimestamps disable created_at and updated_at maintenance
func WithoutTimestamps() Option {
	return func(d *Definition) { d.timestamps = false }
}

// WithTimestampColumns rename the timestamp columns
func WithTimestampColumns(createdAt, updatedAt string) Option {
	return func(d *Definition) {
		d.createdAt, d.updatedAt = createdAt, updatedAt
	}
}

// WithModelDateFormat set storage format of date attributes
func WithModelDateFormat(format string) Option {
	return func(d *Definition) { d.dateFormat = format }
}

// WithoutSnakeAttributes keep relation and mutated attribute names as declared when serializing
func WithoutSnakeAttributes() Option {
	return func(d *Definition) { d.snakeAttributes = false }
}

// WithCasts declare attribute casts, e.g. {"settings": "json", "born_at": "date"}
func WithCasts(casts map[string]string) Option {
	return func(d *Definition) {
		for name, cast := range casts {
			kind, err := schema.ParseCastKind(cast)
			if err != nil {
				panic(fmt.Sprintf("activerecord: %s.%s: %v", d.Name, name, err))
			}
			if kind == schema.Custom {
				panic(fmt.Sprintf("activerecord: %s.%s: custom casts are declared with WithCaster", d.Name, name))
			}
			d.casts[name] = kind
		}
	}
}

// WithCaster declare a custom cast of name
func WithCaster(name string, caster schema.Caster) Option {
	return func(d *Definition) {
		if caster == nil {
			panic(fmt.Sprintf("activerecord: %s.%s: nil caster", d.Name, name))
		}
		d.casts[name] = schema.Custom
		d.casters[name] = caster
	}
}

// WithDates declare additional date attributes
func WithDates(names ...string) Option {
	return func(d *Definition) { d.dates = append(d.dates, names...) }
}

// WithFillable set the mass assignment whitelist
func WithFillable(names ...string) Option {
	return func(d *Definition) { d.fillable = append([]string{}, names...) }
}

// WithGuarded set the mass assignment blacklist, no names leaves everything fillable
func WithGuarded(names ...string) Option {
	return func(d *Definition) { d.guarded = append([]string{}, names...) }
}

// WithHidden set attributes hidden from serialization
func WithHidden(names ...string) Option {
	return func(d *Definition) { d.hidden = append([]string{}, names...) }
}

// WithVisible set the serialization whitelist
func WithVisible(names ...string) Option {
	return func(d *Definition) { d.visible = append([]string{}, names...) }
}

// WithAppends set virtual attributes added to serialization
func WithAppends(names ...string) Option {
	return func(d *Definition) { d.appends = append([]string{}, names...) }
}

// WithTouches set relations whose owners are touched on save
func WithTouches(names ...string) Option {
	return func(d *Definition) { d.touches = append([]string{}, names...) }
}

// WithAccessor declare an accessor, names are matched in any casing, e.g. first_name and firstName
func WithAccessor(name string, fn Accessor) Option {
	return func(d *Definition) {
		key := schema.ToStudly(name)
		if _, ok := d.accessors[key]; !ok {
			d.accessorOrder = append(d.accessorOrder, key)
		}
		d.accessors[key] = fn
	}
}

// WithMutator declare a mutator
func WithMutator(name string, fn Mutator) Option {
	return func(d *Definition) { d.mutators[schema.ToStudly(name)] = fn }
}

// WithRelation declare a relation
func WithRelation(name string, fn RelationFunc) Option {
	return func(d *Definition) { d.relations[name] = fn }
}

// WithInitializer add a callback run on every new instance, in declaration order
func WithInitializer(fn func(*Model)) Option {
	return func(d *Definition) { d.initializers = append(d.initializers, fn) }
}

// WithBoot add a callback run once before the first instance is built
func WithBoot(fn func(*Definition)) Option {
	return func(d *Definition) { d.boots = append(d.boots, fn) }
}

// WithEvent dispatch a typed event built by fn for event, e.g. "saving"
func WithEvent(event string, fn EventFunc) Option {
	return func(d *Definition) { d.dispatchesEvents[event] = fn }
}

// WithObservableEvents add custom observable events
func WithObservableEvents(names ...string) Option {
	return func(d *Definition) { d.observables = append(d.observables, names...) }
}

// WithKeyGenerator generate keys of non incrementing models on insert
func WithKeyGenerator(fn func() interface{}) Option {
	return func(d *Definition) { d.keyGenerator = fn }
}

// WithUUIDKeys string primary keys filled with random UUIDs on insert
func WithUUIDKeys() Option {
	return func(d *Definition) {
		d.keyType = KeyTypeString
		d.incrementing = false
		d.keyGenerator = func() interface{} { return uuid.NewString() }
	}
}
