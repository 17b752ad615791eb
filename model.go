package activerecord

import (
	"context"
	"reflect"
	"strings"

	"github.com/go-gorm/activerecord/utils"
)

// Model one row of a data source, attributes are accessed by name
type Model struct {
	def *Definition
	ctx context.Context

	attributes map[string]interface{}
	attrOrder  []string
	original   map[string]interface{}
	changes    map[string]interface{}

	relations     map[string]interface{}
	relationOrder []string

	hidden      []string
	visible     []string
	appends     []string
	fillable    []string
	guarded     []string
	touches     []string
	observables []string

	table        string
	connection   string
	primaryKey   string
	keyType      string
	incrementing bool
	timestamps   bool
	dateFormat   string

	exists             bool
	wasRecentlyCreated bool

	forceFilling bool
	// name of the relation being resolved, used for default keys
	relating string
}

// Collection list of models, the result of a has-many style relation
type Collection []*Model

// Keys primary key values of the collection
func (c Collection) Keys() []interface{} {
	keys := make([]interface{}, 0, len(c))
	for _, m := range c {
		keys = append(keys, m.Key())
	}
	return keys
}

// blank builds an empty instance of d, booting d first
func (d *Definition) blank() *Model {
	d.registry.bootIfNotBooted(d)

	m := &Model{
		def:          d,
		attributes:   map[string]interface{}{},
		original:     map[string]interface{}{},
		changes:      map[string]interface{}{},
		relations:    map[string]interface{}{},
		hidden:       append([]string{}, d.hidden...),
		visible:      append([]string{}, d.visible...),
		appends:      append([]string{}, d.appends...),
		fillable:     append([]string{}, d.fillable...),
		guarded:      append([]string{}, d.guarded...),
		touches:      append([]string{}, d.touches...),
		observables:  append([]string{}, d.observables...),
		table:        d.table,
		connection:   d.connection,
		primaryKey:   d.primaryKey,
		keyType:      d.keyType,
		incrementing: d.incrementing,
		timestamps:   d.timestamps,
		dateFormat:   d.dateFormat,
	}

	for _, initialize := range d.initializers {
		initialize(m)
	}
	return m
}

// New build an instance of d mass filled with attrs
func (d *Definition) New(attrs map[string]interface{}) (*Model, error) {
	m := d.blank()
	if err := m.Fill(attrs); err != nil {
		return m, err
	}
	return m, nil
}

// NewFromRow hydrate an existing instance of d from a fetched row, guarding is bypassed
func (d *Definition) NewFromRow(row map[string]interface{}) *Model {
	m := d.blank()
	m.exists = true
	m.SetRawAttributes(row, true)
	m.fireModelEvent("retrieved", false)
	return m
}

// New build an instance of def mass filled with attrs
func New(def *Definition, attrs map[string]interface{}) (*Model, error) {
	return def.New(attrs)
}

// Make alias of New
func Make(def *Definition, attrs map[string]interface{}) (*Model, error) {
	return def.New(attrs)
}

// NewFromRow hydrate an existing instance of def from row
func NewFromRow(def *Definition, row map[string]interface{}) *Model {
	return def.NewFromRow(row)
}

// Create build an instance of def filled with attrs and save it
func Create(ctx context.Context, def *Definition, attrs map[string]interface{}) (*Model, error) {
	m, err := def.New(attrs)
	if err != nil {
		return m, err
	}
	_, err = m.Save(ctx)
	return m, err
}

// ForceCreate like Create, bypassing mass assignment protection
func ForceCreate(ctx context.Context, def *Definition, attrs map[string]interface{}) (*Model, error) {
	m := def.blank()
	if err := m.ForceFill(attrs); err != nil {
		return m, err
	}
	_, err := m.Save(ctx)
	return m, err
}

// NewInstance build a new instance of the same definition, table and connection
func (m *Model) NewInstance(attrs map[string]interface{}, exists bool) (*Model, error) {
	instance := m.def.blank()
	instance.exists = exists
	instance.table = m.table
	instance.connection = m.connection

	if err := instance.Fill(attrs); err != nil {
		return instance, err
	}
	return instance, nil
}

// Replicate clone the model into a new, non existing instance. The primary key, the
// timestamp columns and except are left out, cached relations are kept.
func (m *Model) Replicate(except ...string) *Model {
	excluded := append([]string{m.primaryKey}, except...)
	if m.timestamps {
		excluded = append(excluded, m.def.createdAt, m.def.updatedAt)
	}

	instance := m.def.blank()
	instance.table = m.table
	instance.connection = m.connection
	for _, key := range m.attrOrder {
		if !utils.Contains(excluded, key) {
			instance.setRaw(key, m.attributes[key])
		}
	}
	for _, name := range m.relationOrder {
		instance.SetRelation(name, m.relations[name])
	}

	instance.fireModelEvent("replicating", false)
	return instance
}

// Definition the definition m was built from
func (m *Model) Definition() *Definition {
	return m.def
}

func (m *Model) registry() *Registry {
	return m.def.registry
}

// WithContext set the context used by lazy loads and returns m
func (m *Model) WithContext(ctx context.Context) *Model {
	m.ctx = ctx
	return m
}

// Context the model context, context.Background when none was set
func (m *Model) Context() context.Context {
	if m.ctx == nil {
		return context.Background()
	}
	return m.ctx
}

// Is reports whether other has the same key, table and connection
func (m *Model) Is(other *Model) bool {
	return other != nil &&
		m.Key() != nil &&
		reflect.DeepEqual(m.Key(), other.Key()) &&
		m.Table() == other.Table() &&
		m.ConnectionName() == other.ConnectionName()
}

// IsNot negation of Is
func (m *Model) IsNot(other *Model) bool {
	return !m.Is(other)
}

// Table table name
func (m *Model) Table() string {
	if m.table != "" {
		return m.table
	}
	return m.def.Table()
}

// SetTable override the table of this instance
func (m *Model) SetTable(table string) *Model {
	m.table = table
	return m
}

// ConnectionName connection name, empty for the default connection
func (m *Model) ConnectionName() string {
	return m.connection
}

// SetConnection override the connection of this instance
func (m *Model) SetConnection(name string) *Model {
	m.connection = name
	return m
}

// Connection resolve the connection of the model
func (m *Model) Connection() (Connection, error) {
	resolver := m.registry().ConnectionResolver
	if resolver == nil {
		return nil, ErrNoConnectionResolver
	}
	return resolver.Connection(m.connection)
}

// newBaseQuery query collaborator scoped to the model table
func (m *Model) newBaseQuery() (QueryBuilder, Connection, error) {
	conn, err := m.Connection()
	if err != nil {
		return nil, nil, err
	}
	return conn.Table(m.Table()), conn, nil
}

func processRows(conn Connection, rows []map[string]interface{}) []map[string]interface{} {
	if processor := conn.Processor(); processor != nil {
		return processor.ProcessSelect(rows)
	}
	return rows
}

// QualifyColumn prefix column with the table name
func (m *Model) QualifyColumn(column string) string {
	if strings.Contains(column, ".") {
		return column
	}
	return m.Table() + "." + column
}

// Key primary key value
func (m *Model) Key() interface{} {
	return m.attributes[m.primaryKey]
}

// KeyName primary key column
func (m *Model) KeyName() string {
	return m.primaryKey
}

// SetKeyName override the primary key column
func (m *Model) SetKeyName(name string) *Model {
	m.primaryKey = name
	return m
}

// QualifiedKeyName primary key column prefixed with the table
func (m *Model) QualifiedKeyName() string {
	return m.QualifyColumn(m.primaryKey)
}

// KeyType KeyTypeInt or KeyTypeString
func (m *Model) KeyType() string {
	return m.keyType
}

// SetKeyType override the key type
func (m *Model) SetKeyType(keyType string) *Model {
	m.keyType = keyType
	return m
}

// Incrementing reports whether the key is generated by the data source
func (m *Model) Incrementing() bool {
	return m.incrementing
}

// SetIncrementing override key generation
func (m *Model) SetIncrementing(incrementing bool) *Model {
	m.incrementing = incrementing
	return m
}

// RouteKey value used to address the model, its key
func (m *Model) RouteKey() interface{} {
	v, _ := m.Get(m.RouteKeyName())
	return v
}

// RouteKeyName name of the route key
func (m *Model) RouteKeyName() string {
	return m.primaryKey
}

// ForeignKey default foreign key referencing this model, e.g. user_id
func (m *Model) ForeignKey() string {
	return m.registry().NamingStrategy.ForeignKey(m.def.Name, m.primaryKey)
}

// Exists reports whether the model is persisted
func (m *Model) Exists() bool {
	return m.exists
}

// SetExists mark the model persisted or detached
func (m *Model) SetExists(exists bool) *Model {
	m.exists = exists
	return m
}

// WasRecentlyCreated reports whether the model was inserted by this instance
func (m *Model) WasRecentlyCreated() bool {
	return m.wasRecentlyCreated
}

// UsesTimestamps reports whether created_at and updated_at are maintained
func (m *Model) UsesTimestamps() bool {
	return m.timestamps
}

// SetTimestamps enable or disable timestamp maintenance for this instance
func (m *Model) SetTimestamps(enabled bool) *Model {
	m.timestamps = enabled
	return m
}

// CreatedAtColumn creation timestamp column
func (m *Model) CreatedAtColumn() string {
	return m.def.createdAt
}

// UpdatedAtColumn update timestamp column
func (m *Model) UpdatedAtColumn() string {
	return m.def.updatedAt
}
