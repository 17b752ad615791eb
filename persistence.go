package activerecord

import (
	"context"
	"math"
	"time"

	"github.com/go-gorm/activerecord/logger"
	"github.com/go-gorm/activerecord/schema"
)

// trace log a collaborator call on the registry logger, ctx carries the operation for
// structured loggers
func (m *Model) trace(ctx context.Context, operation string, begin time.Time, rows int64, err error) {
	ctx = logger.WithOperation(ctx, logger.Operation{
		Model: m.def.Name,
		Table: m.Table(),
		Name:  operation,
		Key:   m.Key(),
	})
	m.registry().Logger.Trace(ctx, begin, func() (string, int64) {
		return operation + " " + m.Table(), rows
	}, err)
}

// FreshTimestamp the current time
func (m *Model) FreshTimestamp() time.Time {
	return m.registry().NowFunc()
}

// FreshTimestampString the current time in the model date format
func (m *Model) FreshTimestampString() (string, error) {
	value, err := m.FromDateTime(m.FreshTimestamp())
	if err != nil {
		return "", err
	}
	s, _ := value.(string)
	return s, nil
}

// UpdateTimestamps set updated_at, and created_at on new models, unless already dirty
func (m *Model) UpdateTimestamps() error {
	now := m.FreshTimestamp()

	if column := m.UpdatedAtColumn(); column != "" && !m.IsDirty(column) {
		if err := m.Set(column, now); err != nil {
			return err
		}
	}

	if column := m.CreatedAtColumn(); column != "" && !m.exists && !m.IsDirty(column) {
		if err := m.Set(column, now); err != nil {
			return err
		}
	}
	return nil
}

// Save insert or update the model. It returns false without error when an event listener
// cancels the operation.
func (m *Model) Save(ctx context.Context) (bool, error) {
	if !m.fireModelEvent("saving", true) {
		return false, nil
	}

	var (
		saved bool
		err   error
	)

	if m.exists {
		if m.IsDirty() {
			saved, err = m.performUpdate(ctx)
		} else {
			saved = true
		}
	} else {
		saved, err = m.performInsert(ctx)
	}

	if err != nil || !saved {
		return false, err
	}
	return true, m.finishSave(ctx)
}

func (m *Model) finishSave(ctx context.Context) error {
	m.fireModelEvent("saved", false)

	if m.IsDirty() {
		if err := m.TouchOwners(ctx); err != nil {
			return err
		}
	}

	m.SyncOriginal()
	return nil
}

func (m *Model) performUpdate(ctx context.Context) (bool, error) {
	if !m.fireModelEvent("updating", true) {
		return false, nil
	}

	if m.timestamps {
		if err := m.UpdateTimestamps(); err != nil {
			return false, err
		}
	}

	dirty := m.GetDirty()
	if len(dirty) > 0 {
		query, _, err := m.newBaseQuery()
		if err != nil {
			return false, err
		}

		begin := time.Now()
		rows, err := query.Where(m.KeyName(), "=", m.keyForSaveQuery()).Update(ctx, dirty)
		m.trace(ctx, "update", begin, rows, err)
		if err != nil {
			return false, err
		}

		m.SyncChanges()
		m.fireModelEvent("updated", false)
	}
	return true, nil
}

// keyForSaveQuery the original key, so a changed key still addresses the stored row
func (m *Model) keyForSaveQuery() interface{} {
	if key, ok := m.original[m.KeyName()]; ok {
		return key
	}
	return m.Key()
}

func (m *Model) performInsert(ctx context.Context) (bool, error) {
	if !m.fireModelEvent("creating", true) {
		return false, nil
	}

	if m.timestamps {
		if err := m.UpdateTimestamps(); err != nil {
			return false, err
		}
	}

	if !m.incrementing && m.Key() == nil && m.def.keyGenerator != nil {
		m.setRaw(m.KeyName(), m.def.keyGenerator())
	}

	query, conn, err := m.newBaseQuery()
	if err != nil {
		return false, err
	}

	attrs := m.GetAttributes()
	begin := time.Now()
	if m.incrementing {
		var id interface{}
		id, err = query.InsertGetID(ctx, attrs, m.KeyName())
		if err == nil {
			if processor := conn.Processor(); processor != nil {
				id = processor.ProcessInsertGetID(id)
			}
			m.setRaw(m.KeyName(), m.convertKey(id))
		}
		m.trace(ctx, "insert", begin, 1, err)
		if err != nil {
			return false, err
		}
	} else {
		err = query.Insert(ctx, attrs)
		m.trace(ctx, "insert", begin, 1, err)
		if err != nil {
			return false, err
		}
	}

	m.exists = true
	m.wasRecentlyCreated = true
	m.fireModelEvent("created", false)
	return true, nil
}

func (m *Model) convertKey(id interface{}) interface{} {
	switch m.keyType {
	case KeyTypeInt:
		if i, err := schema.ToInt(id); err == nil {
			return i
		}
	case KeyTypeString:
		if id != nil {
			return schema.ToString(id)
		}
	}
	return id
}

// Push save the model and every cached related model, depth first
func (m *Model) Push(ctx context.Context) (bool, error) {
	return m.push(ctx, map[*Model]bool{})
}

func (m *Model) push(ctx context.Context, visited map[*Model]bool) (bool, error) {
	if visited[m] {
		return true, nil
	}
	visited[m] = true

	if ok, err := m.Save(ctx); !ok || err != nil {
		return false, err
	}

	for _, name := range m.relationOrder {
		var models Collection
		switch value := m.relations[name].(type) {
		case *Model:
			if value != nil {
				models = Collection{value}
			}
		case Collection:
			models = value
		}

		for _, related := range models {
			if ok, err := related.push(ctx, visited); !ok || err != nil {
				return false, err
			}
		}
	}
	return true, nil
}

// Delete delete the stored row. It returns false when the model doesn't exist or a
// listener cancels the deletion.
func (m *Model) Delete(ctx context.Context) (bool, error) {
	if m.KeyName() == "" {
		return false, ErrMissingPrimaryKey
	}

	if !m.exists {
		return false, nil
	}

	if m.keyForSaveQuery() == nil {
		return false, ErrMissingPrimaryKey
	}

	if !m.fireModelEvent("deleting", true) {
		return false, nil
	}

	query, _, err := m.newBaseQuery()
	if err != nil {
		return false, err
	}

	begin := time.Now()
	rows, err := query.Where(m.KeyName(), "=", m.keyForSaveQuery()).Delete(ctx)
	m.trace(ctx, "delete", begin, rows, err)
	if err != nil {
		return false, err
	}

	if err := m.TouchOwners(ctx); err != nil {
		return false, err
	}

	m.exists = false
	m.fireModelEvent("deleted", false)
	return true, nil
}

// Destroy load the models of def keyed by ids and delete them one by one, so deleting and
// deleted fire for each. It returns how many were deleted.
func Destroy(ctx context.Context, def *Definition, ids ...interface{}) (int, error) {
	if len(ids) == 1 {
		if list, ok := ids[0].([]interface{}); ok {
			ids = list
		}
	}
	if len(ids) == 0 {
		return 0, nil
	}

	models, err := def.Query().WhereIn(def.PrimaryKey(), ids).Get(ctx)
	if err != nil {
		return 0, err
	}

	var count int
	for _, m := range models {
		deleted, err := m.Delete(ctx)
		if err != nil {
			return count, err
		}
		if deleted {
			count++
		}
	}
	return count, nil
}

// Destroy delete the models keyed by ids, see Destroy
func (d *Definition) Destroy(ctx context.Context, ids ...interface{}) (int, error) {
	return Destroy(ctx, d, ids...)
}

// Update fill attrs and save, false when the model doesn't exist
func (m *Model) Update(ctx context.Context, attrs map[string]interface{}) (bool, error) {
	if !m.exists {
		return false, nil
	}

	if err := m.Fill(attrs); err != nil {
		return false, err
	}
	return m.Save(ctx)
}

// Touch refresh updated_at and save, false when the model has no timestamps
func (m *Model) Touch(ctx context.Context) (bool, error) {
	if !m.timestamps {
		return false, nil
	}

	if err := m.UpdateTimestamps(); err != nil {
		return false, err
	}
	return m.Save(ctx)
}

// Increment add amount to column of the stored row, extra columns are updated in the same
// query. The in-memory column is adjusted and left clean, extra columns stay dirty.
func (m *Model) Increment(ctx context.Context, column string, amount float64, extra map[string]interface{}) (int64, error) {
	return m.incrementOrDecrement(ctx, column, amount, extra)
}

// Decrement subtract amount from column, see Increment
func (m *Model) Decrement(ctx context.Context, column string, amount float64, extra map[string]interface{}) (int64, error) {
	return m.incrementOrDecrement(ctx, column, -amount, extra)
}

func (m *Model) incrementOrDecrement(ctx context.Context, column string, amount float64, extra map[string]interface{}) (int64, error) {
	query, _, err := m.newBaseQuery()
	if err != nil {
		return 0, err
	}

	if !m.exists {
		begin := time.Now()
		rows, err := query.Increment(ctx, column, amount, extra)
		m.trace(ctx, "increment", begin, rows, err)
		return rows, err
	}

	current, _ := schema.ToFloat(m.attributes[column])
	next := current + amount
	if next == math.Trunc(next) && !isFloatValue(m.attributes[column]) && amount == math.Trunc(amount) {
		m.setRaw(column, int64(next))
	} else {
		m.setRaw(column, next)
	}

	if err := m.ForceFill(extra); err != nil {
		return 0, err
	}

	begin := time.Now()
	rows, err := query.Where(m.KeyName(), "=", m.keyForSaveQuery()).Increment(ctx, column, amount, extra)
	m.trace(ctx, "increment", begin, rows, err)
	if err != nil {
		return rows, err
	}

	m.SyncOriginalAttribute(column)
	return rows, nil
}

func isFloatValue(value interface{}) bool {
	switch value.(type) {
	case float32, float64:
		return true
	}
	return false
}
