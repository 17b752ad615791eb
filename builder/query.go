package builder

import (
	"context"
	"database/sql"
	"fmt"
	"math"
	"time"

	"github.com/go-gorm/activerecord"
	"github.com/go-gorm/activerecord/logger"
)

// Query query builder of a table, conditions accumulate until a terminal call
type Query struct {
	*Statement
	conn  *Connection
	Error error
}

var _ activerecord.QueryBuilder = (*Query)(nil)

// AddError add error to the query
func (q *Query) AddError(err error) error {
	if q.Error == nil {
		q.Error = err
	} else if err != nil {
		q.Error = fmt.Errorf("%v; %w", q.Error, err)
	}
	return q.Error
}

// Where add condition, invalid operators fail the terminal call
func (q *Query) Where(column string, operator string, value interface{}) activerecord.QueryBuilder {
	cond, err := NewCondition(column, operator, value)
	if err != nil {
		q.AddError(err)
		return q
	}
	q.AddConditions(cond)
	return q
}

// WhereIn add column in values condition
func (q *Query) WhereIn(column string, values []interface{}) activerecord.QueryBuilder {
	q.AddConditions(In{Column: column, Values: values})
	return q
}

// Select select columns
func (q *Query) Select(columns ...string) activerecord.QueryBuilder {
	q.Columns = append(q.Columns, columns...)
	return q
}

func (q *Query) trace(ctx context.Context, begin time.Time, sql string, vars []interface{}, rows int64, err error) {
	q.conn.Logger.Trace(ctx, begin, func() (string, int64) {
		if filter, ok := q.conn.Logger.(logger.ParamsFilter); ok {
			sql, vars = filter.ParamsFilter(ctx, sql, vars...)
		}
		return q.conn.dialect.Explain(sql, vars...), rows
	}, err)
}

func (q *Query) exec(ctx context.Context, sql string, vars []interface{}) (result sql.Result, rows int64, err error) {
	begin := time.Now()
	defer func() {
		q.trace(ctx, begin, sql, vars, rows, err)
	}()

	result, err = q.conn.execContext(ctx, sql, vars...)
	if err != nil {
		return nil, 0, q.conn.dialect.Translate(err)
	}
	rows, err = result.RowsAffected()
	return result, rows, err
}

// Get select rows
func (q *Query) Get(ctx context.Context) (results []map[string]interface{}, err error) {
	if q.Error != nil {
		return nil, q.Error
	}

	sql, vars := q.BuildSelect(q.conn.dialect)
	begin := time.Now()
	defer func() {
		q.trace(ctx, begin, sql, vars, int64(len(results)), err)
	}()

	rows, err := q.conn.queryContext(ctx, sql, vars...)
	if err != nil {
		return nil, q.conn.dialect.Translate(err)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	results = []map[string]interface{}{}
	for rows.Next() {
		values := make([]interface{}, len(columns))
		dest := make([]interface{}, len(columns))
		for idx := range values {
			dest[idx] = &values[idx]
		}
		if err = rows.Scan(dest...); err != nil {
			return nil, err
		}

		row := make(map[string]interface{}, len(columns))
		for idx, column := range columns {
			row[column] = values[idx]
		}
		results = append(results, row)
	}
	return results, rows.Err()
}

// Update update matched rows
func (q *Query) Update(ctx context.Context, changes map[string]interface{}) (int64, error) {
	if q.Error != nil {
		return 0, q.Error
	}
	if len(changes) == 0 {
		return 0, nil
	}

	sql, vars := q.BuildUpdate(q.conn.dialect, Assignments(changes))
	_, rows, err := q.exec(ctx, sql, vars)
	return rows, err
}

// Insert insert a row
func (q *Query) Insert(ctx context.Context, values map[string]interface{}) error {
	if q.Error != nil {
		return q.Error
	}

	sql, vars := q.BuildInsert(q.conn.dialect, Assignments(values), "")
	_, _, err := q.exec(ctx, sql, vars)
	return err
}

// InsertGetID insert a row and return its generated key
func (q *Query) InsertGetID(ctx context.Context, values map[string]interface{}, key string) (id interface{}, err error) {
	if q.Error != nil {
		return nil, q.Error
	}

	if q.conn.dialect.SupportLastInsertId() {
		sql, vars := q.BuildInsert(q.conn.dialect, Assignments(values), "")
		result, _, err := q.exec(ctx, sql, vars)
		if err != nil {
			return nil, err
		}
		return result.LastInsertId()
	}

	sql, vars := q.BuildInsert(q.conn.dialect, Assignments(values), key)
	begin := time.Now()
	defer func() {
		q.trace(ctx, begin, sql, vars, 1, err)
	}()

	if err = q.conn.queryRowScan(ctx, &id, sql, vars...); err != nil {
		return nil, q.conn.dialect.Translate(err)
	}
	if id == nil {
		err = fmt.Errorf("%w: %s", ErrNoGeneratedKey, key)
	}
	return id, err
}

// Delete delete matched rows
func (q *Query) Delete(ctx context.Context) (int64, error) {
	if q.Error != nil {
		return 0, q.Error
	}

	sql, vars := q.BuildDelete(q.conn.dialect)
	_, rows, err := q.exec(ctx, sql, vars)
	return rows, err
}

// Increment add amount to column of matched rows, extra columns are updated too
func (q *Query) Increment(ctx context.Context, column string, amount float64, extra map[string]interface{}) (int64, error) {
	if q.Error != nil {
		return 0, q.Error
	}

	var value interface{} = amount
	if amount == math.Trunc(amount) && math.Abs(amount) < math.MaxInt64 {
		value = int64(amount)
	}

	sql, vars := q.BuildIncrement(q.conn.dialect, column, value, Assignments(extra))
	_, rows, err := q.exec(ctx, sql, vars)
	return rows, err
}
