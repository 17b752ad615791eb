package builder

import (
	"context"
	"database/sql"
	"time"

	"github.com/go-gorm/activerecord"
	"github.com/go-gorm/activerecord/dialect"
	"github.com/go-gorm/activerecord/logger"
)

// Config connection config
type Config struct {
	// Logger traces every executed statement
	Logger logger.Interface
	// DateFormat overrides the date format of the dialect
	DateFormat string
	// Processor post processes selected rows and generated keys
	Processor activerecord.Processor
	// PrepareStmt executes cached prepared statements
	PrepareStmt bool
	// PrepareStmtMaxSize max cached statements, 0 is unlimited
	PrepareStmtMaxSize int
	// PrepareStmtTTL idle statements are closed after the ttl
	PrepareStmtTTL time.Duration
}

// Option use functional option for connection Config.
type Option func(c *Config)

// WithLogger set logger.
func WithLogger(logger logger.Interface) Option {
	return func(c *Config) {
		c.Logger = logger
	}
}

// WithDateFormat set date format.
func WithDateFormat(format string) Option {
	return func(c *Config) {
		c.DateFormat = format
	}
}

// WithProcessor set processor, a nil processor leaves values untouched.
func WithProcessor(processor activerecord.Processor) Option {
	return func(c *Config) {
		c.Processor = processor
	}
}

// WithPreparedStatements cache prepared statements, size 0 is unlimited.
func WithPreparedStatements(size int, ttl time.Duration) Option {
	return func(c *Config) {
		c.PrepareStmt = true
		c.PrepareStmtMaxSize = size
		c.PrepareStmtTTL = ttl
	}
}

// Connection named database connection
type Connection struct {
	*Config
	name    string
	db      *sql.DB
	dialect dialect.Dialect
	stmts   *stmtStore
}

var (
	_ activerecord.Connection = (*Connection)(nil)
	_ activerecord.Grammar    = dialect.Dialect(nil)
)

// NewConnection wrap db as connection name
func NewConnection(name string, db *sql.DB, d dialect.Dialect, opts ...Option) *Connection {
	config := &Config{Logger: logger.Default, Processor: Processor{}}
	for _, opt := range opts {
		opt(config)
	}
	if config.Logger == nil {
		config.Logger = logger.Discard
	}

	conn := &Connection{Config: config, name: name, db: db, dialect: d}
	if config.PrepareStmt {
		conn.stmts = newStmtStore(config.PrepareStmtMaxSize, config.PrepareStmtTTL)
	}
	return conn
}

// Open open database of driver, the dialect is looked up by driver name
func Open(name, driver, dsn string, opts ...Option) (*Connection, error) {
	d, err := dialect.New(driver)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, err
	}
	return NewConnection(name, db, d, opts...), nil
}

// Name connection name
func (conn *Connection) Name() string {
	return conn.name
}

// DB underlying database
func (conn *Connection) DB() *sql.DB {
	return conn.db
}

// Dialect sql dialect
func (conn *Connection) Dialect() dialect.Dialect {
	return conn.dialect
}

// Table query builder of table
func (conn *Connection) Table(name string) activerecord.QueryBuilder {
	return &Query{conn: conn, Statement: &Statement{Table: name}}
}

// Grammar query grammar
func (conn *Connection) Grammar() activerecord.Grammar {
	return conn.dialect
}

// Processor post processor
func (conn *Connection) Processor() activerecord.Processor {
	return conn.Config.Processor
}

// DateFormat date format of the connection
func (conn *Connection) DateFormat() string {
	if conn.Config.DateFormat != "" {
		return conn.Config.DateFormat
	}
	return conn.dialect.DateFormat()
}

// PreparedStatements sql of the cached prepared statements
func (conn *Connection) PreparedStatements() []string {
	if conn.stmts == nil {
		return nil
	}
	return conn.stmts.keys()
}

func (conn *Connection) execContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error) {
	if conn.stmts == nil {
		return conn.db.ExecContext(ctx, query, args...)
	}

	stmt, err := conn.stmts.prepare(ctx, conn.db, query)
	if err != nil {
		return nil, err
	}
	return stmt.ExecContext(ctx, args...)
}

func (conn *Connection) queryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error) {
	if conn.stmts == nil {
		return conn.db.QueryContext(ctx, query, args...)
	}

	stmt, err := conn.stmts.prepare(ctx, conn.db, query)
	if err != nil {
		return nil, err
	}
	return stmt.QueryContext(ctx, args...)
}

func (conn *Connection) queryRowScan(ctx context.Context, dest interface{}, query string, args ...interface{}) error {
	if conn.stmts == nil {
		return conn.db.QueryRowContext(ctx, query, args...).Scan(dest)
	}

	stmt, err := conn.stmts.prepare(ctx, conn.db, query)
	if err != nil {
		return err
	}
	return stmt.QueryRowContext(ctx, args...).Scan(dest)
}

// Close close cached statements and the underlying database
func (conn *Connection) Close() error {
	if conn.stmts != nil {
		conn.stmts.close()
	}
	return conn.db.Close()
}
