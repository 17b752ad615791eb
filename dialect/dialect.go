package dialect

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
)

// ErrUnsupportedDriver no dialect registered for the driver
var ErrUnsupportedDriver = errors.New("unsupported driver")

// Dialect SQL flavour of a database driver
type Dialect interface {
	// Name the dialect name
	Name() string
	// BindVar placeholder of the i-th bound value, starting from 1
	BindVar(i int) string
	// QuoteIdentifier quote a column or table name, dotted names are quoted per segment
	QuoteIdentifier(name string) string
	// SupportLastInsertId whether generated keys come back through sql.Result
	SupportLastInsertId() bool
	// ReturningStr clause appended to inserts to read back the generated key
	ReturningStr(key string) string
	// DateFormat layout of stored date values
	DateFormat() string
	// Explain render sql with its bound values for logging
	Explain(sql string, vars ...interface{}) string
	// Translate translate driver errors, unique violations wrap ErrDuplicatedKey
	Translate(err error) error
}

var (
	registry = map[string]Dialect{}
	mu       sync.RWMutex
)

func init() {
	Register(MySQL{}, "mysql")
	Register(Postgres{}, "postgres", "pgx")
	Register(SQLite{}, "sqlite3", "sqlite")
}

// Register register dialect for driver names
func Register(d Dialect, drivers ...string) {
	mu.Lock()
	defer mu.Unlock()
	for _, driver := range drivers {
		registry[driver] = d
	}
}

// New dialect of the driver
func New(driver string) (Dialect, error) {
	mu.RLock()
	defer mu.RUnlock()
	if d, ok := registry[driver]; ok {
		return d, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnsupportedDriver, driver)
}

// Drivers registered driver names
func Drivers() []string {
	mu.RLock()
	defer mu.RUnlock()
	drivers := make([]string, 0, len(registry))
	for driver := range registry {
		drivers = append(drivers, driver)
	}
	sort.Strings(drivers)
	return drivers
}

func quoteSegments(name string, quote byte) string {
	var b strings.Builder
	for idx, segment := range strings.Split(name, ".") {
		if idx > 0 {
			b.WriteByte('.')
		}
		if segment == "*" {
			b.WriteByte('*')
			continue
		}
		b.WriteByte(quote)
		b.WriteString(strings.ReplaceAll(segment, string(quote), string([]byte{quote, quote})))
		b.WriteByte(quote)
	}
	return b.String()
}
