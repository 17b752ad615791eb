package dialect

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrDuplicatedKey unique constraint violated
var ErrDuplicatedKey = errors.New("duplicated key not allowed")

const (
	mysqlUniqueConstraint    = 1062
	postgresUniqueConstraint = "23505"
	sqliteUniqueConstraint   = 2067
)

func duplicatedKey(err error) error {
	return fmt.Errorf("%w: %w", ErrDuplicatedKey, err)
}

// driver errors expose their codes as exported fields, decode them without importing the drivers
func decodeDriverError(err error, dest interface{}) bool {
	data, marshalErr := json.Marshal(err)
	if marshalErr != nil {
		return false
	}
	return json.Unmarshal(data, dest) == nil
}

func (MySQL) Translate(err error) error {
	var mysqlErr struct {
		Number  int    `json:"Number"`
		Message string `json:"Message"`
	}
	if err != nil && decodeDriverError(err, &mysqlErr) && mysqlErr.Number == mysqlUniqueConstraint {
		return duplicatedKey(err)
	}
	return err
}

func (Postgres) Translate(err error) error {
	var postgresErr struct {
		Code     string `json:"Code"`
		Severity string `json:"Severity"`
		Message  string `json:"Message"`
	}
	if err != nil && decodeDriverError(err, &postgresErr) && postgresErr.Code == postgresUniqueConstraint {
		return duplicatedKey(err)
	}
	return err
}

func (SQLite) Translate(err error) error {
	if err == nil {
		return nil
	}

	var coded interface{ Code() int }
	if errors.As(err, &coded) && coded.Code() == sqliteUniqueConstraint {
		return duplicatedKey(err)
	}

	var sqliteErr struct {
		ExtendedCode int `json:"ExtendedCode"`
	}
	if decodeDriverError(err, &sqliteErr) && sqliteErr.ExtendedCode == sqliteUniqueConstraint {
		return duplicatedKey(err)
	}

	if strings.Contains(err.Error(), "UNIQUE constraint failed") {
		return duplicatedKey(err)
	}
	return err
}
