package builder

import (
	"strconv"

	"github.com/go-gorm/activerecord"
)

// Processor default post processor, drivers returning text as bytes get strings back
type Processor struct{}

var _ activerecord.Processor = Processor{}

func (Processor) ProcessSelect(rows []map[string]interface{}) []map[string]interface{} {
	for _, row := range rows {
		for column, value := range row {
			if bytes, ok := value.([]byte); ok {
				row[column] = string(bytes)
			}
		}
	}
	return rows
}

func (Processor) ProcessInsertGetID(id interface{}) interface{} {
	switch v := id.(type) {
	case []byte:
		return parseID(string(v))
	case string:
		return parseID(v)
	}
	return id
}

func parseID(s string) interface{} {
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return i
	}
	return s
}
