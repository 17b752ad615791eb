package utils

import (
	"database/sql/driver"
	"fmt"
	"path/filepath"
	"reflect"
	"runtime"
	"strconv"
	"strings"
)

var sourceDir string

func init() {
	_, file, _, _ := runtime.Caller(0)
	// compatible solution to get the module source directory with various operating systems
	sourceDir = moduleDir(file)
}

func moduleDir(file string) string {
	dir := filepath.Dir(file)
	dir = filepath.Dir(dir)
	return filepath.ToSlash(dir) + "/"
}

// CallerFrame retrieves the first relevant stack frame outside of this module's source files
func CallerFrame() runtime.Frame {
	pcs := [13]uintptr{}
	// the third caller usually from internal code, so skip the first three
	n := runtime.Callers(3, pcs[:])
	frames := runtime.CallersFrames(pcs[:n])
	for i := 0; i < n; i++ {
		frame, _ := frames.Next()
		if !strings.HasPrefix(frame.File, sourceDir) || strings.HasSuffix(frame.File, "_test.go") {
			return frame
		}
	}

	return runtime.Frame{}
}

// FileWithLineNum return the file name and line number of the current file
func FileWithLineNum() string {
	frame := CallerFrame()
	if frame.PC != 0 {
		return frame.File + ":" + strconv.FormatInt(int64(frame.Line), 10)
	}

	return ""
}

// ToStringKey joins values into a stable map key
func ToStringKey(values ...interface{}) string {
	results := make([]string, len(values))

	for idx, value := range values {
		if valuer, ok := value.(driver.Valuer); ok {
			value, _ = valuer.Value()
		}

		switch v := value.(type) {
		case nil:
			results[idx] = "<nil>"
		case string:
			results[idx] = v
		case []byte:
			results[idx] = string(v)
		case uint:
			results[idx] = strconv.FormatUint(uint64(v), 10)
		default:
			results[idx] = fmt.Sprint(reflect.Indirect(reflect.ValueOf(v)).Interface())
		}
	}

	return strings.Join(results, "_")
}

func Contains(elems []string, elem string) bool {
	for _, e := range elems {
		if elem == e {
			return true
		}
	}
	return false
}

// Without returns elems minus every value in removed, keeping order
func Without(elems []string, removed ...string) []string {
	results := make([]string, 0, len(elems))
	for _, e := range elems {
		if !Contains(removed, e) {
			results = append(results, e)
		}
	}
	return results
}

// Intersect returns the elems that are also in other, keeping the order of elems
func Intersect(elems, other []string) []string {
	results := make([]string, 0, len(elems))
	for _, e := range elems {
		if Contains(other, e) {
			results = append(results, e)
		}
	}
	return results
}

// AppendUnique appends values that are not already present
func AppendUnique(elems []string, values ...string) []string {
	for _, v := range values {
		if !Contains(elems, v) {
			elems = append(elems, v)
		}
	}
	return elems
}

func ToString(value interface{}) string {
	switch v := value.(type) {
	case string:
		return v
	case int:
		return strconv.FormatInt(int64(v), 10)
	case int8:
		return strconv.FormatInt(int64(v), 10)
	case int16:
		return strconv.FormatInt(int64(v), 10)
	case int32:
		return strconv.FormatInt(int64(v), 10)
	case int64:
		return strconv.FormatInt(v, 10)
	case uint:
		return strconv.FormatUint(uint64(v), 10)
	case uint8:
		return strconv.FormatUint(uint64(v), 10)
	case uint16:
		return strconv.FormatUint(uint64(v), 10)
	case uint32:
		return strconv.FormatUint(uint64(v), 10)
	case uint64:
		return strconv.FormatUint(v, 10)
	}
	return ""
}
