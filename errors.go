package activerecord

import (
	"errors"
	"fmt"

	"github.com/go-gorm/activerecord/logger"
	"github.com/go-gorm/activerecord/schema"
)

var (
	// ErrRecordNotFound record not found error
	ErrRecordNotFound = logger.ErrRecordNotFound
	// ErrMissingPrimaryKey model has no primary key name or no key value
	ErrMissingPrimaryKey = errors.New("no primary key defined on model")
	// ErrNoConnectionResolver registry has no connection resolver
	ErrNoConnectionResolver = errors.New("no connection resolver configured")
	// ErrInvalidDate value can't be parsed as a date
	ErrInvalidDate = schema.ErrInvalidDate
	// ErrInvalidCast value can't be coerced to its declared cast
	ErrInvalidCast = schema.ErrInvalidCast
	// ErrUnknownRelation relation isn't declared on the model
	ErrUnknownRelation = errors.New("unknown relation")
	// ErrUnknownModel no definition registered under the name
	ErrUnknownModel = errors.New("unknown model")
	// ErrUnknownScope query scope isn't declared on the model
	ErrUnknownScope = errors.New("unknown scope")
)

// MassAssignmentError bulk fill touched an attribute that is not fillable on a totally guarded model
type MassAssignmentError struct {
	Attribute string
	Model     string
}

func (e *MassAssignmentError) Error() string {
	return fmt.Sprintf("add [%s] to fillable property to allow mass assignment on [%s]", e.Attribute, e.Model)
}

// EncodingError a structured attribute could not be encoded or decoded
type EncodingError struct {
	Attribute string
	Model     string
	Err       error
}

func (e *EncodingError) Error() string {
	return fmt.Sprintf("unable to encode attribute [%s] for model [%s] to JSON: %v", e.Attribute, e.Model, e.Err)
}

func (e *EncodingError) Unwrap() error {
	return e.Err
}

// RelationTypeError a declared relation did not return a relation descriptor
type RelationTypeError struct {
	Relation string
	Model    string
}

func (e *RelationTypeError) Error() string {
	return fmt.Sprintf("%s::%s must return a relationship instance", e.Model, e.Relation)
}
