// Package document holds the documentation entities edited through the assistant
// and the stores that persist them.
package document

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
)

// Kind tags an entity.
type Kind string

const (
	KindDocument              Kind = "document"
	KindEpic                  Kind = "epic"
	KindUserStory             Kind = "user_story"
	KindUseCase               Kind = "use_case"
	KindFunctionalRequirement Kind = "functional_requirement"
)

// Field names an editable text field of an entity.
type Field string

const (
	FieldTitle              Field = "title"
	FieldName               Field = "name"
	FieldContent            Field = "content"
	FieldDescription        Field = "description"
	FieldAcceptanceCriteria Field = "acceptance_criteria"
	FieldPreconditions      Field = "preconditions"
	FieldMainFlow           Field = "main_flow"
	FieldPostconditions     Field = "postconditions"
	FieldRationale          Field = "rationale"
)

var kindFields = map[Kind][]Field{
	KindDocument:              {FieldTitle, FieldContent},
	KindEpic:                  {FieldTitle, FieldDescription},
	KindUserStory:             {FieldTitle, FieldDescription, FieldAcceptanceCriteria},
	KindUseCase:               {FieldName, FieldDescription, FieldPreconditions, FieldMainFlow, FieldPostconditions},
	KindFunctionalRequirement: {FieldTitle, FieldDescription, FieldRationale},
}

// ErrNotFound is returned by stores for unknown entity IDs.
var ErrNotFound = errors.New("entity not found")

// Entity is a stored documentation item.
type Entity struct {
	ID        string           `json:"id"`
	Kind      Kind             `json:"kind"`
	Fields    map[Field]string `json:"fields"`
	UpdatedAt time.Time        `json:"updatedAt"`
}

// FieldSet is a set of field updates.
type FieldSet map[Field]string

// FieldError reports a field set that does not fit the entity kind.
type FieldError struct {
	Kind   Kind
	Field  Field
	Reason string
}

func (e *FieldError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("%s: %s", e.Kind, e.Reason)
	}
	return fmt.Sprintf("%s.%s: %s", e.Kind, e.Field, e.Reason)
}

// Store persists entities.
type Store interface {
	Get(ctx context.Context, id string) (Entity, error)
	Create(ctx context.Context, kind Kind, fields FieldSet) (Entity, error)
	Patch(ctx context.Context, id string, fields FieldSet) (Entity, error)
}

// Kinds returns every known kind in a stable order.
func Kinds() []Kind {
	kinds := make([]Kind, 0, len(kindFields))
	for k := range kindFields {
		kinds = append(kinds, k)
	}
	sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })
	return kinds
}

// FieldsOf lists the editable fields of kind.
func FieldsOf(kind Kind) []Field {
	return append([]Field(nil), kindFields[kind]...)
}

// HasField reports whether entities of kind carry field.
func (k Kind) HasField(field Field) bool {
	for _, f := range kindFields[k] {
		if f == field {
			return true
		}
	}
	return false
}

// Valid reports whether k is a known kind.
func (k Kind) Valid() bool {
	_, ok := kindFields[k]
	return ok
}

// Validate checks that every field in fs belongs to kind.
func (fs FieldSet) Validate(kind Kind) error {
	if !kind.Valid() {
		return &FieldError{Kind: kind, Reason: "unknown entity kind"}
	}
	if len(fs) == 0 {
		return &FieldError{Kind: kind, Reason: "no fields given"}
	}
	for field := range fs {
		if !kind.HasField(field) {
			return &FieldError{Kind: kind, Field: field, Reason: "not a field of this kind"}
		}
	}
	return nil
}

// NewEntity builds a fresh entity with a random ID.
func NewEntity(kind Kind, fields FieldSet, now time.Time) (Entity, error) {
	if err := fields.Validate(kind); err != nil {
		return Entity{}, err
	}
	e := Entity{
		ID:        uuid.NewString(),
		Kind:      kind,
		Fields:    make(map[Field]string, len(fields)),
		UpdatedAt: now.UTC(),
	}
	for f, v := range fields {
		e.Fields[f] = v
	}
	return e, nil
}

// ApplyPatch returns a copy of e with fs applied. Fields not in fs are kept as is.
func ApplyPatch(e Entity, fs FieldSet, now time.Time) (Entity, error) {
	if err := fs.Validate(e.Kind); err != nil {
		return Entity{}, err
	}
	patched := e
	patched.Fields = make(map[Field]string, len(e.Fields)+len(fs))
	for f, v := range e.Fields {
		patched.Fields[f] = v
	}
	for f, v := range fs {
		patched.Fields[f] = v
	}
	patched.UpdatedAt = now.UTC()
	return patched, nil
}
