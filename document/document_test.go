package document

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedTime = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func TestFieldSetValidate(t *testing.T) {
	tests := []struct {
		name    string
		kind    Kind
		fields  FieldSet
		wantErr bool
	}{
		{"document content", KindDocument, FieldSet{FieldContent: "x"}, false},
		{"user story criteria", KindUserStory, FieldSet{FieldAcceptanceCriteria: "x", FieldTitle: "t"}, false},
		{"use case main flow", KindUseCase, FieldSet{FieldMainFlow: "1. go"}, false},
		{"epic has no rationale", KindEpic, FieldSet{FieldRationale: "x"}, true},
		{"use case has no title", KindUseCase, FieldSet{FieldTitle: "x"}, true},
		{"unknown kind", Kind("wiki"), FieldSet{FieldTitle: "x"}, true},
		{"empty set", KindEpic, FieldSet{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.fields.Validate(tt.kind)
			if tt.wantErr {
				var fieldErr *FieldError
				assert.True(t, errors.As(err, &fieldErr), "expected FieldError, got %v", err)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestApplyPatchKeepsOtherFields(t *testing.T) {
	e := Entity{
		ID:     "e-1",
		Kind:   KindUserStory,
		Fields: map[Field]string{FieldTitle: "Login", FieldDescription: "As a user"},
	}

	patched, err := ApplyPatch(e, FieldSet{FieldDescription: "As a returning user"}, fixedTime)
	require.NoError(t, err)

	assert.Equal(t, "Login", patched.Fields[FieldTitle])
	assert.Equal(t, "As a returning user", patched.Fields[FieldDescription])
	assert.Equal(t, fixedTime, patched.UpdatedAt)
	// The input entity is not modified.
	assert.Equal(t, "As a user", e.Fields[FieldDescription])
}

func TestApplyPatchRejectsForeignField(t *testing.T) {
	e := Entity{ID: "e-1", Kind: KindEpic, Fields: map[Field]string{FieldTitle: "T"}}
	_, err := ApplyPatch(e, FieldSet{FieldMainFlow: "x"}, fixedTime)

	var fieldErr *FieldError
	require.ErrorAs(t, err, &fieldErr)
	assert.Equal(t, FieldMainFlow, fieldErr.Field)
	assert.Equal(t, "epic.main_flow: not a field of this kind", fieldErr.Error())
}

func TestKindsAndFields(t *testing.T) {
	assert.Len(t, Kinds(), 5)
	assert.Equal(t, []Field{FieldTitle, FieldContent}, FieldsOf(KindDocument))
	assert.Empty(t, FieldsOf(Kind("nope")))
}

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	store.now = func() time.Time { return fixedTime }

	created, err := store.Create(ctx, KindFunctionalRequirement, FieldSet{FieldTitle: "Export", FieldRationale: "Audits"})
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)

	got, err := store.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created, got)

	// Returned entities are copies.
	got.Fields[FieldTitle] = "mutated"
	again, err := store.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Export", again.Fields[FieldTitle])

	patched, err := store.Patch(ctx, created.ID, FieldSet{FieldRationale: "Compliance audits"})
	require.NoError(t, err)
	assert.Equal(t, "Compliance audits", patched.Fields[FieldRationale])

	_, err = store.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = store.Patch(ctx, "missing", FieldSet{FieldTitle: "x"})
	assert.True(t, IsNotFound(err))

	_, err = store.Create(ctx, KindEpic, FieldSet{FieldContent: "x"})
	var fieldErr *FieldError
	assert.ErrorAs(t, err, &fieldErr)
}
