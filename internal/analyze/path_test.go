package analyze

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePath(t *testing.T) {
	tests := []struct {
		path    string
		want    []PathSegment
		wantErr bool
	}{
		{path: "Name", want: []PathSegment{{Name: "Name"}}},
		{path: "Customer.FullName", want: []PathSegment{{Name: "Customer"}, {Name: "FullName"}}},
		{path: "Items[]", want: []PathSegment{{Name: "Items", IsSlice: true}}},
		{path: "Items[].ProductID", want: []PathSegment{{Name: "Items", IsSlice: true}, {Name: "ProductID"}}},
		{path: "", wantErr: true},
		{path: "A..B", wantErr: true},
		{path: "[]", wantErr: true},
		{path: "1abc", wantErr: true},
		{path: "a-b", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			got, err := ParsePath(tt.path)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, got.Segments)
			assert.Equal(t, tt.path, got.String())
		})
	}
}

func TestFieldPath_Queries(t *testing.T) {
	simple, err := ParsePath("Name")
	require.NoError(t, err)
	assert.True(t, simple.IsSimple())
	assert.Equal(t, "Name", simple.Root())

	nested, err := ParsePath("Items[].Name")
	require.NoError(t, err)
	assert.False(t, nested.IsSimple())
	assert.Equal(t, "Items", nested.Root())
	assert.False(t, nested.Equals(simple))

	again, err := ParsePath("Items[].Name")
	require.NoError(t, err)
	assert.True(t, nested.Equals(again))

	assert.True(t, FieldPath{}.IsEmpty())
	assert.Empty(t, FieldPath{}.Root())
}
