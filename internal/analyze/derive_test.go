package analyze

import (
	"fmt"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
)

type Shape interface{ Area() float64 }

type Base struct{ ID int }

func (b *Base) Area() float64 { return 0 }

type Mid struct {
	Base
	Label string
}

type Leaf struct {
	*Mid
	Color string
}

type Other struct{ ID int }

func TestDerivesFrom(t *testing.T) {
	shape := reflect.TypeFor[Shape]()
	base := reflect.TypeFor[Base]()
	mid := reflect.TypeFor[Mid]()
	leaf := reflect.TypeFor[Leaf]()

	tests := []struct {
		t, base reflect.Type
		depth   int
		ok      bool
	}{
		{base, base, 0, true},
		{reflect.TypeFor[*Base](), base, 0, true},
		{mid, base, 1, true},
		{leaf, mid, 1, true},
		{leaf, base, 2, true},
		{base, mid, 0, false},
		{reflect.TypeFor[Other](), base, 0, false},
		{base, shape, 1, true},
		{mid, shape, 2, true},
		{leaf, shape, 3, true},
		{reflect.TypeFor[Other](), shape, 0, false},
		{shape, shape, 0, true},
		{nil, base, 0, false},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%v/%v", tt.t, tt.base), func(t *testing.T) {
			depth, ok := DerivesFrom(tt.t, tt.base)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.depth, depth)
		})
	}
}

func TestDepth(t *testing.T) {
	assert.Equal(t, 0, Depth(reflect.TypeFor[Base]()))
	assert.Equal(t, 1, Depth(reflect.TypeFor[Mid]()))
	assert.Equal(t, 2, Depth(reflect.TypeFor[*Leaf]()))
	assert.Equal(t, 0, Depth(reflect.TypeFor[int]()))
}
