package node_test

import (
	"fmt"
	"reflect"

	"shape-mapper/node"
)

func ExampleDealer() {
	var d node.Dealer

	intToString := node.NewSignature(node.IntentCreateNew, reflect.TypeFor[int](), reflect.TypeFor[string]())

	d.Needs(intToString)
	sig, ok := d.NextNeeds()
	fmt.Println("int & string:", sig, ok)

	_, ok = d.NextNeeds()
	fmt.Println("empty:", ok)

	d.Needs(intToString)
	_, ok = d.NextNeeds()
	fmt.Println("no duplicates:", ok)

	d.Needs(intToString.With(reflect.TypeFor[int](), reflect.TypeFor[int]()))
	d.Needs(intToString.With(reflect.TypeFor[string](), reflect.TypeFor[string]()))
	d.Needs(intToString.With(reflect.TypeFor[int](), reflect.TypeFor[int]()))

	sig, ok = d.NextNeeds()
	fmt.Println("first pair:", sig, ok)

	sig, ok = d.NextNeeds()
	fmt.Println("second pair:", sig, ok)

	_, ok = d.NextNeeds()
	fmt.Println("no more pairs:", ok, d.Len())

	// Output:
	// int & string: create: int -> string true
	// empty: false
	// no duplicates: false
	// first pair: create: int -> int true
	// second pair: create: string -> string true
	// no more pairs: false 3
}
