package mapping

import (
	"reflect"

	"shape-mapper/internal/analyze"
	"shape-mapper/internal/coerce"
	"shape-mapper/primitive"
)

type address struct {
	City   string
	Street string
}

type tag struct {
	Label string
}

type person struct {
	Name    string
	Age     int
	Email   string
	Secret  string
	Address address
	Tags    []tag
}

type personDto struct {
	Name    string
	Age     string
	Contact string
	City    string
	Score   int
}

type employee struct {
	person
	Salary int
}

type employeeDto struct {
	personDto
	Salary int
}

type contractor struct {
	person
	Rate int
}

func newTestRegistry() *Registry {
	return NewRegistry(analyze.NewAnalyzer(), coerce.NewChain(primitive.CategoryAll))
}

func newTestCatalog() *analyze.Catalog {
	catalog := analyze.NewCatalog()
	catalog.RegisterTypes(
		reflect.TypeFor[person](),
		reflect.TypeFor[personDto](),
		reflect.TypeFor[employee](),
		reflect.TypeFor[employeeDto](),
	)

	return catalog
}

var personScope = PairOf[person, personDto]()
