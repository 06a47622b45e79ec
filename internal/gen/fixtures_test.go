package gen

import (
	"errors"
	"reflect"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"shape-mapper/internal/analyze"
	"shape-mapper/internal/coerce"
	"shape-mapper/internal/mapping"
	"shape-mapper/internal/plan"
	"shape-mapper/node"
	"shape-mapper/options"
)

type address struct {
	Street string
	City   string
}

type addressDto struct {
	Street string
	City   string
}

type customer struct {
	ID      int
	Name    string
	Email   string
	Secret  string
	Address *address
	Tags    []string
}

type customerDto struct {
	ID          string
	Name        string
	Email       string
	Contact     string
	AddressCity string
	Address     addressDto
	Nickname    string
}

type profile struct {
	Name    string
	Age     int
	Address addressDto
	Tags    []string
	Homes   []addressDto
}

type employee struct {
	Name    string
	Manager *employee
}

type employeeDto struct {
	Name    string
	Manager *employeeDto
}

type account struct {
	Owner    string
	Balance  int
	Currency string
}

type wallet struct {
	Owner    string
	Balance  int
	Currency string
}

func NewWallet(owner string) *wallet {
	return &wallet{Owner: owner, Currency: "USD"}
}

func CreateWallet(owner string, balance int) (*wallet, error) {
	if balance < 0 {
		return nil, errors.New("negative balance")
	}

	return &wallet{Owner: owner + "!", Balance: balance}, nil
}

type animal interface {
	Sound() string
}

type animalDto interface {
	Kind() string
}

type base struct {
	Name string
}

func (base) Sound() string { return "..." }

type mid struct {
	base
	Legs int
}

type leaf struct {
	mid
	Wings int
}

type baseDto struct {
	Name string
}

func (baseDto) Kind() string { return "base" }

type midDto struct {
	baseDto
	Legs int
}

type leafDto struct {
	midDto
	Wings int
}

// testLinker compiles and caches mappers the way the public facade does.
type testLinker struct {
	resolver *plan.Resolver

	mu      sync.Mutex
	mappers map[node.Signature]*Mapper
}

func newLinker(t *testing.T, catalog *analyze.Catalog, rules []*mapping.Rule, opts ...options.Option) *testLinker {
	t.Helper()

	o := options.Apply(opts...)

	reg := mapping.NewRegistry(analyze.NewAnalyzer(), coerce.NewChain(o.Categories))
	require.NoError(t, reg.Register(rules...))

	return &testLinker{
		resolver: plan.NewResolver(reg, catalog, o),
		mappers:  make(map[node.Signature]*Mapper),
	}
}

func (l *testLinker) Link(sig node.Signature) (*Mapper, error) {
	sig = l.resolver.Normalize(sig)

	l.mu.Lock()
	defer l.mu.Unlock()

	if m, ok := l.mappers[sig]; ok {
		return m, nil
	}

	p, err := l.resolver.Plan(sig)
	if err != nil {
		return nil, err
	}

	m, err := Compile(p, l)
	if err != nil {
		return nil, err
	}

	l.mappers[sig] = m

	return m, nil
}

func mapperOf[S, T any](t *testing.T, l *testLinker, intent node.Intent) *Mapper {
	t.Helper()

	m, err := l.Link(node.NewSignature(intent, reflect.TypeFor[S](), reflect.TypeFor[T]()))
	require.NoError(t, err)

	return m
}

// run maps src with a create-new mapper and returns the result as a T.
func run[S, T any](t *testing.T, l *testLinker, src any) T {
	t.Helper()

	return runOnto[S, T](t, l, node.IntentCreateNew, src, nil)
}

func runOnto[S, T any](t *testing.T, l *testLinker, intent node.Intent, src, existing any) T {
	t.Helper()

	out, err := mapperOf[S, T](t, l, intent).Invoke(src, existing, nil)
	require.NoError(t, err)

	v, ok := Fit(reflect.ValueOf(out), reflect.TypeFor[T]())
	require.True(t, ok, "result %T is not a %s", out, reflect.TypeFor[T]())

	typed, _ := v.Interface().(T)

	return typed
}
