package plan

import (
	"errors"
	"reflect"
	"testing"

	"github.com/stretchr/testify/require"

	"shape-mapper/internal/analyze"
	"shape-mapper/internal/coerce"
	"shape-mapper/internal/diagnostic"
	"shape-mapper/internal/mapping"
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
	Address address
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
	return &wallet{Owner: owner}
}

func CreateWallet(owner string, balance int) (*wallet, error) {
	if balance < 0 {
		return nil, errors.New("negative balance")
	}

	return &wallet{Owner: owner, Balance: balance}, nil
}

func NewWalletFrom(w wallet) *wallet {
	return &w
}

func NewWalletWithPin(owner string, pin int) *wallet {
	return &wallet{Owner: owner}
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

func sigOf[S, T any](intent node.Intent) node.Signature {
	return node.NewSignature(intent, reflect.TypeFor[S](), reflect.TypeFor[T]())
}

func createSig[S, T any]() node.Signature {
	return sigOf[S, T](node.IntentCreateNew)
}

func newResolver(t *testing.T, catalog *analyze.Catalog, rules []*mapping.Rule, opts ...options.Option) *Resolver {
	t.Helper()

	o := options.Apply(opts...)

	reg := mapping.NewRegistry(analyze.NewAnalyzer(), coerce.NewChain(o.Categories))
	require.NoError(t, reg.Register(rules...))

	return NewResolver(reg, catalog, o)
}

func mustPlan(t *testing.T, r *Resolver, sig node.Signature) *MappingPlan {
	t.Helper()

	p, err := r.Plan(sig)
	require.NoError(t, err)

	return p
}

func setOf(t *testing.T, p *MappingPlan, name string) *DataSourceSet {
	t.Helper()

	for i := range p.Members {
		if p.Members[i].Name() == name {
			return &p.Members[i]
		}
	}

	t.Fatalf("plan %s has no member %s", p.Signature, name)

	return nil
}

func origins(s *DataSourceSet) []Origin {
	out := make([]Origin, len(s.Sources))
	for i := range s.Sources {
		out[i] = s.Sources[i].Origin
	}

	return out
}

func codes(d diagnostic.Diagnostics) []string {
	var out []string
	for _, item := range d.All() {
		out = append(out, item.Code)
	}

	return out
}

func names(members []*analyze.QualifiedMember) []string {
	out := make([]string, len(members))
	for i, q := range members {
		out[i] = q.Path()
	}

	return out
}
