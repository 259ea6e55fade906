package value

import (
	"errors"
	"sync"

	"github.com/google/btree"
)

var (
	// ErrUnbound is returned by Lookup for a name with no binding.
	ErrUnbound = errors.New("unbound variable")
	// ErrUnresolved is returned by Lookup for a recursive binding whose
	// value is still being computed.
	ErrUnresolved = errors.New("recursive binding used before it has a value")
)

const envDegree = 8

type binding struct {
	name string
	val  Value
	knot *Knot // set for recursive bindings instead of val
}

func lessBinding(a, b binding) bool { return a.name < b.name }

// Env is an immutable mapping from names to values. Extending an Env
// returns a new Env that shares structure with the old one through the
// B-tree's copy-on-write clone; the receiver never changes. The zero value
// and nil are both the empty environment.
type Env struct {
	mu   sync.Mutex // guards tree.Clone, which writes the shared cow marker
	tree *btree.BTreeG[binding]
}

// NewEnv returns an empty environment.
func NewEnv() *Env {
	return &Env{tree: btree.NewG[binding](envDegree, lessBinding)}
}

func (e *Env) clone() *btree.BTreeG[binding] {
	if e == nil || e.tree == nil {
		return btree.NewG[binding](envDegree, lessBinding)
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.tree.Clone()
}

// Bind returns an extension of e binding name to v. An existing binding for
// name is shadowed.
func (e *Env) Bind(name string, v Value) *Env {
	t := e.clone()
	t.ReplaceOrInsert(binding{name: name, val: v})
	return &Env{tree: t}
}

// Recursive returns an extension of e in which name refers to a knot: a
// forward reference that has no value until the returned Knot is resolved.
// Closures created under the extension see the resolved value.
func (e *Env) Recursive(name string) (*Env, *Knot) {
	k := &Knot{name: name}
	t := e.clone()
	t.ReplaceOrInsert(binding{name: name, knot: k})
	return &Env{tree: t}, k
}

// Lookup returns the value bound to name. It fails with ErrUnbound when name
// is not bound and ErrUnresolved when it refers to an unresolved knot.
func (e *Env) Lookup(name string) (Value, error) {
	if e == nil || e.tree == nil {
		return nil, ErrUnbound
	}
	b, ok := e.tree.Get(binding{name: name})
	if !ok {
		return nil, ErrUnbound
	}
	if b.knot != nil {
		if b.knot.val == nil {
			return nil, ErrUnresolved
		}
		return b.knot.val, nil
	}
	return b.val, nil
}

// Has reports whether name is bound, resolved or not.
func (e *Env) Has(name string) bool {
	if e == nil || e.tree == nil {
		return false
	}
	return e.tree.Has(binding{name: name})
}

// Len returns the number of bound names.
func (e *Env) Len() int {
	if e == nil || e.tree == nil {
		return 0
	}
	return e.tree.Len()
}

// Names returns the bound names in ascending order.
func (e *Env) Names() []string {
	if e == nil || e.tree == nil {
		return nil
	}
	names := make([]string, 0, e.tree.Len())
	e.tree.Ascend(func(b binding) bool {
		names = append(names, b.name)
		return true
	})
	return names
}

// Knot is the forward reference created by Env.Recursive.
type Knot struct {
	name string
	val  Value
}

// Resolve sets the knot's value. Only the first call has an effect.
func (k *Knot) Resolve(v Value) {
	if k.val == nil {
		k.val = v
	}
}

// Resolved reports whether the knot has a value.
func (k *Knot) Resolved() bool { return k.val != nil }

// Name returns the name the knot is bound to.
func (k *Knot) Name() string { return k.name }
