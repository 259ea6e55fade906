package linter

// bindingKind describes where a name was bound
type bindingKind int

const (
	kindLet bindingKind = iota
	kindParam
	kindPattern
)

// String returns the string representation of the binding kind
func (k bindingKind) String() string {
	switch k {
	case kindLet:
		return "let binding"
	case kindParam:
		return "parameter"
	case kindPattern:
		return "pattern variable"
	default:
		return "binding"
	}
}

// binding is one bound name and what the linter learned about it
type binding struct {
	name    string
	kind    bindingKind
	line    int
	column  int
	used    bool
	inBound bool // set while the bound expression of a let is walked
}

// scope represents a lexical scope
type scope struct {
	parent   *scope
	bindings map[string]*binding
	order    []*binding
}

func newScope(parent *scope) *scope {
	return &scope{
		parent:   parent,
		bindings: make(map[string]*binding),
	}
}

// define adds a binding to this scope and returns the binding it shadows,
// if any. Redefining a name in the same scope replaces it.
func (s *scope) define(b *binding) *binding {
	shadowed := s.lookup(b.name)
	s.bindings[b.name] = b
	s.order = append(s.order, b)
	return shadowed
}

// lookup finds a binding in this scope or its parents without marking it
func (s *scope) lookup(name string) *binding {
	for sc := s; sc != nil; sc = sc.parent {
		if b, ok := sc.bindings[name]; ok {
			return b
		}
	}
	return nil
}

// resolve finds a binding and records the use. A use inside a let's own
// bound expression is a recursive call and does not count.
func (s *scope) resolve(name string) *binding {
	b := s.lookup(name)
	if b != nil && !b.inBound {
		b.used = true
	}
	return b
}
