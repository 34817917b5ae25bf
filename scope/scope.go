// Package scope implements Zinc's hierarchical name resolution: a
// tree of scopes, each owning `identifier -> Item` bindings and a
// parent pointer, plus the process-wide monotonic item-id index that
// seeds a handful of built-in type ids at boot.
//
// Lookups that miss locally walk the parent chain outward; qualified
// paths instead descend through an item's own associated scope, one
// segment at a time.
package scope

import (
	"fmt"
	"sync"

	"github.com/dr8co/zinc/token"
	"github.com/dr8co/zinc/types"
)

// ItemKind is the polymorphic capability tag attached to scope
// entries.
type ItemKind int

const (
	Variable ItemKind = iota
	Constant
	Type
	Module
	Variant
	Field
)

func (k ItemKind) String() string {
	switch k {
	case Variable:
		return "variable"
	case Constant:
		return "constant"
	case Type:
		return "type"
	case Module:
		return "module"
	case Variant:
		return "variant"
	case Field:
		return "field"
	}
	return "item"
}

// Item is a single declared name: its kind, its unique id, its type
// (where applicable), and — for Module items and the types that carry
// their own associated/impl scope (struct, enum, contract) — a child
// scope of their own.
type Item struct {
	Kind     ItemKind
	Name     string
	ID       int
	Type     *types.Type
	Mutable  bool
	Location token.Location
	Inner    *Scope // non-nil for Module items and types with an impl scope
}

// Scope is one node of the lexical scope tree: a name->Item map plus
// a parent pointer walked by lookups that fall through to an
// enclosing scope.
type Scope struct {
	parent *Scope
	items  map[string]*Item
}

// New creates a scope whose lookups fall through to parent. parent
// may be nil for the root (module) scope.
func New(parent *Scope) *Scope {
	return &Scope{parent: parent, items: make(map[string]*Item)}
}

// Parent returns the enclosing scope, or nil at the root.
func (s *Scope) Parent() *Scope { return s.parent }

// Define binds name to item in this scope. Redeclaration within the
// same scope is rejected — shadowing is only permitted from an inner
// scope.
func (s *Scope) Define(item *Item) error {
	if _, exists := s.items[item.Name]; exists {
		return fmt.Errorf("scope: %q already declared in this scope", item.Name)
	}
	s.items[item.Name] = item
	return nil
}

// Lookup resolves a bare identifier by walking up the parent chain.
func (s *Scope) Lookup(name string) (*Item, bool) {
	for sc := s; sc != nil; sc = sc.parent {
		if item, ok := sc.items[name]; ok {
			return item, true
		}
	}
	return nil, false
}

// LookupLocal resolves name in this scope only, without consulting
// parents.
func (s *Scope) LookupLocal(name string) (*Item, bool) {
	item, ok := s.items[name]
	return item, ok
}

// LookupPath resolves a qualified path `a::b::c`: `a` is looked up in
// the current chain, then each further segment descends into the
// previous segment's associated scope.
func (s *Scope) LookupPath(path []string) (*Item, error) {
	if len(path) == 0 {
		return nil, fmt.Errorf("scope: empty path")
	}
	item, ok := s.Lookup(path[0])
	if !ok {
		return nil, fmt.Errorf("scope: undeclared name %q", path[0])
	}
	for _, seg := range path[1:] {
		if item.Inner == nil {
			return nil, fmt.Errorf("scope: %q has no members", item.Name)
		}
		next, ok := item.Inner.LookupLocal(seg)
		if !ok {
			return nil, fmt.Errorf("scope: %q has no member %q", item.Name, seg)
		}
		item = next
	}
	return item, nil
}

// Built-in item ids, seeded into the process-wide index at boot
//: numeric identities downstream consumers depend on.
const (
	BuiltinPointID = iota
	BuiltinSignatureID
	BuiltinTokenID
	builtinCount
)

// BuiltinNames maps each fixed built-in id to its fully-qualified
// name, in id order.
var BuiltinNames = [builtinCount]string{
	BuiltinPointID:     "std::crypto::ecc::Point",
	BuiltinSignatureID: "std::crypto::schnorr::Signature",
	BuiltinTokenID:     "std::assets::Token",
}

var (
	idMu   sync.RWMutex
	nextID = builtinCount
)

// NextID allocates the next globally-unique item id. Guarded by a
// reader/writer lock so multiple compiles may run concurrently in one
// process without ever sharing an id; a compile's ids are contiguous
// only while no other compile allocates at the same time.
func NextID() int {
	idMu.Lock()
	defer idMu.Unlock()
	id := nextID
	nextID++
	return id
}

// ResetIndex restores the index to just past the built-in ids. Tests
// that assert "the assigned range starts at the built-in count" call
// this between compiles to get a deterministic baseline.
func ResetIndex() {
	idMu.Lock()
	defer idMu.Unlock()
	nextID = builtinCount
}

// NewRoot builds the root scope for a compile, pre-populated with the
// fixed built-in type ids.
func NewRoot() *Scope {
	root := New(nil)
	for id, name := range BuiltinNames {
		_ = root.Define(&Item{Kind: Type, Name: name, ID: id, Inner: New(root)})
	}
	return root
}
