package domain

import (
	"fmt"
	"log/slog"

	"varscope.dev/pkg/varscope/internal/adapter"
	m "varscope.dev/pkg/varscope/internal/model"
)

// ParamsCollection is the collection parameters live in.
const ParamsCollection = "params"

// Initializer produces a concrete parameter value from an RNG key and the
// declared shape. It must be a pure function of both; lazy initialization
// relies on that.
type Initializer func(key adapter.Key, shape m.Shape) (*m.Array, error)

// VarInitializer produces the initial value of a general variable.
type VarInitializer func() (any, error)

// invocation is the state shared by every scope of one model-function
// call: the live variable storage (a private deep copy of the caller's
// tree that absorbs every write), the write ledger, RNG seeds, policies
// and the call-counter table. It exists for exactly one invocation and is
// never shared across top-level calls.
type invocation struct {
	live       m.Collections
	output     m.Collections
	rngs       map[string]*LazyRNG
	mutable    Filter
	visible    Filter
	counters   map[string]uint64
	legacyFold bool
	closed     bool
	err        error
}

func (inv *invocation) hasCollection(collection string) bool {
	_, ok := inv.live[collection]

	return ok
}

func (inv *invocation) lookup(collection string, path []string, name string) (any, bool) {
	tree, ok := inv.live[collection]
	if !ok {
		return nil, false
	}

	return m.Lookup(tree, path, name)
}

// put applies a write to the live storage and records it in the output
// ledger, which holds exactly the values written during this invocation.
func (inv *invocation) put(collection string, path []string, name string, value any) {
	live, ok := inv.live[collection]
	if !ok {
		live = m.Tree{}
		inv.live[collection] = live
	}

	m.Put(live, path, name, value)

	ledger, ok := inv.output[collection]
	if !ok {
		ledger = m.Tree{}
		inv.output[collection] = ledger
	}

	m.Put(ledger, path, name, value)
}

func (inv *invocation) nextCount(scopePath, collection string) uint64 {
	key := scopePath + "\x00" + collection
	count := inv.counters[key]
	inv.counters[key] = count + 1

	return count
}

// Reservation kinds: child scope names and variable names share one
// namespace within a scope.
const (
	reservationChild    = "child scope"
	reservationVariable = "variable"
)

// Scope is a named node in the call tree granting scoped read/write access
// to the shared variable storage. Children share the parent's invocation
// state by reference; a write through a child is observably a write
// through the parent at the nested path.
type Scope struct {
	inv          *invocation
	path         []string
	reservations map[string]string
	anonCount    int
}

// Option configures a root scope.
type Option func(*invocation)

// WithRNGs supplies per-collection RNG seeds.
func WithRNGs(seeds map[string]adapter.Key) Option {
	return func(inv *invocation) {
		for collection, key := range seeds {
			if inv.legacyFold {
				inv.rngs[collection] = createLegacyRNG(key)
				continue
			}

			inv.rngs[collection] = CreateRNG(key)
		}
	}
}

// WithRNGSources supplies per-collection RNG inputs of mixed types: typed
// keys, raw fixed-width key bytes, or already-derived LazyRNGs. Anything
// IsValidRNG rejects, notably batches of split keys, fails NewRoot.
func WithRNGSources(seeds map[string]any) Option {
	return func(inv *invocation) {
		for collection, value := range seeds {
			rng, err := coerceRNG(collection, value, inv.legacyFold)
			if err != nil {
				inv.err = err
				return
			}

			inv.rngs[collection] = rng
		}
	}
}

func coerceRNG(collection string, value any, legacyFold bool) (*LazyRNG, error) {
	if !IsValidRNG(value) {
		return nil, &m.InvalidRNGError{
			Reason: fmt.Sprintf("collection %q: unsupported rng input %T", collection, value),
		}
	}

	switch v := value.(type) {
	case *LazyRNG:
		return v, nil
	case adapter.Key:
		if legacyFold {
			return createLegacyRNG(v), nil
		}

		return CreateRNG(v), nil
	default:
		var key adapter.Key

		copy(key[:], v.([]byte))

		if legacyFold {
			return createLegacyRNG(key), nil
		}

		return CreateRNG(key), nil
	}
}

// WithMutable sets the filter deciding which collections accept writes.
// The default is DenyAll.
func WithMutable(f Filter) Option {
	return func(inv *invocation) {
		inv.mutable = f
	}
}

// WithVisible sets the filter deciding which collections are readable.
// The default is AllowAll.
func WithVisible(f Filter) Option {
	return func(inv *invocation) {
		inv.visible = f
	}
}

// WithLegacyRNGFold disables separator folding between RNG path segments,
// reproducing streams derived before the separator mode existed. New
// callers should not use this.
func WithLegacyRNGFold() Option {
	return func(inv *invocation) {
		inv.legacyFold = true

		for collection, rng := range inv.rngs {
			inv.rngs[collection] = createLegacyRNG(rng.base, rng.path...)
		}
	}
}

// NewRoot constructs the root scope of one invocation over a variable
// tree. The tree is deep-copied: concurrent top-level invocations never
// share storage.
func NewRoot(cols m.Collections, opts ...Option) (*Scope, error) {
	if cols == nil {
		cols = m.Collections{}
	}

	if err := m.ValidateStructure(cols); err != nil {
		return nil, err
	}

	inv := &invocation{
		live:     m.CopyCollections(cols),
		output:   m.Collections{},
		rngs:     map[string]*LazyRNG{},
		mutable:  DenyAll,
		visible:  AllowAll,
		counters: map[string]uint64{},
	}

	for _, opt := range opts {
		opt(inv)
	}

	if inv.err != nil {
		return nil, inv.err
	}

	return &Scope{inv: inv, path: nil, reservations: map[string]string{}}, nil
}

// Path renders the scope's position in the call tree, "/" for the root.
func (s *Scope) Path() string {
	return m.PathString(s.path)
}

func (s *Scope) ensureOpen() {
	if s.inv.closed {
		panic("varscope: use of closed scope " + s.Path())
	}
}

func (s *Scope) close() {
	s.inv.closed = true
}

func (s *Scope) reserve(name, kind string) error {
	existing, ok := s.reservations[name]
	if !ok {
		s.reservations[name] = kind
		return nil
	}

	if existing != kind {
		return fmt.Errorf("name %q in scope %q is already used for a %s", name, s.Path(), existing)
	}

	// Re-reading a variable or re-entering a child of the same kind is
	// legal only for variables; child scope names must be unique.
	if kind == reservationChild {
		return fmt.Errorf("duplicate child scope name %q in scope %q", name, s.Path())
	}

	return nil
}

// Push creates a named sub-scope sharing this scope's storage, policies
// and RNG seeds. An empty name is auto-generated.
func (s *Scope) Push(name string) (*Scope, error) {
	s.ensureOpen()

	if name == "" {
		name = s.nextAnonName()
	}

	if err := s.reserve(name, reservationChild); err != nil {
		return nil, err
	}

	path := make([]string, 0, len(s.path)+1)
	path = append(path, s.path...)
	path = append(path, name)

	return &Scope{inv: s.inv, path: path, reservations: map[string]string{}}, nil
}

func (s *Scope) nextAnonName() string {
	for {
		name := fmt.Sprintf("scope_%d", s.anonCount)
		s.anonCount++

		if _, taken := s.reservations[name]; !taken {
			return name
		}
	}
}

// Child pushes a named sub-scope and invokes fn against it.
func (s *Scope) Child(name string, fn func(*Scope) error) error {
	child, err := s.Push(name)
	if err != nil {
		return err
	}

	return fn(child)
}

// Rewound returns a scope over the same storage and seeds with all call
// counters reset, so the next derivations reproduce the sequence a fresh
// scope would have produced. This is the retry mechanism; it is an
// explicit reset, not error recovery.
func (s *Scope) Rewound() *Scope {
	s.ensureOpen()

	inv := &invocation{
		live:       s.inv.live,
		output:     s.inv.output,
		rngs:       s.inv.rngs,
		mutable:    s.inv.mutable,
		visible:    s.inv.visible,
		counters:   map[string]uint64{},
		legacyFold: s.inv.legacyFold,
	}

	path := make([]string, len(s.path))
	copy(path, s.path)

	return &Scope{inv: inv, path: path, reservations: map[string]string{}}
}

// HasRNG reports whether a seed for the collection is reachable from this
// scope.
func (s *Scope) HasRNG(collection string) bool {
	s.ensureOpen()

	_, ok := s.inv.rngs[collection]

	return ok
}

// MakeRNG derives a concrete key for the collection from its seed, this
// scope's path and the per-(scope, collection) call counter. Repeated
// calls yield decorrelated keys; the same (path, collection, ordinal)
// always realizes to the same key.
func (s *Scope) MakeRNG(collection string) (adapter.Key, error) {
	s.ensureOpen()

	rng, ok := s.inv.rngs[collection]
	if !ok {
		return adapter.Key{}, &m.InvalidRNGError{
			Reason: fmt.Sprintf("no %q seed reachable from scope %q", collection, s.Path()),
		}
	}

	derived := rng
	for _, segment := range s.path {
		derived = derived.Derive(segment)
	}

	count := s.inv.nextCount(s.Path(), collection)
	key := derived.Realize(count)

	slog.Debug("derived rng", "scope", s.Path(), "collection", collection, "count", count, "key", key)

	return key, nil
}

func (s *Scope) collectionVisible(collection string) bool {
	return InFilter(s.inv.visible, collection)
}

func (s *Scope) collectionMutable(collection string) bool {
	return InFilter(s.inv.mutable, collection)
}

// Param looks up the named parameter in the "params" collection at this
// scope's path, creating it with the initializer when the collection is
// mutable. A stored parameter whose shape differs from the declared shape
// is an error, not a silent re-initialization.
func (s *Scope) Param(name string, init Initializer, shape m.Shape) (*m.Array, error) {
	s.ensureOpen()

	if err := s.reserve(name, reservationVariable); err != nil {
		return nil, err
	}

	if !s.collectionVisible(ParamsCollection) {
		return nil, &m.CollectionNotFoundError{Collection: ParamsCollection, ScopePath: s.Path()}
	}

	if value, ok := s.inv.lookup(ParamsCollection, s.path, name); ok {
		arr, ok := value.(*m.Array)
		if !ok {
			return nil, fmt.Errorf("parameter %q in scope %q is not an array", name, s.Path())
		}

		if shape != nil && !arr.Shape.Equal(shape) {
			return nil, &m.ParamShapeMismatchError{
				Param:     name,
				ScopePath: s.Path(),
				Expected:  shape,
				Actual:    arr.Shape,
			}
		}

		return arr, nil
	}

	if !s.collectionMutable(ParamsCollection) {
		if !s.inv.hasCollection(ParamsCollection) {
			return nil, &m.CollectionNotFoundError{Collection: ParamsCollection, ScopePath: s.Path()}
		}

		return nil, &m.ParamNotFoundError{Param: name, ScopePath: s.Path()}
	}

	key, err := s.MakeRNG(ParamsCollection)
	if err != nil {
		return nil, err
	}

	arr, err := init(key, shape)
	if err != nil {
		return nil, fmt.Errorf("initialize parameter %q in scope %q: %w", name, s.Path(), err)
	}

	s.inv.put(ParamsCollection, s.path, name, arr)

	return arr, nil
}

// Variable looks up (or, when the collection is mutable and an initializer
// is supplied, creates) a named variable and returns a handle to it.
func (s *Scope) Variable(collection, name string, init VarInitializer) (*Variable, error) {
	s.ensureOpen()

	if err := s.reserve(name, reservationVariable); err != nil {
		return nil, err
	}

	if !s.collectionVisible(collection) {
		return nil, &m.CollectionNotFoundError{Collection: collection, ScopePath: s.Path()}
	}

	mutable := s.collectionMutable(collection)

	if !s.inv.hasCollection(collection) {
		if init == nil || !mutable {
			return nil, &m.CollectionNotFoundError{Collection: collection, ScopePath: s.Path()}
		}
	}

	if _, ok := s.inv.lookup(collection, s.path, name); ok {
		return &Variable{scope: s, collection: collection, name: name, mutable: mutable}, nil
	}

	if init == nil {
		return nil, &m.VariableNotFoundError{Collection: collection, Name: name, ScopePath: s.Path()}
	}

	if !mutable {
		return nil, &m.VariableNotFoundError{Collection: collection, Name: name, ScopePath: s.Path()}
	}

	value, err := init()
	if err != nil {
		return nil, fmt.Errorf("initialize variable %q in collection %q of scope %q: %w", name, collection, s.Path(), err)
	}

	s.inv.put(collection, s.path, name, value)

	return &Variable{scope: s, collection: collection, name: name, mutable: true}, nil
}

// PutVariable writes a value directly, bypassing initializer logic.
func (s *Scope) PutVariable(collection, name string, value any) error {
	s.ensureOpen()

	if !s.collectionMutable(collection) {
		return &m.ModifyImmutableError{Collection: collection, Name: name, ScopePath: s.Path()}
	}

	s.inv.put(collection, s.path, name, value)

	return nil
}

// Variables returns the visible collections as seen from this scope's
// path. The returned trees are live references into the invocation's
// storage, so later writes through any scope of the same invocation
// remain observable in them.
func (s *Scope) Variables() m.Collections {
	s.ensureOpen()

	out := m.Collections{}

	for name, tree := range s.inv.live {
		if !s.collectionVisible(name) {
			continue
		}

		if scoped, ok := m.Descend(tree, s.path); ok {
			out[name] = scoped
		}
	}

	return out
}

// Variable is a handle to one (collection, name) slot at the scope path
// that produced it. Mutability is snapshot at creation time.
type Variable struct {
	scope      *Scope
	collection string
	name       string
	mutable    bool
}

// Value reads the current value of the variable.
func (v *Variable) Value() any {
	value, _ := v.scope.inv.lookup(v.collection, v.scope.path, v.name)
	return value
}

// Set writes a new value through the handle.
func (v *Variable) Set(value any) error {
	v.scope.ensureOpen()

	if !v.mutable {
		return &m.ModifyImmutableError{Collection: v.collection, Name: v.name, ScopePath: v.scope.Path()}
	}

	v.scope.inv.put(v.collection, v.scope.path, v.name, value)

	return nil
}

// IsMutable reports the mutability snapshot taken when the handle was
// created.
func (v *Variable) IsMutable() bool {
	return v.mutable
}
