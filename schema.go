package eventing

import (
	"fmt"
	"reflect"
	"sync"
)

// Declaration is a single (name, signature) event declaration, consumed
// once when the owning type's events are defined and not retained
// afterward.
type Declaration struct {
	name      Key
	signature Signature
	absent    bool
	err       error
}

// Declare creates an event declaration. With no types the declaration
// carries no signature; reconciliation lets a later declaration of the
// same name supply one, and an event left without a signature is raised
// with no arguments.
//
//	eventing.Declare("OnDone", eventing.TypeOf[string]())
//	eventing.Declare("OnTick") // no signature
//
// The same normalization as NewSignature applies; a non-type element
// surfaces as ErrInvalidSignature when the declaration reaches Define.
func Declare(name Key, types ...any) Declaration {
	if len(types) == 0 {
		return Declaration{name: name, absent: true}
	}
	sig, err := NewSignature(types...)
	return Declaration{name: name, signature: sig, err: err}
}

// Name returns the declared event name.
func (d Declaration) Name() Key { return d.name }

var (
	registryMu sync.RWMutex

	// declared holds each type's own reconciled table, before
	// inheritance. An absent signature is recorded as nil.
	declared = make(map[reflect.Type]*schema)

	// resolved holds fully composed schemas, inherited events included,
	// built on first use so Define order across a hierarchy does not
	// matter.
	resolved = make(map[reflect.Type]*schema)

	// defined marks types whose table can no longer change: Define ran,
	// or a schema was already materialized for an emitter.
	defined = make(map[reflect.Type]bool)
)

// schema is the event table for one producer type. Each type has an own
// table built at Define time and a resolved table, composed with its
// embedded types' events, shared by every emitter of that type.
type schema struct {
	typ       reflect.Type
	order     []Key             // declaration order, inherited first
	slots     map[Key]Signature // signature per event name; nil while unresolved
	fields    map[Key][]int     // index paths of bindable Slot fields
	conflicts int64             // declarations dropped first-seen-wins
}

var slotType = reflect.TypeOf(Slot{})

// Define installs the event declarations for producer type T, exactly
// once, typically from an init function in the producer's package.
// T may be the struct type or a pointer to it.
//
// Declarations are reconciled in order: the first occurrence of a name
// records its signature; a later declaration may supply a signature the
// first lacked; a later declaration that disagrees with an established
// signature is dropped with a warning logged (first seen wins).
//
// Events declared on embedded producer types are inherited, whether the
// embedded type used Define or opted in through Slot fields alone, and
// regardless of the order the types were defined in: inheritance is
// resolved when the first emitter for T is constructed. Exported Slot
// fields on T also count as declarations (without a signature) and are
// bound to their events at that point.
//
// Define fails with ErrRedefined if T's table is already fixed, either
// by an earlier Define or because an emitter was already constructed
// for T, with ErrInvalidSignature if a declaration carries a value
// instead of a type, and with ConflictError if an event name matches a
// field or method of T that is not a Slot.
func Define[T any](decls ...Declaration) error {
	cfg := currentConfig()
	typ := TypeOf[T]()
	for typ.Kind() == reflect.Pointer {
		typ = typ.Elem()
	}

	registryMu.Lock()
	defer registryMu.Unlock()

	if defined[typ] {
		return fmt.Errorf("%w: %s", ErrRedefined, typ)
	}
	own, err := buildOwnSchema(typ, decls, cfg)
	if err != nil {
		return err
	}
	declared[typ] = own
	defined[typ] = true
	return nil
}

// MustDefine is like Define but panics on error, for use in variable
// initializers and init functions.
func MustDefine[T any](decls ...Declaration) {
	if err := Define[T](decls...); err != nil {
		panic(err)
	}
}

// schemaFor returns the resolved schema for typ, composing it on first
// use. A type that never called Define still resolves if it opts in
// through Slot fields, its own or an embedded type's.
func schemaFor(typ reflect.Type, cfg config) (*schema, error) {
	registryMu.RLock()
	sch, ok := resolved[typ]
	registryMu.RUnlock()
	if ok {
		return sch, nil
	}

	registryMu.Lock()
	defer registryMu.Unlock()

	// Double-check: another goroutine may have resolved it.
	if sch, ok := resolved[typ]; ok {
		return sch, nil
	}
	if typ.Kind() != reflect.Struct {
		return nil, fmt.Errorf("%w: %s", ErrUndeclared, typ)
	}
	sch, err := resolveSchema(typ, cfg, make(map[reflect.Type]bool))
	if err != nil {
		return nil, err
	}
	if sch == nil || len(sch.order) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrUndeclared, typ)
	}
	return sch, nil
}

// resolveSchema composes a type's resolved table: events inherited from
// embedded types first, in field order, then the type's own table on
// top. Embedded types resolve recursively, building an implicit
// Slot-field table for any that never called Define. Non-empty results
// are cached and fix the type's table against later Define calls.
// Callers hold registryMu; seen breaks pointer-embed cycles.
func resolveSchema(typ reflect.Type, cfg config, seen map[reflect.Type]bool) (*schema, error) {
	if sch, ok := resolved[typ]; ok {
		return sch, nil
	}
	if seen[typ] {
		return nil, nil
	}
	seen[typ] = true

	own, ok := declared[typ]
	if !ok {
		var err error
		own, err = buildOwnSchema(typ, nil, cfg)
		if err != nil {
			return nil, err
		}
	}

	sch := &schema{
		typ:       typ,
		slots:     make(map[Key]Signature),
		fields:    make(map[Key][]int),
		conflicts: own.conflicts,
	}

	// Inherit events from embedded producer types.
	for i := 0; i < typ.NumField(); i++ {
		f := typ.Field(i)
		if !f.Anonymous {
			continue
		}
		base := f.Type
		if base.Kind() == reflect.Pointer {
			base = base.Elem()
		}
		if base.Kind() != reflect.Struct {
			continue
		}
		parent, err := resolveSchema(base, cfg, seen)
		if err != nil {
			return nil, err
		}
		if parent == nil {
			continue
		}
		for _, name := range parent.order {
			if _, dup := sch.slots[name]; dup {
				continue
			}
			sch.order = append(sch.order, name)
			sch.slots[name] = parent.slots[name]
			// Slot fields are only bindable through value embeds.
			if path, ok := parent.fields[name]; ok && f.Type.Kind() != reflect.Pointer {
				sch.fields[name] = append([]int{i}, path...)
			}
		}
	}

	// The type's own table overrides inherited entries in place; new
	// names append in declaration order.
	for _, name := range own.order {
		sig := own.slots[name]
		inherited, wasInherited := sch.slots[name]
		if sig == nil {
			// An absent declaration adopts the inherited signature, the
			// same way it adopts a concrete one declared alongside it.
			if wasInherited {
				sig = inherited
			} else {
				sig = Signature{}
			}
		}
		if !wasInherited {
			sch.order = append(sch.order, name)
		}
		sch.slots[name] = sig
	}
	for name, path := range own.fields {
		sch.fields[name] = path
	}

	if len(sch.order) > 0 {
		resolved[typ] = sch
		defined[typ] = true
	}
	return sch, nil
}

// buildOwnSchema reconciles a type's own declarations: Slot fields
// first, then the declaration list, with collisions against non-event
// members rejected. Inheritance is left to resolveSchema; an absent
// signature stays nil so resolution can adopt an inherited one.
// Callers hold registryMu.
func buildOwnSchema(typ reflect.Type, decls []Declaration, cfg config) (*schema, error) {
	if typ.Kind() != reflect.Struct {
		return nil, fmt.Errorf("events can only be defined on struct types, got %s", typ)
	}
	sch := &schema{
		typ:    typ,
		slots:  make(map[Key]Signature),
		fields: make(map[Key][]int),
	}

	// Reconciliation table.
	type record struct {
		signature Signature
		absent    bool
	}
	own := make(map[Key]*record)
	var ownOrder []Key

	merge := func(name Key, sig Signature, absent bool) {
		rec, ok := own[name]
		if !ok {
			own[name] = &record{signature: sig, absent: absent}
			ownOrder = append(ownOrder, name)
			return
		}
		if absent {
			return
		}
		if rec.absent {
			rec.signature = sig
			rec.absent = false
			return
		}
		if !rec.signature.equal(sig) {
			cfg.logger.Warn("conflicting event declarations",
				"type", typ.String(),
				"event", string(name),
				"kept", rec.signature.String(),
				"ignored", sig.String(),
			)
			sch.conflicts++
		}
	}

	// Slot fields reserve their names first, in field order.
	for i := 0; i < typ.NumField(); i++ {
		f := typ.Field(i)
		if f.Anonymous || f.Type != slotType {
			continue
		}
		name := Key(f.Name)
		if tag, ok := f.Tag.Lookup("event"); ok && tag != "" {
			name = Key(tag)
		}
		merge(name, nil, true)
		sch.fields[name] = []int{i}
	}

	for _, d := range decls {
		if d.err != nil {
			return nil, fmt.Errorf("declaration of %q: %w", d.name, d.err)
		}
		merge(d.name, d.signature, d.absent)
	}

	// Install, rejecting collisions with non-event members.
	for _, name := range ownOrder {
		if err := checkCollision(typ, name); err != nil {
			return nil, err
		}
		rec := own[name]
		sig := rec.signature
		if rec.absent {
			sig = nil
		} else if sig == nil {
			sig = Signature{}
		}
		sch.order = append(sch.order, name)
		sch.slots[name] = sig
	}

	return sch, nil
}

// checkCollision rejects an event name that matches a field or method
// of the owner type that is not a Slot. Slot fields are the event's own
// pre-declaration and never conflict.
func checkCollision(typ reflect.Type, name Key) error {
	for i := 0; i < typ.NumField(); i++ {
		f := typ.Field(i)
		if f.Anonymous || f.Type == slotType {
			continue
		}
		if Key(f.Name) == name {
			return &ConflictError{Type: typ, Name: name, Kind: f.Type.String() + " field"}
		}
	}
	if _, ok := typ.MethodByName(string(name)); ok {
		return &ConflictError{Type: typ, Name: name, Kind: "method"}
	}
	if _, ok := reflect.PointerTo(typ).MethodByName(string(name)); ok {
		return &ConflictError{Type: typ, Name: name, Kind: "method"}
	}
	return nil
}
