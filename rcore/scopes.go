package rcore

import (
	"fmt"
	"sort"
	"strings"
)

// Environments live in an arena owned by the Runtime. Everything that
// refers to an environment (parents, closures, promises, frames) holds an
// EnvRef handle rather than a pointer, so environment cycles are just
// integers and collection is a reachability sweep over the arena.
type EnvRef struct {
	id  int32
	gen uint32
}

// IsZero reports whether r refers to no environment.
func (r EnvRef) IsZero() bool { return r.gen == 0 }

func (r EnvRef) String() string {
	return fmt.Sprintf("<environment: %d.%d>", r.id, r.gen)
}

// Binding is one variable in an environment frame.
type Binding struct {
	Value Value

	// Missing is set when the argument matcher bound a formal to its
	// default or to nothing. Assignment clears it.
	Missing bool
	Locked  bool
}

// Env is one environment frame. Parent is zero only for the empty env.
type Env struct {
	Map    map[string]*Binding
	Parent EnvRef
	Name   string
	Locked bool

	ref    EnvRef
	attrs  *Attrs
	marked bool
}

type envArena struct {
	slots []*Env
	gens  []uint32
	free  []int32
	live  int
}

func (a *envArena) alloc(parent EnvRef, name string) EnvRef {
	var id int32
	if n := len(a.free); n > 0 {
		id = a.free[n-1]
		a.free = a.free[:n-1]
	} else {
		id = int32(len(a.slots))
		a.slots = append(a.slots, nil)
		a.gens = append(a.gens, 0)
	}
	a.gens[id]++
	ref := EnvRef{id: id, gen: a.gens[id]}
	a.slots[id] = &Env{
		Map:    make(map[string]*Binding),
		Parent: parent,
		Name:   name,
		ref:    ref,
	}
	a.live++
	return ref
}

func (a *envArena) get(r EnvRef) (*Env, error) {
	if a == nil || r.gen == 0 || int(r.id) >= len(a.slots) {
		return nil, ErrStaleEnv
	}
	e := a.slots[r.id]
	if e == nil || a.gens[r.id] != r.gen {
		return nil, ErrStaleEnv
	}
	return e, nil
}

func (a *envArena) release(id int32) {
	a.slots[id] = nil
	a.free = append(a.free, id)
	a.live--
}

// NewEnv allocates an environment whose enclosure is parent.
func (rt *Runtime) NewEnv(parent EnvRef) EnvRef {
	return rt.envs.alloc(parent, "")
}

// NewNamedEnv is NewEnv with an environmentName().
func (rt *Runtime) NewNamedEnv(parent EnvRef, name string) EnvRef {
	return rt.envs.alloc(parent, name)
}

// Env resolves a handle.
func (rt *Runtime) Env(r EnvRef) (*Env, error) {
	e, err := rt.envs.get(r)
	if err != nil {
		return nil, errorf(KindEnvironment, "%v", err)
	}
	return e, nil
}

// EnvValue wraps a handle as an R value.
func (rt *Runtime) EnvValue(r EnvRef) *EnvValue {
	return &EnvValue{Ref: r, arena: &rt.envs}
}

// Define binds name in env's own frame, clearing any missing mark.
func (rt *Runtime) Define(r EnvRef, name string, v Value) error {
	e, err := rt.Env(r)
	if err != nil {
		return err
	}
	return e.define(name, v)
}

func (e *Env) define(name string, v Value) error {
	b, ok := e.Map[name]
	if ok {
		if b.Locked {
			return errorf(KindEnvironment, "cannot change value of locked binding for '%s'", name)
		}
		b.Value = v
		b.Missing = false
		return nil
	}
	if e.Locked {
		return errorf(KindEnvironment, "cannot add bindings to a locked environment")
	}
	e.Map[name] = &Binding{Value: v}
	return nil
}

// bindFormal is define for the argument matcher: it never fails on locks
// (a fresh call environment has none) and records missingness.
func (e *Env) bindFormal(name string, v Value, missing bool) {
	e.Map[name] = &Binding{Value: v, Missing: missing}
}

// Lookup finds name starting at r and walking enclosures. The value may
// be an unforced promise; see getVar for the forcing variant. A stale
// handle on the way counts as not found; lookupVar reports it.
func (rt *Runtime) Lookup(r EnvRef, name string) (Value, *Env, bool) {
	v, e, err := rt.lookupVar(r, name)
	if err != nil || e == nil {
		return nil, nil, false
	}
	return v, e, true
}

// lookupVar is Lookup that fails on a released environment in the
// chain. A nil *Env with a nil error means name is unbound.
func (rt *Runtime) lookupVar(r EnvRef, name string) (Value, *Env, error) {
	for !r.IsZero() {
		e, err := rt.Env(r)
		if err != nil {
			return nil, nil, err
		}
		if b, ok := e.Map[name]; ok {
			return b.Value, e, nil
		}
		r = e.Parent
	}
	return nil, nil, nil
}

// LookupLocal looks only in r's own frame.
func (rt *Runtime) LookupLocal(r EnvRef, name string) (*Binding, bool) {
	e, err := rt.envs.get(r)
	if err != nil {
		return nil, false
	}
	b, ok := e.Map[name]
	return b, ok
}

// SuperAssign implements `<<-`: assign in the nearest enclosure of r that
// binds name, or in the global environment.
func (rt *Runtime) SuperAssign(r EnvRef, name string, v Value) error {
	e, err := rt.Env(r)
	if err != nil {
		return err
	}
	cur := e.Parent
	for !cur.IsZero() {
		pe, err := rt.Env(cur)
		if err != nil {
			return err
		}
		if _, ok := pe.Map[name]; ok {
			return pe.define(name, v)
		}
		cur = pe.Parent
	}
	return rt.Define(rt.GlobalEnv, name, v)
}

// Remove deletes name from r's own frame.
func (rt *Runtime) Remove(r EnvRef, name string) error {
	e, err := rt.Env(r)
	if err != nil {
		return err
	}
	b, ok := e.Map[name]
	if !ok {
		return errorf(KindEnvironment, "object '%s' not found", name)
	}
	if e.Locked || b.Locked {
		return errorf(KindEnvironment, "cannot remove bindings from a locked environment")
	}
	delete(e.Map, name)
	return nil
}

// Names returns the sorted binding names of r, hiding dot names unless all.
func (rt *Runtime) Names(r EnvRef, all bool) ([]string, error) {
	e, err := rt.Env(r)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(e.Map))
	for k := range e.Map {
		if !all && strings.HasPrefix(k, ".") {
			continue
		}
		names = append(names, k)
	}
	sort.Strings(names)
	return names, nil
}

// Parent returns the enclosure of r.
func (rt *Runtime) Parent(r EnvRef) (EnvRef, error) {
	e, err := rt.Env(r)
	if err != nil {
		return EnvRef{}, err
	}
	return e.Parent, nil
}

// LockEnvironment forbids new bindings; with bindings it also locks the
// existing ones.
func (rt *Runtime) LockEnvironment(r EnvRef, bindings bool) error {
	e, err := rt.Env(r)
	if err != nil {
		return err
	}
	e.Locked = true
	if bindings {
		for _, b := range e.Map {
			b.Locked = true
		}
	}
	return nil
}

func (rt *Runtime) setBindingLock(r EnvRef, name string, locked bool) error {
	b, ok := rt.LookupLocal(r, name)
	if !ok {
		return errorf(KindEnvironment, "no binding for \"%s\"", name)
	}
	b.Locked = locked
	return nil
}

// environmentName is what environmentName() and printing report.
func (rt *Runtime) environmentName(r EnvRef) string {
	switch r {
	case rt.GlobalEnv:
		return "R_GlobalEnv"
	case rt.BaseEnv:
		return "base"
	case rt.EmptyEnv:
		return "R_EmptyEnv"
	}
	if e, err := rt.envs.get(r); err == nil {
		return e.Name
	}
	return ""
}

type SymtabE struct {
	Key string
	Val string
}

type SymtabSorter []*SymtabE

func (a SymtabSorter) Len() int           { return len(a) }
func (a SymtabSorter) Swap(i, j int)      { a[i], a[j] = a[j], a[i] }
func (a SymtabSorter) Less(i, j int) bool { return a[i].Key < a[j].Key }

// Show renders the bindings of r, one per line, for the REPL .ls command.
func (rt *Runtime) Show(r EnvRef, label string) (s string, err error) {
	e, err := rt.Env(r)
	if err != nil {
		return "", err
	}
	s += fmt.Sprintf(" %s %s (%v)\n", label, rt.environmentName(r), r)
	if r == rt.BaseEnv {
		s += fmt.Sprintf("     (base environment - %d bindings omitted for brevity)\n", len(e.Map))
		return
	}
	if len(e.Map) == 0 {
		s += "     empty-frame: no bindings\n"
		return
	}
	sortme := []*SymtabE{}
	for name, b := range e.Map {
		val := deparseOneLine(b.Value)
		if b.Missing {
			val += " [missing]"
		}
		sortme = append(sortme, &SymtabE{Key: name, Val: val})
	}
	sort.Sort(SymtabSorter(sortme))
	for i := range sortme {
		s += fmt.Sprintf("     %s -> %s\n", sortme[i].Key, sortme[i].Val)
	}
	return
}
