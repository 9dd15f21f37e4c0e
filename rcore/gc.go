package rcore

// collect marks every environment reachable from the roots and releases
// the rest. Roots are the three singletons, the call and handler stacks,
// preserved values and extra. It returns the number of environments
// released.
func (rt *Runtime) collect(extra ...Value) int {
	m := &marker{rt: rt}
	m.env(rt.EmptyEnv)
	m.env(rt.BaseEnv)
	m.env(rt.GlobalEnv)
	for i := 0; i < rt.frames.Size(); i++ {
		f := rt.frames.At(i).(*CallFrame)
		m.env(f.Env)
		m.env(f.SysParent)
		m.value(f.Call)
		m.value(f.Fn)
		m.args(f.PromArgs)
		for _, e := range f.onExit {
			m.value(e)
		}
		if f.dispatch != nil {
			m.env(f.dispatch.callEnv)
			m.env(f.dispatch.defEnv)
		}
	}
	for i := 0; i < rt.handlers.Size(); i++ {
		h := rt.handlers.At(i).(*handlerEntry)
		m.value(h.handler)
		m.env(h.env)
	}
	for v := range rt.preserved {
		m.value(v)
	}
	for _, v := range extra {
		m.value(v)
	}

	released := 0
	a := &rt.envs
	for id, e := range a.slots {
		if e == nil {
			continue
		}
		if e.marked {
			e.marked = false
			continue
		}
		a.release(int32(id))
		released++
	}
	return released
}

type marker struct {
	rt *Runtime
}

func (m *marker) env(r EnvRef) {
	for !r.IsZero() {
		e, err := m.rt.envs.get(r)
		if err != nil || e.marked {
			return
		}
		e.marked = true
		for _, b := range e.Map {
			m.value(b.Value)
		}
		m.attrs(e.attrs)
		r = e.Parent
	}
}

func (m *marker) args(args []Arg) {
	for _, a := range args {
		m.value(a.Value)
	}
}

func (m *marker) attrs(a *Attrs) {
	a.Each(func(_ string, v Value) { m.value(v) })
}

func (m *marker) value(v Value) {
	switch x := v.(type) {
	case nil:
		return
	case *EnvValue:
		m.env(x.Ref)
		return
	case *Closure:
		m.env(x.Env)
		m.args(x.Formals)
		m.value(x.Body)
	case *Promise:
		m.env(x.Env)
		m.value(x.Expr)
		m.value(x.value)
	case *List:
		for _, e := range x.V {
			m.value(e)
		}
	case *Language:
		m.value(x.Fn)
		m.args(x.Args)
	case *Pairlist:
		m.args(x.Args)
	case *Dots:
		m.args(x.Args)
	}
	m.attrs(v.Attrs())
}
