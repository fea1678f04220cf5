package metacard

import (
	"sync"

	"github.com/eluv-io/errors-go"
)

// Registry holds the metacard types registered with the system in
// registration order. It is safe for concurrent use.
type Registry struct {
	mutex sync.RWMutex
	types []*Type
}

// NewRegistry creates a registry with the given types. Nil types and types
// whose name is already registered are ignored.
func NewRegistry(types ...*Type) *Registry {
	r := &Registry{}
	for _, t := range types {
		_ = r.Register(t)
	}
	return r
}

// Register appends the given type to the registry. Returns an error if the
// type is nil, has an empty name or a type with the same name is already
// registered.
func (r *Registry) Register(t *Type) error {
	e := errors.Template("Registry.Register", errors.K.Invalid)
	if t == nil {
		return e("reason", "type is nil")
	}
	if t.Name() == "" {
		return e("reason", "type name is empty")
	}

	r.mutex.Lock()
	defer r.mutex.Unlock()

	if Find(r.types, t.Name()) != nil {
		return e(errors.K.Exist, "reason", "type already registered", "metacard_type", t.Name())
	}
	r.types = append(r.types, t)
	return nil
}

// Unregister removes the named type. Returns true if the type was registered.
func (r *Registry) Unregister(name string) bool {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	for i, t := range r.types {
		if t.Name() == name {
			r.types = append(r.types[:i:i], r.types[i+1:]...)
			return true
		}
	}
	return false
}

// Types returns a snapshot of the registered types in registration order.
func (r *Registry) Types() []*Type {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	res := make([]*Type, len(r.types))
	copy(res, r.types)
	return res
}

// Lookup returns the registered type with the given name.
func (r *Registry) Lookup(name string) (*Type, bool) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	t := Find(r.types, name)
	return t, t != nil
}
