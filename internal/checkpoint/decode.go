package checkpoint

import (
	"fmt"
	"io"

	"github.com/nlpodyssey/gopickle/pickle"
	"github.com/nlpodyssey/gopickle/pytorch"
	"github.com/nlpodyssey/gopickle/types"
)

// Loader deserializes the checkpoint file at path into its pickled object
// graph.
type Loader func(path string) (any, error)

// LoadFile reads a torch.save file. Tensor storages are materialised in host
// memory whatever device they were saved from. Classes that the pytorch
// package does not know about, such as torch.nn modules and user models, are
// resolved to generic objects that keep their pickled state.
func LoadFile(path string) (any, error) {
	return pytorch.LoadWithUnpickler(path, newUnpickler)
}

func newUnpickler(r io.Reader) pickle.Unpickler {
	u := pickle.NewUnpickler(r)
	u.FindClass = func(module, name string) (interface{}, error) {
		return &objectClass{module: module, name: name}, nil
	}
	return u
}

type objectClass struct {
	module string
	name   string
}

func (c *objectClass) String() string {
	return c.module + "." + c.name
}

// PyNew is used for NEWOBJ, which is how nn.Module instances are pickled.
func (c *objectClass) PyNew(args ...interface{}) (interface{}, error) {
	return &object{class: c, args: args}, nil
}

// Call is used for REDUCE of factory functions like torch._utils._rebuild_parameter.
func (c *objectClass) Call(args ...interface{}) (interface{}, error) {
	return &object{class: c, args: args}, nil
}

type object struct {
	class *objectClass
	args  []interface{}
	state interface{}
	attrs map[string]interface{}
}

func (o *object) PySetState(state interface{}) error {
	o.state = state
	return nil
}

func (o *object) PyDictSet(key, value interface{}) error {
	if o.attrs == nil {
		o.attrs = make(map[string]interface{})
	}
	o.attrs[fmt.Sprint(key)] = value
	return nil
}

func (o *object) attr(name string) (interface{}, bool) {
	if v, ok := o.attrs[name]; ok {
		return v, true
	}
	entries, ok := mappingEntries(o.state)
	if !ok {
		return nil, false
	}
	for _, e := range entries {
		if e.key == name {
			return e.value, true
		}
	}
	return nil, false
}

func (o *object) isModule() bool {
	_, hasParams := o.attr("_parameters")
	_, hasModules := o.attr("_modules")
	return hasParams || hasModules
}

type mappingEntry struct {
	key   string
	value interface{}
}

// mappingEntries lists the entries of a pickled dict in insertion order.
func mappingEntries(v interface{}) ([]mappingEntry, bool) {
	switch m := v.(type) {
	case *types.OrderedDict:
		entries := make([]mappingEntry, 0, m.List.Len())
		for el := m.List.Front(); el != nil; el = el.Next() {
			e := el.Value.(*types.OrderedDictEntry)
			entries = append(entries, mappingEntry{key: fmt.Sprint(e.Key), value: e.Value})
		}
		return entries, true
	case *types.Dict:
		entries := make([]mappingEntry, 0, len(*m))
		for _, e := range *m {
			entries = append(entries, mappingEntry{key: fmt.Sprint(e.Key), value: e.Value})
		}
		return entries, true
	}
	return nil, false
}

func tensorShape(v interface{}) (Shape, bool) {
	switch t := v.(type) {
	case *pytorch.Tensor:
		return append(Shape{}, t.Size...), true
	case *object:
		// nn.Parameter pickles as _rebuild_parameter(tensor, requires_grad, hooks)
		if t.class.name == "_rebuild_parameter" && len(t.args) > 0 {
			return tensorShape(t.args[0])
		}
	}
	return nil, false
}

func joinName(prefix, name string) string {
	if prefix == "" {
		return name
	}
	return prefix + "." + name
}

// Decode turns a deserialized checkpoint into one of the Checkpoint variants.
// Mappings become a StateDict, nested mappings are flattened with dotted
// names. Modules become a ModelObject with the state dict torch would report.
// Any other value is a ModelObject without a parameter mapping.
func Decode(obj any) (Checkpoint, error) {
	if o, ok := obj.(*object); ok {
		if !o.isModule() {
			return NewModelObject(o.class.String(), nil), nil
		}
		var params []Parameter
		if err := collectModule(o, "", &params); err != nil {
			return nil, err
		}
		return NewModelObject(o.class.String(), NewStateDict(params)), nil
	}

	if entries, ok := mappingEntries(obj); ok {
		var params []Parameter
		if err := collectMapping(obj, "", &params); err != nil {
			return nil, err
		}
		sd := NewStateDict(params)
		sd.keys = make([]string, len(entries))
		for i, e := range entries {
			sd.keys[i] = e.key
		}
		return sd, nil
	}

	return NewModelObject(fmt.Sprintf("%T", obj), nil), nil
}

func collectMapping(m interface{}, prefix string, params *[]Parameter) error {
	entries, _ := mappingEntries(m)
	for _, e := range entries {
		name := joinName(prefix, e.key)
		if shape, ok := tensorShape(e.value); ok {
			*params = append(*params, Parameter{Name: name, Shape: shape})
			continue
		}
		if _, ok := mappingEntries(e.value); ok {
			if err := collectMapping(e.value, name, params); err != nil {
				return err
			}
			continue
		}
		return fmt.Errorf("entry '%s' is not a tensor (%T)", name, e.value)
	}
	return nil
}

// nameSet reads a pickled set of strings. Protocol 4 and later emit a real
// set, older protocols reduce builtins.set over a list.
func nameSet(v interface{}) map[string]bool {
	names := make(map[string]bool)
	switch s := v.(type) {
	case *types.Set:
		for item := range *s {
			names[fmt.Sprint(item)] = true
		}
	case *types.FrozenSet:
		for item := range *s {
			names[fmt.Sprint(item)] = true
		}
	case *object:
		if s.class.name != "set" && s.class.name != "frozenset" {
			break
		}
		if len(s.args) == 0 {
			break
		}
		if items, ok := s.args[0].(*types.List); ok {
			for _, item := range *items {
				names[fmt.Sprint(item)] = true
			}
		}
	}
	return names
}

// collectModule mirrors nn.Module.state_dict: own parameters, then persistent
// buffers, then submodules depth first. None entries are skipped.
func collectModule(o *object, prefix string, params *[]Parameter) error {
	nonPersistent, _ := o.attr("_non_persistent_buffers_set")
	skip := nameSet(nonPersistent)

	for _, field := range []string{"_parameters", "_buffers"} {
		value, ok := o.attr(field)
		if !ok {
			continue
		}
		entries, _ := mappingEntries(value)
		for _, e := range entries {
			if e.value == nil {
				continue
			}
			if field == "_buffers" && skip[e.key] {
				continue
			}
			name := joinName(prefix, e.key)
			shape, ok := tensorShape(e.value)
			if !ok {
				return fmt.Errorf("%s entry '%s' is not a tensor (%T)", field, name, e.value)
			}
			*params = append(*params, Parameter{Name: name, Shape: shape})
		}
	}

	value, ok := o.attr("_modules")
	if !ok {
		return nil
	}
	entries, _ := mappingEntries(value)
	for _, e := range entries {
		if e.value == nil {
			continue
		}
		child, ok := e.value.(*object)
		if !ok {
			return fmt.Errorf("submodule '%s' has unexpected type %T", joinName(prefix, e.key), e.value)
		}
		if err := collectModule(child, joinName(prefix, e.key), params); err != nil {
			return err
		}
	}
	return nil
}
