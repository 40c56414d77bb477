package checkpoint

import (
	"errors"
	"strconv"
	"strings"
)

var ErrNoParameterMapping = errors.New("checkpoint does not expose a parameter mapping")

// Shape is the size of a tensor along each dimension.
type Shape []int

func (s Shape) String() string {
	dims := make([]string, len(s))
	for i, d := range s {
		dims[i] = strconv.Itoa(d)
	}
	return "[" + strings.Join(dims, ", ") + "]"
}

type Parameter struct {
	Name  string
	Shape Shape
}

// Checkpoint is the common capability of every checkpoint variant: producing
// the ordered mapping from parameter name to tensor shape.
type Checkpoint interface {
	Parameters() ([]Parameter, error)
}

// StateDict is a checkpoint that was saved as a raw name to tensor mapping.
// Nested mappings are flattened into params with dotted names, keys holds the
// mapping's own top level keys.
type StateDict struct {
	keys   []string
	params []Parameter
}

var _ Checkpoint = (*StateDict)(nil)

func NewStateDict(params []Parameter) *StateDict {
	keys := make([]string, len(params))
	for i, p := range params {
		keys[i] = p.Name
	}
	return &StateDict{keys: keys, params: params}
}

func (s *StateDict) Parameters() ([]Parameter, error) {
	return s.params, nil
}

func (s *StateDict) Keys() []string {
	return s.keys
}

// ModelObject is a checkpoint that was saved as a whole model. It only has a
// parameter mapping if the pickled object carried module state.
type ModelObject struct {
	TypeName  string
	stateDict *StateDict
}

var _ Checkpoint = (*ModelObject)(nil)

func NewModelObject(typeName string, stateDict *StateDict) *ModelObject {
	return &ModelObject{TypeName: typeName, stateDict: stateDict}
}

func (m *ModelObject) HasParameterMapping() bool {
	return m.stateDict != nil
}

func (m *ModelObject) Parameters() ([]Parameter, error) {
	if m.stateDict == nil {
		return nil, &noMappingError{typeName: m.TypeName}
	}
	return m.stateDict.Parameters()
}

type noMappingError struct {
	typeName string
}

func (e *noMappingError) Error() string {
	return "checkpoint object of type " + e.typeName + " does not expose a parameter mapping"
}

func (e *noMappingError) Unwrap() error {
	return ErrNoParameterMapping
}
