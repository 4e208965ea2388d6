package wpaicg

import "fmt"

// Model identifies one of the chat models the widget backend can serve.
type Model int

const (
	ModelGPT4o Model = iota
	ModelGPT4oMini
	ModelGPT4oLatest
)

const DefaultModel = ModelGPT4o

// APIName returns the backend's identifier for the model. The variant set is
// closed; an unmapped value is a programming error and panics rather than
// going over the wire silently.
func (m Model) APIName() string {
	switch m {
	case ModelGPT4o:
		return "gpt-4o"
	case ModelGPT4oMini:
		return "gpt-4o-mini"
	case ModelGPT4oLatest:
		return "chatgpt-4o-latest"
	default:
		panic(fmt.Sprintf("unknown chat model %d", int(m)))
	}
}

func (m Model) String() string {
	return m.APIName()
}

// Models lists every supported model variant.
func Models() []Model {
	return []Model{ModelGPT4o, ModelGPT4oMini, ModelGPT4oLatest}
}

// ParseModel maps a backend identifier back to its Model variant.
func ParseModel(name string) (Model, error) {
	for _, m := range Models() {
		if m.APIName() == name {
			return m, nil
		}
	}
	return 0, fmt.Errorf("unsupported chat model '%s'", name)
}
