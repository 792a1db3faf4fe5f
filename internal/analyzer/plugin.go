package analyzer

import "fmt"

// PluginFactory builds an Analyzer for a bus descriptor whose
// custom_analyzer key names a registered plugin. No concrete plugin ships
// with this engine (scripting integration is out of scope); the registry
// exists purely as the extension point spec.md's custom_analyzer key
// implies.
type PluginFactory func(name string) (Analyzer, error)

var plugins = map[string]PluginFactory{}

// RegisterPlugin makes a custom analyzer available under name for
// BusDescriptor.CustomAnalyzer to select.
func RegisterPlugin(name string, factory PluginFactory) {
	plugins[name] = factory
}

// buildPlugin resolves a registered custom_analyzer by name.
func buildPlugin(name, analyzerName string) (Analyzer, error) {
	factory, ok := plugins[name]
	if !ok {
		return nil, fmt.Errorf("custom_analyzer %q is not registered", name)
	}
	return factory(analyzerName)
}
