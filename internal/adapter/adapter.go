package adapter

import (
	"fmt"
	"sort"

	"LeagueSync/internal/interfaces"

	"github.com/sirupsen/logrus"
)

var factoryRegistry = make(map[string]interfaces.SourceFactory)

// Register is called from a source package's init to make it selectable by name.
func Register(name string, factory interfaces.SourceFactory) {
	if factory == nil {
		panic(fmt.Sprintf("source %s: nil factory", name))
	}
	if _, exists := factoryRegistry[name]; exists {
		logrus.Warnf("source %s already registered, overriding", name)
	}
	factoryRegistry[name] = factory
}

// GetFactory returns the factory registered under name.
func GetFactory(name string) (interfaces.SourceFactory, bool) {
	factory, ok := factoryRegistry[name]
	return factory, ok
}

// ListFactories returns the registered source names, sorted.
func ListFactories() []string {
	names := make([]string, 0, len(factoryRegistry))
	for name := range factoryRegistry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
