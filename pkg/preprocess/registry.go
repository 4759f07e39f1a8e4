package preprocess

import (
	"fmt"
	"reflect"
	"sort"
	"sync"
)

// Factory constructs a Preprocessor for a 16-bit mono PCM stream of the
// given chunk length. Implementations register themselves via
// RegisterFactory (usually from an init of a build-tagged package, so that
// a blank import is enough to enable a backend).
type Factory interface {
	NewPreprocessor(chunkSizeSamples int, autoGain float32, noiseSuppression int) (Preprocessor, error)
}

type factoryWithPriority struct {
	Priority int
	Factory
}

var (
	factoryRegistry       = map[reflect.Type]factoryWithPriority{}
	factoryRegistryLocker sync.Mutex
)

func RegisterFactory(
	priority int,
	factory Factory,
) {
	t := reflect.ValueOf(factory).Type()
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	factoryRegistryLocker.Lock()
	defer factoryRegistryLocker.Unlock()
	if _, ok := factoryRegistry[t]; ok {
		panic(fmt.Errorf("there is already registered a factory of Preprocessor of type %v", t))
	}
	factoryRegistry[t] = factoryWithPriority{
		Priority: priority,
		Factory:  factory,
	}
}

func Factories() []Factory {
	factoryRegistryLocker.Lock()
	defer factoryRegistryLocker.Unlock()

	var factoriesWithPriorities []factoryWithPriority
	for _, factory := range factoryRegistry {
		factoriesWithPriorities = append(factoriesWithPriorities, factory)
	}
	sort.Slice(factoriesWithPriorities, func(i, j int) bool {
		return factoriesWithPriorities[i].Priority > factoriesWithPriorities[j].Priority
	})

	var factories []Factory
	for _, factory := range factoriesWithPriorities {
		factories = append(factories, factory.Factory)
	}

	return factories
}
