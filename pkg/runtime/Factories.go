package runtime

import (
	"sync"

	"github.com/simplelauncher/sml/pkg/contracts/iframework"
	"github.com/simplelauncher/sml/pkg/faults"
)

var (
	factoriesMutex sync.Mutex
	factories      = make(map[string]iframework.Factory)
)

// RegisterFactory publishes a container factory under a name. The host
// environment embedding the launcher calls this before running a command.
func RegisterFactory(name string, factory iframework.Factory) {
	factoriesMutex.Lock()
	defer factoriesMutex.Unlock()
	factories[name] = factory
}

// UnregisterFactory removes a registration, which mostly serves the tests.
func UnregisterFactory(name string) {
	factoriesMutex.Lock()
	defer factoriesMutex.Unlock()
	delete(factories, name)
}

// ResolveFactory returns the single registered factory. Having none or more
// than one is a setup error of the host environment.
func ResolveFactory() (iframework.Factory, error) {
	factoriesMutex.Lock()
	defer factoriesMutex.Unlock()

	if len(factories) != 1 {
		return nil, faults.Newf(faults.Container, "exactly one framework factory required, %d registered", len(factories))
	}

	for _, factory := range factories {
		return factory, nil
	}

	return nil, nil
}
