package commands

import (
	"io"
	"sync"
	"time"

	"github.com/simplelauncher/sml/pkg/contracts/iframework"
)

// A minimal container substitute, just enough for driving the command flows.

type fakeFactory struct {
	mutex     sync.Mutex
	framework *fakeFramework
}

func (f *fakeFactory) New(properties map[string]string) (iframework.Framework, error) {
	f.mutex.Lock()
	defer f.mutex.Unlock()

	f.framework = &fakeFramework{properties: properties}
	f.framework.install("system:root")
	return f.framework, nil
}

func (f *fakeFactory) last() *fakeFramework {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	return f.framework
}

type fakeFramework struct {
	mutex      sync.Mutex
	properties map[string]string
	bundles    []*fakeBundle
	active     bool
	nextID     int64
}

func (f *fakeFramework) install(location string) *fakeBundle {
	bundle := &fakeBundle{id: f.nextID, location: location}
	f.nextID++
	f.bundles = append(f.bundles, bundle)
	return bundle
}

func (f *fakeFramework) Init() error { return nil }

func (f *fakeFramework) Start() error {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	f.active = true
	return nil
}

func (f *fakeFramework) Stop() error {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	f.active = false
	return nil
}

func (f *fakeFramework) Active() bool {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	return f.active
}

func (f *fakeFramework) WaitForStop(timeout time.Duration) (iframework.StopEvent, error) {
	for {
		if !f.Active() {
			return iframework.Stopped, nil
		}

		time.Sleep(5 * time.Millisecond)
	}
}

func (f *fakeFramework) Bundle(location string) (iframework.Bundle, bool) {
	f.mutex.Lock()
	defer f.mutex.Unlock()

	for _, bundle := range f.bundles {
		if bundle.location == location && !bundle.uninstalled {
			return bundle, true
		}
	}

	return nil, false
}

func (f *fakeFramework) Bundles() []iframework.Bundle {
	f.mutex.Lock()
	defer f.mutex.Unlock()

	result := make([]iframework.Bundle, 0, len(f.bundles))
	for _, bundle := range f.bundles {
		if !bundle.uninstalled {
			result = append(result, bundle)
		}
	}

	return result
}

func (f *fakeFramework) InstallBundle(location string, source io.Reader) (iframework.Bundle, error) {
	if _, err := io.ReadAll(source); err != nil {
		return nil, err
	}

	f.mutex.Lock()
	defer f.mutex.Unlock()
	return f.install(location), nil
}

func (f *fakeFramework) StartLevel() int { return 0 }

func (f *fakeFramework) installed() []string {
	f.mutex.Lock()
	defer f.mutex.Unlock()

	var result []string
	for _, bundle := range f.bundles {
		if !bundle.uninstalled && bundle.id != iframework.SystemBundleID {
			result = append(result, bundle.location)
		}
	}

	return result
}

type fakeBundle struct {
	id          int64
	location    string
	startLevel  int
	started     bool
	uninstalled bool
}

func (b *fakeBundle) ID() int64                     { return b.id }
func (b *fakeBundle) Location() string              { return b.location }
func (b *fakeBundle) SymbolicName() string          { return b.location }
func (b *fakeBundle) Version() string               { return "1.0.0" }
func (b *fakeBundle) Fragment() bool                { return false }
func (b *fakeBundle) Start() error                  { b.started = true; return nil }
func (b *fakeBundle) Stop() error                   { b.started = false; return nil }
func (b *fakeBundle) Uninstall() error              { b.uninstalled = true; return nil }
func (b *fakeBundle) SetStartLevel(level int) error { b.startLevel = level; return nil }

func (b *fakeBundle) State() iframework.BundleState {
	if b.uninstalled {
		return iframework.Uninstalled
	}

	return iframework.Installed
}

func (b *fakeBundle) Update(source io.Reader) error {
	_, err := io.ReadAll(source)
	return err
}
