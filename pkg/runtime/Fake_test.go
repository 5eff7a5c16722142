package runtime

import (
	"io"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/simplelauncher/sml/pkg/contracts/iframework"
)

// fakeFactory and fakeFramework substitute the container supplied by the
// host environment.

type fakeFactory struct {
	framework *fakeFramework
	err       error
}

func (f *fakeFactory) New(properties map[string]string) (iframework.Framework, error) {
	if f.err != nil {
		return nil, f.err
	}

	f.framework.properties = properties
	return f.framework, nil
}

type fakeFramework struct {
	mutex      sync.Mutex
	properties map[string]string
	bundles    []*fakeBundle
	stops      chan iframework.StopEvent
	startLevel int
	nextID     int64
	inited     bool
	active     bool
	starts     int
	failStart  bool
}

func newFakeFramework() *fakeFramework {
	return &fakeFramework{
		stops:  make(chan iframework.StopEvent, 16),
		nextID: iframework.SystemBundleID,
	}
}

func (f *fakeFramework) addBundle(location string) *fakeBundle {
	f.mutex.Lock()
	defer f.mutex.Unlock()

	bundle := &fakeBundle{id: f.nextID, location: location, state: iframework.Installed}
	f.nextID++
	f.bundles = append(f.bundles, bundle)
	return bundle
}

func (f *fakeFramework) Init() error {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	f.inited = true
	return nil
}

func (f *fakeFramework) Start() error {
	f.mutex.Lock()
	defer f.mutex.Unlock()

	if f.failStart {
		return errors.New("start refused")
	}

	f.active = true
	f.starts++
	return nil
}

func (f *fakeFramework) Stop() error {
	f.mutex.Lock()
	defer f.mutex.Unlock()

	if f.active {
		f.active = false
		// Both the launch loop and the stop caller may wait concurrently
		f.stops <- iframework.Stopped
		f.stops <- iframework.Stopped
	}

	return nil
}

func (f *fakeFramework) Active() bool {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	return f.active
}

func (f *fakeFramework) triggerUpdateRestart() {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	f.stops <- iframework.StoppedUpdate
}

func (f *fakeFramework) WaitForStop(timeout time.Duration) (iframework.StopEvent, error) {
	select {
	case event := <-f.stops:
		return event, nil
	default:
		if !f.Active() {
			return iframework.Stopped, nil
		}
	}

	if timeout == 0 {
		return <-f.stops, nil
	}

	select {
	case event := <-f.stops:
		return event, nil
	case <-time.After(timeout):
		return iframework.Timedout, nil
	}
}

func (f *fakeFramework) Bundle(location string) (iframework.Bundle, bool) {
	f.mutex.Lock()
	defer f.mutex.Unlock()

	for _, bundle := range f.bundles {
		if bundle.location == location && bundle.state != iframework.Uninstalled {
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
		if bundle.state != iframework.Uninstalled {
			result = append(result, bundle)
		}
	}

	return result
}

func (f *fakeFramework) InstallBundle(location string, source io.Reader) (iframework.Bundle, error) {
	if _, err := io.ReadAll(source); err != nil {
		return nil, err
	}

	return f.addBundle(location), nil
}

func (f *fakeFramework) StartLevel() int {
	return f.startLevel
}

type fakeBundle struct {
	id         int64
	location   string
	state      iframework.BundleState
	startLevel int
	fragment   bool
	started    bool
	updated    int
	failOps    bool
}

func (b *fakeBundle) ID() int64                        { return b.id }
func (b *fakeBundle) Location() string                 { return b.location }
func (b *fakeBundle) State() iframework.BundleState    { return b.state }
func (b *fakeBundle) SymbolicName() string             { return b.location }
func (b *fakeBundle) Version() string                  { return "1.0.0" }
func (b *fakeBundle) Fragment() bool                   { return b.fragment }

func (b *fakeBundle) Update(source io.Reader) error {
	if b.failOps {
		return errors.New("update refused")
	}

	if _, err := io.ReadAll(source); err != nil {
		return err
	}

	b.updated++
	return nil
}

func (b *fakeBundle) Uninstall() error {
	if b.failOps {
		return errors.New("uninstall refused")
	}

	b.state = iframework.Uninstalled
	return nil
}

func (b *fakeBundle) SetStartLevel(level int) error {
	if b.failOps {
		return errors.New("start level refused")
	}

	b.startLevel = level
	return nil
}

func (b *fakeBundle) Start() error {
	if b.failOps {
		return errors.New("start refused")
	}

	b.started = true
	return nil
}

func (b *fakeBundle) Stop() error {
	if b.failOps {
		return errors.New("stop refused")
	}

	b.started = false
	return nil
}
