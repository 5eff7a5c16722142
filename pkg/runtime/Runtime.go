package runtime

import (
	"sync"
	"time"

	"github.com/simplelauncher/sml/pkg/contracts/iframework"
	"github.com/simplelauncher/sml/pkg/faults"
	"go.uber.org/zap"
)

// Runtime wraps a container instance and drives its lifecycle: start, the
// restart-on-update loop, waiting for the stop and the kill switch. The kill
// flag and the start loop synchronize on one mutex, so a stop can never race
// with a restart.
type Runtime struct {
	framework       iframework.Framework
	properties      map[string]string
	shutdownTimeout time.Duration
	mutex           sync.Mutex
	killed          bool
	log             *zap.Logger
}

// NewRuntime creates and initializes a container from the effective
// framework properties.
func NewRuntime(properties map[string]string, factory iframework.Factory, log *zap.Logger) (*Runtime, error) {
	framework, err := factory.New(properties)
	if err != nil {
		return nil, faults.Wrap(faults.Container, err, "could not create the framework")
	}

	if err = framework.Init(); err != nil {
		return nil, faults.Wrap(faults.Container, err, "could not initialize the framework")
	}

	effective := make(map[string]string, len(properties))
	for name, value := range properties {
		effective[name] = value
	}

	return &Runtime{
		framework:  framework,
		properties: effective,
		log:        log,
	}, nil
}

func (r *Runtime) Framework() iframework.Framework {
	return r.framework
}

// Properties returns the effective framework properties the container was
// created with.
func (r *Runtime) Properties() map[string]string {
	return r.properties
}

// ShutdownTimeout bounds the waiting for the container to terminate. Zero
// waits indefinitely.
func (r *Runtime) ShutdownTimeout(value time.Duration) {
	r.shutdownTimeout = value
}

// Launch starts the container and keeps restarting it while it stops for an
// update, unless killed meanwhile. It returns false when the start was
// aborted by a kill that arrived before entering the loop body.
func (r *Runtime) Launch(onStart func()) (bool, error) {
	for {
		r.log.Debug("framework to be started")

		r.mutex.Lock()

		if r.killed {
			r.mutex.Unlock()
			r.log.Debug("framework start aborted")
			return false, nil
		}

		if err := r.framework.Start(); err != nil {
			r.mutex.Unlock()
			return false, faults.Wrap(faults.Container, err, "failed to start the framework")
		}

		if onStart != nil {
			onStart()
		}

		r.mutex.Unlock()

		event, err := r.framework.WaitForStop(0)
		if err != nil {
			return false, faults.Wrap(faults.Container, err, "failed waiting for the framework to stop")
		}

		if event != iframework.StoppedUpdate {
			r.log.Debug("framework stopped")
			return true, nil
		}

		r.log.Debug("framework stopped due to a system bundle update and shall be restarted")
	}
}

// Stop requests a regular stop and waits within the shutdown timeout. It
// reports whether the container terminated.
func (r *Runtime) Stop() (bool, error) {
	r.log.Debug("framework to be stopped")

	if err := r.framework.Stop(); err != nil {
		return false, faults.Wrap(faults.Container, err, "failed to stop the framework")
	}

	r.waitForStop()
	return !r.framework.Active(), nil
}

// Kill stops the container and prevents the launch loop from restarting it.
func (r *Runtime) Kill() bool {
	r.mutex.Lock()
	r.killed = true
	r.log.Debug("framework to be killed")
	err := r.framework.Stop()
	r.mutex.Unlock()

	if err != nil {
		r.log.Warn("stopping the framework finished with an error", zap.Error(err))
	}

	r.waitForStop()
	return !r.framework.Active()
}

// Running reports whether the container is active or in a transition.
func (r *Runtime) Running() bool {
	return r.framework.Active()
}

func (r *Runtime) waitForStop() {
	event, err := r.framework.WaitForStop(r.shutdownTimeout)
	if err != nil {
		r.log.Warn("waiting for the framework to terminate failed", zap.Error(err))
		return
	}

	if event == iframework.Timedout {
		r.log.Warn("timeout when waiting for framework to terminate")
	}
}
