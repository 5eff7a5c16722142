package runtime

import (
	"io"
	"strings"
	"testing"

	"github.com/simplelauncher/sml/pkg/contracts/iframework"
	"github.com/simplelauncher/sml/pkg/deploying"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newRuntime(t *testing.T, framework *fakeFramework) *Runtime {
	t.Helper()

	result, err := NewRuntime(map[string]string{}, &fakeFactory{framework: framework}, zap.NewNop())
	require.NoError(t, err)
	return result
}

func TestRuntimeInitializes(t *testing.T) {
	framework := newFakeFramework()
	newRuntime(t, framework)
	assert.True(t, framework.inited)
}

func TestLaunchRestartsOnUpdate(t *testing.T) {
	framework := newFakeFramework()
	framework.stops <- iframework.StoppedUpdate
	framework.stops <- iframework.Stopped

	rt := newRuntime(t, framework)

	completed, err := rt.Launch(nil)
	require.NoError(t, err)
	assert.True(t, completed)
	assert.Equal(t, 2, framework.starts)
}

func TestKillPreventsLaunch(t *testing.T) {
	framework := newFakeFramework()
	rt := newRuntime(t, framework)

	rt.Kill()

	completed, err := rt.Launch(nil)
	require.NoError(t, err)
	assert.False(t, completed)
	assert.Equal(t, 0, framework.starts)
}

func TestKillStopsRestartLoop(t *testing.T) {
	framework := newFakeFramework()
	rt := newRuntime(t, framework)

	launched := make(chan struct{})
	done := make(chan bool, 1)

	go func() {
		completed, _ := rt.Launch(func() {
			select {
			case <-launched:
			default:
				close(launched)
			}
		})
		done <- completed
	}()

	<-launched
	rt.Kill()

	assert.True(t, <-done)
	assert.False(t, framework.Active())
}

func TestDeployInstallsWithSettings(t *testing.T) {
	framework := newFakeFramework()
	framework.addBundle("system:root")

	rt := newRuntime(t, framework)

	deployment := deploying.NewUmbrella()
	entry := deployment.Bundle("file:/store/a.jar")
	entry.Actions = deploying.Install
	entry.StartLevel = 20
	entry.Autostart = deploying.AutostartStarted
	entry.Source = stringSource("archive")

	rt.Deploy(deployment)

	installed, found := framework.Bundle("file:/store/a.jar")
	require.True(t, found)

	bundle := installed.(*fakeBundle)
	assert.Equal(t, 20, bundle.startLevel)
	assert.True(t, bundle.started)
}

func TestDeploySkipsInstallWithoutSource(t *testing.T) {
	framework := newFakeFramework()
	rt := newRuntime(t, framework)

	deployment := deploying.NewUmbrella()
	entry := deployment.Bundle("file:/store/a.jar")
	entry.Actions = deploying.Install

	rt.Deploy(deployment)

	_, found := framework.Bundle("file:/store/a.jar")
	assert.False(t, found)
}

func TestDeployUpdatesInstalled(t *testing.T) {
	framework := newFakeFramework()
	framework.addBundle("system:root")
	existing := framework.addBundle("file:/store/a.jar")

	rt := newRuntime(t, framework)

	deployment := deploying.NewUmbrella()
	entry := deployment.Bundle("file:/store/a.jar")
	entry.Actions = deploying.Install | deploying.Update
	entry.StartLevel = 7
	entry.Autostart = deploying.AutostartStopped
	entry.Source = stringSource("archive-2")

	rt.Deploy(deployment)

	assert.Equal(t, 1, existing.updated)
	assert.Equal(t, 7, existing.startLevel)
	assert.False(t, existing.started)
}

func TestDeployUninstallsWithoutSource(t *testing.T) {
	framework := newFakeFramework()
	framework.addBundle("system:root")
	existing := framework.addBundle("file:/store/old.jar")

	rt := newRuntime(t, framework)

	deployment := deploying.NewUmbrella()
	entry := deployment.Bundle("file:/store/old.jar")
	entry.Actions = deploying.Uninstall

	rt.Deploy(deployment)

	assert.Equal(t, iframework.Uninstalled, existing.state)
}

func TestDeployKeepsInstalledWithSourceAndUninstallAction(t *testing.T) {
	framework := newFakeFramework()
	framework.addBundle("system:root")
	existing := framework.addBundle("file:/store/keep.jar")

	rt := newRuntime(t, framework)

	deployment := deploying.NewUmbrella()
	entry := deployment.Bundle("file:/store/keep.jar")
	entry.Actions = deploying.Uninstall
	entry.Source = stringSource("archive")

	rt.Deploy(deployment)

	assert.Equal(t, iframework.Installed, existing.state)
}

func TestDeployContinuesAfterBundleFailure(t *testing.T) {
	framework := newFakeFramework()
	framework.addBundle("system:root")
	failing := framework.addBundle("file:/store/bad.jar")
	failing.failOps = true

	rt := newRuntime(t, framework)

	deployment := deploying.NewUmbrella()

	bad := deployment.Bundle("file:/store/bad.jar")
	bad.Actions = deploying.Update
	bad.Source = stringSource("broken")

	good := deployment.Bundle("file:/store/good.jar")
	good.Actions = deploying.Install
	good.Source = stringSource("fine")

	rt.Deploy(deployment)

	_, found := framework.Bundle("file:/store/good.jar")
	assert.True(t, found)
}

func TestUndeployByPattern(t *testing.T) {
	framework := newFakeFramework()
	system := framework.addBundle("file:/store/system.jar")
	doomed := framework.addBundle("file:/store/plugins/doomed.jar")
	spared := framework.addBundle("file:/elsewhere/spared.jar")

	rt := newRuntime(t, framework)
	rt.Undeploy([]string{"file:/store/**"})

	// The system bundle is excluded even when its location matches
	assert.Equal(t, iframework.Installed, system.state)
	assert.Equal(t, iframework.Uninstalled, doomed.state)
	assert.Equal(t, iframework.Installed, spared.state)
}

func TestDeploySkipsFragmentAutostart(t *testing.T) {
	framework := newFakeFramework()
	framework.addBundle("system:root")
	fragment := framework.addBundle("file:/store/fragment.jar")
	fragment.fragment = true

	rt := newRuntime(t, framework)

	deployment := deploying.NewUmbrella()
	entry := deployment.Bundle("file:/store/fragment.jar")
	entry.Actions = deploying.Update
	entry.Autostart = deploying.AutostartStarted
	entry.Source = stringSource("archive")

	rt.Deploy(deployment)

	assert.False(t, fragment.started)
	assert.Equal(t, 1, fragment.updated)
}

func stringSource(content string) *deploying.Source {
	return &deploying.Source{
		Name: "memory",
		Open: func() (io.ReadCloser, error) {
			return io.NopCloser(strings.NewReader(content)), nil
		},
	}
}
