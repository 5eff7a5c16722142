package deploying

import (
	"testing"

	"github.com/go-playground/assert/v2"
)

func TestUmbrellaBundleInheritsLocationSettings(t *testing.T) {
	umbrella := NewUmbrella()
	umbrella.Defaults().StartLevel = 1

	location := umbrella.Location("file:/store/")
	location.StartLevel = 5
	location.Actions = Install | Update

	bound := umbrella.Bundle("file:/store/a.jar")
	assert.Equal(t, 5, bound.StartLevel)
	assert.Equal(t, Install|Update, bound.Actions)

	free := umbrella.Bundle("custom:b.jar")
	assert.Equal(t, 1, free.StartLevel)
}

func TestUmbrellaLongestPrefixWins(t *testing.T) {
	umbrella := NewUmbrella()
	umbrella.Location("file:/store/").StartLevel = 5
	umbrella.Location("file:/store/plugins/").StartLevel = 9

	assert.Equal(t, 9, umbrella.Bundle("file:/store/plugins/x.jar").StartLevel)
	assert.Equal(t, 5, umbrella.Bundle("file:/store/y.jar").StartLevel)
}

func TestUmbrellaSettingsSnapshotAtCreation(t *testing.T) {
	umbrella := NewUmbrella()

	location := umbrella.Location("file:/store/")
	location.StartLevel = 5

	early := umbrella.Bundle("file:/store/early.jar")
	location.StartLevel = 7
	late := umbrella.Bundle("file:/store/late.jar")

	// The bundle keeps the settings that applied when it was created
	assert.Equal(t, 5, early.StartLevel)
	assert.Equal(t, 7, late.StartLevel)
}

func TestUmbrellaBundleIdentity(t *testing.T) {
	umbrella := NewUmbrella()

	first := umbrella.Bundle("file:/store/a.jar")
	second := umbrella.Bundle("file:/store/a.jar")
	assert.Equal(t, true, first == second)
}

func TestLocationURI(t *testing.T) {
	uri := LocationURI("/store/bundles")
	assert.Equal(t, "file:/store/bundles/", uri)
}
