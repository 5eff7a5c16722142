package version

import "strings"

type Version struct {
	Launcher string
}

func New(version string) *Version {
	return &Version{
		Launcher: strings.TrimSpace(version),
	}
}

func (v *Version) String() string {
	if v.Launcher == "" {
		return "dev"
	}

	return v.Launcher
}
