package domain

import "fmt"

// Package identifies the published CLI package and the version running now.
type Package struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

// UpdateNotice describes a newer compatible release of the CLI.
type UpdateNotice struct {
	PackageName    string `json:"package_name"`
	CurrentVersion string `json:"current_version"`
	LatestVersion  string `json:"latest_version"`
	UpgradeCommand string `json:"upgrade_command"`
}

// NewUpdateNotice builds a notice with the manual upgrade command filled in.
func NewUpdateNotice(pkg, current, latest string) *UpdateNotice {
	return &UpdateNotice{
		PackageName:    pkg,
		CurrentVersion: current,
		LatestVersion:  latest,
		UpgradeCommand: fmt.Sprintf("npm install -g %s", pkg),
	}
}

func (n *UpdateNotice) String() string {
	return fmt.Sprintf("please update %s manually, current version: %s, latest version: %s. update command: %s",
		n.PackageName, n.CurrentVersion, n.LatestVersion, n.UpgradeCommand)
}
