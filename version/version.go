// Package version provides service package naming and version compatibility
// helpers.
package version

import (
	"fmt"
	"strings"

	"golang.org/x/mod/module"
	"golang.org/x/mod/semver"
)

const servicePrefix = "wd-launcher-"
const serviceSuffix = "-service"

// ServicePackageName expands a short service name into its canonical package
// name: "sauce" becomes "wd-launcher-sauce-service". Names already in
// canonical form pass through unchanged.
func ServicePackageName(name string) string {
	if strings.HasPrefix(name, servicePrefix) && strings.HasSuffix(name, serviceSuffix) {
		return name
	}
	return servicePrefix + name + serviceSuffix
}

// ServiceShortName is the inverse of ServicePackageName.
func ServiceShortName(pkg string) string {
	short := strings.TrimPrefix(pkg, servicePrefix)
	return strings.TrimSuffix(short, serviceSuffix)
}

// ValidateModulePath reports whether p is usable as a Go module path for a
// service plugin.
func ValidateModulePath(p string) error {
	if err := module.CheckPath(p); err != nil {
		return fmt.Errorf("invalid service module path %q: %w", p, err)
	}
	return nil
}

// Canonical normalizes a version string to canonical semver form, accepting
// versions with or without the leading "v".
func Canonical(v string) (string, error) {
	if !strings.HasPrefix(v, "v") {
		v = "v" + v
	}
	if !semver.IsValid(v) {
		return "", fmt.Errorf("invalid version %q", v)
	}
	return semver.Canonical(v), nil
}

// Compatible reports whether the running launcher version satisfies the
// minimum version a service plugin requires. Compatibility is same major
// version and current >= required.
func Compatible(current, required string) error {
	cur, err := Canonical(current)
	if err != nil {
		return fmt.Errorf("launcher version: %w", err)
	}
	req, err := Canonical(required)
	if err != nil {
		return fmt.Errorf("required version: %w", err)
	}
	if semver.Major(cur) != semver.Major(req) {
		return fmt.Errorf("incompatible major version: launcher %s, service requires %s", cur, req)
	}
	if semver.Compare(cur, req) < 0 {
		return fmt.Errorf("launcher %s is older than required %s", cur, req)
	}
	return nil
}
