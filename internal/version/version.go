// Package version contains ut1cat version information.
package version

// These can be set by the linker.  Unfortunately, we cannot set constants
// during linking, and Go doesn't have a concept of immutable variables, so to
// be thorough we have to only export them through getters.
var (
	branch     string
	committime string
	revision   string
	version    string
)

// name is the name of the program.
const name = "ut1cat"

// Branch returns the compiled-in value of the Git branch.
func Branch() (b string) {
	return branch
}

// CommitTime returns the compiled-in value of the commit time as a string.
func CommitTime() (t string) {
	return committime
}

// Revision returns the compiled-in value of the Git revision.
func Revision() (r string) {
	return revision
}

// Version returns the compiled-in value of the ut1cat version as a string.
func Version() (v string) {
	return version
}

// Name returns the name of the program.
func Name() (n string) {
	return name
}

// UserAgent returns the value of the Server and User-Agent headers, for
// example "ut1cat/v1.2.3".
func UserAgent() (ua string) {
	v := version
	if v == "" {
		v = "dev"
	}

	return name + "/" + v
}
