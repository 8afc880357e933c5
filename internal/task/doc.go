// Package task turns a component set into the three phase groups of a link
// run: fetch, install and run.
//
// A Task is one of Fetch, Install or Run. Each variant carries only the data
// it needs and is executed against an Env holding the external collaborators
// (version control, package manager, filesystem probe). Tasks in a group touch
// disjoint working directories, <workdir>/<name>, and share no state.
package task
