// Package common holds the logging contracts shared by the linklock packages.
//
// Two interfaces split what a component may say. A Recorder only writes
// diagnostic records (the debug log), which is all the lock and the owner
// helpers need. A Logger adds the messages a command prints for the person
// running it: progress lines, warnings and the final success.
//
//	lk, err := lock.New(path, id, lock.WithLogger(rec)) // any common.Recorder
//	w := demo.NewWriter(demo.Options{Logger: log, ...}) // a common.Logger
//
// The package imports nothing from the rest of the module.
package common
