// Package fs provides the filesystem seam used by store writers.
//
//   - [LocalFS]: production implementation on top of package os
//   - [FaultyFS]: test wrapper that injects write, sync, close, rename and symlink failures
//
// Production code uses fs.Default. Tests inject a [FaultyFS]:
//
//	ffs := fs.NewFaultyFS(nil)
//	ffs.AddRule("out.0", fs.Fault{FailAfterBytes: -1, FailOnClose: true})
//
// Operations take no context.Context: local file operations are not interruptible at
// the syscall level.
package fs
