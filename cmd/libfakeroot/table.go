package main

/*
#include <stdlib.h>

// Trampolines for the stat-family probes the translator performs.
// struct stat is at most 144 bytes on supported targets; the caller
// passes a buffer comfortably larger and discards the contents.

typedef int (*stat_fn)(const char *, void *);
static int probe_stat(void *fn, const char *path, void *buf) {
	return ((stat_fn)fn)(path, buf);
}

typedef int (*xstat_fn)(int, const char *, void *);
static int probe_xstat(void *fn, int ver, const char *path, void *buf) {
	return ((xstat_fn)fn)(ver, path, buf);
}
*/
import "C"

import (
	"fmt"
	"os"
	"unsafe"
)

// statVerLinux is the version argument the legacy __xstat64 family
// expects on 64-bit Linux.
const statVerLinux = 1

// libcTable implements redirect.Table on top of the resolved real
// primitives. It is the production capability table inside the shared
// object; the translator only ever calls it from within a guard span.
type libcTable struct{}

// Exists implements redirect.Table
func (libcTable) Exists(path string, followSymlinks bool) bool {
	cpath := C.CString(path)
	defer C.free(unsafe.Pointer(cpath))

	var buf [512]byte
	bufp := unsafe.Pointer(&buf[0])

	direct, legacy := &symStat, &symXstat64
	if !followSymlinks {
		direct, legacy = &symLstat, &symLxstat64
	}

	if fn := direct.resolve(); fn != nil {
		return C.probe_stat(fn, cpath, bufp) == 0
	}
	// glibc before 2.33 exports only the __xstat64 family
	if fn := legacy.resolve(); fn != nil {
		return C.probe_xstat(fn, statVerLinux, cpath, bufp) == 0
	}
	// nothing resolvable; treat the candidate as absent and fall open
	return false
}

// WorkingDir implements redirect.Table. The Go runtime performs this as
// a raw syscall, so it cannot re-enter the hooks.
func (libcTable) WorkingDir() (string, error) {
	return os.Getwd()
}

// HandlePath implements redirect.Table
func (libcTable) HandlePath(fd int) (string, error) {
	return os.Readlink(fmt.Sprintf("/proc/self/fd/%d", fd))
}
