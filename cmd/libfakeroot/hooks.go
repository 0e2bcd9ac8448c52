package main

/*
#include <stdlib.h>

// Call-throughs to the resolved real implementations, defined in
// hooks.c (a file carrying //export may only declare C symbols).

int fakeroot_call_open(void *fn, const char *path, int flags, unsigned int mode);
int fakeroot_call_openat(void *fn, int dirfd, const char *path, int flags, unsigned int mode);
int fakeroot_call_stat(void *fn, const char *path, void *buf);
int fakeroot_call_fstatat(void *fn, int dirfd, const char *path, void *buf, int flags);
int fakeroot_call_xstat(void *fn, int ver, const char *path, void *buf);
void *fakeroot_call_opendir(void *fn, const char *path);
void fakeroot_set_enosys(void);
*/
import "C"

import (
	"unsafe"

	"golang.org/x/sys/unix"

	"github.com/acheronfail/fakeroot/internal/redirect"
)

// Every hook has the same shape: if the real implementation cannot be
// resolved, fail this one call with ENOSYS; otherwise substitute the
// effective path (leaving every other argument alone) and forward. The
// real call's return value and errno reach the caller untouched.

func hookOpen(sym *realSymbol, path *C.char, flags C.int, mode C.uint) C.int {
	fn := sym.resolve()
	if fn == nil {
		C.fakeroot_set_enosys()
		return -1
	}
	if eff, ok := effectivePath(C.GoString(path), redirect.NoDirHandle, true); ok {
		cpath := C.CString(eff)
		defer C.free(unsafe.Pointer(cpath))
		return C.fakeroot_call_open(fn, cpath, flags, mode)
	}
	return C.fakeroot_call_open(fn, path, flags, mode)
}

func hookOpenat(sym *realSymbol, dirfd C.int, path *C.char, flags C.int, mode C.uint) C.int {
	fn := sym.resolve()
	if fn == nil {
		C.fakeroot_set_enosys()
		return -1
	}
	if eff, ok := effectivePath(C.GoString(path), int(dirfd), true); ok {
		// the effective path is absolute, so the original dirfd is
		// ignored by the real call, as POSIX specifies
		cpath := C.CString(eff)
		defer C.free(unsafe.Pointer(cpath))
		return C.fakeroot_call_openat(fn, dirfd, cpath, flags, mode)
	}
	return C.fakeroot_call_openat(fn, dirfd, path, flags, mode)
}

func hookStat(sym *realSymbol, path *C.char, buf unsafe.Pointer, followSymlinks bool) C.int {
	fn := sym.resolve()
	if fn == nil {
		C.fakeroot_set_enosys()
		return -1
	}
	if eff, ok := effectivePath(C.GoString(path), redirect.NoDirHandle, followSymlinks); ok {
		cpath := C.CString(eff)
		defer C.free(unsafe.Pointer(cpath))
		return C.fakeroot_call_stat(fn, cpath, buf)
	}
	return C.fakeroot_call_stat(fn, path, buf)
}

func hookFstatat(sym *realSymbol, dirfd C.int, path *C.char, buf unsafe.Pointer, flags C.int) C.int {
	fn := sym.resolve()
	if fn == nil {
		C.fakeroot_set_enosys()
		return -1
	}
	follow := flags&unix.AT_SYMLINK_NOFOLLOW == 0
	if eff, ok := effectivePath(C.GoString(path), int(dirfd), follow); ok {
		cpath := C.CString(eff)
		defer C.free(unsafe.Pointer(cpath))
		return C.fakeroot_call_fstatat(fn, dirfd, cpath, buf, flags)
	}
	return C.fakeroot_call_fstatat(fn, dirfd, path, buf, flags)
}

func hookXstat(sym *realSymbol, ver C.int, path *C.char, buf unsafe.Pointer, followSymlinks bool) C.int {
	fn := sym.resolve()
	if fn == nil {
		C.fakeroot_set_enosys()
		return -1
	}
	if eff, ok := effectivePath(C.GoString(path), redirect.NoDirHandle, followSymlinks); ok {
		cpath := C.CString(eff)
		defer C.free(unsafe.Pointer(cpath))
		return C.fakeroot_call_xstat(fn, ver, cpath, buf)
	}
	return C.fakeroot_call_xstat(fn, ver, path, buf)
}

//export open
func open(path *C.char, flags C.int, mode C.uint) C.int {
	return hookOpen(&symOpen, path, flags, mode)
}

//export open64
func open64(path *C.char, flags C.int, mode C.uint) C.int {
	return hookOpen(&symOpen64, path, flags, mode)
}

//export openat
func openat(dirfd C.int, path *C.char, flags C.int, mode C.uint) C.int {
	return hookOpenat(&symOpenat, dirfd, path, flags, mode)
}

//export openat64
func openat64(dirfd C.int, path *C.char, flags C.int, mode C.uint) C.int {
	return hookOpenat(&symOpenat64, dirfd, path, flags, mode)
}

//export stat
func stat(path *C.char, buf unsafe.Pointer) C.int {
	return hookStat(&symStat, path, buf, true)
}

//export stat64
func stat64(path *C.char, buf unsafe.Pointer) C.int {
	return hookStat(&symStat64, path, buf, true)
}

//export lstat
func lstat(path *C.char, buf unsafe.Pointer) C.int {
	return hookStat(&symLstat, path, buf, false)
}

//export lstat64
func lstat64(path *C.char, buf unsafe.Pointer) C.int {
	return hookStat(&symLstat64, path, buf, false)
}

//export fstatat
func fstatat(dirfd C.int, path *C.char, buf unsafe.Pointer, flags C.int) C.int {
	return hookFstatat(&symFstatat, dirfd, path, buf, flags)
}

//export fstatat64
func fstatat64(dirfd C.int, path *C.char, buf unsafe.Pointer, flags C.int) C.int {
	return hookFstatat(&symFstatat64, dirfd, path, buf, flags)
}

//export __xstat64
func __xstat64(ver C.int, path *C.char, buf unsafe.Pointer) C.int {
	return hookXstat(&symXstat64, ver, path, buf, true)
}

//export __lxstat64
func __lxstat64(ver C.int, path *C.char, buf unsafe.Pointer) C.int {
	return hookXstat(&symLxstat64, ver, path, buf, false)
}

//export opendir
func opendir(path *C.char) unsafe.Pointer {
	fn := symOpendir.resolve()
	if fn == nil {
		C.fakeroot_set_enosys()
		return nil
	}
	// Only the directory-open is intercepted, and only when asked for:
	// the stream handle the real opendir returns already points at the
	// effective directory, so readdir and closedir need no hooks.
	if interceptDirs() {
		if eff, ok := effectivePath(C.GoString(path), redirect.NoDirHandle, true); ok {
			cpath := C.CString(eff)
			defer C.free(unsafe.Pointer(cpath))
			return unsafe.Pointer(C.fakeroot_call_opendir(fn, cpath))
		}
	}
	return unsafe.Pointer(C.fakeroot_call_opendir(fn, path))
}
