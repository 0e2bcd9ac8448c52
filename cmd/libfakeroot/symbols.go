package main

/*
#cgo CFLAGS: -D_GNU_SOURCE
#cgo LDFLAGS: -ldl

#include <stdlib.h>
#include <dlfcn.h>

// next_sym resolves the next occurrence of a symbol in the dynamic
// linker's search order after this library. RTLD_NEXT rather than a
// fresh dlopen of libc: a plain handle lookup would find the first
// match, which under stacked preloads could be another interposer or
// this library itself.
static void *next_sym(const char *name) {
	return dlsym(RTLD_NEXT, name);
}
*/
import "C"

import (
	"sync/atomic"
	"unsafe"
)

// realSymbol is one slot of the resolved-symbol cache: the address of
// the real, non-intercepted implementation of a hooked primitive.
// A slot is populated at most once and never changes. Concurrent first
// uses may both call dlsym; resolving the same name twice yields the
// same address, so the race costs duplicate work, never a wrong value.
type realSymbol struct {
	name string
	addr unsafe.Pointer
}

// resolve returns the real implementation's address, or nil if the
// symbol cannot be found (the hook then fails that one call).
func (s *realSymbol) resolve() unsafe.Pointer {
	if p := atomic.LoadPointer(&s.addr); p != nil {
		return p
	}

	cname := C.CString(s.name)
	defer C.free(unsafe.Pointer(cname))

	p := unsafe.Pointer(C.next_sym(cname))
	if p == nil {
		// do not cache failure: a later lookup losing the race to a
		// successful one must not pin nil
		return nil
	}
	atomic.StorePointer(&s.addr, p)
	return p
}

// One slot per intercepted primitive.
var (
	symOpen      = realSymbol{name: "open"}
	symOpen64    = realSymbol{name: "open64"}
	symOpenat    = realSymbol{name: "openat"}
	symOpenat64  = realSymbol{name: "openat64"}
	symStat      = realSymbol{name: "stat"}
	symStat64    = realSymbol{name: "stat64"}
	symLstat     = realSymbol{name: "lstat"}
	symLstat64   = realSymbol{name: "lstat64"}
	symFstatat   = realSymbol{name: "fstatat"}
	symFstatat64 = realSymbol{name: "fstatat64"}
	symXstat64   = realSymbol{name: "__xstat64"}
	symLxstat64  = realSymbol{name: "__lxstat64"}
	symOpendir   = realSymbol{name: "opendir"}
)
