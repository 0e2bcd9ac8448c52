// libfakeroot is the preload shared object. Built with
//
//	go build -buildmode=c-shared -o libfakeroot.so ./cmd/libfakeroot
//
// and loaded into a target process via LD_PRELOAD (the fakeroot launcher
// does both the env setup and the exec), it shadows a fixed set of libc
// filesystem entry points and redirects their paths into the shadow tree
// named by FAKE_ROOT. Calls outside that set, and all calls when
// FAKE_ROOT is unset, reach the real libc untouched.
package main

func main() {}
