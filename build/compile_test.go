package build

import "testing"

type platformSet map[string]bool

func (p platformSet) HasPlatform(name string) bool { return p[name] }

func TestObjectPathGeneric(t *testing.T) {
	platforms := platformSet{"i386": true, "rpi": true}
	object, eligible := objectPath("kernel/main.S", "i386", platforms)
	if !eligible {
		t.Fatal("generic source must be eligible for every platform")
	}
	if object != "kernel/main.o" {
		t.Fatalf("unexpected object path '%s'", object)
	}
}

func TestObjectPathPlatformPinned(t *testing.T) {
	platforms := platformSet{"i386": true, "rpi": true}

	object, eligible := objectPath("kernel/boot.i386.S", "i386", platforms)
	if !eligible {
		t.Fatal("source pinned to the current platform must be eligible")
	}
	if object != "kernel/boot.o" {
		t.Fatalf("platform segment must be dropped from the object path, got '%s'", object)
	}

	if _, eligible := objectPath("kernel/boot.rpi.S", "i386", platforms); eligible {
		t.Fatal("source pinned to another platform must be skipped")
	}
}

func TestObjectPathSecondarySegmentIsNotAPlatform(t *testing.T) {
	platforms := platformSet{"i386": true}
	object, eligible := objectPath("kernel/mem.paging.cpp", "i386", platforms)
	if !eligible {
		t.Fatal("a secondary segment that names no platform must not pin the file")
	}
	if object != "kernel/mem.paging.o" {
		t.Fatalf("unexpected object path '%s'", object)
	}
}

func TestObjectPathNonSource(t *testing.T) {
	platforms := platformSet{"i386": true}
	if _, eligible := objectPath("kernel/kernel.hpp", "i386", platforms); eligible {
		t.Fatal("headers must not be compiled")
	}
	if _, eligible := objectPath("kernel/link.ld", "i386", platforms); eligible {
		t.Fatal("linker scripts must not be compiled")
	}
}
