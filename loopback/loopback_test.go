// Copyright © 2024 Blsforme Project
//
// SPDX-License-Identifier: GPL-3.0-only

package loopback

import "testing"

func TestDevicePathFormatting(t *testing.T) {
	cases := map[int]string{
		0:  "/dev/loop0",
		1:  "/dev/loop1",
		42: "/dev/loop42",
	}
	for devno, want := range cases {
		if got := devicePath(devno); got != want {
			t.Errorf("devicePath(%d) = %q, want %q", devno, got, want)
		}
	}
}

func TestAttachRejectsAlreadyAttached(t *testing.T) {
	l := &LoopDevice{Path: "/dev/loop0", attached: true}
	if err := l.Attach("/nonexistent"); err == nil {
		t.Fatal("expected Attach to reject an already-attached device before ever touching the backing file")
	}
}

func TestAttachedReflectsState(t *testing.T) {
	l := &LoopDevice{Path: "/dev/loop0"}
	if l.Attached() {
		t.Fatal("expected freshly constructed LoopDevice to report not attached")
	}
	l.attached = true
	if !l.Attached() {
		t.Fatal("expected Attached to reflect internal state")
	}
}
