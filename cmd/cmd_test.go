// Copyright © 2018 Intel Corporation
//
// SPDX-License-Identifier: GPL-3.0-only

package cmd

import "testing"

func TestRunAndLogSucceedsForTrue(t *testing.T) {
	if err := RunAndLog("true"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestRunAndLogFailsForFalse(t *testing.T) {
	if err := RunAndLog("false"); err == nil {
		t.Fatal("expected an error from a command that exits non-zero")
	}
}

func TestRunAndLogFailsForMissingExecutable(t *testing.T) {
	if err := RunAndLog("/nonexistent-binary-xyz"); err == nil {
		t.Fatal("expected an error for a missing executable")
	}
}
