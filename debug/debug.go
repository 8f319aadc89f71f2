// Copyright 2018-2020 opcua authors. All rights reserved.
// Use of this source code is governed by a MIT-style license that can be
// found in the LICENSE file.

// Package debug provides the logger plugin collaborator the core talks to.
//
// The core never chooses a logging backend for the application; it only
// requires a level-tagged sink (spec §6). Enable is the default sink's
// on/off switch, matching the flag-driven toggle the teacher examples use
// (-debug).
package debug

import (
	"fmt"
	"log"
	"os"
)

// Enable turns on the default Printf/Errorf sink. Applications that want a
// different sink set Sink before enabling.
var Enable bool

// Sink receives level-tagged messages. Replace it to route core diagnostics
// into an application's own logger; the core only ever calls Printf/Errorf.
var Sink = log.New(os.Stderr, "", log.LstdFlags)

// Printf logs an informational message if Enable is true.
func Printf(format string, v ...interface{}) {
	if !Enable {
		return
	}
	Sink.Output(2, "DEBUG "+fmt.Sprintf(format, v...))
}

// Errorf logs an error-level message if Enable is true.
func Errorf(format string, v ...interface{}) {
	if !Enable {
		return
	}
	Sink.Output(2, "ERROR "+fmt.Sprintf(format, v...))
}
