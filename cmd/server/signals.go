package main

import "os"

// shutdownSignals trigger graceful shutdown. signals_unix.go adds SIGTERM.
var shutdownSignals = []os.Signal{os.Interrupt}
