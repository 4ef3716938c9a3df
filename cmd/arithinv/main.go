// Copyright (c) 2023 Colin McRae

// Command arithinv computes the arithmetic invariants of hyperbolic
// 3-manifolds described in YAML files, compares trace fields and shows stored
// results.
package main

import (
	"context"
	"os"
	"os/signal"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := newRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}
