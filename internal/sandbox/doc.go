/*
Package sandbox hosts the embedded terp runtime inside an isolated goja VM.

# Overview

A sandbox module is a script that, once evaluated in a fresh VM, defines one
constructor per runtime mode:

  - create_terp(register)   single-mode variant
  - create_player(register) player
  - create_editor(register) editor

A constructor receives the host's register callback and returns an instance
exposing a run() entry point. During run() the runtime offers a loader
(a function, or an object with a load method) through register and then
yields back to the host by throwing. Classifying that exit is the caller's
job; this package returns whatever run() threw, unchanged.

# Lifecycle

 1. Prepare: read and compile the module (once per script content per process)
 2. Create: evaluate the module in a new VM and call the mode's constructor
 3. Run: invoke the instance's run() entry point
 4. Load: push projects through the registered loader

# Security Model

Sandboxed code cannot reach require, process, module or exports. Timers are
inert. Console output is captured and routed to the host logger.

# Usage Example

	factory := sandbox.NewFactory(sandbox.Embedded(), sandbox.WithLogger(logger))
	if err := factory.Prepare(ctx); err != nil {
		return err
	}

	rt, err := factory.Create(sandbox.ModePlayer, func(l sandbox.Loader) error {
		loader = l
		return nil
	})
	if err != nil {
		return err
	}
	err = rt.Run(ctx)
*/
package sandbox
