// Package bridge boots a sandboxed terp runtime and forwards projects into it.
//
// Init runs the handoff protocol in a fixed order: prepare the sandbox,
// create a runtime bound to a one-shot registration callback, then invoke
// the runtime's entry point. The runtime registers its loader and yields by
// exiting with an error whose message starts with the suspend prefix
// ([DefaultSuspendPrefix]). That exit is classified as [Suspended] and
// swallowed; every other exit is returned to the caller unchanged.
//
// Lifecycle:
//
//	b := bridge.New(bridge.Sandboxed(factory), bridge.WithLogger(logger))
//	if err := b.Init(ctx, sandbox.ModePlayer); err != nil {
//		return err
//	}
//	err := b.Load(project) // any number of times
//	b.Close()
//
// The Bridge depends on the narrow [Factory] and [Runtime] interfaces so
// tests can substitute mock implementations.
package bridge
