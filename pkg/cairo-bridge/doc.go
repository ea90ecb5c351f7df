// Package cairobridge connects Cairo executions to a proof backend.
//
// An executable is run by an external Executor; the relocated execution it
// returns (memory image, register trace, public input) is adapted into a
// Witness, which the reference prover commits to and the verifier checks.
//
// # Trace generation
//
// From a relocated run on disk (trace.bin, memory.bin, air_public_input.json):
//
//	witness, err := cairobridge.TraceGenFromDir("out/")
//	if err != nil {
//		log.Fatal(err)
//	}
//
// From an executable and an executor:
//
//	bridge, err := cairobridge.New(cairobridge.DefaultConfig(), nil)
//	if err != nil {
//		log.Fatal(err)
//	}
//	exe, err := cairobridge.ParseExecutable(data)
//	if err != nil {
//		log.Fatal(err)
//	}
//	witness, err := bridge.ExecuteTraceGen(ctx, exe, cairobridge.Standalone, "1 2 [3 4]", executor)
//
// # Proving and verifying
//
//	proof, err := bridge.Prove(witness)
//	if err != nil {
//		log.Fatal(err)
//	}
//	if !bridge.Verify(proof) {
//		log.Fatal("proof rejected")
//	}
//
// # Errors
//
// Every error returned by this package is an *Error whose Code tells the
// failing stage apart: structural problems in programs and hints, missing or
// malformed archives, executor failures, adapter failures and proof failures.
// Use errors.Is with a zero-message *Error of the wanted code, or CodeOf.
package cairobridge
