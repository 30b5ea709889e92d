// Package app wires the gdxtoolbox web service together and manages its
// lifecycle.
//
// # Initialization Flow
//
//  1. Load configuration (defaults, configs/config.yaml, GDX_* variables)
//  2. Initialize logging and OpenTelemetry
//  3. Resolve paths and create the output directories
//  4. Build the readers, the importer and the services (NewServices)
//  5. Set up the chi router and its middleware
//  6. Create the HTTP server
//
// # Usage
//
//	application, err := app.NewApplication("")
//	if err != nil {
//	    return err
//	}
//	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
//	defer stop()
//	return application.Run(ctx)
//
// # Graceful Shutdown
//
// Run returns once ctx is cancelled and in-flight requests have finished or
// the shutdown timeout has passed. Telemetry providers are flushed last. The
// package never calls os.Exit.
package app
