// Package server provides the ServerContext and the HTTP infrastructure
// shared by the MCP transports.
//
// ServerContext holds every dependency a tool handler needs: the structured
// logger, the environment registry and credential resolver, one executor per
// backend and the optional instrumentation provider. Dependencies are
// injected with functional options; anything not injected is built from the
// configuration when the context is created.
//
// Example usage:
//
//	sc, err := server.NewServerContext(ctx,
//		server.WithLogger(logger),
//		server.WithRequestTimeout(30*time.Second),
//		server.WithCredentialSource(environment.Layered{environment.ProcessEnv{}, dotenv}),
//		server.WithInstrumentationProvider(provider),
//	)
//	if err != nil {
//		return err
//	}
//	defer sc.Shutdown()
//
// The package also provides the health endpoints (/healthz, /readyz,
// /healthz/detailed) and the dedicated metrics listener.
package server
