// Package handlers contains the reusable pieces of the HTTP layer: health
// checking and middleware.
//
// # Health Checks
//
// Named checks run in parallel, each under its own timeout:
//
//	checker := handlers.NewCompositeHealthChecker("v1.0.0")
//	checker.AddCheck("postgres", handlers.NewPingCheck(conn))
//	checker.AddOptionalCheck("redis", handlers.NewPingCheck(cache))
//
//	status := checker.Check(ctx)
//	if !status.Ready {
//	    // take the instance out of rotation
//	}
//
// A failing optional check marks the service degraded but keeps it ready.
//
// # Middleware
//
// Middleware is composed with Chain; the first function is the outermost:
//
//	h := handlers.ChainHandler(mux,
//	    handlers.SecurityHeadersMiddleware,
//	    handlers.RequestSizeLimitMiddleware(64<<10),
//	    handlers.TimeoutMiddleware(5*time.Second),
//	)
package handlers
