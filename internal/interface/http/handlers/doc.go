// Package handlers contains HTTP handler interfaces, implementations, and middleware.
//
// This package provides:
//   - Health check interfaces and implementations
//   - Admin token authentication middleware
//   - Reusable middleware components
//
// # Health Checks
//
// The HealthChecker interface allows registering multiple named health checks
// that are executed in parallel:
//
//	checker := handlers.NewCompositeHealthChecker("v1.0.0")
//	checker.AddCheck("database", handlers.NewPingCheck(db))
//	checker.AddCheck("cache", handlers.NewPingCheck(cache))
//	checker.AddCheck("gateway", handlers.NewPingCheck(gatewayClient))
//
//	status := checker.Check(ctx)
//	if !status.Healthy {
//	    log.Printf("Health check failed: %s", status.Message)
//	}
//
// # Middleware
//
// The package provides several reusable middleware components:
//
//	// Admin bearer token authentication (bcrypt-hashed token)
//	auth := handlers.AdminTokenAuth(tokenHash)
//	protected := auth(myHandler)
//
//	// Request timeout
//	withTimeout := handlers.TimeoutMiddleware(30 * time.Second)(myHandler)
//
//	// Chain multiple middleware
//	handler := handlers.Chain(
//	    myHandler,
//	    handlers.SecurityHeadersMiddleware(),
//	    auth,
//	)
package handlers
