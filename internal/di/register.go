package di

import "github.com/samber/do/v2"

// RegisterSingletons registers every service provider in dependency order,
// following the teacher's RegisterSingletons (internal/di/register.go):
//  1. Config (no dependencies)
//  2. Logger (depends on Config)
//  3. CredentialPool (depends on Config)
//  4. Ledger (depends on Config)
//  5. Selector (depends on Config, CredentialPool, Ledger)
//  6. Cache (depends on Config)
//  7. Coalescer (no dependencies)
//  8. BreakerTracker (depends on Logger)
//  9. Telemetry (depends on Coalescer)
//  10. UpstreamClient (no dependencies)
//  11. Pipeline (depends on Config, Selector, Ledger, Cache, Coalescer, UpstreamClient, Telemetry, BreakerTracker)
//  12. Handler (depends on Config, Pipeline, Cache, Ledger, CredentialPool, Telemetry)
//  13. Server (depends on Config, Handler)
func RegisterSingletons(i do.Injector) {
	do.Provide(i, NewConfig)
	do.Provide(i, NewLogger)
	do.Provide(i, NewCredentialPool)
	do.Provide(i, NewLedger)
	do.Provide(i, NewSelector)
	do.Provide(i, NewCache)
	do.Provide(i, NewCoalescer)
	do.Provide(i, NewBreakerTracker)
	do.Provide(i, NewTelemetry)
	do.Provide(i, NewUpstreamClient)
	do.Provide(i, NewPipeline)
	do.Provide(i, NewHandler)
	do.Provide(i, NewHTTPServer)
}
