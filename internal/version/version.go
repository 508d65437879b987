package version

// Name identifies the service in logs, traces, and metrics.
const Name = "excel-analytics-server"

// Version is overridden at build time via -ldflags.
var Version = "dev"
