package app

const ServiceName = "securecheck"

// Set via -ldflags during build:
//
//	go build -ldflags="-X 'securecheck/internal/app.Version=1.0.0'"
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildTime = "unknown"
)
