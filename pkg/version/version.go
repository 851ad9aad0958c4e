package version

// Version is the votemap release string.
// Override at build time with:
//
//	go build -ldflags "-X github.com/vanderheijden86/votemap/pkg/version.Version=v0.2.0"
var Version = "v0.1.0"
