package main

import (
	"fmt"
	"io"
	"os"
	"runtime"
	"runtime/debug"

	"github.com/shirou/gopsutil/v3/host"
)

// VersionCmd prints build and host information
type VersionCmd struct{}

// Run executes the version command
func (c *VersionCmd) Run() error {
	writeVersion(os.Stdout)
	return nil
}

func writeVersion(w io.Writer) {
	v := version
	if info, ok := debug.ReadBuildInfo(); ok && v == "dev" && info.Main.Version != "" && info.Main.Version != "(devel)" {
		v = info.Main.Version
	}
	fmt.Fprintf(w, "gemchat %s (%s, %s/%s)\n", v, runtime.Version(), runtime.GOOS, runtime.GOARCH)
	fmt.Fprintf(w, "host: %s\n", platform())
}

// platform describes the operating system, falling back to GOOS
func platform() string {
	info, err := host.Info()
	if err == nil && info.Platform != "" {
		if info.PlatformVersion != "" {
			return fmt.Sprintf("%s %s (kernel %s)", info.Platform, info.PlatformVersion, info.KernelVersion)
		}
		return info.Platform
	}
	return runtime.GOOS
}
