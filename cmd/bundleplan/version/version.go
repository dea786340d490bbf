package version

import (
	"fmt"
	"io"
	"runtime"
)

// Version is overridden at build time via
// -ldflags "-X github.com/bundleplan/bundleplan/cmd/bundleplan/version.Version=...".
var Version string = "dev"

func Print() {
	fmt.Printf("bundleplan version %s\n", Version)
	fmt.Printf("%s/%s\n", runtime.GOOS, runtime.GOARCH)
}

func Fprint(w io.Writer) {
	fmt.Fprintf(w, "bundleplan version %s\n", Version)
	fmt.Fprintf(w, "%s/%s\n", runtime.GOOS, runtime.GOARCH)
}
