// Package statsview serves live runtime charts (heap, goroutines, GC) for
// profiling the frontends.
package statsview

import (
	"fmt"
	"io"

	"github.com/go-echarts/statsview"
	"github.com/go-echarts/statsview/viewer"
)

// DefaultAddress is where the stats server listens unless told otherwise.
const DefaultAddress = "localhost:12600"

const path = "/debug/statsview"

// URL returns the page address for a server listening on addr.
func URL(addr string) string {
	return fmt.Sprintf("http://%s%s", addr, path)
}

// Launch starts the stats server on addr in the background and writes its URL
// to output.
func Launch(output io.Writer, addr string) {
	go func() {
		viewer.SetConfiguration(viewer.WithAddr(addr))
		mgr := statsview.New()
		mgr.Start()
	}()

	fmt.Fprintf(output, "stats server available at %s\n", URL(addr))
}
