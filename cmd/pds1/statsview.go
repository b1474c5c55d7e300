package main

import (
	"fmt"
	"io"

	"github.com/go-echarts/statsview"
	"github.com/go-echarts/statsview/viewer"
)

const statsviewUrl = "/debug/statsview"

// launchStatsview starts the runtime statistics server in a new goroutine.
func launchStatsview(addr string, output io.Writer) {
	go func() {
		viewer.SetConfiguration(viewer.WithAddr(addr))
		mgr := statsview.New()
		mgr.Start()
	}()

	fmt.Fprintln(output, f("stats server available at %s%s", addr, statsviewUrl))
}
