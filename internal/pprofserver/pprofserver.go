// Package pprofserver exposes the net/http/pprof handlers on a loopback-only
// listener so profiling never rides on the public API port.
package pprofserver

import (
	"fmt"
	"log/slog"
	"net/http"
	"net/http/pprof"
	"os"
)

func Handle(mux *http.ServeMux) {
	mux.HandleFunc("/debug/pprof/", pprof.Index)
	mux.HandleFunc("/debug/pprof/trace", pprof.Trace)
	mux.HandleFunc("/debug/pprof/profile", pprof.Profile)
	mux.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
	mux.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
}

// Launch starts a pprof server on the ipv6 loopback address ::1 and the given
// port, e.g. ":6060". The process exits if the listener fails.
func Launch(port string, logger *slog.Logger) {
	mux := http.NewServeMux()
	Handle(mux)
	go func() {
		addr := fmt.Sprintf("[::1]%s", port)
		logger.Info("starting pprof server", "addr", addr)
		server := &http.Server{
			Addr:    addr,
			Handler: mux,
		}
		err := server.ListenAndServe()
		logger.Error(err.Error())
		os.Exit(0)
	}()
}
