package core

import (
	_ "expvar"
	"log/slog"
	"net/http"

	"github.com/encodeous/ripsim/state"
)

// ServeDebug exposes /debug/vars and /debug/metrics on state.DebugListen.
func ServeDebug(log *slog.Logger) {
	go func() {
		log.Info("serving debug endpoints", "addr", state.DebugListen)
		err := http.ListenAndServe(state.DebugListen, nil)
		if err != nil {
			log.Error("debug listener stopped", "error", err)
		}
	}()
}
