package ic

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"
)

// MustStartDev builds once, then rebuilds on every relevant change until ctx
// is done. Unless DevConfig.BuildOnly is set, it also serves the browser
// refresh channel on a free port.
func (c *Config) MustStartDev(ctx context.Context) {
	setModeToDev()

	c.devInitOnce()

	c.dev.buildMu.Lock()
	result, err := c.Build(ctx)
	c.dev.buildMu.Unlock()
	if err != nil {
		c.panicf("error: failed to build: %v", err)
	}
	c.dev.lastBuild.mu.Lock()
	c.dev.lastBuild.v = result
	c.dev.lastBuild.mu.Unlock()

	if !c.DevConfig.BuildOnly {
		srv := c.mustStartRefreshServer()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Second)
			defer cancel()
			srv.Shutdown(shutdownCtx)
			c.dev.manager.stop()
		}()
	}

	if err := c.watch(ctx); err != nil {
		c.panicf("error: watcher failed: %v", err)
	}
}

func (c *Config) mustStartRefreshServer() *http.Server {
	freePort, err := c.getFreePort(defaultFreePort)
	if err != nil {
		c.panicf("error: failed to get free port for refresh server: %v", err)
	}
	setRefreshServerPort(freePort)

	c.log().Infof("initializing sidecar refresh server on port %d", freePort)

	go c.dev.manager.start()

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", wsHandler(c.dev.manager, c.log()))
	mux.HandleFunc("/get-refresh-script-inner", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Content-Type", "text/javascript")
		w.Write([]byte(GetRefreshScriptInner(freePort)))
	})

	srv := &http.Server{Addr: ":" + strconv.Itoa(freePort), Handler: mux}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			c.log().Errorf("error: refresh server stopped: %v", err)
		}
	}()
	return srv
}

func (c *Config) panicf(format string, args ...interface{}) {
	errMsg := fmt.Sprintf(format, args...)
	c.log().Errorf("%s", errMsg)
	panic(errMsg)
}

// LastBuild returns the result of the most recent successful dev build.
func (c *Config) LastBuild() *BuildResult {
	c.dev.lastBuild.mu.Lock()
	defer c.dev.lastBuild.mu.Unlock()
	return c.dev.lastBuild.v
}
