// Command groupcacheserver runs one peer of a distributed color-lookup
// cache, for demonstration and manual testing.
//
// Running 3 peers on one machine:
//
//	groupcacheserver -addr=:8080 -pool=http://127.0.0.1:8080,http://127.0.0.1:8081,http://127.0.0.1:8082
//	groupcacheserver -addr=:8081 -pool=http://127.0.0.1:8081,http://127.0.0.1:8080,http://127.0.0.1:8082
//	groupcacheserver -addr=:8082 -pool=http://127.0.0.1:8082,http://127.0.0.1:8080,http://127.0.0.1:8081
//
// Then: curl localhost:8080/color?name=red
package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/peerbyte/groupcache"
)

var store = map[string][]byte{
	"red":   []byte("#FF0000"),
	"green": []byte("#00FF00"),
	"blue":  []byte("#0000FF"),
}

func main() {
	addr := flag.String("addr", ":8080", "server address")
	peers := flag.String("pool", "http://localhost:8080", "comma-separated peer pool")
	metricsAddr := flag.String("metrics-addr", "", "if set, serve Prometheus metrics on this address")
	flag.Parse()

	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	opts := []groupcache.Option{groupcache.WithLogger(logger)}
	if *metricsAddr != "" {
		reg := prometheus.NewRegistry()
		opts = append(opts, groupcache.WithMetrics(reg))
		go func() {
			mux := http.NewServeMux()
			mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
			logger.Info("serving metrics", zap.String("addr", *metricsAddr))
			logger.Error("metrics server exited", zap.Error(http.ListenAndServe(*metricsAddr, mux)))
		}()
	}

	group := groupcache.NewGroup("colors", 64<<20, groupcache.GetterFunc(
		func(ctx context.Context, key string) (groupcache.ByteView, error) {
			logger.Info("loading locally", zap.String("key", key))
			v, ok := store[key]
			if !ok {
				return groupcache.ByteView{}, errors.New("color not found")
			}
			return groupcache.Copy(v), nil
		},
	), opts...)

	http.HandleFunc("/color", func(w http.ResponseWriter, r *http.Request) {
		color := r.FormValue("name")
		value, err := group.Get(r.Context(), color)
		if err != nil {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		defer value.Release()
		w.Write(value.ByteSlice())
		w.Write([]byte{'\n'})
	})

	peerList := strings.Split(*peers, ",")
	pool := groupcache.NewHTTPPool(peerList[0])
	pool.Set(peerList...)

	logger.Info("listening", zap.String("addr", *addr))
	logger.Fatal("server exited", zap.Error(http.ListenAndServe(*addr, nil)))
}
