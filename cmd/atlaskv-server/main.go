// Command atlaskv-server starts the admin HTTP surface over an
// AtlasKV data directory: health, stats, and a debug get/put/delete
// endpoint. It does not speak the storage engine's binary wire
// protocol, which has no network server in this repository.
package main

import (
	"flag"
	"os"

	"atlaskv/bootstrap"
	"atlaskv/internal/platform/obs"
)

func main() {
	flag.Parse()
	if err := bootstrap.Run(); err != nil {
		obs.Error.Printf("server exited: %v", err)
		os.Exit(1)
	}
}
