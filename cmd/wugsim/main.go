// wugsim runs the WhatsUp Gold API simulator, useful for developing wugctl
// and scripts without a licensed server.
package main

import (
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"

	"github.com/whatsupgo/whatsupgo/internal/mockserver"
)

func main() {
	addr := flag.String("addr", ":9644", "listen address")
	username := flag.String("username", "admin", "simulator username")
	password := flag.String("password", "secret", "simulator password")
	flag.Parse()

	fmt.Println("Starting WhatsUp Gold API Simulator...")
	fmt.Printf("Listening on http://localhost%s\n", *addr)
	fmt.Println("\nEndpoints:")
	fmt.Println("  Health: GET  /health")
	fmt.Println("\n  Auth:")
	fmt.Println("    POST /api/v1/token  (grant_type=password|refresh_token)")
	fmt.Println("\n  Devices:")
	fmt.Println("    GET    /api/v1/devices/{id}")
	fmt.Println("    PUT    /api/v1/devices/{id}/properties")
	fmt.Println("    DELETE /api/v1/devices/{id}")
	fmt.Println("    GET    /api/v1/devices/{id}/config/template")
	fmt.Println("    PATCH  /api/v1/devices/-/config/template")
	fmt.Println("    GET    /api/v1/devices/{id}/config/polling")
	fmt.Println("    PATCH  /api/v1/devices/{id}/config/polling")
	fmt.Println("\n  Attributes:")
	fmt.Println("    GET    /api/v1/devices/{id}/attributes/-")
	fmt.Println("    PUT    /api/v1/devices/{id}/attributes/-")
	fmt.Println("    PUT    /api/v1/devices/{id}/attributes/{attributeId}")
	fmt.Println("    DELETE /api/v1/devices/{id}/attributes/{attributeId}")
	fmt.Println("\n  Groups:")
	fmt.Println("    GET /api/v1/device-groups/-")
	fmt.Println("    GET /api/v1/device-groups/{groupId}")
	fmt.Println("    GET /api/v1/device-groups/{groupId}/devices/-")
	fmt.Println("\n  Monitors:")
	fmt.Println("    GET  /api/v1/monitors/-")
	fmt.Println("    GET  /api/v1/devices/{id}/monitors/-")
	fmt.Println("    POST /api/v1/devices/{id}/monitors/-")
	fmt.Println("\n  Reports:")
	fmt.Println("    GET /api/v1/devices/{id}/reports/{category}")
	fmt.Println("    GET /api/v1/device-groups/{groupId}/devices/reports/{category}")
	fmt.Printf("\n  Credentials: %s / %s\n\n", *username, *password)

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	srv, err := mockserver.New(mockserver.Options{
		Username: *username,
		Password: *password,
		Logger:   logger,
	})
	if err != nil {
		log.Fatalf("Simulator setup failed: %v", err)
	}
	if err := srv.Start(*addr); err != nil {
		log.Fatalf("Simulator failed to start: %v", err)
	}
}
