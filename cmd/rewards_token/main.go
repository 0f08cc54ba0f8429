// Command rewards_token mints a bearer token for the API using the server's JWT settings.
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/SscSPs/rewards_ledger/internal/middleware"
	"github.com/SscSPs/rewards_ledger/internal/platform/config"
)

func main() {
	var (
		subject = flag.String("sub", "", "user or service id placed in the token subject")
		role    = flag.String("role", "", "role claim, e.g. "+middleware.RoleAdmin)
		ttl     = flag.Duration("ttl", 24*time.Hour, "token lifetime")
	)
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	token, err := middleware.GenerateJWT(*subject, *role, cfg.JWTSecret, *ttl, cfg.JWTIssuer)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to generate token: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(token)
}
