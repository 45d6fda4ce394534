// Command token mints a caller token for local development and testing.
//
//	AUTH_SECRET=... go run ./cmd/token -sub alice -role PARTICIPANT
package main

import (
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/Shivanand-hulikatti/event-reservations/internal/auth"
	"github.com/Shivanand-hulikatti/event-reservations/internal/config"
	"github.com/Shivanand-hulikatti/event-reservations/internal/model"
)

func main() {
	sub := flag.String("sub", "", "caller id (token subject)")
	role := flag.String("role", string(model.RoleParticipant), "ADMIN or PARTICIPANT")
	ttl := flag.Duration("ttl", 24*time.Hour, "token lifetime")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}

	a := auth.NewAuthenticator(cfg.Auth.Secret, cfg.Auth.Issuer)
	token, err := a.Issue(*sub, model.Role(strings.ToUpper(*role)), *ttl)
	if err != nil {
		fmt.Fprintln(os.Stderr, "token:", err)
		flag.Usage()
		os.Exit(2)
	}
	fmt.Println(token)
}
