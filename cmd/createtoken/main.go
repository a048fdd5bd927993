package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"tipl.com/officepanel/security"
)

// Mints a token for poking the API from curl. The signing secret comes
// from OFFICEPANEL_SIGNING_SECRET (base64).
func main() {
	role := flag.String("role", security.RoleMaster, "token role: employee or master")
	employeeID := flag.Uint("employee", 0, "employee id (employee role only)")
	username := flag.String("username", "cli", "username claim")
	ttl := flag.Duration("ttl", time.Hour, "token lifetime")
	flag.Parse()

	secret := os.Getenv("OFFICEPANEL_SIGNING_SECRET")
	if secret == "" {
		log.Fatal("OFFICEPANEL_SIGNING_SECRET is not set")
	}

	token, err := security.CreateIdentityToken(security.Identity{
		EmployeeID: uint(*employeeID),
		Username:   *username,
		Role:       *role,
	}, secret, *ttl)
	if err != nil {
		log.Fatal(err)
	}

	fmt.Println(token)
}
