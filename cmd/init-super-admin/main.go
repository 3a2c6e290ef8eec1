package main

import (
	"context"
	"flag"
	"fmt"
	"log"

	firebase "firebase.google.com/go/v4"

	"gym-manager/backend/internal/rbac"
)

// Stamps super-admin claims directly onto an existing auth account. Used once
// per deployment to create the first privileged login; later accounts go
// through the API.
func main() {
	uid := flag.String("uid", "", "target firebase uid")
	flag.Parse()
	if *uid == "" {
		log.Fatal("uid is required: -uid=xxxxx")
	}

	ctx := context.Background()
	app, err := firebase.NewApp(ctx, nil)
	if err != nil {
		log.Fatalf("firebase.NewApp: %v", err)
	}
	authClient, err := app.Auth(ctx)
	if err != nil {
		log.Fatalf("app.Auth: %v", err)
	}

	claims, err := rbac.NewClaims(rbac.RoleSuperAdmin, "init-super-admin")
	if err != nil {
		log.Fatalf("claims: %v", err)
	}

	if err := authClient.SetCustomUserClaims(ctx, *uid, claims.Map()); err != nil {
		log.Fatalf("SetCustomUserClaims: %v", err)
	}

	fmt.Println("ok: super-admin claims set for", *uid)
}
