package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"gym-manager/backend/internal/config"
	"gym-manager/backend/internal/domain/account"
	"gym-manager/backend/internal/domain/coach"
	"gym-manager/backend/internal/domain/member"
	"gym-manager/backend/internal/domain/roster"
	"gym-manager/backend/internal/domain/template"
	"gym-manager/backend/internal/firebase"
	apihttp "gym-manager/backend/internal/http"
)

func main() {
	ctx := context.Background()
	cfg := config.Load()

	app, err := firebase.NewApp(ctx, cfg)
	if err != nil {
		log.Fatalf("firebase app init failed: %v", err)
	}

	authClient, err := firebase.NewAuthClient(ctx, app)
	if err != nil {
		log.Fatalf("firebase auth client init failed: %v", err)
	}

	fs, err := firebase.NewFirestore(ctx, app)
	if err != nil {
		log.Fatalf("firestore init failed: %v", err)
	}
	defer fs.Close()

	// Repositories
	memberRepo := member.NewRepo(fs.Client)
	sysUserRepo := account.NewRepo(fs.Client)
	rosterRepo := roster.NewRepo(fs.Client)
	templateRepo := template.NewRepo(fs.Client)
	coachRepo := coach.NewRepo(fs.Client)

	// Services
	accountSvc := account.NewService(authClient, sysUserRepo, memberRepo)
	coachSvc := coach.NewService(coachRepo)
	rosterSvc := roster.NewService(rosterRepo)
	templateSvc := template.NewService(templateRepo, rosterRepo)

	rosterSvc.SetCoachDirectory(coachSvc, cfg.RequireQualifiedCoach)
	templateSvc.SetCoachDirectory(coachSvc, cfg.RequireQualifiedCoach)
	if !cfg.RequireQualifiedCoach {
		log.Println("coach qualification checks disabled")
	}

	router := apihttp.NewRouter(apihttp.RouterDeps{
		Cfg:         cfg,
		Verifier:    authClient,
		AccountSvc:  accountSvc,
		RosterSvc:   rosterSvc,
		TemplateSvc: templateSvc,
		CoachSvc:    coachSvc,
		MemberStore: memberRepo,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 20 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// graceful shutdown
	go func() {
		log.Printf("API listening on :%s (project=%s)", cfg.Port, cfg.ProjectID)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen failed: %v", err)
		}
	}()

	stop := make(chan os.Signal, 2)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	log.Println("shutting down...")
	_ = srv.Shutdown(ctxShutdown)
}
