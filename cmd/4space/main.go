package main

import (
	"bufio"
	"context"
	"database/sql"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/azee-ka/4space-super-sub001/config"
	identityusecase "github.com/azee-ka/4space-super-sub001/internal/identity/usecase"
	"github.com/azee-ka/4space-super-sub001/internal/session"
	spacerepo "github.com/azee-ka/4space-super-sub001/internal/space/repository"
	spaceusecase "github.com/azee-ka/4space-super-sub001/internal/space/usecase"
	"github.com/azee-ka/4space-super-sub001/internal/vault"
	"github.com/azee-ka/4space-super-sub001/pkg/logger"
	"github.com/azee-ka/4space-super-sub001/pkg/utils"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
)

func main() {
	spaceFlag := flag.String("space", "", "space id to open")
	userFlag := flag.String("user", "", "acting user id")
	keyFlag := flag.String("provision-key", "", "base64 space key to install before opening")
	tokenFlag := flag.String("token", "", "access token; overrides -user")
	enrollFlag := flag.Bool("enroll", false, "generate an identity key pair for -user and exit")
	flag.Parse()

	v, err := config.LoadConfig("config")
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	cfg, err := config.ParseConfig(v)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	appLogger, err := logger.NewLogger(cfg)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer appLogger.Sync()

	keyVault, err := vault.NewKeyringVault(cfg)
	if err != nil {
		log.Fatalf("vault: %v", err)
	}

	var userID uuid.UUID
	if *tokenFlag != "" {
		provider := session.NewProvider(cfg, *appLogger)
		sess, err := provider.Accept(*tokenFlag)
		if err != nil {
			log.Fatalf("token rejected: %v", err)
		}
		userID = sess.UserID
	} else {
		userID, err = uuid.Parse(*userFlag)
		if err != nil {
			log.Fatalf("invalid -user: %v", err)
		}
	}

	if *enrollFlag {
		identities := identityusecase.NewIdentityService(keyVault, *appLogger)
		pub, err := identities.Enroll(context.Background(), userID)
		if err != nil {
			log.Fatalf("enroll: %v", err)
		}
		fmt.Printf("enrolled %s, public key %s\n", userID, utils.EncodeKey(pub))
		return
	}

	spaceID, err := uuid.Parse(*spaceFlag)
	if err != nil {
		log.Fatalf("invalid -space: %v", err)
	}

	connector := pgdriver.NewConnector(pgdriver.WithDSN(cfg.Bun.DSN))
	db := bun.NewDB(sql.OpenDB(connector), pgdialect.New())
	defer db.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := db.PingContext(ctx); err != nil {
		log.Fatalf("database: %v", err)
	}

	if cfg.App.Environment == "development" {
		if err := spacerepo.CreateSchema(ctx, db); err != nil {
			log.Fatalf("schema: %v", err)
		}
		if err := spacerepo.EnsureMessageFeed(ctx, db); err != nil {
			log.Fatalf("feed trigger: %v", err)
		}
	}

	repo := spacerepo.NewSpaceRepository(db, *appLogger)
	feed := spacerepo.NewPgLiveFeed(db, *appLogger)
	syncer := spaceusecase.NewSpaceSync(repo, feed, keyVault, *appLogger)

	if *keyFlag != "" {
		if err := syncer.ProvisionSpaceKey(ctx, spaceID, *keyFlag); err != nil {
			log.Fatalf("provision key: %v", err)
		}
	}

	view, err := syncer.Open(ctx, spaceID)
	if err != nil {
		log.Fatalf("open space: %v", err)
	}
	defer view.Close()

	for _, m := range view.Messages() {
		printMessage(m.SenderName, m.DecryptedContent)
	}

	go func() {
		for m := range view.Updates() {
			printMessage(m.SenderName, m.DecryptedContent)
		}
	}()

	go func() {
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			line := scanner.Text()
			if line == "" {
				continue
			}
			if err := syncer.Send(ctx, spaceID, userID, line); err != nil {
				appLogger.Error("send failed", "err", err)
			}
		}
	}()

	<-ctx.Done()
}

func printMessage(sender string, content *string) {
	if sender == "" {
		sender = "unknown"
	}
	if content == nil {
		fmt.Printf("[%s] <encrypted message - no key on this device>\n", sender)
		return
	}
	fmt.Printf("[%s] %s\n", sender, *content)
}
