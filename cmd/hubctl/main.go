// Package main - операторская утилита BotCamp Hub.
//
// hubctl выполняет разовые административные операции, которые не
// хочется вешать на бота:
//
//	hubctl migrate            - прогнать миграции базы
//	hubctl migrate-status     - показать статус миграций
//	hubctl hash-token         - посчитать bcrypt-хеш админ-токена
//	hubctl set-active-guild   - перенаправить указатель активной когорты
//	hubctl show-registry      - показать активную когорту
package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"

	"github.com/c4t-hub/botcamp-hub/internal/domain/shared"
	"github.com/c4t-hub/botcamp-hub/internal/infrastructure/persistence/postgres"
)

func main() {
	_ = godotenv.Load()

	ctx, cancel := signal.NotifyContext(context.Background(),
		syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "hubctl: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		printUsage()
		return errors.New("command is required")
	}

	switch args[0] {
	case "migrate":
		return runMigrate(ctx)
	case "migrate-status":
		return runMigrateStatus(ctx)
	case "hash-token":
		return runHashToken()
	case "set-active-guild":
		return runSetActiveGuild(ctx, args[1:])
	case "show-registry":
		return runShowRegistry(ctx)
	case "help", "-h", "--help":
		printUsage()
		return nil
	default:
		printUsage()
		return fmt.Errorf("unknown command %q", args[0])
	}
}

func printUsage() {
	fmt.Fprintln(os.Stderr, `usage: hubctl <command>

commands:
  migrate                  run pending database migrations
  migrate-status           show applied and pending migrations
  hash-token               read a token from stdin, print its bcrypt hash
  set-active-guild <id>    point the active cohort at a guild
  show-registry            print the active cohort guild`)
}

// connect opens the database from DATABASE_URL.
func connect(ctx context.Context) (*postgres.Connection, error) {
	url := os.Getenv("DATABASE_URL")
	if url == "" {
		return nil, errors.New("DATABASE_URL is required")
	}

	conn, err := postgres.NewConnectionFromURL(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}
	if err := conn.Ping(ctx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("ping: %w", err)
	}
	return conn, nil
}

// ══════════════════════════════════════════════════════════════════════════════
// COMMANDS
// ══════════════════════════════════════════════════════════════════════════════

func runMigrate(ctx context.Context) error {
	conn, err := connect(ctx)
	if err != nil {
		return err
	}
	defer conn.Close()

	migrator := postgres.NewMigrator(conn)
	if err := migrator.Migrate(ctx); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}

	fmt.Println("migrations applied")
	return nil
}

func runMigrateStatus(ctx context.Context) error {
	conn, err := connect(ctx)
	if err != nil {
		return err
	}
	defer conn.Close()

	migrator := postgres.NewMigrator(conn)
	status, err := migrator.Status(ctx)
	if err != nil {
		return fmt.Errorf("status: %w", err)
	}

	for _, m := range status {
		state := "pending"
		if m.IsApplied {
			state = "applied"
		}
		fmt.Printf("%3d  %-40s %s\n", m.Version, m.Name, state)
	}
	return nil
}

// runHashToken prints the bcrypt hash for HTTP_ADMIN_TOKEN_HASH.
func runHashToken() error {
	fmt.Fprint(os.Stderr, "token: ")

	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil && line == "" {
		return fmt.Errorf("read token: %w", err)
	}

	token := strings.TrimRight(line, "\r\n")
	if token == "" {
		return errors.New("token cannot be empty")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(token), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash: %w", err)
	}

	fmt.Println(string(hash))
	return nil
}

func runSetActiveGuild(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("set-active-guild", flag.ContinueOnError)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return errors.New("usage: hubctl set-active-guild <guild-id>")
	}

	id, err := strconv.ParseInt(fs.Arg(0), 10, 64)
	if err != nil || id <= 0 {
		return fmt.Errorf("invalid guild id %q", fs.Arg(0))
	}

	conn, err := connect(ctx)
	if err != nil {
		return err
	}
	defer conn.Close()

	registry := postgres.NewRegistryRepository(conn)
	if err := registry.SetActiveGuild(ctx, shared.GuildID(id)); err != nil {
		return fmt.Errorf("set active guild: %w", err)
	}

	fmt.Printf("active cohort now points at guild %d\n", id)
	return nil
}

func runShowRegistry(ctx context.Context) error {
	conn, err := connect(ctx)
	if err != nil {
		return err
	}
	defer conn.Close()

	registry := postgres.NewRegistryRepository(conn)
	guildID, err := registry.ActiveGuild(ctx)
	if err != nil {
		if errors.Is(err, shared.ErrNoActiveCohort) {
			fmt.Println("no active cohort registered")
			return nil
		}
		return fmt.Errorf("read registry: %w", err)
	}

	fmt.Printf("active cohort guild: %d\n", guildID.Int64())
	return nil
}
