// Command admin manages user roles and mints development tokens.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"time"

	"folio/internal/config"
	"folio/internal/database"
	"folio/internal/middleware"
	"folio/internal/models"
	"folio/internal/repository"
)

const usage = `Usage:
  admin set-role <user_id> <admin|librarian|member>   - Change a user's role
  admin list <role>                                    - List users with a role
  admin token [-ttl 24h] <user_id>                     - Mint a bearer token for a user`

var errUsage = errors.New(usage)

func main() {
	if len(os.Args) < 2 {
		fmt.Println(usage)
		os.Exit(1)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	a := &admin{
		users:  repository.NewUserRepository(db),
		secret: cfg.JWTSecret,
		out:    os.Stdout,
	}
	if err := a.run(context.Background(), os.Args[1:]); err != nil {
		if errors.Is(err, errUsage) {
			fmt.Println(usage)
		} else {
			fmt.Printf("Error: %v\n", err)
		}
		os.Exit(1)
	}
}

type admin struct {
	users  repository.UserRepository
	secret string
	out    io.Writer
}

func (a *admin) run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return errUsage
	}

	switch args[0] {
	case "set-role":
		if len(args) != 3 {
			return errUsage
		}
		return a.setRole(ctx, args[1], models.Role(args[2]))
	case "list":
		if len(args) != 2 {
			return errUsage
		}
		return a.list(ctx, models.Role(args[1]))
	case "token":
		fs := flag.NewFlagSet("token", flag.ContinueOnError)
		fs.SetOutput(io.Discard)
		ttl := fs.Duration("ttl", 24*time.Hour, "token lifetime")
		if err := fs.Parse(args[1:]); err != nil || fs.NArg() != 1 {
			return errUsage
		}
		return a.token(ctx, fs.Arg(0), *ttl)
	default:
		return fmt.Errorf("unknown command %q: %w", args[0], errUsage)
	}
}

func parseUserID(raw string) (uint, error) {
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("invalid user id %q", raw)
	}
	return uint(id), nil
}

func (a *admin) setRole(ctx context.Context, rawID string, role models.Role) error {
	id, err := parseUserID(rawID)
	if err != nil {
		return err
	}
	user, err := a.users.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if user.Role == role {
		fmt.Fprintf(a.out, "User %s (ID: %d) already has role %s\n", user.Username, user.ID, role)
		return nil
	}
	if err := a.users.SetRole(ctx, id, role); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "User %s (ID: %d) is now %s (was %s)\n", user.Username, user.ID, role, user.Role)
	return nil
}

func (a *admin) list(ctx context.Context, role models.Role) error {
	if !role.Valid() {
		return fmt.Errorf("unknown role %q", role)
	}
	users, err := a.users.ListByRole(ctx, role)
	if err != nil {
		return err
	}
	if len(users) == 0 {
		fmt.Fprintf(a.out, "No users with role %s\n", role)
		return nil
	}
	fmt.Fprintf(a.out, "%d user(s) with role %s:\n", len(users), role)
	for _, u := range users {
		fmt.Fprintf(a.out, "  ID: %d, Username: %s, Email: %s\n", u.ID, u.Username, u.Email)
	}
	return nil
}

func (a *admin) token(ctx context.Context, rawID string, ttl time.Duration) error {
	id, err := parseUserID(rawID)
	if err != nil {
		return err
	}
	user, err := a.users.GetByID(ctx, id)
	if err != nil {
		return err
	}
	token, err := middleware.SignActorToken(a.secret, models.ActorFor(user), ttl)
	if err != nil {
		return fmt.Errorf("sign token: %w", err)
	}
	fmt.Fprintln(a.out, token)
	return nil
}
