package main

import (
	"bufio"
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/classboard/classboard/internal/data"
	"github.com/classboard/classboard/internal/data/cryptoutil"
	domainauth "github.com/classboard/classboard/internal/domain/auth"
	"github.com/classboard/classboard/internal/domain/model"
	"github.com/classboard/classboard/internal/service"
)

type createAdminOptions struct {
	Name     string
	Username string
	Password string
}

type resetPasswordOptions struct {
	Username string
	Password string
}

func runCreateAdmin(cmdCtx *commandContext, args []string) error {
	opts, err := parseCreateAdminFlags(args)
	if err != nil {
		return err
	}

	return withDatabase(cmdCtx, time.Minute, func(ctx context.Context, db *sql.DB) error {
		users := service.NewUserService(service.UserServiceOptions{
			Users:  data.NewUserRepo(db),
			Hasher: cryptoutil.NewScryptHasher(),
		})

		created, createErr := users.Create(ctx, &model.CreateUserRequest{
			Name:     opts.Name,
			Username: opts.Username,
			Role:     domainauth.RoleAdmin,
			Password: opts.Password,
		})
		if createErr != nil {
			return fmt.Errorf("create admin: %w", createErr)
		}

		cmdCtx.Logger.Info("admin account created",
			"id", created.ID,
			"username", created.Username,
		)
		return nil
	})
}

func runResetPassword(cmdCtx *commandContext, args []string) error {
	opts, err := parseResetPasswordFlags(args)
	if err != nil {
		return err
	}

	return withDatabase(cmdCtx, time.Minute, func(ctx context.Context, db *sql.DB) error {
		repo := data.NewUserRepo(db)
		users := service.NewUserService(service.UserServiceOptions{
			Users:  repo,
			Hasher: cryptoutil.NewScryptHasher(),
		})

		user, getErr := repo.GetByUsername(ctx, opts.Username)
		if getErr != nil {
			return fmt.Errorf("lookup user %q: %w", opts.Username, getErr)
		}

		if _, updateErr := users.Update(ctx, user.ID, model.UpdateUserRequest{
			Password: &opts.Password,
		}); updateErr != nil {
			return fmt.Errorf("reset password: %w", updateErr)
		}

		cmdCtx.Logger.Info("password reset", "username", user.Username)
		return nil
	})
}

func parseCreateAdminFlags(args []string) (createAdminOptions, error) {
	fs := flag.NewFlagSet("create-admin", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	var opts createAdminOptions
	fs.StringVar(&opts.Name, "name", "", "Display name for the admin account (required)")
	fs.StringVar(&opts.Username, "username", "", "Username for the admin account (required)")
	fs.StringVar(&opts.Password, "password", "", "Password for the admin account (prompted when omitted)")

	if err := fs.Parse(args); err != nil {
		return createAdminOptions{}, err
	}

	opts.Name = strings.TrimSpace(opts.Name)
	opts.Username = strings.TrimSpace(opts.Username)
	if opts.Name == "" {
		return createAdminOptions{}, errors.New("--name is required")
	}
	if opts.Username == "" {
		return createAdminOptions{}, errors.New("--username is required")
	}
	if opts.Password == "" {
		pw, err := promptPassword()
		if err != nil {
			return createAdminOptions{}, err
		}
		opts.Password = pw
	}

	return opts, nil
}

func parseResetPasswordFlags(args []string) (resetPasswordOptions, error) {
	fs := flag.NewFlagSet("reset-password", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	var opts resetPasswordOptions
	fs.StringVar(&opts.Username, "username", "", "Username of the account (required)")
	fs.StringVar(&opts.Password, "password", "", "New password (prompted when omitted)")

	if err := fs.Parse(args); err != nil {
		return resetPasswordOptions{}, err
	}

	opts.Username = strings.TrimSpace(opts.Username)
	if opts.Username == "" {
		return resetPasswordOptions{}, errors.New("--username is required")
	}
	if opts.Password == "" {
		pw, err := promptPassword()
		if err != nil {
			return resetPasswordOptions{}, err
		}
		opts.Password = pw
	}

	return opts, nil
}

// promptPassword reads a password from stdin, asking twice to catch typos.
func promptPassword() (string, error) {
	reader := bufio.NewReader(os.Stdin)

	if err := writef(os.Stderr, "Password: "); err != nil {
		return "", fmt.Errorf("print password prompt: %w", err)
	}
	first, err := reader.ReadString('\n')
	if err != nil {
		return "", errors.New("aborted by user")
	}

	if err = writef(os.Stderr, "Confirm password: "); err != nil {
		return "", fmt.Errorf("print confirm prompt: %w", err)
	}
	second, err := reader.ReadString('\n')
	if err != nil {
		return "", errors.New("aborted by user")
	}

	first = strings.TrimRight(first, "\r\n")
	second = strings.TrimRight(second, "\r\n")
	if first != second {
		return "", errors.New("passwords do not match")
	}
	if first == "" {
		return "", errors.New("password cannot be empty")
	}

	return first, nil
}
