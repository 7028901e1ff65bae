// Package admin implements the administrative commands of gophauth-admin:
// provisioning a superuser and purging the revocation ledger on demand.
package admin

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/dmitrijs2005/gophauth/internal/cryptox"
	"github.com/dmitrijs2005/gophauth/internal/server/models"
)

var (
	ErrUnknownCommand   = errors.New("unknown command")
	ErrPasswordMismatch = errors.New("passwords do not match")
)

type SuperuserCreator interface {
	CreateSuperuser(ctx context.Context, firstName, lastName, email, password string) (*models.User, error)
}

type Purger interface {
	RunPurge(ctx context.Context) (int64, error)
}

type Admin struct {
	reader *bufio.Reader
	out    io.Writer
	users  SuperuserCreator
	purger Purger
}

func New(in io.Reader, out io.Writer, users SuperuserCreator, purger Purger) *Admin {
	return &Admin{reader: bufio.NewReader(in), out: out, users: users, purger: purger}
}

// Usage lists the supported commands.
func Usage(w io.Writer) {
	fmt.Fprintln(w, "usage: gophauth-admin [flags] <command>")
	fmt.Fprintln(w, "commands:")
	fmt.Fprintln(w, "  createsuperuser  create an active, verified staff superuser")
	fmt.Fprintln(w, "  purge            drop revoked tokens older than 24h")
}

func (a *Admin) Run(ctx context.Context, command string) error {
	switch command {
	case "createsuperuser":
		return a.CreateSuperuser(ctx)
	case "purge":
		return a.Purge(ctx)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownCommand, command)
	}
}

func (a *Admin) CreateSuperuser(ctx context.Context) error {
	first, err := GetSimpleText(a.reader, "First name", a.out)
	if err != nil {
		return err
	}
	last, err := GetSimpleText(a.reader, "Last name", a.out)
	if err != nil {
		return err
	}
	email, err := GetSimpleText(a.reader, "Email", a.out)
	if err != nil {
		return err
	}

	pw, err := GetPassword("Password", a.out)
	if err != nil {
		return err
	}
	defer cryptox.Wipe(pw)

	confirm, err := GetPassword("Password (again)", a.out)
	if err != nil {
		return err
	}
	defer cryptox.Wipe(confirm)

	if !bytes.Equal(pw, confirm) {
		return ErrPasswordMismatch
	}

	u, err := a.users.CreateSuperuser(ctx, first, last, email, string(pw))
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "Superuser %s created (id=%s)\n", u.Email, u.ID)
	return nil
}

func (a *Admin) Purge(ctx context.Context) error {
	n, err := a.purger.RunPurge(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Purged %d blacklist entries\n", n)
	return nil
}
