package admin

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/dmitrijs2005/gophauth/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeUsers struct {
	got []string
	err error
}

func (f *fakeUsers) CreateSuperuser(_ context.Context, first, last, email, password string) (*models.User, error) {
	f.got = []string{first, last, email, password}
	if f.err != nil {
		return nil, f.err
	}
	return &models.User{ID: "id-1", Email: email, IsSuperuser: true}, nil
}

type fakePurger struct {
	n   int64
	err error
}

func (f fakePurger) RunPurge(context.Context) (int64, error) { return f.n, f.err }

func stubPasswords(t *testing.T, pws ...string) {
	t.Helper()
	old := readPassword
	t.Cleanup(func() { readPassword = old })
	i := 0
	readPassword = func(int) ([]byte, error) {
		if i >= len(pws) {
			return nil, errors.New("no more input")
		}
		i++
		return []byte(pws[i-1]), nil
	}
}

func TestGetSimpleText(t *testing.T) {
	var out bytes.Buffer
	got, err := GetSimpleText(bufio.NewReader(strings.NewReader("  hello world \n")), "Name", &out)
	require.NoError(t, err)
	assert.Equal(t, "hello world", got)
	assert.Equal(t, "Name: ", out.String())

	got, err = GetSimpleText(bufio.NewReader(strings.NewReader("lastline")), "Name", &out)
	require.NoError(t, err)
	assert.Equal(t, "lastline", got)

	_, err = GetSimpleText(bufio.NewReader(strings.NewReader("")), "Name", &out)
	assert.Error(t, err)
}

func TestCreateSuperuser(t *testing.T) {
	stubPasswords(t, "s3cret-pw", "s3cret-pw")
	users := &fakeUsers{}
	var out bytes.Buffer

	a := New(strings.NewReader("Root\nAdmin\nroot@example.com\n"), &out, users, fakePurger{})
	require.NoError(t, a.Run(context.Background(), "createsuperuser"))

	assert.Equal(t, []string{"Root", "Admin", "root@example.com", "s3cret-pw"}, users.got)
	assert.Contains(t, out.String(), "Superuser root@example.com created")
	assert.NotContains(t, out.String(), "s3cret-pw")
}

func TestCreateSuperuser_PasswordMismatch(t *testing.T) {
	stubPasswords(t, "one", "two")
	users := &fakeUsers{}

	a := New(strings.NewReader("Root\nAdmin\nroot@example.com\n"), &bytes.Buffer{}, users, fakePurger{})
	assert.ErrorIs(t, a.CreateSuperuser(context.Background()), ErrPasswordMismatch)
	assert.Nil(t, users.got)
}

func TestCreateSuperuser_ServiceError(t *testing.T) {
	stubPasswords(t, "pw", "pw")
	users := &fakeUsers{err: common.ErrorConflict}

	a := New(strings.NewReader("Root\nAdmin\nroot@example.com\n"), &bytes.Buffer{}, users, fakePurger{})
	assert.ErrorIs(t, a.CreateSuperuser(context.Background()), common.ErrorConflict)
}

func TestPurge(t *testing.T) {
	var out bytes.Buffer
	a := New(strings.NewReader(""), &out, &fakeUsers{}, fakePurger{n: 5})
	require.NoError(t, a.Run(context.Background(), "purge"))
	assert.Equal(t, "Purged 5 blacklist entries\n", out.String())

	boom := errors.New("boom")
	a = New(strings.NewReader(""), &out, &fakeUsers{}, fakePurger{err: boom})
	assert.ErrorIs(t, a.Purge(context.Background()), boom)
}

func TestRun_UnknownCommand(t *testing.T) {
	a := New(strings.NewReader(""), &bytes.Buffer{}, &fakeUsers{}, fakePurger{})
	assert.ErrorIs(t, a.Run(context.Background(), "dance"), ErrUnknownCommand)
}
