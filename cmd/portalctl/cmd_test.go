package main

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	adminuserstore "github.com/dalemusser/ccbportal/internal/app/store/adminusers"
	"github.com/dalemusser/ccbportal/internal/app/system/authutil"
	"github.com/dalemusser/ccbportal/internal/testutil"
	"go.mongodb.org/mongo-driver/mongo"
)

type cliTest struct {
	name       string
	args       []string
	passwords  []string
	wantErr    error
	wantErrStr string
	wantOut    string
}

func setup(t *testing.T) (*mongo.Database, *adminuserstore.Store) {
	t.Helper()
	db := testutil.SetupTestDB(t)

	origConnect, origRead := connectFunc, readPasswordFunc
	t.Cleanup(func() { connectFunc, readPasswordFunc = origConnect, origRead })

	connectFunc = func(context.Context, string, string) (*mongo.Database, func(), error) {
		return db, func() {}, nil
	}
	return db, adminuserstore.New(db)
}

// feedPasswords makes the prompt return each of pwds in turn.
func feedPasswords(pwds []string) {
	i := 0
	readPasswordFunc = func(int) ([]byte, error) {
		if i >= len(pwds) {
			return nil, errors.New("no more input")
		}
		p := pwds[i]
		i++
		return []byte(p), nil
	}
}

func run(t *testing.T, tt cliTest) string {
	t.Helper()
	feedPasswords(tt.passwords)

	var out bytes.Buffer
	cli := &commandLine{}
	defer cli.close()
	root := newRootCmd(cli)
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(tt.args)

	err := root.Execute()
	switch {
	case tt.wantErr != nil:
		if !errors.Is(err, tt.wantErr) {
			t.Errorf("expected error %v, got %v", tt.wantErr, err)
		}
	case tt.wantErrStr != "":
		if err == nil || !strings.Contains(err.Error(), tt.wantErrStr) {
			t.Errorf("expected error containing %q, got %v", tt.wantErrStr, err)
		}
	case err != nil:
		t.Errorf("unexpected error: %v", err)
	}
	if tt.wantOut != "" && !strings.Contains(out.String(), tt.wantOut) {
		t.Errorf("output %q does not contain %q", out.String(), tt.wantOut)
	}
	return out.String()
}

func Test_commandLine_adduser(t *testing.T) {
	_, users := setup(t)

	tests := []cliTest{
		{name: "no username", args: []string{"adduser"}, wantErr: errHelp},
		{name: "mismatch", args: []string{"adduser", "--username", "dean"}, passwords: []string{"Tr0ub4dor&3", "other-pass"}, wantErrStr: "passwords do not match"},
		{name: "weak password", args: []string{"adduser", "--username", "dean"}, passwords: []string{"password", "password"}, wantErrStr: "commonly used"},
		{name: "bad email", args: []string{"adduser", "--username", "dean", "--email", "nope"}, passwords: []string{"Tr0ub4dor&3", "Tr0ub4dor&3"}, wantErrStr: "invalid email"},
		{name: "create", args: []string{"adduser", "--username", "dean", "--email", "Dean@College.edu", "--first-name", "Pat"}, passwords: []string{"Tr0ub4dor&3", "Tr0ub4dor&3"}, wantOut: `Created staff user "dean"`},
		{name: "update", args: []string{"adduser", "--username", "DEAN", "--superuser"}, passwords: []string{"c0rrect-h0rse", "c0rrect-h0rse"}, wantOut: `Updated staff user "DEAN"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			run(t, tt)
		})
	}

	ctx, cancel := testutil.TestContext()
	defer cancel()
	u, err := users.GetByUsername(ctx, "dean")
	if err != nil {
		t.Fatalf("GetByUsername: %v", err)
	}
	if !u.IsStaff || !u.IsActive || !u.IsSuperuser {
		t.Errorf("expected active staff superuser, got %+v", u)
	}
	if u.Email != "dean@college.edu" || u.FirstName != "Pat" {
		t.Errorf("profile not kept: %+v", u)
	}
	if !authutil.CheckPassword("c0rrect-h0rse", u.PasswordHash) {
		t.Error("password should be the updated one")
	}
}

func Test_commandLine_resetpassword(t *testing.T) {
	db, users := setup(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	testutil.NewFixtures(t, db).CreateStaff(ctx, "registrar")

	tests := []cliTest{
		{name: "no username", args: []string{"resetpassword"}, wantErr: errHelp},
		{name: "empty password", args: []string{"resetpassword", "--username", "registrar"}, passwords: []string{""}, wantErrStr: "must not be empty"},
		{name: "unknown user", args: []string{"resetpassword", "--username", "ghost"}, passwords: []string{"Tr0ub4dor&3"}, wantErr: adminuserstore.ErrNotFound},
		{name: "ok", args: []string{"resetpassword", "--username", "registrar"}, passwords: []string{"Tr0ub4dor&3"}, wantOut: `Password updated for "registrar"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			run(t, tt)
		})
	}

	u, err := users.GetByUsername(ctx, "registrar")
	if err != nil {
		t.Fatalf("GetByUsername: %v", err)
	}
	if !authutil.CheckPassword("Tr0ub4dor&3", u.PasswordHash) {
		t.Error("password was not reset")
	}
}
