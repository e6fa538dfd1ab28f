package main

import (
	"context"
	"time"

	"github.com/CooperDXSF9721/Homework-Helpers/core"
	"github.com/CooperDXSF9721/Homework-Helpers/core/access"
)

// grantAdmin puts an existing user on the admin roster directly, bypassing
// the passphrase gate. The roster record and the user flag are two writes.
func (cli *commandLine) grantAdmin(email string) error {
	ctx := context.Background()
	usr, err := cli.usrRepo.GetUserByEmail(ctx, core.CleanString(email, true /* lower */))
	if err != nil {
		return err
	}

	if _, err = cli.accessRepo.UpsertAdmin(ctx, access.Admin{
		ID:        usr.ID,
		Name:      usr.Name,
		Email:     usr.Email,
		Status:    access.StatusOpen,
		CreatedAt: time.Now().UTC(),
	}); err != nil {
		return err
	}
	return cli.usrRepo.SetAdminFlag(ctx, usr.ID, true)
}

func (cli *commandLine) setPassphrase(passphrase string) error {
	return cli.accessRepo.SetPassphrase(context.Background(), passphrase)
}
