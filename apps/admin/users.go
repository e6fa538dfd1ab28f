package main

import (
	"context"
	"time"

	"github.com/CooperDXSF9721/Homework-Helpers/core"
	"github.com/CooperDXSF9721/Homework-Helpers/core/user"
)

func (cli *commandLine) createUser(name, email, pwd string) error {
	ctx := context.Background()
	name = core.CleanString(name)
	email = core.CleanString(email, true /* lower */)

	if err := cli.usrRepo.CheckEmailUniqueness(ctx, email); err != nil {
		return err
	}

	usr := user.User{
		Name:      name,
		Email:     email,
		CreatedAt: time.Now().UTC(),
	}
	if err := usr.SetPassword(pwd); err != nil {
		return err
	}
	_, err := cli.usrRepo.CreateUser(ctx, usr)
	return err
}

func (cli *commandLine) resetPassword(email, pwd string) error {
	ctx := context.Background()
	usr, err := cli.usrRepo.GetUserByEmail(ctx, core.CleanString(email, true /* lower */))
	if err != nil {
		return err
	}
	if err := usr.SetPassword(pwd); err != nil {
		return err
	}
	_, err = cli.usrRepo.UpdateUser(ctx, usr)
	return err
}
