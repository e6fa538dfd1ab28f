package main

import (
	"errors"
	"flag"
	"fmt"
	"syscall"

	"golang.org/x/term"

	"github.com/CooperDXSF9721/Homework-Helpers/core/access"
	"github.com/CooperDXSF9721/Homework-Helpers/core/user"
)

var (
	readPasswordFunc = term.ReadPassword // mockable

	errHelp = errors.New("help provided")
)

type commandLine struct {
	usrRepo    user.Repository
	accessRepo access.Repository
}

func (cli *commandLine) printUsage() {
	fmt.Println("Usage:")
	fmt.Println("  createuser -name NAME -email EMAIL     - create a user; the password will be prompted")
	fmt.Println("  resetpassword -email EMAIL             - reset a user's password; the password will be prompted")
	fmt.Println("  grantadmin -email EMAIL                - put an existing user on the admin roster")
	fmt.Println("  setpassphrase                          - set the shared admin passphrase (prompted)")
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	createUserCmd := flag.NewFlagSet("createuser", flag.ExitOnError)
	createUserName := createUserCmd.String("name", "", "The user's display name.")
	createUserEmail := createUserCmd.String("email", "", "The user's email. The password will be prompted next.")

	resetPasswordCmd := flag.NewFlagSet("resetpassword", flag.ExitOnError)
	resetPasswordEmail := resetPasswordCmd.String("email", "", "The user's email. The password will be prompted next.")

	grantAdminCmd := flag.NewFlagSet("grantadmin", flag.ExitOnError)
	grantAdminEmail := grantAdminCmd.String("email", "", "The email of the user to promote.")

	switch args[1] {
	case "createuser":
		if err := createUserCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *createUserName == "" || *createUserEmail == "" {
			createUserCmd.Usage()
			return errHelp
		}
		pwd, err := cli.promptPassword("Enter password:")
		if err != nil {
			return err
		}
		if pwd == "" {
			createUserCmd.Usage()
			return errHelp
		}
		return cli.createUser(*createUserName, *createUserEmail, pwd)
	case "resetpassword":
		if err := resetPasswordCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *resetPasswordEmail == "" {
			resetPasswordCmd.Usage()
			return errHelp
		}
		pwd, err := cli.promptPassword("Enter password:")
		if err != nil {
			return err
		}
		if pwd == "" {
			resetPasswordCmd.Usage()
			return errHelp
		}
		return cli.resetPassword(*resetPasswordEmail, pwd)
	case "grantadmin":
		if err := grantAdminCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *grantAdminEmail == "" {
			grantAdminCmd.Usage()
			return errHelp
		}
		return cli.grantAdmin(*grantAdminEmail)
	case "setpassphrase":
		passphrase, err := cli.promptPassword("Enter passphrase:")
		if err != nil {
			return err
		}
		if passphrase == "" {
			cli.printUsage()
			return errHelp
		}
		return cli.setPassphrase(passphrase)
	default:
		cli.printUsage()
		return errHelp
	}
}

func (cli *commandLine) promptPassword(prompt string) (string, error) {
	fmt.Print(prompt)
	pwd, err := readPasswordFunc(syscall.Stdin)
	fmt.Println()
	if err != nil {
		return "", err
	}
	return string(pwd), nil
}
