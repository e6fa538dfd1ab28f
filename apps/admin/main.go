package main

import (
	"context"
	"log"
	"os"

	"github.com/CooperDXSF9721/Homework-Helpers/core"
	firestoredb "github.com/CooperDXSF9721/Homework-Helpers/storage/firestore"
)

var logger *log.Logger

func main() {
	defer os.Exit(0)

	logger = log.New(os.Stdout, "ADMIN : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)

	conf := core.NewConfig()
	if conf.GCPProjectID == "" {
		logger.Fatal("GCP_PROJECT_ID must be set; the admin CLI works against the firestore store")
	}

	db, err := firestoredb.Open(context.Background(), conf)
	errAndDie(err)
	defer db.Close()

	// start CLI
	cli := commandLine{
		usrRepo:    firestoredb.NewUserRepository(db),
		accessRepo: firestoredb.NewAccessRepository(db),
	}
	if err := cli.run(os.Args); err != nil {
		if err != errHelp {
			logger.Printf("\nerror: %s\n", err)
		}
		os.Exit(1)
	}
}

func errAndDie(err error) {
	if err != nil {
		logger.Fatal(err)
	}
}
