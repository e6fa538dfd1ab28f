package main

import (
	"context"
	"expvar"
	"fmt"
	"log"
	"net/http"
	_ "net/http/pprof"
	"os"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	echoapi "github.com/CooperDXSF9721/Homework-Helpers/apps/api/echo"
	"github.com/CooperDXSF9721/Homework-Helpers/core"
	"github.com/CooperDXSF9721/Homework-Helpers/core/access"
	"github.com/CooperDXSF9721/Homework-Helpers/core/chat"
	"github.com/CooperDXSF9721/Homework-Helpers/core/user"
	emailsvc "github.com/CooperDXSF9721/Homework-Helpers/services/email"
	identitysvc "github.com/CooperDXSF9721/Homework-Helpers/services/identity"
	logsvc "github.com/CooperDXSF9721/Homework-Helpers/services/logger"
	dummydb "github.com/CooperDXSF9721/Homework-Helpers/storage/dummy"
	firestoredb "github.com/CooperDXSF9721/Homework-Helpers/storage/firestore"
)

func main() {
	// =========================================================================
	// Set up Dependencies

	conf := core.NewConfig()
	ctx := context.Background()

	// set up loggers
	logger := logsvc.NewRollbarLogger(
		log.New(os.Stdout, "API : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile),
		conf,
	)
	logger.Enable(!conf.Debug)

	// set up storage
	var (
		userRepo   user.Repository
		accessRepo access.Repository
		chatRepo   chat.Repository
	)
	if conf.GCPProjectID != "" {
		db, err := firestoredb.Open(ctx, conf)
		if err != nil {
			logger.Fatal(fmt.Sprintf("setting up firestore: %v", err), err)
		}
		defer func() {
			if err = db.Close(); err != nil {
				logger.Error(fmt.Sprintf("closing firestore: %v", err), err)
			}
		}()
		userRepo = firestoredb.NewUserRepository(db)
		accessRepo = firestoredb.NewAccessRepository(db)
		chatRepo = firestoredb.NewChatRepository(db)
	} else {
		db := dummydb.Open()
		userRepo = dummydb.NewUserRepository(db)
		accessRepo = dummydb.NewAccessRepository(db)
		chatRepo = dummydb.NewChatRepository(db)
	}

	// set up services
	var mailSvc core.EmailService
	if conf.Debug {
		mailSvc = emailsvc.NewConsoleService(conf, logger)
	} else {
		mailSvc = emailsvc.NewSendgridService(conf, logger)
	}

	usrSvc := user.NewService(userRepo)
	accessSvc := access.NewService(accessRepo, usrSvc)
	chatSvc := chat.NewService(chatRepo, accessSvc, mailSvc, logger, conf)

	var identity user.Identity
	if conf.GCPProjectID != "" {
		var err error
		identity, err = identitysvc.NewFirebaseIdentity(ctx, usrSvc, mailSvc, logger, conf)
		if err != nil {
			logger.Fatal(fmt.Sprintf("setting up firebase identity: %v", err), err)
		}
	} else {
		identity = identitysvc.NewLocalIdentity(usrSvc, mailSvc, logger, conf)
	}

	// =========================================================================
	// Initialize App

	logger.Info(fmt.Sprintf("Application initializing : version %q", conf.Build))
	defer logger.Info("Application stopped")

	validate := validator.New()
	translator := newTranslator()
	core.InitValidators(validate, translator)
	user.InitValidators(validate, translator)
	access.InitValidators(validate, translator)

	core.ParseEmailTemplates(conf, logger)

	// =========================================================================
	// Start Debug Service
	//
	// /debug/pprof - Added to the default mux by importing the net/http/pprof package.
	// /debug/vars - Added to the default mux by importing the expvar package.

	expvar.NewString("build").Set(conf.Build)
	expvar.NewString("env").Set(conf.Env)

	go func() {
		if err := http.ListenAndServe(conf.Server.DebugAddr, http.DefaultServeMux); err != nil {
			logger.Error(fmt.Sprintf("debug server closed: %v", err), err)
		}
	}()

	// =========================================================================
	// Start API Service

	server := echoapi.NewServer(echoapi.ServerDeps{
		Conf:       conf,
		Logger:     logger,
		Identity:   identity,
		UserSvc:    usrSvc,
		AccessSvc:  accessSvc,
		ChatSvc:    chatSvc,
		Validate:   validate,
		Translator: translator,
	})

	go func() {
		server.Start()
	}()

	// =========================================================================
	// Shutdown

	select {
	case err := <-server.Errors():
		logger.Fatal(fmt.Sprintf("server error: %v", err), err)

	case sig := <-server.ShutdownSignal():
		logger.Info(fmt.Sprintf("%v: Start shutdown...", sig))

		// give outstanding requests a deadline for completion
		ctx, cancel := context.WithTimeout(context.Background(), conf.Server.ShutdownTimeout)
		defer cancel()

		// asking listener to shutdown and shed load
		if err := server.Shutdown(ctx); err != nil {
			logger.Error(fmt.Sprintf("could not stop server gracefully: %v", err), err)

			if err = server.Close(); err != nil {
				logger.Fatal(fmt.Sprintf("could not force stop server: %v", err), err)
			}
		}
	}
}

func newTranslator() ut.Translator {
	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ := uni.GetTranslator("en")
	return translator
}
