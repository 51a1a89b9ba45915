package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/niexiaoning/deep-searcher/internal/config"
	"github.com/niexiaoning/deep-searcher/internal/configuration"
	"github.com/niexiaoning/deep-searcher/internal/domain/jobModel"
	"github.com/niexiaoning/deep-searcher/internal/handlers"
	"github.com/niexiaoning/deep-searcher/internal/job"
	"github.com/niexiaoning/deep-searcher/internal/middleware"
	"github.com/niexiaoning/deep-searcher/internal/rag"
	"github.com/niexiaoning/deep-searcher/internal/server"
	"github.com/niexiaoning/deep-searcher/internal/worker"
	"github.com/niexiaoning/deep-searcher/pkg/logger_i"
)

var (
	listenAddr        string
	envFile           string
	requestCount      int64
	stopWorkerChannel chan bool
	workerWaitGroup   sync.WaitGroup
)

func main() {

	logger_i.Init()
	var logger = logger_i.NewLogger("main")

	//config
	flag.StringVar(&listenAddr, "listen-addr", "", "server listen address, overrides LISTEN_ADDR")
	flag.StringVar(&envFile, "env-file", ".env", "dotenv file to read before the environment")
	flag.Parse()

	settings, err := config.Load(envFile)
	if err != nil {
		logger.Error("Could not load settings", "error", err)
		os.Exit(1)
	}
	if listenAddr != "" {
		settings.ListenAddr = listenAddr
	}
	if err = settings.Validate(); err != nil {
		logger.Error("Invalid settings", "error", err)
		os.Exit(1)
	}
	if err = settings.ValidateServer(); err != nil {
		logger.Error("Refusing to start", "error", err)
		os.Exit(1)
	}
	if settings.AllowAnonymous && settings.AuthToken == "" {
		logger.Warn("Serving without authentication")
	}

	//init buffered job channel
	jobChannel := make(chan jobModel.Job, config.BufferLimit)
	dispatcherChannel := make(chan bool, 1)
	stopWorkerChannel = make(chan bool, 1)

	serviceContext, closeExternalServices := context.WithCancel(context.Background())
	defer closeExternalServices()

	services, err := configuration.Build(serviceContext, settings)
	if err != nil {
		logger.Error("External services failed to initialize. Shutting down.", "error", err)
		return
	}
	defer services.Close()

	jobStore, err := configuration.NewJobStore(serviceContext, settings)
	if err != nil {
		logger.Error("Job store failed to initialize. Shutting down.", "error", err)
		return
	}

	//init job service
	logger.Info("Starting job service")
	service := job.InitJobService(job.ServiceConfig{
		JobChannel:        jobChannel,
		RequestCount:      requestCount,
		DispatcherChannel: dispatcherChannel,
		JobStore:          jobStore,
	})

	//init worker pool
	ragService := rag.NewService(services.Pipeline)
	worker.NewPool(service, ragService, stopWorkerChannel, &workerWaitGroup).Start()

	jobHandler := handlers.NewJobHandler(service)
	requestHandler := handlers.NewRequestHandler(jobHandler, config.UploadDir, services.Embedder.Model(), services.Embedder.Dimension())
	srv := server.New(settings.ListenAddr, server.NewRouter(middleware.New(settings.AuthToken, settings.AllowAnonymous), requestHandler))

	//server handling
	gracefulShutdown := make(chan os.Signal, 1)
	signal.Notify(gracefulShutdown, syscall.SIGINT, syscall.SIGTERM)
	stopExecution := make(chan bool, 1)

	shutdownParams := server.ShutdownParams{
		GracefulShutdown: gracefulShutdown,
		StopExecution:    stopExecution,
		WorkerStop:       stopWorkerChannel,
		Group:            &workerWaitGroup,
		CloseServices:    closeExternalServices,
	}
	go srv.ShutDownHandler(shutdownParams)
	go srv.Run()

	<-stopExecution
	logger.Info("Server stopped")
}
