package main

import (
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/fxamacker/cbor/v2"
	"github.com/gorilla/mux"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"casper-project/db"
	"casper-project/estimator"
	"casper-project/handlers"
	"casper-project/logger"
	"casper-project/models"
	"casper-project/protocol"
	"casper-project/repository"
	"casper-project/routers"
	"casper-project/weights"
)

func main() {
	// Load config
	viper.SetConfigFile("config/config.yaml")
	if err := viper.ReadInConfig(); err != nil {
		fmt.Println("Config file error:", err)
		os.Exit(1)
	}

	appLogFile := viper.GetString("log.app_log_file")
	logLevel := viper.GetString("log.level")

	if err := logger.InitLogger(appLogFile, logLevel); err != nil {
		fmt.Println("Failed to initialize logger:", err)
		os.Exit(1)
	}

	logger.Logger.Info("Starting consensus observer...")

	// Validator weights and fault tolerance threshold
	table := weights.NewTable(nil)
	for name, weight := range viper.GetStringMap("consensus.validators") {
		w, ok := weight.(int)
		if !ok || w < 0 {
			logger.Logger.Fatal("Invalid validator weight", zap.String("validator", name))
		}
		table.Insert(models.ValidatorID(name), weights.Weight(w))
	}
	threshold := weights.Weight(viper.GetUint64("consensus.threshold"))

	// Connect to LevelDB
	leveldbPath := viper.GetString("leveldb.path")
	ldb, err := db.NewLevelDB(leveldbPath)
	if err != nil {
		logger.Logger.Fatal("Failed to open leveldb", zap.Error(err))
	}
	defer ldb.Close()

	// Initialize message journal
	repo, err := repository.NewMessageRepository(ldb)
	if err != nil {
		logger.Logger.Fatal("Failed to open message journal", zap.Error(err))
	}

	// Initialize protocol state and replay the journal
	state := protocol.NewState(table)
	if err := replayJournal(state, repo); err != nil {
		logger.Logger.Fatal("Failed to replay message journal", zap.Error(err))
	}

	// Initialize HTTP handlers
	h := handlers.NewHandler(state, estimator.Binary{}, repo, threshold)

	// Setup router
	r := mux.NewRouter()
	routers.RegisterRoutes(r, h)

	// HTTP Server
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", viper.GetInt("server.port")),
		Handler: r,
	}

	// Start server in goroutine
	go func() {
		if err := srv.ListenAndServe(); err != nil {
			logger.Logger.Info("Server stopped", zap.Error(err))
		}
	}()

	logger.Logger.Info("Server running on port", zap.Int("port", viper.GetInt("server.port")))

	// Graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	<-sigCh
	logger.Logger.Info("Shutdown signal received, exiting...")
	srv.Close()
}

// replayJournal rebuilds the observed view from the stored messages. The
// journal preserves insertion order, so every justification resolves by the
// time its message is replayed.
func replayJournal(state *protocol.State, repo repository.MessageRepositoryInterface) error {
	stored, err := repo.AllMessages()
	if err != nil {
		return err
	}
	for _, entry := range stored {
		var value bool
		if err := cbor.Unmarshal(entry.Estimate, &value); err != nil {
			return fmt.Errorf("decoding estimate of journal entry %d: %w", entry.Seq, err)
		}
		msg, err := models.NewMessage(models.ValidatorID(entry.Sender), estimator.Boolean(value), entry.Refs())
		if err != nil {
			return err
		}
		if err := state.Insert(msg); err != nil {
			return fmt.Errorf("replaying journal entry %d: %w", entry.Seq, err)
		}
	}
	if len(stored) > 0 {
		logger.Logger.Info("Replayed message journal", zap.Int("messages", len(stored)))
	}
	return nil
}
