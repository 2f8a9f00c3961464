package main

import (
	"log"
	"os"
	"time"

	"github.com/Bernardo-Rodrigues/api-bate-papo-uol/internal"
	"github.com/Bernardo-Rodrigues/api-bate-papo-uol/repositories"
	"github.com/Bernardo-Rodrigues/api-bate-papo-uol/storage"
	"github.com/Netflix/go-env"
	"github.com/dgraph-io/badger/v4"
	"github.com/gookit/color"
	"github.com/joho/godotenv"
	"github.com/mama165/sdk-go/logs"
	"github.com/olekukonko/tablewriter"
)

// Read-only snapshot of the room: participants and the raw message log.
func main() {
	// 1. Load config
	_ = godotenv.Load()
	var config internal.Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		log.Fatalf("Config error: %v", err)
	}

	// 2. Open Badger in Read-Only mode
	// Note: BypassLockGuard allows opening while the server holds the lock
	opts := badger.DefaultOptions(config.BadgerFilepath).
		WithReadOnly(true).
		WithBypassLockGuard(true).
		WithLoggingLevel(badger.WARNING)

	db, err := badger.Open(opts)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	store := storage.NewStore(db)
	slogger := logs.GetLoggerFromString(config.LogLevel)
	participants := repositories.NewParticipantRepository(store, slogger)
	messages := repositories.NewMessageRepository(store, slogger)

	// 3. Participants table
	all, err := participants.List()
	if err != nil {
		log.Fatalf("Failed to list participants: %v", err)
	}
	color.Green.Println("Participants")
	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Name", "Last heartbeat"})
	for _, p := range all {
		table.Append([]string{p.Name, time.UnixMilli(p.LastStatus).Format("15:04:05")})
	}
	table.Render()

	// 4. Message log table
	history, err := messages.All()
	if err != nil {
		log.Fatalf("Failed to list messages: %v", err)
	}
	color.Green.Println("Messages")
	table = tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Time", "Type", "From", "To", "Text"})
	for _, m := range history {
		table.Append([]string{m.Time, string(m.Type), m.From, m.To, m.Text})
	}
	table.Render()
}
