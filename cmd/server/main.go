package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"time"

	logging "github.com/ipfs/go-log/v2"
	"strzcam.com/camrelay/relay"
	"strzcam.com/camrelay/server"
)

func main() {
	logging.SetAllLoggers(logging.LevelInfo)

	config := server.LoadConfig()
	r := relay.New(relay.Limits{
		MaxVideoPayload: config.MaxVideoPayload,
		MaxAudioPayload: config.MaxAudioPayload,
	})
	srv := server.New(r, config)
	srv.PrepareEndpoints()

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, os.Interrupt)
		<-sigChan
		log.Println("Shutting down...")
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(ctx)
	}()

	if err := srv.Start(); err != nil {
		log.Fatal(err)
	}
}
