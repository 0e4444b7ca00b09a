package main

import (
	"context"
	"log"
	"os"
	"os/signal"

	logging "github.com/ipfs/go-log/v2"
	"github.com/joho/godotenv"
	"strzcam.com/camrelay/capture"
)

func main() {
	logging.SetAllLoggers(logging.LevelInfo)
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: no .env file loaded: %v", err)
	}
	relayURL := os.Getenv("CAMRELAY_URL")
	if relayURL == "" {
		relayURL = "http://localhost:8002"
	}

	video, err := capture.NewSharedMemoryReceiver("video_frame")
	if err != nil {
		log.Fatal(err)
	}
	defer video.Close()
	audio, err := capture.NewSharedMemoryReceiver("audio_chunk")
	if err != nil {
		log.Fatal(err)
	}
	defer audio.Close()
	go video.WatchSharedMemory()
	go audio.WatchSharedMemory()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	uploader := capture.NewUploader(relayURL)
	go uploader.Relay(ctx, video.Payloads, "/upload")
	go uploader.Relay(ctx, audio.Payloads, "/upload-audio")

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt)
	<-sigChan
	log.Println("Exiting.")
}
