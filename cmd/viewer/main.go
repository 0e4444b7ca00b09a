package main

import (
	"bufio"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"strings"

	logging "github.com/ipfs/go-log/v2"
)

// headless subscriber: connects to a channel's event stream and saves
// every payload to disk, mostly for checking a deployment end to end
func main() {
	logging.SetAllLoggers(logging.LevelError)

	channel := "video"
	if len(os.Args) > 1 {
		channel = os.Args[1]
	}
	if channel != "video" && channel != "audio" {
		log.Fatalf("unknown channel %q, want video or audio", channel)
	}
	baseURL := os.Getenv("CAMRELAY_URL")
	if baseURL == "" {
		baseURL = "http://localhost:8002"
	}
	ext := ".jpg"
	if channel == "audio" {
		ext = ".pcm"
	}
	outDir := "./received_" + channel
	if err := os.MkdirAll(outDir, 0755); err != nil {
		log.Fatal(err)
	}

	resp, err := http.Get(baseURL + "/" + channel + "-stream")
	if err != nil {
		log.Fatal(err)
	}
	defer resp.Body.Close()

	reader := bufio.NewReader(resp.Body)
	count := 0
	for {
		line, err := reader.ReadString('\n')
		if err != nil {
			log.Fatal("stream closed:", err)
		}
		if !strings.HasPrefix(line, "data: ") {
			continue
		}
		var event struct {
			Payload    string `json:"payload"`
			ReceivedAt int64  `json:"received_at"`
		}
		if err := json.Unmarshal([]byte(strings.TrimPrefix(strings.TrimSpace(line), "data: ")), &event); err != nil {
			log.Printf("skipping malformed event: %v", err)
			continue
		}
		payload, err := base64.StdEncoding.DecodeString(event.Payload)
		if err != nil {
			log.Printf("skipping malformed payload: %v", err)
			continue
		}
		name := fmt.Sprintf("%s/frame%d%s", outDir, count, ext)
		if err := os.WriteFile(name, payload, 0644); err != nil {
			log.Fatal(err)
		}
		count++
		log.Printf("saved %d bytes to %s", len(payload), name)
	}
}
