// Package capture is the device-side producer agent. The capture process
// on the board writes each encoded frame or audio chunk into a shared
// memory file; this package watches those files and hands every new
// payload to the uploader.
package capture

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	logging "github.com/ipfs/go-log/v2"
)

var log = logging.Logger("capture")

const shmDir = "/dev/shm"

// headerSize is the length prefix the capture process writes before the
// payload: 4 bytes, little endian.
const headerSize = 4

type SharedMemoryReceiver struct {
	shmPath   string
	watcher   *fsnotify.Watcher
	Payloads  chan []byte
	ActualFps float64
}

func NewSharedMemoryReceiver(shmName string) (*SharedMemoryReceiver, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	receiver := &SharedMemoryReceiver{
		shmPath:  filepath.Join(shmDir, shmName),
		watcher:  watcher,
		Payloads: make(chan []byte, 1),
	}
	if err := watcher.Add(shmDir); err != nil {
		watcher.Close()
		return nil, err
	}
	return receiver, nil
}

func (smr *SharedMemoryReceiver) readPayloadFromShm() ([]byte, error) {
	if _, err := os.Stat(smr.shmPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("no valid shared memory file found")
	}
	data, err := os.ReadFile(smr.shmPath)
	if err != nil {
		return nil, err
	}
	if len(data) < headerSize {
		return nil, fmt.Errorf("invalid payload data: too short")
	}
	payloadLength := binary.LittleEndian.Uint32(data[:headerSize])
	if int(payloadLength) > len(data)-headerSize {
		return nil, fmt.Errorf("invalid payload data: truncated write")
	}
	return data[headerSize : headerSize+payloadLength], nil
}

// WatchSharedMemory loops over filesystem events until Close. Every new
// payload replaces an unconsumed one in the Payloads channel: the
// uploader always sends the most recent capture, never a backlog.
func (smr *SharedMemoryReceiver) WatchSharedMemory() {
	log.Infof("watching %s", smr.shmPath)
	var lastPayload []byte
	startTime := time.Now()
	payloadCount := 0
	for {
		select {
		case event, ok := <-smr.watcher.Events:
			if !ok {
				return
			}
			if event.Name != smr.shmPath ||
				(event.Op&fsnotify.Write != fsnotify.Write && event.Op&fsnotify.Create != fsnotify.Create) {
				continue
			}
			payload, err := smr.readPayloadFromShm()
			if err != nil {
				log.Warnf("error reading shared memory: %v", err)
				continue
			}
			// skip the same event triggered twice
			if bytes.Equal(payload, lastPayload) {
				continue
			}
			lastPayload = payload
			payloadCount++
			if elapsed := time.Since(startTime); elapsed > time.Second {
				smr.ActualFps = float64(payloadCount) / elapsed.Seconds()
				payloadCount = 0
				startTime = time.Now()
			}
			select {
			case smr.Payloads <- payload:
			default:
				select {
				case <-smr.Payloads:
				default:
				}
				select {
				case smr.Payloads <- payload:
				default:
				}
			}
		case err, ok := <-smr.watcher.Errors:
			if !ok {
				return
			}
			log.Warnf("watcher error: %v", err)
		}
	}
}

func (smr *SharedMemoryReceiver) Close() {
	if smr.watcher != nil {
		smr.watcher.Close()
	}
}
