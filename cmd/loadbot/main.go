package main

import (
	"flag"
	"fmt"
	"math/rand"
	"os"
	"os/signal"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/sakshamg567/catchping/internal/protocol"
	"github.com/sakshamg567/catchping/logger"
)

func main() {
	addr := flag.String("addr", "ws://localhost:3000/ws", "websocket gateway URL")
	clients := flag.Int("n", 3, "number of bots")
	messages := flag.Int("m", 100, "frames each bot sends before leaving")
	flag.Parse()

	if *clients < 1 {
		logger.Fatal("need at least one bot, got %d", *clients)
	}

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt)

	var wg sync.WaitGroup
	for i := 0; i < *clients; i++ {
		wg.Add(1)
		go func(name string) {
			defer wg.Done()
			connectAndSpam(*addr, name, *messages)
		}(fmt.Sprintf("bot%d", i))
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-interrupt:
		logger.Info("interrupted")
	}
}

// bot tracks just enough of the server stream to play along.
type bot struct {
	name   string
	mu     sync.Mutex
	word   string
	drawer bool
}

func (b *bot) observe(line string) {
	f, err := protocol.DecodeServer(line)
	if err != nil {
		logger.Warn("%s got bad frame %q: %v", b.name, line, err)
		return
	}
	switch f.Command {
	case protocol.CmdStart:
		b.mu.Lock()
		b.word = f.Fields[0]
		b.drawer = f.Fields[2] == "true"
		b.mu.Unlock()
		logger.Debug("%s round start, drawing=%s", b.name, f.Fields[2])
	case protocol.CmdGameOver:
		logger.Info("%s saw game over", b.name)
	case protocol.CmdPlayers:
		roster, err := protocol.ParseRoster(f.Fields)
		if err == nil {
			logger.Debug("%s roster %v", b.name, roster)
		}
	}
}

func (b *bot) nextFrame() string {
	b.mu.Lock()
	drawer := b.drawer
	b.mu.Unlock()

	if drawer {
		return protocol.DrawLine(protocol.Stroke{
			From:  protocol.Point{X: rand.Intn(800), Y: rand.Intn(600)},
			To:    protocol.Point{X: rand.Intn(800), Y: rand.Intn(600)},
			Color: protocol.Color{R: rand.Intn(256), G: rand.Intn(256), B: rand.Intn(256)},
			Size:  1 + rand.Intn(10),
		})
	}
	return protocol.ChatLine(fmt.Sprintf("guess %d from %s", rand.Intn(1000), b.name))
}

func connectAndSpam(addr, name string, messages int) {
	conn, _, err := websocket.DefaultDialer.Dial(addr, nil)
	if err != nil {
		logger.Error("%s connect: %v", name, err)
		return
	}
	defer conn.Close()

	if err := conn.WriteMessage(websocket.TextMessage, []byte(name)); err != nil {
		logger.Error("%s handshake: %v", name, err)
		return
	}
	logger.Info("%s joined", name)

	b := &bot{name: name}
	go func() {
		for {
			_, msg, err := conn.ReadMessage()
			if err != nil {
				return
			}
			b.observe(string(msg))
		}
	}()

	if err := conn.WriteMessage(websocket.TextMessage, []byte(protocol.CmdReady)); err != nil {
		logger.Error("%s ready: %v", name, err)
		return
	}

	for i := 0; i < messages; i++ {
		if err := conn.WriteMessage(websocket.TextMessage, []byte(b.nextFrame())); err != nil {
			logger.Error("%s write: %v", name, err)
			return
		}
		time.Sleep(time.Duration(100+rand.Intn(900)) * time.Millisecond)
	}
	logger.Info("%s finished sending frames", name)
}
